// Package plsql parses the declaration structure of stored program units:
// package specifications and bodies, object type specifications and bodies.
//
// The parser recognizes routine headers, nested type and subtype
// declarations, cursors, variable and constant declarations and object type
// attributes. Routine bodies and initialization blocks are skipped by block
// matching; expressions and SQL are kept as raw text.
//
// # Grammar Overview
//
//	file        → unit { "/" unit }
//	unit        → [CREATE [OR REPLACE]] (PACKAGE|TYPE) [BODY] name options (AS|IS) body
//	            | [CREATE [OR REPLACE]] TYPE name UNDER name "(" members ")" modifiers
//	body        → OBJECT "(" members ")" modifiers ";"
//	            | declaration* [BEGIN block] END [name] ";"
//	            | collection-definition ";"
//	declaration → routine | CURSOR ... | [SUB]TYPE name IS ... ";" | PRAGMA ... ";"
//	            | name { "," name } [CONSTANT] type [NOT NULL] [(":="|DEFAULT) expr] ";"
package plsql

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ParseError is a syntax error with its position.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

var upper = cases.Upper(language.Und)

var routineOptions = []string{
	"DETERMINISTIC", "PIPELINED", "PARALLEL_ENABLE", "RESULT_CACHE", "RELIES_ON",
	"AGGREGATE", "AUTHID", "ACCESSIBLE", "SQL_MACRO",
}

var returnStops = append([]string{"IS", "AS"}, routineOptions...)

var methodQualifiers = []string{"MEMBER", "STATIC", "CONSTRUCTOR", "MAP", "ORDER", "OVERRIDING", "FINAL", "INSTANTIABLE", "NOT"}

// Parser is a recursive-descent parser over a token stream.
type Parser struct {
	lexer *Lexer
	input string
	tok   Token // current token
	peek  Token // lookahead token
}

// NewParser creates a parser for source.
func NewParser(source string) *Parser {
	p := &Parser{lexer: NewLexer(source), input: source}
	p.next()
	p.next()
	return p
}

// Parse parses every program unit in source.
func Parse(source string) (*File, error) {
	p := NewParser(source)
	f := &File{}
	for {
		for p.tok.is("/") || p.tok.is(";") {
			p.next()
		}
		if p.tok.Kind == TokenEOF {
			break
		}
		u, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		f.Units = append(f.Units, u)
	}
	if len(f.Units) == 0 {
		return nil, &ParseError{Pos: p.tok.Pos, Message: "no program unit found"}
	}
	return f, nil
}

// ---------- Token Helpers ----------

func (p *Parser) next() {
	p.tok = p.peek
	p.peek = p.lexer.Next()
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.tok.Pos, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expectSymbol(sym string) error {
	if !p.tok.is(sym) {
		return p.errorf("unexpected %s, expected %q", p.tok, sym)
	}
	p.next()
	return nil
}

func (p *Parser) expectWord(words ...string) error {
	if !p.tok.isWord(words...) {
		return p.errorf("unexpected %s, expected %s", p.tok, strings.Join(words, " or "))
	}
	p.next()
	return nil
}

// parseName reads one identifier. Unquoted names are upper-cased.
func (p *Parser) parseName() (string, error) {
	switch p.tok.Kind {
	case TokenIdent:
		name := upper.String(p.tok.Text)
		p.next()
		return name, nil
	case TokenQuotedIdent:
		name := p.tok.Text
		p.next()
		return name, nil
	default:
		return "", p.errorf("unexpected %s, expected identifier", p.tok)
	}
}

func (p *Parser) parseQualifiedName() (schema, name string, err error) {
	name, err = p.parseName()
	if err != nil {
		return "", "", err
	}
	if p.tok.is(".") {
		p.next()
		schema = name
		if name, err = p.parseName(); err != nil {
			return "", "", err
		}
	}
	return schema, name, nil
}

// ---------- Units ----------

func (p *Parser) parseUnit() (*Unit, error) {
	u := &Unit{Pos: p.tok.Pos}
	if p.tok.isWord("CREATE") {
		p.next()
		if p.tok.isWord("OR") {
			p.next()
			if err := p.expectWord("REPLACE"); err != nil {
				return nil, err
			}
		}
	}
	if p.tok.isWord("EDITIONABLE", "NONEDITIONABLE", "EDITIONING") {
		p.next()
	}

	switch {
	case p.tok.isWord("PACKAGE"):
		u.Kind = UnitPackage
	case p.tok.isWord("TYPE"):
		u.Kind = UnitType
	default:
		return nil, p.errorf("unexpected %s, expected PACKAGE or TYPE", p.tok)
	}
	p.next()
	if p.tok.isWord("BODY") {
		p.next()
		if u.Kind == UnitPackage {
			u.Kind = UnitPackageBody
		} else {
			u.Kind = UnitTypeBody
		}
	}

	var err error
	if u.Schema, u.Name, err = p.parseQualifiedName(); err != nil {
		return nil, err
	}
	if err := p.skipUnitOptions(); err != nil {
		return nil, err
	}

	if u.Kind == UnitType && p.tok.isWord("UNDER") {
		p.next()
		superSchema, super, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		u.SuperType = super
		if superSchema != "" {
			u.SuperType = superSchema + "." + super
		}
		return u, p.parseObjectSpec(u)
	}

	if err := p.expectWord("AS", "IS"); err != nil {
		return nil, err
	}

	if u.Kind == UnitType {
		if p.tok.isWord("OBJECT") {
			p.next()
			return u, p.parseObjectSpec(u)
		}
		u.Definition = p.skipDefinition()
		return u, nil
	}
	return u, p.parseDeclarations(u)
}

func (p *Parser) skipUnitOptions() error {
	for {
		switch {
		case p.tok.isWord("AUTHID"):
			p.next()
			p.next()
		case p.tok.isWord("ACCESSIBLE"):
			p.next()
			if err := p.expectWord("BY"); err != nil {
				return err
			}
			if _, err := p.skipParens(); err != nil {
				return err
			}
		case p.tok.isWord("FORCE"):
			p.next()
		case p.tok.isWord("OID"):
			p.next()
			p.next()
		case p.tok.isWord("SHARING"):
			p.next()
			if p.tok.is("=") {
				p.next()
			}
			p.next()
		case p.tok.isWord("DEFAULT") && p.peek.isWord("COLLATION"):
			p.next()
			p.next()
			p.next()
		default:
			return nil
		}
	}
}

// parseObjectSpec parses "( members ) modifiers" of an object type.
func (p *Parser) parseObjectSpec(u *Unit) error {
	if err := p.expectSymbol("("); err != nil {
		return err
	}
	for !p.tok.is(")") {
		n, err := p.parseMember()
		if err != nil {
			return err
		}
		u.Statements = append(u.Statements, n)
		if p.tok.is(",") {
			p.next()
			continue
		}
		if !p.tok.is(")") {
			return p.errorf("unexpected %s, expected \",\" or \")\"", p.tok)
		}
	}
	p.next()
	// [NOT] FINAL, [NOT] INSTANTIABLE, [NOT] PERSISTABLE
	for p.tok.Kind == TokenIdent {
		p.next()
	}
	if p.tok.is(";") {
		p.next()
	}
	return nil
}

func (p *Parser) parseMember() (Node, error) {
	pos := p.tok.Pos
	quals := p.parseQualifiers()
	if p.tok.isWord("PROCEDURE", "FUNCTION") {
		r, err := p.parseRoutine(quals, false)
		if err != nil {
			return nil, err
		}
		r.Pos = pos
		return r, nil
	}
	if len(quals) > 0 {
		return nil, p.errorf("unexpected %s after %s, expected PROCEDURE or FUNCTION", p.tok, strings.Join(quals, " "))
	}
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &VarDeclList{Pos: pos, Names: []string{name}, Type: typ}, nil
}

func (p *Parser) parseQualifiers() []string {
	var quals []string
	for p.tok.isWord(methodQualifiers...) {
		if p.tok.isWord("NOT") {
			if !p.peek.isWord(methodQualifiers...) {
				break
			}
			p.next()
			quals = append(quals, "NOT "+upper.String(p.tok.Text))
			p.next()
			continue
		}
		quals = append(quals, upper.String(p.tok.Text))
		p.next()
	}
	return quals
}

// ---------- Declarations ----------

func (p *Parser) parseDeclarations(u *Unit) error {
	typeUnit := u.Kind == UnitTypeBody
	for {
		pos := p.tok.Pos
		var n Node
		var err error

		switch {
		case p.tok.Kind == TokenEOF:
			return p.errorf("unexpected end of input, expected END of %s %s", u.Kind, u.Name)
		case p.tok.isWord("END"):
			p.next()
			if p.tok.Kind == TokenIdent || p.tok.Kind == TokenQuotedIdent {
				p.next()
			}
			if p.tok.is(";") {
				p.next()
			}
			return nil
		case p.tok.isWord("BEGIN"):
			start := p.tok.Pos.Offset
			p.next()
			if err := p.skipBlock(); err != nil {
				return err
			}
			u.Statements = append(u.Statements, &OtherStmt{Pos: pos, Text: strings.TrimSpace(p.input[start:p.tok.Pos.Offset])})
			return nil
		case p.tok.is(";"):
			p.next()
			continue
		case p.tok.isWord("PROCEDURE", "FUNCTION"):
			n, err = p.parseRoutine(nil, true)
		case typeUnit && p.tok.isWord(methodQualifiers...):
			quals := p.parseQualifiers()
			n, err = p.parseRoutine(quals, true)
		case p.tok.isWord("CURSOR"):
			n, err = p.parseCursor()
		case p.tok.isWord("TYPE", "SUBTYPE"):
			n, err = p.parseTypeDecl()
		case p.tok.isWord("PRAGMA"):
			var text string
			text, err = p.skipStatement()
			n = &OtherStmt{Pos: pos, Text: text}
		case p.tok.Kind == TokenIdent || p.tok.Kind == TokenQuotedIdent:
			n, err = p.parseVarDecl()
		default:
			return p.errorf("unexpected %s in declaration section of %s", p.tok, u.Name)
		}
		if err != nil {
			return err
		}
		u.Statements = append(u.Statements, n)
	}
}

// parseRoutine parses a PROCEDURE or FUNCTION header and, when allowed,
// skips its body.
func (p *Parser) parseRoutine(quals []string, allowBody bool) (*RoutineDecl, error) {
	r := &RoutineDecl{Pos: p.tok.Pos, IsProc: p.tok.isWord("PROCEDURE"), Qualifiers: quals}
	if err := p.expectWord("PROCEDURE", "FUNCTION"); err != nil {
		return nil, err
	}
	var err error
	if r.Name, err = p.parseName(); err != nil {
		return nil, err
	}
	if p.tok.is("(") {
		if r.Params, err = p.parseParams(); err != nil {
			return nil, err
		}
	}
	if !r.IsProc {
		if err := p.expectWord("RETURN"); err != nil {
			return nil, err
		}
		if p.tok.isWord("SELF") {
			p.next()
			if err := p.expectWord("AS"); err != nil {
				return nil, err
			}
			if err := p.expectWord("RESULT"); err != nil {
				return nil, err
			}
			r.ReturnType = "SELF AS RESULT"
		} else if r.ReturnType, err = p.parseType(returnStops...); err != nil {
			return nil, err
		}
	}

options:
	for {
		switch {
		case p.tok.isWord("USING"):
			p.next()
			if _, _, err := p.parseQualifiedName(); err != nil {
				return nil, err
			}
		case p.tok.isWord(routineOptions...):
			p.next()
			if p.tok.isWord("BY", "CURRENT_USER", "DEFINER") {
				p.next()
			}
			if p.tok.is("(") {
				if _, err := p.skipParens(); err != nil {
					return nil, err
				}
			}
		default:
			break options
		}
	}

	switch {
	case p.tok.is(";"):
		p.next()
	case allowBody && p.tok.isWord("IS", "AS"):
		p.next()
		r.HasBody = true
		if err := p.skipRoutineBody(); err != nil {
			return nil, err
		}
	case !allowBody && (p.tok.is(",") || p.tok.is(")")):
	default:
		return nil, p.errorf("unexpected %s after routine %s", p.tok, r.Name)
	}
	return r, nil
}

func (p *Parser) parseParams() ([]Param, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var params []Param
	for {
		var prm Param
		var err error
		if prm.Name, err = p.parseName(); err != nil {
			return nil, err
		}
		prm.Mode = "IN"
		switch {
		case p.tok.isWord("IN"):
			p.next()
			if p.tok.isWord("OUT") {
				p.next()
				prm.Mode = "IN OUT"
			}
		case p.tok.isWord("OUT"):
			p.next()
			prm.Mode = "OUT"
		}
		if p.tok.isWord("NOCOPY") {
			p.next()
		}
		if prm.Type, err = p.parseType("DEFAULT"); err != nil {
			return nil, err
		}
		if p.tok.is(":=") || p.tok.isWord("DEFAULT") {
			p.next()
			if prm.Default, err = p.skipExpr(); err != nil {
				return nil, err
			}
		}
		params = append(params, prm)

		if p.tok.is(",") {
			p.next()
			continue
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return params, nil
	}
}

func (p *Parser) parseCursor() (*CursorDecl, error) {
	c := &CursorDecl{Pos: p.tok.Pos}
	p.next()
	var err error
	if c.Name, err = p.parseName(); err != nil {
		return nil, err
	}
	if p.tok.is("(") {
		if c.Params, err = p.parseParams(); err != nil {
			return nil, err
		}
	}
	if p.tok.isWord("RETURN") {
		p.next()
		if c.ReturnType, err = p.parseType("IS"); err != nil {
			return nil, err
		}
	}
	if p.tok.isWord("IS") {
		p.next()
		if c.Query, err = p.skipStatement(); err != nil {
			return nil, err
		}
		return c, nil
	}
	return c, p.expectSymbol(";")
}

func (p *Parser) parseTypeDecl() (*TypeDecl, error) {
	t := &TypeDecl{Pos: p.tok.Pos, Subtype: p.tok.isWord("SUBTYPE")}
	p.next()
	var err error
	if t.Name, err = p.parseName(); err != nil {
		return nil, err
	}
	if err := p.expectWord("IS", "AS"); err != nil {
		return nil, err
	}
	if t.Definition, err = p.skipStatement(); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Parser) parseVarDecl() (*VarDeclList, error) {
	v := &VarDeclList{Pos: p.tok.Pos}
	for {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		v.Names = append(v.Names, name)
		if !p.tok.is(",") {
			break
		}
		p.next()
	}
	if p.tok.isWord("CONSTANT") {
		v.Constant = true
		p.next()
	}
	var err error
	if v.Type, err = p.parseType("DEFAULT", "NOT"); err != nil {
		return nil, err
	}
	if p.tok.isWord("NOT") {
		p.next()
		if err := p.expectWord("NULL"); err != nil {
			return nil, err
		}
		v.NotNull = true
	}
	if p.tok.is(":=") || p.tok.isWord("DEFAULT") {
		p.next()
		if v.Default, err = p.skipStatement(); err != nil {
			return nil, err
		}
		return v, nil
	}
	return v, p.expectSymbol(";")
}

// ---------- Types, Expressions and Blocks ----------

// parseType reads a type reference up to a delimiter at paren depth 0:
// , ) ; := or one of the stop words.
func (p *Parser) parseType(stopWords ...string) (string, error) {
	var parts []Token
	depth := 0
	for {
		t := p.tok
		if t.Kind == TokenEOF {
			return "", p.errorf("unexpected end of input in type")
		}
		if depth == 0 && (t.is(",") || t.is(")") || t.is(";") || t.is(":=") || t.isWord(stopWords...)) {
			break
		}
		switch {
		case t.is("("):
			depth++
		case t.is(")"):
			depth--
		}
		parts = append(parts, t)
		p.next()
	}
	if len(parts) == 0 {
		return "", p.errorf("unexpected %s, expected type", p.tok)
	}
	return renderType(parts), nil
}

// renderType joins type tokens: words are upper-cased and separated by
// single spaces, punctuation is kept tight.
func renderType(toks []Token) string {
	var b strings.Builder
	var prev Token
	for i, t := range toks {
		text := t.Text
		switch t.Kind {
		case TokenIdent:
			text = upper.String(text)
		case TokenQuotedIdent:
			text = `"` + text + `"`
		case TokenString:
			text = "'" + strings.ReplaceAll(text, "'", "''") + "'"
		}
		if i > 0 && wordish(t) && (wordish(prev) || prev.is(")")) {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		prev = t
	}
	return b.String()
}

func wordish(t Token) bool {
	switch t.Kind {
	case TokenIdent, TokenQuotedIdent, TokenNumber, TokenString:
		return true
	}
	return false
}

// skipExpr skips a default expression inside a parameter list and returns
// its text. It stops before , or ) at depth 0.
func (p *Parser) skipExpr() (string, error) {
	start := p.tok.Pos.Offset
	depth := 0
	for {
		if p.tok.Kind == TokenEOF {
			return "", p.errorf("unexpected end of input in expression")
		}
		if depth == 0 && (p.tok.is(",") || p.tok.is(")")) {
			return strings.TrimSpace(p.input[start:p.tok.Pos.Offset]), nil
		}
		switch {
		case p.tok.is("("):
			depth++
		case p.tok.is(")"):
			depth--
		}
		p.next()
	}
}

// skipStatement skips to the terminating semicolon at paren depth 0 and
// returns the statement text with whitespace collapsed.
func (p *Parser) skipStatement() (string, error) {
	start := p.tok.Pos.Offset
	depth := 0
	for {
		switch {
		case p.tok.Kind == TokenEOF:
			return "", p.errorf("unexpected end of input, expected \";\"")
		case p.tok.is("("):
			depth++
		case p.tok.is(")"):
			depth--
		case p.tok.is(";") && depth <= 0:
			text := strings.Join(strings.Fields(p.input[start:p.tok.Pos.Offset]), " ")
			p.next()
			return text, nil
		}
		p.next()
	}
}

// skipDefinition consumes a collection or record type definition. Dictionary
// source for such types often lacks the closing semicolon, so end of input
// and "/" also terminate it.
func (p *Parser) skipDefinition() string {
	start := p.tok.Pos.Offset
	depth := 0
	for p.tok.Kind != TokenEOF && !(depth <= 0 && (p.tok.is(";") || p.tok.is("/"))) {
		switch {
		case p.tok.is("("):
			depth++
		case p.tok.is(")"):
			depth--
		}
		p.next()
	}
	text := strings.Join(strings.Fields(p.input[start:p.tok.Pos.Offset]), " ")
	if p.tok.is(";") {
		p.next()
	}
	return text
}

func (p *Parser) skipParens() (string, error) {
	start := p.tok.Pos.Offset
	if err := p.expectSymbol("("); err != nil {
		return "", err
	}
	depth := 1
	for depth > 0 {
		switch {
		case p.tok.Kind == TokenEOF:
			return "", p.errorf("unexpected end of input, expected \")\"")
		case p.tok.is("("):
			depth++
		case p.tok.is(")"):
			depth--
		}
		p.next()
	}
	return p.input[start:p.tok.Pos.Offset], nil
}

// skipRoutineBody skips the declaration section and block of a routine
// body. Nested routines are parsed recursively so their blocks do not end
// the enclosing one.
func (p *Parser) skipRoutineBody() error {
	if p.tok.isWord("LANGUAGE", "EXTERNAL") {
		_, err := p.skipStatement()
		return err
	}
	for {
		switch {
		case p.tok.Kind == TokenEOF:
			return p.errorf("unexpected end of input in routine body")
		case p.tok.isWord("PROCEDURE", "FUNCTION"):
			if _, err := p.parseRoutine(nil, true); err != nil {
				return err
			}
		case p.tok.isWord("BEGIN"):
			p.next()
			return p.skipBlock()
		default:
			p.next()
		}
	}
}

// skipBlock skips to the END matching an already consumed BEGIN, including
// the optional label and semicolon. CASE opens a level closed by END or
// END CASE; END IF and END LOOP close nothing counted here.
func (p *Parser) skipBlock() error {
	depth := 1
	for depth > 0 {
		switch {
		case p.tok.Kind == TokenEOF:
			return p.errorf("unexpected end of input, expected END")
		case p.tok.isWord("BEGIN", "CASE"):
			depth++
			p.next()
		case p.tok.isWord("END"):
			p.next()
			switch {
			case p.tok.isWord("IF", "LOOP"):
				p.next()
			case p.tok.isWord("CASE"):
				depth--
				p.next()
			default:
				depth--
			}
		default:
			p.next()
		}
	}
	if p.tok.Kind == TokenIdent || p.tok.Kind == TokenQuotedIdent {
		p.next()
	}
	if p.tok.is(";") {
		p.next()
	}
	return nil
}
