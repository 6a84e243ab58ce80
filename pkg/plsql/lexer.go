package plsql

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenKind classifies a token.
type TokenKind int

// Token kinds.
const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenQuotedIdent
	TokenNumber
	TokenString
	TokenSymbol
	TokenIllegal
)

var tokenKindNames = [...]string{
	TokenEOF:         "end of input",
	TokenIdent:       "identifier",
	TokenQuotedIdent: "quoted identifier",
	TokenNumber:      "number",
	TokenString:      "string",
	TokenSymbol:      "symbol",
	TokenIllegal:     "illegal character",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Position is a location in the source.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // byte offset
}

// Token is one lexical token.
type Token struct {
	Kind TokenKind
	Text string // identifiers keep their source spelling, quotes stripped
	Pos  Position
	End  int // byte offset after the token
}

// is reports whether the token is the given symbol.
func (t Token) is(sym string) bool {
	return t.Kind == TokenSymbol && t.Text == sym
}

// isWord reports whether the token is the unquoted word w (case-insensitive).
func (t Token) isWord(words ...string) bool {
	if t.Kind != TokenIdent {
		return false
	}
	for _, w := range words {
		if strings.EqualFold(t.Text, w) {
			return true
		}
	}
	return false
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// multi-character symbols, longest first
var symbols = []string{":=", "=>", "..", "||", "<=", ">=", "<>", "!=", "**"}

// Lexer tokenizes program-unit source text.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int
	col     int
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.pos > 0 && l.pos <= len(l.input) && l.input[l.pos-1] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// Next returns the next token. Comments and whitespace are skipped.
func (l *Lexer) Next() Token {
	l.skipWhitespaceAndComments()
	pos := l.currentPos()

	switch {
	case l.ch == 0:
		return Token{Kind: TokenEOF, Pos: pos, End: len(l.input)}
	case l.ch == '\'':
		return l.finish(TokenString, l.readString(), pos)
	case l.ch == '"':
		return l.finish(TokenQuotedIdent, l.readQuotedIdentifier(), pos)
	case isLetter(l.ch):
		return l.finish(TokenIdent, l.readIdentifier(), pos)
	case isDigit(l.ch):
		return l.finish(TokenNumber, l.readNumber(), pos)
	}

	rest := l.input[l.pos:]
	for _, sym := range symbols {
		if strings.HasPrefix(rest, sym) {
			for range sym {
				l.readChar()
			}
			return l.finish(TokenSymbol, sym, pos)
		}
	}
	ch := l.ch
	l.readChar()
	if strings.IndexByte("()[],;.:%=<>+-*/@&|", ch) >= 0 {
		return l.finish(TokenSymbol, string(ch), pos)
	}
	return l.finish(TokenIllegal, string(ch), pos)
}

func (l *Lexer) finish(kind TokenKind, text string, pos Position) Token {
	return Token{Kind: kind, Text: text, Pos: pos, End: l.pos}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			for l.ch != 0 && (l.ch != '*' || l.peekChar() != '/') {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
			continue
		}
		return
	}
}

// readString reads a single-quoted literal; doubled quotes are unescaped.
func (l *Lexer) readString() string {
	l.readChar()
	var b strings.Builder
	for l.ch != 0 {
		if l.ch == '\'' {
			if l.peekChar() != '\'' {
				l.readChar()
				break
			}
			l.readChar()
		}
		b.WriteByte(l.ch)
		l.readChar()
	}
	return b.String()
}

// readQuotedIdentifier reads a double-quoted identifier.
func (l *Lexer) readQuotedIdentifier() string {
	l.readChar()
	var b strings.Builder
	for l.ch != 0 {
		if l.ch == '"' {
			if l.peekChar() != '"' {
				l.readChar()
				break
			}
			l.readChar()
		}
		b.WriteByte(l.ch)
		l.readChar()
	}
	return b.String()
}

// readIdentifier reads an unquoted identifier. $ and # are legal after the
// first character.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' || l.ch == '#' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	// 1..10 is a range, not a decimal
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return ch >= 0x80 || unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns every token of input including the trailing EOF.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var out []Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Kind == TokenEOF {
			return out
		}
	}
}
