package core

// Variable is a package-level variable, constant or cursor declaration.
type Variable struct {
	Name string
	Type string
}

// Parameter is a formal parameter of a routine. The synthetic return value of
// a function is represented as a parameter with IsReturn set.
type Parameter struct {
	Name     string
	Type     string
	Mode     string
	IsReturn bool
}

// Procedure is a declared procedure.
type Procedure struct {
	Name   string
	Params []Parameter
}

// Function is a declared function. Params[0] is the synthetic RETURN parameter.
type Function struct {
	Name   string
	Params []Parameter
}

// ReturnType returns the declared return type of the function.
func (f Function) ReturnType() string {
	if len(f.Params) > 0 && f.Params[0].IsReturn {
		return f.Params[0].Type
	}
	return ""
}

// NestedType is a type declared inside a package or object type.
type NestedType struct {
	Name string
}

// Declarations groups the sub-entities derived from one program-unit source.
// Identity of the elements is positional.
type Declarations struct {
	Variables   []Variable
	Procedures  []Procedure
	Functions   []Function
	NestedTypes []NestedType
}

// IsEmpty reports whether nothing was extracted.
func (d Declarations) IsEmpty() bool {
	return len(d.Variables) == 0 && len(d.Procedures) == 0 &&
		len(d.Functions) == 0 && len(d.NestedTypes) == 0
}
