package plsql

// File is the result of parsing one source string.
type File struct {
	Units []*Unit
}

// UnitKind is the kind of a top-level program unit.
type UnitKind string

// Unit kinds.
const (
	UnitPackage     UnitKind = "PACKAGE"
	UnitPackageBody UnitKind = "PACKAGE BODY"
	UnitType        UnitKind = "TYPE"
	UnitTypeBody    UnitKind = "TYPE BODY"
)

// Unit is a package, object type or their bodies.
type Unit struct {
	Pos    Position
	Kind   UnitKind
	Schema string
	Name   string
	// SuperType is set for "TYPE t UNDER super".
	SuperType string
	// Definition holds the text after AS/IS for collection and record types
	// that have no member list.
	Definition string
	Statements []Node
}

// Node is one statement of a unit's declaration list.
type Node interface {
	Position() Position
	node()
}

// Param is a formal routine parameter.
type Param struct {
	Name    string
	Mode    string // IN, OUT, IN OUT
	Type    string
	Default string
}

// RoutineDecl declares a procedure or function, with or without a body.
type RoutineDecl struct {
	Pos        Position
	Name       string
	IsProc     bool
	Params     []Param
	ReturnType string
	// Qualifiers holds MEMBER, STATIC, CONSTRUCTOR, MAP, ORDER, OVERRIDING
	// and similar prefixes of object type methods.
	Qualifiers []string
	HasBody    bool
}

// TypeDecl declares a nested TYPE or SUBTYPE.
type TypeDecl struct {
	Pos        Position
	Name       string
	Subtype    bool
	Definition string
}

// CursorDecl declares an explicit cursor.
type CursorDecl struct {
	Pos        Position
	Name       string
	Params     []Param
	ReturnType string
	Query      string
}

// VarDeclList declares one or more variables, constants, exceptions or
// object type attributes sharing a type.
type VarDeclList struct {
	Pos      Position
	Names    []string
	Type     string
	Constant bool
	NotNull  bool
	Default  string
}

// OtherStmt is any statement without structure of interest, such as a pragma
// or an initialization block.
type OtherStmt struct {
	Pos  Position
	Text string
}

func (n *RoutineDecl) Position() Position { return n.Pos }
func (n *TypeDecl) Position() Position    { return n.Pos }
func (n *CursorDecl) Position() Position  { return n.Pos }
func (n *VarDeclList) Position() Position { return n.Pos }
func (n *OtherStmt) Position() Position   { return n.Pos }

func (*RoutineDecl) node() {}
func (*TypeDecl) node()    {}
func (*CursorDecl) node()  {}
func (*VarDeclList) node() {}
func (*OtherStmt) node()   {}
