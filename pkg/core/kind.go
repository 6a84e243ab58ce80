package core

import "strings"

// Kind identifies a catalog object kind.
type Kind string

// Catalog object kinds.
const (
	KindDatabase         Kind = "DATABASE"
	KindSchema           Kind = "SCHEMA"
	KindTable            Kind = "TABLE"
	KindView             Kind = "VIEW"
	KindMaterializedView Kind = "MATERIALIZED VIEW"
	KindColumn           Kind = "COLUMN"
	KindIndex            Kind = "INDEX"
	KindConstraint       Kind = "CONSTRAINT"
	KindForeignKey       Kind = "FOREIGN KEY"
	KindTrigger          Kind = "TRIGGER"
	KindSequence         Kind = "SEQUENCE"
	KindSynonym          Kind = "SYNONYM"
	KindPackage          Kind = "PACKAGE"
	KindType             Kind = "TYPE"
	KindTypeAttribute    Kind = "TYPE ATTRIBUTE"
	KindDBLink           Kind = "DATABASE LINK"
	KindDomain           Kind = "DOMAIN"
	KindOperator         Kind = "OPERATOR"
	KindPrincipal        Kind = "PRINCIPAL"
)

// Capabilities is the static capability descriptor of an object kind.
// It replaces probing objects at runtime for optional collections.
type Capabilities struct {
	Comment      bool // object carries a comment
	Attributes   bool // object exposes ordered attributes (columns, type attributes)
	Methods      bool // object exposes declared routines (packages, object types)
	Source       bool // object has a textual declaration fetched from the backend
	Dependencies bool // object may own foreign keys, triggers or indexes
	DDL          bool // backend can describe the object through a metadata function
}

// Capabilities returns the descriptor for the kind.
func (k Kind) Capabilities() Capabilities {
	switch k {
	case KindTable:
		return Capabilities{Comment: true, Attributes: true, Dependencies: true, DDL: true}
	case KindView:
		return Capabilities{Comment: true, Attributes: true, Source: true, Dependencies: true, DDL: true}
	case KindMaterializedView:
		return Capabilities{Comment: true, Source: true, Dependencies: true, DDL: true}
	case KindPackage:
		return Capabilities{Methods: true, Source: true, DDL: true}
	case KindType:
		return Capabilities{Attributes: true, Methods: true, Source: true, DDL: true}
	case KindSequence, KindSynonym, KindTrigger, KindIndex, KindDBLink, KindConstraint, KindForeignKey:
		return Capabilities{DDL: true}
	case KindColumn, KindTypeAttribute:
		return Capabilities{Comment: true}
	case KindDomain, KindOperator:
		return Capabilities{Comment: true, DDL: true}
	default:
		return Capabilities{}
	}
}

// ParseKind converts user input such as "table" or "materialized_view" to a Kind.
func ParseKind(s string) (Kind, bool) {
	normalized := strings.ToUpper(strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s)))
	for _, k := range ListableKinds() {
		if string(k) == normalized {
			return k, true
		}
	}
	switch normalized {
	case "MVIEW":
		return KindMaterializedView, true
	case "DBLINK", "LINK":
		return KindDBLink, true
	case "FK":
		return KindForeignKey, true
	}
	return "", false
}

// ListableKinds returns the kinds a schema can enumerate, in display order.
func ListableKinds() []Kind {
	return []Kind{
		KindTable, KindView, KindMaterializedView, KindIndex, KindConstraint,
		KindForeignKey, KindTrigger, KindSequence, KindSynonym, KindPackage,
		KindType, KindDBLink, KindDomain, KindOperator,
	}
}

// DependentKind names a kind of dependent object appended to a DDL text.
type DependentKind string

// Dependent object kinds.
const (
	DependentForeignKeys DependentKind = "REF_CONSTRAINT"
	DependentTriggers    DependentKind = "TRIGGER"
	DependentIndexes     DependentKind = "INDEX"
)

// ObjectState is the validity state reported by the backend.
type ObjectState int

// Object states.
const (
	StateNormal ObjectState = iota
	StateInvalid
)

// String returns the state name.
func (s ObjectState) String() string {
	if s == StateInvalid {
		return "INVALID"
	}
	return "NORMAL"
}

// ParseObjectState maps backend status strings (VALID, INVALID, ENABLED, ...) to a state.
func ParseObjectState(status string) ObjectState {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "INVALID", "DISABLED", "UNUSABLE", "ERROR":
		return StateInvalid
	default:
		return StateNormal
	}
}
