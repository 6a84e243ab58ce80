package catalog

import (
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/query"
)

// Dictionary supplies the backend requests that populate the graph. A method
// returning an empty request marks the kind unsupported by the backend; the
// cache then treats it as having no objects.
type Dictionary interface {
	// Schemas lists the schemas of the database.
	Schemas() query.Request
	// Principals lists users and roles.
	Principals() query.Request
	// List loads every object of kind in schema.
	List(kind core.Kind, schema string) query.Request
	// Lookup loads one object of kind by normalized name.
	Lookup(kind core.Kind, schema, name string) query.Request
	// Children loads the child rows of parent objects: columns of tables and
	// views, attributes of types, constraints, foreign keys and indexes of
	// tables. An empty parentName requests the children of every parent.
	Children(parent, child core.Kind, schema, parentName string) query.Request
	// Source loads the declaration text of a package or type, one row per line.
	Source(kind core.Kind, schema, name string) query.Request
}

// Result column names every Dictionary request must produce. Column lookup
// is case-insensitive.
const (
	ColName           = "NAME"
	ColParent         = "PARENT_NAME"
	ColComments       = "COMMENTS"
	ColStatus         = "STATUS"
	ColDataType       = "DATA_TYPE"
	ColPosition       = "POSITION"
	ColNullable       = "NULLABLE"
	ColDefault        = "DEFAULT_VALUE"
	ColColumn         = "COLUMN_NAME"
	ColColumns        = "COLUMNS"
	ColDescending     = "DESCEND"
	ColConstraintType = "CONSTRAINT_TYPE"
	ColCondition      = "CONDITION"
	ColRefSchema      = "REF_SCHEMA"
	ColRefConstraint  = "REF_CONSTRAINT"
	ColDeleteRule     = "DELETE_RULE"
	ColUnique         = "IS_UNIQUE"
	ColIndexType      = "INDEX_TYPE"
	ColTiming         = "TIMING"
	ColEvent          = "EVENT"
	ColBody           = "BODY"
	ColText           = "TEXT"
	ColTemporary      = "TEMPORARY"
	ColQuery          = "QUERY"
	ColRefreshMode    = "REFRESH_MODE"
	ColMinValue       = "MIN_VALUE"
	ColMaxValue       = "MAX_VALUE"
	ColIncrement      = "INCREMENT_BY"
	ColCycle          = "CYCLE"
	ColLastValue      = "LAST_VALUE"
	ColTargetSchema   = "TARGET_SCHEMA"
	ColTargetName     = "TARGET_NAME"
	ColDBLink         = "DB_LINK"
	ColTypeCode       = "TYPE_CODE"
	ColSuperSchema    = "SUPER_SCHEMA"
	ColSuperName      = "SUPER_NAME"
	ColFinal          = "FINAL"
	ColHasBody        = "HAS_BODY"
	ColUsername       = "USERNAME"
	ColHost           = "HOST"
	ColIsRole         = "IS_ROLE"
	ColBindings       = "BINDINGS"
)
