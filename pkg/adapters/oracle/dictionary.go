package oracle

import (
	"fmt"

	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/query"
)

// Dictionary renders catalog requests against the ALL_* views. Every
// statement binds the owner as :1 and, for lookups, the name as :2.
type Dictionary struct{}

var listings = map[core.Kind]adapter.Listing{
	core.KindTable: {
		Select: `
SELECT t.TABLE_NAME AS NAME, c.COMMENTS, t.STATUS, t.TEMPORARY
FROM ALL_TABLES t
LEFT JOIN ALL_TAB_COMMENTS c ON c.OWNER = t.OWNER AND c.TABLE_NAME = t.TABLE_NAME
WHERE t.OWNER = :1 AND t.NESTED = 'NO' AND t.SECONDARY = 'N'`,
		Key:     "t.TABLE_NAME",
		OrderBy: "t.TABLE_NAME",
	},
	core.KindView: {
		Select: `
SELECT v.VIEW_NAME AS NAME, v.TEXT, c.COMMENTS, o.STATUS
FROM ALL_VIEWS v
JOIN ALL_OBJECTS o ON o.OWNER = v.OWNER AND o.OBJECT_NAME = v.VIEW_NAME AND o.OBJECT_TYPE = 'VIEW'
LEFT JOIN ALL_TAB_COMMENTS c ON c.OWNER = v.OWNER AND c.TABLE_NAME = v.VIEW_NAME
WHERE v.OWNER = :1`,
		Key:     "v.VIEW_NAME",
		OrderBy: "v.VIEW_NAME",
	},
	core.KindMaterializedView: {
		Select: `
SELECT m.MVIEW_NAME AS NAME, m.QUERY, m.REFRESH_MODE, c.COMMENTS, m.COMPILE_STATE AS STATUS
FROM ALL_MVIEWS m
LEFT JOIN ALL_MVIEW_COMMENTS c ON c.OWNER = m.OWNER AND c.MVIEW_NAME = m.MVIEW_NAME
WHERE m.OWNER = :1`,
		Key:     "m.MVIEW_NAME",
		OrderBy: "m.MVIEW_NAME",
	},
	core.KindTrigger: {
		Select: `
SELECT TRIGGER_NAME AS NAME, TABLE_NAME AS PARENT_NAME, TRIGGER_TYPE AS TIMING,
       TRIGGERING_EVENT AS EVENT, TRIGGER_BODY AS BODY, STATUS
FROM ALL_TRIGGERS
WHERE OWNER = :1 AND BASE_OBJECT_TYPE IN ('TABLE', 'VIEW')`,
		Key:     "TRIGGER_NAME",
		OrderBy: "TRIGGER_NAME",
	},
	core.KindSequence: {
		Select: `
SELECT SEQUENCE_NAME AS NAME, TO_CHAR(MIN_VALUE) AS MIN_VALUE, TO_CHAR(MAX_VALUE) AS MAX_VALUE,
       INCREMENT_BY, CYCLE_FLAG AS CYCLE, TO_CHAR(LAST_NUMBER) AS LAST_VALUE
FROM ALL_SEQUENCES
WHERE SEQUENCE_OWNER = :1`,
		Key:     "SEQUENCE_NAME",
		OrderBy: "SEQUENCE_NAME",
	},
	core.KindSynonym: {
		Select: `
SELECT SYNONYM_NAME AS NAME, TABLE_OWNER AS TARGET_SCHEMA, TABLE_NAME AS TARGET_NAME, DB_LINK
FROM ALL_SYNONYMS
WHERE OWNER = :1`,
		Key:     "SYNONYM_NAME",
		OrderBy: "SYNONYM_NAME",
	},
	core.KindPackage: {
		Select: `
SELECT o.OBJECT_NAME AS NAME, o.STATUS,
       CASE WHEN EXISTS (
         SELECT 1 FROM ALL_OBJECTS b
         WHERE b.OWNER = o.OWNER AND b.OBJECT_NAME = o.OBJECT_NAME AND b.OBJECT_TYPE = 'PACKAGE BODY'
       ) THEN 'Y' ELSE 'N' END AS HAS_BODY
FROM ALL_OBJECTS o
WHERE o.OWNER = :1 AND o.OBJECT_TYPE = 'PACKAGE'`,
		Key:     "o.OBJECT_NAME",
		OrderBy: "o.OBJECT_NAME",
	},
	core.KindType: {
		Select: `
SELECT TYPE_NAME AS NAME, TYPECODE AS TYPE_CODE, SUPERTYPE_OWNER AS SUPER_SCHEMA,
       SUPERTYPE_NAME AS SUPER_NAME, FINAL
FROM ALL_TYPES
WHERE OWNER = :1`,
		Key:     "TYPE_NAME",
		OrderBy: "TYPE_NAME",
	},
	core.KindDBLink: {
		Select: `
SELECT DB_LINK AS NAME, USERNAME, HOST
FROM ALL_DB_LINKS
WHERE OWNER = :1`,
		Key:     "DB_LINK",
		OrderBy: "DB_LINK",
	},
	core.KindOperator: {
		Select: `
SELECT OPERATOR_NAME AS NAME, NUMBER_OF_BINDS AS BINDINGS
FROM ALL_OPERATORS
WHERE OWNER = :1`,
		Key:     "OPERATOR_NAME",
		OrderBy: "OPERATOR_NAME",
	},
}

const columnSelect = `
SELECT c.TABLE_NAME AS PARENT_NAME, c.COLUMN_NAME AS NAME,
       CASE
         WHEN c.DATA_TYPE IN ('VARCHAR2', 'NVARCHAR2', 'CHAR', 'NCHAR')
           THEN c.DATA_TYPE || '(' || c.CHAR_LENGTH || ')'
         WHEN c.DATA_TYPE = 'RAW' THEN 'RAW(' || c.DATA_LENGTH || ')'
         WHEN c.DATA_TYPE = 'NUMBER' AND c.DATA_PRECISION IS NOT NULL
           THEN 'NUMBER(' || c.DATA_PRECISION || ',' || NVL(c.DATA_SCALE, 0) || ')'
         ELSE c.DATA_TYPE
       END AS DATA_TYPE,
       c.COLUMN_ID AS POSITION, c.NULLABLE, c.DATA_DEFAULT AS DEFAULT_VALUE, m.COMMENTS
FROM ALL_TAB_COLUMNS c
JOIN %s p ON p.OWNER = c.OWNER AND p.%s = c.TABLE_NAME
LEFT JOIN ALL_COL_COMMENTS m
  ON m.OWNER = c.OWNER AND m.TABLE_NAME = c.TABLE_NAME AND m.COLUMN_NAME = c.COLUMN_NAME
WHERE c.OWNER = :1`

type childKey struct {
	parent, child core.Kind
}

var children = map[childKey]adapter.Listing{
	{core.KindTable, core.KindColumn}: {
		Select:  columnsOf("ALL_TABLES", "TABLE_NAME"),
		Key:     "c.TABLE_NAME",
		OrderBy: "c.TABLE_NAME, c.COLUMN_ID",
	},
	{core.KindView, core.KindColumn}: {
		Select:  columnsOf("ALL_VIEWS", "VIEW_NAME"),
		Key:     "c.TABLE_NAME",
		OrderBy: "c.TABLE_NAME, c.COLUMN_ID",
	},
	{core.KindType, core.KindTypeAttribute}: {
		Select: `
SELECT TYPE_NAME AS PARENT_NAME, ATTR_NAME AS NAME,
       CASE
         WHEN LENGTH IS NOT NULL THEN ATTR_TYPE_NAME || '(' || LENGTH || ')'
         WHEN PRECISION IS NOT NULL THEN ATTR_TYPE_NAME || '(' || PRECISION || ',' || NVL(SCALE, 0) || ')'
         ELSE ATTR_TYPE_NAME
       END AS DATA_TYPE,
       ATTR_NO AS POSITION
FROM ALL_TYPE_ATTRS
WHERE OWNER = :1`,
		Key:     "TYPE_NAME",
		OrderBy: "TYPE_NAME, ATTR_NO",
	},
	{core.KindTable, core.KindConstraint}: {
		Select: `
SELECT k.TABLE_NAME AS PARENT_NAME, k.CONSTRAINT_NAME AS NAME, k.CONSTRAINT_TYPE,
       k.SEARCH_CONDITION_VC AS CONDITION, k.STATUS, cc.COLUMN_NAME, cc.POSITION
FROM ALL_CONSTRAINTS k
LEFT JOIN ALL_CONS_COLUMNS cc ON cc.OWNER = k.OWNER AND cc.CONSTRAINT_NAME = k.CONSTRAINT_NAME
WHERE k.OWNER = :1 AND k.CONSTRAINT_TYPE IN ('P', 'U', 'C')
  AND k.CONSTRAINT_NAME NOT LIKE 'SYS\_C%' ESCAPE '\'`,
		Key:     "k.TABLE_NAME",
		OrderBy: "k.TABLE_NAME, k.CONSTRAINT_NAME, cc.POSITION",
	},
	{core.KindTable, core.KindForeignKey}: {
		Select: `
SELECT k.TABLE_NAME AS PARENT_NAME, k.CONSTRAINT_NAME AS NAME, k.R_OWNER AS REF_SCHEMA,
       k.R_CONSTRAINT_NAME AS REF_CONSTRAINT, k.DELETE_RULE, k.STATUS, cc.COLUMN_NAME, cc.POSITION
FROM ALL_CONSTRAINTS k
JOIN ALL_CONS_COLUMNS cc ON cc.OWNER = k.OWNER AND cc.CONSTRAINT_NAME = k.CONSTRAINT_NAME
WHERE k.OWNER = :1 AND k.CONSTRAINT_TYPE = 'R'`,
		Key:     "k.TABLE_NAME",
		OrderBy: "k.TABLE_NAME, k.CONSTRAINT_NAME, cc.POSITION",
	},
	{core.KindTable, core.KindIndex}: {
		Select: `
SELECT i.TABLE_NAME AS PARENT_NAME, i.INDEX_NAME AS NAME,
       CASE i.UNIQUENESS WHEN 'UNIQUE' THEN 'Y' ELSE 'N' END AS IS_UNIQUE,
       i.INDEX_TYPE, i.STATUS,
       LISTAGG(ic.COLUMN_NAME || ':' || ic.COLUMN_POSITION, ',')
         WITHIN GROUP (ORDER BY ic.COLUMN_POSITION) AS COLUMNS
FROM ALL_INDEXES i
JOIN ALL_IND_COLUMNS ic ON ic.INDEX_OWNER = i.OWNER AND ic.INDEX_NAME = i.INDEX_NAME
WHERE i.OWNER = :1 AND i.TABLE_OWNER = i.OWNER AND i.INDEX_TYPE <> 'LOB'`,
		Key:     "i.TABLE_NAME",
		GroupBy: "i.TABLE_NAME, i.INDEX_NAME, i.UNIQUENESS, i.INDEX_TYPE, i.STATUS",
		OrderBy: "i.TABLE_NAME, i.INDEX_NAME",
	},
}

func columnsOf(view, nameColumn string) string {
	return fmt.Sprintf(columnSelect, view, nameColumn)
}

// Schemas lists the database users.
func (Dictionary) Schemas() query.Request {
	return query.NewRequest(`SELECT USERNAME AS NAME FROM ALL_USERS ORDER BY USERNAME`)
}

// Principals lists users and the roles granted to the session.
func (Dictionary) Principals() query.Request {
	return query.NewRequest(`
SELECT USERNAME AS NAME, 'N' AS IS_ROLE FROM ALL_USERS
UNION ALL
SELECT ROLE AS NAME, 'Y' AS IS_ROLE FROM SESSION_ROLES
ORDER BY 1`)
}

// List loads every object of kind in schema.
func (Dictionary) List(kind core.Kind, schema string) query.Request {
	l, ok := listings[kind]
	if !ok {
		return query.Request{}
	}
	return l.All(schema)
}

// Lookup loads one object of kind by name.
func (Dictionary) Lookup(kind core.Kind, schema, name string) query.Request {
	l, ok := listings[kind]
	if !ok {
		return query.Request{}
	}
	return l.Filtered(":2", schema, name)
}

// Children loads child rows of one parent, or of every parent when parentName
// is empty.
func (Dictionary) Children(parent, child core.Kind, schema, parentName string) query.Request {
	l, ok := children[childKey{parent, child}]
	if !ok {
		return query.Request{}
	}
	if parentName == "" {
		return l.All(schema)
	}
	return l.Filtered(":2", schema, parentName)
}

// Source loads the declaration of a package or type from ALL_SOURCE.
func (Dictionary) Source(kind core.Kind, schema, name string) query.Request {
	switch kind {
	case core.KindPackage, core.KindType:
		return query.NewRequest(`
SELECT TEXT FROM ALL_SOURCE
WHERE OWNER = :1 AND NAME = :2 AND TYPE = :3
ORDER BY LINE`, schema, name, string(kind))
	default:
		return query.Request{}
	}
}
