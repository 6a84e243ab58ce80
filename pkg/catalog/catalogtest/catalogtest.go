// Package catalogtest provides an in-memory dictionary and a small HR schema
// fixture for tests of the catalog graph and its consumers.
package catalogtest

import (
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/query"
	"github.com/leapstack-labs/leapcat/pkg/query/querytest"
)

// Request texts produced by Dictionary.
const (
	SchemasSQL    = "SCHEMAS"
	PrincipalsSQL = "PRINCIPALS"
)

// ListSQL is the request text of a full listing.
func ListSQL(kind core.Kind) string { return "LIST " + string(kind) }

// LookupSQL is the request text of a targeted lookup.
func LookupSQL(kind core.Kind) string { return "LOOKUP " + string(kind) }

// ChildrenSQL is the request text of a child listing for every parent.
func ChildrenSQL(parent, child core.Kind) string {
	return "CHILDREN " + string(parent) + " " + string(child)
}

// ChildrenForSQL is the request text of a child listing for one parent.
func ChildrenForSQL(parent, child core.Kind) string {
	return ChildrenSQL(parent, child) + " FOR"
}

// SourceSQL is the request text of a source fetch.
func SourceSQL(kind core.Kind) string { return "SOURCE " + string(kind) }

// Dictionary renders every request as a readable keyword string. Arguments
// are the schema followed by the object or parent name.
type Dictionary struct {
	// Unsupported kinds produce empty requests.
	Unsupported map[core.Kind]bool
	// NoLookup makes every targeted lookup unsupported.
	NoLookup bool
}

func (d Dictionary) Schemas() query.Request    { return query.NewRequest(SchemasSQL) }
func (d Dictionary) Principals() query.Request { return query.NewRequest(PrincipalsSQL) }

func (d Dictionary) List(kind core.Kind, schema string) query.Request {
	if d.Unsupported[kind] {
		return query.Request{}
	}
	return query.NewRequest(ListSQL(kind), schema)
}

func (d Dictionary) Lookup(kind core.Kind, schema, name string) query.Request {
	if d.Unsupported[kind] || d.NoLookup {
		return query.Request{}
	}
	return query.NewRequest(LookupSQL(kind), schema, name)
}

func (d Dictionary) Children(parent, child core.Kind, schema, parentName string) query.Request {
	if d.Unsupported[child] {
		return query.Request{}
	}
	if parentName == "" {
		return query.NewRequest(ChildrenSQL(parent, child), schema)
	}
	return query.NewRequest(ChildrenForSQL(parent, child), schema, parentName)
}

func (d Dictionary) Source(kind core.Kind, schema, name string) query.Request {
	if d.Unsupported[kind] {
		return query.Request{}
	}
	return query.NewRequest(SourceSQL(kind), schema, name)
}

// PackageSource is the specification of HR.EMP_API in the fixture.
const PackageSource = `PACKAGE emp_api AS
  g_version CONSTANT VARCHAR2(10) := '1.0';
  CURSOR c_active IS SELECT id FROM emp;
  TYPE emp_tab IS TABLE OF emp%ROWTYPE;
  PROCEDURE hire(p_name IN VARCHAR2, p_dept IN NUMBER);
  FUNCTION headcount(p_dept NUMBER) RETURN NUMBER;
END emp_api;`

// HR registers an HR schema with EMP and DEPT tables, their keys, an index,
// a trigger, two synonyms, a type hierarchy and one package.
func HR(stub *querytest.Stub) *querytest.Stub {
	stub.OnRows(SchemasSQL, []string{"NAME"}, []any{"HR"}, []any{"SALES"})
	stub.OnRows(PrincipalsSQL, []string{"NAME", "IS_ROLE"},
		[]any{"SYS", "N"}, []any{"APP_USER", "N"}, []any{"REPORTING", "Y"}, []any{"SYSTEM", "N"})

	tables := querytest.Rows([]string{"NAME", "COMMENTS", "STATUS"},
		[]any{"DEPT", nil, "VALID"},
		[]any{"EMP", "Employees", "VALID"},
	)
	serve(stub, core.KindTable, tables)

	columns := querytest.Rows([]string{"PARENT_NAME", "NAME", "DATA_TYPE", "POSITION", "NULLABLE", "COMMENTS"},
		[]any{"DEPT", "ID", "NUMBER", 1, "N", nil},
		[]any{"DEPT", "NAME", "VARCHAR2(50)", 2, "Y", nil},
		[]any{"EMP", "ID", "NUMBER", 1, "N", "Surrogate key"},
		[]any{"EMP", "NAME", "VARCHAR2(100)", 2, "Y", nil},
		[]any{"EMP", "DEPT_ID", "NUMBER", 3, "Y", nil},
	)
	serveChildren(stub, core.KindTable, core.KindColumn, columns)

	constraints := querytest.Rows([]string{"PARENT_NAME", "NAME", "CONSTRAINT_TYPE", "COLUMN_NAME", "POSITION", "CONDITION"},
		[]any{"DEPT", "DEPT_PK", "P", "ID", 1, nil},
		[]any{"EMP", "EMP_PK", "P", "ID", 1, nil},
		[]any{"EMP", "EMP_NAME_CK", "C", nil, nil, "NAME IS NOT NULL"},
		[]any{"EMP", "EMP_ODD", "X", nil, nil, nil},
	)
	serveChildren(stub, core.KindTable, core.KindConstraint, constraints)

	fks := querytest.Rows([]string{"PARENT_NAME", "NAME", "REF_SCHEMA", "REF_CONSTRAINT", "DELETE_RULE", "COLUMN_NAME", "POSITION"},
		[]any{"EMP", "EMP_DEPT_FK", "HR", "DEPT_PK", "CASCADE", "DEPT_ID", 1},
	)
	serveChildren(stub, core.KindTable, core.KindForeignKey, fks)

	indexes := querytest.Rows([]string{"PARENT_NAME", "NAME", "IS_UNIQUE", "INDEX_TYPE", "COLUMNS"},
		[]any{"EMP", "EMP_NAME_IX", "N", "NORMAL", "NAME:1,DEPT_ID:2"},
	)
	serveChildren(stub, core.KindTable, core.KindIndex, indexes)

	serve(stub, core.KindTrigger, querytest.Rows([]string{"NAME", "PARENT_NAME", "TIMING", "EVENT", "BODY", "STATUS"},
		[]any{"EMP_BIU", "EMP", "BEFORE", "INSERT OR UPDATE", "BEGIN NULL; END;", "ENABLED"},
	))
	serve(stub, core.KindSynonym, querytest.Rows([]string{"NAME", "TARGET_SCHEMA", "TARGET_NAME"},
		[]any{"EMPLOYEES", "HR", "EMP"},
		[]any{"GHOST", "HR", "NOPE"},
	))
	serve(stub, core.KindSequence, querytest.Rows([]string{"NAME", "MIN_VALUE", "MAX_VALUE", "INCREMENT_BY", "CYCLE", "LAST_VALUE"},
		[]any{"EMP_SEQ", 1, "9999999999999999999999999999", 1, "N", 41},
	))
	serve(stub, core.KindType, querytest.Rows([]string{"NAME", "TYPE_CODE", "SUPER_SCHEMA", "SUPER_NAME", "FINAL"},
		[]any{"EMP_T", "OBJECT", "HR", "PERSON_T", "Y"},
		[]any{"PERSON_T", "OBJECT", nil, nil, "N"},
	))
	serveChildren(stub, core.KindType, core.KindTypeAttribute, querytest.Rows([]string{"PARENT_NAME", "NAME", "DATA_TYPE", "POSITION"},
		[]any{"PERSON_T", "FIRST_NAME", "VARCHAR2(50)", 1},
		[]any{"PERSON_T", "LAST_NAME", "VARCHAR2(50)", 2},
		[]any{"EMP_T", "SALARY", "NUMBER", 1},
	))
	serve(stub, core.KindPackage, querytest.Rows([]string{"NAME", "HAS_BODY", "STATUS"},
		[]any{"EMP_API", "Y", "VALID"},
	))
	stub.OnRows(SourceSQL(core.KindPackage), []string{"TEXT"}, []any{PackageSource})
	stub.OnRows(SourceSQL(core.KindType), []string{"TEXT"}, []any{"TYPE person_t AS OBJECT (first_name VARCHAR2(50), last_name VARCHAR2(50)) NOT FINAL;"})

	for _, kind := range []core.Kind{core.KindView, core.KindMaterializedView, core.KindDBLink, core.KindDomain, core.KindOperator} {
		serve(stub, kind, nil)
	}
	serveChildren(stub, core.KindView, core.KindColumn, nil)
	return stub
}

func serve(stub *querytest.Stub, kind core.Kind, rows []*query.MapRow) {
	stub.On(ListSQL(kind), func([]any) ([]*query.MapRow, error) { return rows, nil })
	stub.On(LookupSQL(kind), querytest.FilterBy("NAME", 1, rows))
}

func serveChildren(stub *querytest.Stub, parent, child core.Kind, rows []*query.MapRow) {
	stub.On(ChildrenSQL(parent, child), func([]any) ([]*query.MapRow, error) { return rows, nil })
	stub.On(ChildrenForSQL(parent, child), querytest.FilterBy("PARENT_NAME", 1, rows))
}
