package catalog_test

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leapcat/internal/testutil"
	"github.com/leapstack-labs/leapcat/pkg/catalog"
	"github.com/leapstack-labs/leapcat/pkg/catalog/catalogtest"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ident"
	"github.com/leapstack-labs/leapcat/pkg/query/querytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHR(t *testing.T, dict catalog.Dictionary) (*querytest.Stub, *catalog.Schema) {
	t.Helper()
	stub := catalogtest.HR(querytest.New())
	db := catalog.NewDatabase("ORCL", stub, dict, catalog.Options{
		Normalizer: ident.Upper(),
		Types:      core.NewTypeTable(core.PredefinedType{Name: "NUMBER", Family: "numeric"}),
		Logger:     testutil.NewTestLogger(t),
	})
	s, err := db.RequireSchema(context.Background(), "hr")
	require.NoError(t, err)
	return stub, s
}

func objNames[T core.Named](objs []T) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Name()
	}
	return out
}

func TestDatabase_Schemas(t *testing.T) {
	stub, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()
	db := s.Database()

	schemas, err := db.Schemas(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"HR", "SALES"}, objNames(schemas))
	assert.Same(t, s, schemas[0])

	_, err = db.RequireSchema(ctx, "SCOTT")
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
	assert.Contains(t, err.Error(), "SCOTT")
	assert.Equal(t, 1, stub.Calls(catalogtest.SchemasSQL))
}

func TestSchema_TablesAndColumns(t *testing.T) {
	stub, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()

	emp, err := s.RequireTable(ctx, "emp")
	require.NoError(t, err)
	assert.Equal(t, "Employees", emp.Comment())
	assert.Equal(t, "HR.EMP", emp.QualifiedName())
	assert.True(t, emp.IsPersisted())
	assert.Equal(t, 1, stub.Calls(catalogtest.LookupSQL(core.KindTable)))

	cols, err := emp.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "NAME", "DEPT_ID"}, objNames(cols))
	assert.False(t, cols[0].Nullable())
	assert.Equal(t, "Surrogate key", cols[0].Comment())

	attrs, err := emp.Attributes(ctx)
	require.NoError(t, err)
	require.Len(t, attrs, 3)
	assert.Equal(t, "VARCHAR2(100)", attrs[1].TypeName())
	assert.Equal(t, 2, attrs[1].Ordinal())

	_, err = s.RequireTable(ctx, "SALGRADE")
	assert.True(t, core.IsNotFound(err))
}

func TestSchema_BatchChildren(t *testing.T) {
	stub := catalogtest.HR(querytest.New())
	db := catalog.NewDatabase("ORCL", stub, catalogtest.Dictionary{}, catalog.Options{
		Normalizer:    ident.Upper(),
		BatchChildren: true,
	})
	ctx := context.Background()
	s, err := db.RequireSchema(ctx, "HR")
	require.NoError(t, err)

	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	for _, tbl := range tables {
		_, err := tbl.Columns(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, stub.Calls(catalogtest.ChildrenSQL(core.KindTable, core.KindColumn)))
	assert.Zero(t, stub.Calls(catalogtest.ChildrenForSQL(core.KindTable, core.KindColumn)))
}

func TestTable_KeysAndIndexes(t *testing.T) {
	_, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()
	emp, err := s.RequireTable(ctx, "EMP")
	require.NoError(t, err)

	constraints, err := emp.Constraints(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"EMP_NAME_CK", "EMP_PK"}, objNames(constraints))
	assert.Equal(t, catalog.Check, constraints[0].Type())
	assert.Equal(t, "NAME IS NOT NULL", constraints[0].Condition())
	assert.Empty(t, constraints[0].Columns())
	assert.Equal(t, []catalog.KeyColumn{{Name: "ID", Position: 1}}, constraints[1].Columns())

	indexes, err := emp.Indexes(ctx)
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	assert.Equal(t, []catalog.KeyColumn{{Name: "NAME", Position: 1}, {Name: "DEPT_ID", Position: 2}}, indexes[0].Columns())
	assert.Equal(t, emp.Ref(), indexes[0].TableRef())

	assert.True(t, emp.HasDependents(ctx, core.DependentForeignKeys))
	assert.True(t, emp.HasDependents(ctx, core.DependentIndexes))
	assert.True(t, emp.HasDependents(ctx, core.DependentTriggers))

	dept, err := s.RequireTable(ctx, "DEPT")
	require.NoError(t, err)
	assert.False(t, dept.HasDependents(ctx, core.DependentForeignKeys))
	assert.False(t, dept.HasDependents(ctx, core.DependentTriggers))
}

func TestForeignKey_ResolvesReferencedTable(t *testing.T) {
	_, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()

	fk, err := s.ForeignKey(ctx, "EMP_DEPT_FK")
	require.NoError(t, err)
	require.NotNil(t, fk)
	assert.Equal(t, "CASCADE", fk.DeleteRule())
	assert.Equal(t, "HR.DEPT_PK", fk.Referenced().Display(ctx))

	ref, err := fk.ReferencedTable(ctx)
	require.NoError(t, err)
	dept, err := s.Table(ctx, "DEPT")
	require.NoError(t, err)
	assert.Same(t, dept, ref)
}

func TestLazyRef_DisplayDegradesToIdentifier(t *testing.T) {
	_, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()

	good, err := s.Synonym(ctx, "EMPLOYEES")
	require.NoError(t, err)
	assert.Equal(t, "HR.EMP", good.TargetName(ctx))
	target, err := good.Target().Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.KindTable, target.Kind())

	ghost, err := s.Synonym(ctx, "GHOST")
	require.NoError(t, err)
	assert.Equal(t, "HR.NOPE", ghost.TargetName(ctx))
	_, err = ghost.Target().Resolve(ctx)
	assert.True(t, core.IsNotFound(err))

	var zero *catalog.LazyRef
	assert.Empty(t, zero.Display(ctx))
}

func TestDataType_SuperTypeAndAttributes(t *testing.T) {
	_, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()
	db := s.Database()

	empT, err := s.Type(ctx, "EMP_T")
	require.NoError(t, err)
	require.NotNil(t, empT)
	assert.True(t, empT.Final())
	super, err := empT.SuperType().Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PERSON_T", super.Name())

	personT := super.(*catalog.DataType)
	assert.Nil(t, personT.SuperType())
	attrs, err := personT.Attributes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"FIRST_NAME", "LAST_NAME"}, objNames(attrs))

	builtin, err := db.ResolveType(ctx, "HR", "number(10)")
	require.NoError(t, err)
	assert.IsType(t, &catalog.BuiltinType{}, builtin)

	user, err := db.ResolveType(ctx, "HR", "PERSON_T")
	require.NoError(t, err)
	assert.Same(t, personT, user)

	_, err = db.ResolveType(ctx, "HR", "MISSING_T")
	assert.True(t, core.IsNotFound(err))
}

func TestPackage_DeclarationsAreMemoized(t *testing.T) {
	stub, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()

	pkg, err := s.Package(ctx, "EMP_API")
	require.NoError(t, err)
	require.NotNil(t, pkg)
	assert.True(t, pkg.HasBody())

	decls := pkg.Declarations(ctx)
	require.Len(t, decls.Procedures, 1)
	assert.Equal(t, "HIRE", decls.Procedures[0].Name)
	require.Len(t, decls.Functions, 1)
	assert.Len(t, decls.Functions[0].Params, 2)
	assert.Equal(t, "NUMBER", decls.Functions[0].ReturnType())

	_ = pkg.Declarations(ctx)
	src, err := pkg.Source(ctx)
	require.NoError(t, err)
	assert.Contains(t, src, "PACKAGE emp_api")
	assert.Equal(t, 1, stub.Calls(catalogtest.SourceSQL(core.KindPackage)))

	s.Refresh()
	_ = pkg.Declarations(ctx)
	assert.Equal(t, 2, stub.Calls(catalogtest.SourceSQL(core.KindPackage)))
}

func TestSchema_InvalidateTablesCascades(t *testing.T) {
	stub, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()
	constraintsSQL := catalogtest.ChildrenSQL(core.KindTable, core.KindConstraint)

	_, err := s.Constraints(ctx)
	require.NoError(t, err)
	_, err = s.Triggers(ctx)
	require.NoError(t, err)
	_, err = s.Sequences(ctx)
	require.NoError(t, err)

	s.Invalidate(core.KindTable)

	_, err = s.Constraints(ctx)
	require.NoError(t, err)
	_, err = s.Triggers(ctx)
	require.NoError(t, err)
	_, err = s.Sequences(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stub.Calls(constraintsSQL))
	assert.Equal(t, 2, stub.Calls(catalogtest.ListSQL(core.KindTrigger)))
	assert.Equal(t, 1, stub.Calls(catalogtest.ListSQL(core.KindSequence)))
}

func TestSchema_UnsupportedKindIsEmpty(t *testing.T) {
	stub, s := newHR(t, catalogtest.Dictionary{Unsupported: map[core.Kind]bool{core.KindSequence: true}})

	seqs, err := s.Sequences(context.Background())
	require.NoError(t, err)
	assert.Empty(t, seqs)
	assert.Zero(t, stub.Calls(catalogtest.ListSQL(core.KindSequence)))
}

func TestSchema_Objects(t *testing.T) {
	_, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()

	for _, kind := range core.ListableKinds() {
		t.Run(string(kind), func(t *testing.T) {
			objs, err := s.Objects(ctx, kind)
			require.NoError(t, err)
			for _, o := range objs {
				assert.Equal(t, kind, o.Kind())
			}
		})
	}

	obj, err := s.Object(ctx, "", "EMP_SEQ")
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, core.KindSequence, obj.Kind())

	none, err := s.Object(ctx, core.KindTable, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSchema_Prefetch(t *testing.T) {
	stub, s := newHR(t, catalogtest.Dictionary{})

	err := s.Prefetch(context.Background(), core.KindTable, core.KindSequence, core.KindPackage)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.Calls(catalogtest.ListSQL(core.KindTable)))
	assert.Equal(t, 1, stub.Calls(catalogtest.ListSQL(core.KindSequence)))
	assert.Equal(t, 1, stub.Calls(catalogtest.ListSQL(core.KindPackage)))

	stub.OnError(catalogtest.ListSQL(core.KindDomain), assert.AnError)
	err = s.Prefetch(context.Background(), core.KindDomain)
	require.ErrorIs(t, err, assert.AnError)
}

func TestSchema_EditorFlow(t *testing.T) {
	_, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()

	draft := s.NewTable("AUDIT_LOG")
	draft.SetComment("Audit trail")
	draft.AddColumn("ID", "NUMBER", false)
	draft.AddColumn("MSG", "VARCHAR2(4000)", true).SetComment("Message text")
	assert.False(t, draft.IsPersisted())

	require.NoError(t, s.AddTable(ctx, draft))
	got, err := s.Table(ctx, "audit_log")
	require.NoError(t, err)
	assert.Same(t, draft, got)

	cols, err := got.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "MSG"}, objNames(cols))
	assert.Equal(t, 2, cols[1].Ordinal())
	assert.False(t, got.HasDependents(ctx, core.DependentIndexes))

	require.Error(t, s.AddTable(ctx, s.NewTable("EMP")))
}

func TestSchema_EditorTableSurvivesListing(t *testing.T) {
	_, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()

	draft := s.NewTable("AUDIT_LOG")
	require.NoError(t, s.AddTable(ctx, draft))

	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AUDIT_LOG", "DEPT", "EMP"}, objNames(tables))

	got, err := s.Table(ctx, "AUDIT_LOG")
	require.NoError(t, err)
	assert.Same(t, draft, got)
}

type cancelAfter struct {
	limit  int
	worked int
	labels []string
}

func (m *cancelAfter) IsCanceled() bool     { return m.worked >= m.limit }
func (m *cancelAfter) SubTask(label string) { m.labels = append(m.labels, label) }
func (m *cancelAfter) Worked(n int)         { m.worked += n }

func TestTable_DependenciesStopOnCancel(t *testing.T) {
	_, s := newHR(t, catalogtest.Dictionary{})
	ctx := context.Background()
	emp, err := s.RequireTable(ctx, "EMP")
	require.NoError(t, err)

	all, err := emp.Dependencies(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"EMP_NAME_CK", "EMP_PK", "EMP_DEPT_FK", "EMP_NAME_IX", "EMP_BIU"}, objNames(all))

	mon := &cancelAfter{limit: 3}
	partial, err := emp.Dependencies(ctx, mon)
	require.NoError(t, err)
	assert.Equal(t, objNames(all[:3]), objNames(partial))
	assert.Len(t, mon.labels, 2)
}
