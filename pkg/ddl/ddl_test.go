package ddl_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapcat/internal/testutil"
	"github.com/leapstack-labs/leapcat/pkg/catalog"
	"github.com/leapstack-labs/leapcat/pkg/catalog/catalogtest"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/leapstack-labs/leapcat/pkg/ident"
	"github.com/leapstack-labs/leapcat/pkg/query"
	"github.com/leapstack-labs/leapcat/pkg/query/querytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	transformSQL = "TRANSFORM"
	primarySQL   = "DDL"
	grantsSQL    = "GRANTS"
)

func dependentSQL(dep core.DependentKind) string { return "DEP " + string(dep) }

// ddlDictionary renders readable request texts; arguments are schema and name.
type ddlDictionary struct{}

func (ddlDictionary) Transform(opts ddl.Options) []query.Request {
	return []query.Request{query.NewRequest(transformSQL, opts.StorageClauses)}
}

func (ddlDictionary) Primary(_ core.Kind, schema, name string) query.Request {
	return query.NewRequest(primarySQL, schema, name)
}

func (ddlDictionary) Dependent(dep core.DependentKind, _ core.Kind, schema, name string) query.Request {
	return query.NewRequest(dependentSQL(dep), schema, name)
}

func (ddlDictionary) Grants(_ core.Kind, schema, name string) query.Request {
	return query.NewRequest(grantsSQL, schema, name)
}

type fixture struct {
	stub      *querytest.Stub
	schema    *catalog.Schema
	assembler *ddl.Assembler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stub := catalogtest.HR(querytest.New())
	db := catalog.NewDatabase("ORCL", stub, catalogtest.Dictionary{}, catalog.Options{
		Normalizer: ident.Upper(),
		Logger:     testutil.NewTestLogger(t),
	})
	s, err := db.RequireSchema(context.Background(), "HR")
	require.NoError(t, err)

	stub.On(primarySQL, func(args []any) ([]*query.MapRow, error) {
		if args[1] == "EMP" {
			return querytest.Rows([]string{ddl.ColDDL}, []any{"CREATE TABLE HR.EMP (ID NUMBER)"}), nil
		}
		return nil, errors.New("ORA-31603: object not found")
	})
	for _, dep := range []core.DependentKind{core.DependentForeignKeys, core.DependentTriggers, core.DependentIndexes} {
		stub.OnRows(dependentSQL(dep), []string{ddl.ColDDL}, []any{"-- " + string(dep) + " of EMP"})
	}
	stub.OnRows(grantsSQL, []string{ddl.ColGrantee, ddl.ColPrivilege},
		[]any{"APP_USER", "SELECT"},
		[]any{"APP_USER", "INSERT"},
		[]any{"SYS", "ALL"},
		[]any{"REPORTING", "SELECT"}, []any{"REPORTING", "INSERT"}, []any{"REPORTING", "UPDATE"},
		[]any{"REPORTING", "DELETE"}, []any{"REPORTING", "REFERENCES"}, []any{"REPORTING", "ALTER"},
		[]any{"REPORTING", "INDEX"}, []any{"REPORTING", "READ"},
		[]any{"PUBLIC", "SELECT"},
	)

	a := ddl.NewAssembler(ddl.Config{
		Exec:       stub,
		Dictionary: ddlDictionary{},
		Principals: db,
		Normalizer: ident.Upper(),
		Logger:     testutil.NewTestLogger(t),
	})
	return &fixture{stub: stub, schema: s, assembler: a}
}

func (f *fixture) table(t *testing.T, name string) *catalog.Table {
	t.Helper()
	tbl, err := f.schema.RequireTable(context.Background(), name)
	require.NoError(t, err)
	return tbl
}

// brokenTable fails both the primary fetch and the structural fallback.
type brokenTable struct{ name string }

func (b brokenTable) Name() string     { return b.name }
func (brokenTable) Kind() core.Kind    { return core.KindTable }
func (brokenTable) SchemaName() string { return "HR" }
func (brokenTable) Attributes(context.Context) ([]core.Attribute, error) {
	return nil, errors.New("columns unavailable")
}

func TestGetDDL_FullFormat(t *testing.T) {
	f := newFixture(t)
	emp := f.table(t, "EMP")

	text, err := f.assembler.GetDDL(context.Background(), emp, ddl.FormatFull, ddl.Options{
		Baseline: map[string][]ddl.Privilege{"app_user": {ddl.PrivSelect}},
	})
	require.NoError(t, err)

	want := `CREATE TABLE HR.EMP (ID NUMBER)

-- REF_CONSTRAINT of EMP

-- TRIGGER of EMP

-- INDEX of EMP

GRANT INSERT ON HR.EMP TO APP_USER;
GRANT ALL ON HR.EMP TO REPORTING;

COMMENT ON TABLE HR.EMP IS 'Employees';
COMMENT ON COLUMN HR.EMP.ID IS 'Surrogate key';`
	assert.Equal(t, want, text)

	execs := f.stub.Execs()
	require.Len(t, execs, 1)
	assert.Equal(t, transformSQL, execs[0].SQL)
	assert.Equal(t, []any{false}, execs[0].Args)
}

func TestGetDDL_FormatsAndSkips(t *testing.T) {
	tests := []struct {
		name        string
		format      ddl.Format
		opts        ddl.Options
		contains    []string
		notContains []string
	}{
		{
			name:        "compact has no comments or grants",
			format:      ddl.FormatCompact,
			contains:    []string{"CREATE TABLE HR.EMP", "-- INDEX of EMP"},
			notContains: []string{"COMMENT ON", "GRANT"},
		},
		{
			name:        "default has comments but no grants",
			format:      ddl.FormatDefault,
			contains:    []string{"COMMENT ON TABLE HR.EMP"},
			notContains: []string{"GRANT"},
		},
		{
			name:        "skip options suppress dependents",
			format:      ddl.FormatDefault,
			opts:        ddl.Options{SkipForeignKeys: true, SkipIndexes: true},
			contains:    []string{"-- TRIGGER of EMP"},
			notContains: []string{"REF_CONSTRAINT", "-- INDEX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			text, err := f.assembler.GetDDL(context.Background(), f.table(t, "EMP"), tt.format, tt.opts)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestGetDDL_PrimaryFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	dept := f.table(t, "DEPT")

	text, err := f.assembler.GetDDL(context.Background(), dept, ddl.FormatCompact, ddl.Options{})
	require.NoError(t, err)

	want := ddl.FallbackTag + `
CREATE TABLE HR.DEPT (
  ID NUMBER NOT NULL,
  NAME VARCHAR2(50)
);`
	assert.Equal(t, want, text)

	// DEPT has no dependents, so no dependent request is issued
	for _, dep := range []core.DependentKind{core.DependentForeignKeys, core.DependentTriggers, core.DependentIndexes} {
		assert.Zero(t, f.stub.Calls(dependentSQL(dep)))
	}
}

func TestGetDDL_DegradedStepsStillReturnText(t *testing.T) {
	f := newFixture(t)
	f.stub.OnError(dependentSQL(core.DependentTriggers), errors.New("timeout"))
	f.stub.OnError(grantsSQL, errors.New("ORA-01031: insufficient privileges"))
	f.stub.OnExecError(transformSQL, errors.New("transform rejected"))

	text, err := f.assembler.GetDDL(context.Background(), f.table(t, "EMP"), ddl.FormatFull, ddl.Options{})
	require.NoError(t, err)
	assert.Contains(t, text, "CREATE TABLE HR.EMP")
	assert.Contains(t, text, "-- INDEX of EMP")
	assert.NotContains(t, text, "-- TRIGGER")
	assert.NotContains(t, text, "GRANT")
	assert.Contains(t, text, "COMMENT ON TABLE HR.EMP")
}

func TestGetDDL_BothPrimaryAndFallbackFail(t *testing.T) {
	f := newFixture(t)
	_, err := f.assembler.GetDDL(context.Background(), brokenTable{name: "BROKEN"}, ddl.FormatDefault, ddl.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORA-31603")
	assert.Contains(t, err.Error(), "columns unavailable")
}

func TestGetDDL_Memo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.table(t, "EMP")
	dept := f.table(t, "DEPT")

	first, err := f.assembler.GetDDL(ctx, emp, ddl.FormatDefault, ddl.Options{})
	require.NoError(t, err)
	again, err := f.assembler.GetDDL(ctx, emp, ddl.FormatDefault, ddl.Options{})
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, f.stub.Calls(primarySQL))

	_, err = f.assembler.GetDDL(ctx, dept, ddl.FormatDefault, ddl.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, f.stub.Calls(primarySQL))

	// a format change replaces only EMP's entry
	_, err = f.assembler.GetDDL(ctx, emp, ddl.FormatCompact, ddl.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, f.stub.Calls(primarySQL))
	_, err = f.assembler.GetDDL(ctx, dept, ddl.FormatDefault, ddl.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, f.stub.Calls(primarySQL))

	// options are part of the memo key
	_, err = f.assembler.GetDDL(ctx, emp, ddl.FormatCompact, ddl.Options{SkipTriggers: true})
	require.NoError(t, err)
	assert.Equal(t, 4, f.stub.Calls(primarySQL))

	f.assembler.Invalidate(emp)
	_, err = f.assembler.GetDDL(ctx, emp, ddl.FormatCompact, ddl.Options{SkipTriggers: true})
	require.NoError(t, err)
	assert.Equal(t, 5, f.stub.Calls(primarySQL))

	f.assembler.Reset()
	_, err = f.assembler.GetDDL(ctx, dept, ddl.FormatDefault, ddl.Options{})
	require.NoError(t, err)
	assert.Equal(t, 6, f.stub.Calls(primarySQL))
}

// cancelAfter reports cancellation once limit objects were started.
type cancelAfter struct {
	limit  int
	worked int
	labels []string
}

func (m *cancelAfter) IsCanceled() bool { return m.worked >= m.limit }
func (m *cancelAfter) SubTask(l string) { m.labels = append(m.labels, l) }
func (m *cancelAfter) Worked(units int) { m.worked += units }

func TestDump_CancelAfterK(t *testing.T) {
	f := newFixture(t)
	objs := []core.Named{f.table(t, "DEPT"), f.table(t, "EMP"), brokenTable{name: "B1"}, brokenTable{name: "B2"}}

	mon := &cancelAfter{limit: 2}
	res := f.assembler.Dump(context.Background(), objs, ddl.FormatCompact, ddl.Options{}, mon)

	assert.True(t, res.Canceled)
	require.Len(t, res.Fragments, 2)
	assert.Equal(t, "DEPT", res.Fragments[0].Name)
	assert.Equal(t, "EMP", res.Fragments[1].Name)
	assert.Equal(t, []string{"Generating DDL of TABLE HR.DEPT", "Generating DDL of TABLE HR.EMP"}, mon.labels)
}

func TestDump_InlineErrors(t *testing.T) {
	f := newFixture(t)
	objs := []core.Named{f.table(t, "EMP"), brokenTable{name: "BROKEN"}, f.table(t, "DEPT")}

	res := f.assembler.Dump(context.Background(), objs, ddl.FormatCompact, ddl.Options{}, nil)
	assert.False(t, res.Canceled)
	require.Len(t, res.Fragments, 3)
	assert.Equal(t, 1, res.Failed())

	out := res.Render()
	assert.Contains(t, out, "CREATE TABLE HR.EMP")
	assert.Contains(t, out, "-- ERROR: HR.BROKEN: ")
	assert.Contains(t, out, "CREATE TABLE HR.DEPT")
	assert.Less(t, strings.Index(out, "HR.EMP"), strings.Index(out, "HR.BROKEN"))
}

func TestDelta(t *testing.T) {
	all := ddl.ObjectPrivileges()
	tests := []struct {
		name     string
		granted  []ddl.Privilege
		baseline []ddl.Privilege
		want     []ddl.Privilege
	}{
		{"nothing granted", nil, nil, nil},
		{"baseline covers grant", []ddl.Privilege{ddl.PrivSelect}, []ddl.Privilege{ddl.PrivSelect}, nil},
		{"canonical order", []ddl.Privilege{ddl.PrivIndex, ddl.PrivSelect, ddl.PrivSelect}, nil, []ddl.Privilege{ddl.PrivSelect, ddl.PrivIndex}},
		{"every privilege collapses", all, nil, []ddl.Privilege{ddl.PrivAll}},
		{"all minus baseline", []ddl.Privilege{ddl.PrivAll}, []ddl.Privilege{ddl.PrivRead}, all[:len(all)-1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ddl.Delta(tt.granted, tt.baseline))
		})
	}
}

func TestParseFormatAndPrivilege(t *testing.T) {
	for in, want := range map[string]ddl.Format{"": ddl.FormatDefault, "FULL": ddl.FormatFull, " compact ": ddl.FormatCompact} {
		got, err := ddl.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ddl.ParseFormat("verbose")
	assert.Error(t, err)

	p, ok := ddl.ParsePrivilege("select for dump")
	assert.True(t, ok)
	assert.Equal(t, ddl.PrivRead, p)
	p, ok = ddl.ParsePrivilege("ALL PRIVILEGES")
	assert.True(t, ok)
	assert.Equal(t, ddl.PrivAll, p)
	_, ok = ddl.ParsePrivilege("EXECUTE")
	assert.False(t, ok)
}
