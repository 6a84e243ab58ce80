package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapcat/internal/testutil"
	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/leapstack-labs/leapcat/pkg/adapters/infoschema"
	"github.com/leapstack-labs/leapcat/pkg/catalog"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/leapstack-labs/leapcat/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   adapter.Config
		expected string
	}{
		{
			name: "basic connection",
			config: adapter.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: adapter.Config{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				Username: "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name: "defaults",
			config: adapter.Config{
				Database: "mydb",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
		{
			name: "custom port",
			config: adapter.Config{
				Host:     "db.example.com",
				Port:     5433,
				Database: "analytics",
				Username: "analyst",
			},
			expected: "host=db.example.com port=5433 dbname=analytics sslmode=disable user=analyst",
		},
		{
			name: "values with spaces and quotes are quoted",
			config: adapter.Config{
				Database: "my db",
				Username: "o'brien",
				Password: `p\w d`,
			},
			expected: `host=localhost port=5432 dbname='my db' sslmode=disable user='o\'brien' password='p\\w d'`,
		},
		{
			name: "extra options follow in key order",
			config: adapter.Config{
				Database: "app",
				Options: map[string]string{
					"search_path":      "sales,public",
					"connect_timeout":  "5",
					"application_name": "ignored",
				},
			},
			expected: "host=localhost port=5432 dbname=app sslmode=disable connect_timeout=5 search_path=sales,public",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := buildPostgresDSN(tt.config)
			assert.Equal(t, tt.expected, dsn)
		})
	}
}

func TestNew(t *testing.T) {
	adp := New(nil)

	assert.NotNil(t, adp, "New() should return non-nil adapter")
	assert.Nil(t, adp.DB, "DB should be nil before Connect")
	assert.False(t, adp.IsConnected(), "should not be connected initially")
	assert.Equal(t, "postgres", adp.DialectName(), "dialect name should be postgres")
	assert.Equal(t, "emp", adp.Normalizer().Normalize("EMP"))

	// Verify interface compliance
	var _ adapter.Adapter = (*Adapter)(nil)
	var _ adapter.Adapter = adp
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
		errMsg    string
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.Executor().Exec(ctx, query.NewRequest("SELECT 1"))
			},
			errMsg: "not established",
		},
		{
			name: "query without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Executor().Query(ctx, query.NewRequest("SELECT 1"))
				return err
			},
			errMsg: "not established",
		},
		{
			name: "list schemas without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adapter.OpenDatabase(adp, "db", catalog.Options{}).Schemas(ctx)
				return err
			},
			errMsg: "not established",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			err := tt.operation(ctx, adp)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("postgres"), "postgres adapter should be registered")

	factory, ok := adapter.Get("postgres")
	require.True(t, ok, "should be able to get postgres factory")

	adp := factory(nil)
	assert.NotNil(t, adp)

	pg, ok := adp.(*Adapter)
	assert.True(t, ok, "factory should return *Adapter")
	assert.NotNil(t, pg)
	assert.Equal(t, "postgres", pg.DialectName())
}

func TestAdapter_Close(t *testing.T) {
	// Close should not error even without connection
	adp := New(nil)
	assert.NoError(t, adp.Close())
}

func TestDictionary_Overrides(t *testing.T) {
	d := New(nil).Dictionary()

	tables := d.List(core.KindTable, "public")
	assert.Contains(t, tables.SQL, "obj_description(c.oid, 'pg_class') AS comments")
	assert.Equal(t, []any{"public"}, tables.Args)

	trig := d.Lookup(core.KindTrigger, "public", "emp_audit")
	assert.Contains(t, trig.SQL, "AND trigger_name = $2\nGROUP BY")
	assert.Equal(t, []any{"public", "emp_audit"}, trig.Args)

	idx := d.Children(core.KindTable, core.KindIndex, "public", "")
	assert.Contains(t, idx.SQL, "string_agg(a.attname || ':' || k.n")

	assert.False(t, d.Principals().Unsupported())
	assert.False(t, d.Source(core.KindView, "public", "v").Unsupported())
	assert.True(t, d.List(core.KindPackage, "public").Unsupported())

	// The shared standard listings are untouched.
	assert.NotContains(t, infoschema.Standard().List(core.KindTable, "public").SQL, "pg_class")
}

func TestDDLDictionary(t *testing.T) {
	d := DDLDictionary{}

	assert.Empty(t, d.Transform(ddl.Options{StorageClauses: true}))
	assert.True(t, d.Primary(core.KindTable, "public", "emp").Unsupported())

	view := d.Primary(core.KindView, "public", "v_emp")
	assert.Contains(t, view.SQL, "CREATE OR REPLACE VIEW")
	assert.Equal(t, []any{"public", "v_emp"}, view.Args)

	for _, dep := range []core.DependentKind{core.DependentIndexes, core.DependentTriggers, core.DependentForeignKeys} {
		req := d.Dependent(dep, core.KindTable, "public", "emp")
		assert.False(t, req.Unsupported(), dep)
		assert.Contains(t, req.SQL, "AS ddl", dep)
	}

	grants := d.Grants(core.KindTable, "public", "emp")
	assert.Contains(t, grants.SQL, "privilege_type AS privilege")
}

func TestAdapter_PopulatesCatalog(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	adp := New(testutil.NewTestLogger(t))
	adp.Attach(db, adapter.Config{Type: "postgres"})

	mock.ExpectQuery(`FROM information_schema.schemata`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("public"))
	mock.ExpectQuery(`FROM pg_class c`).WithArgs("public", "emp").
		WillReturnRows(sqlmock.NewRows([]string{"name", "comments", "temporary"}).AddRow("emp", nil, "N"))
	mock.ExpectQuery(`FROM information_schema.columns c`).WithArgs("public", "emp").
		WillReturnRows(sqlmock.NewRows([]string{"parent_name", "name", "data_type", "position", "nullable", "default_value", "comments"}).
			AddRow("emp", "id", "integer", 1, "NO", nil, nil))

	cat := adapter.OpenDatabase(adp, "app", catalog.Options{})
	schema, err := cat.RequireSchema(context.Background(), "PUBLIC")
	require.NoError(t, err)
	tbl, err := schema.RequireTable(context.Background(), "EMP")
	require.NoError(t, err)
	assert.Equal(t, "emp", tbl.Name())

	cols, err := tbl.Columns(context.Background())
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.False(t, cols[0].Nullable())
}
