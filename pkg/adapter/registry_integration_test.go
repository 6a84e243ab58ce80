package adapter_test

import (
	"testing"

	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/leapcat/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapcat/pkg/adapters/oracle"
	_ "github.com/leapstack-labs/leapcat/pkg/adapters/postgres"
)

func TestBuiltinAdapters(t *testing.T) {
	tests := []struct {
		typ     string
		want    string
		dialect string
	}{
		{typ: "duckdb", want: "duckdb", dialect: "duckdb"},
		{typ: "postgres", want: "postgres", dialect: "postgres"},
		{typ: "postgresql", want: "postgres", dialect: "postgres"},
		{typ: "PG", want: "postgres", dialect: "postgres"},
		{typ: "oracle", want: "oracle", dialect: "oracle"},
		{typ: "ora", want: "oracle", dialect: "oracle"},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			name, ok := adapter.Canonical(tt.typ)
			require.True(t, ok)
			assert.Equal(t, tt.want, name)

			adp, err := adapter.NewAdapter(adapter.Config{Type: tt.typ}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, adp.DialectName())
		})
	}
}

func TestListAdapters_CanonicalNamesOnly(t *testing.T) {
	names := adapter.ListAdapters()
	for _, want := range []string{"duckdb", "oracle", "postgres"} {
		assert.Contains(t, names, want)
	}
	assert.NotContains(t, names, "postgresql")
	assert.NotContains(t, names, "ora")
}

func TestNewAdapter_UnknownType(t *testing.T) {
	_, err := adapter.NewAdapter(adapter.Config{Type: "mysql"}, nil)
	require.Error(t, err)

	var unknownErr *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "mysql", unknownErr.Type)
	assert.Contains(t, unknownErr.Available, "duckdb")
	assert.NotContains(t, unknownErr.Available, "pg")
}
