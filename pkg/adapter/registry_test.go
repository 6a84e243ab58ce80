package adapter

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "oracle", "postgres"},
	}

	msg := err.Error()
	assert.Contains(t, msg, `"fake_db"`)
	assert.Contains(t, msg, "duckdb, oracle, postgres")
	assert.Contains(t, msg, "leapcat.yaml")
}

func TestRegister_Aliases(t *testing.T) {
	Register("Test_Registry", func(_ *slog.Logger) Adapter { return nil }, "test_alias", "TR")

	for _, name := range []string{"test_registry", "TEST_REGISTRY", "test_alias", "tr", " tr "} {
		assert.True(t, IsRegistered(name), name)
		canonical, ok := Canonical(name)
		assert.True(t, ok, name)
		assert.Equal(t, "test_registry", canonical, name)
	}

	factory, ok := Get("test_alias")
	require.True(t, ok)
	assert.NotNil(t, factory)

	names := ListAdapters()
	assert.Contains(t, names, "test_registry")
	assert.NotContains(t, names, "test_alias")
	assert.NotContains(t, names, "tr")
}

func TestCanonical_Unknown(t *testing.T) {
	name, ok := Canonical("nonexistent")
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	require.Error(t, err)
	assert.Equal(t, "adapter type not specified", err.Error())
}
