package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	_ "github.com/leapstack-labs/leapcat/pkg/adapters/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	info := BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-02"}

	t.Run("text", func(t *testing.T) {
		cmd := NewVersionCommand(info)
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs(nil)

		require.NoError(t, cmd.Execute())
		assert.Contains(t, buf.String(), "leapcat v1.2.3 (commit abc123, built 2026-01-02)")
		assert.Contains(t, buf.String(), "Adapters: ")
		assert.Contains(t, buf.String(), "oracle")
	})

	t.Run("json", func(t *testing.T) {
		cmd := NewVersionCommand(info)
		cmd.Flags().StringP("output", "o", "", "")
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"-o", "json"})

		require.NoError(t, cmd.Execute())
		var got BuildInfo
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "1.2.3", got.Version)
		assert.Equal(t, "abc123", got.Commit)
		assert.Contains(t, got.Adapters, "oracle")
	})

	t.Run("rejects arguments", func(t *testing.T) {
		cmd := NewVersionCommand(info)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"extra"})
		require.Error(t, cmd.Execute())
	})
}
