package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/leapstack-labs/leapcat/internal/cli/commands"
	"github.com/leapstack-labs/leapcat/internal/cli/config"
	"github.com/leapstack-labs/leapcat/internal/cli/testutil"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command against the project config and returns
// stdout and stderr.
func run(t *testing.T, cfgPath string, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"version", "schemas", "ls", "ddl", "describe", "dump", "history", "shell", "completion"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	for _, flag := range []string{"config", "target", "database", "schema", "state", "verbose", "log-level", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootCmd_Schemas(t *testing.T) {
	cfgPath := testutil.SetupTestProject(t)

	out, _, err := run(t, cfgPath, "schemas")
	require.NoError(t, err)
	assert.Contains(t, out, "| main |")
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
}

func TestRootCmd_List(t *testing.T) {
	cfgPath := testutil.SetupTestProject(t)

	out, _, err := run(t, cfgPath, "ls", "main")
	require.NoError(t, err)
	assert.Contains(t, out, "| TABLE | emp | Employees |")
	assert.Contains(t, out, "| TABLE | dept |")
	assert.Contains(t, out, "| VIEW | emp_names |")
	assert.Contains(t, out, "| SEQUENCE | emp_seq |")

	out, _, err = run(t, cfgPath, "ls", "--kind", "view", "-o", "json")
	require.NoError(t, err)
	var objs []commands.ObjectInfo
	require.NoError(t, json.Unmarshal([]byte(out), &objs))
	require.Len(t, objs, 1)
	assert.Equal(t, commands.ObjectInfo{Kind: core.KindView, Name: "emp_names"}, objs[0])
}

func TestRootCmd_DDL(t *testing.T) {
	cfgPath := testutil.SetupTestProject(t)

	out, _, err := run(t, cfgPath, "ddl", "main.emp")
	require.NoError(t, err)
	assert.Contains(t, out, "```sql")
	assert.Contains(t, out, "CREATE TABLE emp")
	assert.Contains(t, out, "CREATE INDEX emp_name_idx")
	assert.Contains(t, out, "COMMENT ON TABLE main.emp IS 'Employees';")

	out, _, err = run(t, cfgPath, "ddl", "emp", "--format", "compact", "--skip-indexes")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE emp")
	assert.NotContains(t, out, "CREATE INDEX")
	assert.NotContains(t, out, "COMMENT ON")

	_, _, err = run(t, cfgPath, "ddl", "main.missing")
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))

	_, _, err = run(t, cfgPath, "ddl", "main.emp", "--format", "huge")
	assert.ErrorContains(t, err, "unknown DDL format")
}

func TestRootCmd_Describe(t *testing.T) {
	cfgPath := testutil.SetupTestProject(t)

	out, _, err := run(t, cfgPath, "describe", "main.emp", "-o", "json")
	require.NoError(t, err)

	var desc commands.Description
	require.NoError(t, json.Unmarshal([]byte(out), &desc))
	assert.Equal(t, core.KindTable, desc.Kind)
	assert.Equal(t, "Employees", desc.Comment)
	require.Len(t, desc.Attributes, 3)
	assert.Equal(t, "id", desc.Attributes[0].Name)
	assert.Equal(t, "dept_id", desc.Attributes[2].Name)
	assert.False(t, desc.Attributes[1].Nullable)
	assert.Nil(t, desc.Declarations)
}

func TestRootCmd_DumpAndHistory(t *testing.T) {
	cfgPath := testutil.SetupTestProject(t)

	out, _, err := run(t, cfgPath, "dump", "main", "--save", "-o", "json")
	require.NoError(t, err)

	var dump commands.DumpOutput
	require.NoError(t, json.Unmarshal([]byte(out), &dump))
	require.NotEmpty(t, dump.ID)
	assert.False(t, dump.Canceled)

	names := make([]string, len(dump.Fragments))
	for i, f := range dump.Fragments {
		names[i] = f.Name
		assert.Empty(t, f.Error, f.Name)
	}
	assert.Equal(t, []string{"main.emp_seq", "main.dept", "main.emp", "main.emp_names"}, names)

	out, _, err = run(t, cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, dump.ID)
	assert.Contains(t, out, "| main |")

	out, _, err = run(t, cfgPath, "history", dump.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE emp")
	assert.Contains(t, out, "CREATE VIEW emp_names")

	_, errOut, err := run(t, cfgPath, "history", dump.ID, "--delete")
	require.NoError(t, err)
	assert.Contains(t, errOut, "deleted dump "+dump.ID)

	_, _, err = run(t, cfgPath, "history", dump.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	cfgPath := testutil.SetupTestProject(t)

	_, _, err := run(t, cfgPath, "schemas", "-o", "toml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestRootCmd_Completion(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "leapcat")
}

func TestRootCmd_VersionJSON(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version", "-o", "json"})
	require.NoError(t, root.Execute())

	var info commands.BuildInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, []string{"duckdb", "oracle", "postgres"}, info.Adapters)
}

func TestRootCmd_TargetCompletion(t *testing.T) {
	cfgPath := testutil.SetupTestProject(t)
	f, err := os.OpenFile(cfgPath, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("environments:\n  prod:\n    target:\n      schema: main\n  dev:\n    target:\n      schema: main\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, _, err := run(t, cfgPath, "__complete", "ls", "--target", "")
	require.NoError(t, err)
	assert.Contains(t, out, "dev\nprod\n")
}
