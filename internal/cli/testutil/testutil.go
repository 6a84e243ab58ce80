// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapcat/internal/cli/output"
	_ "github.com/marcboeker/go-duckdb" // registers the duckdb driver used to seed projects
)

// SeedSQL is the schema created in every test project database.
const SeedSQL = `
CREATE TABLE dept (id INTEGER PRIMARY KEY, name VARCHAR NOT NULL);
CREATE TABLE emp (
    id INTEGER PRIMARY KEY,
    name VARCHAR NOT NULL,
    dept_id INTEGER REFERENCES dept(id)
);
CREATE INDEX emp_name_idx ON emp(name);
CREATE VIEW emp_names AS SELECT id, name FROM emp;
CREATE SEQUENCE emp_seq START 100;
COMMENT ON TABLE emp IS 'Employees';
`

// SetupTestProject creates a temporary project holding a leapcat.yaml that
// points at a seeded DuckDB file. It returns the config file path.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "catalog.duckdb")

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		t.Fatalf("failed to open duckdb: %v", err)
	}
	if _, err := db.Exec(SeedSQL); err != nil {
		_ = db.Close()
		t.Fatalf("failed to seed duckdb: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close duckdb: %v", err)
	}

	cfg := `target:
  type: duckdb
  database: catalog.duckdb
state_path: state.db
`
	cfgPath := filepath.Join(tmpDir, "leapcat.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0600); err != nil {
		t.Fatalf("failed to write leapcat.yaml: %v", err)
	}
	return cfgPath
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode.
// Output is captured in buffers, so auto mode resolves to markdown.
func NewTestRenderer(mode output.Mode) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if fenceCount := strings.Count(md, "```"); fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
