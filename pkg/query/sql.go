package query

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapcat/pkg/core"
)

// SQLExecutor executes requests through database/sql.
type SQLExecutor struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// NewSQLExecutor creates an executor over db.
// If logger is nil, a discard logger is used.
func NewSQLExecutor(db *sql.DB, logger *slog.Logger) *SQLExecutor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLExecutor{DB: db, Logger: logger}
}

// Query executes a request returning rows.
func (e *SQLExecutor) Query(ctx context.Context, req Request) (Cursor, error) {
	if req.Unsupported() {
		return NewSliceCursor(nil), nil
	}
	if e.DB == nil {
		return nil, &core.BackendError{Op: "query", Request: req.SQL, Err: fmt.Errorf("database connection not established")}
	}

	start := time.Now()
	//nolint:rowserrcheck // rows.Err() is checked by the cursor's Err method
	rows, err := e.DB.QueryContext(ctx, req.SQL, req.Args...)
	if err != nil {
		return nil, &core.BackendError{Op: "query", Request: req.SQL, Err: err}
	}
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, &core.BackendError{Op: "query", Request: req.SQL, Err: err}
	}
	e.Logger.Debug("query opened", slog.Duration("elapsed", time.Since(start)), slog.Int("args", len(req.Args)))
	return &sqlCursor{rows: rows, cols: cols, sql: req.SQL}, nil
}

// Exec executes a request that returns no rows.
func (e *SQLExecutor) Exec(ctx context.Context, req Request) error {
	if req.Unsupported() {
		return nil
	}
	if e.DB == nil {
		return &core.BackendError{Op: "exec", Request: req.SQL, Err: fmt.Errorf("database connection not established")}
	}
	if _, err := e.DB.ExecContext(ctx, req.SQL, req.Args...); err != nil {
		return &core.BackendError{Op: "exec", Request: req.SQL, Err: err}
	}
	return nil
}

// sqlCursor adapts *sql.Rows to Cursor. Each Next scans the row into a MapRow.
type sqlCursor struct {
	rows *sql.Rows
	cols []string
	sql  string
	cur  *MapRow
	err  error
}

func (c *sqlCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		c.cur = nil
		return false
	}
	values := make([]any, len(c.cols))
	ptrs := make([]any, len(c.cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.err = &core.BackendError{Op: "scan", Request: c.sql, Err: err}
		c.cur = nil
		return false
	}
	c.cur = NewMapRow(c.cols, values)
	return true
}

func (c *sqlCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return &core.BackendError{Op: "fetch", Request: c.sql, Err: err}
	}
	return nil
}

func (c *sqlCursor) Close() error {
	return c.rows.Close()
}

func (c *sqlCursor) row() *MapRow {
	if c.cur == nil {
		return &MapRow{values: map[string]any{}}
	}
	return c.cur
}

func (c *sqlCursor) Columns() []string                  { return c.cols }
func (c *sqlCursor) Has(col string) bool                { return c.row().Has(col) }
func (c *sqlCursor) IsNull(col string) bool             { return c.row().IsNull(col) }
func (c *sqlCursor) String(col string) (string, error)  { return c.row().String(col) }
func (c *sqlCursor) Int(col string) (int, error)        { return c.row().Int(col) }
func (c *sqlCursor) Int64(col string) (int64, error)    { return c.row().Int64(col) }
func (c *sqlCursor) Bool(col string) (bool, error)      { return c.row().Bool(col) }
func (c *sqlCursor) Time(col string) (time.Time, error) { return c.row().Time(col) }
func (c *sqlCursor) Bytes(col string) ([]byte, error)   { return c.row().Bytes(col) }
func (c *sqlCursor) SafeString(col string) string       { return c.row().SafeString(col) }
func (c *sqlCursor) SafeInt(col string) int             { return c.row().SafeInt(col) }
func (c *sqlCursor) SafeInt64(col string) int64         { return c.row().SafeInt64(col) }
func (c *sqlCursor) SafeBool(col string) bool           { return c.row().SafeBool(col) }
func (c *sqlCursor) SafeTime(col string) time.Time      { return c.row().SafeTime(col) }
func (c *sqlCursor) SafeBytes(col string) []byte        { return c.row().SafeBytes(col) }

var _ Executor = (*SQLExecutor)(nil)
