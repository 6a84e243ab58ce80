// Package query is the boundary to the backend: it executes opaque requests
// and exposes the results through a forward-only cursor with typed accessors.
package query

import (
	"context"
	"time"
)

// Request is an opaque backend request with positional parameters.
// An empty SQL means the backend does not support the request; callers treat
// it as an empty result without a round trip.
type Request struct {
	SQL  string
	Args []any
}

// NewRequest creates a request.
func NewRequest(sql string, args ...any) Request {
	return Request{SQL: sql, Args: args}
}

// Unsupported reports whether the request has no statement.
func (r Request) Unsupported() bool {
	return r.SQL == ""
}

// Executor executes requests against the backend.
type Executor interface {
	// Query executes a request returning rows. The caller must Close the cursor.
	Query(ctx context.Context, req Request) (Cursor, error)

	// Exec executes a request that returns no rows.
	Exec(ctx context.Context, req Request) error
}

// Row gives typed access to the current row. Column names are matched
// case-insensitively. The strict accessors fail on NULL or absent columns;
// the Safe variants return the zero value instead.
type Row interface {
	Columns() []string
	Has(col string) bool
	IsNull(col string) bool

	String(col string) (string, error)
	Int(col string) (int, error)
	Int64(col string) (int64, error)
	Bool(col string) (bool, error)
	Time(col string) (time.Time, error)
	Bytes(col string) ([]byte, error)

	SafeString(col string) string
	SafeInt(col string) int
	SafeInt64(col string) int64
	SafeBool(col string) bool
	SafeTime(col string) time.Time
	SafeBytes(col string) []byte
}

// Cursor is a forward-only row cursor.
type Cursor interface {
	Row
	Next() bool
	Err() error
	Close() error
}
