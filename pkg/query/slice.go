package query

import "time"

// SliceCursor iterates over materialized rows.
type SliceCursor struct {
	rows []*MapRow
	pos  int
	err  error
}

// NewSliceCursor creates a cursor over rows.
func NewSliceCursor(rows []*MapRow) *SliceCursor {
	return &SliceCursor{rows: rows, pos: -1}
}

// FailingAfter makes the cursor report err once the rows are exhausted,
// simulating a fetch failure mid-stream.
func (c *SliceCursor) FailingAfter(err error) *SliceCursor {
	c.err = err
	return c
}

func (c *SliceCursor) Next() bool {
	if c.pos+1 >= len(c.rows) {
		c.pos = len(c.rows)
		return false
	}
	c.pos++
	return true
}

func (c *SliceCursor) Err() error {
	if c.pos >= len(c.rows) {
		return c.err
	}
	return nil
}

func (c *SliceCursor) Close() error { return nil }

func (c *SliceCursor) row() *MapRow {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return &MapRow{values: map[string]any{}}
	}
	return c.rows[c.pos]
}

func (c *SliceCursor) Columns() []string                  { return c.row().Columns() }
func (c *SliceCursor) Has(col string) bool                { return c.row().Has(col) }
func (c *SliceCursor) IsNull(col string) bool             { return c.row().IsNull(col) }
func (c *SliceCursor) String(col string) (string, error)  { return c.row().String(col) }
func (c *SliceCursor) Int(col string) (int, error)        { return c.row().Int(col) }
func (c *SliceCursor) Int64(col string) (int64, error)    { return c.row().Int64(col) }
func (c *SliceCursor) Bool(col string) (bool, error)      { return c.row().Bool(col) }
func (c *SliceCursor) Time(col string) (time.Time, error) { return c.row().Time(col) }
func (c *SliceCursor) Bytes(col string) ([]byte, error)   { return c.row().Bytes(col) }
func (c *SliceCursor) SafeString(col string) string       { return c.row().SafeString(col) }
func (c *SliceCursor) SafeInt(col string) int             { return c.row().SafeInt(col) }
func (c *SliceCursor) SafeInt64(col string) int64         { return c.row().SafeInt64(col) }
func (c *SliceCursor) SafeBool(col string) bool           { return c.row().SafeBool(col) }
func (c *SliceCursor) SafeTime(col string) time.Time      { return c.row().SafeTime(col) }
func (c *SliceCursor) SafeBytes(col string) []byte        { return c.row().SafeBytes(col) }

var _ Cursor = (*SliceCursor)(nil)
