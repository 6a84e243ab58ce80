package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MapRow is a materialized row keyed by upper-cased column name.
// It is used by cursors to hold the current row and by hooks that need to
// keep a row after the cursor advanced.
type MapRow struct {
	cols   []string
	values map[string]any
}

// NewMapRow builds a row from column names and values of equal length.
func NewMapRow(cols []string, values []any) *MapRow {
	r := &MapRow{cols: cols, values: make(map[string]any, len(cols))}
	for i, c := range cols {
		if i < len(values) {
			r.values[strings.ToUpper(c)] = values[i]
		}
	}
	return r
}

// RowFromMap builds a row from a column map. Column order is the order of keys
// given in cols; keys missing from cols are appended in unspecified order.
func RowFromMap(m map[string]any, cols ...string) *MapRow {
	seen := make(map[string]bool, len(m))
	ordered := make([]string, 0, len(m))
	for _, c := range cols {
		if _, ok := m[c]; ok && !seen[c] {
			ordered = append(ordered, c)
			seen[c] = true
		}
	}
	for c := range m {
		if !seen[c] {
			ordered = append(ordered, c)
		}
	}
	values := make([]any, len(ordered))
	for i, c := range ordered {
		values[i] = m[c]
	}
	return NewMapRow(ordered, values)
}

// Snapshot copies the current row of any Row implementation.
func Snapshot(r Row) *MapRow {
	if mr, ok := r.(*MapRow); ok {
		return mr.clone()
	}
	if c, ok := r.(interface{ row() *MapRow }); ok {
		return c.row().clone()
	}
	cols := r.Columns()
	values := make([]any, len(cols))
	for i, c := range cols {
		if r.IsNull(c) {
			continue
		}
		values[i] = r.SafeString(c)
	}
	return NewMapRow(cols, values)
}

func (r *MapRow) clone() *MapRow {
	values := make(map[string]any, len(r.values))
	for k, v := range r.values {
		values[k] = v
	}
	cols := make([]string, len(r.cols))
	copy(cols, r.cols)
	return &MapRow{cols: cols, values: values}
}

// Columns returns the column names in result order.
func (r *MapRow) Columns() []string {
	return r.cols
}

// Has reports whether the row carries the column.
func (r *MapRow) Has(col string) bool {
	_, ok := r.values[strings.ToUpper(col)]
	return ok
}

// IsNull reports whether the column is absent or NULL.
func (r *MapRow) IsNull(col string) bool {
	v, ok := r.values[strings.ToUpper(col)]
	return !ok || v == nil
}

func (r *MapRow) get(col string) (any, error) {
	v, ok := r.values[strings.ToUpper(col)]
	if !ok {
		return nil, fmt.Errorf("column %s not in result", col)
	}
	if v == nil {
		return nil, fmt.Errorf("column %s is NULL", col)
	}
	return v, nil
}

// String returns the column as text.
func (r *MapRow) String(col string) (string, error) {
	v, err := r.get(col)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case time.Time:
		return x.Format(time.RFC3339), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return fmt.Sprint(x), nil
	}
}

// Int64 returns the column as a 64-bit integer.
func (r *MapRow) Int64(col string) (int64, error) {
	v, err := r.get(col)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case float32:
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseInt(col, string(x))
	case string:
		return parseInt(col, x)
	default:
		return parseInt(col, fmt.Sprint(x))
	}
}

func parseInt(col, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not a number", col, s)
	}
	return int64(f), nil
}

// Int returns the column as an int.
func (r *MapRow) Int(col string) (int, error) {
	n, err := r.Int64(col)
	return int(n), err
}

// Bool returns the column as a boolean. Text values Y/YES/TRUE/1/ENABLED are true.
func (r *MapRow) Bool(col string) (bool, error) {
	v, err := r.get(col)
	if err != nil {
		return false, err
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return parseBool(x), nil
	case []byte:
		return parseBool(string(x)), nil
	default:
		n, err := r.Int64(col)
		return n != 0, err
	}
}

func parseBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "YES", "TRUE", "T", "1", "ENABLED":
		return true
	default:
		return false
	}
}

// Time returns the column as a timestamp.
func (r *MapRow) Time(col string) (time.Time, error) {
	v, err := r.get(col)
	if err != nil {
		return time.Time{}, err
	}
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return parseTime(col, x)
	case []byte:
		return parseTime(col, string(x))
	default:
		return time.Time{}, fmt.Errorf("column %s: %T is not a timestamp", col, v)
	}
}

func parseTime(col, s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("column %s: %q is not a timestamp", col, s)
}

// Bytes returns the column as raw bytes.
func (r *MapRow) Bytes(col string) ([]byte, error) {
	v, err := r.get(col)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	default:
		return []byte(fmt.Sprint(x)), nil
	}
}

// SafeString returns the column as text or "" for NULL/absent columns.
func (r *MapRow) SafeString(col string) string {
	s, _ := r.String(col)
	return s
}

// SafeInt returns the column as an int or 0.
func (r *MapRow) SafeInt(col string) int {
	n, _ := r.Int(col)
	return n
}

// SafeInt64 returns the column as an int64 or 0.
func (r *MapRow) SafeInt64(col string) int64 {
	n, _ := r.Int64(col)
	return n
}

// SafeBool returns the column as a boolean or false.
func (r *MapRow) SafeBool(col string) bool {
	b, _ := r.Bool(col)
	return b
}

// SafeTime returns the column as a timestamp or the zero time.
func (r *MapRow) SafeTime(col string) time.Time {
	t, _ := r.Time(col)
	return t
}

// SafeBytes returns the column as bytes or nil.
func (r *MapRow) SafeBytes(col string) []byte {
	b, _ := r.Bytes(col)
	return b
}
