package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRow_Accessors(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	row := NewMapRow(
		[]string{"name", "position", "nullable", "created", "payload", "empty", "flag"},
		[]any{[]byte("EMP"), "3", "Y", ts, []byte{1, 2}, nil, int64(1)},
	)

	name, err := row.String("NAME")
	require.NoError(t, err)
	assert.Equal(t, "EMP", name)

	pos, err := row.Int("Position")
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	b, err := row.Bool("nullable")
	require.NoError(t, err)
	assert.True(t, b)

	got, err := row.Time("created")
	require.NoError(t, err)
	assert.Equal(t, ts, got)

	raw, err := row.Bytes("payload")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, raw)

	assert.True(t, row.SafeBool("flag"))
	assert.True(t, row.Has("empty"))
	assert.True(t, row.IsNull("empty"))
	assert.True(t, row.IsNull("missing"))
	assert.False(t, row.Has("missing"))
}

func TestMapRow_StrictVersusSafe(t *testing.T) {
	row := NewMapRow([]string{"A", "B"}, []any{nil, "x"})

	_, err := row.String("A")
	assert.ErrorContains(t, err, "NULL")
	_, err = row.Int("missing")
	assert.ErrorContains(t, err, "not in result")
	_, err = row.Int("B")
	assert.Error(t, err)

	assert.Equal(t, "", row.SafeString("A"))
	assert.Equal(t, 0, row.SafeInt("B"))
	assert.Equal(t, int64(0), row.SafeInt64("missing"))
	assert.True(t, row.SafeTime("missing").IsZero())
	assert.Nil(t, row.SafeBytes("A"))
}

func TestSnapshot_IsIndependentOfCursor(t *testing.T) {
	cur := NewSliceCursor([]*MapRow{
		NewMapRow([]string{"N"}, []any{"one"}),
		NewMapRow([]string{"N"}, []any{"two"}),
	})
	require.True(t, cur.Next())
	snap := Snapshot(cur)
	require.True(t, cur.Next())

	assert.Equal(t, "one", snap.SafeString("N"))
	assert.Equal(t, "two", cur.SafeString("N"))
	assert.False(t, cur.Next())
	assert.NoError(t, cur.Err())
}

func TestSliceCursor_FailingAfter(t *testing.T) {
	cur := NewSliceCursor([]*MapRow{NewMapRow([]string{"N"}, []any{"one"})}).FailingAfter(errors.New("boom"))
	require.True(t, cur.Next())
	assert.NoError(t, cur.Err())
	require.False(t, cur.Next())
	assert.EqualError(t, cur.Err(), "boom")
}

func TestSQLExecutor_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT table_name").
		WithArgs("HR").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "NUM_ROWS"}).
			AddRow("EMP", int64(14)).
			AddRow("DEPT", nil))

	exec := NewSQLExecutor(db, nil)
	cur, err := exec.Query(context.Background(), NewRequest("SELECT table_name, num_rows FROM all_tables WHERE owner = :1", "HR"))
	require.NoError(t, err)
	defer func() { _ = cur.Close() }()

	var names []string
	var counts []int64
	for cur.Next() {
		names = append(names, cur.SafeString("table_name"))
		counts = append(counts, cur.SafeInt64("NUM_ROWS"))
	}
	require.NoError(t, cur.Err())
	assert.Equal(t, []string{"EMP", "DEPT"}, names)
	assert.Equal(t, []int64{14, 0}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLExecutor_Errors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT broken").WillReturnError(errors.New("ORA-00942"))
	mock.ExpectExec("BEGIN").WillReturnError(errors.New("ORA-06550"))

	exec := NewSQLExecutor(db, nil)

	_, err = exec.Query(context.Background(), NewRequest("SELECT broken"))
	require.Error(t, err)
	assert.True(t, core.IsBackend(err))
	assert.Contains(t, err.Error(), "ORA-00942")

	err = exec.Exec(context.Background(), NewRequest("BEGIN NULL; END;"))
	require.Error(t, err)
	assert.True(t, core.IsBackend(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLExecutor_UnsupportedAndDisconnected(t *testing.T) {
	exec := NewSQLExecutor(nil, nil)

	cur, err := exec.Query(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, cur.Next())
	assert.NoError(t, exec.Exec(context.Background(), Request{}))

	_, err = exec.Query(context.Background(), NewRequest("SELECT 1"))
	assert.ErrorContains(t, err, "not established")
}
