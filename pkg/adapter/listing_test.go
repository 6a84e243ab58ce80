package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListing(t *testing.T) {
	l := Listing{
		Select:  "SELECT i.NAME, LISTAGG(c.COL) AS COLUMNS FROM IDX i WHERE i.OWNER = :1",
		Key:     "i.TABLE_NAME",
		GroupBy: "i.NAME",
		OrderBy: "i.NAME",
	}

	all := l.All("HR")
	assert.Equal(t, "SELECT i.NAME, LISTAGG(c.COL) AS COLUMNS FROM IDX i WHERE i.OWNER = :1\nGROUP BY i.NAME\nORDER BY i.NAME", all.SQL)
	assert.Equal(t, []any{"HR"}, all.Args)

	one := l.Filtered(":2", "HR", "EMP")
	assert.Equal(t, "SELECT i.NAME, LISTAGG(c.COL) AS COLUMNS FROM IDX i WHERE i.OWNER = :1\n  AND i.TABLE_NAME = :2\nGROUP BY i.NAME\nORDER BY i.NAME", one.SQL)
	assert.Equal(t, []any{"HR", "EMP"}, one.Args)

	folded := l.FilteredFold("$2", "main", "Emp")
	assert.Contains(t, folded.SQL, "\n  AND lower(i.TABLE_NAME) = lower($2)\nGROUP BY")
}
