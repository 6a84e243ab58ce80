package decl_test

import (
	"testing"

	"github.com/leapstack-labs/leapcat/internal/testutil"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSyntheticBody(t *testing.T) {
	src := `PACKAGE BODY demo AS
  CURSOR c_all IS SELECT * FROM dual;
  TYPE rec_t IS RECORD (id NUMBER);
  PROCEDURE load(p_id IN NUMBER, p_name OUT VARCHAR2) IS
  BEGIN
    NULL;
  END load;
  FUNCTION total(p_id NUMBER) RETURN NUMBER IS
  BEGIN
    RETURN 0;
  END total;
END demo;`

	d := decl.Extract(src, testutil.NewTestLogger(t))

	require.Len(t, d.Procedures, 1)
	assert.Len(t, d.Procedures[0].Params, 2)
	assert.Equal(t, core.Parameter{Name: "P_NAME", Type: "VARCHAR2", Mode: "OUT"}, d.Procedures[0].Params[1])

	require.Len(t, d.Functions, 1)
	fn := d.Functions[0]
	require.Len(t, fn.Params, 2)
	assert.Equal(t, core.Parameter{Name: "RETURN", Type: "NUMBER", IsReturn: true}, fn.Params[0])
	assert.Equal(t, "P_ID", fn.Params[1].Name)
	assert.Equal(t, "NUMBER", fn.ReturnType())

	assert.Equal(t, []core.Variable{{Name: "C_ALL", Type: "CURSOR"}}, d.Variables)
	assert.Equal(t, []core.NestedType{{Name: "REC_T"}}, d.NestedTypes)
}

func TestExtractVariableLists(t *testing.T) {
	src := `PACKAGE p AS
  a, b, c NUMBER;
  k CONSTANT VARCHAR2(5) := 'x';
END;`

	d := decl.Extract(src, testutil.NewTestLogger(t))
	assert.Equal(t, []core.Variable{
		{Name: "A", Type: "NUMBER"},
		{Name: "B", Type: "NUMBER"},
		{Name: "C", Type: "NUMBER"},
		{Name: "K", Type: "VARCHAR2(5)"},
	}, d.Variables)
}

func TestExtractObjectTypeMembers(t *testing.T) {
	src := `TYPE point_t AS OBJECT (
  x NUMBER,
  y NUMBER,
  MEMBER FUNCTION dist RETURN NUMBER,
  MEMBER PROCEDURE move(dx NUMBER, dy NUMBER)
)`

	d := decl.Extract(src, nil)
	assert.Len(t, d.Variables, 2)
	require.Len(t, d.Functions, 1)
	assert.Equal(t, "NUMBER", d.Functions[0].ReturnType())
	require.Len(t, d.Procedures, 1)
	assert.Len(t, d.Procedures[0].Params, 2)
}

func TestExtractDescRecOverride(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []core.Variable
	}{
		{
			name: "desc_rec with three variables",
			src: `PACKAGE dbms_x AS
  TYPE desc_rec IS RECORD (col_type NUMBER);
  v1 NUMBER;
  v2 NUMBER;
  v3 DATE;
END;`,
			want: []core.Variable{
				{Name: "V1", Type: "NUMBER"},
				{Name: "V2", Type: "NUMBER"},
				{Name: "COL_NAME", Type: "VARCHAR2(32767)"},
			},
		},
		{
			name: "desc_rec with two variables",
			src: `PACKAGE dbms_x AS
  TYPE desc_rec IS RECORD (col_type NUMBER);
  v1 NUMBER;
  v2 NUMBER;
END;`,
			want: []core.Variable{
				{Name: "V1", Type: "NUMBER"},
				{Name: "V2", Type: "NUMBER"},
			},
		},
		{
			name: "other nested type",
			src: `PACKAGE dbms_x AS
  TYPE desc_rec2 IS RECORD (col_type NUMBER);
  v1 NUMBER;
  v2 NUMBER;
  v3 DATE;
END;`,
			want: []core.Variable{
				{Name: "V1", Type: "NUMBER"},
				{Name: "V2", Type: "NUMBER"},
				{Name: "V3", Type: "DATE"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decl.Extract(tt.src, testutil.NewTestLogger(t))
			assert.Equal(t, tt.want, d.Variables)
		})
	}
}

func TestExtractParseFailureIsEmpty(t *testing.T) {
	d := decl.Extract("PACKAGE broken AS x NUMBER", testutil.NewTestLogger(t))
	assert.True(t, d.IsEmpty())
}
