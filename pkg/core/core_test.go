package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindCapabilities(t *testing.T) {
	tests := []struct {
		kind Kind
		want Capabilities
	}{
		{KindTable, Capabilities{Comment: true, Attributes: true, Dependencies: true, DDL: true}},
		{KindPackage, Capabilities{Methods: true, Source: true, DDL: true}},
		{KindType, Capabilities{Attributes: true, Methods: true, Source: true, DDL: true}},
		{KindColumn, Capabilities{Comment: true}},
		{KindPrincipal, Capabilities{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Capabilities())
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
		ok    bool
	}{
		{"table", KindTable, true},
		{"materialized_view", KindMaterializedView, true},
		{"mview", KindMaterializedView, true},
		{"Package", KindPackage, true},
		{"dblink", KindDBLink, true},
		{"nonsense", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseKind(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseObjectState(t *testing.T) {
	assert.Equal(t, StateNormal, ParseObjectState("VALID"))
	assert.Equal(t, StateNormal, ParseObjectState(""))
	assert.Equal(t, StateInvalid, ParseObjectState("invalid"))
	assert.Equal(t, StateInvalid, ParseObjectState("DISABLED"))
	assert.Equal(t, "INVALID", StateInvalid.String())
}

func TestTypeTable(t *testing.T) {
	table := NewTypeTable(
		PredefinedType{Name: "VARCHAR2", Family: "character", Sizable: true, MaxLength: 4000},
		PredefinedType{Name: "NUMBER", Family: "numeric", Sizable: true},
		PredefinedType{Name: "number", Family: "duplicate"},
	)

	require.Equal(t, 2, table.Len())

	pt, ok := table.Lookup("varchar2(30)")
	require.True(t, ok)
	assert.Equal(t, "character", pt.Family)

	pt, ok = table.Lookup("NUMBER")
	require.True(t, ok)
	assert.Equal(t, "numeric", pt.Family)

	_, ok = table.Lookup("CLOB")
	assert.False(t, ok)

	names := table.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"VARCHAR2", "NUMBER"}, table.Names(), "Names must return a copy")

	var nilTable *TypeTable
	_, ok = nilTable.Lookup("NUMBER")
	assert.False(t, ok)
}

func TestErrors(t *testing.T) {
	nf := &NotFoundError{Kind: KindTable, Name: "EMP", Container: "schema HR"}
	wrapped := fmt.Errorf("lookup: %w", nf)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, `TABLE "EMP" not found in schema HR`, nf.Error())

	be := &BackendError{Op: "query", Request: "SELECT 1 FROM DUAL", Err: errors.New("timeout")}
	assert.True(t, IsBackend(fmt.Errorf("x: %w", be)))
	assert.Contains(t, be.Error(), "timeout")
	assert.False(t, IsBackend(nf))

	mr := &MalformedRowError{Cache: "indexes", Key: "EMP/IDX", Err: errors.New("bad")}
	assert.ErrorContains(t, mr, "indexes")
}

func TestFunctionReturnType(t *testing.T) {
	f := Function{Name: "F", Params: []Parameter{{Name: "RETURN", Type: "NUMBER", IsReturn: true}}}
	assert.Equal(t, "NUMBER", f.ReturnType())
	assert.Equal(t, "", Function{Name: "G"}.ReturnType())
	assert.True(t, Declarations{}.IsEmpty())
}
