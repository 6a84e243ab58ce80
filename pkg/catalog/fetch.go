package catalog

import (
	"context"
	"errors"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/query"
)

// Row mapping hooks. A returned error marks the row malformed; the cache logs
// and skips it.

func (s *Schema) newObject(row query.Row) (object, error) {
	name, err := row.String(ColName)
	if err != nil {
		return object{}, err
	}
	if name == "" {
		return object{}, errors.New("empty object name")
	}
	return object{
		schema:    s,
		name:      name,
		comment:   row.SafeString(ColComments),
		persisted: true,
		state:     core.ParseObjectState(row.SafeString(ColStatus)),
	}, nil
}

func (s *Schema) fetchTable(_ context.Context, row query.Row) (*Table, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	return &Table{object: o, temporary: row.SafeBool(ColTemporary)}, nil
}

func (s *Schema) fetchView(_ context.Context, row query.Row) (*View, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	return &View{object: o, text: row.SafeString(ColText)}, nil
}

func (s *Schema) fetchMaterializedView(_ context.Context, row query.Row) (*MaterializedView, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	return &MaterializedView{object: o, query: row.SafeString(ColQuery), refreshMode: row.SafeString(ColRefreshMode)}, nil
}

func (s *Schema) tableRef(name string) Ref {
	if name == "" {
		return Ref{}
	}
	return Ref{Kind: core.KindTable, Schema: s.name, Name: name}
}

func (s *Schema) fetchConstraint(_ context.Context, t *Table, row query.Row) (*Constraint, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	ctype, err := ParseConstraintType(row.SafeString(ColConstraintType))
	if err != nil {
		return nil, err
	}
	return &Constraint{object: o, table: t.Ref(), ctype: ctype, condition: row.SafeString(ColCondition)}, nil
}

func (s *Schema) fetchForeignKey(_ context.Context, t *Table, row query.Row) (*ForeignKey, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	refName, err := row.String(ColRefConstraint)
	if err != nil {
		return nil, err
	}
	refSchema := row.SafeString(ColRefSchema)
	if refSchema == "" {
		refSchema = s.name
	}
	return &ForeignKey{
		object:     o,
		table:      t.Ref(),
		referenced: NewLazyRef(s.db, Ref{Kind: core.KindConstraint, Schema: refSchema, Name: refName}),
		deleteRule: row.SafeString(ColDeleteRule),
	}, nil
}

func (s *Schema) fetchIndex(_ context.Context, t *Table, row query.Row) (*Index, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	return &Index{object: o, table: t.Ref(), unique: row.SafeBool(ColUnique), indexType: row.SafeString(ColIndexType)}, nil
}

func fetchKeyColumn(row query.Row) (KeyColumn, bool, error) {
	if !row.Has(ColColumn) || row.IsNull(ColColumn) {
		return KeyColumn{}, false, nil
	}
	name, err := row.String(ColColumn)
	if err != nil {
		return KeyColumn{}, false, err
	}
	desc := row.SafeString(ColDescending)
	return KeyColumn{
		Name:       name,
		Position:   row.SafeInt(ColPosition),
		Descending: desc == "DESC" || desc == "Y",
	}, true, nil
}

func (s *Schema) fetchTrigger(_ context.Context, row query.Row) (*Trigger, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	return &Trigger{
		object: o,
		table:  s.tableRef(row.SafeString(ColParent)),
		timing: row.SafeString(ColTiming),
		event:  row.SafeString(ColEvent),
		body:   row.SafeString(ColBody),
	}, nil
}

func (s *Schema) fetchSequence(_ context.Context, row query.Row) (*Sequence, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	inc := row.SafeInt64(ColIncrement)
	if inc == 0 {
		inc = 1
	}
	return &Sequence{
		object:    o,
		minValue:  row.SafeInt64(ColMinValue),
		maxValue:  row.SafeString(ColMaxValue),
		increment: inc,
		cycle:     row.SafeBool(ColCycle),
		lastValue: row.SafeInt64(ColLastValue),
	}, nil
}

func (s *Schema) fetchSynonym(_ context.Context, row query.Row) (*Synonym, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	target, err := row.String(ColTargetName)
	if err != nil {
		return nil, err
	}
	targetSchema := row.SafeString(ColTargetSchema)
	if targetSchema == "" {
		targetSchema = s.name
	}
	return &Synonym{
		object: o,
		target: NewLazyRef(s.db, Ref{Schema: targetSchema, Name: target}),
		dbLink: row.SafeString(ColDBLink),
	}, nil
}

func (s *Schema) fetchType(_ context.Context, row query.Row) (*DataType, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	t := &DataType{object: o, typeCode: row.SafeString(ColTypeCode), final: row.SafeBool(ColFinal)}
	if super := row.SafeString(ColSuperName); super != "" {
		superSchema := row.SafeString(ColSuperSchema)
		if superSchema == "" {
			superSchema = s.name
		}
		t.super = NewLazyRef(s.db, Ref{Kind: core.KindType, Schema: superSchema, Name: super})
	}
	return t, nil
}

func fetchTypeAttribute(_ context.Context, t *DataType, row query.Row) (*TypeAttribute, error) {
	name, err := row.String(ColName)
	if err != nil {
		return nil, err
	}
	return &TypeAttribute{
		typeName: t.name,
		name:     name,
		dataType: row.SafeString(ColDataType),
		position: row.SafeInt(ColPosition),
	}, nil
}

func (s *Schema) fetchPackage(_ context.Context, row query.Row) (*Package, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	return &Package{object: o, hasBody: row.SafeBool(ColHasBody)}, nil
}

func (s *Schema) fetchDBLink(_ context.Context, row query.Row) (*DBLink, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	return &DBLink{object: o, username: row.SafeString(ColUsername), host: row.SafeString(ColHost)}, nil
}

func (s *Schema) fetchDomain(_ context.Context, row query.Row) (*Domain, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	return &Domain{
		object:       o,
		dataType:     row.SafeString(ColDataType),
		defaultValue: row.SafeString(ColDefault),
		condition:    row.SafeString(ColCondition),
	}, nil
}

func (s *Schema) fetchOperator(_ context.Context, row query.Row) (*Operator, error) {
	o, err := s.newObject(row)
	if err != nil {
		return nil, err
	}
	return &Operator{object: o, bindings: row.SafeInt(ColBindings)}, nil
}

func fetchPrincipal(_ context.Context, row query.Row) (*Principal, error) {
	name, err := row.String(ColName)
	if err != nil {
		return nil, err
	}
	return &Principal{name: name, isRole: row.SafeBool(ColIsRole)}, nil
}
