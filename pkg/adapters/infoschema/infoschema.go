// Package infoschema renders catalog requests against the SQL-standard
// information_schema views. Backends start from Standard and override the
// listings their own system catalogs describe better.
//
// Statements bind the schema as $1 and the filtered name as $2.
package infoschema

import (
	"maps"

	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/query"
)

// ChildKey identifies one child collection of a parent kind.
type ChildKey struct {
	Parent, Child core.Kind
}

// Dictionary implements catalog.Dictionary from listing tables. A kind
// without a listing is unsupported.
type Dictionary struct {
	SchemasSQL    string
	PrincipalsSQL string
	Objects       map[core.Kind]adapter.Listing
	ChildListings map[ChildKey]adapter.Listing
	// SourceSQL maps a kind to a statement returning TEXT rows for $1.$2.
	SourceSQL map[core.Kind]string
	// FoldNames compares lookup and parent names case-insensitively, for
	// backends that store identifiers as typed but resolve them without case.
	FoldNames bool
}

const dataTypeExpr = `CASE
         WHEN c.character_maximum_length IS NOT NULL
           THEN c.data_type || '(' || c.character_maximum_length || ')'
         WHEN c.data_type IN ('numeric', 'decimal') AND c.numeric_precision IS NOT NULL
           THEN c.data_type || '(' || c.numeric_precision || ',' || coalesce(c.numeric_scale, 0) || ')'
         ELSE c.data_type
       END`

// Standard returns a dictionary using only information_schema.
func Standard() Dictionary {
	return Dictionary{
		SchemasSQL: `
SELECT schema_name AS name
FROM information_schema.schemata
WHERE schema_name NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
ORDER BY schema_name`,
		Objects: map[core.Kind]adapter.Listing{
			core.KindTable: {
				Select: `
SELECT table_name AS name,
       CASE WHEN table_type = 'LOCAL TEMPORARY' THEN 'Y' ELSE 'N' END AS temporary
FROM information_schema.tables
WHERE table_schema = $1 AND table_type IN ('BASE TABLE', 'LOCAL TEMPORARY')`,
				Key:     "table_name",
				OrderBy: "table_name",
			},
			core.KindView: {
				Select: `
SELECT table_name AS name, view_definition AS text
FROM information_schema.views
WHERE table_schema = $1`,
				Key:     "table_name",
				OrderBy: "table_name",
			},
			core.KindSequence: {
				Select: `
SELECT sequence_name AS name, minimum_value AS min_value, maximum_value AS max_value,
       increment AS increment_by, cycle_option AS cycle
FROM information_schema.sequences
WHERE sequence_schema = $1`,
				Key:     "sequence_name",
				OrderBy: "sequence_name",
			},
		},
		ChildListings: map[ChildKey]adapter.Listing{
			{core.KindTable, core.KindColumn}: columnListing(`'BASE TABLE', 'LOCAL TEMPORARY'`),
			{core.KindView, core.KindColumn}:  columnListing(`'VIEW'`),
			{core.KindTable, core.KindConstraint}: {
				Select: `
SELECT tc.table_name AS parent_name, tc.constraint_name AS name,
       CASE tc.constraint_type WHEN 'PRIMARY KEY' THEN 'P' WHEN 'UNIQUE' THEN 'U' ELSE 'C' END AS constraint_type,
       cc.check_clause AS condition, k.column_name, k.ordinal_position AS position
FROM information_schema.table_constraints tc
LEFT JOIN information_schema.key_column_usage k
  ON k.constraint_schema = tc.constraint_schema AND k.constraint_name = tc.constraint_name
 AND k.table_name = tc.table_name
LEFT JOIN information_schema.check_constraints cc
  ON cc.constraint_schema = tc.constraint_schema AND cc.constraint_name = tc.constraint_name
WHERE tc.table_schema = $1
  AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE', 'CHECK')
  AND tc.constraint_name NOT LIKE '%not_null%'`,
				Key:     "tc.table_name",
				OrderBy: "tc.table_name, tc.constraint_name, k.ordinal_position",
			},
			{core.KindTable, core.KindForeignKey}: {
				Select: `
SELECT tc.table_name AS parent_name, tc.constraint_name AS name,
       rc.unique_constraint_schema AS ref_schema, rc.unique_constraint_name AS ref_constraint,
       rc.delete_rule, k.column_name, k.ordinal_position AS position
FROM information_schema.table_constraints tc
JOIN information_schema.referential_constraints rc
  ON rc.constraint_schema = tc.constraint_schema AND rc.constraint_name = tc.constraint_name
JOIN information_schema.key_column_usage k
  ON k.constraint_schema = tc.constraint_schema AND k.constraint_name = tc.constraint_name
 AND k.table_name = tc.table_name
WHERE tc.table_schema = $1 AND tc.constraint_type = 'FOREIGN KEY'`,
				Key:     "tc.table_name",
				OrderBy: "tc.table_name, tc.constraint_name, k.ordinal_position",
			},
		},
	}
}

func columnListing(tableTypes string) adapter.Listing {
	return adapter.Listing{
		Select: `
SELECT c.table_name AS parent_name, c.column_name AS name,
       ` + dataTypeExpr + ` AS data_type,
       c.ordinal_position AS position, c.is_nullable AS nullable, c.column_default AS default_value
FROM information_schema.columns c
JOIN information_schema.tables p
  ON p.table_schema = c.table_schema AND p.table_name = c.table_name
 AND p.table_type IN (` + tableTypes + `)
WHERE c.table_schema = $1`,
		Key:     "c.table_name",
		OrderBy: "c.table_name, c.ordinal_position",
	}
}

// Clone returns a copy whose listing tables can be modified independently.
func (d Dictionary) Clone() Dictionary {
	d.Objects = maps.Clone(d.Objects)
	d.ChildListings = maps.Clone(d.ChildListings)
	d.SourceSQL = maps.Clone(d.SourceSQL)
	return d
}

// Schemas lists the schemas.
func (d Dictionary) Schemas() query.Request {
	return query.NewRequest(d.SchemasSQL)
}

// Principals lists users and roles, when the backend has any.
func (d Dictionary) Principals() query.Request {
	return query.NewRequest(d.PrincipalsSQL)
}

// List loads every object of kind in schema.
func (d Dictionary) List(kind core.Kind, schema string) query.Request {
	l, ok := d.Objects[kind]
	if !ok {
		return query.Request{}
	}
	return l.All(schema)
}

// Lookup loads one object of kind by name.
func (d Dictionary) Lookup(kind core.Kind, schema, name string) query.Request {
	l, ok := d.Objects[kind]
	if !ok {
		return query.Request{}
	}
	return d.filtered(l, schema, name)
}

// Children loads child rows of one parent, or of every parent when
// parentName is empty.
func (d Dictionary) Children(parent, child core.Kind, schema, parentName string) query.Request {
	l, ok := d.ChildListings[ChildKey{parent, child}]
	if !ok {
		return query.Request{}
	}
	if parentName == "" {
		return l.All(schema)
	}
	return d.filtered(l, schema, parentName)
}

func (d Dictionary) filtered(l adapter.Listing, schema, name string) query.Request {
	if d.FoldNames {
		return l.FilteredFold("$2", schema, name)
	}
	return l.Filtered("$2", schema, name)
}

// Source loads the declaration text of an object.
func (d Dictionary) Source(kind core.Kind, schema, name string) query.Request {
	sql, ok := d.SourceSQL[kind]
	if !ok {
		return query.Request{}
	}
	return query.NewRequest(sql, schema, name)
}
