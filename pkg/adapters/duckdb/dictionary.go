package duckdb

import (
	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/leapstack-labs/leapcat/pkg/adapters/infoschema"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/leapstack-labs/leapcat/pkg/query"
)

var dictionary = newDictionary()

func newDictionary() infoschema.Dictionary {
	d := infoschema.Standard().Clone()
	d.FoldNames = true

	d.SchemasSQL = `
SELECT schema_name AS name
FROM information_schema.schemata
WHERE catalog_name = current_database()
  AND schema_name NOT IN ('information_schema', 'pg_catalog')
ORDER BY schema_name`

	d.Objects[core.KindTable] = adapter.Listing{
		Select: `
SELECT table_name AS name, comment AS comments,
       CASE WHEN temporary THEN 'Y' ELSE 'N' END AS temporary
FROM duckdb_tables()
WHERE schema_name = $1 AND database_name = current_database()`,
		Key:     "table_name",
		OrderBy: "table_name",
	}
	d.Objects[core.KindView] = adapter.Listing{
		Select: `
SELECT view_name AS name, sql AS text, comment AS comments
FROM duckdb_views()
WHERE schema_name = $1 AND database_name = current_database() AND NOT internal`,
		Key:     "view_name",
		OrderBy: "view_name",
	}
	d.Objects[core.KindSequence] = adapter.Listing{
		Select: `
SELECT sequence_name AS name, min_value, CAST(max_value AS VARCHAR) AS max_value,
       increment_by, CASE WHEN cycle THEN 'Y' ELSE 'N' END AS cycle, last_value
FROM duckdb_sequences()
WHERE schema_name = $1 AND database_name = current_database()`,
		Key:     "sequence_name",
		OrderBy: "sequence_name",
	}
	d.Objects[core.KindType] = adapter.Listing{
		Select: `
SELECT type_name AS name, logical_type AS type_code, 'Y' AS final
FROM duckdb_types()
WHERE schema_name = $1 AND database_name = current_database() AND NOT internal`,
		Key:     "type_name",
		OrderBy: "type_name",
	}

	d.ChildListings[infoschema.ChildKey{Parent: core.KindTable, Child: core.KindColumn}] = columnListing("duckdb_tables()")
	d.ChildListings[infoschema.ChildKey{Parent: core.KindView, Child: core.KindColumn}] = columnListing("duckdb_views()")
	d.ChildListings[infoschema.ChildKey{Parent: core.KindTable, Child: core.KindIndex}] = adapter.Listing{
		Select: `
SELECT table_name AS parent_name, index_name AS name,
       CASE WHEN is_unique THEN 'Y' ELSE 'N' END AS is_unique, 'ART' AS index_type
FROM duckdb_indexes()
WHERE schema_name = $1 AND database_name = current_database()`,
		Key:     "table_name",
		OrderBy: "table_name, index_name",
	}
	return d
}

func columnListing(parents string) adapter.Listing {
	return adapter.Listing{
		Select: `
SELECT c.table_name AS parent_name, c.column_name AS name, c.data_type,
       c.column_index AS position, CASE WHEN c.is_nullable THEN 'Y' ELSE 'N' END AS nullable,
       c.column_default AS default_value, c.comment AS comments
FROM duckdb_columns() c
JOIN ` + parents + ` p
  ON p.database_name = c.database_name AND p.schema_name = c.schema_name
 AND p.` + parentColumn(parents) + ` = c.table_name
WHERE c.schema_name = $1 AND c.database_name = current_database()`,
		Key:     "c.table_name",
		OrderBy: "c.table_name, c.column_index",
	}
}

func parentColumn(parents string) string {
	if parents == "duckdb_views()" {
		return "view_name"
	}
	return "table_name"
}

// DDLDictionary reads the CREATE statements DuckDB keeps for every object.
type DDLDictionary struct{}

// Transform needs no session setup.
func (DDLDictionary) Transform(ddl.Options) []query.Request {
	return nil
}

// Primary fetches the stored CREATE statement of tables, views and sequences.
func (DDLDictionary) Primary(kind core.Kind, schema, name string) query.Request {
	var source, column string
	switch kind {
	case core.KindTable:
		source, column = "duckdb_tables()", "table_name"
	case core.KindView:
		source, column = "duckdb_views()", "view_name"
	case core.KindSequence:
		source, column = "duckdb_sequences()", "sequence_name"
	default:
		return query.Request{}
	}
	return query.NewRequest(`
SELECT sql AS ddl FROM `+source+`
WHERE schema_name = $1 AND lower(`+column+`) = lower($2) AND database_name = current_database()`,
		schema, name)
}

// Dependent fetches index statements. Foreign keys are part of the table
// statement and DuckDB has no triggers.
func (DDLDictionary) Dependent(dep core.DependentKind, _ core.Kind, schema, name string) query.Request {
	if dep != core.DependentIndexes {
		return query.Request{}
	}
	return query.NewRequest(`
SELECT sql AS ddl FROM duckdb_indexes()
WHERE schema_name = $1 AND lower(table_name) = lower($2) AND database_name = current_database()
ORDER BY index_name`, schema, name)
}

// Grants is unsupported; DuckDB has no privilege system.
func (DDLDictionary) Grants(core.Kind, string, string) query.Request {
	return query.Request{}
}
