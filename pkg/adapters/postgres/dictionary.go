package postgres

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

	d.PrincipalsSQL = `
SELECT rolname AS name, CASE WHEN rolcanlogin THEN 'N' ELSE 'Y' END AS is_role
FROM pg_roles
WHERE rolname NOT LIKE 'pg\_%'
ORDER BY rolname`

	d.Objects[core.KindTable] = adapter.Listing{
		Select: `
SELECT c.relname AS name, obj_description(c.oid, 'pg_class') AS comments,
       CASE WHEN c.relpersistence = 't' THEN 'Y' ELSE 'N' END AS temporary
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1 AND c.relkind IN ('r', 'p')`,
		Key:     "c.relname",
		OrderBy: "c.relname",
	}
	d.Objects[core.KindView] = adapter.Listing{
		Select: `
SELECT c.relname AS name, pg_get_viewdef(c.oid, true) AS text,
       obj_description(c.oid, 'pg_class') AS comments
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1 AND c.relkind = 'v'`,
		Key:     "c.relname",
		OrderBy: "c.relname",
	}
	d.Objects[core.KindMaterializedView] = adapter.Listing{
		Select: `
SELECT m.matviewname AS name, m.definition AS query, 'DEMAND' AS refresh_mode,
       CASE WHEN m.ispopulated THEN 'VALID' ELSE 'INVALID' END AS status
FROM pg_matviews m
WHERE m.schemaname = $1`,
		Key:     "m.matviewname",
		OrderBy: "m.matviewname",
	}
	d.Objects[core.KindSequence] = adapter.Listing{
		Select: `
SELECT sequencename AS name, min_value, max_value::text AS max_value,
       increment_by, CASE WHEN cycle THEN 'Y' ELSE 'N' END AS cycle, last_value
FROM pg_sequences
WHERE schemaname = $1`,
		Key:     "sequencename",
		OrderBy: "sequencename",
	}
	d.Objects[core.KindTrigger] = adapter.Listing{
		Select: `
SELECT trigger_name AS name, event_object_table AS parent_name, action_timing AS timing,
       string_agg(event_manipulation, ' OR ' ORDER BY event_manipulation) AS event,
       action_statement AS body
FROM information_schema.triggers
WHERE trigger_schema = $1`,
		Key:     "trigger_name",
		GroupBy: "trigger_name, event_object_table, action_timing, action_statement",
		OrderBy: "trigger_name",
	}
	d.Objects[core.KindDomain] = adapter.Listing{
		Select: `
SELECT d.domain_name AS name, d.data_type, d.domain_default AS default_value,
       string_agg(cc.check_clause, ' AND ') AS condition
FROM information_schema.domains d
LEFT JOIN information_schema.domain_constraints dc
  ON dc.domain_schema = d.domain_schema AND dc.domain_name = d.domain_name
LEFT JOIN information_schema.check_constraints cc
  ON cc.constraint_schema = dc.constraint_schema AND cc.constraint_name = dc.constraint_name
WHERE d.domain_schema = $1`,
		Key:     "d.domain_name",
		GroupBy: "d.domain_name, d.data_type, d.domain_default",
		OrderBy: "d.domain_name",
	}
	d.Objects[core.KindType] = adapter.Listing{
		Select: `
SELECT t.typname AS name,
       CASE t.typtype WHEN 'c' THEN 'OBJECT' WHEN 'e' THEN 'ENUM' ELSE 'OTHER' END AS type_code,
       'Y' AS final, obj_description(t.oid, 'pg_type') AS comments
FROM pg_type t
JOIN pg_namespace n ON n.oid = t.typnamespace
WHERE n.nspname = $1 AND t.typtype IN ('c', 'e')
  AND (t.typrelid = 0 OR (SELECT c.relkind FROM pg_class c WHERE c.oid = t.typrelid) = 'c')`,
		Key:     "t.typname",
		OrderBy: "t.typname",
	}

	cols := d.ChildListings[infoschema.ChildKey{Parent: core.KindTable, Child: core.KindColumn}]
	cols.Select = `
SELECT c.table_name AS parent_name, c.column_name AS name,
       format_type(a.atttypid, a.atttypmod) AS data_type,
       c.ordinal_position AS position, c.is_nullable AS nullable, c.column_default AS default_value,
       col_description(a.attrelid, a.attnum) AS comments
FROM information_schema.columns c
JOIN pg_namespace n ON n.nspname = c.table_schema
JOIN pg_class r ON r.relnamespace = n.oid AND r.relname = c.table_name AND r.relkind IN ('r', 'p')
JOIN pg_attribute a ON a.attrelid = r.oid AND a.attname = c.column_name
WHERE c.table_schema = $1`
	d.ChildListings[infoschema.ChildKey{Parent: core.KindTable, Child: core.KindColumn}] = cols

	d.ChildListings[infoschema.ChildKey{Parent: core.KindType, Child: core.KindTypeAttribute}] = adapter.Listing{
		Select: `
SELECT t.typname AS parent_name, a.attname AS name,
       format_type(a.atttypid, a.atttypmod) AS data_type, a.attnum AS position
FROM pg_type t
JOIN pg_namespace n ON n.oid = t.typnamespace
JOIN pg_attribute a ON a.attrelid = t.typrelid AND a.attnum > 0 AND NOT a.attisdropped
WHERE n.nspname = $1 AND t.typtype = 'c'`,
		Key:     "t.typname",
		OrderBy: "t.typname, a.attnum",
	}
	d.ChildListings[infoschema.ChildKey{Parent: core.KindTable, Child: core.KindIndex}] = adapter.Listing{
		Select: `
SELECT t.relname AS parent_name, i.relname AS name,
       CASE WHEN ix.indisunique THEN 'Y' ELSE 'N' END AS is_unique,
       am.amname AS index_type,
       string_agg(a.attname || ':' || k.n, ',' ORDER BY k.n) AS columns
FROM pg_index ix
JOIN pg_class i ON i.oid = ix.indexrelid
JOIN pg_class t ON t.oid = ix.indrelid
JOIN pg_namespace n ON n.oid = t.relnamespace
JOIN pg_am am ON am.oid = i.relam
CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, n)
JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
WHERE n.nspname = $1 AND NOT ix.indisprimary`,
		Key:     "t.relname",
		GroupBy: "t.relname, i.relname, ix.indisunique, am.amname",
		OrderBy: "t.relname, i.relname",
	}

	d.SourceSQL = map[core.Kind]string{
		core.KindView: `
SELECT pg_get_viewdef(format('%I.%I', $1::text, $2::text)::regclass, true) AS text`,
	}
	return d
}

// DDLDictionary renders requests against the pg_get_*def functions.
// PostgreSQL has no function describing a whole table; table declarations
// come from the structural fallback.
type DDLDictionary struct{}

const relation = `format('%I.%I', $1::text, $2::text)::regclass`

// Transform needs no session setup.
func (DDLDictionary) Transform(ddl.Options) []query.Request {
	return nil
}

// Primary fetches view and materialized view declarations.
func (DDLDictionary) Primary(kind core.Kind, schema, name string) query.Request {
	switch kind {
	case core.KindView:
		return query.NewRequest(`
SELECT 'CREATE OR REPLACE VIEW ' || quote_ident($1) || '.' || quote_ident($2) || ' AS' || chr(10)
       || pg_get_viewdef(`+relation+`, true) AS ddl`, schema, name)
	case core.KindMaterializedView:
		return query.NewRequest(`
SELECT 'CREATE MATERIALIZED VIEW ' || quote_ident($1) || '.' || quote_ident($2) || ' AS' || chr(10)
       || pg_get_viewdef(`+relation+`, true) AS ddl`, schema, name)
	default:
		return query.Request{}
	}
}

// Dependent renders indexes, triggers and foreign keys of a table.
func (DDLDictionary) Dependent(dep core.DependentKind, _ core.Kind, schema, name string) query.Request {
	switch dep {
	case core.DependentIndexes:
		return query.NewRequest(`
SELECT pg_get_indexdef(ix.indexrelid) || ';' AS ddl
FROM pg_index ix
WHERE ix.indrelid = `+relation+` AND NOT ix.indisprimary
ORDER BY ix.indexrelid`, schema, name)
	case core.DependentTriggers:
		return query.NewRequest(`
SELECT pg_get_triggerdef(tg.oid, true) || ';' AS ddl
FROM pg_trigger tg
WHERE tg.tgrelid = `+relation+` AND NOT tg.tgisinternal
ORDER BY tg.tgname`, schema, name)
	case core.DependentForeignKeys:
		return query.NewRequest(`
SELECT 'ALTER TABLE ' || quote_ident($1) || '.' || quote_ident($2)
       || ' ADD CONSTRAINT ' || quote_ident(k.conname) || ' ' || pg_get_constraintdef(k.oid, true) || ';' AS ddl
FROM pg_constraint k
WHERE k.conrelid = `+relation+` AND k.contype = 'f'
ORDER BY k.conname`, schema, name)
	default:
		return query.Request{}
	}
}

// Grants lists table privileges.
func (DDLDictionary) Grants(_ core.Kind, schema, name string) query.Request {
	return query.NewRequest(`
SELECT grantee, privilege_type AS privilege
FROM information_schema.role_table_grants
WHERE table_schema = $1 AND table_name = $2
ORDER BY grantee, privilege_type`, schema, name)
}
