package oracle

import (
	"fmt"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/leapstack-labs/leapcat/pkg/query"
)

// DDLDictionary renders DBMS_METADATA requests.
type DDLDictionary struct{}

// metadataTypes maps catalog kinds to DBMS_METADATA object types.
var metadataTypes = map[core.Kind]string{
	core.KindTable:            "TABLE",
	core.KindView:             "VIEW",
	core.KindMaterializedView: "MATERIALIZED_VIEW",
	core.KindPackage:          "PACKAGE",
	core.KindType:             "TYPE",
	core.KindSequence:         "SEQUENCE",
	core.KindSynonym:          "SYNONYM",
	core.KindTrigger:          "TRIGGER",
	core.KindIndex:            "INDEX",
	core.KindConstraint:       "CONSTRAINT",
	core.KindForeignKey:       "REF_CONSTRAINT",
	core.KindDBLink:           "DB_LINK",
	core.KindOperator:         "OPERATOR",
}

const transformParam = `BEGIN DBMS_METADATA.SET_TRANSFORM_PARAM(DBMS_METADATA.SESSION_TRANSFORM, '%s', %s); END;`

// Transform configures the session transform before fetching a declaration.
func (DDLDictionary) Transform(opts ddl.Options) []query.Request {
	storage := plsqlBool(opts.StorageClauses)
	return []query.Request{
		query.NewRequest(fmt.Sprintf(transformParam, "PRETTY", "TRUE")),
		query.NewRequest(fmt.Sprintf(transformParam, "SQLTERMINATOR", "TRUE")),
		query.NewRequest(fmt.Sprintf(transformParam, "SEGMENT_ATTRIBUTES", storage)),
		query.NewRequest(fmt.Sprintf(transformParam, "STORAGE", storage)),
		query.NewRequest(fmt.Sprintf(transformParam, "CONSTRAINTS_AS_ALTER", "FALSE")),
		query.NewRequest(fmt.Sprintf(transformParam, "REF_CONSTRAINTS", "FALSE")),
	}
}

// Primary fetches the object declaration through DBMS_METADATA.GET_DDL.
func (DDLDictionary) Primary(kind core.Kind, schema, name string) query.Request {
	t, ok := metadataTypes[kind]
	if !ok {
		return query.Request{}
	}
	return query.NewRequest(`SELECT DBMS_METADATA.GET_DDL(:1, :2, :3) AS DDL FROM DUAL`, t, name, schema)
}

// Dependent fetches dependent objects through DBMS_METADATA.GET_DEPENDENT_DDL.
func (DDLDictionary) Dependent(dep core.DependentKind, _ core.Kind, schema, name string) query.Request {
	return query.NewRequest(`SELECT DBMS_METADATA.GET_DEPENDENT_DDL(:1, :2, :3) AS DDL FROM DUAL`,
		string(dep), name, schema)
}

// Grants lists object privileges from ALL_TAB_PRIVS.
func (DDLDictionary) Grants(_ core.Kind, schema, name string) query.Request {
	return query.NewRequest(`
SELECT GRANTEE, PRIVILEGE
FROM ALL_TAB_PRIVS
WHERE TABLE_SCHEMA = :1 AND TABLE_NAME = :2
ORDER BY GRANTEE, PRIVILEGE`, schema, name)
}

func plsqlBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
