package duckdb

import "github.com/leapstack-labs/leapcat/pkg/core"

var predefinedTypes = core.NewTypeTable(
	core.PredefinedType{Name: "VARCHAR", Family: "character"},
	core.PredefinedType{Name: "TEXT", Family: "character"},
	core.PredefinedType{Name: "TINYINT", Family: "numeric"},
	core.PredefinedType{Name: "SMALLINT", Family: "numeric"},
	core.PredefinedType{Name: "INTEGER", Family: "numeric"},
	core.PredefinedType{Name: "BIGINT", Family: "numeric"},
	core.PredefinedType{Name: "HUGEINT", Family: "numeric"},
	core.PredefinedType{Name: "UBIGINT", Family: "numeric"},
	core.PredefinedType{Name: "DECIMAL", Family: "numeric", Sizable: true, MaxLength: 38},
	core.PredefinedType{Name: "FLOAT", Family: "numeric"},
	core.PredefinedType{Name: "DOUBLE", Family: "numeric"},
	core.PredefinedType{Name: "DATE", Family: "datetime"},
	core.PredefinedType{Name: "TIME", Family: "datetime"},
	core.PredefinedType{Name: "TIMESTAMP", Family: "datetime"},
	core.PredefinedType{Name: "TIMESTAMP WITH TIME ZONE", Family: "datetime"},
	core.PredefinedType{Name: "INTERVAL", Family: "datetime"},
	core.PredefinedType{Name: "BLOB", Family: "binary"},
	core.PredefinedType{Name: "BOOLEAN", Family: "other"},
	core.PredefinedType{Name: "UUID", Family: "other"},
	core.PredefinedType{Name: "JSON", Family: "other"},
)
