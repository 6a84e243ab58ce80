package postgres

import "github.com/leapstack-labs/leapcat/pkg/core"

var predefinedTypes = core.NewTypeTable(
	core.PredefinedType{Name: "character varying", Family: "character", Sizable: true, MaxLength: 10485760},
	core.PredefinedType{Name: "varchar", Family: "character", Sizable: true, MaxLength: 10485760},
	core.PredefinedType{Name: "character", Family: "character", Sizable: true, MaxLength: 10485760},
	core.PredefinedType{Name: "char", Family: "character", Sizable: true, MaxLength: 10485760},
	core.PredefinedType{Name: "text", Family: "character"},
	core.PredefinedType{Name: "smallint", Family: "numeric"},
	core.PredefinedType{Name: "integer", Family: "numeric"},
	core.PredefinedType{Name: "bigint", Family: "numeric"},
	core.PredefinedType{Name: "numeric", Family: "numeric", Sizable: true, MaxLength: 1000},
	core.PredefinedType{Name: "decimal", Family: "numeric", Sizable: true, MaxLength: 1000},
	core.PredefinedType{Name: "real", Family: "numeric"},
	core.PredefinedType{Name: "double precision", Family: "numeric"},
	core.PredefinedType{Name: "date", Family: "datetime"},
	core.PredefinedType{Name: "time without time zone", Family: "datetime", Sizable: true, MaxLength: 6},
	core.PredefinedType{Name: "timestamp without time zone", Family: "datetime", Sizable: true, MaxLength: 6},
	core.PredefinedType{Name: "timestamp with time zone", Family: "datetime", Sizable: true, MaxLength: 6},
	core.PredefinedType{Name: "interval", Family: "datetime"},
	core.PredefinedType{Name: "bytea", Family: "binary"},
	core.PredefinedType{Name: "boolean", Family: "other"},
	core.PredefinedType{Name: "uuid", Family: "other"},
	core.PredefinedType{Name: "json", Family: "other"},
	core.PredefinedType{Name: "jsonb", Family: "other"},
)
