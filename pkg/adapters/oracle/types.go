package oracle

import "github.com/leapstack-labs/leapcat/pkg/core"

var predefinedTypes = core.NewTypeTable(
	core.PredefinedType{Name: "VARCHAR2", Family: "character", Sizable: true, MaxLength: 32767},
	core.PredefinedType{Name: "NVARCHAR2", Family: "character", Sizable: true, MaxLength: 32767},
	core.PredefinedType{Name: "CHAR", Family: "character", Sizable: true, MaxLength: 2000},
	core.PredefinedType{Name: "NCHAR", Family: "character", Sizable: true, MaxLength: 2000},
	core.PredefinedType{Name: "LONG", Family: "character"},
	core.PredefinedType{Name: "CLOB", Family: "character"},
	core.PredefinedType{Name: "NCLOB", Family: "character"},
	core.PredefinedType{Name: "NUMBER", Family: "numeric", Sizable: true, MaxLength: 38},
	core.PredefinedType{Name: "FLOAT", Family: "numeric", Sizable: true, MaxLength: 126},
	core.PredefinedType{Name: "INTEGER", Family: "numeric"},
	core.PredefinedType{Name: "BINARY_FLOAT", Family: "numeric"},
	core.PredefinedType{Name: "BINARY_DOUBLE", Family: "numeric"},
	core.PredefinedType{Name: "PLS_INTEGER", Family: "numeric"},
	core.PredefinedType{Name: "BINARY_INTEGER", Family: "numeric"},
	core.PredefinedType{Name: "DATE", Family: "datetime"},
	core.PredefinedType{Name: "TIMESTAMP", Family: "datetime", Sizable: true, MaxLength: 9},
	core.PredefinedType{Name: "TIMESTAMP WITH TIME ZONE", Family: "datetime", Sizable: true, MaxLength: 9},
	core.PredefinedType{Name: "TIMESTAMP WITH LOCAL TIME ZONE", Family: "datetime", Sizable: true, MaxLength: 9},
	core.PredefinedType{Name: "INTERVAL YEAR TO MONTH", Family: "datetime"},
	core.PredefinedType{Name: "INTERVAL DAY TO SECOND", Family: "datetime"},
	core.PredefinedType{Name: "RAW", Family: "binary", Sizable: true, MaxLength: 32767},
	core.PredefinedType{Name: "LONG RAW", Family: "binary"},
	core.PredefinedType{Name: "BLOB", Family: "binary"},
	core.PredefinedType{Name: "BFILE", Family: "binary"},
	core.PredefinedType{Name: "BOOLEAN", Family: "other"},
	core.PredefinedType{Name: "ROWID", Family: "other"},
	core.PredefinedType{Name: "UROWID", Family: "other", Sizable: true, MaxLength: 4000},
	core.PredefinedType{Name: "XMLTYPE", Family: "other"},
	core.PredefinedType{Name: "JSON", Family: "other"},
)
