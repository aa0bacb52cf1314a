// Package generic provides a plain SQL-92 dialect with the default hooks.
package generic

import (
	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
)

// Generic is the registered dialect instance.
var Generic = ddl.MustDialect(ddl.Config{
	Key:         "generic",
	Name:        "Generic SQL-92",
	Types:       types(),
	CatalogTerm: "Catalog",
	SchemaTerm:  "Schema",
})

func init() {
	ddl.Register(Generic)
}

func types() []ddl.TypeDescriptor {
	desc := func(name string, code sqltypes.Code, maxLength uint64, precision, scale, quoted bool) ddl.TypeDescriptor {
		d := ddl.TypeDescriptor{
			PhysicalName:      name,
			Code:              code,
			MaxLength:         maxLength,
			Nullability:       ddl.Nullable,
			SupportsPrecision: precision,
			SupportsScale:     scale,
		}
		if quoted {
			d.LiteralPrefix, d.LiteralSuffix = "'", "'"
		}
		return d
	}

	return []ddl.TypeDescriptor{
		desc("BIT", sqltypes.Bit, 1, false, false, false),
		desc("SMALLINT", sqltypes.TinyInt, 0, false, false, false),
		desc("SMALLINT", sqltypes.SmallInt, 0, false, false, false),
		desc("INTEGER", sqltypes.Integer, 0, false, false, false),
		desc("NUMERIC(19)", sqltypes.BigInt, 0, false, false, false),
		desc("FLOAT", sqltypes.Float, 53, true, false, false),
		desc("REAL", sqltypes.Real, 0, false, false, false),
		desc("DOUBLE PRECISION", sqltypes.Double, 0, false, false, false),
		desc("NUMERIC", sqltypes.Numeric, 38, true, true, false),
		desc("DECIMAL", sqltypes.Decimal, 38, true, true, false),
		desc("CHAR", sqltypes.Char, 254, true, false, true),
		desc("VARCHAR", sqltypes.VarChar, 32672, true, false, true),
		desc("VARCHAR(32672)", sqltypes.LongVarChar, 0, false, false, true),
		desc("DATE", sqltypes.Date, 0, false, false, true),
		desc("TIME", sqltypes.Time, 0, false, false, true),
		desc("TIMESTAMP", sqltypes.Timestamp, 0, false, false, true),
		desc("BIT", sqltypes.Binary, 254, true, false, false),
		desc("BIT VARYING", sqltypes.VarBinary, 32672, true, false, false),
		desc("BIT VARYING(32672)", sqltypes.LongVarBinary, 0, false, false, false),
		desc("BLOB", sqltypes.Blob, 0, false, false, false),
		desc("CLOB", sqltypes.Clob, 0, false, false, true),
		desc("BOOLEAN", sqltypes.Boolean, 0, false, false, false),
	}
}
