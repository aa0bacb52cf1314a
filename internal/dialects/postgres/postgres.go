// Package postgres provides the PostgreSQL dialect.
package postgres

import (
	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	"github.com/kadirbelkuyu/dbddl/internal/schema"
	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
)

// MaxIdentifierLength is NAMEDATALEN - 1 for a default build.
const MaxIdentifierLength = 63

// MaxCharLength is the VARCHAR/CHAR length limit in characters. It is a real
// limit, so longer columns are clamped. Unbounded text uses TEXT, which takes
// no length, so the dialect has no unbounded-length sentinel.
const MaxCharLength uint64 = 10_485_760

var PostgreSQL = ddl.MustDialect(ddl.Config{
	Key:                 "postgres",
	Name:                "PostgreSQL",
	Types:               types(),
	MaxIdentifierLength: MaxIdentifierLength,
	SchemaTerm:          "Schema",
	ColumnType:          columnType,
})

func init() {
	ddl.Register(PostgreSQL)
}

var serialTypes = map[sqltypes.Code]string{
	sqltypes.TinyInt:  "SMALLSERIAL",
	sqltypes.SmallInt: "SMALLSERIAL",
	sqltypes.Integer:  "SERIAL",
	sqltypes.BigInt:   "BIGSERIAL",
}

func columnType(d *ddl.Dialect, c *schema.Column, w *ddl.Collector) (string, error) {
	if !c.AutoIncrement {
		return ddl.DefaultColumnType(d, c, w)
	}
	if serial, ok := serialTypes[c.Type]; ok {
		return serial, nil
	}
	w.Add(ddl.UnsupportedFeature, c, "PostgreSQL serial columns must be integers; %s column is not auto-incremented", c.Type)
	return ddl.DefaultColumnType(d, c, w)
}

func types() []ddl.TypeDescriptor {
	quoted := func(d ddl.TypeDescriptor) ddl.TypeDescriptor {
		d.LiteralPrefix, d.LiteralSuffix = "'", "'"
		return d
	}

	return []ddl.TypeDescriptor{
		{PhysicalName: "BIT", Code: sqltypes.Bit, MaxLength: 83_886_080, Nullability: ddl.Nullable, SupportsPrecision: true},
		{PhysicalName: "SMALLINT", Code: sqltypes.TinyInt, Nullability: ddl.Nullable},
		{PhysicalName: "SMALLINT", Code: sqltypes.SmallInt, Nullability: ddl.Nullable},
		{PhysicalName: "INTEGER", Code: sqltypes.Integer, Nullability: ddl.Nullable},
		{PhysicalName: "BIGINT", Code: sqltypes.BigInt, Nullability: ddl.Nullable},
		{PhysicalName: "DOUBLE PRECISION", Code: sqltypes.Float, Nullability: ddl.Nullable},
		{PhysicalName: "REAL", Code: sqltypes.Real, Nullability: ddl.Nullable},
		{PhysicalName: "DOUBLE PRECISION", Code: sqltypes.Double, Nullability: ddl.Nullable},
		{PhysicalName: "NUMERIC", Code: sqltypes.Numeric, MaxLength: 1000, Nullability: ddl.Nullable, SupportsPrecision: true, SupportsScale: true},
		{PhysicalName: "NUMERIC", Code: sqltypes.Decimal, MaxLength: 1000, Nullability: ddl.Nullable, SupportsPrecision: true, SupportsScale: true},
		quoted(ddl.TypeDescriptor{PhysicalName: "CHAR", Code: sqltypes.Char, MaxLength: MaxCharLength, Nullability: ddl.Nullable, SupportsPrecision: true}),
		quoted(ddl.TypeDescriptor{PhysicalName: "VARCHAR", Code: sqltypes.VarChar, MaxLength: MaxCharLength, Nullability: ddl.Nullable, SupportsPrecision: true}),
		quoted(ddl.TypeDescriptor{PhysicalName: "TEXT", Code: sqltypes.LongVarChar, Nullability: ddl.Nullable}),
		quoted(ddl.TypeDescriptor{PhysicalName: "DATE", Code: sqltypes.Date, Nullability: ddl.Nullable}),
		quoted(ddl.TypeDescriptor{PhysicalName: "TIME", Code: sqltypes.Time, Nullability: ddl.Nullable}),
		quoted(ddl.TypeDescriptor{PhysicalName: "TIMESTAMP", Code: sqltypes.Timestamp, Nullability: ddl.Nullable}),
		{PhysicalName: "BYTEA", Code: sqltypes.Binary, Nullability: ddl.Nullable},
		{PhysicalName: "BYTEA", Code: sqltypes.VarBinary, Nullability: ddl.Nullable},
		{PhysicalName: "BYTEA", Code: sqltypes.LongVarBinary, Nullability: ddl.Nullable},
		{PhysicalName: "BYTEA", Code: sqltypes.Blob, Nullability: ddl.Nullable},
		quoted(ddl.TypeDescriptor{PhysicalName: "TEXT", Code: sqltypes.Clob, Nullability: ddl.Nullable}),
		{PhysicalName: "BOOLEAN", Code: sqltypes.Boolean, Nullability: ddl.Nullable},
	}
}
