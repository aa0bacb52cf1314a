// Package hsqldb provides the HSQLDB dialect.
package hsqldb

import (
	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	"github.com/kadirbelkuyu/dbddl/internal/schema"
	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
)

// UnboundedLength is the MaxLength HSQLDB reports for types without a
// practical length limit.
const UnboundedLength uint64 = 4_000_000_000

// DeferredUnsupported is the warning raised for deferrable foreign keys.
const DeferredUnsupported = "HSQLDB does not support deferred constraint checking"

// HSQLDB is the registered dialect instance.
var HSQLDB = ddl.MustDialect(ddl.Config{
	Key:                 "hsqldb",
	Name:                "HSQLDB",
	Types:               types(),
	UnboundedLength:     UnboundedLength,
	MaxIdentifierLength: 128,
	SchemaTerm:          "Schema",
	UnsupportedActions:  []schema.ReferentialAction{schema.Restrict},
	ColumnType:          columnType,
	DeferrabilityClause: deferrabilityClause,
})

func init() {
	ddl.Register(HSQLDB)
}

// columnType spells every auto-increment column as IDENTITY, whatever its
// declared type.
func columnType(d *ddl.Dialect, c *schema.Column, w *ddl.Collector) (string, error) {
	if c.AutoIncrement {
		return "IDENTITY", nil
	}
	return ddl.DefaultColumnType(d, c, w)
}

func deferrabilityClause(_ *ddl.Dialect, r *schema.Relationship, w *ddl.Collector) string {
	if r.Deferrability != schema.NotDeferrable {
		w.Add(ddl.UnsupportedFeature, r, DeferredUnsupported)
	}
	return ""
}

func types() []ddl.TypeDescriptor {
	quoted := func(d ddl.TypeDescriptor) ddl.TypeDescriptor {
		d.LiteralPrefix, d.LiteralSuffix = "'", "'"
		return d
	}

	return []ddl.TypeDescriptor{
		{PhysicalName: "BIGINT", Code: sqltypes.BigInt, MaxLength: 1000, Nullability: ddl.Nullable, SupportsPrecision: true},
		{PhysicalName: "BINARY", Code: sqltypes.Binary, MaxLength: UnboundedLength, Nullability: ddl.Nullable},
		{PhysicalName: "BIT", Code: sqltypes.Bit, MaxLength: 1, Nullability: ddl.Nullable, SupportsPrecision: true},
		{PhysicalName: "LONGVARBINARY", Code: sqltypes.Blob, MaxLength: UnboundedLength, Nullability: ddl.Nullable},
		{PhysicalName: "BOOLEAN", Code: sqltypes.Boolean, MaxLength: 1, Nullability: ddl.Nullable},
		quoted(ddl.TypeDescriptor{PhysicalName: "CHAR", Code: sqltypes.Char, MaxLength: UnboundedLength, Nullability: ddl.Nullable, SupportsPrecision: true}),
		{PhysicalName: "LONGVARCHAR", Code: sqltypes.Clob, MaxLength: UnboundedLength, Nullability: ddl.Nullable},
		quoted(ddl.TypeDescriptor{PhysicalName: "DATE", Code: sqltypes.Date, Nullability: ddl.Nullable}),
		{PhysicalName: "DECIMAL", Code: sqltypes.Decimal, MaxLength: 1000, Nullability: ddl.Nullable, SupportsPrecision: true, SupportsScale: true},
		{PhysicalName: "DOUBLE", Code: sqltypes.Double, MaxLength: 38, Nullability: ddl.Nullable},
		{PhysicalName: "FLOAT", Code: sqltypes.Float, MaxLength: 38, Nullability: ddl.Nullable},
		{PhysicalName: "INTEGER", Code: sqltypes.Integer, MaxLength: 38, Nullability: ddl.Nullable},
		{PhysicalName: "LONGVARBINARY", Code: sqltypes.LongVarBinary, MaxLength: UnboundedLength, Nullability: ddl.Nullable},
		quoted(ddl.TypeDescriptor{PhysicalName: "LONGVARCHAR", Code: sqltypes.LongVarChar, MaxLength: UnboundedLength, Nullability: ddl.Nullable}),
		{PhysicalName: "NUMERIC", Code: sqltypes.Numeric, MaxLength: 1000, Nullability: ddl.Nullable, SupportsPrecision: true, SupportsScale: true},
		{PhysicalName: "REAL", Code: sqltypes.Real, MaxLength: 38, Nullability: ddl.Nullable},
		{PhysicalName: "SMALLINT", Code: sqltypes.SmallInt, MaxLength: 16, Nullability: ddl.Nullable},
		quoted(ddl.TypeDescriptor{PhysicalName: "TIME", Code: sqltypes.Time, Nullability: ddl.Nullable}),
		quoted(ddl.TypeDescriptor{PhysicalName: "TIMESTAMP", Code: sqltypes.Timestamp, Nullability: ddl.Nullable}),
		{PhysicalName: "TINYINT", Code: sqltypes.TinyInt, MaxLength: 16, Nullability: ddl.Nullable},
		{PhysicalName: "VARBINARY", Code: sqltypes.VarBinary, MaxLength: UnboundedLength, Nullability: ddl.Nullable},
		quoted(ddl.TypeDescriptor{PhysicalName: "VARCHAR", Code: sqltypes.VarChar, MaxLength: UnboundedLength, Nullability: ddl.Nullable, SupportsPrecision: true}),
	}
}
