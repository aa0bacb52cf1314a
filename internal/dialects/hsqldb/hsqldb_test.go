package hsqldb_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	"github.com/kadirbelkuyu/dbddl/internal/dialects/hsqldb"
	"github.com/kadirbelkuyu/dbddl/internal/schema"
	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
)

func personSchema(deferrability schema.Deferrability) *schema.Database {
	return &schema.Database{
		Tables: []*schema.Table{{
			Name: "PERSON",
			Columns: []*schema.Column{
				{Name: "ID", Type: sqltypes.Integer, PrimaryKey: true, AutoIncrement: true},
				{Name: "NAME", Type: sqltypes.VarChar, Precision: 50, Nullable: true},
			},
		}},
		Relationships: []*schema.Relationship{{
			Name:          "PERSON_SELF",
			FKTable:       "PERSON",
			PKTable:       "PERSON",
			Mappings:      []schema.ColumnMapping{{FKColumn: "ID", PKColumn: "ID"}},
			Deferrability: deferrability,
		}},
	}
}

func TestRegistered(t *testing.T) {
	d, ok := ddl.Get("HSQLDB")
	require.True(t, ok)
	assert.Same(t, hsqldb.HSQLDB, d)
	assert.Equal(t, "HSQLDB", d.Name())
}

func TestEveryCodeResolves(t *testing.T) {
	for _, code := range sqltypes.All() {
		desc, err := hsqldb.HSQLDB.Registry().Resolve(code)
		require.NoErrorf(t, err, "code %s", code)
		assert.Equal(t, code, desc.Code)
	}
}

func TestSharedPhysicalNames(t *testing.T) {
	reg := hsqldb.HSQLDB.Registry()

	blob, _ := reg.Resolve(sqltypes.Blob)
	longBinary, _ := reg.Resolve(sqltypes.LongVarBinary)
	assert.Equal(t, "LONGVARBINARY", blob.PhysicalName)
	assert.Equal(t, blob.PhysicalName, longBinary.PhysicalName)

	clob, _ := reg.Resolve(sqltypes.Clob)
	longChar, _ := reg.Resolve(sqltypes.LongVarChar)
	assert.Equal(t, "LONGVARCHAR", clob.PhysicalName)
	assert.Equal(t, clob.PhysicalName, longChar.PhysicalName)

	varchar, _ := reg.Resolve(sqltypes.VarChar)
	assert.True(t, varchar.Unbounded(hsqldb.UnboundedLength))
	assert.Equal(t, hsqldb.UnboundedLength, hsqldb.HSQLDB.UnboundedLength())
}

func TestAutoIncrementIsIdentity(t *testing.T) {
	for _, code := range []sqltypes.Code{sqltypes.Integer, sqltypes.BigInt, sqltypes.VarChar, sqltypes.Code(1111)} {
		w := &ddl.Collector{}
		got, err := hsqldb.HSQLDB.ColumnType(&schema.Column{Name: "ID", Type: code, AutoIncrement: true}, w)
		require.NoError(t, err)
		assert.Equal(t, "IDENTITY", got)
		assert.Zero(t, w.Len())
	}
}

func TestColumnTypeFallsBackToRegistry(t *testing.T) {
	tests := []struct {
		column schema.Column
		expect string
	}{
		{schema.Column{Type: sqltypes.VarChar, Precision: 50}, "VARCHAR(50)"},
		{schema.Column{Type: sqltypes.VarChar, Precision: 100_000}, "VARCHAR(100000)"},
		{schema.Column{Type: sqltypes.Decimal, Precision: 18, Scale: 4}, "DECIMAL(18,4)"},
		{schema.Column{Type: sqltypes.Integer, Precision: 10}, "INTEGER"},
		{schema.Column{Type: sqltypes.Blob}, "LONGVARBINARY"},
		{schema.Column{Type: sqltypes.Timestamp}, "TIMESTAMP"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			w := &ddl.Collector{}
			col := tt.column
			got, err := hsqldb.HSQLDB.ColumnType(&col, w)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
			assert.Zero(t, w.Len())
		})
	}
}

func TestBitPrecisionIsClamped(t *testing.T) {
	w := &ddl.Collector{}
	got, err := hsqldb.HSQLDB.ColumnType(&schema.Column{Name: "flags", Type: sqltypes.Bit, Precision: 8}, w)
	require.NoError(t, err)

	assert.Equal(t, "BIT(1)", got)
	require.Equal(t, 1, w.Len())
	assert.Equal(t, ddl.PrecisionClamped, w.Warnings()[0].Kind)
}

func TestNotDeferrableClause(t *testing.T) {
	w := &ddl.Collector{}
	rel := &schema.Relationship{Name: "fk", Deferrability: schema.NotDeferrable}

	assert.Empty(t, hsqldb.HSQLDB.DeferrabilityClause(rel, w))
	assert.Zero(t, w.Len())
}

func TestDeferredClauseWarns(t *testing.T) {
	for _, deferrability := range []schema.Deferrability{schema.InitiallyDeferred, schema.InitiallyImmediate} {
		t.Run(deferrability.String(), func(t *testing.T) {
			w := &ddl.Collector{}
			rel := &schema.Relationship{Name: "fk", Deferrability: deferrability}

			assert.Empty(t, hsqldb.HSQLDB.DeferrabilityClause(rel, w))
			require.Equal(t, 1, w.Len())

			warning := w.Warnings()[0]
			assert.Equal(t, ddl.UnsupportedFeature, warning.Kind)
			assert.Equal(t, hsqldb.DeferredUnsupported, warning.Message)
			assert.Same(t, rel, warning.Subject)
		})
	}
}

func TestVocabulary(t *testing.T) {
	term, ok := hsqldb.HSQLDB.SchemaTerm()
	assert.True(t, ok)
	assert.Equal(t, "Schema", term)

	_, ok = hsqldb.HSQLDB.CatalogTerm()
	assert.False(t, ok)
}

func TestNoCatalogQualifiedNames(t *testing.T) {
	db := personSchema(schema.NotDeferrable)
	db.Tables[0].Schema = "PUBLIC"

	result, err := ddl.Generate(db, hsqldb.HSQLDB, ddl.Options{Catalog: "TESTDB", IncludeDrops: true})
	require.NoError(t, err)

	for _, stmt := range result.Script {
		assert.NotContains(t, stmt, "TESTDB")
		assert.Contains(t, stmt, "PUBLIC.PERSON")
	}
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ddl.UnsupportedFeature, result.Warnings[0].Kind)
}

func TestRestrictIsDropped(t *testing.T) {
	db := personSchema(schema.NotDeferrable)
	db.Relationships[0].DeleteRule = schema.Restrict

	result, err := ddl.Generate(db, hsqldb.HSQLDB, ddl.Options{})
	require.NoError(t, err)

	assert.NotContains(t, result.Script.String(), "RESTRICT")
	assert.Len(t, result.Warnings.About(db.Relationships[0]), 1)
}

func TestRoundTrip(t *testing.T) {
	db := personSchema(schema.InitiallyDeferred)

	result, err := ddl.Generate(db, hsqldb.HSQLDB, ddl.Options{})
	require.NoError(t, err)

	require.Len(t, result.Script, 2)
	create := result.Script[0]
	assert.True(t, strings.HasPrefix(create, "CREATE TABLE PERSON ("))
	assert.Contains(t, create, "ID IDENTITY")
	assert.Contains(t, create, "NAME VARCHAR(50)")
	assert.NotContains(t, create, "NAME VARCHAR(50) NOT NULL")

	alters := 0
	for _, stmt := range result.Script {
		if strings.HasPrefix(stmt, "ALTER TABLE") {
			alters++
		}
	}
	assert.Equal(t, 1, alters)
	assert.Equal(t, "ALTER TABLE PERSON ADD CONSTRAINT PERSON_SELF FOREIGN KEY (ID) REFERENCES PERSON (ID)", result.Script[1])

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, hsqldb.DeferredUnsupported, result.Warnings[0].Message)
	assert.Same(t, db.Relationships[0], result.Warnings[0].Subject)
}

func TestIdempotence(t *testing.T) {
	db := personSchema(schema.InitiallyDeferred)
	opts := ddl.Options{QuoteIdentifiers: true, IncludeDrops: true}

	first, err := ddl.Generate(db, hsqldb.HSQLDB, opts)
	require.NoError(t, err)
	second, err := ddl.Generate(db, hsqldb.HSQLDB, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Script.Render(";"), second.Script.Render(";"))
	assert.Equal(t, first.Warnings, second.Warnings)
}
