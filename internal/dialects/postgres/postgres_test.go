package postgres_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	"github.com/kadirbelkuyu/dbddl/internal/dialects/postgres"
	"github.com/kadirbelkuyu/dbddl/internal/schema"
	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
)

func TestRegistered(t *testing.T) {
	d, ok := ddl.Get("PostgreSQL")
	require.True(t, ok)
	assert.Same(t, postgres.PostgreSQL, d)
	assert.Equal(t, "postgres", d.Key())
}

func TestSerialColumns(t *testing.T) {
	tests := []struct {
		code     sqltypes.Code
		expect   string
		warnings int
	}{
		{sqltypes.SmallInt, "SMALLSERIAL", 0},
		{sqltypes.Integer, "SERIAL", 0},
		{sqltypes.BigInt, "BIGSERIAL", 0},
		{sqltypes.VarChar, "VARCHAR", 1},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			w := &ddl.Collector{}
			got, err := postgres.PostgreSQL.ColumnType(&schema.Column{Name: "id", Type: tt.code, AutoIncrement: true}, w)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
			assert.Equal(t, tt.warnings, w.Len())
		})
	}
}

func TestDeferrableForeignKey(t *testing.T) {
	db := &schema.Database{
		Tables: []*schema.Table{
			{Name: "author", Columns: []*schema.Column{{Name: "id", Type: sqltypes.Integer, PrimaryKey: true, AutoIncrement: true}}},
			{Name: "book", Columns: []*schema.Column{
				{Name: "id", Type: sqltypes.BigInt, PrimaryKey: true, AutoIncrement: true},
				{Name: "author_id", Type: sqltypes.Integer},
				{Name: "price", Type: sqltypes.Decimal, Precision: 8, Scale: 2, Nullable: true},
			}},
		},
		Relationships: []*schema.Relationship{{
			Name:          "book_author",
			FKTable:       "book",
			PKTable:       "author",
			Mappings:      []schema.ColumnMapping{{FKColumn: "author_id", PKColumn: "id"}},
			Deferrability: schema.InitiallyDeferred,
			UpdateRule:    schema.Cascade,
			DeleteRule:    schema.SetNull,
		}},
	}

	result, err := ddl.Generate(db, postgres.PostgreSQL, ddl.Options{Schema: "public", Catalog: "shop"})
	require.NoError(t, err)

	assert.Equal(t, ddl.Script{
		"CREATE TABLE public.author (id SERIAL NOT NULL, CONSTRAINT author_pk PRIMARY KEY (id))",
		"CREATE TABLE public.book (id BIGSERIAL NOT NULL, author_id INTEGER NOT NULL, price NUMERIC(8,2), CONSTRAINT book_pk PRIMARY KEY (id))",
		"ALTER TABLE public.book ADD CONSTRAINT book_author FOREIGN KEY (author_id) REFERENCES public.author (id) ON UPDATE CASCADE ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED",
	}, result.Script)

	require.Len(t, result.Warnings, 1, "catalog request is dropped once")
	assert.Equal(t, ddl.UnsupportedFeature, result.Warnings[0].Kind)
}

func TestIdentifierLimit(t *testing.T) {
	long := strings.Repeat("x", postgres.MaxIdentifierLength+1)
	db := &schema.Database{Tables: []*schema.Table{{
		Name:    long,
		Columns: []*schema.Column{{Name: "id", Type: sqltypes.Integer}},
	}}}

	result, err := ddl.Generate(db, postgres.PostgreSQL, ddl.Options{})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ddl.NameTooLong, result.Warnings[0].Kind)
	assert.Contains(t, result.Script[0], long)
}

func TestCharacterLengthIsClamped(t *testing.T) {
	tests := []struct {
		code      sqltypes.Code
		precision int
		expect    string
		warnings  int
	}{
		{sqltypes.VarChar, 20_000_000, "VARCHAR(10485760)", 1},
		{sqltypes.Char, 10_485_761, "CHAR(10485760)", 1},
		{sqltypes.VarChar, 10_485_760, "VARCHAR(10485760)", 0},
		{sqltypes.VarChar, 255, "VARCHAR(255)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			w := &ddl.Collector{}
			got, err := postgres.PostgreSQL.ColumnType(&schema.Column{Name: "note", Type: tt.code, Precision: tt.precision}, w)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
			require.Equal(t, tt.warnings, w.Len())
			if tt.warnings > 0 {
				assert.Equal(t, ddl.PrecisionClamped, w.Warnings()[0].Kind)
			}
		})
	}
}

func TestNoUnboundedSentinel(t *testing.T) {
	assert.Zero(t, postgres.PostgreSQL.UnboundedLength())

	desc, err := postgres.PostgreSQL.Registry().Resolve(sqltypes.VarChar)
	require.NoError(t, err)
	assert.False(t, desc.Unbounded(postgres.PostgreSQL.UnboundedLength()))
	assert.Equal(t, postgres.MaxCharLength, desc.MaxLength)
}
