package ddl_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	"github.com/kadirbelkuyu/dbddl/internal/schema"
	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
	"github.com/kadirbelkuyu/dbddl/pkg/logger"
)

func TestGenerateScript(t *testing.T) {
	d := newTestDialect(t)

	result, err := ddl.Generate(ordersSchema(), d, ddl.Options{})
	require.NoError(t, err)

	assert.Equal(t, ddl.Script{
		"CREATE TABLE customers (id INTEGER NOT NULL, email VARCHAR(120) NOT NULL, CONSTRAINT customers_pk PRIMARY KEY (id))",
		"CREATE TABLE orders (id INTEGER NOT NULL, customer_id INTEGER NOT NULL, total DECIMAL(10,2) NOT NULL DEFAULT 0, " +
			"status VARCHAR(16) NOT NULL DEFAULT 'new', CONSTRAINT orders_total CHECK (total >= 0), CONSTRAINT orders_pk PRIMARY KEY (id))",
		"CREATE UNIQUE INDEX customers_email ON customers (email)",
		"ALTER TABLE orders ADD CONSTRAINT orders_customer FOREIGN KEY (customer_id) REFERENCES customers (id) ON DELETE CASCADE NOT DEFERRABLE",
	}, result.Script)
	assert.Empty(t, result.Warnings)
}

func TestGenerateQualifiedAndQuoted(t *testing.T) {
	d := newTestDialect(t)
	db := ordersSchema()
	db.Tables[1].Schema = "sales"

	result, err := ddl.Generate(db, d, ddl.Options{QuoteIdentifiers: true, Catalog: "main", Schema: "app"})
	require.NoError(t, err)

	assert.Contains(t, result.Script[0], `CREATE TABLE "main"."app"."customers" ("id" INTEGER NOT NULL`)
	assert.Contains(t, result.Script[1], `CREATE TABLE "main"."sales"."orders"`)
	assert.Contains(t, result.Script[3], `REFERENCES "main"."app"."customers" ("id")`)
	assert.Empty(t, result.Warnings)
}

func TestGenerateCatalogWithoutCatalogConcept(t *testing.T) {
	d := newTestDialect(t, func(c *ddl.Config) { c.CatalogTerm = "" })
	db := ordersSchema()

	result, err := ddl.Generate(db, d, ddl.Options{Catalog: "main"})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ddl.UnsupportedFeature, result.Warnings[0].Kind)
	assert.Same(t, db, result.Warnings[0].Subject)
	for _, stmt := range result.Script {
		assert.NotContains(t, stmt, "main.")
	}
}

func TestGenerateSchemaWithoutSchemaConcept(t *testing.T) {
	d := newTestDialect(t, func(c *ddl.Config) { c.SchemaTerm = "" })

	result, err := ddl.Generate(ordersSchema(), d, ddl.Options{Schema: "app"})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Script[0], "CREATE TABLE customers (")
}

func TestGenerateDrops(t *testing.T) {
	d := newTestDialect(t)

	result, err := ddl.Generate(ordersSchema(), d, ddl.Options{IncludeDrops: true})
	require.NoError(t, err)

	require.Len(t, result.Script, 6)
	assert.Equal(t, "DROP TABLE orders", result.Script[0])
	assert.Equal(t, "DROP TABLE customers", result.Script[1])
}

func TestGenerateTableSubset(t *testing.T) {
	d := newTestDialect(t)

	t.Run("referenced table only", func(t *testing.T) {
		result, err := ddl.Generate(ordersSchema(), d, ddl.Options{Tables: []string{"customers"}})
		require.NoError(t, err)
		assert.Len(t, result.Script, 2)
	})

	t.Run("referencing table keeps its foreign key", func(t *testing.T) {
		result, err := ddl.Generate(ordersSchema(), d, ddl.Options{Tables: []string{"orders"}})
		require.NoError(t, err)
		require.Len(t, result.Script, 2)
		assert.Contains(t, result.Script[1], "ALTER TABLE orders")
	})

	t.Run("schema order wins", func(t *testing.T) {
		result, err := ddl.Generate(ordersSchema(), d, ddl.Options{Tables: []string{"orders", "customers"}})
		require.NoError(t, err)
		assert.Contains(t, result.Script[0], "CREATE TABLE customers")
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := ddl.Generate(ordersSchema(), d, ddl.Options{Tables: []string{"invoices"}})
		assert.ErrorIs(t, err, ddl.ErrUnknownTable)
	})
}

func TestGenerateUnsupportedReferentialAction(t *testing.T) {
	d := newTestDialect(t)
	db := ordersSchema()
	rel := db.Relationships[0]
	rel.DeleteRule = schema.SetDefault
	rel.UpdateRule = schema.Cascade

	result, err := ddl.Generate(db, d, ddl.Options{})
	require.NoError(t, err)

	fk := result.Script[len(result.Script)-1]
	assert.Contains(t, fk, "ON UPDATE CASCADE")
	assert.NotContains(t, fk, "ON DELETE")
	require.Len(t, result.Warnings.About(rel), 1)
	assert.Equal(t, ddl.UnsupportedFeature, result.Warnings[0].Kind)
}

func TestGenerateNameTooLong(t *testing.T) {
	d := newTestDialect(t)
	db := ordersSchema()
	col := &schema.Column{Name: "shipping_address_line", Type: sqltypes.VarChar, Precision: 80, Nullable: true}
	db.Tables[1].Columns = append(db.Tables[1].Columns, col)

	result, err := ddl.Generate(db, d, ddl.Options{})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ddl.NameTooLong, result.Warnings[0].Kind)
	assert.Same(t, col, result.Warnings[0].Subject)
	assert.Contains(t, result.Script[1], "shipping_address_line VARCHAR(80)")
}

func TestGenerateNullabilityIgnored(t *testing.T) {
	d := newTestDialect(t)
	db := ordersSchema()
	col := &schema.Column{Name: "paid", Type: sqltypes.Boolean, Nullable: true}
	db.Tables[1].Columns = append(db.Tables[1].Columns, col)

	result, err := ddl.Generate(db, d, ddl.Options{})
	require.NoError(t, err)

	require.Len(t, result.Warnings.About(col), 1)
	assert.Equal(t, ddl.NullabilityIgnored, result.Warnings[0].Kind)
	assert.Contains(t, result.Script[1], "paid BOOLEAN NOT NULL")
}

func TestGenerateUnknownTypeAborts(t *testing.T) {
	d := newTestDialect(t)
	db := ordersSchema()
	db.Tables[1].Columns[1].Type = sqltypes.Code(1111)

	result, err := ddl.Generate(db, d, ddl.Options{})
	require.Error(t, err)
	assert.Nil(t, result)

	var typeErr *ddl.UnknownTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "orders", typeErr.Table)
	assert.Equal(t, "customer_id", typeErr.Column)
	assert.Equal(t, "TestSQL", typeErr.Dialect)
}

func TestGenerateMalformedSchemaAborts(t *testing.T) {
	d := newTestDialect(t)
	db := ordersSchema()
	db.Relationships[0].Mappings[0].PKColumn = "uuid"

	_, err := ddl.Generate(db, d, ddl.Options{})
	require.ErrorIs(t, err, schema.ErrMalformedSchema)

	var malformed *schema.MalformedSchemaError
	require.ErrorAs(t, err, &malformed)
	assert.Same(t, db.Relationships[0], malformed.Object)
}

func TestGenerateRequiresDialect(t *testing.T) {
	_, err := ddl.Generate(ordersSchema(), nil, ddl.Options{})
	assert.ErrorIs(t, err, ddl.ErrDialectRequired)
}

func TestGenerateIsIdempotent(t *testing.T) {
	d := newTestDialect(t)
	db := ordersSchema()
	db.Relationships[0].DeleteRule = schema.SetDefault

	first, err := ddl.Generate(db, d, ddl.Options{IncludeDrops: true})
	require.NoError(t, err)
	second, err := ddl.Generate(db, d, ddl.Options{IncludeDrops: true})
	require.NoError(t, err)

	assert.Equal(t, first.Script.String(), second.Script.String())
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestGeneratorLogsStatements(t *testing.T) {
	var buf bytes.Buffer
	g := ddl.NewGenerator(newTestDialect(t), ddl.Options{}, logger.NewWithWriter(&buf, true))

	_, err := g.Generate(ordersSchema())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "CREATE UNIQUE INDEX customers_email")
}

func TestScriptRender(t *testing.T) {
	s := ddl.Script{"CREATE TABLE a (x INTEGER)", "DROP TABLE b"}

	assert.Equal(t, "CREATE TABLE a (x INTEGER);\nDROP TABLE b;\n", s.String())
	assert.Equal(t, "CREATE TABLE a (x INTEGER)\nGO\nDROP TABLE b\nGO\n", s.Render("\nGO"))
	assert.Empty(t, ddl.Script(nil).Render(";"))
}
