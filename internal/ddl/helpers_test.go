package ddl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	"github.com/kadirbelkuyu/dbddl/internal/schema"
	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
)

const testUnbounded uint64 = 1 << 31

// testTypes registers every code under its own name. VARCHAR is bounded so
// clamping can be exercised; CLOB uses the unbounded sentinel.
func testTypes() []ddl.TypeDescriptor {
	types := make([]ddl.TypeDescriptor, 0, len(sqltypes.All()))
	for _, code := range sqltypes.All() {
		desc := ddl.TypeDescriptor{
			PhysicalName: code.String(),
			Code:         code,
			Nullability:  ddl.Nullable,
		}
		switch code {
		case sqltypes.VarChar, sqltypes.Char:
			desc.MaxLength = 255
			desc.SupportsPrecision = true
			desc.LiteralPrefix, desc.LiteralSuffix = "'", "'"
		case sqltypes.Decimal, sqltypes.Numeric:
			desc.MaxLength = 38
			desc.SupportsPrecision = true
			desc.SupportsScale = true
		case sqltypes.Clob:
			desc.MaxLength = testUnbounded
			desc.SupportsPrecision = true
		case sqltypes.Boolean:
			desc.Nullability = ddl.NoNulls
		}
		types = append(types, desc)
	}
	return types
}

func testConfig() ddl.Config {
	return ddl.Config{
		Key:                 "test",
		Name:                "TestSQL",
		Types:               testTypes(),
		UnboundedLength:     testUnbounded,
		MaxIdentifierLength: 16,
		CatalogTerm:         "Catalog",
		SchemaTerm:          "Schema",
		UnsupportedActions:  []schema.ReferentialAction{schema.SetDefault},
	}
}

func newTestDialect(t *testing.T, mutate ...func(*ddl.Config)) *ddl.Dialect {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	d, err := ddl.NewDialect(cfg)
	require.NoError(t, err)
	return d
}

// ordersSchema is two tables joined by a composite-free foreign key.
func ordersSchema() *schema.Database {
	customers := &schema.Table{
		Name: "customers",
		Columns: []*schema.Column{
			{Name: "id", Type: sqltypes.Integer, PrimaryKey: true},
			{Name: "email", Type: sqltypes.VarChar, Precision: 120},
		},
		Indexes: []schema.Index{{Name: "customers_email", Columns: []string{"email"}, IsUnique: true}},
	}
	orders := &schema.Table{
		Name: "orders",
		Columns: []*schema.Column{
			{Name: "id", Type: sqltypes.Integer, PrimaryKey: true},
			{Name: "customer_id", Type: sqltypes.Integer},
			{Name: "total", Type: sqltypes.Decimal, Precision: 10, Scale: 2, Default: "0"},
			{Name: "status", Type: sqltypes.VarChar, Precision: 16, Default: "new", DefaultLiteral: true},
		},
		Checks: []schema.CheckConstraint{{Name: "orders_total", Expression: "total >= 0"}},
	}
	return &schema.Database{
		Name:   "shop",
		Tables: []*schema.Table{customers, orders},
		Relationships: []*schema.Relationship{{
			Name:       "orders_customer",
			FKTable:    "orders",
			PKTable:    "customers",
			Mappings:   []schema.ColumnMapping{{FKColumn: "customer_id", PKColumn: "id"}},
			DeleteRule: schema.Cascade,
		}},
	}
}
