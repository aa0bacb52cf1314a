package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kadirbelkuyu/dbddl/internal/database"
	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
	"github.com/kadirbelkuyu/dbddl/pkg/logger"
)

// Extractor reads a live PostgreSQL catalog into the schema model.
type Extractor struct {
	conn   *database.Connection
	logger *logger.Logger

	// OnTable is called after each table has been read.
	OnTable func(t *Table)
}

func NewExtractor(conn *database.Connection, logger *logger.Logger) *Extractor {
	return &Extractor{
		conn:   conn,
		logger: logger,
	}
}

// pgTypes covers catalog type names that sqltypes.Parse does not know.
var pgTypes = map[string]sqltypes.Code{
	"timestamp with time zone": sqltypes.Timestamp,
	"time with time zone":      sqltypes.Time,
	"bit varying":              sqltypes.VarBinary,
	"uuid":                     sqltypes.Char,
	"json":                     sqltypes.LongVarChar,
	"jsonb":                    sqltypes.LongVarChar,
	"xml":                      sqltypes.Clob,
	"money":                    sqltypes.Decimal,
	"inet":                     sqltypes.VarChar,
	"interval":                 sqltypes.VarChar,
}

// CountTables returns how many tables Extract will read.
func (e *Extractor) CountTables(ctx context.Context, schemaFilter string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables t
		WHERE t.table_type = 'BASE TABLE'
		AND t.table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
		AND ($1 = '' OR t.table_schema = $1)
	`

	var count int
	if err := e.conn.DB.QueryRowContext(ctx, query, schemaFilter).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tables: %w", err)
	}
	return count, nil
}

// Extract reads every base table of schemaFilter (all user schemas when
// empty) together with its columns, keys, checks and indexes.
func (e *Extractor) Extract(ctx context.Context, schemaFilter string) (*Database, error) {
	e.logger.Info("Extracting tables...")

	query := `
		SELECT
			t.table_name,
			t.table_schema
		FROM information_schema.tables t
		WHERE t.table_type = 'BASE TABLE'
		AND t.table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
		AND ($1 = '' OR t.table_schema = $1)
		ORDER BY t.table_schema, t.table_name
	`

	rows, err := e.conn.DB.QueryContext(ctx, query, schemaFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}

	db := &Database{Name: e.conn.DatabaseName()}
	for rows.Next() {
		table := &Table{}
		if err := rows.Scan(&table.Name, &table.Schema); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to read table metadata: %w", err)
		}
		db.Tables = append(db.Tables, table)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read table metadata: %w", err)
	}
	rows.Close()

	for _, table := range db.Tables {
		if err := e.extractTableDetails(ctx, table); err != nil {
			return nil, fmt.Errorf("failed to gather table details for %s.%s: %w", table.Schema, table.Name, err)
		}
		if e.OnTable != nil {
			e.OnTable(table)
		}
	}

	for _, table := range db.Tables {
		rels, err := e.extractForeignKeys(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to gather foreign keys for %s.%s: %w", table.Schema, table.Name, err)
		}
		for _, rel := range rels {
			if db.Table(rel.PKTable) == nil {
				e.logger.Warnf("Skipping foreign key %s: referenced table %s was not extracted", rel.Name, rel.PKTable)
				continue
			}
			db.Relationships = append(db.Relationships, rel)
		}
	}

	e.logger.Infof("%d tables extracted", len(db.Tables))
	return db, nil
}

func (e *Extractor) extractTableDetails(ctx context.Context, table *Table) error {
	if err := e.extractColumns(ctx, table); err != nil {
		return err
	}

	if err := e.extractPrimaryKey(ctx, table); err != nil {
		return err
	}

	if err := e.extractChecks(ctx, table); err != nil {
		return err
	}

	if err := e.extractIndexes(ctx, table); err != nil {
		return err
	}

	return nil
}

func (e *Extractor) extractColumns(ctx context.Context, table *Table) error {
	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			column_default,
			character_maximum_length,
			numeric_precision,
			numeric_scale,
			is_identity
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.conn.DB.QueryContext(ctx, query, table.Schema, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		col := &Column{}
		var dataType, isNullable, isIdentity string
		var defaultValue sql.NullString
		var maxLength, precision, scale sql.NullInt64

		err := rows.Scan(
			&col.Name,
			&dataType,
			&isNullable,
			&defaultValue,
			&maxLength,
			&precision,
			&scale,
			&isIdentity,
		)
		if err != nil {
			return fmt.Errorf("failed to read column metadata: %w", err)
		}

		col.Type = e.mapType(table, col.Name, dataType)
		col.Nullable = isNullable == "YES"
		col.AutoIncrement = isIdentity == "YES"

		switch {
		case maxLength.Valid:
			col.Precision = int(maxLength.Int64)
		case (col.Type == sqltypes.Numeric || col.Type == sqltypes.Decimal) && precision.Valid:
			col.Precision = int(precision.Int64)
			if scale.Valid {
				col.Scale = int(scale.Int64)
			}
		}

		if defaultValue.Valid {
			applyDefault(col, defaultValue.String)
		}

		table.Columns = append(table.Columns, col)
	}

	return rows.Err()
}

func (e *Extractor) mapType(table *Table, column, dataType string) sqltypes.Code {
	if code, err := sqltypes.Parse(dataType); err == nil {
		return code
	}
	if code, ok := pgTypes[strings.ToLower(dataType)]; ok {
		return code
	}
	e.logger.Warnf("Column %s.%s has unmapped type %q, using VARCHAR", table.Name, column, dataType)
	return sqltypes.VarChar
}

// applyDefault turns a catalog default expression into model fields. Sequence
// defaults mark the column auto-increment; 'text'::type casts become plain
// literals.
func applyDefault(col *Column, expr string) {
	if strings.HasPrefix(expr, "nextval(") {
		col.AutoIncrement = true
		return
	}
	if strings.HasPrefix(expr, "'") {
		if end := strings.LastIndex(expr, "'::"); end > 0 {
			col.Default = strings.ReplaceAll(expr[1:end], "''", "'")
			col.DefaultLiteral = true
			return
		}
	}
	col.Default = expr
}

func (e *Extractor) extractPrimaryKey(ctx context.Context, table *Table) error {
	query := `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2
		AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
	`

	rows, err := e.conn.DB.QueryContext(ctx, query, table.Schema, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query primary key metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var constraintName, columnName string
		if err := rows.Scan(&constraintName, &columnName); err != nil {
			return fmt.Errorf("failed to read primary key metadata: %w", err)
		}
		table.PrimaryKeyName = constraintName
		if col := table.Column(columnName); col != nil {
			col.PrimaryKey = true
		}
	}

	return rows.Err()
}

func (e *Extractor) extractChecks(ctx context.Context, table *Table) error {
	query := `
		SELECT con.conname, pg_get_constraintdef(con.oid)
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE con.contype = 'c' AND n.nspname = $1 AND c.relname = $2
		ORDER BY con.conname
	`

	rows, err := e.conn.DB.QueryContext(ctx, query, table.Schema, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query check constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chk CheckConstraint
		var def string
		if err := rows.Scan(&chk.Name, &def); err != nil {
			return fmt.Errorf("failed to read check constraint: %w", err)
		}
		chk.Expression = parseCheckExpression(def)
		table.Checks = append(table.Checks, chk)
	}

	return rows.Err()
}

// parseCheckExpression strips the CHECK ( ... ) wrapper that
// pg_get_constraintdef adds.
func parseCheckExpression(def string) string {
	def = strings.TrimSpace(def)
	if strings.HasPrefix(strings.ToUpper(def), "CHECK (") && strings.HasSuffix(def, ")") {
		return strings.TrimSpace(def[len("CHECK (") : len(def)-1])
	}
	return def
}

// extractForeignKeys pairs each referencing column with the referenced column
// at the same position of the unique constraint the key points at.
func (e *Extractor) extractForeignKeys(ctx context.Context, table *Table) ([]*Relationship, error) {
	query := `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			ref.table_name AS foreign_table_name,
			ref.column_name AS foreign_column_name,
			rc.update_rule,
			rc.delete_rule,
			tc.is_deferrable,
			tc.initially_deferred
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.referential_constraints AS rc
			ON tc.constraint_name = rc.constraint_name
			AND tc.table_schema = rc.constraint_schema
		JOIN information_schema.key_column_usage AS ref
			ON ref.constraint_name = rc.unique_constraint_name
			AND ref.constraint_schema = rc.unique_constraint_schema
			AND ref.ordinal_position = kcu.position_in_unique_constraint
		WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = $1 AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := e.conn.DB.QueryContext(ctx, query, table.Schema, table.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign key metadata: %w", err)
	}
	defer rows.Close()

	var rels []*Relationship
	byName := make(map[string]*Relationship)
	for rows.Next() {
		var name, column, refTable, refColumn, updateRule, deleteRule, deferrable, deferred string
		err := rows.Scan(
			&name,
			&column,
			&refTable,
			&refColumn,
			&updateRule,
			&deleteRule,
			&deferrable,
			&deferred,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to read foreign key metadata: %w", err)
		}

		rel, ok := byName[name]
		if !ok {
			rel = &Relationship{
				Name:          name,
				FKTable:       table.Name,
				PKTable:       refTable,
				Deferrability: deferrabilityFromCatalog(deferrable, deferred),
			}
			if rel.UpdateRule, err = ParseReferentialAction(updateRule); err != nil {
				return nil, fmt.Errorf("foreign key %s: %w", name, err)
			}
			if rel.DeleteRule, err = ParseReferentialAction(deleteRule); err != nil {
				return nil, fmt.Errorf("foreign key %s: %w", name, err)
			}
			byName[name] = rel
			rels = append(rels, rel)
		}
		rel.Mappings = append(rel.Mappings, ColumnMapping{FKColumn: column, PKColumn: refColumn})
	}

	return rels, rows.Err()
}

func deferrabilityFromCatalog(isDeferrable, initiallyDeferred string) Deferrability {
	switch {
	case isDeferrable != "YES":
		return NotDeferrable
	case initiallyDeferred == "YES":
		return InitiallyDeferred
	default:
		return InitiallyImmediate
	}
}

func (e *Extractor) extractIndexes(ctx context.Context, table *Table) error {
	query := `
		SELECT
			i.indexname,
			pg_get_indexdef(ix.indexrelid) AS indexdef,
			ix.indisunique
		FROM pg_indexes i
		JOIN pg_class c ON c.relname = i.indexname
		JOIN pg_namespace n ON n.oid = c.relnamespace AND n.nspname = i.schemaname
		JOIN pg_index ix ON ix.indexrelid = c.oid
		WHERE i.schemaname = $1 AND i.tablename = $2
		AND NOT ix.indisprimary
		ORDER BY i.indexname
	`

	rows, err := e.conn.DB.QueryContext(ctx, query, table.Schema, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query index metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx Index
		var indexDef string
		if err := rows.Scan(&idx.Name, &indexDef, &idx.IsUnique); err != nil {
			return fmt.Errorf("failed to read index metadata: %w", err)
		}

		idx.Columns = parseIndexColumns(indexDef)
		if len(idx.Columns) == 0 {
			e.logger.Warnf("Skipping index %s: cannot parse %q", idx.Name, indexDef)
			continue
		}
		table.Indexes = append(table.Indexes, idx)
	}

	return rows.Err()
}

// parseIndexColumns reads the column list out of a CREATE INDEX definition.
// Expression indexes yield no columns.
func parseIndexColumns(indexDef string) []string {
	start := strings.Index(indexDef, "(")
	end := strings.LastIndex(indexDef, ")")
	if start == -1 || end <= start {
		return nil
	}

	columnsPart := indexDef[start+1 : end]
	if strings.ContainsAny(columnsPart, "()") {
		return nil
	}

	columns := strings.Split(columnsPart, ",")
	for i, col := range columns {
		fields := strings.Fields(col)
		if len(fields) == 0 {
			return nil
		}
		// drop ordering options such as DESC NULLS LAST
		columns[i] = strings.Trim(fields[0], `"`)
	}

	return columns
}
