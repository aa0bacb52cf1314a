package ddl

import (
	"fmt"
	"strings"

	"github.com/kadirbelkuyu/dbddl/internal/schema"
	"github.com/kadirbelkuyu/dbddl/pkg/logger"
)

type Options struct {
	QuoteIdentifiers bool
	IncludeDrops     bool

	// Catalog and Schema qualify table names. A table's own Schema wins over
	// Options.Schema.
	Catalog string
	Schema  string

	// Tables limits generation to the named tables. Empty means all.
	Tables []string
}

type Result struct {
	Script   Script
	Warnings Warnings
}

// Generator turns a schema model into DDL for one dialect. A Generator holds
// no per-run state and may be used from several goroutines.
type Generator struct {
	dialect *Dialect
	opts    Options
	logger  *logger.Logger
}

func NewGenerator(d *Dialect, opts Options, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{
		dialect: d,
		opts:    opts,
		logger:  log,
	}
}

// Generate is a shorthand for NewGenerator(d, opts, nil).Generate(db).
func Generate(db *schema.Database, d *Dialect, opts Options) (*Result, error) {
	return NewGenerator(d, opts, nil).Generate(db)
}

// run is the state owned by one Generate call.
type run struct {
	*Generator
	db       *schema.Database
	warnings *Collector
	script   Script

	catalog     string
	allowSchema bool
}

func (g *Generator) Generate(db *schema.Database) (*Result, error) {
	if g.dialect == nil {
		return nil, ErrDialectRequired
	}
	if err := g.dialect.Validate(); err != nil {
		return nil, err
	}
	if err := db.Validate(); err != nil {
		return nil, err
	}

	tables, err := g.selectTables(db)
	if err != nil {
		return nil, err
	}

	r := &run{Generator: g, db: db, warnings: &Collector{}}
	r.resolveNamespaces()
	r.checkNames(tables)

	g.logger.Debugf("Generating %s DDL for %d tables", g.dialect.Name(), len(tables))

	if g.opts.IncludeDrops {
		for i := len(tables) - 1; i >= 0; i-- {
			r.emit(fmt.Sprintf("DROP TABLE %s", r.tableName(tables[i])))
		}
	}

	for _, t := range tables {
		stmt, err := r.createTable(t)
		if err != nil {
			return nil, fmt.Errorf("failed to generate table %s: %w", t.Name, err)
		}
		r.emit(stmt)
	}

	for _, t := range tables {
		for i := range t.Indexes {
			r.emit(r.createIndex(t, &t.Indexes[i]))
		}
	}

	selected := make(map[string]bool, len(tables))
	for _, t := range tables {
		selected[t.Name] = true
	}
	for _, rel := range db.Relationships {
		if !selected[rel.FKTable] {
			continue
		}
		r.emit(r.addForeignKey(rel))
	}

	return &Result{
		Script:   r.script,
		Warnings: r.warnings.Warnings(),
	}, nil
}

func (g *Generator) selectTables(db *schema.Database) ([]*schema.Table, error) {
	if len(g.opts.Tables) == 0 {
		return db.Tables, nil
	}

	wanted := make(map[string]bool, len(g.opts.Tables))
	for _, name := range g.opts.Tables {
		if db.Table(name) == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
		}
		wanted[name] = true
	}

	// Schema order, not option order, keeps the output deterministic.
	tables := make([]*schema.Table, 0, len(wanted))
	for _, t := range db.Tables {
		if wanted[t.Name] {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

func (r *run) emit(stmt string) {
	r.logger.Debugf("%s: %s", r.dialect.Name(), stmt)
	r.script = append(r.script, stmt)
}

// resolveNamespaces decides once per run which qualifiers the dialect can
// express. Requests it cannot honour are dropped with a single warning.
func (r *run) resolveNamespaces() {
	if r.opts.Catalog != "" {
		if _, ok := r.dialect.CatalogTerm(); ok {
			r.catalog = r.opts.Catalog
		} else {
			r.warnings.Add(UnsupportedFeature, r.db, "%s has no catalog concept; catalog %q ignored", r.dialect.Name(), r.opts.Catalog)
		}
	}

	_, r.allowSchema = r.dialect.SchemaTerm()
	if r.allowSchema {
		return
	}
	for _, t := range r.db.Tables {
		if t.Schema != "" || r.opts.Schema != "" {
			r.warnings.Add(UnsupportedFeature, r.db, "%s has no schema concept; schema qualifiers ignored", r.dialect.Name())
			return
		}
	}
}

func (r *run) checkNames(tables []*schema.Table) {
	limit := r.dialect.MaxIdentifierLength()
	if limit <= 0 {
		return
	}
	check := func(subject schema.Object, name string) {
		if len(name) > limit {
			r.warnings.Add(NameTooLong, subject, "identifier %q is %d characters; %s allows %d", name, len(name), r.dialect.Name(), limit)
		}
	}

	selected := make(map[string]bool, len(tables))
	for _, t := range tables {
		selected[t.Name] = true
		check(t, t.Name)
		for _, c := range t.Columns {
			check(c, c.Name)
		}
		if len(t.PrimaryKeyColumns()) > 0 {
			check(t, primaryKeyName(t))
		}
		for i := range t.Checks {
			check(&t.Checks[i], t.Checks[i].Name)
		}
		for i := range t.Indexes {
			check(&t.Indexes[i], t.Indexes[i].Name)
		}
	}
	for _, rel := range r.db.Relationships {
		if selected[rel.FKTable] {
			check(rel, rel.Name)
		}
	}
}

func (r *run) ident(name string) string {
	if r.opts.QuoteIdentifiers {
		return r.dialect.QuoteIdentifier(name)
	}
	return name
}

func (r *run) identList(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = r.ident(n)
	}
	return strings.Join(out, ", ")
}

func (r *run) tableName(t *schema.Table) string {
	parts := make([]string, 0, 3)
	if r.catalog != "" {
		parts = append(parts, r.ident(r.catalog))
	}
	if r.allowSchema {
		schemaName := t.Schema
		if schemaName == "" {
			schemaName = r.opts.Schema
		}
		if schemaName != "" {
			parts = append(parts, r.ident(schemaName))
		}
	}
	parts = append(parts, r.ident(t.Name))
	return strings.Join(parts, ".")
}

func primaryKeyName(t *schema.Table) string {
	if t.PrimaryKeyName != "" {
		return t.PrimaryKeyName
	}
	return t.Name + "_pk"
}

func (r *run) createTable(t *schema.Table) (string, error) {
	defs := make([]string, 0, len(t.Columns)+len(t.Checks)+1)

	for _, c := range t.Columns {
		def, err := r.columnDefinition(c)
		if err != nil {
			if typeErr, ok := err.(*UnknownTypeError); ok && typeErr.Table == "" {
				typeErr.Table = t.Name
			}
			return "", err
		}
		defs = append(defs, def)
	}

	for _, chk := range t.Checks {
		if chk.Name == "" {
			defs = append(defs, fmt.Sprintf("CHECK (%s)", chk.Expression))
			continue
		}
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s CHECK (%s)", r.ident(chk.Name), chk.Expression))
	}

	if pk := t.PrimaryKeyColumns(); len(pk) > 0 {
		cols := make([]string, len(pk))
		for i, c := range pk {
			cols[i] = c.Name
		}
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", r.ident(primaryKeyName(t)), r.identList(cols)))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", r.tableName(t), strings.Join(defs, ", ")), nil
}

func (r *run) columnDefinition(c *schema.Column) (string, error) {
	colType, err := r.dialect.ColumnType(c, r.warnings)
	if err != nil {
		return "", err
	}
	def := fmt.Sprintf("%s %s", r.ident(c.Name), colType)

	var desc *TypeDescriptor
	if d, err := r.dialect.Registry().Resolve(c.Type); err == nil {
		desc = &d
	}

	notNull := !c.Nullable
	if c.Nullable && desc != nil && desc.Nullability == NoNulls && !c.AutoIncrement {
		r.warnings.Add(NullabilityIgnored, c, "%s columns cannot hold nulls in %s", desc.PhysicalName, r.dialect.Name())
		notNull = true
	}
	if notNull {
		def += " NOT NULL"
	}

	if c.Default != "" {
		value := c.Default
		if c.DefaultLiteral {
			if desc == nil {
				return "", &UnknownTypeError{Dialect: r.dialect.Name(), Code: c.Type, Column: c.Name}
			}
			value = desc.FormatLiteral(value)
		}
		def += " DEFAULT " + value
	}

	return def, nil
}

func (r *run) createIndex(t *schema.Table, idx *schema.Index) string {
	unique := ""
	if idx.IsUnique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, r.ident(idx.Name), r.tableName(t), r.identList(idx.Columns))
}

func (r *run) addForeignKey(rel *schema.Relationship) string {
	fk := r.db.Table(rel.FKTable)
	pk := r.db.Table(rel.PKTable)

	fkCols := make([]string, len(rel.Mappings))
	pkCols := make([]string, len(rel.Mappings))
	for i, m := range rel.Mappings {
		fkCols[i] = m.FKColumn
		pkCols[i] = m.PKColumn
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		r.tableName(fk), r.ident(rel.Name), r.identList(fkCols), r.tableName(pk), r.identList(pkCols))

	sb.WriteString(r.referentialAction(rel, "UPDATE", rel.UpdateRule))
	sb.WriteString(r.referentialAction(rel, "DELETE", rel.DeleteRule))

	if clause := r.dialect.DeferrabilityClause(rel, r.warnings); clause != "" {
		sb.WriteString(" ")
		sb.WriteString(clause)
	}
	return sb.String()
}

func (r *run) referentialAction(rel *schema.Relationship, event string, action schema.ReferentialAction) string {
	if action == schema.NoAction {
		return ""
	}
	if !r.dialect.SupportsAction(action) {
		r.warnings.Add(UnsupportedFeature, rel, "%s does not support ON %s %s", r.dialect.Name(), event, action.SQL())
		return ""
	}
	return fmt.Sprintf(" ON %s %s", event, action.SQL())
}
