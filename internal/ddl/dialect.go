package ddl

import (
	"fmt"
	"strings"

	"github.com/kadirbelkuyu/dbddl/internal/schema"
)

// ColumnTypeFunc renders the type portion of a column definition.
type ColumnTypeFunc func(d *Dialect, c *schema.Column, w *Collector) (string, error)

// DeferrabilityFunc renders the deferrability clause of a foreign key. An empty
// result means no clause.
type DeferrabilityFunc func(d *Dialect, r *schema.Relationship, w *Collector) string

// IdentifierConfig defines how identifiers are quoted.
type IdentifierConfig struct {
	Quote    string // opening quote: ", `, [
	QuoteEnd string // closing quote, usually the same as Quote
	Escape   string // replacement for QuoteEnd inside a name: "", ``, ]]
}

// Config is the static description of a dialect. Nil hooks fall back to the
// generic behaviour.
type Config struct {
	Key  string // registry key, e.g. "hsqldb"
	Name string // display name, e.g. "HSQLDB"

	Types []TypeDescriptor

	// UnboundedLength is the MaxLength value this dialect uses for
	// "practically unlimited" types. Zero when the dialect has none.
	UnboundedLength uint64

	Identifiers         IdentifierConfig
	MaxIdentifierLength int // 0 means no limit

	// CatalogTerm and SchemaTerm name the namespace levels. An empty term
	// means the dialect has no such concept and names are never qualified
	// with it.
	CatalogTerm string
	SchemaTerm  string

	UnsupportedActions []schema.ReferentialAction

	ColumnType          ColumnTypeFunc
	DeferrabilityClause DeferrabilityFunc
}

// Dialect is an immutable, validated dialect ready for generation. It is safe
// to share between concurrent generation runs.
type Dialect struct {
	key             string
	name            string
	registry        *TypeRegistry
	unboundedLength uint64
	identifiers     IdentifierConfig
	maxIdentLength  int
	catalogTerm     string
	schemaTerm      string
	unsupported     map[schema.ReferentialAction]bool
	columnType      ColumnTypeFunc
	deferrability   DeferrabilityFunc
}

// NewDialect builds the type registry from cfg.Types, freezes it and checks
// that every type code is covered.
func NewDialect(cfg Config) (*Dialect, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("dialect name is required")
	}
	key := strings.ToLower(strings.TrimSpace(cfg.Key))
	if key == "" {
		key = strings.ToLower(cfg.Name)
	}

	registry := NewTypeRegistry()
	for _, t := range cfg.Types {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("dialect %s: %w", cfg.Name, err)
		}
	}
	registry.Freeze()

	d := &Dialect{
		key:             key,
		name:            cfg.Name,
		registry:        registry,
		unboundedLength: cfg.UnboundedLength,
		identifiers:     cfg.Identifiers,
		maxIdentLength:  cfg.MaxIdentifierLength,
		catalogTerm:     cfg.CatalogTerm,
		schemaTerm:      cfg.SchemaTerm,
		unsupported:     make(map[schema.ReferentialAction]bool),
		columnType:      cfg.ColumnType,
		deferrability:   cfg.DeferrabilityClause,
	}
	for _, a := range cfg.UnsupportedActions {
		d.unsupported[a] = true
	}
	if d.identifiers.Quote == "" {
		d.identifiers = IdentifierConfig{Quote: `"`, QuoteEnd: `"`, Escape: `""`}
	}
	if d.columnType == nil {
		d.columnType = DefaultColumnType
	}
	if d.deferrability == nil {
		d.deferrability = StandardDeferrability
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// MustDialect is NewDialect for package-level dialect definitions.
func MustDialect(cfg Config) *Dialect {
	d, err := NewDialect(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dialect) Key() string  { return d.key }
func (d *Dialect) Name() string { return d.name }

func (d *Dialect) Registry() *TypeRegistry { return d.registry }

func (d *Dialect) UnboundedLength() uint64 { return d.unboundedLength }

func (d *Dialect) MaxIdentifierLength() int { return d.maxIdentLength }

// CatalogTerm returns the dialect's word for "catalog"; ok is false when the
// dialect has no catalog concept.
func (d *Dialect) CatalogTerm() (term string, ok bool) {
	return d.catalogTerm, d.catalogTerm != ""
}

// SchemaTerm returns the dialect's word for "schema"; ok is false when the
// dialect has no schema concept.
func (d *Dialect) SchemaTerm() (term string, ok bool) {
	return d.schemaTerm, d.schemaTerm != ""
}

// QuoteIdentifier wraps name in the dialect's identifier quotes.
func (d *Dialect) QuoteIdentifier(name string) string {
	id := d.identifiers
	end := id.QuoteEnd
	if end == "" {
		end = id.Quote
	}
	if id.Escape != "" {
		name = strings.ReplaceAll(name, end, id.Escape)
	}
	return id.Quote + name + end
}

// SupportsAction reports whether a referential action can be emitted.
// NO ACTION is the SQL default and always supported.
func (d *Dialect) SupportsAction(a schema.ReferentialAction) bool {
	return a == schema.NoAction || !d.unsupported[a]
}

// ColumnType runs the dialect's column type hook.
func (d *Dialect) ColumnType(c *schema.Column, w *Collector) (string, error) {
	return d.columnType(d, c, w)
}

// DeferrabilityClause runs the dialect's deferrability hook.
func (d *Dialect) DeferrabilityClause(r *schema.Relationship, w *Collector) string {
	return d.deferrability(d, r, w)
}

// Validate checks the type registry against the closed type enumeration.
func (d *Dialect) Validate() error {
	if d == nil {
		return ErrDialectRequired
	}
	if err := d.registry.Validate(); err != nil {
		if regErr, ok := err.(*RegistryError); ok {
			regErr.Dialect = d.name
		}
		return err
	}
	return nil
}

// DefaultColumnType resolves the column's type through the registry and
// appends precision and scale where the descriptor allows them. Dialect
// hooks call it for every column they do not special-case.
func DefaultColumnType(d *Dialect, c *schema.Column, w *Collector) (string, error) {
	desc, err := d.registry.Resolve(c.Type)
	if err != nil {
		if typeErr, ok := err.(*UnknownTypeError); ok {
			typeErr.Dialect = d.name
			typeErr.Column = c.Name
		}
		return "", err
	}

	if !desc.SupportsPrecision || c.Precision <= 0 {
		return desc.PhysicalName, nil
	}

	precision := c.Precision
	if desc.MaxLength > 0 && !desc.Unbounded(d.unboundedLength) && uint64(precision) > desc.MaxLength {
		w.Add(PrecisionClamped, c, "precision %d exceeds the %s maximum of %d", precision, desc.PhysicalName, desc.MaxLength)
		precision = int(desc.MaxLength)
	}

	if desc.SupportsScale {
		scale := c.Scale
		if scale > precision {
			scale = precision
		}
		return fmt.Sprintf("%s(%d,%d)", desc.PhysicalName, precision, scale), nil
	}
	return fmt.Sprintf("%s(%d)", desc.PhysicalName, precision), nil
}

// StandardDeferrability renders the SQL-92 deferrable clause.
func StandardDeferrability(_ *Dialect, r *schema.Relationship, _ *Collector) string {
	switch r.Deferrability {
	case schema.InitiallyDeferred:
		return "DEFERRABLE INITIALLY DEFERRED"
	case schema.InitiallyImmediate:
		return "DEFERRABLE INITIALLY IMMEDIATE"
	default:
		return "NOT DEFERRABLE"
	}
}
