package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
)

// Object is anything a generation warning can be attached to.
type Object interface {
	ObjectType() string
	ObjectName() string
}

type Database struct {
	Name          string          `yaml:"name,omitempty"`
	Tables        []*Table        `yaml:"tables"`
	Relationships []*Relationship `yaml:"relationships,omitempty"`
}

type Table struct {
	Name           string            `yaml:"name"`
	Schema         string            `yaml:"schema,omitempty"`
	PrimaryKeyName string            `yaml:"primary_key_name,omitempty"`
	Columns        []*Column         `yaml:"columns"`
	Checks         []CheckConstraint `yaml:"checks,omitempty"`
	Indexes        []Index           `yaml:"indexes,omitempty"`
}

type Column struct {
	Name           string        `yaml:"name"`
	Type           sqltypes.Code `yaml:"type"`
	Precision      int           `yaml:"precision,omitempty"`
	Scale          int           `yaml:"scale,omitempty"`
	Nullable       bool          `yaml:"nullable,omitempty"`
	AutoIncrement  bool          `yaml:"auto_increment,omitempty"`
	PrimaryKey     bool          `yaml:"primary_key,omitempty"`
	Default        string        `yaml:"default,omitempty"`
	DefaultLiteral bool          `yaml:"default_literal,omitempty"`
}

type CheckConstraint struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

type Index struct {
	Name     string   `yaml:"name"`
	Columns  []string `yaml:"columns"`
	IsUnique bool     `yaml:"unique,omitempty"`
}

// ColumnMapping pairs a referencing column with the column it points at.
type ColumnMapping struct {
	FKColumn string `yaml:"fk_column"`
	PKColumn string `yaml:"pk_column"`
}

type Relationship struct {
	Name          string            `yaml:"name"`
	FKTable       string            `yaml:"fk_table"`
	PKTable       string            `yaml:"pk_table"`
	Mappings      []ColumnMapping   `yaml:"mappings"`
	Deferrability Deferrability     `yaml:"deferrability,omitempty"`
	UpdateRule    ReferentialAction `yaml:"on_update,omitempty"`
	DeleteRule    ReferentialAction `yaml:"on_delete,omitempty"`
}

func (t *Table) ObjectType() string { return "table" }
func (t *Table) ObjectName() string { return t.Name }

func (c *Column) ObjectType() string { return "column" }
func (c *Column) ObjectName() string { return c.Name }

func (r *Relationship) ObjectType() string { return "relationship" }
func (r *Relationship) ObjectName() string { return r.Name }

func (d *Database) ObjectType() string { return "database" }
func (d *Database) ObjectName() string { return d.Name }

func (i *Index) ObjectType() string { return "index" }
func (i *Index) ObjectName() string { return i.Name }

func (c *CheckConstraint) ObjectType() string { return "check constraint" }
func (c *CheckConstraint) ObjectName() string { return c.Name }

// Table returns the table with the given name, or nil.
func (d *Database) Table(name string) *Table {
	for _, t := range d.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKeyColumns returns the primary key columns in declaration order.
func (t *Table) PrimaryKeyColumns() []*Column {
	var pk []*Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// Deferrability controls when a foreign key constraint is checked.
type Deferrability int

const (
	NotDeferrable Deferrability = iota
	InitiallyDeferred
	InitiallyImmediate
)

var deferrabilityNames = map[Deferrability]string{
	NotDeferrable:      "not_deferrable",
	InitiallyDeferred:  "initially_deferred",
	InitiallyImmediate: "initially_immediate",
}

func (d Deferrability) String() string {
	if name, ok := deferrabilityNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Deferrability(%d)", int(d))
}

func (d Deferrability) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Deferrability) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	for v, name := range deferrabilityNames {
		if name == key {
			*d = v
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown deferrability %q", value.Line, raw)
}

// ReferentialAction is the ON UPDATE / ON DELETE behaviour of a foreign key.
type ReferentialAction int

const (
	NoAction ReferentialAction = iota
	Restrict
	Cascade
	SetNull
	SetDefault
)

var actionSQL = map[ReferentialAction]string{
	NoAction:   "NO ACTION",
	Restrict:   "RESTRICT",
	Cascade:    "CASCADE",
	SetNull:    "SET NULL",
	SetDefault: "SET DEFAULT",
}

// SQL returns the keyword form used in REFERENCES clauses.
func (a ReferentialAction) SQL() string {
	return actionSQL[a]
}

func (a ReferentialAction) String() string {
	if s, ok := actionSQL[a]; ok {
		return s
	}
	return fmt.Sprintf("ReferentialAction(%d)", int(a))
}

func (a ReferentialAction) MarshalYAML() (interface{}, error) {
	return strings.ToLower(strings.ReplaceAll(a.String(), " ", "_")), nil
}

func (a *ReferentialAction) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	action, err := ParseReferentialAction(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*a = action
	return nil
}

// ParseReferentialAction accepts both "SET NULL" and "set_null" spellings.
func ParseReferentialAction(raw string) (ReferentialAction, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "_", " "))
	if key == "" {
		return NoAction, nil
	}
	for action, sql := range actionSQL {
		if sql == key {
			return action, nil
		}
	}
	return NoAction, fmt.Errorf("unknown referential action %q", raw)
}
