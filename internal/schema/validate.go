package schema

import (
	"errors"
	"fmt"
)

// ErrMalformedSchema is wrapped by every MalformedSchemaError.
var ErrMalformedSchema = errors.New("malformed schema")

// MalformedSchemaError reports structurally invalid input. Generation never
// tries to repair it.
type MalformedSchemaError struct {
	Object Object
	Reason string
}

func (e *MalformedSchemaError) Error() string {
	if e.Object == nil {
		return fmt.Sprintf("malformed schema: %s", e.Reason)
	}
	return fmt.Sprintf("malformed schema: %s %q: %s", e.Object.ObjectType(), e.Object.ObjectName(), e.Reason)
}

func (e *MalformedSchemaError) Unwrap() error {
	return ErrMalformedSchema
}

func malformed(obj Object, format string, args ...any) error {
	return &MalformedSchemaError{Object: obj, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks that every reference in the model resolves. It stops at the
// first problem.
func (d *Database) Validate() error {
	if d == nil {
		return malformed(nil, "database is nil")
	}

	tables := make(map[string]*Table, len(d.Tables))
	for _, t := range d.Tables {
		if t == nil {
			return malformed(d, "contains a nil table")
		}
		if err := t.validate(); err != nil {
			return err
		}
		if _, dup := tables[t.Name]; dup {
			return malformed(t, "duplicate table name")
		}
		tables[t.Name] = t
	}

	names := make(map[string]bool, len(d.Relationships))
	for _, r := range d.Relationships {
		if r == nil {
			return malformed(d, "contains a nil relationship")
		}
		if r.Name == "" {
			return malformed(r, "relationship name is empty")
		}
		if names[r.Name] {
			return malformed(r, "duplicate relationship name")
		}
		names[r.Name] = true

		if err := r.validate(tables); err != nil {
			return err
		}
	}

	return nil
}

func (t *Table) validate() error {
	if t.Name == "" {
		return malformed(t, "table name is empty")
	}
	if len(t.Columns) == 0 {
		return malformed(t, "table has no columns")
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c == nil {
			return malformed(t, "contains a nil column")
		}
		if c.Name == "" {
			return malformed(t, "column name is empty")
		}
		if seen[c.Name] {
			return malformed(c, "duplicate column in table %s", t.Name)
		}
		seen[c.Name] = true

		if c.Precision < 0 || c.Scale < 0 {
			return malformed(c, "negative precision or scale in table %s", t.Name)
		}
		if c.Precision > 0 && c.Scale > c.Precision {
			return malformed(c, "scale %d exceeds precision %d in table %s", c.Scale, c.Precision, t.Name)
		}
	}

	for _, chk := range t.Checks {
		if chk.Expression == "" {
			return malformed(t, "check constraint %q has no expression", chk.Name)
		}
	}

	for _, idx := range t.Indexes {
		if idx.Name == "" {
			return malformed(t, "index name is empty")
		}
		if len(idx.Columns) == 0 {
			return malformed(t, "index %q has no columns", idx.Name)
		}
		for _, col := range idx.Columns {
			if !seen[col] {
				return malformed(t, "index %q references unknown column %q", idx.Name, col)
			}
		}
	}

	return nil
}

func (r *Relationship) validate(tables map[string]*Table) error {
	fk, ok := tables[r.FKTable]
	if !ok {
		return malformed(r, "references unknown fk table %q", r.FKTable)
	}
	pk, ok := tables[r.PKTable]
	if !ok {
		return malformed(r, "references unknown pk table %q", r.PKTable)
	}
	if len(r.Mappings) == 0 {
		return malformed(r, "has no column mappings")
	}
	for _, m := range r.Mappings {
		if fk.Column(m.FKColumn) == nil {
			return malformed(r, "references unknown column %s.%s", r.FKTable, m.FKColumn)
		}
		if pk.Column(m.PKColumn) == nil {
			return malformed(r, "references unknown column %s.%s", r.PKTable, m.PKColumn)
		}
	}
	if _, ok := deferrabilityNames[r.Deferrability]; !ok {
		return malformed(r, "invalid deferrability %d", int(r.Deferrability))
	}
	if _, ok := actionSQL[r.UpdateRule]; !ok {
		return malformed(r, "invalid update rule %d", int(r.UpdateRule))
	}
	if _, ok := actionSQL[r.DeleteRule]; !ok {
		return malformed(r, "invalid delete rule %d", int(r.DeleteRule))
	}
	return nil
}
