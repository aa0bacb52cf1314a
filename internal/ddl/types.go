package ddl

import (
	"fmt"
	"strings"

	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
)

// Nullability values follow java.sql.DatabaseMetaData.
type Nullability int

const (
	NoNulls Nullability = iota
	Nullable
	NullableUnknown
)

func (n Nullability) String() string {
	switch n {
	case NoNulls:
		return "no nulls"
	case Nullable:
		return "nullable"
	case NullableUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Nullability(%d)", int(n))
	}
}

// TypeDescriptor is how one dialect spells one abstract type.
type TypeDescriptor struct {
	PhysicalName      string
	Code              sqltypes.Code
	MaxLength         uint64 // 0 when length does not apply
	LiteralPrefix     string
	LiteralSuffix     string
	Nullability       Nullability
	SupportsPrecision bool
	SupportsScale     bool
}

// FormatLiteral renders value as a literal of this type. Occurrences of the
// suffix inside value are doubled. Types without literal quoting return the
// value unchanged.
func (t TypeDescriptor) FormatLiteral(value string) string {
	if t.LiteralPrefix == "" && t.LiteralSuffix == "" {
		return value
	}
	if t.LiteralSuffix != "" {
		value = strings.ReplaceAll(value, t.LiteralSuffix, t.LiteralSuffix+t.LiteralSuffix)
	}
	return t.LiteralPrefix + value + t.LiteralSuffix
}

// Unbounded reports whether MaxLength is the dialect's "practically
// unlimited" sentinel.
func (t TypeDescriptor) Unbounded(sentinel uint64) bool {
	return sentinel != 0 && t.MaxLength == sentinel
}

// TypeRegistry maps every type code to its descriptor for one dialect. It is
// populated during dialect construction, then frozen and only read.
type TypeRegistry struct {
	descriptors map[sqltypes.Code]TypeDescriptor
	frozen      bool
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{descriptors: make(map[sqltypes.Code]TypeDescriptor)}
}

// Register inserts or replaces the descriptor for d.Code.
func (r *TypeRegistry) Register(d TypeDescriptor) error {
	if r.frozen {
		return ErrRegistryFrozen
	}
	if !d.Code.Valid() {
		return fmt.Errorf("cannot register invalid SQL type code %d", int(d.Code))
	}
	if strings.TrimSpace(d.PhysicalName) == "" {
		return fmt.Errorf("descriptor for %s has no physical name", d.Code)
	}
	r.descriptors[d.Code] = d
	return nil
}

func (r *TypeRegistry) Freeze() {
	r.frozen = true
}

func (r *TypeRegistry) Frozen() bool {
	return r.frozen
}

// Resolve returns the descriptor for code or an *UnknownTypeError.
func (r *TypeRegistry) Resolve(code sqltypes.Code) (TypeDescriptor, error) {
	d, ok := r.descriptors[code]
	if !ok {
		return TypeDescriptor{}, &UnknownTypeError{Code: code}
	}
	return d, nil
}

// Validate checks that every code of the closed enumeration is registered.
// Descriptors are keyed by their own Code, so a registered code always
// resolves to a descriptor carrying that code.
func (r *TypeRegistry) Validate() error {
	var missing []sqltypes.Code
	for _, code := range sqltypes.All() {
		if _, ok := r.descriptors[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return &RegistryError{Missing: missing}
	}
	return nil
}

// Descriptors lists the registered descriptors in sqltypes.All order.
func (r *TypeRegistry) Descriptors() []TypeDescriptor {
	out := make([]TypeDescriptor, 0, len(r.descriptors))
	for _, code := range sqltypes.All() {
		if d, ok := r.descriptors[code]; ok {
			out = append(out, d)
		}
	}
	return out
}
