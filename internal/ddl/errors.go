package ddl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
)

var (
	ErrUnknownType        = errors.New("unknown SQL type")
	ErrIncompleteRegistry = errors.New("incomplete type registry")
	ErrRegistryFrozen     = errors.New("type registry is frozen")
	ErrDialectRequired    = errors.New("dialect is required")
	ErrUnknownTable       = errors.New("table not found in schema")
)

// UnknownTypeError reports a column whose type code has no descriptor in the
// active dialect. It aborts generation.
type UnknownTypeError struct {
	Dialect string
	Code    sqltypes.Code
	Table   string
	Column  string
}

func (e *UnknownTypeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unknown SQL type %s", e.Code)
	if e.Dialect != "" {
		fmt.Fprintf(&b, " for dialect %s", e.Dialect)
	}
	switch {
	case e.Table != "" && e.Column != "":
		fmt.Fprintf(&b, " (column %s.%s)", e.Table, e.Column)
	case e.Column != "":
		fmt.Fprintf(&b, " (column %s)", e.Column)
	}
	return b.String()
}

func (e *UnknownTypeError) Unwrap() error {
	return ErrUnknownType
}

// RegistryError lists the codes a dialect failed to register correctly.
type RegistryError struct {
	Dialect string
	Missing []sqltypes.Code
}

func (e *RegistryError) Error() string {
	name := e.Dialect
	if name == "" {
		name = "dialect"
	}
	return fmt.Sprintf("%s type registry is incomplete: missing %s", name, joinCodes(e.Missing))
}

func (e *RegistryError) Unwrap() error {
	return ErrIncompleteRegistry
}

func joinCodes(codes []sqltypes.Code) string {
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
