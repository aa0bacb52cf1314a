package ddl

import (
	"fmt"
	"strings"

	"github.com/kadirbelkuyu/dbddl/internal/schema"
)

type WarningKind int

const (
	// UnsupportedFeature: the dialect cannot express a requested semantic and
	// the clause was dropped.
	UnsupportedFeature WarningKind = iota
	// NameTooLong: an identifier exceeds the dialect's length limit.
	NameTooLong
	// PrecisionClamped: a declared precision exceeded the type's maximum.
	PrecisionClamped
	// NullabilityIgnored: a nullable column uses a type that cannot hold nulls.
	NullabilityIgnored
)

func (k WarningKind) String() string {
	switch k {
	case UnsupportedFeature:
		return "unsupported-feature"
	case NameTooLong:
		return "name-too-long"
	case PrecisionClamped:
		return "precision-clamped"
	case NullabilityIgnored:
		return "nullability-ignored"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is a non-fatal problem found while generating. Subject is the schema
// object that triggered it and may be nil for run-wide issues.
type Warning struct {
	Kind    WarningKind
	Message string
	Subject schema.Object
}

func (w Warning) String() string {
	if w.Subject == nil {
		return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("[%s] %s %q: %s", w.Kind, w.Subject.ObjectType(), w.Subject.ObjectName(), w.Message)
}

// Collector accumulates warnings for one generation run. It is not safe for
// concurrent use; every run owns its own collector.
type Collector struct {
	warnings []Warning
}

func (c *Collector) Add(kind WarningKind, subject schema.Object, format string, args ...any) {
	c.warnings = append(c.warnings, Warning{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Subject: subject,
	})
}

func (c *Collector) Len() int {
	return len(c.warnings)
}

// Warnings returns a copy of the collected warnings in the order they were
// raised.
func (c *Collector) Warnings() Warnings {
	out := make(Warnings, len(c.warnings))
	copy(out, c.warnings)
	return out
}

type Warnings []Warning

// About returns the warnings attached to subject.
func (ws Warnings) About(subject schema.Object) Warnings {
	var out Warnings
	for _, w := range ws {
		if w.Subject == subject {
			out = append(out, w)
		}
	}
	return out
}

func (ws Warnings) OfKind(kind WarningKind) Warnings {
	var out Warnings
	for _, w := range ws {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

func (ws Warnings) String() string {
	if len(ws) == 0 {
		return "No warnings"
	}
	var sb strings.Builder
	sb.WriteString("Warnings:\n")
	for _, w := range ws {
		sb.WriteString("  - ")
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
