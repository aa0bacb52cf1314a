// Package sqltypes defines the closed set of abstract SQL type codes shared by
// every dialect. Numeric values match the JDBC java.sql.Types constants so
// catalogs exported by JDBC tooling map onto them without translation.
package sqltypes

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Code identifies an abstract SQL type.
type Code int

const (
	Bit           Code = -7
	TinyInt       Code = -6
	SmallInt      Code = 5
	Integer       Code = 4
	BigInt        Code = -5
	Float         Code = 6
	Real          Code = 7
	Double        Code = 8
	Numeric       Code = 2
	Decimal       Code = 3
	Char          Code = 1
	VarChar       Code = 12
	LongVarChar   Code = -1
	Date          Code = 91
	Time          Code = 92
	Timestamp     Code = 93
	Binary        Code = -2
	VarBinary     Code = -3
	LongVarBinary Code = -4
	Blob          Code = 2004
	Clob          Code = 2005
	Boolean       Code = 16
)

var all = []Code{
	BigInt, Binary, Bit, Blob, Boolean, Char, Clob, Date, Decimal, Double,
	Float, Integer, LongVarBinary, LongVarChar, Numeric, Real, SmallInt,
	Time, Timestamp, TinyInt, VarBinary, VarChar,
}

var names = map[Code]string{
	Bit:           "BIT",
	TinyInt:       "TINYINT",
	SmallInt:      "SMALLINT",
	Integer:       "INTEGER",
	BigInt:        "BIGINT",
	Float:         "FLOAT",
	Real:          "REAL",
	Double:        "DOUBLE",
	Numeric:       "NUMERIC",
	Decimal:       "DECIMAL",
	Char:          "CHAR",
	VarChar:       "VARCHAR",
	LongVarChar:   "LONGVARCHAR",
	Date:          "DATE",
	Time:          "TIME",
	Timestamp:     "TIMESTAMP",
	Binary:        "BINARY",
	VarBinary:     "VARBINARY",
	LongVarBinary: "LONGVARBINARY",
	Blob:          "BLOB",
	Clob:          "CLOB",
	Boolean:       "BOOLEAN",
}

// aliases are lower-case spellings accepted by Parse in addition to the
// canonical names.
var aliases = map[string]Code{
	"int":                         Integer,
	"int4":                        Integer,
	"int2":                        SmallInt,
	"int8":                        BigInt,
	"bool":                        Boolean,
	"double precision":            Double,
	"float8":                      Double,
	"float4":                      Real,
	"character":                   Char,
	"character varying":           VarChar,
	"text":                        LongVarChar,
	"bytea":                       LongVarBinary,
	"timestamp without time zone": Timestamp,
	"time without time zone":      Time,
	"datetime":                    Timestamp,
}

// All returns every code in the enumeration. The slice is a copy.
func All() []Code {
	out := make([]Code, len(all))
	copy(out, all)
	return out
}

// Valid reports whether c belongs to the enumeration.
func (c Code) Valid() bool {
	_, ok := names[c]
	return ok
}

func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Parse resolves a type name, case-insensitively.
func Parse(name string) (Code, error) {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if key == "" {
		return 0, fmt.Errorf("empty type name")
	}
	for code, n := range names {
		if strings.ToLower(n) == key {
			return code, nil
		}
	}
	if code, ok := aliases[key]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("unknown SQL type %q", name)
}

func (c Code) MarshalYAML() (interface{}, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid SQL type code %d", int(c))
	}
	return c.String(), nil
}

func (c *Code) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	code, err := Parse(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = code
	return nil
}
