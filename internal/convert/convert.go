// Package convert defines the converter capability consumed by the schema
// resolver: per-logical-type physical target kinds and value parsing
// functions. Registration of additional converters is the caller's
// concern; this package only ships the default set.
package convert

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the physical scalar type a column materializes as.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindBytes
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	default:
		return "string"
	}
}

// Func parses one textual field into its materialized value.
type Func func(string) (any, error)

// Converter exposes the type conversion capability: recognized physical
// kinds, registered parsing functions, and lookup with identity fallback.
type Converter interface {
	Types() map[string]Kind
	Mappings() map[string]Func
	Get(logicalType string) Func
}

// Default is the stock converter covering the query engine's scalar types.
type Default struct{}

func NewDefault() *Default {
	return &Default{}
}

func (c *Default) Types() map[string]Kind {
	return map[string]Kind{
		"tinyint":  KindInt64,
		"smallint": KindInt64,
		"integer":  KindInt64,
		"int":      KindInt64,
		"bigint":   KindInt64,
		"float":    KindFloat64,
		"real":     KindFloat64,
		"double":   KindFloat64,
		"char":     KindString,
		"varchar":  KindString,
		"string":   KindString,
	}
}

func (c *Default) Mappings() map[string]Func {
	return map[string]Func{
		"boolean":   toBool,
		"decimal":   toDecimalString,
		"varbinary": toBinary,
		"json":      toString,
		"array":     toString,
		"map":       toString,
		"row":       toString,
	}
}

// Get returns the registered parsing function for a logical type, falling
// back to the identity string conversion when none is registered.
func (c *Default) Get(logicalType string) Func {
	if fn, ok := c.Mappings()[logicalType]; ok {
		return fn
	}
	return toString
}

func toString(value string) (any, error) {
	return value, nil
}

func toBool(value string) (any, error) {
	parsed, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		return nil, fmt.Errorf("parse boolean %q: %w", value, err)
	}
	return parsed, nil
}

// toDecimalString keeps decimals as their exact textual form rather than
// losing precision in a float.
func toDecimalString(value string) (any, error) {
	return strings.TrimSpace(value), nil
}

// toBinary decodes the engine's space-separated hex representation.
func toBinary(value string) (any, error) {
	decoded, err := hex.DecodeString(strings.ReplaceAll(value, " ", ""))
	if err != nil {
		return nil, fmt.Errorf("parse varbinary %q: %w", value, err)
	}
	return decoded, nil
}

// Cast coerces a textual field into the given physical kind.
func Cast(value string, kind Kind) (any, error) {
	switch kind {
	case KindBool:
		return toBool(value)
	case KindInt64:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse integer %q: %w", value, err)
		}
		return parsed, nil
	case KindFloat64:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("parse float %q: %w", value, err)
		}
		return parsed, nil
	case KindBytes:
		return []byte(value), nil
	default:
		return value, nil
	}
}
