// Package value implements the typed cell values stored in tables and the
// coercion of textual literals into them.
package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Type is the declared type of a column.
type Type string

const (
	TypeInt  Type = "int"
	TypeStr  Type = "str"
	TypeBool Type = "bool"
)

// validTypes is the set of recognized column types.
var validTypes = map[Type]bool{
	TypeInt:  true,
	TypeStr:  true,
	TypeBool: true,
}

// Valid reports whether t is a recognized column type.
func (t Type) Valid() bool {
	return validTypes[t]
}

// TypeNames returns the recognized type tokens, for error messages and help.
func TypeNames() []string {
	return []string{string(TypeInt), string(TypeStr), string(TypeBool)}
}

var (
	// ErrCoercion is returned when a literal cannot be converted to the
	// column's type.
	ErrCoercion = errors.New("cannot coerce value")

	// ErrUnknownType is returned for an unrecognized column type. Schema
	// validation rejects such types at table creation, so reaching this
	// means the registry file was edited by hand.
	ErrUnknownType = errors.New("unknown column type")
)

// Kind discriminates the closed set of value variants.
type Kind uint8

const (
	KindInt Kind = iota
	KindText
	KindBool
)

// Value is a single typed cell value. Exactly one variant field is
// meaningful, selected by the kind. The zero value is the integer 0.
type Value struct {
	kind Kind
	i    int64
	s    string
	b    bool
}

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the variant stored in v.
func (v Value) Kind() Kind { return v.kind }

// IntValue returns the integer variant. It is 0 unless Kind is KindInt.
func (v Value) IntValue() int64 { return v.i }

// TextValue returns the text variant. It is "" unless Kind is KindText.
func (v Value) TextValue() string { return v.s }

// BoolValue returns the boolean variant. It is false unless Kind is KindBool.
func (v Value) BoolValue() bool { return v.b }

// Equal reports typed equality. Values of different kinds are never equal,
// even when their display forms match.
func (v Value) Equal(o Value) bool {
	return v == o
}

// String returns the display form of the value.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// MarshalJSON encodes the value as its plain JSON scalar, so record
// documents contain ordinary numbers, strings and booleans.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.i)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.s)
	}
}

// UnmarshalJSON decodes a plain JSON scalar into the matching variant.
// Numbers must be integral; record documents never hold floats.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}

	switch x := raw.(type) {
	case bool:
		*v = Bool(x)
	case string:
		*v = Text(x)
	case json.Number:
		i, err := strconv.ParseInt(x.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("non-integer number %q in record document: %w", x.String(), err)
		}
		*v = Int(i)
	default:
		return fmt.Errorf("unsupported JSON value %s in record document", string(data))
	}
	return nil
}

// boolean literal accept sets; the Russian synonyms are kept for
// compatibility with documents written by the original tool.
var (
	trueLiterals  = map[string]bool{"true": true, "1": true, "yes": true, "да": true, "истина": true}
	falseLiterals = map[string]bool{"false": true, "0": true, "no": true, "нет": true, "ложь": true}
)

// Parse coerces a raw textual literal into a typed value per the column
// type. Surrounding whitespace and a single layer of matching quotes are
// stripped first, so Parse(`"42"`, TypeInt) and Parse("42", TypeInt) agree.
func Parse(raw string, t Type) (Value, error) {
	s := Unquote(raw)

	switch t {
	case TypeInt:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an int", ErrCoercion, s)
		}
		return Int(i), nil

	case TypeStr:
		return Text(s), nil

	case TypeBool:
		lower := strings.ToLower(s)
		if trueLiterals[lower] {
			return Bool(true), nil
		}
		if falseLiterals[lower] {
			return Bool(false), nil
		}
		return Value{}, fmt.Errorf("%w: %q is not a bool", ErrCoercion, s)

	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
}

// Unquote trims surrounding whitespace and one layer of matching double or
// single quotes. The quoted content itself is preserved verbatim.
func Unquote(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
