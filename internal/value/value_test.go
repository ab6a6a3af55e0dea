package value

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{"bare", "42", 42, false},
		{"double quoted", `"42"`, 42, false},
		{"single quoted", "'42'", 42, false},
		{"negative", "-7", -7, false},
		{"surrounding whitespace", "  42  ", 42, false},
		{"whitespace then quotes", ` "42" `, 42, false},
		{"non-numeric", "abc", 0, true},
		{"float", "4.2", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.raw, TypeInt)
			if tt.wantErr {
				if !errors.Is(err, ErrCoercion) {
					t.Fatalf("Parse(%q) error = %v, want ErrCoercion", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.raw, err)
			}
			if v.Kind() != KindInt || v.IntValue() != tt.want {
				t.Errorf("Parse(%q) = %v, want %d", tt.raw, v, tt.want)
			}
		})
	}
}

func TestParseStr(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare", "Ann", "Ann"},
		{"double quoted", `"Ann"`, "Ann"},
		{"quoted with spaces", `"New York"`, "New York"},
		{"empty quoted", `""`, ""},
		{"empty", "", ""},
		{"one quote layer only", `"'42'"`, "'42'"},
		{"trimmed", "  Ann  ", "Ann"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.raw, TypeStr)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.raw, err)
			}
			if v.Kind() != KindText || v.TextValue() != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.raw, v.TextValue(), tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	trueInputs := []string{"true", "TRUE", "True", "1", "yes", "Yes", `"true"`, "да", "ИСТИНА"}
	for _, raw := range trueInputs {
		v, err := Parse(raw, TypeBool)
		if err != nil {
			t.Errorf("Parse(%q): %v", raw, err)
			continue
		}
		if v.Kind() != KindBool || !v.BoolValue() {
			t.Errorf("Parse(%q) = %v, want true", raw, v)
		}
	}

	falseInputs := []string{"false", "FALSE", "0", "no", "NO", "'false'", "нет", "ложь"}
	for _, raw := range falseInputs {
		v, err := Parse(raw, TypeBool)
		if err != nil {
			t.Errorf("Parse(%q): %v", raw, err)
			continue
		}
		if v.Kind() != KindBool || v.BoolValue() {
			t.Errorf("Parse(%q) = %v, want false", raw, v)
		}
	}

	for _, raw := range []string{"on", "2", "truth", "", "ja"} {
		if _, err := Parse(raw, TypeBool); !errors.Is(err, ErrCoercion) {
			t.Errorf("Parse(%q) error = %v, want ErrCoercion", raw, err)
		}
	}
}

func TestParseUnknownType(t *testing.T) {
	if _, err := Parse("42", Type("float")); !errors.Is(err, ErrUnknownType) {
		t.Errorf("error = %v, want ErrUnknownType", err)
	}
}

func TestParseIdempotentOnBareValues(t *testing.T) {
	bare, err := Parse("42", TypeInt)
	if err != nil {
		t.Fatal(err)
	}
	quoted, err := Parse(`"42"`, TypeInt)
	if err != nil {
		t.Fatal(err)
	}
	if !bare.Equal(quoted) {
		t.Errorf("Parse(42) = %v, Parse(\"42\") = %v, want equal", bare, quoted)
	}
}

func TestEqualIsTyped(t *testing.T) {
	if Int(1).Equal(Text("1")) {
		t.Error("Int(1) should not equal Text(\"1\")")
	}
	if Bool(true).Equal(Int(1)) {
		t.Error("Bool(true) should not equal Int(1)")
	}
	if !Text("Ann").Equal(Text("Ann")) {
		t.Error("equal text values should compare equal")
	}
	if Text("Ann").Equal(Text("ann")) {
		t.Error("text equality should be case-sensitive")
	}
}

func TestTypeValid(t *testing.T) {
	for _, typ := range []Type{TypeInt, TypeStr, TypeBool} {
		if !typ.Valid() {
			t.Errorf("%q should be valid", typ)
		}
	}
	for _, typ := range []Type{"float", "INT", "string", ""} {
		if Type(typ).Valid() {
			t.Errorf("%q should be invalid", typ)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		json string
	}{
		{"int", Int(42), "42"},
		{"negative int", Int(-7), "-7"},
		{"text", Text("Ann"), `"Ann"`},
		{"bool", Bool(true), "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.v)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("Marshal = %s, want %s", data, tt.json)
			}

			var back Value
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !back.Equal(tt.v) {
				t.Errorf("round trip = %v, want %v", back, tt.v)
			}
		})
	}
}

func TestUnmarshalRejectsFloat(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte("4.5"), &v); err == nil {
		t.Error("expected error for non-integer number")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Int(42), "42"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Text("New York"), "New York"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
