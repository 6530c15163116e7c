package schema

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/formwizard/pkg/domain"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"string", "string", false},
		{"integer", "int", false},
		{"number", "float", false},
		{"bool", "bool", false},
		{"[string]", "[string]", false},
		{"[[int]]", "[[int]]", false},
		{"date", "", true},
		{"[]", "", true},
		{"[string", "", true},
	}
	for _, tt := range tests {
		typ, err := ParseType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && typ.Name() != tt.want {
			t.Errorf("ParseType(%q) = %s, want %s", tt.in, typ.Name(), tt.want)
		}
	}

	if typ, err := ParseType(""); err != nil || typ != nil {
		t.Errorf("ParseType(\"\") = %v, %v; want nil, nil", typ, err)
	}
}

func TestTypes(t *testing.T) {
	tests := []struct {
		typ   Type
		value any
		ok    bool
	}{
		{String(), "x", true},
		{String(), 1, false},
		{Int(), 3, true},
		{Int(), 3.0, true},
		{Int(), 3.5, false},
		{Int(), json.Number("42"), true},
		{Int(), "42", false},
		{Float(), 2, true},
		{Float(), json.Number("2.5"), true},
		{Bool(), true, true},
		{Bool(), "true", false},
		{Slice(String()), []any{"a", "b"}, true},
		{Slice(String()), []string{"a"}, true},
		{Slice(Int()), []any{1, "b"}, false},
		{Slice(Int()), 1, false},
	}
	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err == nil) != tt.ok {
			t.Errorf("%s.Validate(%#v) error = %v, want ok=%v", tt.typ.Name(), tt.value, err, tt.ok)
		}
	}
}

func TestSchema_Validate(t *testing.T) {
	s, err := Compile([]domain.Field{
		{Name: "name", Type: "string", Required: true},
		{Name: "address.city", Type: "string", Required: true},
		{Name: "age", Type: "int"},
		{Name: "plan", Options: []string{"basic", "pro"}},
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	ok := map[string]any{
		"name":    "Bob",
		"address": map[string]any{"city": "X"},
		"plan":    "pro",
	}
	if err := s.Validate(ok); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	bad := map[string]any{
		"name": "",
		"age":  "ten",
		"plan": "gold",
	}
	err = s.Validate(bad)
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	errs := ValidationErrors(err)
	if len(errs) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(errs), err)
	}
	want := []string{"name", "address.city", "age", "plan"}
	for i, e := range errs {
		if e.Field != want[i] {
			t.Errorf("error %d on %q, want %q", i, e.Field, want[i])
		}
	}
	if errs[0].Reason != "required" {
		t.Errorf("empty required field reason = %q", errs[0].Reason)
	}
}

func TestSchema_ValidateFields(t *testing.T) {
	s := Schema{
		{Field: "a", Type: Int(), Required: true},
		{Field: "b", Type: Int(), Required: true},
	}

	if err := s.ValidateFields(map[string]any{"a": 1}, "a"); err != nil {
		t.Errorf("ValidateFields(a) error = %v", err)
	}
	if err := s.ValidateFields(map[string]any{"a": 1}, "a", "b"); err == nil {
		t.Error("ValidateFields(a, b) should report missing b")
	}
	errs := ValidationErrors(s.ValidateFields(nil, "c"))
	if len(errs) != 1 || errs[0].Reason != "not declared" {
		t.Errorf("ValidateFields(c) = %v", errs)
	}
}

func TestCustom(t *testing.T) {
	positive := Custom("positive", func(v any) error {
		n, ok := v.(int)
		if !ok || n <= 0 {
			return fmt.Errorf("must be a positive int")
		}
		return nil
	})
	s := Schema{{Field: "seats", Type: positive}}

	if err := s.Validate(map[string]any{"seats": 2}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := s.Validate(map[string]any{"seats": -1}); err == nil {
		t.Error("Validate() should reject -1")
	}
}

func TestCompile_UnknownType(t *testing.T) {
	if _, err := Compile([]domain.Field{{Name: "when", Type: "date"}}); err == nil {
		t.Error("Compile() should reject unknown types")
	}
}
