package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Type checks that a value has the expected shape.
type Type interface {
	// Name returns the type name as written in definitions (e.g. "string", "[int]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

type basicType struct {
	name  string
	check func(any) bool
}

func (t basicType) Name() string { return t.name }

func (t basicType) Validate(value any) error {
	if !t.check(value) {
		return fmt.Errorf("expected %s, got %T", t.name, value)
	}
	return nil
}

// String accepts string values.
func String() Type {
	return basicType{name: "string", check: func(v any) bool {
		_, ok := v.(string)
		return ok
	}}
}

// Int accepts integers, and floats or json.Numbers holding whole numbers.
func Int() Type {
	return basicType{name: "int", check: func(v any) bool {
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			return n == math.Trunc(n)
		case json.Number:
			_, err := n.Int64()
			return err == nil
		}
		return false
	}}
}

// Float accepts any numeric value.
func Float() Type {
	return basicType{name: "float", check: func(v any) bool {
		switch n := v.(type) {
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case json.Number:
			_, err := n.Float64()
			return err == nil
		}
		return false
	}}
}

// Bool accepts booleans.
func Bool() Type {
	return basicType{name: "bool", check: func(v any) bool {
		_, ok := v.(bool)
		return ok
	}}
}

type sliceType struct {
	elem Type
}

// Slice accepts slices or arrays whose elements all satisfy elem.
func Slice(elem Type) Type {
	return sliceType{elem: elem}
}

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type customType struct {
	name     string
	validate func(any) error
}

func (t customType) Name() string             { return t.name }
func (t customType) Validate(value any) error { return t.validate(value) }

// Custom creates a named type backed by a user-defined check.
func Custom(name string, validate func(any) error) Type {
	return customType{name: name, validate: validate}
}

// ParseType converts a type name to a Type. An empty name means "any value".
func ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)
	if inner, ok := strings.CutPrefix(name, "["); ok {
		inner, ok = strings.CutSuffix(inner, "]")
		if !ok || inner == "" {
			return nil, fmt.Errorf("unsupported type: %s", name)
		}
		elem, err := ParseType(inner)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			return nil, fmt.Errorf("unsupported type: %s", name)
		}
		return Slice(elem), nil
	}

	switch name {
	case "":
		return nil, nil
	case "string", "text":
		return String(), nil
	case "int", "integer":
		return Int(), nil
	case "float", "number":
		return Float(), nil
	case "bool", "boolean":
		return Bool(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", name)
	}
}
