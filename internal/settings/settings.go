// Package settings holds the typed campaign settings options.
//
// Each recognized option has exactly one value kind. Documents carrying an
// option the Registry does not know about are rejected by the validator, so
// engines extend the set by registering options before validating.
package settings

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind is the value type of a settings option
type Kind int

const (
	Invalid Kind = iota
	Bool
	Int
	Float
	String
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Float:
		return "number"
	case String:
		return "string"
	}
	return "invalid"
}

// Value is a settings value tagged with its Kind. The zero Value is Invalid.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }
func IntValue(i int64) Value { return Value{kind: Int, i: i} }
func FloatValue(f float64) Value { return Value{kind: Float, f: f} }
func StringValue(s string) Value { return Value{kind: String, s: s} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsValid() bool { return v.kind != Invalid }
func (v Value) Bool() bool { return v.kind == Bool && v.b }
func (v Value) Int() int64 { return v.i }

// Float returns the value as a float; Int values are widened.
func (v Value) Float() float64 {
	if v.kind == Int {
		return float64(v.i)
	}
	return v.f
}

func (v Value) String() string {
	switch v.kind {
	case Bool:
		return strconv.FormatBool(v.b)
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case String:
		return v.s
	}
	return ""
}

// Interface returns the underlying Go value, or nil for Invalid
func (v Value) Interface() interface{} {
	switch v.kind {
	case Bool:
		return v.b
	case Int:
		return v.i
	case Float:
		return v.f
	case String:
		return v.s
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v Value) MarshalYAML() (interface{}, error) {
	return v.Interface(), nil
}

// Coerce converts a decoded document scalar into a Value of kind k.
// Numbers are expected as json.Number, the form produced by normalize.
func Coerce(k Kind, raw interface{}) (Value, error) {
	switch k {
	case Bool:
		if b, ok := raw.(bool); ok {
			return BoolValue(b), nil
		}
	case Int:
		if n, ok := raw.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return IntValue(i), nil
			}
		}
	case Float:
		if n, ok := raw.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				return FloatValue(f), nil
			}
		}
	case String:
		if s, ok := raw.(string); ok {
			return StringValue(s), nil
		}
	default:
		return Value{}, fmt.Errorf("cannot coerce to %s", k)
	}
	return Value{}, fmt.Errorf("expected %s, got %s", k, describe(raw))
}

func describe(raw interface{}) string {
	switch raw.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "sequence"
	case map[string]interface{}:
		return "mapping"
	}
	return fmt.Sprintf("%T", raw)
}

// Option describes one recognized settings key
type Option struct {
	Name        string
	Description string
	Kind        Kind
	Default     Value
}

// Registry is the set of recognized options. Register everything before the
// registry is shared; lookups are then safe from any goroutine.
type Registry struct {
	options map[string]Option
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{options: make(map[string]Option)}
}

// DefaultRegistry returns a registry with the options every engine understands
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(Option{
		Name:        "hercules",
		Description: "Enable the C-130J-30 Super Hercules transport variant",
		Kind:        Bool,
		Default:     BoolValue(false),
	})
	r.MustRegister(Option{
		Name:        "squadron_start_full",
		Description: "Squadrons begin the campaign at full strength",
		Kind:        Bool,
		Default:     BoolValue(false),
	})
	return r
}

// Register adds an option. The default must match the option kind.
func (r *Registry) Register(opt Option) error {
	if opt.Name == "" {
		return fmt.Errorf("option name cannot be empty")
	}
	if opt.Kind == Invalid {
		return fmt.Errorf("option %s has no kind", opt.Name)
	}
	if _, exists := r.options[opt.Name]; exists {
		return fmt.Errorf("option %s already registered", opt.Name)
	}
	if opt.Default.IsValid() && opt.Default.Kind() != opt.Kind {
		return fmt.Errorf("option %s: default is %s, want %s", opt.Name, opt.Default.Kind(), opt.Kind)
	}
	r.options[opt.Name] = opt
	return nil
}

// MustRegister is Register that panics on error
func (r *Registry) MustRegister(opt Option) {
	if err := r.Register(opt); err != nil {
		panic(err)
	}
}

// Lookup returns the option registered under name
func (r *Registry) Lookup(name string) (Option, bool) {
	opt, ok := r.options[name]
	return opt, ok
}

// Default returns the registered default for name, or the zero Value
func (r *Registry) Default(name string) Value {
	return r.options[name].Default
}

// Options returns all options sorted by name
func (r *Registry) Options() []Option {
	out := make([]Option, 0, len(r.options))
	for _, opt := range r.options {
		out = append(out, opt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
