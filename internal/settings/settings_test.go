package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, name := range []string{"hercules", "squadron_start_full"} {
		opt, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, Bool, opt.Kind)
		assert.False(t, r.Default(name).Bool())
	}

	_, ok := r.Lookup("unknown")
	assert.False(t, ok)
	assert.False(t, r.Default("unknown").IsValid())
}

func TestRegister(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(Option{Name: "ratio", Kind: Float, Default: FloatValue(0.5)}))
	assert.Error(t, r.Register(Option{Name: "ratio", Kind: Float}), "duplicate")
	assert.Error(t, r.Register(Option{Name: "", Kind: Bool}), "empty name")
	assert.Error(t, r.Register(Option{Name: "x", Kind: Invalid}), "no kind")
	assert.Error(t, r.Register(Option{Name: "y", Kind: Int, Default: BoolValue(true)}), "kind mismatch")

	assert.Panics(t, func() { r.MustRegister(Option{Name: "ratio", Kind: Float}) })

	names := []string{}
	for _, opt := range r.Options() {
		names = append(names, opt.Name)
	}
	assert.Equal(t, []string{"ratio"}, names)
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		raw     interface{}
		want    Value
		wantErr bool
	}{
		{"bool", Bool, true, BoolValue(true), false},
		{"int", Int, json.Number("12"), IntValue(12), false},
		{"int from fraction", Int, json.Number("1.5"), Value{}, true},
		{"float from int", Float, json.Number("3"), FloatValue(3), false},
		{"string", String, "blue", StringValue("blue"), false},
		{"bool from string", Bool, "true", Value{}, true},
		{"invalid kind", Invalid, true, Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.kind, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_Accessors(t *testing.T) {
	assert.Equal(t, 2.0, IntValue(2).Float())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "0.25", FloatValue(0.25).String())
	assert.Nil(t, Value{}.Interface())

	data, err := json.Marshal(map[string]Value{"hercules": BoolValue(true)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"hercules": true}`, string(data))
}
