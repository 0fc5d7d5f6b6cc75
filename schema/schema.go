// Package schema declares the input tables that preprocessor units expose to a
// graph host. A unit's inputs are typed descriptors grouped into required,
// optional and hidden sections, each preserving declaration order. Tables
// serialize to the host's INPUT_TYPES object shape: a (type, options) tuple per
// input, or a bare type tag for hidden inputs.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type tags understood by graph hosts. Anything else (CONTROL_NET,
// POSE_KEYPOINT, ...) is carried verbatim with Typed.
const (
	TypeInt     = "INT"
	TypeFloat   = "FLOAT"
	TypeString  = "STRING"
	TypeBoolean = "BOOLEAN"
	TypeCombo   = "COMBO"
	TypeImage   = "IMAGE"
	TypeMask    = "MASK"
	TypeLatent  = "LATENT"
)

// Hidden input tags filled in by the host, never by callers.
const (
	TagPrompt   = "PROMPT"
	TagUniqueID = "UNIQUE_ID"
)

// Spec describes a single input. The zero value is an untyped input; build
// specs with the constructors below and refine them with Range, WithStep and
// WithDefault, which return modified copies.
type Spec struct {
	Type       string
	Choices    []string // combo inputs only
	Default    interface{}
	Min        float64
	Max        float64
	Step       float64
	Multiline  bool
	HasDefault bool
	HasRange   bool
	HasStep    bool
}

// Image declares an IMAGE tensor input.
func Image() Spec {
	return Spec{Type: TypeImage}
}

// Mask declares a MASK tensor input.
func Mask() Spec {
	return Spec{Type: TypeMask}
}

// Latent declares a LATENT input.
func Latent() Spec {
	return Spec{Type: TypeLatent}
}

// Typed declares an input with a raw host type tag such as CONTROL_NET.
func Typed(tag string) Spec {
	return Spec{Type: tag}
}

func Int(def int) Spec {
	return Spec{Type: TypeInt, Default: def, HasDefault: true}
}

func Float(def float64) Spec {
	return Spec{Type: TypeFloat, Default: def, HasDefault: true}
}

func Bool(def bool) Spec {
	return Spec{Type: TypeBoolean, Default: def, HasDefault: true}
}

func String(def string) Spec {
	return Spec{Type: TypeString, Default: def, HasDefault: true}
}

// Text declares a multiline string input.
func Text(def string) Spec {
	s := String(def)
	s.Multiline = true
	return s
}

// Combo declares a choice input. The first choice is the default, matching
// how hosts treat an unadorned choice list.
func Combo(choices ...string) Spec {
	s := Spec{Type: TypeCombo, Choices: choices}
	if len(choices) > 0 {
		s.Default = choices[0]
		s.HasDefault = true
	}
	return s
}

// Resolution declares the detector resolution control shared by most units.
func Resolution() Spec {
	return Int(512).Range(64, 16384).WithStep(64)
}

func (s Spec) Range(min, max float64) Spec {
	s.Min = min
	s.Max = max
	s.HasRange = true
	return s
}

func (s Spec) WithStep(step float64) Spec {
	s.Step = step
	s.HasStep = true
	return s
}

func (s Spec) WithDefault(def interface{}) Spec {
	s.Default = def
	s.HasDefault = true
	return s
}

// options collects the tuple's option object; nil when the spec carries none.
func (s Spec) options() map[string]interface{} {
	var opts map[string]interface{}
	set := func(k string, v interface{}) {
		if opts == nil {
			opts = make(map[string]interface{})
		}
		opts[k] = v
	}
	if s.HasDefault {
		set("default", s.Default)
	}
	if s.HasRange {
		set("min", s.Min)
		set("max", s.Max)
	}
	if s.HasStep {
		set("step", s.Step)
	}
	if s.Multiline {
		set("multiline", true)
	}
	return opts
}

// MarshalJSON emits the host tuple: [choices] or [choices, options] for
// combos, [type] or [type, options] otherwise.
func (s Spec) MarshalJSON() ([]byte, error) {
	var first interface{} = s.Type
	if s.Type == TypeCombo {
		choices := s.Choices
		if choices == nil {
			choices = []string{}
		}
		first = choices
	}
	if opts := s.options(); opts != nil {
		return json.Marshal([]interface{}{first, opts})
	}
	return json.Marshal([]interface{}{first})
}

// Field is a named input within a table group.
type Field struct {
	Name string
	Spec Spec
}

// In pairs a name with its spec.
func In(name string, spec Spec) Field {
	return Field{Name: name, Spec: spec}
}

// Table is a unit's full input declaration. Groups keep the order fields were
// added in; that order is the host's widget order and the argument synthesis
// order downstream.
type Table struct {
	Required []Field
	Optional []Field
	Hidden   []Field
}

func NewTable() *Table {
	return &Table{}
}

func (t *Table) Require(fields ...Field) *Table {
	t.Required = append(t.Required, fields...)
	return t
}

func (t *Table) Option(fields ...Field) *Table {
	t.Optional = append(t.Optional, fields...)
	return t
}

func (t *Table) Hide(fields ...Field) *Table {
	t.Hidden = append(t.Hidden, fields...)
	return t
}

// Find locates a visible (required or optional) field by name.
func (t *Table) Find(name string) (Field, bool) {
	for _, f := range t.Required {
		if f.Name == name {
			return f, true
		}
	}
	for _, f := range t.Optional {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// writeGroup emits {"name": spec, ...} preserving field order; encoding/json
// would sort a map's keys.
func writeGroup(buf *bytes.Buffer, fields []Field, hidden bool) error {
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		var val []byte
		if hidden {
			// hidden inputs serialize as a bare tag string
			val, err = json.Marshal(f.Spec.Type)
		} else {
			val, err = json.Marshal(f.Spec)
		}
		if err != nil {
			return err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return nil
}

// MarshalJSON emits the INPUT_TYPES object. Empty groups are omitted.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	group := func(name string, fields []Field, hidden bool) error {
		if len(fields) == 0 {
			return nil
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&buf, "%q:", name)
		return writeGroup(&buf, fields, hidden)
	}
	if err := group("required", t.Required, false); err != nil {
		return nil, err
	}
	if err := group("optional", t.Optional, false); err != nil {
		return nil, err
	}
	if err := group("hidden", t.Hidden, true); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
