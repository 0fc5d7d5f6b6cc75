// Package registry collects preprocessor unit classes from tolerant sources
// and serves them to the rest of the pack by name. Discovery never aborts on
// a bad source: failures become diagnostics and the remaining units stay
// usable, matching how a node pack keeps working when some of its optional
// detectors can't load.
package registry

import (
	"context"

	"github.com/rowanvale/auxpack/graphapi"
	"github.com/rowanvale/auxpack/schema"
)

// None is the sentinel selection meaning "no preprocessor"; it is always the
// first choice offered to callers.
const None = "none"

// Arguments is one invocation's named parameter set.
type Arguments map[string]interface{}

// Int reads a named argument as an integer, tolerating the float64 that JSON
// decoding produces. def is returned when the argument is absent or not a
// number.
func (a Arguments) Int(name string, def int) int {
	switch v := a[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Float reads a named argument as a float64.
func (a Arguments) Float(name string, def float64) float64 {
	switch v := a[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// String reads a named argument as a string.
func (a Arguments) String(name, def string) string {
	if v, ok := a[name].(string); ok {
		return v
	}
	return def
}

// Bool reads a named argument as a bool. Combo style "enable"/"disable"
// strings count.
func (a Arguments) Bool(name string, def bool) bool {
	switch v := a[name].(type) {
	case bool:
		return v
	case string:
		switch v {
		case "enable", "true":
			return true
		case "disable", "false":
			return false
		}
	}
	return def
}

// Result is what a unit run produces. Values holds the output tuple, one
// entry per declared return type. A non-nil Expand defers the real work to an
// ephemeral graph: Values then reference Expand's nodes and the host resolves
// them after executing it.
type Result struct {
	Values []interface{}
	Expand graphapi.Graph
}

// Runner executes one unit invocation.
type Runner interface {
	Run(ctx context.Context, args Arguments) (*Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, args Arguments) (*Result, error)

func (f RunnerFunc) Run(ctx context.Context, args Arguments) (*Result, error) {
	return f(ctx, args)
}

// Class is one unit's immutable descriptor. Inputs is a constructor because
// some tables embed choice lists that are only known after discovery.
type Class struct {
	Inputs      func() *schema.Table
	ReturnTypes []string
	ReturnNames []string
	Category    string
	OutputNode  bool
	New         func() Runner
}

// Registry is the ordered name to class table built by Discover. It is
// written once during discovery and read-only afterwards.
type Registry struct {
	names   []string
	classes map[string]*Class
	display map[string]string
}

func New() *Registry {
	return &Registry{
		classes: make(map[string]*Class),
		display: make(map[string]string),
	}
}

// Register adds or replaces a class. A name registered twice keeps its
// original position and takes the newest class, so later sources can shadow
// earlier ones without reordering anything.
func (r *Registry) Register(name string, class *Class) {
	if _, ok := r.classes[name]; !ok {
		r.names = append(r.names, name)
	}
	r.classes[name] = class
}

// SetDisplayName records a human readable label for a unit.
func (r *Registry) SetDisplayName(name, label string) {
	r.display[name] = label
}

// Lookup finds a class by registered name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) Len() int {
	return len(r.names)
}

// DisplayName returns the unit's label, falling back to its name.
func (r *Registry) DisplayName(name string) string {
	if label, ok := r.display[name]; ok {
		return label
	}
	return name
}

// DisplayNames returns a copy of the label table.
func (r *Registry) DisplayNames() map[string]string {
	out := make(map[string]string, len(r.display))
	for k, v := range r.display {
		out[k] = v
	}
	return out
}

// AvailableNames lists the selectable unit names: the None sentinel first,
// then every registered name not excluded, in registration order.
func (r *Registry) AvailableNames(exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}
	out := make([]string, 0, len(r.names)+1)
	out = append(out, None)
	for _, name := range r.names {
		if !skip[name] {
			out = append(out, name)
		}
	}
	return out
}
