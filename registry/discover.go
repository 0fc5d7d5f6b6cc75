package registry

import "errors"

// ErrIncomplete marks a source that is intentionally not ready, a stub still
// being worked on. Discovery skips it silently instead of reporting a
// failure. Sources signal it by returning an error wrapping this one.
var ErrIncomplete = errors.New("source does not define its node mappings")

// Mappings is what a source contributes: an ordered class table and an
// optional display-name table.
type Mappings struct {
	names   []string
	classes map[string]*Class
	display map[string]string
}

func NewMappings() *Mappings {
	return &Mappings{classes: make(map[string]*Class)}
}

// Register adds a class to the contribution, keeping declaration order.
func (m *Mappings) Register(name string, class *Class) *Mappings {
	if _, ok := m.classes[name]; !ok {
		m.names = append(m.names, name)
	}
	m.classes[name] = class
	return m
}

// Display records a human readable label for a registered name.
func (m *Mappings) Display(name, label string) *Mappings {
	if m.display == nil {
		m.display = make(map[string]string)
	}
	m.display[name] = label
	return m
}

// Source is one discoverable provider of unit classes. Load may fail in two
// ways: wrapping ErrIncomplete for work-in-progress sources, or any other
// error for genuine load failures.
type Source interface {
	Name() string
	Load() (*Mappings, error)
}

type funcSource struct {
	name string
	load func() (*Mappings, error)
}

func (s *funcSource) Name() string             { return s.name }
func (s *funcSource) Load() (*Mappings, error) { return s.load() }

// NewSource wraps a load function as a Source.
func NewSource(name string, load func() (*Mappings, error)) Source {
	return &funcSource{name: name, load: load}
}

// Discover loads every source in order and merges the survivors into one
// registry. Within a source, classes merge in declaration order; across
// sources, a name collision keeps the earliest position and the latest class.
// Failed sources land in the diagnostics and contribute nothing; discovery
// itself never fails.
func Discover(sources []Source) (*Registry, *Diagnostics) {
	reg := New()
	diags := NewDiagnostics()
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			if errors.Is(err, ErrIncomplete) {
				diags.skip(src.Name())
				continue
			}
			diags.record(src.Name(), err)
			continue
		}
		if m == nil {
			diags.skip(src.Name())
			continue
		}
		for _, name := range m.names {
			reg.Register(name, m.classes[name])
		}
		for name, label := range m.display {
			reg.SetDisplayName(name, label)
		}
		diags.loaded(src.Name())
	}
	return reg, diags
}
