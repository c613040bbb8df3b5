package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Stage is a single unit of pipeline behavior. Run mutates the shared
// context in place; the same context flows through every stage of one
// pipeline run. A stage may additionally implement Setup() error, which
// is called exactly once after construction and before Run.
type Stage[C any] interface {
	Run(c *C) error
}

// Named is implemented by stage types that declare a canonical tag.
// Register uses it; RegisterNamed does not require it.
type Named interface {
	StageName() string
}

// Descriptor is one entry of the declared stage list: a name and the
// still-opaque argument payload it was written with. Descriptors are
// parsed once and never modified; arguments are decoded freshly on
// every run.
type Descriptor struct {
	Name string
	Args *yaml.Node
}

// Factory turns an argument payload into a constructed stage. Factories
// are installed by Register/RegisterNamed and invoked during Run.
type Factory[C any] func(args *yaml.Node) (Stage[C], error)

// ErrUnknown is returned when a descriptor names a stage that was never
// registered.
type ErrUnknown struct{ Name string }

func (e ErrUnknown) Error() string { return "unknown stage: " + e.Name }

// Manager owns an ordered descriptor list and the registry used to
// resolve it. The zero value is an empty pipeline; New, Parse and Load
// are the usual constructors. Manager itself satisfies Stage[C], so a
// stage type can embed one to form a recursive sub-pipeline.
type Manager[C any] struct {
	descriptors []Descriptor
	factories   map[string]Factory[C]
}

// New returns an empty Manager to be populated programmatically.
func New[C any]() *Manager[C] {
	return &Manager[C]{factories: map[string]Factory[C]{}}
}

// Parse builds a Manager from a YAML document with a top-level
// `stages:` list. Unknown top-level keys are ignored.
func Parse[C any](data []byte) (*Manager[C], error) {
	var doc struct {
		Stages yaml.Node `yaml:"stages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	if doc.Stages.Kind == 0 {
		return nil, fmt.Errorf("parse pipeline: missing stages list")
	}
	ds, err := decodeStageList(&doc.Stages)
	if err != nil {
		return nil, err
	}
	m := New[C]()
	m.descriptors = ds
	return m, nil
}

// ParseString is Parse over a string.
func ParseString[C any](s string) (*Manager[C], error) {
	return Parse[C]([]byte(s))
}

// Load reads and parses a pipeline file.
func Load[C any](path string) (*Manager[C], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pipeline: %w", err)
	}
	return Parse[C](data)
}

// RegisterNamed installs a factory for name that decodes the argument
// payload into a fresh S and returns it as a Stage[C]. Registering a
// name twice replaces the earlier factory. A payload that does not match
// S's fields fails when the stage's turn comes, not at registration.
// Returns m to allow chained registrations.
func RegisterNamed[S any, C any, PS interface {
	*S
	Stage[C]
}](m *Manager[C], name string) *Manager[C] {
	if m.factories == nil {
		m.factories = map[string]Factory[C]{}
	}
	m.factories[name] = func(args *yaml.Node) (Stage[C], error) {
		var s S
		if hasContent(args) {
			if err := args.Decode(&s); err != nil {
				return nil, fmt.Errorf("decode args: %w", err)
			}
		}
		return PS(&s), nil
	}
	return m
}

// Register is RegisterNamed under the stage type's own StageName tag.
func Register[S any, C any, PS interface {
	*S
	Stage[C]
	Named
}](m *Manager[C]) *Manager[C] {
	return RegisterNamed[S, C, PS](m, PS(new(S)).StageName())
}

// Run resolves and executes every descriptor in declared order against
// c. Each stage is constructed fresh from its stored arguments, Setup
// is invoked once if implemented, then Run. The first failure (unknown
// name, argument decode, Setup or Run error) aborts the remainder;
// mutations already applied to c stay applied.
func (m *Manager[C]) Run(c *C) error {
	for i, d := range m.descriptors {
		f, ok := m.factories[d.Name]
		if !ok {
			return fmt.Errorf("stage %d: %w", i, ErrUnknown{Name: d.Name})
		}
		st, err := f(d.Args)
		if err != nil {
			return fmt.Errorf("stage %d (%s): %w", i, d.Name, err)
		}
		if s, ok := st.(interface{ Setup() error }); ok {
			if err := s.Setup(); err != nil {
				return fmt.Errorf("stage %d (%s): setup: %w", i, d.Name, err)
			}
		}
		if err := st.Run(c); err != nil {
			return fmt.Errorf("stage %d (%s): %w", i, d.Name, err)
		}
	}
	return nil
}

// Descriptors returns the declared stage list in order.
func (m *Manager[C]) Descriptors() []Descriptor {
	return m.descriptors
}

// UnmarshalYAML reads a stage list so a Manager can be a stage's
// argument payload. Accepted shapes: a sequence of entries, a mapping
// with a `stages` key, or a bare mapping treated as an ordered list of
// implicit entries. The registry starts empty; the embedding stage's
// Setup is the place to populate it.
func (m *Manager[C]) UnmarshalYAML(value *yaml.Node) error {
	node := value
	if node.Kind == yaml.MappingNode {
		if sub := mappingValue(node, "stages"); sub != nil {
			node = sub
		}
	}
	ds, err := decodeStageList(node)
	if err != nil {
		return err
	}
	m.descriptors = ds
	return nil
}
