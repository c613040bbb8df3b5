package pipeline

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func descriptorsFrom(t *testing.T, doc string) []Descriptor {
	t.Helper()
	m, err := ParseString[calcContext](doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return m.Descriptors()
}

func names(ds []Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Name)
	}
	return out
}

func TestSequenceOrderPreserved(t *testing.T) {
	doc := `
stages:
- alpha:
- beta:
- gamma:
- beta:
`
	got := names(descriptorsFrom(t, doc))
	want := []string{"alpha", "beta", "gamma", "beta"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMappingFormKeepsDocumentOrder(t *testing.T) {
	// A mapping-shaped stage list runs in the order the keys were written.
	doc := `
stages:
  zeta:
  alpha:
  mid:
`
	got := names(descriptorsFrom(t, doc))
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDescriptorForms(t *testing.T) {
	tests := []struct {
		name     string
		entry    string
		wantName string
		wantErr  string
	}{
		{name: "implicit", entry: "add: {x: 1}", wantName: "add"},
		{name: "implicit null args", entry: "echo:", wantName: "echo"},
		{name: "explicit", entry: "{name: add, args: {x: 1}}", wantName: "add"},
		{name: "explicit no args", entry: "{name: echo}", wantName: "echo"},
		{name: "scalar entry", entry: `"just-a-string"`, wantErr: "expected a mapping"},
		{name: "two foreign keys", entry: "{add: 1, mul: 2}", wantErr: "single-key mapping"},
		{name: "name not scalar", entry: "{name: [a, b]}", wantErr: "name must be a scalar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var node yaml.Node
			if err := yaml.Unmarshal([]byte(tt.entry), &node); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			var d Descriptor
			err := d.UnmarshalYAML(&node)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Name != tt.wantName {
				t.Fatalf("name = %q, want %q", d.Name, tt.wantName)
			}
		})
	}
}

func TestParseRejectsMissingStages(t *testing.T) {
	if _, err := ParseString[calcContext]("configVersion: v1\n"); err == nil {
		t.Fatal("expected error for document without stages")
	}
}

func TestArgsNotConsumedAcrossRuns(t *testing.T) {
	// The stored argument node must survive repeated factory decodes.
	doc := `
stages:
- add:
    x: 7
`
	m := newCalcManager(t, doc)
	for i := 0; i < 2; i++ {
		c := calcContext{}
		if err := m.Run(&c); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if c.X != 7 {
			t.Fatalf("run %d: x = %d, want 7", i, c.X)
		}
	}
}
