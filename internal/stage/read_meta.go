package stage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultMaxMetaBytes = 1048576

// ReadMeta parses each record's file as YAML into Record.Meta. Files
// larger than maxBytes (default 1MiB) are rejected.
type ReadMeta struct {
	MaxBytes int `yaml:"maxBytes"`
}

func (*ReadMeta) StageName() string { return "read-meta" }

func (s *ReadMeta) Run(env *Envelope) error {
	maxBytes := s.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxMetaBytes
	}
	root := env.Root()
	for i, rec := range env.Records {
		p := filepath.Join(root, filepath.FromSlash(rec.Locator))
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("read-meta %s: %v", rec.Locator, err)
		}
		if info.Size() > int64(maxBytes) {
			return fmt.Errorf("read-meta %s: file exceeds maxBytes limit: %d", rec.Locator, maxBytes)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read-meta %s: %v", rec.Locator, err)
		}
		var meta map[string]any
		if err := yaml.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("read-meta %s: %v", rec.Locator, err)
		}
		env.Records[i].Meta = meta
	}
	return nil
}
