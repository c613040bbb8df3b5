package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

// ValidatePipelineFile checks the shape of a pipeline YAML file before
// the engine parses it: `stages` must be a list (or an ordered mapping)
// of mapping entries, and `configVersion`, when present, a string.
// Per-stage argument schemas are not validated here; those fail at the
// stage's own construction time.
func ValidatePipelineFile(path string) error {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
	default:
		return errors.New("unsupported pipeline format: expected .yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read pipeline file: %w", err)
	}
	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return fmt.Errorf("invalid pipeline file: %v", err)
	}
	ctx := cuecontext.New()
	v := ctx.BuildFile(file)
	if err := v.Err(); err != nil {
		return fmt.Errorf("invalid pipeline file: %v", err)
	}

	if cv := v.LookupPath(cue.ParsePath("configVersion")); cv.Exists() {
		if cv.Kind() != cue.StringKind {
			return errors.New("invalid type for field: configVersion (expected string)")
		}
	}
	return validateStages(v)
}

func validateStages(v cue.Value) error {
	stages := v.LookupPath(cue.ParsePath("stages"))
	if !stages.Exists() {
		return errors.New("missing required field: stages")
	}
	switch stages.Kind() {
	case cue.ListKind:
		iter, err := stages.List()
		if err != nil {
			return fmt.Errorf("invalid stages list: %v", err)
		}
		i := 0
		for iter.Next() {
			if iter.Value().Kind() != cue.StructKind {
				return fmt.Errorf("stage %d: expected a mapping entry", i)
			}
			i++
		}
		return nil
	case cue.StructKind:
		// Ordered-mapping form: each value is one stage's arguments.
		return nil
	default:
		return errors.New("invalid type for field: stages (expected list)")
	}
}
