package stage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteOutput renders the envelope as JSON. Out is a file path or "-"
// for stdout; pretty selects indented output, lines NDJSON (one record
// per line).
type WriteOutput struct {
	Out    string `yaml:"out"`
	Pretty bool   `yaml:"pretty"`
	Lines  bool   `yaml:"lines"`
}

func (*WriteOutput) StageName() string { return "write-output" }

func (s *WriteOutput) Run(env *Envelope) error {
	var data []byte
	var err error
	switch {
	case s.Lines:
		var all bytes.Buffer
		for _, r := range env.Records {
			b, err := encodeJSONCompact(r)
			if err != nil {
				return fmt.Errorf("write-output: %v", err)
			}
			all.Write(b)
		}
		data = all.Bytes()
	case s.Pretty:
		data, err = encodeJSONPretty(env)
	default:
		data, err = encodeJSONCompact(env)
	}
	if err != nil {
		return fmt.Errorf("write-output: %v", err)
	}
	if err := writeTo(s.Out, data); err != nil {
		return err
	}
	return nil
}

func encodeJSONCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSONPretty(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeTo(outPath string, data []byte) error {
	if outPath == "" || outPath == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write-output: %v", err)
		}
	}
	return os.WriteFile(outPath, data, 0o644)
}
