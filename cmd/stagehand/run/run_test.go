package run

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestExecutePipeline(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", "a.yaml"), "enabled: true\n")
	writeFile(t, filepath.Join(dir, "data", "b.yaml"), "enabled: false\n")
	pipelineFile := filepath.Join(dir, "pipeline.yaml")
	writeFile(t, pipelineFile, `
configVersion: v1
stages:
- discover:
    root: `+filepath.Join(dir, "data")+`
- read-meta:
- lua-filter:
    script: meta.enabled
`)

	env, err := executePipeline(pipelineFile, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(env.Records) != 1 || env.Records[0].Locator != "a.yaml" {
		t.Fatalf("records = %+v", env.Records)
	}

	var buf bytes.Buffer
	if err := renderEnvelope(env, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.HasSuffix(out, "\n") || strings.Count(out, "\n") != 1 {
		t.Fatalf("expected a single JSON line, got %q", out)
	}
	if !strings.Contains(out, `"a.yaml"`) {
		t.Fatalf("output missing record: %q", out)
	}
}

func TestExecutePipelineUnknownStage(t *testing.T) {
	dir := t.TempDir()
	pipelineFile := filepath.Join(dir, "pipeline.yaml")
	writeFile(t, pipelineFile, `
stages:
- no-such-stage:
`)
	_, err := executePipeline(pipelineFile, "")
	if err == nil || !strings.Contains(err.Error(), "unknown stage: no-such-stage") {
		t.Fatalf("expected unknown stage error, got %v", err)
	}
}

func TestExecutePipelineRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	pipelineFile := filepath.Join(dir, "pipeline.yaml")
	writeFile(t, pipelineFile, "configVersion: v1\n")
	_, err := executePipeline(pipelineFile, "")
	if err == nil || !strings.Contains(err.Error(), "stages") {
		t.Fatalf("expected missing stages error, got %v", err)
	}
}
