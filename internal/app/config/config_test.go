package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"streamtiff/internal/app/serializer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
output:
  dir: /data/out
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Output.Dir != "/data/out" {
		t.Fatalf("output.dir = %q", cfg.Output.Dir)
	}
	if cfg.Naming.FilePrefix != serializer.DefaultFilePrefix {
		t.Fatalf("file_prefix default = %q", cfg.Naming.FilePrefix)
	}
	if cfg.Naming.Mode != "stacked" {
		t.Fatalf("mode default = %q", cfg.Naming.Mode)
	}
	if cfg.TIFF.DType != "uint16" {
		t.Fatalf("dtype default = %q", cfg.TIFF.DType)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
output:
  dir: /data/out
naming:
  file_prefix: "{start[plan_name]}-"
  mode: series
tiff:
  dtype: uint8
metrics:
  addr: ":9100"
journal:
  record_path: /data/run.jsonl
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Naming.Mode != "series" || cfg.Naming.FilePrefix != "{start[plan_name]}-" {
		t.Fatalf("naming = %+v", cfg.Naming)
	}
	if cfg.TIFF.DType != "uint8" {
		t.Fatalf("dtype = %q", cfg.TIFF.DType)
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Fatalf("metrics.addr = %q", cfg.Metrics.Addr)
	}
	if cfg.Journal.RecordPath != "/data/run.jsonl" {
		t.Fatalf("journal.record_path = %q", cfg.Journal.RecordPath)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing dir", "naming:\n  mode: stacked\n", "output.dir"},
		{"bad mode", "output:\n  dir: /out\nnaming:\n  mode: sideways\n", "naming.mode"},
		{"bad dtype", "output:\n  dir: /out\ntiff:\n  dtype: float64\n", "tiff.dtype"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want mention of %s", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
