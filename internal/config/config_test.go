package config

import (
	"path/filepath"
	"testing"

	"sigsim/internal/simerr"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"DATA_PATH", "LOGS_FOLDER", "EXPORT_DIR", "SIGSIM_ITERATIONS", "SIGSIM_WORKERS",
		"SIGSIM_ALPHA", "SIGSIM_GROW_RATIO", "SIGSIM_SEED", "ENABLE_MERMAID_CHARTS"} {
		t.Setenv(key, "")
	}
	t.Setenv("DATA_PATH", "/tmp/sigsim")

	cfg, err := fromEnv("")
	if err != nil {
		t.Fatalf("fromEnv: %v", err)
	}
	if cfg.Iterations != 10000 {
		t.Errorf("Iterations = %d, want 10000", cfg.Iterations)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
	if cfg.Alpha != 0.05 {
		t.Errorf("Alpha = %g, want 0.05", cfg.Alpha)
	}
	if cfg.GrowRatio != 1.1 {
		t.Errorf("GrowRatio = %g, want 1.1", cfg.GrowRatio)
	}
	if cfg.Seed != nil {
		t.Errorf("Seed = %d, want nil", *cfg.Seed)
	}
	if cfg.EnableMermaidCharts {
		t.Error("EnableMermaidCharts should default to false")
	}
	if cfg.LogDir != filepath.Join("/tmp/sigsim", "logs") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.ExportDir != filepath.Join("/tmp/sigsim", "exports") {
		t.Errorf("ExportDir = %q", cfg.ExportDir)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATA_PATH", "/data")
	t.Setenv("EXPORT_DIR", filepath.Join("/data", "xlsx"))
	t.Setenv("SIGSIM_ITERATIONS", "500")
	t.Setenv("SIGSIM_WORKERS", "4")
	t.Setenv("SIGSIM_ALPHA", "0.01")
	t.Setenv("SIGSIM_GROW_RATIO", "1.25")
	t.Setenv("SIGSIM_SEED", "1234")
	t.Setenv("ENABLE_MERMAID_CHARTS", "true")

	cfg, err := fromEnv("")
	if err != nil {
		t.Fatalf("fromEnv: %v", err)
	}
	if cfg.Iterations != 500 || cfg.Workers != 4 || cfg.Alpha != 0.01 || cfg.GrowRatio != 1.25 {
		t.Errorf("unexpected simulation defaults: %+v", cfg)
	}
	if cfg.Seed == nil || *cfg.Seed != 1234 {
		t.Errorf("Seed = %v, want 1234", cfg.Seed)
	}
	if !cfg.EnableMermaidCharts {
		t.Error("EnableMermaidCharts should be true")
	}
	if cfg.ExportDir != "/data/xlsx" {
		t.Errorf("ExportDir = %q", cfg.ExportDir)
	}

	d := cfg.Defaults()
	if d.Iterations != 500 || d.Seed == nil || *d.Seed != 1234 {
		t.Errorf("Defaults() = %+v", d)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SIGSIM_ITERATIONS", "many"},
		{"SIGSIM_ITERATIONS", "0"},
		{"SIGSIM_WORKERS", "1.5"},
		{"SIGSIM_ALPHA", "1"},
		{"SIGSIM_ALPHA", "five"},
		{"SIGSIM_GROW_RATIO", "x"},
		{"SIGSIM_SEED", "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := fromEnv("")
			if !simerr.IsConfig(err) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if simerr.ExitCode(err) != simerr.ExitConfigError {
				t.Errorf("exit code = %d", simerr.ExitCode(err))
			}
		})
	}
}
