package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesBothSinks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	var console bytes.Buffer

	logger, err := New(&console, dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info().Str("run_id", "abc").Msg("Simulation finished")

	if !strings.Contains(console.String(), "Simulation finished") {
		t.Errorf("console sink missing message: %q", console.String())
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"run_id":"abc"`) {
		t.Errorf("file sink missing structured field: %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("write probe was not removed")
	}
}

func TestNew_UnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(&bytes.Buffer{}, filepath.Join(file, "logs")); err == nil {
		t.Fatal("expected an error for a log directory below a regular file")
	}
}
