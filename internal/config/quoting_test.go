package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func TestDotenvValuesReachConfig(t *testing.T) {
	content := "SIGSIM_ALPHA='0.10'\nSIGSIM_SEED=\"77\"\nEXPORT_DIR='/tmp/with \"quotes\"'\n"
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}
	for key, value := range env {
		t.Setenv(key, value)
	}

	cfg, err := fromEnv("")
	if err != nil {
		t.Fatalf("fromEnv: %v", err)
	}
	if cfg.Alpha != 0.10 {
		t.Errorf("Alpha = %g, want 0.10", cfg.Alpha)
	}
	if cfg.Seed == nil || *cfg.Seed != 77 {
		t.Errorf("Seed = %v, want 77", cfg.Seed)
	}
	if want := `/tmp/with "quotes"`; cfg.ExportDir != want {
		t.Errorf("ExportDir = %s, want %s", cfg.ExportDir, want)
	}
}
