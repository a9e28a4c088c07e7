package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"sigsim/internal/scenario"
	"sigsim/internal/significance"
	"sigsim/internal/simerr"
	"sigsim/internal/simulation"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath            string
	LogDir              string
	ExportDir           string
	EnableMermaidCharts bool

	// Simulation defaults used when a scenario, flag or tool call omits them.
	Iterations int
	Workers    int
	Alpha      float64
	GrowRatio  float64
	Seed       *uint64
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return fromEnv(exeDir)
}

func fromEnv(exeDir string) (*AppConfig, error) {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := getEnv("LOGS_FOLDER", "")
	if logDir == "" {
		logDir = filepath.Join(dataPath, "logs")
	}
	exportDir := getEnv("EXPORT_DIR", "")
	if exportDir == "" {
		exportDir = filepath.Join(dataPath, "exports")
	}

	iterations, err := getEnvInt("SIGSIM_ITERATIONS", simulation.DefaultIterations)
	if err != nil {
		return nil, err
	}
	if iterations < 1 {
		return nil, simerr.Config("SIGSIM_ITERATIONS", "must be >= 1, got %d", iterations)
	}
	workers, err := getEnvInt("SIGSIM_WORKERS", 1)
	if err != nil {
		return nil, err
	}
	alpha, err := getEnvFloat("SIGSIM_ALPHA", significance.DefaultAlpha)
	if err != nil {
		return nil, err
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, simerr.Config("SIGSIM_ALPHA", "must be in (0, 1), got %g", alpha)
	}
	growRatio, err := getEnvFloat("SIGSIM_GROW_RATIO", simulation.DefaultGrowRatio)
	if err != nil {
		return nil, err
	}

	var seed *uint64
	if v, ok := os.LookupEnv("SIGSIM_SEED"); ok && v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, simerr.Config("SIGSIM_SEED", "must be a non-negative integer, got %q", v)
		}
		seed = &s
	}

	return &AppConfig{
		DataPath:            dataPath,
		LogDir:              logDir,
		ExportDir:           exportDir,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
		Iterations:          iterations,
		Workers:             workers,
		Alpha:               alpha,
		GrowRatio:           growRatio,
		Seed:                seed,
	}, nil
}

// Defaults returns the scenario defaults carried by the configuration.
func (c *AppConfig) Defaults() scenario.Defaults {
	return scenario.Defaults{
		Iterations: c.Iterations,
		Workers:    c.Workers,
		Alpha:      c.Alpha,
		GrowRatio:  c.GrowRatio,
		Seed:       c.Seed,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, simerr.Config(key, "must be an integer, got %q", value)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, simerr.Config(key, "must be a number, got %q", value)
	}
	return f, nil
}
