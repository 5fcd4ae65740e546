package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where lectern stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Generator configuration
	GeneratorProvider string        // LECTERN_GENERATOR_PROVIDER ("http" or "openai", default: http)
	GeneratorBaseURL  string        // LECTERN_GENERATOR_BASE_URL (default: http://localhost:8001)
	GeneratorAPIKey   string        // LECTERN_GENERATOR_API_KEY (openai provider only)
	GeneratorModel    string        // LECTERN_GENERATOR_MODEL (openai provider only, default: gpt-4o-mini)
	GeneratorTimeout  time.Duration // LECTERN_GENERATOR_TIMEOUT_SECONDS (default: 30s)

	// FallbackReply overrides the assistant reply used when generation fails.
	FallbackReply string // LECTERN_CHAT_FALLBACK_REPLY
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads generator and chat configuration from LECTERN_* environment
// variables. Server flags (mode, port, driver, dsn) are bound by the command
// via viper and are not read here.
func (p *Profile) FromEnv() {
	p.GeneratorProvider = getEnvOrDefault("LECTERN_GENERATOR_PROVIDER", "http")
	p.GeneratorBaseURL = getEnvOrDefault("LECTERN_GENERATOR_BASE_URL", "http://localhost:8001")
	p.GeneratorAPIKey = os.Getenv("LECTERN_GENERATOR_API_KEY")
	p.GeneratorModel = getEnvOrDefault("LECTERN_GENERATOR_MODEL", "gpt-4o-mini")

	timeoutSeconds := getEnvOrDefault("LECTERN_GENERATOR_TIMEOUT_SECONDS", "30")
	if seconds, err := strconv.Atoi(timeoutSeconds); err == nil && seconds > 0 {
		p.GeneratorTimeout = time.Duration(seconds) * time.Second
	} else {
		p.GeneratorTimeout = 30 * time.Second
	}

	p.FallbackReply = os.Getenv("LECTERN_CHAT_FALLBACK_REPLY")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "lectern")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/lectern"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("lectern_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	if p.GeneratorTimeout <= 0 {
		p.GeneratorTimeout = 30 * time.Second
	}

	return nil
}
