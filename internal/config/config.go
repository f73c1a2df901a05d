package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Version is set at build time via -ldflags
// Default "dev" is used for development builds
var Version = "dev"

const (
	FaceWords   = "words"
	FaceSprites = "sprites"

	SurfaceWeb     = "web"
	SurfaceConsole = "console"
)

// Config holds all application configuration loaded from environment variables.
// All fields have sensible defaults if environment variables are not set.
type Config struct {
	// Port is the HTTP server listen port (default: 3095)
	Port string

	// LogLevel controls logging verbosity: "debug", "info", "warn", "error" (default: "info")
	LogLevel string

	// DataDir is the directory for persistent data (logs)
	// Default: /config in Docker, ./config locally
	DataDir string

	// LogDir is the directory for log files (default: <DataDir>/logs)
	LogDir string

	// Layout is either the name of a built-in layout or a path to a YAML file (default: "english")
	Layout string

	// Face selects the clock face: "words" or "sprites" (default: "words")
	Face string

	// Surface selects where frames are drawn: "web" or "console" (default: "web")
	Surface string

	// CORSOrigin lists the origins allowed to open the WebSocket, comma-separated.
	// Empty means same-origin only, "*" allows any origin.
	CORSOrigin string

	// NoColor disables ANSI colours on the console surface
	NoColor bool

	// ShutdownTimeout bounds the graceful HTTP shutdown (default: 10s)
	ShutdownTimeout time.Duration
}

// Global singleton
var cfg *Config

// Load reads configuration from environment variables with sensible defaults.
// Should be called once at application startup.
func Load() *Config {
	// Determine DataDir - this is where logs live
	dataDir := getEnvOrDefault("UNQLOCKED_DATA_DIR", "")
	if dataDir == "" {
		if info, err := os.Stat("/config"); err == nil && info.IsDir() {
			dataDir = "/config"
		} else if execPath, err := os.Executable(); err == nil {
			dataDir = filepath.Join(filepath.Dir(execPath), "config")
		} else if cwd, err := os.Getwd(); err == nil {
			dataDir = filepath.Join(cwd, "config")
		} else {
			dataDir = "./config"
		}
	}

	if absDataDir, err := filepath.Abs(dataDir); err == nil {
		dataDir = absDataDir
	}

	cfg = &Config{
		Port:            getEnvOrDefault("UNQLOCKED_PORT", "3095"),
		LogLevel:        strings.ToLower(getEnvOrDefault("UNQLOCKED_LOG_LEVEL", "info")),
		DataDir:         dataDir,
		LogDir:          getEnvOrDefault("UNQLOCKED_LOG_DIR", filepath.Join(dataDir, "logs")),
		Layout:          getEnvOrDefault("UNQLOCKED_LAYOUT", "english"),
		Face:            strings.ToLower(getEnvOrDefault("UNQLOCKED_FACE", FaceWords)),
		Surface:         strings.ToLower(getEnvOrDefault("UNQLOCKED_SURFACE", SurfaceWeb)),
		CORSOrigin:      getEnvOrDefault("UNQLOCKED_CORS_ORIGIN", ""),
		NoColor:         getEnvBoolOrDefault("UNQLOCKED_NO_COLOR", false),
		ShutdownTimeout: getEnvDurationOrDefault("UNQLOCKED_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	cfg.normalize()
	return cfg
}

// normalize replaces invalid enumerated values with their defaults.
func (c *Config) normalize() {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
	switch c.Face {
	case FaceWords, FaceSprites:
	default:
		c.Face = FaceWords
	}
	switch c.Surface {
	case SurfaceWeb, SurfaceConsole:
	default:
		c.Surface = SurfaceWeb
	}
}

// LayoutIsFile reports whether Layout names a file rather than a built-in layout.
func (c *Config) LayoutIsFile() bool {
	ext := strings.ToLower(filepath.Ext(c.Layout))
	return ext == ".yaml" || ext == ".yml" || strings.ContainsRune(c.Layout, os.PathSeparator)
}

// Get returns the current configuration. Panics if Load() hasn't been called.
func Get() *Config {
	if cfg == nil {
		panic("config.Load() must be called before config.Get()")
	}
	return cfg
}

// SetForTesting allows tests to set the global config without calling Load().
// This should ONLY be used in test code.
func SetForTesting(c *Config) {
	cfg = c
}

// NewTestConfig returns a minimal Config suitable for unit tests.
func NewTestConfig() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "debug",
		DataDir:         "/tmp/unqlocked-test",
		LogDir:          "/tmp/unqlocked-test/logs",
		Layout:          "english",
		Face:            FaceWords,
		Surface:         SurfaceWeb,
		NoColor:         true,
		ShutdownTimeout: time.Second,
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDurationOrDefault returns the environment variable as a duration or the default if not set/invalid.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns the environment variable as a bool or the default if not set.
// Accepts "true", "1", "yes" as true values (case-insensitive).
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

// FlagOverrides holds command-line flag values that can override environment variables
type FlagOverrides struct {
	Port     *string
	LogLevel *string
	DataDir  *string
	Layout   *string
	Face     *string
	Surface  *string
	NoColor  *bool
}

// ApplyFlags applies command-line flag overrides to the configuration.
// Should be called after Load() and after flag parsing.
// Only non-nil values with non-default flag values will override.
func ApplyFlags(flags FlagOverrides) {
	if cfg == nil {
		return
	}

	if flags.Port != nil && *flags.Port != "" {
		cfg.Port = *flags.Port
	}
	if flags.LogLevel != nil && *flags.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(*flags.LogLevel)
	}
	if flags.DataDir != nil && *flags.DataDir != "" {
		cfg.DataDir = *flags.DataDir
		cfg.LogDir = filepath.Join(cfg.DataDir, "logs")
	}
	if flags.Layout != nil && *flags.Layout != "" {
		cfg.Layout = *flags.Layout
	}
	if flags.Face != nil && *flags.Face != "" {
		cfg.Face = strings.ToLower(*flags.Face)
	}
	if flags.Surface != nil && *flags.Surface != "" {
		cfg.Surface = strings.ToLower(*flags.Surface)
	}
	if flags.NoColor != nil && *flags.NoColor {
		cfg.NoColor = true
	}
	cfg.normalize()
}
