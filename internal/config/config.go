package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sakinah-dev/sakinah/internal/errors"
	"github.com/sakinah-dev/sakinah/pkg/scale"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "sakinah.json"

	// DefaultDevtoolsAddr is the default devtools listen address.
	DefaultDevtoolsAddr = "localhost:7070"

	// DefaultShutdownTimeout bounds graceful shutdown of the devtools server.
	DefaultShutdownTimeout = "5s"
)

// Persistence backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

var backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendS3}

// Config is the complete sakinah.json configuration.
type Config struct {
	// Screen describes the device the scaler snapshots.
	Screen ScreenConfig `json:"screen"`

	// Persist selects where store snapshots are kept.
	Persist PersistConfig `json:"persist"`

	// Devtools configures the inspector server.
	Devtools DevtoolsConfig `json:"devtools"`

	// Log configures the process logger.
	Log LogConfig `json:"log"`

	// Telemetry toggles metrics and tracing.
	Telemetry TelemetryConfig `json:"telemetry"`

	configPath string
}

// ScreenConfig is the screen geometry in density-independent units.
type ScreenConfig struct {
	Width           float64 `json:"width" env:"SAKINAH_SCREEN_WIDTH"`
	Height          float64 `json:"height" env:"SAKINAH_SCREEN_HEIGHT"`
	PixelRatio      float64 `json:"pixelRatio" env:"SAKINAH_SCREEN_PIXEL_RATIO"`
	ReferenceWidth  float64 `json:"referenceWidth,omitempty" env:"SAKINAH_REFERENCE_WIDTH"`
	ReferenceHeight float64 `json:"referenceHeight,omitempty" env:"SAKINAH_REFERENCE_HEIGHT"`
}

// PersistConfig selects and configures a storage backend.
type PersistConfig struct {
	// Backend is one of memory, file, sqlite or s3.
	Backend string `json:"backend" env:"SAKINAH_PERSIST_BACKEND"`

	// Path is the directory (file) or database file (sqlite).
	Path string `json:"path,omitempty" env:"SAKINAH_PERSIST_PATH"`

	Bucket          string `json:"bucket,omitempty" env:"SAKINAH_S3_BUCKET"`
	Prefix          string `json:"prefix,omitempty" env:"SAKINAH_S3_PREFIX"`
	Region          string `json:"region,omitempty" env:"SAKINAH_S3_REGION"`
	Endpoint        string `json:"endpoint,omitempty" env:"SAKINAH_S3_ENDPOINT"`
	UsePathStyle    bool   `json:"usePathStyle,omitempty" env:"SAKINAH_S3_PATH_STYLE"`
	AccessKeyID     string `json:"-" env:"SAKINAH_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"-" env:"SAKINAH_S3_SECRET_ACCESS_KEY"`
}

// DevtoolsConfig configures the inspector server.
type DevtoolsConfig struct {
	Addr string `json:"addr" env:"SAKINAH_DEVTOOLS_ADDR"`

	// ShutdownTimeout is a Go duration string (e.g., "5s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" env:"SAKINAH_DEVTOOLS_SHUTDOWN_TIMEOUT"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level" env:"SAKINAH_LOG_LEVEL"`

	// Format is text or json.
	Format string `json:"format" env:"SAKINAH_LOG_FORMAT"`
}

// TelemetryConfig toggles observers.
type TelemetryConfig struct {
	Metrics     bool   `json:"metrics" env:"SAKINAH_METRICS"`
	Tracing     bool   `json:"tracing" env:"SAKINAH_TRACING"`
	ServiceName string `json:"serviceName,omitempty" env:"SAKINAH_SERVICE_NAME"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Screen: ScreenConfig{
			Width:           scale.Reference.Width,
			Height:          scale.Reference.Height,
			PixelRatio:      1,
			ReferenceWidth:  scale.Reference.Width,
			ReferenceHeight: scale.Reference.Height,
		},
		Persist: PersistConfig{
			Backend: BackendMemory,
		},
		Devtools: DevtoolsConfig{
			Addr:            DefaultDevtoolsAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Metrics:     true,
			ServiceName: "sakinah",
		},
	}
}

// Load reads sakinah.json from dir if present, then applies the process
// environment. A missing file is not an error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := New()
		if err := cfg.ApplyEnv(nil); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from path, then applies the process
// environment and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E100").WithDetail(path).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E101").
			WithDetail("Failed to parse " + path + ": " + err.Error())
	}
	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays SAKINAH_* variables. A nil environ reads the process
// environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Environment: environ}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.New("E103").Wrap(err)
	}
	c.applyDefaults()
	return nil
}

// SaveTo writes the configuration as indented JSON. Credentials are never
// written.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E100").WithDetail(path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in values left empty by the file or environment.
func (c *Config) applyDefaults() {
	if c.Screen.ReferenceWidth == 0 {
		c.Screen.ReferenceWidth = scale.Reference.Width
	}
	if c.Screen.ReferenceHeight == 0 {
		c.Screen.ReferenceHeight = scale.Reference.Height
	}
	if c.Screen.PixelRatio == 0 {
		c.Screen.PixelRatio = 1
	}
	if c.Persist.Backend == "" {
		c.Persist.Backend = BackendMemory
	}
	c.Persist.Backend = strings.ToLower(c.Persist.Backend)
	if c.Persist.Path == "" {
		switch c.Persist.Backend {
		case BackendFile:
			c.Persist.Path = "state"
		case BackendSQLite:
			c.Persist.Path = "sakinah.db"
		}
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Devtools.ShutdownTimeout == "" {
		c.Devtools.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "sakinah"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := c.ScreenGeometry(); err != nil {
		return err
	}
	if !slices.Contains(backends, c.Persist.Backend) {
		return errors.New("E102").
			WithDetailf("persist.backend %q is not supported", c.Persist.Backend).
			WithSuggestion("Use one of: " + strings.Join(backends, ", "))
	}
	if c.Persist.Backend == BackendS3 && c.Persist.Bucket == "" {
		return errors.New("E102").
			WithDetail("persist.bucket is required for the s3 backend").
			WithSuggestion("Set persist.bucket or SAKINAH_S3_BUCKET")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.New("E102").
			WithDetailf("log.level %q is not supported", c.Log.Level).
			WithSuggestion("Use one of: debug, info, warn, error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E102").
			WithDetailf("log.format %q is not supported", c.Log.Format).
			WithSuggestion("Use text or json")
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}
	return nil
}

// ScreenGeometry implements scale.Provider.
func (c *Config) ScreenGeometry() (scale.Geometry, error) {
	g := scale.Geometry{
		Reference:  scale.Size{Width: c.Screen.ReferenceWidth, Height: c.Screen.ReferenceHeight},
		Screen:     scale.Size{Width: c.Screen.Width, Height: c.Screen.Height},
		PixelRatio: c.Screen.PixelRatio,
	}
	if err := g.Validate(); err != nil {
		return scale.Geometry{}, errors.New("E104").Wrap(err)
	}
	return g, nil
}

// ShutdownTimeout parses Devtools.ShutdownTimeout.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Devtools.ShutdownTimeout)
	if err != nil || d < 0 {
		return 0, errors.New("E102").
			WithDetail(fmt.Sprintf("devtools.shutdownTimeout %q is not a duration", c.Devtools.ShutdownTimeout))
	}
	return d, nil
}
