package config

import (
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sakinah-dev/sakinah/internal/errors"
	"github.com/sakinah-dev/sakinah/pkg/scale"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestNewDefaults(t *testing.T) {
	cfg := New()
	if cfg.Persist.Backend != BackendMemory {
		t.Errorf("Backend = %q", cfg.Persist.Backend)
	}
	if cfg.Devtools.Addr != DefaultDevtoolsAddr {
		t.Errorf("Addr = %q", cfg.Devtools.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	g, err := cfg.ScreenGeometry()
	if err != nil {
		t.Fatal(err)
	}
	if g != scale.ReferenceGeometry() {
		t.Errorf("default geometry = %+v, want reference", g)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path = %q, want empty", cfg.Path())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestLoadMissingFileInvalidEnv(t *testing.T) {
	t.Setenv("SAKINAH_LOG_LEVEL", "loud")
	cfg, err := Load(t.TempDir())
	if errors.CodeOf(err) != "E102" {
		t.Fatalf("err = %v, want E102", err)
	}
	if cfg != nil {
		t.Errorf("cfg = %+v, want nil on validation failure", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := writeConfig(t, `{
		"screen": {"width": 390, "height": 844, "pixelRatio": 3},
		"persist": {"backend": "SQLite"},
		"log": {"level": "debug", "format": "json"}
	}`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path = %q", cfg.Path())
	}
	if cfg.Persist.Backend != BackendSQLite || cfg.Persist.Path != "sakinah.db" {
		t.Errorf("persist = %+v", cfg.Persist)
	}
	if cfg.Screen.ReferenceWidth != 375 || cfg.Screen.ReferenceHeight != 812 {
		t.Errorf("reference not defaulted: %+v", cfg.Screen)
	}

	g, err := cfg.ScreenGeometry()
	if err != nil {
		t.Fatal(err)
	}
	if got := scale.New(g).Scale(16); math.Abs(got-16.64) > 1e-9 {
		t.Errorf("Scale(16) on 390 wide = %v, want 16.64", got)
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if errors.CodeOf(err) != "E100" {
		t.Errorf("missing file code = %q (%v)", errors.CodeOf(err), err)
	}

	dir := writeConfig(t, `{"screen": `)
	_, err = Load(dir)
	if errors.CodeOf(err) != "E101" {
		t.Errorf("bad JSON code = %q (%v)", errors.CodeOf(err), err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"bad backend", func(c *Config) { c.Persist.Backend = "redis" }, "E102"},
		{"s3 without bucket", func(c *Config) { c.Persist.Backend = BackendS3 }, "E102"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "E102"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "E102"},
		{"bad timeout", func(c *Config) { c.Devtools.ShutdownTimeout = "soon" }, "E102"},
		{"zero width", func(c *Config) { c.Screen.Width = 0 }, "E104"},
		{"negative ratio", func(c *Config) { c.Screen.PixelRatio = -2 }, "E104"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if errors.CodeOf(err) != tt.code {
				t.Fatalf("Validate = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestGeometryErrorWrapsScaleError(t *testing.T) {
	cfg := New()
	cfg.Screen.Height = -1
	_, err := cfg.ScreenGeometry()
	if !stderrors.Is(err, scale.ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry in chain", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := New()
	err := cfg.ApplyEnv(map[string]string{
		"SAKINAH_SCREEN_WIDTH":         "414",
		"SAKINAH_SCREEN_PIXEL_RATIO":   "2",
		"SAKINAH_PERSIST_BACKEND":      "s3",
		"SAKINAH_S3_BUCKET":            "state",
		"SAKINAH_S3_ACCESS_KEY_ID":     "AK",
		"SAKINAH_S3_SECRET_ACCESS_KEY": "SK",
		"SAKINAH_METRICS":              "false",
		"SAKINAH_DEVTOOLS_ADDR":        ":9000",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Screen.Width != 414 || cfg.Screen.PixelRatio != 2 {
		t.Errorf("screen = %+v", cfg.Screen)
	}
	if cfg.Screen.Height != 812 {
		t.Errorf("unset variable changed Height to %v", cfg.Screen.Height)
	}
	if cfg.Persist.Backend != BackendS3 || cfg.Persist.Bucket != "state" || cfg.Persist.AccessKeyID != "AK" {
		t.Errorf("persist = %+v", cfg.Persist)
	}
	if cfg.Telemetry.Metrics {
		t.Error("SAKINAH_METRICS=false not applied")
	}
	if cfg.Devtools.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Devtools.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestApplyEnvError(t *testing.T) {
	cfg := New()
	err := cfg.ApplyEnv(map[string]string{"SAKINAH_SCREEN_WIDTH": "wide"})
	if errors.CodeOf(err) != "E103" {
		t.Fatalf("err = %v, want E103", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, `{"log": {"level": "warn"}}`)
	t.Setenv("SAKINAH_LOG_LEVEL", "error")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Level = %q, want env override", cfg.Log.Level)
	}
}

func TestSaveToOmitsCredentials(t *testing.T) {
	cfg := New()
	cfg.Persist.AccessKeyID = "AK"
	cfg.Persist.SecretAccessKey = "SECRET"
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "SECRET") {
		t.Error("credentials written to config file")
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Devtools.Addr != cfg.Devtools.Addr {
		t.Errorf("round trip Addr = %q", loaded.Devtools.Addr)
	}
}

func TestShutdownTimeout(t *testing.T) {
	cfg := New()
	d, err := cfg.ShutdownTimeout()
	if err != nil || d.Seconds() != 5 {
		t.Fatalf("ShutdownTimeout = %v, %v", d, err)
	}
}
