package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sleepsentinel/internal/configdir"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Verify defaults
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"InactivityLimitSeconds", cfg.Monitor.InactivityLimitSeconds, 60},
		{"DownloadThresholdMbps", cfg.Monitor.DownloadThresholdMbps, 10.0},
		{"UploadThresholdMbps", cfg.Monitor.UploadThresholdMbps, 10.0},
		{"SamplerInterval", cfg.Sampler.IntervalSeconds, 1},
		{"RecordPath", cfg.Sampler.RecordPath, ""},
		{"InputDevices", cfg.Activity.InputDevices, true},
		{"DeviceGlob", cfg.Activity.DeviceGlob, "/dev/input/event*"},
		{"PreventIdle", cfg.Power.PreventIdle, true},
		{"DryRun", cfg.Power.DryRun, false},
		{"GraceSeconds", cfg.Power.GraceSeconds, 2},
		{"LogLevel", cfg.Logging.Level, "info"},
		{"LogFormat", cfg.Logging.Format, "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestValidation_ValidConfig(t *testing.T) {
	cfg := DefaultConfig()
	errors := cfg.Validate()

	if len(errors) != 0 {
		t.Errorf("Validate() on default config returned errors: %v", errors)
	}
}

func TestValidation_InvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero limit", func(c *Config) { c.Monitor.InactivityLimitSeconds = 0 }, "monitor.inactivity_limit_seconds"},
		{"negative limit", func(c *Config) { c.Monitor.InactivityLimitSeconds = -10 }, "monitor.inactivity_limit_seconds"},
		{"negative download", func(c *Config) { c.Monitor.DownloadThresholdMbps = -1 }, "monitor.download_threshold_mbps"},
		{"nan upload", func(c *Config) { c.Monitor.UploadThresholdMbps = math.NaN() }, "monitor.upload_threshold_mbps"},
		{"zero interval", func(c *Config) { c.Sampler.IntervalSeconds = 0 }, "sampler.interval_seconds"},
		{"missing glob", func(c *Config) { c.Activity.DeviceGlob = "" }, "activity.device_glob"},
		{"negative grace", func(c *Config) { c.Power.GraceSeconds = -1 }, "power.grace_seconds"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			errors := cfg.Validate()
			found := false
			for _, err := range errors {
				if err.Path == tt.path {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want error for %s", errors, tt.path)
			}
		})
	}
}

func TestValidation_ZeroThresholdsAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Monitor.DownloadThresholdMbps = 0
	cfg.Monitor.UploadThresholdMbps = 0

	if errors := cfg.Validate(); len(errors) != 0 {
		t.Errorf("Validate() returned errors for zero thresholds: %v", errors)
	}
}

func TestValidation_GlobOptionalWithoutDevices(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Activity.InputDevices = false
	cfg.Activity.DeviceGlob = ""

	if errors := cfg.Validate(); len(errors) != 0 {
		t.Errorf("Validate() returned errors: %v", errors)
	}
}

func TestToMonitorConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Monitor.InactivityLimitSeconds = 300
	cfg.Monitor.DownloadThresholdMbps = 2.5
	cfg.Monitor.UploadThresholdMbps = 0.5

	mc := cfg.ToMonitorConfig()
	if mc.InactivityLimitSeconds != 300 || mc.DownloadThresholdMbps != 2.5 || mc.UploadThresholdMbps != 0.5 {
		t.Errorf("ToMonitorConfig() = %+v", mc)
	}
	if err := mc.Validate(); err != nil {
		t.Errorf("monitor config should be valid: %v", err)
	}
}

func TestToSamplerConfigAndEngineOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sampler.IntervalSeconds = 3
	cfg.Sampler.RecordPath = "/tmp/samples.jsonl"
	cfg.Power.GraceSeconds = 5

	sc := cfg.ToSamplerConfig()
	if sc.Interval != 3*time.Second || sc.RecordPath != "/tmp/samples.jsonl" {
		t.Errorf("ToSamplerConfig() = %+v", sc)
	}

	opts := cfg.EngineOptions()
	if opts.GraceDelay != 5*time.Second {
		t.Errorf("GraceDelay = %v, want 5s", opts.GraceDelay)
	}
	if opts.TickPeriod != time.Second {
		t.Errorf("TickPeriod = %v, want 1s", opts.TickPeriod)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
monitor:
  inactivity_limit_seconds: 120
  download_threshold_mbps: 25.5
power:
  prevent_idle: false
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	// Verify overrides
	if cfg.Monitor.InactivityLimitSeconds != 120 {
		t.Errorf("InactivityLimitSeconds = %d, want 120", cfg.Monitor.InactivityLimitSeconds)
	}
	if cfg.Monitor.DownloadThresholdMbps != 25.5 {
		t.Errorf("DownloadThresholdMbps = %v, want 25.5", cfg.Monitor.DownloadThresholdMbps)
	}
	if cfg.Power.PreventIdle {
		t.Error("PreventIdle = true, want false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.Logging.Level)
	}

	// Verify defaults are preserved for unspecified fields
	if cfg.Monitor.UploadThresholdMbps != 10 {
		t.Errorf("UploadThresholdMbps = %v, want 10 (default)", cfg.Monitor.UploadThresholdMbps)
	}
	if !cfg.Activity.InputDevices {
		t.Error("InputDevices = false, want true (default)")
	}
	if cfg.Power.GraceSeconds != 2 {
		t.Errorf("GraceSeconds = %d, want 2 (default)", cfg.Power.GraceSeconds)
	}
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidContent := `
monitor:
  inactivity_limit_seconds: 0
  upload_threshold_mbps: -3
`
	if err := os.WriteFile(configPath, []byte(invalidContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Fatal("LoadFrom() should return error for invalid config")
	}
	if !strings.Contains(err.Error(), "2 validation errors") {
		t.Errorf("error = %v, want both fields reported", err)
	}
}

func TestLoadFrom_NonexistentFile(t *testing.T) {
	_, err := LoadFrom("/nonexistent/config.yaml")
	if err == nil {
		t.Error("LoadFrom() should return error for nonexistent file")
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	malformedContent := `
monitor:
  inactivity_limit_seconds: 60
    invalid_indentation: value
logging: [
`
	if err := os.WriteFile(configPath, []byte(malformedContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Error("LoadFrom() should return error for malformed YAML")
	}
}

func TestResolve_Layers(t *testing.T) {
	systemDir := t.TempDir()
	t.Setenv(configdir.EnvVar, systemDir)

	system := `
monitor:
  inactivity_limit_seconds: 90
  upload_threshold_mbps: 4
`
	if err := os.WriteFile(filepath.Join(systemDir, "config.yaml"), []byte(system), 0o600); err != nil {
		t.Fatalf("Failed to write system config: %v", err)
	}

	explicit := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(explicit, []byte("monitor:\n  inactivity_limit_seconds: 30\n"), 0o600); err != nil {
		t.Fatalf("Failed to write override config: %v", err)
	}

	cfg, err := Resolve(explicit)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Monitor.InactivityLimitSeconds != 30 {
		t.Errorf("InactivityLimitSeconds = %d, want 30 (explicit file wins)", cfg.Monitor.InactivityLimitSeconds)
	}
	if cfg.Monitor.UploadThresholdMbps != 4 {
		t.Errorf("UploadThresholdMbps = %v, want 4 (system file)", cfg.Monitor.UploadThresholdMbps)
	}
	if cfg.Monitor.DownloadThresholdMbps != 10 {
		t.Errorf("DownloadThresholdMbps = %v, want 10 (default)", cfg.Monitor.DownloadThresholdMbps)
	}
}

func TestLoad_MissingSystemConfig(t *testing.T) {
	t.Setenv(configdir.EnvVar, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestSystemConfigPath(t *testing.T) {
	path := SystemConfigPath()
	if path == "" {
		t.Error("SystemConfigPath() should not return empty string")
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("SystemConfigPath() basename = %s, want config.yaml", filepath.Base(path))
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Path:    "monitor.inactivity_limit_seconds",
		Message: "must be positive",
	}

	expected := "monitor.inactivity_limit_seconds: must be positive"
	if err.Error() != expected {
		t.Errorf("ValidationError.Error() = %s, want %s", err.Error(), expected)
	}
}

func TestFormatValidationErrors_Single(t *testing.T) {
	errors := []ValidationError{
		{Path: "test.field", Message: "error message"},
	}

	result := formatValidationErrors(errors)
	expected := "test.field: error message"
	if result != expected {
		t.Errorf("formatValidationErrors() = %s, want %s", result, expected)
	}
}

func TestFormatValidationErrors_Multiple(t *testing.T) {
	errors := []ValidationError{
		{Path: "field1", Message: "error 1"},
		{Path: "field2", Message: "error 2"},
	}

	result := formatValidationErrors(errors)
	if !strings.HasPrefix(result, "2 validation errors:") {
		t.Errorf("formatValidationErrors() = %q, want count prefix", result)
	}
}

func TestFormatValidationErrors_Empty(t *testing.T) {
	result := formatValidationErrors([]ValidationError{})
	if result != "" {
		t.Errorf("formatValidationErrors() = %s, want empty string", result)
	}
}
