package config

// Config represents the complete sleepsentinel configuration
type Config struct {
	Monitor  MonitorConfig  `yaml:"monitor"`
	Sampler  SamplerConfig  `yaml:"sampler"`
	Activity ActivityConfig `yaml:"activity"`
	Power    PowerConfig    `yaml:"power"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MonitorConfig holds the session thresholds the UI and `run` start with
type MonitorConfig struct {
	InactivityLimitSeconds int     `yaml:"inactivity_limit_seconds"`
	DownloadThresholdMbps  float64 `yaml:"download_threshold_mbps"`
	UploadThresholdMbps    float64 `yaml:"upload_threshold_mbps"`
}

// SamplerConfig represents network sampling configuration
type SamplerConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	RecordPath      string `yaml:"record_path"`
}

// ActivityConfig selects the user input sources
type ActivityConfig struct {
	InputDevices bool   `yaml:"input_devices"`
	DeviceGlob   string `yaml:"device_glob"`
}

// PowerConfig represents power management configuration
type PowerConfig struct {
	PreventIdle  bool `yaml:"prevent_idle"`
	DryRun       bool `yaml:"dry_run"`
	GraceSeconds int  `yaml:"grace_seconds"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}
