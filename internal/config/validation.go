package config

import (
	"fmt"
	"math"

	"sleepsentinel/internal/logging"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateMonitor()...)
	errors = append(errors, c.validateSampler()...)
	errors = append(errors, c.validateActivity()...)
	errors = append(errors, c.validatePower()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateMonitor() []ValidationError {
	var errors []ValidationError

	if c.Monitor.InactivityLimitSeconds <= 0 {
		errors = append(errors, ValidationError{
			Path:    "monitor.inactivity_limit_seconds",
			Message: fmt.Sprintf("must be positive, got %d", c.Monitor.InactivityLimitSeconds),
		})
	}

	thresholds := []struct {
		path  string
		value float64
	}{
		{"monitor.download_threshold_mbps", c.Monitor.DownloadThresholdMbps},
		{"monitor.upload_threshold_mbps", c.Monitor.UploadThresholdMbps},
	}
	for _, th := range thresholds {
		if math.IsNaN(th.value) || th.value < 0 {
			errors = append(errors, ValidationError{
				Path:    th.path,
				Message: fmt.Sprintf("must be non-negative, got %v", th.value),
			})
		}
	}

	return errors
}

func (c *Config) validateSampler() []ValidationError {
	if c.Sampler.IntervalSeconds >= 1 {
		return nil
	}

	return []ValidationError{{
		Path:    "sampler.interval_seconds",
		Message: fmt.Sprintf("must be at least 1, got %d", c.Sampler.IntervalSeconds),
	}}
}

func (c *Config) validateActivity() []ValidationError {
	if !c.Activity.InputDevices || c.Activity.DeviceGlob != "" {
		return nil
	}

	return []ValidationError{{
		Path:    "activity.device_glob",
		Message: "must be set when input_devices is enabled",
	}}
}

func (c *Config) validatePower() []ValidationError {
	if c.Power.GraceSeconds >= 0 {
		return nil
	}

	return []ValidationError{{
		Path:    "power.grace_seconds",
		Message: fmt.Sprintf("must be non-negative, got %d", c.Power.GraceSeconds),
	}}
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errors = append(errors, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of [debug info warn error critical], got '%s'", c.Logging.Level),
		})
	}

	validFormats := []string{string(logging.FormatJSON), string(logging.FormatText)}
	if !contains(validFormats, c.Logging.Format) {
		errors = append(errors, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("must be one of %v, got '%s'", validFormats, c.Logging.Format),
		})
	}

	return errors
}

// contains checks if a string is in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
