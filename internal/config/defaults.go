package config

import (
	"time"

	"sleepsentinel/internal/activity"
	"sleepsentinel/internal/metrics"
	"sleepsentinel/internal/monitor"
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Monitor: MonitorConfig{
			InactivityLimitSeconds: monitor.DefaultInactivityLimitSeconds,
			DownloadThresholdMbps:  monitor.DefaultThresholdMbps,
			UploadThresholdMbps:    monitor.DefaultThresholdMbps,
		},
		Sampler: SamplerConfig{
			IntervalSeconds: 1,
		},
		Activity: ActivityConfig{
			InputDevices: true,
			DeviceGlob:   activity.DefaultDeviceGlob,
		},
		Power: PowerConfig{
			PreventIdle:  true,
			GraceSeconds: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ToMonitorConfig returns the session thresholds
func (c Config) ToMonitorConfig() monitor.Config {
	return monitor.Config{
		InactivityLimitSeconds: c.Monitor.InactivityLimitSeconds,
		DownloadThresholdMbps:  c.Monitor.DownloadThresholdMbps,
		UploadThresholdMbps:    c.Monitor.UploadThresholdMbps,
	}
}

// ToSamplerConfig returns the network sampler settings
func (c Config) ToSamplerConfig() metrics.SamplerConfig {
	return metrics.SamplerConfig{
		Interval:   time.Duration(c.Sampler.IntervalSeconds) * time.Second,
		RecordPath: c.Sampler.RecordPath,
	}
}

// EngineOptions returns the decision engine timing
func (c Config) EngineOptions() monitor.Options {
	opts := monitor.DefaultOptions()
	opts.GraceDelay = time.Duration(c.Power.GraceSeconds) * time.Second
	return opts
}
