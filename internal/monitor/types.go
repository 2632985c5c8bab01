package monitor

import (
	"time"

	"sleepsentinel/internal/metrics"
)

const (
	// DefaultInactivityLimitSeconds is the idle period before sleep
	DefaultInactivityLimitSeconds = 60
	// DefaultThresholdMbps applies to both directions
	DefaultThresholdMbps = 10.0

	// DefaultTickPeriod is the decision loop period
	DefaultTickPeriod = time.Second
	// DefaultGraceDelay is the pause between deciding to sleep and suspending
	DefaultGraceDelay = 2 * time.Second
)

// Config holds the thresholds of one monitoring session
type Config struct {
	// InactivityLimitSeconds is the idle time (no input, low traffic) before sleep
	InactivityLimitSeconds int `json:"inactivity_limit_seconds"`

	// DownloadThresholdMbps is the rate at or above which downloads count as activity
	DownloadThresholdMbps float64 `json:"download_threshold_mbps"`

	// UploadThresholdMbps is the rate at or above which uploads count as activity
	UploadThresholdMbps float64 `json:"upload_threshold_mbps"`
}

// DefaultConfig returns the stock session thresholds
func DefaultConfig() Config {
	return Config{
		InactivityLimitSeconds: DefaultInactivityLimitSeconds,
		DownloadThresholdMbps:  DefaultThresholdMbps,
		UploadThresholdMbps:    DefaultThresholdMbps,
	}
}

// InactivityLimit returns the limit as a duration
func (c Config) InactivityLimit() time.Duration {
	return time.Duration(c.InactivityLimitSeconds) * time.Second
}

// Phase is the lifecycle position of the decision engine
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRunning    Phase = "running"
	PhaseTriggering Phase = "triggering"
	PhaseStopped    Phase = "stopped"
)

// Decision is the outcome of one tick
type Decision int

const (
	// DecisionWait leaves the countdown untouched
	DecisionWait Decision = iota
	// DecisionReset means traffic was at or above a threshold; the countdown restarted
	DecisionReset
	// DecisionSleep means the limit elapsed with both rates below their thresholds
	DecisionSleep
)

func (d Decision) String() string {
	switch d {
	case DecisionReset:
		return "reset"
	case DecisionSleep:
		return "sleep"
	default:
		return "wait"
	}
}

// Evaluation is what a tick saw and decided
type Evaluation struct {
	Decision   Decision
	Inactivity time.Duration
	Sample     metrics.ThroughputSample
}

// Snapshot is a read-only view for display
type Snapshot struct {
	Active            bool      `json:"active"`
	Phase             Phase     `json:"phase"`
	SecondsUntilSleep int       `json:"seconds_until_sleep"`
	DownloadMbps      float64   `json:"download_mbps"`
	UploadMbps        float64   `json:"upload_mbps"`
	MeasuredAt        time.Time `json:"measured_at"`
	LastActivity      time.Time `json:"last_activity"`
	Config            Config    `json:"config"`
}
