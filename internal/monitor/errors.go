package monitor

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidConfig is matched by every InvalidConfigError
	ErrInvalidConfig = errors.New("invalid monitor config")
	// ErrAlreadyRunning is returned by Start while a session is in progress
	ErrAlreadyRunning = errors.New("monitoring already running")
)

// InvalidConfigError names the offending field of a rejected Config
type InvalidConfigError struct {
	Field   string
	Message string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidConfig) match
func (e *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Validate rejects a non-positive limit and negative or NaN thresholds
func (c Config) Validate() error {
	if c.InactivityLimitSeconds <= 0 {
		return &InvalidConfigError{
			Field:   "inactivity_limit_seconds",
			Message: fmt.Sprintf("must be positive, got %d", c.InactivityLimitSeconds),
		}
	}
	if math.IsNaN(c.DownloadThresholdMbps) || c.DownloadThresholdMbps < 0 {
		return &InvalidConfigError{
			Field:   "download_threshold_mbps",
			Message: fmt.Sprintf("must be non-negative, got %v", c.DownloadThresholdMbps),
		}
	}
	if math.IsNaN(c.UploadThresholdMbps) || c.UploadThresholdMbps < 0 {
		return &InvalidConfigError{
			Field:   "upload_threshold_mbps",
			Message: fmt.Sprintf("must be non-negative, got %v", c.UploadThresholdMbps),
		}
	}
	return nil
}
