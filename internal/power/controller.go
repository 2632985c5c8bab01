package power

import (
	"context"
	"errors"

	"sleepsentinel/internal/logging"
)

// ErrUnsupported is returned where the platform offers no power control
var ErrUnsupported = errors.New("power management not supported on this platform")

// Controller wraps the OS power capabilities the sentinel needs
type Controller interface {
	// PreventIdle asserts that the system must not idle-sleep while monitoring
	PreventIdle() error
	// AllowIdle releases the assertion. Releasing twice is a no-op.
	AllowIdle() error
	// Suspend asks the OS to sleep now
	Suspend(ctx context.Context) error
}

// New returns the platform controller, or a logging-only controller in dry-run mode
func New(dryRun bool, logger *logging.Logger) Controller {
	if dryRun {
		return NewDryRun(logger)
	}
	return NewPlatform(logger)
}

// DryRun logs every request and touches nothing
type DryRun struct {
	logger *logging.Logger
}

// NewDryRun creates a dry-run controller
func NewDryRun(logger *logging.Logger) *DryRun {
	return &DryRun{logger: logger}
}

func (d *DryRun) PreventIdle() error {
	d.logger.Info("power.dry_run", "Dry-run mode: would prevent idle sleep", nil)
	return nil
}

func (d *DryRun) AllowIdle() error {
	d.logger.Info("power.dry_run", "Dry-run mode: would allow idle sleep", nil)
	return nil
}

func (d *DryRun) Suspend(ctx context.Context) error {
	d.logger.Info("power.dry_run", "Dry-run mode: would suspend now", nil)
	return nil
}
