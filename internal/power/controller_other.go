//go:build !linux && !darwin && !windows

package power

import (
	"context"

	"sleepsentinel/internal/logging"
)

const inhibitWho = "sleepsentinel"

type unsupportedController struct{}

// NewPlatform returns a controller that reports ErrUnsupported
func NewPlatform(logger *logging.Logger) Controller {
	logger.Warn("power.unsupported", "No power controller for this platform", nil)
	return unsupportedController{}
}

func (unsupportedController) PreventIdle() error { return ErrUnsupported }

func (unsupportedController) AllowIdle() error { return nil }

func (unsupportedController) Suspend(ctx context.Context) error { return ErrUnsupported }
