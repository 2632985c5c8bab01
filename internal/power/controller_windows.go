//go:build windows

package power

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sys/windows"

	"sleepsentinel/internal/logging"
)

const (
	esContinuous     = 0x80000000
	esSystemRequired = 0x00000001

	inhibitWho = "sleepsentinel"
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")

	powrprof            = windows.NewLazySystemDLL("powrprof.dll")
	procSetSuspendState = powrprof.NewProc("SetSuspendState")
)

// windowsController holds the execution state on one locked OS thread,
// since SetThreadExecutionState applies to the calling thread only.
type windowsController struct {
	logger *logging.Logger

	mu      sync.Mutex
	release chan struct{}
	done    chan struct{}
}

// NewPlatform returns the Win32 power controller
func NewPlatform(logger *logging.Logger) Controller {
	return &windowsController{logger: logger}
}

func setExecutionState(flags uintptr) error {
	if err := procSetThreadExecutionState.Find(); err != nil {
		return err
	}
	r1, _, callErr := procSetThreadExecutionState.Call(flags)
	if r1 == 0 {
		return fmt.Errorf("SetThreadExecutionState: %w", callErr)
	}
	return nil
}

func (c *windowsController) PreventIdle() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.release != nil {
		return nil
	}

	release := make(chan struct{})
	done := make(chan struct{})
	started := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		if err := setExecutionState(esContinuous | esSystemRequired); err != nil {
			started <- err
			return
		}
		started <- nil

		<-release
		if err := setExecutionState(esContinuous); err != nil {
			c.logger.Warn("power.allow_idle.failed", "Could not reset execution state", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	if err := <-started; err != nil {
		<-done
		return fmt.Errorf("prevent idle: %w", err)
	}

	c.release = release
	c.done = done
	c.logger.Info("power.idle.prevented", "Idle sleep prevented", nil)
	return nil
}

func (c *windowsController) AllowIdle() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.release == nil {
		return nil
	}
	close(c.release)
	<-c.done
	c.release, c.done = nil, nil

	c.logger.Info("power.idle.allowed", "Idle sleep allowed", nil)
	return nil
}

func (c *windowsController) Suspend(ctx context.Context) error {
	if err := procSetSuspendState.Find(); err != nil {
		return fmt.Errorf("SetSuspendState unavailable: %w", err)
	}

	c.logger.Info("power.suspend.requested", "Suspend requested", map[string]interface{}{
		"command": "SetSuspendState(0,1,0)",
	})

	// hibernate=false, force=true, wakeupEventsDisabled=false
	r1, _, callErr := procSetSuspendState.Call(0, 1, 0)
	if r1 == 0 {
		return fmt.Errorf("SetSuspendState failed: %w", callErr)
	}
	return nil
}
