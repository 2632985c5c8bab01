package power

import (
	"context"
	"os"
	"sync"
	"time"

	"sleepsentinel/internal/logging"
)

const (
	// ExitSuspended is the process status after a successful suspend request
	ExitSuspended = 0
	// ExitSuspendFailed is the process status when the suspend request failed
	ExitSuspendFailed = 1

	suspendTimeout = 30 * time.Second
)

// Trigger stops the process and puts the machine to sleep. It runs once;
// later calls are ignored.
type Trigger struct {
	stop       context.CancelFunc
	controller Controller
	logger     *logging.Logger
	exit       func(code int)
	timeout    time.Duration

	once sync.Once
}

// NewTrigger creates a trigger. stop cancels the process-wide context.
func NewTrigger(stop context.CancelFunc, controller Controller, logger *logging.Logger) *Trigger {
	return &Trigger{
		stop:       stop,
		controller: controller,
		logger:     logger,
		exit:       os.Exit,
		timeout:    suspendTimeout,
	}
}

// SetExit replaces os.Exit
func (t *Trigger) SetExit(exit func(code int)) {
	t.exit = exit
}

// TriggerSleep stops every loop, releases the prevent-idle assertion,
// suspends and exits the process.
func (t *Trigger) TriggerSleep() {
	t.once.Do(t.fire)
}

func (t *Trigger) fire() {
	t.logger.Info("power.sleep.triggered", "Putting system to sleep", nil)

	if t.stop != nil {
		t.stop()
	}

	if err := t.controller.AllowIdle(); err != nil {
		t.logger.Warn("power.allow_idle.failed", "Could not release prevent-idle", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// the root context is already cancelled, so the suspend gets its own
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	code := ExitSuspended
	if err := t.controller.Suspend(ctx); err != nil {
		t.logger.Critical("power.suspend.failed", "Failed to put system to sleep", map[string]interface{}{
			"error": err.Error(),
		})
		code = ExitSuspendFailed
	} else {
		t.logger.Info("power.suspend.done", "Suspend requested successfully", nil)
	}

	t.logger.Info("app.exited", "Exiting", map[string]interface{}{
		"exit_code": code,
	})
	t.exit(code)
}
