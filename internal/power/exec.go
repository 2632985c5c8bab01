package power

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"sleepsentinel/internal/logging"
)

const releaseTimeout = 5 * time.Second

// commandSet names the external commands behind an exec-based controller
type commandSet struct {
	// inhibit runs for as long as idle sleep must be prevented
	inhibit []string
	// suspend puts the machine to sleep and returns
	suspend []string
	// inhibitors optionally lists active sleep inhibitors, one per line
	inhibitors []string
}

// execController drives power management through OS commands
type execController struct {
	cmds   commandSet
	logger *logging.Logger

	mu       sync.Mutex
	held     *exec.Cmd
	heldDone chan struct{}
}

func newExecController(cmds commandSet, logger *logging.Logger) *execController {
	return &execController{
		cmds:   cmds,
		logger: logger,
	}
}

func (c *execController) PreventIdle() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held != nil {
		return nil
	}

	cmd := exec.Command(c.cmds.inhibit[0], c.cmds.inhibit[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.cmds.inhibit[0], err)
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	c.held = cmd
	c.heldDone = done

	c.logger.Info("power.idle.prevented", "Idle sleep prevented", map[string]interface{}{
		"command": c.cmds.inhibit[0],
		"pid":     cmd.Process.Pid,
	})
	return nil
}

func (c *execController) AllowIdle() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held == nil {
		return nil
	}

	cmd, done := c.held, c.heldDone
	c.held, c.heldDone = nil, nil

	select {
	case <-done:
		// assertion holder already gone
	default:
		if err := cmd.Process.Kill(); err != nil {
			return fmt.Errorf("stop %s: %w", c.cmds.inhibit[0], err)
		}
		select {
		case <-done:
		case <-time.After(releaseTimeout):
			return fmt.Errorf("stop %s: timed out", c.cmds.inhibit[0])
		}
	}

	c.logger.Info("power.idle.allowed", "Idle sleep allowed", nil)
	return nil
}

func (c *execController) Suspend(ctx context.Context) error {
	if len(c.cmds.inhibitors) > 0 {
		c.logInhibitors(ctx)
	}

	c.logger.Info("power.suspend.requested", "Suspend requested", map[string]interface{}{
		"command": strings.Join(c.cmds.suspend, " "),
	})

	cmd := exec.CommandContext(ctx, c.cmds.suspend[0], c.cmds.suspend[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w (output: %s)", c.cmds.suspend[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

// logInhibitors records other processes blocking sleep; a failed listing
// never blocks the suspend.
func (c *execController) logInhibitors(ctx context.Context) {
	cmd := exec.CommandContext(ctx, c.cmds.inhibitors[0], c.cmds.inhibitors[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		c.logger.Warn("power.inhibit.check.failed", "Failed to list inhibitors", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	inhibitors := parseInhibitors(string(output))
	if len(inhibitors) == 0 {
		c.logger.Debug("power.inhibit.checked", "No sleep inhibitors active", nil)
		return
	}
	c.logger.Warn("power.inhibit.active", "Sleep inhibitors are active and may block suspend", map[string]interface{}{
		"inhibitors": inhibitors,
	})
}

// parseInhibitors picks the holder names of sleep or shutdown locks from
// systemd-inhibit --list output. Our own idle lock is ignored.
func parseInhibitors(output string) []string {
	inhibitors := make([]string, 0)
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if !strings.Contains(line, "sleep") && !strings.Contains(line, "shutdown") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == inhibitWho {
			continue
		}
		inhibitors = append(inhibitors, fields[0])
	}
	return inhibitors
}
