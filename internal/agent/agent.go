// Package agent wires the sampler, activity listener, decision engine and
// power controller into one supervised process.
package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sleepsentinel/internal/activity"
	"sleepsentinel/internal/config"
	"sleepsentinel/internal/logging"
	"sleepsentinel/internal/metrics"
	"sleepsentinel/internal/monitor"
	"sleepsentinel/internal/power"
)

const defaultHeartbeat = 10 * time.Second

// Options configure an Agent. Zero-valued collaborators get production defaults.
type Options struct {
	Config config.Config
	// ConfigPath is re-read on SIGHUP; empty means system config only
	ConfigPath string
	// Autostart begins monitoring as soon as the agent runs
	Autostart bool
	// HandleSignals installs SIGINT/SIGTERM/SIGHUP handling
	HandleSignals bool

	Controller    power.Controller
	CounterReader metrics.CounterReader
	Sources       []activity.Source
	EngineOptions *monitor.Options
	Heartbeat     time.Duration
}

// Agent represents the sentinel process
type Agent struct {
	logger    *logging.Logger
	opts      Options
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time

	state      *monitor.State
	engine     *monitor.Engine
	controller power.Controller
	trigger    *power.Trigger
	sampler    *metrics.Sampler
	listener   *activity.Listener

	mu  sync.Mutex
	cfg config.Config
}

// NewAgent creates a new agent instance
func NewAgent(opts Options, logger *logging.Logger) *Agent {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := opts.Config

	controller := opts.Controller
	if controller == nil {
		controller = power.New(cfg.Power.DryRun, logger)
	}

	reader := opts.CounterReader
	if reader == nil {
		reader = metrics.NewPsutilReader()
	}

	sources := make([]activity.Source, 0, len(opts.Sources)+1)
	if cfg.Activity.InputDevices {
		sources = append(sources, activity.NewEvdevSource(cfg.Activity.DeviceGlob, logger))
	}
	sources = append(sources, opts.Sources...)

	engineOpts := cfg.EngineOptions()
	if opts.EngineOptions != nil {
		engineOpts = *opts.EngineOptions
	}

	var inhibitor monitor.IdleInhibitor
	if cfg.Power.PreventIdle {
		inhibitor = controller
	}

	if opts.Heartbeat <= 0 {
		opts.Heartbeat = defaultHeartbeat
	}

	state := monitor.NewState(time.Now())
	trigger := power.NewTrigger(cancel, controller, logger)

	return &Agent{
		logger:     logger,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		startTime:  time.Now(),
		state:      state,
		engine:     monitor.NewEngine(state, inhibitor, trigger, logger, engineOpts),
		controller: controller,
		trigger:    trigger,
		sampler:    metrics.NewSampler(cfg.ToSamplerConfig(), reader, state, logger),
		listener:   activity.NewListener(state, logger, sources...),
		cfg:        cfg,
	}
}

// SetExit replaces the process exit used after a sleep trigger
func (a *Agent) SetExit(exit func(code int)) {
	a.trigger.SetExit(exit)
}

// Run starts every background loop and blocks until shutdown
func (a *Agent) Run() error {
	a.logger.Info("agent.started", "Agent started", map[string]interface{}{
		"pid":        os.Getpid(),
		"autostart":  a.opts.Autostart,
		"dry_run":    a.opts.Config.Power.DryRun,
		"heartbeat":  a.opts.Heartbeat.String(),
		"log_format": a.opts.Config.Logging.Format,
	})

	g, ctx := errgroup.WithContext(a.ctx)
	g.Go(func() error { return a.sampler.Run(ctx) })
	g.Go(func() error { return a.listener.Run(ctx) })
	g.Go(func() error { return a.heartbeat(ctx) })
	if a.opts.HandleSignals {
		g.Go(func() error { return a.handleSignals(ctx) })
	}

	if a.opts.Autostart {
		if err := a.StartMonitoring(a.MonitorDefaults()); err != nil {
			a.cancel()
			_ = g.Wait()
			return fmt.Errorf("autostart monitoring: %w", err)
		}
	}

	err := g.Wait()

	a.engine.Stop()
	a.engine.Wait()

	a.logger.Info("agent.stopped", "Agent stopped", map[string]interface{}{
		"uptime_seconds": time.Since(a.startTime).Seconds(),
	})
	return err
}

func (a *Agent) handleSignals(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sigChan:
			a.logger.Info("agent.signal_received", "Received signal", map[string]interface{}{
				"signal": sig.String(),
			})

			switch sig {
			case syscall.SIGHUP:
				a.reload()
			default:
				a.logger.Info("agent.shutdown", "Initiating graceful shutdown", nil)
				return a.Shutdown()
			}
		}
	}
}

// reload re-reads the configuration. New thresholds apply to the next
// session; the running one keeps its config.
func (a *Agent) reload() {
	cfg, err := config.Resolve(a.opts.ConfigPath)
	if err != nil {
		a.logger.Warn("agent.reload.failed", "Keeping previous configuration", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	a.logger.Info("agent.reload", "Configuration reloaded", map[string]interface{}{
		"inactivity_limit_s":      cfg.Monitor.InactivityLimitSeconds,
		"download_threshold_mbps": cfg.Monitor.DownloadThresholdMbps,
		"upload_threshold_mbps":   cfg.Monitor.UploadThresholdMbps,
	})
}

func (a *Agent) heartbeat(ctx context.Context) error {
	ticker := time.NewTicker(a.opts.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			snap := a.engine.Snapshot()
			a.logger.Debug("agent.heartbeat", "Agent heartbeat", map[string]interface{}{
				"uptime_seconds":      time.Since(a.startTime).Seconds(),
				"phase":               string(snap.Phase),
				"seconds_until_sleep": snap.SecondsUntilSleep,
			})
		}
	}
}

// StartMonitoring begins a monitoring session with cfg
func (a *Agent) StartMonitoring(cfg monitor.Config) error {
	return a.engine.Start(a.ctx, cfg)
}

// StopMonitoring ends the current session, if any
func (a *Agent) StopMonitoring() {
	a.engine.Stop()
}

// Snapshot returns the current monitoring view
func (a *Agent) Snapshot() monitor.Snapshot {
	return a.engine.Snapshot()
}

// MonitorDefaults returns the configured session thresholds
func (a *Agent) MonitorDefaults() monitor.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.ToMonitorConfig()
}

// LogPath returns the diagnostic log file, or "" when logging to a stream
func (a *Agent) LogPath() string {
	return a.logger.Path()
}

// Done is closed once the agent is shutting down
func (a *Agent) Done() <-chan struct{} {
	return a.ctx.Done()
}

// Shutdown performs graceful shutdown of the agent
func (a *Agent) Shutdown() error {
	a.logger.Info("agent.stopping", "Stopping agent", nil)

	a.engine.Stop()
	a.cancel()
	return nil
}

// HealthCheck performs a health check of the agent
func (a *Agent) HealthCheck() error {
	select {
	case <-a.ctx.Done():
		return fmt.Errorf("agent context is cancelled")
	default:
		return nil
	}
}
