package monitor

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"
	"sync"
	"time"

	"sleepsentinel/internal/logging"
)

// SleepTrigger puts the machine to sleep. The engine calls it at most once
// per session; production implementations do not return.
type SleepTrigger interface {
	TriggerSleep()
}

// IdleInhibitor holds and releases the OS prevent-idle assertion
type IdleInhibitor interface {
	PreventIdle() error
	AllowIdle() error
}

// Options tune engine timing. Zero values fall back to defaults.
type Options struct {
	TickPeriod time.Duration
	GraceDelay time.Duration
	Now        func() time.Time
}

// DefaultOptions returns the production timing
func DefaultOptions() Options {
	return Options{
		TickPeriod: DefaultTickPeriod,
		GraceDelay: DefaultGraceDelay,
		Now:        time.Now,
	}
}

func (o Options) withDefaults() Options {
	if o.TickPeriod <= 0 {
		o.TickPeriod = DefaultTickPeriod
	}
	if o.GraceDelay < 0 {
		o.GraceDelay = DefaultGraceDelay
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Engine runs monitoring sessions against a shared State
type Engine struct {
	state     *State
	inhibitor IdleInhibitor
	trigger   SleepTrigger
	logger    *logging.Logger
	opts      Options

	mu      sync.Mutex
	phase   Phase
	session *session

	idleMu   sync.Mutex
	idleHeld bool
}

type session struct {
	token  uint64
	config Config
	cancel context.CancelFunc
	done   chan struct{}

	// owned by the session goroutine
	aboveThreshold bool
}

// NewEngine creates an engine. inhibitor may be nil.
func NewEngine(state *State, inhibitor IdleInhibitor, trigger SleepTrigger, logger *logging.Logger, opts Options) *Engine {
	return &Engine{
		state:     state,
		inhibitor: inhibitor,
		trigger:   trigger,
		logger:    logger,
		opts:      opts.withDefaults(),
		phase:     PhaseIdle,
	}
}

// State returns the shared state the engine evaluates
func (e *Engine) State() *State {
	return e.state
}

// Start validates cfg and begins a monitoring session that lasts until Stop,
// ctx cancellation, or a sleep trigger.
func (e *Engine) Start(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		e.logger.Warn("monitor.config.invalid", "Rejected monitoring configuration", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("start monitoring: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("start monitoring: %w", err)
	}

	e.mu.Lock()
	if e.phase == PhaseRunning || e.phase == PhaseTriggering {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}

	sessCtx, cancel := context.WithCancel(ctx)
	sess := &session{
		token:  e.state.Activate(e.opts.Now()),
		config: cfg,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	e.session = sess
	e.phase = PhaseRunning
	e.mu.Unlock()

	e.preventIdle()

	e.logger.Info("monitor.session.started", "Monitoring started", map[string]interface{}{
		"inactivity_limit_s":      cfg.InactivityLimitSeconds,
		"download_threshold_mbps": cfg.DownloadThresholdMbps,
		"upload_threshold_mbps":   cfg.UploadThresholdMbps,
	})

	go e.run(sessCtx, sess)
	return nil
}

// Stop ends the current session. It is safe to call repeatedly or before
// any Start. A tick in progress completes; a pending trigger is abandoned.
func (e *Engine) Stop() {
	e.mu.Lock()
	sess := e.session
	if sess == nil || e.phase == PhaseStopped {
		e.mu.Unlock()
		return
	}
	e.phase = PhaseStopped
	sess.cancel()
	e.mu.Unlock()

	if e.state.Deactivate(sess.token) {
		e.allowIdle()
		e.logger.Info("monitor.session.stopped", "Monitoring stopped", nil)
	}
}

// Wait blocks until the current session goroutine has exited
func (e *Engine) Wait() {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()
	if sess != nil {
		<-sess.done
	}
}

// Phase returns the engine lifecycle phase
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Snapshot returns the display view of the engine and shared state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	phase := e.phase
	cfg := DefaultConfig()
	if e.session != nil {
		cfg = e.session.config
	}
	e.mu.Unlock()

	v := e.state.view()
	snap := Snapshot{
		Active:       v.active,
		Phase:        phase,
		DownloadMbps: v.sample.DownloadMbps,
		UploadMbps:   v.sample.UploadMbps,
		MeasuredAt:   v.sample.MeasuredAt,
		LastActivity: v.lastActivity,
		Config:       cfg,
	}
	if v.active {
		snap.SecondsUntilSleep = secondsUntil(cfg.InactivityLimit() - e.opts.Now().Sub(v.lastActivity))
	}
	return snap
}

func secondsUntil(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Seconds()))
}

func (e *Engine) run(ctx context.Context, sess *session) {
	defer close(sess.done)
	defer e.finish(sess)

	ticker := time.NewTicker(e.opts.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if ctx.Err() != nil {
			return
		}
		if e.tick(ctx, sess) {
			return
		}
	}
}

// tick evaluates once and reports whether the session is over
func (e *Engine) tick(ctx context.Context, sess *session) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("monitor.tick.panic", "Recovered from panic in decision loop", map[string]interface{}{
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			})
			done = false
		}
	}()

	eval := e.state.Evaluate(e.opts.Now(), sess.config)
	payload := map[string]interface{}{
		"download_mbps": round2(eval.Sample.DownloadMbps),
		"upload_mbps":   round2(eval.Sample.UploadMbps),
	}

	switch eval.Decision {
	case DecisionReset:
		if !sess.aboveThreshold {
			sess.aboveThreshold = true
			e.logger.Info("monitor.threshold.crossed", "Network activity above threshold, timer reset", payload)
		}
		e.logger.Debug("monitor.timer.reset", "Timer reset due to network activity", payload)
		return false
	case DecisionSleep:
		payload["inactivity_s"] = int(eval.Inactivity.Seconds())
		return e.fire(ctx, sess, payload)
	default:
		if sess.aboveThreshold {
			sess.aboveThreshold = false
			e.logger.Info("monitor.threshold.cleared", "Network activity below threshold", payload)
		}
		return false
	}
}

func (e *Engine) fire(ctx context.Context, sess *session, payload map[string]interface{}) bool {
	e.mu.Lock()
	if e.session != sess || e.phase != PhaseRunning {
		e.mu.Unlock()
		return true
	}
	e.phase = PhaseTriggering
	e.mu.Unlock()

	e.logger.Info("monitor.timer.expired", "Inactivity limit reached, going to sleep", payload)

	if !sleepContext(ctx, e.opts.GraceDelay) {
		e.logger.Info("monitor.trigger.aborted", "Sleep cancelled during grace delay", nil)
		return true
	}

	e.mu.Lock()
	if e.session == sess {
		e.phase = PhaseStopped
	}
	e.mu.Unlock()

	if e.state.Deactivate(sess.token) {
		e.allowIdle()
	}
	e.logger.Info("monitor.trigger.invoked", "Invoking sleep trigger", nil)
	e.trigger.TriggerSleep()
	return true
}

func (e *Engine) finish(sess *session) {
	sess.cancel()

	e.mu.Lock()
	if e.session == sess {
		e.phase = PhaseStopped
	}
	e.mu.Unlock()

	if e.state.Deactivate(sess.token) {
		e.allowIdle()
		e.logger.Info("monitor.session.stopped", "Monitoring stopped", nil)
	}
}

func (e *Engine) preventIdle() {
	if e.inhibitor == nil {
		return
	}
	e.idleMu.Lock()
	defer e.idleMu.Unlock()
	if e.idleHeld {
		return
	}
	if err := e.inhibitor.PreventIdle(); err != nil {
		e.logger.Warn("power.prevent_idle.failed", "Could not assert prevent-idle", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	e.idleHeld = true
}

func (e *Engine) allowIdle() {
	if e.inhibitor == nil {
		return
	}
	e.idleMu.Lock()
	defer e.idleMu.Unlock()
	if !e.idleHeld {
		return
	}
	e.idleHeld = false
	if err := e.inhibitor.AllowIdle(); err != nil {
		e.logger.Warn("power.allow_idle.failed", "Could not release prevent-idle", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
