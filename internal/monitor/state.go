package monitor

import (
	"sync"
	"time"

	"sleepsentinel/internal/metrics"
)

// State is the shared monitoring state. Every field is read and written
// under mu and no method blocks while holding it.
type State struct {
	mu           sync.Mutex
	active       bool
	session      uint64
	lastActivity time.Time
	sample       metrics.ThroughputSample
}

// NewState creates an inactive state whose last activity is now
func NewState(now time.Time) *State {
	return &State{lastActivity: now}
}

// RecordActivity moves the last activity time forward to at. Older
// timestamps are ignored so the value never decreases.
func (s *State) RecordActivity(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(at)
}

func (s *State) advanceLocked(at time.Time) {
	if at.After(s.lastActivity) {
		s.lastActivity = at
	}
}

// PublishSample replaces the current sample unless it is older than the
// one already held.
func (s *State) PublishSample(sample metrics.ThroughputSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sample.MeasuredAt.Before(s.sample.MeasuredAt) {
		return
	}
	s.sample = sample
}

// Sample returns the latest throughput sample
func (s *State) Sample() metrics.ThroughputSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sample
}

// LastActivity returns when input or network activity was last seen
func (s *State) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// IdleFor returns how long the machine has been idle as of now
func (s *State) IdleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActivity)
}

// Active reports whether a monitoring session owns the state
func (s *State) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Activate marks the state active for a new session, restarts the countdown
// at now, and returns the session token needed to deactivate it.
func (s *State) Activate(now time.Time) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session++
	s.active = true
	s.advanceLocked(now)
	return s.session
}

// Deactivate clears the active flag if session still owns the state. It
// reports whether it changed anything.
func (s *State) Deactivate(session uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.session != session {
		return false
	}
	s.active = false
	return true
}

// Evaluate runs the read-decide step of one tick atomically. Traffic at or
// above either threshold resets the countdown and is checked first; sleep
// requires the limit to have elapsed with both rates strictly below.
func (s *State) Evaluate(now time.Time, cfg Config) Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()

	eval := Evaluation{
		Decision:   DecisionWait,
		Inactivity: now.Sub(s.lastActivity),
		Sample:     s.sample,
	}

	down, up := s.sample.DownloadMbps, s.sample.UploadMbps
	switch {
	case down >= cfg.DownloadThresholdMbps || up >= cfg.UploadThresholdMbps:
		s.advanceLocked(now)
		eval.Decision = DecisionReset
	case eval.Inactivity >= cfg.InactivityLimit() &&
		down < cfg.DownloadThresholdMbps && up < cfg.UploadThresholdMbps:
		eval.Decision = DecisionSleep
	}

	return eval
}

type stateView struct {
	active       bool
	lastActivity time.Time
	sample       metrics.ThroughputSample
}

func (s *State) view() stateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stateView{
		active:       s.active,
		lastActivity: s.lastActivity,
		sample:       s.sample,
	}
}
