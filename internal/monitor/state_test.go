package monitor

import (
	"errors"
	"math"
	"testing"
	"time"

	"sleepsentinel/internal/metrics"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return epoch.Add(time.Duration(seconds) * time.Second)
}

func sample(down, up float64, ts time.Time) metrics.ThroughputSample {
	return metrics.ThroughputSample{DownloadMbps: down, UploadMbps: up, MeasuredAt: ts}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		field   string
	}{
		{"defaults", DefaultConfig(), false, ""},
		{"zero thresholds", Config{InactivityLimitSeconds: 1}, false, ""},
		{"zero limit", Config{InactivityLimitSeconds: 0, DownloadThresholdMbps: 10, UploadThresholdMbps: 10}, true, "inactivity_limit_seconds"},
		{"negative limit", Config{InactivityLimitSeconds: -5}, true, "inactivity_limit_seconds"},
		{"negative download", Config{InactivityLimitSeconds: 60, DownloadThresholdMbps: -1}, true, "download_threshold_mbps"},
		{"negative upload", Config{InactivityLimitSeconds: 60, UploadThresholdMbps: -0.5}, true, "upload_threshold_mbps"},
		{"nan download", Config{InactivityLimitSeconds: 60, DownloadThresholdMbps: math.NaN()}, true, "download_threshold_mbps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("errors.Is(err, ErrInvalidConfig) = false for %v", err)
			}
			var cfgErr *InvalidConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *InvalidConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestState_RecordActivityNeverDecreases(t *testing.T) {
	s := NewState(at(0))

	s.RecordActivity(at(30))
	s.RecordActivity(at(10))

	if got := s.LastActivity(); !got.Equal(at(30)) {
		t.Errorf("LastActivity() = %v, want %v", got, at(30))
	}
	if got := s.IdleFor(at(45)); got != 15*time.Second {
		t.Errorf("IdleFor() = %v, want 15s", got)
	}
}

func TestState_PublishSampleDropsOlder(t *testing.T) {
	s := NewState(at(0))

	s.PublishSample(sample(5, 1, at(2)))
	s.PublishSample(sample(50, 50, at(1)))

	got := s.Sample()
	if got.DownloadMbps != 5 || !got.MeasuredAt.Equal(at(2)) {
		t.Errorf("Sample() = %+v, want the sample measured at second 2", got)
	}
}

func TestState_ActivateDeactivate(t *testing.T) {
	s := NewState(at(0))

	first := s.Activate(at(5))
	if !s.Active() {
		t.Fatal("expected state to be active after Activate")
	}
	if got := s.LastActivity(); !got.Equal(at(5)) {
		t.Errorf("Activate should restart the countdown, LastActivity() = %v", got)
	}

	second := s.Activate(at(6))
	if s.Deactivate(first) {
		t.Error("stale session token must not deactivate the state")
	}
	if !s.Deactivate(second) {
		t.Error("current session token should deactivate the state")
	}
	if s.Deactivate(second) {
		t.Error("second Deactivate should report no change")
	}
	if s.Active() {
		t.Error("expected state to be inactive")
	}
}

func TestState_Evaluate(t *testing.T) {
	cfg := Config{InactivityLimitSeconds: 60, DownloadThresholdMbps: 10, UploadThresholdMbps: 10}

	tests := []struct {
		name        string
		down, up    float64
		now         int
		want        Decision
		wantResetTo int
	}{
		{"quiet before limit", 0, 0, 30, DecisionWait, 0},
		{"quiet at limit", 0, 0, 60, DecisionSleep, 0},
		{"download above", 15, 0, 70, DecisionReset, 70},
		{"upload above", 0, 11, 70, DecisionReset, 70},
		{"download equal stays awake", 10, 0, 70, DecisionReset, 70},
		{"upload equal stays awake", 0, 10, 70, DecisionReset, 70},
		{"just below sleeps", 9.99, 9.99, 70, DecisionSleep, 0},
		{"negative rate after counter reset", -3, 0, 70, DecisionSleep, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(at(0))
			s.PublishSample(sample(tt.down, tt.up, at(tt.now)))

			eval := s.Evaluate(at(tt.now), cfg)
			if eval.Decision != tt.want {
				t.Fatalf("Decision = %v, want %v", eval.Decision, tt.want)
			}
			if got := s.LastActivity(); !got.Equal(at(tt.wantResetTo)) {
				t.Errorf("LastActivity() = %v, want %v", got, at(tt.wantResetTo))
			}
		})
	}
}

func TestState_EvaluateZeroThresholdsNeverSleep(t *testing.T) {
	s := NewState(at(0))
	cfg := Config{InactivityLimitSeconds: 1}

	for sec := 1; sec <= 10; sec++ {
		s.PublishSample(sample(0, 0, at(sec)))
		if eval := s.Evaluate(at(sec), cfg); eval.Decision != DecisionReset {
			t.Fatalf("second %d: Decision = %v, want reset (0 >= 0)", sec, eval.Decision)
		}
	}
}

// simulate ticks once per second from 1 to until and returns the first
// second a sleep decision was made, or -1.
func simulate(s *State, cfg Config, until int, before func(sec int)) int {
	for sec := 1; sec <= until; sec++ {
		if before != nil {
			before(sec)
		}
		if s.Evaluate(at(sec), cfg).Decision == DecisionSleep {
			return sec
		}
	}
	return -1
}

func TestScenario_QuietMachineSleeps(t *testing.T) {
	s := NewState(at(0))
	s.Activate(at(0))
	cfg := DefaultConfig()

	fired := simulate(s, cfg, 61, func(sec int) {
		s.PublishSample(sample(0, 0, at(sec)))
	})
	if fired != 60 && fired != 61 {
		t.Errorf("sleep decided at second %d, want 60 or 61", fired)
	}
}

func TestScenario_DownloadSpikeResets(t *testing.T) {
	s := NewState(at(0))
	s.Activate(at(0))
	cfg := DefaultConfig()

	fired := simulate(s, cfg, 200, func(sec int) {
		rate := 0.0
		if sec == 55 {
			rate = 15
		}
		s.PublishSample(sample(rate, 0, at(sec)))
		if sec == 56 && !s.LastActivity().Equal(at(55)) {
			t.Errorf("LastActivity() after spike = %v, want second 55", s.LastActivity())
		}
	})
	if fired < 115 {
		t.Errorf("sleep decided at second %d, want no earlier than 115", fired)
	}
}

func TestScenario_InputResetsCountdown(t *testing.T) {
	s := NewState(at(0))
	s.Activate(at(0))
	cfg := DefaultConfig()

	fired := simulate(s, cfg, 200, func(sec int) {
		s.PublishSample(sample(0, 0, at(sec)))
		if sec == 30 {
			s.RecordActivity(at(30))
		}
	})
	if fired != 90 {
		t.Errorf("sleep decided at second %d, want 90", fired)
	}
}
