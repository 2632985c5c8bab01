//go:build linux || darwin

package power

import (
	"context"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"

	"sleepsentinel/internal/logging"
)

func requireCommands(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available; skipping", name)
		}
	}
}

func TestExecController_HoldsAndReleasesInhibitor(t *testing.T) {
	requireCommands(t, "sleep")

	c := newExecController(commandSet{
		inhibit: []string{"sleep", "60"},
		suspend: []string{"true"},
	}, logging.NewLogger(logging.LevelError))

	if err := c.PreventIdle(); err != nil {
		t.Fatalf("PreventIdle() error = %v", err)
	}
	first := c.held
	if err := c.PreventIdle(); err != nil {
		t.Fatalf("second PreventIdle() error = %v", err)
	}
	if c.held != first {
		t.Error("second PreventIdle should keep the existing holder")
	}

	done := c.heldDone
	if err := c.AllowIdle(); err != nil {
		t.Fatalf("AllowIdle() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("inhibitor process still running after AllowIdle")
	}

	if err := c.AllowIdle(); err != nil {
		t.Errorf("second AllowIdle() error = %v", err)
	}
}

func TestExecController_Suspend(t *testing.T) {
	requireCommands(t, "true", "false")
	logger := logging.NewLogger(logging.LevelError)

	ok := newExecController(commandSet{inhibit: []string{"true"}, suspend: []string{"true"}}, logger)
	if err := ok.Suspend(context.Background()); err != nil {
		t.Errorf("Suspend() error = %v", err)
	}

	failing := newExecController(commandSet{inhibit: []string{"true"}, suspend: []string{"false"}}, logger)
	err := failing.Suspend(context.Background())
	if err == nil {
		t.Fatal("expected error from failing suspend command")
	}
	if !strings.Contains(err.Error(), "false failed") {
		t.Errorf("error = %v, want command name in message", err)
	}
}

func TestExecController_InhibitorListingFailureDoesNotBlock(t *testing.T) {
	requireCommands(t, "true", "false")

	c := newExecController(commandSet{
		inhibit:    []string{"true"},
		suspend:    []string{"true"},
		inhibitors: []string{"false"},
	}, logging.NewLogger(logging.LevelError))

	if err := c.Suspend(context.Background()); err != nil {
		t.Errorf("Suspend() error = %v", err)
	}
}

func TestParseInhibitors(t *testing.T) {
	output := strings.Join([]string{
		"NetworkManager 0 root 1021 NetworkManager sleep NetworkManager needs to turn off networks delay",
		inhibitWho + " 1000 user 4242 sleep idle Network activity monitoring block",
		"gdm 120 gdm 2001 gdm-session handle-power-key GNOME handling keypresses block",
		"backupd 0 root 3000 backupd shutdown:sleep Backup running block",
	}, "\n")

	got := parseInhibitors(output)
	want := []string{"NetworkManager", "backupd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseInhibitors() = %v, want %v", got, want)
	}

	if got := parseInhibitors(""); len(got) != 0 {
		t.Errorf("parseInhibitors(\"\") = %v, want empty", got)
	}
}
