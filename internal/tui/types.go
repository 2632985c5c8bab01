package tui

import "sleepsentinel/internal/monitor"

// Screen represents different TUI screens
type Screen string

const (
	// ScreenMain shows settings, gauges and the countdown
	ScreenMain Screen = "main"
	// ScreenHelp shows help overlay
	ScreenHelp Screen = "help"
	// ScreenLogs shows the diagnostic log
	ScreenLogs Screen = "logs"
)

// Controller is the monitoring backend the UI drives
type Controller interface {
	StartMonitoring(cfg monitor.Config) error
	StopMonitoring()
	Snapshot() monitor.Snapshot
	MonitorDefaults() monitor.Config
	LogPath() string
}

// ActivitySignaler receives terminal input as user activity
type ActivitySignaler interface {
	Signal()
}

// Status line texts
const (
	statusWaiting      = "Waiting to start monitoring."
	statusMonitoring   = "Monitoring network activity..."
	statusStopped      = "Monitoring stopped."
	statusSleeping     = "Going to sleep..."
	statusInvalidInput = "Invalid input! Using default values."
)

// gaugeMinScaleMbps is the smallest full-scale value of the speed gauges
const gaugeMinScaleMbps = 100.0
