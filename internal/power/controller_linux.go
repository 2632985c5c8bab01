//go:build linux

package power

import "sleepsentinel/internal/logging"

const inhibitWho = "sleepsentinel"

var linuxCommands = commandSet{
	inhibit: []string{
		"systemd-inhibit",
		"--what=idle",
		"--who=" + inhibitWho,
		"--why=Network activity monitoring",
		"--mode=block",
		"sleep", "infinity",
	},
	suspend:    []string{"systemctl", "suspend"},
	inhibitors: []string{"systemd-inhibit", "--list", "--no-pager", "--no-legend"},
}

// NewPlatform returns the systemd-backed controller
func NewPlatform(logger *logging.Logger) Controller {
	return newExecController(linuxCommands, logger)
}
