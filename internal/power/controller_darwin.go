//go:build darwin

package power

import "sleepsentinel/internal/logging"

const inhibitWho = "caffeinate"

var darwinCommands = commandSet{
	inhibit: []string{"caffeinate", "-i"},
	suspend: []string{"pmset", "sleepnow"},
}

// NewPlatform returns the caffeinate/pmset controller
func NewPlatform(logger *logging.Logger) Controller {
	return newExecController(darwinCommands, logger)
}
