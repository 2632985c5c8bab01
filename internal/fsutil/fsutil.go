package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"sleepsentinel/internal/logging"
)

const (
	// DefaultStatePermissions is the default permission for state directories
	DefaultStatePermissions = 0o750
	// DefaultFilePermissions is the default permission for state files
	DefaultFilePermissions = 0o600
	// LogFileName is the diagnostic log written inside the state directory
	LogFileName = "sleepsentinel.log"

	appDirName = "sleepsentinel"
)

// DefaultStateDir returns the per-user state location for sleepsentinel files
func DefaultStateDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, appDirName)
	}
	return filepath.Join(os.TempDir(), appDirName)
}

// GetStateDir returns the state directory from environment or uses the provided default.
// It returns an absolute path when possible.
func GetStateDir(defaultDir string) string {
	if env := os.Getenv("SLEEPSENTINEL_STATE_DIR"); env != "" {
		if abs, err := filepath.Abs(env); err == nil {
			return abs
		}
		return env
	}
	return defaultDir
}

// LogFilePath returns the diagnostic log location, honouring an explicit override.
func LogFilePath(override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(GetStateDir(DefaultStateDir()), LogFileName)
}

// EnsureStateDirectory creates the state directory if it doesn't exist.
// It uses DefaultStatePermissions (0o750) for the directory.
func EnsureStateDirectory(path string) error {
	if err := os.MkdirAll(path, DefaultStatePermissions); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}

// CloseWithError closes a resource and logs any error if a logger is provided.
func CloseWithError(closer func() error, logger *logging.Logger, resource string) {
	if err := closer(); err != nil {
		if logger != nil {
			logger.Warn("fs.close_failed", fmt.Sprintf("Failed to close %s", resource), map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
