package configdir

import (
	"os"
	"path/filepath"
)

const appDirName = "sleepsentinel"

// EnvVar overrides the configuration directory
const EnvVar = "SLEEPSENTINEL_CONFIG_DIR"

// ConfigDir resolves the configuration directory respecting overrides
func ConfigDir() string {
	if env := os.Getenv(EnvVar); env != "" {
		if abs, err := filepath.Abs(env); err == nil {
			return abs
		}
	}
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, appDirName)
	}
	return filepath.Join(os.TempDir(), appDirName)
}
