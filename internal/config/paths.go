package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDir = "learninghub"

// DefaultConfigPath returns $XDG_CONFIG_HOME/learninghub/config.yaml, or the
// ~/.config equivalent.
func DefaultConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDir, "config.yaml"), nil
}

// DataPath resolves a file under $XDG_DATA_HOME/learninghub (or
// ~/.local/share/learninghub) and makes sure its directory exists.
func DataPath(name string) (string, error) {
	return xdgPath("XDG_DATA_HOME", filepath.Join(".local", "share"), name)
}

// StatePath resolves a file under $XDG_STATE_HOME/learninghub (or
// ~/.local/state/learninghub) and makes sure its directory exists.
func StatePath(name string) (string, error) {
	return xdgPath("XDG_STATE_HOME", filepath.Join(".local", "state"), name)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func xdgPath(env, fallback, name string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, fallback)
	}
	p := filepath.Join(base, appDir, name)
	return p, EnsureDir(p)
}
