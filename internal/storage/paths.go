package storage

import (
	"os"
	"path/filepath"
)

const appDir = ".interfere"

// DatabaseFileName is the history database inside the storage directory
const DatabaseFileName = "interfere.db"

// DefaultStoragePath returns the default storage location for Interfere
// Platform-specific paths:
//   - macOS/Linux: ~/.interfere
//   - Windows: %USERPROFILE%\.interfere
func DefaultStoragePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDir), nil
}
