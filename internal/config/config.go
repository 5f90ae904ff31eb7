// Package config resolves where the memory bank lives and holds CLI defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	StoreDir  = "memory"
	StoreFile = "memory-store.json"

	DefaultNamespace   = "default"
	DefaultQueryLimit  = 10
	DefaultCleanupDays = 30
)

// DefaultStorePath is the backing file used when nothing else is configured,
// relative to the working directory.
var DefaultStorePath = filepath.Join(StoreDir, StoreFile)

// ErrInvalidValue is returned for configuration values that fail validation.
var ErrInvalidValue = errors.New("invalid configuration value")

// IndexPath returns the SQLite mirror path for a store file:
// memory/memory-store.json -> memory/memory-store.db.
func IndexPath(storePath string) string {
	dir := filepath.Dir(storePath)
	base := strings.TrimSuffix(filepath.Base(storePath), filepath.Ext(storePath))
	return filepath.Join(dir, base+".db")
}

// ResolveStorePath picks the backing file: the explicit flag value first,
// then store_path from the global config, then DefaultStorePath.
func ResolveStorePath(flag string) (string, error) {
	if flag != "" {
		return ExpandPath(flag), nil
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if cfg.StorePath != "" {
		return cfg.StorePath, nil
	}

	return DefaultStorePath, nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

// ValidateNonNegative checks an integer setting such as a limit or day count.
func ValidateNonNegative(name string, v int) error {
	if v < 0 {
		return fmt.Errorf("%w: %s must be >= 0, got %d", ErrInvalidValue, name, v)
	}
	return nil
}
