package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// AppDirName is the directory under the user config dir holding settings
const AppDirName = "yt-batch"

// SettingsFileName is the persisted settings file
const SettingsFileName = "settings.toml"

// File permissions. The settings hold the auth cookie.
const (
	SettingsDirPermissions  = 0o700
	SettingsFilePermissions = 0o600
)

// Store is a flat key/value preferences file encoded as TOML
type Store struct {
	path   string
	mu     sync.RWMutex
	values map[string]any
}

// DefaultStorePath returns the settings file location in the user config dir
func DefaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(dir, AppDirName, SettingsFileName), nil
}

// OpenStore loads the preferences at path. A missing file yields an empty store.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]any)}
	if path == "" {
		return s, nil
	}

	if _, err := toml.DecodeFile(path, &s.values); err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	return s, nil
}

// NewMemoryStore returns a store that is never written to disk
func NewMemoryStore() *Store {
	s, _ := OpenStore("")
	return s
}

// Path returns the backing file, empty for memory stores
func (s *Store) Path() string {
	return s.path
}

// Save writes the preferences back to disk. The file is replaced
// atomically, so a failed save leaves the previous settings intact.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, SettingsDirPermissions); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+SettingsFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := s.encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(SettingsFilePermissions); err != nil {
		f.Close()
		return fmt.Errorf("failed to set settings permissions: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

func (s *Store) encode(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := toml.NewEncoder(w).Encode(s.values); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return nil
}

// String returns the value for key, or "" when missing
func (s *Store) String(key string) string {
	return s.StringWithFallback(key, "")
}

// StringWithFallback returns the value for key, or fallback when missing
func (s *Store) StringWithFallback(key, fallback string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return fallback
}

// Int returns the value for key, or 0 when missing
func (s *Store) Int(key string) int {
	return s.IntWithFallback(key, 0)
}

// IntWithFallback returns the value for key, or fallback when missing
func (s *Store) IntWithFallback(key string, fallback int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch v := s.values[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

// BoolWithFallback returns the value for key, or fallback when missing
func (s *Store) BoolWithFallback(key string, fallback bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key].(bool); ok {
		return v
	}
	return fallback
}

// SetString stores a string value
func (s *Store) SetString(key, value string) {
	s.set(key, value)
}

// SetInt stores an int value
func (s *Store) SetInt(key string, value int) {
	s.set(key, int64(value))
}

// SetBool stores a bool value
func (s *Store) SetBool(key string, value bool) {
	s.set(key, value)
}

func (s *Store) set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
