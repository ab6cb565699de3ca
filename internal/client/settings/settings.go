// Package settings persists the UI preferences slice.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Settings holds user-facing client preferences.
type Settings struct {
	DarkMode             bool   `json:"darkMode"`
	Language             string `json:"language"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	AutoLogout           bool   `json:"autoLogout"`
	SessionTimeoutMin    int    `json:"sessionTimeout"`
}

// Defaults are applied when no settings file exists yet.
var Defaults = Settings{
	Language:             "es",
	NotificationsEnabled: true,
	AutoLogout:           true,
	SessionTimeoutMin:    30,
}

// Store reads and writes the settings file.
type Store struct {
	path string

	mu      sync.Mutex
	current Settings
}

// Open loads settings from path, falling back to Defaults when the file
// is missing or unreadable.
func Open(path string) *Store {
	s := &Store{path: path, current: Defaults}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return s
	}
	s.current = loaded
	return s
}

// Get returns the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update applies fn to the current settings and persists the result.
func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current
	fn(&next)
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	s.current = next
	return nil
}
