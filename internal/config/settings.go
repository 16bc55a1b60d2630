package config

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cwarden/wkcal/internal/storage"
)

// StartOfWeek is the first column of the week.
type StartOfWeek string

const (
	Monday StartOfWeek = "Monday"
	Sunday StartOfWeek = "Sunday"
)

func ParseStartOfWeek(s string) (StartOfWeek, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monday", "mon", "1":
		return Monday, nil
	case "sunday", "sun", "0":
		return Sunday, nil
	}
	return "", fmt.Errorf("invalid start of week: %q (want Monday or Sunday)", s)
}

func StartOfWeekFromWeekday(d time.Weekday) StartOfWeek {
	if d == time.Sunday {
		return Sunday
	}
	return Monday
}

func (s StartOfWeek) Weekday() time.Weekday {
	if s == Sunday {
		return time.Sunday
	}
	return time.Monday
}

// Settings is the user-editable document persisted next to the todo data.
type Settings struct {
	StartOfWeek StartOfWeek `json:"startOfWeek"`
	Language    string      `json:"language,omitempty"`
}

// SettingsStore holds Settings in memory for the life of the process and
// writes them back on every change.
type SettingsStore struct {
	storage storage.Storage
	path    string
	logger  *log.Logger

	mu       sync.RWMutex
	defaults Settings
	current  Settings
}

// LoadSettings reads the settings document at path. A missing document
// yields defaults. A malformed one is logged and also yields defaults.
func LoadSettings(st storage.Storage, path string, defaults Settings, logger *log.Logger) (*SettingsStore, error) {
	if st == nil {
		st = storage.OSStorage{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if _, err := ParseStartOfWeek(string(defaults.StartOfWeek)); err != nil {
		defaults.StartOfWeek = Monday
	}

	s := &SettingsStore{storage: st, path: path, logger: logger, defaults: defaults, current: defaults}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the document, with the same fallbacks as LoadSettings.
func (s *SettingsStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.storage.Read(s.path)
	if storage.IsNotExist(err) {
		s.current = s.defaults
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings %s: %w", s.path, err)
	}

	loaded := s.defaults
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("ignoring unreadable settings", "path", s.path, "err", err)
		s.current = s.defaults
		return nil
	}
	if sow, err := ParseStartOfWeek(string(loaded.StartOfWeek)); err != nil {
		s.logger.Warn("ignoring invalid startOfWeek", "path", s.path, "value", loaded.StartOfWeek)
		loaded.StartOfWeek = s.defaults.StartOfWeek
	} else {
		loaded.StartOfWeek = sow
	}
	s.current = loaded
	return nil
}

func (s *SettingsStore) Path() string {
	return s.path
}

func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsStore) SetStartOfWeek(sow StartOfWeek) error {
	sow, err := ParseStartOfWeek(string(sow))
	if err != nil {
		return err
	}
	return s.Update(func(st *Settings) { st.StartOfWeek = sow })
}

func (s *SettingsStore) SetLanguage(lang string) error {
	lang = strings.TrimSpace(lang)
	return s.Update(func(st *Settings) { st.Language = lang })
}

// Update applies fn and persists the result. The in-memory settings only
// change when the write succeeds.
func (s *SettingsStore) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	fn(&next)
	if err := s.persist(next); err != nil {
		return err
	}
	s.current = next
	s.logger.Debug("saved settings", "path", s.path, "startOfWeek", next.StartOfWeek, "language", next.Language)
	return nil
}

func (s *SettingsStore) persist(st Settings) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.path)
	if !s.storage.Exists(dir) {
		if err := s.storage.Mkdir(dir); err != nil {
			return fmt.Errorf("create settings directory %s: %w", dir, err)
		}
	}

	if err := s.storage.Write(s.path, append(data, '\n')); err != nil {
		return fmt.Errorf("write settings %s: %w", s.path, err)
	}
	return nil
}
