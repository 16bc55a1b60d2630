package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by the backend variable.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// View names accepted by the default_view variable.
const (
	ViewWeekdays = "weekdays"
	ViewDates    = "dates"
)

type Config struct {
	// File settings
	DataFile     string
	SettingsFile string
	Backend      string

	// Display settings
	WeekStartDay time.Weekday
	Language     string
	DateFormat   string
	ColumnWidth  int

	// UI settings
	Colors       map[string]string
	KeyBindings  map[string]string
	DefaultScope string
	DefaultView  string

	// Behavior settings
	AutoRefresh  bool
	RefreshRate  time.Duration
	ConfirmClear bool
	WrapText     bool

	// Logging
	LogLevel string
	LogFile  string
}

func DefaultConfig() *Config {
	return &Config{
		DataFile:     filepath.Join(dataDir(), "data.json"),
		SettingsFile: filepath.Join(configDir(), "settings.json"),
		Backend:      BackendJSON,

		WeekStartDay: time.Monday,
		Language:     "en",
		DateFormat:   "Jan 2",
		ColumnWidth:  18,

		Colors: map[string]string{
			"normal":    "252",
			"header":    "39",
			"today":     "220",
			"selected":  "235",
			"completed": "241",
			"weekend":   "75",
			"error":     "196",
			"border":    "238",
		},

		KeyBindings: map[string]string{
			"quit":              "q",
			"help":              "?",
			"today":             "t",
			"refresh":           "r",
			"add_todo":          "a",
			"toggle_todo":       "x",
			"delete_todo":       "d",
			"clear_completed":   "c",
			"toggle_view":       "m",
			"toggle_week_start": "s",
			"next_day":          "l",
			"prev_day":          "h",
			"next_todo":         "j",
			"prev_todo":         "k",
			"next_week":         "J",
			"prev_week":         "K",
		},

		DefaultScope: "",
		DefaultView:  ViewWeekdays,
		AutoRefresh:  true,
		RefreshRate:  30 * time.Second,
		ConfirmClear: true,
		WrapText:     true,

		LogLevel: "info",
	}
}

// ConfigPaths lists the rc file locations LoadConfig tries, in order.
func ConfigPaths() []string {
	home := os.Getenv("HOME")
	paths := []string{os.Getenv("WKCAL_CONFIG")}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "wkcal", "wkcalrc"))
	}
	return append(paths,
		filepath.Join(home, ".config", "wkcal", "wkcalrc"),
		filepath.Join(home, ".wkcalrc"),
	)
}

func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	// Try multiple config file locations
	for _, path := range ConfigPaths() {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); err == nil {
			if err := config.loadFromFile(path); err != nil {
				return nil, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			break
		}
	}

	return config, nil
}

// LoadConfigFile loads defaults overlaid with an explicit rc file, which
// must exist.
func LoadConfigFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.loadFromFile(expandHome(path)); err != nil {
		return nil, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) loadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if err := c.parseLine(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

var (
	setRe   = regexp.MustCompile(`^set\s+(\w+)\s+(.+)$`)
	bindRe  = regexp.MustCompile(`^bind\s+(\S+)\s+(\S+)$`)
	colorRe = regexp.MustCompile(`^color\s+(\w+)\s+(.+)$`)
)

func (c *Config) parseLine(line string) error {
	line = strings.TrimSpace(line)

	// Skip comments and empty lines
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	// set variable value
	if matches := setRe.FindStringSubmatch(line); matches != nil {
		return c.setVariable(matches[1], matches[2])
	}

	// bind key action
	if matches := bindRe.FindStringSubmatch(line); matches != nil {
		if _, ok := c.KeyBindings[matches[2]]; !ok {
			return fmt.Errorf("unknown action: %s", matches[2])
		}
		c.KeyBindings[matches[2]] = matches[1]
		return nil
	}

	// color element color_spec
	if matches := colorRe.FindStringSubmatch(line); matches != nil {
		c.Colors[matches[1]] = strings.Trim(matches[2], `"'`)
		return nil
	}

	return fmt.Errorf("unknown config line: %s", line)
}

// SetVariable applies one `set` assignment, as from an rc file.
func (c *Config) SetVariable(name, value string) error {
	return c.setVariable(name, value)
}

func (c *Config) setVariable(name, value string) error {
	// Remove quotes if present
	value = strings.Trim(strings.TrimSpace(value), `"'`)

	switch name {
	case "data_file":
		c.DataFile = expandHome(value)

	case "settings_file":
		c.SettingsFile = expandHome(value)

	case "backend":
		switch strings.ToLower(value) {
		case BackendJSON, BackendSQLite:
			c.Backend = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid backend: %s", value)
		}

	case "week_start_day":
		switch strings.ToLower(value) {
		case "sunday", "sun", "0":
			c.WeekStartDay = time.Sunday
		case "monday", "mon", "1":
			c.WeekStartDay = time.Monday
		default:
			return fmt.Errorf("invalid week_start_day: %s", value)
		}

	case "language":
		c.Language = value

	case "date_format":
		c.DateFormat = value

	case "default_scope":
		c.DefaultScope = value

	case "default_view":
		switch strings.ToLower(value) {
		case ViewWeekdays, ViewDates:
			c.DefaultView = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid default_view: %s", value)
		}

	case "column_width":
		width, err := strconv.Atoi(value)
		if err != nil || width < 4 {
			return fmt.Errorf("invalid column_width: %s", value)
		}
		c.ColumnWidth = width

	case "auto_refresh":
		c.AutoRefresh = parseBool(value)

	case "refresh_rate":
		rate, err := time.ParseDuration(value)
		if err != nil {
			// Try parsing as seconds
			if seconds, err2 := strconv.Atoi(value); err2 == nil {
				rate = time.Duration(seconds) * time.Second
			} else {
				return fmt.Errorf("invalid refresh_rate: %s", value)
			}
		}
		c.RefreshRate = rate

	case "confirm_clear":
		c.ConfirmClear = parseBool(value)

	case "wrap_text":
		c.WrapText = parseBool(value)

	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log_level: %s", value)
		}

	case "log_file":
		c.LogFile = expandHome(value)

	default:
		return fmt.Errorf("unknown config variable: %s", name)
	}

	return nil
}

// ActionFor returns the action bound to key, or "" when none is.
func (c *Config) ActionFor(key string) string {
	for action, bound := range c.KeyBindings {
		if bound == key {
			return action
		}
	}
	return ""
}

// SettingsDefaults is the settings document used when none is stored yet.
func (c *Config) SettingsDefaults() Settings {
	return Settings{
		StartOfWeek: StartOfWeekFromWeekday(c.WeekStartDay),
		Language:    c.Language,
	}
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1"
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "wkcal")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "wkcal")
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wkcal")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "wkcal")
}
