package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend != BackendJSON {
		t.Errorf("Wrong default backend: %s", cfg.Backend)
	}

	if cfg.WeekStartDay != time.Monday {
		t.Errorf("Wrong default week start day: %v", cfg.WeekStartDay)
	}

	if cfg.DateFormat != "Jan 2" {
		t.Errorf("Wrong default date format: %s", cfg.DateFormat)
	}

	if cfg.DefaultView != ViewWeekdays {
		t.Errorf("Wrong default view: %s", cfg.DefaultView)
	}

	if !cfg.AutoRefresh {
		t.Error("Auto refresh should be enabled by default")
	}

	if cfg.RefreshRate != 30*time.Second {
		t.Errorf("Wrong default refresh rate: %v", cfg.RefreshRate)
	}

	if filepath.Base(cfg.DataFile) != "data.json" {
		t.Errorf("Wrong default data file: %s", cfg.DataFile)
	}

	if cfg.KeyBindings["quit"] != "q" {
		t.Errorf("Wrong quit key binding: %s", cfg.KeyBindings["quit"])
	}
}

func TestParseLine(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		line     string
		check    func(*Config) bool
		hasError bool
	}{
		{
			line: "set backend sqlite",
			check: func(c *Config) bool {
				return c.Backend == BackendSQLite
			},
		},
		{
			line: "set week_start_day sunday",
			check: func(c *Config) bool {
				return c.WeekStartDay == time.Sunday
			},
		},
		{
			line: "set auto_refresh false",
			check: func(c *Config) bool {
				return !c.AutoRefresh
			},
		},
		{
			line: "set refresh_rate 60",
			check: func(c *Config) bool {
				return c.RefreshRate == 60*time.Second
			},
		},
		{
			line: "  set default_scope \"notes/week.md\"  ",
			check: func(c *Config) bool {
				return c.DefaultScope == "notes/week.md"
			},
		},
		{
			line: "bind n add_todo",
			check: func(c *Config) bool {
				return c.KeyBindings["add_todo"] == "n"
			},
		},
		{
			line: "color today yellow",
			check: func(c *Config) bool {
				return c.Colors["today"] == "yellow"
			},
		},
		{
			line:     "bind z no_such_action",
			hasError: true,
		},
		{
			line:     "invalid command",
			hasError: true,
		},
		{
			line: "# comment line",
		},
		{
			line: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := cfg.parseLine(tt.line)

			if tt.hasError && err == nil {
				t.Error("Expected error but got none")
			}

			if !tt.hasError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Check failed for line: %s", tt.line)
			}
		})
	}
}

func TestSetVariable(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		value    string
		check    func(*Config) bool
		hasError bool
	}{
		{
			name:  "data_file",
			value: "~/cal/data.json",
			check: func(c *Config) bool {
				return filepath.IsAbs(c.DataFile) && strings.HasSuffix(c.DataFile, filepath.Join("cal", "data.json"))
			},
		},
		{
			name:  "language",
			value: "de",
			check: func(c *Config) bool {
				return c.Language == "de"
			},
		},
		{
			name:  "column_width",
			value: "24",
			check: func(c *Config) bool {
				return c.ColumnWidth == 24
			},
		},
		{
			name:     "column_width",
			value:    "invalid",
			hasError: true,
		},
		{
			name:     "column_width",
			value:    "2",
			hasError: true,
		},
		{
			name:  "default_view",
			value: "Dates",
			check: func(c *Config) bool {
				return c.DefaultView == ViewDates
			},
		},
		{
			name:     "default_view",
			value:    "month",
			hasError: true,
		},
		{
			name:     "backend",
			value:    "postgres",
			hasError: true,
		},
		{
			name:     "week_start_day",
			value:    "wednesday",
			hasError: true,
		},
		{
			name:  "confirm_clear",
			value: "false",
			check: func(c *Config) bool {
				return !c.ConfirmClear
			},
		},
		{
			name:  "refresh_rate",
			value: "5m",
			check: func(c *Config) bool {
				return c.RefreshRate == 5*time.Minute
			},
		},
		{
			name:  "log_level",
			value: "DEBUG",
			check: func(c *Config) bool {
				return c.LogLevel == "debug"
			},
		},
		{
			name:     "unknown_variable",
			value:    "something",
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cfg.setVariable(tt.name, tt.value)

			if tt.hasError && err == nil {
				t.Error("Expected error but got none")
			}

			if !tt.hasError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Check failed for %s = %s", tt.name, tt.value)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "test_wkcalrc")

	content := `# Test config file
set data_file /tmp/wkcal/data.json
set backend sqlite
set week_start_day sunday
set date_format "Mon Jan 2"
set auto_refresh false
set refresh_rate 120

bind Q quit
bind n add_todo

color today cyan
color selected reverse
`

	err := os.WriteFile(configFile, []byte(content), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg, err := LoadConfigFile(configFile)
	if err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	// Verify loaded values
	if cfg.DataFile != "/tmp/wkcal/data.json" {
		t.Errorf("Wrong data file: %s", cfg.DataFile)
	}

	if cfg.Backend != BackendSQLite {
		t.Errorf("Wrong backend: %s", cfg.Backend)
	}

	if cfg.WeekStartDay != time.Sunday {
		t.Errorf("Wrong week start day: %v", cfg.WeekStartDay)
	}

	if cfg.DateFormat != "Mon Jan 2" {
		t.Errorf("Wrong date format: %s", cfg.DateFormat)
	}

	if cfg.AutoRefresh {
		t.Error("Auto refresh should be disabled")
	}

	if cfg.RefreshRate != 120*time.Second {
		t.Errorf("Wrong refresh rate: %v", cfg.RefreshRate)
	}

	if cfg.ActionFor("Q") != "quit" {
		t.Errorf("Wrong action for Q: %s", cfg.ActionFor("Q"))
	}

	if cfg.ActionFor("q") != "" {
		t.Errorf("q should be unbound, got %s", cfg.ActionFor("q"))
	}

	if cfg.Colors["today"] != "cyan" {
		t.Errorf("Wrong today color: %s", cfg.Colors["today"])
	}
}

func TestLoadFromFileReportsLine(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "wkcalrc")
	if err := os.WriteFile(configFile, []byte("set backend json\nset bogus 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfigFile(configFile)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Expected line 2 error, got %v", err)
	}

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestLoadConfigSearchPath(t *testing.T) {
	tmpDir := t.TempDir()
	rc := filepath.Join(tmpDir, "custom_rc")
	if err := os.WriteFile(rc, []byte("set language fr\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("WKCAL_CONFIG", rc)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Language != "fr" {
		t.Errorf("Expected language from WKCAL_CONFIG, got %s", cfg.Language)
	}

	// Nothing on the search path leaves the defaults.
	t.Setenv("WKCAL_CONFIG", "")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Language != "en" {
		t.Errorf("Expected default language, got %s", cfg.Language)
	}
}

func TestSettingsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WeekStartDay = time.Sunday
	cfg.Language = "nl"

	got := cfg.SettingsDefaults()
	if got.StartOfWeek != Sunday || got.Language != "nl" {
		t.Errorf("Unexpected defaults: %+v", got)
	}
}
