package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwarden/wkcal/internal/calendar"
	"github.com/cwarden/wkcal/internal/config"
	"github.com/cwarden/wkcal/internal/logging"
	"github.com/cwarden/wkcal/internal/storage"
	"github.com/cwarden/wkcal/internal/todo"
	"github.com/cwarden/wkcal/internal/ui"
)

var (
	cfgFile     string
	dataFile    string
	backendName string
	scope       string
	useDates    bool
	debug       bool
	cfg         *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wkcal",
	Short: "A weekly calendar of todo lists in the terminal",
	Long: `wkcal keeps short todo lists attached to the days of a week, one
weekly table per scope (a note, a project, or the global calendar).`,
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRun: applyScopeFlag,
	RunE:             runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default: search WKCAL_CONFIG, ~/.config/wkcal/wkcalrc, ~/.wkcalrc)")
	rootCmd.PersistentFlags().StringVarP(&dataFile, "data", "f", "", "Todo data file")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Storage backend: json or sqlite")
	rootCmd.PersistentFlags().StringVarP(&scope, "scope", "s", "", "Scope (note path) to work on; empty is the global calendar")
	rootCmd.PersistentFlags().BoolVar(&useDates, "dates", false, "Use concrete dates instead of the weekday table")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func initConfig() {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadConfigFile(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if backendName != "" {
		if err := cfg.SetVariable("backend", backendName); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --backend: %v\n", err)
			os.Exit(1)
		}
	}
	if useDates {
		cfg.DefaultView = config.ViewDates
	}
	if debug {
		cfg.LogLevel = "debug"
	}
}

// applyScopeFlag lets an explicit --scope "" select the global calendar
// over a configured default_scope.
func applyScopeFlag(cmd *cobra.Command, args []string) {
	if cmd.Flags().Changed("scope") {
		cfg.DefaultScope = scope
	}
}

// app is everything a command needs to work on the calendar.
type app struct {
	store    *todo.Store
	settings *config.SettingsStore
	ctrl     *calendar.Controller
	logger   *log.Logger
	closer   io.Closer
}

func openApp(logger *log.Logger) (*app, error) {
	backend, closer, err := openBackend()
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadSettings(storage.OSStorage{}, cfg.SettingsFile, cfg.SettingsDefaults(), logger)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}

	store := todo.NewStore(backend, logger)
	logger.Debug("opened calendar", "data", store.Location(), "backend", cfg.Backend, "settings", cfg.SettingsFile)

	return &app{
		store:    store,
		settings: settings,
		ctrl:     calendar.New(store, settings, calendar.WithDateFormat(cfg.DateFormat)),
		logger:   logger,
		closer:   closer,
	}, nil
}

func (a *app) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func openBackend() (todo.Backend, io.Closer, error) {
	if cfg.Backend == config.BackendSQLite {
		path := cfg.DataFile
		if filepath.Ext(path) == ".json" {
			path = strings.TrimSuffix(path, ".json") + ".db"
		}
		db, err := todo.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	}
	return todo.NewFileBackend(storage.OSStorage{}, cfg.DataFile), nil, nil
}

// currentView is the view selected by config and flags.
func currentView() (calendar.View, error) {
	mode, err := calendar.ParseMode(cfg.DefaultView)
	if err != nil {
		return calendar.View{}, err
	}
	return calendar.View{Scope: cfg.DefaultScope, Mode: mode}, nil
}

func cliLogger() *log.Logger {
	return logging.New(os.Stderr, cfg.LogLevel)
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger, logCloser, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	a, err := openApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	view, err := currentView()
	if err != nil {
		return err
	}

	// Reload when the data or settings change outside this process
	changes := make(chan string, 1)
	watcher, err := todo.NewWatcher(func(path string) {
		select {
		case changes <- path:
		default:
		}
	})
	if err != nil {
		logger.Warn("file watching disabled", "err", err)
	} else {
		defer watcher.Close()
		for _, path := range []string{a.store.Location(), cfg.SettingsFile} {
			if err := watcher.AddFile(path); err != nil {
				logger.Warn("cannot watch file", "path", path, "err", err)
			}
		}
	}

	model := ui.NewModel(cfg, a.ctrl, a.settings, view, ui.WithLogger(logger), ui.WithChanges(changes))
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}
