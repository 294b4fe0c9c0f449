package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"lapwatch/internal/core/stopwatch"
	"lapwatch/internal/logfields"
	"lapwatch/internal/metrics"
	"lapwatch/internal/platform"
	"lapwatch/internal/storage"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	appName = "Lapwatch"
	appID   = "com.lapwatch.app"
	dirName = "lapwatch"
)

var version = "dev"

// CLI holds command line flags. Each flag can also be set from the environment or a .env file.
type CLI struct {
	Store       string           `help:"State store backend" enum:"yaml,sqlite,memory" default:"yaml" env:"LAPWATCH_STORE"`
	DataDir     string           `help:"Directory for the persisted stopwatch state" type:"path" env:"LAPWATCH_DATA_DIR"`
	Settings    string           `help:"Preferences file path" type:"path" env:"LAPWATCH_SETTINGS"`
	AssetsDir   string           `help:"Directory with icon overrides" type:"path" env:"LAPWATCH_ASSETS_DIR"`
	MetricsFile string           `help:"Write Prometheus metrics to this file on exit" type:"path" env:"LAPWATCH_METRICS_FILE"`
	Verbose     bool             `short:"v" help:"Enable verbose logging" env:"LAPWATCH_VERBOSE"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// paths are the resolved on-disk locations for one run.
type paths struct {
	configDir string
	dataDir   string
	settings  string
}

func (c *CLI) resolvePaths(configDir string) paths {
	resolved := paths{
		configDir: configDir,
		dataDir:   c.DataDir,
		settings:  c.Settings,
	}
	if resolved.dataDir == "" {
		resolved.dataDir = filepath.Join(configDir, dirName)
	}
	if resolved.settings == "" {
		resolved.settings = storage.SettingsPath(configDir, dirName)
	}
	return resolved
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "lapwatch: load .env: %v\n", err)
	}

	var cli CLI
	kong.Parse(&cli,
		kong.Name("lapwatch"),
		kong.Description("A tray stopwatch with laps that survives restarts."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	if err := run(&cli); err != nil {
		slog.Error("Lapwatch failed", logfields.Error(err))
		os.Exit(1)
	}
}

func run(cli *CLI) error {
	service := platform.NewService()
	configDir, err := service.ConfigDir()
	if err != nil {
		return err
	}
	resolved := cli.resolvePaths(configDir)

	guard, err := platform.AcquireSingleInstance(resolved.dataDir, appName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		slog.Info("Another Lapwatch instance is already running", logfields.Path(resolved.dataDir))
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := guard.Release(); err != nil {
			slog.Warn("Failed to release instance lock", logfields.Error(err))
		}
	}()

	recorder, flushMetrics := newRecorder(cli.MetricsFile)
	defer flushMetrics()

	store, closeStore, err := openStore(cli.Store, resolved.dataDir)
	if err != nil {
		return err
	}
	defer closeStore()

	settings, err := storage.LoadSettings(resolved.settings)
	if err != nil {
		slog.Warn("Using default preferences", logfields.Path(resolved.settings), logfields.Error(err))
	}

	watch := stopwatch.New(store, stopwatch.Options{
		Recorder:   recorder,
		Logger:     slog.Default().With(logfields.Store(cli.Store)),
		HidePolicy: settings.HidePolicy(),
	})
	defer watch.Close()

	loginItem := platform.LoginItem{Name: appName, Args: autostartArgs(cli)}
	return runApp(appConfig{
		watch:        watch,
		service:      service,
		settings:     settings,
		settingsPath: resolved.settings,
		assetsDir:    cli.AssetsDir,
		loginItem:    loginItem,
	})
}

// openStore builds the configured state store and a func that releases it.
func openStore(kind, dataDir string) (stopwatch.Store, func(), error) {
	switch kind {
	case "", "yaml":
		store := storage.NewFileStore(dataDir)
		slog.Debug("Using YAML state store", logfields.Path(store.Path()))
		return store, func() {}, nil
	case "sqlite":
		dbPath := filepath.Join(dataDir, dirName+".db")
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("Using SQLite state store", logfields.Path(dbPath))
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close state store", logfields.Error(err))
			}
		}, nil
	case "memory":
		slog.Warn("Using in-memory state store; state will not survive a restart")
		return storage.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", kind)
	}
}

// newRecorder returns a Prometheus recorder when metricsFile is set, with a
// func that writes the textfile. Otherwise metrics are discarded.
func newRecorder(metricsFile string) (metrics.Recorder, func()) {
	if metricsFile == "" {
		return metrics.NoopRecorder{}, func() {}
	}
	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())
	return recorder, func() {
		if err := recorder.WriteTextfile(metricsFile); err != nil {
			slog.Warn("Failed to write metrics", logfields.Path(metricsFile), logfields.Error(err))
		}
	}
}

// autostartArgs repeats the flags that were set explicitly so a login launch
// opens the same store.
func autostartArgs(cli *CLI) []string {
	var args []string
	if cli.Store != "" && cli.Store != "yaml" {
		args = append(args, "--store", cli.Store)
	}
	if cli.DataDir != "" {
		args = append(args, "--data-dir", cli.DataDir)
	}
	if cli.Settings != "" {
		args = append(args, "--settings", cli.Settings)
	}
	return args
}
