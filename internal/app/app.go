package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"fyne.io/fyne/v2"
	"github.com/shhac/interfere/internal/httpclient"
	"github.com/shhac/interfere/internal/logging"
	"github.com/shhac/interfere/internal/model"
	"github.com/shhac/interfere/internal/storage"
)

// Version is set at build time via ldflags:
//
//	go build -ldflags "-X github.com/shhac/interfere/internal/app.Version=1.2.3"
var Version = "dev"

// App is the main application coordinator, responsible for wiring
// together all components and managing their lifecycle.
type App struct {
	fyneApp   fyne.App
	window    fyne.Window
	config    *Config
	logger    *slog.Logger
	logCloser io.Closer
	storage   *storage.SQLiteRepository
	client    *httpclient.Client
	reducer   *model.Reducer
}

// New creates a new App instance with the given configuration.
// This performs all dependency injection and wiring.
func New(fyneApp fyne.App, cfg *Config) (*App, error) {
	logger, logCloser, err := logging.InitLogger("interfere", cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("initializing Interfere",
		slog.String("version", Version),
		slog.Bool("debug", cfg.Debug),
		slog.String("config_file", cfg.ConfigFile),
		slog.Duration("timeout", cfg.Timeout),
	)

	repo, err := OpenRepository(cfg, logger)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	client := NewClient(cfg, logger)

	logger.Info("application initialized successfully")

	return &App{
		fyneApp:   fyneApp,
		config:    cfg,
		logger:    logger,
		logCloser: logCloser,
		storage:   repo,
		client:    client,
		reducer:   model.NewReducer(repo, logger),
	}, nil
}

// OpenRepository opens the history database named by cfg.
func OpenRepository(cfg *Config, logger *slog.Logger) (*storage.SQLiteRepository, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	repo, err := storage.OpenSQLite(path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return repo, nil
}

// NewClient builds the HTTP client with the configured timeout.
func NewClient(cfg *Config, logger *slog.Logger) *httpclient.Client {
	return httpclient.New(httpclient.Options{
		Timeout:   cfg.Timeout,
		UserAgent: "interfere/" + Version,
	}, logger)
}

// Run starts the application and displays the main window.
// This is a blocking call that runs the Fyne event loop.
func (a *App) Run(window fyne.Window) {
	a.window = window
	a.logger.Info("starting application")
	a.window.ShowAndRun()
}

// Close releases the database and log file.
func (a *App) Close() error {
	a.logger.Info("shutting down")
	return errors.Join(a.storage.Close(), a.logCloser.Close())
}

// Send performs one request on the shared client.
func (a *App) Send(ctx context.Context, out httpclient.Outgoing) (*httpclient.Result, error) {
	return a.client.Send(ctx, out)
}

// Reducer returns the state reducer for use by the window.
func (a *App) Reducer() *model.Reducer {
	return a.reducer
}

// Config returns the loaded configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Storage returns the storage repository.
func (a *App) Storage() storage.Repository {
	return a.storage
}

// FyneApp returns the underlying Fyne application instance.
func (a *App) FyneApp() fyne.App {
	return a.fyneApp
}
