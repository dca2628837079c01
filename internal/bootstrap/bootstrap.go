package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	trackerinadapter "sleeptrack/internal/modules/tracker/adapter/in"
	trackeroutadapter "sleeptrack/internal/modules/tracker/adapter/out"
	trackerin "sleeptrack/internal/modules/tracker/port/in"
	trackerservice "sleeptrack/internal/modules/tracker/service"
	trackerusecase "sleeptrack/internal/modules/tracker/usecase"
	"sleeptrack/internal/platform/clock"
	"sleeptrack/internal/platform/config"
	"sleeptrack/internal/platform/id"
	"sleeptrack/internal/platform/logging"
	"sleeptrack/internal/platform/prefs"
	uiapp "sleeptrack/internal/ui/app"
	"sleeptrack/internal/ui/theme"
)

type App struct {
	Config     config.Config
	Logger     *slog.Logger
	TrackerCLI trackerinadapter.CLIHandler
	Tracker    trackerin.Tracker
	Rating     trackerin.Rating
	History    trackerin.History

	closers []func() error
}

// New wires the tracker against the SQLite store at cfg.DBPath. Logs go to
// cfg.LogPath so they never interleave with CLI output or the TUI.
func New(cfg config.Config) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat, logFile)

	store, err := trackeroutadapter.NewSQLiteNightStore(cfg.DBPath)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("new night store: %w", err)
	}
	svc := trackerservice.NewNightService(clock.System(), store, trackeroutadapter.NewVaultNightExporter())

	tracker := trackerusecase.NewCoordinator(svc, id.UUID{}, logger)
	rating := trackerusecase.NewRater(svc, logger)
	history := trackerusecase.NewHistoryInteractor(svc, cfg.ExportDir)
	logger.Debug("app ready", "db", cfg.DBPath)

	return &App{
		Config:     cfg,
		Logger:     logger,
		TrackerCLI: trackerinadapter.NewCLIHandler(tracker, rating, history),
		Tracker:    tracker,
		Rating:     rating,
		History:    history,
		closers: []func() error{
			func() error { tracker.Close(); return nil },
			func() error { rating.Close(); return nil },
			store.Close,
			logFile.Close,
		},
	}, nil
}

// Close shuts the coordinators down before the store they write to.
func (a *App) Close() error {
	var first error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func RunTUI(app *App) error {
	p, err := prefs.Load(app.Config.PrefsPath)
	if err != nil {
		return err
	}
	if !theme.Apply(p.Theme) {
		app.Logger.Warn("unknown theme, using default", "theme", p.Theme)
	}
	model := uiapp.NewModel(app.Tracker, app.Rating, app.History, uiapp.Options{
		PrefsPath: app.Config.PrefsPath,
		ExportDir: app.Config.ExportDir,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
