package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/daytodo/internal/config"
	"github.com/sandeepkv93/daytodo/internal/logging"
	"github.com/sandeepkv93/daytodo/internal/model"
	"github.com/sandeepkv93/daytodo/internal/scheduler"
	"github.com/sandeepkv93/daytodo/internal/storage"
	"github.com/sandeepkv93/daytodo/internal/store"
)

const closeTimeout = 5 * time.Second

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	DataDir    string
	Backend    string
	LogLevel   string
}

func (o *GlobalOptions) resolve() (config.RuntimeConfig, error) {
	return config.Load(o.ConfigPath, func(cfg *config.RuntimeConfig) {
		if o.DataDir != "" {
			cfg.DataDir = o.DataDir
		}
		if o.Backend != "" {
			cfg.Backend = o.Backend
		}
		if o.LogLevel != "" {
			cfg.LogLevel = o.LogLevel
		}
	})
}

// app is the wired set of components one command invocation works with.
type app struct {
	cfg      config.RuntimeConfig
	logger   *log.Logger
	logClose io.Closer
	store    *store.Store
	engine   *scheduler.Engine
	notifier *scheduler.Notifier
	// loadErr is set when persisted data could not be read and the store
	// started empty.
	loadErr error
}

func openApp(ctx context.Context, opts *GlobalOptions, withScheduler bool) (*app, error) {
	cfg, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	logger, logClose, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}
	backend, err := storage.Open(cfg.StorageKind(), cfg.DataDir)
	if err != nil {
		_ = logClose.Close()
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, logClose: logClose}
	a.store = store.New(backend, store.Options{Logger: logger.WithPrefix("store")})
	if err := a.store.Load(ctx); err != nil {
		a.loadErr = err
	}

	if withScheduler {
		a.engine = scheduler.NewEngine(cfg.SchedulerBuffer)
		a.notifier = scheduler.NewNotifier(a.engine, scheduler.NotifierOptions{Logger: logger.WithPrefix("scheduler")})
		a.store.SetNotifier(a.notifier)
		a.engine.Start()
		n, err := a.notifier.RescheduleAll(a.store.All())
		if err != nil {
			logger.Warn("some alarms were not scheduled", "err", err)
		}
		logger.Info("scheduler started", "alarms", n)
	}
	logger.Debug("app ready", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	return a, nil
}

func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if a.engine != nil {
		a.engine.Stop()
	}
	err := a.store.Close(ctx)
	if cerr := a.logClose.Close(); err == nil {
		err = cerr
	}
	return err
}

// wait blocks until the write behind out is on disk.
func wait(ctx context.Context, out store.Outcome) error {
	ctx, cancel := context.WithTimeout(ctx, closeTimeout)
	defer cancel()
	return out.Wait(ctx)
}

// parseDayArg accepts YYYY-MM-DD, today, tomorrow and yesterday.
func parseDayArg(raw string, now time.Time) (model.Day, error) {
	today := model.DayOf(now)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	return model.ParseDay(raw)
}

// setStamp applies "YYYY-MM-DD HH:MM" or a bare "HH:MM" to a deadline or
// reminder.
func setStamp(t *model.Task, dateField, timeField model.Field, raw string) error {
	parts := strings.Fields(raw)
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return t.Set(timeField, parts[0])
	case 2:
		if err := t.Set(dateField, parts[0]); err != nil {
			return err
		}
		return t.Set(timeField, parts[1])
	default:
		return fmt.Errorf("%w: %q", model.ErrInvalidValue, raw)
	}
}

func loadWarning(a *app) error {
	if a.loadErr == nil {
		return nil
	}
	if errors.Is(a.loadErr, storage.ErrCorrupt) {
		return fmt.Errorf("stored tasks are unreadable, starting empty: %w", a.loadErr)
	}
	return fmt.Errorf("could not load tasks, starting empty: %w", a.loadErr)
}

// requireLoaded keeps one-shot commands from overwriting data that failed
// to load.
func (a *app) requireLoaded() error {
	if a.loadErr != nil {
		return fmt.Errorf("refusing to modify tasks: %w", a.loadErr)
	}
	return nil
}
