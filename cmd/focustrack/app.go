package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
	"github.com/hammamikhairi/focustrack/internal/settings"
	"github.com/hammamikhairi/focustrack/internal/storage"
	"github.com/hammamikhairi/focustrack/internal/timer"
)

const shutdownTimeout = 5 * time.Second

// app is the wired timer with its settings and persistence.
type app struct {
	log       *logger.Logger
	settings  *settings.Provider
	history   domain.SessionHistory // nil when sessions go to the API
	engine    *timer.Engine
	closeSink func() error
}

// openSettings loads the settings file into a provider that writes back
// to it. A broken file is reported and replaced by defaults in memory.
func openSettings(opts *options) (*settings.Provider, error) {
	file, err := settings.NewFileStore(appName, opts.configPath)
	if err != nil {
		return nil, err
	}
	initial, err := file.Load()
	if err != nil {
		opts.log.Warn("settings: %v (using defaults)", err)
		initial = domain.DefaultSettings()
	}
	log := opts.log.Named("settings")
	log.Debug("loaded %s", file.Path())
	return settings.NewProvider(initial, log, settings.WithFile(file)), nil
}

func storageConfig(opts *options) (storage.Config, error) {
	dataDir, err := opts.resolveDataDir()
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		APIURL:   os.Getenv(envAPIURL),
		APIToken: os.Getenv(envAPIToken),
		DataDir:  dataDir,
		Guest:    opts.guest,
	}, nil
}

func openSink(opts *options) (domain.SessionSink, func() error, error) {
	log := opts.log.Named("sessions")
	if opts.noPersist {
		log.Info("sessions kept in memory only")
		return storage.NewMemorySink(log), func() error { return nil }, nil
	}
	cfg, err := storageConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	return storage.Select(cfg, log)
}

// openApp wires settings, the session sink and the engine, and launches
// the engine and the settings watcher under ctx.
func openApp(ctx context.Context, opts *options, engineOpts ...timer.Option) (*app, error) {
	prov, err := openSettings(opts)
	if err != nil {
		return nil, err
	}

	sink, closeSink, err := openSink(opts)
	if err != nil {
		return nil, err
	}
	history, _ := sink.(domain.SessionHistory)

	eng := timer.New(prov, sink, opts.log.Named("timer"), engineOpts...)
	eng.Launch(ctx)
	if err := prov.Watch(ctx); err != nil {
		opts.log.Warn("settings file will not be watched: %v", err)
	}

	return &app{
		log:       opts.log,
		settings:  prov,
		history:   history,
		engine:    eng,
		closeSink: closeSink,
	}, nil
}

// Close stops the engine, waits briefly for queued sessions and releases
// the sink.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.engine.Close(ctx); err != nil {
		firstErr = fmt.Errorf("flushing sessions (%d unsaved): %w", a.engine.PendingRecords(), err)
	}
	if err := a.closeSink(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
