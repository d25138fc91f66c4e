package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/macrorun/internal/adapters/driven/automation/ole"
	"github.com/custodia-labs/macrorun/internal/adapters/driven/automation/simulated"
	"github.com/custodia-labs/macrorun/internal/adapters/driven/config/file"
	"github.com/custodia-labs/macrorun/internal/adapters/driven/events"
	"github.com/custodia-labs/macrorun/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/macrorun/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/macrorun/internal/adapters/driven/workbook"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/cli"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
	"github.com/custodia-labs/macrorun/internal/core/services"
	"github.com/custodia-labs/macrorun/internal/logger"
)

// bootstrap wires the driven adapters into the core services.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		logger.Warn("invalid settings, using defaults where needed: %v", err)
		defaults := settingsService.GetDefaults()
		if settings.Automation.ProgID == "" {
			settings.Automation.ProgID = defaults.Automation.ProgID
		}
		if settings.History.Keep < 1 {
			settings.History.Keep = defaults.History.Keep
		}
	}

	if settings.Log.Verbose || opts.Verbose {
		logger.SetVerbose(true)
	}
	if settings.Log.File != "" {
		if err := logger.OpenFile(settings.Log.File); err != nil {
			logger.Warn("%v", err)
		}
	}

	var host driven.AutomationHost
	if opts.DryRun || settings.Automation.DryRun {
		host = simulated.NewHost(simulated.Options{})
	} else {
		host = ole.NewHost(settings.Automation.ProgID)
	}

	fanout := events.NewFanout(events.NewLogSink())
	sessions := services.NewSessionManager(host, fanout)

	closers := []func() error{logger.Close}
	var runs driven.RunStore = memory.NewRunStore()
	if settings.History.Enabled {
		store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
		if err != nil {
			logger.Warn("run history unavailable, keeping it in memory: %v", err)
		} else {
			runs = store.RunStore()
			closers = append(closers, store.Close)
		}
	}

	pipeline := services.NewPipeline(sessions, workbook.NewInspector(), runs, fanout, services.PipelineOptions{
		Preflight:   settings.Pipeline.Preflight,
		HistoryKeep: settings.History.Keep,
	})

	return &cli.Services{
		Sessions: sessions,
		Pipeline: pipeline,
		History:  services.NewHistoryService(runs),
		Settings: settingsService,
		Events:   fanout,
		Close: func() error {
			var errs []error
			for i := len(closers) - 1; i >= 0; i-- {
				errs = append(errs, closers[i]())
			}
			return errors.Join(errs...)
		},
	}, nil
}
