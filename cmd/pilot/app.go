package main

import (
	"context"

	"go.uber.org/zap"

	"pcpilot/internal/ai"
	"pcpilot/internal/config"
	"pcpilot/internal/controller"
	"pcpilot/internal/history"
)

// app bundles the wired components behind each subcommand.
type app struct {
	cfg    *config.Config
	engine *ai.Engine
	store  *history.Store
}

// buildApp loads configuration and wires aliases, controllers, history and
// the engine together. The returned cleanup must run before exit.
func buildApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if simplePrompt {
		cfg.SimplePrompt = true
	}

	aliases := controller.DefaultAliases()
	if cfg.AliasesPath != "" {
		loaded, err := controller.LoadAliases(cfg.AliasesPath)
		if err != nil {
			logger.Warn("failed to load aliases, using defaults", zap.Error(err))
		} else {
			aliases = loaded
			if err := aliases.Watch(ctx, cfg.AliasesPath, logger); err != nil {
				logger.Warn("alias hot-reload unavailable", zap.Error(err))
			}
		}
	}

	router := controller.Default(logger, aliases)

	var store *history.Store
	var recorder ai.Recorder
	if cfg.HistoryPath != "" {
		store, err = history.Open(cfg.HistoryPath, logger)
		if err != nil {
			logger.Warn("history disabled", zap.Error(err))
		} else {
			recorder = store
		}
	}

	factory := ai.NewConfigFactory(cfg, logger)
	engine := ai.NewEngine(factory, cfg.Provider, cfg.SimplePrompt, router, recorder, logger)

	cleanup := func() {
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close history store", zap.Error(err))
			}
		}
	}
	return &app{cfg: cfg, engine: engine, store: store}, cleanup, nil
}
