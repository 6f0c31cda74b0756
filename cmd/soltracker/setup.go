package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/programme-lv/soltracker/conf"
	"github.com/programme-lv/soltracker/distrib"
	sthttp "github.com/programme-lv/soltracker/http"
	"github.com/programme-lv/soltracker/logger"
	"github.com/programme-lv/soltracker/soltrack"
	"github.com/programme-lv/soltracker/solpath"
)

type app struct {
	cfg     conf.Config
	logger  *slog.Logger
	tracker *soltrack.Tracker
	status  *sthttp.StatusServer
	close   func()
}

func setup(ctx context.Context, flags *rootFlags, logOut io.Writer) (*app, error) {
	cfg, err := conf.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.root != "" {
		cfg.Root = flags.root
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.dryRun {
		cfg.Sink.Kinds = []string{distrib.KindLog}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lvl, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)

	parser, err := solpath.NewParser(cfg.Pattern)
	if err != nil {
		return nil, err
	}

	sink, err := distrib.New(ctx, cfg.Sink, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up sinks: %w", err)
	}
	log.Info("solution sinks ready", "sinks", sink.Names())

	scanner := soltrack.NewScanner(os.DirFS(cfg.Root), ".", parser, cfg.Workers)
	tracker := soltrack.NewTracker(scanner, sink, log.With("root", cfg.Root))

	return &app{
		cfg:     cfg,
		logger:  log,
		tracker: tracker,
		status:  sthttp.NewStatusServer(tracker, cfg.Http.AllowedOrigins, lvl),
		close:   sink.Close,
	}, nil
}
