package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/ideate/internal/config"
	"github.com/abhisek/ideate/internal/ideation"
	"github.com/abhisek/ideate/internal/llm"
	"github.com/abhisek/ideate/internal/metrics"
	"github.com/abhisek/ideate/internal/store"
)

// deps is everything a generating subcommand needs.
type deps struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *store.Store // nil unless history is on
	metrics  *metrics.Collector
	provider llm.Provider
	service  *ideation.Service

	logCloser   io.Closer
	stopMetrics context.CancelFunc
	metricsDone chan error
}

// buildDeps loads configuration and wires the provider, worker and
// service. Console logs go to logOut. Close must be called when done.
func buildDeps(cmd *cobra.Command, logOut io.Writer) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, logCloser, err := config.NewLogger(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, log: log, logCloser: logCloser}

	opts := llm.Options{Log: log}
	var svcOpts []ideation.ServiceOption

	if cfg.Store.Enabled {
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		d.store = st
		opts.EventRepo = st.EventRepo()
		svcOpts = append(svcOpts, ideation.WithRunRepo(st.RunRepo()))
		log.Debug().Str("path", dbPath).Msg("run history enabled")
	}

	if addr := cfg.Metrics.Addr; addr != "" {
		d.metrics = metrics.New()
		opts.Metrics = d.metrics

		ctx, cancel := context.WithCancel(context.Background())
		d.stopMetrics = cancel
		d.metricsDone = make(chan error, 1)
		go func() { d.metricsDone <- metrics.Serve(ctx, addr, d.metrics) }()
		log.Info().Str("addr", addr).Msg("serving metrics")
	}

	provider, err := llm.NewProvider(cfg.LLM(), opts)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.provider = provider

	worker := ideation.NewWorker(provider, cfg.Ideation(),
		ideation.WithLogger(log),
		ideation.WithMetrics(d.metrics),
	)
	svcOpts = append(svcOpts,
		ideation.WithServiceLogger(log),
		ideation.WithHost(cfg.Ollama.Host),
	)
	d.service = ideation.NewService(provider, worker, svcOpts...)

	return d, nil
}

// Close stops the metrics server and releases the store and log file.
func (d *deps) Close() error {
	var errs []error
	if d.stopMetrics != nil {
		d.stopMetrics()
		if err := <-d.metricsDone; err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if d.logCloser != nil {
		if err := d.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}
