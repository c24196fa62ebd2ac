package cmd

import (
	"errors"
	"fmt"

	"github.com/abhisek/mathsim/internal/cache"
	"github.com/abhisek/mathsim/internal/config"
	"github.com/abhisek/mathsim/internal/improvement"
	"github.com/abhisek/mathsim/internal/invoker"
	"github.com/abhisek/mathsim/internal/llm"
	"github.com/abhisek/mathsim/internal/logging"
	"github.com/abhisek/mathsim/internal/observability"
	"github.com/abhisek/mathsim/internal/store"
	"github.com/abhisek/mathsim/internal/workflow"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newProvider is replaced in tests.
var newProvider = llm.NewProvider

// app holds the dependencies shared by the commands that call a model.
type app struct {
	cfg         config.Config
	logger      zerolog.Logger
	metrics     *observability.Metrics
	invoker     *invoker.Invoker
	orch        *workflow.Orchestrator
	improvement *improvement.Chain
	closers     []func() error
}

type appOptions struct {
	// cacheObserver receives cache outcomes in addition to the metrics.
	cacheObserver invoker.CacheObserver
}

// newApp loads configuration and builds the provider chain, the shared
// invoker and the orchestrator. The event store is optional: when it
// cannot be opened, calls are still made but not recorded.
func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log)
	a := &app{cfg: cfg, logger: logger, metrics: observability.NewMetrics()}

	deps := llm.Deps{Observer: a.metrics, Logger: logger}
	if st, err := openStore(cmd, cfg); err != nil {
		logger.Warn().Err(err).Msg("event store unavailable, model calls will not be recorded")
	} else {
		deps.EventRepo = st.EventRepo()
		a.closers = append(a.closers, st.Close)
	}

	provider, err := newProvider(cmd.Context(), cfg.LLM, deps)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("model provider: %w", err)
	}

	var observer invoker.CacheObserver = a.metrics
	if opts.cacheObserver != nil {
		observer = cacheObservers{a.metrics, opts.cacheObserver}
	}
	a.invoker = invoker.New(provider, invoker.Options{
		Cache:         cache.New(cfg.Cache.Bounds()),
		CacheDisabled: !cfg.Cache.Enabled,
		Observer:      observer,
		Logger:        logger,
	})
	a.orch = workflow.New(a.invoker, workflow.Options{
		Models:   cfg.Workflow.Models,
		Logger:   logger,
		Recorder: a.metrics,
	})
	a.improvement = improvement.New(a.invoker, improvement.Config{Model: cfg.Workflow.ImprovementModel}, logger)
	return a, nil
}

// Close releases the store.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func openStore(cmd *cobra.Command, cfg config.Config) (*store.Store, error) {
	path, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	return store.Open(path)
}

type cacheObservers []invoker.CacheObserver

func (c cacheObservers) ObserveCache(hit bool) {
	for _, o := range c {
		o.ObserveCache(hit)
	}
}
