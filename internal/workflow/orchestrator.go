// Package workflow runs a learning session through the fixed chain of
// model-backed steps and dispatches the supported workflow variants.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/mathsim/internal/invoker"
	"github.com/abhisek/mathsim/internal/llm"
	"github.com/abhisek/mathsim/internal/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abhisek/mathsim/internal/workflow"

// Recorder receives step and run measurements.
type Recorder interface {
	ObserveStep(step string, d time.Duration)
	ObserveRun(workflowType string, success bool)
}

// Options configures an Orchestrator.
type Options struct {
	// Models overrides the model per step name. Missing entries use the
	// provider's configured model.
	Models   map[string]string
	Logger   zerolog.Logger
	Recorder Recorder
	// Tracer defaults to the global tracer provider.
	Tracer trace.Tracer
}

// Orchestrator executes sessions. It holds no per-session state and is
// safe for concurrent use; sessions share only the invoker's cache.
type Orchestrator struct {
	invoker  *invoker.Invoker
	models   map[string]string
	logger   zerolog.Logger
	recorder Recorder
	tracer   trace.Tracer
	chain    []*step
}

// New creates an Orchestrator that makes its model calls through iv.
func New(iv *invoker.Invoker, opts Options) *Orchestrator {
	o := &Orchestrator{
		invoker:  iv,
		models:   opts.Models,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		tracer:   opts.Tracer,
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	o.chain = o.buildChain()
	return o
}

func (o *Orchestrator) model(step string) string {
	return o.models[step]
}

// begin starts a run: it assigns a run id, opens the run span and
// attaches a run-scoped logger to the context. The returned func must be
// called with the run's outcome.
func (o *Orchestrator) begin(ctx context.Context, wt session.WorkflowType) (context.Context, func(error)) {
	runID := uuid.NewString()
	start := time.Now()

	ctx = llm.WithRunID(ctx, runID)
	ctx, span := o.tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String("workflow_type", string(wt)),
		attribute.String("run_id", runID),
	))
	logger := o.logger.With().Str("run_id", runID).Str("workflow_type", string(wt)).Logger()
	ctx = logger.WithContext(ctx)

	return ctx, func(err error) {
		defer span.End()
		if o.recorder != nil {
			o.recorder.ObserveRun(string(wt), err == nil)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("workflow run failed")
			return
		}
		logger.Info().Dur("elapsed", time.Since(start)).Msg("workflow run finished")
	}
}

// runChain applies the steps in order, up to the stop point.
func (o *Orchestrator) runChain(ctx context.Context, s *session.State) error {
	last := lastStep(s.StopAfter())
	for i, st := range o.chain {
		if i > last {
			break
		}
		if s.Has(st.field) {
			continue
		}
		if err := o.runStep(ctx, s, st); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) runStep(ctx context.Context, s *session.State, st *step) error {
	ctx, span := o.tracer.Start(ctx, "workflow.step."+st.name)
	defer span.End()
	ctx = llm.WithPurpose(ctx, st.name)

	start := time.Now()
	ran, err := st.run(ctx, s, st)
	elapsed := time.Since(start)

	logger := zerolog.Ctx(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Str("step", st.name).Msg("step failed")
		return err
	}
	span.SetAttributes(attribute.Bool("skipped", !ran))
	if !ran {
		logger.Debug().Str("step", st.name).Msg("step skipped")
		return nil
	}

	if o.recorder != nil {
		o.recorder.ObserveStep(st.name, elapsed)
	}
	logger.Debug().Str("step", st.name).Dur("elapsed", elapsed).Msg("step finished")
	return nil
}

// callPrompt sends a single JSON prompt for st and records whether the
// answer came from the cache. The answer must be an object.
func (o *Orchestrator) callPrompt(ctx context.Context, s *session.State, st *step, prompt string, cached bool) (map[string]any, error) {
	res, err := o.invoker.InvokeWithPrompt(ctx, prompt, o.model(st.name), st.temperature, invoker.UseCache(cached))
	if err != nil {
		return nil, stepErr(st, err)
	}
	m, ok := res.Map()
	if !ok {
		return nil, &EmptyGenerationError{Step: st.name, Reason: fmt.Sprintf("expected a JSON object, got %T", res.Value)}
	}
	s.RecordCacheStatus(st.cacheKey, res.Cached)
	return m, nil
}

func stepErr(st *step, err error) error {
	return fmt.Errorf("%s: %w", st.name, err)
}
