package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/mathsim/internal/store"
	"github.com/rs/zerolog"
)

// CallObserver receives one notification per model call. The
// observability package implements it with prometheus counters.
type CallObserver interface {
	ObserveModelCall(purpose string, success bool, latency time.Duration)
}

// LoggingProvider is a decorator that records every model request as an
// event in the store and reports it to an optional observer.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	observer  CallObserver
	logger    zerolog.Logger
}

// LoggingOption customizes a LoggingProvider.
type LoggingOption func(*LoggingProvider)

// WithObserver reports every call to o.
func WithObserver(o CallObserver) LoggingOption {
	return func(l *LoggingProvider) { l.observer = o }
}

// WithLogger sets the logger used for call summaries and store failures.
func WithLogger(logger zerolog.Logger) LoggingOption {
	return func(l *LoggingProvider) { l.logger = logger }
}

// WithLogging wraps a Provider with event logging. repo may be nil, in
// which case only the logger and observer see the call.
func WithLogging(p Provider, repo store.EventRepo, opts ...LoggingOption) Provider {
	l := &LoggingProvider{inner: p, eventRepo: repo, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latency := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:    l.inner.ModelID(),
		Model:       modelFor(req, l.inner.ModelID()),
		Purpose:     purpose,
		RunID:       RunIDFrom(ctx),
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	ev := l.logger.Debug()
	if err != nil {
		ev = l.logger.Warn().Err(err)
	}
	ev.Str("purpose", purpose).
		Str("model", data.Model).
		Str("run_id", data.RunID).
		Int64("latency_ms", data.LatencyMs).
		Int("input_tokens", data.InputTokens).
		Int("output_tokens", data.OutputTokens).
		Msg("model call")

	if l.observer != nil {
		l.observer.ObserveModelCall(purpose, err == nil, latency)
	}

	// A failed event write never fails the call itself.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			l.logger.Warn().Err(logErr).Msg("failed to record model call event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.Model != "" {
		fmt.Fprintf(&b, "[model: %s, temperature: %.2f, json: %v]\n\n", req.Model, req.Temperature, req.JSONMode)
	}

	system, msgs := splitSystem(req)
	if system != "" {
		b.WriteString("[system]\n")
		b.WriteString(system)
		b.WriteString("\n\n")
	}

	for _, m := range msgs {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
