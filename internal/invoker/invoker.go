// Package invoker wraps every model call made by the workflows in a
// response-cache lookup and normalizes the result into JSON-like data.
package invoker

import (
	"context"
	"fmt"

	"github.com/abhisek/mathsim/internal/cache"
	"github.com/abhisek/mathsim/internal/llm"
	"github.com/rs/zerolog"
)

// Handler is a generic callable whose result is cached by name and
// arguments. The result may be any shape NormalizePayload accepts.
type Handler func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

// CacheObserver is notified of every cache probe.
type CacheObserver interface {
	ObserveCache(hit bool)
}

// Result is the outcome of one invocation.
type Result struct {
	// Value is the normalized payload. For text calls it is a string.
	Value any
	// Cached reports whether Value was served from the response cache.
	Cached bool
}

// Map returns Value when it is a mapping.
func (r Result) Map() (map[string]any, bool) {
	m, ok := r.Value.(map[string]any)
	return m, ok
}

// Options configures an Invoker.
type Options struct {
	// Cache is the shared response cache. A nil cache disables caching.
	Cache *cache.ResponseCache
	// CacheDisabled turns caching off process-wide.
	CacheDisabled bool
	Observer      CacheObserver
	Logger        zerolog.Logger
}

// Invoker is safe for concurrent use; it holds no per-call state.
type Invoker struct {
	provider llm.Provider
	cache    *cache.ResponseCache
	enabled  bool
	observer CacheObserver
	logger   zerolog.Logger
}

// New creates an Invoker over provider.
func New(provider llm.Provider, opts Options) *Invoker {
	return &Invoker{
		provider: provider,
		cache:    opts.Cache,
		enabled:  opts.Cache != nil && !opts.CacheDisabled,
		observer: opts.Observer,
		logger:   opts.Logger,
	}
}

// CacheEnabled reports whether the process-wide cache switch is on.
func (iv *Invoker) CacheEnabled() bool {
	return iv.enabled
}

// CallOption adjusts a single invocation.
type CallOption func(*callOptions)

type callOptions struct {
	useCache bool
}

// UseCache toggles the cache for one call. Calls use the cache by default.
func UseCache(use bool) CallOption {
	return func(o *callOptions) { o.useCache = use }
}

func resolve(opts []CallOption) callOptions {
	o := callOptions{useCache: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Invoke runs a named handler through the cache.
func (iv *Invoker) Invoke(ctx context.Context, name string, h Handler, args []any, kwargs map[string]any, opts ...CallOption) (Result, error) {
	o := resolve(opts)
	key := ""
	if iv.enabled && o.useCache {
		key = cache.HandlerKey(name, args, kwargs)
		if v, ok := iv.lookup(key, name); ok {
			return Result{Value: v, Cached: true}, nil
		}
	}

	payload, err := h(ctx, args, kwargs)
	if err != nil {
		return Result{}, err
	}
	normalized, err := NormalizePayload(payload)
	if err != nil {
		return Result{}, fmt.Errorf("normalizing %s result: %w", name, err)
	}

	iv.store(key, normalized)
	return Result{Value: normalized}, nil
}

// InvokeWithPrompt sends a single user prompt in JSON mode.
func (iv *Invoker) InvokeWithPrompt(ctx context.Context, prompt, model string, temperature float64, opts ...CallOption) (Result, error) {
	msgs := []llm.Message{{Role: llm.RoleUser, Content: prompt}}
	return iv.InvokeChat(ctx, msgs, model, temperature, opts...)
}

// InvokeChat sends a message sequence in JSON mode. System messages are
// folded into the system prompt by the provider.
func (iv *Invoker) InvokeChat(ctx context.Context, messages []llm.Message, model string, temperature float64, opts ...CallOption) (Result, error) {
	o := resolve(opts)
	model = iv.modelFor(model)

	key := ""
	if iv.enabled && o.useCache {
		key = cache.ChatKey(messages, model, temperature)
		if v, ok := iv.lookup(key, llm.PurposeFrom(ctx)); ok {
			return Result{Value: v, Cached: true}, nil
		}
	}

	resp, err := iv.provider.Generate(ctx, llm.Request{
		Messages:    messages,
		Model:       model,
		Temperature: temperature,
		JSONMode:    true,
	})
	if err != nil {
		return Result{}, err
	}
	normalized, err := NormalizePayload(resp)
	if err != nil {
		return Result{}, err
	}

	iv.store(key, normalized)
	return Result{Value: normalized}, nil
}

// InvokeText sends a single user prompt and returns the raw reply text.
func (iv *Invoker) InvokeText(ctx context.Context, prompt, model string, temperature float64, opts ...CallOption) (Result, error) {
	o := resolve(opts)
	model = iv.modelFor(model)

	key := ""
	if iv.enabled && o.useCache {
		key = cache.PromptKey(prompt, model, temperature)
		if v, ok := iv.lookup(key, llm.PurposeFrom(ctx)); ok {
			if s, isText := v.(string); isText {
				return Result{Value: s, Cached: true}, nil
			}
		}
	}

	resp, err := iv.provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Model:       model,
		Temperature: temperature,
	})
	if err != nil {
		return Result{}, err
	}
	text := resp.Text()

	iv.store(key, text)
	return Result{Value: text}, nil
}

func (iv *Invoker) modelFor(model string) string {
	if model != "" {
		return model
	}
	return iv.provider.ModelID()
}

func (iv *Invoker) lookup(key, label string) (any, bool) {
	v, ok := iv.cache.Get(key)
	if iv.observer != nil {
		iv.observer.ObserveCache(ok)
	}
	iv.logger.Debug().Str("call", label).Bool("hit", ok).Msg("response cache probe")
	return v, ok
}

func (iv *Invoker) store(key string, v any) {
	if key == "" {
		return
	}
	iv.cache.Set(key, v)
}
