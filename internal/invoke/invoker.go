package invoke

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ShayCichocki/wayfind/internal/cache"
	"github.com/ShayCichocki/wayfind/internal/model"
	"github.com/ShayCichocki/wayfind/pkg/models"
)

const (
	// maxAttempts is the primary-chain attempt ceiling inside SafeInvoke.
	maxAttempts = 3
	// defaultBaseDelay is the initial backoff delay between attempts.
	defaultBaseDelay = time.Second
)

// settingsKey is where callers place the session's ModelSettings in the
// invocation input. The settings participate in the cache fingerprint and
// feed the direct-call fallback.
const settingsKey = "modelSettings"

// fallbackSystemNote primes the direct-call fallback when the structured
// chain has failed all its attempts.
const fallbackSystemNote = "You are a helpful assistant inside an autonomous agent loop. " +
	"The structured request below could not be processed normally; answer it directly and concisely."

// Invocable is a structured model call: a prompt chain that turns the
// invocation input into a completion.
type Invocable interface {
	Invoke(ctx context.Context, input map[string]any) (model.Response, error)
}

// Invoker makes model calls survive transient failures. Every call runs
// cache lookup, bounded retry of the primary chain, a direct-model
// fallback, and a best-effort cache store, strictly in that order.
type Invoker struct {
	cache     *cache.Service
	fallback  model.Client
	attempts  int
	baseDelay time.Duration
	now       func() time.Time
}

// New creates an Invoker backed by the given cache and fallback client.
func New(cacheSvc *cache.Service, fallback model.Client) *Invoker {
	return &Invoker{
		cache:     cacheSvc,
		fallback:  fallback,
		attempts:  maxAttempts,
		baseDelay: defaultBaseDelay,
		now:       time.Now,
	}
}

// SetBaseDelay overrides the initial backoff delay. Intended for tests
// that exercise failure paths without real sleeps.
func (iv *Invoker) SetBaseDelay(d time.Duration) {
	iv.baseDelay = d
}

// SafeInvoke executes chain with the given input and never fails: it
// returns a cached response, a fresh result, a fallback result, or
// defaultValue, in that order of preference. Side effects (cache writes,
// cache mode downgrades) are best effort and never surface to the caller.
func (iv *Invoker) SafeInvoke(ctx context.Context, chain Invocable, input map[string]any, defaultValue string) string {
	input = iv.withTimeContext(input)
	key := cache.CreateKey(input)

	if cached, ok := iv.cache.Get(ctx, key); ok {
		return cached
	}

	resp, err := Do(ctx, iv.attempts, iv.baseDelay, func(ctx context.Context) (model.Response, error) {
		return chain.Invoke(ctx, input)
	})
	if err != nil {
		log.Printf("[invoke] chain failed after %d attempts: %v", iv.attempts, err)
		iv.observe(err)

		resp, err = iv.directInvoke(ctx, input)
		if err != nil {
			log.Printf("[invoke] fallback call failed, returning default: %v", err)
			iv.observe(err)
			return defaultValue
		}
	}

	result := model.ExtractText(resp)
	iv.cache.Set(ctx, key, stringify(input), result)
	return result
}

// directInvoke bypasses the structured chain with a minimal two-message
// exchange against the model.
func (iv *Invoker) directInvoke(ctx context.Context, input map[string]any) (model.Response, error) {
	if iv.fallback == nil {
		return nil, fmt.Errorf("no fallback client configured")
	}

	return iv.fallback.Complete(ctx, model.Request{
		Messages: []model.Message{
			{Role: "system", Content: fallbackSystemNote},
			{Role: "user", Content: stringify(input)},
		},
		Settings: SettingsFrom(input),
	})
}

// observe routes corruption-class errors to the cache's one-way latch.
// The storage engine's failure can surface through any layer that touched
// the cache, so the check happens here as well as inside the cache itself.
func (iv *Invoker) observe(err error) {
	if cache.IsCorruption(err) {
		iv.cache.ForceMemoryOnlyMode()
	}
}

// withTimeContext returns a copy of input augmented with the current
// date, time, and timezone, making cache keys and prompts time-sensitive.
func (iv *Invoker) withTimeContext(input map[string]any) map[string]any {
	now := iv.now()
	zone, _ := now.Zone()

	out := make(map[string]any, len(input)+1)
	for k, v := range input {
		out[k] = v
	}
	out["timeContext"] = map[string]any{
		"date":     now.Format("2006-01-02"),
		"time":     now.Format("15:04"),
		"timezone": zone,
	}
	return out
}

// SettingsFrom extracts the session ModelSettings from an invocation
// input, returning the zero value when absent.
func SettingsFrom(input map[string]any) models.ModelSettings {
	if s, ok := input[settingsKey].(models.ModelSettings); ok {
		return s
	}
	return models.ModelSettings{}
}

// WithSettings returns a copy of input carrying the session settings under
// the key SafeInvoke and the fallback path expect.
func WithSettings(input map[string]any, settings models.ModelSettings) map[string]any {
	out := make(map[string]any, len(input)+1)
	for k, v := range input {
		out[k] = v
	}
	out[settingsKey] = settings
	return out
}

// stringify renders an input best-effort for prompts and cache records.
func stringify(input map[string]any) string {
	b, err := json.Marshal(input)
	if err != nil {
		return fmt.Sprintf("%v", input)
	}
	return string(b)
}
