package invoke

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ShayCichocki/wayfind/internal/cache"
	"github.com/ShayCichocki/wayfind/internal/model"
	"github.com/ShayCichocki/wayfind/pkg/models"
)

// chainFunc adapts a function to the Invocable interface.
type chainFunc func(ctx context.Context, input map[string]any) (model.Response, error)

func (f chainFunc) Invoke(ctx context.Context, input map[string]any) (model.Response, error) {
	return f(ctx, input)
}

// newTestInvoker builds an Invoker with a fast backoff, a fresh cache, and
// a pinned clock so cache keys repeat across calls within a test.
func newTestInvoker(t *testing.T, fallback model.Client) *Invoker {
	t.Helper()
	svc := cache.New(t.TempDir())
	t.Cleanup(func() { svc.Close() })

	iv := New(svc, fallback)
	iv.baseDelay = time.Millisecond
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iv.now = func() time.Time { return fixed }
	return iv
}

func TestSafeInvokeReturnsChainResult(t *testing.T) {
	iv := newTestInvoker(t, nil)

	got := iv.SafeInvoke(context.Background(), chainFunc(func(ctx context.Context, input map[string]any) (model.Response, error) {
		return model.PlainText("chain result"), nil
	}), map[string]any{"goal": "g"}, "default")

	if got != "chain result" {
		t.Errorf("SafeInvoke = %q, want %q", got, "chain result")
	}
}

func TestSafeInvokeCachesSuccessfulResults(t *testing.T) {
	iv := newTestInvoker(t, nil)

	calls := 0
	chain := chainFunc(func(ctx context.Context, input map[string]any) (model.Response, error) {
		calls++
		return model.PlainText("cached once"), nil
	})

	input := map[string]any{"goal": "g", "task": "t"}
	first := iv.SafeInvoke(context.Background(), chain, input, "default")
	second := iv.SafeInvoke(context.Background(), chain, input, "default")

	if first != second || first != "cached once" {
		t.Errorf("results differ: %q then %q", first, second)
	}
	if calls != 1 {
		t.Errorf("chain invoked %d times, want 1 (second call should hit cache)", calls)
	}
}

func TestSafeInvokeRetriesTransientFailures(t *testing.T) {
	iv := newTestInvoker(t, nil)

	calls := 0
	got := iv.SafeInvoke(context.Background(), chainFunc(func(ctx context.Context, input map[string]any) (model.Response, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("rate limited")
		}
		return model.PlainText("recovered"), nil
	}), map[string]any{"goal": "g"}, "default")

	if got != "recovered" {
		t.Errorf("SafeInvoke = %q, want %q", got, "recovered")
	}
	if calls != 3 {
		t.Errorf("chain invoked %d times, want 3", calls)
	}
}

func TestSafeInvokeFallsBackToDirectCall(t *testing.T) {
	fallback := model.NewMockClient(model.PlainText("direct answer"))
	iv := newTestInvoker(t, fallback)

	got := iv.SafeInvoke(context.Background(), chainFunc(func(ctx context.Context, input map[string]any) (model.Response, error) {
		return nil, errors.New("chain broken")
	}), map[string]any{"goal": "g"}, "default")

	if got != "direct answer" {
		t.Errorf("SafeInvoke = %q, want %q", got, "direct answer")
	}

	reqs := fallback.Calls()
	if len(reqs) != 1 {
		t.Fatalf("fallback called %d times, want 1", len(reqs))
	}
	if len(reqs[0].Messages) != 2 {
		t.Errorf("fallback exchange has %d messages, want 2 (system note + stringified input)", len(reqs[0].Messages))
	}
}

func TestSafeInvokeNeverFails(t *testing.T) {
	// Chain and fallback both permanently broken: the default comes back
	// and nothing panics.
	fallback := model.NewMockClient().FailWith(errors.New("also broken"))
	iv := newTestInvoker(t, fallback)

	got := iv.SafeInvoke(context.Background(), chainFunc(func(ctx context.Context, input map[string]any) (model.Response, error) {
		return nil, errors.New("always fails")
	}), map[string]any{"goal": "g"}, "the default")

	if got != "the default" {
		t.Errorf("SafeInvoke = %q, want the default value", got)
	}
}

func TestSafeInvokeNoFallbackClient(t *testing.T) {
	iv := newTestInvoker(t, nil)

	got := iv.SafeInvoke(context.Background(), chainFunc(func(ctx context.Context, input map[string]any) (model.Response, error) {
		return nil, errors.New("fails")
	}), map[string]any{"goal": "g"}, "default")

	if got != "default" {
		t.Errorf("SafeInvoke = %q, want default", got)
	}
}

func TestSafeInvokeLatchesOnCorruptionClassErrors(t *testing.T) {
	svc := cache.New(t.TempDir())
	t.Cleanup(func() { svc.Close() })
	iv := New(svc, nil)
	iv.baseDelay = time.Millisecond

	iv.SafeInvoke(context.Background(), chainFunc(func(ctx context.Context, input map[string]any) (model.Response, error) {
		return nil, errors.New("storage engine internal state is undefined")
	}), map[string]any{"goal": "g"}, "default")

	if !svc.MemoryOnly() {
		t.Error("corruption-class chain error did not latch the cache into memory-only mode")
	}
}

func TestWithTimeContext(t *testing.T) {
	iv := newTestInvoker(t, nil)

	in := map[string]any{"goal": "g"}
	out := iv.withTimeContext(in)

	if _, ok := in["timeContext"]; ok {
		t.Error("withTimeContext mutated its argument")
	}

	tc, ok := out["timeContext"].(map[string]any)
	if !ok {
		t.Fatal("timeContext record missing")
	}
	if tc["date"] != "2026-03-01" {
		t.Errorf("date = %v, want 2026-03-01", tc["date"])
	}
	if tc["time"] != "12:00" {
		t.Errorf("time = %v, want 12:00", tc["time"])
	}
	if tc["timezone"] != "UTC" {
		t.Errorf("timezone = %v, want UTC", tc["timezone"])
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	settings := models.ModelSettings{Model: "claude-sonnet-4-20250514", Language: "French"}

	input := WithSettings(map[string]any{"goal": "g"}, settings)
	got := SettingsFrom(input)

	if got != settings {
		t.Errorf("SettingsFrom = %+v, want %+v", got, settings)
	}

	if SettingsFrom(map[string]any{}) != (models.ModelSettings{}) {
		t.Error("SettingsFrom on empty input should return zero settings")
	}
}
