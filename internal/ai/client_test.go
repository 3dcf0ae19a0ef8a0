package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ensa-hoceima/hr-assistant/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeProvider struct {
	mu       sync.Mutex
	requests []Request
	output   string
	err      error
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) Generate(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.output, f.err
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestGenerateTextUsesCache(t *testing.T) {
	provider := &fakeProvider{output: "  Connection Successful \n"}
	m := metrics.New()
	client := NewClient(provider, WithLogger(zap.NewNop()), WithMetrics(m))

	for i := 0; i < 3; i++ {
		got, err := client.GenerateText(context.Background(), "Reply with 'Connection Successful'", 20, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Connection Successful" {
			t.Fatalf("expected trimmed output, got %q", got)
		}
	}

	if provider.calls() != 1 {
		t.Fatalf("expected a single upstream call, got %d", provider.calls())
	}
	if hits := testutil.ToFloat64(m.AIRequests.WithLabelValues("fake", metrics.OutcomeCacheHit)); hits != 2 {
		t.Fatalf("expected 2 cache hits, got %v", hits)
	}
}

func TestGenerateTextKeysOnParameters(t *testing.T) {
	provider := &fakeProvider{output: "ok"}
	client := NewClient(provider)

	ctx := context.Background()
	_, _ = client.GenerateText(ctx, "prompt", 100, 0.3)
	_, _ = client.GenerateText(ctx, "prompt", 200, 0.3)
	_, _ = client.GenerateText(ctx, "prompt", 100, 0.4)

	if provider.calls() != 3 {
		t.Fatalf("expected distinct keys per token limit and temperature, got %d calls", provider.calls())
	}
	if provider.requests[1].MaxTokens != 200 || provider.requests[2].Temperature != 0.4 {
		t.Fatalf("parameters were not forwarded: %+v", provider.requests)
	}
}

func TestGenerateTextPrefixCollision(t *testing.T) {
	provider := &fakeProvider{output: "first"}
	client := NewClient(provider)

	shared := strings.Repeat("a", CachePrefixLength)
	first, _ := client.GenerateText(context.Background(), shared+" employee one", 50, 0.5)
	provider.output = "second"
	second, _ := client.GenerateText(context.Background(), shared+" employee two", 50, 0.5)

	if first != second {
		t.Fatalf("prompts sharing the key prefix are expected to share the cached value")
	}
	if provider.calls() != 1 {
		t.Fatalf("expected one call, got %d", provider.calls())
	}
}

func TestGenerateTextColdStartIsNotCached(t *testing.T) {
	provider := &fakeProvider{err: &ProviderError{Provider: "fake", StatusCode: http.StatusServiceUnavailable, Message: "loading"}}
	core, observed := observer.New(zapcore.ErrorLevel)
	client := NewClient(provider, WithLogger(zap.New(core)))

	_, err := client.GenerateText(context.Background(), "prompt", 10, 0.1)
	if !IsColdStart(err) {
		t.Fatalf("expected cold start, got %v", err)
	}

	var perr *ProviderError
	if !errors.As(err, &perr) || perr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected provider error to be reachable, got %v", err)
	}

	provider.err = nil
	provider.output = "warm"
	got, err := client.GenerateText(context.Background(), "prompt", 10, 0.1)
	if err != nil || got != "warm" {
		t.Fatalf("expected second call to reach provider, got %q, %v", got, err)
	}

	if observed.Len() != 1 {
		t.Fatalf("expected one error log, got %d", observed.Len())
	}
	if observed.All()[0].ContextMap()["ai_provider"] != "fake" {
		t.Fatalf("expected provider field on log entry")
	}
}

func TestGenerateTextRejectsEmptyPrompt(t *testing.T) {
	provider := &fakeProvider{output: "x"}
	if _, err := NewClient(provider).GenerateText(context.Background(), "   ", 10, 0.5); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if provider.calls() != 0 {
		t.Fatalf("expected no upstream call")
	}
}

func TestMemoryCacheBounds(t *testing.T) {
	ctx := context.Background()

	sized := NewMemoryCache(2, time.Hour)
	sized.Set(ctx, "a", "1")
	sized.Set(ctx, "b", "2")
	sized.Set(ctx, "c", "3")
	if _, ok := sized.Get(ctx, "a"); ok {
		t.Fatal("expected oldest entry to be evicted")
	}
	if sized.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", sized.Len())
	}

	expiring := NewMemoryCache(10, 20*time.Millisecond)
	expiring.Set(ctx, "k", "v")
	time.Sleep(80 * time.Millisecond)
	if _, ok := expiring.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestCacheKey(t *testing.T) {
	key := CacheKey("bytez", Request{Prompt: "hello", MaxTokens: 1000, Temperature: 0.3})
	if key != "bytez_hello_1000_0.3" {
		t.Fatalf("unexpected key %q", key)
	}

	long := strings.Repeat("é", CachePrefixLength+20)
	key = CacheKey("hf", Request{Prompt: long, MaxTokens: 1})
	if want := "hf_" + strings.Repeat("é", CachePrefixLength) + "_1_0"; key != want {
		t.Fatalf("expected rune-based prefix, got %q", key)
	}
}
