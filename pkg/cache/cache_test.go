package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/selecttree/pkg/errors"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should never return a hit")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get on empty cache should miss")
	}

	if err := c.Set(ctx, "a", []byte("alpha"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit || string(data) != "alpha" {
		t.Errorf("Get(a) = %q, %v, %v; want alpha hit", data, hit, err)
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"one", "two", "three"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "one"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashValueIgnoresMapOrder(t *testing.T) {
	a := []any{map[string]any{"id": 1, "name": "x", "parent_id": nil}}
	b := []any{map[string]any{"parent_id": nil, "name": "x", "id": 1}}
	ha, err := HashValue(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, _ := HashValue(b)
	if ha != hb {
		t.Error("HashValue should not depend on map insertion order")
	}
	if _, err := HashValue(func() {}); err == nil {
		t.Error("HashValue of a func should fail")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if !strings.HasPrefix(k.RowsKey("sql:category"), "rows:") {
		t.Errorf("RowsKey prefix: %s", k.RowsKey("sql:category"))
	}

	base := ResultKeyOpts{MaxDepth: 32, Indent: "-", Format: "text"}
	variants := []ResultKeyOpts{
		{MaxDepth: 10, Indent: "-", Format: "text"},
		{MaxDepth: 32, Indent: "--", Format: "text"},
		{MaxDepth: 32, Indent: "-", Format: "json"},
		{MaxDepth: 32, Indent: "-", Format: "text", Normalizer: "T:de"},
		{MaxDepth: 32, Indent: "-", Format: "text", Detailed: true},
	}
	k0 := k.ResultKey("h", base)
	if k0 != k.ResultKey("h", base) {
		t.Error("ResultKey should be deterministic")
	}
	if k0 == k.ResultKey("other", base) {
		t.Error("different rows hashes should produce different keys")
	}
	for _, v := range variants {
		if k.ResultKey("h", v) == k0 {
			t.Errorf("opts %+v should change the key", v)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:1:")
	if key := scoped.RowsKey("file:a.json"); !strings.HasPrefix(key, "tenant:1:rows:") {
		t.Errorf("RowsKey not prefixed: %s", key)
	}
	if key := scoped.ResultKey("h", ResultKeyOpts{}); !strings.HasPrefix(key, "tenant:1:result:") {
		t.Errorf("ResultKey not prefixed: %s", key)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if key := nilInner.RowsKey("x"); key != "p:"+NewDefaultKeyer().RowsKey("x") {
		t.Errorf("nil inner should use DefaultKeyer: %s", key)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	base := errors.New("boom")
	err := Retryable(base)
	if !IsRetryable(err) || err.Error() != "boom" {
		t.Errorf("Retryable(boom) = %v", err)
	}
	if IsRetryable(base) {
		t.Error("plain error should not be retryable")
	}
	if !IsRetryable(errs.New(errs.ErrCodeNetwork, "down")) {
		t.Error("NETWORK_ERROR should be retryable")
	}
	if IsRetryable(errs.New(errs.ErrCodeInvalidInput, "bad")) {
		t.Error("INVALID_INPUT should not be retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := DefaultRetry
	DefaultRetry.Backoff = time.Millisecond
	t.Cleanup(func() { DefaultRetry = old })
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d", err, calls)
	}

	permanent := errors.New("permanent")
	calls = 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return permanent }); err != permanent || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errors.New("flaky"))
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(errors.New("down")) })
	if err == nil || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errors.New("down"))
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRetryPolicyOnRetry(t *testing.T) {
	var retried []int
	p := RetryPolicy{
		Attempts: 4,
		Backoff:  time.Microsecond,
		OnRetry:  func(attempt int, err error) { retried = append(retried, attempt) },
	}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errs.New(errs.ErrCodeTimeout, "slow")
	})
	if !errs.Is(err, errs.ErrCodeTimeout) {
		t.Errorf("Do() error = %v, want TIMEOUT", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
	if len(retried) != 3 || retried[0] != 1 || retried[2] != 3 {
		t.Errorf("OnRetry attempts = %v, want [1 2 3]", retried)
	}
}

func TestRetryPolicyZeroAttempts(t *testing.T) {
	calls := 0
	err := RetryPolicy{}.Do(context.Background(), func() error {
		calls++
		return Retryable(errors.New("down"))
	})
	if err == nil || calls != 1 {
		t.Errorf("zero policy: err=%v calls=%d, want one failed call", err, calls)
	}
}
