package cache

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "tile:abc", []byte("pixels"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "tile:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit || !bytes.Equal(data, []byte("pixels")) {
		t.Errorf("Get = (%q, %v), want stored value", data, hit)
	}

	if err := c.Delete(ctx, "tile:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "tile:abc"); hit {
		t.Error("entry survived Delete")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "tile:ttl", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "tile:ttl"); hit {
		t.Error("expired entry returned as hit")
	}
}

func TestFileCacheMiss(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(context.Background(), "absent"); hit || err != nil {
		t.Errorf("Get(absent) = (hit=%v, err=%v), want clean miss", hit, err)
	}
	if err := c.Delete(context.Background(), "absent"); err != nil {
		t.Errorf("Delete(absent): %v", err)
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Errorf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("NullCache stored data")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("distinct inputs collided")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	t1 := k.TileKey("p0-m1", []string{"a.png", "b.png"}, "opts-a")
	t2 := k.TileKey("p0-m1", []string{"a.png", "b.png"}, "opts-b")
	if t1 == t2 {
		t.Error("different options produced the same tile key")
	}
	if t1 != k.TileKey("p0-m1", []string{"a.png", "b.png"}, "opts-a") {
		t.Error("tile key is not deterministic")
	}
	if !strings.HasPrefix(t1, "tile:") {
		t.Errorf("tile key %q lacks prefix", t1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "doc:abc:")
	key := scoped.TileKey("p0-m1", nil, nil)
	if !strings.HasPrefix(key, "doc:abc:tile:") {
		t.Errorf("scoped key %q not prefixed", key)
	}

	// A nil inner falls back to the default keyer.
	fallback := NewScopedKeyer(nil, "p:")
	if !strings.HasPrefix(fallback.TileKey("p0-m1", nil, nil), "p:tile:") {
		t.Error("nil inner not defaulted")
	}
}

var errBoom = errors.New("boom")

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	err := Retryable(errBoom)
	if !IsRetryable(err) {
		t.Error("wrapped error not detected as retryable")
	}
	if err.Error() != errBoom.Error() {
		t.Errorf("message changed: %q", err.Error())
	}
	if IsRetryable(errBoom) {
		t.Error("unwrapped error reported retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil {
		t.Errorf("RetryWithBackoff: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error { calls++; return errBoom })
	if err != errBoom || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d, want immediate return", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errBoom)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err=%v calls=%d, want success on second call", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(errBoom) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
