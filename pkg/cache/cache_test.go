package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

var errTransient = errors.New("connection reset")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested", "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "release:Moose"); hit || err != nil {
		t.Fatalf("empty cache Get = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "release:Moose", []byte(`{"version":"2.2207"}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "release:Moose")
	if err != nil || !hit || string(data) != `{"version":"2.2207"}` {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "release:Moose"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "release:Moose"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "release:Moose"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry was returned")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("broken")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "broken"); hit || err != nil {
		t.Fatalf("corrupt Get = %v, %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry was not removed")
	}
}

func TestFileCacheMaintenance(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, []byte(key), time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Set(ctx, "stale", []byte("s"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)

	entries, size, err := c.Stats()
	if err != nil || entries != 4 || size == 0 {
		t.Fatalf("Stats = %d, %d, %v", entries, size, err)
	}

	removed, err := c.Prune()
	if err != nil || removed != 1 {
		t.Fatalf("Prune = %d, %v", removed, err)
	}

	cleared, err := c.Clear(ctx)
	if err != nil || cleared != 3 {
		t.Fatalf("Clear = %d, %v", cleared, err)
	}
	if entries, _, _ := c.Stats(); entries != 0 {
		t.Errorf("entries after Clear = %d", entries)
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("cache dir removed: %v", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Config{Backend: "file", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(file): %v", err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("Open(file) = %T", c)
	}

	c, err = Open(ctx, Config{Backend: "NONE"})
	if err != nil {
		t.Fatalf("Open(none): %v", err)
	}
	if _, ok := c.(NullCache); !ok {
		t.Errorf("Open(none) = %T", c)
	}

	for _, cfg := range []Config{
		{Backend: "redis"},
		{Backend: "mongo"},
		{Backend: "memcached"},
	} {
		if _, err := Open(ctx, cfg); !errs.Is(err, errs.ErrCodeInvalidCacheConfig) {
			t.Errorf("Open(%s) err = %v, want INVALID_CACHE_CONFIG", cfg.Backend, err)
		}
	}
}

func TestOpenRemoteBackendErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want errs.Code
	}{
		{"redis bad scheme", Config{Backend: "redis", URL: "http://localhost:6379"}, errs.ErrCodeInvalidCacheConfig},
		{"redis bad db", Config{Backend: "redis", URL: "redis://localhost:6379/notadb"}, errs.ErrCodeInvalidCacheConfig},
		{"redis unreachable", Config{Backend: "redis", URL: "redis://127.0.0.1:1/0"}, errs.ErrCodeNetwork},
		{"mongo bad scheme", Config{Backend: "mongo", URL: "http://localhost:27017"}, errs.ErrCodeInvalidCacheConfig},
		{"mongo unreachable", Config{Backend: "mongo", URL: "mongodb://127.0.0.1:1/?connectTimeoutMS=200"}, errs.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			c, err := Open(ctx, tt.cfg)
			if c != nil {
				t.Errorf("Open returned a cache alongside %v", err)
			}
			if !errs.Is(err, tt.want) {
				t.Errorf("err = %v, want %s", err, tt.want)
			}
		})
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

func TestKeyers(t *testing.T) {
	if got := NewDefaultKeyer().HTTPKey("metacpan:release:", "Moose"); got != "http:metacpan:release:Moose" {
		t.Errorf("HTTPKey = %s", got)
	}
	scoped := NewScopedKeyer(nil, "mirror:1:")
	if got := scoped.HTTPKey("metacpan:author:", "ETHER"); got != "mirror:1:http:metacpan:author:ETHER" {
		t.Errorf("scoped HTTPKey = %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(errTransient)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, errTransient) {
		t.Error("wrapped error should unwrap")
	}
	if IsRetryable(errTransient) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestBackoffRetry(t *testing.T) {
	ctx := context.Background()
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	if err := fast.Retry(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d", err, calls)
	}

	calls = 0
	err := fast.Retry(ctx, func() error { calls++; return errTransient })
	if err != errTransient || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = fast.Retry(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errTransient)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = fast.Retry(ctx, func() error { calls++; return Retryable(errTransient) })
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errTransient)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestMirrorKeyer(t *testing.T) {
	a := MirrorKeyer("https://fastapi.metacpan.org/v1")
	b := MirrorKeyer("http://cpan.internal/v1")

	ka := a.HTTPKey("metacpan:release:", "Moose")
	if ka == b.HTTPKey("metacpan:release:", "Moose") {
		t.Error("mirrors share a key")
	}
	if ka != MirrorKeyer("https://fastapi.metacpan.org/v1").HTTPKey("metacpan:release:", "Moose") {
		t.Error("MirrorKeyer is not deterministic")
	}
	want := "http:metacpan:release:Moose"
	if len(ka) != len("mirror:")+12+1+len(want) || ka[len(ka)-len(want):] != want {
		t.Errorf("HTTPKey() = %q", ka)
	}
}
