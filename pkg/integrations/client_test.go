package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/cpanmap/pkg/cache"
	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"User-Agent": "cpanmap-test"}
	client := NewClient(c, "test:", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != cache.Cache(c) {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["User-Agent"] != "cpanmap-test" {
		t.Error("NewClient() headers not set correctly")
	}

	if NewClient(nil, "test:", time.Hour, nil).cache == nil {
		t.Error("NewClient(nil cache) should fall back to a null cache")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, nil)
	client.SetHTTPClient(server.Client())

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, nil)
	client.SetHTTPClient(server.Client())

	var resp map[string]string
	if err := client.Get(context.Background(), server.URL, &resp); !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want ErrNetwork", err)
	}
}

func TestClientGetWithHeaders(t *testing.T) {
	var custom, def string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		custom = r.Header.Get("X-Custom")
		def = r.Header.Get("X-Override")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(cache.NewNullCache(), "test:", time.Hour, map[string]string{"X-Override": "default"})
	client.SetHTTPClient(server.Client())

	var resp map[string]string
	headers := map[string]string{"X-Custom": "custom", "X-Override": "overridden"}
	if err := client.GetWithHeaders(context.Background(), server.URL, headers, &resp); err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if custom != "custom" {
		t.Errorf("custom header = %q, want %q", custom, "custom")
	}
	if def != "overridden" {
		t.Errorf("override header = %q, want %q", def, "overridden")
	}
	if resp["status"] != "ok" {
		t.Errorf("response = %v", resp)
	}
}

func TestClientGetText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("2.2207 2024-01-21\n  - fixes"))
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, nil)
	client.SetHTTPClient(server.Client())

	text, err := client.GetText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetText() error: %v", err)
	}
	if text != "2.2207 2024-01-21\n  - fixes" {
		t.Errorf("GetText() = %q", text)
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "404",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("error = %v, want ErrNotFound", err)
				}
			},
		},
		{
			name:   "500",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				if !cache.IsRetryable(err) || !errors.Is(err, ErrNetwork) {
					t.Errorf("error = %v, want retryable ErrNetwork", err)
				}
			},
		},
		{
			name:   "429",
			status: http.StatusTooManyRequests,
			header: map[string]string{"Retry-After": "30"},
			check: func(t *testing.T, err error) {
				var rl *errs.RateLimitedError
				if !errors.As(err, &rl) || rl.RetryAfter != 30 {
					t.Errorf("error = %v, want RateLimitedError(30)", err)
				}
				if errs.GetCode(err) != errs.ErrCodeRateLimited {
					t.Errorf("code = %s", errs.GetCode(err))
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(nil, "test:", time.Hour, nil)
			client.SetHTTPClient(server.Client())

			var resp map[string]string
			tt.check(t, client.Get(context.Background(), server.URL, &resp))
		})
	}
}

func TestClientCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, "test:", time.Hour, nil)

	type release struct {
		Version string `json:"version"`
	}
	fetches := 0
	load := func(refresh bool) release {
		var v release
		err := client.Cached(context.Background(), "Moose", refresh, &v, func() error {
			fetches++
			v = release{Version: "2.2207"}
			return nil
		})
		if err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
		return v
	}

	if v := load(false); v.Version != "2.2207" || fetches != 1 {
		t.Fatalf("first = %+v, fetches = %d", v, fetches)
	}
	if v := load(false); v.Version != "2.2207" || fetches != 1 {
		t.Fatalf("cached = %+v, fetches = %d", v, fetches)
	}
	if load(true); fetches != 2 {
		t.Fatalf("refresh fetches = %d, want 2", fetches)
	}

	if err := client.Invalidate(context.Background(), "Moose"); err != nil {
		t.Fatal(err)
	}
	if load(false); fetches != 3 {
		t.Fatalf("after Invalidate fetches = %d, want 3", fetches)
	}
}

func TestClientCachedKeyer(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, "test:", time.Hour, nil)
	client.SetKeyer(cache.NewScopedKeyer(nil, "mirror:"))

	var v string
	if err := client.Cached(context.Background(), "k", false, &v, func() error { v = "x"; return nil }); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(context.Background(), "mirror:http:test:k"); !ok {
		t.Error("entry not stored under the scoped key")
	}
}

func TestClientCachedRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, nil)
	client.SetHTTPClient(server.Client())
	client.SetBackoff(cache.Backoff{Attempts: 3, Delay: time.Millisecond})

	var v map[string]string
	err := client.Cached(context.Background(), "retry", false, &v, func() error {
		return client.Get(context.Background(), server.URL, &v)
	})
	if err != nil || v["ok"] != "yes" || calls.Load() != 2 {
		t.Fatalf("err = %v, v = %v, calls = %d", err, v, calls.Load())
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)
	fetches := 0
	var v string
	err := client.Cached(context.Background(), "missing", false, &v, func() error {
		fetches++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) || fetches != 1 {
		t.Errorf("err = %v, fetches = %d", err, fetches)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   bool
		wantType  error
		retryable bool
	}{
		{code: 200},
		{code: 404, wantErr: true, wantType: ErrNotFound},
		{code: 500, wantErr: true, retryable: true},
		{code: 502, wantErr: true, retryable: true},
		{code: 503, wantErr: true, retryable: true},
		{code: 400, wantErr: true, wantType: ErrNetwork},
		{code: 403, wantErr: true, wantType: ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := checkStatus(tt.code)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("checkStatus() should return error")
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantType)
			}
			if cache.IsRetryable(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v", cache.IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.Code
	}{
		{"nil", nil, ""},
		{"not found", ErrNotFound, errs.ErrCodeNotFound},
		{"network", cache.Retryable(ErrNetwork), errs.ErrCodeNetwork},
		{"deadline", context.DeadlineExceeded, errs.ErrCodeTimeout},
		{"rate limit", &errs.RateLimitedError{RetryAfter: 5}, errs.ErrCodeRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errs.GetCode(Classify(tt.err, "fetch %s", "X")); got != tt.want {
				t.Errorf("code = %q, want %q", got, tt.want)
			}
		})
	}
	if err := Classify(context.Canceled, "x"); err != context.Canceled {
		t.Errorf("cancellation = %v, want context.Canceled", err)
	}
}
