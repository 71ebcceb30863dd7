package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/omniscope/omniscope/internal/errs"
)

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(Config{Source: "test", AppName: "omniscope", AppVersion: "0.1"})
	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
}

func TestGetNon2xxReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := New(Config{Source: "test", AppName: "omniscope", AppVersion: "0.1"})
	_, err := c.Get(context.Background(), srv.URL)
	var apiErr *errs.APIError
	if !isAPIError(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func isAPIError(err error, target **errs.APIError) bool {
	e, ok := err.(*errs.APIError)
	if ok {
		*target = e
	}
	return ok
}

func TestGetRetriesOn429ThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(Config{Source: "test", AppName: "omniscope", AppVersion: "0.1", MaxRetries: 2})
	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRateLimitExhaustedSurfacesRateLimitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{Source: "test", AppName: "omniscope", AppVersion: "0.1", MaxRetries: 1})
	_, err := c.Get(context.Background(), srv.URL)
	var rl *errs.RateLimit
	if !isRateLimit(err, &rl) {
		t.Fatalf("expected RateLimit, got %v", err)
	}
}

func isRateLimit(err error, target **errs.RateLimit) bool {
	e, ok := err.(*errs.RateLimit)
	if ok {
		*target = e
	}
	return ok
}

func TestRetryAfterSecondsDefaultsTo60(t *testing.T) {
	if got := retryAfterSeconds(""); got != 60 {
		t.Errorf("retryAfterSeconds(\"\") = %d, want 60", got)
	}
	if got := retryAfterSeconds("5"); got != 5 {
		t.Errorf("retryAfterSeconds(\"5\") = %d, want 5", got)
	}
}

func TestMinIntervalPaces(t *testing.T) {
	var times []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		times = append(times, time.Now())
	}))
	defer srv.Close()

	c := New(Config{Source: "test", AppName: "omniscope", AppVersion: "0.1", MinInterval: 50 * time.Millisecond})
	for i := 0; i < 2; i++ {
		if _, err := c.Get(context.Background(), srv.URL); err != nil {
			t.Fatal(err)
		}
	}
	if len(times) != 2 {
		t.Fatalf("got %d requests", len(times))
	}
	if times[1].Sub(times[0]) < 40*time.Millisecond {
		t.Errorf("requests not paced: gap = %v", times[1].Sub(times[0]))
	}
}
