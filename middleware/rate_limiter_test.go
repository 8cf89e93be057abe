package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitMiddleware_BurstExhaustion(t *testing.T) {
	handler := RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	status := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/activity/streaks", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < visitorBurst; i++ {
		if code := status(); code != http.StatusOK {
			t.Fatalf("request %d within burst: status %d, want 200", i+1, code)
		}
	}

	if code := status(); code != http.StatusTooManyRequests {
		t.Errorf("request past burst: status %d, want 429", code)
	}
}

func TestRateLimitMiddleware_SeparateClients(t *testing.T) {
	handler := RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// A different client is unaffected by the exhausted one above.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.9")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("fresh client: status %d, want 200", rec.Code)
	}
}
