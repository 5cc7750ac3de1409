package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestIDPropagatesHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "abc-123" || rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("request id = %q, header = %q", seen, rr.Header().Get("X-Request-ID"))
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 36 {
		t.Fatalf("expected generated uuid, got %q", seen)
	}
}

func TestRequestIDReplacesUnusableHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	for _, supplied := range []string{strings.Repeat("a", 65), "has space", "line\nbreak"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, supplied)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if seen == supplied || len(seen) != 36 {
			t.Fatalf("supplied %q: request id = %q", supplied, seen)
		}
		if rr.Header().Get(RequestIDHeader) != seen {
			t.Fatalf("response header = %q, want %q", rr.Header().Get(RequestIDHeader), seen)
		}
	}
}

func TestContextWithRequestID(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "job-7")
	if got := RequestIDFromContext(ctx); got != "job-7" {
		t.Fatalf("RequestIDFromContext = %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("empty context returned %q", got)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	tests := []struct {
		name    string
		origins []string
		origin  string
		method  string
		allowed bool
		status  int
	}{
		{"listed origin", []string{"https://app.example"}, "https://app.example", http.MethodGet, true, http.StatusTeapot},
		{"unlisted origin", []string{"https://app.example"}, "https://evil.example", http.MethodGet, false, http.StatusTeapot},
		{"wildcard", []string{"*"}, "https://any.example", http.MethodGet, true, http.StatusTeapot},
		{"preflight", []string{"https://app.example"}, "https://app.example", http.MethodOptions, true, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			CORS(tt.origins)(next).ServeHTTP(rr, req)

			got := rr.Header().Get("Access-Control-Allow-Origin") == tt.origin
			if got != tt.allowed {
				t.Fatalf("allowed = %v, want %v", got, tt.allowed)
			}
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestLoggerWritesOneLinePerRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("oops"))
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" || entry["path"] != "/v1/sessions" || entry["status"] != float64(502) || entry["bytes"] != float64(4) {
		t.Fatalf("unexpected log entry: %v", entry)
	}
	if entry["request_id"] == "" {
		t.Fatal("expected request id in log entry")
	}
}

func TestLoggerStoresRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	h := RequestID(Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("downstream")
	})))

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %q", buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, `"request_id":"req-42"`) {
			t.Fatalf("log line misses request id: %s", line)
		}
	}
}
