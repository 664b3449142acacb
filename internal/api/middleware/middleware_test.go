package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ricirt/breed-query-worker/internal/api/middleware"
)

func TestCorrelationID(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		value    string
		wantEcho bool
	}{
		{"generated when absent", "", "", false},
		{"echoes correlation header", "X-Correlation-ID", "abc-123", true},
		{"falls back to request id", "X-Request-ID", "req-9", true},
		{"replaces oversized value", "X-Correlation-ID", strings.Repeat("x", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = middleware.GetCorrelationID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(middleware.HeaderCorrelationID)
			if got == "" || got != seen {
				t.Fatalf("header %q and context %q should match and be non-empty", got, seen)
			}
			if tt.wantEcho && got != tt.value {
				t.Fatalf("expected echo of %q, got %q", tt.value, got)
			}
			if !tt.wantEcho && got == tt.value {
				t.Fatalf("expected a generated id, got %q", got)
			}
		})
	}
}

func TestRequestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	status := http.StatusOK
	h := middleware.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("ok"))
	}))

	cases := []struct {
		path   string
		status int
		want   zapcore.Level
	}{
		{"/api/v1/async/breeds/all", http.StatusAccepted, zapcore.InfoLevel},
		{"/health", http.StatusOK, zapcore.DebugLevel},
		{"/api/v1/async/breeds/by-id", http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{"/api/v1/async/breeds/by-id", http.StatusServiceUnavailable, zapcore.ErrorLevel},
	}
	for _, c := range cases {
		status = c.status
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, c.path, nil))
	}

	entries := logs.All()
	if len(entries) != len(cases) {
		t.Fatalf("expected %d log entries, got %d", len(cases), len(entries))
	}
	for i, c := range cases {
		if entries[i].Level != c.want {
			t.Errorf("%s %d: level = %s, want %s", c.path, c.status, entries[i].Level, c.want)
		}
		if got := entries[i].ContextMap()["status"]; got != int64(c.status) {
			t.Errorf("status field = %v, want %d", got, c.status)
		}
	}
}
