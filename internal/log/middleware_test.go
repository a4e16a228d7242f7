package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareStoresLoggerInContext(t *testing.T) {
	logger := New(Config{Component: ComponentHTTP})

	var got *Logger
	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != logger {
		t.Fatalf("FromContext returned %v, want the middleware logger", got)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("FromContext returned nil for a bare context")
	}
	if logger.Component() != ComponentApp {
		t.Errorf("fallback component = %q, want %q", logger.Component(), ComponentApp)
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentStorage,
		Handler:   slog.NewJSONHandler(&buf, nil),
	})

	logger.Info("record saved", FieldUserID, int64(7))

	line := buf.String()
	if !strings.Contains(line, `"`+FieldComponent+`":"`+ComponentStorage+`"`) {
		t.Errorf("log line missing component tag: %s", line)
	}
	if !strings.Contains(line, `"`+FieldUserID+`":7`) {
		t.Errorf("log line missing user id field: %s", line)
	}
}
