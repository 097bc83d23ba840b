package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func useObserver(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)

	mu.Lock()
	prev := globalLogger
	globalLogger = zap.New(core).Sugar()
	mu.Unlock()

	t.Cleanup(func() {
		mu.Lock()
		globalLogger = prev
		mu.Unlock()
	})
	return logs
}

func TestWithRequest_AttachesRequestFields(t *testing.T) {
	logs := useObserver(t)

	WithRequest("req-123", "/api/logs/{log_id}").Warnw("HTTP request completed", "status_code", 404)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-123" {
		t.Errorf("Expected request_id req-123, got %v", fields["request_id"])
	}
	if fields["endpoint"] != "/api/logs/{log_id}" {
		t.Errorf("Expected endpoint /api/logs/{log_id}, got %v", fields["endpoint"])
	}
	if fields["status_code"] != int64(404) {
		t.Errorf("Expected status_code 404, got %v", fields["status_code"])
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("Expected warn level, got %v", entries[0].Level)
	}
}

func TestGetLogger_DefaultsToNop(t *testing.T) {
	mu.Lock()
	prev := globalLogger
	globalLogger = nil
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		globalLogger = prev
		mu.Unlock()
	})

	if GetLogger() == nil {
		t.Fatal("Expected a no-op logger, got nil")
	}
	Info("dropped")
}

func TestInit_RejectsBadLevel(t *testing.T) {
	if err := Init("development", "loud"); err == nil {
		t.Error("Expected error for invalid level, got nil")
	}
}
