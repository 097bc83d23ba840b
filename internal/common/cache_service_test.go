package common

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"uav-logchat/flightdesk/internal/models/dtos"
)

func TestCacheService_SetGetDelete(t *testing.T) {
	c := NewCacheService(0, 0)

	c.Set("LOG_1", "value", 0)
	val, found := c.Get("LOG_1")
	if !found || val != "value" {
		t.Fatalf("Expected cached value, got %v (found=%v)", val, found)
	}

	c.Delete("LOG_1")
	if _, found := c.Get("LOG_1"); found {
		t.Error("Expected key to be deleted")
	}
}

func TestCacheService_Expiry(t *testing.T) {
	c := NewCacheService(0, time.Minute)

	c.Set("short", 1, 10*time.Millisecond)
	c.Set("forever", 2, 0)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("Expected short-lived key to expire")
	}
	if _, found := c.Get("forever"); !found {
		t.Error("Expected key without expiry to remain")
	}
}

func TestCacheService_Ping(t *testing.T) {
	if err := NewCacheService(0, 0).Ping(context.Background()); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestGetTyped_InMemoryValue(t *testing.T) {
	c := NewCacheService(0, 0)
	summary := &dtos.FlightSummary{FlightTime: 12.5}
	c.Set("LOG_a", summary, 0)

	got, ok := GetTyped[*dtos.FlightSummary](c, "LOG_a")
	if !ok {
		t.Fatal("Expected typed value")
	}
	if got != summary {
		t.Error("Expected the same pointer back from the in-memory cache")
	}
}

func TestGetTyped_SerializedValue(t *testing.T) {
	c := NewCacheService(0, 0)
	c.Set("LOG_b", json.RawMessage(`{"flight_time":3,"message_types":["GPS"]}`), 0)

	got, ok := GetTyped[*dtos.FlightSummary](c, "LOG_b")
	if !ok {
		t.Fatal("Expected decoded value")
	}
	if got.FlightTime != 3 || len(got.MessageTypes) != 1 {
		t.Errorf("Unexpected decoded summary: %+v", got)
	}
}

func TestGetTyped_GenericValue(t *testing.T) {
	c := NewCacheService(0, 0)
	c.Set("CONV_x", []any{map[string]any{"role": "user", "content": "hi"}}, 0)

	got, ok := GetTyped[[]dtos.ChatTurn](c, "CONV_x")
	if !ok || len(got) != 1 || got[0].Content != "hi" {
		t.Errorf("Expected decoded history, got %+v (ok=%v)", got, ok)
	}
}

func TestGetTyped_Missing(t *testing.T) {
	c := NewCacheService(0, 0)
	if _, ok := GetTyped[string](c, "nope"); ok {
		t.Error("Expected miss")
	}
}

func TestNewRedisCacheService_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisCacheService(ctx, "127.0.0.1:1", "", 0); err == nil {
		t.Fatal("Expected connection error")
	}
}
