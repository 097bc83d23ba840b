package common

import (
	"encoding/json"

	"uav-logchat/flightdesk/internal/logging"
)

// GetTyped reads key and returns it as T. Values held as-is (in-memory cache)
// are returned directly; serialized values (Redis) are decoded into T.
func GetTyped[T any](c CacheInterface, key string) (T, bool) {
	var zero T

	val, found := c.Get(key)
	if !found {
		return zero, false
	}

	if typed, ok := val.(T); ok {
		return typed, true
	}

	var raw []byte
	switch v := val.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			logging.Warn("Cache value could not be re-encoded", "key", key, "error", err.Error())
			return zero, false
		}
		raw = b
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		logging.Warn("Cache value has unexpected shape", "key", key, "error", err.Error())
		return zero, false
	}
	return out, true
}
