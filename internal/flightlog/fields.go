package flightlog

import (
	"errors"
	"fmt"
	"math"

	"uav-logchat/flightdesk/internal/constants"
)

var (
	errNotNumeric       = errors.New("value is not numeric")
	errInvalidTimestamp = errors.New("timestamp is negative or not finite")
	errNotFinite        = errors.New("value is not finite")
)

// number reads a numeric field. present is false when the field is missing or nil.
// NaN and ±Inf are errors.
func number(fields map[string]any, name string) (value float64, present bool, err error) {
	v, ok := fields[name]
	if !ok || v == nil {
		return 0, false, nil
	}

	switch n := v.(type) {
	case int64:
		return float64(n), true, nil
	case uint64:
		return float64(n), true, nil
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true, nil
	case int32:
		return float64(n), true, nil
	case uint32:
		return float64(n), true, nil
	case int16:
		return float64(n), true, nil
	case uint16:
		return float64(n), true, nil
	case int8:
		return float64(n), true, nil
	case uint8:
		return float64(n), true, nil
	}
	return 0, true, fmt.Errorf("%w: %T", errNotNumeric, v)
}

func finite(v float64) (float64, bool, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, fmt.Errorf("%w: %v", errNotFinite, v)
	}
	return v, true, nil
}

// numberOr reads a numeric field, substituting def when it is absent.
func numberOr(fields map[string]any, name string, def float64) (float64, error) {
	v, present, err := number(fields, name)
	if err != nil {
		return 0, err
	}
	if !present {
		return def, nil
	}
	return v, nil
}

var timestampFields = []struct {
	name  string
	scale float64
}{
	{constants.FieldTimeUS, 1},
	{constants.FieldTimeUSec, 1},
	{constants.FieldTimeMS, 1000},
}

// timestamp returns the record time in microseconds, 0 when it has no time field.
func timestamp(fields map[string]any) (uint64, string, error) {
	for _, tf := range timestampFields {
		if us, ok := fields[tf.name].(uint64); ok && tf.scale == 1 {
			return us, tf.name, nil
		}

		v, present, err := number(fields, tf.name)
		if err != nil {
			return 0, tf.name, err
		}
		if !present {
			continue
		}
		v *= tf.scale
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, tf.name, errInvalidTimestamp
		}
		return uint64(v), tf.name, nil
	}
	return 0, "", nil
}
