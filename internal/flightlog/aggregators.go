package flightlog

import (
	"uav-logchat/flightdesk/internal/constants"
	"uav-logchat/flightdesk/internal/dataflash"
	"uav-logchat/flightdesk/internal/models/dtos"
)

// Aggregator names, as reported in degradations and logs.
const (
	AggFlightTime     = "flight_time"
	AggMaxAltitude    = "max_altitude"
	AggMinBattery     = "min_battery"
	AggGPSIssues      = "gps_issues"
	AggCriticalErrors = "critical_errors"
	AggModeChanges    = "mode_changes"
)

// Result is the outcome of one aggregator: either a computed value, or a
// default value together with the reason the computation was abandoned.
type Result[T any] struct {
	Value T
	Err   error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Degraded[T any](def T, reason error) Result[T] {
	return Result[T]{Value: def, Err: reason}
}

func (r Result[T]) IsDegraded() bool {
	return r.Err != nil
}

// FlightTime is the span between the first and last MODE timestamps, in seconds.
func FlightTime(store *MessageStore) Result[float64] {
	recs := store.Records(constants.MsgTypeMode)
	if len(recs) == 0 {
		return Ok(0.0)
	}

	var lo, hi uint64
	for i, rec := range recs {
		t, field, err := timestamp(rec.Fields)
		if err != nil {
			return Degraded(0.0, &AggregatorError{Aggregator: AggFlightTime, Field: field, Err: err})
		}
		if i == 0 || t < lo {
			lo = t
		}
		if i == 0 || t > hi {
			hi = t
		}
	}
	return Ok(float64(hi-lo) / 1e6)
}

// MaxAltitude is the highest GPS altitude logged, 0 when no GPS record has one.
func MaxAltitude(store *MessageStore) Result[float64] {
	v, err := extreme(store.Records(constants.MsgTypeGPS), constants.FieldAlt, func(a, b float64) bool { return a > b })
	if err != nil {
		return Degraded(0.0, &AggregatorError{Aggregator: AggMaxAltitude, Field: constants.FieldAlt, Err: err})
	}
	return Ok(v)
}

// MinBattery is the lowest battery voltage logged, 0 when no BAT record has one.
func MinBattery(store *MessageStore) Result[float64] {
	v, err := extreme(store.Records(constants.MsgTypeBat), constants.FieldVolt, func(a, b float64) bool { return a < b })
	if err != nil {
		return Degraded(0.0, &AggregatorError{Aggregator: AggMinBattery, Field: constants.FieldVolt, Err: err})
	}
	return Ok(v)
}

// extreme reduces field over recs with better, skipping records without the field.
func extreme(recs []dataflash.Record, field string, better func(a, b float64) bool) (float64, error) {
	var (
		best  float64
		found bool
	)
	for _, rec := range recs {
		v, present, err := number(rec.Fields, field)
		if err != nil {
			return 0, err
		}
		if !present {
			continue
		}
		if !found || better(v, best) {
			best = v
			found = true
		}
	}
	return best, nil
}

// GPSIssues lists GPS samples below a 3-D fix. Missing Status and NSats count as 0.
func GPSIssues(store *MessageStore) Result[[]dtos.GPSIssue] {
	issues := []dtos.GPSIssue{}

	for _, rec := range store.Records(constants.MsgTypeGPS) {
		status, err := numberOr(rec.Fields, constants.FieldStatus, 0)
		if err != nil {
			return Degraded([]dtos.GPSIssue{}, &AggregatorError{Aggregator: AggGPSIssues, Field: constants.FieldStatus, Err: err})
		}
		if status >= constants.GPSFix3D {
			continue
		}

		sats, err := numberOr(rec.Fields, constants.FieldNSats, 0)
		if err != nil {
			return Degraded([]dtos.GPSIssue{}, &AggregatorError{Aggregator: AggGPSIssues, Field: constants.FieldNSats, Err: err})
		}
		t, field, err := timestamp(rec.Fields)
		if err != nil {
			return Degraded([]dtos.GPSIssue{}, &AggregatorError{Aggregator: AggGPSIssues, Field: field, Err: err})
		}

		issues = append(issues, dtos.GPSIssue{
			Time:       t,
			Status:     int64(status),
			Satellites: int64(sats),
		})
	}

	return Ok(issues)
}

// CriticalErrors selects ERR events with Severity of at least 2. Missing Severity counts as 0.
func CriticalErrors(events []dtos.Event) Result[[]dtos.Event] {
	critical := []dtos.Event{}

	for _, ev := range events {
		if ev.Type != constants.MsgTypeError {
			continue
		}
		sev, err := numberOr(ev.Data, constants.FieldSeverity, 0)
		if err != nil {
			return Degraded([]dtos.Event{}, &AggregatorError{Aggregator: AggCriticalErrors, Field: constants.FieldSeverity, Err: err})
		}
		if sev >= constants.CriticalSeverity {
			critical = append(critical, ev)
		}
	}

	return Ok(critical)
}

// ModeChanges selects MODE events.
func ModeChanges(events []dtos.Event) Result[[]dtos.Event] {
	modes := []dtos.Event{}
	for _, ev := range events {
		if ev.Type == constants.MsgTypeMode {
			modes = append(modes, ev)
		}
	}
	return Ok(modes)
}
