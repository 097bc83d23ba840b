package flightlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"uav-logchat/flightdesk/internal/dataflash"
	"uav-logchat/flightdesk/internal/logging"
	"uav-logchat/flightdesk/internal/models/dtos"
)

// Report is the outcome of parsing one log.
type Report struct {
	Summary *dtos.FlightSummary
	Records int
	Skipped int
	// StreamErr is the decode failure that ended the stream early, if any.
	StreamErr error
}

// Parse opens the log at path and summarizes it. Only a *dataflash.StreamOpenError,
// a *ParseTimeoutError or context cancellation is returned as an error; every
// other problem is folded into the summary.
func Parse(ctx context.Context, path string, limits Limits) (*Report, error) {
	r, err := dataflash.Open(path)
	if err != nil {
		return nil, err
	}
	return parse(ctx, r, limits)
}

// ParseReader is Parse over an arbitrary byte source.
func ParseReader(ctx context.Context, src io.Reader, limits Limits) (*Report, error) {
	r, err := dataflash.OpenReader(src)
	if err != nil {
		return nil, err
	}
	return parse(ctx, r, limits)
}

func parse(ctx context.Context, r *dataflash.Reader, limits Limits) (*Report, error) {
	defer r.Close()

	if limits.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.Timeout)
		defer cancel()
	}

	store, err := BuildStore(ctx, r, limits)
	if err != nil {
		return nil, err
	}

	return &Report{
		Summary:   BuildSummary(store),
		Records:   store.Len(),
		Skipped:   r.Skipped(),
		StreamErr: r.Err(),
	}, nil
}

// BuildSummary computes every metric over store. It never fails: an aggregator
// that cannot produce a value contributes its default and a Degradation, and a
// summary that cannot be assembled is replaced by its minimal form.
func BuildSummary(store *MessageStore) *dtos.FlightSummary {
	summary, err := assemble(store)
	if err != nil {
		logging.Warn("Falling back to minimal flight summary", "error", err.Error())
		return &dtos.FlightSummary{
			Error:        err.Error(),
			MessageTypes: store.Types(),
		}
	}
	return summary
}

func assemble(store *MessageStore) (summary *dtos.FlightSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			summary = nil
			err = &SummaryAssemblyError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	s := &dtos.FlightSummary{MessageTypes: store.Types()}
	events := ExtractEvents(store)

	s.FlightTime = collect(s, AggFlightTime, 0.0, func() Result[float64] { return FlightTime(store) })
	s.MaxAltitude = collect(s, AggMaxAltitude, 0.0, func() Result[float64] { return MaxAltitude(store) })
	s.MinBattery = collect(s, AggMinBattery, 0.0, func() Result[float64] { return MinBattery(store) })
	s.GPSIssues = collect(s, AggGPSIssues, []dtos.GPSIssue{}, func() Result[[]dtos.GPSIssue] { return GPSIssues(store) })
	s.CriticalErrors = collect(s, AggCriticalErrors, []dtos.Event{}, func() Result[[]dtos.Event] { return CriticalErrors(events) })
	s.ModeChanges = collect(s, AggModeChanges, []dtos.Event{}, func() Result[[]dtos.Event] { return ModeChanges(events) })

	// Values decoded from the log (NaN, ±Inf) can make the record unencodable.
	if _, err := json.Marshal(s); err != nil {
		return nil, &SummaryAssemblyError{Err: err}
	}
	return s, nil
}

// collect runs one aggregator in isolation, recording a degradation on failure or panic.
func collect[T any](s *dtos.FlightSummary, name string, def T, agg func() Result[T]) (value T) {
	defer func() {
		if r := recover(); r != nil {
			value = def
			degrade(s, name, fmt.Errorf("panic: %v", r))
		}
	}()

	res := agg()
	if res.IsDegraded() {
		degrade(s, name, res.Err)
		return def
	}
	return res.Value
}

func degrade(s *dtos.FlightSummary, name string, reason error) {
	logging.Warn("Aggregator degraded to default",
		"aggregator", name,
		"reason", reason.Error(),
	)
	s.Degradations = append(s.Degradations, dtos.Degradation{
		Aggregator: name,
		Reason:     reason.Error(),
	})
}
