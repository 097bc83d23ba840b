package flightlog

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrParseTimeout = errors.New("parse deadline exceeded")
	ErrRecordLimit  = errors.New("record limit exceeded")
)

// Limits bounds a single parse. Zero values disable the corresponding limit.
type Limits struct {
	MaxRecords int
	Timeout    time.Duration
}

// ParseTimeoutError is fatal: the log was too large or too slow to read within Limits.
type ParseTimeoutError struct {
	Records int
	Err     error
}

func (e *ParseTimeoutError) Error() string {
	return fmt.Sprintf("parse aborted after %d records: %v", e.Records, e.Err)
}

func (e *ParseTimeoutError) Unwrap() error {
	return e.Err
}

// AggregatorError is a metric that could not be computed from the records present.
type AggregatorError struct {
	Aggregator string
	Field      string
	Err        error
}

func (e *AggregatorError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field %s: %v", e.Aggregator, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Aggregator, e.Err)
}

func (e *AggregatorError) Unwrap() error {
	return e.Err
}

// SummaryAssemblyError replaces the summary with its minimal form.
type SummaryAssemblyError struct {
	Err error
}

func (e *SummaryAssemblyError) Error() string {
	return fmt.Sprintf("assemble flight summary: %v", e.Err)
}

func (e *SummaryAssemblyError) Unwrap() error {
	return e.Err
}
