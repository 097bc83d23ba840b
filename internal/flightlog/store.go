package flightlog

import (
	"context"
	"errors"
	"fmt"

	"uav-logchat/flightdesk/internal/dataflash"
	"uav-logchat/flightdesk/internal/logging"
)

// ctxCheckInterval is how many records are read between context checks.
const ctxCheckInterval = 512

// RecordSource is a pull-based stream of records. *dataflash.Reader implements it.
type RecordSource interface {
	Next() bool
	Record() dataflash.Record
	Err() error
}

// MessageStore groups the records of one log by message type, keeping arrival
// order within each type and the order in which types were first seen.
type MessageStore struct {
	types   []string
	records map[string][]dataflash.Record

	// arrival position of each record, parallel to records
	seqs  map[string][]int
	total int
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		records: make(map[string][]dataflash.Record),
		seqs:    make(map[string][]int),
	}
}

// Append adds a record under its type, creating the type on first sight.
func (s *MessageStore) Append(rec dataflash.Record) {
	if _, ok := s.records[rec.Type]; !ok {
		s.types = append(s.types, rec.Type)
	}
	s.records[rec.Type] = append(s.records[rec.Type], rec)
	s.seqs[rec.Type] = append(s.seqs[rec.Type], s.total)
	s.total++
}

// Records returns the records of one type in arrival order. The slice must not be modified.
func (s *MessageStore) Records(msgType string) []dataflash.Record {
	if s == nil {
		return nil
	}
	return s.records[msgType]
}

// Types returns a copy of the observed message types in first-seen order.
func (s *MessageStore) Types() []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s.types))
	copy(out, s.types)
	return out
}

// Len is the total number of records held.
func (s *MessageStore) Len() int {
	if s == nil {
		return 0
	}
	return s.total
}

// BuildStore drains src into a new MessageStore.
//
// A decode failure reported by src ends the stream and keeps what was read.
// Exceeding limits.MaxRecords or the context deadline fails the build with a
// *ParseTimeoutError.
func BuildStore(ctx context.Context, src RecordSource, limits Limits) (*MessageStore, error) {
	store := NewMessageStore()

	for src.Next() {
		if store.total%ctxCheckInterval == 0 {
			if err := checkContext(ctx, store.total); err != nil {
				return nil, err
			}
		}
		if limits.MaxRecords > 0 && store.total >= limits.MaxRecords {
			return nil, &ParseTimeoutError{Records: store.total, Err: ErrRecordLimit}
		}
		store.Append(src.Record())
	}

	if err := checkContext(ctx, store.total); err != nil {
		return nil, err
	}

	if err := src.Err(); err != nil {
		logging.Warn("Log stream ended early, keeping partial data",
			"records", store.total,
			"error", err.Error(),
		)
	}

	return store, nil
}

func checkContext(ctx context.Context, records int) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ParseTimeoutError{Records: records, Err: ErrParseTimeout}
	}
	return fmt.Errorf("parse cancelled after %d records: %w", records, err)
}
