package dataflash

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic         = errors.New("not a DataFlash log: bad magic bytes")
	ErrTruncatedHeader  = errors.New("log shorter than one message header")
	ErrTruncatedMessage = errors.New("message truncated at end of log")
)

// StreamOpenError means the log could not be opened or recognised at all.
type StreamOpenError struct {
	Path string
	Err  error
}

func (e *StreamOpenError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("open log stream: %v", e.Err)
	}
	return fmt.Sprintf("open log stream %s: %v", e.Path, e.Err)
}

func (e *StreamOpenError) Unwrap() error {
	return e.Err
}

// RecordDecodeError ends a stream early. Records read before it are still valid.
type RecordDecodeError struct {
	Offset int64
	Type   string
	Err    error
}

func (e *RecordDecodeError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("decode %s record at offset %d: %v", e.Type, e.Offset, e.Err)
	}
	return fmt.Sprintf("decode record at offset %d: %v", e.Offset, e.Err)
}

func (e *RecordDecodeError) Unwrap() error {
	return e.Err
}
