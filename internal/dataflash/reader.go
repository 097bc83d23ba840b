package dataflash

import (
	"bufio"
	"errors"
	"io"
	"os"
)

const readBufferSize = 64 * 1024

// Reader pulls records from a DataFlash log, one message at a time.
//
// A Reader is forward-only and cannot be rewound; open the log again to re-read
// it. The underlying file is released when the stream ends, when a record fails
// to decode, or when Close is called, whichever happens first.
type Reader struct {
	src    *bufio.Reader
	closer io.Closer
	path   string

	formats map[uint8]*Format
	offset  int64
	buf     [256]byte

	current Record
	count   int
	skipped int
	done    bool
	err     error
}

// Open opens the log at path and checks that it starts with a DataFlash message header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &StreamOpenError{Path: path, Err: err}
	}

	r, err := newReader(f, f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// OpenReader decodes a log from src. If src is an io.Closer it is closed with the Reader.
func OpenReader(src io.Reader) (*Reader, error) {
	closer, _ := src.(io.Closer)

	r, err := newReader(src, closer, "")
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	return r, nil
}

func newReader(src io.Reader, closer io.Closer, path string) (*Reader, error) {
	br := bufio.NewReaderSize(src, readBufferSize)

	head, err := br.Peek(headerLen)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &StreamOpenError{Path: path, Err: ErrTruncatedHeader}
		}
		return nil, &StreamOpenError{Path: path, Err: err}
	}
	if head[0] != headByte1 || head[1] != headByte2 {
		return nil, &StreamOpenError{Path: path, Err: ErrBadMagic}
	}

	return &Reader{
		src:     br,
		closer:  closer,
		path:    path,
		formats: map[uint8]*Format{FmtType: fmtFormat},
	}, nil
}

// Next advances to the next record. It returns false at end of stream or after a
// decode failure; Err tells the two apart.
func (r *Reader) Next() bool {
	if r.done {
		return false
	}

	for {
		head, err := r.src.Peek(headerLen)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Fewer bytes than a header left: trailing padding.
				r.skipped += len(head)
				r.finish(nil)
				return false
			}
			r.finish(&RecordDecodeError{Offset: r.offset, Err: err})
			return false
		}

		if head[0] != headByte1 || head[1] != headByte2 {
			r.discard()
			continue
		}

		f, ok := r.formats[head[2]]
		if !ok {
			r.discard()
			continue
		}

		msg := r.buf[:f.Length]
		n, err := io.ReadFull(r.src, msg)
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				err = ErrTruncatedMessage
			}
			r.finish(&RecordDecodeError{Offset: r.offset, Type: f.Name, Err: err})
			return false
		}
		r.offset += int64(n)

		fields, err := f.decode(msg[headerLen:])
		if err != nil {
			r.skipped += n
			continue
		}

		if f.Type == FmtType {
			r.define(fields)
		}

		r.current = Record{Type: f.Name, Fields: fields}
		r.count++
		return true
	}
}

func (r *Reader) define(fields map[string]any) {
	def, err := parseFmt(fields)
	if err != nil {
		r.skipped++
		return
	}
	// FMT describing itself is informational; the built-in definition stays.
	if def.Type != FmtType {
		r.formats[def.Type] = def
	}
}

func (r *Reader) discard() {
	n, _ := r.src.Discard(1)
	r.offset += int64(n)
	r.skipped += n
}

func (r *Reader) finish(err error) {
	r.done = true
	r.err = err
	r.current = Record{}
	r.Close()
}

// Record returns the record produced by the last successful call to Next.
func (r *Reader) Record() Record {
	return r.current
}

// Err returns the decode failure that ended the stream, or nil if it ended cleanly.
func (r *Reader) Err() error {
	return r.err
}

// Count is the number of records produced so far.
func (r *Reader) Count() int {
	return r.count
}

// Skipped counts bytes dropped while resynchronising on message headers. Each
// unusable format definition adds one.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Path returns the file the Reader was opened on, empty for OpenReader.
func (r *Reader) Path() string {
	return r.path
}

// Close releases the underlying file. It is safe to call more than once.
func (r *Reader) Close() error {
	r.done = true
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
