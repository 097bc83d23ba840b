package dataflash

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
)

// Writer encodes messages in the DataFlash wire format. Each message type must be
// declared with Define before it is written; Define emits the FMT message.
type Writer struct {
	w       io.Writer
	formats map[string]*Format
	nextID  uint8
	started bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:       w,
		formats: make(map[string]*Format),
		nextID:  1,
	}
}

// Define declares a message type and writes its FMT message.
func (w *Writer) Define(name, format string, columns ...string) error {
	if _, exists := w.formats[name]; exists {
		return fmt.Errorf("format %s already defined", name)
	}
	if w.nextID == 0 {
		return fmt.Errorf("format %s: no message ids left", name)
	}

	if !w.started {
		w.started = true
		if err := w.writeFmt(fmtFormat); err != nil {
			return err
		}
	}

	id := w.nextID
	if id == FmtType {
		id++
	}
	f, err := NewFormat(id, name, format, columns)
	if err != nil {
		return err
	}
	w.nextID = id + 1

	if err := w.writeFmt(f); err != nil {
		return err
	}
	w.formats[name] = f
	return nil
}

func (w *Writer) writeFmt(f *Format) error {
	return w.encode(fmtFormat, int(f.Type), f.Length, f.Name, f.Format, strings.Join(f.Columns, ","))
}

// Write encodes one message. Values are given in column order; scaled fields
// (c, C, e, E, L) take their engineering value, e.g. 12.5 for a 'c' voltage.
func (w *Writer) Write(name string, values ...any) error {
	f, ok := w.formats[name]
	if !ok {
		return fmt.Errorf("message %s: format not defined", name)
	}
	return w.encode(f, values...)
}

func (w *Writer) encode(f *Format, values ...any) error {
	if len(values) != len(f.Format) {
		return fmt.Errorf("message %s: %d values for %d fields", f.Name, len(values), len(f.Format))
	}

	msg := make([]byte, f.Length)
	msg[0], msg[1], msg[2] = headByte1, headByte2, f.Type

	off := headerLen
	for i := 0; i < len(f.Format); i++ {
		c := f.Format[i]
		n := fieldSizes[c]
		if err := encodeField(c, values[i], msg[off:off+n]); err != nil {
			return fmt.Errorf("message %s field %s: %w", f.Name, f.Columns[i], err)
		}
		off += n
	}

	_, err := w.w.Write(msg)
	return err
}

func encodeField(c byte, v any, dst []byte) error {
	le := binary.LittleEndian

	switch c {
	case 'n', 'N', 'Z':
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", v)
		}
		if len(s) > len(dst) {
			return fmt.Errorf("string %q longer than %d bytes", s, len(dst))
		}
		copy(dst, s)
		return nil
	case 'a':
		arr, ok := v.([]int16)
		if !ok {
			return fmt.Errorf("want []int16, got %T", v)
		}
		if len(arr) > len(dst)/2 {
			return fmt.Errorf("array of %d longer than %d", len(arr), len(dst)/2)
		}
		for i, x := range arr {
			le.PutUint16(dst[i*2:], uint16(x))
		}
		return nil
	}

	if u, ok := v.(uint64); ok && c == 'Q' {
		le.PutUint64(dst, u)
		return nil
	}

	x, err := toFloat(v)
	if err != nil {
		return err
	}

	switch c {
	case 'b', 'B', 'M':
		dst[0] = byte(int64(x))
	case 'h', 'H':
		le.PutUint16(dst, uint16(int64(x)))
	case 'i', 'I':
		le.PutUint32(dst, uint32(int64(x)))
	case 'q', 'Q':
		le.PutUint64(dst, uint64(int64(x)))
	case 'f':
		le.PutUint32(dst, math.Float32bits(float32(x)))
	case 'd':
		le.PutUint64(dst, math.Float64bits(x))
	case 'c', 'C':
		le.PutUint16(dst, uint16(int64(math.Round(x*100))))
	case 'e', 'E':
		le.PutUint32(dst, uint32(int64(math.Round(x*100))))
	case 'L':
		le.PutUint32(dst, uint32(int64(math.Round(x*1e7))))
	default:
		return fmt.Errorf("unknown format character %q", c)
	}
	return nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("want number, got %T", v)
}
