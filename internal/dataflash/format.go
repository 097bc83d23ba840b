package dataflash

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

const (
	headByte1 = 0xA3
	headByte2 = 0x95

	headerLen = 3

	// FmtType is the message id reserved for format definitions.
	FmtType uint8 = 128
	// FmtName is the message name of format definitions.
	FmtName = "FMT"

	fmtLength = headerLen + 1 + 1 + 4 + 16 + 64
)

// fieldSizes maps each DataFlash format character to its encoded width in bytes.
var fieldSizes = map[byte]int{
	'b': 1, 'B': 1, 'M': 1,
	'h': 2, 'H': 2, 'c': 2, 'C': 2,
	'i': 4, 'I': 4, 'f': 4, 'e': 4, 'E': 4, 'L': 4, 'n': 4,
	'd': 8, 'q': 8, 'Q': 8,
	'N': 16,
	'Z': 64,
	'a': 64,
}

// Format describes the layout of one message type as announced by a FMT message.
type Format struct {
	Type    uint8
	Length  int
	Name    string
	Format  string
	Columns []string
}

// fmtFormat is the built-in definition of FMT itself, known before any FMT is read.
var fmtFormat = &Format{
	Type:    FmtType,
	Length:  fmtLength,
	Name:    FmtName,
	Format:  "BBnNZ",
	Columns: []string{"Type", "Length", "Name", "Format", "Columns"},
}

// NewFormat validates a format definition and returns it.
func NewFormat(typ uint8, name, format string, columns []string) (*Format, error) {
	if name == "" {
		return nil, fmt.Errorf("format %d: empty name", typ)
	}
	if len(columns) != len(format) {
		return nil, fmt.Errorf("format %s: %d columns for %d fields", name, len(columns), len(format))
	}
	size, err := payloadSize(format)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	if headerLen+size > math.MaxUint8 {
		return nil, fmt.Errorf("format %s: message length %d exceeds 255", name, headerLen+size)
	}

	return &Format{
		Type:    typ,
		Length:  headerLen + size,
		Name:    name,
		Format:  format,
		Columns: columns,
	}, nil
}

func payloadSize(format string) (int, error) {
	size := 0
	for i := 0; i < len(format); i++ {
		n, ok := fieldSizes[format[i]]
		if !ok {
			return 0, fmt.Errorf("unknown format character %q", format[i])
		}
		size += n
	}
	return size, nil
}

// parseFmt turns the decoded fields of a FMT record into a Format.
func parseFmt(fields map[string]any) (*Format, error) {
	typ, _ := fields["Type"].(int64)
	length, _ := fields["Length"].(int64)
	name, _ := fields["Name"].(string)
	format, _ := fields["Format"].(string)
	cols, _ := fields["Columns"].(string)

	var columns []string
	if cols != "" {
		columns = strings.Split(cols, ",")
	}

	f, err := NewFormat(uint8(typ), name, format, columns)
	if err != nil {
		return nil, err
	}
	// The announced length may carry padding past the fields we decode, never less.
	if int(length) < f.Length {
		return nil, fmt.Errorf("format %s: announced length %d shorter than fields (%d)", name, length, f.Length)
	}
	f.Length = int(length)
	return f, nil
}

// decode unpacks a message payload (header excluded) into a field map.
func (f *Format) decode(payload []byte) (map[string]any, error) {
	fields := make(map[string]any, len(f.Columns))
	off := 0
	for i := 0; i < len(f.Format); i++ {
		c := f.Format[i]
		n := fieldSizes[c]
		if off+n > len(payload) {
			return nil, fmt.Errorf("%s.%s: payload too short", f.Name, f.Columns[i])
		}
		fields[f.Columns[i]] = decodeField(c, payload[off:off+n])
		off += n
	}
	return fields, nil
}

func decodeField(c byte, b []byte) any {
	le := binary.LittleEndian
	switch c {
	case 'b':
		return int64(int8(b[0]))
	case 'B', 'M':
		return int64(b[0])
	case 'h':
		return int64(int16(le.Uint16(b)))
	case 'H':
		return int64(le.Uint16(b))
	case 'i':
		return int64(int32(le.Uint32(b)))
	case 'I':
		return int64(le.Uint32(b))
	case 'q':
		return int64(le.Uint64(b))
	case 'Q':
		return le.Uint64(b)
	case 'f':
		return float64(math.Float32frombits(le.Uint32(b)))
	case 'd':
		return math.Float64frombits(le.Uint64(b))
	case 'c':
		return float64(int16(le.Uint16(b))) / 100
	case 'C':
		return float64(le.Uint16(b)) / 100
	case 'e':
		return float64(int32(le.Uint32(b))) / 100
	case 'E':
		return float64(le.Uint32(b)) / 100
	case 'L':
		return float64(int32(le.Uint32(b))) / 1e7
	case 'n', 'N', 'Z':
		return cString(b)
	case 'a':
		out := make([]int16, len(b)/2)
		for i := range out {
			out[i] = int16(le.Uint16(b[i*2:]))
		}
		return out
	}
	return nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
