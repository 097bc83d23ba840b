package dataflash

// Record is one decoded log message.
//
// Field values are int64 for signed and small unsigned integers, uint64 for 'Q',
// float64 for floating and scaled fields, string for character arrays and []int16
// for 'a' arrays.
type Record struct {
	Type   string
	Fields map[string]any
}

// Field returns the raw value of a field and whether it was present.
func (r Record) Field(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}
