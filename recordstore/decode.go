package recordstore

import "fmt"

// DecodeError reports a record that came back without a field the
// schema marks as required.
type DecodeError struct {
	Table string
	ID    string
	Field string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("record %q in table %q is missing required field %q", e.ID, e.Table, e.Field)
}

type fieldReader struct {
	table string
	rec   Record
	err   error
}

func (r *fieldReader) requiredString(name string) string {
	s, ok := r.rec.Fields[name].(string)
	if !ok || s == "" {
		if r.err == nil {
			r.err = &DecodeError{Table: r.table, ID: r.rec.ID, Field: name}
		}
		return ""
	}
	return s
}

func (r *fieldReader) requiredInt(name string) int {
	// JSON numbers arrive as float64
	f, ok := r.rec.Fields[name].(float64)
	if !ok {
		if r.err == nil {
			r.err = &DecodeError{Table: r.table, ID: r.rec.ID, Field: name}
		}
		return 0
	}
	return int(f)
}

func (r *fieldReader) optionalString(name string) string {
	s, _ := r.rec.Fields[name].(string)
	return s
}

func (r *fieldReader) optionalInt(name string) int64 {
	f, _ := r.rec.Fields[name].(float64)
	return int64(f)
}
