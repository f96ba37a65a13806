// Package dataset holds benchmark trial results as a column oriented frame
// and loads them from the semicolon separated CSV files produced by the
// measurement scripts.
package dataset

import (
	"fmt"
	"math"
	"slices"
)

// Well-known column names of the trial and MOS result files.
const (
	ColMethod   = "method"
	ColType     = "type"
	ColParams   = "params"
	ColSNR      = "snr"
	ColScore    = "score"
	ColFilename = "filename"
)

// Kind is the storage kind of a column.
type Kind int

const (
	// Text columns hold categorical values (method, type, params, ...).
	Text Kind = iota
	// Number columns hold float64 values; NaN marks a missing value.
	Number
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column describes one column of a Frame.
type Column struct {
	Name string
	Kind Kind
}

// TrialRecord is a single row of a Frame.
type TrialRecord struct {
	Labels map[string]string
	Values map[string]float64
}

// Method returns the embedding method of the record.
func (r TrialRecord) Method() string { return r.Labels[ColMethod] }

// Type returns the carrier audio type of the record.
func (r TrialRecord) Type() string { return r.Labels[ColType] }

// Params returns the textual method configuration of the record.
func (r TrialRecord) Params() string { return r.Labels[ColParams] }

// Value returns the numeric value of column name. ok is false when the
// column is absent or the value is missing.
func (r TrialRecord) Value(name string) (v float64, ok bool) {
	v, ok = r.Values[name]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Frame is an ordered set of columns of equal length. Column order is the
// order of the source header and drives metric ordering downstream.
type Frame struct {
	columns []Column
	text    map[string][]string
	num     map[string][]float64
	n       int
}

// NewFrame creates an empty frame with the given columns. Duplicate
// column names are an error.
func NewFrame(cols ...Column) (*Frame, error) {
	f := &Frame{
		text: make(map[string][]string),
		num:  make(map[string][]float64),
	}
	for _, c := range cols {
		if f.Has(c.Name) {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		f.columns = append(f.columns, c)
		switch c.Kind {
		case Text:
			f.text[c.Name] = nil
		case Number:
			f.num[c.Name] = nil
		default:
			return nil, fmt.Errorf("column %q: unknown kind %v", c.Name, c.Kind)
		}
	}
	return f, nil
}

// MustFrame is NewFrame for statically known column sets.
func MustFrame(cols ...Column) *Frame {
	f, err := NewFrame(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.n }

// Columns returns a copy of the column list in source order.
func (f *Frame) Columns() []Column { return slices.Clone(f.columns) }

// Has reports whether the frame has a column called name.
func (f *Frame) Has(name string) bool {
	_, ok := f.Kind(name)
	return ok
}

// Kind returns the kind of column name.
func (f *Frame) Kind(name string) (Kind, bool) {
	for _, c := range f.columns {
		if c.Name == name {
			return c.Kind, true
		}
	}
	return 0, false
}

// TextColumns returns the names of the text columns in source order.
func (f *Frame) TextColumns() []string { return f.names(Text) }

// NumericColumns returns the names of the numeric columns in source order.
func (f *Frame) NumericColumns() []string { return f.names(Number) }

func (f *Frame) names(k Kind) []string {
	var out []string
	for _, c := range f.columns {
		if c.Kind == k {
			out = append(out, c.Name)
		}
	}
	return out
}

// Text returns the values of text column name, or nil if there is no such
// column. The slice is shared with the frame and must not be modified.
func (f *Frame) Text(name string) []string { return f.text[name] }

// Numbers returns the values of numeric column name, or nil if there is no
// such column. The slice is shared with the frame and must not be modified.
func (f *Frame) Numbers(name string) []float64 { return f.num[name] }

// Append adds a row. Columns missing from r are stored as "" or NaN; labels
// and values for unknown columns are ignored.
func (f *Frame) Append(r TrialRecord) {
	for _, c := range f.columns {
		switch c.Kind {
		case Text:
			f.text[c.Name] = append(f.text[c.Name], r.Labels[c.Name])
		case Number:
			v, ok := r.Values[c.Name]
			if !ok {
				v = math.NaN()
			}
			f.num[c.Name] = append(f.num[c.Name], v)
		}
	}
	f.n++
}

// Row returns row i as a TrialRecord.
func (f *Frame) Row(i int) TrialRecord {
	r := TrialRecord{
		Labels: make(map[string]string, len(f.text)),
		Values: make(map[string]float64, len(f.num)),
	}
	for name, vals := range f.text {
		r.Labels[name] = vals[i]
	}
	for name, vals := range f.num {
		r.Values[name] = vals[i]
	}
	return r
}

// Rows returns all rows in order.
func (f *Frame) Rows() []TrialRecord {
	out := make([]TrialRecord, f.n)
	for i := range out {
		out[i] = f.Row(i)
	}
	return out
}

// Drop returns a copy of f without the named columns. Names that are not
// present are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	var keep []Column
	for _, c := range f.columns {
		if !slices.Contains(names, c.Name) {
			keep = append(keep, c)
		}
	}
	return f.project(keep, nil)
}

// Select returns a copy of f holding only the named columns, in the
// frame's own column order. Names that are not present are ignored.
func (f *Frame) Select(names ...string) *Frame {
	var keep []Column
	for _, c := range f.columns {
		if slices.Contains(names, c.Name) {
			keep = append(keep, c)
		}
	}
	return f.project(keep, nil)
}

// Filter returns the rows for which keep reports true.
func (f *Frame) Filter(keep func(r TrialRecord) bool) *Frame {
	idx := make([]int, 0, f.n)
	for i := 0; i < f.n; i++ {
		if keep(f.Row(i)) {
			idx = append(idx, i)
		}
	}
	return f.project(f.columns, idx)
}

// Where returns the rows whose text column equals value. A missing column
// yields an empty frame.
func (f *Frame) Where(column, value string) *Frame {
	idx := []int{}
	for i, v := range f.text[column] {
		if v == value {
			idx = append(idx, i)
		}
	}
	return f.project(f.columns, idx)
}

// MapText replaces the values of text column name through mapping. Rows
// whose value has no entry are dropped; the number of dropped rows is
// returned. A missing column is a no-op.
func (f *Frame) MapText(name string, mapping map[string]string) (*Frame, int) {
	vals, ok := f.text[name]
	if !ok {
		return f.project(f.columns, nil), 0
	}
	idx := make([]int, 0, f.n)
	for i, v := range vals {
		if _, ok := mapping[v]; ok {
			idx = append(idx, i)
		}
	}
	out := f.project(f.columns, idx)
	mapped := out.text[name]
	for i, v := range mapped {
		mapped[i] = mapping[v]
	}
	return out, f.n - out.n
}

// SetText adds or replaces text column name with values computed per row.
// A new column is appended at the end of the column list.
func (f *Frame) SetText(name string, value func(r TrialRecord) string) (*Frame, error) {
	if k, ok := f.Kind(name); ok && k != Text {
		return nil, fmt.Errorf("column %q is %v, not text", name, k)
	}
	out := f.project(f.columns, nil)
	if !out.Has(name) {
		out.columns = append(out.columns, Column{Name: name, Kind: Text})
	}
	vals := make([]string, f.n)
	for i := range vals {
		vals[i] = value(f.Row(i))
	}
	out.text[name] = vals
	return out, nil
}

// project copies the given columns, restricted to rows idx (all rows when
// idx is nil).
func (f *Frame) project(cols []Column, idx []int) *Frame {
	out := &Frame{
		columns: slices.Clone(cols),
		text:    make(map[string][]string),
		num:     make(map[string][]float64),
	}
	if idx == nil {
		out.n = f.n
	} else {
		out.n = len(idx)
	}
	for _, c := range cols {
		switch c.Kind {
		case Text:
			out.text[c.Name] = pick(f.text[c.Name], idx)
		case Number:
			out.num[c.Name] = pick(f.num[c.Name], idx)
		}
	}
	return out
}

func pick[T any](vals []T, idx []int) []T {
	if idx == nil {
		return slices.Clone(vals)
	}
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}
