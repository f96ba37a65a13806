package aggregate

import (
	"fmt"
	"slices"
)

// Reserved column names of long-format data.
const (
	MetricColumn = "metric"
	ValueColumn  = "value"
)

// LongRecord is one (group, metric) pair.
type LongRecord struct {
	// Key holds the group key values, aligned with LongTable.Keys.
	Key    []string
	Metric string
	Value  float64
	StdDev float64
	Count  int
}

// LongTable is a sequence of long records sharing one key layout.
type LongTable struct {
	Keys    []string
	Metrics []string // metric names in source column order
	Records []LongRecord

	// KeyLevels holds the display order of each key column's values.
	KeyLevels map[string][]string
}

// Len returns the number of records.
func (t *LongTable) Len() int { return len(t.Records) }

// Field returns the value of column name for r. name is either one of the
// key columns or MetricColumn.
func (t *LongTable) Field(r LongRecord, name string) (string, bool) {
	if name == MetricColumn {
		return r.Metric, true
	}
	if i := slices.Index(t.Keys, name); i >= 0 {
		return r.Key[i], true
	}
	return "", false
}

// Levels returns the distinct values of column name. Metric levels follow
// Metrics. Key levels follow KeyLevels when it lists the column, and record
// order otherwise.
func (t *LongTable) Levels(name string) []string {
	present := func(v string) bool {
		return slices.ContainsFunc(t.Records, func(r LongRecord) bool {
			f, _ := t.Field(r, name)
			return f == v
		})
	}
	if name == MetricColumn {
		return slices.DeleteFunc(slices.Clone(t.Metrics), func(m string) bool { return !present(m) })
	}
	if order, ok := t.KeyLevels[name]; ok {
		return slices.DeleteFunc(slices.Clone(order), func(v string) bool { return !present(v) })
	}
	var out []string
	for _, r := range t.Records {
		v, ok := t.Field(r, name)
		if ok && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// ToLongFormat unpivots an aggregate result: one record per group and
// metric, skipping metrics whose values were all missing in that group.
func ToLongFormat(r *Result) (*LongTable, error) {
	if err := checkLongColumns(r.Keys, r.Metrics); err != nil {
		return nil, err
	}
	t := &LongTable{
		Keys:      slices.Clone(r.Keys),
		Metrics:   slices.Clone(r.Metrics),
		KeyLevels: r.KeyLevels(),
	}
	for _, g := range r.Groups {
		for _, m := range r.Metrics {
			s, ok := g.Stats[m]
			if !ok {
				continue
			}
			t.Records = append(t.Records, LongRecord{
				Key:    slices.Clone(g.Values),
				Metric: m,
				Value:  s.Mean,
				StdDev: s.StdDev,
				Count:  s.Count,
			})
		}
	}
	return t, nil
}

func checkLongColumns(keys, metrics []string) error {
	for _, k := range keys {
		if k == MetricColumn || k == ValueColumn {
			return fmt.Errorf("key %q is reserved for long format: %w", k, ErrColumnCollision)
		}
	}
	for _, m := range metrics {
		if m == MetricColumn || m == ValueColumn {
			return fmt.Errorf("metric %q is reserved for long format: %w", m, ErrColumnCollision)
		}
		if slices.Contains(keys, m) {
			return fmt.Errorf("metric %q is also a key: %w", m, ErrColumnCollision)
		}
	}
	return nil
}
