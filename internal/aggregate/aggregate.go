// Package aggregate reduces per-trial result frames to per-group statistics
// and reshapes them into the long (key, metric, value) form the chart
// renderers consume.
package aggregate

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/matejmatuska/audio-stego/internal/dataset"
)

var (
	// ErrUnknownColumn is returned when a key or metric column is not in
	// the frame or has the wrong kind.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrColumnCollision is returned when reshaping would produce two
	// columns with the same name, which happens when already long data is
	// reshaped again.
	ErrColumnCollision = errors.New("column name collision")
)

// Stat summarises one metric within one group.
type Stat struct {
	Mean   float64
	StdDev float64 // sample standard deviation; 0 when Count < 2 or not requested
	Count  int     // number of non-missing values
}

// Group is one non-empty partition of the input.
type Group struct {
	// Values holds the key values, aligned with Result.Keys.
	Values []string
	// Rows is the number of input rows in the partition.
	Rows  int
	Stats map[string]Stat
}

// Stat returns the statistics of metric. ok is false when every value of
// the metric in this group was missing.
func (g Group) Stat(metric string) (s Stat, ok bool) {
	s, ok = g.Stats[metric]
	return s, ok
}

// Result is the output of GroupAndAggregate.
type Result struct {
	Keys    []string
	Metrics []string
	Groups  []Group

	index map[string]int
	order map[string][]string
}

// Len returns the number of groups.
func (r *Result) Len() int { return len(r.Groups) }

// Lookup returns the group with the given key values. Absence is reported
// through ok, never as an error.
func (r *Result) Lookup(values ...string) (g Group, ok bool) {
	if len(values) != len(r.Keys) {
		return Group{}, false
	}
	i, ok := r.index[joinKey(values)]
	if !ok {
		return Group{}, false
	}
	return r.Groups[i], true
}

// KeyLevels returns, for each key column, its distinct values in display
// order: listed priorities first, then lexical order.
func (r *Result) KeyLevels() map[string][]string {
	out := make(map[string][]string, len(r.Keys))
	for i, k := range r.Keys {
		var vals []string
		for _, g := range r.Groups {
			if !slices.Contains(vals, g.Values[i]) {
				vals = append(vals, g.Values[i])
			}
		}
		priority := r.order[k]
		slices.SortFunc(vals, func(a, b string) int { return compareLevel(priority, a, b) })
		out[k] = vals
	}
	return out
}

// Options tunes GroupAndAggregate.
type Options struct {
	// StdDev enables the sample standard deviation.
	StdDev bool

	// Order maps a key column to its display priority list. Listed values
	// come first in list order; others follow in lexical order.
	Order map[string][]string
}

// GroupAndAggregate partitions f by the distinct values of the text columns
// keys and computes the mean of each metric column per partition. A nil
// metrics slice selects every numeric column. Rows with an empty key value
// are skipped and missing metric values are excluded from the mean. Only
// non-empty partitions are returned.
func GroupAndAggregate(f *dataset.Frame, keys []string, metrics []string, opts Options) (*Result, error) {
	if len(keys) == 0 {
		return nil, errors.New("at least one group key is required")
	}
	keyCols := make([][]string, len(keys))
	for i, k := range keys {
		if kind, ok := f.Kind(k); !ok || kind != dataset.Text {
			return nil, fmt.Errorf("group key %q: %w", k, ErrUnknownColumn)
		}
		keyCols[i] = f.Text(k)
	}

	if metrics == nil {
		metrics = f.NumericColumns()
	}
	metricCols := make([][]float64, len(metrics))
	for i, m := range metrics {
		if slices.Contains(keys, m) {
			return nil, fmt.Errorf("metric %q is also a group key: %w", m, ErrColumnCollision)
		}
		if kind, ok := f.Kind(m); !ok || kind != dataset.Number {
			return nil, fmt.Errorf("metric %q: %w", m, ErrUnknownColumn)
		}
		metricCols[i] = f.Numbers(m)
	}

	type partition struct {
		values []string
		rows   []int
	}
	var parts []*partition
	byKey := make(map[string]*partition)

rows:
	for row := 0; row < f.Len(); row++ {
		values := make([]string, len(keys))
		for i, col := range keyCols {
			if col[row] == "" {
				continue rows
			}
			values[i] = col[row]
		}
		k := joinKey(values)
		p, ok := byKey[k]
		if !ok {
			p = &partition{values: values}
			byKey[k] = p
			parts = append(parts, p)
		}
		p.rows = append(p.rows, row)
	}

	groups := make([]Group, 0, len(parts))
	for _, p := range parts {
		g := Group{
			Values: p.values,
			Rows:   len(p.rows),
			Stats:  make(map[string]Stat, len(metrics)),
		}
		for i, m := range metrics {
			vals := make([]float64, 0, len(p.rows))
			for _, row := range p.rows {
				if v := metricCols[i][row]; !math.IsNaN(v) {
					vals = append(vals, v)
				}
			}
			if len(vals) == 0 {
				continue
			}
			g.Stats[m] = summarise(vals, opts.StdDev)
		}
		groups = append(groups, g)
	}

	sortGroups(groups, keys, opts.Order)

	res := &Result{
		Keys:    slices.Clone(keys),
		Metrics: slices.Clone(metrics),
		Groups:  groups,
		index:   make(map[string]int, len(groups)),
		order:   opts.Order,
	}
	for i, g := range groups {
		res.index[joinKey(g.Values)] = i
	}
	return res, nil
}

func summarise(vals []float64, withStd bool) Stat {
	s := Stat{Count: len(vals)}
	if withStd && len(vals) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
		return s
	}
	s.Mean = stat.Mean(vals, nil)
	return s
}

// sortGroups orders groups by the per-column priority lists, falling back
// to lexical order so that the layout does not depend on row order.
func sortGroups(groups []Group, keys []string, order map[string][]string) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		for i, k := range keys {
			if c := compareLevel(order[k], a.Values[i], b.Values[i]); c != 0 {
				return c
			}
		}
		return 0
	})
}

func compareLevel(priority []string, a, b string) int {
	ra, rb := rank(priority, a), rank(priority, b)
	if c := cmp.Compare(ra, rb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func rank(priority []string, v string) int {
	if i := slices.Index(priority, v); i >= 0 {
		return i
	}
	return len(priority)
}

// joinKey builds a map key from key values.
func joinKey(values []string) string {
	return strings.Join(values, "\x1f")
}
