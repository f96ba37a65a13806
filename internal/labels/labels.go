// Package labels holds the versioned display-name tables used to translate
// result keys (methods, audio types, modification columns) into report text.
package labels

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/matejmatuska/audio-stego/internal/aggregate"
	"github.com/matejmatuska/audio-stego/internal/dataset"
	"github.com/matejmatuska/audio-stego/internal/monitoring"
)

// DefaultVersion is the table of the published Slovak report.
const DefaultVersion = "sk-1"

// Axes holds axis and legend captions.
type Axes struct {
	Method    string
	BER       string
	SNR       string
	Type      string
	Params    string
	Score     string
	Length    string
	Capacity  string
	FrameSize string
}

// Table maps raw result keys to display names. A Table is read-only once
// returned by Lookup.
type Table struct {
	Version string

	Methods map[string]string
	Types   map[string]string
	Metrics map[string]string

	// Order is the fixed method priority used for chart layout.
	Order []string
	// TypeOrder is the priority of audio types within a facet or hue.
	TypeOrder []string

	Axes Axes
}

var methods = map[string]string{
	"lsb":     "lsb",
	"phase":   "phase",
	"echo":    "echo",
	"echo-hc": "echo-hc",
	"tone":    "tone",
	"none":    "none",
}

var methodOrder = []string{"lsb", "echo", "echo-hc", "tone", "phase", "none"}

var tables = map[string]*Table{
	"sk-1": {
		Version: "sk-1",
		Methods: methods,
		Types: map[string]string{
			"music":  "Hudba",
			"noise":  "Zvuky",
			"speech": "Reč",
		},
		Metrics: map[string]string{
			"resampling":     "Prevzorkovanie",
			"attenuation":    "Stlmenie",
			"amplification":  "Zosilnenie",
			"extraction":     "Extrakcia",
			"requantization": "Prekvantovanie",
			dataset.ColSNR:   "SNR",
			dataset.ColScore: "MOS",
		},
		Order:     methodOrder,
		TypeOrder: []string{"music", "speech", "noise"},
		Axes: Axes{
			Method:    "Metóda",
			BER:       "Bit Error Rate",
			SNR:       "Signal to Noise Ratio [dB]",
			Type:      "Typ nahrávky",
			Params:    "Parametre",
			Score:     "Mean Opinion Score",
			Length:    "Dĺžka signálu [s]",
			Capacity:  "Kapacita",
			FrameSize: "Dĺžka úseku",
		},
	},
	"en-1": {
		Version: "en-1",
		Methods: methods,
		Types: map[string]string{
			"music":  "Music",
			"noise":  "Noise",
			"speech": "Speech",
		},
		Metrics: map[string]string{
			"resampling":     "Resampling",
			"attenuation":    "Attenuation",
			"amplification":  "Amplification",
			"extraction":     "Extraction",
			"requantization": "Requantization",
			dataset.ColSNR:   "SNR",
			dataset.ColScore: "MOS",
		},
		Order:     methodOrder,
		TypeOrder: []string{"music", "speech", "noise"},
		Axes: Axes{
			Method:    "Method",
			BER:       "Bit Error Rate",
			SNR:       "Signal to Noise Ratio [dB]",
			Type:      "Recording type",
			Params:    "Parameters",
			Score:     "Mean Opinion Score",
			Length:    "Signal length [s]",
			Capacity:  "Capacity",
			FrameSize: "Frame size",
		},
	},
}

// Versions returns the known table versions, sorted.
func Versions() []string {
	out := make([]string, 0, len(tables))
	for v := range tables {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the table with the given version. An empty version selects
// DefaultVersion.
func Lookup(version string) (*Table, error) {
	if version == "" {
		version = DefaultVersion
	}
	t, ok := tables[version]
	if !ok {
		return nil, fmt.Errorf("unknown label table %q (known: %v)", version, Versions())
	}
	return t, nil
}

// MustLookup is Lookup for versions known at compile time.
func MustLookup(version string) *Table {
	t, err := Lookup(version)
	if err != nil {
		panic(err)
	}
	return t
}

// Method returns the display name of a method key, or the key itself.
func (t *Table) Method(key string) string { return display(t.Methods, key) }

// Type returns the display name of an audio type key, or the key itself.
func (t *Table) Type(key string) string { return display(t.Types, key) }

// Metric returns the display name of a metric column, or the column name.
func (t *Table) Metric(key string) string { return display(t.Metrics, key) }

func display(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

// GroupOrder returns the priority lists for aggregate.Options.Order.
func (t *Table) GroupOrder() map[string][]string {
	return map[string][]string{
		dataset.ColMethod: slices.Clone(t.Order),
		dataset.ColType:   slices.Clone(t.TypeOrder),
	}
}

// Restrict canonicalises the method and type columns to the table's keys,
// ignoring case and surrounding space, and drops rows whose value has no
// key. Dropped rows are logged; columns absent from f are not checked.
func (t *Table) Restrict(f *dataset.Frame) *dataset.Frame {
	out := f
	for _, c := range []struct {
		column string
		known  map[string]string
	}{
		{dataset.ColMethod, t.Methods},
		{dataset.ColType, t.Types},
	} {
		if !out.Has(c.column) {
			continue
		}
		mapping := make(map[string]string)
		for _, v := range out.Text(c.column) {
			key := strings.ToLower(strings.TrimSpace(v))
			if _, ok := c.known[key]; ok {
				mapping[v] = key
			}
		}
		var n int
		out, n = out.MapText(c.column, mapping)
		if n > 0 {
			monitoring.Warnf("dropped %d rows with unknown %s", n, c.column)
		}
	}
	return out
}

// Relabel returns a copy of long with method and type key values and metric
// names replaced by their display names. Record, level and metric order is
// kept.
func (t *Table) Relabel(long *aggregate.LongTable) *aggregate.LongTable {
	out := &aggregate.LongTable{
		Keys:    slices.Clone(long.Keys),
		Metrics: make([]string, len(long.Metrics)),
		Records: make([]aggregate.LongRecord, len(long.Records)),
	}
	for i, m := range long.Metrics {
		out.Metrics[i] = t.Metric(m)
	}
	if long.KeyLevels != nil {
		out.KeyLevels = make(map[string][]string, len(long.KeyLevels))
		for k, levels := range long.KeyLevels {
			mapped := make([]string, len(levels))
			for i, v := range levels {
				mapped[i] = t.keyValue(k, v)
			}
			out.KeyLevels[k] = mapped
		}
	}
	for i, r := range long.Records {
		key := make([]string, len(r.Key))
		for j, v := range r.Key {
			key[j] = t.keyValue(long.Keys[j], v)
		}
		r.Key = key
		r.Metric = t.Metric(r.Metric)
		out.Records[i] = r
	}
	return out
}

func (t *Table) keyValue(column, v string) string {
	switch column {
	case dataset.ColMethod:
		return t.Method(v)
	case dataset.ColType:
		return t.Type(v)
	}
	return v
}
