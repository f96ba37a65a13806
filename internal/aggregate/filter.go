package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matejmatuska/audio-stego/internal/dataset"
)

// UnknownPolicy decides what FilterBestParams does with rows whose method has
// no canonical configuration.
type UnknownPolicy int

const (
	// PassThrough keeps rows of unknown methods unfiltered.
	PassThrough UnknownPolicy = iota
	// Drop removes rows of unknown methods.
	Drop
)

func (p UnknownPolicy) String() string {
	switch p {
	case PassThrough:
		return "pass-through"
	case Drop:
		return "drop"
	default:
		return fmt.Sprintf("UnknownPolicy(%d)", int(p))
	}
}

// ParseUnknownPolicy parses the names produced by UnknownPolicy.String.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pass-through", "passthrough":
		return PassThrough, nil
	case "drop":
		return Drop, nil
	}
	return 0, fmt.Errorf("unknown method policy %q (want pass-through or drop)", s)
}

// CanonicalParams normalises a params string so that "framesize = 1024" and
// "framesize=1024" compare equal. Comma separated pairs are sorted by key.
func CanonicalParams(s string) string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
			continue
		}
		out = append(out, strings.TrimSpace(k)+"="+strings.TrimSpace(v))
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// FilterBestParams keeps the rows whose params value matches the canonical
// configuration of their method. Methods missing from canonical are handled
// according to policy.
func FilterBestParams(f *dataset.Frame, canonical map[string]string, policy UnknownPolicy) (*dataset.Frame, error) {
	for _, col := range []string{dataset.ColMethod, dataset.ColParams} {
		if kind, ok := f.Kind(col); !ok || kind != dataset.Text {
			return nil, fmt.Errorf("filter best params: column %q: %w", col, ErrUnknownColumn)
		}
	}
	want := make(map[string]string, len(canonical))
	for m, p := range canonical {
		want[m] = CanonicalParams(p)
	}
	return f.Filter(func(r dataset.TrialRecord) bool {
		p, ok := want[r.Method()]
		if !ok {
			return policy == PassThrough
		}
		return CanonicalParams(r.Params()) == p
	}), nil
}
