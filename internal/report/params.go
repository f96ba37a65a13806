package report

import (
	"fmt"
	"slices"

	"github.com/matejmatuska/audio-stego/internal/aggregate"
	"github.com/matejmatuska/audio-stego/internal/chart"
	"github.com/matejmatuska/audio-stego/internal/dataset"
)

// params builds, for each method in priority order, the SNR and BER of its
// configurations. Methods without results are skipped.
func (r *Report) params(trials *dataset.Frame) error {
	for _, col := range []string{dataset.ColMethod, dataset.ColParams} {
		if !trials.Has(col) {
			return fmt.Errorf("params mode needs a %q column", col)
		}
	}
	present, err := aggregate.GroupAndAggregate(trials, []string{dataset.ColMethod}, []string{}, aggregate.Options{})
	if err != nil {
		return err
	}

	ax := r.opts.Labels.Axes
	for _, method := range r.opts.Labels.Order {
		if method == "none" {
			// The unmodified baseline has no configurations.
			continue
		}
		snrName := "params_" + method + "_snr"
		berName := "params_" + method + "_ber"
		if _, ok := present.Lookup(method); !ok {
			r.skip(snrName, "no results for "+method)
			r.skip(berName, "no results for "+method)
			continue
		}
		sub := trials.Where(dataset.ColMethod, method)
		order := map[string][]string{dataset.ColParams: naturalOrder(sub.Text(dataset.ColParams))}
		keys := []string{dataset.ColParams}

		if sub.Has(dataset.ColSNR) {
			long, err := r.aggregateLong(sub, keys, []string{dataset.ColSNR}, order)
			if err != nil {
				return err
			}
			if err := r.bar(chart.BarChart{
				Name:   snrName,
				Title:  r.opts.Labels.Method(method),
				XLabel: ax.Params,
				YLabel: ax.SNR,
				Data:   long,
				X:      dataset.ColParams,
			}); err != nil {
				return err
			}
		} else {
			r.skip(snrName, "no snr column")
		}

		metrics := berColumns(sub)
		if len(metrics) == 0 {
			r.skip(berName, "no bit error rate columns")
			continue
		}
		long, err := r.aggregateLong(sub, keys, metrics, order)
		if err != nil {
			return err
		}
		if err := r.bar(chart.BarChart{
			Name:   berName,
			Title:  r.opts.Labels.Method(method),
			XLabel: ax.Params,
			YLabel: ax.BER,
			Data:   long,
			X:      dataset.ColParams,
			Hue:    aggregate.MetricColumn,
		}); err != nil {
			return err
		}
	}
	return nil
}

// naturalOrder returns the distinct values sorted so that digit runs
// compare by value: framesize=512 sorts before framesize=1024.
func naturalOrder(values []string) []string {
	out := slices.Clone(values)
	slices.SortFunc(out, naturalCompare)
	return slices.Compact(out)
}

func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		if da && db {
			na, ra := digitRun(a)
			nb, rb := digitRun(b)
			if c := compareDigits(na, nb); c != 0 {
				return c
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			if a[0] < b[0] {
				return -1
			}
			return 1
		}
		a, b = a[1:], b[1:]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	}
	return 1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func digitRun(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// compareDigits compares two digit strings by numeric value.
func compareDigits(a, b string) int {
	for len(a) > 1 && a[0] == '0' {
		a = a[1:]
	}
	for len(b) > 1 && b[0] == '0' {
		b = b[1:]
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
