package report

import (
	"github.com/matejmatuska/audio-stego/internal/aggregate"
	"github.com/matejmatuska/audio-stego/internal/chart"
	"github.com/matejmatuska/audio-stego/internal/dataset"
	"github.com/matejmatuska/audio-stego/internal/monitoring"
)

// compare builds the cross-method figures.
func (r *Report) compare(trials, mos *dataset.Frame) error {
	if r.opts.FilterBest {
		before := trials.Len()
		filtered, err := aggregate.FilterBestParams(trials, r.opts.BestParams, r.opts.UnknownPolicy)
		if err != nil {
			return err
		}
		trials = filtered
		if n := before - trials.Len(); n > 0 {
			monitoring.Logf("kept the best configuration of each method, dropped %d rows", n)
		}
	}

	steps := []func(*dataset.Frame) error{
		r.ber,
		r.berByType,
		r.snr,
		r.snrByType,
	}
	for _, step := range steps {
		if err := step(trials); err != nil {
			return err
		}
	}

	if mos == nil {
		r.skip("mos", "no MOS file given")
	} else if err := r.mos(mos); err != nil {
		return err
	}

	return r.capacity()
}

func (r *Report) ber(trials *dataset.Frame) error {
	const name = "ber"
	f := trials.Drop(dataset.ColSNR, dataset.ColParams, dataset.ColType)
	metrics := berColumns(f)
	if len(metrics) == 0 {
		r.skip(name, "no bit error rate columns")
		return nil
	}
	long, err := r.aggregateLong(f, []string{dataset.ColMethod}, metrics, nil)
	if err != nil {
		return err
	}
	ax := r.opts.Labels.Axes
	return r.bar(chart.BarChart{
		Name:   name,
		XLabel: ax.Method,
		YLabel: ax.BER,
		Data:   long,
		X:      dataset.ColMethod,
		Hue:    aggregate.MetricColumn,
	})
}

func (r *Report) berByType(trials *dataset.Frame) error {
	const name = "ber_by_type"
	f := trials.Drop(dataset.ColSNR, dataset.ColParams)
	metrics := berColumns(f)
	if len(metrics) == 0 || !f.Has(dataset.ColType) {
		r.skip(name, "no bit error rate or type columns")
		return nil
	}
	long, err := r.aggregateLong(f, []string{dataset.ColMethod, dataset.ColType}, metrics, nil)
	if err != nil {
		return err
	}
	ax := r.opts.Labels.Axes
	return r.bar(chart.BarChart{
		Name:   name,
		XLabel: ax.Method,
		YLabel: ax.BER,
		Data:   long,
		X:      dataset.ColMethod,
		Hue:    aggregate.MetricColumn,
		Facet:  dataset.ColType,
	})
}

func (r *Report) snr(trials *dataset.Frame) error {
	const name = "snr"
	if !trials.Has(dataset.ColSNR) {
		r.skip(name, "no snr column")
		return nil
	}
	f := trials.Select(dataset.ColMethod, dataset.ColSNR)
	long, err := r.aggregateLong(f, []string{dataset.ColMethod}, nil, nil)
	if err != nil {
		return err
	}
	ax := r.opts.Labels.Axes
	return r.bar(chart.BarChart{
		Name:   name,
		XLabel: ax.Method,
		YLabel: ax.SNR,
		Data:   long,
		X:      dataset.ColMethod,
	})
}

func (r *Report) snrByType(trials *dataset.Frame) error {
	const name = "snr_by_type"
	if !trials.Has(dataset.ColSNR) || !trials.Has(dataset.ColType) {
		r.skip(name, "no snr or type column")
		return nil
	}
	f := trials.Select(dataset.ColMethod, dataset.ColType, dataset.ColSNR)
	long, err := r.aggregateLong(f, []string{dataset.ColMethod, dataset.ColType}, nil, nil)
	if err != nil {
		return err
	}
	ax := r.opts.Labels.Axes
	return r.bar(chart.BarChart{
		Name:   name,
		XLabel: ax.Method,
		YLabel: ax.SNR,
		Data:   long,
		X:      dataset.ColMethod,
		Hue:    dataset.ColType,
	})
}

func (r *Report) mos(mos *dataset.Frame) error {
	const name = "mos"
	if !mos.Has(dataset.ColScore) {
		r.skip(name, "no score column")
		return nil
	}
	f := mos.Select(dataset.ColMethod, dataset.ColType, dataset.ColScore)
	long, err := r.aggregateLong(f, []string{dataset.ColMethod, dataset.ColType}, nil, nil)
	if err != nil {
		return err
	}
	ax := r.opts.Labels.Axes
	return r.bar(chart.BarChart{
		Name:   name,
		XLabel: ax.Method,
		YLabel: ax.Score,
		Data:   long,
		X:      dataset.ColMethod,
		Hue:    dataset.ColType,
	})
}
