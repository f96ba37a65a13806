package report

import (
	"fmt"
	"math"

	"github.com/matejmatuska/audio-stego/internal/capacity"
	"github.com/matejmatuska/audio-stego/internal/chart"
)

// capacity builds the figures of the theoretical capacity model.
func (r *Report) capacity() error {
	opts := r.opts.Capacity
	durations, err := capacity.Range(0, opts.MaxLength, opts.LengthStep)
	if err != nil {
		return fmt.Errorf("capacity lengths: %w", err)
	}
	sizes, err := capacity.FrameSizes(opts.FrameSizeMin, opts.FrameSizeMax, opts.FrameSizeStep)
	if err != nil {
		return fmt.Errorf("capacity frame sizes: %w", err)
	}
	ax := r.opts.Labels.Axes

	if err := r.line(chart.LineChart{
		Name:    "capacity",
		XLabel:  ax.Length,
		YLabel:  ax.Capacity,
		Series:  r.series(capacity.UsedByLength(durations), nil),
		LogBase: 2,
	}); err != nil {
		return err
	}

	dashes := map[string]int{"tone": 1, "echo": 2}
	if err := r.line(chart.LineChart{
		Name:    "capacity_framesize",
		XLabel:  ax.FrameSize,
		YLabel:  ax.Capacity,
		Series:  r.series(capacity.ByFrameSize(opts.FrameSizeLength, sizes), dashes),
		LogBase: 10,
		XTicks:  powersOfTwo(opts.FrameSizeMin, opts.FrameSizeMax),
	}); err != nil {
		return err
	}

	return r.line(chart.LineChart{
		Name:    "capacity_length",
		XLabel:  ax.Length,
		YLabel:  ax.Capacity,
		Series:  r.series(capacity.ByLength(durations, opts.LengthFrameSizes, capacity.Chosen), nil),
		LogBase: 10,
	})
}

// series converts capacity curves to chart series. Curves are colored by
// method; per frame size curves are dashed by frame size and the chosen
// configuration is drawn thicker.
func (r *Report) series(curves []capacity.Curve, dashes map[string]int) []chart.Series {
	sizeDash := make(map[int]int)
	out := make([]chart.Series, 0, len(curves))
	for _, c := range curves {
		s := chart.Series{
			Name:   r.opts.Labels.Method(c.Method),
			Group:  c.Method,
			X:      make([]float64, len(c.Points)),
			Y:      make([]float64, len(c.Points)),
			Dashes: dashes[c.Method],
		}
		for i, p := range c.Points {
			s.X[i], s.Y[i] = p.X, p.Y
		}
		if c.FrameSize > 0 {
			s.Name = fmt.Sprintf("%s (%d)", s.Name, c.FrameSize)
			d, ok := sizeDash[c.FrameSize]
			if !ok {
				d = len(sizeDash)
				sizeDash[c.FrameSize] = d
			}
			s.Dashes = d
			s.Width = 0.75
			if c.Chosen {
				s.Width = 2
			}
		}
		out = append(out, s)
	}
	return out
}

// powersOfTwo returns the powers of two in [lo, hi].
func powersOfTwo(lo, hi int) []float64 {
	var out []float64
	for k := math.Ceil(math.Log2(float64(lo))); math.Pow(2, k) <= float64(hi); k++ {
		out = append(out, math.Pow(2, k))
	}
	return out
}
