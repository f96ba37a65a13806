// Package report builds the figures of the steganography benchmark report
// from loaded result frames and hands them to a chart renderer.
package report

import (
	"errors"
	"fmt"

	"github.com/matejmatuska/audio-stego/internal/aggregate"
	"github.com/matejmatuska/audio-stego/internal/chart"
	"github.com/matejmatuska/audio-stego/internal/dataset"
	"github.com/matejmatuska/audio-stego/internal/labels"
	"github.com/matejmatuska/audio-stego/internal/monitoring"
)

// Mode selects the set of figures to build.
type Mode string

const (
	// ModeParams compares the configurations of each method.
	ModeParams Mode = "params"
	// ModeCmp compares the methods with each other.
	ModeCmp Mode = "cmp"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeParams, ModeCmp:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, ModeParams, ModeCmp)
}

// Inputs are the loaded result files. MOS is optional.
type Inputs struct {
	Trials *dataset.Frame
	MOS    *dataset.Frame
}

// CapacityOptions sample the capacity model.
type CapacityOptions struct {
	MaxLength        float64 // seconds
	LengthStep       float64 // seconds
	FrameSizeLength  float64 // signal length of the frame size figure
	FrameSizeMin     int
	FrameSizeMax     int
	FrameSizeStep    int
	LengthFrameSizes []int
}

// DefaultCapacityOptions returns the sampling of the published figures.
func DefaultCapacityOptions() CapacityOptions {
	return CapacityOptions{
		MaxLength:        60,
		LengthStep:       0.1,
		FrameSizeLength:  10,
		FrameSizeMin:     512,
		FrameSizeMax:     8192,
		FrameSizeStep:    128,
		LengthFrameSizes: []int{512, 1024, 2048, 4096, 8192},
	}
}

// Options configure a Report.
type Options struct {
	Labels *labels.Table
	StdDev bool

	// FilterBest restricts the comparison figures to BestParams.
	FilterBest    bool
	BestParams    map[string]string
	UnknownPolicy aggregate.UnknownPolicy

	Capacity CapacityOptions
}

// Summary lists the figures of a run.
type Summary struct {
	Rendered []string
	Skipped  []string
}

// Report builds figures. It is not safe for concurrent use.
type Report struct {
	renderer chart.Renderer
	opts     Options
	summary  Summary
}

// New returns a report drawing through r. A nil label table selects the
// default one.
func New(r chart.Renderer, opts Options) *Report {
	if opts.Labels == nil {
		opts.Labels = labels.MustLookup(labels.DefaultVersion)
	}
	if opts.Capacity.MaxLength == 0 {
		opts.Capacity = DefaultCapacityOptions()
	}
	return &Report{renderer: r, opts: opts}
}

// Run builds every figure of mode. Figures without data are skipped and
// logged; any other failure stops the run.
func (r *Report) Run(mode Mode, in Inputs) (Summary, error) {
	r.summary = Summary{}
	if in.Trials == nil {
		return r.summary, errors.New("no trial results loaded")
	}
	trials := r.opts.Labels.Restrict(in.Trials)

	var err error
	switch mode {
	case ModeParams:
		err = r.params(trials)
	case ModeCmp:
		var mos *dataset.Frame
		if in.MOS != nil {
			mos = r.opts.Labels.Restrict(in.MOS)
		}
		err = r.compare(trials, mos)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	return r.summary, err
}

func (r *Report) bar(c chart.BarChart) error {
	return r.draw(c.Name, func() error { return r.renderer.RenderBar(c) })
}

func (r *Report) line(c chart.LineChart) error {
	return r.draw(c.Name, func() error { return r.renderer.RenderLine(c) })
}

func (r *Report) draw(name string, render func() error) error {
	err := render()
	if errors.Is(err, chart.ErrNoData) {
		r.skip(name, "no data")
		return nil
	}
	if err != nil {
		return fmt.Errorf("figure %s: %w", name, err)
	}
	r.summary.Rendered = append(r.summary.Rendered, name)
	return nil
}

func (r *Report) skip(name, reason string) {
	monitoring.Logf("skipping figure %s: %s", name, reason)
	r.summary.Skipped = append(r.summary.Skipped, name)
}

// aggregateLong groups f by keys, averages metrics and returns the
// relabelled long form. Extra orderings are merged over the label table
// priorities.
func (r *Report) aggregateLong(f *dataset.Frame, keys, metrics []string, extra map[string][]string) (*aggregate.LongTable, error) {
	order := r.opts.Labels.GroupOrder()
	for k, v := range extra {
		order[k] = v
	}
	res, err := aggregate.GroupAndAggregate(f, keys, metrics, aggregate.Options{StdDev: r.opts.StdDev, Order: order})
	if err != nil {
		return nil, err
	}
	long, err := aggregate.ToLongFormat(res)
	if err != nil {
		return nil, err
	}
	return r.opts.Labels.Relabel(long), nil
}

// berColumns returns the bit error rate columns of f: every numeric column
// except the SNR and score columns.
func berColumns(f *dataset.Frame) []string {
	var out []string
	for _, c := range f.NumericColumns() {
		if c != dataset.ColSNR && c != dataset.ColScore {
			out = append(out, c)
		}
	}
	return out
}
