// Package chart renders report figures. Callers describe a figure with a
// BarChart or LineChart value; a Renderer owns every plotting canvas and the
// output it writes.
package chart

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matejmatuska/audio-stego/internal/aggregate"
)

// ErrNoData is returned for a figure with nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Format is an output file format.
type Format string

const (
	PDF Format = "pdf"
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PDF, SVG, PNG:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want pdf, svg or png)", s)
}

// Renderer draws figures.
type Renderer interface {
	RenderBar(c BarChart) error
	RenderLine(c LineChart) error
}

// BarChart is a grouped bar chart over long-format data. X, Hue and Facet
// name columns of Data (a key column or aggregate.MetricColumn). Hue and
// Facet are optional.
type BarChart struct {
	Name   string
	Title  string
	XLabel string
	YLabel string

	Data  *aggregate.LongTable
	X     string
	Hue   string
	Facet string
}

// LineChart is a set of numeric series sharing both axes.
type LineChart struct {
	Name   string
	Title  string
	XLabel string
	YLabel string

	Series []Series
	// LogBase enables a logarithmic y axis when greater than 1.
	LogBase float64
	// XTicks replaces the automatic x ticks when set.
	XTicks []float64
}

// Series is one line. Series with the same Group share a color.
type Series struct {
	Name   string
	Group  string
	X, Y   []float64
	Dashes int     // dash pattern index, 0 for solid
	Width  float64 // line width in points, 0 for the default
}

func (c LineChart) validate() error {
	if c.Name == "" {
		return errors.New("chart name is required")
	}
	points := 0
	for _, s := range c.Series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("series %q: %d x values but %d y values", s.Name, len(s.X), len(s.Y))
		}
		for _, y := range s.Y {
			if c.LogBase <= 1 || y > 0 {
				points++
			}
		}
	}
	if points == 0 {
		return fmt.Errorf("%s: %w", c.Name, ErrNoData)
	}
	return nil
}

// groups returns the distinct series groups in series order.
func (c LineChart) groups() []string {
	var out []string
	for _, s := range c.Series {
		if g := s.group(); !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}

func (s Series) group() string {
	if s.Group != "" {
		return s.Group
	}
	return s.Name
}

type cell struct {
	value, stddev float64
	ok            bool
}

// barGrid is a BarChart laid out as facets × hues × x levels.
type barGrid struct {
	facets []string
	hues   []string
	xs     []string
	cells  map[[3]string]cell
}

func newBarGrid(c BarChart) (*barGrid, error) {
	if c.Name == "" {
		return nil, errors.New("chart name is required")
	}
	if c.Data == nil || c.Data.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", c.Name, ErrNoData)
	}
	for _, col := range []string{c.X, c.Hue, c.Facet} {
		if col == "" {
			continue
		}
		if col != aggregate.MetricColumn && !slices.Contains(c.Data.Keys, col) {
			return nil, fmt.Errorf("%s: no column %q in data", c.Name, col)
		}
	}
	if c.X == "" {
		return nil, fmt.Errorf("%s: x column is required", c.Name)
	}

	levels := func(col string) []string {
		if col == "" {
			return []string{""}
		}
		return c.Data.Levels(col)
	}
	g := &barGrid{
		facets: levels(c.Facet),
		hues:   levels(c.Hue),
		xs:     levels(c.X),
		cells:  make(map[[3]string]cell),
	}
	field := func(r aggregate.LongRecord, col string) string {
		if col == "" {
			return ""
		}
		v, _ := c.Data.Field(r, col)
		return v
	}
	for _, r := range c.Data.Records {
		k := [3]string{field(r, c.Facet), field(r, c.Hue), field(r, c.X)}
		g.cells[k] = cell{value: r.Value, stddev: r.StdDev, ok: true}
	}
	return g, nil
}

func (g *barGrid) at(facet, hue, x string) cell {
	return g.cells[[3]string{facet, hue, x}]
}
