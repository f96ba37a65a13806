package chart

import (
	"fmt"
	"path/filepath"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matejmatuska/audio-stego/internal/fsutil"
	"github.com/matejmatuska/audio-stego/internal/monitoring"
)

// Default panel size, matching the figures of the written report.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// barGroupWidth is the width of one x category in points.
const barGroupWidth = 36.0

// PlotRenderer writes figures as files using gonum/plot. Faceted charts
// are drawn side by side into one file.
type PlotRenderer struct {
	FS     fsutil.FileSystem
	Dir    string
	Format Format

	// Width and Height size a single panel; zero selects the defaults.
	Width, Height vg.Length

	Numbers *NumberFormatter
}

// NewPlotRenderer returns a renderer writing format files into dir.
func NewPlotRenderer(fsys fsutil.FileSystem, dir string, format Format, numbers *NumberFormatter) *PlotRenderer {
	return &PlotRenderer{FS: fsys, Dir: dir, Format: format, Numbers: numbers}
}

// Path returns the file a figure called name is written to.
func (r *PlotRenderer) Path(name string) string {
	return filepath.Join(r.Dir, name+"."+string(r.format()))
}

func (r *PlotRenderer) format() Format {
	if r.Format == "" {
		return PDF
	}
	return r.Format
}

// RenderBar draws one panel per facet level.
func (r *PlotRenderer) RenderBar(c BarChart) error {
	g, err := newBarGrid(c)
	if err != nil {
		return err
	}
	numbers := numbersOrDefault(r.Numbers)
	palette := colors(len(g.hues))
	width := vg.Points(barGroupWidth / float64(len(g.hues)))

	panels := make([]*plot.Plot, len(g.facets))
	for i, facet := range g.facets {
		p := plot.New()
		p.Title.Text = c.Title
		if facet != "" {
			p.Title.Text = facet
		}
		p.X.Label.Text = c.XLabel
		p.Y.Label.Text = c.YLabel
		p.Y.Min = 0
		p.Y.Tick.Marker = localeTicks{base: plot.DefaultTicks{}, numbers: numbers}
		p.Add(plotter.NewGrid())

		for j, hue := range g.hues {
			vals := make(plotter.Values, len(g.xs))
			for k, x := range g.xs {
				if cl := g.at(facet, hue, x); cl.ok {
					vals[k] = cl.value
				}
			}
			bars, err := plotter.NewBarChart(vals, width)
			if err != nil {
				return fmt.Errorf("%s: bars for %q: %w", c.Name, hue, err)
			}
			bars.Color = palette[j]
			bars.LineStyle.Width = 0
			bars.Offset = vg.Length(float64(j)-float64(len(g.hues)-1)/2) * width
			p.Add(bars)
			if hue != "" && i == len(g.facets)-1 {
				p.Legend.Add(hue, bars)
			}
		}
		p.NominalX(g.xs...)
		p.Legend.Top = true
		panels[i] = p
	}
	return r.write(c.Name, panels)
}

// RenderLine draws all series into a single panel. On a logarithmic axis
// points with a non-positive y value are left out.
func (r *PlotRenderer) RenderLine(c LineChart) error {
	if err := c.validate(); err != nil {
		return err
	}
	numbers := numbersOrDefault(r.Numbers)

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Add(plotter.NewGrid())
	if c.LogBase > 1 {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = powerTicks{base: c.LogBase}
	} else {
		p.Y.Tick.Marker = localeTicks{base: plot.DefaultTicks{}, numbers: numbers}
	}
	if len(c.XTicks) > 0 {
		p.X.Tick.Marker = constantTicks(c.XTicks, numbers)
	}

	groups := c.groups()
	palette := colors(len(groups))
	for _, s := range c.Series {
		pts := make(plotter.XYs, 0, len(s.X))
		for i := range s.X {
			if c.LogBase > 1 && s.Y[i] <= 0 {
				continue
			}
			pts = append(pts, plotter.XY{X: s.X[i], Y: s.Y[i]})
		}
		if len(pts) == 0 {
			monitoring.Logf("%s: series %q has no points to draw", c.Name, s.Name)
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s: line %q: %w", c.Name, s.Name, err)
		}
		line.Color = palette[slices.Index(groups, s.group())]
		line.Width = vg.Points(1)
		if s.Width > 0 {
			line.Width = vg.Points(s.Width)
		}
		if s.Dashes > 0 {
			line.Dashes = plotutil.Dashes(s.Dashes)
		}
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return r.write(c.Name, []*plot.Plot{p})
}

func (r *PlotRenderer) write(name string, panels []*plot.Plot) error {
	w, h := r.Width, r.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	if len(panels) > 1 {
		w = w * 2 / 3 * vg.Length(len(panels))
	}

	c, err := draw.NewFormattedCanvas(w, h, string(r.format()))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(panels),
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{panels}, tiles, draw.New(c))
	for i, p := range panels {
		p.Draw(canvases[0][i])
	}

	if r.Dir != "" {
		if err := r.FS.MkdirAll(r.Dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	path := r.Path(name)
	f, err := r.FS.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	monitoring.Logf("wrote %s", path)
	return nil
}
