package chart

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/matejmatuska/audio-stego/internal/fsutil"
)

// Page is one rendered HTML figure.
type Page struct {
	Name  string
	Title string
	HTML  []byte
}

// EChartsRenderer renders figures as interactive HTML pages using
// go-echarts. Pages are kept in memory in render order; WriteAll saves
// them as files.
type EChartsRenderer struct {
	Numbers *NumberFormatter
	// AssetsHost overrides where the echarts scripts are loaded from.
	AssetsHost string

	pages []Page
}

// Pages returns the rendered pages in render order.
func (r *EChartsRenderer) Pages() []Page { return slices.Clone(r.pages) }

// Page returns the page with the given name.
func (r *EChartsRenderer) Page(name string) (Page, bool) {
	i := slices.IndexFunc(r.pages, func(p Page) bool { return p.Name == name })
	if i < 0 {
		return Page{}, false
	}
	return r.pages[i], true
}

func (r *EChartsRenderer) init(title string) opts.Initialization {
	return opts.Initialization{
		PageTitle:  title,
		Width:      "900px",
		Height:     "540px",
		AssetsHost: r.AssetsHost,
	}
}

// RenderBar renders one bar chart per facet level onto a single page.
func (r *EChartsRenderer) RenderBar(c BarChart) error {
	g, err := newBarGrid(c)
	if err != nil {
		return err
	}
	numbers := numbersOrDefault(r.Numbers)
	palette := colors(len(g.hues))

	page := components.NewPage()
	page.PageTitle = c.Title
	if r.AssetsHost != "" {
		page.SetAssetsHost(r.AssetsHost)
	}
	for _, facet := range g.facets {
		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithInitializationOpts(r.init(c.Title)),
			charts.WithTitleOpts(opts.Title{Title: c.Title, Subtitle: facet}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(g.hues) > 1), Top: "5%"}),
			charts.WithXAxisOpts(opts.XAxis{Name: c.XLabel, NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: c.YLabel}),
		)
		bar.SetXAxis(g.xs)
		for j, hue := range g.hues {
			data := make([]opts.BarData, len(g.xs))
			for k, x := range g.xs {
				cl := g.at(facet, hue, x)
				if !cl.ok {
					data[k] = opts.BarData{Value: nil}
					continue
				}
				data[k] = opts.BarData{
					Value: cl.value,
					Label: &opts.Label{
						Show:      opts.Bool(true),
						Position:  "top",
						Formatter: types.FuncStr(barLabel(numbers, cl)),
					},
				}
			}
			name := hue
			if name == "" {
				name = c.YLabel
			}
			bar.AddSeries(name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(palette[j])}))
		}
		page.AddCharts(bar)
	}
	return r.add(c.Name, c.Title, page)
}

func barLabel(numbers *NumberFormatter, cl cell) string {
	if cl.stddev == 0 {
		return numbers.Format(cl.value)
	}
	return numbers.Format(cl.value) + " ± " + numbers.Format(cl.stddev)
}

// RenderLine renders all series into one line chart.
func (r *EChartsRenderer) RenderLine(c LineChart) error {
	if err := c.validate(); err != nil {
		return err
	}
	groups := c.groups()
	palette := colors(len(groups))

	yAxis := opts.YAxis{Name: c.YLabel, Type: "value"}
	if c.LogBase > 1 {
		yAxis.Type = "log"
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(r.init(c.Title)),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "5%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: c.XLabel, Type: "value", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(yAxis),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	for _, s := range c.Series {
		data := make([]opts.LineData, 0, len(s.X))
		for i := range s.X {
			if c.LogBase > 1 && s.Y[i] <= 0 {
				continue
			}
			data = append(data, opts.LineData{Value: []interface{}{s.X[i], s.Y[i]}})
		}
		style := opts.LineStyle{Color: hexColor(palette[slices.Index(groups, s.group())])}
		if s.Dashes > 0 {
			style.Type = "dashed"
		}
		if s.Width > 0 {
			style.Width = float32(s.Width)
		}
		line.AddSeries(s.Name, data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(style),
		)
	}

	page := components.NewPage()
	page.PageTitle = c.Title
	if r.AssetsHost != "" {
		page.SetAssetsHost(r.AssetsHost)
	}
	page.AddCharts(line)
	return r.add(c.Name, c.Title, page)
}

func (r *EChartsRenderer) add(name, title string, page *components.Page) error {
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("%s: render error: %w", name, err)
	}
	p := Page{Name: name, Title: title, HTML: buf.Bytes()}
	if i := slices.IndexFunc(r.pages, func(q Page) bool { return q.Name == name }); i >= 0 {
		r.pages[i] = p
		return nil
	}
	r.pages = append(r.pages, p)
	return nil
}

// WriteAll saves every page as <dir>/<name>.html.
func (r *EChartsRenderer) WriteAll(fsys fsutil.FileSystem, dir string) error {
	if dir != "" {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	for _, p := range r.pages {
		path := filepath.Join(dir, p.Name+".html")
		f, err := fsys.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := f.Write(p.HTML); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
	}
	return nil
}
