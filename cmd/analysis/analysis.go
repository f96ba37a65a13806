// Command analysis renders the comparison figures of the steganography
// benchmark report from its CSV result files.
//
// Usage:
//
//	analysis [flags] <data-file> [<mos-file>] <mode>
//
// mode is "params" (per-method configuration comparison) or "cmp"
// (cross-method comparison). Without -save the figures are served as
// interactive pages.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/matejmatuska/audio-stego/internal/chart"
	"github.com/matejmatuska/audio-stego/internal/config"
	"github.com/matejmatuska/audio-stego/internal/dataset"
	"github.com/matejmatuska/audio-stego/internal/display"
	"github.com/matejmatuska/audio-stego/internal/fsutil"
	"github.com/matejmatuska/audio-stego/internal/labels"
	"github.com/matejmatuska/audio-stego/internal/monitoring"
	"github.com/matejmatuska/audio-stego/internal/report"
	"github.com/matejmatuska/audio-stego/internal/version"
)

// UsageError is a command line mistake. It is reported with the usage text.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

type options struct {
	configPath string
	save       bool
	html       bool
	outDir     string
	format     string
	listen     string
	noBrowser  bool
	stddev     bool
	version    bool

	dataFile string
	mosFile  string
	mode     report.Mode

	set map[string]bool // flags given explicitly
}

func newFlagSet(o *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("analysis", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "report configuration JSON (default "+config.DefaultConfigPath+" when present)")
	fs.BoolVar(&o.save, "save", false, "write figure files instead of serving interactive pages")
	fs.BoolVar(&o.html, "html", false, "with -save, write interactive HTML pages instead of figure files")
	fs.StringVar(&o.outDir, "out", "", "output directory for -save")
	fs.StringVar(&o.format, "format", "", "figure file format: pdf, svg or png")
	fs.StringVar(&o.listen, "serve", "", "listen address of the display server")
	fs.BoolVar(&o.noBrowser, "no-browser", false, "do not open a browser in display mode")
	fs.BoolVar(&o.stddev, "stddev", false, "compute standard deviations")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: analysis [flags] <data-file> [<mos-file>] <mode>\n\nmode is %q or %q.\n\nFlags:\n", report.ModeParams, report.ModeCmp)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses the command line. Mistakes are returned as *UsageError.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: make(map[string]bool)}
	fs := newFlagSet(o, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, &UsageError{Msg: err.Error()}
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	if o.version {
		return o, nil
	}

	pos := fs.Args()
	switch len(pos) {
	case 2:
		o.dataFile = pos[0]
	case 3:
		o.dataFile, o.mosFile = pos[0], pos[1]
	default:
		fs.Usage()
		return nil, &UsageError{Msg: fmt.Sprintf("expected 2 or 3 arguments, got %d", len(pos))}
	}
	mode, err := report.ParseMode(pos[len(pos)-1])
	if err != nil {
		fs.Usage()
		return nil, &UsageError{Msg: err.Error()}
	}
	o.mode = mode
	return o, nil
}

// loadConfig reads the -config file, or the default file when it exists.
func loadConfig(o *options, fsys fsutil.FileSystem) (*config.ReportConfig, error) {
	path := o.configPath
	if path == "" {
		if !fsys.Exists(config.DefaultConfigPath) {
			return config.EmptyReportConfig(), nil
		}
		path = config.DefaultConfigPath
	}
	cfg, err := config.LoadReportConfig(fsys, path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides config values with explicitly given flags.
func applyFlags(cfg *config.ReportConfig, o *options) error {
	if o.set["out"] {
		cfg.OutDir = &o.outDir
	}
	if o.set["format"] {
		cfg.Format = &o.format
	}
	if o.set["serve"] {
		cfg.Listen = &o.listen
	}
	if o.set["stddev"] {
		cfg.StdDev = &o.stddev
	}
	return cfg.Validate()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "analysis: %v\n", err)
		return 1
	}
	if o.version {
		fmt.Fprintln(stdout, "analysis", version.String())
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, o, fsutil.OSFileSystem{}, stdout); err != nil {
		fmt.Fprintf(stderr, "analysis: %v\n", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, o *options, fsys fsutil.FileSystem, stdout io.Writer) error {
	cfg, err := loadConfig(o, fsys)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, o); err != nil {
		return err
	}

	trials, err := dataset.LoadFile(fsys, o.dataFile, cfg.TrialOptions())
	if err != nil {
		return err
	}
	in := report.Inputs{Trials: trials.Frame}
	if o.mosFile != "" {
		mos, err := dataset.LoadMOSFile(fsys, o.mosFile, cfg.MOSOptions(), cfg.GetTypeSeparator())
		if err != nil {
			return err
		}
		in.MOS = mos.Frame
	}

	table, err := labels.Lookup(cfg.GetLabels())
	if err != nil {
		return err
	}
	numbers, err := chart.NewNumberFormatter(cfg.GetLanguage())
	if err != nil {
		return err
	}
	opts := report.Options{
		Labels:        table,
		StdDev:        cfg.GetStdDev(),
		FilterBest:    cfg.GetFilterBestParams(),
		BestParams:    cfg.GetBestParams(),
		UnknownPolicy: cfg.GetUnknownMethodPolicy(),
		Capacity: report.CapacityOptions{
			MaxLength:        cfg.GetMaxLength(),
			LengthStep:       cfg.GetLengthStep(),
			FrameSizeLength:  cfg.GetFrameSizeLength(),
			FrameSizeMin:     cfg.GetFrameSizeMin(),
			FrameSizeMax:     cfg.GetFrameSizeMax(),
			FrameSizeStep:    cfg.GetFrameSizeStep(),
			LengthFrameSizes: cfg.GetLengthFrameSizes(),
		},
	}

	if o.save && o.html {
		r := &chart.EChartsRenderer{Numbers: numbers}
		if _, err := report.New(r, opts).Run(o.mode, in); err != nil {
			return err
		}
		if err := r.WriteAll(fsys, cfg.GetOutDir()); err != nil {
			return err
		}
		for _, p := range r.Pages() {
			fmt.Fprintln(stdout, filepath.Join(cfg.GetOutDir(), p.Name+".html"))
		}
		return nil
	}
	if o.save {
		format, err := chart.ParseFormat(cfg.GetFormat())
		if err != nil {
			return err
		}
		r := chart.NewPlotRenderer(fsys, cfg.GetOutDir(), format, numbers)
		sum, err := report.New(r, opts).Run(o.mode, in)
		if err != nil {
			return err
		}
		for _, name := range sum.Rendered {
			fmt.Fprintln(stdout, r.Path(name))
		}
		return nil
	}

	r := &chart.EChartsRenderer{Numbers: numbers}
	sum, err := report.New(r, opts).Run(o.mode, in)
	if err != nil {
		return err
	}
	if len(sum.Rendered) == 0 {
		return errors.New("no figures to display")
	}

	ln, err := net.Listen("tcp", cfg.GetListen())
	if err != nil {
		return fmt.Errorf("failed to create listener for HTTP server: %w", err)
	}
	url := display.URL(ln)
	fmt.Fprintf(stdout, "serving %d figures at %s (Ctrl+C to stop)\n", len(sum.Rendered), url)
	if !o.noBrowser {
		display.OpenBrowser(url)
	}
	monitoring.Logf("mode %s: %d figures, %d skipped", o.mode, len(sum.Rendered), len(sum.Skipped))
	return display.NewServer("Report: "+string(o.mode), r.Pages()).Serve(ctx, ln)
}
