package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/matejmatuska/audio-stego/internal/aggregate"
	"github.com/matejmatuska/audio-stego/internal/chart"
	"github.com/matejmatuska/audio-stego/internal/dataset"
	"github.com/matejmatuska/audio-stego/internal/fsutil"
	"github.com/matejmatuska/audio-stego/internal/labels"
)

// DefaultConfigPath is the path to the report defaults file.
const DefaultConfigPath = "config/report.defaults.json"

// ReportConfig holds the settings of one report run. Every field is
// optional; the Get* methods supply defaults for omitted fields, so partial
// configs are safe.
type ReportConfig struct {
	// Input parsing
	Delimiter     *string `json:"delimiter,omitempty"`
	Decimal       *string `json:"decimal,omitempty"`
	TypeSeparator *string `json:"type_separator,omitempty"` // MOS filename prefix separator

	// Presentation
	Labels   *string `json:"labels,omitempty"`   // label table version
	Language *string `json:"language,omitempty"` // number formatting
	Format   *string `json:"format,omitempty"`
	OutDir   *string `json:"out_dir,omitempty"`
	Listen   *string `json:"listen,omitempty"`
	StdDev   *bool   `json:"stddev,omitempty"`

	// Cross-method comparison
	BestParams          map[string]string `json:"best_params,omitempty"`
	UnknownMethodPolicy *string           `json:"unknown_method_policy,omitempty"`
	FilterBest          *bool             `json:"filter_best_params,omitempty"`

	// Capacity model
	MaxLength        *float64 `json:"max_length_s,omitempty"`
	LengthStep       *float64 `json:"length_step_s,omitempty"`
	FrameSizeLength  *float64 `json:"frame_size_signal_s,omitempty"`
	FrameSizeMin     *int     `json:"frame_size_min,omitempty"`
	FrameSizeMax     *int     `json:"frame_size_max,omitempty"`
	FrameSizeStep    *int     `json:"frame_size_step,omitempty"`
	LengthFrameSizes []int    `json:"length_frame_sizes,omitempty"`
}

// EmptyReportConfig returns a ReportConfig with all fields unset.
func EmptyReportConfig() *ReportConfig {
	return &ReportConfig{}
}

// maxConfigSize bounds the config file read by LoadReportConfig.
const maxConfigSize = 1 << 20

// LoadReportConfig reads and validates the JSON config at path on fsys.
func LoadReportConfig(fsys fsutil.FileSystem, path string) (*ReportConfig, error) {
	path = filepath.Clean(path)
	if ext := filepath.Ext(path); ext != ".json" {
		return nil, fmt.Errorf("config %s: want a .json file, got %q", path, ext)
	}
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config %s: %d bytes exceeds the %d byte limit", path, info.Size(), maxConfigSize)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg, err := ParseReportConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseReportConfig decodes and validates a JSON config. Unknown fields are
// rejected.
func ParseReportConfig(data []byte) (*ReportConfig, error) {
	cfg := EmptyReportConfig()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the working directory
// or one of its parents, for test setup. It panics when no copy loads.
func MustLoadDefaultConfig() *ReportConfig {
	path := DefaultConfigPath
	for range 4 {
		if cfg, err := LoadReportConfig(fsutil.OSFileSystem{}, path); err == nil {
			return cfg
		}
		path = filepath.Join("..", path)
	}
	panic("config: " + DefaultConfigPath + " not found in the working directory or its parents")
}

// Validate checks that the configuration values are valid.
func (c *ReportConfig) Validate() error {
	if c.Delimiter != nil && utf8.RuneCountInString(*c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", *c.Delimiter)
	}
	if c.Decimal != nil && *c.Decimal != "." && *c.Decimal != "," {
		return fmt.Errorf("decimal must be \".\" or \",\", got %q", *c.Decimal)
	}
	if c.GetDelimiter() == c.GetDecimal() {
		return fmt.Errorf("delimiter and decimal mark are both %q", c.GetDelimiter())
	}
	if c.TypeSeparator != nil && *c.TypeSeparator == "" {
		return fmt.Errorf("type_separator must not be empty")
	}
	if _, err := labels.Lookup(c.GetLabels()); err != nil {
		return err
	}
	if _, err := language.Parse(c.GetLanguage()); err != nil {
		return fmt.Errorf("language %q: %w", c.GetLanguage(), err)
	}
	if _, err := chart.ParseFormat(c.GetFormat()); err != nil {
		return err
	}
	if c.UnknownMethodPolicy != nil {
		if _, err := aggregate.ParseUnknownPolicy(*c.UnknownMethodPolicy); err != nil {
			return err
		}
	}

	if c.MaxLength != nil && *c.MaxLength <= 0 {
		return fmt.Errorf("max_length_s must be positive, got %f", *c.MaxLength)
	}
	if c.LengthStep != nil && (*c.LengthStep <= 0 || *c.LengthStep > c.GetMaxLength()) {
		return fmt.Errorf("length_step_s must be in (0, max_length_s], got %f", *c.LengthStep)
	}
	if c.FrameSizeLength != nil && *c.FrameSizeLength <= 0 {
		return fmt.Errorf("frame_size_signal_s must be positive, got %f", *c.FrameSizeLength)
	}
	if c.GetFrameSizeMin() <= 0 || c.GetFrameSizeMax() <= c.GetFrameSizeMin() {
		return fmt.Errorf("frame size range [%d, %d) is empty", c.GetFrameSizeMin(), c.GetFrameSizeMax())
	}
	if c.GetFrameSizeStep() <= 0 {
		return fmt.Errorf("frame_size_step must be positive, got %d", c.GetFrameSizeStep())
	}
	for _, fs := range c.LengthFrameSizes {
		if fs <= 0 {
			return fmt.Errorf("length_frame_sizes must be positive, got %d", fs)
		}
	}

	return nil
}

// GetDelimiter returns the CSV field delimiter or the default.
func (c *ReportConfig) GetDelimiter() rune {
	if c.Delimiter == nil || *c.Delimiter == "" {
		return ';' // default
	}
	r, _ := utf8.DecodeRuneInString(*c.Delimiter)
	return r
}

// GetDecimal returns the decimal mark or the default.
func (c *ReportConfig) GetDecimal() rune {
	if c.Decimal == nil || *c.Decimal == "" {
		return '.' // default
	}
	r, _ := utf8.DecodeRuneInString(*c.Decimal)
	return r
}

// GetTypeSeparator returns the MOS filename separator or the default.
func (c *ReportConfig) GetTypeSeparator() string {
	if c.TypeSeparator == nil {
		return dataset.DefaultTypeSeparator
	}
	return *c.TypeSeparator
}

// GetLabels returns the label table version or the default.
func (c *ReportConfig) GetLabels() string {
	if c.Labels == nil || *c.Labels == "" {
		return labels.DefaultVersion
	}
	return *c.Labels
}

// GetLanguage returns the number formatting language or the default.
func (c *ReportConfig) GetLanguage() string {
	if c.Language == nil || *c.Language == "" {
		return "sk" // default
	}
	return *c.Language
}

// GetFormat returns the output file format or the default.
func (c *ReportConfig) GetFormat() string {
	if c.Format == nil || *c.Format == "" {
		return string(chart.PDF)
	}
	return *c.Format
}

// GetOutDir returns the output directory or the default.
func (c *ReportConfig) GetOutDir() string {
	if c.OutDir == nil || *c.OutDir == "" {
		return "." // default
	}
	return *c.OutDir
}

// GetListen returns the display server address or the default.
func (c *ReportConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return "localhost:8080" // default
	}
	return *c.Listen
}

// GetStdDev reports whether standard deviations are computed.
func (c *ReportConfig) GetStdDev() bool {
	if c.StdDev == nil {
		return false // default
	}
	return *c.StdDev
}

// GetBestParams returns the canonical configuration per method.
func (c *ReportConfig) GetBestParams() map[string]string {
	if c.BestParams == nil {
		return map[string]string{
			"phase":   "framesize=1024",
			"echo":    "framesize=4096",
			"echo-hc": "framesize=4096",
			"lsb":     "framesize=8192",
			"tone":    "framesize=2048",
		}
	}
	return c.BestParams
}

// GetUnknownMethodPolicy returns the policy for methods without a
// canonical configuration.
func (c *ReportConfig) GetUnknownMethodPolicy() aggregate.UnknownPolicy {
	if c.UnknownMethodPolicy == nil {
		return aggregate.PassThrough // default
	}
	p, err := aggregate.ParseUnknownPolicy(*c.UnknownMethodPolicy)
	if err != nil {
		return aggregate.PassThrough // default on parse error
	}
	return p
}

// GetFilterBestParams reports whether the comparison figures are restricted
// to the canonical configuration of each method.
func (c *ReportConfig) GetFilterBestParams() bool {
	if c.FilterBest == nil {
		return false // default
	}
	return *c.FilterBest
}

// GetMaxLength returns the longest modelled signal in seconds.
func (c *ReportConfig) GetMaxLength() float64 {
	if c.MaxLength == nil {
		return 60 // default
	}
	return *c.MaxLength
}

// GetLengthStep returns the signal length sampling step in seconds.
func (c *ReportConfig) GetLengthStep() float64 {
	if c.LengthStep == nil {
		return 0.1 // default
	}
	return *c.LengthStep
}

// GetFrameSizeLength returns the signal length of the frame size model.
func (c *ReportConfig) GetFrameSizeLength() float64 {
	if c.FrameSizeLength == nil {
		return 10 // default
	}
	return *c.FrameSizeLength
}

// GetFrameSizeMin returns the smallest modelled frame size.
func (c *ReportConfig) GetFrameSizeMin() int {
	if c.FrameSizeMin == nil {
		return 512 // default
	}
	return *c.FrameSizeMin
}

// GetFrameSizeMax returns the exclusive upper bound of modelled frame sizes.
func (c *ReportConfig) GetFrameSizeMax() int {
	if c.FrameSizeMax == nil {
		return 8192 // default
	}
	return *c.FrameSizeMax
}

// GetFrameSizeStep returns the frame size sampling step.
func (c *ReportConfig) GetFrameSizeStep() int {
	if c.FrameSizeStep == nil {
		return 128 // default
	}
	return *c.FrameSizeStep
}

// GetLengthFrameSizes returns the frame sizes of the capacity by length
// model.
func (c *ReportConfig) GetLengthFrameSizes() []int {
	if len(c.LengthFrameSizes) == 0 {
		return []int{512, 1024, 2048, 4096, 8192}
	}
	return c.LengthFrameSizes
}

// TrialOptions returns the load options for the trial results file.
func (c *ReportConfig) TrialOptions() dataset.LoadOptions {
	opts := dataset.TrialOptions()
	opts.Delimiter = c.GetDelimiter()
	opts.Decimal = c.GetDecimal()
	return opts
}

// MOSOptions returns the load options for the MOS results file.
func (c *ReportConfig) MOSOptions() dataset.LoadOptions {
	opts := dataset.MOSOptions()
	opts.Delimiter = c.GetDelimiter()
	opts.Decimal = c.GetDecimal()
	return opts
}
