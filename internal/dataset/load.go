package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matejmatuska/audio-stego/internal/fsutil"
	"github.com/matejmatuska/audio-stego/internal/monitoring"
)

// DefaultTypeSeparator splits a MOS sample file name into the audio type
// prefix and the rest, e.g. "speech_03.wav" -> "speech".
const DefaultTypeSeparator = "_"

// LoadOptions controls how a result file is parsed.
type LoadOptions struct {
	// Delimiter separates fields. Zero means ';'.
	Delimiter rune
	// Decimal is the decimal mark of numeric fields. Zero means '.'.
	Decimal rune
	// TextColumns are read as categorical values; every other column is
	// numeric.
	TextColumns []string
	// Permissive numeric columns turn non-numeric text into a missing value
	// and a CoercionWarning instead of a ParseError.
	Permissive []string
	// Required columns must be present in the header.
	Required []string
}

// TrialOptions returns the options for per-trial BER/SNR result files.
func TrialOptions() LoadOptions {
	return LoadOptions{
		Delimiter:   ';',
		Decimal:     '.',
		TextColumns: []string{ColMethod, ColType, ColParams, ColFilename},
		Required:    []string{ColMethod},
	}
}

// MOSOptions returns the options for mean-opinion-score files. The score
// column is permissive so that partially invalid questionnaires still load.
func MOSOptions() LoadOptions {
	return LoadOptions{
		Delimiter:   ';',
		Decimal:     '.',
		TextColumns: []string{ColMethod, ColType, ColParams, ColFilename},
		Permissive:  []string{ColScore},
		Required:    []string{ColFilename, ColMethod, ColScore},
	}
}

func (o LoadOptions) delimiter() rune {
	if o.Delimiter == 0 {
		return ';'
	}
	return o.Delimiter
}

func (o LoadOptions) decimal() rune {
	if o.Decimal == 0 {
		return '.'
	}
	return o.Decimal
}

// LoadResult is a loaded frame together with the values that had to be
// coerced to missing.
type LoadResult struct {
	Frame    *Frame
	Warnings []CoercionWarning
}

// LoadFile opens path on fsys and loads it with Load.
func LoadFile(fsys fsutil.FileSystem, path string, opts LoadOptions) (*LoadResult, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result file: %w", err)
	}
	defer f.Close()

	res, err := Load(f, opts)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	for _, w := range res.Warnings {
		monitoring.Warnf("%s: %s", path, w)
	}
	return res, nil
}

// Load parses a delimited result file with a header row.
func Load(r io.Reader, opts LoadOptions) (*LoadResult, error) {
	delim, decimal := opts.delimiter(), opts.decimal()
	if delim == decimal {
		return nil, fmt.Errorf("delimiter and decimal mark are both %q", delim)
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Msg: "missing header row"}
	}
	if err != nil {
		return nil, csvParseError(err)
	}

	cols, err := headerColumns(header, opts)
	if err != nil {
		return nil, err
	}
	frame, err := NewFrame(cols...)
	if err != nil {
		return nil, &ParseError{Line: 1, Msg: "invalid header", Err: err}
	}

	res := &LoadResult{Frame: frame}
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvParseError(err)
		}
		line, _ := cr.FieldPos(0)
		for _, extra := range fields[len(cols):] {
			if v := strings.TrimSpace(extra); v != "" {
				return nil, &ParseError{Line: line, Msg: fmt.Sprintf("value %q under an unnamed column", v)}
			}
		}

		rec := TrialRecord{
			Labels: make(map[string]string),
			Values: make(map[string]float64),
		}
		for i, c := range cols {
			raw := strings.TrimSpace(fields[i])
			if c.Kind == Text {
				rec.Labels[c.Name] = raw
				continue
			}
			v, ok := parseNumber(raw, decimal)
			if !ok {
				if !slices.Contains(opts.Permissive, c.Name) {
					return nil, &ParseError{
						Line:   line,
						Column: c.Name,
						Msg:    fmt.Sprintf("%q is not a number", raw),
					}
				}
				res.Warnings = append(res.Warnings, CoercionWarning{Line: line, Column: c.Name, Value: raw})
				v = math.NaN()
			}
			rec.Values[c.Name] = v
		}
		frame.Append(rec)
	}
	return res, nil
}

// LoadMOS loads a mean-opinion-score file and derives the type column from
// the prefix of each sample file name. An existing type column is
// replaced.
func LoadMOS(r io.Reader, opts LoadOptions, sep string) (*LoadResult, error) {
	res, err := Load(r, opts)
	if err != nil {
		return nil, err
	}
	frame, err := DeriveType(res.Frame, sep)
	if err != nil {
		return nil, err
	}
	res.Frame = frame
	return res, nil
}

// LoadMOSFile is LoadFile followed by DeriveType.
func LoadMOSFile(fsys fsutil.FileSystem, path string, opts LoadOptions, sep string) (*LoadResult, error) {
	res, err := LoadFile(fsys, path, opts)
	if err != nil {
		return nil, err
	}
	frame, err := DeriveType(res.Frame, sep)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	res.Frame = frame
	return res, nil
}

// DeriveType sets the type column to the part of the filename column
// before the first sep. Names without sep keep their base name without
// extension.
func DeriveType(f *Frame, sep string) (*Frame, error) {
	if !f.Has(ColFilename) {
		return nil, &ParseError{Column: ColFilename, Msg: "missing required column"}
	}
	if sep == "" {
		sep = DefaultTypeSeparator
	}
	return f.SetText(ColType, func(r TrialRecord) string {
		name := r.Labels[ColFilename]
		if i := strings.LastIndexAny(name, `/\`); i >= 0 {
			name = name[i+1:]
		}
		if prefix, _, found := strings.Cut(name, sep); found {
			return prefix
		}
		if i := strings.LastIndexByte(name, '.'); i > 0 {
			return name[:i]
		}
		return name
	})
}

func headerColumns(header []string, opts LoadOptions) ([]Column, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if len(header) == 1 {
		for _, other := range []string{";", ",", "\t"} {
			if other != string(opts.delimiter()) && strings.Contains(header[0], other) {
				return nil, &ParseError{
					Line: 1,
					Msg:  fmt.Sprintf("header has a single column; expected %q as delimiter, found %q", opts.delimiter(), other),
				}
			}
		}
	}

	// Spreadsheet exports end lines with a delimiter; the unnamed trailing
	// columns are dropped and Load checks that they hold no values.
	for len(header) > 1 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}

	cols := make([]Column, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, &ParseError{Line: 1, Msg: fmt.Sprintf("empty column name at position %d", i+1)}
		}
		kind := Number
		if slices.Contains(opts.TextColumns, name) {
			kind = Text
		}
		cols[i] = Column{Name: name, Kind: kind}
	}
	for _, req := range opts.Required {
		if !slices.ContainsFunc(cols, func(c Column) bool { return c.Name == req }) {
			return nil, &ParseError{Line: 1, Column: req, Msg: "missing required column"}
		}
	}
	return cols, nil
}

// parseNumber parses a numeric field. An empty field is missing and valid.
func parseNumber(raw string, decimal rune) (float64, bool) {
	if raw == "" {
		return math.NaN(), true
	}
	if decimal != '.' {
		if strings.ContainsRune(raw, '.') {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(decimal), ".")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func csvParseError(err error) error {
	var ce *csv.ParseError
	if errors.As(err, &ce) {
		return &ParseError{Line: ce.Line, Msg: "malformed row", Err: ce.Err}
	}
	return &ParseError{Msg: "read failed", Err: err}
}
