package dataset

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matejmatuska/audio-stego/internal/fsutil"
	"github.com/matejmatuska/audio-stego/internal/monitoring"
	"github.com/matejmatuska/audio-stego/internal/testutil"
)

func TestLoad_Trials(t *testing.T) {
	res, err := Load(strings.NewReader(testutil.TrialsCSV), TrialOptions())
	require.NoError(t, err)
	f := res.Frame

	assert.Equal(t, 6, f.Len())
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []string{ColMethod, ColType, ColParams}, f.TextColumns())
	assert.Equal(t, []string{ColSNR, "resampling", "attenuation"}, f.NumericColumns())

	r := f.Row(1)
	assert.Equal(t, "lsb", r.Method())
	assert.Equal(t, "speech", r.Type())
	assert.Equal(t, "framesize=1024", r.Params())
	snr, ok := r.Value(ColSNR)
	require.True(t, ok)
	assert.Equal(t, 20.0, snr)
}

func TestLoad_EmptyNumericIsMissing(t *testing.T) {
	csv := testutil.CSV("method;snr;resampling", "lsb;;0.5")
	res, err := Load(strings.NewReader(csv), TrialOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	_, ok := res.Frame.Row(0).Value(ColSNR)
	assert.False(t, ok)
	assert.True(t, math.IsNaN(res.Frame.Numbers(ColSNR)[0]))
}

func TestLoad_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
		col  string
	}{
		{name: "empty input", in: ""},
		{name: "comma delimited", in: testutil.CSV("method,snr", "lsb,10"), line: 1},
		{name: "missing method column", in: testutil.CSV("type;snr", "music;10"), line: 1, col: ColMethod},
		{name: "ragged row", in: testutil.CSV("method;snr", "lsb;10;3"), line: 2},
		{name: "non-numeric snr", in: testutil.CSV("method;snr", "lsb;ten"), line: 2, col: ColSNR},
		{name: "decimal comma in dot file", in: testutil.CSV("method;snr", "lsb;10,5"), line: 2, col: ColSNR},
		{name: "duplicate column", in: testutil.CSV("method;snr;snr", "lsb;1;2"), line: 1},
		{name: "empty column name", in: testutil.CSV("method;;snr", "lsb;1;2"), line: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.in), TrialOptions())
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %T", err)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, tt.col, pe.Column)
		})
	}
}

func TestLoad_TrailingDelimiter(t *testing.T) {
	csv := testutil.CSV("method;type;params;snr;", "lsb;music;a=1;10;", "echo;speech;a=2;5; ")
	res, err := Load(strings.NewReader(csv), TrialOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Frame.Len())
	assert.Equal(t, []string{ColMethod, ColType, ColParams}, res.Frame.TextColumns())
	assert.Equal(t, []string{ColSNR}, res.Frame.NumericColumns())

	_, err = Load(strings.NewReader(testutil.CSV("method;snr;", "lsb;10;", "echo;5;7")), TrialOptions())
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
	assert.Contains(t, pe.Msg, "unnamed column")
}

func TestLoad_DecimalComma(t *testing.T) {
	opts := TrialOptions()
	opts.Decimal = ','
	res, err := Load(strings.NewReader(testutil.CSV("method;snr", "lsb;10,5")), opts)
	require.NoError(t, err)
	assert.Equal(t, 10.5, res.Frame.Numbers(ColSNR)[0])

	// A dot is a violation when the decimal mark is a comma.
	_, err = Load(strings.NewReader(testutil.CSV("method;snr", "lsb;10.5")), opts)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestLoad_DelimiterEqualsDecimal(t *testing.T) {
	opts := TrialOptions()
	opts.Decimal = ';'
	_, err := Load(strings.NewReader("method\n"), opts)
	assert.Error(t, err)
}

func TestLoad_StripsBOM(t *testing.T) {
	res, err := Load(strings.NewReader("\ufeffmethod;snr\nlsb;1\n"), TrialOptions())
	require.NoError(t, err)
	assert.True(t, res.Frame.Has(ColMethod))
}

func TestLoadMOS_PermissiveScore(t *testing.T) {
	res, err := LoadMOS(strings.NewReader(testutil.MOSCSV), MOSOptions(), DefaultTypeSeparator)
	require.NoError(t, err)
	f := res.Frame

	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, 4, w.Line)
	assert.Equal(t, ColScore, w.Column)
	assert.Equal(t, "n/a", w.Value)
	assert.Contains(t, w.String(), "treated as missing")

	assert.Equal(t, 5, f.Len())
	assert.Equal(t, []string{"music", "music", "speech", "speech", "noise"}, f.Text(ColType))
	assert.True(t, math.IsNaN(f.Numbers(ColScore)[2]))
}

func TestLoadMOS_StrictColumnStillFails(t *testing.T) {
	csv := testutil.CSV("filename;method;score;rating", "music_1.wav;lsb;4;bad")
	_, err := LoadMOS(strings.NewReader(csv), MOSOptions(), "_")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "rating", pe.Column)
}

func TestDeriveType(t *testing.T) {
	f := MustFrame(Column{Name: ColFilename, Kind: Text})
	for _, name := range []string{"samples/music_01.wav", "speech-02.wav", "noise.wav", "speech_a_b.wav"} {
		f.Append(TrialRecord{Labels: map[string]string{ColFilename: name}})
	}

	got, err := DeriveType(f, "_")
	require.NoError(t, err)
	assert.Equal(t, []string{"music", "speech-02", "noise", "speech"}, got.Text(ColType))

	got, err = DeriveType(f, "-")
	require.NoError(t, err)
	assert.Equal(t, "speech", got.Text(ColType)[1])

	_, err = DeriveType(MustFrame(Column{Name: ColMethod, Kind: Text}), "_")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	var lines []string
	restore := monitoring.Capture(&lines)
	defer restore()

	mfs := fsutil.NewMemoryFileSystem()
	mfs.PutString("mos.csv", testutil.MOSCSV)
	mfs.PutString("bad.csv", "method,snr\nlsb,1\n")

	res, err := LoadFile(mfs, "mos.csv", MOSOptions())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Frame.Len())
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "mos.csv")

	_, err = LoadFile(mfs, "bad.csv", TrialOptions())
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad.csv", pe.Path)
	assert.Contains(t, pe.Error(), "bad.csv:1")

	_, err = LoadFile(mfs, "missing.csv", TrialOptions())
	assert.Error(t, err)
	assert.False(t, errors.As(err, &pe))
}

func TestLoadMOSFile(t *testing.T) {
	var lines []string
	defer monitoring.Capture(&lines)()

	mfs := fsutil.NewMemoryFileSystem()
	mfs.PutString("mos.csv", testutil.MOSCSV)
	mfs.PutString("nofile.csv", testutil.CSV("name;method;score", "1;lsb;1"))

	res, err := LoadMOSFile(mfs, "mos.csv", MOSOptions(), DefaultTypeSeparator)
	require.NoError(t, err)
	assert.Equal(t, []string{"music", "music", "speech", "speech", "noise"}, res.Frame.Text(ColType))
	require.Len(t, res.Warnings, 1)

	opts := MOSOptions()
	opts.Required = nil
	_, err = LoadMOSFile(mfs, "nofile.csv", opts, DefaultTypeSeparator)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "nofile.csv", pe.Path)
	assert.Equal(t, ColFilename, pe.Column)
}
