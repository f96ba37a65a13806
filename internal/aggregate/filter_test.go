package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matejmatuska/audio-stego/internal/dataset"
)

func TestFilterBestParams_Example(t *testing.T) {
	f := dataset.MustFrame(
		dataset.Column{Name: dataset.ColMethod, Kind: dataset.Text},
		dataset.Column{Name: dataset.ColParams, Kind: dataset.Text},
		dataset.Column{Name: dataset.ColSNR, Kind: dataset.Number},
	)
	f.Append(dataset.TrialRecord{
		Labels: map[string]string{dataset.ColMethod: "lsb", dataset.ColParams: "framesize=1024"},
		Values: map[string]float64{dataset.ColSNR: 10},
	})
	f.Append(dataset.TrialRecord{
		Labels: map[string]string{dataset.ColMethod: "lsb", dataset.ColParams: "framesize=2048"},
		Values: map[string]float64{dataset.ColSNR: 30},
	})

	out, err := FilterBestParams(f, map[string]string{"lsb": "framesize=1024"}, PassThrough)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, f.Row(0), out.Row(0))
}

func TestFilterBestParams_UnknownPolicy(t *testing.T) {
	f := loadTrials(t)
	canonical := map[string]string{"lsb": "framesize = 1024"}

	pass, err := FilterBestParams(f, canonical, PassThrough)
	require.NoError(t, err)
	assert.Equal(t, 5, pass.Len())
	assert.Equal(t, 2, pass.Where(dataset.ColMethod, "echo").Len())

	drop, err := FilterBestParams(f, canonical, Drop)
	require.NoError(t, err)
	assert.Equal(t, 2, drop.Len())
	for _, r := range drop.Rows() {
		assert.Equal(t, "lsb", r.Method())
		assert.Equal(t, "framesize=1024", r.Params())
	}
}

func TestFilterBestParams_MissingColumn(t *testing.T) {
	f := loadTrials(t).Drop(dataset.ColParams)
	_, err := FilterBestParams(f, nil, PassThrough)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestCanonicalParams(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"framesize=1024":    "framesize=1024",
		"framesize = 1024 ": "framesize=1024",
		"b=2, a=1":          "a=1,b=2",
		" default ":         "default",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalParams(in), "input %q", in)
	}
}

func TestParseUnknownPolicy(t *testing.T) {
	for _, p := range []UnknownPolicy{PassThrough, Drop} {
		got, err := ParseUnknownPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParseUnknownPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PassThrough, got)

	_, err = ParseUnknownPolicy("keep-some")
	assert.Error(t, err)
	assert.Equal(t, "UnknownPolicy(7)", UnknownPolicy(7).String())
}
