package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matejmatuska/audio-stego/internal/dataset"
)

func TestToLongFormat(t *testing.T) {
	res, err := GroupAndAggregate(berFrame(), []string{dataset.ColMethod}, nil, Options{Order: methodOrder})
	require.NoError(t, err)

	long, err := ToLongFormat(res)
	require.NoError(t, err)

	want := []LongRecord{
		{Key: []string{"lsb"}, Metric: dataset.ColSNR, Value: 15, Count: 2},
		{Key: []string{"lsb"}, Metric: "ber", Value: 0.2, Count: 2},
		{Key: []string{"echo"}, Metric: dataset.ColSNR, Value: 5, Count: 1},
		{Key: []string{"echo"}, Metric: "ber", Value: 0.05, Count: 1},
	}
	if diff := cmp.Diff(want, long.Records, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("ToLongFormat mismatch (-want +got):\n%s", diff)
	}
}

func TestToLongFormat_GroupsTimesMetrics(t *testing.T) {
	res, err := GroupAndAggregate(loadTrials(t), []string{dataset.ColMethod, dataset.ColType}, nil, Options{})
	require.NoError(t, err)

	long, err := ToLongFormat(res)
	require.NoError(t, err)
	assert.Equal(t, res.Len()*len(res.Metrics), long.Len())
	assert.Equal(t, []string{dataset.ColSNR, "resampling", "attenuation"}, long.Levels(MetricColumn))
}

func TestToLongFormat_RejectsLongInput(t *testing.T) {
	long := dataset.MustFrame(
		dataset.Column{Name: dataset.ColMethod, Kind: dataset.Text},
		dataset.Column{Name: MetricColumn, Kind: dataset.Text},
		dataset.Column{Name: ValueColumn, Kind: dataset.Number},
	)
	long.Append(dataset.TrialRecord{
		Labels: map[string]string{dataset.ColMethod: "lsb", MetricColumn: "ber"},
		Values: map[string]float64{ValueColumn: 0.1},
	})

	res, err := GroupAndAggregate(long, []string{dataset.ColMethod, MetricColumn}, nil, Options{})
	require.NoError(t, err)
	_, err = ToLongFormat(res)
	assert.ErrorIs(t, err, ErrColumnCollision)

	res, err = GroupAndAggregate(long, []string{dataset.ColMethod}, nil, Options{})
	require.NoError(t, err)
	_, err = ToLongFormat(res)
	assert.ErrorIs(t, err, ErrColumnCollision)
}

func typeFrame(rows ...[2]string) *dataset.Frame {
	f := dataset.MustFrame(
		dataset.Column{Name: dataset.ColMethod, Kind: dataset.Text},
		dataset.Column{Name: dataset.ColType, Kind: dataset.Text},
		dataset.Column{Name: dataset.ColSNR, Kind: dataset.Number},
	)
	for i, r := range rows {
		f.Append(dataset.TrialRecord{
			Labels: map[string]string{dataset.ColMethod: r[0], dataset.ColType: r[1]},
			Values: map[string]float64{dataset.ColSNR: float64(i + 1)},
		})
	}
	return f
}

func TestToLongFormat_KeyLevelsFollowPriority(t *testing.T) {
	order := map[string][]string{
		dataset.ColMethod: methodOrder[dataset.ColMethod],
		dataset.ColType:   {"music", "speech", "noise"},
	}
	tests := []struct {
		name string
		rows [][2]string
		want []string
	}{
		{"first method lacks first type", [][2]string{{"lsb", "speech"}, {"echo", "music"}, {"echo", "speech"}}, []string{"music", "speech"}},
		{"unknown type last", [][2]string{{"lsb", "birdsong"}, {"lsb", "noise"}, {"echo", "music"}}, []string{"music", "noise", "birdsong"}},
		{"reversed rows", [][2]string{{"echo", "speech"}, {"echo", "music"}, {"lsb", "speech"}}, []string{"music", "speech"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := GroupAndAggregate(typeFrame(tt.rows...), []string{dataset.ColMethod, dataset.ColType}, nil, Options{Order: order})
			require.NoError(t, err)
			long, err := ToLongFormat(res)
			require.NoError(t, err)

			assert.Equal(t, tt.want, long.Levels(dataset.ColType))
			assert.Equal(t, []string{"lsb", "echo"}, long.Levels(dataset.ColMethod))
		})
	}
}

func TestLongTable_LevelsWithoutKeyLevels(t *testing.T) {
	long := &LongTable{
		Keys:    []string{dataset.ColType},
		Metrics: []string{"ber", "snr"},
		Records: []LongRecord{
			{Key: []string{"speech"}, Metric: "snr"},
			{Key: []string{"music"}, Metric: "snr"},
			{Key: []string{"speech"}, Metric: "snr"},
		},
	}
	assert.Equal(t, []string{"speech", "music"}, long.Levels(dataset.ColType))
	assert.Equal(t, []string{"snr"}, long.Levels(MetricColumn))

	long.KeyLevels = map[string][]string{dataset.ColType: {"noise", "music", "speech"}}
	assert.Equal(t, []string{"music", "speech"}, long.Levels(dataset.ColType))
}

func TestLongTable_Field(t *testing.T) {
	long := &LongTable{Keys: []string{dataset.ColMethod}, Metrics: []string{"ber"}}
	r := LongRecord{Key: []string{"tone"}, Metric: "ber"}

	v, ok := long.Field(r, dataset.ColMethod)
	assert.True(t, ok)
	assert.Equal(t, "tone", v)

	v, ok = long.Field(r, MetricColumn)
	assert.True(t, ok)
	assert.Equal(t, "ber", v)

	_, ok = long.Field(r, dataset.ColType)
	assert.False(t, ok)
}
