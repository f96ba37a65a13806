package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matejmatuska/audio-stego/internal/aggregate"
	"github.com/matejmatuska/audio-stego/internal/fsutil"
)

func TestEmptyReportConfig_Defaults(t *testing.T) {
	cfg := EmptyReportConfig()

	assert.Equal(t, ';', cfg.GetDelimiter())
	assert.Equal(t, '.', cfg.GetDecimal())
	assert.Equal(t, "_", cfg.GetTypeSeparator())
	assert.Equal(t, "sk-1", cfg.GetLabels())
	assert.Equal(t, "sk", cfg.GetLanguage())
	assert.Equal(t, "pdf", cfg.GetFormat())
	assert.Equal(t, ".", cfg.GetOutDir())
	assert.Equal(t, "localhost:8080", cfg.GetListen())
	assert.False(t, cfg.GetStdDev())
	assert.Equal(t, aggregate.PassThrough, cfg.GetUnknownMethodPolicy())
	assert.False(t, cfg.GetFilterBestParams())
	assert.Equal(t, "framesize=8192", cfg.GetBestParams()["lsb"])
	assert.Equal(t, 60.0, cfg.GetMaxLength())
	assert.Equal(t, 0.1, cfg.GetLengthStep())
	assert.Equal(t, 10.0, cfg.GetFrameSizeLength())
	assert.Equal(t, 512, cfg.GetFrameSizeMin())
	assert.Equal(t, 8192, cfg.GetFrameSizeMax())
	assert.Equal(t, 128, cfg.GetFrameSizeStep())
	assert.Equal(t, []int{512, 1024, 2048, 4096, 8192}, cfg.GetLengthFrameSizes())
	assert.NoError(t, cfg.Validate())
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	empty := EmptyReportConfig()

	// The defaults file and the built-in defaults must agree.
	assert.Equal(t, empty.GetDelimiter(), cfg.GetDelimiter())
	assert.Equal(t, empty.GetLabels(), cfg.GetLabels())
	assert.Equal(t, empty.GetBestParams(), cfg.GetBestParams())
	assert.Equal(t, empty.GetUnknownMethodPolicy(), cfg.GetUnknownMethodPolicy())
	assert.Equal(t, empty.GetLengthStep(), cfg.GetLengthStep())
	assert.Equal(t, empty.GetLengthFrameSizes(), cfg.GetLengthFrameSizes())
}

func ptr[T any](v T) *T { return &v }

func TestLoadReportConfig(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	fsys.PutString("conf/report.json", `{
  "decimal": ",",
  "format": "svg",
  "unknown_method_policy": "drop",
  "best_params": {"lsb": "framesize=1024"},
  "stddev": true
}`)

	cfg, err := LoadReportConfig(fsys, "conf/report.json")
	require.NoError(t, err)

	assert.Equal(t, ',', cfg.GetDecimal())
	assert.Equal(t, ';', cfg.GetDelimiter(), "omitted fields keep defaults")
	assert.Equal(t, "svg", cfg.GetFormat())
	assert.Equal(t, aggregate.Drop, cfg.GetUnknownMethodPolicy())
	assert.Equal(t, map[string]string{"lsb": "framesize=1024"}, cfg.GetBestParams())
	assert.True(t, cfg.GetStdDev())

	opts := cfg.TrialOptions()
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, ',', opts.Decimal)
	assert.Equal(t, ',', cfg.MOSOptions().Decimal)
}

func TestLoadReportConfig_OSFileSystem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"labels": "en-1"}`), 0o644))

	cfg, err := LoadReportConfig(fsutil.OSFileSystem{}, path)
	require.NoError(t, err)
	assert.Equal(t, "en-1", cfg.GetLabels())
}

func TestLoadReportConfig_Errors(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	fsys.PutString("report.yaml", "{}")
	fsys.PutString("broken.json", `{"delimiter": `)
	fsys.PutString("bad.json", `{"format": "gif"}`)
	fsys.PutString("typo.json", `{"fromat": "svg"}`)
	fsys.Put("huge.json", make([]byte, maxConfigSize+1))

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{"missing", "nonexistent/config.json", "file does not exist"},
		{"wrong extension", "report.yaml", ".json"},
		{"invalid json", "broken.json", "parse JSON"},
		{"invalid value", "bad.json", "gif"},
		{"unknown field", "typo.json", "fromat"},
		{"too large", "huge.json", "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReportConfig(fsys, tt.path)
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ReportConfig
		wantErr bool
	}{
		{"empty config is valid", &ReportConfig{}, false},
		{"comma decimal", &ReportConfig{Decimal: ptr(",")}, false},
		{"multi-character delimiter", &ReportConfig{Delimiter: ptr(";;")}, true},
		{"unsupported decimal", &ReportConfig{Decimal: ptr("_")}, true},
		{"delimiter equals decimal", &ReportConfig{Delimiter: ptr(","), Decimal: ptr(",")}, true},
		{"empty type separator", &ReportConfig{TypeSeparator: ptr("")}, true},
		{"unknown labels", &ReportConfig{Labels: ptr("xx-9")}, true},
		{"bad language", &ReportConfig{Language: ptr("not a tag!")}, true},
		{"bad format", &ReportConfig{Format: ptr("gif")}, true},
		{"bad policy", &ReportConfig{UnknownMethodPolicy: ptr("sometimes")}, true},
		{"negative length", &ReportConfig{MaxLength: ptr(-1.0)}, true},
		{"step above length", &ReportConfig{MaxLength: ptr(1.0), LengthStep: ptr(2.0)}, true},
		{"zero frame size signal", &ReportConfig{FrameSizeLength: ptr(0.0)}, true},
		{"empty frame size range", &ReportConfig{FrameSizeMin: ptr(1024), FrameSizeMax: ptr(512)}, true},
		{"zero frame size step", &ReportConfig{FrameSizeStep: ptr(0)}, true},
		{"negative length frame size", &ReportConfig{LengthFrameSizes: []int{512, -1}}, true},
		{"stddev flag", &ReportConfig{StdDev: ptr(true)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
