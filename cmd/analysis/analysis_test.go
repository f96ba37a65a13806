package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matejmatuska/audio-stego/internal/config"
	"github.com/matejmatuska/audio-stego/internal/fsutil"
	"github.com/matejmatuska/audio-stego/internal/monitoring"
	"github.com/matejmatuska/audio-stego/internal/report"
	"github.com/matejmatuska/audio-stego/internal/testutil"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		data    string
		mos     string
		mode    report.Mode
		wantErr bool
	}{
		{"data and mode", []string{"data.csv", "cmp"}, "data.csv", "", report.ModeCmp, false},
		{"with mos", []string{"data.csv", "mos.csv", "params"}, "data.csv", "mos.csv", report.ModeParams, false},
		{"flags first", []string{"-save", "-format", "svg", "data.csv", "cmp"}, "data.csv", "", report.ModeCmp, false},
		{"too few", []string{"data.csv"}, "", "", "", true},
		{"too many", []string{"a", "b", "c", "d"}, "", "", "", true},
		{"unknown mode", []string{"data.csv", "all"}, "", "", "", true},
		{"unknown flag", []string{"-fast", "data.csv", "cmp"}, "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			o, err := parseArgs(tt.args, &stderr)
			if tt.wantErr {
				var ue *UsageError
				assert.ErrorAs(t, err, &ue)
				assert.Contains(t, stderr.String(), "Usage: analysis")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.data, o.dataFile)
			assert.Equal(t, tt.mos, o.mosFile)
			assert.Equal(t, tt.mode, o.mode)
		})
	}
}

func TestParseArgs_SetFlags(t *testing.T) {
	o, err := parseArgs([]string{"-out", "figs", "-stddev", "data.csv", "cmp"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, o.set["out"])
	assert.True(t, o.set["stddev"])
	assert.False(t, o.set["format"])
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"only-one"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "expected 2 or 3 arguments")

	stderr.Reset()
	assert.Equal(t, 0, run([]string{"-version"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "analysis dev"))
}

func TestRun_MissingDataFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", filepath.Join("..", "..", "config", "report.defaults.json"), "-save", "/nonexistent/data.csv", "cmp"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "open result file")
}

// memFS returns a memory filesystem holding the repository's default config.
func memFS(t *testing.T) *fsutil.MemoryFileSystem {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", config.DefaultConfigPath))
	require.NoError(t, err)
	fsys := fsutil.NewMemoryFileSystem()
	fsys.Put(config.DefaultConfigPath, data)
	return fsys
}

func TestExecute_Save(t *testing.T) {
	var logs []string
	defer monitoring.Capture(&logs)()

	fsys := memFS(t)
	fsys.PutString("data.csv", testutil.TrialsCSV)
	fsys.PutString("mos.csv", testutil.MOSCSV)

	o, err := parseArgs([]string{"-save", "-format", "svg", "-out", "figs", "data.csv", "mos.csv", "cmp"}, &bytes.Buffer{})
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, execute(context.Background(), o, fsys, &stdout))

	files := fsys.Files("figs")
	assert.Contains(t, files, "figs/ber.svg")
	assert.Contains(t, files, "figs/mos.svg")
	assert.Contains(t, files, "figs/capacity_length.svg")
	assert.Contains(t, stdout.String(), "figs/snr_by_type.svg")
}

func TestExecute_BadConfigOverride(t *testing.T) {
	fsys := memFS(t)
	fsys.PutString("data.csv", testutil.TrialsCSV)

	o, err := parseArgs([]string{"-save", "-format", "gif", "data.csv", "cmp"}, &bytes.Buffer{})
	require.NoError(t, err)

	err = execute(context.Background(), o, fsys, &bytes.Buffer{})
	assert.ErrorContains(t, err, "gif")
}

func TestLoadConfig_Explicit(t *testing.T) {
	fsys := memFS(t)
	fsys.PutString("custom.json", `{"format": "png", "labels": "en-1"}`)

	cfg, err := loadConfig(&options{configPath: "custom.json"}, fsys)
	require.NoError(t, err)
	assert.Equal(t, "png", cfg.GetFormat())
	assert.Equal(t, "en-1", cfg.GetLabels())

	cfg, err = loadConfig(&options{}, fsys)
	require.NoError(t, err)
	assert.Equal(t, "sk-1", cfg.GetLabels())

	_, err = loadConfig(&options{configPath: "missing.json"}, fsys)
	assert.Error(t, err)
}

func TestLoadConfig_DefaultMissing(t *testing.T) {
	o := &options{}
	cfg, err := loadConfig(o, fsutil.NewMemoryFileSystem())
	require.NoError(t, err)
	assert.Equal(t, "pdf", cfg.GetFormat())
	assert.Equal(t, "sk-1", cfg.GetLabels())
}

func TestExecute_SaveHTML(t *testing.T) {
	var logs []string
	defer monitoring.Capture(&logs)()

	fsys := memFS(t)
	fsys.PutString("data.csv", testutil.TrialsCSV)

	o, err := parseArgs([]string{"-save", "-html", "-out", "pages", "data.csv", "params"}, &bytes.Buffer{})
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, execute(context.Background(), o, fsys, &stdout))

	files := fsys.Files("pages")
	assert.Contains(t, files, "pages/params_lsb_snr.html")
	assert.NotContains(t, files, "pages/params_phase_snr.html")
	data, err := fsys.ReadFile("pages/params_lsb_snr.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "echarts")
}
