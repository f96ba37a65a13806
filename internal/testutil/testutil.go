// Package testutil provides shared result-file fixtures and small assertion
// helpers for the analysis packages' tests.
package testutil

import (
	"math"
	"strings"
	"testing"
)

// TrialsCSV is a small per-trial result file: two modifications, three
// methods, two audio types and two configurations for lsb.
const TrialsCSV = `method;type;params;snr;resampling;attenuation
lsb;music;framesize=1024;10.0;0.1;0.0
lsb;speech;framesize=1024;20.0;0.3;0.2
lsb;music;framesize=2048;30.0;0.5;0.4
echo;music;framesize=4096;5.0;0.05;0.01
echo;noise;framesize=4096;7.0;0.15;0.03
tone;speech;framesize=2048;12.0;0.2;0.1
`

// MOSCSV is a small mean-opinion-score file with one invalid score.
const MOSCSV = `filename;method;score
music_01.wav;lsb;4
music_02.wav;lsb;5
speech_01.wav;lsb;n/a
speech_01.wav;echo;3
noise_01.wav;echo;2
`

// CSV joins rows with newlines and terminates the file, for inline test data.
func CSV(rows ...string) string {
	return strings.Join(rows, "\n") + "\n"
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertClose checks that got is within tol of want.
func AssertClose(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("got %v, want %v (±%v)", got, want, tol)
	}
}
