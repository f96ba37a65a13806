package testutil

import (
	"strings"
	"testing"
)

func TestCSV(t *testing.T) {
	got := CSV("method;snr", "lsb;10")
	if got != "method;snr\nlsb;10\n" {
		t.Errorf("CSV() = %q", got)
	}
}

func TestFixturesHaveHeaders(t *testing.T) {
	if !strings.HasPrefix(TrialsCSV, "method;type;params;snr") {
		t.Error("TrialsCSV should start with the trial header")
	}
	if !strings.HasPrefix(MOSCSV, "filename;method;score") {
		t.Error("MOSCSV should start with the MOS header")
	}
}

func TestAssertClose(t *testing.T) {
	AssertClose(t, 0.2000000001, 0.2, 1e-9)
}

func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}
