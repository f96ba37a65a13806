// Package capacity computes the theoretical embedding capacity of each
// method as a function of signal length and frame size.
package capacity

import (
	"fmt"
	"math"
	"slices"
)

// SampleRate is the carrier sample rate the capacity model assumes.
const SampleRate = 44100

// PhaseBits is the fixed payload of phase coding, independent of length.
const PhaseBits = 186 - 23

// Methods lists the modelled methods in report order.
var Methods = []string{"lsb", "echo", "echo-hc", "tone", "phase"}

// Chosen is the frame size used for each method in the comparison report.
var Chosen = map[string]int{
	"phase":   1024,
	"echo":    4096,
	"echo-hc": 4096,
	"lsb":     8192,
	"tone":    2048,
}

// Point is one sample of a capacity curve.
type Point struct {
	X, Y float64
}

// Curve is the capacity of one method, optionally at one frame size.
type Curve struct {
	Method    string
	FrameSize int // 0 when the curve does not depend on the frame size
	Chosen    bool
	Points    []Point
}

// Samples returns the number of samples in a signal of the given length.
func Samples(seconds float64) int {
	return int(math.Round(seconds * SampleRate))
}

// Range returns start, start+step, ... up to but excluding stop, the way the
// report axes are sampled.
func Range(start, stop, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %v", step)
	}
	if stop < start {
		return nil, fmt.Errorf("empty range [%v, %v)", start, stop)
	}
	n := int(math.Ceil((stop-start)/step - 1e-9))
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

// FrameSizes returns start, start+step, ... up to but excluding stop.
func FrameSizes(start, stop, step int) ([]int, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %d", step)
	}
	var out []int
	for fs := start; fs < stop; fs += step {
		out = append(out, fs)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty frame size range [%d, %d)", start, stop)
	}
	return out, nil
}

// Used returns the capacity in bits of each method, using the frame size
// the report settled on, for a signal of the given number of samples.
func Used(method string, samples int) (int, bool) {
	switch method {
	case "phase":
		return PhaseBits, true
	case "echo":
		return samples / 4096, true
	case "echo-hc":
		return samples / 4096 * 4, true
	case "lsb":
		return samples * 2, true
	case "tone":
		return samples / 2048, true
	}
	return 0, false
}

// UsedByLength returns one curve per method of Used over the given signal
// lengths in seconds.
func UsedByLength(durations []float64) []Curve {
	out := make([]Curve, 0, len(Methods))
	for _, m := range Methods {
		c := Curve{Method: m, Points: make([]Point, len(durations))}
		for i, d := range durations {
			bits, _ := Used(m, Samples(d))
			c.Points[i] = Point{X: d, Y: float64(bits)}
		}
		out = append(out, c)
	}
	return out
}

// PerFrame returns the capacity of method when the signal is split into
// frames of frameSize samples. ok is false for methods whose capacity is
// not modelled per frame.
func PerFrame(method string, samples, frameSize int) (bits float64, ok bool) {
	if frameSize <= 0 {
		return 0, false
	}
	switch method {
	case "phase":
		return float64(samples) / float64(frameSize), true
	case "echo", "tone":
		return float64(samples / frameSize), true
	case "echo-hc":
		return float64(samples / frameSize * 4), true
	case "lsb":
		return float64(samples), true
	}
	return 0, false
}

// ByFrameSize returns one curve per method of the capacity of a signal of
// the given length against frame size. Phase coding has a fixed payload and
// is left out.
func ByFrameSize(seconds float64, sizes []int) []Curve {
	samples := Samples(seconds)
	var out []Curve
	for _, m := range Methods {
		if m == "phase" {
			continue
		}
		c := Curve{Method: m, Points: make([]Point, len(sizes))}
		for i, fs := range sizes {
			bits, _ := PerFrame(m, samples, fs)
			c.Points[i] = Point{X: float64(fs), Y: bits}
		}
		out = append(out, c)
	}
	return out
}

// ByLength returns the capacity against signal length for every method and
// frame size, keeping only the chosen configuration of each method and the
// boundary frame sizes 512 and 8192. Curves are ordered by method, then
// frame size.
func ByLength(durations []float64, sizes []int, chosen map[string]int) []Curve {
	sizes = slices.Clone(sizes)
	slices.Sort(sizes)
	var out []Curve
	for _, m := range Methods {
		for _, fs := range slices.Compact(sizes) {
			isChosen := chosen[m] == fs
			if !isChosen && fs != 512 && fs != 8192 {
				continue
			}
			c := Curve{Method: m, FrameSize: fs, Chosen: isChosen, Points: make([]Point, len(durations))}
			for i, d := range durations {
				bits, _ := PerFrame(m, Samples(d), fs)
				c.Points[i] = Point{X: d, Y: math.Trunc(bits)}
			}
			out = append(out, c)
		}
	}
	return out
}
