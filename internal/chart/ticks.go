package chart

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// localeTicks relabels the major ticks of another ticker.
type localeTicks struct {
	base    plot.Ticker
	numbers *NumberFormatter
}

func (t localeTicks) Ticks(min, max float64) []plot.Tick {
	ticks := t.base.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = t.numbers.Format(ticks[i].Value)
		}
	}
	return ticks
}

// powerTicks places ticks at integer powers of base, labelled base^k.
// Dense ranges label every other power.
type powerTicks struct {
	base float64
}

func (t powerTicks) Ticks(min, max float64) []plot.Tick {
	if min <= 0 || max < min {
		return nil
	}
	lo := math.Floor(t.log(min) + 1e-9)
	hi := math.Ceil(t.log(max) - 1e-9)
	every := 1
	if hi-lo > 12 {
		every = 2
	}
	var ticks []plot.Tick
	for k := lo; k <= hi; k++ {
		v := math.Pow(t.base, k)
		tick := plot.Tick{Value: v}
		if int(k-lo)%every == 0 {
			tick.Label = powerLabel(t.base, int(k))
		}
		ticks = append(ticks, tick)
	}
	return ticks
}

func (t powerTicks) log(x float64) float64 {
	switch t.base {
	case 2:
		return math.Log2(x)
	case 10:
		return math.Log10(x)
	}
	return math.Log(x) / math.Log(t.base)
}

func powerLabel(base float64, k int) string {
	return strconv.Itoa(int(base)) + "^" + strconv.Itoa(k)
}

// constantTicks labels the given values.
func constantTicks(values []float64, numbers *NumberFormatter) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: v, Label: numbers.Format(v)}
	}
	return ticks
}
