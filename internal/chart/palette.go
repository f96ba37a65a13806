package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/plotutil"
)

// colors returns n colors from the soft plotutil palette, repeating it when
// n exceeds its size.
func colors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	out := make([]color.Color, n)
	for i := range out {
		out[i] = plotutil.SoftColors[i%len(plotutil.SoftColors)]
	}
	return out
}

// hexColor formats c as #rrggbb for the HTML renderer.
func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
