package chips

import (
	"fmt"
	"math"
)

// RGB is an 8-bit color
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Hex returns the color in #rrggbb form
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Unit is a visual stand-in for WagerDenomination worth of balance
// Its color is fixed when the pool is created so a unit can be followed as it moves between bins
type Unit struct {
	ID    int
	Color RGB
}

// Random is the source used to pick the pool's starting color
type Random interface {
	Float64() float64
}

// newUnits creates n units with hues spread evenly around the color wheel
func newUnits(n int, random Random) []*Unit {
	h := random.Float64()
	s := 0.75 + random.Float64()*0.25
	v := 0.75 + random.Float64()*0.25

	step := 1.0
	if n > 0 {
		step = 1.0 / float64(n)
	}

	units := make([]*Unit, n)
	for i := range units {
		h += step
		if h > 1 {
			h--
		}

		units[i] = &Unit{
			ID:    i + 1,
			Color: hsvToRGB(h, s, v),
		}
	}

	return units
}

// hsvToRGB converts h, s and v in [0, 1]
func hsvToRGB(h, s, v float64) RGB {
	h = math.Mod(h, 1) * 6
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return RGB{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
	}
}
