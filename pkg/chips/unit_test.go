package chips

import (
	"lucky-server/internal/rng"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGB_Hex(t *testing.T) {
	assert.Equal(t, "#ff0080", RGB{R: 255, G: 0, B: 128}.Hex())
	assert.Equal(t, "#000000", RGB{}.Hex())
}

func Test_hsvToRGB(t *testing.T) {
	a := assert.New(t)
	a.Equal(RGB{R: 255}, hsvToRGB(0, 1, 1))
	a.Equal(RGB{G: 255}, hsvToRGB(1.0/3, 1, 1))
	a.Equal(RGB{B: 255}, hsvToRGB(2.0/3, 1, 1))
	a.Equal(RGB{R: 255, G: 255, B: 255}, hsvToRGB(0.5, 0, 1))
	a.Equal(RGB{R: 255}, hsvToRGB(1, 1, 1))
}

func Test_newUnits(t *testing.T) {
	a := assert.New(t)

	units := newUnits(40, rng.New(7))
	a.Len(units, 40)

	colors := make(map[RGB]bool)
	for i, u := range units {
		a.Equal(i+1, u.ID)
		colors[u.Color] = true
	}

	// evenly stepped hues are distinct at this pool size
	a.Len(colors, 40)
	a.Empty(newUnits(0, rng.New(7)))
}
