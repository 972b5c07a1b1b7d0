package formats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/blendmask/pkg/mask"
)

// RGB is an 8-bit display color as written in topology files, e.g. "(255, 0, 64)".
type RGB struct {
	R, G, B uint8
}

// String returns the color in topology file notation.
func (c RGB) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// Color converts to a colorful.Color.
func (c RGB) Color() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func (c RGB) less(other RGB) bool {
	if c.R != other.R {
		return c.R < other.R
	}
	if c.G != other.G {
		return c.G < other.G
	}
	return c.B < other.B
}

// ParseRGB parses "(r, g, b)" with components in 0-255.
// Surrounding parentheses are optional.
func ParseRGB(s string) (RGB, error) {
	inner := strings.TrimSpace(s)
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")

	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	var rgb [3]uint8
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 255 {
			return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		rgb[i] = uint8(n)
	}
	return RGB{rgb[0], rgb[1], rgb[2]}, nil
}

// Palette maps region ids to display colors. It is used only for
// presentation, e.g. coloring a selection mesh or listing regions.
type Palette struct {
	colors map[mask.RegionID]RGB
}

// NewPalette creates an empty palette.
func NewPalette() *Palette {
	return &Palette{colors: make(map[mask.RegionID]RGB)}
}

// DistinctPalette assigns evenly spread hues to the given regions.
// Used when a topology carries no colors of its own.
func DistinctPalette(regions []mask.RegionID) *Palette {
	p := NewPalette()
	const goldenRatio = 0.618033988749895
	hue := 0.0
	for _, r := range regions {
		c := colorful.Hsv(hue*360, 0.65, 0.95)
		red, green, blue := c.Clamped().RGB255()
		p.Set(r, RGB{red, green, blue})
		hue += goldenRatio
		if hue >= 1 {
			hue--
		}
	}
	return p
}

// Set assigns a color to a region.
func (p *Palette) Set(r mask.RegionID, c RGB) {
	p.colors[r] = c
}

// RGB returns the color of region r.
func (p *Palette) RGB(r mask.RegionID) (RGB, bool) {
	c, ok := p.colors[r]
	return c, ok
}

// Color returns the color of region r as a colorful.Color.
func (p *Palette) Color(r mask.RegionID) (colorful.Color, bool) {
	c, ok := p.colors[r]
	if !ok {
		return colorful.Color{}, false
	}
	return c.Color(), true
}

// Hex returns the color of region r as "#rrggbb", or "" if unknown.
func (p *Palette) Hex(r mask.RegionID) string {
	c, ok := p.Color(r)
	if !ok {
		return ""
	}
	return c.Hex()
}

// Regions returns the regions with a color, in ascending order.
func (p *Palette) Regions() []mask.RegionID {
	out := make([]mask.RegionID, 0, len(p.colors))
	for r := range p.colors {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of colored regions.
func (p *Palette) Len() int {
	return len(p.colors)
}
