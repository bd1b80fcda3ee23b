package compositor

import "image/color"

// ColorTheme selects the palette used for the visible surfaces.
type ColorTheme int

const (
	ThemeClassic ColorTheme = iota
	ThemeMuted
)

// ThemeNames maps themes to display names.
var ThemeNames = map[ColorTheme]string{
	ThemeClassic: "Classic",
	ThemeMuted:   "Muted",
}

// ThemeByName looks a theme up by display name, case-sensitively.
func ThemeByName(name string) (ColorTheme, bool) {
	for t, n := range ThemeNames {
		if n == name {
			return t, true
		}
	}
	return ThemeClassic, false
}

// Palette holds every colour the compositor paints with.
type Palette struct {
	Background color.NRGBA
	Layers     []color.NRGBA // indexed by drawing layer
	Highlight  color.NRGBA
	Fallback   color.NRGBA // layers past the end of Layers
}

// Layer returns the colour of drawing layer i.
func (p Palette) Layer(i int) color.NRGBA {
	if i >= 0 && i < len(p.Layers) {
		return p.Layers[i]
	}
	return p.Fallback
}

var classicPalette = Palette{
	Background: color.NRGBA{R: 0, G: 0, B: 0, A: 255},
	Layers: []color.NRGBA{
		{R: 128, G: 128, B: 192, A: 102}, // metal, translucent so diffusion shows through
		{R: 255, G: 255, B: 0, A: 255},   // switched diffusion
		{R: 255, G: 0, B: 255, A: 255},   // inputdiode
		{R: 77, G: 255, B: 77, A: 255},   // grounded diffusion
		{R: 255, G: 77, B: 77, A: 255},   // powered diffusion
		{R: 128, G: 26, B: 192, A: 255},  // polysilicon
	},
	Highlight: color.NRGBA{R: 128, G: 0, B: 255, A: 191},
	Fallback:  color.NRGBA{R: 160, G: 160, B: 160, A: 255},
}

var mutedPalette = Palette{
	Background: color.NRGBA{R: 24, G: 24, B: 28, A: 255},
	Layers: []color.NRGBA{
		{R: 150, G: 150, B: 170, A: 80},
		{R: 190, G: 180, B: 90, A: 255},
		{R: 170, G: 90, B: 170, A: 255},
		{R: 90, G: 160, B: 100, A: 255},
		{R: 170, G: 90, B: 90, A: 255},
		{R: 110, G: 70, B: 150, A: 255},
	},
	Highlight: color.NRGBA{R: 255, G: 255, B: 255, A: 200},
	Fallback:  color.NRGBA{R: 120, G: 120, B: 120, A: 255},
}

// PaletteFor returns the palette of a theme.
func PaletteFor(t ColorTheme) Palette {
	if t == ThemeMuted {
		return mutedPalette
	}
	return classicPalette
}
