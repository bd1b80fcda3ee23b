package raster

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
)

func square(x0, y0, x1, y1 float64) []geom.Point {
	return []geom.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestFillSolidExactColour(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	code := color.RGBA{R: 0, G: 0, B: 3, A: 0xff}

	// half-pixel edges: coverage 0.5 on the border columns
	n := FillSolid(dst, square(2.5, 2, 8.5, 6), code)
	if n == 0 {
		t.Fatal("no pixels written")
	}

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			got := dst.RGBAAt(x, y)
			if got != code && got != (color.RGBA{}) {
				t.Fatalf("pixel (%d,%d) = %v: mixed colour", x, y, got)
			}
		}
	}
	if dst.RGBAAt(5, 4) != code {
		t.Error("interior pixel not filled")
	}
	if dst.RGBAAt(10, 4) != (color.RGBA{}) {
		t.Error("exterior pixel filled")
	}
}

func TestFillSolidOcclusion(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	a := color.RGBA{R: 1, A: 0xff}
	b := color.RGBA{G: 1, A: 0xff}
	FillSolid(dst, square(0, 0, 10, 10), a)
	FillSolid(dst, square(5, 0, 10, 10), b)
	if dst.RGBAAt(2, 2) != a || dst.RGBAAt(7, 2) != b {
		t.Errorf("later fill should cover earlier: %v %v", dst.RGBAAt(2, 2), dst.RGBAAt(7, 2))
	}
}

func TestCoverageClipsAndRejects(t *testing.T) {
	clip := image.Rect(0, 0, 10, 10)
	tests := []struct {
		name string
		pts  []geom.Point
		wantNil bool
	}{
		{"two points", []geom.Point{{X: 1, Y: 1}, {X: 5, Y: 5}}, true},
		{"outside", square(20, 20, 30, 30), true},
		{"partly outside", square(-5, -5, 5, 5), false},
		{"empty", nil, true},
		{"not finite", []geom.Point{{X: 0, Y: 0}, {X: math.NaN(), Y: 1}, {X: 2, Y: 2}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Coverage(tt.pts, clip)
			if (m == nil) != tt.wantNil {
				t.Fatalf("Coverage() nil = %v, want %v", m == nil, tt.wantNil)
			}
			if m != nil && !m.Bounds().In(clip) {
				t.Errorf("mask %v escapes clip %v", m.Bounds(), clip)
			}
		})
	}
}

func TestFillBlend(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	FillBlend(dst, square(0, 0, 10, 10), color.RGBA{R: 0xff, A: 0xff})
	if got := dst.RGBAAt(5, 5); got.R != 0xff || got.A != 0xff {
		t.Errorf("blend pixel = %v", got)
	}
}
