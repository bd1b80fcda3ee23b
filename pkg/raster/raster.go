// Package raster fills polygons onto RGBA canvases using the coverage
// rasterizer from golang.org/x/image/vector.
//
// Two fill modes are offered. Blend composites an anti-aliased fill for the
// visible surfaces. Solid writes one exact colour wherever coverage reaches
// Threshold and leaves other pixels untouched, so edges never mix two
// colours; the hit buffer depends on that.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
)

// Threshold is the minimum coverage (out of 0xff) for a Solid fill to claim
// a pixel.
const Threshold = 0x80

// Coverage rasterizes the closed polygon pts and returns its coverage mask
// clipped to clip. The mask's bounds are in the same pixel space as pts.
// Polygons with fewer than three points, or entirely outside clip, return
// nil.
func Coverage(pts []geom.Point, clip image.Rectangle) *image.Alpha {
	if len(pts) < 3 {
		return nil
	}

	bb := geom.NewBoundingBox()
	for _, p := range pts {
		if !p.IsFinite() {
			return nil
		}
		bb.Expand(p)
	}
	r := image.Rect(
		int(math.Floor(bb.Min.X)), int(math.Floor(bb.Min.Y)),
		int(math.Ceil(bb.Max.X)), int(math.Ceil(bb.Max.Y)),
	).Intersect(clip)
	if r.Empty() {
		return nil
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Src
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()

	mask := image.NewAlpha(r)
	z.Draw(mask, r, image.Opaque, image.Point{})
	return mask
}

// FillSolid sets every pixel of dst covered at least Threshold by the
// polygon to c. It returns the number of pixels written.
func FillSolid(dst *image.RGBA, pts []geom.Point, c color.RGBA) int {
	mask := Coverage(pts, dst.Bounds())
	if mask == nil {
		return 0
	}
	n := 0
	r := mask.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if mask.AlphaAt(x, y).A >= Threshold {
				dst.SetRGBA(x, y, c)
				n++
			}
		}
	}
	return n
}

// FillBlend composites an anti-aliased fill of c over dst.
func FillBlend(dst draw.Image, pts []geom.Point, c color.Color) {
	mask := Coverage(pts, dst.Bounds())
	if mask == nil {
		return
	}
	r := mask.Bounds()
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, r.Min, draw.Over)
}
