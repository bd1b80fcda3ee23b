// Package viewport converts between the three coordinate spaces of the die
// viewer and keeps the view state inside its limits.
//
// Logical space is the chip's own coordinate system (0..10000 by default,
// Y up). Normalized view space is a fixed square (0..600) with Y down that
// every surface is laid out in. Device space is view space scaled by the
// zoom factor and offset by the surface origin inside the viewport window.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
)

// Point is re-exported so callers need only this package for transforms.
type Point = geom.Point

// Config fixes the geometry of the viewer. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// Logical extent on both axes.
	LogicalMin float64
	LogicalMax float64

	// Side of the normalized view square.
	ViewSize float64

	// Viewport window in device pixels.
	ViewportWidth  float64
	ViewportHeight float64

	ZoomMax     float64
	ZoomStep    float64
	CloseUpZoom float64 // zoom used when fitting a single point
	FitMargin   float64 // fraction of the window a fitted box may fill

	// Resolution of the fixed surface canvases in pixels per side.
	CanvasSize int

	// InvertY flips the logical Y axis so chip coordinates grow upward.
	InvertY bool
}

// DefaultConfig matches the 800x600 viewer over a 10000 unit die.
func DefaultConfig() Config {
	return Config{
		LogicalMin:     0,
		LogicalMax:     10000,
		ViewSize:       600,
		ViewportWidth:  800,
		ViewportHeight: 600,
		ZoomMax:        12,
		ZoomStep:       1.2,
		CloseUpZoom:    5,
		FitMargin:      0.9,
		CanvasSize:     2000,
		InvertY:        true,
	}
}

// Validate reports the first unusable field.
func (c Config) Validate() error {
	switch {
	case !(c.LogicalMax > c.LogicalMin):
		return fmt.Errorf("logical extent %v..%v is empty", c.LogicalMin, c.LogicalMax)
	case !(c.ViewSize > 0):
		return errors.New("view size must be positive")
	case !(c.ViewportWidth > 0) || !(c.ViewportHeight > 0):
		return fmt.Errorf("viewport %vx%v must be positive", c.ViewportWidth, c.ViewportHeight)
	case !(c.ZoomMax >= 1):
		return fmt.Errorf("zoom max %v must be at least 1", c.ZoomMax)
	case !(c.ZoomStep > 1):
		return fmt.Errorf("zoom step %v must be greater than 1", c.ZoomStep)
	case !(c.CloseUpZoom > 0):
		return errors.New("close-up zoom must be positive")
	case !(c.FitMargin > 0 && c.FitMargin <= 1):
		return fmt.Errorf("fit margin %v must be in (0, 1]", c.FitMargin)
	case c.CanvasSize <= 0:
		return errors.New("canvas size must be positive")
	}
	return nil
}

// ViewState is the pan/zoom position: the view-space point at the centre of
// the viewport window and the zoom factor. It is a plain value so deep links
// can carry it verbatim; Clamp brings any value inside the limits.
type ViewState struct {
	CenterX float64
	CenterY float64
	Zoom    float64
}

func (v ViewState) String() string {
	return fmt.Sprintf("(%.1f, %.1f) x%.2f", v.CenterX, v.CenterY, v.Zoom)
}

// Home is the unzoomed view centred on the die.
func (c Config) Home() ViewState {
	return ViewState{CenterX: c.ViewSize / 2, CenterY: c.ViewSize / 2, Zoom: 1}
}

func (c Config) extent() float64 { return c.LogicalMax - c.LogicalMin }

// LogicalToView maps a chip coordinate into normalized view space.
func (c Config) LogicalToView(p Point) Point {
	k := c.ViewSize / c.extent()
	x := (p.X - c.LogicalMin) * k
	y := (p.Y - c.LogicalMin) * k
	if c.InvertY {
		y = (c.LogicalMax - p.Y) * k
	}
	return Point{X: x, Y: y}
}

// ViewToLogical is the inverse of LogicalToView.
func (c Config) ViewToLogical(p Point) Point {
	k := c.extent() / c.ViewSize
	x := c.LogicalMin + p.X*k
	y := c.LogicalMin + p.Y*k
	if c.InvertY {
		y = c.LogicalMax - p.Y*k
	}
	return Point{X: x, Y: y}
}

// ToScreen returns the device-pixel offset of p from the surface origin.
func (c Config) ToScreen(p Point, v ViewState) Point {
	return c.LogicalToView(p).Mul(zoomOf(v))
}

// ToLogical maps a device pixel back to chip coordinates. surfaceOrigin is
// where the surfaces' top-left corner sits in the same device space, usually
// Origin(v).
func (c Config) ToLogical(screen, surfaceOrigin Point, v ViewState) Point {
	return c.ViewToLogical(screen.Sub(surfaceOrigin).Mul(1 / zoomOf(v)))
}

// Origin is the top-left corner of the surfaces inside the viewport window.
func (c Config) Origin(v ViewState) Point {
	z := zoomOf(v)
	return Point{
		X: c.ViewportWidth/2 - v.CenterX*z,
		Y: c.ViewportHeight/2 - v.CenterY*z,
	}
}

// ScaledSize is the side of every surface in device pixels.
func (c Config) ScaledSize(v ViewState) float64 {
	return c.ViewSize * zoomOf(v)
}

// ToCanvas maps p onto the fixed-resolution surface canvas.
func (c Config) ToCanvas(p Point) Point {
	return c.LogicalToView(p).Mul(float64(c.CanvasSize) / c.ViewSize)
}

// zoomOf guards divisions against an unusable zoom.
func zoomOf(v ViewState) float64 {
	if !(v.Zoom > 0) || math.IsInf(v.Zoom, 0) {
		return 1
	}
	return v.Zoom
}

// Clamp limits zoom to [1, ZoomMax] and the centre so the visible window
// stays inside the view square. When the window is wider than the zoomed
// square on an axis, that axis is centred.
func (c Config) Clamp(v ViewState) ViewState {
	z := v.Zoom
	switch {
	case math.IsNaN(z) || z < 1:
		z = 1
	case z > c.ZoomMax:
		z = c.ZoomMax
	}
	return ViewState{
		CenterX: c.clampAxis(v.CenterX, c.ViewportWidth/2/z),
		CenterY: c.clampAxis(v.CenterY, c.ViewportHeight/2/z),
		Zoom:    z,
	}
}

func (c Config) clampAxis(center, half float64) float64 {
	lo, hi := half, c.ViewSize-half
	if lo > hi || math.IsNaN(center) {
		return c.ViewSize / 2
	}
	return math.Max(lo, math.Min(hi, center))
}

// Pan moves the view by a device-pixel drag delta.
func (c Config) Pan(dx, dy float64, v ViewState) ViewState {
	z := zoomOf(v)
	v.CenterX -= dx / z
	v.CenterY -= dy / z
	return c.Clamp(v)
}

// SetZoom changes the zoom, keeping the centre where the limits allow.
func (c Config) SetZoom(zoom float64, v ViewState) ViewState {
	v.Zoom = zoom
	return c.Clamp(v)
}

// ZoomIn steps the zoom up by ZoomStep. At ZoomMax it does nothing.
func (c Config) ZoomIn(v ViewState) ViewState {
	if v.Zoom >= c.ZoomMax {
		return c.Clamp(v)
	}
	return c.SetZoom(v.Zoom*c.ZoomStep, v)
}

// ZoomOut steps the zoom down by ZoomStep. At zoom 1 it does nothing.
func (c Config) ZoomOut(v ViewState) ViewState {
	if v.Zoom <= 1 {
		return c.Clamp(v)
	}
	return c.SetZoom(v.Zoom/c.ZoomStep, v)
}

// Reset returns to zoom 1.
func (c Config) Reset(v ViewState) ViewState {
	return c.SetZoom(1, v)
}

// ZoomAt scales the zoom by factor, keeping the view point under the
// viewport-window pixel screen stationary where the limits allow.
func (c Config) ZoomAt(screen Point, factor float64, v ViewState) ViewState {
	z := zoomOf(v)
	off := Point{X: screen.X - c.ViewportWidth/2, Y: screen.Y - c.ViewportHeight/2}
	anchor := Point{X: v.CenterX + off.X/z, Y: v.CenterY + off.Y/z}

	next := c.Clamp(ViewState{CenterX: v.CenterX, CenterY: v.CenterY, Zoom: z * factor})
	next.CenterX = anchor.X - off.X/next.Zoom
	next.CenterY = anchor.Y - off.Y/next.Zoom
	return c.Clamp(next)
}

// MoveTo centres on a view-space point at the given zoom, as a deep link does.
func (c Config) MoveTo(cx, cy, zoom float64) ViewState {
	return c.Clamp(ViewState{CenterX: cx, CenterY: cy, Zoom: zoom})
}

// ZoomToFit centres on a logical box and picks the largest zoom that shows
// it whole. A box with no extent falls back to CloseUpZoom; an empty box
// leaves v unchanged.
func (c Config) ZoomToFit(bb geom.BoundingBox, v ViewState) ViewState {
	if bb.IsEmpty() {
		return c.Clamp(v)
	}

	lo, hi := c.LogicalToView(bb.Min), c.LogicalToView(bb.Max)
	vb := geom.Box(lo.X, lo.Y, hi.X, hi.Y)
	w, h := vb.Width(), vb.Height()
	center := vb.Center()

	const eps = 1e-9
	zoom := c.CloseUpZoom
	if w > eps || h > eps {
		zoom = math.Inf(1)
		if w > eps {
			zoom = c.ViewportWidth * c.FitMargin / w
		}
		if h > eps {
			zoom = math.Min(zoom, c.ViewportHeight*c.FitMargin/h)
		}
	}
	return c.MoveTo(center.X, center.Y, zoom)
}

// Visible returns the logical box currently shown in the viewport window.
func (c Config) Visible(v ViewState) geom.BoundingBox {
	origin := c.Origin(v)
	bb := geom.NewBoundingBox()
	bb.Expand(c.ToLogical(Point{}, origin, v))
	bb.Expand(c.ToLogical(Point{X: c.ViewportWidth, Y: c.ViewportHeight}, origin, v))
	return bb
}
