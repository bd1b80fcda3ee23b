// Package compositor keeps the stacked surfaces of the die view aligned and
// paints the background and highlight canvases.
//
// Every surface is a square canvas of CanvasSize pixels laid over the same
// normalized view square. A view change recomputes one origin and one
// scaled size and assigns them to all surfaces together.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/raster"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/viewport"
)

// SurfaceKind names a surface in the stack, bottom first.
type SurfaceKind int

const (
	SurfaceBackground SurfaceKind = iota
	SurfaceOverlay
	SurfaceHighlight
	SurfaceHitBuffer
	numSurfaces
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceBackground:
		return "background"
	case SurfaceOverlay:
		return "overlay"
	case SurfaceHighlight:
		return "highlight"
	case SurfaceHitBuffer:
		return "hitbuffer"
	}
	return fmt.Sprintf("surface(%d)", int(k))
}

// Surface is the on-screen placement of one canvas. Origin is the top-left
// corner in viewport-window pixels and Size the scaled side length.
type Surface struct {
	Kind    SurfaceKind
	Origin  viewport.Point
	Size    float64
	Visible bool
}

// ChangeKind says what a change notification is about.
type ChangeKind int

const (
	ChangeView ChangeKind = iota
	ChangeLayers
	ChangeHighlight
	ChangeTheme
)

// Compositor owns the surfaces and their canvases.
type Compositor struct {
	cfg viewport.Config
	lay *layout.Layout

	mu        sync.RWMutex
	surfaces  [numSurfaces]Surface
	view      viewport.ViewState
	layers    *LayerSet
	palette   Palette
	highlight layout.HighlightSet

	background *image.RGBA
	bgDirty    bool
	hilite     *image.RGBA
	hlDirty    bool
	overlay    *image.RGBA

	listeners []func(ChangeKind)
}

// New creates a compositor for lay showing the home view.
func New(cfg viewport.Config, lay *layout.Layout, theme ColorTheme) *Compositor {
	names := make(map[int]string, len(lay.Layers))
	for _, li := range lay.Layers {
		names[li.Index] = li.Name
	}
	c := &Compositor{
		cfg:     cfg,
		lay:     lay,
		layers:  NewLayerSet(names),
		palette: PaletteFor(theme),
		bgDirty: true,
		hlDirty: true,
	}
	for k := SurfaceKind(0); k < numSurfaces; k++ {
		c.surfaces[k] = Surface{Kind: k, Visible: k != SurfaceHitBuffer}
	}
	c.setViewLocked(cfg.Home())
	return c
}

// OnChange registers fn to be called after every change. Listeners run
// after the compositor's lock is released.
func (c *Compositor) OnChange(fn func(ChangeKind)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Compositor) notify(kind ChangeKind) {
	c.mu.RLock()
	ls := append([]func(ChangeKind){}, c.listeners...)
	c.mu.RUnlock()
	for _, fn := range ls {
		fn(kind)
	}
}

// ApplyViewState places every surface for v. No reader ever observes some
// surfaces moved and others not.
func (c *Compositor) ApplyViewState(v viewport.ViewState) {
	c.mu.Lock()
	c.setViewLocked(v)
	c.mu.Unlock()
	c.notify(ChangeView)
}

func (c *Compositor) setViewLocked(v viewport.ViewState) {
	origin := c.cfg.Origin(v)
	size := c.cfg.ScaledSize(v)
	for i := range c.surfaces {
		c.surfaces[i].Origin = origin
		c.surfaces[i].Size = size
	}
	c.view = v
}

// View returns the view the surfaces are placed for.
func (c *Compositor) View() viewport.ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// Surfaces returns a snapshot of the stack, bottom first.
func (c *Compositor) Surfaces() []Surface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Surface, len(c.surfaces))
	copy(out, c.surfaces[:])
	return out
}

// Aligned reports whether every surface shares one origin and size.
func (c *Compositor) Aligned() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	first := c.surfaces[0]
	for _, s := range c.surfaces[1:] {
		if s.Origin != first.Origin || s.Size != first.Size {
			return false
		}
	}
	return true
}

// SetSurfaceVisible shows or hides a whole surface on screen.
func (c *Compositor) SetSurfaceVisible(kind SurfaceKind, visible bool) {
	if kind < 0 || kind >= numSurfaces {
		return
	}
	c.mu.Lock()
	c.surfaces[kind].Visible = visible
	c.mu.Unlock()
	c.notify(ChangeView)
}

// SetLayerVisible includes or excludes a drawing layer from drawing and
// picking. It reports whether visibility changed.
func (c *Compositor) SetLayerVisible(layer int, visible bool) bool {
	c.mu.Lock()
	changed := c.layers.SetVisible(layer, visible)
	if changed {
		c.bgDirty = true
	}
	c.mu.Unlock()
	if changed {
		c.notify(ChangeLayers)
	}
	return changed
}

// ShowLayers makes exactly the listed layers visible; with none listed every
// layer is shown.
func (c *Compositor) ShowLayers(only ...int) {
	c.mu.Lock()
	if len(only) == 0 {
		c.layers.ShowAll()
	} else {
		c.layers.ShowOnly(only...)
	}
	c.bgDirty = true
	c.mu.Unlock()
	c.notify(ChangeLayers)
}

// LayerVisible reports whether layer is drawn. It has the signature
// layout.DrawOrder expects.
func (c *Compositor) LayerVisible(layer int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.IsVisible(layer)
}

// Layers lists the named drawing layers with their visibility.
func (c *Compositor) Layers() []LayerState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []LayerState
	for _, i := range c.layers.Indices() {
		out = append(out, LayerState{Index: i, Name: c.layers.Name(i), Visible: c.layers.IsVisible(i)})
	}
	return out
}

// HiddenLayers lists the layers currently excluded from drawing.
func (c *Compositor) HiddenLayers() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.Hidden()
}

// LayerState describes one drawing layer.
type LayerState struct {
	Index   int
	Name    string
	Visible bool
}

// SetTheme switches palettes and repaints on next use.
func (c *Compositor) SetTheme(t ColorTheme) {
	c.mu.Lock()
	c.palette = PaletteFor(t)
	c.bgDirty, c.hlDirty = true, true
	c.mu.Unlock()
	c.notify(ChangeTheme)
}

// Palette returns the colours currently painted with.
func (c *Compositor) Palette() Palette {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.palette
}

// SetHighlight replaces the set painted on the highlight surface.
func (c *Compositor) SetHighlight(set layout.HighlightSet) {
	c.mu.Lock()
	c.highlight = set
	c.hlDirty = true
	c.mu.Unlock()
	c.notify(ChangeHighlight)
}

// Highlighted returns the set painted on the highlight surface.
func (c *Compositor) Highlighted() layout.HighlightSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.highlight
}

// SetOverlay installs pixels produced elsewhere, such as logic-level
// colouring, on the overlay surface. nil clears it.
func (c *Compositor) SetOverlay(img *image.RGBA) {
	c.mu.Lock()
	c.overlay = img
	c.mu.Unlock()
	c.notify(ChangeView)
}

// Overlay returns the overlay canvas, possibly nil.
func (c *Compositor) Overlay() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overlay
}

// Background returns the background canvas, repainting it if layers or
// theme changed since the last call.
func (c *Compositor) Background() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bgDirty || c.background == nil {
		c.background = c.paintBackgroundLocked()
		c.bgDirty = false
	}
	return c.background
}

// Highlight returns the highlight canvas, repainting it if needed.
func (c *Compositor) Highlight() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hlDirty || c.hilite == nil {
		c.hilite = c.paintHighlightLocked()
		c.hlDirty = false
	}
	return c.hilite
}

func (c *Compositor) canvas() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, c.cfg.CanvasSize, c.cfg.CanvasSize))
}

func (c *Compositor) toCanvas(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = c.cfg.ToCanvas(p)
	}
	return out
}

func (c *Compositor) paintBackgroundLocked() *image.RGBA {
	img := c.canvas()
	draw.Draw(img, img.Bounds(), image.NewUniform(c.palette.Background), image.Point{}, draw.Src)
	for _, it := range c.lay.DrawOrder(c.layers.IsVisible) {
		raster.FillBlend(img, c.toCanvas(it.Points), c.palette.Layer(it.Layer))
	}
	return img
}

func (c *Compositor) paintHighlightLocked() *image.RGBA {
	img := c.canvas()
	col := c.palette.Highlight
	for _, ref := range c.highlight {
		g, ok := c.lay.Geometry(ref)
		if !ok {
			continue
		}
		for _, s := range g.Segments {
			raster.FillBlend(img, c.toCanvas(s.Points()), col)
		}
	}
	return img
}

// Composite flattens the visible surfaces into one canvas.
func (c *Compositor) Composite() *image.RGBA {
	bg := c.Background()
	hl := c.Highlight()
	surfaces := c.Surfaces()
	overlay := c.Overlay()

	out := c.canvas()
	if surfaces[SurfaceBackground].Visible {
		draw.Draw(out, out.Bounds(), bg, image.Point{}, draw.Src)
	} else {
		draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}
	if overlay != nil && surfaces[SurfaceOverlay].Visible {
		draw.Draw(out, out.Bounds(), overlay, overlay.Bounds().Min, draw.Over)
	}
	if surfaces[SurfaceHighlight].Visible {
		draw.Draw(out, out.Bounds(), hl, image.Point{}, draw.Over)
	}
	return out
}
