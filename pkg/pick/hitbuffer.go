package pick

import (
	"context"
	"image"
	"math"
	"sync"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/raster"
)

// CanvasMapper maps logical coordinates onto hit-buffer pixels.
// viewport.Config satisfies it.
type CanvasMapper interface {
	ToCanvas(p geom.Point) geom.Point
}

// HitBuffer holds the last completed hit canvas. Builds run into a private
// canvas and replace the published one only when they finish, so Pick keeps
// answering from the previous build while a rebuild is in progress.
type HitBuffer struct {
	mapper CanvasMapper
	size   int

	mu      sync.RWMutex
	img     *image.RGBA
	enc     *Encoding
	nextGen uint64
	pubGen  uint64
}

// NewHitBuffer creates an empty buffer with size x size pixels.
func NewHitBuffer(mapper CanvasMapper, size int) *HitBuffer {
	return &HitBuffer{mapper: mapper, size: size}
}

// Ready reports whether a build has completed.
func (h *HitBuffer) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.img != nil
}

// Pick returns the object under logical point p. Before the first build
// completes, outside the canvas and on background pixels it reports false.
func (h *HitBuffer) Pick(p geom.Point) (layout.ObjectRef, bool) {
	h.mu.RLock()
	img, enc := h.img, h.enc
	h.mu.RUnlock()
	if img == nil || enc == nil {
		return layout.ObjectRef{}, false
	}

	c := h.mapper.ToCanvas(p)
	if !c.IsFinite() {
		return layout.ObjectRef{}, false
	}
	x, y := int(math.Floor(c.X)), int(math.Floor(c.Y))
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return layout.ObjectRef{}, false
	}
	return enc.Decode(img.RGBAAt(x, y))
}

// Rebuild starts a build of items, painted in order so later items cover
// earlier ones. Any build started before this one will not publish.
func (h *HitBuffer) Rebuild(enc *Encoding, items []layout.DrawItem) *Build {
	h.mu.Lock()
	h.nextGen++
	gen := h.nextGen
	h.mu.Unlock()

	return &Build{
		buf:   h,
		gen:   gen,
		enc:   enc,
		items: items,
		img:   image.NewRGBA(image.Rect(0, 0, h.size, h.size)),
	}
}

func (h *HitBuffer) publish(b *Build) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b.gen != h.nextGen || b.gen <= h.pubGen {
		return false
	}
	h.img, h.enc, h.pubGen = b.img, b.enc, b.gen
	return true
}

// Build is an in-progress hit-buffer rasterization.
type Build struct {
	buf   *HitBuffer
	gen   uint64
	enc   *Encoding
	items []layout.DrawItem
	img   *image.RGBA
	next  int
	done  bool
	stale bool
}

// Step rasterizes up to n more items and reports whether the build is
// finished. Returning between batches is the yield point that keeps an
// event loop responsive.
func (b *Build) Step(n int) bool {
	if b.done {
		return true
	}
	if n <= 0 {
		n = 1
	}
	end := min(b.next+n, len(b.items))
	for _, it := range b.items[b.next:end] {
		code, ok := b.enc.Encode(it.Ref)
		if !ok {
			continue
		}
		pts := make([]geom.Point, len(it.Points))
		for i, p := range it.Points {
			pts[i] = b.buf.mapper.ToCanvas(p)
		}
		raster.FillSolid(b.img, pts, code)
	}
	b.next = end

	if b.next >= len(b.items) {
		b.done = true
		b.stale = !b.buf.publish(b)
	}
	return b.done
}

// Run steps the build to completion in batches, giving up between batches
// if ctx is cancelled.
func (b *Build) Run(ctx context.Context, batch int) error {
	for !b.Step(batch) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Progress returns items rasterized and the total.
func (b *Build) Progress() (done, total int) {
	return b.next, len(b.items)
}

// Superseded reports whether the build finished but a newer build had
// already been started, so its canvas was discarded.
func (b *Build) Superseded() bool {
	return b.stale
}
