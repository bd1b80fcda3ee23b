// Package engine wires the viewport, compositor, hit buffer, search and
// deep-link packages into the single object a viewer front end drives.
//
// The engine is meant to be driven from one event loop. It owns the only
// live ViewState and changes it exclusively through viewport.Config.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/compositor"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/deeplink"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/highlight"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/pick"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/search"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/viewport"
)

// DefaultHitBatch is the number of segments rasterized per build step.
const DefaultHitBatch = 512

// Grouper expands a node to the group of nodes connected to it, for
// shift-click selection. The simulator provides it.
type Grouper interface {
	NodeGroup(id int) []int
}

// Stepper advances or rewinds the simulation on the n and p keys.
type Stepper interface {
	StepForward()
	StepBack()
}

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	Config        viewport.Config
	Theme         compositor.ColorTheme
	PulseInterval time.Duration
	Scheduler     highlight.Scheduler
	HitBatch      int
	LenientLinks  bool
	Logger        *log.Logger
	Verbose       bool

	// FixedExtent keeps Config's logical extent instead of the one the
	// layout declares.
	FixedExtent bool

	Grouper Grouper
	Stepper Stepper
}

// PickResult is what a click resolved to.
type PickResult struct {
	Ref     layout.ObjectRef
	Found   bool
	Logical geom.Point
	Status  search.Status
}

// Engine is the viewport and object-picking engine for one layout.
type Engine struct {
	cfg     viewport.Config
	lay     *layout.Layout
	log     *log.Logger
	verbose bool

	comp     *compositor.Compositor
	enc      *pick.Encoding
	hits     *pick.HitBuffer
	build    *pick.Build
	batch    int
	resolver *search.Resolver
	anim     *highlight.Animator
	links    *deeplink.Decoder

	grouper Grouper
	stepper Stepper

	view   viewport.ViewState
	query  string
	status search.Status
	link   string
	drag   dragState

	onPick      []func(PickResult)
	onHighlight []func(layout.HighlightSet)
	onView      []func(viewport.ViewState)
}

// New builds an engine over lay and starts the first hit-buffer build.
// Picking reports nothing until that build has been stepped to completion.
func New(lay *layout.Layout, opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == (viewport.Config{}) {
		cfg = viewport.DefaultConfig()
	}
	if !opts.FixedExtent && lay.ExtentMax > lay.ExtentMin {
		cfg.LogicalMin, cfg.LogicalMax = lay.ExtentMin, lay.ExtentMax
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid viewport config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	enc, err := pick.NewEncoding(lay.Objects())
	if err != nil {
		return nil, fmt.Errorf("failed to build hit encoding: %w", err)
	}
	resolver, err := search.NewResolver(lay)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		lay:      lay,
		log:      logger,
		verbose:  opts.Verbose,
		enc:      enc,
		hits:     pick.NewHitBuffer(cfg, cfg.CanvasSize),
		batch:    opts.HitBatch,
		resolver: resolver,
		links:    deeplink.NewDecoder(logger),
		grouper:  opts.Grouper,
		stepper:  opts.Stepper,
		view:     cfg.Home(),
	}
	if e.batch <= 0 {
		e.batch = DefaultHitBatch
	}
	e.links.Lenient = opts.LenientLinks

	e.comp = compositor.New(cfg, lay, opts.Theme)
	e.anim = highlight.NewAnimator(opts.Scheduler, opts.PulseInterval, e.comp.SetHighlight)
	e.comp.OnChange(e.compositorChanged)

	e.debugf("hit encoding: %d objects", enc.Len())
	e.rebuildHits()
	e.refreshLink()
	return e, nil
}

func (e *Engine) debugf(format string, args ...any) {
	if e.verbose {
		e.log.Printf(format, args...)
	}
}

func (e *Engine) compositorChanged(kind compositor.ChangeKind) {
	switch kind {
	case compositor.ChangeLayers:
		e.rebuildHits()
		e.refreshLink()
	case compositor.ChangeView:
		e.refreshLink()
	}
}

// rebuildHits starts a new hit-buffer build for the visible layers. The
// previous buffer keeps answering picks until the new one completes.
func (e *Engine) rebuildHits() {
	items := e.lay.DrawOrder(e.comp.LayerVisible)
	e.build = e.hits.Rebuild(e.enc, items)
	e.debugf("hit buffer: rebuilding %d segments", len(items))
}

// StepHits advances the pending hit-buffer build by one batch and reports
// whether no build is pending any more. Front ends call it once per frame.
func (e *Engine) StepHits() bool {
	if e.build == nil {
		return true
	}
	if e.build.Step(e.batch) {
		done, _ := e.build.Progress()
		e.debugf("hit buffer: %d segments ready", done)
		e.build = nil
		return true
	}
	return false
}

// BuildHits runs the pending build to completion.
func (e *Engine) BuildHits(ctx context.Context) error {
	if e.build == nil {
		return nil
	}
	if err := e.build.Run(ctx, e.batch); err != nil {
		return fmt.Errorf("hit buffer build: %w", err)
	}
	e.build = nil
	return nil
}

// PickReady reports whether a hit buffer is available.
func (e *Engine) PickReady() bool {
	return e.hits.Ready()
}

// Config returns the viewport geometry.
func (e *Engine) Config() viewport.Config { return e.cfg }

// Layout returns the loaded layout.
func (e *Engine) Layout() *layout.Layout { return e.lay }

// Compositor exposes the surfaces for drawing.
func (e *Engine) Compositor() *compositor.Compositor { return e.comp }

// Links exposes the deep-link decoder so collaborators can register keys.
func (e *Engine) Links() *deeplink.Decoder { return e.links }

// View returns the current view.
func (e *Engine) View() viewport.ViewState { return e.view }

// Status returns the last status message.
func (e *Engine) Status() search.Status { return e.status }

// Query returns the active find query.
func (e *Engine) Query() string { return e.query }

// DeepLink returns the query string describing the current view and search.
func (e *Engine) DeepLink() string { return e.link }

// Highlight returns the set the highlight surface settles on.
func (e *Engine) Highlight() layout.HighlightSet { return e.anim.Target() }

// SettleHighlight stops a running pulse and shows its set steadily.
func (e *Engine) SettleHighlight() { e.anim.Cancel() }

// OnPick registers a listener for clicks resolved by the hit buffer.
func (e *Engine) OnPick(fn func(PickResult)) { e.onPick = append(e.onPick, fn) }

// OnHighlightChanged registers a listener for highlight replacements.
func (e *Engine) OnHighlightChanged(fn func(layout.HighlightSet)) {
	e.onHighlight = append(e.onHighlight, fn)
}

// OnViewChanged registers a listener for pan and zoom changes.
func (e *Engine) OnViewChanged(fn func(viewport.ViewState)) {
	e.onView = append(e.onView, fn)
}

func (e *Engine) refreshLink() {
	e.link = deeplink.Encode(e.view, e.query)
}

func (e *Engine) setView(v viewport.ViewState) {
	if v == e.view {
		return
	}
	e.view = v
	e.comp.ApplyViewState(v)
	for _, fn := range e.onView {
		fn(v)
	}
}

// Pan moves the view by a device-pixel drag delta.
func (e *Engine) Pan(dx, dy float64) { e.setView(e.cfg.Pan(dx, dy, e.view)) }

// SetZoom sets the zoom, clamped to the configured range.
func (e *Engine) SetZoom(z float64) { e.setView(e.cfg.SetZoom(z, e.view)) }

func (e *Engine) ZoomIn()    { e.setView(e.cfg.ZoomIn(e.view)) }
func (e *Engine) ZoomOut()   { e.setView(e.cfg.ZoomOut(e.view)) }
func (e *Engine) ResetZoom() { e.setView(e.cfg.Reset(e.view)) }

// ZoomAt zooms by factor around a viewport-window pixel, as a scroll wheel
// does.
func (e *Engine) ZoomAt(screen geom.Point, factor float64) {
	e.setView(e.cfg.ZoomAt(screen, factor, e.view))
}

// ZoomToFit frames a logical box.
func (e *Engine) ZoomToFit(bb geom.BoundingBox) { e.setView(e.cfg.ZoomToFit(bb, e.view)) }

// SetLayerVisible shows or hides a drawing layer; picking follows after the
// resulting rebuild completes.
func (e *Engine) SetLayerVisible(layer int, visible bool) bool {
	return e.comp.SetLayerVisible(layer, visible)
}

func (e *Engine) setHighlight(set layout.HighlightSet, animate bool) {
	if animate {
		e.anim.Start(set)
	} else {
		e.anim.Set(set)
	}
	for _, fn := range e.onHighlight {
		fn(set)
	}
}

// Find resolves query, frames and pulses what it found, and reports the
// result. A query that finds nothing clears the highlight.
func (e *Engine) Find(query string) search.Result {
	res := e.resolver.Resolve(query)
	e.query = query
	e.status = res.Status
	if len(res.Dropped) > 0 {
		e.debugf("find: no match for %q", res.Dropped)
	}

	if res.Found() {
		e.ZoomToFit(res.Bounds)
		e.setHighlight(res.Set, true)
	} else {
		e.setHighlight(nil, false)
	}
	e.refreshLink()
	return res
}

// ApplyDeepLink restores a view and search from a query string. With a
// view present the search only highlights, so the link reproduces exactly
// the saved position; without one the search frames its result.
func (e *Engine) ApplyDeepLink(s string) deeplink.Link {
	link := e.links.Decode(s)

	if link.View != nil {
		e.setView(e.cfg.MoveTo(link.View.CenterX, link.View.CenterY, link.View.Zoom))
	}
	if link.Query != "" {
		if link.View != nil {
			res := e.resolver.Resolve(link.Query)
			e.query = link.Query
			e.status = res.Status
			e.setHighlight(res.Set, res.Found())
		} else {
			e.Find(link.Query)
		}
	}
	e.refreshLink()
	return link
}
