package engine

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/search"
)

type dragState struct {
	down  bool
	moved bool
	last  geom.Point
}

// PickAt resolves a viewport-window pixel without changing any state.
func (e *Engine) PickAt(screen geom.Point) PickResult {
	p := e.cfg.ToLogical(screen, e.cfg.Origin(e.view), e.view)
	ref, ok := e.hits.Pick(p)

	cx, cy := int(math.Round(p.X)), int(math.Round(p.Y))
	res := PickResult{Ref: ref, Found: ok, Logical: p}
	if !ok {
		res.Status = search.Status{Title: fmt.Sprintf("x: %d", cx), Detail: fmt.Sprintf("y: %d", cy)}
		return res
	}
	res.Status = search.Status{
		Title:  fmt.Sprintf("x: %d y: %d", cx, cy),
		Detail: describe(e.lay, ref),
	}
	return res
}

func describe(l *layout.Layout, ref layout.ObjectRef) string {
	if ref.Kind == layout.KindTransistor {
		return "transistor: " + ref.Transistor
	}
	return fmt.Sprintf("node: %d %s", ref.Node, l.NodeName(ref.Node))
}

// Click picks the object under screen and makes it the highlight. With
// shift held and a Grouper available, the node's whole group is selected.
// A click on empty space clears the highlight.
func (e *Engine) Click(screen geom.Point, shift bool) PickResult {
	res := e.PickAt(screen)
	e.status = res.Status

	var set layout.HighlightSet
	if res.Found {
		set = layout.HighlightSet{res.Ref}
		if shift && e.grouper != nil && res.Ref.Kind == layout.KindNode {
			set = set[:0]
			for _, id := range e.grouper.NodeGroup(res.Ref.Node) {
				set = append(set, layout.NodeRef(id))
			}
		}
	}
	e.setHighlight(set, false)

	for _, fn := range e.onPick {
		fn(res)
	}
	return res
}

// PointerDown starts a press at a viewport-window pixel.
func (e *Engine) PointerDown(p geom.Point) {
	e.drag = dragState{down: true, last: p}
}

// PointerMove drags the view while the pointer is pressed.
func (e *Engine) PointerMove(p geom.Point) {
	if !e.drag.down {
		return
	}
	d := p.Sub(e.drag.last)
	if d == (geom.Point{}) {
		return
	}
	e.drag.moved = true
	e.drag.last = p
	e.Pan(d.X, d.Y)
}

// PointerUp ends a press. A press without movement is a click, and its
// pick result is returned.
func (e *Engine) PointerUp(p geom.Point, shift bool) (PickResult, bool) {
	if !e.drag.down {
		return PickResult{}, false
	}
	moved := e.drag.moved
	e.drag = dragState{}
	if moved {
		return PickResult{}, false
	}
	return e.Click(p, shift), true
}

// HandleKey applies a viewer key and reports whether it was recognised:
// z and > zoom in, Z, x and < zoom out, ? resets the zoom, n and p step the
// simulation forward and back.
func (e *Engine) HandleKey(r rune) bool {
	switch r {
	case 'z', '>':
		e.ZoomIn()
	case 'Z', 'x', '<':
		e.ZoomOut()
	case '?':
		e.ResetZoom()
	case 'n':
		if e.stepper != nil {
			e.stepper.StepForward()
		}
	case 'p':
		if e.stepper != nil {
			e.stepper.StepBack()
		}
	default:
		return false
	}
	return true
}
