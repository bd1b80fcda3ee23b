// Package layout holds the chip object registry: signal nodes and
// transistors with their polygon geometry in logical chip coordinates,
// plus the name tables the search resolver consults.
package layout

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
)

// Default logical extent of a die. Coordinates in layout files fall inside
// [DefaultExtentMin, DefaultExtentMax] on both axes.
const (
	DefaultExtentMin = 0
	DefaultExtentMax = 10000
)

// DefaultLayerNames are the drawing layers of an NMOS die, bottom to top in
// draw order.
var DefaultLayerNames = []string{
	"metal",
	"switched diffusion",
	"inputdiode",
	"grounded diffusion",
	"powered diffusion",
	"polysilicon",
}

// TransistorLayer is the pseudo layer index carried by transistor bounding
// box segments. It is never drawn on the background.
const TransistorLayer = -1

// Kind distinguishes the two families of pickable objects.
type Kind int

const (
	KindNode Kind = iota
	KindTransistor
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindTransistor:
		return "transistor"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ObjectRef identifies a node by id or a transistor by name. It is
// comparable and used as a map key.
type ObjectRef struct {
	Kind       Kind
	Node       int
	Transistor string
}

// NodeRef refers to node id.
func NodeRef(id int) ObjectRef {
	return ObjectRef{Kind: KindNode, Node: id}
}

// TransistorRef refers to the named transistor.
func TransistorRef(name string) ObjectRef {
	return ObjectRef{Kind: KindTransistor, Transistor: name}
}

func (r ObjectRef) String() string {
	if r.Kind == KindTransistor {
		return "transistor " + r.Transistor
	}
	return fmt.Sprintf("node %d", r.Node)
}

// HighlightSet is an ordered list of objects to highlight. Duplicates are
// allowed; the set is replaced wholesale, never merged.
type HighlightSet []ObjectRef

// Contains reports whether ref is part of the set.
func (h HighlightSet) Contains(ref ObjectRef) bool {
	for _, r := range h {
		if r == ref {
			return true
		}
	}
	return false
}

// Segment is one polygon on a drawing layer. Coords is a flat list of
// logical x,y pairs. A 4-value segment is the box spanning its two corners.
type Segment struct {
	Layer  int
	Coords []float64
}

// IsBox reports whether the segment is the two-corner box form.
func (s Segment) IsBox() bool {
	return len(s.Coords) == 4
}

// Points returns the outline as points. Box segments expand to their four
// corners.
func (s Segment) Points() []geom.Point {
	if s.IsBox() {
		x0, y0, x1, y1 := s.Coords[0], s.Coords[1], s.Coords[2], s.Coords[3]
		return []geom.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
	}
	pts := make([]geom.Point, 0, len(s.Coords)/2)
	for i := 0; i+1 < len(s.Coords); i += 2 {
		pts = append(pts, geom.Point{X: s.Coords[i], Y: s.Coords[i+1]})
	}
	return pts
}

// Bounds returns the box around every coordinate pair of the segment.
func (s Segment) Bounds() geom.BoundingBox {
	bb := geom.NewBoundingBox()
	bb.ExpandCoords(s.Coords)
	return bb
}

// Geometry is the drawable shape of one object. Bounds is computed when the
// geometry is built and never changes afterwards.
type Geometry struct {
	Segments []Segment
	Bounds   geom.BoundingBox
}

// NewGeometry builds a geometry and its bounds from segments.
func NewGeometry(segments ...Segment) Geometry {
	g := Geometry{Bounds: geom.NewBoundingBox()}
	g.add(segments...)
	return g
}

func (g *Geometry) add(segments ...Segment) {
	for _, s := range segments {
		g.Segments = append(g.Segments, s)
		g.Bounds.ExpandCoords(s.Coords)
	}
}

// Node is a signal net.
type Node struct {
	ID      int
	Name    string
	Aliases []string
	Geometry
}

// Transistor connects C1 and C2 when Gate is high. Its geometry is the
// single bounding-box segment on TransistorLayer.
type Transistor struct {
	Name  string
	Gate  int
	C1    int
	C2    int
	BBox  geom.BoundingBox
	Geometry
}

// LayerInfo names a drawing layer.
type LayerInfo struct {
	Index int
	Name  string
}

// DrawItem is one segment in draw order.
type DrawItem struct {
	Ref    ObjectRef
	Layer  int
	Points []geom.Point
}

// Registry is the read-only lookup surface consumed by search and picking.
type Registry interface {
	NodeByID(id int) (Geometry, bool)
	NodeByName(name string) (int, bool)
	TransistorByName(name string) (Geometry, bool)
	NodeName(id int) string
}
