package layout

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
)

// Layout is a loaded die: nodes and transistors in file order plus lookup
// tables. It implements Registry. A Layout is not modified after loading.
type Layout struct {
	Version   int
	Name      string
	ExtentMin float64
	ExtentMax float64
	Layers    []LayerInfo

	Nodes       []*Node
	Transistors []*Transistor

	nodeByID    map[int]*Node
	nodeByName  map[string]int
	transByName map[string]*Transistor
}

// New returns an empty layout with the default extent and layers.
func New() *Layout {
	l := &Layout{
		Version:     1,
		ExtentMin:   DefaultExtentMin,
		ExtentMax:   DefaultExtentMax,
		nodeByID:    make(map[int]*Node),
		nodeByName:  make(map[string]int),
		transByName: make(map[string]*Transistor),
	}
	for i, name := range DefaultLayerNames {
		l.Layers = append(l.Layers, LayerInfo{Index: i, Name: name})
	}
	return l
}

// AddNode adds segments to node id, creating it on first use. Repeated
// records for the same id append segments, so a node may be spread over
// several records. The first non-empty name wins; later names become aliases.
func (l *Layout) AddNode(id int, name string, segments ...Segment) (*Node, error) {
	if id < 0 {
		return nil, fmt.Errorf("node id %d: must not be negative", id)
	}
	for i, s := range segments {
		if err := checkSegment(s); err != nil {
			return nil, fmt.Errorf("node %d segment %d: %w", id, i, err)
		}
	}

	n, ok := l.nodeByID[id]
	if !ok {
		n = &Node{ID: id, Geometry: NewGeometry()}
		l.nodeByID[id] = n
		l.Nodes = append(l.Nodes, n)
	}
	n.add(segments...)

	if name != "" {
		if n.Name == "" {
			n.Name = name
		} else if n.Name != name {
			n.Aliases = append(n.Aliases, name)
		}
		if _, taken := l.nodeByName[name]; !taken {
			l.nodeByName[name] = id
		}
	}
	return n, nil
}

// AddAlias maps an extra name onto an existing node.
func (l *Layout) AddAlias(id int, alias string) error {
	n, ok := l.nodeByID[id]
	if !ok {
		return fmt.Errorf("alias %q: unknown node %d", alias, id)
	}
	n.Aliases = append(n.Aliases, alias)
	if _, taken := l.nodeByName[alias]; !taken {
		l.nodeByName[alias] = id
	}
	return nil
}

// AddTransistor registers a transistor. Names must be unique.
func (l *Layout) AddTransistor(name string, gate, c1, c2 int, bbox geom.BoundingBox) (*Transistor, error) {
	if name == "" {
		return nil, fmt.Errorf("transistor without a name")
	}
	if _, dup := l.transByName[name]; dup {
		return nil, fmt.Errorf("transistor %q: duplicate name", name)
	}
	if bbox.IsEmpty() {
		return nil, fmt.Errorf("transistor %q: empty bounding box", name)
	}
	t := &Transistor{
		Name: name,
		Gate: gate,
		C1:   c1,
		C2:   c2,
		BBox: bbox,
		Geometry: NewGeometry(Segment{
			Layer:  TransistorLayer,
			Coords: []float64{bbox.Min.X, bbox.Min.Y, bbox.Max.X, bbox.Max.Y},
		}),
	}
	l.transByName[name] = t
	l.Transistors = append(l.Transistors, t)
	return t, nil
}

func checkSegment(s Segment) error {
	if len(s.Coords) < 4 {
		return fmt.Errorf("need at least two points, got %d values", len(s.Coords))
	}
	if len(s.Coords)%2 != 0 {
		return fmt.Errorf("odd number of coordinates (%d)", len(s.Coords))
	}
	return nil
}

func (l *Layout) NodeByID(id int) (Geometry, bool) {
	n, ok := l.nodeByID[id]
	if !ok {
		return Geometry{}, false
	}
	return n.Geometry, true
}

func (l *Layout) NodeByName(name string) (int, bool) {
	id, ok := l.nodeByName[name]
	return id, ok
}

func (l *Layout) TransistorByName(name string) (Geometry, bool) {
	t, ok := l.transByName[name]
	if !ok {
		return Geometry{}, false
	}
	return t.Geometry, true
}

// NodeName returns the primary name of node id, or "" when it has none.
func (l *Layout) NodeName(id int) string {
	if n, ok := l.nodeByID[id]; ok {
		return n.Name
	}
	return ""
}

// Node returns the node record for id.
func (l *Layout) Node(id int) (*Node, bool) {
	n, ok := l.nodeByID[id]
	return n, ok
}

// Transistor returns the transistor record for name.
func (l *Layout) Transistor(name string) (*Transistor, bool) {
	t, ok := l.transByName[name]
	return t, ok
}

// Geometry returns the geometry of any object.
func (l *Layout) Geometry(ref ObjectRef) (Geometry, bool) {
	if ref.Kind == KindTransistor {
		return l.TransistorByName(ref.Transistor)
	}
	return l.NodeByID(ref.Node)
}

// Objects lists every pickable object: nodes in file order, then transistors.
func (l *Layout) Objects() []ObjectRef {
	refs := make([]ObjectRef, 0, len(l.Nodes)+len(l.Transistors))
	for _, n := range l.Nodes {
		refs = append(refs, NodeRef(n.ID))
	}
	for _, t := range l.Transistors {
		refs = append(refs, TransistorRef(t.Name))
	}
	return refs
}

// LayerName returns the display name of a drawing layer.
func (l *Layout) LayerName(index int) string {
	for _, li := range l.Layers {
		if li.Index == index {
			return li.Name
		}
	}
	return fmt.Sprintf("layer %d", index)
}

// DrawOrder returns node segments in the order the background paints them:
// layer by layer in ascending index, file order within a layer. Segments on
// layers for which visible returns false are left out. A nil visible draws
// every layer. Transistors are not part of the background.
func (l *Layout) DrawOrder(visible func(layer int) bool) []DrawItem {
	seen := make(map[int]bool)
	var layers []int
	for _, n := range l.Nodes {
		for _, s := range n.Segments {
			if !seen[s.Layer] {
				seen[s.Layer] = true
				layers = append(layers, s.Layer)
			}
		}
	}
	sort.Ints(layers)

	var items []DrawItem
	for _, layer := range layers {
		if visible != nil && !visible(layer) {
			continue
		}
		for _, n := range l.Nodes {
			for _, s := range n.Segments {
				if s.Layer != layer {
					continue
				}
				items = append(items, DrawItem{
					Ref:    NodeRef(n.ID),
					Layer:  layer,
					Points: s.Points(),
				})
			}
		}
	}
	return items
}

// Bounds returns the box around every node segment.
func (l *Layout) Bounds() geom.BoundingBox {
	bb := geom.NewBoundingBox()
	for _, n := range l.Nodes {
		bb.ExpandBox(n.Bounds)
	}
	return bb
}

// Stats summarizes a layout.
type Stats struct {
	Nodes       int
	Named       int
	Segments    int
	Transistors int
	PerLayer    map[int]int
}

// Stats counts the objects in the layout.
func (l *Layout) Stats() Stats {
	s := Stats{
		Nodes:       len(l.Nodes),
		Transistors: len(l.Transistors),
		PerLayer:    make(map[int]int),
	}
	for _, n := range l.Nodes {
		if n.Name != "" {
			s.Named++
		}
		s.Segments += len(n.Segments)
		for _, seg := range n.Segments {
			s.PerLayer[seg.Layer]++
		}
	}
	return s
}
