package layout

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/sexp"
)

// RootKey is the head symbol of a layout file.
const RootKey = "chip_layout"

// ErrNotLayout is returned when the first expression is not a chip_layout.
var ErrNotLayout = errors.New("not a chip layout file")

// ParseFile reads and parses a layout file.
func ParseFile(filename string) (*Layout, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a layout:
//
//	(chip_layout (version 1) (name "6502") (extent 0 10000)
//	  (layers (layer 0 "metal") ...)
//	  (node 42 "clk0" (alias "cp1") (seg 0 x y x y ...))
//	  (transistor "t1" (gate 42) (c1 10) (c2 11) (bb xmin xmax ymin ymax)))
func Parse(r io.Reader) (*Layout, error) {
	sexps, err := sexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file: %w", ErrNotLayout)
	}

	root := sexps[0]
	if key := keyOf(root); key != RootKey {
		return nil, fmt.Errorf("expected %q, got %q: %w", RootKey, key, ErrNotLayout)
	}

	l := New()

	if v, ok := findNode(root, "version"); ok {
		if l.Version, err = getInt(v, 1); err != nil {
			return nil, fmt.Errorf("failed to parse version: %w", err)
		}
	}
	if n, ok := findNode(root, "name"); ok {
		l.Name, _ = getString(n, 1)
	}
	if e, ok := findNode(root, "extent"); ok {
		if err := parseExtent(l, e); err != nil {
			return nil, err
		}
	}
	if ls, ok := findNode(root, "layers"); ok {
		if err := parseLayers(l, ls); err != nil {
			return nil, err
		}
	}

	for _, n := range findAllNodes(root, "node") {
		if err := parseNode(l, n); err != nil {
			return nil, err
		}
	}
	for _, t := range findAllNodes(root, "transistor") {
		if err := parseTransistor(l, t); err != nil {
			return nil, err
		}
	}

	return l, nil
}

func parseExtent(l *Layout, s sexp.Sexp) error {
	lo, err := getFloat(s, 1)
	if err != nil {
		return fmt.Errorf("failed to parse extent: %w", err)
	}
	hi, err := getFloat(s, 2)
	if err != nil {
		return fmt.Errorf("failed to parse extent: %w", err)
	}
	if hi <= lo {
		return fmt.Errorf("invalid extent %v..%v", lo, hi)
	}
	l.ExtentMin, l.ExtentMax = lo, hi
	return nil
}

func parseLayers(l *Layout, s sexp.Sexp) error {
	var layers []LayerInfo
	for _, ln := range findAllNodes(s, "layer") {
		idx, err := getInt(ln, 1)
		if err != nil {
			return fmt.Errorf("failed to parse layer index: %w", err)
		}
		name, err := getString(ln, 2)
		if err != nil {
			return fmt.Errorf("layer %d: %w", idx, err)
		}
		layers = append(layers, LayerInfo{Index: idx, Name: name})
	}
	if len(layers) > 0 {
		l.Layers = layers
	}
	return nil
}

// parseNode handles (node ID ["name"] (alias "x")... (seg LAYER coords...)...).
func parseNode(l *Layout, s sexp.Sexp) error {
	id, err := getInt(s, 1)
	if err != nil {
		return fmt.Errorf("failed to parse node id: %w", err)
	}

	var name string
	if it := items(s); len(it) > 2 && it[2].IsLeaf() {
		name = it[2].String()
	}

	var segs []Segment
	for _, sn := range findAllNodes(s, "seg") {
		layer, err := getInt(sn, 1)
		if err != nil {
			return fmt.Errorf("node %d: failed to parse segment layer: %w", id, err)
		}
		coords, err := getFloats(sn, 2)
		if err != nil {
			return fmt.Errorf("node %d: %w", id, err)
		}
		segs = append(segs, Segment{Layer: layer, Coords: coords})
	}

	if _, err := l.AddNode(id, name, segs...); err != nil {
		return err
	}

	for _, a := range findAllNodes(s, "alias") {
		alias, err := getString(a, 1)
		if err != nil {
			return fmt.Errorf("node %d: %w", id, err)
		}
		if err := l.AddAlias(id, alias); err != nil {
			return err
		}
	}
	return nil
}

// parseTransistor handles (transistor "name" (gate N) (c1 N) (c2 N) (bb xmin xmax ymin ymax)).
func parseTransistor(l *Layout, s sexp.Sexp) error {
	name, err := getString(s, 1)
	if err != nil {
		return fmt.Errorf("failed to parse transistor name: %w", err)
	}

	terminal := func(key string) (int, error) {
		n, ok := findNode(s, key)
		if !ok {
			return -1, nil
		}
		v, err := getInt(n, 1)
		if err != nil {
			return 0, fmt.Errorf("transistor %q %s: %w", name, key, err)
		}
		return v, nil
	}
	gate, err := terminal("gate")
	if err != nil {
		return err
	}
	c1, err := terminal("c1")
	if err != nil {
		return err
	}
	c2, err := terminal("c2")
	if err != nil {
		return err
	}

	bbn, ok := findNode(s, "bb")
	if !ok {
		return fmt.Errorf("transistor %q: missing bb", name)
	}
	v, err := getFloats(bbn, 1)
	if err != nil {
		return fmt.Errorf("transistor %q bb: %w", name, err)
	}
	if len(v) != 4 {
		return fmt.Errorf("transistor %q bb: want 4 values, got %d", name, len(v))
	}

	_, err = l.AddTransistor(name, gate, c1, c2, geom.Box(v[0], v[2], v[1], v[3]))
	return err
}
