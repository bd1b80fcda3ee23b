package compositor

import "sort"

// LayerSet tracks which drawing layers are drawn. Layers are visible unless
// hidden.
type LayerSet struct {
	names  map[int]string
	hidden map[int]bool
}

// NewLayerSet creates a set with every layer visible.
func NewLayerSet(names map[int]string) *LayerSet {
	ls := &LayerSet{
		names:  make(map[int]string, len(names)),
		hidden: make(map[int]bool),
	}
	for i, n := range names {
		ls.names[i] = n
	}
	return ls
}

// SetVisible shows or hides layer i and reports whether anything changed.
func (ls *LayerSet) SetVisible(i int, visible bool) bool {
	if ls.IsVisible(i) == visible {
		return false
	}
	if visible {
		delete(ls.hidden, i)
	} else {
		ls.hidden[i] = true
	}
	return true
}

func (ls *LayerSet) IsVisible(i int) bool {
	return !ls.hidden[i]
}

// ShowAll makes every layer visible.
func (ls *LayerSet) ShowAll() {
	ls.hidden = make(map[int]bool)
}

// ShowOnly hides every named layer except those listed.
func (ls *LayerSet) ShowOnly(layers ...int) {
	keep := make(map[int]bool, len(layers))
	for _, i := range layers {
		keep[i] = true
	}
	ls.hidden = make(map[int]bool)
	for i := range ls.names {
		if !keep[i] {
			ls.hidden[i] = true
		}
	}
}

// Name returns the display name of layer i.
func (ls *LayerSet) Name(i int) string {
	return ls.names[i]
}

// Indices lists the named layers in ascending order.
func (ls *LayerSet) Indices() []int {
	idx := make([]int, 0, len(ls.names))
	for i := range ls.names {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Hidden lists hidden layers in ascending order.
func (ls *LayerSet) Hidden() []int {
	idx := make([]int, 0, len(ls.hidden))
	for i := range ls.hidden {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
