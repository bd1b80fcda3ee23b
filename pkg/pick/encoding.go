// Package pick resolves a click to a chip object through an off-screen hit
// buffer: every object is painted in a unique opaque colour, so a single
// pixel read identifies it.
package pick

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
)

// MaxObjects is the number of distinct codes available in 24 bits, less the
// background.
const MaxObjects = 1<<24 - 1

var (
	ErrTooManyObjects = errors.New("too many objects for a 24-bit hit encoding")
	ErrDuplicateRef   = errors.New("object listed twice")
)

// Background is the colour of a hit-buffer pixel no object covers.
var Background = color.RGBA{}

// Encoding maps objects to hit colours and back. Object i of the list given
// to NewEncoding gets code i+1; code 0 is the background.
//
// Transistors are given codes so the numbering matches the layout's object
// list, but HitBuffer only paints node segments. A pick over a transistor
// therefore resolves to the node underneath it, or to nothing.
type Encoding struct {
	refs  []layout.ObjectRef
	codes map[layout.ObjectRef]uint32
}

// NewEncoding assigns codes in list order.
func NewEncoding(refs []layout.ObjectRef) (*Encoding, error) {
	if len(refs) > MaxObjects {
		return nil, fmt.Errorf("%d objects: %w", len(refs), ErrTooManyObjects)
	}
	e := &Encoding{
		refs:  make([]layout.ObjectRef, len(refs)),
		codes: make(map[layout.ObjectRef]uint32, len(refs)),
	}
	copy(e.refs, refs)
	for i, r := range refs {
		if _, dup := e.codes[r]; dup {
			return nil, fmt.Errorf("%v: %w", r, ErrDuplicateRef)
		}
		e.codes[r] = uint32(i + 1)
	}
	return e, nil
}

// Len returns the number of encoded objects.
func (e *Encoding) Len() int {
	return len(e.refs)
}

// Encode returns the hit colour of ref.
func (e *Encoding) Encode(ref layout.ObjectRef) (color.RGBA, bool) {
	code, ok := e.codes[ref]
	if !ok {
		return Background, false
	}
	return color.RGBA{R: uint8(code >> 16), G: uint8(code >> 8), B: uint8(code), A: 0xff}, true
}

// Decode returns the object painted in c. Background, translucent pixels
// and codes past the end of the table decode to nothing.
func (e *Encoding) Decode(c color.RGBA) (layout.ObjectRef, bool) {
	if c.A != 0xff {
		return layout.ObjectRef{}, false
	}
	code := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if code == 0 || int(code) > len(e.refs) {
		return layout.ObjectRef{}, false
	}
	return e.refs[code-1], true
}
