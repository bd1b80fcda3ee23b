package pick

import (
	"errors"
	"image/color"
	"testing"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
)

func TestEncodingBijection(t *testing.T) {
	refs := []layout.ObjectRef{
		layout.NodeRef(0),
		layout.NodeRef(42),
		layout.TransistorRef("t1"),
		layout.NodeRef(1 << 20),
	}
	enc, err := NewEncoding(refs)
	if err != nil {
		t.Fatalf("NewEncoding() error = %v", err)
	}
	if enc.Len() != len(refs) {
		t.Fatalf("Len() = %d, want %d", enc.Len(), len(refs))
	}

	seen := make(map[color.RGBA]layout.ObjectRef)
	for _, r := range refs {
		c, ok := enc.Encode(r)
		if !ok {
			t.Fatalf("Encode(%v) failed", r)
		}
		if c == Background {
			t.Fatalf("Encode(%v) returned the background colour", r)
		}
		if c.A != 0xff {
			t.Fatalf("Encode(%v) alpha = %d, want opaque", r, c.A)
		}
		if other, dup := seen[c]; dup {
			t.Fatalf("%v and %v share colour %v", r, other, c)
		}
		seen[c] = r

		back, ok := enc.Decode(c)
		if !ok || back != r {
			t.Errorf("Decode(Encode(%v)) = %v, %v", r, back, ok)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	enc, err := NewEncoding([]layout.ObjectRef{layout.NodeRef(1), layout.NodeRef(2)})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		c    color.RGBA
	}{
		{"background", Background},
		{"opaque black", color.RGBA{A: 0xff}},
		{"translucent code", color.RGBA{B: 1, A: 0x80}},
		{"past table", color.RGBA{B: 3, A: 0xff}},
		{"high bits", color.RGBA{R: 1, A: 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ref, ok := enc.Decode(tt.c); ok {
				t.Errorf("Decode(%v) = %v, want none", tt.c, ref)
			}
		})
	}
	if _, ok := enc.Encode(layout.NodeRef(3)); ok {
		t.Error("Encode of an unknown ref should fail")
	}
}

func TestEncodingDuplicate(t *testing.T) {
	_, err := NewEncoding([]layout.ObjectRef{layout.NodeRef(5), layout.NodeRef(5)})
	if !errors.Is(err, ErrDuplicateRef) {
		t.Fatalf("error = %v, want ErrDuplicateRef", err)
	}
}

func TestEncodingWideCodes(t *testing.T) {
	refs := make([]layout.ObjectRef, 70000)
	for i := range refs {
		refs[i] = layout.NodeRef(i)
	}
	enc, err := NewEncoding(refs)
	if err != nil {
		t.Fatal(err)
	}
	c, _ := enc.Encode(layout.NodeRef(69999))
	if c.R != 1 {
		t.Errorf("code 70000 should use the red byte, got %v", c)
	}
	if back, ok := enc.Decode(c); !ok || back != layout.NodeRef(69999) {
		t.Errorf("Decode() = %v, %v", back, ok)
	}
}
