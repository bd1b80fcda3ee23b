package highlight

import (
	"reflect"
	"sync"
	"testing"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
)

type recorder struct {
	mu    sync.Mutex
	shown []layout.HighlightSet
}

func (r *recorder) apply(s layout.HighlightSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, s)
}

func (r *recorder) last() layout.HighlightSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.shown) == 0 {
		return nil
	}
	return r.shown[len(r.shown)-1]
}

func TestPulseSequence(t *testing.T) {
	var clock Manual
	var rec recorder
	a := NewAnimator(&clock, DefaultInterval, rec.apply)
	set := layout.HighlightSet{layout.NodeRef(42)}

	a.Start(set)
	if len(rec.shown) != 1 || rec.last() != nil {
		t.Fatalf("shown right after Start = %v, want one clear", rec.shown)
	}

	steps := []struct {
		name string
		want layout.HighlightSet
	}{
		{"400ms shown", set},
		{"800ms cleared", nil},
		{"1200ms shown", set},
	}
	for _, s := range steps {
		clock.Advance(DefaultInterval)
		if got := rec.last(); !reflect.DeepEqual(got, s.want) {
			t.Fatalf("%s: shown %v, want %v", s.name, got, s.want)
		}
	}
	if len(rec.shown) != 4 {
		t.Errorf("apply called %d times, want 4", len(rec.shown))
	}
	if clock.Pending() != 0 {
		t.Errorf("%d timers still pending", clock.Pending())
	}
}

func TestStalePulseDiscarded(t *testing.T) {
	clock := Manual{IgnoreStop: true}
	var rec recorder
	a := NewAnimator(&clock, DefaultInterval, rec.apply)

	first := layout.HighlightSet{layout.NodeRef(1)}
	second := layout.HighlightSet{layout.NodeRef(2), layout.TransistorRef("t1")}

	a.Start(first)
	clock.Advance(DefaultInterval / 2)
	a.Start(second)

	// first animation's timers still fire: 400, 800, 1200 from t=0
	clock.Advance(4 * DefaultInterval)
	for _, s := range rec.shown {
		if reflect.DeepEqual(s, first) {
			t.Fatalf("stale set %v re-applied after a newer Start", first)
		}
	}
	if got := rec.last(); !reflect.DeepEqual(got, second) {
		t.Errorf("final shown %v, want %v", got, second)
	}
}

func TestCancelSettlesOnTarget(t *testing.T) {
	var clock Manual
	var rec recorder
	a := NewAnimator(&clock, DefaultInterval, rec.apply)
	set := layout.HighlightSet{layout.NodeRef(5)}

	a.Start(set)
	gen := a.Generation()
	a.Cancel()
	if a.Generation() == gen {
		t.Error("Cancel should bump the generation")
	}
	if !reflect.DeepEqual(rec.last(), set) {
		t.Errorf("shown after Cancel = %v, want %v", rec.last(), set)
	}
	if clock.Pending() != 0 {
		t.Errorf("Cancel left %d timers", clock.Pending())
	}
	clock.Advance(10 * DefaultInterval)
	if !reflect.DeepEqual(rec.last(), set) {
		t.Errorf("last applied = %v, want %v", rec.last(), set)
	}
}

func TestSetWithoutAnimation(t *testing.T) {
	var clock Manual
	var rec recorder
	a := NewAnimator(&clock, 0, rec.apply)
	a.Start(layout.HighlightSet{layout.NodeRef(1)})
	a.Set(nil)
	clock.Advance(10 * DefaultInterval)
	if rec.last() != nil || a.Target() != nil {
		t.Errorf("Set(nil) should clear: shown %v target %v", rec.last(), a.Target())
	}
}
