// Package highlight animates the attention pulse shown after a search: the
// highlight is cleared, shown, cleared and shown again at a fixed interval.
package highlight

import (
	"sync"
	"time"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
)

// DefaultInterval is the time between pulse steps.
const DefaultInterval = 400 * time.Millisecond

// pulseSteps is the number of delayed steps after the immediate clear.
const pulseSteps = 3

// Timer is a scheduled callback that can be stopped. *time.Timer
// satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealTime schedules with time.AfterFunc. Callbacks run on their own
// goroutines.
type RealTime struct{}

func (RealTime) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Animator owns the visible highlight. Every Start bumps a generation
// counter; a step whose generation is no longer current does nothing, so a
// new search silences the previous animation even if its timers still fire.
type Animator struct {
	sched    Scheduler
	interval time.Duration
	apply    func(layout.HighlightSet)

	mu     sync.Mutex
	gen    uint64
	timers []Timer
	target layout.HighlightSet
}

// NewAnimator creates an animator. apply is called with the set to display
// at each step, under the animator's lock; it must not call back into the
// Animator.
func NewAnimator(sched Scheduler, interval time.Duration, apply func(layout.HighlightSet)) *Animator {
	if sched == nil {
		sched = RealTime{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if apply == nil {
		apply = func(layout.HighlightSet) {}
	}
	return &Animator{sched: sched, interval: interval, apply: apply}
}

// Start replaces the highlight with set and runs the pulse: clear now, show
// after one interval, clear after two, show after three.
func (a *Animator) Start(set layout.HighlightSet) {
	a.mu.Lock()
	defer a.mu.Unlock()

	gen := a.resetLocked()
	a.target = set
	a.showLocked(nil)

	for step := 1; step <= pulseSteps; step++ {
		var show layout.HighlightSet
		if step%2 == 1 {
			show = set
		}
		a.timers = append(a.timers, a.sched.AfterFunc(time.Duration(step)*a.interval, func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			if a.gen != gen {
				return
			}
			a.showLocked(show)
		}))
	}
}

// Set shows set immediately without animating, cancelling any pulse.
func (a *Animator) Set(set layout.HighlightSet) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
	a.target = set
	a.showLocked(set)
}

// Cancel stops a running pulse and leaves the final state: the target set
// shown.
func (a *Animator) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
	a.showLocked(a.target)
}

// Target is the set the current animation settles on.
func (a *Animator) Target() layout.HighlightSet {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.target
}

// Generation is the current animation generation.
func (a *Animator) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

func (a *Animator) resetLocked() uint64 {
	for _, t := range a.timers {
		t.Stop()
	}
	a.timers = a.timers[:0]
	a.gen++
	return a.gen
}

func (a *Animator) showLocked(set layout.HighlightSet) {
	a.apply(set)
}
