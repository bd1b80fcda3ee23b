package ui

import (
	"sync"
	"time"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/highlight"
)

// loop is a highlight.Scheduler whose callbacks run on the window
// goroutine. Timers fire on their own goroutines and only queue the
// callback; the next frame drains the queue.
type loop struct {
	mu         sync.Mutex
	pending    []func()
	invalidate func()
}

func newLoop(invalidate func()) *loop {
	return &loop{invalidate: invalidate}
}

func (l *loop) AfterFunc(d time.Duration, f func()) highlight.Timer {
	return time.AfterFunc(d, func() { l.post(f) })
}

func (l *loop) post(f func()) {
	l.mu.Lock()
	l.pending = append(l.pending, f)
	l.mu.Unlock()
	if l.invalidate != nil {
		l.invalidate()
	}
}

// drain runs the queued callbacks in arrival order and returns how many
// ran.
func (l *loop) drain() int {
	l.mu.Lock()
	fns := l.pending
	l.pending = nil
	l.mu.Unlock()
	for _, f := range fns {
		f()
	}
	return len(fns)
}
