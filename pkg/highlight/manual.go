package highlight

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by hand. Nothing fires until Advance is
// called, which makes pulse timing deterministic in tests and lets a
// single-threaded caller run callbacks on its own goroutine.
type Manual struct {
	// IgnoreStop makes Stop a no-op, modelling callbacks that were already
	// in flight when their timer was stopped.
	IgnoreStop bool

	mu    sync.Mutex
	now   time.Duration
	seq   int
	queue []*manualTimer
}

type manualTimer struct {
	m       *Manual
	at      time.Duration
	seq     int
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.m.IgnoreStop {
		return false
	}
	was := !t.stopped
	t.stopped = true
	return was
}

// AfterFunc queues f to run once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, f: f}
	m.queue = append(m.queue, t)
	return t
}

// Advance moves the clock forward and runs every due callback in time
// order. Callbacks run without the scheduler lock held.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	now := m.now
	m.mu.Unlock()

	for {
		m.mu.Lock()
		sort.SliceStable(m.queue, func(i, j int) bool {
			if m.queue[i].at != m.queue[j].at {
				return m.queue[i].at < m.queue[j].at
			}
			return m.queue[i].seq < m.queue[j].seq
		})
		if len(m.queue) == 0 || m.queue[0].at > now {
			m.mu.Unlock()
			return
		}
		t := m.queue[0]
		m.queue = m.queue[1:]
		stopped := t.stopped
		m.mu.Unlock()

		if !stopped {
			t.f()
		}
	}
}

// Pending returns the number of queued timers that have not been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.queue {
		if !t.stopped {
			n++
		}
	}
	return n
}
