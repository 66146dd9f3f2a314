package narration

import (
	"sync"
	"time"
)

// pauseTimer calls fn once after d of unpaused time.
type pauseTimer struct {
	mu        sync.Mutex
	fn        func()
	remaining time.Duration
	started   time.Time
	timer     *time.Timer
	paused    bool
	stopped   bool
}

func newPauseTimer(d time.Duration, paused bool, fn func()) *pauseTimer {
	t := &pauseTimer{fn: fn, remaining: d, paused: paused}
	if !paused {
		t.arm()
	}
	return t
}

func (t *pauseTimer) arm() {
	t.started = time.Now()
	t.timer = time.AfterFunc(t.remaining, t.fire)
}

func (t *pauseTimer) fire() {
	t.mu.Lock()
	if t.stopped || t.paused {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()

	t.fn()
}

func (t *pauseTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.paused || t.stopped {
		return
	}
	t.pauseLocked()
}

// pauseLocked records the unpaused time spent so far. The timer may already
// have fired with fire waiting on t.mu; fire then returns early and Resume
// re-arms with what is left.
func (t *pauseTimer) pauseLocked() {
	t.paused = true
	t.timer.Stop()
	t.remaining = max(0, t.remaining-time.Since(t.started))
}

func (t *pauseTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.paused || t.stopped {
		return
	}
	t.paused = false
	t.arm()
}

func (t *pauseTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

// gate blocks waiters while closed.
type gate struct {
	mu     sync.Mutex
	open   chan struct{} // closed while the gate is open
	closed chan struct{} // closed while the gate is closed
}

func newGate() *gate {
	g := &gate{open: make(chan struct{}), closed: make(chan struct{})}
	close(g.open)
	return g
}

// Set opens or closes the gate.
func (g *gate) Set(open bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	isOpen := isClosedChan(g.open)
	switch {
	case open && !isOpen:
		close(g.open)
		g.closed = make(chan struct{})
	case !open && isOpen:
		g.open = make(chan struct{})
		close(g.closed)
	}
}

// Opened returns a channel that is closed while the gate is open.
func (g *gate) Opened() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Closed returns a channel that is closed while the gate is closed.
func (g *gate) Closed() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

func isClosedChan(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
