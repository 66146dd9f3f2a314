// Package reveal types out text one word at a time.
package reveal

import (
	"strings"
	"sync"
	"time"
)

// DefaultInterval is the delay between two revealed words.
const DefaultInterval = 60 * time.Millisecond

// Ticker reveals the words of a text at a fixed interval. Each call to Start
// begins a new reveal and stops the previous one. Callbacks run on the
// ticker's goroutine; no method invokes them synchronously and none of them
// block, so they may be called while holding a caller's lock.
type Ticker struct {
	interval time.Duration
	onUpdate func(string)

	mu     sync.Mutex
	run    *run
	paused bool
}

type run struct {
	stop chan struct{}
	once sync.Once
}

func (r *run) cancel() {
	r.once.Do(func() { close(r.stop) })
}

// New returns a ticker that reports the revealed prefix to onUpdate.
func New(interval time.Duration, onUpdate func(string)) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onUpdate == nil {
		onUpdate = func(string) {}
	}
	return &Ticker{interval: interval, onUpdate: onUpdate}
}

// Start clears the revealed text and begins revealing text word by word.
// Once every word is shown, the following tick calls onComplete. The
// returned cancel stops the reveal without calling onComplete; it is safe to
// call more than once.
func (t *Ticker) Start(text string, onComplete func()) (cancel func()) {
	r := &run{stop: make(chan struct{})}

	t.mu.Lock()
	if t.run != nil {
		t.run.cancel()
	}
	t.run = r
	t.mu.Unlock()

	go t.loop(r, strings.Split(text, " "), onComplete)

	return r.cancel
}

// Stop cancels the active reveal, if any.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.run != nil {
		t.run.cancel()
		t.run = nil
	}
}

// Pause suspends ticking. Ticks that fall inside a pause are skipped.
func (t *Ticker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
}

// Resume continues ticking after Pause.
func (t *Ticker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
}

// Paused reports whether the ticker is suspended.
func (t *Ticker) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *Ticker) loop(r *run, words []string, onComplete func()) {
	if !t.live(r) {
		return
	}
	t.onUpdate("")

	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	shown := 0
	for {
		select {
		case <-r.stop:
			return
		case <-tick.C:
		}

		if t.Paused() {
			continue
		}
		if !t.live(r) {
			return
		}

		if shown < len(words) {
			shown++
			t.onUpdate(strings.Join(words[:shown], " "))
			continue
		}

		r.cancel()
		if onComplete != nil {
			onComplete()
		}
		return
	}
}

// live reports whether r is still the active reveal.
func (t *Ticker) live(r *run) bool {
	select {
	case <-r.stop:
		return false
	default:
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.run == r
}
