// Package narration plays a sequence of key points, revealing each one word
// by word while a Speaker reads it aloud.
package narration

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/explainer/narration/reveal"
)

// Controller drives playback through the loaded points.
//
// Every run of the driver loop carries an epoch. Reset and restart bump the
// epoch, and every mutation made on behalf of a run re-checks it under the
// lock, so work left over from an earlier run never changes state.
type Controller struct {
	engine *Engine
	cfg    ControllerConfig

	ctl sync.Mutex // serializes control operations

	mu        sync.Mutex
	machine   *StateMachine
	points    []string
	index     int
	revealed  string
	epoch     uint64
	revealSeq uint64
	cancel    context.CancelFunc
	ticker    *reveal.Ticker
	running   *gate // open unless paused

	subs    map[int]chan PlaybackState
	nextSub int
}

// NewController creates a controller narrating through engine.
func NewController(engine *Engine, cfg ControllerConfig) *Controller {
	defaults := DefaultControllerConfig()
	if cfg.RevealInterval <= 0 {
		cfg.RevealInterval = defaults.RevealInterval
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if cfg.CompletionMessage == "" {
		cfg.CompletionMessage = defaults.CompletionMessage
	}

	c := &Controller{
		engine:  engine,
		cfg:     cfg,
		machine: NewStateMachine(),
		running: newGate(),
		subs:    make(map[int]chan PlaybackState),
	}

	engine.OnNarratingChange(func(bool) { c.publish() })

	c.machine.OnEnter(PhaseIdle, func() {
		c.index = 0
		c.revealed = ""
	})

	return c
}

// Load replaces the points to narrate and resets playback. With no points,
// the script is narrated as a single point.
func (c *Controller) Load(points []string, script string) {
	c.ctl.Lock()
	defer c.ctl.Unlock()

	c.reset()

	c.mu.Lock()
	if len(points) == 0 {
		c.points = []string{script}
	} else {
		c.points = append([]string(nil), points...)
	}
	c.mu.Unlock()

	c.publish()
}

// SetAnimationDuration sets how long a point lasts without voice.
func (c *Controller) SetAnimationDuration(d time.Duration) {
	c.engine.SetFallbackDuration(d)
}

// Start begins playback from the first point. It does nothing while
// playing. While paused it resumes, unless the last point is current, in
// which case playback starts over.
func (c *Controller) Start() error {
	c.ctl.Lock()
	defer c.ctl.Unlock()

	c.mu.Lock()
	if len(c.points) == 0 {
		c.mu.Unlock()
		return ErrNothingToPlay
	}

	switch c.machine.Current() {
	case PhasePlaying:
		c.mu.Unlock()
		return nil
	case PhasePaused:
		if c.index < len(c.points)-1 {
			c.mu.Unlock()
			c.resume()
			return nil
		}
	}

	prev := c.cancel
	c.epoch++
	epoch := c.epoch
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.stopReveal()
	c.index = 0
	c.revealed = ""
	if err := c.machine.Transition(PhasePlaying); err != nil {
		c.mu.Unlock()
		cancel()
		return err
	}
	c.running.Set(true)
	total := len(c.points)
	c.mu.Unlock()

	if prev != nil {
		prev()
	}
	c.engine.Cancel()
	c.engine.Resume()

	log.Debug("playback started", "points", total)
	c.publish()

	go c.drive(ctx, epoch)
	return nil
}

// TogglePause pauses while playing and resumes while paused. It has no
// effect in other phases.
func (c *Controller) TogglePause() {
	c.ctl.Lock()
	defer c.ctl.Unlock()

	c.mu.Lock()
	phase := c.machine.Current()
	c.mu.Unlock()

	switch phase {
	case PhasePlaying:
		c.pause()
	case PhasePaused:
		c.resume()
	}
}

// Reset stops playback and returns to the first point with nothing
// revealed. It is safe to call in any phase.
func (c *Controller) Reset() {
	c.ctl.Lock()
	defer c.ctl.Unlock()

	c.reset()
	c.publish()
}

// SetVoiceEnabled turns narration audio on or off without changing the
// phase. Turning it off ends the current point's narration immediately.
func (c *Controller) SetVoiceEnabled(enabled bool) {
	c.ctl.Lock()
	defer c.ctl.Unlock()

	c.engine.SetEnabled(enabled)
	log.Debug("voice toggled", "enabled", enabled)
	c.publish()
}

// ToggleVoice flips the voice setting.
func (c *Controller) ToggleVoice() {
	c.SetVoiceEnabled(!c.engine.Enabled())
}

// State returns a snapshot of the playback state.
func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Points returns the loaded points.
func (c *Controller) Points() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.points...)
}

// Subscribe returns a channel of state snapshots. The channel holds only the
// latest snapshot; a slow reader skips intermediate states. The returned
// function unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan PlaybackState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan PlaybackState, 1)
	ch <- c.snapshot()
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if ch, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
		})
	}
}

// Close stops playback and closes all subscriber channels.
func (c *Controller) Close() {
	c.Reset()

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *Controller) pause() {
	c.mu.Lock()
	if err := c.machine.Transition(PhasePaused); err != nil {
		c.mu.Unlock()
		return
	}
	c.running.Set(false)
	if c.ticker != nil {
		c.ticker.Pause()
	}
	c.mu.Unlock()

	c.engine.Pause()
	c.publish()
}

func (c *Controller) resume() {
	c.mu.Lock()
	if err := c.machine.Transition(PhasePlaying); err != nil {
		c.mu.Unlock()
		return
	}
	c.running.Set(true)
	if c.ticker != nil {
		c.ticker.Resume()
	}
	c.mu.Unlock()

	c.engine.Resume()
	c.publish()
}

// reset must be called with ctl held.
func (c *Controller) reset() {
	c.mu.Lock()
	prev := c.cancel
	c.cancel = nil
	c.epoch++
	c.stopReveal()
	if c.machine.Current() != PhaseIdle {
		_ = c.machine.Transition(PhaseIdle)
	}
	c.index = 0
	c.revealed = ""
	c.running.Set(true)
	c.mu.Unlock()

	if prev != nil {
		prev()
	}
	c.engine.Cancel()
	c.engine.Resume()
}

// stopReveal must be called with mu held.
func (c *Controller) stopReveal() {
	c.revealSeq++
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

// drive plays points from the current index until the last one completes
// or the run is invalidated.
func (c *Controller) drive(ctx context.Context, epoch uint64) {
	for {
		if !c.lockRunning(ctx, epoch) {
			return
		}
		idx := c.index
		text := c.points[idx]
		total := len(c.points)

		c.stopReveal()
		seq := c.revealSeq
		c.revealed = ""
		t := reveal.New(c.cfg.RevealInterval, func(s string) { c.onReveal(seq, s) })
		c.ticker = t
		t.Start(text, nil)
		c.mu.Unlock()

		log.Debug("narrating point", "index", idx, "total", total)
		c.publish()

		done := c.engine.Speak(ctx, text)
		select {
		case <-done.Done():
		case <-ctx.Done():
			return
		}
		if err := done.Err(); err != nil && !IsCanceled(err) && ctx.Err() == nil {
			log.Warn("narration ended with error", "index", idx, "error", err)
		}

		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return
		}
		c.stopReveal()
		c.revealed = text
		c.mu.Unlock()
		c.publish()

		if !c.sleep(ctx, c.cfg.SettleDelay) {
			return
		}

		if !c.lockRunning(ctx, epoch) {
			return
		}
		if idx >= len(c.points)-1 {
			_ = c.machine.Transition(PhaseCompleted)
			c.revealed = c.cfg.CompletionMessage
			c.cancel = nil
			c.mu.Unlock()

			log.Debug("playback completed", "points", total)
			c.publish()
			return
		}
		c.index = idx + 1
		c.mu.Unlock()
	}
}

// lockRunning waits until the run is playing and returns with mu held. It
// returns false, without the lock, once the run is invalidated.
func (c *Controller) lockRunning(ctx context.Context, epoch uint64) bool {
	for {
		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return false
		}
		if c.machine.Current() == PhasePlaying {
			return true
		}
		opened := c.running.Opened()
		c.mu.Unlock()

		select {
		case <-opened:
		case <-ctx.Done():
			return false
		}
	}
}

// sleep waits for d of unpaused time.
func (c *Controller) sleep(ctx context.Context, d time.Duration) bool {
	remaining := d
	for remaining > 0 {
		select {
		case <-c.running.Opened():
		case <-ctx.Done():
			return false
		}

		start := time.Now()
		timer := time.NewTimer(remaining)
		select {
		case <-timer.C:
			return true
		case <-c.running.Closed():
			timer.Stop()
			remaining -= time.Since(start)
		case <-ctx.Done():
			timer.Stop()
			return false
		}
	}
	return ctx.Err() == nil
}

func (c *Controller) onReveal(seq uint64, text string) {
	c.mu.Lock()
	if seq != c.revealSeq {
		c.mu.Unlock()
		return
	}
	c.revealed = text
	c.mu.Unlock()

	c.publish()
}

// snapshot must be called with mu held.
func (c *Controller) snapshot() PlaybackState {
	return PlaybackState{
		Phase:        c.machine.Current(),
		CurrentIndex: c.index,
		Total:        len(c.points),
		RevealedText: c.revealed,
		IsNarrating:  c.engine.IsNarrating(),
		VoiceEnabled: c.engine.Enabled(),
	}
}

// publish sends the current snapshot to every subscriber without blocking.
func (c *Controller) publish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.snapshot()
	for _, ch := range c.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}
