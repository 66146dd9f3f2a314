// Package mock provides an in-process Speaker that produces no audio. It
// paces utterances by an estimated speaking time and is used for tests and
// for the mock narration engine.
package mock

import (
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/explainer/narration"
)

// Config tunes the mock speaker.
type Config struct {
	WordsPerMinute int           // speaking pace used to estimate durations
	VoiceDelay     time.Duration // how long until voices are reported
}

// DefaultConfig returns the default mock speaker configuration.
func DefaultConfig() Config {
	return Config{
		WordsPerMinute: 150,
		VoiceDelay:     0,
	}
}

// DefaultVoices are the voices the mock speaker reports.
var DefaultVoices = []narration.Voice{
	{Name: "Mock Voice", Lang: "de-DE"},
	{Name: "Mock English", Lang: "en-GB"},
	{Name: "Mock English Female", Lang: "en-US"},
}

// Record describes a finished utterance.
type Record struct {
	Text  string
	Voice string // empty when no voice was assigned
	Rate  float64
	Pitch float64
}

// Speaker implements narration.Speaker without audio output.
type Speaker struct {
	mu sync.Mutex

	wpm      int
	duration time.Duration // fixed duration override

	voices      []narration.Voice
	voicesReady bool
	onVoices    func()

	shouldFail   bool
	failureError error
	asyncError   error

	callCount int
	paused    bool
	current   *playback
	finished  []Record
}

type playback struct {
	u         *narration.Utterance
	timer     *time.Timer
	remaining time.Duration
	started   time.Time
	done      bool
}

// New creates a mock speaker. With a VoiceDelay the voice list stays empty
// until the delay has passed.
func New(cfg Config) *Speaker {
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = DefaultConfig().WordsPerMinute
	}

	s := &Speaker{
		wpm:    cfg.WordsPerMinute,
		voices: DefaultVoices,
	}

	if cfg.VoiceDelay > 0 {
		time.AfterFunc(cfg.VoiceDelay, s.loadVoices)
	} else {
		s.voicesReady = true
	}

	return s
}

func (s *Speaker) loadVoices() {
	s.mu.Lock()
	s.voicesReady = true
	fn := s.onVoices
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Speak starts a silent utterance lasting the estimated speaking time.
// OnStart runs before Speak returns.
func (s *Speaker) Speak(u *narration.Utterance) error {
	s.mu.Lock()
	s.callCount++

	if s.shouldFail {
		err := s.failureError
		s.mu.Unlock()
		return err
	}

	prev := s.current
	p := &playback{u: u, remaining: s.estimateDuration(u.Text, u.Rate)}
	s.current = p
	asyncErr := s.asyncError
	s.mu.Unlock()

	if prev != nil {
		s.end(prev, narration.ErrCanceled)
	}

	u.NotifyStart()

	if asyncErr != nil {
		go s.end(p, asyncErr)
		return nil
	}

	s.mu.Lock()
	if !p.done && !s.paused {
		p.started = time.Now()
		p.timer = time.AfterFunc(p.remaining, func() { s.end(p, nil) })
	}
	s.mu.Unlock()

	return nil
}

func (s *Speaker) end(p *playback, err error) {
	s.mu.Lock()
	if p.done {
		s.mu.Unlock()
		return
	}
	p.done = true
	if p.timer != nil {
		p.timer.Stop()
	}
	if s.current == p {
		s.current = nil
	}
	rec := Record{Text: p.u.Text, Rate: p.u.Rate, Pitch: p.u.Pitch}
	if v := p.u.Voice(); v != nil {
		rec.Voice = v.Name
	}
	if err == nil {
		s.finished = append(s.finished, rec)
	}
	s.mu.Unlock()

	if err != nil {
		p.u.NotifyError(err)
		return
	}
	p.u.NotifyEnd()
}

// Cancel stops the current utterance; its OnError hook receives
// narration.ErrCanceled.
func (s *Speaker) Cancel() {
	s.mu.Lock()
	p := s.current
	s.mu.Unlock()

	if p != nil {
		s.end(p, narration.ErrCanceled)
	}
}

// Pause suspends the current utterance.
func (s *Speaker) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return
	}
	s.paused = true

	if p := s.current; p != nil && p.timer != nil {
		if p.timer.Stop() {
			p.remaining -= time.Since(p.started)
		}
		p.timer = nil
	}
}

// Resume continues a suspended utterance.
func (s *Speaker) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.paused {
		return
	}
	s.paused = false

	if p := s.current; p != nil && !p.done && p.timer == nil {
		p.started = time.Now()
		p.timer = time.AfterFunc(max(p.remaining, 0), func() { s.end(p, nil) })
	}
}

// Voices returns the voice list, empty until voices are loaded.
func (s *Speaker) Voices() []narration.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.voicesReady {
		return nil
	}
	return append([]narration.Voice(nil), s.voices...)
}

// OnVoicesChanged registers fn to run once voices are loaded.
func (s *Speaker) OnVoicesChanged(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onVoices = fn
}

// Test control methods

// SetVoices replaces the voice list and notifies the registered listener.
func (s *Speaker) SetVoices(voices []narration.Voice) {
	s.mu.Lock()
	s.voices = voices
	s.voicesReady = true
	fn := s.onVoices
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// SetDuration makes every utterance last d regardless of its text.
func (s *Speaker) SetDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = d
}

// SetFailure makes Speak fail with err.
func (s *Speaker) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldFail = true
	s.failureError = err
}

// SetAsyncFailure makes every utterance fail with err through its OnError
// hook right after it starts.
func (s *Speaker) SetAsyncFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asyncError = err
}

// ClearFailure resets the speaker to normal operation.
func (s *Speaker) ClearFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldFail = false
	s.failureError = nil
	s.asyncError = nil
}

// CallCount returns the number of Speak calls.
func (s *Speaker) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount
}

// Finished returns the utterances that ran to completion, in order.
func (s *Speaker) Finished() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.finished...)
}

// Speaking reports whether an utterance is in flight.
func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// estimateDuration estimates speaking time from the word count and rate.
func (s *Speaker) estimateDuration(text string, rate float64) time.Duration {
	if s.duration > 0 {
		return s.duration
	}
	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}
	if rate <= 0 {
		rate = 1
	}
	seconds := float64(words) * 60.0 / (float64(s.wpm) * rate)
	return time.Duration(seconds * float64(time.Second))
}

var _ narration.Speaker = (*Speaker)(nil)
