package narration

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Engine narrates one point at a time through a Speaker. Without a speaker,
// or with voice disabled, it paces points on a timer instead.
type Engine struct {
	speaker   Speaker
	rate      float64
	pitch     float64
	preferred string

	op sync.Mutex // serializes speaker calls

	mu          sync.Mutex
	enabled     bool
	fallback    time.Duration
	paused      bool
	narrating   bool
	active      *speech
	onNarrating func(bool)
}

// speech is one call to Speak. Exactly one of utterance and timer is set.
type speech struct {
	completion *Completion
	utterance  *Utterance
	timer      *pauseTimer
	stopCtx    func() bool
}

// NewEngine creates an engine. speaker may be nil.
func NewEngine(speaker Speaker, cfg Config) *Engine {
	e := &Engine{
		speaker:   speaker,
		rate:      cfg.Rate,
		pitch:     cfg.Pitch,
		preferred: cfg.Voice,
		enabled:   cfg.Enabled,
		fallback:  cfg.AnimationDuration,
	}
	if speaker != nil {
		speaker.OnVoicesChanged(e.voicesChanged)
	}
	return e
}

// Speak narrates text and returns its completion. Any narration still in
// flight is canceled first. The completion also resolves when ctx is done.
func (e *Engine) Speak(ctx context.Context, text string) *Completion {
	s := &speech{completion: newCompletion()}
	s.stopCtx = context.AfterFunc(ctx, func() { e.cancel(s, ctx.Err()) })

	e.op.Lock()
	defer e.op.Unlock()

	e.mu.Lock()
	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		s.completion.resolve(err)
		return s.completion
	}
	prev := e.active
	e.active = s
	wasNarrating := e.narrating
	e.narrating = false
	notify := e.onNarrating

	useSpeaker := e.speaker != nil && e.enabled
	if useSpeaker {
		s.utterance = e.newUtterance(s, text)
	} else {
		s.timer = newPauseTimer(e.fallback, e.paused, func() { e.finish(s, nil) })
	}
	paused := e.paused
	fallback := e.fallback
	e.mu.Unlock()

	if prev != nil {
		e.stop(prev)
		e.finish(prev, ErrCanceled)
	}
	if wasNarrating && notify != nil {
		notify(false)
	}

	if !useSpeaker {
		log.Debug("pacing point without voice", "duration", fallback)
		return s.completion
	}

	if voices := e.speaker.Voices(); len(voices) > 0 {
		s.utterance.SetVoice(SelectVoice(voices, e.preferred))
	}

	if err := e.speaker.Speak(s.utterance); err != nil {
		log.Warn("speaker refused utterance", "error", err)
		e.finish(s, &SpeakerError{Op: "speak", Err: err})
		return s.completion
	}
	if paused {
		e.speaker.Pause()
	}

	return s.completion
}

func (e *Engine) newUtterance(s *speech, text string) *Utterance {
	u := NewUtterance(text)
	u.Rate = e.rate
	u.Pitch = e.pitch
	u.OnStart = func() {
		e.mu.Lock()
		live := e.active == s
		if live {
			e.narrating = true
		}
		notify := e.onNarrating
		e.mu.Unlock()

		if live && notify != nil {
			notify(true)
		}
	}
	u.OnEnd = func() { e.finish(s, nil) }
	u.OnError = func(err error) {
		if !IsCanceled(err) {
			log.Warn("narration failed", "error", err)
		}
		e.finish(s, &SpeakerError{Op: "speak", Err: err})
	}
	return u
}

// voicesChanged assigns a voice to the in-flight utterance once the speaker
// has discovered its voices.
func (e *Engine) voicesChanged() {
	e.mu.Lock()
	s := e.active
	e.mu.Unlock()

	if s == nil || s.utterance == nil || s.utterance.Voice() != nil {
		return
	}
	if v := SelectVoice(e.speaker.Voices(), e.preferred); v != nil {
		log.Debug("voices loaded", "voice", v.Name, "lang", v.Lang)
		s.utterance.SetVoice(v)
	}
}

// finish resolves s. Only the active speech clears the narrating flag.
func (e *Engine) finish(s *speech, err error) {
	e.mu.Lock()
	changed := false
	if e.active == s {
		e.active = nil
		changed = e.narrating
		e.narrating = false
	}
	notify := e.onNarrating
	e.mu.Unlock()

	s.stopCtx()
	s.completion.resolve(err)

	if changed && notify != nil {
		notify(false)
	}
}

// cancel stops s if it is still the active speech.
func (e *Engine) cancel(s *speech, err error) {
	e.op.Lock()
	defer e.op.Unlock()

	e.mu.Lock()
	live := e.active == s
	e.mu.Unlock()

	if !live {
		return
	}
	e.stop(s)
	e.finish(s, err)
}

// stop halts the audio or timer of s without resolving it.
func (e *Engine) stop(s *speech) {
	if s.timer != nil {
		s.timer.Stop()
	} else if e.speaker != nil {
		e.speaker.Cancel()
	}
}

// Cancel stops the in-flight narration and resolves its completion.
func (e *Engine) Cancel() {
	e.mu.Lock()
	s := e.active
	e.mu.Unlock()

	if s != nil {
		e.cancel(s, ErrCanceled)
	}
}

// Pause suspends the in-flight narration and the speaker. Points started
// while paused begin suspended.
func (e *Engine) Pause() {
	e.op.Lock()
	defer e.op.Unlock()

	e.mu.Lock()
	if e.paused {
		e.mu.Unlock()
		return
	}
	e.paused = true
	s := e.active
	e.mu.Unlock()

	if s != nil && s.timer != nil {
		s.timer.Pause()
	}
	if e.speaker != nil {
		e.speaker.Pause()
	}
}

// Resume continues narration suspended by Pause.
func (e *Engine) Resume() {
	e.op.Lock()
	defer e.op.Unlock()

	e.mu.Lock()
	if !e.paused {
		e.mu.Unlock()
		return
	}
	e.paused = false
	s := e.active
	e.mu.Unlock()

	if s != nil && s.timer != nil {
		s.timer.Resume()
	}
	if e.speaker != nil {
		e.speaker.Resume()
	}
}

// SetEnabled turns the voice on or off. Turning it off cancels the
// utterance in flight, which resolves its completion at once; later points
// are paced by the fallback timer.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	e.enabled = enabled
	s := e.active
	e.mu.Unlock()

	if !enabled && s != nil && s.utterance != nil {
		e.cancel(s, ErrCanceled)
	}
}

// Enabled reports whether the voice is on.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// IsNarrating reports whether the speaker is producing audio.
func (e *Engine) IsNarrating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.narrating
}

// SetFallbackDuration sets how long a point lasts when no voice is used.
func (e *Engine) SetFallbackDuration(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallback = d
}

// OnNarratingChange registers fn to run when IsNarrating changes. fn runs
// without the engine lock held.
func (e *Engine) OnNarratingChange(fn func(bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onNarrating = fn
}
