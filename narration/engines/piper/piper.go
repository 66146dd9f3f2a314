// Package piper implements narration.Speaker with the Piper offline speech
// synthesizer. Each utterance runs a fresh piper process that writes raw PCM
// to stdout, which is then played through the system audio device.
package piper

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/explainer/narration"
)

// Config configures the Piper speaker.
type Config struct {
	Binary    string        // piper executable, looked up in PATH
	Model     string        // default .onnx voice model
	ModelDir  string        // directory scanned for additional models
	SpeakerID int           // speaker index for multi-speaker models
	Timeout   time.Duration // per-utterance synthesis timeout
}

// FromNarration converts the narration Piper settings.
func FromNarration(c narration.PiperConfig) Config {
	return Config(c)
}

// Synthesizer turns text into 16-bit mono PCM.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// Player plays PCM audio. Play returns once playback has started and calls
// done when the audio runs out. Stop discards the current audio without
// calling done.
type Player interface {
	Play(pcm []byte, done func()) error
	Pause()
	Resume()
	Stop()
}

// Option customizes a Speaker.
type Option func(*Speaker)

// WithSynthesizer replaces the piper subprocess.
func WithSynthesizer(s Synthesizer) Option {
	return func(sp *Speaker) { sp.synth = s }
}

// WithPlayer replaces the audio device.
func WithPlayer(p Player) Option {
	return func(sp *Speaker) { sp.player = p }
}

// Speaker implements narration.Speaker using Piper.
type Speaker struct {
	cfg    Config
	synth  Synthesizer
	player Player

	play sync.Mutex // orders player calls

	mu       sync.Mutex
	voices   []narration.Voice
	models   map[string]string // voice name to model path
	onVoices func()
	paused   bool
	closed   bool
	current  *job
}

// job is one utterance moving through synthesis and playback.
type job struct {
	utterance *narration.Utterance
	cancel    context.CancelFunc
	once      sync.Once
}

// end reports the outcome to the utterance exactly once.
func (j *job) end(err error) {
	j.once.Do(func() {
		j.cancel()
		if err != nil {
			j.utterance.NotifyError(err)
			return
		}
		j.utterance.NotifyEnd()
	})
}

// New creates a Piper speaker. It fails with narration.ErrSpeakerUnavailable
// when the piper binary cannot be found. Voice models are discovered in the
// background.
func New(cfg Config, opts ...Option) (*Speaker, error) {
	if cfg.Binary == "" {
		cfg.Binary = "piper"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	s := &Speaker{
		cfg:    cfg,
		models: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.synth == nil {
		path, err := exec.LookPath(cfg.Binary)
		if err != nil {
			return nil, fmt.Errorf("%w: piper not found: %v", narration.ErrSpeakerUnavailable, err)
		}
		s.synth = &commandSynthesizer{binary: path}
	}
	if s.player == nil {
		p, err := newDevicePlayer()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", narration.ErrSpeakerUnavailable, err)
		}
		s.player = p
	}

	go s.discover()

	return s, nil
}

// discover scans for voice models and publishes them.
func (s *Speaker) discover() {
	found, err := scanModels(s.cfg.Model, s.cfg.ModelDir)
	if err != nil {
		log.Warn("piper model scan failed", "dir", s.cfg.ModelDir, "error", err)
	}
	if len(found) == 0 {
		log.Warn("no piper voice models found", "model", s.cfg.Model, "dir", s.cfg.ModelDir)
		return
	}

	s.mu.Lock()
	for _, m := range found {
		s.voices = append(s.voices, m.Voice)
		s.models[m.Voice.Name] = m.Path
	}
	notify := s.onVoices
	s.mu.Unlock()

	log.Debug("piper voices discovered", "count", len(found))
	if notify != nil {
		notify()
	}
}

// Speak synthesizes and plays u, replacing any utterance in flight.
func (s *Speaker) Speak(u *narration.Utterance) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("piper speaker closed")
	}
	prev := s.current
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	j := &job{utterance: u, cancel: cancel}
	s.current = j
	s.mu.Unlock()

	if prev != nil {
		s.stopPlayer()
		prev.end(narration.ErrCanceled)
	}

	go s.run(ctx, j)
	return nil
}

func (s *Speaker) run(ctx context.Context, j *job) {
	u := j.utterance
	model, err := s.modelFor(u.Voice())
	if err != nil {
		s.fail(j, err)
		return
	}

	started := time.Now()
	pcm, err := s.synth.Synthesize(ctx, Request{
		Text:      u.Text,
		Model:     model,
		SpeakerID: s.cfg.SpeakerID,
		Rate:      u.Rate,
	})
	if err != nil {
		if ctx.Err() == context.Canceled {
			return
		}
		s.fail(j, err)
		return
	}
	log.Debug("piper synthesized", "bytes", len(pcm), "took", time.Since(started))

	s.play.Lock()
	s.mu.Lock()
	if s.current != j {
		s.mu.Unlock()
		s.play.Unlock()
		return
	}
	paused := s.paused
	s.mu.Unlock()

	u.NotifyStart()
	err = s.player.Play(pcm, func() { s.finished(j) })
	if err == nil && paused {
		s.player.Pause()
	}
	s.play.Unlock()

	if err != nil {
		s.fail(j, err)
	}
}

func (s *Speaker) stopPlayer() {
	s.play.Lock()
	defer s.play.Unlock()
	s.player.Stop()
}

func (s *Speaker) finished(j *job) {
	s.mu.Lock()
	if s.current == j {
		s.current = nil
	}
	s.mu.Unlock()
	j.end(nil)
}

func (s *Speaker) fail(j *job, err error) {
	s.mu.Lock()
	if s.current == j {
		s.current = nil
	}
	s.mu.Unlock()
	j.end(err)
}

// modelFor resolves the model file for a voice.
func (s *Speaker) modelFor(v *narration.Voice) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v != nil {
		if path, ok := s.models[v.Name]; ok {
			return path, nil
		}
	}
	if s.cfg.Model != "" {
		return s.cfg.Model, nil
	}
	return "", narration.ErrNoVoices
}

// Cancel stops the utterance in flight.
func (s *Speaker) Cancel() {
	s.mu.Lock()
	j := s.current
	s.current = nil
	s.mu.Unlock()

	if j == nil {
		return
	}
	s.stopPlayer()
	j.end(narration.ErrCanceled)
}

// Pause suspends playback. An utterance still being synthesized starts
// paused.
func (s *Speaker) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()

	s.play.Lock()
	defer s.play.Unlock()
	s.player.Pause()
}

// Resume continues paused playback.
func (s *Speaker) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()

	s.play.Lock()
	defer s.play.Unlock()
	s.player.Resume()
}

// Voices returns the discovered voices.
func (s *Speaker) Voices() []narration.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]narration.Voice(nil), s.voices...)
}

// OnVoicesChanged registers fn to run once models are discovered.
func (s *Speaker) OnVoicesChanged(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onVoices = fn
}

// Close cancels any utterance and rejects further ones.
func (s *Speaker) Close() error {
	s.Cancel()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

var _ narration.Speaker = (*Speaker)(nil)
