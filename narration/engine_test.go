package narration_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/explainer/narration"
	"github.com/dgnsrekt/explainer/narration/engines/mock"
)

func engineConfig(fallback time.Duration) narration.Config {
	cfg := narration.DefaultConfig()
	cfg.AnimationDuration = fallback
	return cfg
}

func waitDone(t *testing.T, c *narration.Completion, within time.Duration) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(within):
		t.Fatalf("Expected completion within %v", within)
	}
}

func TestEngineWithoutSpeakerUsesTimer(t *testing.T) {
	e := narration.NewEngine(nil, engineConfig(20*time.Millisecond))

	start := time.Now()
	c := e.Speak(context.Background(), "no audio here")
	waitDone(t, c, time.Second)

	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Expected completion after the fallback duration, got %v", elapsed)
	}
	if c.Err() != nil {
		t.Errorf("Expected clean completion, got %v", c.Err())
	}
}

func TestEngineSpeaksThroughSpeaker(t *testing.T) {
	s := mock.New(mock.DefaultConfig())
	s.SetDuration(10 * time.Millisecond)
	e := narration.NewEngine(s, engineConfig(time.Hour))

	narrating := make(chan bool, 4)
	e.OnNarratingChange(func(v bool) { narrating <- v })

	c := e.Speak(context.Background(), "spoken text")
	waitDone(t, c, time.Second)

	if got := <-narrating; !got {
		t.Error("Expected narrating to turn on first")
	}
	if got := <-narrating; got {
		t.Error("Expected narrating to turn off at the end")
	}
	if e.IsNarrating() {
		t.Error("Expected engine to be idle")
	}

	finished := s.Finished()
	if len(finished) != 1 {
		t.Fatalf("Expected 1 finished utterance, got %d", len(finished))
	}
	if finished[0].Voice != "Mock English Female" {
		t.Errorf("Expected English female voice, got %q", finished[0].Voice)
	}
	if finished[0].Rate != 0.9 || finished[0].Pitch != 1.0 {
		t.Errorf("Expected rate 0.9 and pitch 1.0, got %v and %v", finished[0].Rate, finished[0].Pitch)
	}
}

func TestEngineAssignsVoiceWhenVoicesArrive(t *testing.T) {
	s := mock.New(mock.Config{WordsPerMinute: 150, VoiceDelay: time.Hour})
	s.SetDuration(40 * time.Millisecond)
	e := narration.NewEngine(s, engineConfig(time.Hour))

	c := e.Speak(context.Background(), "waiting for voices")
	s.SetVoices([]narration.Voice{{Name: "Late Voice", Lang: "en-AU"}})
	waitDone(t, c, time.Second)

	finished := s.Finished()
	if len(finished) != 1 || finished[0].Voice != "Late Voice" {
		t.Errorf("Expected late voice to be assigned, got %+v", finished)
	}
}

func TestEngineNewSpeakCancelsPrevious(t *testing.T) {
	s := mock.New(mock.DefaultConfig())
	s.SetDuration(time.Hour)
	e := narration.NewEngine(s, engineConfig(time.Hour))

	first := e.Speak(context.Background(), "first")
	s.SetDuration(5 * time.Millisecond)
	second := e.Speak(context.Background(), "second")

	waitDone(t, first, time.Second)
	if !errors.Is(first.Err(), narration.ErrCanceled) {
		t.Errorf("Expected first to be canceled, got %v", first.Err())
	}
	waitDone(t, second, time.Second)
	if second.Err() != nil {
		t.Errorf("Expected second to finish cleanly, got %v", second.Err())
	}
}

func TestEngineSpeakerFailureResolves(t *testing.T) {
	s := mock.New(mock.DefaultConfig())
	s.SetFailure(errors.New("device busy"))
	e := narration.NewEngine(s, engineConfig(time.Hour))

	c := e.Speak(context.Background(), "x")
	waitDone(t, c, time.Second)

	var serr *narration.SpeakerError
	if !errors.As(c.Err(), &serr) || serr.Op != "speak" {
		t.Errorf("Expected SpeakerError for speak, got %v", c.Err())
	}
}

func TestEngineAsyncErrorResolves(t *testing.T) {
	s := mock.New(mock.DefaultConfig())
	s.SetAsyncFailure(narration.ErrSpeakFailed)
	e := narration.NewEngine(s, engineConfig(time.Hour))

	c := e.Speak(context.Background(), "x")
	waitDone(t, c, time.Second)

	if !errors.Is(c.Err(), narration.ErrSpeakFailed) {
		t.Errorf("Expected ErrSpeakFailed, got %v", c.Err())
	}
}

func TestEngineContextCancel(t *testing.T) {
	s := mock.New(mock.DefaultConfig())
	s.SetDuration(time.Hour)
	e := narration.NewEngine(s, engineConfig(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	c := e.Speak(ctx, "interrupted")
	cancel()
	waitDone(t, c, time.Second)

	if s.Speaking() {
		t.Error("Expected speaker to be canceled with the context")
	}

	done := e.Speak(ctx, "never spoken")
	waitDone(t, done, 10*time.Millisecond)
	if s.CallCount() != 1 {
		t.Errorf("Expected no speak call for a canceled context, got %d calls", s.CallCount())
	}
}

func TestEngineDisableCancelsInFlight(t *testing.T) {
	s := mock.New(mock.DefaultConfig())
	s.SetDuration(time.Hour)
	e := narration.NewEngine(s, engineConfig(15*time.Millisecond))

	c := e.Speak(context.Background(), "long")
	e.SetEnabled(false)
	waitDone(t, c, 100*time.Millisecond)

	if e.Enabled() {
		t.Error("Expected voice to be disabled")
	}

	next := e.Speak(context.Background(), "timed")
	waitDone(t, next, time.Second)
	if s.CallCount() != 1 {
		t.Errorf("Expected timer pacing after disabling voice, got %d speak calls", s.CallCount())
	}
}

func TestEnginePauseResumeTimer(t *testing.T) {
	e := narration.NewEngine(nil, engineConfig(20*time.Millisecond))

	e.Pause()
	c := e.Speak(context.Background(), "starts paused")

	select {
	case <-c.Done():
		t.Fatal("Expected paused engine to hold the point")
	case <-time.After(50 * time.Millisecond):
	}

	e.Resume()
	waitDone(t, c, time.Second)
}

func TestEnginePauseResumeSpeaker(t *testing.T) {
	s := mock.New(mock.DefaultConfig())
	s.SetDuration(20 * time.Millisecond)
	e := narration.NewEngine(s, engineConfig(time.Hour))

	c := e.Speak(context.Background(), "spoken")
	e.Pause()

	select {
	case <-c.Done():
		t.Fatal("Expected paused speech to hold")
	case <-time.After(50 * time.Millisecond):
	}

	e.Resume()
	waitDone(t, c, time.Second)
}

func TestEngineCancel(t *testing.T) {
	e := narration.NewEngine(nil, engineConfig(time.Hour))

	c := e.Speak(context.Background(), "x")
	e.Cancel()
	waitDone(t, c, 100*time.Millisecond)

	// Nothing active.
	e.Cancel()
	e.Pause()
	e.Resume()
}
