package piper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/explainer/narration"
)

// fakeSynth returns fixed audio, optionally blocking until released.
type fakeSynth struct {
	mu       sync.Mutex
	requests []Request
	release  chan struct{}
	err      error
}

func (f *fakeSynth) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	release := f.release
	err := f.err
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return []byte{0, 0, 0, 0}, nil
}

func (f *fakeSynth) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// fakePlayer finishes playback only when told to.
type fakePlayer struct {
	mu      sync.Mutex
	plays   int
	paused  bool
	stopped int
	done    func()
}

func (p *fakePlayer) Play(pcm []byte, done func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
	p.done = done
	return nil
}

func (p *fakePlayer) Pause()  { p.mu.Lock(); p.paused = true; p.mu.Unlock() }
func (p *fakePlayer) Resume() { p.mu.Lock(); p.paused = false; p.mu.Unlock() }

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped++
	p.done = nil
}

func (p *fakePlayer) finish() bool {
	p.mu.Lock()
	done := p.done
	p.done = nil
	p.mu.Unlock()
	if done == nil {
		return false
	}
	done()
	return true
}

func (p *fakePlayer) state() (plays int, paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays, p.paused
}

type outcome struct {
	started chan struct{}
	result  chan error
}

func track(u *narration.Utterance) outcome {
	o := outcome{started: make(chan struct{}, 1), result: make(chan error, 1)}
	u.OnStart = func() { o.started <- struct{}{} }
	u.OnEnd = func() { o.result <- nil }
	u.OnError = func(err error) { o.result <- err }
	return o
}

func newTestSpeaker(t *testing.T, cfg Config, synth *fakeSynth, player *fakePlayer) *Speaker {
	t.Helper()
	s, err := New(cfg, WithSynthesizer(synth), WithPlayer(player))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestSpeakerPlaysSynthesizedAudio(t *testing.T) {
	synth := &fakeSynth{}
	player := &fakePlayer{}
	s := newTestSpeaker(t, Config{Model: "voice.onnx", SpeakerID: 2}, synth, player)

	u := narration.NewUtterance("Hello there")
	o := track(u)
	if err := s.Speak(u); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	select {
	case <-o.started:
	case <-time.After(time.Second):
		t.Fatal("Expected OnStart")
	}
	waitFor(t, "playback", func() bool { return player.finish() })

	if err := <-o.result; err != nil {
		t.Errorf("Expected clean end, got %v", err)
	}

	reqs := synth.Requests()
	if len(reqs) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Model != "voice.onnx" || reqs[0].SpeakerID != 2 || reqs[0].Rate != narration.DefaultRate {
		t.Errorf("Unexpected request %+v", reqs[0])
	}
}

func TestSpeakerCancelDuringSynthesis(t *testing.T) {
	synth := &fakeSynth{release: make(chan struct{})}
	player := &fakePlayer{}
	s := newTestSpeaker(t, Config{Model: "voice.onnx"}, synth, player)

	u := narration.NewUtterance("slow")
	o := track(u)
	_ = s.Speak(u)
	waitFor(t, "synthesis", func() bool { return len(synth.Requests()) == 1 })

	s.Cancel()
	if err := <-o.result; !errors.Is(err, narration.ErrCanceled) {
		t.Errorf("Expected ErrCanceled, got %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if plays, _ := player.state(); plays != 0 {
		t.Errorf("Expected no playback after cancel, got %d", plays)
	}
	select {
	case <-o.started:
		t.Error("Expected OnStart not to fire")
	default:
	}
}

func TestSpeakerNewUtteranceReplacesPrevious(t *testing.T) {
	synth := &fakeSynth{}
	player := &fakePlayer{}
	s := newTestSpeaker(t, Config{Model: "voice.onnx"}, synth, player)

	first := narration.NewUtterance("first")
	o1 := track(first)
	_ = s.Speak(first)
	<-o1.started

	second := narration.NewUtterance("second")
	o2 := track(second)
	_ = s.Speak(second)

	if err := <-o1.result; !errors.Is(err, narration.ErrCanceled) {
		t.Errorf("Expected first utterance canceled, got %v", err)
	}
	<-o2.started
	waitFor(t, "playback", func() bool { return player.finish() })
	if err := <-o2.result; err != nil {
		t.Errorf("Expected second utterance to end cleanly, got %v", err)
	}
}

func TestSpeakerSynthesisFailure(t *testing.T) {
	want := &Error{Op: "synthesize", Err: errors.New("boom"), Stderr: "bad model"}
	synth := &fakeSynth{err: want}
	s := newTestSpeaker(t, Config{Model: "voice.onnx"}, synth, &fakePlayer{})

	u := narration.NewUtterance("text")
	o := track(u)
	_ = s.Speak(u)

	err := <-o.result
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if pe.Error() != "piper synthesize: boom (bad model)" {
		t.Errorf("Unexpected message %q", pe.Error())
	}
}

func TestSpeakerWithoutModel(t *testing.T) {
	s := newTestSpeaker(t, Config{}, &fakeSynth{}, &fakePlayer{})

	u := narration.NewUtterance("text")
	o := track(u)
	_ = s.Speak(u)

	if err := <-o.result; !errors.Is(err, narration.ErrNoVoices) {
		t.Errorf("Expected ErrNoVoices, got %v", err)
	}
}

func TestSpeakerStartsPausedWhilePaused(t *testing.T) {
	synth := &fakeSynth{}
	player := &fakePlayer{}
	s := newTestSpeaker(t, Config{Model: "voice.onnx"}, synth, player)

	s.Pause()
	u := narration.NewUtterance("text")
	o := track(u)
	_ = s.Speak(u)
	<-o.started

	if _, paused := player.state(); !paused {
		t.Error("Expected playback to start paused")
	}
	s.Resume()
	if _, paused := player.state(); paused {
		t.Error("Expected playback to resume")
	}
}

func TestSpeakerDiscoversVoices(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"en_US-amy-medium.onnx", "de_DE-thorsten-low.onnx", "en_US-amy-medium.onnx.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s, err := New(Config{ModelDir: dir}, WithSynthesizer(&fakeSynth{}), WithPlayer(&fakePlayer{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	waitFor(t, "voices", func() bool { return len(s.Voices()) == 2 })

	voices := s.Voices()
	if voices[0].Name != "de_DE-thorsten-low" || voices[0].Lang != "de-DE" {
		t.Errorf("Unexpected first voice %+v", voices[0])
	}
	if voices[1].Name != "en_US-amy-medium" || voices[1].Lang != "en-US" {
		t.Errorf("Unexpected second voice %+v", voices[1])
	}

	path, err := s.modelFor(&voices[1])
	if err != nil || path != filepath.Join(dir, "en_US-amy-medium.onnx") {
		t.Errorf("Expected model path for voice, got %q, %v", path, err)
	}
}

func TestNewMissingBinary(t *testing.T) {
	_, err := New(Config{Binary: filepath.Join(t.TempDir(), "no-such-piper")}, WithPlayer(&fakePlayer{}))
	if !errors.Is(err, narration.ErrSpeakerUnavailable) {
		t.Errorf("Expected ErrSpeakerUnavailable, got %v", err)
	}
}

func TestVoiceFromModel(t *testing.T) {
	tests := []struct {
		path string
		want narration.Voice
	}{
		{"/models/en_US-lessac-medium.onnx", narration.Voice{Name: "en_US-lessac-medium", Lang: "en-US"}},
		{"en_GB-alba-medium.onnx", narration.Voice{Name: "en_GB-alba-medium", Lang: "en-GB"}},
		{"fr-voice.onnx", narration.Voice{Name: "fr-voice", Lang: "fr"}},
		{"custom.onnx", narration.Voice{Name: "custom", Lang: ""}},
	}

	for _, tt := range tests {
		if got := voiceFromModel(tt.path); got != tt.want {
			t.Errorf("voiceFromModel(%q) = %+v, want %+v", tt.path, got, tt.want)
		}
	}
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "default rate",
			req:  Request{Model: "m.onnx", Rate: 1},
			want: []string{"--model", "m.onnx", "--output-raw", "--length-scale", "1.00"},
		},
		{
			name: "slow with speaker",
			req:  Request{Model: "m.onnx", Rate: 0.5, SpeakerID: 3},
			want: []string{"--model", "m.onnx", "--output-raw", "--length-scale", "2.00", "--speaker", "3"},
		},
		{
			name: "zero rate",
			req:  Request{Model: "m.onnx"},
			want: []string{"--model", "m.onnx", "--output-raw", "--length-scale", "1.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := args(tt.req)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}

// writeScript creates an executable shell script standing in for piper.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "piper")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommandSynthesizer(t *testing.T) {
	t.Run("returns stdout", func(t *testing.T) {
		c := &commandSynthesizer{binary: writeScript(t, "cat")}
		pcm, err := c.Synthesize(context.Background(), Request{Text: "abcde", Model: "m", Rate: 1})
		if err != nil {
			t.Fatalf("Synthesize failed: %v", err)
		}
		if string(pcm) != "abcd" {
			t.Errorf("Expected sample aligned output %q, got %q", "abcd", pcm)
		}
	})

	t.Run("reports stderr", func(t *testing.T) {
		c := &commandSynthesizer{binary: writeScript(t, "echo 'model missing' >&2; exit 1")}
		_, err := c.Synthesize(context.Background(), Request{Text: "hi", Model: "m", Rate: 1})
		var pe *Error
		if !errors.As(err, &pe) || pe.Stderr != "model missing\n" {
			t.Errorf("Expected piper error with stderr, got %v", err)
		}
	})

	t.Run("empty output", func(t *testing.T) {
		c := &commandSynthesizer{binary: writeScript(t, "cat >/dev/null")}
		_, err := c.Synthesize(context.Background(), Request{Text: "hi", Model: "m", Rate: 1})
		if !errors.Is(err, ErrNoAudio) {
			t.Errorf("Expected ErrNoAudio, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		c := &commandSynthesizer{binary: writeScript(t, "exec sleep 5")}
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := c.Synthesize(ctx, Request{Text: "hi", Model: "m", Rate: 1})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected deadline exceeded, got %v", err)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		c := &commandSynthesizer{binary: "unused"}
		if _, err := c.Synthesize(context.Background(), Request{Text: "  "}); err == nil {
			t.Error("Expected error for empty text")
		}
	})
}
