//go:build !nocgo

package piper

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Piper voices produce 22.05kHz 16-bit mono audio.
const (
	sampleRate     = 22050
	channels       = 1
	bytesPerSample = 2
)

var (
	audioContext     *oto.Context
	audioContextErr  error
	audioContextOnce sync.Once
)

// sharedContext returns the process-wide audio context. Oto allows only one.
func sharedContext() (*oto.Context, error) {
	audioContextOnce.Do(func() {
		opts := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		if runtime.GOOS == "darwin" {
			opts.BufferSize = 100 * time.Millisecond
		}

		ctx, ready, err := oto.NewContext(opts)
		if err != nil {
			audioContextErr = fmt.Errorf("failed to create audio context: %w", err)
			return
		}
		<-ready
		audioContext = ctx
	})
	return audioContext, audioContextErr
}

// devicePlayer plays PCM on the system audio device.
type devicePlayer struct {
	ctx *oto.Context

	mu      sync.Mutex
	current *otoPlayback
}

type otoPlayback struct {
	player *oto.Player
	paused bool
	stop   chan struct{}
}

func newDevicePlayer() (*devicePlayer, error) {
	ctx, err := sharedContext()
	if err != nil {
		return nil, err
	}
	return &devicePlayer{ctx: ctx}, nil
}

func (p *devicePlayer) Play(pcm []byte, done func()) error {
	p.Stop()

	pb := &otoPlayback{
		player: p.ctx.NewPlayer(bytes.NewReader(pcm)),
		stop:   make(chan struct{}),
	}
	p.mu.Lock()
	p.current = pb
	p.mu.Unlock()

	pb.player.Play()
	go p.monitor(pb, done)
	return nil
}

// monitor waits for the player to drain and reports completion.
func (p *devicePlayer) monitor(pb *otoPlayback, done func()) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-pb.stop:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		if p.current != pb {
			p.mu.Unlock()
			return
		}
		if pb.paused || pb.player.IsPlaying() {
			p.mu.Unlock()
			continue
		}
		p.current = nil
		p.mu.Unlock()

		_ = pb.player.Close()
		done()
		return
	}
}

func (p *devicePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && !p.current.paused {
		p.current.paused = true
		p.current.player.Pause()
	}
}

func (p *devicePlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.current.paused {
		p.current.paused = false
		p.current.player.Play()
	}
}

func (p *devicePlayer) Stop() {
	p.mu.Lock()
	pb := p.current
	p.current = nil
	p.mu.Unlock()

	if pb == nil {
		return
	}
	close(pb.stop)
	pb.player.Pause()
	_ = pb.player.Close()
}
