package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// maxTextSize bounds a single synthesis request.
const maxTextSize = 5000

// Request is the input for one synthesis.
type Request struct {
	Text      string
	Model     string
	SpeakerID int
	Rate      float64 // 1.0 is the model's natural pace
}

// Error describes a failed piper run.
type Error struct {
	Op     string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := "piper " + e.Op + ": " + e.Err.Error()
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += " (" + s + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNoAudio is returned when piper exits cleanly without output.
var ErrNoAudio = errors.New("no audio produced")

// commandSynthesizer runs a fresh piper process per request.
type commandSynthesizer struct {
	binary string
}

// args builds the piper command line for req.
func args(req Request) []string {
	rate := req.Rate
	if rate <= 0 {
		rate = 1
	}
	a := []string{
		"--model", req.Model,
		"--output-raw",
		"--length-scale", strconv.FormatFloat(1/rate, 'f', 2, 64),
	}
	if req.SpeakerID > 0 {
		a = append(a, "--speaker", strconv.Itoa(req.SpeakerID))
	}
	return a
}

// Synthesize pipes req.Text through piper and returns its stdout.
func (c *commandSynthesizer) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, &Error{Op: "synthesize", Err: errors.New("text cannot be empty")}
	}
	if len(text) > maxTextSize {
		return nil, &Error{Op: "synthesize", Err: fmt.Errorf("text too long: %d bytes (max %d)", len(text), maxTextSize)}
	}

	cmd := exec.CommandContext(ctx, c.binary, args(req)...)
	// Stdin is set before start; piper reads it immediately.
	cmd.Stdin = strings.NewReader(text)
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 100 * time.Millisecond

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &Error{Op: "synthesize", Err: ctxErr}
		}
		return nil, &Error{Op: "synthesize", Stderr: stderr.String(), Err: err}
	}

	pcm := stdout.Bytes()
	if len(pcm) == 0 {
		return nil, &Error{Op: "synthesize", Stderr: stderr.String(), Err: ErrNoAudio}
	}
	// Drop a trailing odd byte so the data stays sample aligned.
	if len(pcm)%bytesPerSample != 0 {
		pcm = pcm[:len(pcm)-len(pcm)%bytesPerSample]
	}
	return pcm, nil
}
