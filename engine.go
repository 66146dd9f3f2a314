package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/explainer/narration"
	"github.com/dgnsrekt/explainer/narration/engines/mock"
	"github.com/dgnsrekt/explainer/narration/engines/piper"
)

// newSpeaker builds the speaker for the configured engine. A nil speaker
// means key points are paced by timer only. The closer is never nil.
func newSpeaker(cfg narration.Config) (narration.Speaker, func(), error) {
	noop := func() {}

	switch cfg.Engine {
	case narration.EngineNone:
		return nil, noop, nil

	case narration.EngineMock:
		s := mock.New(mock.Config{
			WordsPerMinute: cfg.Mock.WordsPerMinute,
			VoiceDelay:     cfg.Mock.VoiceDelay,
		})
		return s, noop, nil

	case narration.EnginePiper:
		s, err := piper.New(piper.FromNarration(cfg.Piper))
		if err != nil {
			return nil, noop, fmt.Errorf("unable to start piper: %w", err)
		}
		return s, func() { _ = s.Close() }, nil

	default:
		s, err := piper.New(piper.FromNarration(cfg.Piper))
		if err != nil {
			log.Info("narration falls back to timed reveal", "reason", err)
			return nil, noop, nil
		}
		log.Debug("using piper for narration", "binary", cfg.Piper.Binary)
		return s, func() { _ = s.Close() }, nil
	}
}
