package narration

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads narration configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("narration.enabled") {
		cfg.Enabled = viper.GetBool("narration.enabled")
	}
	if viper.IsSet("narration.engine") {
		cfg.Engine = viper.GetString("narration.engine")
	}
	if viper.IsSet("narration.voice") {
		cfg.Voice = viper.GetString("narration.voice")
	}
	if viper.IsSet("narration.rate") {
		cfg.Rate = viper.GetFloat64("narration.rate")
	}
	if viper.IsSet("narration.pitch") {
		cfg.Pitch = viper.GetFloat64("narration.pitch")
	}
	if viper.IsSet("narration.reveal_interval") {
		cfg.RevealInterval = viper.GetDuration("narration.reveal_interval")
	}
	if viper.IsSet("narration.settle_delay") {
		cfg.SettleDelay = viper.GetDuration("narration.settle_delay")
	}
	if viper.IsSet("narration.completion_message") {
		cfg.CompletionMessage = viper.GetString("narration.completion_message")
	}
	if viper.IsSet("duration") {
		cfg.AnimationDuration = time.Duration(viper.GetInt("duration")) * time.Second
	}

	cfg.Piper = loadPiperConfig()
	cfg.Mock = loadMockConfig()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid narration configuration: %w", err)
	}

	return cfg, nil
}

// loadPiperConfig loads Piper-specific configuration from Viper.
func loadPiperConfig() PiperConfig {
	cfg := DefaultPiperConfig()

	if viper.IsSet("narration.piper.binary") {
		cfg.Binary = viper.GetString("narration.piper.binary")
	}
	if viper.IsSet("narration.piper.model") {
		cfg.Model = viper.GetString("narration.piper.model")
	}
	if viper.IsSet("narration.piper.model_dir") {
		cfg.ModelDir = viper.GetString("narration.piper.model_dir")
	}
	if viper.IsSet("narration.piper.speaker_id") {
		cfg.SpeakerID = viper.GetInt("narration.piper.speaker_id")
	}
	if viper.IsSet("narration.piper.timeout") {
		cfg.Timeout = viper.GetDuration("narration.piper.timeout")
	}

	return cfg
}

// loadMockConfig loads mock-specific configuration from Viper.
func loadMockConfig() MockConfig {
	cfg := DefaultMockConfig()

	if viper.IsSet("narration.mock.words_per_minute") {
		cfg.WordsPerMinute = viper.GetInt("narration.mock.words_per_minute")
	}
	if viper.IsSet("narration.mock.voice_delay") {
		cfg.VoiceDelay = viper.GetDuration("narration.mock.voice_delay")
	}

	return cfg
}

// SetDefaults sets default values in Viper for narration configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("narration.enabled", defaults.Enabled)
	viper.SetDefault("narration.engine", defaults.Engine)
	viper.SetDefault("narration.rate", defaults.Rate)
	viper.SetDefault("narration.pitch", defaults.Pitch)
	viper.SetDefault("narration.reveal_interval", defaults.RevealInterval.String())
	viper.SetDefault("narration.settle_delay", defaults.SettleDelay.String())
	viper.SetDefault("narration.completion_message", defaults.CompletionMessage)

	viper.SetDefault("narration.piper.binary", defaults.Piper.Binary)
	viper.SetDefault("narration.piper.speaker_id", defaults.Piper.SpeakerID)
	viper.SetDefault("narration.piper.timeout", defaults.Piper.Timeout.String())

	viper.SetDefault("narration.mock.words_per_minute", defaults.Mock.WordsPerMinute)
	viper.SetDefault("narration.mock.voice_delay", defaults.Mock.VoiceDelay.String())
}
