package narration

import (
	"fmt"
	"strings"
	"time"
)

// Engine names accepted in Config.Engine.
const (
	EngineAuto  = "auto"
	EnginePiper = "piper"
	EngineMock  = "mock"
	EngineNone  = "none"
)

// DefaultCompletionMessage is revealed after the last point.
const DefaultCompletionMessage = "Explanation complete! Click Start to replay."

// Config contains all narration configuration options.
type Config struct {
	Enabled bool   `yaml:"enabled" env:"EXPLAINER_NARRATION_ENABLED" envDefault:"true"`
	Engine  string `yaml:"engine" env:"EXPLAINER_NARRATION_ENGINE" envDefault:"auto"`
	Voice   string `yaml:"voice" env:"EXPLAINER_NARRATION_VOICE"`

	Rate  float64 `yaml:"rate" env:"EXPLAINER_NARRATION_RATE" envDefault:"0.9"`
	Pitch float64 `yaml:"pitch" env:"EXPLAINER_NARRATION_PITCH" envDefault:"1.0"`

	// Pacing
	RevealInterval    time.Duration `yaml:"reveal_interval" env:"EXPLAINER_NARRATION_REVEAL_INTERVAL" envDefault:"60ms"`
	SettleDelay       time.Duration `yaml:"settle_delay" env:"EXPLAINER_NARRATION_SETTLE_DELAY" envDefault:"500ms"`
	AnimationDuration time.Duration `yaml:"-"`

	CompletionMessage string `yaml:"completion_message" env:"EXPLAINER_NARRATION_COMPLETION_MESSAGE"`

	Piper PiperConfig `yaml:"piper"`
	Mock  MockConfig  `yaml:"mock"`
}

// PiperConfig contains Piper speaker settings.
type PiperConfig struct {
	Binary    string        `yaml:"binary" env:"EXPLAINER_PIPER_BINARY" envDefault:"piper"`
	Model     string        `yaml:"model" env:"EXPLAINER_PIPER_MODEL"`
	ModelDir  string        `yaml:"model_dir" env:"EXPLAINER_PIPER_MODEL_DIR"`
	SpeakerID int           `yaml:"speaker_id" env:"EXPLAINER_PIPER_SPEAKER_ID" envDefault:"0"`
	Timeout   time.Duration `yaml:"timeout" env:"EXPLAINER_PIPER_TIMEOUT" envDefault:"30s"`
}

// MockConfig contains settings for the silent mock speaker.
type MockConfig struct {
	WordsPerMinute int           `yaml:"words_per_minute" env:"EXPLAINER_MOCK_WORDS_PER_MINUTE" envDefault:"150"`
	VoiceDelay     time.Duration `yaml:"voice_delay" env:"EXPLAINER_MOCK_VOICE_DELAY" envDefault:"0s"`
}

// ControllerConfig holds the pacing used by the playback controller.
type ControllerConfig struct {
	RevealInterval    time.Duration // delay between revealed words
	SettleDelay       time.Duration // pause between two points
	CompletionMessage string        // revealed after the last point
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		Engine:            EngineAuto,
		Rate:              DefaultRate,
		Pitch:             DefaultPitch,
		RevealInterval:    60 * time.Millisecond,
		SettleDelay:       500 * time.Millisecond,
		AnimationDuration: 5 * time.Second,
		CompletionMessage: DefaultCompletionMessage,
		Piper:             DefaultPiperConfig(),
		Mock:              DefaultMockConfig(),
	}
}

// DefaultPiperConfig returns default Piper configuration.
func DefaultPiperConfig() PiperConfig {
	return PiperConfig{
		Binary:  "piper",
		Timeout: 30 * time.Second,
	}
}

// DefaultMockConfig returns default mock configuration.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		WordsPerMinute: 150,
	}
}

// DefaultControllerConfig returns the pacing of DefaultConfig.
func DefaultControllerConfig() ControllerConfig {
	return DefaultConfig().ToControllerConfig()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	valid := []string{EngineAuto, EnginePiper, EngineMock, EngineNone}
	engineValid := false
	for _, e := range valid {
		if strings.EqualFold(c.Engine, e) {
			engineValid = true
			c.Engine = e
			break
		}
	}
	if !engineValid {
		return fmt.Errorf("%w: engine %q must be one of %v", ErrInvalidConfig, c.Engine, valid)
	}

	if c.Rate < 0.1 || c.Rate > 10 {
		return fmt.Errorf("%w: rate must be between 0.1 and 10, got %v", ErrInvalidConfig, c.Rate)
	}
	if c.Pitch < 0 || c.Pitch > 2 {
		return fmt.Errorf("%w: pitch must be between 0 and 2, got %v", ErrInvalidConfig, c.Pitch)
	}
	if c.RevealInterval <= 0 {
		return fmt.Errorf("%w: reveal_interval must be positive, got %v", ErrInvalidConfig, c.RevealInterval)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("%w: settle_delay cannot be negative, got %v", ErrInvalidConfig, c.SettleDelay)
	}
	if c.CompletionMessage == "" {
		c.CompletionMessage = DefaultCompletionMessage
	}

	switch c.Engine {
	case EnginePiper:
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
	case EngineMock:
		if err := c.Mock.Validate(); err != nil {
			return fmt.Errorf("mock config: %w", err)
		}
	}

	return nil
}

// Validate checks if the Piper configuration is valid.
func (c *PiperConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("%w: piper binary cannot be empty", ErrInvalidConfig)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("%w: timeout must be at least 1 second, got %v", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// Validate checks if the mock configuration is valid.
func (c *MockConfig) Validate() error {
	if c.WordsPerMinute < 50 || c.WordsPerMinute > 500 {
		return fmt.Errorf("%w: words_per_minute must be between 50 and 500, got %d", ErrInvalidConfig, c.WordsPerMinute)
	}
	if c.VoiceDelay < 0 {
		return fmt.Errorf("%w: voice_delay cannot be negative, got %v", ErrInvalidConfig, c.VoiceDelay)
	}
	return nil
}

// ToControllerConfig extracts the controller pacing.
func (c Config) ToControllerConfig() ControllerConfig {
	return ControllerConfig{
		RevealInterval:    c.RevealInterval,
		SettleDelay:       c.SettleDelay,
		CompletionMessage: c.CompletionMessage,
	}
}
