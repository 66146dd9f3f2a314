package ui

import "time"

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Values the input form starts with.
	Topic            string
	Explanation      string
	FlashcardCount   int
	AnimationSeconds int

	// Directory downloads are written to.
	ExportDir string `env:"EXPLAINER_EXPORT_DIR" envDefault:"."`

	// How long the staged generation progress runs before results appear.
	GenerationDelay time.Duration `env:"EXPLAINER_GENERATION_DELAY" envDefault:"2500ms"`

	// For debugging the UI
	GlamourEnabled bool `env:"EXPLAINER_ENABLE_GLAMOUR" envDefault:"true"`
}
