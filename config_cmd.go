package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# style name or JSON path (default "auto")
style: "auto"
# mouse support (TUI-mode only)
mouse: false
# word-wrap at width
width: 80
# number of flashcards to generate (3-10)
cards: 5
# seconds each key point is shown when voice is off (3-10)
duration: 5
# directory the tui downloads study files to
export_dir: "."
# log debug messages
debug: false

narration:
  # speak key points while they are revealed
  enabled: true
  # auto, piper, mock or none
  engine: "auto"
  # preferred voice name, matched loosely
  voice: ""
  # speaking rate (0.1 to 10)
  rate: 0.9
  pitch: 1.0
  # delay between revealed words
  reveal_interval: "60ms"
  # pause between two key points
  settle_delay: "500ms"
  completion_message: "Explanation complete! Click Start to replay."

  piper:
    binary: "piper"
    # model: "/path/to/en_US-lessac-medium.onnx"
    # directory scanned for *.onnx voices
    # model_dir: "~/.local/share/piper"
    speaker_id: 0
    timeout: "30s"

  # silent speaker that paces points by word count
  mock:
    words_per_minute: 150
    voice_delay: "0s"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the explainer config file",
	Long:    paragraph(fmt.Sprintf("\n%s the explainer config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("explainer config\nexplainer config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Explainer", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
