// Package main provides the entry point for the explainer CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/explainer/internal/cache"
	"github.com/dgnsrekt/explainer/narration"
	"github.com/dgnsrekt/explainer/study"
	"github.com/dgnsrekt/explainer/ui"
	"github.com/dgnsrekt/explainer/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// sessionCacheCapacity bounds the compressed content kept between
// generations of one TUI session.
const sessionCacheCapacity = 8 << 20

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	topic      string
	cards      int
	duration   int
	tui        bool
	watch      bool
	style      string
	width      uint
	mouse      bool
	engine     string
	voice      string
	noVoice    bool
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "explainer [EXPLANATION|-]",
		Short: "Turn an explanation into a narrated lesson, flashcards and a quiz",
		Long: paragraph(
			fmt.Sprintf("\nTurn an explanation into a %s, flashcards and a quiz.", keyword("narrated lesson")),
		),
		Example: paragraph("explainer\nexplainer --topic Photosynthesis notes.md\ncat notes.txt | explainer -t Photosynthesis --tui"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = utils.ExpandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	tui = viper.GetBool("tui")
	cards = viper.GetInt("cards")
	duration = viper.GetInt("duration")
	debug = viper.GetBool("debug")

	if debug {
		log.SetLevel(log.DebugLevel)
	}

	// --no-voice wins over the config file
	if noVoice {
		viper.Set("narration.enabled", false)
	}

	if watch && tui {
		return errors.New("cannot use both watch and tui")
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = "notty"
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// rawInput assembles the generation input from the flags and an
// explanation text.
func rawInput(path, explanation string) study.RawInput {
	t := topic
	if t == "" && path != "" {
		t = topicFromPath(path)
	}
	return study.RawInput{
		Topic:                    strings.TrimSpace(t),
		Explanation:              explanation,
		FlashcardCount:           cards,
		AnimationDurationSeconds: duration,
	}
}

// topicFromPath derives a readable topic from a file name, e.g.
// "cell_biology.md" becomes "cell biology".
func topicFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

// readExplanation reads an explanation and strips markdown from it when the
// source is a markdown file.
func readExplanation(r io.Reader, path string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("unable to read from reader: %w", err)
	}

	b = utils.RemoveFrontmatter(b)
	if utils.IsMarkdownFile(path) {
		return utils.MarkdownToText(b), nil
	}
	return utils.NormalizeText(string(b)), nil
}

// explanationFromArgs loads the explanation named by args, or piped on
// stdin. It returns the source path, empty for stdin, and ok=false when
// there is no explanation at all.
func explanationFromArgs(args []string) (path, text string, ok bool, err error) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	if arg == "" {
		yes, err := stdinIsPipe()
		if err != nil || !yes {
			return "", "", false, err
		}
		arg = "-"
	}

	if arg == "-" {
		text, err = readExplanation(os.Stdin, "")
		return "", text, err == nil, err
	}

	f, err := os.Open(arg)
	if err != nil {
		return "", "", false, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	path, err = filepath.Abs(arg)
	if err != nil {
		return "", "", false, fmt.Errorf("unable to get absolute path: %w", err)
	}
	text, err = readExplanation(f, path)
	return path, text, err == nil, err
}

func execute(cmd *cobra.Command, args []string) error {
	path, text, ok, err := explanationFromArgs(args)
	if err != nil {
		return err
	}

	in := rawInput(path, text)

	switch {
	// TUI with an empty or prefilled form
	case !ok || tui:
		return runTUI(in)

	case watch:
		if path == "" {
			return errors.New("watch needs an explanation file")
		}
		return watchExplanation(cmd.Context(), path, cmd.OutOrStdout())

	// CLI
	default:
		return printStudy(cmd.OutOrStdout(), in)
	}
}

// newController wires the configured speaker into a playback controller.
// The returned closer releases the speaker.
func newController(cfg narration.Config) (*narration.Controller, func(), error) {
	speaker, closer, err := newSpeaker(cfg)
	if err != nil {
		return nil, nil, err
	}

	ctrl := narration.NewController(narration.NewEngine(speaker, cfg), cfg.ToControllerConfig())
	return ctrl, func() {
		ctrl.Close()
		closer()
	}, nil
}

func runTUI(in study.RawInput) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or auto if unset
	if err := validateStyle(cfg.GlamourStyle); err != nil {
		cfg.GlamourStyle = style
	}

	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.Topic = in.Topic
	cfg.Explanation = in.Explanation
	cfg.FlashcardCount = in.FlashcardCount
	cfg.AnimationSeconds = in.AnimationDurationSeconds
	if viper.IsSet("export_dir") {
		cfg.ExportDir = viper.GetString("export_dir")
	}

	ncfg, err := narration.LoadConfigFromViper()
	if err != nil {
		return err
	}
	ctrl, closeCtrl, err := newController(ncfg)
	if err != nil {
		return err
	}
	defer closeCtrl()

	sc, err := cache.NewSessionCache(sessionCacheCapacity)
	if err != nil {
		return fmt.Errorf("unable to create session cache: %w", err)
	}
	defer func() {
		log.Debug("session cache", "stats", sc.Stats())
		_ = sc.Close()
	}()

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, ctrl, sc).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	// shared by the subcommands
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&topic, "topic", "t", "", "topic of the explanation (default: derived from the file name)")
	rootCmd.PersistentFlags().IntVarP(&cards, "cards", "c", study.DefaultFlashcards, fmt.Sprintf("number of flashcards (%d-%d)", study.MinFlashcards, study.MaxFlashcards))
	rootCmd.PersistentFlags().IntVarP(&duration, "duration", "d", study.DefaultAnimationSeconds, fmt.Sprintf("seconds per key point when voice is off (%d-%d)", study.MinAnimationSeconds, study.MaxAnimationSeconds))
	rootCmd.PersistentFlags().StringVarP(&engine, "engine", "e", narration.EngineAuto, "narration engine (auto, piper, mock, none)")
	rootCmd.PersistentFlags().StringVar(&voice, "voice", "", "preferred voice name")
	rootCmd.PersistentFlags().BoolVar(&noVoice, "no-voice", false, "reveal key points without narration")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug messages")

	rootCmd.Flags().BoolVar(&tui, "tui", false, "open the explanation in the tui")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "print again whenever the explanation file changes")
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to disable)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("cards", rootCmd.PersistentFlags().Lookup("cards"))
	_ = viper.BindPFlag("duration", rootCmd.PersistentFlags().Lookup("duration"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("narration.engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("narration.voice", rootCmd.PersistentFlags().Lookup("voice"))
	_ = viper.BindPFlag("tui", rootCmd.Flags().Lookup("tui"))
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("cards", study.DefaultFlashcards)
	viper.SetDefault("duration", study.DefaultAnimationSeconds)
	narration.SetDefaults()

	rootCmd.AddCommand(configCmd, manCmd, exportCmd, narrateCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "explainer")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "explainer")}, dirs...)
	}

	if c := os.Getenv("EXPLAINER_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("explainer")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("explainer")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "explainer.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
