package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/dgnsrekt/explainer/study"
	"github.com/dgnsrekt/explainer/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const exportTimeout = 30 * time.Second

var (
	exportFormats []string
	exportDir     string

	exportCmd = &cobra.Command{
		Use:   "export [EXPLANATION|-]",
		Short: "Write the flashcards, summary and study pack to files",
		Long: paragraph(fmt.Sprintf("\n%s the generated study material. Flashcards are written as JSON, "+
			"the summary as plain text and the whole pack as YAML.", keyword("Export"))),
		Example: paragraph("explainer export notes.md\nexplainer export -t Photosynthesis -f json -o ~/study notes.txt"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, text, ok, err := explanationFromArgs(args)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("missing explanation: pass a file or pipe it on stdin")
			}

			dir := exportDir
			if !cmd.Flags().Changed("output") && viper.IsSet("export_dir") {
				dir = viper.GetString("export_dir")
			}
			return exportStudy(cmd.Context(), cmd.OutOrStdout(), rawInput(path, text), dir, exportFormats)
		},
	}
)

// exportStudy generates study material and writes one file per format to
// dir, listing the written paths on w.
func exportStudy(ctx context.Context, w io.Writer, in study.RawInput, dir string, formats []string) error {
	for _, f := range formats {
		if !slices.Contains(study.Formats, f) {
			return fmt.Errorf("unknown format %q: use one of %v", f, study.Formats)
		}
	}

	c, err := study.Generate(in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	paths, err := study.WriteFiles(ctx, c, utils.ExpandPath(dir), formats...)
	if err != nil {
		return err //nolint:wrapcheck
	}
	for _, p := range paths {
		fmt.Fprintln(w, p) //nolint:errcheck
	}
	return nil
}

func init() {
	exportCmd.Flags().StringSliceVarP(&exportFormats, "format", "f", study.Formats, "formats to write (json, txt, yaml)")
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", ".", "directory to write to")
}
