package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/explainer/narration"
	"github.com/dgnsrekt/explainer/study"
	"github.com/spf13/cobra"
)

var narrateCmd = &cobra.Command{
	Use:   "narrate [EXPLANATION|-]",
	Short: "Narrate the key points without the tui",
	Long: paragraph(fmt.Sprintf("\n%s the key points of an explanation one after another, "+
		"printing each point as it starts. Press ctrl+c to stop.", keyword("Narrate"))),
	Example: paragraph("explainer narrate notes.md\nexplainer narrate --engine mock --duration 3 notes.txt"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, text, ok, err := explanationFromArgs(args)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("missing explanation: pass a file or pipe it on stdin")
		}

		in := rawInput(path, text)
		c, err := study.Generate(in)
		if err != nil {
			return err //nolint:wrapcheck
		}

		cfg, err := narration.LoadConfigFromViper()
		if err != nil {
			return err //nolint:wrapcheck
		}
		cfg.AnimationDuration = in.AnimationDuration()

		ctrl, closer, err := newController(cfg)
		if err != nil {
			return err
		}
		defer closer()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		return narrate(ctx, cmd.OutOrStdout(), ctrl, c)
	},
}

// narrate plays c on ctrl and prints every point when it starts, then the
// completion message. It returns early when ctx is done.
func narrate(ctx context.Context, w io.Writer, ctrl *narration.Controller, c *study.GeneratedContent) error {
	ctrl.Load(c.KeyPoints, c.Script)

	states, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	if err := ctrl.Start(); err != nil {
		return err //nolint:wrapcheck
	}
	log.Info("narrating", "topic", c.Topic, "points", len(c.KeyPoints))

	points := ctrl.Points()
	fmt.Fprintf(w, "%s\n\n", keyword(c.Topic)) //nolint:errcheck

	printed := 0
	printUpTo := func(last int) {
		for ; printed <= last && printed < len(points); printed++ {
			fmt.Fprintf(w, "%d/%d  %s\n", printed+1, len(points), points[printed]) //nolint:errcheck
		}
	}

	for {
		select {
		case <-ctx.Done():
			ctrl.Reset()
			return nil

		case st, ok := <-states:
			if !ok {
				return nil
			}
			switch {
			case st.Phase == narration.PhaseCompleted:
				printUpTo(len(points) - 1)
				fmt.Fprintf(w, "\n%s\n", st.RevealedText) //nolint:errcheck
				return nil
			case st.IsActive():
				printUpTo(st.CurrentIndex)
			}
		}
	}
}
