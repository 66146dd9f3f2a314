package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/explainer/study"
	"github.com/dgnsrekt/explainer/utils"
)

// printStudy generates study material and writes it to w as rendered
// markdown.
func printStudy(w io.Writer, in study.RawInput) error {
	c, err := study.Generate(in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		utils.GlamourStyle(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
	)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %w", err)
	}

	out, err := r.Render(studyMarkdown(c))
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}

	if _, err = fmt.Fprint(w, out); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	return nil
}

// studyMarkdown lays out every part of the generated content as one
// markdown document.
func studyMarkdown(c *study.GeneratedContent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n## Summary\n\n%s\n\n", c.Topic, c.Summary)

	b.WriteString("## Key Points\n\n")
	if len(c.KeyPoints) == 0 {
		fmt.Fprintf(&b, "%s\n\n", c.Script)
	}
	for i, p := range c.KeyPoints {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}

	if len(c.Flashcards) > 0 {
		b.WriteString("\n## Flashcards\n\n")
		for i, f := range c.Flashcards {
			fmt.Fprintf(&b, "**Card %d.** %s\n\n> %s\n\n", i+1, f.Question, f.Answer)
		}
	}

	if len(c.Quiz) > 0 {
		b.WriteString("## Quiz\n\n")
		for i, q := range c.Quiz {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
			for o, opt := range q.Options {
				fmt.Fprintf(&b, "   - %c) %s\n", 'a'+o, opt)
			}
			b.WriteString("\n")
		}
		b.WriteString("*Answers: ")
		for i, q := range c.Quiz {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d%c", i+1, 'a'+q.CorrectIndex)
		}
		b.WriteString("*\n")
	}

	return b.String()
}
