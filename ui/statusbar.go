package ui

import (
	"strings"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

// statusBar lays out logo, note and help across width, truncating the note
// and padding with the note's background.
func statusBar(width int, logo, note string, noteStyle func(...string) string, help string) string {
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(help),
	)), ellipsis)
	note = noteStyle(note)

	padding := max(0,
		width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(help),
	)
	return logo + note + noteStyle(strings.Repeat(" ", padding)) + help
}

// helpView renders lines on a full-width help background.
func helpView(lines []string, width int) string {
	s := indent("\n"+strings.Join(lines, "\n"), 2)

	// Fill up empty cells with spaces for background coloring
	if width > 0 {
		rows := strings.Split(s, "\n")
		for i := range rows {
			n := max(width-runewidth.StringWidth(rows[i]), 0)
			rows[i] += strings.Repeat(" ", n)
		}
		s = strings.Join(rows, "\n")
	}
	return helpViewStyle(s)
}
