package ui

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/explainer/narration"
	"github.com/muesli/reflow/wordwrap"
)

// revealPlaceholder is shown while nothing has been revealed.
const revealPlaceholder = "Click Start to begin the animated explanation"

// playbackView renders the animated explanation for a playback snapshot.
func playbackView(st narration.PlaybackState, width int) string {
	wrap := max(20, min(width-6, 80))
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", progressDots(st))

	if st.RevealedText == "" {
		b.WriteString(placeholderStyle.Render(revealPlaceholder))
	} else {
		b.WriteString(revealStyle.Render(wordwrap.String(st.RevealedText, wrap)))
	}
	b.WriteString("\n\n")

	b.WriteString(narration.StatusLine(st))
	b.WriteString("\n")

	voice := "off"
	if st.VoiceEnabled {
		voice = "on"
	}
	fmt.Fprintf(&b, "%s\n\n", subtleStyle.Render("Voice: "+voice+" • Phase: "+st.Phase.String()))

	b.WriteString(subtleStyle.Render("s start • space pause/resume • r reset • v voice"))
	return b.String()
}

// progressDots marks each point as done, current or pending.
func progressDots(st narration.PlaybackState) string {
	if st.Total == 0 {
		return ""
	}

	var b strings.Builder
	for i := range st.Total {
		switch {
		case st.Phase == narration.PhaseCompleted || (st.IsActive() && i < st.CurrentIndex):
			b.WriteString(progressDoneStyle.Render("●"))
		case st.IsActive() && i == st.CurrentIndex:
			b.WriteString(progressCurrentStyle.Render("●"))
		default:
			b.WriteString(progressPendingStyle.Render("○"))
		}
		if i < st.Total-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}
