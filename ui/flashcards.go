package ui

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/explainer/study"
	"github.com/muesli/reflow/wordwrap"
)

// deckModel pages through flashcards one at a time.
type deckModel struct {
	cards   []study.Flashcard
	index   int
	flipped bool
}

func (d *deckModel) next() {
	if d.index < len(d.cards)-1 {
		d.index++
		d.flipped = false
	}
}

func (d *deckModel) prev() {
	if d.index > 0 {
		d.index--
		d.flipped = false
	}
}

func (d *deckModel) flip() {
	if len(d.cards) > 0 {
		d.flipped = !d.flipped
	}
}

func (d deckModel) view(width int) string {
	if len(d.cards) == 0 {
		return placeholderStyle.Render("The explanation was too short to make flashcards.")
	}

	card := d.cards[d.index]
	inner := max(20, min(width-8, 70))

	style, side, body, hint := cardStyle, "Question", card.Question, "space to reveal answer"
	if d.flipped {
		style, side, body, hint = flippedCardStyle, "Answer", card.Answer, "space to see question"
	}

	content := fmt.Sprintf("%s  %s\n\n%s\n\n%s",
		titleStyle.Render(fmt.Sprintf("Card %d", d.index+1)),
		labelStyle.Render(side),
		wordwrap.String(body, inner),
		subtleStyle.Render(hint),
	)

	var b strings.Builder
	b.WriteString(style.Width(inner + 4).Render(content))
	fmt.Fprintf(&b, "\n\n%s", subtleStyle.Render(fmt.Sprintf("%d of %d • ←/→ previous/next", d.index+1, len(d.cards))))
	return b.String()
}
