// Package sentence provides sentence extraction for explanation text.
package sentence

import (
	"strings"
	"unicode/utf8"
)

// MinLength is the trimmed length a fragment has to exceed to count as a
// substantive sentence.
const MinLength = 20

// Parser splits explanation text into qualifying sentences.
type Parser struct {
	// Fragment delimiter
	separator string

	// Fragments at or below this many characters are dropped
	minLength int
}

// NewParser creates a parser using the default delimiter and threshold.
func NewParser() *Parser {
	return &Parser{
		separator: ".",
		minLength: MinLength,
	}
}

// Parse splits text on the separator, trims every fragment and keeps the
// ones longer than the minimum length, in source order.
func (p *Parser) Parse(text string) []string {
	sentences := make([]string, 0)
	if text == "" {
		return sentences
	}

	for _, fragment := range strings.Split(text, p.separator) {
		fragment = strings.TrimSpace(fragment)
		if utf8.RuneCountInString(fragment) <= p.minLength {
			continue
		}
		sentences = append(sentences, fragment)
	}

	return sentences
}

// Segment is a convenience wrapper around a default Parser.
func Segment(text string) []string {
	return defaultParser.Parse(text)
}

var defaultParser = NewParser()
