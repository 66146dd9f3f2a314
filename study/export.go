package study

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatText = "txt"
	FormatYAML = "yaml"
)

// FlashcardsJSON renders the flashcards as a JSON array of question/answer
// objects indented with two spaces.
func FlashcardsJSON(c *GeneratedContent) ([]byte, error) {
	cards := c.Flashcards
	if cards == nil {
		cards = []Flashcard{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cards); err != nil {
		return nil, fmt.Errorf("failed to encode flashcards: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// SummaryText renders the topic, summary and numbered key points as plain
// text.
func SummaryText(c *GeneratedContent) string {
	var b strings.Builder
	b.WriteString("Topic: ")
	b.WriteString(c.Topic)
	b.WriteString("\n\nSummary:\n")
	b.WriteString(c.Summary)
	b.WriteString("\n\nKey Points:\n")
	for i, p := range c.KeyPoints {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(p)
	}
	return b.String()
}

// PackYAML renders the complete generated content as a YAML study pack.
func PackYAML(c *GeneratedContent) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode study pack: %w", err)
	}
	return data, nil
}

// Export renders the content in the given format and returns the document
// together with its file name.
func Export(c *GeneratedContent, format string) (name string, data []byte, err error) {
	switch format {
	case FormatJSON:
		data, err = FlashcardsJSON(c)
		return FlashcardsFilename(c.Topic), data, err
	case FormatText:
		return SummaryFilename(c.Topic), []byte(SummaryText(c)), nil
	case FormatYAML:
		data, err = PackYAML(c)
		return PackFilename(c.Topic), data, err
	default:
		return "", nil, fmt.Errorf("unknown export format %q", format)
	}
}

// FlashcardsFilename is the download name of the flashcards document.
func FlashcardsFilename(topic string) string {
	return fileStem(topic) + "_flashcards.json"
}

// SummaryFilename is the download name of the summary document.
func SummaryFilename(topic string) string {
	return fileStem(topic) + "_summary.txt"
}

// PackFilename is the download name of the YAML study pack.
func PackFilename(topic string) string {
	return fileStem(topic) + "_study.yaml"
}

// fileStem keeps the topic as typed apart from path separators.
func fileStem(topic string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(topic)
}
