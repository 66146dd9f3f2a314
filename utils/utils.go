// Package utils holds small helpers shared by the CLI and the TUI.
package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// RemoveFrontmatter removes the front matter header of a markdown file.
func RemoveFrontmatter(content []byte) []byte {
	if frontmatterBoundaries := detectFrontmatter(content); frontmatterBoundaries[0] == 0 {
		return content[frontmatterBoundaries[1]:]
	}
	return content
}

var yamlPattern = regexp.MustCompile(`(?m)^---\r?\n(\s*\r?\n)?`)

func detectFrontmatter(c []byte) []int {
	if matches := yamlPattern.FindAllIndex(c, 2); len(matches) > 1 {
		return []int{matches[0][0], matches[1][1]}
	}
	return []int{-1, -1}
}

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

var markdownExtensions = []string{
	".md", ".mdown", ".mkdn", ".mkd", ".markdown",
}

// IsMarkdownFile returns whether the filename has a markdown extension.
func IsMarkdownFile(filename string) bool {
	ext := filepath.Ext(filename)
	for _, v := range markdownExtensions {
		if strings.EqualFold(ext, v) {
			return true
		}
	}
	return false
}

// GlamourStyle returns a glamour.TermRendererOption for the given style
// name or path.
func GlamourStyle(style string) glamour.TermRendererOption {
	if style == "" || style == styles.AutoStyle {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStylePath(style)
}

var spaceRun = regexp.MustCompile(`[ \t]+`)

// NormalizeText puts text into Unicode NFC form, unifies line endings and
// collapses runs of spaces and tabs. Sentence boundaries are untouched.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// MarkdownToText flattens markdown into plain prose. Code blocks and HTML
// are dropped. Headings, paragraphs and list items end with a period so each
// becomes its own sentence.
func MarkdownToText(markdown []byte) string {
	markdown = RemoveFrontmatter(markdown)
	reader := text.NewReader(markdown)
	doc := goldmark.New().Parser().Parse(reader)

	var buf strings.Builder
	walk(doc, reader.Source(), &buf)
	return strings.TrimSpace(spaceRun.ReplaceAllString(buf.String(), " "))
}

func walk(node ast.Node, source []byte, buf *strings.Builder) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML, *ast.Image:
		return

	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
		return

	case *ast.String:
		buf.Write(n.Value)
		return

	case *ast.CodeSpan:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return

	case *ast.AutoLink:
		buf.Write(n.Label(source))
		return

	case *ast.Heading, *ast.Paragraph, *ast.TextBlock, *ast.ListItem:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c, source, buf)
		}
		endSentence(buf)
		return
	}

	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		walk(c, source, buf)
	}
}

// endSentence terminates the text written so far with a period unless it
// already ends in punctuation.
func endSentence(buf *strings.Builder) {
	s := strings.TrimRight(buf.String(), " ")
	if s == "" {
		return
	}
	buf.Reset()
	buf.WriteString(s)
	switch s[len(s)-1] {
	case '.', '!', '?', ':':
		buf.WriteByte(' ')
	default:
		buf.WriteString(". ")
	}
}
