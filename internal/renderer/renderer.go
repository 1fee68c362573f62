package renderer

import (
	"bytes"
	"fmt"
	"html"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/dpshade/book-editor/internal/models"
)

// Markdown converts Markdown to HTML with GitHub flavoured extensions. Raw
// HTML in the source is passed through.
type Markdown struct {
	md goldmark.Markdown
}

var _ models.Converter = (*Markdown)(nil)

// NewMarkdown creates a Markdown converter
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// ToHTML renders markdown as an HTML fragment
func (m *Markdown) ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Terminal renders Markdown for display in a terminal
type Terminal struct {
	renderer *glamour.TermRenderer
}

// NewTerminal creates a terminal renderer. style names a glamour standard
// style; when empty, GLAMOUR_STYLE is consulted and then the terminal
// background and colour profile decide.
func NewTerminal(style string, wordWrap int) (*Terminal, error) {
	r, err := createGlamourRenderer(style, wordWrap)
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	return &Terminal{renderer: r}, nil
}

// createGlamourRenderer picks a glamour style with readable contrast
func createGlamourRenderer(style string, wordWrap int) (*glamour.TermRenderer, error) {
	if style == "" {
		style = os.Getenv("GLAMOUR_STYLE")
	}
	if style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()

	var styleOption glamour.TermRendererOption
	switch {
	case profile != termenv.TrueColor && profile != termenv.ANSI256:
		styleOption = glamour.WithAutoStyle()
	case lipgloss.HasDarkBackground():
		styleOption = glamour.WithStandardStyle("dark")
	default:
		styleOption = glamour.WithStandardStyle("light")
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// Render renders markdown for the terminal
func (t *Terminal) Render(markdown string) (string, error) {
	out, err := t.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Page wraps an HTML fragment in a standalone HTML document
func Page(title, body string) string {
	return fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s\n</body>\n</html>\n",
		html.EscapeString(title), body)
}
