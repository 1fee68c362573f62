package storage

import (
	"strings"
	"testing"

	"github.com/dpshade/book-editor/internal/errors"
	"github.com/dpshade/book-editor/internal/models"
)

func TestMarkdownRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"heading and paragraph", "# Chapter 1\n\nIt was dark."},
		{"trailing newline", "line\n"},
		{"double trailing newline", "poem\n\n"},
		{"leading blank lines", "\n\nChapter 1"},
		{"only a newline", "\n"},
		{"delimiter inside body", "before\n---\nafter"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := models.NewDocument("The Long Night", "Ann Author", "")
			if err != nil {
				t.Fatal(err)
			}
			if err := doc.SetContent(tc.content); err != nil {
				t.Fatal(err)
			}

			data, err := EncodeMarkdown(doc, "Mystery")
			if err != nil {
				t.Fatal(err)
			}
			text := string(data)
			if !strings.HasPrefix(text, "---\n") || !strings.Contains(text, "title: The Long Night") {
				t.Errorf("unexpected encoding:\n%s", text)
			}

			loaded, tmpl, err := DecodeMarkdown(data)
			if err != nil {
				t.Fatal(err)
			}
			if tmpl != "Mystery" {
				t.Errorf("template = %q, want Mystery", tmpl)
			}
			if loaded.Content() != tc.content {
				t.Errorf("content = %q, want %q", loaded.Content(), tc.content)
			}
			got, want := loaded.Metadata(), doc.Metadata()
			if got.Title != want.Title || got.Author != want.Author || got.Version != want.Version {
				t.Errorf("metadata = %+v, want %+v", got, want)
			}
			if !got.CreatedAt.Equal(want.CreatedAt) {
				t.Errorf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
			}
		})
	}
}

func TestDecodeMarkdownErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		code  errors.ErrorCode
	}{
		{"no frontmatter", "# just markdown\n", errors.ErrCodeInvalidFormat},
		{"unterminated", "---\ntitle: x\n", errors.ErrCodeInvalidFormat},
		{"bad yaml", "---\ntitle: [x\n---\nbody\n", errors.ErrCodeInvalidFormat},
		{"missing author", "---\ntitle: x\n---\nbody\n", errors.ErrCodeInvalidArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := DecodeMarkdown([]byte(tc.input)); !errors.HasCode(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestDecodeMarkdownMinimal(t *testing.T) {
	doc, tmpl, err := DecodeMarkdown([]byte("---\ntitle: Notes\nauthor: Me\n---\n\nHello\n"))
	if err != nil {
		t.Fatal(err)
	}
	if tmpl != "" || doc.Content() != "Hello" || doc.Version() != 1 {
		t.Errorf("got template %q content %q version %d", tmpl, doc.Content(), doc.Version())
	}
}
