package storage

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dpshade/book-editor/internal/errors"
	"github.com/dpshade/book-editor/internal/models"
)

const frontmatterDelimiter = "---"

// documentFrontmatter is the YAML header of an exported document
type documentFrontmatter struct {
	Title     string `yaml:"title"`
	Author    string `yaml:"author"`
	Version   int    `yaml:"version"`
	CreatedAt string `yaml:"created_at"`
	UpdatedAt string `yaml:"updated_at"`
	Template  string `yaml:"template,omitempty"`
}

// EncodeMarkdown serializes doc as Markdown with a YAML frontmatter header.
// templateName is recorded when non-empty.
func EncodeMarkdown(doc *models.Document, templateName string) ([]byte, error) {
	if doc == nil {
		return nil, errors.InvalidArgumentError("document cannot be nil")
	}
	meta := doc.Metadata()
	header := documentFrontmatter{
		Title:     meta.Title,
		Author:    meta.Author,
		Version:   meta.Version,
		CreatedAt: models.FormatTimestamp(meta.CreatedAt),
		UpdatedAt: models.FormatTimestamp(meta.UpdatedAt),
		Template:  templateName,
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(header); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to encode frontmatter")
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to encode frontmatter")
	}

	buf.WriteString(frontmatterDelimiter + "\n")

	// The body is framed by exactly one blank line and one trailing newline,
	// which DecodeMarkdown removes again.
	if content := doc.Content(); content != "" {
		buf.WriteString("\n")
		buf.WriteString(content)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// DecodeMarkdown parses Markdown with a YAML frontmatter header into a
// document and the recorded template name
func DecodeMarkdown(data []byte) (*models.Document, string, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	rest, ok := strings.CutPrefix(text, frontmatterDelimiter+"\n")
	if !ok {
		return nil, "", errors.NewAppError(errors.ErrCodeInvalidFormat, "missing frontmatter delimiter")
	}

	var header, body string
	if strings.HasPrefix(rest, frontmatterDelimiter+"\n") || rest == frontmatterDelimiter {
		body = strings.TrimPrefix(strings.TrimPrefix(rest, frontmatterDelimiter), "\n")
	} else {
		var found bool
		header, body, found = strings.Cut(rest, "\n"+frontmatterDelimiter+"\n")
		if !found {
			header, found = strings.CutSuffix(rest, "\n"+frontmatterDelimiter)
			if !found {
				return nil, "", errors.NewAppError(errors.ErrCodeInvalidFormat, "unterminated frontmatter")
			}
			body = ""
		}
	}

	var fm documentFrontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, "", errors.Wrap(err, errors.ErrCodeInvalidFormat, "failed to parse frontmatter")
	}

	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimSuffix(body, "\n")

	metadata := map[string]any{
		"title":  fm.Title,
		"author": fm.Author,
	}
	if fm.Version != 0 {
		metadata["version"] = fm.Version
	}
	if fm.CreatedAt != "" {
		metadata["created_at"] = fm.CreatedAt
	}
	if fm.UpdatedAt != "" {
		metadata["updated_at"] = fm.UpdatedAt
	}

	doc, err := models.DocumentFromMap(map[string]any{"content": body, "metadata": metadata})
	if err != nil {
		return nil, "", fmt.Errorf("invalid frontmatter: %w", err)
	}
	return doc, fm.Template, nil
}
