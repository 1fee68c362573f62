package models

import (
	"strings"
	"time"

	"github.com/dpshade/book-editor/internal/errors"
)

// DocumentMetadata describes a document
type DocumentMetadata struct {
	Title     string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

// MetadataUpdate lists the metadata fields to change. Nil fields are left alone.
type MetadataUpdate struct {
	Title  *string
	Author *string
}

// Document is a titled, authored text body with a linear undo/redo history
type Document struct {
	content  string
	metadata DocumentMetadata

	// history holds content snapshots; history[cursor] == content
	history []string
	cursor  int

	now func() time.Time
}

// NewDocument creates a document at version 1. Title and author are required.
func NewDocument(title, author, content string) (*Document, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.InvalidArgumentError("document title cannot be empty")
	}
	if strings.TrimSpace(author) == "" {
		return nil, errors.InvalidArgumentError("document author cannot be empty")
	}

	d := &Document{now: time.Now}
	created := d.now()
	d.content = content
	d.metadata = DocumentMetadata{
		Title:     title,
		Author:    author,
		CreatedAt: created,
		UpdatedAt: created,
		Version:   1,
	}
	d.resetHistory()
	return d, nil
}

func (d *Document) resetHistory() {
	d.history = []string{d.content}
	d.cursor = 0
}

func (d *Document) touch() {
	t := d.now()
	if t.Before(d.metadata.CreatedAt) {
		t = d.metadata.CreatedAt
	}
	d.metadata.UpdatedAt = t
}

// Content returns the current text
func (d *Document) Content() string { return d.content }

// Metadata returns a copy of the document metadata
func (d *Document) Metadata() DocumentMetadata { return d.metadata }

func (d *Document) Title() string  { return d.metadata.Title }
func (d *Document) Author() string { return d.metadata.Author }
func (d *Document) Version() int   { return d.metadata.Version }

// History returns a copy of the content snapshots and the cursor position
func (d *Document) History() ([]string, int) {
	return append([]string{}, d.history...), d.cursor
}

// Copy returns an independent copy, history included
func (d *Document) Copy() *Document {
	dup := *d
	dup.history = append([]string{}, d.history...)
	return &dup
}

// SetContent replaces the content. Empty text is rejected; text equal to the
// current content is a no-op.
func (d *Document) SetContent(text string) error {
	_, err := d.UpdateContent(text)
	return err
}

// UpdateContent is SetContent that also reports whether the content changed
func (d *Document) UpdateContent(text string) (bool, error) {
	if text == "" {
		return false, errors.InvalidArgumentError("content cannot be empty")
	}
	if text == d.content {
		return false, nil
	}

	d.history = append(d.history[:d.cursor+1], text)
	d.cursor++
	d.content = text
	d.metadata.Version++
	d.touch()
	return true, nil
}

// UpdateMetadata applies update and bumps the version only when something changed
func (d *Document) UpdateMetadata(update MetadataUpdate) (bool, error) {
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return false, errors.InvalidArgumentError("document title cannot be empty")
	}
	if update.Author != nil && strings.TrimSpace(*update.Author) == "" {
		return false, errors.InvalidArgumentError("document author cannot be empty")
	}

	changed := false
	if update.Title != nil && *update.Title != d.metadata.Title {
		d.metadata.Title = *update.Title
		changed = true
	}
	if update.Author != nil && *update.Author != d.metadata.Author {
		d.metadata.Author = *update.Author
		changed = true
	}
	if changed {
		d.metadata.Version++
		d.touch()
	}
	return changed, nil
}

func (d *Document) CanUndo() bool { return d.cursor > 0 }
func (d *Document) CanRedo() bool { return d.cursor < len(d.history)-1 }

// Undo steps back one snapshot. It reports false at the start of history.
func (d *Document) Undo() bool {
	if !d.CanUndo() {
		return false
	}
	d.cursor--
	d.content = d.history[d.cursor]
	d.metadata.Version--
	d.touch()
	return true
}

// Redo steps forward one snapshot. It reports false at the end of history.
func (d *Document) Redo() bool {
	if !d.CanRedo() {
		return false
	}
	d.cursor++
	d.content = d.history[d.cursor]
	d.metadata.Version++
	d.touch()
	return true
}

// Validate checks the metadata invariants
func (d *Document) Validate() error {
	if strings.TrimSpace(d.metadata.Title) == "" {
		return errors.ValidationError("document title is empty")
	}
	if strings.TrimSpace(d.metadata.Author) == "" {
		return errors.ValidationError("document author is empty")
	}
	if d.metadata.Version < 1 {
		return errors.ValidationError("document version %d is below 1", d.metadata.Version)
	}
	if d.metadata.UpdatedAt.Before(d.metadata.CreatedAt) {
		return errors.ValidationError("document updated_at precedes created_at")
	}
	return nil
}

// ToMap returns the plain mapping form used for persistence
func (d *Document) ToMap() map[string]any {
	return map[string]any{
		"content": d.content,
		"metadata": map[string]any{
			"title":      d.metadata.Title,
			"author":     d.metadata.Author,
			"created_at": FormatTimestamp(d.metadata.CreatedAt),
			"updated_at": FormatTimestamp(d.metadata.UpdatedAt),
			"version":    d.metadata.Version,
		},
	}
}

// DocumentFromMap rebuilds a document from its ToMap form. History starts
// fresh at the loaded content.
func DocumentFromMap(data map[string]any) (*Document, error) {
	meta, ok := asMapping(data["metadata"])
	if !ok {
		return nil, errors.InvalidArgumentError("document data missing metadata")
	}
	title, ok := stringField(meta, "title")
	if !ok || strings.TrimSpace(title) == "" {
		return nil, errors.InvalidArgumentError("document metadata missing title")
	}
	author, ok := stringField(meta, "author")
	if !ok || strings.TrimSpace(author) == "" {
		return nil, errors.InvalidArgumentError("document metadata missing author")
	}

	d := &Document{now: time.Now}
	if raw, present := data["content"]; present {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.ValidationError("content must be a string")
		}
		d.content = s
	}

	d.metadata = DocumentMetadata{Title: title, Author: author, Version: 1}
	if raw, present := meta["version"]; present {
		v, ok := asInt(raw)
		if !ok || v < 1 {
			return nil, errors.ValidationError("metadata.version must be a positive integer")
		}
		d.metadata.Version = v
	}

	created, err := timestampField(meta, "created_at")
	if err != nil {
		return nil, err
	}
	updated, err := timestampField(meta, "updated_at")
	if err != nil {
		return nil, err
	}
	switch {
	case created.IsZero() && updated.IsZero():
		created = d.now()
		updated = created
	case created.IsZero():
		created = updated
	case updated.IsZero():
		updated = created
	}
	if updated.Before(created) {
		return nil, errors.ValidationError("metadata.updated_at precedes created_at")
	}
	d.metadata.CreatedAt = created
	d.metadata.UpdatedAt = updated

	d.resetHistory()
	return d, nil
}

func timestampField(meta map[string]any, key string) (time.Time, error) {
	raw, present := meta[key]
	if !present || raw == nil {
		return time.Time{}, nil
	}
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := ParseTimestamp(v)
		if err != nil {
			return time.Time{}, errors.ValidationError("metadata.%s: %v", key, err)
		}
		return t, nil
	default:
		return time.Time{}, errors.ValidationError("metadata.%s must be a timestamp string", key)
	}
}

// Save validates the document and writes it to path
func (d *Document) Save(w BlobWriter, path string) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return writeJSON(w, path, d.ToMap())
}

// ReadDocument loads the document stored at path. A missing file yields
// FILE_NOT_FOUND and unreadable content yields FILE_CORRUPTED.
func ReadDocument(r BlobReader, path string) (*Document, error) {
	m, err := readMapping(r, path)
	if err != nil {
		return nil, err
	}
	d, err := DocumentFromMap(m)
	if err != nil {
		return nil, errors.FileCorruptedError(path, err)
	}
	return d, nil
}
