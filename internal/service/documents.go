package service

import (
	"sort"
	"strings"
	"time"

	"github.com/dpshade/book-editor/internal/errors"
	"github.com/dpshade/book-editor/internal/models"
	"github.com/dpshade/book-editor/internal/storage"
	"github.com/dpshade/book-editor/internal/validation"
)

// DocumentSummary describes a stored document
type DocumentSummary struct {
	File      string
	Title     string
	Author    string
	Version   int
	UpdatedAt time.Time
}

// ListDocuments summarizes every readable document, most recently updated
// first. Unreadable files are skipped.
func (e *Editor) ListDocuments() []DocumentSummary {
	names, err := e.store.List(e.dir)
	if err != nil {
		e.logger.Warn("failed to list documents", "dir", e.dir, "error", err)
		return nil
	}

	var summaries []DocumentSummary
	for _, name := range names {
		if !strings.HasSuffix(name, validation.JSONExtension) {
			continue
		}
		doc, err := models.ReadDocument(e.store, storage.Join(e.dir, name))
		if err != nil {
			e.logger.Warn("skipping unreadable document", "file", name, "error", err)
			continue
		}
		meta := doc.Metadata()
		summaries = append(summaries, DocumentSummary{
			File:      name,
			Title:     meta.Title,
			Author:    meta.Author,
			Version:   meta.Version,
			UpdatedAt: meta.UpdatedAt,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries
}

// DocumentExists reports whether a document is stored under path, which is
// resolved the way LoadDocument resolves it
func (e *Editor) DocumentExists(path string) bool {
	target, err := e.documentPath(path)
	if err != nil {
		return false
	}
	_, err = e.store.Load(target)
	return err == nil
}

// DeleteDocument removes a stored document and reports whether it existed.
// Deleting the file of the current document also closes it.
func (e *Editor) DeleteDocument(path string) bool {
	target, err := e.documentPath(path)
	if err != nil {
		return false
	}
	existed, err := e.store.Delete(target)
	if err != nil {
		e.logger.Error("failed to delete document", "path", target, "error", err)
		return false
	}
	if existed && target == e.currentPath {
		e.CloseDocument()
	}
	return existed
}

// ExportMarkdown serializes the current document as Markdown with a YAML
// header recording its metadata and the selected template
func (e *Editor) ExportMarkdown() ([]byte, error) {
	doc, err := e.requireCurrent()
	if err != nil {
		return nil, err
	}
	return storage.EncodeMarkdown(doc, e.templateName)
}

// ImportMarkdown parses exported Markdown and makes it the current document.
// The recorded template is selected when it still exists.
func (e *Editor) ImportMarkdown(data []byte) (*models.Document, error) {
	doc, templateName, err := storage.DecodeMarkdown(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidArgument, "cannot import markdown")
	}
	e.current = doc
	e.currentPath = ""
	if templateName != "" && !e.SetTemplate(templateName) {
		e.logger.Info("imported document references a missing template", "template", templateName)
	}
	return doc.Copy(), nil
}
