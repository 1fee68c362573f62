package service

import (
	"log/slog"
	"strings"

	"github.com/dpshade/book-editor/internal/errors"
	"github.com/dpshade/book-editor/internal/models"
	"github.com/dpshade/book-editor/internal/storage"
	"github.com/dpshade/book-editor/internal/validation"
)

// DefaultDocumentName is used when a document title cannot be turned into a
// file name
const DefaultDocumentName = "untitled"

// Editor owns the current document and persists documents under a directory.
// The current template is held by name only.
type Editor struct {
	store     storage.BlobStore
	dir       string
	templates *TemplateManager
	converter models.Converter
	logger    *slog.Logger

	current      *models.Document
	currentPath  string
	templateName string
}

// NewEditor creates an editor storing documents under dir
func NewEditor(store storage.BlobStore, dir string, templates *TemplateManager, converter models.Converter, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		store:     store,
		dir:       dir,
		templates: templates,
		converter: converter,
		logger:    logger.With("component", "editor"),
	}
}

// NewDocument creates a document and makes it current, releasing any
// previous one
func (e *Editor) NewDocument(title, author string) (*models.Document, error) {
	doc, err := models.NewDocument(title, author, "")
	if err != nil {
		return nil, err
	}
	e.current = doc
	e.currentPath = ""
	return doc.Copy(), nil
}

// Current returns a snapshot of the current document
func (e *Editor) Current() (*models.Document, bool) {
	if e.current == nil {
		return nil, false
	}
	return e.current.Copy(), true
}

// CurrentPath returns where the current document was last loaded or saved
func (e *Editor) CurrentPath() string {
	return e.currentPath
}

func (e *Editor) requireCurrent() (*models.Document, error) {
	if e.current == nil {
		return nil, errors.InvalidStateError("no document is open")
	}
	return e.current, nil
}

// documentPath maps a caller supplied path to a store name. A bare title is
// sanitized into a file name; a name ending in .json must be a plain file
// name inside the documents directory.
func (e *Editor) documentPath(path string) (string, error) {
	if strings.HasSuffix(path, validation.JSONExtension) {
		if strings.ContainsAny(path, `/\`) || path == validation.JSONExtension {
			return "", errors.InvalidArgumentError("document file %q must be a plain file name", path)
		}
		return storage.Join(e.dir, path), nil
	}
	filename, err := validation.Filename(path)
	if err != nil {
		return "", err
	}
	return storage.Join(e.dir, filename), nil
}

// SaveDocument writes the current document. With an empty path the file name
// is derived from the title. Write failures are logged and reported as false.
func (e *Editor) SaveDocument(path string) (bool, error) {
	doc, err := e.requireCurrent()
	if err != nil {
		return false, err
	}

	var target string
	if path == "" {
		filename, err := validation.Filename(doc.Title())
		if err != nil {
			filename = DefaultDocumentName + validation.JSONExtension
		}
		target = storage.Join(e.dir, filename)
	} else {
		target, err = e.documentPath(path)
		if err != nil {
			return false, err
		}
	}

	if err := doc.Save(e.store, target); err != nil {
		if errors.GetAppError(err).IsContractViolation() {
			return false, err
		}
		e.logger.Error("failed to save document", "path", target, "error", err)
		return false, nil
	}
	e.currentPath = target
	e.logger.Debug("saved document", "path", target, "version", doc.Version())
	return true, nil
}

// LoadDocument reads a document and makes it current. Missing or unreadable
// files report false and leave the current document alone.
func (e *Editor) LoadDocument(path string) (*models.Document, bool) {
	target, err := e.documentPath(path)
	if err != nil {
		e.logger.Debug("invalid document path", "path", path, "error", err)
		return nil, false
	}
	doc, err := models.ReadDocument(e.store, target)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeFileNotFound) {
			e.logger.Debug("document not found", "path", target)
		} else {
			e.logger.Warn("failed to load document", "path", target, "error", err)
		}
		return nil, false
	}
	e.current = doc
	e.currentPath = target
	return doc.Copy(), true
}

// CloseDocument releases the current document
func (e *Editor) CloseDocument() {
	e.current = nil
	e.currentPath = ""
}

// SetTemplate selects the template used by Preview. An empty name clears it.
// It returns false when the template does not exist.
func (e *Editor) SetTemplate(name string) bool {
	if name == "" {
		e.templateName = ""
		return true
	}
	if e.templates == nil {
		return false
	}
	if _, ok := e.templates.GetTemplate(name); !ok {
		return false
	}
	e.templateName = name
	return true
}

// TemplateName returns the selected template name
func (e *Editor) TemplateName() string {
	return e.templateName
}

// Content returns the current document's text
func (e *Editor) Content() (string, error) {
	doc, err := e.requireCurrent()
	if err != nil {
		return "", err
	}
	return doc.Content(), nil
}

// SetContent replaces the current document's text
func (e *Editor) SetContent(text string) error {
	doc, err := e.requireCurrent()
	if err != nil {
		return err
	}
	return doc.SetContent(text)
}

// UpdateMetadata changes the current document's title or author
func (e *Editor) UpdateMetadata(update models.MetadataUpdate) (bool, error) {
	doc, err := e.requireCurrent()
	if err != nil {
		return false, err
	}
	return doc.UpdateMetadata(update)
}

// Undo steps the current document back
func (e *Editor) Undo() (bool, error) {
	doc, err := e.requireCurrent()
	if err != nil {
		return false, err
	}
	return doc.Undo(), nil
}

// Redo steps the current document forward
func (e *Editor) Redo() (bool, error) {
	doc, err := e.requireCurrent()
	if err != nil {
		return false, err
	}
	return doc.Redo(), nil
}

// Stats analyzes the current document
func (e *Editor) Stats() (models.TextStats, error) {
	doc, err := e.requireCurrent()
	if err != nil {
		return models.TextStats{}, err
	}
	return doc.Stats(), nil
}

// Preview renders the current document as HTML, wrapped by the selected
// template when there is one
func (e *Editor) Preview() (string, error) {
	doc, err := e.requireCurrent()
	if err != nil {
		return "", err
	}
	content := doc.Content()
	if content == "" {
		return "", nil
	}

	if e.templateName != "" && e.templates != nil {
		if tmpl, ok := e.templates.GetTemplate(e.templateName); ok {
			return tmpl.Render(content, e.converter)
		}
		e.logger.Warn("selected template is no longer available", "template", e.templateName)
	}

	if e.converter == nil {
		return "", errors.InvalidStateError("no markdown converter configured")
	}
	return e.converter.ToHTML(content)
}
