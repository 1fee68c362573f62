package service

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dpshade/book-editor/internal/errors"
	"github.com/dpshade/book-editor/internal/models"
	"github.com/dpshade/book-editor/internal/storage"
	"github.com/dpshade/book-editor/internal/validation"
)

// TemplateSummary describes a stored template without its styles
type TemplateSummary struct {
	Name        string
	Category    string
	Description string
	Tags        []string
	Format      models.Format
}

func summarize(t *models.Template) TemplateSummary {
	meta := t.Metadata()
	return TemplateSummary{
		Name:        t.Name(),
		Category:    t.Category(),
		Description: meta.Description,
		Tags:        meta.Tags,
		Format:      meta.Format,
	}
}

// TemplateManager stores templates as one file each in a directory and
// keeps the registry of categories templates may be saved into
type TemplateManager struct {
	store      storage.BlobStore
	dir        string
	registry   *storage.CategoryRegistry
	categories map[string]string
	logger     *slog.Logger
}

// NewTemplateManager creates a manager for the templates under dir
func NewTemplateManager(store storage.BlobStore, dir string, logger *slog.Logger) *TemplateManager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &TemplateManager{
		store:      store,
		dir:        dir,
		registry:   storage.NewCategoryRegistry(store, dir),
		categories: map[string]string{storage.DefaultCategory: "General templates"},
		logger:     logger.With("component", "templates"),
	}

	loaded, err := m.registry.Load()
	if err != nil {
		m.logger.Warn("failed to load categories, using defaults", "error", err)
		return m
	}
	for _, c := range loaded {
		m.categories[c.Name] = c.Description
	}
	return m
}

// AddCategory registers a category. It returns false when name is empty,
// already registered, or the registry could not be written.
func (m *TemplateManager) AddCategory(name, description string) bool {
	if !validation.ValidateCategoryName(name) {
		return false
	}
	if _, exists := m.categories[name]; exists {
		return false
	}
	if err := m.registry.Add(storage.Category{Name: name, Description: description}); err != nil {
		m.logger.Error("failed to save category", "category", name, "error", err)
		return false
	}
	m.categories[name] = description
	return true
}

// RemoveCategory unregisters a category that no stored template uses
func (m *TemplateManager) RemoveCategory(name string) (bool, error) {
	if _, exists := m.categories[name]; !exists {
		return false, nil
	}
	if used := m.ListTemplates(name); len(used) > 0 {
		return false, errors.InvalidStateError("category %q is used by %d template(s)", name, len(used))
	}
	removed, err := m.registry.Remove(name)
	if err != nil {
		if errors.GetAppError(err).IsContractViolation() {
			return false, err
		}
		m.logger.Error("failed to remove category", "category", name, "error", err)
		return false, nil
	}
	delete(m.categories, name)
	return removed, nil
}

// HasCategory reports whether name is registered
func (m *TemplateManager) HasCategory(name string) bool {
	_, ok := m.categories[name]
	return ok
}

// Categories returns the registered category names, sorted
func (m *TemplateManager) Categories() []string {
	names := make([]string, 0, len(m.categories))
	for name := range m.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryDescriptions returns a copy of the category descriptions
func (m *TemplateManager) CategoryDescriptions() map[string]string {
	out := make(map[string]string, len(m.categories))
	for name, desc := range m.categories {
		out[name] = desc
	}
	return out
}

func (m *TemplateManager) path(name string) (string, error) {
	filename, err := validation.Filename(name)
	if err != nil {
		return "", err
	}
	return storage.Join(m.dir, filename), nil
}

// SaveTemplate persists t under its sanitized name. It returns false without
// writing when t's category is not registered or the write fails. Invalid
// templates are reported as errors.
func (m *TemplateManager) SaveTemplate(t *models.Template) (bool, error) {
	if t == nil {
		return false, errors.InvalidArgumentError("template cannot be nil")
	}
	if !m.HasCategory(t.Category()) {
		m.logger.Info("refusing to save template into unknown category", "template", t.Name(), "category", t.Category())
		return false, nil
	}

	path, err := m.path(t.Name())
	if err != nil {
		return false, err
	}
	if err := t.Save(m.store, path); err != nil {
		if errors.GetAppError(err).IsContractViolation() {
			return false, err
		}
		m.logger.Error("failed to save template", "template", t.Name(), "error", err)
		return false, nil
	}
	m.logger.Debug("saved template", "template", t.Name(), "path", path)
	return true, nil
}

// GetTemplate loads the named template. Missing and unreadable files both
// report false; the latter are logged.
func (m *TemplateManager) GetTemplate(name string) (*models.Template, bool) {
	path, err := m.path(name)
	if err != nil {
		m.logger.Debug("invalid template name", "template", name, "error", err)
		return nil, false
	}
	t, err := models.ReadTemplate(m.store, path)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeFileNotFound) {
			m.logger.Debug("template not found", "template", name)
		} else {
			m.logger.Warn("failed to load template", "template", name, "error", err)
		}
		return nil, false
	}
	return t, true
}

// LoadTemplate is GetTemplate
func (m *TemplateManager) LoadTemplate(name string) (*models.Template, bool) {
	return m.GetTemplate(name)
}

// loadAll reads every template file in the directory, skipping files that
// fail to parse
func (m *TemplateManager) loadAll() []*models.Template {
	names, err := m.store.List(m.dir)
	if err != nil {
		m.logger.Warn("failed to list templates", "dir", m.dir, "error", err)
		return nil
	}

	var templates []*models.Template
	for _, name := range names {
		if !strings.HasSuffix(name, validation.JSONExtension) || strings.HasPrefix(name, "_") {
			continue
		}
		t, err := models.ReadTemplate(m.store, storage.Join(m.dir, name))
		if err != nil {
			m.logger.Warn("skipping unreadable template", "file", name, "error", err)
			continue
		}
		templates = append(templates, t)
	}
	return templates
}

// ListTemplates returns the names of stored templates, optionally limited to
// one category
func (m *TemplateManager) ListTemplates(category string) []string {
	var names []string
	for _, t := range m.loadAll() {
		if category != "" && t.Category() != category {
			continue
		}
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}

// SearchTemplates returns templates whose name, description or any tag
// contains query, ignoring case
func (m *TemplateManager) SearchTemplates(query string) []TemplateSummary {
	q := strings.ToLower(query)
	var results []TemplateSummary
	for _, t := range m.loadAll() {
		s := summarize(t)
		if matchesQuery(s, q) {
			results = append(results, s)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

func matchesQuery(s TemplateSummary, q string) bool {
	if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Description), q) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// FuzzySearch ranks templates by fuzzy match of query against name,
// description and tags. An empty query returns every template.
func (m *TemplateManager) FuzzySearch(query string) []TemplateSummary {
	templates := m.loadAll()
	summaries := make([]TemplateSummary, len(templates))
	for i, t := range templates {
		summaries[i] = summarize(t)
	}
	if query == "" {
		sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
		return summaries
	}

	searchStrings := make([]string, len(summaries))
	for i, s := range summaries {
		searchStrings[i] = fmt.Sprintf("%s %s %s", s.Name, s.Description, strings.Join(s.Tags, " "))
	}

	matches := fuzzy.Find(query, searchStrings)
	results := make([]TemplateSummary, 0, len(matches))
	for _, match := range matches {
		results = append(results, summaries[match.Index])
	}
	return results
}

// Suggest returns the stored template name closest to name
func (m *TemplateManager) Suggest(name string) (string, bool) {
	names := m.ListTemplates("")
	matches := fuzzy.Find(name, names)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Str, true
}

// DeleteTemplate removes the named template and reports whether a file existed
func (m *TemplateManager) DeleteTemplate(name string) bool {
	path, err := m.path(name)
	if err != nil {
		return false
	}
	existed, err := m.store.Delete(path)
	if err != nil {
		m.logger.Error("failed to delete template", "template", name, "error", err)
		return false
	}
	return existed
}
