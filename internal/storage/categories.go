package storage

import (
	"encoding/json"

	"github.com/dpshade/book-editor/internal/errors"
)

// CategoriesFile is the registry file name inside a template directory. The
// leading underscore keeps it apart from sanitized template names.
const CategoriesFile = "_categories.json"

// DefaultCategory is always registered
const DefaultCategory = "general"

// Category is a registered template category
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// categoriesData represents the JSON structure of the registry file
type categoriesData struct {
	Categories []Category `json:"categories"`
}

// CategoryRegistry handles persistence of template categories
type CategoryRegistry struct {
	store BlobStore
	name  string
}

// NewCategoryRegistry creates a registry stored in dir
func NewCategoryRegistry(store BlobStore, dir string) *CategoryRegistry {
	return &CategoryRegistry{
		store: store,
		name:  Join(dir, CategoriesFile),
	}
}

// Load returns all registered categories. A missing registry yields just
// the default category.
func (r *CategoryRegistry) Load() ([]Category, error) {
	data, err := r.store.Load(r.name)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeFileNotFound) {
			return []Category{{Name: DefaultCategory, Description: "General templates"}}, nil
		}
		return nil, err
	}

	var parsed categoriesData
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, errors.FileCorruptedError(r.name, err)
	}

	categories := make([]Category, 0, len(parsed.Categories)+1)
	hasDefault := false
	for _, c := range parsed.Categories {
		if c.Name == "" {
			continue
		}
		if c.Name == DefaultCategory {
			hasDefault = true
		}
		categories = append(categories, c)
	}
	if !hasDefault {
		categories = append([]Category{{Name: DefaultCategory, Description: "General templates"}}, categories...)
	}
	return categories, nil
}

// Save replaces the registry contents
func (r *CategoryRegistry) Save(categories []Category) error {
	data, err := json.MarshalIndent(categoriesData{Categories: categories}, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to marshal categories")
	}
	return r.store.Save(r.name, append(data, '\n'))
}

// Add registers a category, replacing the description of an existing one
func (r *CategoryRegistry) Add(category Category) error {
	categories, err := r.Load()
	if err != nil {
		return err
	}
	for i, existing := range categories {
		if existing.Name == category.Name {
			categories[i] = category
			return r.Save(categories)
		}
	}
	return r.Save(append(categories, category))
}

// Remove unregisters a category and reports whether it was present. The
// default category cannot be removed.
func (r *CategoryRegistry) Remove(name string) (bool, error) {
	if name == DefaultCategory {
		return false, errors.InvalidArgumentError("category %q cannot be removed", name)
	}
	categories, err := r.Load()
	if err != nil {
		return false, err
	}
	for i, c := range categories {
		if c.Name == name {
			categories = append(categories[:i], categories[i+1:]...)
			return true, r.Save(categories)
		}
	}
	return false, nil
}
