package storage

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dpshade/book-editor/internal/errors"
)

func TestCategoryRegistry(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	registry := NewCategoryRegistry(store, "templates")

	categories, err := registry.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(categories) != 1 || categories[0].Name != DefaultCategory {
		t.Fatalf("fresh registry = %v, want only %q", categories, DefaultCategory)
	}

	if err := registry.Add(Category{Name: "fiction", Description: "Novels"}); err != nil {
		t.Fatal(err)
	}
	if err := registry.Add(Category{Name: "fiction", Description: "Novels and stories"}); err != nil {
		t.Fatal(err)
	}

	categories, err = registry.Load()
	if err != nil {
		t.Fatal(err)
	}
	want := []Category{
		{Name: "general", Description: "General templates"},
		{Name: "fiction", Description: "Novels and stories"},
	}
	if diff := cmp.Diff(want, categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.Load("templates/" + CategoriesFile); err != nil {
		t.Errorf("registry file not written: %v", err)
	}

	removed, err := registry.Remove("fiction")
	if err != nil || !removed {
		t.Errorf("Remove(fiction) = %v, %v", removed, err)
	}
	removed, err = registry.Remove("fiction")
	if err != nil || removed {
		t.Errorf("second Remove(fiction) = %v, %v", removed, err)
	}
	if _, err := registry.Remove(DefaultCategory); !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("removing default: %v", err)
	}
}

func TestCategoryRegistryCorruptFile(t *testing.T) {
	store, _ := NewFileStore(t.TempDir(), nil)
	if err := store.Save(CategoriesFile, []byte("{broken")); err != nil {
		t.Fatal(err)
	}
	registry := NewCategoryRegistry(store, "")
	if _, err := registry.Load(); !errors.HasCode(err, errors.ErrCodeFileCorrupted) {
		t.Errorf("expected FILE_CORRUPTED, got %v", err)
	}
}
