package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dpshade/book-editor/internal/errors"
)

// BlobStore persists named blobs under a single root. Names are slash
// separated and must stay inside the root.
type BlobStore interface {
	// Save writes data to name, replacing any existing blob
	Save(name string, data []byte) error
	// Load returns the blob; a missing blob yields FILE_NOT_FOUND
	Load(name string) ([]byte, error)
	// Delete removes the blob and reports whether it existed
	Delete(name string) (bool, error)
	// List returns the names of the blobs directly inside dir, sorted
	List(dir string) ([]string, error)
}

// FileStore is a BlobStore backed by files on disk
type FileStore struct {
	rootPath string
	logger   *slog.Logger
}

// NewFileStore creates a file store rooted at rootPath. An empty rootPath
// defaults to ~/.book-editor.
func NewFileStore(rootPath string, logger *slog.Logger) (*FileStore, error) {
	if rootPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		rootPath = filepath.Join(homeDir, ".book-editor")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{rootPath: rootPath, logger: logger}, nil
}

// Init creates the root directory and the given subdirectories
func (s *FileStore) Init(dirs ...string) error {
	for _, dir := range append([]string{"."}, dirs...) {
		full, err := s.resolve(dir)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(full, 0755); err != nil {
			return errors.StorageError("create directory "+dir, err)
		}
	}
	return nil
}

// Root returns the directory all names are resolved against
func (s *FileStore) Root() string {
	return s.rootPath
}

func (s *FileStore) resolve(name string) (string, error) {
	if name == "" || name == "." {
		return s.rootPath, nil
	}
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", errors.InvalidArgumentError("path %q escapes the storage root", name)
	}
	return filepath.Join(s.rootPath, local), nil
}

// Save writes data to a temporary file next to the target and renames it
// into place, so readers see either the old or the new content
func (s *FileStore) Save(name string, data []byte) error {
	fullPath, err := s.resolve(name)
	if err != nil {
		return err
	}
	if fullPath == s.rootPath {
		return errors.InvalidArgumentError("path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return errors.StorageError("create directory for "+name, err)
	}

	tmpPath := fullPath + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return errors.StorageError("write "+name, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		_ = os.Remove(tmpPath)
		return errors.StorageError("replace "+name, err)
	}

	s.logger.Debug("saved blob", "name", name, "bytes", len(data))
	return nil
}

// Load reads the blob stored at name
func (s *FileStore) Load(name string) ([]byte, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFoundError(name, err)
		}
		return nil, errors.StorageError("read "+name, err)
	}
	return data, nil
}

// Delete removes the blob stored at name
func (s *FileStore) Delete(name string) (bool, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return false, err
	}
	if fullPath == s.rootPath {
		return false, errors.InvalidArgumentError("path cannot be empty")
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.StorageError("delete "+name, err)
	}
	s.logger.Debug("deleted blob", "name", name)
	return true, nil
}

// List returns the regular files directly inside dir. A missing directory
// lists as empty.
func (s *FileStore) List(dir string) ([]string, error) {
	fullPath, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.StorageError("list "+dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.Contains(entry.Name(), ".tmp-") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Join builds a store name from path elements
func Join(elem ...string) string {
	var parts []string
	for _, e := range elem {
		if e != "" && e != "." {
			parts = append(parts, strings.Trim(e, "/"))
		}
	}
	return strings.Join(parts, "/")
}
