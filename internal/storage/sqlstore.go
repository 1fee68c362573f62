package storage

import (
	stderrors "errors"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/dpshade/book-editor/internal/errors"
)

// blob is one row of the blobs table
type blob struct {
	Name      string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt time.Time
}

func (blob) TableName() string { return "blobs" }

// SQLStore is a BlobStore kept in a single SQLite database
type SQLStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// OpenSQLStore opens (creating if needed) the SQLite database at dsn
func OpenSQLStore(dsn string, log *slog.Logger) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.InvalidArgumentError("sqlite path cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, errors.StorageError("open sqlite database", err)
	}
	if err := db.AutoMigrate(&blob{}); err != nil {
		return nil, errors.StorageError("migrate blobs table", err)
	}
	return &SQLStore{db: db, logger: log}, nil
}

// Close releases the database handle
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func cleanName(name string) (string, error) {
	if name == "" {
		return "", errors.InvalidArgumentError("path cannot be empty")
	}
	cleaned := path.Clean(strings.TrimPrefix(name, "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || name[0] == '/' {
		return "", errors.InvalidArgumentError("path %q escapes the storage root", name)
	}
	return cleaned, nil
}

// Save upserts the blob
func (s *SQLStore) Save(name string, data []byte) error {
	key, err := cleanName(name)
	if err != nil {
		return err
	}
	row := blob{Name: key, Data: data, UpdatedAt: time.Now()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return errors.StorageError("save "+name, err)
	}
	s.logger.Debug("saved blob", "name", key, "bytes", len(data))
	return nil
}

// Load returns the blob stored under name
func (s *SQLStore) Load(name string) ([]byte, error) {
	key, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	var row blob
	if err := s.db.First(&row, "name = ?", key).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.FileNotFoundError(name, err)
		}
		return nil, errors.StorageError("load "+name, err)
	}
	return row.Data, nil
}

// Delete removes the blob stored under name
func (s *SQLStore) Delete(name string) (bool, error) {
	key, err := cleanName(name)
	if err != nil {
		return false, err
	}
	res := s.db.Delete(&blob{}, "name = ?", key)
	if res.Error != nil {
		return false, errors.StorageError("delete "+name, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// List returns the names directly under dir, without the dir prefix
func (s *SQLStore) List(dir string) ([]string, error) {
	prefix := ""
	if dir != "" && dir != "." {
		cleaned, err := cleanName(dir)
		if err != nil {
			return nil, err
		}
		prefix = cleaned + "/"
	}

	var keys []string
	err := s.db.Model(&blob{}).
		Where("name LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Pluck("name", &keys).Error
	if err != nil {
		return nil, errors.StorageError("list "+dir, err)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		rest := strings.TrimPrefix(key, prefix)
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		names = append(names, rest)
	}
	sort.Strings(names)
	return names, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
