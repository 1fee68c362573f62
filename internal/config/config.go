// Package config loads the book editor configuration.
//
// Values are resolved in this order, later sources winning: built-in
// defaults, the config file (book-editor.yaml), a .env file in the working
// directory, and BOOK_EDITOR_* environment variables. The resulting Config is
// built once at start-up and passed to the components that need it.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the editor reads
const EnvPrefix = "BOOK_EDITOR"

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the resolved configuration
type Config struct {
	RootDir      string        `mapstructure:"root_dir"`
	TemplatesDir string        `mapstructure:"templates_dir"`
	DocumentsDir string        `mapstructure:"documents_dir"`
	Storage      StorageConfig `mapstructure:"storage"`
	Log          LogConfig     `mapstructure:"log"`
	Editor       EditorConfig  `mapstructure:"editor"`

	// ConfigFile is the file the values were read from, if any
	ConfigFile string `mapstructure:"-"`
}

// StorageConfig selects where templates and documents are kept
type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LogConfig controls logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// EditorConfig holds editing defaults
type EditorConfig struct {
	DefaultAuthor string `mapstructure:"default_author"`
	GlamourStyle  string `mapstructure:"glamour_style"`
	WordWrap      int    `mapstructure:"word_wrap"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root_dir", "~/.book-editor")
	v.SetDefault("templates_dir", "templates")
	v.SetDefault("documents_dir", "documents")
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.sqlite_path", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("editor.default_author", "")
	v.SetDefault("editor.glamour_style", "")
	v.SetDefault("editor.word_wrap", 80)
}

// Load resolves the configuration. configFile may be empty, in which case
// $BOOK_EDITOR_CONFIG is consulted and then book-editor.yaml is looked up in
// the working directory and in ~/.book-editor. Only an explicitly named file
// is required to exist.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("book-editor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".book-editor"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	root, err := expandHome(c.RootDir)
	if err != nil {
		return err
	}
	c.RootDir = root

	for _, dir := range []string{c.TemplatesDir, c.DocumentsDir} {
		if dir == "" || filepath.IsAbs(dir) || !filepath.IsLocal(dir) {
			return fmt.Errorf("invalid config: %q must be a relative directory inside root_dir", dir)
		}
	}

	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	switch c.Storage.Backend {
	case BackendFile:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			c.Storage.SQLitePath = filepath.Join(c.RootDir, "book-editor.db")
		}
		if c.Storage.SQLitePath, err = expandHome(c.Storage.SQLitePath); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid config: unknown storage backend %q (want %s or %s)", c.Storage.Backend, BackendFile, BackendSQLite)
	}

	if c.Log.File != "" {
		if c.Log.File, err = expandHome(c.Log.File); err != nil {
			return err
		}
	}
	if c.Editor.WordWrap <= 0 {
		c.Editor.WordWrap = 80
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
