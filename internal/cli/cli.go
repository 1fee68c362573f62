// Package cli implements the book-editor command line on top of the template
// and document managers.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpshade/book-editor/internal/config"
	"github.com/dpshade/book-editor/internal/errors"
	"github.com/dpshade/book-editor/internal/logging"
	"github.com/dpshade/book-editor/internal/models"
	"github.com/dpshade/book-editor/internal/renderer"
	"github.com/dpshade/book-editor/internal/service"
	"github.com/dpshade/book-editor/internal/storage"
)

var version = "0.1.0"

// App holds everything a command needs. It is built once per invocation in
// the root command's pre-run hook.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Templates *service.TemplateManager
	Editor    *service.Editor
	Converter *renderer.Markdown

	errs    *errors.CLIErrorHandler
	closers []func() error
}

// Open wires the storage backend and the managers described by cfg
func Open(cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Converter: renderer.NewMarkdown(),
	}

	var store storage.BlobStore
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0755); err != nil {
			return nil, errors.StorageError("create database directory", err)
		}
		sqlStore, err := storage.OpenSQLStore(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, sqlStore.Close)
		store = sqlStore
	default:
		fileStore, err := storage.NewFileStore(cfg.RootDir, logger)
		if err != nil {
			return nil, errors.StorageError("resolve storage root", err)
		}
		if err := fileStore.Init(cfg.TemplatesDir, cfg.DocumentsDir); err != nil {
			return nil, err
		}
		store = fileStore
	}

	app.Templates = service.NewTemplateManager(store, cfg.TemplatesDir, logger)
	app.Editor = service.NewEditor(store, cfg.DocumentsDir, app.Templates, app.Converter, logger)
	return app, nil
}

// Close releases the storage backend and the log file
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// fail converts err into the message shown to the user
func (a *App) fail(err error) error {
	if a.errs == nil {
		return err
	}
	return a.errs.HandleError(err)
}

// NewRootCommand builds the command tree. Output goes to out; the error
// returned by Execute carries the message for stderr.
func NewRootCommand(out io.Writer) *cobra.Command {
	root, _ := newRootCommand(out)
	return root
}

// newRootCommand also returns the App the commands share so the caller can
// close it whether or not the command succeeded
func newRootCommand(out io.Writer) (*cobra.Command, *App) {
	var (
		configFile string
		verbose    bool
		app        = &App{}
	)

	root := &cobra.Command{
		Use:           "book-editor",
		Short:         "Write books with reusable HTML templates",
		Long:          "book-editor keeps styled templates and versioned documents, and previews documents wrapped in a template.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			logger, closeLog, err := logging.New(logging.Options{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				File:   cfg.Log.File,
			}, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if verbose {
				logger.Debug("configuration loaded", "file", cfg.ConfigFile, "root", cfg.RootDir, "backend", cfg.Storage.Backend)
			}

			opened, err := Open(cfg, logger)
			if err != nil {
				_ = closeLog()
				return errors.NewCLIErrorHandler(logger, verbose).HandleError(err)
			}
			opened.closers = append([]func() error{closeLog}, opened.closers...)
			opened.errs = errors.NewCLIErrorHandler(logger, verbose)
			*app = *opened
			return nil
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./book-editor.yaml or ~/.book-editor/book-editor.yaml)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "show error details")

	root.AddCommand(
		newCategoryCommand(app),
		newTemplateCommand(app),
		newDocumentCommand(app),
		newPresetsCommand(),
		newEditCommand(app),
	)
	return root, app
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	root, app := newRootCommand(os.Stdout)
	err := root.Execute()
	if closeErr := app.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseProperties turns key=value arguments into style properties
func parseProperties(args []string) (models.Properties, error) {
	props := models.Properties{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.InvalidArgumentError("expected key=value, got %q", arg)
		}
		props[key] = strings.TrimSpace(value)
	}
	return props, nil
}

// readInput returns the text of --file, reading stdin for "-"
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.FileNotFoundError(path, err)
	}
	return string(data), nil
}
