package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dpshade/book-editor/internal/clipboard"
	"github.com/dpshade/book-editor/internal/errors"
	"github.com/dpshade/book-editor/internal/models"
	"github.com/dpshade/book-editor/internal/renderer"
	"github.com/dpshade/book-editor/internal/ui"
)

func newDocumentCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "doc",
		Aliases: []string{"document"},
		Short:   "Manage documents",
		Long: `Manage documents. A document is addressed either by its title, which is
turned into a file name, or by the stored file name ending in .json.`,
	}
	cmd.AddCommand(
		newDocNewCommand(app),
		newDocShowCommand(app),
		newDocListCommand(app),
		newDocSetCommand(app),
		newDocMetaCommand(app),
		newDocDeleteCommand(app),
		newDocPreviewCommand(app),
		newDocExportCommand(app),
		newDocImportCommand(app),
		newDocStatsCommand(app),
	)
	return cmd
}

// openDocument loads a document and makes it current
func (a *App) openDocument(path string) (*models.Document, error) {
	doc, ok := a.Editor.LoadDocument(path)
	if !ok {
		return nil, errors.NotFoundError("document " + path)
	}
	return doc, nil
}

// saveCurrent writes the current document back to where it was loaded from,
// or derives the file name from its title
func (a *App) saveCurrent(path string) error {
	saved, err := a.Editor.SaveDocument(path)
	if err != nil {
		return err
	}
	if !saved {
		return errors.NewAppError(errors.ErrCodeStorageFailure, "document could not be written")
	}
	return nil
}

// selectTemplate selects name for previews, failing when it does not exist
func (a *App) selectTemplate(name string) error {
	if !a.Editor.SetTemplate(name) {
		_, err := a.requireTemplate(name)
		return err
	}
	return nil
}

func newDocNewCommand(app *App) *cobra.Command {
	var (
		author  string
		content string
		file    string
	)
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create and save a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if author == "" {
				author = app.Config.Editor.DefaultAuthor
			}
			if app.Editor.DocumentExists(args[0]) {
				return app.fail(errors.AlreadyExistsError("document " + args[0]).
					WithDetails("change it with: book-editor doc set " + args[0]))
			}
			if _, err := app.Editor.NewDocument(args[0], author); err != nil {
				return app.fail(err)
			}
			if file != "" {
				text, err := readInput(cmd, file)
				if err != nil {
					return app.fail(err)
				}
				content = text
			}
			if content != "" {
				if err := app.Editor.SetContent(content); err != nil {
					return app.fail(err)
				}
			}
			if err := app.saveCurrent(""); err != nil {
				return app.fail(err)
			}
			printSuccess(cmd.OutOrStdout(), "Created %s", app.Editor.CurrentPath())
			return nil
		},
	}
	cmd.Flags().StringVarP(&author, "author", "a", "", "author (defaults to editor.default_author)")
	cmd.Flags().StringVar(&content, "content", "", "initial content")
	cmd.Flags().StringVar(&file, "file", "", "read initial content from a file (- for stdin)")
	return cmd
}

func newDocShowCommand(app *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <document>",
		Short: "Show a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.openDocument(args[0])
			if err != nil {
				return app.fail(err)
			}
			out := cmd.OutOrStdout()
			meta := doc.Metadata()
			printTitle(out, meta.Title)
			printField(out, "Author", meta.Author)
			printField(out, "Version", meta.Version)
			printField(out, "Created", models.FormatTimestamp(meta.CreatedAt))
			printField(out, "Updated", models.FormatTimestamp(meta.UpdatedAt))
			fmt.Fprintln(out)

			if raw || doc.Content() == "" {
				fmt.Fprintln(out, doc.Content())
				return nil
			}
			term, err := renderer.NewTerminal(app.Config.Editor.GlamourStyle, app.Config.Editor.WordWrap)
			if err != nil {
				app.Logger.Debug("terminal renderer unavailable", "error", err)
				fmt.Fprintln(out, doc.Content())
				return nil
			}
			rendered, err := term.Render(doc.Content())
			if err != nil {
				app.Logger.Debug("failed to render document", "error", err)
				rendered = doc.Content()
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the content without terminal formatting")
	return cmd
}

func newDocListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List documents, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := app.Editor.ListDocuments()
			if len(docs) == 0 {
				printMuted(cmd.OutOrStdout(), "No documents found")
				return nil
			}
			for _, d := range docs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %-24s v%-4d %s\n",
					d.File, d.Title, d.Version, mutedStyle.Render(d.Author))
			}
			return nil
		},
	}
}

func newDocSetCommand(app *App) *cobra.Command {
	var (
		content string
		file    string
	)
	cmd := &cobra.Command{
		Use:   "set <document>",
		Short: "Replace a document's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.openDocument(args[0]); err != nil {
				return app.fail(err)
			}
			if file != "" {
				text, err := readInput(cmd, file)
				if err != nil {
					return app.fail(err)
				}
				content = text
			}
			before, _ := app.Editor.Current()
			if err := app.Editor.SetContent(content); err != nil {
				return app.fail(err)
			}
			after, _ := app.Editor.Current()
			if after.Version() == before.Version() {
				printMuted(cmd.OutOrStdout(), "Content unchanged")
				return nil
			}
			if err := app.saveCurrent(args[0]); err != nil {
				return app.fail(err)
			}
			printSuccess(cmd.OutOrStdout(), "Saved %s (version %d)", app.Editor.CurrentPath(), after.Version())
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVar(&file, "file", "", "read the content from a file (- for stdin)")
	return cmd
}

func newDocMetaCommand(app *App) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "meta <document>",
		Short: "Change a document's title or author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.openDocument(args[0]); err != nil {
				return app.fail(err)
			}
			var update models.MetadataUpdate
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("author") {
				update.Author = &author
			}
			changed, err := app.Editor.UpdateMetadata(update)
			if err != nil {
				return app.fail(err)
			}
			if !changed {
				printMuted(cmd.OutOrStdout(), "Metadata unchanged")
				return nil
			}
			// the file keeps its name when the title changes
			if err := app.saveCurrent(args[0]); err != nil {
				return app.fail(err)
			}
			printSuccess(cmd.OutOrStdout(), "Updated %s", app.Editor.CurrentPath())
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&author, "author", "", "new author")
	return cmd
}

func newDocDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <document>",
		Aliases: []string{"rm"},
		Short:   "Delete a document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Editor.DeleteDocument(args[0]) {
				return app.fail(errors.NotFoundError("document " + args[0]))
			}
			printSuccess(cmd.OutOrStdout(), "Deleted %s", args[0])
			return nil
		},
	}
}

func newDocPreviewCommand(app *App) *cobra.Command {
	var (
		template string
		page     bool
		copyHTML bool
	)
	cmd := &cobra.Command{
		Use:   "preview <document>",
		Short: "Render a document as HTML, optionally through a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.openDocument(args[0])
			if err != nil {
				return app.fail(err)
			}
			if template != "" {
				if err := app.selectTemplate(template); err != nil {
					return app.fail(err)
				}
			}
			html, err := app.Editor.Preview()
			if err != nil {
				return app.fail(err)
			}
			if page {
				html = renderer.Page(doc.Title(), html)
			}

			if copyHTML {
				message, err := clipboard.New().CopyWithFallback(html)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), clipboard.GetInstallInstructions())
					return app.fail(errors.Wrap(err, errors.ErrCodeInternalError, "failed to copy preview"))
				}
				printSuccess(cmd.OutOrStdout(), "%s", message)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", "", "wrap the content in this template")
	cmd.Flags().BoolVar(&page, "page", false, "wrap the result in a full HTML page")
	cmd.Flags().BoolVar(&copyHTML, "copy", false, "copy the HTML to the clipboard instead of printing it")
	return cmd
}

func newDocExportCommand(app *App) *cobra.Command {
	var (
		template string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "export <document>",
		Short: "Export a document as Markdown with a YAML header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.openDocument(args[0]); err != nil {
				return app.fail(err)
			}
			if template != "" {
				if err := app.selectTemplate(template); err != nil {
					return app.fail(err)
				}
			}
			data, err := app.Editor.ExportMarkdown()
			if err != nil {
				return app.fail(err)
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return app.fail(errors.StorageError("write "+output, err))
			}
			printSuccess(cmd.OutOrStdout(), "Exported to %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", "", "record this template in the header")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func newDocImportCommand(app *App) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "import <file.md>",
		Short: "Import a Markdown document exported by book-editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return app.fail(err)
			}
			if _, err := app.Editor.ImportMarkdown([]byte(text)); err != nil {
				return app.fail(err)
			}
			if err := app.saveCurrent(as); err != nil {
				return app.fail(err)
			}
			printSuccess(cmd.OutOrStdout(), "Imported %s", app.Editor.CurrentPath())
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "store under this name instead of the title")
	return cmd
}

func newDocStatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <document>",
		Short: "Show word, sentence and paragraph counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.openDocument(args[0]); err != nil {
				return app.fail(err)
			}
			stats, err := app.Editor.Stats()
			if err != nil {
				return app.fail(err)
			}
			out := cmd.OutOrStdout()
			printField(out, "Words", stats.Words)
			printField(out, "Characters", stats.Characters)
			printField(out, "Lines", stats.Lines)
			printField(out, "Paragraphs", stats.Paragraphs)
			printField(out, "Sentences", stats.Sentences)
			printField(out, "Average word length", stats.AvgWordLength)
			printField(out, "Average sentence length", stats.AvgSentenceLength)
			return nil
		},
	}
}

func newEditCommand(app *App) *cobra.Command {
	var (
		template string
		author   string
	)
	cmd := &cobra.Command{
		Use:   "edit <document>",
		Short: "Open a document in the terminal editor, creating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := app.Editor.LoadDocument(args[0]); !ok {
				if author == "" {
					author = app.Config.Editor.DefaultAuthor
				}
				if _, err := app.Editor.NewDocument(args[0], author); err != nil {
					return app.fail(err)
				}
			}
			if template != "" {
				if err := app.selectTemplate(template); err != nil {
					return app.fail(err)
				}
			}
			term, err := renderer.NewTerminal(app.Config.Editor.GlamourStyle, app.Config.Editor.WordWrap)
			if err != nil {
				return app.fail(errors.Wrap(err, errors.ErrCodeInternalError, "failed to create preview renderer"))
			}
			return ui.Run(ui.NewModel(app.Editor, term, app.Logger, args[0]))
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", "", "template used by the HTML preview")
	cmd.Flags().StringVarP(&author, "author", "a", "", "author for a new document")
	return cmd
}
