package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dpshade/book-editor/internal/errors"
	"github.com/dpshade/book-editor/internal/models"
	"github.com/dpshade/book-editor/internal/renderer"
)

func newCategoryCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage template categories",
	}

	var description string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Templates.AddCategory(args[0], description) {
				return app.fail(errors.InvalidArgumentError("category %q could not be added", args[0]).
					WithDetails("it may already exist or have an invalid name"))
			}
			printSuccess(cmd.OutOrStdout(), "Added category %s", args[0])
			return nil
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "category description")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptions := app.Templates.CategoryDescriptions()
			for _, name := range app.Templates.Categories() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", name, mutedStyle.Render(descriptions[name]))
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an unused category",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := app.Templates.RemoveCategory(args[0])
			if err != nil {
				return app.fail(err)
			}
			if !removed {
				return app.fail(errors.NotFoundError("category " + args[0]))
			}
			printSuccess(cmd.OutOrStdout(), "Removed category %s", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

func newTemplateCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Manage templates",
	}
	cmd.AddCommand(
		newTemplateCreateCommand(app),
		newTemplateShowCommand(app),
		newTemplateListCommand(app),
		newTemplateSearchCommand(app),
		newTemplateDeleteCommand(app),
		newTemplateAddStyleCommand(app),
		newTemplateAddBorderCommand(app),
		newTemplateAddLayoutCommand(app),
		newTemplateMergeCommand(app),
		newTemplateRenderCommand(app),
	)
	return cmd
}

// requireTemplate loads a template, suggesting a close match when it is missing
func (a *App) requireTemplate(name string) (*models.Template, error) {
	if tmpl, ok := a.Templates.GetTemplate(name); ok {
		return tmpl, nil
	}
	err := errors.NotFoundError("template " + name)
	if suggestion, ok := a.Templates.Suggest(name); ok {
		err = err.WithDetails(fmt.Sprintf("did you mean %q?", suggestion))
	}
	return nil, err
}

// saveTemplate stores tmpl and turns a false result into an error
func (a *App) saveTemplate(tmpl *models.Template) error {
	if !a.Templates.HasCategory(tmpl.Category()) {
		return errors.InvalidArgumentError("category %q does not exist", tmpl.Category()).
			WithDetails("add it with: book-editor category add " + tmpl.Category())
	}
	saved, err := a.Templates.SaveTemplate(tmpl)
	if err != nil {
		return err
	}
	if !saved {
		return errors.NewAppError(errors.ErrCodeStorageFailure, fmt.Sprintf("template %q could not be written", tmpl.Name()))
	}
	return nil
}

func newTemplateCreateCommand(app *App) *cobra.Command {
	var (
		category    string
		description string
		tags        []string
		format      string
		defaults    bool
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []models.TemplateOption{
				models.WithDescription(description),
				models.WithTags(tags...),
				models.WithFormat(models.Format(format)),
			}
			if defaults {
				opts = append(opts, models.WithDefaultStyles())
			}
			tmpl, err := models.NewTemplate(args[0], category, opts...)
			if err != nil {
				return app.fail(err)
			}
			if _, exists := app.Templates.GetTemplate(tmpl.Name()); exists {
				return app.fail(errors.AlreadyExistsError("template " + tmpl.Name()))
			}
			if err := app.saveTemplate(tmpl); err != nil {
				return app.fail(err)
			}
			printSuccess(cmd.OutOrStdout(), "Created template %s in %s", tmpl.Name(), tmpl.Category())
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "general", "template category")
	cmd.Flags().StringVarP(&description, "description", "d", "", "template description")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "comma separated tags")
	cmd.Flags().StringVarP(&format, "format", "f", string(models.FormatMarkdown), "content format (markdown, html or text)")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "start from the classic border and standard page layout")
	return cmd
}

func newTemplateShowCommand(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := app.requireTemplate(args[0])
			if err != nil {
				return app.fail(err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(tmpl, "", "  ")
				if err != nil {
					return app.fail(errors.Wrap(err, errors.ErrCodeInternalError, "failed to encode template"))
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			meta := tmpl.Metadata()
			printTitle(out, tmpl.Name())
			printField(out, "Category", tmpl.Category())
			printField(out, "Format", meta.Format)
			printField(out, "Description", meta.Description)
			printField(out, "Tags", joinTags(meta.Tags))
			for _, category := range models.KnownStyleCategories {
				set := tmpl.Styles().Category(category)
				for _, name := range set.Names() {
					printField(out, category+"."+name, models.FlattenCSS(set[name]))
				}
			}
			for i, layout := range tmpl.Layouts() {
				printField(out, fmt.Sprintf("layout[%d]", i), models.FlattenCSS(layout))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON form")
	return cmd
}

func newTemplateListCommand(app *App) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List templates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := app.Templates.ListTemplates(category)
			if len(names) == 0 {
				printMuted(cmd.OutOrStdout(), "No templates found")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only list this category")
	return cmd
}

func newTemplateSearchCommand(app *App) *cobra.Command {
	var fuzzy bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search templates by name, description and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := app.Templates.SearchTemplates(args[0])
			if fuzzy {
				results = app.Templates.FuzzySearch(args[0])
			}
			if len(results) == 0 {
				printMuted(cmd.OutOrStdout(), "No templates match %q", args[0])
				return nil
			}
			for _, s := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-12s %s\n", s.Name, s.Category, mutedStyle.Render(s.Description))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "rank by fuzzy match on the name")
	return cmd
}

func newTemplateDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a template",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Templates.DeleteTemplate(args[0]) {
				return app.fail(errors.NotFoundError("template " + args[0]))
			}
			printSuccess(cmd.OutOrStdout(), "Deleted template %s", args[0])
			return nil
		},
	}
}

func newTemplateAddStyleCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add-style <template> <category> <style> key=value...",
		Short: "Add or extend a named style",
		Long: `Add CSS properties to a named style in one of the style categories
(borders, colors, fonts, text, background). Existing properties of the same
style are kept unless overridden.

Example:
  book-editor template add-style Vintage fonts body font-family=Georgia font-size=1.1em`,
		Args: cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := app.requireTemplate(args[0])
			if err != nil {
				return app.fail(err)
			}
			props, err := parseProperties(args[3:])
			if err != nil {
				return app.fail(err)
			}
			if err := tmpl.AddStyle(args[1], args[2], props); err != nil {
				return app.fail(err)
			}
			if err := app.saveTemplate(tmpl); err != nil {
				return app.fail(err)
			}
			printSuccess(cmd.OutOrStdout(), "Updated %s.%s on %s", args[1], args[2], tmpl.Name())
			return nil
		},
	}
}

func newTemplateAddBorderCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add-border <template> <preset>",
		Short: "Apply a vintage border preset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := app.requireTemplate(args[0])
			if err != nil {
				return app.fail(err)
			}
			border, ok := models.VintageBorder(args[1])
			if !ok {
				return app.fail(errors.InvalidArgumentError("unknown border preset %q", args[1]).
					WithDetails(fmt.Sprintf("available: %v", models.VintageBorderNames())))
			}
			tmpl.MergeStyles(models.Styles{models.StyleBorders: border})
			if err := app.saveTemplate(tmpl); err != nil {
				return app.fail(err)
			}
			printSuccess(cmd.OutOrStdout(), "Applied %s border to %s", args[1], tmpl.Name())
			return nil
		},
	}
}

func newTemplateAddLayoutCommand(app *App) *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "add-layout <template> [key=value...]",
		Short: "Append a layout rule",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := app.requireTemplate(args[0])
			if err != nil {
				return app.fail(err)
			}
			props, err := parseProperties(args[1:])
			if err != nil {
				return app.fail(err)
			}
			if preset != "" {
				layout, ok := models.PageLayout(preset)
				if !ok {
					return app.fail(errors.InvalidArgumentError("unknown layout preset %q", preset).
						WithDetails(fmt.Sprintf("available: %v", models.PageLayoutNames())))
				}
				for k, v := range props {
					layout[k] = v
				}
				props = layout
			}
			if err := tmpl.AddLayout(props); err != nil {
				return app.fail(err)
			}
			if err := app.saveTemplate(tmpl); err != nil {
				return app.fail(err)
			}
			printSuccess(cmd.OutOrStdout(), "Added layout to %s", tmpl.Name())
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "start from a page layout preset")
	return cmd
}

func newTemplateMergeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <target> <source>",
		Short: "Merge the source template's metadata, styles and layouts into the target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := app.requireTemplate(args[0])
			if err != nil {
				return app.fail(err)
			}
			source, err := app.requireTemplate(args[1])
			if err != nil {
				return app.fail(err)
			}
			if err := target.Merge(source); err != nil {
				return app.fail(err)
			}
			if err := app.saveTemplate(target); err != nil {
				return app.fail(err)
			}
			printSuccess(cmd.OutOrStdout(), "Merged %s into %s", source.Name(), target.Name())
			return nil
		},
	}
}

func newTemplateRenderCommand(app *App) *cobra.Command {
	var (
		text  string
		file  string
		page  bool
		title string
	)
	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render content through a template as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := app.requireTemplate(args[0])
			if err != nil {
				return app.fail(err)
			}
			content := text
			if file != "" {
				if content, err = readInput(cmd, file); err != nil {
					return app.fail(err)
				}
			}
			html, err := tmpl.Render(content, app.Converter)
			if err != nil {
				return app.fail(err)
			}
			if page {
				if title == "" {
					title = tmpl.Name()
				}
				html = renderer.Page(title, html)
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "content to render")
	cmd.Flags().StringVar(&file, "file", "", "read content from a file (- for stdin)")
	cmd.Flags().BoolVar(&page, "page", false, "wrap the result in a full HTML page")
	cmd.Flags().StringVar(&title, "title", "", "page title (defaults to the template name)")
	return cmd
}

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in border and layout presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			printTitle(out, "Vintage borders")
			for _, name := range models.VintageBorderNames() {
				border, _ := models.VintageBorder(name)
				for _, style := range border.Names() {
					printField(out, name+"."+style, models.FlattenCSS(border[style]))
				}
			}
			printTitle(out, "Page layouts")
			for _, name := range models.PageLayoutNames() {
				layout, _ := models.PageLayout(name)
				printField(out, name, models.FlattenCSS(layout))
			}
			return nil
		},
	}
}
