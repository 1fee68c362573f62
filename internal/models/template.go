package models

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/dpshade/book-editor/internal/errors"
)

// Format selects how template content is converted during rendering
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// Valid reports whether f is a supported format
func (f Format) Valid() bool {
	switch f {
	case FormatMarkdown, FormatHTML, FormatText:
		return true
	}
	return false
}

// Converter turns Markdown into HTML
type Converter interface {
	ToHTML(markdown string) (string, error)
}

// Metadata describes a template
type Metadata struct {
	Description string
	Tags        []string
	Format      Format
}

// Copy returns an independent copy of m
func (m Metadata) Copy() Metadata {
	m.Tags = append([]string{}, m.Tags...)
	return m
}

// Template is a named, categorized bundle of styles and layouts used to wrap
// rendered content
type Template struct {
	name     string
	category string
	metadata Metadata
	styles   Styles
	layouts  []Properties
}

// TemplateOption configures a new Template
type TemplateOption func(*Template)

// WithDescription sets the template description
func WithDescription(description string) TemplateOption {
	return func(t *Template) { t.metadata.Description = description }
}

// WithTags sets the template tags
func WithTags(tags ...string) TemplateOption {
	return func(t *Template) { t.metadata.Tags = append([]string{}, tags...) }
}

// WithFormat sets the template format
func WithFormat(format Format) TemplateOption {
	return func(t *Template) { t.metadata.Format = format }
}

// WithDefaultStyles seeds the template with the classic border and the
// standard page layout
func WithDefaultStyles() TemplateOption {
	return func(t *Template) {
		if border, ok := VintageBorder("classic"); ok {
			t.styles[StyleBorders] = border
		}
		if layout, ok := PageLayout("standard"); ok {
			t.layouts = append(t.layouts, layout)
		}
	}
}

// NewTemplate creates a template with empty style categories and markdown format
func NewTemplate(name, category string, opts ...TemplateOption) (*Template, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.InvalidArgumentError("template name cannot be empty")
	}
	if strings.TrimSpace(category) == "" {
		return nil, errors.InvalidArgumentError("template category cannot be empty")
	}

	t := &Template{
		name:     name,
		category: category,
		metadata: Metadata{Tags: []string{}, Format: FormatMarkdown},
		styles:   Styles{},
		layouts:  []Properties{},
	}
	for _, c := range KnownStyleCategories {
		t.styles[c] = StyleSet{}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Template) Name() string     { return t.name }
func (t *Template) Category() string { return t.category }

// Metadata returns a copy of the template metadata
func (t *Template) Metadata() Metadata { return t.metadata.Copy() }

// Styles returns a deep copy of the template styles
func (t *Template) Styles() Styles { return t.styles.Copy() }

// Layouts returns a deep copy of the template layouts
func (t *Template) Layouts() []Properties {
	out := make([]Properties, len(t.layouts))
	for i, layout := range t.layouts {
		out[i] = layout.Copy()
	}
	return out
}

// SetMetadata replaces the template metadata
func (t *Template) SetMetadata(m Metadata) {
	t.metadata = m.Copy()
}

// AddStyle merges properties into styles[category][name]
func (t *Template) AddStyle(category, name string, properties Properties) error {
	if strings.TrimSpace(category) == "" {
		return errors.InvalidArgumentError("style category cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return errors.InvalidArgumentError("style name cannot be empty")
	}
	if properties == nil {
		return errors.InvalidArgumentError("style properties must be a mapping")
	}

	set, ok := t.styles[category]
	if !ok || set == nil {
		set = StyleSet{}
		t.styles[category] = set
	}
	existing, ok := set[name]
	if !ok || existing == nil {
		existing = Properties{}
		set[name] = existing
	}
	for k, v := range properties {
		existing[k] = v
	}
	return nil
}

// AddLayout appends a copy of properties to the layout list
func (t *Template) AddLayout(properties Properties) error {
	if len(properties) == 0 {
		return errors.InvalidArgumentError("layout cannot be empty")
	}
	t.layouts = append(t.layouts, properties.Copy())
	return nil
}

// Validate checks metadata, styles and layouts in that order and returns the
// first violation found
func (t *Template) Validate() error {
	if err := t.ValidateMetadata(); err != nil {
		return err
	}
	if err := t.ValidateStyles(); err != nil {
		return err
	}
	return t.ValidateLayouts()
}

// ValidateMetadata checks the format. Tags may be any strings, blank ones
// included; their shape is checked when a template is read from a map.
func (t *Template) ValidateMetadata() error {
	if !t.metadata.Format.Valid() {
		return errors.ValidationError("invalid format %q", t.metadata.Format).
			WithDetails("format must be one of markdown, html, text")
	}
	return nil
}

// ValidateStyles checks that every category, style name and property key is named
func (t *Template) ValidateStyles() error {
	for category, set := range t.styles {
		if strings.TrimSpace(category) == "" {
			return errors.ValidationError("style category name is empty")
		}
		for name, props := range set {
			if strings.TrimSpace(name) == "" {
				return errors.ValidationError("style in %q has an empty name", category)
			}
			if props == nil {
				return errors.ValidationError("style %s.%s must be a mapping", category, name)
			}
			for key := range props {
				if strings.TrimSpace(key) == "" {
					return errors.ValidationError("style %s.%s has an empty property", category, name)
				}
			}
		}
	}
	return nil
}

// ValidateLayouts checks that every layout entry is a non-empty mapping
func (t *Template) ValidateLayouts() error {
	for i, layout := range t.layouts {
		if len(layout) == 0 {
			return errors.ValidationError("layout %d is empty", i)
		}
		for key := range layout {
			if strings.TrimSpace(key) == "" {
				return errors.ValidationError("layout %d has an empty property", i)
			}
		}
	}
	return nil
}

// BorderCSS returns the inline style built from the borders category
func (t *Template) BorderCSS() string {
	return FlattenCSS(t.styles.Borders().Ordered()...)
}

// ContentCSS returns the inline style built from fonts, text, background and
// every layout, in that order
func (t *Template) ContentCSS() string {
	var entries []Properties
	entries = append(entries, t.styles.Fonts().Ordered()...)
	entries = append(entries, t.styles.Text().Ordered()...)
	entries = append(entries, t.styles.Background().Ordered()...)
	entries = append(entries, t.layouts...)
	return FlattenCSS(entries...)
}

// Render converts content according to the template format and wraps it in
// a border container and a content container carrying the template styles.
// conv is only consulted for markdown templates.
func (t *Template) Render(content string, conv Converter) (string, error) {
	if content == "" {
		return "", errors.InvalidArgumentError("content cannot be empty")
	}

	var body string
	switch t.metadata.Format {
	case FormatMarkdown:
		if conv == nil {
			return "", errors.InvalidArgumentError("markdown converter is required")
		}
		converted, err := conv.ToHTML(content)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeInternalError, "markdown conversion failed")
		}
		body = converted
	case FormatHTML:
		body = content
	case FormatText:
		body = "<pre>" + html.EscapeString(content) + "</pre>"
	default:
		return "", errors.ValidationError("invalid format %q", t.metadata.Format)
	}

	return fmt.Sprintf(`<div class="template-border" style="%s"><div class="template-content" style="%s">%s</div></div>`,
		html.EscapeString(t.BorderCSS()), html.EscapeString(t.ContentCSS()), body), nil
}

// Merge absorbs other: metadata is overwritten, styles are unioned with
// other winning on collision, and other's layouts are appended
func (t *Template) Merge(other *Template) error {
	if other == nil {
		return errors.InvalidArgumentError("cannot merge a nil template")
	}
	t.metadata = other.metadata.Copy()
	t.MergeStyles(other.styles)
	t.MergeLayouts(other.layouts)
	return nil
}

// MergeStyles unions styles into the template, styles winning on collision
func (t *Template) MergeStyles(styles Styles) {
	t.styles = MergeStyles(t.styles, styles)
}

// MergeLayouts appends copies of layouts
func (t *Template) MergeLayouts(layouts []Properties) {
	for _, layout := range layouts {
		t.layouts = append(t.layouts, layout.Copy())
	}
}

// Copy returns an independent deep copy
func (t *Template) Copy() *Template {
	return &Template{
		name:     t.name,
		category: t.category,
		metadata: t.metadata.Copy(),
		styles:   t.styles.Copy(),
		layouts:  t.Layouts(),
	}
}

// ToMap returns the plain nested-mapping form used for persistence
func (t *Template) ToMap() map[string]any {
	tags := make([]any, len(t.metadata.Tags))
	for i, tag := range t.metadata.Tags {
		tags[i] = tag
	}

	styles := make(map[string]any, len(t.styles))
	for category, set := range t.styles {
		named := make(map[string]any, len(set))
		for name, props := range set {
			named[name] = propertiesToMap(props)
		}
		styles[category] = named
	}

	layouts := make([]any, len(t.layouts))
	for i, layout := range t.layouts {
		layouts[i] = propertiesToMap(layout)
	}

	return map[string]any{
		"name":     t.name,
		"category": t.category,
		"metadata": map[string]any{
			"description": t.metadata.Description,
			"tags":        tags,
			"format":      string(t.metadata.Format),
		},
		"styles":  styles,
		"layouts": layouts,
	}
}

func propertiesToMap(p Properties) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// TemplateFromMap rebuilds a template from its ToMap form. Missing name or
// category is an INVALID_ARGUMENT; wrongly shaped sections are a VALIDATION_ERROR.
func TemplateFromMap(data map[string]any) (*Template, error) {
	if data == nil {
		return nil, errors.InvalidArgumentError("template data must be a mapping")
	}
	name, ok := stringField(data, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return nil, errors.InvalidArgumentError("template data missing name")
	}
	category, ok := stringField(data, "category")
	if !ok || strings.TrimSpace(category) == "" {
		return nil, errors.InvalidArgumentError("template data missing category")
	}

	t := &Template{
		name:     name,
		category: category,
		metadata: Metadata{Tags: []string{}, Format: FormatMarkdown},
		styles:   Styles{},
		layouts:  []Properties{},
	}

	if raw, present := data["metadata"]; present {
		meta, ok := asMapping(raw)
		if !ok {
			return nil, errors.ValidationError("metadata must be a mapping")
		}
		if raw, present := meta["description"]; present {
			s, ok := raw.(string)
			if !ok {
				return nil, errors.ValidationError("metadata.description must be a string")
			}
			t.metadata.Description = s
		}
		if raw, present := meta["tags"]; present {
			tags, err := asStringSlice(raw, "metadata.tags")
			if err != nil {
				return nil, errors.ValidationError("%v", err)
			}
			t.metadata.Tags = tags
		}
		if raw, present := meta["format"]; present {
			s, ok := raw.(string)
			if !ok {
				return nil, errors.ValidationError("metadata.format must be a string")
			}
			t.metadata.Format = Format(s)
		}
	}

	if raw, present := data["styles"]; present {
		categories, ok := asMapping(raw)
		if !ok {
			return nil, errors.ValidationError("styles must be a mapping")
		}
		for category, rawSet := range categories {
			named, ok := asMapping(rawSet)
			if !ok {
				return nil, errors.ValidationError("styles.%s must be a mapping", category)
			}
			set := make(StyleSet, len(named))
			for name, rawProps := range named {
				props, err := asProperties(rawProps, "styles."+category+"."+name)
				if err != nil {
					return nil, errors.ValidationError("%v", err)
				}
				set[name] = props
			}
			t.styles[category] = set
		}
	}

	if raw, present := data["layouts"]; present {
		list, ok := raw.([]any)
		if !ok {
			return nil, errors.ValidationError("layouts must be a list")
		}
		for i, rawLayout := range list {
			props, err := asProperties(rawLayout, fmt.Sprintf("layouts[%d]", i))
			if err != nil {
				return nil, errors.ValidationError("%v", err)
			}
			t.layouts = append(t.layouts, props)
		}
	}

	return t, nil
}

// MarshalJSON encodes the template in its persisted form
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// UnmarshalJSON decodes the persisted form
func (t *Template) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return errors.InvalidArgumentError("template data must be a mapping")
	}
	parsed, err := TemplateFromMap(m)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// Save validates the template and writes it to path
func (t *Template) Save(w BlobWriter, path string) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return writeJSON(w, path, t.ToMap())
}

// ReadTemplate loads the template stored at path. A missing file yields
// FILE_NOT_FOUND and unreadable content yields FILE_CORRUPTED.
func ReadTemplate(r BlobReader, path string) (*Template, error) {
	m, err := readMapping(r, path)
	if err != nil {
		return nil, err
	}
	t, err := TemplateFromMap(m)
	if err != nil {
		return nil, errors.FileCorruptedError(path, err)
	}
	return t, nil
}
