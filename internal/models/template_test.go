package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dpshade/book-editor/internal/errors"
)

// headingConverter handles the single Markdown construct these tests need
type headingConverter struct{}

func (headingConverter) ToHTML(markdown string) (string, error) {
	if strings.HasPrefix(markdown, "# ") {
		return "<h1>" + strings.TrimPrefix(markdown, "# ") + "</h1>\n", nil
	}
	return "<p>" + markdown + "</p>\n", nil
}

// memoryStore is an in-memory BlobReader/BlobWriter
type memoryStore map[string][]byte

func (m memoryStore) Save(name string, data []byte) error {
	m[name] = append([]byte{}, data...)
	return nil
}

func (m memoryStore) Load(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, errors.FileNotFoundError(name, nil)
	}
	return data, nil
}

func mustTemplate(t *testing.T, name, category string, opts ...TemplateOption) *Template {
	t.Helper()
	tmpl, err := NewTemplate(name, category, opts...)
	if err != nil {
		t.Fatalf("NewTemplate(%q, %q): %v", name, category, err)
	}
	return tmpl
}

func TestNewTemplateRequiresNameAndCategory(t *testing.T) {
	for _, tc := range []struct{ name, category string }{{"", "general"}, {"Guide", ""}, {"  ", "general"}} {
		_, err := NewTemplate(tc.name, tc.category)
		if !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("NewTemplate(%q, %q) error = %v, want INVALID_ARGUMENT", tc.name, tc.category, err)
		}
	}
}

func TestRenderMarkdownScenario(t *testing.T) {
	tmpl := mustTemplate(t, "Guide", "general")
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	out, err := tmpl.Render("# Hi", headingConverter{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"<h1>Hi</h1>", `class="template-border" style=""`, `class="template-content" style=""`} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "template-border") > strings.Index(out, "template-content") {
		t.Error("border container must wrap the content container")
	}
}

func TestRenderFormats(t *testing.T) {
	testCases := []struct {
		name     string
		format   Format
		content  string
		contains string
		code     errors.ErrorCode
	}{
		{name: "html passthrough", format: FormatHTML, content: "<em>x</em>", contains: "<em>x</em>"},
		{name: "text escaped", format: FormatText, content: "a < b", contains: "<pre>a &lt; b</pre>"},
		{name: "empty content", format: FormatHTML, content: "", code: errors.ErrCodeInvalidArgument},
		{name: "invalid format", format: Format("pdf"), content: "x", code: errors.ErrCodeValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tmpl := mustTemplate(t, "T", "general", WithFormat(tc.format))
			out, err := tmpl.Render(tc.content, nil)
			if tc.code != "" {
				if !errors.HasCode(err, tc.code) {
					t.Fatalf("expected %s, got %v", tc.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.Contains(out, tc.contains) {
				t.Errorf("output %q missing %q", out, tc.contains)
			}
		})
	}
}

func TestRenderCSS(t *testing.T) {
	tmpl := mustTemplate(t, "Styled", "general", WithFormat(FormatHTML))
	steps := []struct {
		category, name string
		props          Properties
	}{
		{StyleBorders, "frame", Properties{"border": "1px solid #000"}},
		{StyleFonts, "body", Properties{"font-family": `"Georgia"`, "font-size": "12pt"}},
		{StyleText, "body", Properties{"color": "#333"}},
		{StyleColors, "accent", Properties{"color": "red"}},
	}
	for _, s := range steps {
		if err := tmpl.AddStyle(s.category, s.name, s.props); err != nil {
			t.Fatal(err)
		}
	}
	if err := tmpl.AddLayout(Properties{"font-size": "14pt"}); err != nil {
		t.Fatal(err)
	}

	if got, want := tmpl.BorderCSS(), "border: 1px solid #000"; got != want {
		t.Errorf("BorderCSS = %q, want %q", got, want)
	}
	if got, want := tmpl.ContentCSS(), `font-family: "Georgia"; font-size: 14pt; color: #333`; got != want {
		t.Errorf("ContentCSS = %q, want %q", got, want)
	}

	out, err := tmpl.Render("<p>x</p>", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `style="font-family: &#34;Georgia&#34;; font-size: 14pt; color: #333"`) {
		t.Errorf("content style not escaped as expected:\n%s", out)
	}
}

func TestAddStyleAndLayoutArguments(t *testing.T) {
	tmpl := mustTemplate(t, "T", "general")

	if err := tmpl.AddStyle("", "x", Properties{"a": "b"}); !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("empty category: got %v", err)
	}
	if err := tmpl.AddStyle("fonts", "", Properties{"a": "b"}); !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("empty name: got %v", err)
	}
	if err := tmpl.AddStyle("fonts", "x", nil); !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("nil properties: got %v", err)
	}
	if err := tmpl.AddLayout(Properties{}); !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("empty layout: got %v", err)
	}

	_ = tmpl.AddStyle("fonts", "body", Properties{"font-size": "12pt"})
	_ = tmpl.AddStyle("fonts", "body", Properties{"font-family": "serif"})
	want := Properties{"font-size": "12pt", "font-family": "serif"}
	if diff := cmp.Diff(want, tmpl.Styles().Fonts()["body"]); diff != "" {
		t.Errorf("AddStyle should merge properties (-want +got):\n%s", diff)
	}

	layout := Properties{"margin": "0"}
	_ = tmpl.AddLayout(layout)
	_ = tmpl.AddLayout(layout)
	layout["margin"] = "changed"
	layouts := tmpl.Layouts()
	if len(layouts) != 2 {
		t.Fatalf("duplicate layouts must be kept, got %d", len(layouts))
	}
	if layouts[0]["margin"] != "0" {
		t.Error("AddLayout must store a copy")
	}
}

func TestBlankTagsAreValid(t *testing.T) {
	tmpl := mustTemplate(t, "T", "general", WithTags("ok", "", " "))
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	loaded, err := TemplateFromMap(tmpl.ToMap())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"ok", "", " "}, loaded.Metadata().Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateDetectsEachViolation(t *testing.T) {
	testCases := []struct {
		name  string
		build func(*Template)
	}{
		{"format", func(tm *Template) { tm.metadata.Format = "docx" }},
		{"style name", func(tm *Template) { tm.styles[StyleFonts][""] = Properties{"a": "b"} }},
		{"style shape", func(tm *Template) { tm.styles[StyleFonts]["body"] = nil }},
		{"layout", func(tm *Template) { tm.layouts = append(tm.layouts, Properties{}) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tmpl := mustTemplate(t, "T", "general")
			tc.build(tmpl)
			if err := tmpl.Validate(); !errors.HasCode(err, errors.ErrCodeValidation) {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}

	tmpl := mustTemplate(t, "T", "general")
	tmpl.metadata.Format = "docx"
	tmpl.layouts = append(tmpl.layouts, Properties{})
	if err := tmpl.Validate(); err == nil || !strings.Contains(err.Error(), "format") {
		t.Errorf("format must be reported first, got %v", err)
	}
	if err := tmpl.ValidateLayouts(); err == nil {
		t.Error("layout check must detect the empty layout independently")
	}
}

func TestMerge(t *testing.T) {
	a := mustTemplate(t, "A", "general", WithDescription("a"), WithTags("one"))
	_ = a.AddStyle(StyleBorders, "frame", Properties{"border": "1px"})
	_ = a.AddStyle(StyleBorders, "only-a", Properties{"padding": "1em"})
	_ = a.AddLayout(Properties{"margin": "0"})

	b := mustTemplate(t, "B", "fiction", WithDescription("b"), WithTags("two"), WithFormat(FormatHTML))
	_ = b.AddStyle(StyleBorders, "frame", Properties{"border": "3px double"})
	_ = b.AddLayout(Properties{"width": "40em"})

	if err := a.Merge(nil); !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("Merge(nil) = %v, want INVALID_ARGUMENT", err)
	}
	if err := a.Merge(b); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(Metadata{Description: "b", Tags: []string{"two"}, Format: FormatHTML}, a.Metadata()); diff != "" {
		t.Errorf("metadata (-want +got):\n%s", diff)
	}
	borders := a.Styles().Borders()
	if borders["frame"]["border"] != "3px double" {
		t.Errorf("other must win on collision, got %q", borders["frame"]["border"])
	}
	if _, ok := borders["only-a"]; !ok {
		t.Error("styles only in the receiver must remain")
	}
	wantLayouts := []Properties{{"margin": "0"}, {"width": "40em"}}
	if diff := cmp.Diff(wantLayouts, a.Layouts()); diff != "" {
		t.Errorf("layouts (-want +got):\n%s", diff)
	}
	if a.Name() != "A" || a.Category() != "general" {
		t.Error("merge must not change name or category")
	}

	b.layouts[0]["width"] = "changed"
	if a.Layouts()[1]["width"] != "40em" {
		t.Error("merged layouts must be deep copies")
	}
}

func TestCopyIsIndependent(t *testing.T) {
	orig := mustTemplate(t, "T", "general", WithTags("x"), WithDefaultStyles())
	dup := orig.Copy()

	_ = dup.AddStyle(StyleBorders, "frame", Properties{"border": "none"})
	_ = dup.AddLayout(Properties{"extra": "1"})
	dup.metadata.Tags[0] = "changed"

	if orig.styles[StyleBorders]["frame"]["border"] == "none" {
		t.Error("copy shares styles with original")
	}
	if len(orig.layouts) != 1 {
		t.Errorf("copy shares layouts with original: %d", len(orig.layouts))
	}
	if orig.metadata.Tags[0] != "x" {
		t.Error("copy shares tags with original")
	}

	_ = orig.AddStyle(StyleFonts, "body", Properties{"font": "serif"})
	if _, ok := dup.styles[StyleFonts]["body"]; ok {
		t.Error("original mutation leaked into copy")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	tmpl := mustTemplate(t, "T", "general", WithTags("a"), WithDefaultStyles())
	tmpl.Styles()[StyleBorders]["frame"]["border"] = "none"
	tmpl.Layouts()[0]["margin"] = "none"
	tmpl.Metadata().Tags[0] = "b"

	if tmpl.styles[StyleBorders]["frame"]["border"] == "none" {
		t.Error("Styles leaked internal state")
	}
	if tmpl.layouts[0]["margin"] == "none" {
		t.Error("Layouts leaked internal state")
	}
	if tmpl.metadata.Tags[0] != "a" {
		t.Error("Metadata leaked internal state")
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	orig := mustTemplate(t, "Round Trip", "fiction", WithDescription("desc"), WithTags("a", "b"), WithDefaultStyles())
	border, _ := VintageBorder("ornate")
	orig.MergeStyles(Styles{StyleBorders: border})
	_ = orig.AddLayout(Properties{"margin": "2em"})

	// through the map form directly and through JSON
	fromMap, err := TemplateFromMap(orig.ToMap())
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON Template
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatal(err)
	}

	for name, got := range map[string]*Template{"map": fromMap, "json": &fromJSON} {
		if diff := cmp.Diff(orig.ToMap(), got.ToMap()); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestTemplateFromMapErrors(t *testing.T) {
	testCases := []struct {
		name string
		data map[string]any
		code errors.ErrorCode
	}{
		{"nil", nil, errors.ErrCodeInvalidArgument},
		{"missing name", map[string]any{"category": "general"}, errors.ErrCodeInvalidArgument},
		{"missing category", map[string]any{"name": "x"}, errors.ErrCodeInvalidArgument},
		{"scalar styles", map[string]any{"name": "x", "category": "c", "styles": "bad"}, errors.ErrCodeValidation},
		{"scalar style", map[string]any{"name": "x", "category": "c", "styles": map[string]any{"fonts": map[string]any{"body": 3.0}}}, errors.ErrCodeValidation},
		{"tags not strings", map[string]any{"name": "x", "category": "c", "metadata": map[string]any{"tags": []any{1.0}}}, errors.ErrCodeValidation},
		{"layouts not list", map[string]any{"name": "x", "category": "c", "layouts": map[string]any{}}, errors.ErrCodeValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TemplateFromMap(tc.data)
			if !errors.HasCode(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestTemplateSaveAndRead(t *testing.T) {
	store := memoryStore{}
	tmpl := mustTemplate(t, "Guide", "general", WithDefaultStyles())

	if err := tmpl.Save(store, "Guide.json"); err != nil {
		t.Fatal(err)
	}
	loaded, err := ReadTemplate(store, "Guide.json")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tmpl.ToMap(), loaded.ToMap()); diff != "" {
		t.Errorf("save/read mismatch (-want +got):\n%s", diff)
	}

	if _, err := ReadTemplate(store, "missing.json"); !errors.HasCode(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: got %v", err)
	}

	store["broken.json"] = []byte("{not json")
	if _, err := ReadTemplate(store, "broken.json"); !errors.HasCode(err, errors.ErrCodeFileCorrupted) {
		t.Errorf("malformed file: got %v", err)
	}
	store["nameless.json"] = []byte(`{"category":"general"}`)
	if _, err := ReadTemplate(store, "nameless.json"); !errors.HasCode(err, errors.ErrCodeFileCorrupted) {
		t.Errorf("file without name: got %v", err)
	}

	bad := mustTemplate(t, "Bad", "general", WithFormat("pdf"))
	if err := bad.Save(store, "Bad.json"); !errors.HasCode(err, errors.ErrCodeValidation) {
		t.Errorf("invalid template must not be saved, got %v", err)
	}
	if _, ok := store["Bad.json"]; ok {
		t.Error("invalid template was written")
	}
}
