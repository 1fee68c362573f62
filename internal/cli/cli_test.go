package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func setupEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BOOK_EDITOR_CONFIG", "")
	t.Setenv("BOOK_EDITOR_ROOT_DIR", root)
	t.Setenv("BOOK_EDITOR_LOG_LEVEL", "error")
	t.Setenv("BOOK_EDITOR_EDITOR_DEFAULT_AUTHOR", "Ann")
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root, app := newRootCommand(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	if closeErr := app.Close(); closeErr != nil {
		t.Errorf("close: %v", closeErr)
	}
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestTemplateWorkflow(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "template", "create", "Vintage", "--defaults", "-d", "Old paper look", "-t", "classic,paper")
	if !strings.Contains(out, "Created template Vintage in general") {
		t.Errorf("create output = %q", out)
	}

	_, err := run(t, "template", "create", "Noir", "-c", "mystery")
	if err == nil || !strings.Contains(err.Error(), `category "mystery" does not exist`) {
		t.Errorf("create in unknown category: %v", err)
	}

	mustRun(t, "category", "add", "mystery", "-d", "Whodunits")
	mustRun(t, "template", "create", "Noir", "-c", "mystery")
	_, err = run(t, "template", "create", "Noir", "-c", "mystery")
	if err == nil || !strings.Contains(err.Error(), "template Noir already exists") {
		t.Errorf("create existing template: %v", err)
	}

	out = mustRun(t, "category", "list")
	if !strings.Contains(out, "general") || !strings.Contains(out, "Whodunits") {
		t.Errorf("category list = %q", out)
	}

	if _, err := run(t, "category", "remove", "mystery"); err == nil {
		t.Error("removing a category in use should fail")
	}

	mustRun(t, "template", "add-style", "Noir", "fonts", "body", "font-family=Courier", "font-size=1em")
	mustRun(t, "template", "add-border", "Noir", "art_deco")
	mustRun(t, "template", "add-layout", "Noir", "--preset", "manuscript", "max-width=30em")

	out = mustRun(t, "template", "show", "Noir")
	for _, want := range []string{"fonts.body", "font-family: Courier", "max-width: 30em", "borders.frame"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "template", "list", "-c", "mystery")
	if strings.TrimSpace(out) != "Noir" {
		t.Errorf("list -c mystery = %q", out)
	}

	out = mustRun(t, "template", "search", "paper")
	if !strings.Contains(out, "Vintage") || strings.Contains(out, "Noir") {
		t.Errorf("search paper = %q", out)
	}

	out = mustRun(t, "template", "render", "Vintage", "--text", "# Hello")
	if !strings.HasPrefix(out, `<div class="template-border"`) || !strings.Contains(out, "<h1>Hello</h1>") {
		t.Errorf("render = %q", out)
	}

	_, err = run(t, "template", "show", "Vintag")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("show missing template: %v", err)
	}

	mustRun(t, "template", "delete", "Noir")
	mustRun(t, "category", "remove", "mystery")
}

func TestDocumentWorkflow(t *testing.T) {
	root := setupEnv(t)
	mustRun(t, "template", "create", "Vintage", "--defaults")

	out := mustRun(t, "doc", "new", "My Novel", "--content", "# Chapter 1\n\nIt was a dark night.")
	if !strings.Contains(out, "documents/My_Novel.json") {
		t.Errorf("doc new output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, "documents", "My_Novel.json")); err != nil {
		t.Errorf("document file not written: %v", err)
	}

	_, err := run(t, "doc", "new", "My Novel")
	if err == nil || !strings.Contains(err.Error(), "document My Novel already exists") {
		t.Errorf("doc new over an existing document: %v", err)
	}

	out = mustRun(t, "doc", "preview", "My Novel", "-t", "Vintage")
	if !strings.Contains(out, `class="template-border"`) || !strings.Contains(out, "<h1>Chapter 1</h1>") {
		t.Errorf("preview = %q", out)
	}

	out = mustRun(t, "doc", "set", "My Novel", "--content", "Rewritten.")
	if !strings.Contains(out, "version 3") {
		t.Errorf("doc set output = %q", out)
	}
	out = mustRun(t, "doc", "set", "My Novel", "--content", "Rewritten.")
	if !strings.Contains(out, "unchanged") {
		t.Errorf("identical set output = %q", out)
	}

	mustRun(t, "doc", "meta", "My Novel", "--author", "Bea")
	out = mustRun(t, "doc", "show", "My_Novel.json", "--raw")
	for _, want := range []string{"My Novel", "Author: Bea", "Version: 4", "Rewritten."} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "doc", "stats", "My Novel")
	if !strings.Contains(out, "Words: 1") {
		t.Errorf("stats = %q", out)
	}

	exported := filepath.Join(t.TempDir(), "novel.md")
	mustRun(t, "doc", "export", "My Novel", "-t", "Vintage", "-o", exported)
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "---\n") || !strings.Contains(string(data), "template: Vintage") {
		t.Errorf("export = %q", data)
	}

	mustRun(t, "doc", "import", exported, "--as", "Copy")
	out = mustRun(t, "doc", "list")
	if !strings.Contains(out, "Copy.json") || !strings.Contains(out, "My_Novel.json") {
		t.Errorf("doc list = %q", out)
	}

	mustRun(t, "doc", "delete", "Copy")
	if _, err := run(t, "doc", "delete", "Copy"); err == nil {
		t.Error("deleting a missing document should fail")
	}
	if _, err := run(t, "doc", "show", "Nothing Here"); err == nil {
		t.Error("showing a missing document should fail")
	}
}

func TestDocumentRequiresAuthor(t *testing.T) {
	setupEnv(t)
	t.Setenv("BOOK_EDITOR_EDITOR_DEFAULT_AUTHOR", "")

	if _, err := run(t, "doc", "new", "Orphan"); err == nil {
		t.Error("a document without an author should be rejected")
	}
	out := mustRun(t, "doc", "new", "Orphan", "-a", "Cy")
	if !strings.Contains(out, "Orphan.json") {
		t.Errorf("doc new output = %q", out)
	}
}

func TestSQLiteBackend(t *testing.T) {
	root := setupEnv(t)
	t.Setenv("BOOK_EDITOR_STORAGE_BACKEND", "sqlite")

	mustRun(t, "template", "create", "Vintage", "--defaults")
	mustRun(t, "doc", "new", "Stored", "--content", "In the database.")

	if _, err := os.Stat(filepath.Join(root, "book-editor.db")); err != nil {
		t.Fatalf("database not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "documents")); err == nil {
		t.Error("the sqlite backend should not create document directories")
	}

	out := mustRun(t, "doc", "preview", "Stored", "-t", "Vintage")
	if !strings.Contains(out, "<p>In the database.</p>") {
		t.Errorf("preview = %q", out)
	}
	out = mustRun(t, "template", "list")
	if strings.TrimSpace(out) != "Vintage" {
		t.Errorf("template list = %q", out)
	}
}

func TestPresets(t *testing.T) {
	setupEnv(t)
	out := mustRun(t, "presets")
	for _, want := range []string{"classic.frame", "victorian", "manuscript", "poetry"} {
		if !strings.Contains(out, want) {
			t.Errorf("presets output missing %q", want)
		}
	}
}

func TestParseProperties(t *testing.T) {
	props, err := parseProperties([]string{"color = red", "margin=0 auto"})
	if err != nil {
		t.Fatal(err)
	}
	if props["color"] != "red" || props["margin"] != "0 auto" {
		t.Errorf("props = %v", props)
	}
	for _, bad := range []string{"novalue", "=red"} {
		if _, err := parseProperties([]string{bad}); err == nil {
			t.Errorf("parseProperties(%q) should fail", bad)
		}
	}
}
