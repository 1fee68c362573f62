// Package ui is the full-screen terminal editor for a single document.
package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/book-editor/internal/clipboard"
	"github.com/dpshade/book-editor/internal/errors"
	"github.com/dpshade/book-editor/internal/renderer"
	"github.com/dpshade/book-editor/internal/service"
)

// ViewMode selects what the main pane shows
type ViewMode int

const (
	ViewEdit ViewMode = iota
	ViewPreview
	ViewHTML
)

func (v ViewMode) String() string {
	switch v {
	case ViewPreview:
		return "PREVIEW"
	case ViewHTML:
		return "HTML"
	default:
		return "EDIT"
	}
}

// KeyMap defines all key bindings
type KeyMap struct {
	Save      key.Binding
	Undo      key.Binding
	Redo      key.Binding
	Preview   key.Binding
	HTML      key.Binding
	Copy      key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Preview, k.Undo, k.Redo, k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Save, k.Undo, k.Redo},
		{k.Preview, k.HTML, k.Copy},
		{k.Help, k.Quit, k.ForceQuit},
	}
}

var keys = KeyMap{
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("Ctrl+s", "save"),
	),
	Undo: key.NewBinding(
		key.WithKeys("ctrl+z"),
		key.WithHelp("Ctrl+z", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("Ctrl+y", "redo"),
	),
	Preview: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "toggle preview"),
	),
	HTML: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("Ctrl+p", "template HTML"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("Ctrl+e", "copy HTML"),
	),
	Help: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("Ctrl+g", "more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("Ctrl+c", "quit without saving"),
	),
}

// Model is the bubbletea model of the editor. Text typed into the textarea
// is committed to the document as one revision when the user saves, previews,
// undoes or redoes.
type Model struct {
	editor *service.Editor
	term   *renderer.Terminal
	logger *slog.Logger
	errs   *errors.TUIErrorHandler
	path   string

	textarea textarea.Model
	viewport viewport.Model
	help     help.Model
	keys     KeyMap
	mode     ViewMode

	width  int
	height int

	statusMsg     string
	statusStyle   lipgloss.Style
	statusTimeout int

	dirty       bool // document has revisions not yet written
	confirmQuit bool
}

// NewModel creates an editor for the editor's current document. path is
// where ctrl+s writes it.
func NewModel(editor *service.Editor, term *renderer.Terminal, logger *slog.Logger, path string) Model {
	initializeColors()
	if logger == nil {
		logger = slog.Default()
	}

	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(20)
	if content, err := editor.Content(); err == nil {
		ta.SetValue(content)
	}
	ta.Focus()

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	return Model{
		editor:   editor,
		term:     term,
		logger:   logger.With("component", "ui"),
		errs:     errors.NewTUIErrorHandler(logger, false),
		path:     path,
		textarea: ta,
		viewport: vp,
		help:     help.New(),
		keys:     keys,
	}
}

// Run starts the full-screen editor and blocks until the user quits
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// tickMsg is sent to clear the status message
type tickMsg time.Time

func clearStatusCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.statusTimeout > 0 {
			m.statusTimeout--
			if m.statusTimeout == 0 {
				m.statusMsg = ""
			} else {
				return m, clearStatusCmd()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		bodyHeight := msg.Height - 4
		if bodyHeight < 3 {
			bodyHeight = 3
		}
		m.textarea.SetWidth(msg.Width)
		m.textarea.SetHeight(bodyHeight)
		m.viewport.Width = msg.Width
		m.viewport.Height = bodyHeight
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		quitting := key.Matches(msg, m.keys.Quit)
		if !quitting {
			m.confirmQuit = false
		}

		switch {
		case key.Matches(msg, m.keys.ForceQuit):
			return m, tea.Quit

		case quitting:
			if err := m.commit(); err != nil && !m.confirmQuit {
				m.confirmQuit = true
				return m, m.fail(err)
			}
			if m.dirty && !m.confirmQuit {
				m.confirmQuit = true
				return m, m.setStatus("Unsaved changes. Esc again to quit, Ctrl+s to save", StyleDirty)
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Save):
			return m, m.save()

		case key.Matches(msg, m.keys.Undo):
			return m, m.step(m.editor.Undo, "Nothing to undo")

		case key.Matches(msg, m.keys.Redo):
			return m, m.step(m.editor.Redo, "Nothing to redo")

		case key.Matches(msg, m.keys.Preview):
			if m.mode == ViewEdit {
				return m, m.showPreview(ViewPreview)
			}
			m.mode = ViewEdit
			return m, m.textarea.Focus()

		case key.Matches(msg, m.keys.HTML):
			return m, m.showPreview(ViewHTML)

		case key.Matches(msg, m.keys.Copy):
			return m, m.copyHTML()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.mode == ViewEdit {
		m.textarea, cmd = m.textarea.Update(msg)
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// commit records the textarea text as a new revision when it differs from
// the document
func (m *Model) commit() error {
	text := m.textarea.Value()
	current, err := m.editor.Content()
	if err != nil {
		return err
	}
	if text == current {
		return nil
	}
	if err := m.editor.SetContent(text); err != nil {
		return err
	}
	m.dirty = true
	return nil
}

func (m *Model) setStatus(text string, style lipgloss.Style) tea.Cmd {
	m.statusMsg = text
	m.statusStyle = style
	m.statusTimeout = 3
	return clearStatusCmd()
}

func (m *Model) fail(err error) tea.Cmd {
	err = m.errs.HandleError(err)
	return m.setStatus(m.errs.FormatError(err), m.errs.Style(err))
}

func (m *Model) save() tea.Cmd {
	if err := m.commit(); err != nil {
		return m.fail(err)
	}
	saved, err := m.editor.SaveDocument(m.path)
	if err != nil {
		return m.fail(err)
	}
	if !saved {
		return m.fail(errors.NewAppError(errors.ErrCodeStorageFailure, "document could not be written"))
	}
	m.dirty = false
	return m.setStatus("Saved "+m.editor.CurrentPath(), StyleSuccess)
}

// step runs undo or redo after committing pending text
func (m *Model) step(move func() (bool, error), nothing string) tea.Cmd {
	if err := m.commit(); err != nil {
		return m.fail(err)
	}
	moved, err := move()
	if err != nil {
		return m.fail(err)
	}
	if !moved {
		return m.setStatus(nothing, StyleTextDim)
	}
	content, _ := m.editor.Content()
	m.textarea.SetValue(content)
	m.dirty = true
	if m.mode != ViewEdit {
		return m.showPreview(m.mode)
	}
	return nil
}

func (m *Model) showPreview(mode ViewMode) tea.Cmd {
	if err := m.commit(); err != nil {
		return m.fail(err)
	}

	var (
		body string
		err  error
	)
	switch mode {
	case ViewHTML:
		body, err = m.editor.Preview()
	default:
		content, _ := m.editor.Content()
		body, err = m.renderMarkdown(content)
	}
	if err != nil {
		return m.fail(err)
	}

	m.textarea.Blur()
	m.mode = mode
	m.viewport.SetContent(body)
	m.viewport.GotoTop()
	return nil
}

func (m *Model) renderMarkdown(content string) (string, error) {
	if m.term == nil || content == "" {
		return content, nil
	}
	rendered, err := m.term.Render(content)
	if err != nil {
		m.logger.Debug("failed to render preview", "error", err)
		return content, nil
	}
	return rendered, nil
}

func (m *Model) copyHTML() tea.Cmd {
	if err := m.commit(); err != nil {
		return m.fail(err)
	}
	html, err := m.editor.Preview()
	if err != nil {
		return m.fail(err)
	}
	message, err := clipboard.New().CopyWithFallback(html)
	if err != nil {
		return m.fail(errors.Wrap(err, errors.ErrCodeInternalError, "clipboard unavailable").
			WithDetails(clipboard.GetInstallInstructions()))
	}
	return m.setStatus(message, StyleSuccess)
}

// View renders the editor
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n")
	if m.mode == ViewEdit {
		b.WriteString(m.textarea.View())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	if m.statusMsg != "" {
		b.WriteString(StyleStatusBar.Render(m.statusStyle.Render(m.statusMsg)))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) header() string {
	doc, ok := m.editor.Current()
	if !ok {
		return StyleTitle.Render("No document")
	}

	meta := fmt.Sprintf("%s · v%d", doc.Author(), doc.Version())
	if name := m.editor.TemplateName(); name != "" {
		meta += " · " + name
	}
	parts := []string{
		StyleMode.Render(m.mode.String()),
		StyleTitle.Render(doc.Title()),
		StyleMetadata.Render(meta),
	}
	if m.dirty || m.textarea.Value() != doc.Content() {
		parts = append(parts, StyleDirty.Render("●"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}
