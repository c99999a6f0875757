// Package tui is the terminal surface of the column-mapping editor: a
// bubbletea program that renders the column grid over the page geometry,
// drags boundaries with the mouse, and keeps a live parse preview below.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/statementkit/colgrid/internal/drag"
	"github.com/statementkit/colgrid/internal/model"
	"github.com/statementkit/colgrid/internal/session"
)

// Focus selects which panel keyboard input goes to.
type Focus int

const (
	// FocusColumns targets the column grid.
	FocusColumns Focus = iota
	// FocusHeaders targets the header-field list.
	FocusHeaders
)

// Mode is the editor's input mode.
type Mode int

const (
	// ModeNormal routes keys to navigation and structural edits.
	ModeNormal Mode = iota
	// ModeRename routes keys to the column label input.
	ModeRename
	// ModeHeaderValue routes keys to the header-field value input.
	ModeHeaderValue
)

// Model holds the editor TUI state. The column store and header fields
// live in the session; the model only keeps cursors, input widgets and the
// latest round-trip results.
type Model struct {
	sess         *session.Session
	ctrl         *drag.Controller
	keymap       KeyMap
	input        textinput.Model
	preview      *model.ParseResult
	previewErr   string
	pageErr      string
	confirmErr   string
	confirmed    *model.ConfirmResult
	width        int
	height       int
	cursor       int
	headerCursor int
	focus        Focus
	mode         Mode
	parsing      bool
	quitting     bool
}

// New creates an editor model over a seeded session.
func New(sess *session.Session) Model {
	return Model{
		sess:    sess,
		ctrl:    drag.NewController(sess.Columns()),
		keymap:  DefaultKeyMap(),
		width:   80,
		height:  24,
		parsing: true,
	}
}

// Confirmed returns the pipeline identifiers once the mapping has been
// confirmed, or nil.
func (m Model) Confirmed() *model.ConfirmResult {
	return m.confirmed
}

// Init loads the page image and issues the initial parse preview.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadPageImage(), m.refreshPreview())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case pageImageMsg:
		// On success the session has recorded the image's natural width
		// and the next render picks up a ready transform. A failure is
		// reported in the grid band, never the preview panel.
		if msg.err != nil {
			m.pageErr = msg.err.Error()
		}
		return m, nil

	case previewMsg:
		m.parsing = false
		if msg.err != nil {
			// The edit that triggered this round-trip is preserved; only
			// the preview panel shows the failure.
			m.previewErr = msg.err.Error()
			return m, nil
		}
		m.preview = msg.result
		m.previewErr = ""
		return m, nil

	case confirmMsg:
		if msg.err != nil {
			m.confirmErr = msg.err.Error()
			return m, nil
		}
		m.confirmed = msg.result
		m.quitting = true
		return m, tea.Quit

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case ModeRename:
			return m.handleRenameKey(msg)
		case ModeHeaderValue:
			return m.handleHeaderValueKey(msg)
		default:
			return m.handleNormalKey(msg)
		}
	}

	return m, nil
}

// handleMouse feeds pointer events into the drag controller. The
// controller is bound once at mount and reads live geometry from the
// store, so structural edits between gestures cannot leave it stale.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	t := m.sess.Transform(float64(m.gridWidth()))
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.ctrl.Press(float64(msg.X), t)
		}
	case tea.MouseActionMotion:
		// Intermediate moves re-render only; the round-trip waits for
		// release so a drag gesture cannot flood the backend.
		m.ctrl.Move(float64(msg.X), t)
	case tea.MouseActionRelease:
		if m.ctrl.Release() {
			m.parsing = true
			return m, m.refreshPreview()
		}
	}
	return m, nil
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.TogglePanel):
		if m.focus == FocusColumns {
			m.focus = FocusHeaders
		} else {
			m.focus = FocusColumns
		}
		return m, nil

	case key.Matches(msg, m.keymap.Refresh):
		m.parsing = true
		return m, m.refreshPreview()

	case key.Matches(msg, m.keymap.Confirm):
		return m, m.confirmMapping(false)

	case key.Matches(msg, m.keymap.ConfirmSave):
		return m, m.confirmMapping(true)
	}

	if m.focus == FocusHeaders {
		return m.handleHeaderKey(msg)
	}
	return m.handleColumnKey(msg)
}

func (m Model) handleColumnKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	store := m.sess.Columns()
	switch {
	case key.Matches(msg, m.keymap.Left):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Right):
		if m.cursor < store.Len()-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keymap.Add):
		store.Add()
		m.cursor = store.Len() - 1
		return m.mutated()

	case key.Matches(msg, m.keymap.Split):
		store.Split(m.cursor)
		return m.mutated()

	case key.Matches(msg, m.keymap.Remove):
		store.Remove(m.cursor)
		if m.cursor >= store.Len() {
			m.cursor = store.Len() - 1
		}
		return m.mutated()

	case key.Matches(msg, m.keymap.Rename):
		if col, ok := store.Column(m.cursor); ok {
			m.mode = ModeRename
			m.input = textinput.New()
			m.input.CharLimit = 60
			m.input.SetValue(col.Label)
			m.input.CursorEnd()
			m.input.Focus()
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keymap.Type):
		if col, ok := store.Column(m.cursor); ok {
			store.Retype(m.cursor, nextType(col.Type, 1))
			return m.mutated()
		}

	case key.Matches(msg, m.keymap.TypeBack):
		if col, ok := store.Column(m.cursor); ok {
			store.Retype(m.cursor, nextType(col.Type, -1))
			return m.mutated()
		}
	}
	return m, nil
}

func (m Model) handleHeaderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	headers := m.sess.Headers()
	switch {
	case key.Matches(msg, m.keymap.Up):
		if m.headerCursor > 0 {
			m.headerCursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.headerCursor < headers.Len()-1 {
			m.headerCursor++
		}

	case key.Matches(msg, m.keymap.Add):
		m.headerCursor = headers.Add()
		return m.editHeaderValue()

	case key.Matches(msg, m.keymap.Remove):
		headers.Remove(m.headerCursor)
		if m.headerCursor >= headers.Len() && m.headerCursor > 0 {
			m.headerCursor--
		}
		return m.mutated()

	case key.Matches(msg, m.keymap.Type):
		fields := headers.Fields()
		if m.headerCursor < len(fields) {
			headers.SetType(m.headerCursor, nextHeaderType(fields[m.headerCursor].Type, 1))
			return m.mutated()
		}

	case key.Matches(msg, m.keymap.Edit):
		return m.editHeaderValue()
	}
	return m, nil
}

func (m Model) editHeaderValue() (tea.Model, tea.Cmd) {
	fields := m.sess.Headers().Fields()
	if m.headerCursor < 0 || m.headerCursor >= len(fields) {
		return m, nil
	}
	m.mode = ModeHeaderValue
	m.input = textinput.New()
	m.input.CharLimit = 120
	m.input.SetValue(fields[m.headerCursor].Value)
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

// handleRenameKey drives the inline label input: Enter commits the trimmed
// value (an empty result keeps the old label), Esc reverts.
func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.sess.Columns().Rename(m.cursor, m.input.Value())
		m.mode = ModeNormal
		return m.mutated()
	case tea.KeyEsc:
		m.mode = ModeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleHeaderValueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.sess.Headers().SetValue(m.headerCursor, m.input.Value())
		m.mode = ModeNormal
		return m.mutated()
	case tea.KeyEsc:
		m.mode = ModeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// mutated is the single path out of every store mutation: the mapping is
// rederived and a sequenced parse preview goes out.
func (m Model) mutated() (tea.Model, tea.Cmd) {
	m.parsing = true
	return m, m.refreshPreview()
}

// gridWidth is the on-screen width the page band is rendered into, which
// is also the viewport width of the coordinate transform.
func (m Model) gridWidth() int {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	return w
}

func nextType(current model.ColumnType, dir int) model.ColumnType {
	n := len(model.ColumnTypes)
	for i, t := range model.ColumnTypes {
		if t == current {
			return model.ColumnTypes[((i+dir)%n+n)%n]
		}
	}
	return model.ColumnTypes[0]
}

func nextHeaderType(current model.HeaderFieldType, dir int) model.HeaderFieldType {
	n := len(model.HeaderFieldTypes)
	for i, t := range model.HeaderFieldTypes {
		if t == current {
			return model.HeaderFieldTypes[((i+dir)%n+n)%n]
		}
	}
	return model.HeaderFieldTypes[0]
}
