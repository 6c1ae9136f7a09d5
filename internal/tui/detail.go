package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// burnStartMsg tells the root model to show the burn confirmation for an identity.
type burnStartMsg struct {
	identity identity.Identity
}

// exportMsg requests a document ("pdf") or scannable code ("qr") export.
type exportMsg struct {
	identity identity.Identity
	kind     string
}

// exportDoneMsg reports where an export landed.
type exportDoneMsg struct {
	path string
	err  error
}

// detailModel displays all fields of a stored identity.
type detailModel struct {
	identity identity.Identity
	fields   []identityField
	cursor   int
	favorite bool
	flash    string
}

func newDetailModel(id identity.Identity) detailModel {
	return detailModel{
		identity: id,
		fields:   identityFields(id),
	}
}

func (m detailModel) Init() tea.Cmd {
	return nil
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case exportDoneMsg:
		if msg.err != nil {
			m.flash = "export: " + msg.err.Error()
		} else {
			m.flash = "wrote " + msg.path
		}
		return m, nil

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewList} }
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		val := m.fields[m.cursor].value
		if err := copyToClipboard(val); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied!"
		return m, clearFlashAfter()
	}

	id := m.identity
	switch msg.String() {
	case "c":
		if err := copyToClipboard(fieldsText(m.fields)); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied all!"
		return m, clearFlashAfter()

	case "f":
		return m, func() tea.Msg { return favoriteMsg{identity: id} }

	case "p":
		m.flash = "exporting pdf..."
		return m, func() tea.Msg { return exportMsg{identity: id, kind: "pdf"} }

	case "r":
		m.flash = "exporting qr..."
		return m, func() tea.Msg { return exportMsg{identity: id, kind: "qr"} }

	case "d":
		return m, func() tea.Msg { return burnStartMsg{identity: id} }
	}

	return m, nil
}

func (m detailModel) View() string {
	title := m.identity.Name()
	if m.favorite {
		title += " ★"
	}
	s := "\n  " + zstyle.Subtitle.Render(title) + "\n"

	s += renderFields(m.fields, m.cursor)
	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
