package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// listSource names the library list a listModel shows.
type listSource string

const (
	sourceHistory   listSource = "history"
	sourceFavorites listSource = "favorites"
)

// listModel displays history or favorites, most recent first.
type listModel struct {
	source     listSource
	identities []identity.Identity
	favorites  map[string]bool
	cursor     int
	flash      string
}

// removeEntryMsg drops an identity from the list being shown.
type removeEntryMsg struct {
	id string
}

// clearHistoryMsg empties the history.
type clearHistoryMsg struct{}

// viewIdentityMsg requests viewing a specific identity.
type viewIdentityMsg struct {
	identity identity.Identity
}

func newListModel(source listSource, ids []identity.Identity) listModel {
	return listModel{source: source, identities: ids}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m listModel) handleKey(msg tea.KeyMsg) (listModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	if len(m.identities) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.identities)-1 {
			m.cursor++
		}
		return m, nil
	}

	id := m.identities[m.cursor]

	if key.Matches(msg, zstyle.KeyEnter) {
		return m, func() tea.Msg { return viewIdentityMsg{identity: id} }
	}

	switch msg.String() {
	case "d":
		return m, func() tea.Msg { return burnStartMsg{identity: id} }
	case "x":
		return m, func() tea.Msg { return removeEntryMsg{id: id.ID} }
	case "C":
		if m.source == sourceHistory {
			return m, func() tea.Msg { return clearHistoryMsg{} }
		}
	}

	return m, nil
}

func (m listModel) View() string {
	cursorStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n"

	if len(m.identities) == 0 {
		empty := "no history yet"
		if m.source == sourceFavorites {
			empty = "no favorites"
		}
		s += "  " + zstyle.MutedText.Render(empty) + "\n\n"
		if m.flash != "" {
			s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
		} else {
			s += "\n"
		}
		return s
	}

	for i, id := range m.identities {
		name := truncate(id.Name(), 22)
		email := truncate(id.Email, 32)
		line := fmt.Sprintf("%-22s %-32s %-8s %s", name, email, id.Address.Country, id.CreatedAt.Format("2006-01-02"))

		if m.favorites[id.ID] {
			line += " " + zstyle.StatusOK.Render("★")
		}

		if i == m.cursor {
			s += "  " + cursorStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
