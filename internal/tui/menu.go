package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type menuChoice int

const (
	menuGenerate menuChoice = iota
	menuEmail
	menuHistory
	menuFavorites
	menuQuit
)

var menuItems = []string{
	"Generate identity",
	"Generate email (quick)",
	"History",
	"Favorites",
	"Quit",
}

// menuModel is the main menu view.
type menuModel struct {
	cursor        int
	version       string
	historyCount  int
	favoriteCount int
	flash         string
}

// navigateMsg tells the root model to switch views. source selects the
// list shown by viewList; empty keeps the current one.
type navigateMsg struct {
	view   viewID
	source listSource
}

// quickEmailMsg tells the root to generate and copy an email.
type quickEmailMsg struct{}

func newMenuModel(version string) menuModel {
	return menuModel{version: version}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (menuModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, zstyle.KeyQuit) {
			return m, tea.Quit
		}

		if key.Matches(msg, zstyle.KeyUp) {
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		}

		if key.Matches(msg, zstyle.KeyDown) {
			if m.cursor < len(menuItems)-1 {
				m.cursor++
			}
			return m, nil
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			return m, m.selectItem()
		}

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m menuModel) selectItem() tea.Cmd {
	switch menuChoice(m.cursor) {
	case menuGenerate:
		return func() tea.Msg { return navigateMsg{view: viewGenerate} }
	case menuEmail:
		return func() tea.Msg { return quickEmailMsg{} }
	case menuHistory:
		return func() tea.Msg { return navigateMsg{view: viewList, source: sourceHistory} }
	case menuFavorites:
		return func() tea.Msg { return navigateMsg{view: viewList, source: sourceFavorites} }
	case menuQuit:
		return tea.Quit
	}
	return nil
}

func (m menuModel) countFor(choice menuChoice) int {
	switch choice {
	case menuHistory:
		return m.historyCount
	case menuFavorites:
		return m.favoriteCount
	}
	return -1
}

func (m menuModel) View() string {
	indent := lipgloss.NewStyle().MarginLeft(2)
	logo := indent.Render(zstyle.StyledLogo(lipgloss.NewStyle().Foreground(accent)))
	ver := zstyle.MutedText.Render("zpersona " + m.version)

	s := fmt.Sprintf("\n%s\n  %s\n\n", logo, ver)

	for i, item := range menuItems {
		line := zstyle.RenderMenuItem(zstyle.MenuItem{
			Label:  item,
			Active: m.cursor == i,
		}, accent)
		if n := m.countFor(menuChoice(i)); n >= 0 {
			line += " " + zstyle.MutedText.Render(fmt.Sprintf("(%d)", n))
		}
		s += line + "\n"
	}

	s += "\n"
	// reserved flash line
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	s += "  " + zstyle.MutedText.Render("j/k navigate  enter select  q quit") + "\n\n"
	return s
}
