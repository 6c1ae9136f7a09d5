package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/burn"
	"github.com/zarlcorp/zpersona/internal/identity"
)

type burnPhase int

const (
	burnConfirm burnPhase = iota
	burnRunning
	burnDone
)

// burnIdentityMsg requests a burn cascade for a specific identity.
type burnIdentityMsg struct {
	identity identity.Identity
}

// burnResultMsg carries the result of a completed burn cascade.
type burnResultMsg struct {
	result burn.Result
}

// burnExpiredMsg fires a few seconds after the result is shown.
type burnExpiredMsg struct{}

// burnModel manages the burn confirmation dialog and result display.
type burnModel struct {
	identity identity.Identity
	plan     []string
	phase    burnPhase
	result   burn.Result

	// from is the view a cancel returns to
	from viewID
}

func newBurnModel(id identity.Identity, plan []string, from viewID) burnModel {
	return burnModel{
		identity: id,
		plan:     plan,
		phase:    burnConfirm,
		from:     from,
	}
}

func (m burnModel) Init() tea.Cmd {
	return nil
}

func (m burnModel) Update(msg tea.Msg) (burnModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case burnResultMsg:
		m.result = msg.result
		m.phase = burnDone
		return m, nil
	}

	return m, nil
}

func (m burnModel) handleKey(msg tea.KeyMsg) (burnModel, tea.Cmd) {
	switch m.phase {
	case burnConfirm:
		return m.handleConfirmKey(msg)
	case burnDone:
		// any key returns to the list; the record is gone from detail
		return m, func() tea.Msg { return navigateMsg{view: viewList} }
	}
	return m, nil
}

func (m burnModel) handleConfirmKey(msg tea.KeyMsg) (burnModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if msg.String() == "y" {
		m.phase = burnRunning
		id := m.identity
		return m, func() tea.Msg { return burnIdentityMsg{identity: id} }
	}

	// anything else cancels
	from := m.from
	return m, func() tea.Msg { return navigateMsg{view: from} }
}

func (m burnModel) View() string {
	switch m.phase {
	case burnConfirm:
		return m.viewConfirm()
	case burnRunning:
		return "\n  " + zstyle.MutedText.Render("burning "+m.identity.Name()+"...") + "\n"
	case burnDone:
		return m.viewDone()
	}
	return ""
}

func (m burnModel) viewConfirm() string {
	s := "\n  " + zstyle.Subtitle.Render("burn "+m.identity.Name()+"?") + "\n\n"

	s += "  " + zstyle.MutedText.Render("this will:") + "\n"
	for _, step := range m.plan {
		s += fmt.Sprintf("  %s %s\n", zstyle.StatusWarn.Render("-"), step)
	}

	s += "\n"
	s += "  " + zstyle.StatusWarn.Render("this cannot be undone.") + " (y/n)\n"

	return s
}

func (m burnModel) viewDone() string {
	var b strings.Builder

	lines := strings.Split(m.result.Summary(), "\n")

	// first line is the header
	style := zstyle.StatusOK
	if m.result.HasErrors() {
		style = zstyle.StatusWarn
	}
	b.WriteString("\n  " + style.Render(lines[0]) + "\n\n")

	for _, line := range lines[1:] {
		if strings.Contains(line, ": ") {
			b.WriteString("  " + zstyle.StatusWarn.Render(line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + zstyle.MutedText.Render("press any key to continue") + "\n")
	return b.String()
}

// returnAfterBurn leaves the result screen after 3 seconds.
func returnAfterBurn() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return burnExpiredMsg{}
	})
}
