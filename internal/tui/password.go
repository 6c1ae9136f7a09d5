package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpersona/internal/store"
)

// passwordModel collects the master password. A fresh vault asks for it
// twice; an existing one is unlocked with a single entry.
type passwordModel struct {
	input    textinput.Model
	create   bool
	pending  string // first entry while creating
	attempts int    // rejected unlock attempts
	problem  string
}

type passwordSubmitMsg struct {
	password string
}

// passwordErrMsg reports a failed vault open back to the prompt.
type passwordErrMsg struct {
	err error
}

func newPasswordModel(create bool) passwordModel {
	in := textinput.New()
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.CharLimit = 256
	in.Width = 32
	in.Prompt = "› "
	in.Focus()

	return passwordModel{input: in, create: create}
}

func (m passwordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m passwordModel) confirming() bool {
	return m.create && m.pending != ""
}

func (m passwordModel) Update(msg tea.Msg) (passwordModel, tea.Cmd) {
	switch msg := msg.(type) {
	case passwordErrMsg:
		return m.rejected(msg.err), nil

	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC:
			return m, tea.Quit
		case key.Matches(msg, zstyle.KeyEnter):
			return m.submit()
		case msg.Type == tea.KeyEsc && m.confirming():
			m.pending = ""
			m.input.Reset()
			return m, nil
		}
		m.problem = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m passwordModel) rejected(err error) passwordModel {
	m.input.Reset()
	m.pending = ""

	if errors.Is(err, store.ErrWrongPassword) {
		m.attempts++
		m.problem = "wrong password"
		if m.attempts > 1 {
			m.problem = fmt.Sprintf("wrong password (%d attempts)", m.attempts)
		}
		return m
	}

	m.problem = "cannot open vault: " + err.Error()
	return m
}

func (m passwordModel) submit() (passwordModel, tea.Cmd) {
	pw := m.input.Value()
	m.input.Reset()

	switch {
	case pw == "":
		m.problem = "password cannot be empty"
		return m, nil
	case m.create && m.pending == "":
		m.pending = pw
		m.problem = ""
		return m, nil
	case m.create && pw != m.pending:
		m.pending = ""
		m.problem = "passwords do not match"
		return m, nil
	}

	m.pending = ""
	m.problem = ""
	return m, func() tea.Msg { return passwordSubmitMsg{password: pw} }
}

func (m passwordModel) prompt() string {
	switch {
	case m.confirming():
		return "confirm password:"
	case m.create:
		return "create master password:"
	}
	return "master password:"
}

func (m passwordModel) View() string {
	var b strings.Builder
	pad := lipgloss.NewStyle().PaddingLeft(2)

	b.WriteString("\n")
	b.WriteString(pad.Render(zstyle.StyledLogo(lipgloss.NewStyle().Foreground(accent))))
	b.WriteString("\n")
	b.WriteString(pad.Render(zstyle.MutedText.Render("zpersona")))
	b.WriteString("\n\n")

	if m.create && !m.confirming() {
		b.WriteString(pad.Render(zstyle.MutedText.Render("a new vault will be created")))
		b.WriteString("\n\n")
	}

	b.WriteString(pad.Render(m.prompt()))
	b.WriteString("\n")
	b.WriteString(pad.Render(m.input.View()))
	b.WriteString("\n")

	if m.problem != "" {
		b.WriteString("\n")
		b.WriteString(pad.Render(zstyle.StatusErr.Render(m.problem)))
		b.WriteString("\n")
	}

	help := []zstyle.HelpPair{{Key: "enter", Desc: "unlock"}}
	if m.create {
		help[0].Desc = "continue"
	}
	if m.confirming() {
		help = append(help, zstyle.HelpPair{Key: "esc", Desc: "start over"})
	}
	help = append(help, zstyle.HelpPair{Key: "ctrl+c", Desc: "quit"})

	b.WriteString("\n")
	b.WriteString(pad.Render(zstyle.RenderFooter(help)))
	b.WriteString("\n")
	return b.String()
}
