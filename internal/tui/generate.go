package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// identityField is a labeled value for display and copying. section marks
// the first field of a new group.
type identityField struct {
	label   string
	value   string
	section bool
}

// generateModel shows a freshly generated identity and the hints that
// produced it.
type generateModel struct {
	identity identity.Identity
	hints    identity.Hints
	fields   []identityField
	cursor   int
	favorite bool
	flash    string
}

// generateMsg asks the root to synthesize a new identity with hints.
type generateMsg struct {
	hints identity.Hints
}

// favoriteMsg toggles an identity in the favorites list.
type favoriteMsg struct {
	identity identity.Identity
}

// flashMsg clears the flash after a timeout.
type flashMsg struct{}

var genderCycle = []identity.Gender{"", identity.Male, identity.Female, identity.Other}

func newGenerateModel(id identity.Identity, h identity.Hints) generateModel {
	return generateModel{
		identity: id,
		hints:    h,
		fields:   identityFields(id),
	}
}

func identityFields(id identity.Identity) []identityField {
	at := id.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}

	fields := []identityField{
		{label: "id", value: id.ID},
		{label: "name", value: id.Name()},
		{label: "gender", value: string(id.Gender)},
		{label: "born", value: fmt.Sprintf("%s (%d)", id.BirthDate, identity.Age(id.Birth(), at))},
		{label: "nationality", value: id.Nationality},
		{label: "id number", value: id.IDNumber},
		{label: "email", value: id.Email, section: true},
		{label: "phone", value: id.Phone},
		{label: "street", value: id.Address.Street, section: true},
		{label: "city", value: id.Address.ZipCode + " " + id.Address.City},
		{label: "country", value: string(id.Address.Country)},
	}
	if id.ProfileImage != "" {
		fields = append(fields, identityField{label: "photo", value: id.ProfileImage})
	}

	d := id.Details
	if d == nil {
		return fields
	}

	if c := id.Address.Coordinates; c != nil {
		fields = append(fields, identityField{label: "coords", value: fmt.Sprintf("%.5f, %.5f", c.Latitude, c.Longitude)})
	}
	return append(fields,
		identityField{label: "occupation", value: d.Occupation, section: true},
		identityField{label: "education", value: d.Education},
		identityField{label: "languages", value: strings.Join(d.Languages, ", ")},
		identityField{label: "traits", value: strings.Join(d.PersonalityTraits, ", ")},
		identityField{label: "body", value: fmt.Sprintf("%d cm, %d kg, %s", d.Height, d.Weight, d.BloodType)},
		identityField{label: "card", value: d.CreditCard.Type + " " + d.CreditCard.Number, section: true},
		identityField{label: "expiry", value: d.CreditCard.Expiry},
		identityField{label: "cvv", value: d.CreditCard.CVV},
		identityField{label: "twitter", value: d.Social.Twitter, section: true},
		identityField{label: "instagram", value: d.Social.Instagram},
		identityField{label: "linkedin", value: d.Social.LinkedIn},
		identityField{label: "facebook", value: d.Social.Facebook},
		identityField{label: "fingerprint", value: d.Fingerprint, section: true},
		identityField{label: "bio", value: d.Biography},
	)
}

func (m generateModel) Init() tea.Cmd {
	return nil
}

func (m generateModel) Update(msg tea.Msg) (generateModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m generateModel) handleKey(msg tea.KeyMsg) (generateModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
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
			return m.setFlash("copy: " + err.Error()), clearFlashAfter()
		}
		return m.setFlash("copied!"), clearFlashAfter()
	}

	switch msg.String() {
	case "g":
		h := m.hints
		h.Gender = nextGender(h.Gender)
		return m, regenerate(h)

	case "o":
		h := m.hints
		h.Country = nextCountry(h.Country)
		return m, regenerate(h)

	case "a":
		h := m.hints
		h.Advanced = !h.Advanced
		return m, regenerate(h)

	case "n":
		return m, regenerate(m.hints)

	case "f":
		id := m.identity
		return m, func() tea.Msg { return favoriteMsg{identity: id} }

	case "c":
		if err := copyToClipboard(fieldsText(m.fields)); err != nil {
			return m.setFlash("copy: " + err.Error()), clearFlashAfter()
		}
		return m.setFlash("copied all!"), clearFlashAfter()
	}

	return m, nil
}

func regenerate(h identity.Hints) tea.Cmd {
	return func() tea.Msg { return generateMsg{hints: h} }
}

// nextGender cycles random, male, female, other.
func nextGender(g identity.Gender) identity.Gender {
	for i, c := range genderCycle {
		if c == g {
			return genderCycle[(i+1)%len(genderCycle)]
		}
	}
	return genderCycle[0]
}

// nextCountry cycles random then each supported country.
func nextCountry(c identity.Country) identity.Country {
	if c == "" {
		return identity.Countries[0]
	}
	for i, k := range identity.Countries {
		if k == c {
			if i == len(identity.Countries)-1 {
				return ""
			}
			return identity.Countries[i+1]
		}
	}
	return ""
}

func (m generateModel) setFlash(msg string) generateModel {
	m.flash = msg
	return m
}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}

func fieldsText(fields []identityField) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	return b.String()
}

func orRandom(s string) string {
	if s == "" {
		return "random"
	}
	return s
}

func renderFields(fields []identityField, cursor int) string {
	cursorStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	var s string
	for i, f := range fields {
		if f.section {
			s += "\n"
		}
		label := zstyle.MutedText.Render(fmt.Sprintf("%-12s", f.label))
		if i == cursor {
			s += "  " + cursorStyle.Render("▸") + " " + label + " " + f.value + "\n"
		} else {
			s += "    " + label + " " + f.value + "\n"
		}
	}
	return s
}

func (m generateModel) View() string {
	mode := "basic"
	if m.hints.Advanced {
		mode = "advanced"
	}
	hints := fmt.Sprintf("gender %s  country %s  %s",
		orRandom(string(m.hints.Gender)), orRandom(string(m.hints.Country)), mode)

	s := "\n  " + zstyle.MutedText.Render(hints) + "\n"
	if m.favorite {
		s += "  " + zstyle.StatusOK.Render("★ favorite") + "\n"
	} else {
		s += "\n"
	}

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
