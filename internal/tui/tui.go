// Package tui implements the root Bubble Tea model for zpersona.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/burn"
	"github.com/zarlcorp/zpersona/internal/config"
	"github.com/zarlcorp/zpersona/internal/export"
	"github.com/zarlcorp/zpersona/internal/identity"
	"github.com/zarlcorp/zpersona/internal/library"
	"github.com/zarlcorp/zpersona/internal/store"
)

type viewID int

const (
	viewPassword viewID = iota
	viewMenu
	viewGenerate
	viewList
	viewDetail
	viewBurn
)

var accent = zstyle.ZburnAccent

// Model is the root TUI model.
type Model struct {
	version  string
	cfg      *config.Config
	gen      *identity.Generator
	qr       *export.QR
	log      *slog.Logger
	now      func() time.Time
	firstRun bool

	vault *store.Vault
	lib   *library.Library

	// hints carry across regenerations within a session
	hints identity.Hints

	active   viewID
	password passwordModel
	menu     menuModel
	generate generateModel
	list     listModel
	detail   detailModel
	burn     burnModel

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model.
func New(version string, cfg *config.Config, gen *identity.Generator, firstRun bool) Model {
	return Model{
		version:  version,
		cfg:      cfg,
		gen:      gen,
		qr:       export.NewQR(cfg.QRCode.Size, cfg.QRCode.Level),
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
		firstRun: firstRun,
		hints:    cfg.Hints(),
		active:   viewPassword,
		password: newPasswordModel(firstRun),
		menu:     newMenuModel(version),
	}
}

// SetLogger routes model events to l.
func (m *Model) SetLogger(l *slog.Logger) {
	m.log = l
}

func (m Model) Init() tea.Cmd {
	return m.password.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case passwordSubmitMsg:
		return m.openVault(msg.password)

	case navigateMsg:
		return m.navigate(msg)

	case generateMsg:
		return m.generateIdentity(msg.hints)

	case quickEmailMsg:
		return m.quickEmail()

	case favoriteMsg:
		return m.toggleFavorite(msg.identity)

	case viewIdentityMsg:
		return m.showDetail(msg.identity)

	case removeEntryMsg:
		return m.removeEntry(msg.id)

	case clearHistoryMsg:
		return m.clearHistory()

	case exportMsg:
		return m, m.exportCmd(msg.identity, msg.kind)

	case exportDoneMsg:
		m.detail, _ = m.detail.Update(msg)
		return m, clearFlashAfter()

	case burnStartMsg:
		return m.startBurn(msg.identity)

	case burnIdentityMsg:
		return m.executeBurn(msg.identity)

	case burnResultMsg:
		m.burn, _ = m.burn.Update(msg)
		return m, returnAfterBurn()

	case burnExpiredMsg:
		// the user may have left the result screen already
		if m.active == viewBurn && m.burn.phase == burnDone {
			return m.navigate(navigateMsg{view: viewList})
		}
		return m, nil
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// password and menu include the logo, render directly
	switch m.active {
	case viewPassword:
		return m.password.View()
	case viewMenu:
		return m.menu.View()
	}

	var content string
	switch m.active {
	case viewGenerate:
		content = m.generate.View()
	case viewList:
		content = m.list.View()
	case viewDetail:
		content = m.detail.View()
	case viewBurn:
		content = m.burn.View()
	}

	header := zstyle.RenderHeader("zpersona", m.viewTitle(), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active, m.list.source))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

func (m Model) viewTitle() string {
	switch m.active {
	case viewGenerate:
		return "Generate Identity"
	case viewList:
		if m.list.source == sourceFavorites {
			return "Favorites"
		}
		return "History"
	case viewDetail:
		return "Identity Details"
	case viewBurn:
		return "Burn"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID, source listSource) []zstyle.HelpPair {
	switch id {
	case viewGenerate:
		return []zstyle.HelpPair{
			{Key: "g", Desc: "gender"},
			{Key: "o", Desc: "country"},
			{Key: "a", Desc: "advanced"},
			{Key: "f", Desc: "favorite"},
			{Key: "n", Desc: "new"},
			{Key: "enter", Desc: "copy field"},
			{Key: "esc", Desc: "back"},
		}
	case viewList:
		pairs := []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "view"},
			{Key: "x", Desc: "remove"},
			{Key: "d", Desc: "burn"},
		}
		if source == sourceHistory {
			pairs = append(pairs, zstyle.HelpPair{Key: "C", Desc: "clear"})
		}
		return append(pairs,
			zstyle.HelpPair{Key: "esc", Desc: "back"},
			zstyle.HelpPair{Key: "q", Desc: "quit"},
		)
	case viewDetail:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "copy field"},
			{Key: "f", Desc: "favorite"},
			{Key: "p", Desc: "pdf"},
			{Key: "r", Desc: "qr"},
			{Key: "d", Desc: "burn"},
			{Key: "esc", Desc: "back"},
		}
	case viewBurn:
		return []zstyle.HelpPair{
			{Key: "y", Desc: "confirm"},
			{Key: "n", Desc: "cancel"},
			{Key: "q", Desc: "quit"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewPassword:
		m.password, cmd = m.password.Update(msg)
	case viewMenu:
		m.menu, cmd = m.menu.Update(msg)
	case viewGenerate:
		m.generate, cmd = m.generate.Update(msg)
	case viewList:
		m.list, cmd = m.list.Update(msg)
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case viewBurn:
		m.burn, cmd = m.burn.Update(msg)
	}

	return m, cmd
}

func (m Model) openVault(password string) (tea.Model, tea.Cmd) {
	dir := m.cfg.DataDir
	if err := os.MkdirAll(dir, 0o700); err != nil {
		m.password, _ = m.password.Update(passwordErrMsg{
			err: fmt.Errorf("create data dir: %w", err),
		})
		return m, nil
	}

	v, err := store.Open(zfilesystem.NewOSFileSystem(dir), password)
	if err != nil {
		m.log.Warn("vault open failed", "dir", dir, "error", err)
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	m.vault = v
	m.lib = library.New(v, library.WithHistoryLimit(m.cfg.History.Limit))
	m.log.Info("vault opened", "dir", dir, "first_run", m.firstRun)
	return m.navigate(navigateMsg{view: viewMenu})
}

func (m Model) navigate(msg navigateMsg) (tea.Model, tea.Cmd) {
	switch msg.view {
	case viewMenu:
		mm := newMenuModel(m.version)
		if m.lib != nil {
			if ids, err := m.lib.History(); err == nil {
				mm.historyCount = len(ids)
			}
			if ids, err := m.lib.Favorites(); err == nil {
				mm.favoriteCount = len(ids)
			}
		}
		m.menu = mm
		m.active = viewMenu
		return m, tea.ClearScreen

	case viewGenerate:
		m, cmd := m.generateIdentity(m.hints)
		return m, tea.Batch(cmd, tea.ClearScreen)

	case viewList:
		source := msg.source
		if source == "" {
			source = m.list.source
		}
		m, cmd := m.loadList(source)
		return m, tea.Batch(cmd, tea.ClearScreen)

	case viewDetail:
		m.detail.favorite = m.isFavorite(m.detail.identity.ID)
		m.active = viewDetail
		return m, tea.ClearScreen

	case viewBurn:
		m.active = viewBurn
		return m, tea.ClearScreen
	}

	return m, nil
}

// generateIdentity synthesizes a new record with h and records it in history.
func (m Model) generateIdentity(h identity.Hints) (tea.Model, tea.Cmd) {
	m.hints = h
	id := m.gen.Generate(h)
	m.generate = newGenerateModel(id, h)
	m.active = viewGenerate

	if m.lib == nil {
		return m, nil
	}
	if err := m.lib.Record(id); err != nil {
		m.generate = m.generate.setFlash("history: " + err.Error())
		return m, clearFlashAfter()
	}
	m.log.Debug("identity generated", "id", id.ID, "country", id.Address.Country, "advanced", id.Extended())
	return m, nil
}

func (m Model) quickEmail() (tea.Model, tea.Cmd) {
	email := m.gen.Generate(m.hints).Email
	if err := copyToClipboard(email); err != nil {
		m.menu.flash = email
		return m, clearFlashAfter()
	}
	m.menu.flash = "copied " + email
	return m, clearFlashAfter()
}

func (m Model) toggleFavorite(id identity.Identity) (tea.Model, tea.Cmd) {
	if m.lib == nil {
		return m, nil
	}

	flash := "added to favorites"
	var err error
	fav := m.isFavorite(id.ID)
	if fav {
		_, err = m.lib.RemoveFavorite(id.ID)
		flash = "removed from favorites"
	} else {
		_, err = m.lib.AddFavorite(id)
	}
	if err != nil {
		flash = "favorite: " + err.Error()
	} else {
		fav = !fav
	}

	switch m.active {
	case viewGenerate:
		m.generate.favorite = fav
		m.generate = m.generate.setFlash(flash)
	case viewDetail:
		m.detail.favorite = fav
		m.detail.flash = flash
	}
	return m, clearFlashAfter()
}

func (m Model) isFavorite(id string) bool {
	if m.lib == nil {
		return false
	}
	fav, err := m.lib.IsFavorite(id)
	return err == nil && fav
}

func (m Model) showDetail(id identity.Identity) (tea.Model, tea.Cmd) {
	m.detail = newDetailModel(id)
	m.detail.favorite = m.isFavorite(id.ID)
	m.active = viewDetail
	return m, nil
}

func (m Model) loadList(source listSource) (tea.Model, tea.Cmd) {
	if source == "" {
		source = sourceHistory
	}
	m.list = newListModel(source, nil)
	m.active = viewList
	if m.lib == nil {
		return m, nil
	}

	var (
		ids []identity.Identity
		err error
	)
	if source == sourceFavorites {
		ids, err = m.lib.Favorites()
	} else {
		ids, err = m.lib.History()
	}
	if err != nil {
		m.list.flash = "load: " + err.Error()
		return m, clearFlashAfter()
	}

	m.list = newListModel(source, ids)
	if source == sourceHistory {
		m.list.favorites = m.favoriteSet()
	}
	return m, nil
}

func (m Model) favoriteSet() map[string]bool {
	favs, err := m.lib.Favorites()
	if err != nil {
		return nil
	}
	set := make(map[string]bool, len(favs))
	for _, f := range favs {
		set[f.ID] = true
	}
	return set
}

// removeEntry drops an identity from the list currently shown.
func (m Model) removeEntry(id string) (tea.Model, tea.Cmd) {
	if m.lib == nil {
		return m, nil
	}

	source := m.list.source
	var err error
	if source == sourceFavorites {
		_, err = m.lib.RemoveFavorite(id)
	} else {
		_, err = m.lib.Remove(id)
	}
	if err != nil {
		m.list.flash = "remove: " + err.Error()
		return m, clearFlashAfter()
	}

	cursor := m.list.cursor
	next, cmd := m.loadList(source)
	m = next.(Model)
	m.list.cursor = min(cursor, max(len(m.list.identities)-1, 0))
	m.list.flash = "removed"
	return m, tea.Batch(cmd, clearFlashAfter())
}

func (m Model) clearHistory() (tea.Model, tea.Cmd) {
	if m.lib == nil {
		return m, nil
	}
	if err := m.lib.ClearHistory(); err != nil {
		m.list.flash = "clear: " + err.Error()
		return m, clearFlashAfter()
	}
	next, _ := m.loadList(sourceHistory)
	m = next.(Model)
	m.list.flash = "history cleared"
	return m, clearFlashAfter()
}

// exportCmd renders kind ("pdf" or "qr") off the update loop and writes it
// into the export directory.
func (m Model) exportCmd(id identity.Identity, kind string) tea.Cmd {
	dir := m.cfg.ExportDir
	qr := m.qr
	at := m.now()
	log := m.log

	return func() tea.Msg {
		var (
			data []byte
			ext  string
		)
		switch kind {
		case "pdf":
			var buf bytes.Buffer
			if err := export.WritePDF(&buf, id, at); err != nil {
				return exportDoneMsg{err: err}
			}
			data, ext = buf.Bytes(), "pdf"
		default:
			png, err := qr.PNG(id)
			if err != nil {
				return exportDoneMsg{err: err}
			}
			data, ext = png, "png"
		}

		if err := os.MkdirAll(dir, 0o700); err != nil {
			return exportDoneMsg{err: fmt.Errorf("create export dir: %w", err)}
		}
		name := export.Filename(id, ext)
		if err := zfilesystem.NewOSFileSystem(dir).WriteFile(name, data, 0o600); err != nil {
			return exportDoneMsg{err: fmt.Errorf("write %s: %w", name, err)}
		}

		path := filepath.Join(dir, name)
		log.Info("export written", "kind", kind, "path", path)
		return exportDoneMsg{path: path}
	}
}

func (m Model) startBurn(id identity.Identity) (tea.Model, tea.Cmd) {
	if m.lib == nil {
		return m, nil
	}
	plan := burn.Plan(m.burnRequest(id))
	m.burn = newBurnModel(id, plan, m.active)
	m.active = viewBurn
	return m, nil
}

func (m Model) executeBurn(id identity.Identity) (tea.Model, tea.Cmd) {
	req := m.burnRequest(id)
	log := m.log
	return m, func() tea.Msg {
		result := burn.Execute(context.Background(), req)
		log.Info("identity burned", "id", id.ID, "errors", result.HasErrors())
		return burnResultMsg{result: result}
	}
}

func (m Model) burnRequest(id identity.Identity) burn.Request {
	return burn.Request{
		Identity:  id,
		Favorites: m.lib,
		History:   m.lib,
		Exports:   zfilesystem.NewOSFileSystem(m.cfg.ExportDir),
	}
}

// Close cleans up resources. Call after the program exits.
func (m Model) Close() {
	if m.vault != nil {
		m.vault.Close()
	}
}
