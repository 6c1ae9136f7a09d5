package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	mathrand "math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zarlcorp/zpersona/internal/config"
	"github.com/zarlcorp/zpersona/internal/export"
	"github.com/zarlcorp/zpersona/internal/identity"
)

type testApp struct {
	*App
	out *bytes.Buffer
}

func newTestApp(t *testing.T) testApp {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.ExportDir = filepath.Join(dir, "exports")

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	gen := identity.New(
		identity.WithSource(mathrand.New(mathrand.NewPCG(1, 2))),
		identity.WithClock(func() time.Time { return now }),
	)

	out := &bytes.Buffer{}
	a := &App{
		Config:   cfg,
		Gen:      gen,
		Out:      out,
		Err:      io.Discard,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return now },
		Password: func(bool) (string, error) { return "testpass", nil },
	}
	return testApp{App: a, out: out}
}

// saveOne generates and saves an identity, returning it.
func (a testApp) saveOne(t *testing.T, extra ...string) identity.Identity {
	t.Helper()
	a.out.Reset()
	args := append([]string{"--json", "--save"}, extra...)
	if err := a.CmdIdentity(args); err != nil {
		t.Fatalf("identity --save: %v", err)
	}
	var id identity.Identity
	if err := json.Unmarshal(a.out.Bytes(), &id); err != nil {
		t.Fatalf("decode identity: %v", err)
	}
	a.out.Reset()
	return id
}

func TestHasFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		flag string
		want bool
	}{
		{"present", []string{"--json", "--save"}, "--json", true},
		{"absent", []string{"--save"}, "--json", false},
		{"empty", nil, "--json", false},
		{"case insensitive", []string{"--JSON"}, "--json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hasFlag(tt.args, tt.flag)
			if got != tt.want {
				t.Errorf("hasFlag(%v, %s) = %v, want %v", tt.args, tt.flag, got, tt.want)
			}
		})
	}
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		name string
		args []string
		flag string
		want string
	}{
		{"separate", []string{"--country", "japan"}, "--country", "japan"},
		{"equals", []string{"--country=usa"}, "--country", "usa"},
		{"missing value", []string{"--country"}, "--country", ""},
		{"absent", []string{"--json"}, "--country", ""},
		{"prefix is not a match", []string{"--countryside", "x"}, "--country", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flagValue(tt.args, tt.flag); got != tt.want {
				t.Errorf("flagValue(%v, %s) = %q, want %q", tt.args, tt.flag, got, tt.want)
			}
		})
	}
}

func TestPositional(t *testing.T) {
	got := positional([]string{"5", "--gender", "female", "--json", "-o", "out.pdf", "extra", "--country=fr"})
	want := []string{"5", "extra"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("positional = %v, want %v", got, want)
	}
}

func TestHints(t *testing.T) {
	a := newTestApp(t)
	a.Config.Defaults.Country = "germany"
	a.Config.Defaults.Advanced = true

	tests := []struct {
		name    string
		args    []string
		want    identity.Hints
		wantErr bool
	}{
		{"config defaults", nil, identity.Hints{Country: identity.Germany, Advanced: true}, false},
		{"flags override", []string{"--country", "jp", "--gender", "f", "--basic"},
			identity.Hints{Country: identity.Japan, Gender: identity.Female}, false},
		{"nationality", []string{"--nationality", "Narnian"},
			identity.Hints{Country: identity.Germany, Nationality: "Narnian", Advanced: true}, false},
		{"bad gender", []string{"--gender", "robot"}, identity.Hints{}, true},
		{"bad country", []string{"--country", "atlantis"}, identity.Hints{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.hints(tt.args)
			if tt.wantErr {
				if !errors.Is(err, ErrUsage) {
					t.Fatalf("hints(%v) err = %v, want ErrUsage", tt.args, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("hints(%v): %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("hints(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestCmdIdentityText(t *testing.T) {
	a := newTestApp(t)

	if err := a.CmdIdentity([]string{"--country", "france", "--gender", "male"}); err != nil {
		t.Fatalf("identity: %v", err)
	}

	out := a.out.String()
	for _, want := range []string{"name:", "id number:", "+33 ", "France"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "occupation:") {
		t.Error("basic identity printed extended fields")
	}
}

func TestCmdIdentityJSONAdvanced(t *testing.T) {
	a := newTestApp(t)

	err := a.CmdIdentity([]string{"--json", "--advanced", "--bio", "Custom bio.", "--photo", "me.png"})
	if err != nil {
		t.Fatalf("identity: %v", err)
	}

	var id identity.Identity
	if err := json.Unmarshal(a.out.Bytes(), &id); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id.Details == nil {
		t.Fatal("advanced identity missing details")
	}
	if id.Details.Biography != "Custom bio." {
		t.Errorf("biography = %q", id.Details.Biography)
	}
	if id.ProfileImage != "me.png" {
		t.Errorf("profile image = %q", id.ProfileImage)
	}
}

func TestCmdBatch(t *testing.T) {
	a := newTestApp(t)

	if err := a.CmdBatch([]string{"5", "--json", "--country", "usa"}); err != nil {
		t.Fatalf("batch: %v", err)
	}

	var ids []identity.Identity
	if err := json.Unmarshal(a.out.Bytes(), &ids); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("batch length = %d, want 5", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id.ID] {
			t.Errorf("duplicate id %s", id.ID)
		}
		seen[id.ID] = true
		if id.Address.Country != identity.USA {
			t.Errorf("country = %s, want USA", id.Address.Country)
		}
	}

	for _, args := range [][]string{nil, {"many"}, {"1", "2"}} {
		if err := a.CmdBatch(args); !errors.Is(err, ErrUsage) {
			t.Errorf("batch %v: err = %v, want ErrUsage", args, err)
		}
	}
}

func TestCmdEmail(t *testing.T) {
	a := newTestApp(t)

	if err := a.CmdEmail([]string{"Zoë", "Müller"}); err != nil {
		t.Fatalf("email: %v", err)
	}
	email := strings.TrimSpace(a.out.String())
	if !strings.Contains(email, "@") || strings.ContainsAny(email, "ëü") {
		t.Errorf("email = %q", email)
	}

	if err := a.CmdEmail([]string{"only-one"}); !errors.Is(err, ErrUsage) {
		t.Errorf("email with one name: err = %v, want ErrUsage", err)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	a := newTestApp(t)
	if err := a.Run(context.Background(), []string{"bogus"}); !errors.Is(err, ErrUsage) {
		t.Errorf("unknown command: err = %v, want ErrUsage", err)
	}
	if err := a.Run(context.Background(), nil); !errors.Is(err, ErrUsage) {
		t.Errorf("no command: err = %v, want ErrUsage", err)
	}
}

func TestSaveHistoryAndFavorites(t *testing.T) {
	a := newTestApp(t)
	id := a.saveOne(t)

	if err := a.CmdHistory([]string{"--json"}); err != nil {
		t.Fatalf("history: %v", err)
	}
	var hist []identity.Identity
	if err := json.Unmarshal(a.out.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist) != 1 || hist[0].ID != id.ID {
		t.Fatalf("history = %v, want [%s]", hist, id.ID)
	}

	a.out.Reset()
	if err := a.CmdFavorites([]string{"add", shortID(id.ID)}); err != nil {
		t.Fatalf("favorites add: %v", err)
	}
	if !strings.Contains(a.out.String(), "already a favorite") {
		t.Errorf("saved identity should already be a favorite: %s", a.out.String())
	}

	a.out.Reset()
	if err := a.CmdFavorites([]string{"remove", id.ID}); err != nil {
		t.Fatalf("favorites remove: %v", err)
	}

	a.out.Reset()
	if err := a.CmdFavorites(nil); err != nil {
		t.Fatalf("favorites: %v", err)
	}
	if !strings.Contains(a.out.String(), "no favorites") {
		t.Errorf("favorites output = %q", a.out.String())
	}

	a.out.Reset()
	if err := a.CmdHistory([]string{"clear"}); err != nil {
		t.Fatalf("history clear: %v", err)
	}
	a.out.Reset()
	if err := a.CmdHistory(nil); err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(a.out.String(), "no history") {
		t.Errorf("history output = %q", a.out.String())
	}
}

func TestWrongPassword(t *testing.T) {
	a := newTestApp(t)
	a.saveOne(t)

	a.Password = func(bool) (string, error) { return "nope", nil }
	if err := a.CmdHistory(nil); err == nil {
		t.Fatal("expected error for wrong password")
	}
}

func TestExportAndForget(t *testing.T) {
	a := newTestApp(t)
	id := a.saveOne(t, "--advanced")

	if err := a.CmdExport([]string{"pdf", id.ID}); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	if err := a.CmdExport([]string{"qr", id.ID}); err != nil {
		t.Fatalf("export qr: %v", err)
	}

	pdfPath := filepath.Join(a.Config.ExportDir, export.Filename(id, "pdf"))
	pngPath := filepath.Join(a.Config.ExportDir, export.Filename(id, "png"))
	for _, p := range []string{pdfPath, pngPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("export missing: %v", err)
		}
	}

	custom := filepath.Join(t.TempDir(), "card.png")
	if err := a.CmdExport([]string{"qr", id.ID, "-o", custom}); err != nil {
		t.Fatalf("export qr -o: %v", err)
	}
	if _, err := os.Stat(custom); err != nil {
		t.Fatalf("custom export missing: %v", err)
	}

	a.out.Reset()
	if err := a.CmdExport([]string{"qr", id.ID, "--terminal"}); err != nil {
		t.Fatalf("export qr --terminal: %v", err)
	}
	if a.out.Len() == 0 {
		t.Error("terminal qr printed nothing")
	}

	a.out.Reset()
	if err := a.CmdForget(context.Background(), []string{id.ID}); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if !strings.Contains(a.out.String(), "deleted 2 exported files") {
		t.Errorf("forget summary = %q", a.out.String())
	}
	for _, p := range []string{pdfPath, pngPath} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still present after forget", p)
		}
	}

	if err := a.CmdForget(context.Background(), []string{id.ID}); err == nil {
		t.Error("forgetting a burned identity should fail lookup")
	}
}

func TestExportUsage(t *testing.T) {
	a := newTestApp(t)
	for _, args := range [][]string{nil, {"pdf"}, {"docx", "abcd"}} {
		if err := a.CmdExport(args); !errors.Is(err, ErrUsage) {
			t.Errorf("export %v: err = %v, want ErrUsage", args, err)
		}
	}
}

func TestIsFirstRun(t *testing.T) {
	dir := t.TempDir()
	if !IsFirstRun(dir) {
		t.Error("expected first run for empty dir")
	}

	os.WriteFile(dir+"/salt", []byte("test"), 0o600)
	if IsFirstRun(dir) {
		t.Error("expected not first run after salt exists")
	}
}
