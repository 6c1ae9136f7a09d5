// Package cli implements zpersona's command-line subcommands.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"golang.org/x/term"

	"github.com/zarlcorp/zpersona/internal/burn"
	"github.com/zarlcorp/zpersona/internal/config"
	"github.com/zarlcorp/zpersona/internal/export"
	"github.com/zarlcorp/zpersona/internal/identity"
	"github.com/zarlcorp/zpersona/internal/library"
	"github.com/zarlcorp/zpersona/internal/store"
)

// ErrUsage marks errors caused by bad arguments.
var ErrUsage = errors.New("usage")

// flags that take a value
var valueFlags = map[string]bool{
	"--gender":      true,
	"--country":     true,
	"--nationality": true,
	"--photo":       true,
	"--bio":         true,
	"-o":            true,
}

// App carries the dependencies shared by every subcommand.
type App struct {
	Config *config.Config
	Gen    *identity.Generator
	Out    io.Writer
	Err    io.Writer
	Log    *slog.Logger
	Now    func() time.Time

	// Password reads the master password. first is true when the vault
	// does not exist yet.
	Password func(first bool) (string, error)
}

// New creates an App writing to stdout/stderr and prompting on the terminal.
func New(cfg *config.Config, gen *identity.Generator, log *slog.Logger) *App {
	return &App{
		Config:   cfg,
		Gen:      gen,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Log:      log,
		Now:      time.Now,
		Password: promptPassword,
	}
}

// Run dispatches args[0] to its subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: zpersona <command>", ErrUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "identity":
		return a.CmdIdentity(rest)
	case "batch":
		return a.CmdBatch(rest)
	case "email":
		return a.CmdEmail(rest)
	case "history":
		return a.CmdHistory(rest)
	case "favorites":
		return a.CmdFavorites(rest)
	case "export":
		return a.CmdExport(rest)
	case "forget":
		return a.CmdForget(ctx, rest)
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
}

// CmdIdentity generates and prints a complete identity.
func (a *App) CmdIdentity(args []string) error {
	h, err := a.hints(args)
	if err != nil {
		return err
	}

	id := a.Gen.Generate(h)
	id = identity.WithPhoto(id, flagValue(args, "--photo"))
	id = identity.WithBiography(id, flagValue(args, "--bio"))

	if hasFlag(args, "--json") {
		if err := a.printJSON(id); err != nil {
			return err
		}
	} else {
		a.printIdentity(id)
	}

	if !hasFlag(args, "--save") {
		return nil
	}

	return a.withLibrary(func(lib *library.Library, _ *store.Vault) error {
		if err := lib.Record(id); err != nil {
			return err
		}
		if _, err := lib.AddFavorite(id); err != nil {
			return err
		}
		fmt.Fprintf(a.Err, "saved %s\n", id.ID)
		return nil
	})
}

// CmdBatch generates n identities.
func (a *App) CmdBatch(args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("%w: zpersona batch <n>", ErrUsage)
	}
	n, err := strconv.Atoi(pos[0])
	if err != nil || n < 0 {
		return fmt.Errorf("%w: batch size must be a non-negative integer, got %q", ErrUsage, pos[0])
	}

	h, err := a.hints(args)
	if err != nil {
		return err
	}

	ids := a.Gen.GenerateBatch(n, h)
	if hasFlag(args, "--json") {
		return a.printJSON(ids)
	}
	a.printTable(ids)
	return nil
}

// CmdEmail prints a random email address, optionally for a given name.
func (a *App) CmdEmail(args []string) error {
	pos := positional(args)
	switch len(pos) {
	case 0:
		fmt.Fprintln(a.Out, a.Gen.Generate(identity.Hints{}).Email)
	case 2:
		fmt.Fprintln(a.Out, a.Gen.Email(pos[0], pos[1]))
	default:
		return fmt.Errorf("%w: zpersona email [first last]", ErrUsage)
	}
	return nil
}

// CmdHistory lists or clears the generation history.
func (a *App) CmdHistory(args []string) error {
	pos := positional(args)
	return a.withLibrary(func(lib *library.Library, _ *store.Vault) error {
		if len(pos) > 0 {
			if pos[0] != "clear" {
				return fmt.Errorf("%w: zpersona history [clear]", ErrUsage)
			}
			if err := lib.ClearHistory(); err != nil {
				return err
			}
			fmt.Fprintln(a.Out, "history cleared")
			return nil
		}

		ids, err := lib.History()
		if err != nil {
			return err
		}
		return a.list(ids, hasFlag(args, "--json"), "no history")
	})
}

// CmdFavorites lists, adds or removes favorites.
func (a *App) CmdFavorites(args []string) error {
	pos := positional(args)
	return a.withLibrary(func(lib *library.Library, _ *store.Vault) error {
		if len(pos) == 0 {
			ids, err := lib.Favorites()
			if err != nil {
				return err
			}
			return a.list(ids, hasFlag(args, "--json"), "no favorites")
		}

		if len(pos) != 2 {
			return fmt.Errorf("%w: zpersona favorites [add|remove <id>]", ErrUsage)
		}

		id, err := lib.Find(pos[1])
		if err != nil {
			return err
		}

		switch pos[0] {
		case "add":
			added, err := lib.AddFavorite(id)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(a.Out, "%s is already a favorite\n", id.Name())
				return nil
			}
			fmt.Fprintf(a.Out, "added %s\n", id.Name())
		case "remove":
			if _, err := lib.RemoveFavorite(id.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "removed %s\n", id.Name())
		default:
			return fmt.Errorf("%w: zpersona favorites [add|remove <id>]", ErrUsage)
		}
		return nil
	})
}

// CmdExport writes a PDF document or QR code for a saved identity.
func (a *App) CmdExport(args []string) error {
	pos := positional(args)
	if len(pos) != 2 || (pos[0] != "pdf" && pos[0] != "qr") {
		return fmt.Errorf("%w: zpersona export pdf|qr <id> [-o file] [--terminal]", ErrUsage)
	}
	kind := pos[0]

	return a.withLibrary(func(lib *library.Library, _ *store.Vault) error {
		id, err := lib.Find(pos[1])
		if err != nil {
			return err
		}

		qr := export.NewQR(a.Config.QRCode.Size, a.Config.QRCode.Level)
		if kind == "qr" && hasFlag(args, "--terminal") {
			s, err := qr.Terminal(id)
			if err != nil {
				return err
			}
			fmt.Fprint(a.Out, s)
			return nil
		}

		var data []byte
		var ext string
		switch kind {
		case "pdf":
			var buf bytes.Buffer
			if err := export.WritePDF(&buf, id, a.Now()); err != nil {
				return err
			}
			data, ext = buf.Bytes(), "pdf"
		default:
			if data, err = qr.PNG(id); err != nil {
				return err
			}
			ext = "png"
		}

		path, err := a.writeExport(flagValue(args, "-o"), export.Filename(id, ext), data)
		if err != nil {
			return err
		}
		a.Log.Info("export written", "kind", kind, "path", path)
		fmt.Fprintf(a.Out, "wrote %s\n", path)
		return nil
	})
}

// CmdForget burns a saved identity: favorites, history and exported files.
func (a *App) CmdForget(ctx context.Context, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("%w: zpersona forget <id>", ErrUsage)
	}

	return a.withLibrary(func(lib *library.Library, _ *store.Vault) error {
		id, err := lib.Find(pos[0])
		if err != nil {
			return err
		}

		result := burn.Execute(ctx, burn.Request{
			Identity:  id,
			Favorites: lib,
			History:   lib,
			Exports:   zfilesystem.NewOSFileSystem(a.Config.ExportDir),
		})
		fmt.Fprintln(a.Out, result.Summary())

		if result.HasErrors() {
			return fmt.Errorf("forget %s: some steps failed", id.ID)
		}
		return nil
	})
}

// IsFirstRun checks whether the vault has been initialized.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "salt"))
	return err != nil
}

// OpenVault opens the vault in dir, creating it on first run.
func OpenVault(dir string, password func(first bool) (string, error)) (*store.Vault, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	pass, err := password(IsFirstRun(dir))
	if err != nil {
		return nil, err
	}

	return store.Open(zfilesystem.NewOSFileSystem(dir), pass)
}

// ReadPassword prompts for a password on w and reads it without echo.
func ReadPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// ReadNewPassword prompts for a new password with confirmation.
func ReadNewPassword(w io.Writer) (string, error) {
	pass, err := ReadPassword("master password: ", w)
	if err != nil {
		return "", err
	}
	confirm, err := ReadPassword("confirm password: ", w)
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return pass, nil
}

func promptPassword(first bool) (string, error) {
	if first {
		return ReadNewPassword(os.Stderr)
	}
	return ReadPassword("master password: ", os.Stderr)
}

func (a *App) withLibrary(fn func(*library.Library, *store.Vault) error) error {
	v, err := OpenVault(a.Config.DataDir, a.Password)
	if err != nil {
		return err
	}
	defer v.Close()
	a.Log.Debug("vault opened", "dir", a.Config.DataDir)

	return fn(library.New(v, library.WithHistoryLimit(a.Config.History.Limit)), v)
}

func (a *App) writeExport(out, name string, data []byte) (string, error) {
	if out != "" {
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return "", fmt.Errorf("write %s: %w", out, err)
		}
		return out, nil
	}

	dir := a.Config.ExportDir
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	if err := zfilesystem.NewOSFileSystem(dir).WriteFile(name, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return filepath.Join(dir, name), nil
}

// hints merges config defaults with command-line flags.
func (a *App) hints(args []string) (identity.Hints, error) {
	h := a.Config.Hints()

	if v := flagValue(args, "--gender"); v != "" {
		g := identity.ParseGender(v)
		if g == "" {
			return h, fmt.Errorf("%w: unknown gender %q", ErrUsage, v)
		}
		h.Gender = g
	}
	if v := flagValue(args, "--country"); v != "" {
		c, ok := identity.ParseCountry(v)
		if !ok {
			return h, fmt.Errorf("%w: unsupported country %q", ErrUsage, v)
		}
		h.Country = c
	}
	if v := flagValue(args, "--nationality"); v != "" {
		h.Nationality = v
	}
	if hasFlag(args, "--advanced") {
		h.Advanced = true
	}
	if hasFlag(args, "--basic") {
		h.Advanced = false
	}
	return h, nil
}

func (a *App) list(ids []identity.Identity, asJSON bool, empty string) error {
	if asJSON {
		return a.printJSON(ids)
	}
	if len(ids) == 0 {
		fmt.Fprintln(a.Out, empty)
		return nil
	}
	a.printTable(ids)
	return nil
}

func (a *App) printTable(ids []identity.Identity) {
	for _, id := range ids {
		fmt.Fprintf(a.Out, "  %-8s  %-24s  %-32s  %-8s  %s\n",
			shortID(id.ID),
			id.Name(),
			id.Email,
			id.Address.Country,
			id.CreatedAt.Format("2006-01-02"),
		)
	}
}

func (a *App) printIdentity(id identity.Identity) {
	w := a.Out
	fmt.Fprintf(w, "  id:          %s\n", id.ID)
	fmt.Fprintf(w, "  name:        %s\n", id.Name())
	fmt.Fprintf(w, "  gender:      %s\n", id.Gender)
	fmt.Fprintf(w, "  birth date:  %s (%d)\n", id.BirthDate, identity.Age(id.Birth(), id.CreatedAt))
	fmt.Fprintf(w, "  nationality: %s\n", id.Nationality)
	fmt.Fprintf(w, "  id number:   %s\n", id.IDNumber)
	fmt.Fprintf(w, "  email:       %s\n", id.Email)
	fmt.Fprintf(w, "  phone:       %s\n", id.Phone)
	fmt.Fprintf(w, "  address:     %s, %s %s, %s\n", id.Address.Street, id.Address.ZipCode, id.Address.City, id.Address.Country)

	d := id.Details
	if d == nil {
		return
	}
	if c := id.Address.Coordinates; c != nil {
		fmt.Fprintf(w, "  coordinates: %.5f, %.5f\n", c.Latitude, c.Longitude)
	}
	fmt.Fprintf(w, "  occupation:  %s\n", d.Occupation)
	fmt.Fprintf(w, "  education:   %s\n", d.Education)
	fmt.Fprintf(w, "  languages:   %s\n", strings.Join(d.Languages, ", "))
	fmt.Fprintf(w, "  traits:      %s\n", strings.Join(d.PersonalityTraits, ", "))
	fmt.Fprintf(w, "  body:        %d cm, %d kg, %s\n", d.Height, d.Weight, d.BloodType)
	fmt.Fprintf(w, "  card:        %s %s exp %s cvv %s\n", d.CreditCard.Type, d.CreditCard.Number, d.CreditCard.Expiry, d.CreditCard.CVV)
	fmt.Fprintf(w, "  linkedin:    %s\n", d.Social.LinkedIn)
	fmt.Fprintf(w, "  fingerprint: %s\n", d.Fingerprint)
	fmt.Fprintf(w, "  bio:         %s\n", d.Biography)
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}

// flagValue returns the value of --flag=value or --flag value.
func flagValue(args []string, flag string) string {
	for i, a := range args {
		if v, ok := strings.CutPrefix(a, flag+"="); ok {
			return v
		}
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// positional returns the arguments that are neither flags nor flag values.
func positional(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			out = append(out, a)
			continue
		}
		if valueFlags[a] {
			i++
		}
	}
	return out
}
