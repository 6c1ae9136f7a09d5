// Package burn implements best-effort cascading deletion of a persona.
package burn

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/zarlcorp/core/pkg/zfilesystem"

	"github.com/zarlcorp/zpersona/internal/export"
	"github.com/zarlcorp/zpersona/internal/identity"
)

// FavoriteRemover drops an identity from the favorites.
type FavoriteRemover interface {
	RemoveFavorite(id string) (bool, error)
}

// HistoryRemover drops an identity from the history.
type HistoryRemover interface {
	Remove(id string) (bool, error)
}

// Request describes what to burn.
type Request struct {
	Identity  identity.Identity
	Favorites FavoriteRemover
	History   HistoryRemover
	Exports   zfilesystem.ReadWriteFileFS // nil if exports are not tracked
}

// StepStatus records the outcome of one cascade step.
type StepStatus struct {
	Description string
	Err         error
}

// Result summarizes a completed burn.
type Result struct {
	Name       string
	FilesCount int
	Steps      []StepStatus
}

// HasErrors returns true if any step failed.
func (r Result) HasErrors() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Summary returns a human-readable summary of the burn result.
func (r Result) Summary() string {
	var b strings.Builder

	if r.HasErrors() {
		fmt.Fprintf(&b, "burned %s (with errors)", r.Name)
	} else {
		fmt.Fprintf(&b, "burned %s", r.Name)
	}

	for _, s := range r.Steps {
		if s.Err != nil {
			fmt.Fprintf(&b, "\n- %s: %v", s.Description, s.Err)
		} else {
			fmt.Fprintf(&b, "\n- %s", s.Description)
		}
	}

	return b.String()
}

// Plan returns a list of human-readable descriptions of what will happen.
// Used to populate the confirmation dialog.
func Plan(req Request) []string {
	var steps []string

	if req.Favorites != nil {
		steps = append(steps, "remove from favorites")
	}
	if req.History != nil {
		steps = append(steps, "remove from history")
	}

	if req.Exports != nil {
		files, err := exportedFiles(req)
		if err != nil {
			steps = append(steps, "delete exported files")
		} else {
			steps = append(steps, fmt.Sprintf("delete exported files (%d)", len(files)))
		}
	}

	return steps
}

// Execute runs the burn cascade. It is best-effort: each step is attempted
// regardless of whether previous steps failed.
func Execute(ctx context.Context, req Request) Result {
	result := Result{Name: req.Identity.Name()}

	if req.Favorites != nil {
		result.removeFavorite(req)
	}

	if req.History != nil {
		result.removeHistory(req)
	}

	if req.Exports != nil {
		result.deleteExports(ctx, req)
	}

	return result
}

func (r *Result) removeFavorite(req Request) {
	removed, err := req.Favorites.RemoveFavorite(req.Identity.ID)
	switch {
	case err != nil:
		r.Steps = append(r.Steps, StepStatus{Description: "remove from favorites", Err: err})
	case removed:
		r.Steps = append(r.Steps, StepStatus{Description: "removed from favorites"})
	default:
		r.Steps = append(r.Steps, StepStatus{Description: "not in favorites"})
	}
}

func (r *Result) removeHistory(req Request) {
	removed, err := req.History.Remove(req.Identity.ID)
	switch {
	case err != nil:
		r.Steps = append(r.Steps, StepStatus{Description: "remove from history", Err: err})
	case removed:
		r.Steps = append(r.Steps, StepStatus{Description: "removed from history"})
	default:
		r.Steps = append(r.Steps, StepStatus{Description: "not in history"})
	}
}

func (r *Result) deleteExports(ctx context.Context, req Request) {
	files, err := exportedFiles(req)
	if err != nil {
		r.Steps = append(r.Steps, StepStatus{
			Description: "delete exported files",
			Err:         fmt.Errorf("list exports: %w", err),
		})
		return
	}

	var errs []string
	deleted := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err.Error())
			break
		}
		if err := req.Exports.Remove(f); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f, err))
			continue
		}
		deleted++
	}

	r.FilesCount = deleted

	if len(errs) > 0 {
		r.Steps = append(r.Steps, StepStatus{
			Description: fmt.Sprintf("deleted %d/%d exported files", deleted, len(files)),
			Err:         fmt.Errorf("%s", strings.Join(errs, "; ")),
		})
		return
	}

	r.Steps = append(r.Steps, StepStatus{
		Description: fmt.Sprintf("deleted %d exported files", deleted),
	})
}

// exportedFiles lists files in the export directory written for the identity.
func exportedFiles(req Request) ([]string, error) {
	prefix := export.Prefix(req.Identity) + "."

	var files []string
	err := req.Exports.WalkDir(".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != "." {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(path.Base(p), prefix) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return files, nil
}
