package burn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"

	"github.com/zarlcorp/zpersona/internal/export"
	"github.com/zarlcorp/zpersona/internal/identity"
)

// fakes

type fakeFavorites struct {
	ids []string
	err error
}

func (f *fakeFavorites) RemoveFavorite(id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for i, v := range f.ids {
		if v == id {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeHistory struct {
	ids []string
	err error
}

func (f *fakeHistory) Remove(id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for i, v := range f.ids {
		if v == id {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// helpers

func testIdentity() identity.Identity {
	return identity.Identity{
		ID:        "3f2b8c1a-1111-4222-8333-444455556666",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane.doe@tempmail.com",
		Phone:     "+1 555-123-4567",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func exportsFS(t *testing.T, names ...string) *zfilesystem.MemFS {
	t.Helper()
	fs := zfilesystem.NewMemFS()
	for _, n := range names {
		if err := fs.WriteFile(n, []byte("x"), 0o600); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}
	return fs
}

// tests

func TestExecuteFullCascade(t *testing.T) {
	id := testIdentity()
	favs := &fakeFavorites{ids: []string{id.ID, "other"}}
	hist := &fakeHistory{ids: []string{"other", id.ID}}
	exports := exportsFS(t,
		export.Filename(id, "pdf"),
		export.Filename(id, "png"),
		"identity-john-smith-aaaaaaaa.pdf",
	)

	result := Execute(context.Background(), Request{
		Identity:  id,
		Favorites: favs,
		History:   hist,
		Exports:   exports,
	})

	if result.HasErrors() {
		t.Errorf("unexpected errors: %s", result.Summary())
	}

	if len(favs.ids) != 1 || favs.ids[0] != "other" {
		t.Errorf("favorites after burn = %v, want [other]", favs.ids)
	}

	if len(hist.ids) != 1 || hist.ids[0] != "other" {
		t.Errorf("history after burn = %v, want [other]", hist.ids)
	}

	if result.FilesCount != 2 {
		t.Errorf("files deleted = %d, want 2", result.FilesCount)
	}

	if _, err := exports.ReadFile(export.Filename(id, "pdf")); err == nil {
		t.Error("pdf export still present")
	}

	if _, err := exports.ReadFile("identity-john-smith-aaaaaaaa.pdf"); err != nil {
		t.Errorf("unrelated export removed: %v", err)
	}

	if len(result.Steps) != 3 {
		t.Errorf("steps = %d, want 3", len(result.Steps))
	}
}

func TestExecuteNoExports(t *testing.T) {
	id := testIdentity()

	result := Execute(context.Background(), Request{
		Identity:  id,
		Favorites: &fakeFavorites{ids: []string{id.ID}},
		History:   &fakeHistory{ids: []string{id.ID}},
	})

	if result.HasErrors() {
		t.Errorf("unexpected errors: %s", result.Summary())
	}

	// only favorites + history steps
	if len(result.Steps) != 2 {
		t.Errorf("steps = %d, want 2", len(result.Steps))
	}
}

func TestExecuteNotPresent(t *testing.T) {
	result := Execute(context.Background(), Request{
		Identity:  testIdentity(),
		Favorites: &fakeFavorites{},
		History:   &fakeHistory{},
		Exports:   exportsFS(t),
	})

	if result.HasErrors() {
		t.Errorf("unexpected errors: %s", result.Summary())
	}

	summary := result.Summary()
	for _, want := range []string{"not in favorites", "not in history", "deleted 0 exported files"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary should contain %q: %s", want, summary)
		}
	}
}

func TestExecuteFavoritesFailureContinues(t *testing.T) {
	id := testIdentity()
	hist := &fakeHistory{ids: []string{id.ID}}

	result := Execute(context.Background(), Request{
		Identity:  id,
		Favorites: &fakeFavorites{err: fmt.Errorf("vault locked")},
		History:   hist,
	})

	if !result.HasErrors() {
		t.Error("should have errors when favorites removal fails")
	}

	// history should still be cleaned
	if len(hist.ids) != 0 {
		t.Errorf("history after burn = %v, want empty", hist.ids)
	}

	if !strings.Contains(result.Summary(), "vault locked") {
		t.Errorf("summary should contain error: %s", result.Summary())
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	id := testIdentity()
	exports := exportsFS(t, export.Filename(id, "pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Execute(ctx, Request{Identity: id, Exports: exports})

	if !result.HasErrors() {
		t.Error("should have errors when context is cancelled")
	}

	if result.FilesCount != 0 {
		t.Errorf("files deleted = %d, want 0", result.FilesCount)
	}

	if !strings.Contains(result.Summary(), "0/1") {
		t.Errorf("summary should report partial deletion: %s", result.Summary())
	}
}

func TestExecuteAllFailures(t *testing.T) {
	result := Execute(context.Background(), Request{
		Identity:  testIdentity(),
		Favorites: &fakeFavorites{err: fmt.Errorf("favorites error")},
		History:   &fakeHistory{err: fmt.Errorf("history error")},
	})

	if !result.HasErrors() {
		t.Error("should have errors")
	}

	// both steps should be attempted
	if len(result.Steps) != 2 {
		t.Errorf("steps = %d, want 2", len(result.Steps))
	}

	// every step should have an error
	for i, s := range result.Steps {
		if s.Err == nil {
			t.Errorf("step %d (%s) should have error", i, s.Description)
		}
	}

	summary := result.Summary()
	if !strings.Contains(summary, "with errors") {
		t.Errorf("summary should say 'with errors': %s", summary)
	}
}

func TestPlanFull(t *testing.T) {
	id := testIdentity()

	steps := Plan(Request{
		Identity:  id,
		Favorites: &fakeFavorites{},
		History:   &fakeHistory{},
		Exports:   exportsFS(t, export.Filename(id, "pdf"), export.Filename(id, "png")),
	})

	if len(steps) != 3 {
		t.Fatalf("plan steps = %d, want 3", len(steps))
	}

	if !strings.Contains(steps[2], "exported files (2)") {
		t.Errorf("step 2 = %q, want export count", steps[2])
	}
}

func TestPlanNoExports(t *testing.T) {
	steps := Plan(Request{
		Identity:  testIdentity(),
		Favorites: &fakeFavorites{},
		History:   &fakeHistory{},
	})

	if len(steps) != 2 {
		t.Fatalf("plan steps = %d, want 2", len(steps))
	}

	if !strings.Contains(steps[0], "favorites") {
		t.Errorf("step 0 = %q, want favorites", steps[0])
	}
}

func TestResultSummaryNoErrors(t *testing.T) {
	r := Result{
		Name:       "Jane Doe",
		FilesCount: 1,
		Steps: []StepStatus{
			{Description: "removed from favorites"},
			{Description: "deleted 1 exported files"},
		},
	}

	s := r.Summary()
	if strings.Contains(s, "with errors") {
		t.Errorf("summary should not say 'with errors': %s", s)
	}
	if !strings.Contains(s, "burned Jane Doe") {
		t.Errorf("summary should contain name: %s", s)
	}
}

func TestResultSummaryWithErrors(t *testing.T) {
	r := Result{
		Name: "Jane Doe",
		Steps: []StepStatus{
			{Description: "removed from favorites"},
			{Description: "remove from history", Err: errors.New("disk full")},
		},
	}

	s := r.Summary()
	if !strings.Contains(s, "with errors") {
		t.Errorf("summary should say 'with errors': %s", s)
	}
	if !strings.Contains(s, "disk full") {
		t.Errorf("summary should include the error: %s", s)
	}
}
