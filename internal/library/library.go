// Package library keeps the generation history and the favorites list.
// Both are JSON arrays stored as single blobs in a key-value store.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/zarlcorp/zpersona/internal/identity"
	"github.com/zarlcorp/zpersona/internal/store"
)

const (
	historyKey   = "history"
	favoritesKey = "favorites"

	// DefaultHistoryLimit is the number of history entries kept.
	DefaultHistoryLimit = 20

	// minPrefix is the shortest ID prefix Find accepts.
	minPrefix = 4
)

var (
	// ErrNotFound is returned when no saved identity matches.
	ErrNotFound = errors.New("identity not found")
	// ErrAmbiguous is returned when an ID prefix matches several identities.
	ErrAmbiguous = errors.New("ambiguous id prefix")
)

// Library manages history and favorites on top of a KV store.
// It is safe for concurrent use.
type Library struct {
	mu    sync.Mutex
	kv    store.KV
	limit int
}

// Option configures a Library.
type Option func(*Library)

// WithHistoryLimit caps the history length. Values below 1 are ignored.
func WithHistoryLimit(n int) Option {
	return func(l *Library) {
		if n > 0 {
			l.limit = n
		}
	}
}

// New creates a library over kv.
func New(kv store.KV, opts ...Option) *Library {
	l := &Library{kv: kv, limit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record prepends id to the history, dropping any older entry with the
// same ID and anything past the limit.
func (l *Library) Record(id identity.Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.load(historyKey)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}

	list = slices.DeleteFunc(list, func(e identity.Identity) bool { return e.ID == id.ID })
	list = append([]identity.Identity{id}, list...)
	if len(list) > l.limit {
		list = list[:l.limit]
	}

	if err := l.save(historyKey, list); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// History returns the history, most recent first.
func (l *Library) History() ([]identity.Identity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.load(historyKey)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return list, nil
}

// ClearHistory empties the history.
func (l *Library) ClearHistory() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.kv.Delete(historyKey); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Remove drops id from the history. It reports whether an entry was removed.
func (l *Library) Remove(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed, err := l.remove(historyKey, id)
	if err != nil {
		return false, fmt.Errorf("remove from history: %w", err)
	}
	return removed, nil
}

// AddFavorite appends id to the favorites. Adding an ID that is already a
// favorite is a no-op and reports false.
func (l *Library) AddFavorite(id identity.Identity) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.load(favoritesKey)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}

	if slices.ContainsFunc(list, func(e identity.Identity) bool { return e.ID == id.ID }) {
		return false, nil
	}

	if err := l.save(favoritesKey, append(list, id)); err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	return true, nil
}

// RemoveFavorite drops id from the favorites. It reports whether an entry
// was removed.
func (l *Library) RemoveFavorite(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed, err := l.remove(favoritesKey, id)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	return removed, nil
}

// Favorites returns the favorites in insertion order.
func (l *Library) Favorites() ([]identity.Identity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.load(favoritesKey)
	if err != nil {
		return nil, fmt.Errorf("favorites: %w", err)
	}
	return list, nil
}

// IsFavorite reports whether id is in the favorites.
func (l *Library) IsFavorite(id string) (bool, error) {
	favs, err := l.Favorites()
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(favs, func(e identity.Identity) bool { return e.ID == id }), nil
}

// Find looks id up in the favorites, then the history. An exact match wins;
// otherwise a unique prefix of at least four characters is accepted.
func (l *Library) Find(id string) (identity.Identity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return identity.Identity{}, ErrNotFound
	}

	var all []identity.Identity
	for _, key := range []string{favoritesKey, historyKey} {
		list, err := l.load(key)
		if err != nil {
			return identity.Identity{}, fmt.Errorf("find %s: %w", id, err)
		}
		all = append(all, list...)
	}

	for _, e := range all {
		if e.ID == id {
			return e, nil
		}
	}

	if len(id) < minPrefix {
		return identity.Identity{}, ErrNotFound
	}

	var match *identity.Identity
	for i, e := range all {
		if !strings.HasPrefix(e.ID, id) {
			continue
		}
		if match != nil && match.ID != e.ID {
			return identity.Identity{}, fmt.Errorf("find %s: %w", id, ErrAmbiguous)
		}
		match = &all[i]
	}
	if match == nil {
		return identity.Identity{}, ErrNotFound
	}
	return *match, nil
}

func (l *Library) remove(key, id string) (bool, error) {
	list, err := l.load(key)
	if err != nil {
		return false, err
	}

	n := len(list)
	list = slices.DeleteFunc(list, func(e identity.Identity) bool { return e.ID == id })
	if len(list) == n {
		return false, nil
	}

	if err := l.save(key, list); err != nil {
		return false, err
	}
	return true, nil
}

// load returns an empty list when the key has never been written.
func (l *Library) load(key string) ([]identity.Identity, error) {
	data, err := l.kv.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return []identity.Identity{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var list []identity.Identity
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if list == nil {
		list = []identity.Identity{}
	}
	return list, nil
}

func (l *Library) save(key string, list []identity.Identity) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := l.kv.Set(key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
