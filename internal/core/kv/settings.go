package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DiffStyle is the diff layout preference.
type DiffStyle string

const (
	DiffStyleSplit   DiffStyle = "split"
	DiffStyleUnified DiffStyle = "unified"
)

// Valid reports whether s is a known style.
func (s DiffStyle) Valid() bool {
	return s == DiffStyleSplit || s == DiffStyleUnified
}

// Toggle returns the other style.
func (s DiffStyle) Toggle() DiffStyle {
	if s == DiffStyleUnified {
		return DiffStyleSplit
	}
	return DiffStyleUnified
}

// TreeState is the remembered tree layout of one repository.
type TreeState struct {
	FocusedPath   string   `json:"focusedPath,omitempty"`
	FocusedStaged bool     `json:"focusedStaged,omitempty"`
	Collapsed     []string `json:"collapsed,omitempty"`
}

// IsZero reports whether st is the default layout: nothing focused and
// nothing collapsed.
func (st TreeState) IsZero() bool {
	return st.FocusedPath == "" && len(st.Collapsed) == 0
}

// ErrClosed is returned by Settings operations before Open or after Close.
var ErrClosed = errors.New("settings store is not open")

// Opener opens the backing store. The returned func releases it.
type Opener func(ctx context.Context) (KV, func() error, error)

// MemoryOpener opens a fresh in-memory store.
func MemoryOpener() Opener {
	return func(context.Context) (KV, func() error, error) {
		return NewMemory(), func() error { return nil }, nil
	}
}

// Settings persists user preferences. It is constructed once, opened
// explicitly, and passed to whatever needs it.
type Settings struct {
	open         Opener
	defaultStyle DiffStyle

	mu     sync.RWMutex
	store  KV
	closer func() error
	prefs  *TypedKV[string]
	trees  *TypedKV[TreeState]
}

// NewSettings creates a closed settings service. defaultStyle is returned by
// DiffStyle until a preference is stored.
func NewSettings(open Opener, defaultStyle DiffStyle) *Settings {
	if !defaultStyle.Valid() {
		defaultStyle = DiffStyleSplit
	}
	return &Settings{open: open, defaultStyle: defaultStyle}
}

// Open opens the backing store. Opening twice is a no-op.
func (s *Settings) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		return nil
	}

	store, closer, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	s.store = store
	s.closer = closer
	s.prefs = Scoped[string](store, "prefs")
	s.trees = Scoped[TreeState](store, "tree")
	return nil
}

// Close releases the backing store. Closing a closed service is a no-op.
func (s *Settings) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	err := s.closer()
	s.store, s.closer, s.prefs, s.trees = nil, nil, nil, nil
	return err
}

// Store returns the raw KV, or nil when closed.
func (s *Settings) Store() KV {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// DiffStyle returns the stored preference, or the default when unset,
// invalid, or the service is closed.
func (s *Settings) DiffStyle(ctx context.Context) DiffStyle {
	s.mu.RLock()
	prefs := s.prefs
	s.mu.RUnlock()

	if prefs == nil {
		return s.defaultStyle
	}
	v, err := prefs.GetOr(ctx, "diff_style", string(s.defaultStyle))
	if err != nil || !DiffStyle(v).Valid() {
		return s.defaultStyle
	}
	return DiffStyle(v)
}

// SetDiffStyle stores the preference.
func (s *Settings) SetDiffStyle(ctx context.Context, style DiffStyle) error {
	if !style.Valid() {
		return fmt.Errorf("invalid diff style %q", style)
	}

	s.mu.RLock()
	prefs := s.prefs
	s.mu.RUnlock()

	if prefs == nil {
		return ErrClosed
	}
	return prefs.Set(ctx, "diff_style", string(style))
}

// TreeState returns the remembered tree layout for repo. Missing state is the
// zero value.
func (s *Settings) TreeState(ctx context.Context, repo string) (TreeState, error) {
	s.mu.RLock()
	trees := s.trees
	s.mu.RUnlock()

	if trees == nil {
		return TreeState{}, ErrClosed
	}
	return trees.GetOr(ctx, repo, TreeState{})
}

// SaveTreeState remembers the tree layout for repo. The default layout is
// not stored; saving it forgets any earlier state.
func (s *Settings) SaveTreeState(ctx context.Context, repo string, st TreeState) error {
	s.mu.RLock()
	trees := s.trees
	s.mu.RUnlock()

	if trees == nil {
		return ErrClosed
	}
	if st.IsZero() {
		stored, err := trees.Has(ctx, repo)
		if err != nil || !stored {
			return err
		}
		return trees.Delete(ctx, repo)
	}
	return trees.Set(ctx, repo, st)
}
