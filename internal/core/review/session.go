package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/tinydiff/internal/core/logging"
)

// LoadStatus is the phase of an asynchronous load.
type LoadStatus int

const (
	LoadIdle LoadStatus = iota
	LoadLoading
	LoadSuccess
	LoadError
)

func (s LoadStatus) String() string {
	switch s {
	case LoadLoading:
		return "loading"
	case LoadSuccess:
		return "success"
	case LoadError:
		return "error"
	default:
		return "idle"
	}
}

// AsyncState is the loaded comment collection and its load status. Data is
// only meaningful when Status is LoadSuccess; Err only when LoadError.
type AsyncState struct {
	Status LoadStatus
	Data   Collection
	Err    error
}

// Result is the outcome of a mutating operation.
type Result struct {
	Success bool
	Err     error
}

func succeeded() Result       { return Result{Success: true} }
func failed(err error) Result { return Result{Err: err} }
func (r Result) Failed() bool { return !r.Success }

// Session mirrors one repository's comments and owns the single comment form.
// It is safe for concurrent use; provider calls never hold the lock.
type Session struct {
	provider Provider
	log      zerolog.Logger

	mu      sync.Mutex
	repo    string
	version uint64
	state   AsyncState
	form    FormState
}

// NewSession creates a session backed by provider.
func NewSession(provider Provider) *Session {
	return &Session{
		provider: provider,
		log:      logging.Component("review"),
	}
}

// Repo returns the repository the session was last loaded for.
func (s *Session) Repo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo
}

// State returns a snapshot of the load state.
func (s *Session) State() AsyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Data = st.Data.Clone()
	return st
}

// Comments returns the loaded collection, empty unless loaded successfully.
func (s *Session) Comments() Collection {
	st := s.State()
	if st.Status != LoadSuccess {
		return Collection{}
	}
	return st.Data
}

// Form returns the current form state.
func (s *Session) Form() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Load fetches the collection for repo. Switching repositories closes the form.
// A load superseded by a later Load is discarded when it completes.
func (s *Session) Load(ctx context.Context, repo string) error {
	s.mu.Lock()
	if repo != s.repo {
		s.form = ClosedForm()
	}
	s.repo = repo
	s.version++
	version := s.version
	s.state = AsyncState{Status: LoadLoading, Data: s.state.Data}
	s.mu.Unlock()

	ctx = logging.WithRepo(ctx, repo)

	var coll Collection
	err := guard(func() error {
		var err error
		coll, err = s.provider.Load(ctx, repo)
		return err
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if version != s.version {
		s.log.Debug().Ctx(ctx).Uint64("version", version).Msg("discarding stale comment load")
		return nil
	}

	if err != nil {
		s.log.Error().Ctx(ctx).Err(err).Msg("load comments")
		s.state = AsyncState{Status: LoadError, Err: err}
		return err
	}

	s.state = AsyncState{Status: LoadSuccess, Data: coll.Clone()}
	s.log.Debug().Ctx(ctx).Int("count", len(coll.Comments)).Msg("comments loaded")
	return nil
}

// Refresh reloads the current repository.
func (s *Session) Refresh(ctx context.Context) error {
	return s.Load(ctx, s.Repo())
}

// OpenForm opens the new-comment form, replacing any open form.
func (s *Session) OpenForm(side Side, lineNumber, startLine int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = PendingForm(side, lineNumber, startLine)
}

// StartEditing opens the edit form for id, replacing any open form.
func (s *Session) StartEditing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = EditingForm(id)
}

// StopEditing closes the form if it is editing; a pending form stays open.
func (s *Session) StopEditing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.Mode == FormEditing {
		s.form = ClosedForm()
	}
}

// CloseForm closes whatever form is open.
func (s *Session) CloseForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = ClosedForm()
}

// SaveComment persists a comment, then closes the form and reloads the
// collection so the local mirror reflects what the provider stored.
func (s *Session) SaveComment(ctx context.Context, c Comment, fileContents *string) Result {
	repo := s.Repo()
	ctx = logging.WithFile(logging.WithRepo(ctx, repo), c.FilePath)

	err := guard(func() error { return s.provider.Save(ctx, repo, c, fileContents) })
	if err != nil {
		s.log.Error().Ctx(ctx).Err(err).Str("id", c.ID).Msg("save comment")
		return failed(err)
	}

	s.CloseForm()
	if err := s.Load(ctx, repo); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("refresh after save")
	}

	s.log.Info().Ctx(ctx).Str("id", c.ID).Int("line", c.LineNumber).Msg("comment saved")
	return succeeded()
}

// Pending is an optimistic update that has been applied locally but not yet
// sent to the provider.
type Pending struct {
	s        *Session
	repo     string
	version  uint64
	comment  Comment
	snapshot Collection
}

// BeginUpdate replaces the comment with c.ID in the local collection and
// captures the previous collection for rollback.
func (s *Session) BeginUpdate(c Comment) *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Pending{
		s:        s,
		repo:     s.repo,
		version:  s.version,
		comment:  c,
		snapshot: s.state.Data.Clone(),
	}

	if s.state.Status == LoadSuccess {
		if patched, ok := s.state.Data.replace(c); ok {
			s.state.Data = patched
		}
	}
	return p
}

// Commit sends the update to the provider. On failure the local collection is
// restored to the snapshot taken by BeginUpdate, unless a newer load has
// replaced it since.
func (p *Pending) Commit(ctx context.Context, fileContents *string) Result {
	s := p.s
	ctx = logging.WithFile(logging.WithRepo(ctx, p.repo), p.comment.FilePath)

	err := guard(func() error { return s.provider.Save(ctx, p.repo, p.comment, fileContents) })
	if err == nil {
		s.log.Debug().Ctx(ctx).Str("id", p.comment.ID).Msg("comment updated")
		return succeeded()
	}

	s.mu.Lock()
	if s.version == p.version && s.state.Status == LoadSuccess {
		s.state.Data = p.snapshot
	}
	s.mu.Unlock()

	s.log.Error().Ctx(ctx).Err(err).Str("id", p.comment.ID).Msg("update comment, rolled back")
	return failed(err)
}

// UpdateComment applies c optimistically and commits it.
func (s *Session) UpdateComment(ctx context.Context, c Comment, fileContents *string) Result {
	return s.BeginUpdate(c).Commit(ctx, fileContents)
}

// DeleteComment removes a comment and reloads the collection. Deleting an
// unknown id is a failure with ErrNotFound.
func (s *Session) DeleteComment(ctx context.Context, id string) Result {
	repo := s.Repo()
	ctx = logging.WithRepo(ctx, repo)

	var found bool
	err := guard(func() error {
		var err error
		found, err = s.provider.Delete(ctx, repo, id)
		return err
	})
	if err != nil {
		s.log.Error().Ctx(ctx).Err(err).Str("id", id).Msg("delete comment")
		return failed(err)
	}
	if !found {
		return failed(fmt.Errorf("delete %s: %w", id, ErrNotFound))
	}

	s.mu.Lock()
	if s.form.Mode == FormEditing && s.form.CommentID == id {
		s.form = ClosedForm()
	}
	s.mu.Unlock()

	if err := s.Load(ctx, repo); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("refresh after delete")
	}

	s.log.Info().Ctx(ctx).Str("id", id).Msg("comment deleted")
	return succeeded()
}

// guard runs fn and converts a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("comment provider panic: %v", r)
		}
	}()
	return fn()
}
