package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider wraps a MemoryProvider with injectable failures and gates.
type stubProvider struct {
	*MemoryProvider

	mu        sync.Mutex
	saveErr   error
	loadErr   error
	savePanic bool
	saveGate  chan struct{} // when set, Save blocks until closed
	loadGates map[string]chan struct{}
	saves     int
}

func newStub() *stubProvider {
	return &stubProvider{MemoryProvider: NewMemoryProvider(), loadGates: map[string]chan struct{}{}}
}

func (p *stubProvider) Load(ctx context.Context, repo string) (Collection, error) {
	p.mu.Lock()
	gate := p.loadGates[repo]
	err := p.loadErr
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return Collection{}, err
	}
	return p.MemoryProvider.Load(ctx, repo)
}

func (p *stubProvider) Save(ctx context.Context, repo string, c Comment, fileContents *string) error {
	p.mu.Lock()
	gate := p.saveGate
	err := p.saveErr
	panics := p.savePanic
	p.saves++
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if panics {
		panic("disk on fire")
	}
	if err != nil {
		return err
	}
	return p.MemoryProvider.Save(ctx, repo, c, fileContents)
}

func seeded(t *testing.T, bodies ...string) (*Session, *stubProvider, []Comment) {
	t.Helper()
	p := newStub()
	now := time.Unix(1700000000, 0)

	var comments []Comment
	for i, b := range bodies {
		c := NewComment("src/a.go", i+1, 0, b, now)
		require.NoError(t, p.MemoryProvider.Save(context.Background(), "/repo", c, nil))
		comments = append(comments, c)
	}

	s := NewSession(p)
	require.NoError(t, s.Load(context.Background(), "/repo"))
	return s, p, comments
}

func TestSession_Load(t *testing.T) {
	s, _, comments := seeded(t, "one", "two")

	st := s.State()
	assert.Equal(t, LoadSuccess, st.Status)
	assert.Len(t, st.Data.Comments, 2)
	assert.Equal(t, comments[0].ID, st.Data.Comments[0].ID)
	assert.Equal(t, "/repo", s.Repo())
}

func TestSession_LoadError(t *testing.T) {
	p := newStub()
	p.loadErr = errors.New("corrupt")
	s := NewSession(p)

	err := s.Load(context.Background(), "/repo")
	require.Error(t, err)

	st := s.State()
	assert.Equal(t, LoadError, st.Status)
	assert.EqualError(t, st.Err, "corrupt")
	assert.Empty(t, s.Comments().Comments)
}

func TestSession_LoadPanicBecomesError(t *testing.T) {
	s := NewSession(panicProvider{})

	err := s.Load(context.Background(), "/repo")
	require.Error(t, err)
	assert.Equal(t, LoadError, s.State().Status)
}

func TestSession_StaleLoadDiscarded(t *testing.T) {
	p := newStub()
	ctx := context.Background()
	require.NoError(t, p.MemoryProvider.Save(ctx, "/a", Comment{ID: "a1", FilePath: "x"}, nil))
	require.NoError(t, p.MemoryProvider.Save(ctx, "/b", Comment{ID: "b1", FilePath: "y"}, nil))

	gate := make(chan struct{})
	p.loadGates["/a"] = gate
	s := NewSession(p)

	done := make(chan error)
	go func() { done <- s.Load(ctx, "/a") }()

	// wait for the /a load to register as in flight
	require.Eventually(t, func() bool { return s.Repo() == "/a" }, time.Second, time.Millisecond)
	assert.Equal(t, LoadLoading, s.State().Status)

	require.NoError(t, s.Load(ctx, "/b"))
	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, "/b", s.Repo())
	coll := s.Comments()
	require.Len(t, coll.Comments, 1)
	assert.Equal(t, "b1", coll.Comments[0].ID)
}

func TestSession_FormTransitions(t *testing.T) {
	s := NewSession(NewMemoryProvider())
	assert.Equal(t, FormClosed, s.Form().Mode)

	s.OpenForm(SideAdditions, 10, 8)
	assert.Equal(t, PendingForm(SideAdditions, 10, 8), s.Form())

	s.StartEditing("abc")
	assert.Equal(t, EditingForm("abc"), s.Form(), "opening a form replaces the previous one")

	s.OpenForm(SideDeletions, 3, 0)
	s.StopEditing()
	assert.Equal(t, FormPending, s.Form().Mode, "stop editing leaves a pending form open")

	s.StartEditing("abc")
	s.StopEditing()
	assert.Equal(t, FormClosed, s.Form().Mode)

	s.OpenForm(SideAdditions, 1, 0)
	s.CloseForm()
	assert.Equal(t, FormClosed, s.Form().Mode)
}

func TestSession_LoadNewRepoClosesForm(t *testing.T) {
	s, _, _ := seeded(t, "x")
	s.OpenForm(SideAdditions, 1, 0)

	require.NoError(t, s.Load(context.Background(), "/repo"))
	assert.True(t, s.Form().IsOpen(), "reloading the same repo keeps the form")

	require.NoError(t, s.Load(context.Background(), "/other"))
	assert.False(t, s.Form().IsOpen())
}

func TestSession_SaveComment(t *testing.T) {
	s, _, _ := seeded(t, "one")
	s.OpenForm(SideAdditions, 5, 0)

	c := NewComment("src/a.go", 5, 0, "new", time.Now())
	contents := "a\nb\n"
	res := s.SaveComment(context.Background(), c, &contents)

	require.True(t, res.Success, "err: %v", res.Err)
	assert.False(t, s.Form().IsOpen(), "form closes on success")

	got, ok := s.Comments().Find(c.ID)
	require.True(t, ok, "collection refreshed from provider")
	assert.Equal(t, "new", got.Body)
}

func TestSession_SaveCommentFailureKeepsForm(t *testing.T) {
	s, p, _ := seeded(t, "one")
	p.saveErr = errors.New("read-only")
	s.OpenForm(SideAdditions, 5, 0)

	res := s.SaveComment(context.Background(), NewComment("src/a.go", 5, 0, "new", time.Now()), nil)

	assert.False(t, res.Success)
	assert.True(t, res.Failed())
	assert.EqualError(t, res.Err, "read-only")
	assert.True(t, s.Form().IsOpen())
	assert.Len(t, s.Comments().Comments, 1)
}

func TestSession_SavePanicIsFailure(t *testing.T) {
	s, p, _ := seeded(t, "one")
	p.savePanic = true

	var res Result
	assert.NotPanics(t, func() {
		res = s.SaveComment(context.Background(), NewComment("src/a.go", 1, 0, "x", time.Now()), nil)
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Err.Error(), "disk on fire")
}

func TestSession_UpdateComment(t *testing.T) {
	s, p, comments := seeded(t, "one")

	updated := comments[0].WithBody("edited", time.Now())
	res := s.UpdateComment(context.Background(), updated, nil)
	require.True(t, res.Success)

	got, _ := s.Comments().Find(updated.ID)
	assert.Equal(t, "edited", got.Body)

	stored, _ := p.MemoryProvider.Load(context.Background(), "/repo")
	persisted, _ := stored.Find(updated.ID)
	assert.Equal(t, "edited", persisted.Body)
}

func TestSession_UpdateRollsBackWhilePendingCallFails(t *testing.T) {
	s, p, comments := seeded(t, "original", "other")
	gate := make(chan struct{})
	p.saveGate = gate
	p.saveErr = errors.New("backend down")

	updated := comments[0].WithBody("optimistic", time.Now())
	pending := s.BeginUpdate(updated)

	result := make(chan Result)
	go func() { result <- pending.Commit(context.Background(), nil) }()

	// the patch is visible while the backend call is blocked
	got, _ := s.Comments().Find(updated.ID)
	assert.Equal(t, "optimistic", got.Body)

	close(gate)
	res := <-result

	assert.False(t, res.Success)
	assert.EqualError(t, res.Err, "backend down")

	got, _ = s.Comments().Find(updated.ID)
	assert.Equal(t, "original", got.Body, "rolled back to the snapshot")
	other, _ := s.Comments().Find(comments[1].ID)
	assert.Equal(t, "other", other.Body)
}

func TestSession_ToggleResolveOptimistic(t *testing.T) {
	s, _, comments := seeded(t, "one")

	res := s.UpdateComment(context.Background(), comments[0].ToggleResolved(time.Now()), nil)
	require.True(t, res.Success)

	got, _ := s.Comments().Find(comments[0].ID)
	assert.True(t, got.Resolved)
}

func TestSession_DeleteComment(t *testing.T) {
	s, _, comments := seeded(t, "one", "two")
	s.StartEditing(comments[0].ID)

	res := s.DeleteComment(context.Background(), comments[0].ID)
	require.True(t, res.Success)

	_, ok := s.Comments().Find(comments[0].ID)
	assert.False(t, ok)
	assert.Len(t, s.Comments().Comments, 1)
	assert.False(t, s.Form().IsOpen(), "editing form for the deleted comment closes")
}

func TestSession_DeleteUnknownIsNotFound(t *testing.T) {
	s, _, _ := seeded(t, "one")

	res := s.DeleteComment(context.Background(), "missing")
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrNotFound)
	assert.Len(t, s.Comments().Comments, 1)
}

type panicProvider struct{}

func (panicProvider) Load(context.Context, string) (Collection, error) { panic("boom") }
func (panicProvider) Save(context.Context, string, Comment, *string) error {
	panic("boom")
}
func (panicProvider) Delete(context.Context, string, string) (bool, error) { panic("boom") }
