// Package diff implements the interactive diff and review viewer.
package diff

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/colonyops/tinydiff/internal/core/fetch"
	"github.com/colonyops/tinydiff/internal/core/filetree"
	"github.com/colonyops/tinydiff/internal/core/git"
	"github.com/colonyops/tinydiff/internal/core/kv"
	"github.com/colonyops/tinydiff/internal/core/logging"
	"github.com/colonyops/tinydiff/internal/core/nav"
	"github.com/colonyops/tinydiff/internal/core/review"
	"github.com/colonyops/tinydiff/internal/store/jsonfile"
	"github.com/colonyops/tinydiff/internal/tui/components"
)

// FocusedPanel represents which panel has keyboard focus.
type FocusedPanel int

const (
	FocusFileTree FocusedPanel = iota
	FocusDiffViewer
)

// Comparer diffs two files outside of a repository.
type Comparer interface {
	ComparePaths(ctx context.Context, oldPath, newPath string) (git.FileContents, git.FileDiff, error)
}

// WatchFunc starts watching repo and returns its change stream.
type WatchFunc func(repo string) (<-chan jsonfile.Change, error)

// Options configures the viewer.
type Options struct {
	Mode      AppMode
	Paths     []string
	Git       git.Provider
	Compare   Comparer
	Comments  review.Provider // nil keeps comments in memory
	Settings  *kv.Settings    // nil disables persisted preferences
	Watch     WatchFunc       // nil disables live refresh
	Prerender *Prerenderer    // nil renders plain diffs
	Ignore    []string        // doublestar patterns hidden from the tree
	Icons     bool
}

// failure is an input error shown full screen until retried.
type failure struct {
	title string
	err   error
	retry func(m *Model) tea.Cmd
}

// Model is the root viewer model composing the file tree, diff pane, comment
// form and modals.
type Model struct {
	ctx  context.Context
	opts Options
	log  zerolog.Logger

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	mode    AppMode
	repo    string
	focused FocusedPanel

	tree   FileTreeModel
	viewer DiffViewerModel

	session   *review.Session
	fileReq   *fetch.Tracker
	statusReq *fetch.Tracker

	current      *git.ChangeRecord
	newText      string // new side of the shown file, used for anchoring
	textOK       bool
	statusLoaded bool
	autoOpened   bool
	pendingTree  *nav.State

	form          CommentForm
	formOpen      bool
	confirm       components.ConfirmModal
	confirming    bool
	pendingDelete string
	showHelp      bool
	failure       *failure
	notice        string

	changes <-chan jsonfile.Change

	width  int
	height int
}

// New creates the root model. ctx bounds every background request.
func New(ctx context.Context, opts Options) Model {
	provider := opts.Comments
	if provider == nil {
		provider = review.NewMemoryProvider()
	}

	style := kv.DiffStyleSplit
	if opts.Settings != nil {
		style = opts.Settings.DiffStyle(ctx)
	}

	focused := FocusFileTree
	if opts.Mode != ModeGit {
		focused = FocusDiffViewer
	}

	return Model{
		ctx:       ctx,
		opts:      opts,
		log:       logging.Component("tui"),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		mode:      opts.Mode,
		focused:   focused,
		tree:      NewFileTree(opts.Icons),
		viewer:    NewDiffViewer(style, opts.Icons),
		session:   review.NewSession(provider),
		fileReq:   &fetch.Tracker{},
		statusReq: &fetch.Tracker{},
	}
}

// Init starts loading whatever the mode needs.
func (m Model) Init() tea.Cmd {
	switch m.mode {
	case ModeGit:
		return tea.Batch(m.spinner.Tick, m.resolveRepo())
	case ModeFile:
		return tea.Batch(m.spinner.Tick, m.compareFiles())
	default:
		return nil
	}
}

// Update routes messages. A panic while handling one is shown as an error
// screen instead of tearing down the terminal.
func (m Model) Update(msg tea.Msg) (result tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Msg("update panicked")
			m.failure = &failure{title: "Internal error", err: fmt.Errorf("%v", r)}
			result, cmd = m, nil
		}
	}()
	return m.update(msg)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyDown(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case repoResolvedMsg:
		return m.handleRepoResolved(msg)

	case statusLoadedMsg:
		return m.handleStatusLoaded(msg)

	case fileLoadedMsg:
		return m.handleFileLoaded(msg)

	case commentsLoadedMsg:
		if msg.err != nil {
			m.notice = "comments unavailable: " + msg.err.Error()
		}
		m.refreshAnnotations()
		return m, nil

	case commentResultMsg:
		return m.handleCommentResult(msg)

	case fileSelectedMsg:
		return m, m.selectFile(msg.record)

	case treeStateChangedMsg:
		return m, m.saveTreeState(msg.state)

	case changeMsg:
		return m.handleChange(msg)
	}

	return m, nil
}

// SetSize updates the dimensions and propagates to child components.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	treeWidth, diffWidth, panelHeight := m.paneSizes()
	m.tree.SetSize(treeWidth, panelHeight)
	m.viewer.SetSize(diffWidth, panelHeight)
	if m.formOpen {
		m.form.SetWidth(m.viewer.boxWidth())
		m.viewer.SetFormView(m.form.View())
	}
}

// paneSizes splits the screen: the tree takes 30% in git mode, one column
// separates the panes and the status bar takes the last row.
func (m Model) paneSizes() (treeWidth, diffWidth, panelHeight int) {
	panelHeight = max(m.height-1, 1)
	if m.mode != ModeGit {
		return 0, m.width, panelHeight
	}
	treeWidth = m.width * 30 / 100
	diffWidth = max(m.width-treeWidth-1, 1)
	return treeWidth, diffWidth, panelHeight
}

// Repo returns the resolved repository root.
func (m Model) Repo() string { return m.repo }

// Focused returns the panel with keyboard focus.
func (m Model) Focused() FocusedPanel { return m.focused }

// Session returns the comment session.
func (m Model) Session() *review.Session { return m.session }

func (m Model) resolveRepo() tea.Cmd {
	ctx := m.ctx
	provider := m.opts.Git
	settings := m.opts.Settings
	path := ""
	if len(m.opts.Paths) > 0 {
		path = m.opts.Paths[0]
	}

	return func() tea.Msg {
		repo, err := provider.Discover(ctx, path)
		if err != nil {
			return repoResolvedMsg{err: err}
		}

		msg := repoResolvedMsg{repo: repo}
		if abs, err := filepath.Abs(path); err == nil {
			if info, err := os.Stat(abs); err == nil && !info.IsDir() {
				if rel, err := filepath.Rel(repo, abs); err == nil {
					msg.focus = filepath.ToSlash(rel)
				}
			}
		}
		if settings != nil {
			if ts, err := settings.TreeState(ctx, repo); err == nil {
				msg.tree = ts
			}
		}
		return msg
	}
}

func (m *Model) loadStatus() tea.Cmd {
	token, ctx := m.statusReq.Begin(m.ctx)
	provider := m.opts.Git
	repo := m.repo
	ignore := m.opts.Ignore

	return func() tea.Msg {
		st, err := provider.Status(ctx, repo)
		if err != nil {
			return statusLoadedMsg{token: token, err: err}
		}
		return statusLoadedMsg{token: token, status: filetree.FilterStatus(st, ignore)}
	}
}

func (m Model) loadComments() tea.Cmd {
	ctx := m.ctx
	session := m.session
	repo := m.repo
	return func() tea.Msg {
		return commentsLoadedMsg{err: session.Load(ctx, repo)}
	}
}

// selectFile shows rec, discarding the open form and line selection.
func (m *Model) selectFile(rec git.ChangeRecord) tea.Cmd {
	m.session.CloseForm()
	m.formOpen = false
	m.viewer.ClearSelection()
	m.current = &rec
	m.viewer.SetLoading(rec.Path)
	return m.loadFile(rec, false)
}

func (m *Model) loadFile(rec git.ChangeRecord, refresh bool) tea.Cmd {
	token, ctx := m.fileReq.Begin(m.ctx)
	provider := m.opts.Git
	repo := m.repo
	pr := m.opts.Prerender

	return func() tea.Msg {
		msg := fileLoadedMsg{token: token, record: rec, refresh: refresh}

		msg.contents, msg.err = provider.FileContents(ctx, repo, rec.Path, rec.Target())
		if msg.err != nil {
			return msg
		}
		msg.diff, msg.err = provider.FileDiff(ctx, repo, rec)
		if msg.err != nil {
			return msg
		}
		return parsePatch(ctx, msg, pr)
	}
}

func (m *Model) compareFiles() tea.Cmd {
	token, ctx := m.fileReq.Begin(m.ctx)
	compare := m.opts.Compare
	pr := m.opts.Prerender
	oldPath, newPath := m.opts.Paths[0], m.opts.Paths[1]

	return func() tea.Msg {
		msg := fileLoadedMsg{token: token, record: git.ChangeRecord{Path: newPath, OldPath: oldPath, Kind: git.StatusModified}}
		msg.contents, msg.diff, msg.err = compare.ComparePaths(ctx, oldPath, newPath)
		if msg.err != nil {
			return msg
		}
		msg.record.Path = msg.diff.Path
		return parsePatch(ctx, msg, pr)
	}
}

// parsePatch fills in the parsed lines and, when a prerenderer is set, the
// highlighted lines.
func parsePatch(ctx context.Context, msg fileLoadedMsg, pr *Prerenderer) fileLoadedMsg {
	if msg.diff.Binary {
		return msg
	}
	msg.lines, msg.err = ParseDiffLines(msg.diff.Patch)
	if msg.err != nil {
		msg.err = fmt.Errorf("parse diff of %s: %w", msg.record.Path, msg.err)
		return msg
	}
	if colored, ok := pr.Render(ctx, msg.diff.Patch); ok {
		msg.colored = colored
	}
	return msg
}

func (m Model) saveTreeState(st nav.State) tea.Cmd {
	settings := m.opts.Settings
	if settings == nil || m.repo == "" {
		return nil
	}
	ctx := m.ctx
	repo := m.repo
	log := m.log
	return func() tea.Msg {
		if err := settings.SaveTreeState(ctx, repo, toTreeState(st)); err != nil {
			log.Warn().Err(err).Msg("save tree state")
		}
		return nil
	}
}

func (m Model) saveDiffStyle(style kv.DiffStyle) tea.Cmd {
	settings := m.opts.Settings
	if settings == nil {
		return nil
	}
	ctx := m.ctx
	log := m.log
	return func() tea.Msg {
		if err := settings.SetDiffStyle(ctx, style); err != nil {
			log.Warn().Err(err).Msg("save diff style")
		}
		return nil
	}
}

func waitForChange(ch <-chan jsonfile.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		return changeMsg{change: c, ok: ok}
	}
}

func toTreeState(st nav.State) kv.TreeState {
	return kv.TreeState{
		FocusedPath:   st.FocusedPath,
		FocusedStaged: st.FocusedStaged,
		Collapsed:     st.Collapsed.Sorted(),
	}
}

func fromTreeState(ts kv.TreeState) nav.State {
	return nav.State{
		FocusedPath:   ts.FocusedPath,
		FocusedStaged: ts.FocusedStaged,
		Collapsed:     filetree.NewSet(ts.Collapsed...),
	}
}
