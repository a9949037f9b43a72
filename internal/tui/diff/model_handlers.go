package diff

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/tinydiff/internal/core/annotations"
	"github.com/colonyops/tinydiff/internal/core/filetree"
	"github.com/colonyops/tinydiff/internal/core/git"
	"github.com/colonyops/tinydiff/internal/core/review"
	"github.com/colonyops/tinydiff/internal/store/jsonfile"
	"github.com/colonyops/tinydiff/internal/tui/components"
)

// now is replaced in tests.
var now = time.Now

// handleKeyDown routes a key press. Modal layers take precedence over the
// panes; the focused pane gets whatever is left.
func (m Model) handleKeyDown(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	if m.failure != nil {
		switch {
		case key.Matches(msg, m.keys.Retry):
			f := m.failure
			m.failure = nil
			if f.retry == nil {
				return m, nil
			}
			return m, f.retry(&m)
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		}
		return m, nil
	}

	if m.confirming {
		m.confirm, _ = m.confirm.Update(msg)
		if !m.confirm.Done() {
			return m, nil
		}
		m.confirming = false
		if m.confirm.Confirmed() {
			return m, m.deleteComment(m.pendingDelete)
		}
		m.pendingDelete = ""
		return m, nil
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Cancel, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.formOpen {
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m, m.submitComment()
		case key.Matches(msg, m.keys.Cancel):
			m.cancelComment()
			return m, nil
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		m.viewer.SetFormView(m.form.View())
		return m, cmd
	}

	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case m.mode == ModeEmpty:
		return m, nil
	case key.Matches(msg, m.keys.SwitchPane):
		if m.mode == ModeGit {
			if m.focused == FocusFileTree {
				m.focused = FocusDiffViewer
			} else {
				m.focused = FocusFileTree
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.ToggleStyle):
		style := m.viewer.Style().Toggle()
		m.viewer.SetStyle(style)
		return m, m.saveDiffStyle(style)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	}

	if m.focused == FocusFileTree {
		var cmd tea.Cmd
		m.tree, cmd = m.tree.Update(msg)
		return m, cmd
	}

	if m.mode == ModeGit {
		switch {
		case key.Matches(msg, m.keys.AddComment):
			return m, m.addComment()
		case key.Matches(msg, m.keys.Resolve):
			return m, m.resolveComment()
		case key.Matches(msg, m.keys.Edit):
			return m, m.editComment()
		case key.Matches(msg, m.keys.Delete):
			m.confirmDelete()
			return m, nil
		}
	}

	if key.Matches(msg, m.keys.Cancel) {
		m.viewer.ClearSelection()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewer, cmd = m.viewer.Update(msg)
	return m, cmd
}

func (m Model) quit() (Model, tea.Cmd) {
	m.fileReq.Cancel()
	m.statusReq.Cancel()
	return m, tea.Quit
}

// refresh reloads the tree, the shown file and the comments.
func (m *Model) refresh() tea.Cmd {
	switch m.mode {
	case ModeFile:
		return m.compareFiles()
	case ModeGit:
		if m.repo == "" {
			return m.resolveRepo()
		}
		cmds := []tea.Cmd{m.loadStatus(), m.loadComments()}
		if m.current != nil {
			cmds = append(cmds, m.loadFile(*m.current, true))
		}
		return tea.Batch(cmds...)
	}
	return nil
}

func (m Model) handleRepoResolved(msg repoResolvedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.fail("Error loading repository", msg.err, func(m *Model) tea.Cmd { return m.resolveRepo() })
		return m, nil
	}

	m.repo = msg.repo
	st := fromTreeState(msg.tree)
	if msg.focus != "" {
		st.FocusedPath = msg.focus
		st.FocusedStaged = false
	}
	m.pendingTree = &st

	m.log.Info().Str("repo", m.repo).Msg("repository opened")

	cmds := []tea.Cmd{m.loadStatus(), m.loadComments()}
	if m.opts.Watch != nil && m.changes == nil {
		ch, err := m.opts.Watch(m.repo)
		if err != nil {
			m.log.Warn().Err(err).Msg("watch repository")
		} else {
			m.changes = ch
			cmds = append(cmds, waitForChange(ch))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleStatusLoaded(msg statusLoadedMsg) (Model, tea.Cmd) {
	if !m.statusReq.Current(msg.token) {
		return m, nil
	}

	if msg.err != nil {
		if !m.statusLoaded {
			m.fail("Error loading repository status", msg.err, func(m *Model) tea.Cmd { return m.loadStatus() })
			return m, nil
		}
		m.log.Warn().Err(msg.err).Msg("refresh status")
		m.notice = "refresh failed: " + msg.err.Error()
		return m, nil
	}

	m.statusLoaded = true
	m.tree.SetTree(filetree.Build(msg.status))

	// the remembered focus was cleared while the tree was still empty
	if m.pendingTree != nil {
		m.tree.SetState(*m.pendingTree)
		m.pendingTree = nil
	}

	if m.current != nil && !hasRecord(msg.status, *m.current) {
		m.fileReq.Invalidate()
		m.current = nil
		m.session.CloseForm()
		m.formOpen = false
		m.viewer.Clear()
	}

	if !m.autoOpened {
		m.autoOpened = true
		if node, ok := m.tree.Focused(); ok && !node.IsDir() {
			return m, m.selectFile(*node.Record)
		}
	}
	return m, nil
}

func hasRecord(st git.Status, rec git.ChangeRecord) bool {
	for _, list := range [][]git.ChangeRecord{st.Staged, st.Unstaged, st.Untracked} {
		for _, r := range list {
			if r.Path == rec.Path && r.Staged == rec.Staged {
				return true
			}
		}
	}
	return false
}

func (m Model) handleFileLoaded(msg fileLoadedMsg) (Model, tea.Cmd) {
	if !m.fileReq.Current(msg.token) {
		m.log.Debug().Str("path", msg.record.Path).Msg("dropping stale file response")
		return m, nil
	}

	if msg.err != nil {
		if msg.refresh {
			m.log.Warn().Err(msg.err).Str("path", msg.record.Path).Msg("refresh file")
			m.notice = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		rec := msg.record
		retry := func(m *Model) tea.Cmd { return m.selectFile(rec) }
		if m.mode == ModeFile {
			retry = func(m *Model) tea.Cmd { return m.compareFiles() }
		}
		m.fail("Error loading "+msg.record.Path, msg.err, retry)
		return m, nil
	}

	rec := msg.record
	m.current = &rec
	m.newText = msg.contents.NewFile.Text()
	m.textOK = !msg.contents.NewFile.IsBinary()
	m.viewer.SetDiff(rec.Path, msg.lines, msg.colored, msg.diff.Binary)
	m.refreshAnnotations()
	return m, nil
}

func (m Model) handleChange(msg changeMsg) (Model, tea.Cmd) {
	if !msg.ok {
		m.changes = nil
		return m, nil
	}

	m.log.Debug().Stringer("kind", msg.change.Kind).Msg("repository changed")

	var cmds []tea.Cmd
	switch msg.change.Kind {
	case jsonfile.ChangeComments:
		cmds = append(cmds, m.loadComments())
	default:
		cmds = append(cmds, m.loadStatus())
		if m.current != nil && !m.formOpen {
			cmds = append(cmds, m.loadFile(*m.current, true))
		}
	}
	cmds = append(cmds, waitForChange(m.changes))
	return m, tea.Batch(cmds...)
}

func (m *Model) fail(title string, err error, retry func(m *Model) tea.Cmd) {
	m.log.Error().Err(err).Msg(title)
	m.failure = &failure{title: title, err: err, retry: retry}
}

// refreshAnnotations recomputes the annotations of the shown file from the
// session's comments re-anchored against the current file contents.
func (m *Model) refreshAnnotations() {
	if m.mode != ModeGit || m.current == nil {
		m.viewer.SetAnnotations(nil)
		return
	}

	comments := m.session.Comments().ForFile(m.current.Path)
	if m.textOK {
		comments = review.ReanchorAll(comments, m.newText)
	}

	if m.formOpen {
		m.viewer.SetFormView(m.form.View())
	} else {
		m.viewer.SetFormView("")
	}
	m.viewer.SetAnnotations(annotations.Build(comments, m.current.Path, m.session.Form()))
}

// contentsForSave returns the file text used to anchor a saved comment.
func (m Model) contentsForSave() *string {
	if !m.textOK {
		return nil
	}
	text := m.newText
	return &text
}

func (m Model) commentsReady() bool {
	if m.session.State().Status != review.LoadSuccess {
		return false
	}
	return m.current != nil && !m.viewer.Binary() && !m.viewer.Loading()
}

// addComment opens the form on the selected lines (onAddComment).
func (m *Model) addComment() tea.Cmd {
	if !m.commentsReady() {
		m.notice = "comments are not available for this file"
		return nil
	}

	sel, ok := m.viewer.Selection()
	if !ok {
		m.notice = "move the cursor to a diff line to comment"
		return nil
	}
	if sel.Side != review.SideAdditions {
		m.notice = "comments attach to lines of the new file"
		return nil
	}

	form := sel.Form()
	m.session.OpenForm(form.Side, form.LineNumber, form.StartLine)
	m.viewer.ClearSelection()

	title := fmt.Sprintf("Comment on line %d", form.LineNumber)
	if form.StartLine > 0 {
		title = fmt.Sprintf("Comment on lines %d-%d", form.StartLine, form.LineNumber)
	}

	var cmd tea.Cmd
	m.form, cmd = NewCommentForm(title, "", m.viewer.boxWidth())
	m.formOpen = true
	m.refreshAnnotations()
	return cmd
}

// submitComment saves the form (onSubmitComment, or onUpdateComment when
// editing).
func (m *Model) submitComment() tea.Cmd {
	body := m.form.Value()
	if body == "" {
		m.notice = "comment is empty"
		return nil
	}

	ctx := m.ctx
	session := m.session
	contents := m.contentsForSave()
	form := session.Form()

	switch form.Mode {
	case review.FormPending:
		c := review.NewComment(m.current.Path, form.LineNumber, form.StartLine, body, now())
		return func() tea.Msg {
			return commentResultMsg{op: opAdd, id: c.ID, result: session.SaveComment(ctx, c, contents)}
		}

	case review.FormEditing:
		c, ok := session.Comments().Find(form.CommentID)
		if !ok {
			m.cancelComment()
			m.notice = "comment no longer exists"
			return nil
		}
		if m.textOK {
			c = review.Reanchor(c, m.newText)
		}
		c = c.WithBody(body, now())
		pending := session.BeginUpdate(c)
		session.StopEditing()
		m.formOpen = false
		m.refreshAnnotations()
		return func() tea.Msg {
			return commentResultMsg{op: opEdit, id: c.ID, result: pending.Commit(ctx, contents)}
		}
	}

	m.formOpen = false
	return nil
}

// cancelComment closes the form (onCancelComment / onStopEditComment).
func (m *Model) cancelComment() {
	if m.session.Form().Mode == review.FormEditing {
		m.session.StopEditing()
	} else {
		m.session.CloseForm()
	}
	m.formOpen = false
	m.refreshAnnotations()
}

// resolveComment toggles the resolved flag optimistically.
func (m *Model) resolveComment() tea.Cmd {
	c, ok := m.viewer.CommentAtCursor()
	if !ok {
		return nil
	}

	updated := c.ToggleResolved(now())
	pending := m.session.BeginUpdate(updated)
	m.refreshAnnotations()

	ctx := m.ctx
	contents := m.contentsForSave()
	return func() tea.Msg {
		return commentResultMsg{op: opResolve, id: updated.ID, result: pending.Commit(ctx, contents)}
	}
}

// editComment opens the form on the comment under the cursor
// (onStartEditComment).
func (m *Model) editComment() tea.Cmd {
	c, ok := m.viewer.CommentAtCursor()
	if !ok {
		return nil
	}

	m.session.StartEditing(c.ID)
	var cmd tea.Cmd
	m.form, cmd = NewCommentForm("Edit comment", c.Body, m.viewer.boxWidth())
	m.formOpen = true
	m.refreshAnnotations()
	return cmd
}

func (m *Model) confirmDelete() {
	c, ok := m.viewer.CommentAtCursor()
	if !ok {
		return
	}
	m.confirm = components.NewConfirmModal("Delete comment", fmt.Sprintf("Delete the comment on line %d?", c.LineNumber))
	m.confirming = true
	m.pendingDelete = c.ID
}

// deleteComment removes id (onDeleteComment).
func (m *Model) deleteComment(id string) tea.Cmd {
	m.pendingDelete = ""
	ctx := m.ctx
	session := m.session
	return func() tea.Msg {
		return commentResultMsg{op: opDelete, id: id, result: session.DeleteComment(ctx, id)}
	}
}

func (m Model) handleCommentResult(msg commentResultMsg) (Model, tea.Cmd) {
	if msg.result.Failed() {
		m.log.Warn().Err(msg.result.Err).Stringer("op", msg.op).Str("id", msg.id).Msg("comment operation failed")
		m.notice = fmt.Sprintf("%s failed: %v", msg.op, msg.result.Err)
		m.refreshAnnotations()
		return m, nil
	}

	switch msg.op {
	case opAdd:
		m.formOpen = false
		m.notice = "comment added"
	case opEdit, opResolve:
		m.notice = "comment updated"
	case opDelete:
		m.notice = "comment deleted"
	}
	m.refreshAnnotations()
	return m, nil
}
