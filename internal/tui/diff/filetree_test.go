package diff

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tinydiff/internal/core/filetree"
	"github.com/colonyops/tinydiff/internal/core/git"
	"github.com/colonyops/tinydiff/internal/core/nav"
	"github.com/colonyops/tinydiff/pkg/tuitest"
)

func sampleStatus() git.Status {
	return git.Status{
		Staged:    []git.ChangeRecord{{Path: "src/main.go", Kind: git.StatusModified, Staged: true}},
		Unstaged:  []git.ChangeRecord{{Path: "src/main.go", Kind: git.StatusModified}},
		Untracked: []git.ChangeRecord{{Path: "notes.txt", Kind: git.StatusUntracked}},
	}
}

func newSampleTree(t *testing.T) FileTreeModel {
	t.Helper()
	m := NewFileTree(false)
	m.SetSize(40, 10)
	m.SetTree(filetree.Build(sampleStatus()))
	return m
}

// collect runs cmd and flattens any batch into its messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func TestFileTree_FocusesFirstRow(t *testing.T) {
	m := newSampleTree(t)

	assert.Equal(t, "src", m.State().FocusedPath)
	assert.Equal(t, 2, m.FileCount())
	assert.Len(t, m.Rows(), 4)
}

func TestFileTree_View(t *testing.T) {
	m := newSampleTree(t)
	out := tuitest.StripANSI(m.View())

	assert.Contains(t, out, "▾ src/")
	assert.Contains(t, out, "main.go M+", "staged leaf is marked")
	assert.Contains(t, out, "main.go M")
	assert.Contains(t, out, "notes.txt ?")
}

func TestFileTree_EmptyView(t *testing.T) {
	m := NewFileTree(false)
	m.SetSize(30, 5)
	m.SetTree(nil)

	assert.Contains(t, tuitest.StripANSI(m.View()), "No changes")
	_, ok := m.Focused()
	assert.False(t, ok)
}

func TestFileTree_EnterOnFileSelects(t *testing.T) {
	m := newSampleTree(t)

	m, cmd := m.Update(tuitest.Key("j"))
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	changed, ok := msgs[0].(treeStateChangedMsg)
	require.True(t, ok)
	assert.Equal(t, "src/main.go", changed.state.FocusedPath)

	m, cmd = m.Update(tuitest.KeyEnter())
	msgs = collect(cmd)
	require.Len(t, msgs, 1, "enter on a file does not change state")
	sel, ok := msgs[0].(fileSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "src/main.go", sel.selection.Path)
	assert.Equal(t, sel.record.Target(), sel.selection.Target)
}

func TestFileTree_EnterOnDirCollapses(t *testing.T) {
	m := newSampleTree(t)

	m, cmd := m.Update(tuitest.KeyEnter())
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	_, ok := msgs[0].(treeStateChangedMsg)
	assert.True(t, ok)

	assert.True(t, m.State().Collapsed.Has("src"))
	assert.Len(t, m.Rows(), 2)
	assert.Contains(t, tuitest.StripANSI(m.View()), "▸ src/")
}

func TestFileTree_IgnoresOtherKeys(t *testing.T) {
	m := newSampleTree(t)
	before := m.State()

	m, cmd := m.Update(tuitest.Key("x"))
	assert.Nil(t, cmd)
	assert.Equal(t, before.FocusedPath, m.State().FocusedPath)

	_, cmd = m.Update(tuitest.WindowSize(10, 10))
	assert.Nil(t, cmd)
}

func TestFileTree_SetStateReconciles(t *testing.T) {
	m := newSampleTree(t)

	m.SetState(nav.State{FocusedPath: "src/gone.go"})
	assert.Equal(t, "src", m.State().FocusedPath, "missing focus moves to the nearest ancestor")

	m.SetState(nav.State{FocusedPath: "src/main.go", FocusedStaged: true})
	node, ok := m.Focused()
	require.True(t, ok)
	assert.True(t, node.Staged())
}

func TestFileTree_ScrollsToFocus(t *testing.T) {
	var records []git.ChangeRecord
	for _, p := range []string{"a.go", "b.go", "c.go", "d.go", "e.go"} {
		records = append(records, git.ChangeRecord{Path: p, Kind: git.StatusModified})
	}

	m := NewFileTree(false)
	m.SetSize(20, 2)
	m.SetTree(filetree.BuildRecords(records))

	m, _ = m.Update(tuitest.Key("G"))
	out := tuitest.StripANSI(m.View())
	assert.Contains(t, out, "e.go")
	assert.NotContains(t, out, "a.go")

	m, _ = m.Update(tuitest.Key("j"))
	out = tuitest.StripANSI(m.View())
	assert.Contains(t, out, "a.go", "down from the last row wraps to the first")
}
