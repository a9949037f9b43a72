package diff

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/tinydiff/internal/core/filetree"
	"github.com/colonyops/tinydiff/internal/core/git"
	"github.com/colonyops/tinydiff/internal/core/nav"
	"github.com/colonyops/tinydiff/internal/core/styles"
)

// fileSelectedMsg is emitted when a file leaf is activated in the tree.
type fileSelectedMsg struct {
	selection nav.Selection
	record    git.ChangeRecord
}

// treeStateChangedMsg is emitted when focus or collapse state changes so the
// root model can persist it.
type treeStateChangedMsg struct {
	state nav.State
}

// FileTreeModel renders the change tree and routes navigation keys through
// nav.Apply.
type FileTreeModel struct {
	tree   []*filetree.Node
	state  nav.State
	icons  bool
	width  int
	height int
	offset int // first visible row
}

// NewFileTree creates an empty tree.
func NewFileTree(icons bool) FileTreeModel {
	return FileTreeModel{icons: icons, state: nav.State{Collapsed: filetree.NewSet()}}
}

// SetTree replaces the nodes and reconciles focus against them.
func (m *FileTreeModel) SetTree(nodes []*filetree.Node) {
	m.tree = nodes
	m.reconcile(m.state)
}

// SetState restores a saved navigation state. With nothing focused the first
// row is focused.
func (m *FileTreeModel) SetState(st nav.State) {
	if st.Collapsed == nil {
		st.Collapsed = filetree.NewSet()
	}
	m.reconcile(st)
}

func (m *FileTreeModel) reconcile(st nav.State) {
	m.state = nav.Reconcile(m.tree, st)
	if m.state.FocusedPath == "" {
		m.state = nav.Apply(m.tree, m.state, nav.KeyHome).State
	}
	m.clampOffset()
}

// State returns the navigation state.
func (m FileTreeModel) State() nav.State { return m.state }

// Tree returns the nodes being displayed.
func (m FileTreeModel) Tree() []*filetree.Node { return m.tree }

// Rows returns the visible rows.
func (m FileTreeModel) Rows() []filetree.FlatNode {
	return filetree.Flatten(m.tree, m.state.Collapsed)
}

// Focused returns the focused node, if any.
func (m FileTreeModel) Focused() (*filetree.Node, bool) {
	row, ok := nav.Focused(m.tree, m.state)
	if !ok {
		return nil, false
	}
	return row.Node, true
}

// FileCount returns the number of file leaves.
func (m FileTreeModel) FileCount() int {
	return len(filetree.Files(m.tree))
}

// Update handles navigation keys. Selecting a file emits fileSelectedMsg.
func (m FileTreeModel) Update(msg tea.Msg) (FileTreeModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key, ok := nav.ParseKey(keyMsg.String())
	if !ok {
		return m, nil
	}

	res := nav.Apply(m.tree, m.state, key)
	changed := !sameState(m.state, res.State)
	m.state = res.State
	m.clampOffset()

	var cmds []tea.Cmd
	if changed {
		st := m.state
		cmds = append(cmds, func() tea.Msg { return treeStateChangedMsg{state: st} })
	}
	if sel := res.Selection; sel != nil {
		if node, ok := m.Focused(); ok && node.Record != nil {
			msg := fileSelectedMsg{selection: *sel, record: *node.Record}
			cmds = append(cmds, func() tea.Msg { return msg })
		}
	}
	return m, tea.Batch(cmds...)
}

func sameState(a, b nav.State) bool {
	if a.FocusedPath != b.FocusedPath || a.FocusedStaged != b.FocusedStaged || len(a.Collapsed) != len(b.Collapsed) {
		return false
	}
	for p := range a.Collapsed {
		if !b.Collapsed.Has(p) {
			return false
		}
	}
	return true
}

// clampOffset scrolls so the focused row is visible.
func (m *FileTreeModel) clampOffset() {
	if m.height <= 0 {
		return
	}
	idx := nav.Index(m.Rows(), m.state)
	if idx < 0 {
		m.offset = 0
		return
	}
	if idx < m.offset {
		m.offset = idx
	}
	if idx >= m.offset+m.height {
		m.offset = idx - m.height + 1
	}
}

// View renders the visible window of rows.
func (m FileTreeModel) View() string {
	rows := m.Rows()
	if len(rows) == 0 {
		return lipgloss.NewStyle().Width(m.width).Height(m.height).
			Render(styles.TextMutedStyle.Render("No changes"))
	}

	focused := nav.Index(rows, m.state)
	end := len(rows)
	if m.height > 0 {
		end = min(end, m.offset+m.height)
	}

	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(rows[i], i == focused))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(strings.Join(lines, "\n"))
}

func (m FileTreeModel) renderRow(row filetree.FlatNode, focused bool) string {
	node := row.Node
	indent := strings.Repeat("  ", row.Depth)

	var icon, name, badge string
	if node.IsDir() {
		expanded := !m.state.Collapsed.Has(node.Path)
		icon = styles.PlainDirIcon(expanded)
		if m.icons {
			icon = styles.DirIcon(expanded)
		}
		name = node.Name + "/"
	} else {
		icon = " "
		if m.icons {
			icon = styles.FileIcon(node.Path)
		}
		name = node.Name
		badge = statusBadge(*node.Record)
	}

	nameStyle := styles.TextForegroundStyle
	if focused {
		nameStyle = styles.TextPrimaryBoldStyle
		icon = styles.TextPrimaryStyle.Render(icon)
	}

	line := fmt.Sprintf("%s%s %s", indent, icon, nameStyle.Render(name))
	if badge != "" {
		line += " " + badge
	}
	if m.width > 0 {
		line = ansi.Truncate(line, m.width, "…")
	}
	return line
}

// statusBadge renders the status letter, with a trailing "+" for staged
// entries so staged and unstaged leaves of one path are distinguishable.
func statusBadge(rec git.ChangeRecord) string {
	letter := rec.Kind.Letter()
	if rec.Staged {
		letter += "+"
	}
	return statusStyle(rec.Kind).Render(letter)
}

func statusStyle(k git.StatusKind) lipgloss.Style {
	switch k {
	case git.StatusAdded:
		return styles.StatusAddedStyle
	case git.StatusDeleted:
		return styles.StatusDeletedStyle
	case git.StatusRenamed:
		return styles.StatusRenamedStyle
	case git.StatusUntracked:
		return styles.StatusUntrackedStyle
	case git.StatusConflicted:
		return styles.StatusConflictedStyle
	default:
		return styles.StatusModifiedStyle
	}
}

// SetSize updates the dimensions of the file tree.
func (m *FileTreeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampOffset()
}
