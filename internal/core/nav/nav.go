// Package nav implements keyboard navigation over a flattened file tree as a
// pure transition function.
package nav

import (
	"strings"

	"github.com/colonyops/tinydiff/internal/core/filetree"
	"github.com/colonyops/tinydiff/internal/core/git"
)

// Key is a navigation key.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyEnter
	KeySpace
)

var keyNames = map[string]Key{
	"up":    KeyUp,
	"k":     KeyUp,
	"down":  KeyDown,
	"j":     KeyDown,
	"left":  KeyLeft,
	"h":     KeyLeft,
	"right": KeyRight,
	"l":     KeyRight,
	"home":  KeyHome,
	"g":     KeyHome,
	"end":   KeyEnd,
	"G":     KeyEnd,
	"enter": KeyEnter,
	" ":     KeySpace,
	"space": KeySpace,
}

// ParseKey maps a terminal key name to a Key. Unknown names return KeyNone and
// false.
func ParseKey(s string) (Key, bool) {
	k, ok := keyNames[s]
	return k, ok
}

// State is the navigation state of the tree. An empty FocusedPath means nothing
// is focused. FocusedStaged picks between the staged and unstaged leaves that
// share a path; it is ignored for directories.
type State struct {
	FocusedPath   string
	FocusedStaged bool
	Collapsed     filetree.Set
}

// Selection is a file-selection event.
type Selection struct {
	Path   string
	Target git.Target
}

// Result is the outcome of a transition.
type Result struct {
	State     State
	Selection *Selection
}

// Apply computes the state that follows pressing key. It never mutates st.
func Apply(tree []*filetree.Node, st State, key Key) Result {
	rows := filetree.Flatten(tree, st.Collapsed)
	if len(rows) == 0 {
		return Result{State: st}
	}

	n := len(rows)
	idx := Index(rows, st)

	switch key {
	case KeyDown:
		return Result{State: focus(st, rows[(idx+1)%n])}
	case KeyUp:
		if idx <= 0 {
			return Result{State: focus(st, rows[n-1])}
		}
		return Result{State: focus(st, rows[idx-1])}
	case KeyHome:
		return Result{State: focus(st, rows[0])}
	case KeyEnd:
		return Result{State: focus(st, rows[n-1])}
	}

	if idx < 0 {
		return Result{State: st}
	}
	row := rows[idx]
	node := row.Node

	switch key {
	case KeyRight:
		if !node.IsDir() {
			return Result{State: st}
		}
		if st.Collapsed.Has(node.Path) {
			return Result{State: withCollapsed(st, st.Collapsed.Without(node.Path))}
		}
		if len(node.Children) > 0 {
			return Result{State: focus(st, rows[idx+1])}
		}
		return Result{State: st}

	case KeyLeft:
		if node.IsDir() && !st.Collapsed.Has(node.Path) {
			return Result{State: withCollapsed(st, st.Collapsed.With(node.Path))}
		}
		if row.ParentPath == "" {
			return Result{State: st}
		}
		for i := idx - 1; i >= 0; i-- {
			if rows[i].Node.IsDir() && rows[i].Node.Path == row.ParentPath {
				return Result{State: focus(st, rows[i])}
			}
		}
		return Result{State: st}

	case KeyEnter, KeySpace:
		if node.IsDir() {
			return Result{State: withCollapsed(st, st.Collapsed.Toggle(node.Path))}
		}
		return Result{
			State:     st,
			Selection: &Selection{Path: node.Path, Target: node.Record.Target()},
		}
	}

	return Result{State: st}
}

// Index returns the row index of the focused node, or -1 when nothing visible
// is focused. A path match with the wrong bucket is used when no exact match
// exists.
func Index(rows []filetree.FlatNode, st State) int {
	if st.FocusedPath == "" {
		return -1
	}
	fallback := -1
	for i, r := range rows {
		if r.Node.Path != st.FocusedPath {
			continue
		}
		if r.Node.IsDir() || r.Node.Staged() == st.FocusedStaged {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

// Reconcile keeps st valid against a rebuilt tree. A focus that no longer
// resolves moves to its nearest visible ancestor, then to the first row; an
// empty tree clears it.
func Reconcile(tree []*filetree.Node, st State) State {
	rows := filetree.Flatten(tree, st.Collapsed)
	if len(rows) == 0 {
		st.FocusedPath = ""
		st.FocusedStaged = false
		return st
	}
	if st.FocusedPath == "" {
		return st
	}

	idx := Index(rows, st)
	if idx >= 0 {
		return focus(st, rows[idx])
	}

	for p := st.FocusedPath; p != ""; {
		i := strings.LastIndex(p, "/")
		if i < 0 {
			break
		}
		p = p[:i]
		for _, r := range rows {
			if r.Node.IsDir() && r.Node.Path == p {
				return focus(st, r)
			}
		}
	}
	return focus(st, rows[0])
}

// Focused returns the focused row, if any.
func Focused(tree []*filetree.Node, st State) (filetree.FlatNode, bool) {
	rows := filetree.Flatten(tree, st.Collapsed)
	idx := Index(rows, st)
	if idx < 0 {
		return filetree.FlatNode{}, false
	}
	return rows[idx], true
}

func focus(st State, row filetree.FlatNode) State {
	st.FocusedPath = row.Node.Path
	st.FocusedStaged = !row.Node.IsDir() && row.Node.Staged()
	return st
}

func withCollapsed(st State, c filetree.Set) State {
	st.Collapsed = c
	return st
}
