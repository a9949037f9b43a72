package filetree

import "strings"

// FlatNode is a visible row of the tree.
type FlatNode struct {
	Node       *Node
	Depth      int    // Number of '/' separators in the node path
	ParentPath string // Path minus its last segment, "" at the top level
}

// IsTopLevel reports whether the row has no parent directory.
func (f FlatNode) IsTopLevel() bool { return f.ParentPath == "" }

// Flatten walks the tree depth-first in pre-order. Children of directories in
// collapsed are omitted, transitively.
func Flatten(nodes []*Node, collapsed Set) []FlatNode {
	var out []FlatNode
	var walk func([]*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			out = append(out, FlatNode{
				Node:       n,
				Depth:      strings.Count(n.Path, "/"),
				ParentPath: parentPath(n.Path),
			})
			if n.IsDir() && !collapsed.Has(n.Path) {
				walk(n.Children)
			}
		}
	}
	walk(nodes)
	return out
}

func parentPath(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Dirs returns the paths of every directory in the tree, in pre-order.
func Dirs(nodes []*Node) []string {
	var out []string
	var walk func([]*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			if n.IsDir() {
				out = append(out, n.Path)
				walk(n.Children)
			}
		}
	}
	walk(nodes)
	return out
}
