// Package filetree builds a sorted directory hierarchy from change records and
// flattens it into the visible row order used for keyboard traversal.
package filetree

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/colonyops/tinydiff/internal/core/git"
)

// Kind discriminates directory and file nodes.
type Kind int

const (
	KindDir Kind = iota
	KindFile
)

// Node is a directory or a file in the change tree.
type Node struct {
	Kind     Kind              // KindDir or KindFile
	Name     string            // Last path segment
	Path     string            // '/'-joined path from the top level
	Record   *git.ChangeRecord // Change record (files only)
	Children []*Node           // Sorted children (directories only)
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool { return n.Kind == KindDir }

// Staged reports whether n is a file from the staged bucket.
func (n *Node) Staged() bool { return n.Record != nil && n.Record.Staged }

// Build constructs the tree for a full change set.
func Build(st git.Status) []*Node {
	return BuildRecords(st.Staged, st.Unstaged, st.Untracked)
}

// BuildRecords constructs a tree from one or more record lists. Directories are
// shared between lists; a path present in several lists yields one file node
// per record.
func BuildRecords(lists ...[]git.ChangeRecord) []*Node {
	root := &Node{Kind: KindDir}
	dirs := make(map[string]*Node)

	for _, list := range lists {
		for i := range list {
			rec := list[i]
			parts := strings.Split(rec.Path, "/")
			current := root

			for j := 0; j < len(parts)-1; j++ {
				dirPath := strings.Join(parts[:j+1], "/")
				dir, ok := dirs[dirPath]
				if !ok {
					dir = &Node{Kind: KindDir, Name: parts[j], Path: dirPath}
					dirs[dirPath] = dir
					current.Children = append(current.Children, dir)
				}
				current = dir
			}

			current.Children = append(current.Children, &Node{
				Kind:   KindFile,
				Name:   parts[len(parts)-1],
				Path:   rec.Path,
				Record: &rec,
			})
		}
	}

	sortChildren(root.Children, newCollator())
	return root.Children
}

// newCollator returns a case-sensitive, locale-aware name comparator. A
// collate.Collator is not safe for concurrent use, so each build gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und)
}

func sortChildren(nodes []*Node, c *collate.Collator) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		return c.CompareString(a.Name, b.Name) < 0
	})
	for _, n := range nodes {
		if n.IsDir() {
			sortChildren(n.Children, c)
		}
	}
}

// Less reports whether name a sorts before name b within one partition.
// It builds a collator per call; sorting goes through sortChildren, which
// shares one collator across the whole tree.
func Less(a, b string) bool {
	return newCollator().CompareString(a, b) < 0
}

// Files returns every file leaf in pre-order, ignoring collapse state.
func Files(nodes []*Node) []*Node {
	var out []*Node
	var walk func([]*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			if n.IsDir() {
				walk(n.Children)
				continue
			}
			out = append(out, n)
		}
	}
	walk(nodes)
	return out
}
