package diff

import (
	"github.com/colonyops/tinydiff/internal/core/fetch"
	"github.com/colonyops/tinydiff/internal/core/git"
	"github.com/colonyops/tinydiff/internal/core/kv"
	"github.com/colonyops/tinydiff/internal/core/review"
	"github.com/colonyops/tinydiff/internal/store/jsonfile"
)

// repoResolvedMsg carries the repository root found for the start path and
// the tree layout remembered for it.
type repoResolvedMsg struct {
	repo  string
	focus string // repo-relative file to focus, when started on a file
	tree  kv.TreeState
	err   error
}

type statusLoadedMsg struct {
	token  fetch.Token
	status git.Status
	err    error
}

type fileLoadedMsg struct {
	token    fetch.Token
	record   git.ChangeRecord
	contents git.FileContents
	diff     git.FileDiff
	lines    []ParsedLine
	colored  []string
	refresh  bool // reload of the shown file; keeps the cursor
	err      error
}

type commentsLoadedMsg struct {
	err error
}

type commentOp int

const (
	opAdd commentOp = iota
	opEdit
	opResolve
	opDelete
)

func (o commentOp) String() string {
	switch o {
	case opEdit:
		return "edit"
	case opResolve:
		return "resolve"
	case opDelete:
		return "delete"
	default:
		return "add"
	}
}

type commentResultMsg struct {
	op     commentOp
	id     string
	result review.Result
}

type changeMsg struct {
	change jsonfile.Change
	ok     bool
}
