// Package git reads working-tree and index changes for a repository.
package git

import (
	"context"
	"encoding/json"
	"fmt"
)

// StatusKind is the kind of change recorded for a path.
type StatusKind int

const (
	StatusAdded StatusKind = iota
	StatusModified
	StatusDeleted
	StatusRenamed
	StatusUntracked
	StatusTypechange
	StatusConflicted
)

var statusKindNames = [...]string{
	StatusAdded:      "added",
	StatusModified:   "modified",
	StatusDeleted:    "deleted",
	StatusRenamed:    "renamed",
	StatusUntracked:  "untracked",
	StatusTypechange: "typechange",
	StatusConflicted: "conflicted",
}

func (k StatusKind) String() string {
	if k < 0 || int(k) >= len(statusKindNames) {
		return "unknown"
	}
	return statusKindNames[k]
}

// Letter returns the single-character porcelain code for the kind.
func (k StatusKind) Letter() string {
	switch k {
	case StatusAdded:
		return "A"
	case StatusModified:
		return "M"
	case StatusDeleted:
		return "D"
	case StatusRenamed:
		return "R"
	case StatusUntracked:
		return "?"
	case StatusTypechange:
		return "T"
	case StatusConflicted:
		return "U"
	default:
		return " "
	}
}

func (k StatusKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *StatusKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range statusKindNames {
		if name == s {
			*k = StatusKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status kind %q", s)
}

// ChangeRecord is one changed path in one bucket. A path that is both staged
// and modified in the worktree produces two records.
type ChangeRecord struct {
	Path    string     `json:"path"`
	Kind    StatusKind `json:"status"`
	OldPath string     `json:"oldPath,omitempty"`
	Staged  bool       `json:"staged"`
}

// Target returns the diff target that shows this record's change.
func (r ChangeRecord) Target() Target {
	if r.Staged {
		return TargetStaged
	}
	return TargetUnstaged
}

// Status is the full change set of a repository.
type Status struct {
	Staged    []ChangeRecord `json:"staged"`
	Unstaged  []ChangeRecord `json:"unstaged"`
	Untracked []ChangeRecord `json:"untracked"`
}

// Len returns the total number of records across all buckets.
func (s Status) Len() int {
	return len(s.Staged) + len(s.Unstaged) + len(s.Untracked)
}

// Target selects which pair of blobs a diff compares.
type Target string

const (
	// TargetStaged compares HEAD with the index.
	TargetStaged Target = "staged"
	// TargetUnstaged compares the index with the working tree.
	TargetUnstaged Target = "unstaged"
)

// ContentType discriminates FileContent.
type ContentType string

const (
	ContentText   ContentType = "text"
	ContentBinary ContentType = "binary"
)

// FileContent is the text or binary payload of one side of a diff.
type FileContent struct {
	Type     ContentType `json:"type"`
	Contents string      `json:"contents,omitempty"`
	Size     int64       `json:"size,omitempty"`
}

// DiffFile is one side of a diff. Content is nil when the side does not exist
// (added or deleted files).
type DiffFile struct {
	Name    string       `json:"name"`
	Lang    string       `json:"lang,omitempty"`
	Content *FileContent `json:"content"`
}

// Text returns the text contents, or "" for binary and missing sides.
func (f DiffFile) Text() string {
	if f.Content == nil || f.Content.Type != ContentText {
		return ""
	}
	return f.Content.Contents
}

// IsBinary reports whether the side exists and holds binary data.
func (f DiffFile) IsBinary() bool {
	return f.Content != nil && f.Content.Type == ContentBinary
}

// FileContents holds both sides of a file diff.
type FileContents struct {
	OldFile DiffFile `json:"oldFile"`
	NewFile DiffFile `json:"newFile"`
}

// FileDiff is a unified patch for a single path.
type FileDiff struct {
	Path    string `json:"path"`
	OldPath string `json:"oldPath,omitempty"`
	Binary  bool   `json:"binary"`
	Patch   string `json:"patch"`
}

// Provider supplies repository status, file contents and patches.
type Provider interface {
	// Discover resolves path to the root of its enclosing repository.
	Discover(ctx context.Context, path string) (string, error)
	// Status returns the staged, unstaged and untracked change records.
	Status(ctx context.Context, repo string) (Status, error)
	// FileContents returns the old and new sides of file for target.
	FileContents(ctx context.Context, repo, file string, target Target) (FileContents, error)
	// FileDiff returns the unified patch for rec. Untracked files are diffed
	// against an empty file.
	FileDiff(ctx context.Context, repo string, rec ChangeRecord) (FileDiff, error)
}
