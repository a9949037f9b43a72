// Package jsonfile persists repository data as JSON files inside the
// repository working tree.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/colonyops/tinydiff/internal/core/git"
	"github.com/colonyops/tinydiff/internal/core/review"
)

const (
	// DefaultDir is the per-repository directory holding comment files.
	DefaultDir = ".tinydiff"

	commentsFile = "comments.json"
	lockFile     = "comments.lock"
)

// record is the on-disk shape of a comment.
type record struct {
	ID            string  `json:"id"`
	FilePath      string  `json:"filePath"`
	LineNumber    int     `json:"lineNumber"`
	StartLine     int     `json:"startLine,omitempty"`
	Body          string  `json:"body"`
	Resolved      bool    `json:"resolved"`
	CreatedAt     int64   `json:"createdAt"`
	UpdatedAt     int64   `json:"updatedAt"`
	ContextWindow *string `json:"contextWindow,omitempty"`
	Unanchored    bool    `json:"unanchored"`
}

type commentsDoc struct {
	Comments []record `json:"comments"`
}

func toRecord(c review.Comment) record {
	r := record{
		ID:         c.ID,
		FilePath:   c.FilePath,
		LineNumber: c.LineNumber,
		StartLine:  c.StartLine,
		Body:       c.Body,
		Resolved:   c.Resolved,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		Unanchored: c.Orphaned(),
	}
	if c.Anchor.Context != "" {
		ctx := c.Anchor.Context
		r.ContextWindow = &ctx
	}
	return r
}

func (r record) comment() review.Comment {
	c := review.Comment{
		ID:         r.ID,
		FilePath:   r.FilePath,
		LineNumber: r.LineNumber,
		StartLine:  r.StartLine,
		Body:       r.Body,
		Resolved:   r.Resolved,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Anchor:     review.Anchor{Type: review.AnchorAnchored},
	}
	if r.ContextWindow != nil {
		c.Anchor.Context = *r.ContextWindow
	}
	if r.Unanchored {
		c.Anchor.Type = review.AnchorOrphaned
	}
	return c
}

// CommentStore implements review.Provider with one JSON file per repository,
// stored under <repo>/<dir>/comments.json. Writers take an exclusive lock on a
// sibling lock file and replace the document atomically.
type CommentStore struct {
	dir string
	mu  sync.Mutex
}

var _ review.Provider = (*CommentStore)(nil)

// NewCommentStore creates a store that keeps files in dir relative to each
// repository root. An empty dir uses DefaultDir.
func NewCommentStore(dir string) *CommentStore {
	if dir == "" {
		dir = DefaultDir
	}
	return &CommentStore{dir: dir}
}

// Path returns the comments file location for repo.
func (s *CommentStore) Path(repo string) string {
	return filepath.Join(repo, s.dir, commentsFile)
}

// Load returns every comment stored for repo. A missing file yields an empty
// collection; a corrupt file is an error.
func (s *CommentStore) Load(ctx context.Context, repo string) (review.Collection, error) {
	doc, err := s.read(repo)
	if err != nil {
		return review.Collection{}, err
	}

	coll := review.Collection{Comments: make([]review.Comment, 0, len(doc.Comments))}
	for _, r := range doc.Comments {
		coll.Comments = append(coll.Comments, r.comment())
	}
	return coll, nil
}

// Save upserts comment by id. When fileContents is provided the anchor context
// is recaptured from it and the comment is marked anchored.
func (s *CommentStore) Save(ctx context.Context, repo string, comment review.Comment, fileContents *string) error {
	if err := git.ValidateRelPath(comment.FilePath); err != nil {
		return err
	}
	if fileContents != nil {
		comment = review.Anchored(comment, *fileContents)
	}

	return s.mutate(repo, true, func(doc *commentsDoc) bool {
		rec := toRecord(comment)
		for i := range doc.Comments {
			if doc.Comments[i].ID == comment.ID {
				doc.Comments[i] = rec
				return true
			}
		}
		doc.Comments = append(doc.Comments, rec)
		return true
	})
}

// Delete removes the comment with id, reporting whether it existed.
func (s *CommentStore) Delete(ctx context.Context, repo, id string) (bool, error) {
	if _, err := os.Stat(filepath.Join(repo, s.dir)); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	found := false
	err := s.mutate(repo, false, func(doc *commentsDoc) bool {
		for i := range doc.Comments {
			if doc.Comments[i].ID == id {
				doc.Comments = append(doc.Comments[:i], doc.Comments[i+1:]...)
				found = true
				return true
			}
		}
		return false
	})
	return found, err
}

// ForFile returns the comments on file, re-anchored against its current
// contents.
func (s *CommentStore) ForFile(ctx context.Context, repo, file, contents string) ([]review.Comment, error) {
	if err := git.ValidateRelPath(file); err != nil {
		return nil, err
	}

	coll, err := s.Load(ctx, repo)
	if err != nil {
		return nil, err
	}
	return review.ReanchorAll(coll.ForFile(file), contents), nil
}

// mutate applies fn under the repository lock and writes the document back
// when fn reports a change. create controls whether the directory may be
// created.
func (s *CommentStore) mutate(repo string, create bool, fn func(*commentsDoc) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(repo, s.dir)
	if create {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create comments dir: %w", err)
		}
	}

	unlock, err := lock(filepath.Join(dir, lockFile))
	if err != nil {
		return fmt.Errorf("lock comments: %w", err)
	}
	defer unlock()

	doc, err := s.read(repo)
	if err != nil {
		return err
	}
	if !fn(&doc) {
		return nil
	}
	return s.write(repo, doc)
}

func (s *CommentStore) read(repo string) (commentsDoc, error) {
	data, err := os.ReadFile(s.Path(repo))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return commentsDoc{}, nil
		}
		return commentsDoc{}, fmt.Errorf("read comments: %w", err)
	}

	if len(data) == 0 {
		return commentsDoc{}, nil
	}

	var doc commentsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return commentsDoc{}, fmt.Errorf("parse %s: %w", s.Path(repo), err)
	}
	return doc, nil
}

func (s *CommentStore) write(repo string, doc commentsDoc) error {
	if doc.Comments == nil {
		doc.Comments = []record{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	path := s.Path(repo)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write comments: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace comments: %w", err)
	}
	return nil
}
