// Package review holds the comment domain and the session that mirrors a
// repository's comments for the UI.
package review

import (
	"time"

	"github.com/google/uuid"
)

// AnchorType reports whether a comment still matches the code it was written
// against.
type AnchorType string

const (
	AnchorAnchored AnchorType = "anchored"
	AnchorOrphaned AnchorType = "orphaned"
)

// Anchor ties a comment to its surrounding code. Context is the window of
// lines captured when the comment was saved; it is shown in place of the code
// once the comment is orphaned.
type Anchor struct {
	Type    AnchorType `json:"type"`
	Context string     `json:"context,omitempty"`
}

// Comment is a line-anchored review comment.
type Comment struct {
	ID         string `json:"id"`
	FilePath   string `json:"filePath"`
	LineNumber int    `json:"lineNumber"`
	StartLine  int    `json:"startLine,omitempty"` // 0 for single-line comments
	Body       string `json:"body"`
	Resolved   bool   `json:"resolved"`
	CreatedAt  int64  `json:"createdAt"` // epoch seconds
	UpdatedAt  int64  `json:"updatedAt"` // epoch seconds
	Anchor     Anchor `json:"anchor"`
}

// Orphaned reports whether the commented code no longer exists verbatim.
func (c Comment) Orphaned() bool { return c.Anchor.Type == AnchorOrphaned }

// Edited reports whether the comment changed after creation.
func (c Comment) Edited() bool { return c.UpdatedAt != c.CreatedAt }

// IsRange reports whether the comment spans more than one line.
func (c Comment) IsRange() bool { return c.StartLine > 0 && c.StartLine < c.LineNumber }

// WithBody returns a copy with body replaced and UpdatedAt bumped.
func (c Comment) WithBody(body string, now time.Time) Comment {
	c.Body = body
	c.UpdatedAt = now.Unix()
	return c
}

// ToggleResolved returns a copy with the resolved flag flipped and UpdatedAt
// bumped.
func (c Comment) ToggleResolved(now time.Time) Comment {
	c.Resolved = !c.Resolved
	c.UpdatedAt = now.Unix()
	return c
}

// Collection is every comment stored for one repository.
type Collection struct {
	Comments []Comment `json:"comments"`
}

// ForFile returns the comments on path in collection order.
func (c Collection) ForFile(path string) []Comment {
	var out []Comment
	for _, cm := range c.Comments {
		if cm.FilePath == path {
			out = append(out, cm)
		}
	}
	return out
}

// Find returns the comment with id.
func (c Collection) Find(id string) (Comment, bool) {
	for _, cm := range c.Comments {
		if cm.ID == id {
			return cm, true
		}
	}
	return Comment{}, false
}

// Clone returns a copy whose slice can be modified independently.
func (c Collection) Clone() Collection {
	if c.Comments == nil {
		return Collection{}
	}
	out := make([]Comment, len(c.Comments))
	copy(out, c.Comments)
	return Collection{Comments: out}
}

// replace returns a copy with the comment matching updated.ID swapped out.
func (c Collection) replace(updated Comment) (Collection, bool) {
	out := c.Clone()
	for i := range out.Comments {
		if out.Comments[i].ID == updated.ID {
			out.Comments[i] = updated
			return out, true
		}
	}
	return out, false
}

// NewID returns a unique comment id. UUIDv7 ids embed a millisecond timestamp
// and random bits, and are monotonic within a process.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewComment creates an anchored, unresolved comment stamped with now.
func NewComment(filePath string, lineNumber, startLine int, body string, now time.Time) Comment {
	if startLine >= lineNumber {
		startLine = 0
	}
	ts := now.Unix()
	return Comment{
		ID:         NewID(),
		FilePath:   filePath,
		LineNumber: lineNumber,
		StartLine:  startLine,
		Body:       body,
		CreatedAt:  ts,
		UpdatedAt:  ts,
		Anchor:     Anchor{Type: AnchorAnchored},
	}
}
