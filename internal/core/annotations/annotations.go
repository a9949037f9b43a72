// Package annotations maps the comments of the selected file and the open
// comment form onto diff line positions.
package annotations

import (
	"sort"

	"github.com/colonyops/tinydiff/internal/core/review"
)

// Kind discriminates annotations.
type Kind int

const (
	KindComment Kind = iota
	KindForm
)

// Annotation is content rendered beneath one diff line.
type Annotation struct {
	Kind       Kind
	Side       review.Side
	LineNumber int
	StartLine  int
	Comment    *review.Comment // set for KindComment
	Editing    bool            // the comment is open in the edit form
}

// Orphaned reports whether the annotation is a comment whose code is gone.
func (a Annotation) Orphaned() bool {
	return a.Comment != nil && a.Comment.Orphaned()
}

// Context returns the stored code snippet shown for orphaned comments.
func (a Annotation) Context() string {
	if !a.Orphaned() {
		return ""
	}
	return a.Comment.Anchor.Context
}

// Build returns the annotations for filePath ordered by line. Comments are
// placed on the additions side, where their anchors are computed. A pending
// form adds exactly one form annotation at its target line.
func Build(comments []review.Comment, filePath string, form review.FormState) []Annotation {
	var out []Annotation
	for i := range comments {
		c := comments[i]
		if c.FilePath != filePath {
			continue
		}
		out = append(out, Annotation{
			Kind:       KindComment,
			Side:       review.SideAdditions,
			LineNumber: c.LineNumber,
			StartLine:  c.StartLine,
			Comment:    &c,
			Editing:    form.Mode == review.FormEditing && form.CommentID == c.ID,
		})
	}

	if form.Mode == review.FormPending {
		out = append(out, Annotation{
			Kind:       KindForm,
			Side:       form.Side,
			LineNumber: form.LineNumber,
			StartLine:  form.StartLine,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LineNumber < out[j].LineNumber
	})
	return out
}

// ForLine returns the annotations rendered under (side, line).
func ForLine(anns []Annotation, side review.Side, line int) []Annotation {
	var out []Annotation
	for _, a := range anns {
		if a.Side == side && a.LineNumber == line {
			out = append(out, a)
		}
	}
	return out
}

// Lines returns the set of line numbers on side that carry an annotation.
func Lines(anns []Annotation, side review.Side) map[int]bool {
	out := make(map[int]bool)
	for _, a := range anns {
		if a.Side == side {
			out[a.LineNumber] = true
		}
	}
	return out
}
