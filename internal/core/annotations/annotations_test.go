package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tinydiff/internal/core/review"
)

func fixtures() []review.Comment {
	return []review.Comment{
		{ID: "c1", FilePath: "a.go", LineNumber: 10, Body: "ten", Anchor: review.Anchor{Type: review.AnchorAnchored}},
		{ID: "c2", FilePath: "b.go", LineNumber: 3, Body: "other file"},
		{ID: "c3", FilePath: "a.go", LineNumber: 2, StartLine: 1, Body: "range"},
		{
			ID: "c4", FilePath: "a.go", LineNumber: 7, Body: "gone",
			Anchor: review.Anchor{Type: review.AnchorOrphaned, Context: "x := 1\ny := 2\nz := 3"},
		},
	}
}

func TestBuild(t *testing.T) {
	anns := Build(fixtures(), "a.go", review.ClosedForm())

	require.Len(t, anns, 3)
	assert.Equal(t, []int{2, 7, 10}, []int{anns[0].LineNumber, anns[1].LineNumber, anns[2].LineNumber})
	for _, a := range anns {
		assert.Equal(t, KindComment, a.Kind)
		assert.Equal(t, review.SideAdditions, a.Side)
		assert.False(t, a.Editing)
	}
	assert.Equal(t, 1, anns[0].StartLine)
}

func TestBuild_PendingFormAddsOne(t *testing.T) {
	anns := Build(fixtures(), "a.go", review.PendingForm(review.SideDeletions, 5, 0))

	require.Len(t, anns, 4)
	forms := 0
	for _, a := range anns {
		if a.Kind == KindForm {
			forms++
			assert.Equal(t, review.SideDeletions, a.Side)
			assert.Equal(t, 5, a.LineNumber)
			assert.Nil(t, a.Comment)
		}
	}
	assert.Equal(t, 1, forms)
}

func TestBuild_EditingMarksComment(t *testing.T) {
	anns := Build(fixtures(), "a.go", review.EditingForm("c1"))

	require.Len(t, anns, 3)
	for _, a := range anns {
		assert.Equal(t, a.Comment.ID == "c1", a.Editing, a.Comment.ID)
	}
}

func TestBuild_OrphanedCarriesContext(t *testing.T) {
	anns := ForLine(Build(fixtures(), "a.go", review.ClosedForm()), review.SideAdditions, 7)

	require.Len(t, anns, 1)
	assert.True(t, anns[0].Orphaned())
	assert.Equal(t, "x := 1\ny := 2\nz := 3", anns[0].Context())
}

func TestBuild_CommentsAreCopied(t *testing.T) {
	comments := fixtures()
	anns := Build(comments, "a.go", review.ClosedForm())
	comments[0].Body = "mutated"

	assert.Equal(t, "ten", anns[2].Comment.Body)
}

func TestForLineAndLines(t *testing.T) {
	anns := Build(fixtures(), "a.go", review.PendingForm(review.SideAdditions, 10, 0))

	assert.Len(t, ForLine(anns, review.SideAdditions, 10), 2)
	assert.Empty(t, ForLine(anns, review.SideDeletions, 10))
	assert.Equal(t, map[int]bool{2: true, 7: true, 10: true}, Lines(anns, review.SideAdditions))
}

func TestSelection_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		sel       Selection
		wantLine  int
		wantStart int
	}{
		{"single line", Selection{Start: 4, End: 4}, 4, 0},
		{"downward drag", Selection{Start: 3, End: 8}, 8, 3},
		{"upward drag", Selection{Start: 8, End: 3}, 8, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, start := tt.sel.Normalize()
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantStart, start)
		})
	}
}

func TestSelection_ContainsAndForm(t *testing.T) {
	sel := Selection{Side: review.SideAdditions, Start: 9, End: 6}

	assert.True(t, sel.Contains(review.SideAdditions, 6))
	assert.True(t, sel.Contains(review.SideAdditions, 9))
	assert.False(t, sel.Contains(review.SideAdditions, 10))
	assert.False(t, sel.Contains(review.SideDeletions, 7))

	single := Selection{Side: review.SideAdditions, Start: 2, End: 2}
	assert.True(t, single.Contains(review.SideAdditions, 2))
	assert.False(t, single.Contains(review.SideAdditions, 3))

	assert.Equal(t, review.PendingForm(review.SideAdditions, 9, 6), sel.Form())
}

func TestSummarize(t *testing.T) {
	comments := fixtures()
	comments[1].Resolved = true

	s := Summarize(comments)
	assert.Equal(t, Summary{Open: 3, Resolved: 1, Orphaned: 1}, s)
	assert.Equal(t, "3 open, 1 resolved, 1 orphaned", s.String())
	assert.Equal(t, "no comments", Summarize(nil).String())
}
