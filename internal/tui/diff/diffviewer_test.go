package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tinydiff/internal/core/annotations"
	"github.com/colonyops/tinydiff/internal/core/kv"
	"github.com/colonyops/tinydiff/internal/core/review"
	"github.com/colonyops/tinydiff/pkg/tuitest"
)

const samplePatch = `diff --git a/src/main.go b/src/main.go
--- a/src/main.go
+++ b/src/main.go
@@ -1,3 +1,4 @@
 package main
-func old() {}
+func newer() {}
+func extra() {}
 // end
`

func newSampleViewer(t *testing.T, style kv.DiffStyle) DiffViewerModel {
	t.Helper()
	lines, err := ParseDiffLines(samplePatch)
	require.NoError(t, err)

	m := NewDiffViewer(style, false)
	m.SetSize(100, 30)
	m.SetDiff("src/main.go", lines, nil, false)
	return m
}

func sampleComment(line int, body string) review.Comment {
	return review.NewComment("src/main.go", line, 0, body, now())
}

func TestDiffViewer_EmptyStates(t *testing.T) {
	m := NewDiffViewer(kv.DiffStyleSplit, false)
	m.SetSize(80, 10)
	assert.Contains(t, tuitest.StripANSI(m.View()), "No File Selected")

	m.SetLoading("a.go")
	assert.True(t, m.Loading())
	assert.Contains(t, tuitest.StripANSI(m.View()), "Loading Diff...")

	m.SetDiff("a.go", nil, nil, true)
	assert.True(t, m.Binary())
	assert.Contains(t, tuitest.StripANSI(m.View()), "Binary File")

	m.SetDiff("a.go", nil, nil, false)
	assert.Contains(t, tuitest.StripANSI(m.View()), "Empty Diff")
}

func TestDiffViewer_InvalidStyleDefaultsToSplit(t *testing.T) {
	m := NewDiffViewer(kv.DiffStyle("sideways"), false)
	assert.Equal(t, kv.DiffStyleSplit, m.Style())
}

func TestDiffViewer_Unified(t *testing.T) {
	m := newSampleViewer(t, kv.DiffStyleUnified)
	out := tuitest.StripANSI(m.View())

	assert.Contains(t, out, "src/main.go (-1, +2)")
	assert.Contains(t, out, "@@ -1,3 +1,4 @@")
	assert.Contains(t, out, "-func old() {}")
	assert.Contains(t, out, "+func newer() {}")
	assert.Contains(t, out, " package main")

	side, line, ok := m.CursorTarget()
	require.True(t, ok)
	assert.Equal(t, review.SideDeletions, side, "cursor starts on the first change")
	assert.Equal(t, 2, line)
}

func TestDiffViewer_Split(t *testing.T) {
	m := newSampleViewer(t, kv.DiffStyleSplit)
	out := tuitest.StripANSI(m.View())

	var paired bool
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "func old() {}") && strings.Contains(l, "func newer() {}") {
			paired = true
		}
	}
	assert.True(t, paired, "replaced lines share a row")

	side, line, ok := m.CursorTarget()
	require.True(t, ok)
	assert.Equal(t, review.SideAdditions, side, "additions win on a paired row")
	assert.Equal(t, 2, line)
}

func TestDiffViewer_SetStyleResetsCursor(t *testing.T) {
	m := newSampleViewer(t, kv.DiffStyleSplit)
	m, _ = m.Update(tuitest.Key("G"))

	m.SetStyle(kv.DiffStyleUnified)
	assert.Equal(t, kv.DiffStyleUnified, m.Style())
	_, line, ok := m.CursorTarget()
	require.True(t, ok)
	assert.Equal(t, 2, line)
}

func TestDiffViewer_ColoredLines(t *testing.T) {
	lines, err := ParseDiffLines(samplePatch)
	require.NoError(t, err)

	var colored []string
	for _, l := range strings.Split(samplePatch, "\n") {
		colored = append(colored, "HL:"+l)
	}

	m := NewDiffViewer(kv.DiffStyleUnified, false)
	m.SetSize(100, 30)
	m.SetDiff("src/main.go", lines, colored, false)

	out := tuitest.StripANSI(m.View())
	assert.Contains(t, out, "HL:+func newer() {}")
	assert.Contains(t, out, "HL:-func old() {}")
}

func TestDiffViewer_Navigation(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want int
	}{
		{name: "down", keys: []string{"j"}, want: 3},
		{name: "up", keys: []string{"k"}, want: 1},
		{name: "top", keys: []string{"g"}, want: 0},
		{name: "bottom", keys: []string{"G"}, want: 4},
		{name: "clamped", keys: []string{"j", "j", "j", "j", "j"}, want: 4},
		{name: "page down", keys: []string{"ctrl+d"}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newSampleViewer(t, kv.DiffStyleSplit)
			for _, k := range tt.keys {
				m, _ = m.Update(tuitest.Key(k))
			}
			assert.Equal(t, tt.want, m.cursor)
		})
	}
}

func TestDiffViewer_VisualSelection(t *testing.T) {
	m := newSampleViewer(t, kv.DiffStyleSplit)

	sel, ok := m.Selection()
	require.True(t, ok)
	assert.Equal(t, annotations.Selection{Side: review.SideAdditions, Start: 2, End: 2}, sel)

	m, _ = m.Update(tuitest.Key("v"))
	require.True(t, m.Selecting())
	m, _ = m.Update(tuitest.Key("j"))

	sel, ok = m.Selection()
	require.True(t, ok)
	line, start := sel.Normalize()
	assert.Equal(t, 3, line)
	assert.Equal(t, 2, start)

	m, _ = m.Update(tuitest.Key("v"))
	assert.False(t, m.Selecting())

	m, _ = m.Update(tuitest.Key("v"))
	m.ClearSelection()
	assert.False(t, m.Selecting())
}

func TestDiffViewer_SelectionStaysOnStartSide(t *testing.T) {
	m := newSampleViewer(t, kv.DiffStyleUnified)

	m, _ = m.Update(tuitest.Key("v"))
	m, _ = m.Update(tuitest.Key("j"))

	sel, ok := m.Selection()
	require.True(t, ok)
	assert.Equal(t, review.SideDeletions, sel.Side)
	assert.Equal(t, 2, sel.End, "rows on the other side do not extend the range")
}

func TestDiffViewer_InlineComment(t *testing.T) {
	m := newSampleViewer(t, kv.DiffStyleSplit)
	c := sampleComment(3, "looks good")
	m.SetAnnotations(annotations.Build([]review.Comment{c}, "src/main.go", review.ClosedForm()))

	out := tuitest.StripANSI(m.View())
	assert.Contains(t, out, "line 3")
	assert.Contains(t, out, "looks good")

	_, ok := m.CommentAtCursor()
	assert.False(t, ok)

	m, _ = m.Update(tuitest.Key("n"))
	got, ok := m.CommentAtCursor()
	require.True(t, ok)
	assert.Equal(t, c.ID, got.ID)

	_, line, _ := m.CursorTarget()
	assert.Equal(t, 3, line)

	m, _ = m.Update(tuitest.Key("n"))
	_, line, _ = m.CursorTarget()
	assert.Equal(t, 3, line, "no further comments")
}

func TestDiffViewer_DetachedComments(t *testing.T) {
	orphan := sampleComment(2, "was here")
	orphan.Anchor = review.Anchor{Type: review.AnchorOrphaned, Context: "func gone() {}"}
	outside := sampleComment(40, "far away")

	m := newSampleViewer(t, kv.DiffStyleSplit)
	m.SetAnnotations(annotations.Build([]review.Comment{orphan, outside}, "src/main.go", review.ClosedForm()))

	_, line, ok := m.CursorTarget()
	require.True(t, ok)
	assert.Equal(t, 2, line, "cursor stays on its row")

	out := tuitest.StripANSI(m.View())
	assert.Contains(t, out, "outdated")
	assert.Contains(t, out, "func gone() {}")
	assert.Contains(t, out, "far away")

	m, _ = m.Update(tuitest.Key("g"))
	got, ok := m.CommentAtCursor()
	require.True(t, ok)
	assert.Equal(t, orphan.ID, got.ID)
	_, _, ok = m.CursorTarget()
	assert.False(t, ok, "detached items have no line target")

	m, _ = m.Update(tuitest.Key("j"))
	got, ok = m.CommentAtCursor()
	require.True(t, ok)
	assert.Equal(t, outside.ID, got.ID)
}

func TestDiffViewer_FormView(t *testing.T) {
	m := newSampleViewer(t, kv.DiffStyleSplit)
	m.SetFormView("FORM-GOES-HERE")
	m.SetAnnotations(annotations.Build(nil, "src/main.go", review.PendingForm(review.SideAdditions, 3, 0)))

	assert.Contains(t, tuitest.StripANSI(m.View()), "FORM-GOES-HERE")

	m.SetFormView("")
	assert.NotContains(t, tuitest.StripANSI(m.View()), "FORM-GOES-HERE")
}

func TestDiffViewer_RefreshKeepsCursor(t *testing.T) {
	m := newSampleViewer(t, kv.DiffStyleSplit)
	m, _ = m.Update(tuitest.Key("G"))

	lines, err := ParseDiffLines(samplePatch)
	require.NoError(t, err)
	m.SetDiff("src/main.go", lines, nil, false)
	assert.Equal(t, 4, m.cursor)

	m.SetLoading("other.go")
	m.SetDiff("other.go", lines, nil, false)
	assert.Equal(t, 2, m.cursor, "a new file starts on its first change")
}

func TestDiffViewer_ScrollsToCursor(t *testing.T) {
	m := newSampleViewer(t, kv.DiffStyleUnified)
	m.SetSize(100, headerHeight+2)

	m, _ = m.Update(tuitest.Key("G"))
	out := tuitest.StripANSI(m.View())
	assert.Contains(t, out, "// end")
	assert.NotContains(t, out, "package main")
}
