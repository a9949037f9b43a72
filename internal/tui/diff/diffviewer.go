package diff

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/tinydiff/internal/core/annotations"
	"github.com/colonyops/tinydiff/internal/core/kv"
	"github.com/colonyops/tinydiff/internal/core/review"
	"github.com/colonyops/tinydiff/internal/core/styles"
)

const (
	// headerHeight is the file info line plus its separator.
	headerHeight = 2
	numWidth     = 4
	tabWidth     = 4
)

// viewItem is one cursor stop in the diff pane: either a diff row or a
// comment that cannot be placed on a row (orphaned, or outside every hunk).
type viewItem struct {
	row      int // index into unified lines or split rows, -1 when detached
	detached *annotations.Annotation
}

// DiffViewerModel displays the patch of one file with its comments.
type DiffViewerModel struct {
	path    string
	lines   []ParsedLine
	split   []SplitRow
	colored []string // delta output by patch line, nil when plain
	binary  bool
	loading bool

	style kv.DiffStyle
	icons bool
	anns  []annotations.Annotation

	formView string // rendered comment form, placed at the form annotation
	md       *markdownRenderer

	items  []viewItem
	blocks [][]string // annotation lines rendered under each item

	cursor    int
	offset    int
	selecting bool
	selection annotations.Selection

	width  int
	height int
}

// NewDiffViewer creates an empty viewer.
func NewDiffViewer(style kv.DiffStyle, icons bool) DiffViewerModel {
	if !style.Valid() {
		style = kv.DiffStyleSplit
	}
	return DiffViewerModel{style: style, icons: icons, md: newMarkdownRenderer()}
}

// Clear shows the empty state.
func (m *DiffViewerModel) Clear() {
	*m = DiffViewerModel{style: m.style, icons: m.icons, md: m.md, width: m.width, height: m.height}
}

// SetLoading shows the loading state for path.
func (m *DiffViewerModel) SetLoading(path string) {
	m.Clear()
	m.path = path
	m.loading = true
}

// SetDiff shows a parsed patch. colored, when non-nil, holds one highlighted
// line per patch line.
func (m *DiffViewerModel) SetDiff(path string, lines []ParsedLine, colored []string, binary bool) {
	keepCursor := path == m.path && !m.loading
	cursor := m.cursor

	m.path = path
	m.lines = lines
	m.split = SplitRows(lines)
	m.colored = colored
	m.binary = binary
	m.loading = false
	m.selecting = false

	m.layout()
	if keepCursor {
		m.cursor = min(cursor, max(len(m.items)-1, 0))
	} else {
		m.cursor = m.firstChange()
		m.offset = 0
	}
	m.scrollToCursor()
}

// SetStyle switches between split and unified layout.
func (m *DiffViewerModel) SetStyle(style kv.DiffStyle) {
	if !style.Valid() || style == m.style {
		return
	}
	m.style = style
	m.selecting = false
	m.cursor, m.offset = 0, 0
	m.layout()
	m.cursor = m.firstChange()
	m.scrollToCursor()
}

// SetAnnotations replaces the comments and form shown for the file.
// The cursor stays on its diff row.
func (m *DiffViewerModel) SetAnnotations(anns []annotations.Annotation) {
	row := -1
	if m.cursor < len(m.items) {
		row = m.items[m.cursor].row
	}

	m.anns = anns
	m.layout()
	m.cursor = min(m.cursor, max(len(m.items)-1, 0))
	if row >= 0 {
		for i, it := range m.items {
			if it.row == row {
				m.cursor = i
				break
			}
		}
	}
	m.scrollToCursor()
}

// SetFormView sets the rendered comment form. The form is drawn at the form
// annotation, or in place of the comment being edited.
func (m *DiffViewerModel) SetFormView(view string) {
	if view == m.formView {
		return
	}
	m.formView = view
	m.layout()
	m.scrollToCursor()
}

// ResetMarkdown drops cached markdown after a theme change.
func (m *DiffViewerModel) ResetMarkdown() {
	m.md.Reset()
	m.layout()
}

func (m DiffViewerModel) Path() string        { return m.path }
func (m DiffViewerModel) Style() kv.DiffStyle { return m.style }
func (m DiffViewerModel) Loading() bool       { return m.loading }
func (m DiffViewerModel) Binary() bool        { return m.binary }
func (m DiffViewerModel) Selecting() bool     { return m.selecting }

// Stats counts added and deleted lines of the shown patch.
func (m DiffViewerModel) Stats() (additions, deletions int) {
	return Stats(m.lines)
}

func (m DiffViewerModel) rowCount() int {
	if m.style == kv.DiffStyleUnified {
		return len(m.lines)
	}
	return len(m.split)
}

// rowTarget returns the side and line a comment on row would attach to.
// Additions win when a split row has both sides.
func (m DiffViewerModel) rowTarget(row int) (review.Side, int, bool) {
	if m.style == kv.DiffStyleUnified {
		l := m.lines[row]
		switch l.Type {
		case LineDelete:
			return review.SideDeletions, l.OldLine, true
		case LineAdd, LineContext:
			return review.SideAdditions, l.NewLine, true
		}
		return "", 0, false
	}

	r := m.split[row]
	switch {
	case r.Hunk != nil:
		return "", 0, false
	case r.Right != nil:
		return review.SideAdditions, r.Right.NewLine, true
	case r.Left != nil:
		return review.SideDeletions, r.Left.OldLine, true
	}
	return "", 0, false
}

// rowAnchors lists every (side, line) shown on row.
func (m DiffViewerModel) rowAnchors(row int) []anchor {
	var out []anchor
	add := func(l *ParsedLine) {
		if l == nil {
			return
		}
		switch l.Type {
		case LineDelete:
			out = append(out, anchor{review.SideDeletions, l.OldLine})
		case LineAdd:
			out = append(out, anchor{review.SideAdditions, l.NewLine})
		case LineContext:
			out = append(out, anchor{review.SideAdditions, l.NewLine}, anchor{review.SideDeletions, l.OldLine})
		}
	}

	if m.style == kv.DiffStyleUnified {
		add(&m.lines[row])
		return out
	}
	r := m.split[row]
	if r.Left != nil && r.Left == r.Right {
		add(r.Left)
		return out
	}
	add(r.Left)
	add(r.Right)
	return out
}

type anchor struct {
	side review.Side
	line int
}

// layout rebuilds the cursor stops and renders annotation blocks.
func (m *DiffViewerModel) layout() {
	m.items = nil
	m.blocks = nil

	placed := make(map[anchor]bool)
	rows := m.rowCount()
	for row := range rows {
		for _, a := range m.rowAnchors(row) {
			placed[a] = true
		}
	}

	for i := range m.anns {
		a := m.anns[i]
		if a.Orphaned() || !placed[anchor{a.Side, a.LineNumber}] {
			m.items = append(m.items, viewItem{row: -1, detached: &a})
			m.blocks = append(m.blocks, m.renderAnnotation(a))
		}
	}

	for row := range rows {
		var block []string
		seen := make(map[anchor]bool)
		for _, at := range m.rowAnchors(row) {
			if seen[at] {
				continue
			}
			seen[at] = true
			for _, a := range annotations.ForLine(m.anns, at.side, at.line) {
				if a.Orphaned() {
					continue
				}
				block = append(block, m.renderAnnotation(a)...)
			}
		}
		m.items = append(m.items, viewItem{row: row})
		m.blocks = append(m.blocks, block)
	}
}

func (m DiffViewerModel) boxWidth() int {
	return max(m.width-numWidth*2-6, 20)
}

func (m DiffViewerModel) renderAnnotation(a annotations.Annotation) []string {
	if a.Kind == annotations.KindForm || a.Editing {
		if m.formView == "" {
			return nil
		}
		return strings.Split(m.formView, "\n")
	}

	c := a.Comment
	w := m.boxWidth()

	label := "line " + strconv.Itoa(c.LineNumber)
	if c.IsRange() {
		label = fmt.Sprintf("lines %d-%d", c.StartLine, c.LineNumber)
	}
	if a.Side == review.SideDeletions {
		label += " (old)"
	}

	icon := "#"
	if m.icons {
		icon = styles.IconComment
	}
	header := styles.TextPrimaryStyle.Render(icon) + " " + styles.TextMutedStyle.Render(label)
	if c.Resolved {
		header += " " + styles.TextSuccessStyle.Render("resolved")
	}
	if c.Edited() {
		header += " " + styles.TextMutedStyle.Render("(edited)")
	}

	parts := []string{header}
	style := styles.CommentBoxStyle
	switch {
	case a.Orphaned():
		style = styles.CommentOrphanStyle
		parts[0] += " " + styles.TextWarningStyle.Render("outdated")
		if ctx := a.Context(); ctx != "" {
			parts = append(parts, styles.TextMutedStyle.Render(expandTabs(ctx)))
		}
	case c.Resolved:
		style = styles.CommentResolvedStyle
	}
	parts = append(parts, m.md.Render(c.Body, w-4))

	box := style.Width(w).Render(strings.Join(parts, "\n"))
	return strings.Split(box, "\n")
}

// firstChange returns the first item on an added or deleted line.
func (m DiffViewerModel) firstChange() int {
	for i, it := range m.items {
		if it.row < 0 {
			continue
		}
		if m.rowChanged(it.row) {
			return i
		}
	}
	return 0
}

func (m DiffViewerModel) rowChanged(row int) bool {
	if m.style == kv.DiffStyleUnified {
		t := m.lines[row].Type
		return t == LineAdd || t == LineDelete
	}
	r := m.split[row]
	return r.Hunk == nil && r.Left != r.Right
}

func (m DiffViewerModel) contentHeight() int {
	return max(m.height-headerHeight, 1)
}

func (m DiffViewerModel) itemHeight(i int) int {
	h := len(m.blocks[i])
	if m.items[i].row >= 0 {
		h++
	}
	return h
}

// scrollToCursor moves offset so the cursor item is on screen.
func (m *DiffViewerModel) scrollToCursor() {
	if len(m.items) == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
		return
	}
	avail := m.contentHeight()
	for m.offset < m.cursor {
		used := 0
		for i := m.offset; i <= m.cursor; i++ {
			used += m.itemHeight(i)
		}
		if used <= avail {
			break
		}
		m.offset++
	}
}

func (m *DiffViewerModel) moveCursor(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.items)-1)
	m.extendSelection()
	m.scrollToCursor()
}

// extendSelection moves the selection end to the cursor row when it is on
// the side the selection started on.
func (m *DiffViewerModel) extendSelection() {
	if !m.selecting {
		return
	}
	side, line, ok := m.CursorTarget()
	if ok && side == m.selection.Side {
		m.selection.End = line
	}
}

// Update handles cursor movement and visual selection.
func (m DiffViewerModel) Update(msg tea.Msg) (DiffViewerModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	half := max(m.contentHeight()/2, 1)
	switch keyMsg.String() {
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "ctrl+d", "pgdown":
		m.moveCursor(half)
	case "ctrl+u", "pgup":
		m.moveCursor(-half)
	case "g", "home":
		m.moveCursor(-len(m.items))
	case "G", "end":
		m.moveCursor(len(m.items))
	case "n":
		m.jumpComment(1)
	case "N":
		m.jumpComment(-1)
	case "v", "V":
		if m.selecting {
			m.selecting = false
			break
		}
		if side, line, ok := m.CursorTarget(); ok {
			m.selecting = true
			m.selection = annotations.Selection{Side: side, Start: line, End: line}
		}
	}
	return m, nil
}

// jumpComment moves to the next item in dir that carries a comment.
func (m *DiffViewerModel) jumpComment(dir int) {
	for i := m.cursor + dir; i >= 0 && i < len(m.items); i += dir {
		if len(m.blocks[i]) > 0 {
			m.cursor = i
			m.extendSelection()
			m.scrollToCursor()
			return
		}
	}
}

// CursorTarget returns the side and line under the cursor.
func (m DiffViewerModel) CursorTarget() (review.Side, int, bool) {
	if m.cursor >= len(m.items) || m.items[m.cursor].row < 0 {
		return "", 0, false
	}
	return m.rowTarget(m.items[m.cursor].row)
}

// Selection returns the active line range, or the cursor line as a
// single-line range.
func (m DiffViewerModel) Selection() (annotations.Selection, bool) {
	if m.selecting {
		return m.selection, true
	}
	side, line, ok := m.CursorTarget()
	if !ok {
		return annotations.Selection{}, false
	}
	return annotations.Selection{Side: side, Start: line, End: line}, true
}

// ClearSelection leaves visual mode.
func (m *DiffViewerModel) ClearSelection() {
	m.selecting = false
}

// CommentAtCursor returns the first comment attached to the cursor item.
func (m DiffViewerModel) CommentAtCursor() (review.Comment, bool) {
	if m.cursor >= len(m.items) {
		return review.Comment{}, false
	}
	it := m.items[m.cursor]
	if it.detached != nil {
		if it.detached.Comment != nil {
			return *it.detached.Comment, true
		}
		return review.Comment{}, false
	}
	for _, at := range m.rowAnchors(it.row) {
		for _, a := range annotations.ForLine(m.anns, at.side, at.line) {
			if a.Comment != nil && !a.Orphaned() {
				return *a.Comment, true
			}
		}
	}
	return review.Comment{}, false
}

// View renders the visible portion of the diff.
func (m DiffViewerModel) View() string {
	switch {
	case m.path == "":
		return m.renderEmptyState("No File Selected", "Select a file from the tree to view its diff")
	case m.loading:
		return m.renderEmptyState("Loading Diff...", m.path)
	case m.binary:
		return m.renderEmptyState("Binary File", "Binary files are not displayed")
	case len(m.items) == 0:
		return m.renderEmptyState("Empty Diff", "This file has no textual changes")
	}

	avail := m.contentHeight()
	out := make([]string, 0, avail)
	for i := m.offset; i < len(m.items) && len(out) < avail; i++ {
		it := m.items[i]
		focused := i == m.cursor
		if it.row >= 0 {
			out = append(out, m.renderRow(it.row, focused))
		}
		for j, l := range m.blocks[i] {
			marker := "  "
			if focused && it.row < 0 && j == 0 {
				marker = styles.ReviewCursorStyle.Render("▶") + " "
			}
			out = append(out, marker+strings.Repeat(" ", numWidth*2)+l)
		}
	}
	if len(out) > avail {
		out = out[:avail]
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), strings.Join(out, "\n"))
}

func (m DiffViewerModel) renderHeader() string {
	icon := ""
	if m.icons {
		icon = styles.FileIcon(m.path) + " "
	}
	adds, dels := m.Stats()
	info := icon + styles.TextForegroundBoldStyle.Render(m.path) + " " +
		styles.TextMutedStyle.Render(fmt.Sprintf("(-%d, +%d)", dels, adds))
	return info + "\n" + styles.DividerStyle.Render(strings.Repeat("─", max(m.width-1, 1)))
}

func (m DiffViewerModel) renderRow(row int, focused bool) string {
	marker := " "
	if focused {
		marker = styles.ReviewCursorStyle.Render("▶")
	}

	var line string
	if m.style == kv.DiffStyleUnified {
		line = m.renderUnified(m.lines[row])
	} else {
		line = m.renderSplit(m.split[row])
	}

	if m.selecting {
		if side, n, ok := m.rowTarget(row); ok && m.selection.Contains(side, n) {
			line = styles.ReviewSelectionStyle.Render(ansi.Strip(line))
		}
	}

	out := marker + " " + line
	if m.width > 0 {
		out = ansi.Truncate(out, m.width, "")
	}
	return out
}

func (m DiffViewerModel) renderUnified(l ParsedLine) string {
	if l.Type == LineHunk {
		return strings.Repeat(" ", numWidth*2+1) + styles.DiffHunkStyle.Render(l.Content)
	}

	gutter := styles.DiffGutterStyle.Render(lineNum(l.OldLine) + lineNum(l.NewLine) + "│")
	if m.colored != nil && l.RawIndex < len(m.colored) {
		return gutter + expandTabs(m.colored[l.RawIndex])
	}
	return gutter + styleLine(l.Type, prefix(l.Type)+expandTabs(l.Content))
}

func (m DiffViewerModel) renderSplit(r SplitRow) string {
	if r.Hunk != nil {
		return strings.Repeat(" ", numWidth) + styles.DiffHunkStyle.Render(r.Hunk.Content)
	}

	half := max((m.width-3)/2, numWidth+2)
	left := m.splitCell(r.Left, false, half)
	right := m.splitCell(r.Right, true, half)
	return left + styles.DiffGutterStyle.Render("│") + right
}

// splitCell renders one half of a split row padded to width.
func (m DiffViewerModel) splitCell(l *ParsedLine, newSide bool, width int) string {
	if l == nil {
		return strings.Repeat(" ", width)
	}

	n := l.OldLine
	if newSide {
		n = l.NewLine
	}
	gutter := styles.DiffGutterStyle.Render(lineNum(n))
	text := ansi.Truncate(expandTabs(l.Content), width-numWidth-1, "…")
	cell := gutter + " " + styleLine(l.Type, text)

	if pad := width - lipgloss.Width(cell); pad > 0 {
		cell += strings.Repeat(" ", pad)
	}
	return cell
}

func (m DiffViewerModel) renderEmptyState(title, hint string) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.TextForegroundBoldStyle.Render(title),
		styles.TextMutedStyle.Render(hint),
		"",
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// SetSize updates the dimensions of the diff viewer.
func (m *DiffViewerModel) SetSize(width, height int) {
	resized := width != m.width
	m.width = width
	m.height = height
	if resized {
		m.layout()
	}
	m.scrollToCursor()
}

func lineNum(n int) string {
	if n <= 0 {
		return strings.Repeat(" ", numWidth)
	}
	return fmt.Sprintf("%*d", numWidth, n)
}

func prefix(t LineType) string {
	switch t {
	case LineAdd:
		return "+"
	case LineDelete:
		return "-"
	default:
		return " "
	}
}

func styleLine(t LineType, s string) string {
	switch t {
	case LineAdd:
		return styles.DiffAddedStyle.Render(s)
	case LineDelete:
		return styles.DiffRemovedStyle.Render(s)
	default:
		return styles.DiffContextStyle.Render(s)
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
