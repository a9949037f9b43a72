package diff

import (
	"fmt"
	"strconv"
	"strings"
)

// LineType represents the type of a line in a unified diff.
type LineType int

const (
	LineContext LineType = iota // unchanged line, prefixed with a space
	LineAdd                     // '+' line
	LineDelete                  // '-' line
	LineHunk                    // "@@ -a,b +c,d @@" header
)

// ParsedLine is one renderable line of a patch.
type ParsedLine struct {
	Type     LineType
	Content  string // text without the +/-/space prefix
	OldLine  int    // line in the old file, 0 when absent
	NewLine  int    // line in the new file, 0 when absent
	RawIndex int    // index of the line in the patch text
}

// HunkHeader is the metadata of a hunk header line.
type HunkHeader struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Section  string // function context after the closing @@
}

// ParseDiffLines parses a unified diff into hunk headers and body lines.
// Preamble lines (diff --git, index, ---/+++ and the like) and "\ No newline"
// markers are skipped but still counted in RawIndex.
func ParseDiffLines(patch string) ([]ParsedLine, error) {
	raw := strings.Split(strings.TrimSuffix(patch, "\n"), "\n")
	var (
		out        []ParsedLine
		oldN, newN int
		inHunk     bool
	)

	for i, line := range raw {
		if strings.HasPrefix(line, "@@") {
			h, err := parseHunkHeader(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			out = append(out, ParsedLine{Type: LineHunk, Content: line, OldLine: h.OldStart, NewLine: h.NewStart, RawIndex: i})
			oldN, newN = h.OldStart, h.NewStart
			inHunk = true
			continue
		}

		if !inHunk || line == "" {
			continue
		}

		switch line[0] {
		case '+':
			out = append(out, ParsedLine{Type: LineAdd, Content: line[1:], NewLine: newN, RawIndex: i})
			newN++
		case '-':
			out = append(out, ParsedLine{Type: LineDelete, Content: line[1:], OldLine: oldN, RawIndex: i})
			oldN++
		case ' ':
			out = append(out, ParsedLine{Type: LineContext, Content: line[1:], OldLine: oldN, NewLine: newN, RawIndex: i})
			oldN++
			newN++
		case '\\':
			// "\ No newline at end of file"
		default:
			// a new file header in a multi-file patch
			inHunk = false
		}
	}

	return out, nil
}

// parseHunkHeader parses a line like "@@ -1,7 +1,8 @@ func main()".
func parseHunkHeader(line string) (HunkHeader, error) {
	body, ok := strings.CutPrefix(line, "@@")
	if !ok {
		return HunkHeader{}, fmt.Errorf("invalid hunk header: missing @@ prefix")
	}

	ranges, section, ok := strings.Cut(body, "@@")
	if !ok {
		return HunkHeader{}, fmt.Errorf("invalid hunk header: missing closing @@")
	}

	parts := strings.Fields(ranges)
	if len(parts) != 2 {
		return HunkHeader{}, fmt.Errorf("invalid hunk header: expected 2 ranges, got %d", len(parts))
	}

	oldRange, ok := strings.CutPrefix(parts[0], "-")
	if !ok {
		return HunkHeader{}, fmt.Errorf("invalid hunk header: old range missing - prefix")
	}
	newRange, ok := strings.CutPrefix(parts[1], "+")
	if !ok {
		return HunkHeader{}, fmt.Errorf("invalid hunk header: new range missing + prefix")
	}

	oldStart, oldCount, err := parseRange(oldRange)
	if err != nil {
		return HunkHeader{}, fmt.Errorf("parse old range: %w", err)
	}
	newStart, newCount, err := parseRange(newRange)
	if err != nil {
		return HunkHeader{}, fmt.Errorf("parse new range: %w", err)
	}

	return HunkHeader{
		OldStart: oldStart,
		OldCount: oldCount,
		NewStart: newStart,
		NewCount: newCount,
		Section:  strings.TrimSpace(section),
	}, nil
}

// parseRange parses "start,count" or "start" (count 1).
func parseRange(s string) (start, count int, err error) {
	startStr, countStr, hasCount := strings.Cut(s, ",")

	start, err = strconv.Atoi(startStr)
	if err != nil {
		return 0, 0, fmt.Errorf("parse start: %w", err)
	}
	if !hasCount {
		return start, 1, nil
	}

	count, err = strconv.Atoi(countStr)
	if err != nil {
		return 0, 0, fmt.Errorf("parse count: %w", err)
	}
	return start, count, nil
}

// Stats counts added and deleted lines.
func Stats(lines []ParsedLine) (additions, deletions int) {
	for _, l := range lines {
		switch l.Type {
		case LineAdd:
			additions++
		case LineDelete:
			deletions++
		}
	}
	return additions, deletions
}

// SplitRow is one row of a side-by-side diff. Hunk rows carry only Hunk.
type SplitRow struct {
	Hunk  *ParsedLine
	Left  *ParsedLine // deletion or context
	Right *ParsedLine // addition or context
}

// SplitRows pairs each run of deletions with the additions that follow it so
// that replaced lines sit side by side.
func SplitRows(lines []ParsedLine) []SplitRow {
	var (
		rows     []SplitRow
		dels     []*ParsedLine
		adds     []*ParsedLine
		flushRun = func() {
			n := max(len(dels), len(adds))
			for i := range n {
				var r SplitRow
				if i < len(dels) {
					r.Left = dels[i]
				}
				if i < len(adds) {
					r.Right = adds[i]
				}
				rows = append(rows, r)
			}
			dels, adds = nil, nil
		}
	)

	for i := range lines {
		l := &lines[i]
		switch l.Type {
		case LineDelete:
			if len(adds) > 0 {
				flushRun()
			}
			dels = append(dels, l)
		case LineAdd:
			adds = append(adds, l)
		case LineContext:
			flushRun()
			rows = append(rows, SplitRow{Left: l, Right: l})
		case LineHunk:
			flushRun()
			rows = append(rows, SplitRow{Hunk: l})
		}
	}
	flushRun()

	return rows
}
