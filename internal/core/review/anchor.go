package review

import "strings"

// splitLines splits text into lines without terminators. A trailing newline
// does not produce an empty final line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func window(lines []string, idx int) string {
	at := func(i int) string {
		if i < 0 || i >= len(lines) {
			return ""
		}
		return lines[i]
	}
	return at(idx-1) + "\n" + at(idx) + "\n" + at(idx+1)
}

// ContextWindow returns the three lines around the 1-based lineNumber joined
// by newlines, with empty strings past either end of the file.
func ContextWindow(contents string, lineNumber int) string {
	idx := lineNumber - 1
	if idx < 0 {
		idx = 0
	}
	return window(splitLines(contents), idx)
}

// Anchored returns c with its context captured from contents and marked
// anchored. Comments without a line are returned unchanged.
func Anchored(c Comment, contents string) Comment {
	if c.LineNumber <= 0 {
		return c
	}
	c.Anchor = Anchor{Type: AnchorAnchored, Context: ContextWindow(contents, c.LineNumber)}
	return c
}

// Reanchor locates c's stored context in contents. The first exact match
// moves the comment to that line; no match marks it orphaned. A comment
// without stored context is returned unchanged.
func Reanchor(c Comment, contents string) Comment {
	if c.Anchor.Context == "" {
		return c
	}

	lines := splitLines(contents)
	for i := range lines {
		if window(lines, i) == c.Anchor.Context {
			if c.StartLine > 0 {
				c.StartLine += (i + 1) - c.LineNumber
				if c.StartLine < 1 {
					c.StartLine = 0
				}
			}
			c.LineNumber = i + 1
			c.Anchor.Type = AnchorAnchored
			return c
		}
	}

	c.Anchor.Type = AnchorOrphaned
	return c
}

// ReanchorAll applies Reanchor to every comment.
func ReanchorAll(comments []Comment, contents string) []Comment {
	out := make([]Comment, len(comments))
	for i, c := range comments {
		out[i] = Reanchor(c, contents)
	}
	return out
}
