package annotations

import "github.com/colonyops/tinydiff/internal/core/review"

// Selection is a line range picked in the diff, in drag order.
type Selection struct {
	Side  review.Side
	Start int
	End   int
}

// Normalize returns the comment line (the range end) and start line. The
// range is ordered regardless of drag direction; a single line yields a zero
// start line.
func (s Selection) Normalize() (lineNumber, startLine int) {
	lo, hi := s.Start, s.End
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return hi, 0
	}
	return hi, lo
}

// Contains reports whether line on side falls inside the selection.
func (s Selection) Contains(side review.Side, line int) bool {
	if side != s.Side {
		return false
	}
	hi, lo := s.Normalize()
	if lo == 0 {
		lo = hi
	}
	return line >= lo && line <= hi
}

// Form opens a pending form for the selection.
func (s Selection) Form() review.FormState {
	line, start := s.Normalize()
	return review.PendingForm(s.Side, line, start)
}
