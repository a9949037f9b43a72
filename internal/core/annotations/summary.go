package annotations

import (
	"fmt"

	"github.com/colonyops/tinydiff/internal/core/review"
)

// Summary counts comments by state for the status bar.
type Summary struct {
	Open     int
	Resolved int
	Orphaned int
}

// Summarize counts comments. Orphaned comments are also counted as open or
// resolved.
func Summarize(comments []review.Comment) Summary {
	var s Summary
	for _, c := range comments {
		if c.Resolved {
			s.Resolved++
		} else {
			s.Open++
		}
		if c.Orphaned() {
			s.Orphaned++
		}
	}
	return s
}

func (s Summary) Total() int { return s.Open + s.Resolved }

func (s Summary) String() string {
	if s.Total() == 0 {
		return "no comments"
	}
	out := fmt.Sprintf("%d open, %d resolved", s.Open, s.Resolved)
	if s.Orphaned > 0 {
		out += fmt.Sprintf(", %d orphaned", s.Orphaned)
	}
	return out
}
