package filetree

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/tinydiff/internal/core/git"
)

// Filter drops records whose path matches any of the doublestar patterns.
// Invalid patterns never match.
func Filter(records []git.ChangeRecord, patterns []string) []git.ChangeRecord {
	if len(patterns) == 0 {
		return records
	}

	out := make([]git.ChangeRecord, 0, len(records))
	for _, rec := range records {
		if !ignored(rec.Path, patterns) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterStatus applies Filter to every bucket of st.
func FilterStatus(st git.Status, patterns []string) git.Status {
	return git.Status{
		Staged:    Filter(st.Staged, patterns),
		Unstaged:  Filter(st.Unstaged, patterns),
		Untracked: Filter(st.Untracked, patterns),
	}
}

func ignored(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}
