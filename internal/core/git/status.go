package git

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// ParseStatus parses the output of `git status --porcelain=v1 -z`.
//
// Each entry is "XY path\x00"; renames and copies are followed by the original
// path as a separate NUL-terminated field. X describes the index and feeds the
// staged bucket, Y describes the worktree and feeds the unstaged bucket.
func ParseStatus(out []byte) (Status, error) {
	var st Status

	fields := bytes.Split(out, []byte{0})
	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) == 0 {
			continue
		}
		if len(entry) < 4 || entry[2] != ' ' {
			return Status{}, &Error{Kind: ErrorGit, Detail: fmt.Sprintf("malformed status entry %q", entry)}
		}

		x, y := entry[0], entry[1]
		path := entry[3:]
		if !utf8.Valid(path) {
			return Status{}, &Error{Kind: ErrorUTF8, Detail: fmt.Sprintf("path %q is not valid UTF-8", path)}
		}

		var oldPath string
		if x == 'R' || x == 'C' || y == 'R' || y == 'C' {
			if i+1 >= len(fields) || len(fields[i+1]) == 0 {
				return Status{}, &Error{Kind: ErrorGit, Path: string(path), Detail: "rename without source path"}
			}
			i++
			if !utf8.Valid(fields[i]) {
				return Status{}, &Error{Kind: ErrorUTF8, Detail: fmt.Sprintf("path %q is not valid UTF-8", fields[i])}
			}
			oldPath = string(fields[i])
		}

		p := string(path)
		switch {
		case x == '?' && y == '?':
			st.Untracked = append(st.Untracked, ChangeRecord{Path: p, Kind: StatusUntracked})
			continue
		case x == '!' && y == '!':
			continue
		case isUnmerged(x, y):
			st.Unstaged = append(st.Unstaged, ChangeRecord{Path: p, Kind: StatusConflicted})
			continue
		}

		if kind, ok := indexKind(x); ok {
			rec := ChangeRecord{Path: p, Kind: kind, Staged: true}
			if kind == StatusRenamed {
				rec.OldPath = oldPath
			}
			st.Staged = append(st.Staged, rec)
		}
		if kind, ok := worktreeKind(y); ok {
			rec := ChangeRecord{Path: p, Kind: kind}
			if kind == StatusRenamed {
				rec.OldPath = oldPath
			}
			st.Unstaged = append(st.Unstaged, rec)
		}
	}

	return st, nil
}

func isUnmerged(x, y byte) bool {
	switch string([]byte{x, y}) {
	case "DD", "AU", "UD", "UA", "DU", "AA", "UU":
		return true
	}
	return false
}

func indexKind(x byte) (StatusKind, bool) {
	switch x {
	case 'A', 'C':
		return StatusAdded, true
	case 'M':
		return StatusModified, true
	case 'D':
		return StatusDeleted, true
	case 'R':
		return StatusRenamed, true
	case 'T':
		return StatusTypechange, true
	}
	return 0, false
}

func worktreeKind(y byte) (StatusKind, bool) {
	switch y {
	case 'A':
		return StatusAdded, true
	case 'M':
		return StatusModified, true
	case 'D':
		return StatusDeleted, true
	case 'R':
		return StatusRenamed, true
	case 'T':
		return StatusTypechange, true
	}
	return 0, false
}
