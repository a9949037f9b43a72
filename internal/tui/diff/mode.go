package diff

import "fmt"

// AppMode is what the viewer was started on.
type AppMode int

const (
	// ModeEmpty shows usage help; no paths were given.
	ModeEmpty AppMode = iota
	// ModeGit browses the changes of the repository containing one path.
	ModeGit
	// ModeFile diffs two arbitrary files. Comments are disabled.
	ModeFile
)

func (m AppMode) String() string {
	switch m {
	case ModeGit:
		return "git"
	case ModeFile:
		return "file"
	default:
		return "empty"
	}
}

// ModeForArgs picks the mode for the positional paths.
func ModeForArgs(paths []string) (AppMode, error) {
	switch len(paths) {
	case 0:
		return ModeEmpty, nil
	case 1:
		return ModeGit, nil
	case 2:
		return ModeFile, nil
	default:
		return ModeEmpty, fmt.Errorf("expected at most 2 paths, got %d", len(paths))
	}
}
