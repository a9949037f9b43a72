package git

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	// ErrorPath means the path is missing, inaccessible or not allowed.
	ErrorPath ErrorKind = "path"
	// ErrorUTF8 means the path is not valid UTF-8.
	ErrorUTF8 ErrorKind = "utf8"
	// ErrorGit means the git operation itself failed.
	ErrorGit ErrorKind = "git"
)

// Error is a provider failure with a kind the UI can render.
type Error struct {
	Kind   ErrorKind
	Path   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Detail != "":
		return fmt.Sprintf("%s error for %q: %s", e.Kind, e.Path, e.Detail)
	case e.Path != "":
		return fmt.Sprintf("%s error for %q", e.Kind, e.Path)
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Detail)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Kind == kind
}

func pathError(p, detail string, err error) *Error {
	return &Error{Kind: ErrorPath, Path: p, Detail: detail, Err: err}
}

func gitError(p string, err error) *Error {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return &Error{Kind: ErrorGit, Path: p, Detail: detail, Err: err}
}

// ValidateRelPath rejects empty and absolute paths and paths with ".." segments.
func ValidateRelPath(p string) error {
	if p == "" {
		return pathError(p, "path is empty", nil)
	}
	if path.IsAbs(p) || strings.HasPrefix(p, `\`) || (len(p) > 1 && p[1] == ':') {
		return pathError(p, "must be relative", nil)
	}
	for _, seg := range strings.Split(strings.ReplaceAll(p, `\`, "/"), "/") {
		if seg == ".." {
			return pathError(p, "cannot contain '..'", nil)
		}
	}
	return nil
}
