package review

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a comment id does not exist.
var ErrNotFound = errors.New("comment not found")

// Provider persists comments for a repository.
type Provider interface {
	// Load returns every comment stored for repo. A repository without stored
	// comments yields an empty collection.
	Load(ctx context.Context, repo string) (Collection, error)

	// Save inserts or replaces comment by id. When fileContents is non-nil it
	// is the current text of the commented file, used to refresh the anchor
	// context.
	Save(ctx context.Context, repo string, comment Comment, fileContents *string) error

	// Delete removes the comment with id. It reports false when no such
	// comment exists.
	Delete(ctx context.Context, repo, id string) (bool, error)
}
