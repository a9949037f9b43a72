package logging

import "context"

type contextKey string

const (
	repoKey contextKey = "repo"
	fileKey contextKey = "file"
)

// WithRepo adds the repository root to the context.
func WithRepo(ctx context.Context, repo string) context.Context {
	return context.WithValue(ctx, repoKey, repo)
}

// WithFile adds a repository-relative file path to the context.
func WithFile(ctx context.Context, file string) context.Context {
	return context.WithValue(ctx, fileKey, file)
}

// GetRepo retrieves the repository root from the context.
// Returns empty string if not present.
func GetRepo(ctx context.Context) string {
	if v, ok := ctx.Value(repoKey).(string); ok {
		return v
	}
	return ""
}

// GetFile retrieves the file path from the context.
// Returns empty string if not present.
func GetFile(ctx context.Context) string {
	if v, ok := ctx.Value(fileKey).(string); ok {
		return v
	}
	return ""
}
