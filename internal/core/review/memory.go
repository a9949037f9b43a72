package review

import (
	"context"

	"github.com/colonyops/tinydiff/pkg/kv"
)

// MemoryProvider keeps comments in process memory, keyed by repository.
type MemoryProvider struct {
	repos *kv.Store[string, Collection]
}

var _ Provider = (*MemoryProvider)(nil)

// NewMemoryProvider returns an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{repos: kv.New[string, Collection]()}
}

func (m *MemoryProvider) Load(ctx context.Context, repo string) (Collection, error) {
	coll, _ := m.repos.Get(repo)
	return coll.Clone(), nil
}

func (m *MemoryProvider) Save(ctx context.Context, repo string, comment Comment, fileContents *string) error {
	if fileContents != nil {
		comment = Anchored(comment, *fileContents)
	}
	m.repos.Update(repo, func(coll Collection, _ bool) Collection {
		if next, ok := coll.replace(comment); ok {
			return next
		}
		next := coll.Clone()
		next.Comments = append(next.Comments, comment)
		return next
	})
	return nil
}

func (m *MemoryProvider) Delete(ctx context.Context, repo, id string) (bool, error) {
	found := false
	m.repos.Update(repo, func(coll Collection, _ bool) Collection {
		next := Collection{Comments: make([]Comment, 0, len(coll.Comments))}
		for _, c := range coll.Comments {
			if c.ID == id {
				found = true
				continue
			}
			next.Comments = append(next.Comments, c)
		}
		return next
	})
	return found, nil
}
