package filetree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tinydiff/internal/core/git"
)

func TestFilter(t *testing.T) {
	recs := unstaged("vendor/x/a.go", "src/a.go", "src/a_test.go", "go.sum", "docs/img/logo.png")

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"no patterns", nil, []string{"vendor/x/a.go", "src/a.go", "src/a_test.go", "go.sum", "docs/img/logo.png"}},
		{"directory glob", []string{"vendor/**"}, []string{"src/a.go", "src/a_test.go", "go.sum", "docs/img/logo.png"}},
		{"suffix glob", []string{"**/*_test.go", "go.sum"}, []string{"vendor/x/a.go", "src/a.go", "docs/img/logo.png"}},
		{"extension anywhere", []string{"**/*.png"}, []string{"vendor/x/a.go", "src/a.go", "src/a_test.go", "go.sum"}},
		{"invalid pattern never matches", []string{"[unclosed"}, []string{"vendor/x/a.go", "src/a.go", "src/a_test.go", "go.sum", "docs/img/logo.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range Filter(recs, tt.patterns) {
				got = append(got, r.Path)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterStatus(t *testing.T) {
	st := git.Status{
		Staged:    []git.ChangeRecord{{Path: "gen/a.pb.go", Staged: true}},
		Unstaged:  []git.ChangeRecord{{Path: "main.go"}},
		Untracked: []git.ChangeRecord{{Path: "gen/b.pb.go"}},
	}

	got := FilterStatus(st, []string{"gen/**"})
	assert.Empty(t, got.Staged)
	assert.Len(t, got.Unstaged, 1)
	assert.Empty(t, got.Untracked)
}
