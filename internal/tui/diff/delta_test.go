package diff

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fakeDelta(fn func(ctx context.Context, patch string) (string, error)) *Prerenderer {
	return &Prerenderer{run: fn, timeout: 50 * time.Millisecond}
}

func TestPrerenderer_Render(t *testing.T) {
	p := fakeDelta(func(_ context.Context, patch string) (string, error) {
		return strings.ToUpper(patch), nil
	})

	lines, ok := p.Render(context.Background(), "@@ -1 +1 @@\n-a\n+b\n")
	assert.True(t, ok)
	assert.Equal(t, []string{"@@ -1 +1 @@", "-A", "+B"}, lines)
}

func TestPrerenderer_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, patch string) (string, error)
	}{
		{
			name: "error",
			run: func(context.Context, string) (string, error) {
				return "", errors.New("boom")
			},
		},
		{
			name: "timeout",
			run: func(ctx context.Context, _ string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
		},
		{
			name: "misaligned output",
			run: func(context.Context, string) (string, error) {
				return "one line", nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, ok := fakeDelta(tt.run).Render(context.Background(), "a\nb\n")
			assert.False(t, ok)
			assert.Nil(t, lines)
		})
	}
}

func TestPrerenderer_Nil(t *testing.T) {
	var p *Prerenderer
	_, ok := p.Render(context.Background(), "x")
	assert.False(t, ok)
}

func TestNewPrerenderer_MissingBinary(t *testing.T) {
	assert.Nil(t, NewPrerenderer("/definitely/not/delta", time.Second))
}
