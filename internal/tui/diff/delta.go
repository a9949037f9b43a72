package diff

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tinydiff/internal/core/fetch"
	"github.com/colonyops/tinydiff/internal/core/logging"
)

// DeltaRunner highlights a patch and returns the colored text.
type DeltaRunner func(ctx context.Context, patch string) (string, error)

// ExecDelta returns a DeltaRunner that pipes the patch through the delta
// binary at path. --color-only keeps delta's output line-aligned with its
// input.
func ExecDelta(path string) DeltaRunner {
	return func(ctx context.Context, patch string) (string, error) {
		cmd := exec.CommandContext(ctx, path, "--paging=never", "--color-only")
		cmd.Stdin = strings.NewReader(patch)

		var stdout bytes.Buffer
		cmd.Stdout = &stdout

		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("exec delta: %w", err)
		}
		return stdout.String(), nil
	}
}

// Prerenderer highlights large patches with delta, bounded by a timeout.
type Prerenderer struct {
	run     DeltaRunner
	timeout time.Duration
	log     zerolog.Logger
}

// NewPrerenderer returns a Prerenderer, or nil when deltaPath cannot be found.
// A nil Prerenderer is valid and never highlights.
func NewPrerenderer(deltaPath string, timeout time.Duration) *Prerenderer {
	log := logging.Component("delta")
	if _, err := exec.LookPath(deltaPath); err != nil {
		log.Debug().Str("path", deltaPath).Msg("delta not found, prerender disabled")
		return nil
	}
	return &Prerenderer{run: ExecDelta(deltaPath), timeout: timeout, log: log}
}

// Render returns the highlighted patch split into lines, aligned with the
// patch's own lines. It reports false when highlighting failed, timed out,
// or does not line up, in which case the caller renders plain text.
func (p *Prerenderer) Render(ctx context.Context, patch string) ([]string, bool) {
	if p == nil || patch == "" {
		return nil, false
	}

	out, ok := fetch.WithTimeout(ctx, p.timeout, func(ctx context.Context) (string, error) {
		return p.run(ctx, patch)
	}, "")
	if !ok {
		p.log.Debug().Dur("timeout", p.timeout).Msg("prerender fell back to plain rendering")
		return nil, false
	}

	want := strings.Split(strings.TrimSuffix(patch, "\n"), "\n")
	got := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(got) != len(want) {
		return nil, false
	}
	return got, true
}
