package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tinydiff/internal/core/config"
	"github.com/colonyops/tinydiff/internal/printer"
	"github.com/colonyops/tinydiff/internal/store/jsonfile"
	"github.com/colonyops/tinydiff/internal/tui/diff"
	"github.com/colonyops/tinydiff/pkg/utils"
)

// ViewCmd runs the interactive viewer. It is the root action.
type ViewCmd struct {
	flags *Flags

	noWatch bool
}

// NewViewCmd creates the viewer command.
func NewViewCmd(flags *Flags) *ViewCmd {
	return &ViewCmd{flags: flags}
}

// Flags returns the viewer flags for registration on the root command.
func (cmd *ViewCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-watch",
			Usage:       "do not refresh when files change",
			Sources:     cli.EnvVars("TINYDIFF_NO_WATCH"),
			Destination: &cmd.noWatch,
		},
	}
}

// Run executes the viewer. Exported for use as the default action.
func (cmd *ViewCmd) Run(ctx context.Context, c *cli.Command) error {
	paths := c.Args().Slice()
	mode, err := diff.ModeForArgs(paths)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tinydiff needs a terminal; use 'tinydiff status' for plain output")
	}

	cfg := cmd.flags.Config
	provider := cmd.flags.newGit()

	watchers := &watcherSet{}
	defer watchers.Close()

	// warnings raised while the alternate screen is up are shown on exit
	deferred := &utils.DeferredWriter{}
	p := printer.New(deferred)
	for _, w := range cfg.Warnings() {
		p.Warnf("%s: %s", w.Item, w.Message)
	}

	opts := diff.Options{
		Mode:     mode,
		Paths:    paths,
		Git:      provider,
		Compare:  provider,
		Comments: cmd.flags.newCommentStore(),
		Settings: cmd.flags.Settings,
		Ignore:   cfg.Tree.Ignore,
		Icons:    cfg.TUI.Icons,
	}
	if cfg.Diff.Prerender {
		opts.Prerender = diff.NewPrerenderer(cfg.Diff.DeltaPath, cfg.Diff.PrerenderTimeout)
	}
	if cfg.Watch.Enabled && !cmd.noWatch {
		opts.Watch = watchers.watchFunc(ctx, cfg, p)
	}

	m := diff.New(ctx, opts)
	_, runErr := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	if n := deferred.Buffered(); n > 0 {
		log.Debug().Int("bytes", n).Msg("releasing deferred output")
	}
	if err := deferred.Release(os.Stderr); err != nil {
		log.Warn().Err(err).Msg("release deferred output")
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", runErr)
	}
	return nil
}

// watcherSet owns the repository watchers started by the viewer.
type watcherSet struct {
	mu       sync.Mutex
	watchers []*jsonfile.RepoWatcher
}

func (s *watcherSet) watchFunc(ctx context.Context, cfg *config.Config, p *printer.Printer) diff.WatchFunc {
	return func(repo string) (<-chan jsonfile.Change, error) {
		rw, err := jsonfile.NewRepoWatcher(repo, cfg.Comments.Dir, cfg.Watch.Debounce)
		if err != nil {
			p.Warnf("live refresh disabled: %v", err)
			return nil, err
		}

		s.mu.Lock()
		s.watchers = append(s.watchers, rw)
		s.mu.Unlock()

		log.Debug().Str("repo", repo).Dur("debounce", cfg.Watch.Debounce).Msg("watching repository")
		return rw.Subscribe(ctx), nil
	}
}

// Close stops every watcher.
func (s *watcherSet) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rw := range s.watchers {
		if err := rw.Close(); err != nil {
			log.Warn().Err(err).Msg("close watcher")
		}
	}
	s.watchers = nil
}
