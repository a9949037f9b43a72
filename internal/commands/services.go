package commands

import (
	"context"

	"github.com/colonyops/tinydiff/internal/core/git"
	"github.com/colonyops/tinydiff/internal/core/kv"
	"github.com/colonyops/tinydiff/internal/data/db"
	"github.com/colonyops/tinydiff/internal/data/stores"
	"github.com/colonyops/tinydiff/internal/store/jsonfile"
	"github.com/colonyops/tinydiff/pkg/executil"
)

// newGit builds the git provider from the loaded config.
func (f *Flags) newGit() *git.Executor {
	exec := f.Exec
	if exec == nil {
		exec = &executil.RealExecutor{}
	}
	return git.NewExecutor(f.Config.GitPath, exec).ExpandUnchanged(f.Config.Diff.ExpandUnchanged)
}

// newCommentStore returns the comment store for the configured directory.
func (f *Flags) newCommentStore() *jsonfile.CommentStore {
	return jsonfile.NewCommentStore(f.Config.Comments.Dir)
}

// SettingsOpener opens the SQLite settings database under the data directory,
// or an in-memory store when persistence is disabled.
func (f *Flags) SettingsOpener() kv.Opener {
	if f.NoPersist {
		return kv.MemoryOpener()
	}

	cfg := f.Config
	return func(ctx context.Context) (kv.KV, func() error, error) {
		opts := db.DefaultOpenOptions()
		opts.MaxOpenConns = cfg.Database.MaxOpenConns
		opts.BusyTimeout = cfg.Database.BusyTimeoutDuration()

		database, err := db.Open(cfg.DataDir, opts)
		if err != nil {
			return nil, nil, err
		}
		return stores.NewKVStore(database), database.Close, nil
	}
}

// discover resolves path, "." when empty, to its repository root.
func (f *Flags) discover(ctx context.Context, provider git.Provider, path string) (string, error) {
	if path == "" {
		path = "."
	}
	return provider.Discover(ctx, path)
}
