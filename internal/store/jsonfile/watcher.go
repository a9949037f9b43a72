package jsonfile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/colonyops/tinydiff/internal/core/logging"
	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDebounce is the quiet period before a burst of changes is reported.
	DefaultDebounce = 150 * time.Millisecond

	eventBufferSize = 16
)

// ChangeKind classifies what changed in a repository.
type ChangeKind int

const (
	// ChangeWorktree covers working tree files and the git index or HEAD.
	ChangeWorktree ChangeKind = iota
	// ChangeComments means the comments file was rewritten.
	ChangeComments
)

func (k ChangeKind) String() string {
	if k == ChangeComments {
		return "comments"
	}
	return "worktree"
}

// Change is a debounced notification that part of the repository changed.
type Change struct {
	Kind      ChangeKind
	Timestamp time.Time
}

// RepoWatcher watches a repository working tree with fsnotify and reports
// debounced changes. Paths inside .git are ignored except the index and HEAD,
// which move when files are staged or commits are made.
type RepoWatcher struct {
	root        string
	commentsDir string
	delay       time.Duration
	watcher     *fsnotify.Watcher

	mu       sync.Mutex
	subs     []chan Change
	debounce map[ChangeKind]*time.Timer
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRepoWatcher starts watching root. commentsDir is the repository-relative
// directory holding comments (DefaultDir when empty). A delay of zero uses
// DefaultDebounce.
func NewRepoWatcher(root, commentsDir string, delay time.Duration) (*RepoWatcher, error) {
	if commentsDir == "" {
		commentsDir = DefaultDir
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	rw := &RepoWatcher{
		root:        root,
		commentsDir: commentsDir,
		delay:       delay,
		watcher:     watcher,
		debounce:    make(map[ChangeKind]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}

	if err := rw.addTree(root); err != nil {
		cancel()
		_ = watcher.Close()
		return nil, err
	}

	gitDir := filepath.Join(root, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		if err := watcher.Add(gitDir); err != nil {
			cancel()
			_ = watcher.Close()
			return nil, err
		}
	}

	rw.wg.Add(1)
	go rw.run()

	return rw, nil
}

// Subscribe returns a channel receiving changes until ctx is done or the
// watcher is closed. Slow subscribers miss changes rather than block.
func (rw *RepoWatcher) Subscribe(ctx context.Context) <-chan Change {
	ch := make(chan Change, eventBufferSize)

	rw.mu.Lock()
	if rw.closed {
		rw.mu.Unlock()
		close(ch)
		return ch
	}
	rw.subs = append(rw.subs, ch)
	rw.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			rw.unsubscribe(ch)
		case <-rw.ctx.Done():
		}
	}()

	return ch
}

// Close stops watching and closes every subscriber channel.
func (rw *RepoWatcher) Close() error {
	rw.cancel()

	rw.mu.Lock()
	rw.closed = true
	for _, timer := range rw.debounce {
		timer.Stop()
	}
	for _, ch := range rw.subs {
		close(ch)
	}
	rw.subs = nil
	rw.mu.Unlock()

	err := rw.watcher.Close()
	rw.wg.Wait()
	return err
}

func (rw *RepoWatcher) unsubscribe(ch chan Change) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	for i, sub := range rw.subs {
		if sub == ch {
			rw.subs = append(rw.subs[:i], rw.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// addTree registers dir and every subdirectory except .git.
func (rw *RepoWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		return rw.watcher.Add(p)
	})
}

func (rw *RepoWatcher) run() {
	defer rw.wg.Done()
	log := logging.Component("watch")

	for {
		select {
		case <-rw.ctx.Done():
			return
		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			rw.handleEvent(event)
		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("root", rw.root).Msg("watch error")
		}
	}
}

func (rw *RepoWatcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}

	kind, ok := rw.classify(event.Name)
	if !ok {
		return
	}

	if event.Has(fsnotify.Create) && kind == ChangeWorktree {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = rw.addTree(event.Name)
		}
	}

	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.closed {
		return
	}
	if timer, exists := rw.debounce[kind]; exists {
		timer.Stop()
	}
	rw.debounce[kind] = time.AfterFunc(rw.delay, func() {
		rw.notify(kind)
	})
}

// classify maps an event path to a change kind, reporting false for paths
// that should not trigger a refresh.
func (rw *RepoWatcher) classify(name string) (ChangeKind, bool) {
	rel, err := filepath.Rel(rw.root, name)
	if err != nil {
		return 0, false
	}
	rel = filepath.ToSlash(rel)

	if rest, ok := strings.CutPrefix(rel, ".git/"); ok {
		return ChangeWorktree, rest == "index" || rest == "HEAD"
	}

	if rest, ok := strings.CutPrefix(rel, filepath.ToSlash(rw.commentsDir)+"/"); ok {
		return ChangeComments, rest == commentsFile
	}

	base := filepath.Base(name)
	if strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, ".lock") || strings.HasSuffix(base, "~") {
		return 0, false
	}
	return ChangeWorktree, true
}

func (rw *RepoWatcher) notify(kind ChangeKind) {
	change := Change{Kind: kind, Timestamp: time.Now()}

	rw.mu.Lock()
	defer rw.mu.Unlock()

	delete(rw.debounce, kind)
	if rw.closed {
		return
	}
	for _, ch := range rw.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
