package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/colonyops/tinydiff/pkg/executil"
)

// Executor implements Provider using the git command-line tool.
type Executor struct {
	gitPath     string
	exec        executil.Executor
	fullContext bool
}

var _ Provider = (*Executor)(nil)

// NewExecutor creates a new git executor with the specified git binary path.
func NewExecutor(gitPath string, exec executil.Executor) *Executor {
	if gitPath == "" {
		gitPath = "git"
	}
	return &Executor{gitPath: gitPath, exec: exec}
}

// fullContextLines is passed as -U so a patch carries every unchanged line.
const fullContextLines = "--unified=1000000"

// ExpandUnchanged makes patches include every unchanged line instead of three
// lines of context around each hunk.
func (e *Executor) ExpandUnchanged(on bool) *Executor {
	e.fullContext = on
	return e
}

func (e *Executor) diffArgs() []string {
	args := []string{"diff", "--no-color", "--no-ext-diff"}
	if e.fullContext {
		args = append(args, fullContextLines)
	}
	return args
}

func (e *Executor) Discover(ctx context.Context, path string) (string, error) {
	if !utf8.ValidString(path) {
		return "", &Error{Kind: ErrorUTF8, Path: path, Detail: "path is not valid UTF-8"}
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", pathError(path, "does not exist or is not accessible", err)
	}

	dir := path
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}

	out, err := e.exec.RunDir(ctx, dir, e.gitPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", &Error{Kind: ErrorGit, Path: path, Detail: "not a git repository", Err: err}
	}

	root := strings.TrimSpace(string(out))
	if !utf8.ValidString(root) {
		return "", &Error{Kind: ErrorUTF8, Path: root, Detail: "repository path is not valid UTF-8"}
	}
	return root, nil
}

func (e *Executor) Status(ctx context.Context, repo string) (Status, error) {
	out, err := e.exec.RunDir(ctx, repo, e.gitPath, "status", "--porcelain=v1", "-z", "--untracked-files=all")
	if err != nil {
		return Status{}, gitError(repo, err)
	}
	return ParseStatus(out)
}

func (e *Executor) FileContents(ctx context.Context, repo, file string, target Target) (FileContents, error) {
	if err := ValidateRelPath(file); err != nil {
		return FileContents{}, err
	}

	var (
		oldContent, newContent *FileContent
		err                    error
	)

	switch target {
	case TargetStaged:
		oldContent, err = e.showBlob(ctx, repo, "HEAD:"+file)
		if err != nil {
			return FileContents{}, err
		}
		newContent, err = e.showBlob(ctx, repo, ":"+file)
		if err != nil {
			return FileContents{}, err
		}
	case TargetUnstaged:
		oldContent, err = e.showBlob(ctx, repo, ":"+file)
		if err != nil {
			return FileContents{}, err
		}
		newContent, err = readWorktree(filepath.Join(repo, filepath.FromSlash(file)))
		if err != nil {
			return FileContents{}, pathError(file, "cannot read working tree file", err)
		}
	default:
		return FileContents{}, &Error{Kind: ErrorGit, Path: file, Detail: "unknown diff target " + string(target)}
	}

	lang := Lang(file)
	return FileContents{
		OldFile: DiffFile{Name: file, Lang: lang, Content: oldContent},
		NewFile: DiffFile{Name: file, Lang: lang, Content: newContent},
	}, nil
}

func (e *Executor) FileDiff(ctx context.Context, repo string, rec ChangeRecord) (FileDiff, error) {
	if err := ValidateRelPath(rec.Path); err != nil {
		return FileDiff{}, err
	}

	args := e.diffArgs()
	switch {
	case rec.Kind == StatusUntracked:
		args = append(args, "--no-index", "--", os.DevNull, rec.Path)
	case rec.Staged:
		args = append(args, "--cached", "-M", "--", rec.Path)
		if rec.OldPath != "" {
			args = append(args, rec.OldPath)
		}
	default:
		args = append(args, "--", rec.Path)
	}

	out, err := e.exec.RunDir(ctx, repo, e.gitPath, args...)
	// --no-index exits 1 when the inputs differ
	if err != nil && !(rec.Kind == StatusUntracked && executil.ExitCode(err) == 1) {
		return FileDiff{}, gitError(rec.Path, err)
	}

	return FileDiff{
		Path:    rec.Path,
		OldPath: rec.OldPath,
		Binary:  isBinaryPatch(out),
		Patch:   string(out),
	}, nil
}

// ComparePaths diffs two arbitrary files outside of any repository index.
func (e *Executor) ComparePaths(ctx context.Context, oldPath, newPath string) (FileContents, FileDiff, error) {
	for _, p := range []string{oldPath, newPath} {
		if !utf8.ValidString(p) {
			return FileContents{}, FileDiff{}, &Error{Kind: ErrorUTF8, Path: p, Detail: "path is not valid UTF-8"}
		}
	}

	oldContent, err := readWorktree(oldPath)
	if err != nil {
		return FileContents{}, FileDiff{}, pathError(oldPath, "cannot read file", err)
	}
	newContent, err := readWorktree(newPath)
	if err != nil {
		return FileContents{}, FileDiff{}, pathError(newPath, "cannot read file", err)
	}
	if oldContent == nil {
		return FileContents{}, FileDiff{}, pathError(oldPath, "does not exist", os.ErrNotExist)
	}
	if newContent == nil {
		return FileContents{}, FileDiff{}, pathError(newPath, "does not exist", os.ErrNotExist)
	}

	args := append(e.diffArgs(), "--no-index", "--", oldPath, newPath)
	out, err := e.exec.Run(ctx, e.gitPath, args...)
	if err != nil && executil.ExitCode(err) != 1 {
		return FileContents{}, FileDiff{}, gitError(newPath, err)
	}

	contents := FileContents{
		OldFile: DiffFile{Name: filepath.Base(oldPath), Lang: Lang(oldPath), Content: oldContent},
		NewFile: DiffFile{Name: filepath.Base(newPath), Lang: Lang(newPath), Content: newContent},
	}
	diff := FileDiff{
		Path:    newPath,
		OldPath: oldPath,
		Binary:  isBinaryPatch(out),
		Patch:   string(out),
	}
	return contents, diff, nil
}

// showBlob returns the blob at spec, or nil when the object does not exist.
func (e *Executor) showBlob(ctx context.Context, repo, spec string) (*FileContent, error) {
	out, err := e.exec.RunDir(ctx, repo, e.gitPath, "show", spec)
	if err != nil {
		// 128 is git's fatal exit; for `show` it means the path is not in the tree
		if executil.ExitCode(err) == 128 {
			return nil, nil
		}
		return nil, gitError(spec, err)
	}
	return newFileContent(out), nil
}

func readWorktree(path string) (*FileContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return newFileContent(data), nil
}

func newFileContent(data []byte) *FileContent {
	if IsBinary(data) {
		return &FileContent{Type: ContentBinary, Size: int64(len(data))}
	}
	return &FileContent{Type: ContentText, Contents: strings.ToValidUTF8(string(data), "�")}
}

// IsBinary reports whether data contains a NUL byte.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}

func isBinaryPatch(patch []byte) bool {
	for _, line := range bytes.Split(patch, []byte{'\n'}) {
		if bytes.HasPrefix(line, []byte("Binary files ")) && bytes.HasSuffix(line, []byte(" differ")) {
			return true
		}
	}
	return false
}
