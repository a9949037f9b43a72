package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tinydiff/internal/core/git"
	"github.com/colonyops/tinydiff/internal/core/review"
	"github.com/colonyops/tinydiff/internal/printer"
	"github.com/colonyops/tinydiff/internal/store/jsonfile"
	"github.com/colonyops/tinydiff/pkg/iojson"
)

// now is replaced in tests.
var now = time.Now

type CommentsCmd struct {
	flags *Flags
	fr    *iojson.FileReader[review.Collection]

	repo  string
	file  string
	json  bool
	open  bool
	line  int
	start int
	body  string

	// interactive reports whether prompts may be shown.
	interactive func() bool
}

// NewCommentsCmd creates the comments command group.
func NewCommentsCmd(flags *Flags) *CommentsCmd {
	return &CommentsCmd{
		flags: flags,
		fr:    &iojson.FileReader[review.Collection]{},
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Register adds the comments commands to the application.
func (cmd *CommentsCmd) Register(app *cli.Command) *cli.Command {
	repoFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:        "repo",
			Aliases:     []string{"C"},
			Usage:       "path inside the repository",
			Value:       ".",
			Destination: &cmd.repo,
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "comments",
		Usage: "Manage review comments",
		Description: `Comments are stored per repository in <comments.dir>/comments.json
(.tinydiff by default) and shared with the viewer.`,
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List comments",
				UsageText: "tinydiff comments list [--file path] [--open] [--json]",
				Flags: []cli.Flag{
					repoFlag(),
					&cli.StringFlag{
						Name:        "file",
						Usage:       "only comments on this repository-relative file",
						Destination: &cmd.file,
					},
					&cli.BoolFlag{
						Name:        "open",
						Usage:       "hide resolved comments",
						Destination: &cmd.open,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "print JSON",
						Destination: &cmd.json,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "add",
				Usage:     "Add a comment",
				UsageText: "tinydiff comments add --file path --line n [--start n] [--body text]",
				Description: `Adds a comment anchored to the current working tree contents of the file.
Missing values are prompted for when stdin is a terminal.`,
				Flags: []cli.Flag{
					repoFlag(),
					&cli.StringFlag{
						Name:        "file",
						Aliases:     []string{"f"},
						Usage:       "repository-relative file",
						Destination: &cmd.file,
					},
					&cli.IntFlag{
						Name:        "line",
						Aliases:     []string{"l"},
						Usage:       "1-based line the comment attaches to (the range end)",
						Destination: &cmd.line,
					},
					&cli.IntFlag{
						Name:        "start",
						Usage:       "first line of a range",
						Destination: &cmd.start,
					},
					&cli.StringFlag{
						Name:        "body",
						Aliases:     []string{"b"},
						Usage:       "comment text (markdown)",
						Destination: &cmd.body,
					},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "resolve",
				Usage:     "Toggle the resolved flag of a comment",
				UsageText: "tinydiff comments resolve <id>",
				Flags:     []cli.Flag{repoFlag()},
				Action:    cmd.runResolve,
			},
			{
				Name:      "delete",
				Usage:     "Delete a comment",
				UsageText: "tinydiff comments delete <id>",
				Flags:     []cli.Flag{repoFlag()},
				Action:    cmd.runDelete,
			},
			{
				Name:  "import",
				Usage: "Import comments from JSON",
				UsageText: `tinydiff comments import -f comments.json
cat comments.json | tinydiff comments import`,
				Description: `Reads {"comments":[...]} and upserts every comment by id. Comments
without an id get a new one. Each is re-anchored against the file's
current contents when the file is readable.`,
				Flags:  []cli.Flag{repoFlag(), cmd.fr.Flag()},
				Action: cmd.runImport,
			},
		},
	})

	return app
}

// openRepo resolves the repository and its comment store.
func (cmd *CommentsCmd) openRepo(ctx context.Context) (git.Provider, *jsonfile.CommentStore, string, error) {
	provider := cmd.flags.newGit()
	repo, err := cmd.flags.discover(ctx, provider, cmd.repo)
	if err != nil {
		return nil, nil, "", err
	}
	return provider, cmd.flags.newCommentStore(), repo, nil
}

// workingText returns the working tree text of file, or false when it is
// missing or binary.
func workingText(ctx context.Context, provider git.Provider, repo, file string) (string, bool) {
	fc, err := provider.FileContents(ctx, repo, file, git.TargetUnstaged)
	if err != nil || fc.NewFile.Content == nil || fc.NewFile.IsBinary() {
		return "", false
	}
	return fc.NewFile.Text(), true
}

func (cmd *CommentsCmd) runList(ctx context.Context, c *cli.Command) error {
	provider, store, repo, err := cmd.openRepo(ctx)
	if err != nil {
		return err
	}

	coll, err := store.Load(ctx, repo)
	if err != nil {
		return err
	}

	files := make(map[string]bool)
	for _, cm := range coll.Comments {
		if cmd.file == "" || cm.FilePath == cmd.file {
			files[cm.FilePath] = true
		}
	}
	names := make([]string, 0, len(files))
	for f := range files {
		names = append(names, f)
	}
	sort.Strings(names)

	list := []review.Comment{}
	for _, f := range names {
		comments := coll.ForFile(f)
		if text, ok := workingText(ctx, provider, repo, f); ok {
			if comments, err = store.ForFile(ctx, repo, f, text); err != nil {
				return err
			}
		}
		sort.SliceStable(comments, func(i, j int) bool { return comments[i].LineNumber < comments[j].LineNumber })
		for _, cm := range comments {
			if cmd.open && cm.Resolved {
				continue
			}
			list = append(list, cm)
		}
	}

	if cmd.json {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, review.Collection{Comments: list})
	}
	return writeComments(c.Root().Writer, list)
}

func writeComments(w io.Writer, list []review.Comment) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No comments")
		return err
	}

	for _, cm := range list {
		loc := fmt.Sprintf("%s:%d", cm.FilePath, cm.LineNumber)
		if cm.IsRange() {
			loc = fmt.Sprintf("%s:%d-%d", cm.FilePath, cm.StartLine, cm.LineNumber)
		}

		var tags []string
		if cm.Resolved {
			tags = append(tags, "resolved")
		}
		if cm.Orphaned() {
			tags = append(tags, "outdated")
		}
		tag := ""
		if len(tags) > 0 {
			tag = " [" + strings.Join(tags, ", ") + "]"
		}

		body, _, _ := strings.Cut(cm.Body, "\n")
		if _, err := fmt.Fprintf(w, "%s  %s%s\n    %s\n", cm.ID, loc, tag, body); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *CommentsCmd) runAdd(ctx context.Context, c *cli.Command) error {
	if cmd.file == "" || cmd.line <= 0 || strings.TrimSpace(cmd.body) == "" {
		if !cmd.interactive() {
			return errors.New("--file, --line and --body are required when stdin is not a terminal")
		}
		if err := cmd.runForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if err := git.ValidateRelPath(cmd.file); err != nil {
		return err
	}
	if cmd.line <= 0 {
		return fmt.Errorf("--line must be at least 1, got %d", cmd.line)
	}
	if cmd.start < 0 || cmd.start > cmd.line {
		return fmt.Errorf("--start must be between 1 and --line, got %d", cmd.start)
	}

	provider, store, repo, err := cmd.openRepo(ctx)
	if err != nil {
		return err
	}

	comment := review.NewComment(cmd.file, cmd.line, cmd.start, strings.TrimSpace(cmd.body), now())

	var contents *string
	if text, ok := workingText(ctx, provider, repo, cmd.file); ok {
		contents = &text
	}
	if err := store.Save(ctx, repo, comment, contents); err != nil {
		return fmt.Errorf("save comment: %w", err)
	}

	printer.Ctx(ctx).Success("Comment added", comment.ID)
	return nil
}

// runForm prompts for whatever was not given as a flag.
func (cmd *CommentsCmd) runForm() error {
	line := ""
	if cmd.line > 0 {
		line = strconv.Itoa(cmd.line)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("File").
				Description("Repository-relative path").
				Value(&cmd.file).
				Validate(git.ValidateRelPath),
			huh.NewInput().
				Title("Line").
				Value(&line).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 {
						return errors.New("enter a line number of at least 1")
					}
					return nil
				}),
			huh.NewText().
				Title("Comment").
				Description("Markdown is supported").
				Value(&cmd.body).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("comment cannot be empty")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cmd.line, _ = strconv.Atoi(strings.TrimSpace(line))
	return nil
}

// findComment resolves an id or unique id prefix.
func findComment(coll review.Collection, ref string) (review.Comment, error) {
	if ref == "" {
		return review.Comment{}, errors.New("comment id is required")
	}
	if cm, ok := coll.Find(ref); ok {
		return cm, nil
	}

	var matches []review.Comment
	for _, cm := range coll.Comments {
		if strings.HasPrefix(cm.ID, ref) {
			matches = append(matches, cm)
		}
	}
	switch len(matches) {
	case 0:
		return review.Comment{}, fmt.Errorf("%s: %w", ref, review.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return review.Comment{}, fmt.Errorf("id prefix %q matches %d comments", ref, len(matches))
	}
}

func (cmd *CommentsCmd) runResolve(ctx context.Context, c *cli.Command) error {
	_, store, repo, err := cmd.openRepo(ctx)
	if err != nil {
		return err
	}

	coll, err := store.Load(ctx, repo)
	if err != nil {
		return err
	}
	cm, err := findComment(coll, c.Args().First())
	if err != nil {
		return err
	}

	cm = cm.ToggleResolved(now())
	if err := store.Save(ctx, repo, cm, nil); err != nil {
		return fmt.Errorf("save comment: %w", err)
	}

	state := "reopened"
	if cm.Resolved {
		state = "resolved"
	}
	printer.Ctx(ctx).Success("Comment "+state, cm.ID)
	return nil
}

func (cmd *CommentsCmd) runDelete(ctx context.Context, c *cli.Command) error {
	_, store, repo, err := cmd.openRepo(ctx)
	if err != nil {
		return err
	}

	coll, err := store.Load(ctx, repo)
	if err != nil {
		return err
	}
	cm, err := findComment(coll, c.Args().First())
	if err != nil {
		return err
	}

	found, err := store.Delete(ctx, repo, cm.ID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if !found {
		return fmt.Errorf("%s: %w", cm.ID, review.ErrNotFound)
	}

	printer.Ctx(ctx).Success("Comment deleted", cm.ID)
	return nil
}

func (cmd *CommentsCmd) runImport(ctx context.Context, c *cli.Command) error {
	provider, store, repo, err := cmd.openRepo(ctx)
	if err != nil {
		return err
	}

	input, err := cmd.fr.Read()
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	texts := make(map[string]*string)
	for i, cm := range input.Comments {
		if err := git.ValidateRelPath(cm.FilePath); err != nil {
			return fmt.Errorf("comment %d: %w", i, err)
		}
		if cm.LineNumber < 1 {
			return fmt.Errorf("comment %d: lineNumber must be at least 1", i)
		}
		if cm.ID == "" {
			cm.ID = review.NewID()
		}
		if cm.CreatedAt == 0 {
			cm.CreatedAt = now().Unix()
			cm.UpdatedAt = cm.CreatedAt
		}

		contents, seen := texts[cm.FilePath]
		if !seen {
			if text, ok := workingText(ctx, provider, repo, cm.FilePath); ok {
				contents = &text
			}
			texts[cm.FilePath] = contents
		}

		if err := store.Save(ctx, repo, cm, contents); err != nil {
			return fmt.Errorf("save comment %s: %w", cm.ID, err)
		}
	}

	printer.Ctx(ctx).Successf("Imported %d comment(s)", len(input.Comments))
	return nil
}
