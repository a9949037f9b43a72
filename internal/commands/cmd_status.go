package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tinydiff/internal/core/filetree"
	"github.com/colonyops/tinydiff/internal/core/git"
	"github.com/colonyops/tinydiff/pkg/iojson"
)

type StatusCmd struct {
	flags *Flags

	json bool
}

// NewStatusCmd creates the status command.
func NewStatusCmd(flags *Flags) *StatusCmd {
	return &StatusCmd{flags: flags}
}

// Register adds the status command to the application.
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Print the change tree of a repository",
		UsageText: "tinydiff status [--json] [path]",
		Description: `Prints the staged, unstaged and untracked files of the repository
containing path (the current directory by default) in the same order the
viewer shows them. Paths matching tree.ignore are left out.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print JSON instead of a tree",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

// statusRow is one visible tree row in JSON output.
type statusRow struct {
	Path   string `json:"path"`
	Depth  int    `json:"depth"`
	Dir    bool   `json:"dir"`
	Status string `json:"status,omitempty"`
	Staged bool   `json:"staged,omitempty"`
}

type statusOutput struct {
	Repo   string      `json:"repo"`
	Status git.Status  `json:"status"`
	Rows   []statusRow `json:"rows"`
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	err := cmd.status(ctx, c)
	if err != nil && cmd.json {
		if werr := iojson.WriteErrTo(c.Root().ErrWriter, err); werr != nil {
			return werr
		}
		return cli.Exit("", 1)
	}
	return err
}

func (cmd *StatusCmd) status(ctx context.Context, c *cli.Command) error {
	provider := cmd.flags.newGit()
	repo, err := cmd.flags.discover(ctx, provider, c.Args().First())
	if err != nil {
		return err
	}

	st, err := provider.Status(ctx, repo)
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	st = filetree.FilterStatus(st, cmd.flags.Config.Tree.Ignore)
	rows := filetree.Flatten(filetree.Build(st), filetree.NewSet())

	if cmd.json {
		out := statusOutput{Repo: repo, Status: st, Rows: make([]statusRow, 0, len(rows))}
		for _, r := range rows {
			row := statusRow{Path: r.Node.Path, Depth: r.Depth, Dir: r.Node.IsDir()}
			if rec := r.Node.Record; rec != nil {
				row.Status = rec.Kind.String()
				row.Staged = rec.Staged
			}
			out.Rows = append(out.Rows, row)
		}
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out)
	}

	return writeTree(c.Root().Writer, rows)
}

// writeTree prints rows as an indented listing: a status column ("M", "A+"
// for staged) followed by the name.
func writeTree(w io.Writer, rows []filetree.FlatNode) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No changes")
		return err
	}

	for _, r := range rows {
		indent := strings.Repeat("  ", r.Depth)
		col := "  "
		name := r.Node.Name
		if r.Node.IsDir() {
			name += "/"
		} else {
			col = r.Node.Record.Kind.Letter()
			if r.Node.Staged() {
				col += "+"
			} else {
				col += " "
			}
		}
		if _, err := fmt.Fprintf(w, "%s %s%s\n", col, indent, name); err != nil {
			return err
		}
	}
	return nil
}
