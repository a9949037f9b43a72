package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tinydiff/internal/commands"
	"github.com/colonyops/tinydiff/internal/core/config"
	"github.com/colonyops/tinydiff/internal/core/kv"
	"github.com/colonyops/tinydiff/internal/core/logging"
	"github.com/colonyops/tinydiff/internal/core/styles"
	"github.com/colonyops/tinydiff/internal/printer"
	"github.com/colonyops/tinydiff/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "tinydiff",
		Usage:     "Review git changes and leave line comments",
		UsageText: "tinydiff [global options] [old new] | command [command options]",
		Description: `tinydiff shows the staged, unstaged and untracked changes of a repository
as a file tree next to a split or unified diff, and keeps review comments
anchored to the lines they were written on.

Run 'tinydiff' inside a repository to review its changes.
Run 'tinydiff <old> <new>' to compare two files.
Run 'tinydiff comments list' to print the review comments.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TINYDIFF_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/tinydiff.log)",
				Sources:     cli.EnvVars("TINYDIFF_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TINYDIFF_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TINYDIFF_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.BoolFlag{
				Name:        "no-persist",
				Usage:       "keep view preferences in memory only",
				Sources:     cli.EnvVars("TINYDIFF_NO_PERSIST"),
				Destination: &flags.NoPersist,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/tinydiff.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "tinydiff.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logging.Install(logger)
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			styles.SetTheme(styles.Resolve(cfg.TUI.Theme))

			// Preferences are best effort; fall back to memory when the
			// database cannot be opened.
			defaultStyle := kv.DiffStyle(cfg.Diff.Style)
			flags.Settings = kv.NewSettings(flags.SettingsOpener(), defaultStyle)
			if err := flags.Settings.Open(ctx); err != nil {
				log.Warn().Err(err).Msg("settings unavailable, using memory")
				flags.Settings = kv.NewSettings(kv.MemoryOpener(), defaultStyle)
				if err := flags.Settings.Open(ctx); err != nil {
					return ctx, err
				}
			}

			return printer.WithPrinter(ctx, printer.New(c.Root().ErrWriter)), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if flags.Settings != nil {
				if err := flags.Settings.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close settings")
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	viewCmd := commands.NewViewCmd(flags)

	app = commands.NewStatusCmd(flags).Register(app)
	app = commands.NewCommentsCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Register viewer flags on root command
	app.Flags = append(app.Flags, viewCmd.Flags()...)

	// The viewer is the default action; its arguments are the two files to compare.
	app.Action = viewCmd.Run

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
