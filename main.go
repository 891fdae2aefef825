package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime/debug"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/forumsync/internal/commands"
	"github.com/colonyops/forumsync/internal/core/config"
	"github.com/colonyops/forumsync/internal/core/logging"
	"github.com/colonyops/forumsync/internal/core/styles"
	"github.com/colonyops/forumsync/internal/data/db"
	"github.com/colonyops/forumsync/internal/data/stores"
	"github.com/colonyops/forumsync/internal/forumsync"
	"github.com/colonyops/forumsync/pkg/logutils"
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

	var (
		logCloser func()
		fsApp     = &forumsync.App{}
		database  *db.DB
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "forumsync",
		Usage:     "Mirror a task list into a Discord forum channel",
		UsageText: "forumsync [global options] command [command options]",
		Description: `forumsync keeps one Discord forum thread per open task. Each sync pass
creates threads for new tasks, renames and edits threads whose task changed,
and removes threads for completed or deleted tasks.

Run 'forumsync sync' for a single pass or 'forumsync serve' to stay connected
and sweep on an interval. The bot token is read from FORUMSYNC_DISCORD_TOKEN
(a .env file in the working directory is loaded first).`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("FORUMSYNC_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log format (json, console)",
				Sources:     cli.EnvVars("FORUMSYNC_LOG_FORMAT"),
				Value:       logutils.FormatJSON,
				Destination: &flags.LogFormat,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stdout)",
				Sources:     cli.EnvVars("FORUMSYNC_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("FORUMSYNC_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("FORUMSYNC_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return ctx, fmt.Errorf("load .env: %w", err)
			}

			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFormat, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Validation ensures the theme exists
			palette, _ := styles.GetPalette(cfg.Theme)
			styles.SetTheme(palette)

			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}

			database, err = db.Open(cfg.DataDir, cfg.OpenOptions())
			if err != nil && stores.IsCorruptionError(err) {
				log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("database is corrupt, moving it aside")
				if recoverErr := stores.RecoverFromCorruption(cfg.DataDir); recoverErr != nil {
					return ctx, fmt.Errorf("recover database: %w", recoverErr)
				}
				database, err = db.Open(cfg.DataDir, cfg.OpenOptions())
			}
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*fsApp = *forumsync.NewApp(cfg, database)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewSyncCmd(flags, fsApp).Register(app)
	app = commands.NewServeCmd(flags, fsApp).Register(app)
	app = commands.NewTaskCmd(flags, fsApp).Register(app)
	app = commands.NewMappingsCmd(flags, fsApp).Register(app)
	app = commands.NewBackfillCmd(flags, fsApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags, fsApp).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
