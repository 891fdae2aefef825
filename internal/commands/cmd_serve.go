package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/forumsync/internal/core/logging"
	"github.com/colonyops/forumsync/internal/forumsync"
	"github.com/colonyops/forumsync/internal/forumsync/sweep"
	"github.com/colonyops/forumsync/internal/gateway/discord"
)

type ServeCmd struct {
	flags *Flags
	app   *forumsync.App
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *forumsync.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Connect to Discord and reconcile on an interval",
		UsageText: "forumsync serve",
		Description: `Connects to the Discord gateway, then runs a reconciliation pass every
sync.interval until interrupted.

Renaming a linked thread in Discord renames the task.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.app.Config

	s, err := newSession(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	links := cmd.app.Links(logging.Component("links"))
	s.AddHandler(discord.OnThreadRename(cfg.Discord.ForumChannelID, func(threadID, name string) {
		if err := links.HandleThreadRename(ctx, threadID, name); err != nil {
			log.Error().Err(err).Str("thread_id", threadID).Msg("apply thread rename")
		}
	}))
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("connected to discord")
	})

	if err := s.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("close discord session")
		}
	}()

	cmd.logRestoredControls(ctx)

	gw := newGateway(cfg, s, s.State)
	reconciler := cmd.app.Reconciler(gw, logging.Component("reconciler"))

	log.Info().
		Str("forum_channel_id", cfg.Discord.ForumChannelID).
		Dur("interval", cfg.Sync.Interval).
		Msg("sweeping forum")

	sweep.Start(ctx, reconciler, sweep.Options{
		Interval:   cfg.Sync.Interval,
		RunOnStart: cfg.Sync.RunOnStart,
	})

	log.Info().Msg("shutting down")
	return nil
}

// logRestoredControls reports the control sets persisted by earlier passes.
func (cmd *ServeCmd) logRestoredControls(ctx context.Context) {
	all, err := cmd.app.Controls.All(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not load registered controls")
		return
	}

	n := 0
	for _, controls := range all {
		n += len(controls)
	}
	log.Info().Int("tasks", len(all)).Int("controls", n).Msg("restored thread controls")
}
