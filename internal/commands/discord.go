package commands

import (
	"github.com/bwmarrin/discordgo"

	"github.com/colonyops/forumsync/internal/core/config"
	"github.com/colonyops/forumsync/internal/core/logging"
	"github.com/colonyops/forumsync/internal/gateway/discord"
)

// newSession creates a Discord session from the configured token. The
// websocket is not opened; callers that need gateway events call Open.
func newSession(cfg *config.Config) (*discordgo.Session, error) {
	if err := cfg.RequireDiscord(); err != nil {
		return nil, err
	}
	return discord.NewSession(cfg.Discord.Token)
}

// newGateway wraps a session in a forum gateway. state is nil for one-shot
// commands that never receive gateway events.
func newGateway(cfg *config.Config, s *discordgo.Session, state *discordgo.State) *discord.Gateway {
	return discord.NewWithAPI(s, state, cfg.Discord.GuildID, cfg.Discord.RequestTimeout, logging.Component("discord"))
}
