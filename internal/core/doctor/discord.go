package doctor

import (
	"context"

	"github.com/colonyops/forumsync/internal/core/config"
	"github.com/colonyops/forumsync/internal/core/forum"
)

// DiscordCheck verifies the Discord settings and, when a checker is given,
// that the configured forum channel accepts threads.
type DiscordCheck struct {
	cfg     *config.Config
	checker forum.ParentChecker
}

// NewDiscordCheck creates a new Discord check. checker may be nil when no
// session could be created.
func NewDiscordCheck(cfg *config.Config, checker forum.ParentChecker) *DiscordCheck {
	return &DiscordCheck{cfg: cfg, checker: checker}
}

func (c *DiscordCheck) Name() string {
	return "Discord"
}

func (c *DiscordCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.cfg.Discord.Token == "" {
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusFail,
			Detail: config.TokenEnv + " is not set",
		})
	} else {
		result.Items = append(result.Items, CheckItem{Label: "token", Status: StatusPass})
	}

	if c.cfg.Discord.GuildID == "" {
		result.Items = append(result.Items, CheckItem{
			Label:  "guild",
			Status: StatusFail,
			Detail: "discord.guild_id is not set",
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "guild",
			Status: StatusPass,
			Detail: c.cfg.Discord.GuildID,
		})
	}

	forumID := c.cfg.Discord.ForumChannelID
	switch {
	case forumID == "":
		result.Items = append(result.Items, CheckItem{
			Label:  "forum channel",
			Status: StatusWarn,
			Detail: "discord.forum_channel_id is not set; sync does nothing",
		})
	case c.checker == nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "forum channel",
			Status: StatusWarn,
			Detail: forumID + " (not verified)",
		})
	default:
		if err := c.checker.CheckParent(ctx, forumID); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  "forum channel",
				Status: StatusFail,
				Detail: err.Error(),
			})
		} else {
			result.Items = append(result.Items, CheckItem{
				Label:  "forum channel",
				Status: StatusPass,
				Detail: forumID,
			})
		}
	}

	return result
}
