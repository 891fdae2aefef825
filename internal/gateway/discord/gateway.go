// Package discord implements the forum gateway on top of discordgo.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/colonyops/forumsync/internal/core/forum"
)

// threadAutoArchive is the inactivity period, in minutes, after which Discord
// archives a forum thread.
const threadAutoArchive = 10080

// API is the subset of *discordgo.Session the gateway uses.
type API interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ForumThreadStartComplex(channelID string, threadData *discordgo.ThreadStart, messageData *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildThreadsActive(guildID string, options ...discordgo.RequestOption) (*discordgo.ThreadsList, error)
}

var _ API = (*discordgo.Session)(nil)

// Gateway implements forum.ThreadGateway and forum.ParentChecker for a single
// guild. Every REST call is bounded by the configured request timeout.
type Gateway struct {
	api     API
	state   *discordgo.State
	guildID string
	timeout time.Duration
	log     zerolog.Logger
}

var (
	_ forum.ThreadGateway = (*Gateway)(nil)
	_ forum.ParentChecker = (*Gateway)(nil)
)

// NewWithAPI creates a gateway from explicit collaborators. state may be nil,
// in which case the cached listing is always empty.
func NewWithAPI(api API, state *discordgo.State, guildID string, timeout time.Duration, log zerolog.Logger) *Gateway {
	return &Gateway{
		api:     api,
		state:   state,
		guildID: guildID,
		timeout: timeout,
		log:     log.With().Str("component", "discord-gateway").Logger(),
	}
}

// call runs fn with a request option carrying a context bounded by the
// gateway timeout.
func (g *Gateway) call(ctx context.Context, fn func(opt discordgo.RequestOption) error) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return fn(discordgo.WithContext(ctx))
}

// CheckParent verifies parentID is a forum channel.
func (g *Gateway) CheckParent(ctx context.Context, parentID string) error {
	var ch *discordgo.Channel
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		var err error
		ch, err = g.api.Channel(parentID, opt)
		return err
	})
	if err != nil {
		return classify("fetch forum channel "+parentID, err)
	}
	if ch.Type != discordgo.ChannelTypeGuildForum {
		return fmt.Errorf("channel %s (%s): %w", parentID, ch.Name, forum.ErrNotForum)
	}
	return nil
}

// ListCachedThreads returns the unarchived threads of parentID held in the
// session state.
func (g *Gateway) ListCachedThreads(_ context.Context, parentID string) ([]forum.RemoteThread, error) {
	if g.state == nil {
		return nil, nil
	}

	guild, err := g.state.Guild(g.guildID)
	if err != nil {
		return nil, fmt.Errorf("guild %s not in state cache: %w", g.guildID, err)
	}

	g.state.RLock()
	defer g.state.RUnlock()

	var threads []forum.RemoteThread
	for _, ch := range guild.Threads {
		if ch.ParentID != parentID {
			continue
		}
		th := toRemote(ch)
		if th.Archived {
			continue
		}
		threads = append(threads, th)
	}
	return threads, nil
}

// ListActiveThreads fetches every active thread of the guild. Callers filter by
// parent.
func (g *Gateway) ListActiveThreads(ctx context.Context, _ string) ([]forum.RemoteThread, error) {
	var list *discordgo.ThreadsList
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		var err error
		list, err = g.api.GuildThreadsActive(g.guildID, opt)
		return err
	})
	if err != nil {
		return nil, classify("list active threads", err)
	}

	threads := make([]forum.RemoteThread, 0, len(list.Threads))
	for _, ch := range list.Threads {
		threads = append(threads, toRemote(ch))
	}

	g.log.Debug().Ctx(ctx).Int("threads", len(threads)).Msg("listed active threads")
	return threads, nil
}

// FetchThread fetches a single thread by id.
func (g *Gateway) FetchThread(ctx context.Context, id string) (forum.RemoteThread, error) {
	var ch *discordgo.Channel
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		var err error
		ch, err = g.api.Channel(id, opt)
		return err
	})
	if err != nil {
		return forum.RemoteThread{}, classify("fetch thread "+id, err)
	}
	if !ch.IsThread() {
		return forum.RemoteThread{}, fmt.Errorf("channel %s is not a thread: %w", id, forum.ErrNotFound)
	}
	return toRemote(ch), nil
}

// CreateThread opens a forum post whose starter message carries the content
// and controls.
func (g *Gateway) CreateThread(ctx context.Context, parentID, name, content string, controls []forum.Control) (forum.RemoteThread, error) {
	var ch *discordgo.Channel
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		var err error
		ch, err = g.api.ForumThreadStartComplex(parentID,
			&discordgo.ThreadStart{Name: name, AutoArchiveDuration: threadAutoArchive},
			&discordgo.MessageSend{Content: content, Components: toComponents(controls)},
			opt,
		)
		return err
	})
	if err != nil {
		return forum.RemoteThread{}, classify("create thread "+name, err)
	}

	th := toRemote(ch)
	if th.ParentID == "" {
		th.ParentID = parentID
	}
	return th, nil
}

// RenameThread changes a thread's title.
func (g *Gateway) RenameThread(ctx context.Context, id, name string) error {
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		_, err := g.api.ChannelEdit(id, &discordgo.ChannelEdit{Name: name}, opt)
		return err
	})
	return classify("rename thread "+id, err)
}

// DeleteThread deletes a thread.
func (g *Gateway) DeleteThread(ctx context.Context, id string) error {
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		_, err := g.api.ChannelDelete(id, opt)
		return err
	})
	return classify("delete thread "+id, err)
}

// ArchiveAndLock archives and locks a thread in a single edit.
func (g *Gateway) ArchiveAndLock(ctx context.Context, id string) error {
	yes := true
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		_, err := g.api.ChannelEdit(id, &discordgo.ChannelEdit{Archived: &yes, Locked: &yes}, opt)
		return err
	})
	return classify("archive thread "+id, err)
}

// FetchStarterMessage returns the first message of a forum thread, which
// shares the thread's id.
func (g *Gateway) FetchStarterMessage(ctx context.Context, threadID string) (forum.StarterMessage, error) {
	var msg *discordgo.Message
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		var err error
		msg, err = g.api.ChannelMessage(threadID, threadID, opt)
		return err
	})
	if err != nil {
		return forum.StarterMessage{}, classify("fetch starter message of "+threadID, err)
	}

	return forum.StarterMessage{
		Content:    msg.Content,
		ControlIDs: customIDs(msg.Components),
	}, nil
}

// EditStarterMessage replaces the starter message body and controls.
func (g *Gateway) EditStarterMessage(ctx context.Context, threadID, content string, controls []forum.Control) error {
	components := toComponents(controls)
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		_, err := g.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         threadID,
			Channel:    threadID,
			Content:    &content,
			Components: &components,
		}, opt)
		return err
	})
	return classify("edit starter message of "+threadID, err)
}

// PostMessage sends a new message into a thread.
func (g *Gateway) PostMessage(ctx context.Context, threadID, content string, controls []forum.Control) error {
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		_, err := g.api.ChannelMessageSendComplex(threadID, &discordgo.MessageSend{
			Content:    content,
			Components: toComponents(controls),
		}, opt)
		return err
	})
	return classify("post to thread "+threadID, err)
}

func toRemote(ch *discordgo.Channel) forum.RemoteThread {
	th := forum.RemoteThread{
		ID:       ch.ID,
		Name:     ch.Name,
		ParentID: ch.ParentID,
	}
	if ch.ThreadMetadata != nil {
		th.Archived = ch.ThreadMetadata.Archived
		th.Locked = ch.ThreadMetadata.Locked
	}
	return th
}
