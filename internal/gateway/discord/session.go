package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates a bot session that tracks guilds and their threads in
// its state cache.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds
	s.StateEnabled = true
	s.State.TrackChannels = true
	s.State.TrackThreads = true
	return s, nil
}

// RenameFunc is called when a thread under the watched forum is renamed.
type RenameFunc func(threadID, name string)

// OnThreadRename returns a ThreadUpdate handler that calls fn for renames of
// threads under parentID. Updates that leave the name unchanged are ignored.
// When the previous state is unknown every update is forwarded.
func OnThreadRename(parentID string, fn RenameFunc) func(*discordgo.Session, *discordgo.ThreadUpdate) {
	return func(_ *discordgo.Session, ev *discordgo.ThreadUpdate) {
		if ev == nil || ev.Channel == nil || ev.ParentID != parentID {
			return
		}
		if ev.BeforeUpdate != nil && ev.BeforeUpdate.Name == ev.Name {
			return
		}
		fn(ev.ID, ev.Name)
	}
}
