package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s, err := NewSession("abc")
	require.NoError(t, err)

	assert.Equal(t, "Bot abc", s.Token)
	assert.Equal(t, discordgo.IntentsGuilds, s.Identify.Intents)
	assert.True(t, s.StateEnabled)
	assert.True(t, s.State.TrackThreads)
}

func TestOnThreadRename(t *testing.T) {
	type rename struct{ id, name string }

	tests := []struct {
		name string
		ev   *discordgo.ThreadUpdate
		want []rename
	}{
		{
			name: "renamed",
			ev: &discordgo.ThreadUpdate{
				Channel:      &discordgo.Channel{ID: "t1", Name: "🔴 New", ParentID: testForum},
				BeforeUpdate: &discordgo.Channel{ID: "t1", Name: "🔴 Old", ParentID: testForum},
			},
			want: []rename{{"t1", "🔴 New"}},
		},
		{
			name: "unchanged name",
			ev: &discordgo.ThreadUpdate{
				Channel:      &discordgo.Channel{ID: "t1", Name: "Same", ParentID: testForum},
				BeforeUpdate: &discordgo.Channel{ID: "t1", Name: "Same", ParentID: testForum},
			},
		},
		{
			name: "unknown previous state",
			ev: &discordgo.ThreadUpdate{
				Channel: &discordgo.Channel{ID: "t1", Name: "Name", ParentID: testForum},
			},
			want: []rename{{"t1", "Name"}},
		},
		{
			name: "other forum",
			ev: &discordgo.ThreadUpdate{
				Channel: &discordgo.Channel{ID: "t1", Name: "Name", ParentID: "other"},
			},
		},
		{
			name: "empty event",
			ev:   &discordgo.ThreadUpdate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []rename
			handler := OnThreadRename(testForum, func(id, name string) {
				got = append(got, rename{id, name})
			})

			handler(nil, tt.ev)
			assert.Equal(t, tt.want, got)
		})
	}
}
