package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/colonyops/forumsync/internal/core/forum"
)

const buttonsPerRow = 5

var buttonStyles = map[forum.ControlStyle]discordgo.ButtonStyle{
	forum.StylePrimary:   discordgo.PrimaryButton,
	forum.StyleSecondary: discordgo.SecondaryButton,
	forum.StyleSuccess:   discordgo.SuccessButton,
	forum.StyleDanger:    discordgo.DangerButton,
}

// toComponents lays controls out as buttons, five per action row.
func toComponents(controls []forum.Control) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, (len(controls)+buttonsPerRow-1)/buttonsPerRow)

	for start := 0; start < len(controls); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(controls))

		row := discordgo.ActionsRow{}
		for _, c := range controls[start:end] {
			style, ok := buttonStyles[c.Style]
			if !ok {
				style = discordgo.SecondaryButton
			}
			row.Components = append(row.Components, discordgo.Button{
				Label:    c.Label,
				Style:    style,
				CustomID: c.ID,
			})
		}
		rows = append(rows, row)
	}

	return rows
}

// customIDs collects the custom ids of every button in a message.
func customIDs(components []discordgo.MessageComponent) []string {
	var ids []string
	for _, comp := range components {
		switch c := comp.(type) {
		case *discordgo.ActionsRow:
			ids = append(ids, customIDs(c.Components)...)
		case discordgo.ActionsRow:
			ids = append(ids, customIDs(c.Components)...)
		case *discordgo.Button:
			if c.CustomID != "" {
				ids = append(ids, c.CustomID)
			}
		case discordgo.Button:
			if c.CustomID != "" {
				ids = append(ids, c.CustomID)
			}
		}
	}
	return ids
}
