package main

import (
	"github.com/Jacobbrewer1/discordgo"
)

// presenceActivity is shown as "Watching" next to the bot.
const presenceActivity = "✉️ Support Tickets"

// respondDeferred acknowledges an interaction with an ephemeral "thinking" state. The answer follows as a
// follow up message.
func respondDeferred(a IApp, i *discordgo.InteractionCreate) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// presence is the status the bot shows once it is connected.
func presence() discordgo.UpdateStatusData {
	return discordgo.UpdateStatusData{
		Status: string(discordgo.StatusDoNotDisturb),
		Activities: []*discordgo.Activity{{
			Name: presenceActivity,
			Type: discordgo.ActivityTypeWatching,
		}},
	}
}
