package main

import (
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/events"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

func (a *App) guildJoinedHandler() func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		if g.Guild == nil || g.Unavailable {
			return
		}

		// Increment the total number of guilds.
		TotalDiscordGuilds.Inc()

		a.router.Route(a.Context(), events.GuildJoined{GuildID: g.ID, GuildName: g.Name})

		// Guilds joined after startup do not have the commands yet.
		if err := a.registerGuildCommands(g.ID); err != nil {
			a.Error("Error registering slash commands",
				slog.String(logging.KeyGuildID, g.ID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}

func (a *App) guildLeaveHandler() func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		if g.Guild == nil || g.Unavailable {
			return
		}

		a.Info("Left guild", slog.String(logging.KeyGuildID, g.ID))

		// Decrement the total number of guilds.
		TotalDiscordGuilds.Dec()

		a.forgetGuildCommands(g.ID)
	}
}
