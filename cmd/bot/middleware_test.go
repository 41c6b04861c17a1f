package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/events"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	l *slog.Logger
}

func (a *testApp) Log() *slog.Logger { return a.l }

func (a *testApp) Session() *discordgo.Session { return nil }

func (a *testApp) Context() context.Context { return context.Background() }

func newTestApp(t *testing.T) *testApp {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`).WithOutput(io.Discard))
	require.NoError(t, err)
	return &testApp{l: l}
}

func guildInteraction(typ discordgo.InteractionType, data discordgo.InteractionData) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      typ,
			GuildID:   "G",
			ChannelID: "C",
			Member:    &discordgo.Member{User: &discordgo.User{ID: "U", Username: "alice"}},
			Data:      data,
		},
	}
}

func TestToEvent(t *testing.T) {
	member := platform.User{ID: "U", Username: "alice", Tag: (&discordgo.User{ID: "U", Username: "alice"}).String()}

	tests := []struct {
		name   string
		i      *discordgo.InteractionCreate
		want   events.Event
		wantOk bool
	}{
		{
			name: "config with language",
			i: guildInteraction(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{
				Name: cmdConfig,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: optLang, Type: discordgo.ApplicationCommandOptionString, Value: "en"},
				},
			}),
			want:   events.ConfigCommand{GuildID: "G", Member: member, Language: entities.LanguageEnglish},
			wantOk: true,
		},
		{
			name: "config with unknown language",
			i: guildInteraction(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{
				Name: cmdConfig,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: optLang, Type: discordgo.ApplicationCommandOptionString, Value: "de"},
				},
			}),
			want:   events.ConfigCommand{GuildID: "G", Member: member, Language: entities.DefaultLanguage},
			wantOk: true,
		},
		{
			name:   "help",
			i:      guildInteraction(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{Name: cmdHelp}),
			want:   events.HelpCommand{GuildID: "G", Member: member},
			wantOk: true,
		},
		{
			name: "role selection",
			i: guildInteraction(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{
				CustomID: entities.ComponentSupportRoles,
				Values:   []string{"R1", "R2"},
			}),
			want:   events.RoleSelection{GuildID: "G", Member: member, RoleIDs: []string{"R1", "R2"}},
			wantOk: true,
		},
		{
			name:   "create ticket",
			i:      guildInteraction(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{CustomID: entities.ComponentCreateTicket}),
			want:   events.CreateTicketPressed{GuildID: "G", Member: member},
			wantOk: true,
		},
		{
			name:   "close ticket",
			i:      guildInteraction(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{CustomID: entities.ComponentCloseTicket}),
			want:   events.CloseTicketPressed{GuildID: "G", ChannelID: "C", Member: member},
			wantOk: true,
		},
		{
			name: "unknown button",
			i:    guildInteraction(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{CustomID: "claim_ticket"}),
		},
		{
			name: "unknown command",
			i:    guildInteraction(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{Name: "setup"}),
		},
		{
			name: "nil",
			i:    &discordgo.InteractionCreate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toEvent(tt.i)
			require.Equal(t, tt.wantOk, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestToEvent_DirectMessage(t *testing.T) {
	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			User: &discordgo.User{ID: "U", Username: "alice"},
			Data: discordgo.ApplicationCommandInteractionData{Name: cmdHelp},
		},
	}

	got, ok := toEvent(i)
	require.True(t, ok)
	help, ok := got.(events.HelpCommand)
	require.True(t, ok)
	require.Empty(t, help.GuildID)
	require.Equal(t, "U", help.Member.ID)
}

func TestRenderReply(t *testing.T) {
	params := renderReply(&events.Reply{
		Content: "hi",
		Embeds:  []platform.Embed{{Title: "t"}},
		RoleMenu: &events.RoleMenu{
			CustomID:    entities.ComponentSupportRoles,
			Placeholder: "pick",
			Options:     []events.RoleOption{{Label: "Mods", Value: "R1", Description: "Mods"}},
			MinValues:   1,
			MaxValues:   1,
		},
		Ephemeral: true,
	})

	require.Equal(t, "hi", params.Content)
	require.Equal(t, discordgo.MessageFlagsEphemeral, params.Flags)
	require.Len(t, params.Embeds, 1)
	require.Empty(t, params.AllowedMentions.Parse)

	require.Len(t, params.Components, 1)
	row, ok := params.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	menu, ok := row.Components[0].(discordgo.SelectMenu)
	require.True(t, ok)
	require.Equal(t, entities.ComponentSupportRoles, menu.CustomID)
	require.Equal(t, 1, *menu.MinValues)
	require.Equal(t, 1, menu.MaxValues)
	require.Equal(t, "R1", menu.Options[0].Value)
}

func TestRenderReply_Public(t *testing.T) {
	params := renderReply(&events.Reply{Content: "hi"})
	require.Zero(t, params.Flags)
	require.Nil(t, params.Components)
}

func TestMiddlewareHttp(t *testing.T) {
	a := newTestApp(t)

	t.Run("status recorded", func(t *testing.T) {
		h := middlewareHttp(a, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("panic recovered", func(t *testing.T) {
		h := middlewareHttp(a, func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})
		rec := httptest.NewRecorder()
		require.NotPanics(t, func() {
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		})
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.JSONEq(t, `{"Message":"internal server error"}`, rec.Body.String())
	})
}
