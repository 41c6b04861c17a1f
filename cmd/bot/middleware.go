package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/events"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/request"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// interactionTimeout bounds the handling of one interaction.
const interactionTimeout = time.Minute

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(a IApp, handler Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
				request.InternalServerErrorHandler(a.Log(), cw)
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path
			}
		} else {
			path = r.URL.Path
		}

		defer func() {
			// The status code is only known once the handler has returned.
			code := strconv.Itoa(cw.StatusCode())
			HttpTotalRequests.WithLabelValues(path, r.Method, code).Inc()
			HttpRequestDuration.WithLabelValues(path, r.Method, code).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// eventRouter turns events into replies.
type eventRouter interface {
	Route(ctx context.Context, ev events.Event) *events.Reply
}

// interactionHandler translates interactions into events, routes them and sends the reply. The interaction is
// acknowledged first so that slow platform calls do not expire it.
func interactionHandler(a IApp, router eventRouter) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		ev, ok := toEvent(i)
		if !ok {
			a.Log().Debug("Ignoring interaction")
			return
		}

		l := a.Log().With(
			slog.String(logging.KeyEvent, ev.Name()),
			slog.String(logging.KeyGuildID, i.GuildID),
			slog.String(logging.KeyChannelID, i.ChannelID),
		)

		defer func() {
			if rec := recover(); rec != nil {
				l.Error("Panic handling interaction",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		t := prometheus.NewTimer(DiscordCommandDuration.WithLabelValues(ev.Name()))
		defer t.ObserveDuration()

		if err := respondDeferred(a, i); err != nil {
			l.Error("Error acknowledging interaction", slog.String(logging.KeyError, err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(a.Context(), interactionTimeout)
		defer cancel()

		reply := router.Route(ctx, ev)
		if reply == nil {
			reply = &events.Reply{Content: "✅", Ephemeral: true}
		}

		if _, err := a.Session().FollowupMessageCreate(i.Interaction, true, renderReply(reply)); err != nil {
			l.Error("Error sending reply", slog.String(logging.KeyError, err.Error()))
		}
	}
}

// interactionUser is the member behind an interaction, or the user in direct messages.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// toEvent maps an interaction to the event it stands for.
func toEvent(i *discordgo.InteractionCreate) (events.Event, bool) {
	if i == nil || i.Interaction == nil {
		return nil, false
	}
	member := toUser(interactionUser(i))

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case cmdConfig:
			lang := entities.DefaultLanguage
			for _, opt := range data.Options {
				if opt.Name != optLang {
					continue
				}
				v, _ := opt.Value.(string)
				if parsed, err := entities.ParseLanguage(v); err == nil {
					lang = parsed
				}
			}
			return events.ConfigCommand{GuildID: i.GuildID, Member: member, Language: lang}, true
		case cmdHelp:
			return events.HelpCommand{GuildID: i.GuildID, Member: member}, true
		}
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		switch data.CustomID {
		case entities.ComponentSupportRoles:
			return events.RoleSelection{GuildID: i.GuildID, Member: member, RoleIDs: data.Values}, true
		case entities.ComponentCreateTicket:
			return events.CreateTicketPressed{GuildID: i.GuildID, Member: member}, true
		case entities.ComponentCloseTicket:
			return events.CloseTicketPressed{GuildID: i.GuildID, ChannelID: i.ChannelID, Member: member}, true
		}
	}
	return nil, false
}

// renderReply builds the follow up message of a reply.
func renderReply(r *events.Reply) *discordgo.WebhookParams {
	params := &discordgo.WebhookParams{
		Content: r.Content,
		Embeds:  fromEmbeds(r.Embeds),
		// Replies never ping anyone.
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if r.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}

	if m := r.RoleMenu; m != nil {
		minValues := m.MinValues
		menu := discordgo.SelectMenu{
			CustomID:    m.CustomID,
			Placeholder: m.Placeholder,
			MinValues:   &minValues,
			MaxValues:   m.MaxValues,
			Options:     make([]discordgo.SelectMenuOption, 0, len(m.Options)),
		}
		for _, o := range m.Options {
			menu.Options = append(menu.Options, discordgo.SelectMenuOption{
				Label:       o.Label,
				Value:       o.Value,
				Description: o.Description,
			})
		}
		params.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}},
		}
	}
	return params
}
