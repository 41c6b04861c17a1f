package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
	"github.com/Jacobbrewer1/ticketeer/pkg/ticketing"
	"github.com/prometheus/client_golang/prometheus"
)

// Configurator runs the configuration of guilds.
type Configurator interface {
	Start(ctx context.Context, guildID string, member platform.User, lang entities.Language) ([]*platform.Role, error)
	CompleteSelection(ctx context.Context, guildID string, roleIDs []string) (*entities.GuildConfig, error)
}

// Tickets opens and closes tickets.
type Tickets interface {
	Create(ctx context.Context, guildID string, author platform.User) (*entities.Ticket, error)
	Close(ctx context.Context, guildID, channelID string, closer platform.User) (*ticketing.Closure, error)
}

// GuildConfigs reads guild configurations.
type GuildConfigs interface {
	Get(ctx context.Context, guildID string) (*entities.GuildConfig, error)
}

// Router dispatches events and turns their outcome into replies.
type Router struct {
	l       *slog.Logger
	setup   Configurator
	tickets Tickets
	configs GuildConfigs
	limiter *Limiter
}

// NewRouter creates a new router. limiter may be nil.
func NewRouter(l *slog.Logger, setup Configurator, tickets Tickets, configs GuildConfigs, limiter *Limiter) *Router {
	return &Router{
		l:       l.With(slog.String(logging.KeyComponent, "router")),
		setup:   setup,
		tickets: tickets,
		configs: configs,
		limiter: limiter,
	}
}

// Route handles ev and returns the reply to send, or nil when there is nothing to answer.
func (r *Router) Route(ctx context.Context, ev Event) *Reply {
	timer := prometheus.NewTimer(EventDuration.WithLabelValues(ev.Name()))
	defer timer.ObserveDuration()

	switch ev := ev.(type) {
	case ConfigCommand:
		return r.configCommand(ctx, ev)
	case RoleSelection:
		return r.roleSelection(ctx, ev)
	case CreateTicketPressed:
		return r.createTicket(ctx, ev)
	case CloseTicketPressed:
		return r.closeTicket(ctx, ev)
	case HelpCommand:
		return r.help(ctx, ev)
	case GuildJoined:
		EventsTotal.WithLabelValues(ev.Name(), "ok").Inc()
		r.l.Info("Guild available",
			slog.String(logging.KeyGuildID, ev.GuildID),
			slog.String("guild_name", ev.GuildName),
		)
		return nil
	default:
		r.l.Error("Unhandled event", slog.String(logging.KeyEvent, fmt.Sprintf("%T", ev)))
		return nil
	}
}

// language is the language of the guild, or the default one when it cannot be read.
func (r *Router) language(ctx context.Context, guildID string) entities.Language {
	if guildID == "" {
		return entities.DefaultLanguage
	}
	cfg, err := r.configs.Get(ctx, guildID)
	if err != nil {
		return entities.DefaultLanguage
	}
	return cfg.Language.OrDefault()
}

func (r *Router) ok(ev Event) {
	EventsTotal.WithLabelValues(ev.Name(), "ok").Inc()
}

func (r *Router) fail(ev Event, guildID string, member platform.User, lang entities.Language, err error) *Reply {
	l := r.l.With(
		slog.String(logging.KeyEvent, ev.Name()),
		slog.String(logging.KeyGuildID, guildID),
		slog.String(logging.KeyUserID, member.ID),
		slog.String(logging.KeyError, err.Error()),
	)

	if apperrors.IsUserFacing(err) {
		EventsTotal.WithLabelValues(ev.Name(), "rejected").Inc()
		l.Info("Event rejected")
	} else {
		EventsTotal.WithLabelValues(ev.Name(), "error").Inc()
		l.Error("Error handling event")
	}

	return ephemeral(messages.For(lang).ForError(err))
}

func (r *Router) guildOnly(ev Event, lang entities.Language) *Reply {
	EventsTotal.WithLabelValues(ev.Name(), "rejected").Inc()
	return ephemeral(messages.For(lang).ErrGuildOnly)
}

func ephemeral(content string) *Reply {
	return &Reply{
		Content:   content,
		Ephemeral: true,
	}
}

func (r *Router) configCommand(ctx context.Context, ev ConfigCommand) *Reply {
	lang := ev.Language.OrDefault()
	if ev.GuildID == "" {
		return r.guildOnly(ev, lang)
	}

	roles, err := r.setup.Start(ctx, ev.GuildID, ev.Member, lang)
	if err != nil {
		return r.fail(ev, ev.GuildID, ev.Member, lang, err)
	}

	msgs := messages.For(lang)
	if len(roles) == 0 {
		EventsTotal.WithLabelValues(ev.Name(), "rejected").Inc()
		return ephemeral(msgs.ErrNoCandidateRoles)
	}

	menu := &RoleMenu{
		CustomID:    entities.ComponentSupportRoles,
		Placeholder: msgs.RolePlaceholder,
		Options:     make([]RoleOption, 0, len(roles)),
		MinValues:   1,
		MaxValues:   min(len(roles), entities.MaxSupportRoles),
	}
	for _, role := range roles {
		menu.Options = append(menu.Options, RoleOption{
			Label:       role.Name,
			Value:       role.ID,
			Description: fmt.Sprintf(msgs.RoleOptionF, role.Name),
		})
	}

	r.ok(ev)
	return &Reply{
		Embeds: []platform.Embed{{
			Title:       msgs.ConfigTitle,
			Description: fmt.Sprintf(msgs.ConfigDescriptionF, msgs.LanguageName),
			Color:       messages.ColorInfo,
		}},
		RoleMenu:  menu,
		Ephemeral: true,
	}
}

func (r *Router) roleSelection(ctx context.Context, ev RoleSelection) *Reply {
	if ev.GuildID == "" {
		return r.guildOnly(ev, entities.DefaultLanguage)
	}

	cfg, err := r.setup.CompleteSelection(ctx, ev.GuildID, ev.RoleIDs)
	if err != nil {
		return r.fail(ev, ev.GuildID, ev.Member, r.language(ctx, ev.GuildID), err)
	}

	msgs := messages.For(cfg.Language)
	r.ok(ev)
	return &Reply{
		Embeds: []platform.Embed{{
			Title: msgs.ConfigDoneTitle,
			Description: fmt.Sprintf(msgs.ConfigDoneF,
				platform.ChannelMention(cfg.OpenTicketChannelID),
				platform.ChannelMention(cfg.TranscriptChannelID),
				msgs.LanguageName,
				platform.RoleMentions(cfg.SupportRoleIDs, msgs.None),
			),
			Color: messages.ColorSuccess,
		}},
		Ephemeral: true,
	}
}

func (r *Router) createTicket(ctx context.Context, ev CreateTicketPressed) *Reply {
	lang := r.language(ctx, ev.GuildID)
	if ev.GuildID == "" {
		return r.guildOnly(ev, lang)
	}

	if !r.limiter.Allow(ev.GuildID, ev.Member.ID) {
		EventsTotal.WithLabelValues(ev.Name(), "throttled").Inc()
		return ephemeral(messages.For(lang).ErrRateLimited)
	}

	ticket, err := r.tickets.Create(ctx, ev.GuildID, ev.Member)
	if err != nil {
		return r.fail(ev, ev.GuildID, ev.Member, lang, err)
	}

	r.ok(ev)
	return ephemeral(fmt.Sprintf(messages.For(lang).TicketCreatedF, platform.ChannelMention(ticket.ChannelID)))
}

func (r *Router) closeTicket(ctx context.Context, ev CloseTicketPressed) *Reply {
	lang := r.language(ctx, ev.GuildID)
	if ev.GuildID == "" {
		return r.guildOnly(ev, lang)
	}

	if _, err := r.tickets.Close(ctx, ev.GuildID, ev.ChannelID, ev.Member); err != nil {
		return r.fail(ev, ev.GuildID, ev.Member, lang, err)
	}

	r.ok(ev)
	return ephemeral(messages.For(lang).TicketClosedReply)
}

func (r *Router) help(ctx context.Context, ev HelpCommand) *Reply {
	msgs := messages.For(r.language(ctx, ev.GuildID))
	r.ok(ev)
	return &Reply{
		Embeds: []platform.Embed{{
			Title:       msgs.HelpTitle,
			Description: msgs.HelpBody,
			Color:       messages.ColorInfo,
		}},
		Ephemeral: true,
	}
}
