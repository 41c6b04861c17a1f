// Package setup runs the two step configuration of a guild and provisions its ticket channels.
package setup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Jacobbrewer1/ticketeer/pkg/access"
	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/keylock"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
)

const (
	CategoryName          = "🎫・Tickets"
	OpenTicketChannelName = "🎟️・tickets"
	TranscriptChannelName = "📄・transcript"

	// MaxCandidateRoles is the most options a select menu can hold.
	MaxCandidateRoles = 25

	// nameSeparator splits the decorative prefix from the bare channel name.
	nameSeparator = "・"
)

// channelStep is one channel provisioned by the configuration.
type channelStep struct {
	name     string
	kind     platform.ChannelType
	profile  access.Profile
	parented bool
	field    func(g *entities.GuildConfig) *string
}

// steps run in order; the category comes first because the others are created under it.
var steps = []channelStep{
	{
		name:    CategoryName,
		kind:    platform.ChannelTypeCategory,
		profile: access.Category,
		field:   func(g *entities.GuildConfig) *string { return &g.TicketCategoryID },
	},
	{
		name:     OpenTicketChannelName,
		kind:     platform.ChannelTypeText,
		profile:  access.OpenTicketChannel,
		parented: true,
		field:    func(g *entities.GuildConfig) *string { return &g.OpenTicketChannelID },
	},
	{
		name:     TranscriptChannelName,
		kind:     platform.ChannelTypeText,
		profile:  access.TranscriptChannel,
		parented: true,
		field:    func(g *entities.GuildConfig) *string { return &g.TranscriptChannelID },
	},
}

// Flow is the configuration flow of guilds.
type Flow struct {
	l        *slog.Logger
	configs  *dataaccess.ConfigStore
	platform platform.Platform

	// locks serializes the completion of a guild's configuration.
	locks *keylock.KeyLock
}

// NewFlow creates a new configuration flow.
func NewFlow(l *slog.Logger, configs *dataaccess.ConfigStore, p platform.Platform) *Flow {
	return &Flow{
		l:        l.With(slog.String(logging.KeyComponent, "setup")),
		configs:  configs,
		platform: p,
		locks:    keylock.New(),
	}
}

// CandidateRoles are the roles that can be picked as support roles: every role but the everyone role and the
// managed ones, highest first, at most MaxCandidateRoles.
func CandidateRoles(everyoneRoleID string, roles []*platform.Role) []*platform.Role {
	out := make([]*platform.Role, 0, len(roles))
	for _, r := range roles {
		if r.ID == everyoneRoleID || r.Managed {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position > out[j].Position
	})

	if len(out) > MaxCandidateRoles {
		out = out[:MaxCandidateRoles]
	}
	return out
}

// Start is the first step. It creates or replaces the configuration session of the guild and returns the
// roles to choose from. The guild configuration is not touched.
func (f *Flow) Start(ctx context.Context, guildID string, member platform.User, lang entities.Language) ([]*platform.Role, error) {
	roles, err := f.platform.GuildRoles(ctx, guildID)
	if err != nil {
		return nil, apperrors.Platform(fmt.Errorf("error getting guild roles: %w", err))
	}

	session := &entities.ConfigSession{
		GuildID:   guildID,
		Language:  lang.OrDefault(),
		StartedBy: member.ID,
	}
	if err := f.configs.SetSession(ctx, session); err != nil {
		return nil, fmt.Errorf("error starting configuration: %w", err)
	}

	f.l.Info("Configuration started",
		slog.String(logging.KeyGuildID, guildID),
		slog.String(logging.KeyUserID, member.ID),
		slog.String("language", string(session.Language)),
	)

	return CandidateRoles(guildID, roles), nil
}

// CompleteSelection is the second step. It stores the language and the selected support roles, then
// provisions the ticket category, the open ticket channel with its panel and the transcript channel. Every
// provisioned ID is stored as soon as it is known and existing channels are reused, so running it again after
// a failure converges. The session is consumed once everything succeeded. Completions of the same guild run
// one at a time, so a repeated selection finds the channels of the first one.
func (f *Flow) CompleteSelection(ctx context.Context, guildID string, roleIDs []string) (*entities.GuildConfig, error) {
	unlock := f.locks.Lock(keylock.Key("setup", guildID))
	defer unlock()

	session, err := f.configs.GetSession(ctx, guildID)
	if err != nil {
		return nil, err
	}

	roleIDs = entities.NormalizeRoleIDs(roleIDs)
	if len(roleIDs) == 0 || len(roleIDs) > entities.MaxSupportRoles {
		return nil, fmt.Errorf("%d roles selected: %w", len(roleIDs), apperrors.ErrInvalidSelection)
	}
	for _, id := range roleIDs {
		if id == guildID {
			return nil, fmt.Errorf("everyone role selected: %w", apperrors.ErrInvalidSelection)
		}
	}

	cfg, err := f.configs.Update(ctx, guildID, func(g *entities.GuildConfig) error {
		g.Language = session.Language.OrDefault()
		g.SupportRoleIDs = roleIDs
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, step := range steps {
		cfg, err = f.provision(ctx, cfg, step)
		if err != nil {
			return nil, err
		}
	}

	cfg, err = f.ensurePanel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if _, err := f.configs.ConsumeSession(ctx, session); err != nil {
		return nil, fmt.Errorf("error consuming configuration session: %w", err)
	}

	ConfigurationsTotal.Inc()
	f.l.Info("Configuration completed",
		slog.String(logging.KeyGuildID, guildID),
		slog.Any("support_roles", cfg.SupportRoleIDs),
	)

	return cfg, nil
}

func (f *Flow) provision(ctx context.Context, cfg *entities.GuildConfig, step channelStep) (*entities.GuildConfig, error) {
	l := f.l.With(slog.String(logging.KeyGuildID, cfg.ID), slog.String("channel_name", step.name))

	parentID := ""
	if step.parented {
		parentID = cfg.TicketCategoryID
	}
	overwrites := access.Resolve(step.profile, cfg.ID, cfg.SupportRoleIDs, "")

	ch, err := f.find(ctx, cfg, step, parentID)
	if err != nil {
		return nil, err
	}

	if ch != nil {
		// The support roles may have changed since the channel was made.
		if err := f.platform.ApplyOverwrites(ctx, ch.ID, overwrites); err != nil {
			return nil, apperrors.Platform(fmt.Errorf("error updating permissions of %s: %w", step.name, err))
		}
		for _, id := range staleRoles(ch.Overwrites, overwrites) {
			if err := f.platform.DeleteOverwrite(ctx, ch.ID, id); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.Platform(fmt.Errorf("error removing permissions of %s: %w", step.name, err))
			}
			l.Info("Removed role from channel", slog.String(logging.KeyChannelID, ch.ID), slog.String("role_id", id))
		}
		ProvisionedChannels.WithLabelValues("reused").Inc()
		l.Debug("Reusing channel", slog.String(logging.KeyChannelID, ch.ID))
	} else {
		ch, err = f.platform.CreateChannel(ctx, cfg.ID, &platform.ChannelCreate{
			Name:       step.name,
			Type:       step.kind,
			ParentID:   parentID,
			Overwrites: overwrites,
		})
		if err != nil {
			return nil, apperrors.Platform(fmt.Errorf("error creating %s: %w", step.name, err))
		}
		ProvisionedChannels.WithLabelValues("created").Inc()
		l.Info("Created channel", slog.String(logging.KeyChannelID, ch.ID))
	}

	if *step.field(cfg) == ch.ID {
		return cfg, nil
	}
	return f.configs.Update(ctx, cfg.ID, func(g *entities.GuildConfig) error {
		*step.field(g) = ch.ID
		return nil
	})
}

// staleRoles are the roles with an overwrite on a channel that the wanted overwrites no longer name. Member
// overwrites are left alone.
func staleRoles(current, wanted []platform.Overwrite) []string {
	keep := make(map[string]struct{}, len(wanted))
	for _, o := range wanted {
		keep[o.ID] = struct{}{}
	}

	var stale []string
	for _, o := range current {
		if o.Type != platform.OverwriteTypeRole {
			continue
		}
		if _, ok := keep[o.ID]; !ok {
			stale = append(stale, o.ID)
		}
	}
	return stale
}

// find looks for a channel to reuse: the stored one if it still fits, otherwise one with the canonical name.
func (f *Flow) find(ctx context.Context, cfg *entities.GuildConfig, step channelStep, parentID string) (*platform.Channel, error) {
	fits := func(ch *platform.Channel) bool {
		return ch.GuildID == cfg.ID && ch.Type == step.kind && (!step.parented || ch.ParentID == parentID)
	}

	if id := *step.field(cfg); id != "" {
		ch, err := f.platform.Channel(ctx, id)
		switch {
		case err == nil && fits(ch):
			return ch, nil
		case err != nil && !errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.Platform(fmt.Errorf("error getting channel: %w", err))
		}
	}

	channels, err := f.platform.GuildChannels(ctx, cfg.ID)
	if err != nil {
		return nil, apperrors.Platform(fmt.Errorf("error listing guild channels: %w", err))
	}
	for _, ch := range channels {
		if fits(ch) && sameName(ch.Name, step.name) {
			return ch, nil
		}
	}
	return nil, nil
}

// sameName matches a channel name against a canonical one, with or without its decorative prefix.
func sameName(name, canonical string) bool {
	if strings.EqualFold(name, canonical) {
		return true
	}
	_, bare, ok := strings.Cut(canonical, nameSeparator)
	return ok && strings.EqualFold(name, bare)
}

func (f *Flow) ensurePanel(ctx context.Context, cfg *entities.GuildConfig) (*entities.GuildConfig, error) {
	if cfg.PanelMessageID != "" {
		_, err := f.platform.Message(ctx, cfg.OpenTicketChannelID, cfg.PanelMessageID)
		if err == nil {
			return cfg, nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Platform(fmt.Errorf("error getting panel message: %w", err))
		}
	}

	msg, err := f.platform.SendMessage(ctx, cfg.OpenTicketChannelID, PanelMessage(cfg.Language))
	if err != nil {
		return nil, apperrors.Platform(fmt.Errorf("error sending panel message: %w", err))
	}

	return f.configs.Update(ctx, cfg.ID, func(g *entities.GuildConfig) error {
		g.PanelMessageID = msg.ID
		return nil
	})
}

// PanelMessage is the message with the button that opens tickets.
func PanelMessage(lang entities.Language) *platform.MessageSend {
	msgs := messages.For(lang)
	return &platform.MessageSend{
		Embeds: []platform.Embed{{
			Title:       msgs.PanelTitle,
			Description: msgs.PanelDescription,
			Color:       messages.ColorInfo,
			Footer:      msgs.PanelFooter,
		}},
		Buttons: []platform.Button{{
			CustomID: entities.ComponentCreateTicket,
			Label:    msgs.CreateTicketLabel,
			Style:    platform.ButtonPrimary,
		}},
	}
}
