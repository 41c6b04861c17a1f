// Package ticketing opens and closes tickets.
package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/access"
	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/keylock"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
	"github.com/Jacobbrewer1/ticketeer/pkg/transcript"
	"golang.org/x/sync/errgroup"
)

// DefaultGraceDelay is how long a closed ticket channel stays up so the reply to the closer can render.
const DefaultGraceDelay = 3 * time.Second

// Manager is the lifecycle of tickets. A member has at most one open ticket per guild.
type Manager struct {
	l        *slog.Logger
	configs  *dataaccess.ConfigStore
	tickets  dataaccess.TicketDal
	archiver *transcript.Archiver
	platform platform.Platform

	// locks serializes creations per guild and author, and closures per channel.
	locks *keylock.KeyLock

	// pending tracks channel deletions waiting for their grace delay.
	pending sync.WaitGroup

	graceDelay time.Duration
	fetchLimit int
	now        func() time.Time
}

type Option func(m *Manager)

// WithGraceDelay sets the delay between closing a ticket and deleting its channel.
func WithGraceDelay(d time.Duration) Option {
	return func(m *Manager) {
		m.graceDelay = d
	}
}

// WithFetchLimit sets how many of the most recent messages a transcript holds.
func WithFetchLimit(limit int) Option {
	return func(m *Manager) {
		m.fetchLimit = limit
	}
}

// WithClock replaces the clock used to stamp tickets.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new ticket manager.
func NewManager(l *slog.Logger, configs *dataaccess.ConfigStore, tickets dataaccess.TicketDal, archiver *transcript.Archiver, p platform.Platform, opts ...Option) *Manager {
	m := &Manager{
		l:          l.With(slog.String(logging.KeyComponent, "ticketing")),
		configs:    configs,
		tickets:    tickets,
		archiver:   archiver,
		platform:   p,
		locks:      keylock.New(),
		graceDelay: DefaultGraceDelay,
		fetchLimit: transcript.MaxFetchLimit,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Closure is the outcome of closing a ticket.
type Closure struct {
	Ticket     *entities.Ticket
	Transcript *entities.TranscriptRecord

	// Deleted receives the result of deleting the channel once the grace delay passed, then is closed.
	Deleted <-chan error
}

func (m *Manager) configured(ctx context.Context, guildID string) (*entities.GuildConfig, error) {
	cfg, err := m.configs.Get(ctx, guildID)
	if errors.Is(err, apperrors.ErrNotFound) || (err == nil && !cfg.Configured()) {
		return nil, fmt.Errorf("guild %s: %w", guildID, apperrors.ErrGuildNotConfigured)
	} else if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (m *Manager) guild(ctx context.Context, guildID string) *platform.Guild {
	g, err := m.platform.Guild(ctx, guildID)
	if err != nil {
		m.l.Warn("Error getting guild",
			slog.String(logging.KeyGuildID, guildID),
			slog.String(logging.KeyError, err.Error()),
		)
		return &platform.Guild{ID: guildID}
	}
	return g
}

// Create opens a ticket for the author. The guild has to be configured and the author must not have an open
// ticket already.
func (m *Manager) Create(ctx context.Context, guildID string, author platform.User) (*entities.Ticket, error) {
	l := m.l.With(slog.String(logging.KeyGuildID, guildID), slog.String(logging.KeyUserID, author.ID))

	cfg, err := m.configured(ctx, guildID)
	if err != nil {
		return nil, err
	}

	unlock := m.locks.Lock(keylock.Key("ticket", guildID, author.ID))
	defer unlock()

	existing, err := m.openTicket(ctx, l, guildID, author.ID)
	if err != nil {
		return nil, err
	} else if existing != nil {
		DuplicateTickets.Inc()
		return nil, fmt.Errorf("open ticket in %s: %w", existing.ChannelID, apperrors.ErrDuplicateTicket)
	}

	ch, err := m.platform.CreateChannel(ctx, guildID, &platform.ChannelCreate{
		Name:       entities.TicketChannelName(author.Username),
		Type:       platform.ChannelTypeText,
		Topic:      entities.TopicMarker(author.ID),
		ParentID:   cfg.TicketCategoryID,
		Overwrites: access.Resolve(access.TicketChannel, guildID, cfg.SupportRoleIDs, author.ID),
	})
	if err != nil {
		return nil, apperrors.Platform(fmt.Errorf("error creating ticket channel: %w", err))
	}

	ticket := &entities.Ticket{
		ChannelID:      ch.ID,
		ChannelName:    ch.Name,
		GuildID:        guildID,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		PingedRoleIDs:  append([]string(nil), cfg.SupportRoleIDs...),
		State:          entities.TicketStateOpen,
		CreatedAt:      custom.Datetime(m.now()),
	}

	if err := m.tickets.SaveTicket(ctx, ticket); err != nil {
		// An unindexed channel would let the author open a second ticket.
		if derr := m.platform.DeleteChannel(ctx, ch.ID); derr != nil {
			l.Error("Error removing unindexed ticket channel",
				slog.String(logging.KeyChannelID, ch.ID),
				slog.String(logging.KeyError, derr.Error()),
			)
		}
		return nil, apperrors.Storage(fmt.Errorf("error saving ticket: %w", err))
	}

	TicketsCreated.Inc()
	l = l.With(slog.String(logging.KeyChannelID, ch.ID))
	l.Info("Ticket created")

	guild := m.guild(ctx, guildID)

	var g errgroup.Group
	g.Go(func() error {
		if _, err := m.archiver.EmitCreationLog(ctx, cfg, guild, ticket, author); err != nil {
			CreationLogFailures.Inc()
			l.Error("Error writing creation log", slog.String(logging.KeyError, err.Error()))
		}
		return nil
	})
	g.Go(func() error {
		if _, err := m.platform.SendMessage(ctx, ch.ID, OpeningMessage(cfg, author)); err != nil {
			l.Error("Error sending opening message", slog.String(logging.KeyError, err.Error()))
		}
		return nil
	})
	_ = g.Wait()

	return ticket, nil
}

// openTicket returns the open ticket of the author, or nil. A ticket whose channel is gone is closed on the way.
func (m *Manager) openTicket(ctx context.Context, l *slog.Logger, guildID, authorID string) (*entities.Ticket, error) {
	t, err := m.tickets.GetOpenTicket(ctx, guildID, authorID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting open ticket: %w", err)
	}

	_, err = m.platform.Channel(ctx, t.ChannelID)
	switch {
	case err == nil:
		return t, nil
	case errors.Is(err, apperrors.ErrNotFound):
		t.State = entities.TicketStateClosed
		t.ClosedAt = custom.Datetime(m.now())
		if err := m.tickets.SaveTicket(ctx, t); err != nil {
			return nil, apperrors.Storage(fmt.Errorf("error closing stale ticket: %w", err))
		}
		l.Info("Closed ticket whose channel no longer exists", slog.String(logging.KeyChannelID, t.ChannelID))
		return nil, nil
	default:
		return nil, apperrors.Platform(fmt.Errorf("error getting ticket channel: %w", err))
	}
}

// Close archives the ticket held by the channel, then deletes the channel after the grace delay. The
// transcript is written before the deletion is attempted; a failed deletion does not undo it.
func (m *Manager) Close(ctx context.Context, guildID, channelID string, closer platform.User) (*Closure, error) {
	l := m.l.With(
		slog.String(logging.KeyGuildID, guildID),
		slog.String(logging.KeyChannelID, channelID),
		slog.String(logging.KeyUserID, closer.ID),
	)

	unlock := m.locks.Lock(keylock.Key("close", guildID, channelID))
	defer unlock()

	ticket, err := m.ticketForChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}

	cfg, err := m.configured(ctx, guildID)
	if err != nil {
		return nil, err
	}

	rec, err := m.archiver.Archive(ctx, cfg, m.guild(ctx, guildID), ticket, closer, m.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("error archiving ticket: %w", err)
	}

	ticket.State = entities.TicketStateClosed
	ticket.ClosedBy = closer.ID
	ticket.ClosedAt = rec.TicketInfo.ClosedAt
	if err := m.tickets.SaveTicket(ctx, ticket); err != nil {
		// Create closes the entry later on, once it sees the channel is gone.
		l.Error("Error marking ticket closed", slog.String(logging.KeyError, err.Error()))
	}

	TicketsClosed.Inc()
	l.Info("Ticket closed", slog.String("transcript", rec.Name), slog.Int("messages", len(rec.Messages)))

	deleted := make(chan error, 1)
	m.pending.Add(1)
	go m.deleteAfterGrace(context.WithoutCancel(ctx), l, channelID, deleted)

	return &Closure{
		Ticket:     ticket,
		Transcript: rec,
		Deleted:    deleted,
	}, nil
}

// ticketForChannel finds the open ticket held by the channel in the index, falling back to the topic marker.
func (m *Manager) ticketForChannel(ctx context.Context, guildID, channelID string) (*entities.Ticket, error) {
	t, err := m.tickets.GetTicket(ctx, guildID, channelID)
	switch {
	case err == nil && t.Open():
		return t, nil
	case err == nil:
		return nil, fmt.Errorf("ticket %s already closed: %w", channelID, apperrors.ErrNotATicketChannel)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}

	ch, err := m.platform.Channel(ctx, channelID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("channel %s: %w", channelID, apperrors.ErrNotATicketChannel)
	} else if err != nil {
		return nil, apperrors.Platform(fmt.Errorf("error getting channel: %w", err))
	}

	authorID, ok := entities.ParseTopicMarker(ch.Topic)
	if !ok || ch.GuildID != guildID {
		return nil, fmt.Errorf("channel %s: %w", channelID, apperrors.ErrNotATicketChannel)
	}

	return &entities.Ticket{
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		GuildID:     guildID,
		AuthorID:    authorID,
		State:       entities.TicketStateOpen,
	}, nil
}

func (m *Manager) deleteAfterGrace(ctx context.Context, l *slog.Logger, channelID string, done chan<- error) {
	defer m.pending.Done()
	defer close(done)

	if m.graceDelay > 0 {
		t := time.NewTimer(m.graceDelay)
		defer t.Stop()
		<-t.C
	}

	err := m.platform.DeleteChannel(ctx, channelID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		ChannelDeleteFailures.Inc()
		l.Error("Error deleting ticket channel", slog.String(logging.KeyError, err.Error()))
		done <- apperrors.Platform(fmt.Errorf("error deleting ticket channel: %w", err))
		return
	}
	done <- nil
}

// Wait blocks until every pending channel deletion ran.
func (m *Manager) Wait() {
	m.pending.Wait()
}

// OpeningMessage is the first message of a ticket channel, pinging the support roles.
func OpeningMessage(cfg *entities.GuildConfig, author platform.User) *platform.MessageSend {
	msgs := messages.For(cfg.Language)

	content := msgs.NewTicketPing
	if len(cfg.SupportRoleIDs) > 0 {
		content = fmt.Sprintf("%s - %s", platform.RoleMentions(cfg.SupportRoleIDs, ""), msgs.NewTicketPing)
	}

	return &platform.MessageSend{
		Content: content,
		Embeds: []platform.Embed{{
			Title:       msgs.TicketOpenedTitle,
			Description: msgs.TicketOpenedBody,
			Color:       messages.ColorInfo,
			Fields: []platform.EmbedField{
				{Name: msgs.FieldAuthor, Value: platform.UserMention(author.ID)},
				{Name: msgs.FieldPingedRoles, Value: platform.RoleMentions(cfg.SupportRoleIDs, msgs.None)},
			},
		}},
		Buttons: []platform.Button{{
			CustomID: entities.ComponentCloseTicket,
			Label:    msgs.CloseTicketLabel,
			Style:    platform.ButtonDanger,
		}},
		MentionRoleIDs: append([]string(nil), cfg.SupportRoleIDs...),
	}
}
