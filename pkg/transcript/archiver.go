// Package transcript writes the creation logs and transcripts of tickets and posts them to the guild's
// transcript channel.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
	"github.com/google/uuid"
)

// MaxFetchLimit is the largest page of history the platform returns in one call. Transcripts hold at most
// this many of the most recent messages.
const MaxFetchLimit = 100

const (
	creationLogPrefix = "log-ticket-created"
	transcriptPrefix  = "transcript"

	jsonContentType = "application/json"
)

// Archiver records tickets. Records are written before anything is posted about them.
type Archiver struct {
	l        *slog.Logger
	dal      dataaccess.ArchiveDal
	platform platform.Platform
	now      func() time.Time
	newID    func() string
}

type Option func(a *Archiver)

// WithClock replaces the clock used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) {
		a.now = now
	}
}

// WithIDGenerator replaces the generator of the unique suffix of record names.
func WithIDGenerator(fn func() string) Option {
	return func(a *Archiver) {
		a.newID = fn
	}
}

// NewArchiver creates a new archiver.
func NewArchiver(l *slog.Logger, dal dataaccess.ArchiveDal, p platform.Platform, opts ...Option) *Archiver {
	a := &Archiver{
		l:        l.With(slog.String(logging.KeyComponent, "transcript")),
		dal:      dal,
		platform: p,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString()[:8] },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RecordName is the name of a record about the channel, unique by timestamp and id.
func RecordName(prefix, channelName string, at time.Time, id string) string {
	return fmt.Sprintf("%s-%s-%d-%s.json", prefix, entities.Slug(channelName, "ticket"), at.UnixNano(), id)
}

func ticketInfo(guild *platform.Guild, ticket *entities.Ticket) entities.TicketInfo {
	return entities.TicketInfo{
		ChannelName:    ticket.ChannelName,
		ChannelID:      ticket.ChannelID,
		AuthorID:       ticket.AuthorID,
		AuthorUsername: ticket.AuthorUsername,
		GuildID:        guild.ID,
		GuildName:      guild.Name,
		PingedRoles:    append([]string(nil), ticket.PingedRoleIDs...),
		CreatedAt:      ticket.CreatedAt,
	}
}

// EmitCreationLog writes the creation log of a freshly opened ticket and posts a notice with the log attached to
// the transcript channel. A failed notice is logged; the returned error is about the write only.
func (a *Archiver) EmitCreationLog(ctx context.Context, cfg *entities.GuildConfig, guild *platform.Guild, ticket *entities.Ticket, author platform.User) (*entities.CreationLogRecord, error) {
	info := ticketInfo(guild, ticket)
	info.AuthorTag = author.Tag

	rec := &entities.CreationLogRecord{
		Name:       RecordName(creationLogPrefix, ticket.ChannelName, a.now(), a.newID()),
		Action:     entities.ActionTicketCreated,
		TicketInfo: info,
	}

	if err := a.dal.SaveCreationLog(ctx, rec); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("error saving creation log: %w", err))
	}

	msgs := messages.For(cfg.Language)
	embed := platform.Embed{
		Title: msgs.CreationNoticeTitle,
		Color: messages.ColorSuccess,
		Fields: []platform.EmbedField{
			{Name: msgs.FieldAuthor, Value: platform.UserMention(ticket.AuthorID)},
			{Name: msgs.FieldChannel, Value: platform.ChannelMention(ticket.ChannelID)},
			{Name: msgs.FieldPingedRoles, Value: platform.RoleMentions(ticket.PingedRoleIDs, msgs.None)},
			{Name: msgs.FieldLogFile, Value: rec.Name},
		},
		Timestamp: a.now(),
	}
	a.post(ctx, cfg.TranscriptChannelID, rec.Name, rec, embed)

	return rec, nil
}

// Archive captures up to limit of the most recent messages of the ticket channel, oldest first, writes the
// transcript and posts a summary with the transcript attached to the transcript channel. Nothing is written
// when the history cannot be read. A failed summary is logged; the returned error is about the capture only.
func (a *Archiver) Archive(ctx context.Context, cfg *entities.GuildConfig, guild *platform.Guild, ticket *entities.Ticket, closer platform.User, limit int) (*entities.TranscriptRecord, error) {
	if limit <= 0 || limit > MaxFetchLimit {
		limit = MaxFetchLimit
	}

	history, err := a.platform.ChannelMessages(ctx, ticket.ChannelID, limit)
	if err != nil {
		return nil, apperrors.Platform(fmt.Errorf("error fetching channel messages: %w", err))
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.Before(history[j].Timestamp)
	})

	closedAt := a.now()
	info := ticketInfo(guild, ticket)
	info.ClosedBy = closer.ID
	info.ClosedAt = custom.Datetime(closedAt)

	rec := &entities.TranscriptRecord{
		Name:       RecordName(transcriptPrefix, ticket.ChannelName, closedAt, a.newID()),
		TicketInfo: info,
		Messages:   make([]entities.MessageRecord, 0, len(history)),
	}
	for _, m := range history {
		rec.Messages = append(rec.Messages, messageRecord(m))
	}

	if err := a.dal.SaveTranscript(ctx, rec); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("error saving transcript: %w", err))
	}

	msgs := messages.For(cfg.Language)
	embed := platform.Embed{
		Title: msgs.TranscriptTitle,
		Color: messages.ColorDanger,
		Fields: []platform.EmbedField{
			{Name: msgs.FieldAuthor, Value: platform.UserMention(ticket.AuthorID)},
			{Name: msgs.FieldClosedBy, Value: platform.UserMention(closer.ID)},
			{Name: msgs.FieldMessages, Value: fmt.Sprintf(msgs.MessagesCountF, len(rec.Messages))},
		},
		Timestamp: closedAt,
	}
	a.post(ctx, cfg.TranscriptChannelID, rec.Name, rec, embed)

	return rec, nil
}

func (a *Archiver) post(ctx context.Context, channelID, name string, rec any, embed platform.Embed) {
	l := a.l.With(slog.String(logging.KeyChannelID, channelID), slog.String("record", name))

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		l.Error("Error encoding record", slog.String(logging.KeyError, err.Error()))
		return
	}

	_, err = a.platform.SendMessage(ctx, channelID, &platform.MessageSend{
		Embeds: []platform.Embed{embed},
		Files: []platform.File{{
			Name:        name,
			ContentType: jsonContentType,
			Data:        data,
		}},
	})
	if err != nil {
		l.Warn("Error posting record to transcript channel", slog.String(logging.KeyError, err.Error()))
	}
}

func messageRecord(m *platform.Message) entities.MessageRecord {
	rec := entities.MessageRecord{
		ID: m.ID,
		Author: entities.MessageAuthor{
			ID:       m.Author.ID,
			Username: m.Author.Username,
			Tag:      m.Author.Tag,
			Bot:      m.Author.Bot,
		},
		Content:     m.Content,
		Timestamp:   m.Timestamp.UnixMilli(),
		CreatedAt:   custom.Datetime(m.Timestamp),
		Attachments: make([]entities.AttachmentRecord, 0, len(m.Attachments)),
		Embeds:      append(make([]platform.Embed, 0, len(m.Embeds)), m.Embeds...),
		Components:  append(make([]json.RawMessage, 0, len(m.Components)), m.Components...),
	}
	for _, att := range m.Attachments {
		rec.Attachments = append(rec.Attachments, entities.AttachmentRecord{
			Name: att.Name,
			URL:  att.URL,
			Size: att.Size,
		})
	}
	return rec
}
