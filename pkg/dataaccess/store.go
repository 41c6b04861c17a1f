package dataaccess

import (
	"context"

	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
)

const (
	guildDalName   = "guild_dal"
	ticketDalName  = "ticket_dal"
	archiveDalName = "archive_dal"
)

// Collection names, shared by every backend.
const (
	collectionGuilds       = "guilds"
	collectionSessions     = "config_sessions"
	collectionTickets      = "tickets"
	collectionCreationLogs = "creation_logs"
	collectionTranscripts  = "transcripts"
)

// GuildDal persists guild configuration and configuration sessions.
type GuildDal interface {
	// SaveGuild replaces the configuration of a guild.
	SaveGuild(ctx context.Context, guild *entities.GuildConfig) error

	// GetGuildByID gets the configuration of a guild. Returns apperrors.ErrNotFound when absent.
	GetGuildByID(ctx context.Context, id string) (*entities.GuildConfig, error)

	// SaveSession replaces the configuration session of a guild.
	SaveSession(ctx context.Context, session *entities.ConfigSession) error

	// GetSession gets the configuration session of a guild. Returns apperrors.ErrNotFound when absent.
	GetSession(ctx context.Context, guildID string) (*entities.ConfigSession, error)

	// DeleteSession deletes the configuration session of a guild. Deleting a missing session is not an error.
	DeleteSession(ctx context.Context, guildID string) error
}

// TicketDal is the index of tickets by channel and by author.
type TicketDal interface {
	// SaveTicket saves a ticket.
	SaveTicket(ctx context.Context, ticket *entities.Ticket) error

	// GetTicket gets a ticket by channel. Returns apperrors.ErrNotFound when absent.
	GetTicket(ctx context.Context, guildID string, channelID string) (*entities.Ticket, error)

	// GetOpenTicket gets the open ticket of an author. Returns apperrors.ErrNotFound when absent.
	GetOpenTicket(ctx context.Context, guildID string, authorID string) (*entities.Ticket, error)
}

//go:generate mockgen -destination=mocks/mock_archive_dal.go -package=mocks github.com/Jacobbrewer1/ticketeer/pkg/dataaccess ArchiveDal

// ArchiveDal writes immutable ticket records. Writing a name twice is an error.
type ArchiveDal interface {
	// SaveCreationLog writes a creation log record.
	SaveCreationLog(ctx context.Context, rec *entities.CreationLogRecord) error

	// SaveTranscript writes a transcript record.
	SaveTranscript(ctx context.Context, rec *entities.TranscriptRecord) error
}

// Store is a durable backend.
type Store interface {
	GuildDal
	TicketDal
	ArchiveDal

	// Ping checks the backend is reachable and readable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close(ctx context.Context) error
}
