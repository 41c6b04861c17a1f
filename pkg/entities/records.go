package entities

import (
	"encoding/json"

	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
)

// ActionTicketCreated is the action recorded in a creation log.
const ActionTicketCreated = "ticket_created"

// TicketInfo describes the ticket a record was captured for.
type TicketInfo struct {
	ChannelName    string          `json:"channelName" bson:"channel_name"`
	ChannelID      string          `json:"channelId" bson:"channel_id"`
	AuthorID       string          `json:"authorId" bson:"author_id"`
	AuthorUsername string          `json:"authorUsername,omitempty" bson:"author_username,omitempty"`
	AuthorTag      string          `json:"authorTag,omitempty" bson:"author_tag,omitempty"`
	GuildID        string          `json:"guildId" bson:"guild_id"`
	GuildName      string          `json:"guildName" bson:"guild_name"`
	PingedRoles    []string        `json:"pingedRoles,omitempty" bson:"pinged_roles,omitempty"`
	CreatedAt      custom.Datetime `json:"createdAt,omitempty" bson:"created_at,omitempty"`
	ClosedBy       string          `json:"closedBy,omitempty" bson:"closed_by,omitempty"`
	ClosedAt       custom.Datetime `json:"closedAt,omitempty" bson:"closed_at,omitempty"`
}

// CreationLogRecord is the audit record written when a ticket is created.
type CreationLogRecord struct {
	// Name is the unique record name, also used as the attachment file name.
	Name string `json:"-" bson:"name"`

	Action     string     `json:"action" bson:"action"`
	TicketInfo TicketInfo `json:"ticketInfo" bson:"ticket_info"`
}

// TranscriptRecord is the archive of a ticket written when it is closed.
type TranscriptRecord struct {
	// Name is the unique record name, also used as the attachment file name.
	Name string `json:"-" bson:"name"`

	TicketInfo TicketInfo      `json:"ticketInfo" bson:"ticket_info"`
	Messages   []MessageRecord `json:"messages" bson:"messages"`
}

// MessageAuthor identifies who sent a message.
type MessageAuthor struct {
	ID       string `json:"id" bson:"id"`
	Username string `json:"username" bson:"username"`
	Tag      string `json:"tag,omitempty" bson:"tag,omitempty"`
	Bot      bool   `json:"bot" bson:"bot"`
}

// AttachmentRecord is a file attached to an archived message.
type AttachmentRecord struct {
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
	Size int    `json:"size" bson:"size"`
}

// MessageRecord is one archived message.
type MessageRecord struct {
	ID      string        `json:"id" bson:"id"`
	Author  MessageAuthor `json:"author" bson:"author"`
	Content string        `json:"content" bson:"content"`

	// Timestamp is the send time in unix milliseconds.
	Timestamp   int64              `json:"timestamp" bson:"timestamp"`
	CreatedAt   custom.Datetime    `json:"createdAt" bson:"created_at"`
	Attachments []AttachmentRecord `json:"attachments" bson:"attachments"`
	Embeds      []platform.Embed   `json:"embeds" bson:"embeds"`
	Components  []json.RawMessage  `json:"components" bson:"components"`
}
