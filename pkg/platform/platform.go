package platform

import (
	"context"
	"encoding/json"
	"time"
)

// Platform is the chat platform the engine drives. Implementations must return an error wrapping
// apperrors.ErrNotFound when a channel or message does not exist.
type Platform interface {
	// Guild gets a guild by ID.
	Guild(ctx context.Context, guildID string) (*Guild, error)

	// GuildRoles lists the roles of a guild.
	GuildRoles(ctx context.Context, guildID string) ([]*Role, error)

	// GuildChannels lists the channels of a guild.
	GuildChannels(ctx context.Context, guildID string) ([]*Channel, error)

	// Channel gets a channel by ID.
	Channel(ctx context.Context, channelID string) (*Channel, error)

	// CreateChannel creates a channel in the guild.
	CreateChannel(ctx context.Context, guildID string, data *ChannelCreate) (*Channel, error)

	// DeleteChannel deletes a channel.
	DeleteChannel(ctx context.Context, channelID string) error

	// ApplyOverwrites sets the given permission overwrites on a channel. Principals not listed are untouched.
	ApplyOverwrites(ctx context.Context, channelID string, overwrites []Overwrite) error

	// DeleteOverwrite removes the permission overwrite of a role or member from a channel.
	DeleteOverwrite(ctx context.Context, channelID string, targetID string) error

	// SendMessage sends a message to a channel.
	SendMessage(ctx context.Context, channelID string, msg *MessageSend) (*Message, error)

	// Message gets a single message from a channel.
	Message(ctx context.Context, channelID string, messageID string) (*Message, error)

	// ChannelMessages gets up to limit of the most recent messages in a channel.
	ChannelMessages(ctx context.Context, channelID string, limit int) ([]*Message, error)
}

// Guild is a community on the platform.
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Role is a guild role.
type Role struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`

	// Managed roles are owned by an integration and cannot be assigned.
	Managed bool `json:"managed"`
}

// User is a platform account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Tag      string `json:"tag"`
	Bot      bool   `json:"bot"`
}

type ChannelType int

const (
	ChannelTypeText ChannelType = iota
	ChannelTypeCategory
)

// Channel is a guild channel.
type Channel struct {
	ID         string      `json:"id"`
	GuildID    string      `json:"guild_id"`
	Name       string      `json:"name"`
	Topic      string      `json:"topic"`
	ParentID   string      `json:"parent_id"`
	Type       ChannelType `json:"type"`
	Overwrites []Overwrite `json:"overwrites"`
}

// ChannelCreate is the data used to create a channel.
type ChannelCreate struct {
	Name       string
	Type       ChannelType
	Topic      string
	ParentID   string
	Overwrites []Overwrite
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size"`
}

// EmbedField is a name/value pair shown in an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is rich content attached to a message.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      string       `json:"footer,omitempty"`
	Timestamp   time.Time    `json:"timestamp,omitempty"`
}

type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

// Button is an interactive button identified by its custom ID.
type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
}

// File is an in-memory file uploaded with a message.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// MessageSend is an outgoing message.
type MessageSend struct {
	Content string
	Embeds  []Embed
	Buttons []Button
	Files   []File

	// MentionRoleIDs are the roles allowed to be pinged by the message.
	MentionRoleIDs []string
}

// Message is a message read from a channel.
type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	Author      User         `json:"author"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments"`
	Embeds      []Embed      `json:"embeds"`

	// Components is the raw platform payload of the interactive components.
	Components []json.RawMessage `json:"components"`
}
