package entities

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
)

// TicketState is the lifecycle state of a ticket.
type TicketState string

const (
	TicketStateOpen   TicketState = "open"
	TicketStateClosed TicketState = "closed"
)

// topicMarkerPrefix prefixes the author ID in a ticket channel's topic.
const topicMarkerPrefix = "ticket-author:"

// Ticket is a private conversation between a member and the support roles.
type Ticket struct {
	// ChannelID is the ID of the ticket channel.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// ChannelName is the name of the ticket channel.
	ChannelName string `json:"channel_name" bson:"channel_name"`

	// GuildID is the ID of the guild that the ticket is in.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// AuthorID is the ID of the member that created the ticket.
	AuthorID string `json:"author_id" bson:"author_id"`

	// AuthorUsername is the username of the member that created the ticket.
	AuthorUsername string `json:"author_username" bson:"author_username"`

	// PingedRoleIDs are the support roles at the time the ticket was created.
	PingedRoleIDs []string `json:"pinged_role_ids" bson:"pinged_role_ids"`

	// State is the lifecycle state.
	State TicketState `json:"state" bson:"state"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// ClosedBy is the ID of the member that closed the ticket.
	ClosedBy string `json:"closed_by,omitempty" bson:"closed_by,omitempty"`

	// ClosedAt is the time that the ticket was closed.
	ClosedAt custom.Datetime `json:"closed_at" bson:"closed_at"`
}

// Open reports whether the ticket is open.
func (t *Ticket) Open() bool {
	return t != nil && t.State == TicketStateOpen
}

var channelNameReplacer = regexp.MustCompile(`[^a-z0-9_-]+`)

// Slug lower-cases s and replaces anything outside [a-z0-9_-] with dashes. Returns fallback when nothing is left.
func Slug(s, fallback string) string {
	slug := channelNameReplacer.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return fallback
	}
	return slug
}

// TicketChannelName is the channel name of a ticket opened by username.
func TicketChannelName(username string) string {
	return "ticket-" + Slug(username, "member")
}

// TopicMarker is the channel topic identifying the author of a ticket.
func TopicMarker(authorID string) string {
	return fmt.Sprintf("%s%s", topicMarkerPrefix, authorID)
}

// ParseTopicMarker extracts the author ID from a ticket channel topic.
func ParseTopicMarker(topic string) (string, bool) {
	if !strings.HasPrefix(topic, topicMarkerPrefix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimPrefix(topic, topicMarkerPrefix))
	if id == "" || strings.ContainsAny(id, " \n\t") {
		return "", false
	}
	return id, true
}
