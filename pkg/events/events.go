// Package events routes the interactions of members to the configuration flow and the ticket manager.
package events

import (
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
)

// Event is one of the events the router handles.
type Event interface {
	// Name is the name the event is logged and counted under.
	Name() string

	event()
}

// ConfigCommand is the first configuration step: the language was chosen.
type ConfigCommand struct {
	GuildID  string
	Member   platform.User
	Language entities.Language
}

// RoleSelection is the second configuration step: the support roles were picked.
type RoleSelection struct {
	GuildID string
	Member  platform.User
	RoleIDs []string
}

// CreateTicketPressed is a press of the panel button.
type CreateTicketPressed struct {
	GuildID string
	Member  platform.User
}

// CloseTicketPressed is a press of the close button in a ticket channel.
type CloseTicketPressed struct {
	GuildID   string
	ChannelID string
	Member    platform.User
}

// HelpCommand asks for the help menu.
type HelpCommand struct {
	GuildID string
	Member  platform.User
}

// GuildJoined is the bot becoming available in a guild.
type GuildJoined struct {
	GuildID   string
	GuildName string
}

func (ConfigCommand) Name() string       { return "config_command" }
func (RoleSelection) Name() string       { return "role_selection" }
func (CreateTicketPressed) Name() string { return "create_ticket" }
func (CloseTicketPressed) Name() string  { return "close_ticket" }
func (HelpCommand) Name() string         { return "help_command" }
func (GuildJoined) Name() string         { return "guild_joined" }

func (ConfigCommand) event()       {}
func (RoleSelection) event()       {}
func (CreateTicketPressed) event() {}
func (CloseTicketPressed) event()  {}
func (HelpCommand) event()         {}
func (GuildJoined) event()         {}

// Reply is the answer to the member that triggered an event.
type Reply struct {
	Content   string
	Embeds    []platform.Embed
	RoleMenu  *RoleMenu
	Ephemeral bool
}

// RoleMenu is a select menu of roles.
type RoleMenu struct {
	CustomID    string
	Placeholder string
	Options     []RoleOption
	MinValues   int
	MaxValues   int
}

// RoleOption is one entry of a RoleMenu.
type RoleOption struct {
	Label       string
	Value       string
	Description string
}
