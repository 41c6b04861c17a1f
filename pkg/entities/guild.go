package entities

import (
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
)

// MaxSupportRoles is the largest number of support roles a guild can configure.
const MaxSupportRoles = 10

// Language is the language the bot speaks in a guild.
type Language string

const (
	LanguageFrench  Language = "fr"
	LanguageEnglish Language = "en"

	// DefaultLanguage is used when a guild has not chosen a language.
	DefaultLanguage = LanguageFrench
)

// ParseLanguage parses a language code.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case LanguageFrench, LanguageEnglish:
		return l, nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// OrDefault returns the language, or the default language when unset.
func (l Language) OrDefault() Language {
	if l == "" {
		return DefaultLanguage
	}
	return l
}

// GuildConfig is the ticketing configuration of a guild.
type GuildConfig struct {
	// ID is the ID of the guild.
	ID string `json:"guild_id" bson:"guild_id"`

	// Language is the language replies are sent in.
	Language Language `json:"language" bson:"language"`

	// SupportRoleIDs are the roles that handle tickets, in selection order.
	SupportRoleIDs []string `json:"support_role_ids" bson:"support_role_ids"`

	// TicketCategoryID is the category ticket channels are created under.
	TicketCategoryID string `json:"ticket_category_id" bson:"ticket_category_id"`

	// OpenTicketChannelID is the channel holding the "create a ticket" panel.
	OpenTicketChannelID string `json:"open_ticket_channel_id" bson:"open_ticket_channel_id"`

	// TranscriptChannelID is the channel notices and transcripts are sent to.
	TranscriptChannelID string `json:"transcript_channel_id" bson:"transcript_channel_id"`

	// PanelMessageID is the ID of the panel message in the open ticket channel.
	PanelMessageID string `json:"panel_message_id,omitempty" bson:"panel_message_id,omitempty"`

	// UpdatedAt is the last time the configuration was written.
	UpdatedAt custom.Datetime `json:"updated_at" bson:"updated_at"`
}

// Configured reports whether tickets can be created for the guild.
func (g *GuildConfig) Configured() bool {
	return g != nil &&
		len(g.SupportRoleIDs) > 0 &&
		g.TicketCategoryID != "" &&
		g.OpenTicketChannelID != "" &&
		g.TranscriptChannelID != ""
}

// Clone returns a deep copy of the configuration.
func (g *GuildConfig) Clone() *GuildConfig {
	if g == nil {
		return nil
	}
	cp := *g
	cp.SupportRoleIDs = append([]string(nil), g.SupportRoleIDs...)
	return &cp
}

// NormalizeRoleIDs removes empty and repeated IDs while keeping the first occurrence order.
func NormalizeRoleIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
