package entities

import (
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
)

// ConfigSession bridges the language step and the role selection step of a guild's configuration.
type ConfigSession struct {
	// GuildID is the ID of the guild being configured.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// Language is the language chosen in the first step.
	Language Language `json:"language" bson:"language"`

	// StartedBy is the ID of the member that started the configuration.
	StartedBy string `json:"started_by" bson:"started_by"`

	// StartedAt is when the first step ran.
	StartedAt custom.Datetime `json:"started_at" bson:"started_at"`
}

// Expired reports whether the session is older than ttl. A non-positive ttl never expires.
func (s *ConfigSession) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.StartedAt.Time()) > ttl
}
