package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/keylock"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

// ConfigStore is the guild scoped configuration store. Updates and session changes for one guild are
// serialized; different guilds proceed independently.
type ConfigStore struct {
	// l is the logger.
	l *slog.Logger

	// dal is the backend.
	dal GuildDal

	// locks serializes writers per guild.
	locks *keylock.KeyLock

	// sessionTTL is how long a configuration session stays valid. Zero never expires.
	sessionTTL time.Duration

	// now is the clock.
	now func() time.Time
}

type ConfigStoreOption func(c *ConfigStore)

// WithSessionTTL expires configuration sessions older than ttl.
func WithSessionTTL(ttl time.Duration) ConfigStoreOption {
	return func(c *ConfigStore) {
		c.sessionTTL = ttl
	}
}

// WithClock replaces the clock used to stamp writes.
func WithClock(now func() time.Time) ConfigStoreOption {
	return func(c *ConfigStore) {
		c.now = now
	}
}

// NewConfigStore creates a new configuration store over dal.
func NewConfigStore(l *slog.Logger, dal GuildDal, opts ...ConfigStoreOption) *ConfigStore {
	c := &ConfigStore{
		l:     l.With(slog.String(logging.KeyComponent, "config_store")),
		dal:   dal,
		locks: keylock.New(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func guildLockKey(guildID string) string {
	return keylock.Key("guild", guildID)
}

// Get gets the configuration of a guild. Returns apperrors.ErrNotFound when the guild was never configured.
func (c *ConfigStore) Get(ctx context.Context, guildID string) (*entities.GuildConfig, error) {
	g, err := c.dal.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild configuration: %w", err)
	}
	return g, nil
}

// Update applies fn to the current configuration of the guild and persists the result. fn receives a copy;
// returning an error from it aborts the update without writing. The persisted configuration is returned.
func (c *ConfigStore) Update(ctx context.Context, guildID string, fn func(g *entities.GuildConfig) error) (*entities.GuildConfig, error) {
	unlock := c.locks.Lock(guildLockKey(guildID))
	defer unlock()

	current, err := c.dal.GetGuildByID(ctx, guildID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		current = &entities.GuildConfig{ID: guildID}
	case err != nil:
		return nil, fmt.Errorf("error getting guild configuration: %w", err)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = guildID
	next.UpdatedAt = custom.Datetime(c.now())

	if err := c.dal.SaveGuild(ctx, next); err != nil {
		c.l.Error("Error saving guild configuration",
			slog.String(logging.KeyGuildID, guildID),
			slog.String(logging.KeyError, err.Error()),
		)
		return nil, apperrors.Storage(fmt.Errorf("error saving guild configuration: %w", err))
	}
	return next.Clone(), nil
}

// SetSession creates or replaces the configuration session of the guild.
func (c *ConfigStore) SetSession(ctx context.Context, session *entities.ConfigSession) error {
	unlock := c.locks.Lock(guildLockKey(session.GuildID))
	defer unlock()

	if session.StartedAt.IsZero() {
		// Millisecond precision survives every backend, so ConsumeSession can compare stamps.
		session.StartedAt = custom.Datetime(c.now().Truncate(time.Millisecond))
	}

	if err := c.dal.SaveSession(ctx, session); err != nil {
		return apperrors.Storage(fmt.Errorf("error saving configuration session: %w", err))
	}
	return nil
}

// GetSession gets the active configuration session of the guild. Returns apperrors.ErrSessionNotFound when
// there is none or it has expired.
func (c *ConfigStore) GetSession(ctx context.Context, guildID string) (*entities.ConfigSession, error) {
	unlock := c.locks.Lock(guildLockKey(guildID))
	defer unlock()

	return c.getSession(ctx, guildID)
}

func (c *ConfigStore) getSession(ctx context.Context, guildID string) (*entities.ConfigSession, error) {
	s, err := c.dal.GetSession(ctx, guildID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("guild %s: %w", guildID, apperrors.ErrSessionNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting configuration session: %w", err)
	}

	if s.Expired(c.sessionTTL, c.now()) {
		return nil, fmt.Errorf("guild %s: session expired: %w", guildID, apperrors.ErrSessionNotFound)
	}
	return s, nil
}

// ClearSession removes the configuration session of the guild.
func (c *ConfigStore) ClearSession(ctx context.Context, guildID string) error {
	unlock := c.locks.Lock(guildLockKey(guildID))
	defer unlock()

	if err := c.dal.DeleteSession(ctx, guildID); err != nil {
		return apperrors.Storage(fmt.Errorf("error deleting configuration session: %w", err))
	}
	return nil
}

// ConsumeSession removes the configuration session of the guild if it is still the one given. A session
// that was replaced in the meantime is kept. Reports whether the session was removed.
func (c *ConfigStore) ConsumeSession(ctx context.Context, session *entities.ConfigSession) (bool, error) {
	unlock := c.locks.Lock(guildLockKey(session.GuildID))
	defer unlock()

	current, err := c.dal.GetSession(ctx, session.GuildID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("error getting configuration session: %w", err)
	}

	if !current.StartedAt.Time().Equal(session.StartedAt.Time()) || current.StartedBy != session.StartedBy {
		c.l.Info("Configuration session was replaced, keeping the newer one",
			slog.String(logging.KeyGuildID, session.GuildID))
		return false, nil
	}

	if err := c.dal.DeleteSession(ctx, session.GuildID); err != nil {
		return false, apperrors.Storage(fmt.Errorf("error deleting configuration session: %w", err))
	}
	return true, nil
}
