package dataaccess

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) SaveGuild(ctx context.Context, guild *entities.GuildConfig) error {
	done := monitoring.Observe(mongoBackend, guildDalName, "save_guild", collectionGuilds)
	defer done()

	opts := options.Replace().SetUpsert(true)
	_, err := s.collection(collectionGuilds).ReplaceOne(ctx, bson.M{"guild_id": guild.ID}, guild, opts)
	if err != nil {
		monitoring.Failed(mongoBackend, guildDalName, "save_guild", collectionGuilds)
		return apperrors.Storage(fmt.Errorf("error saving guild: %w", err))
	}
	return nil
}

// GetGuildByID gets a guild by ID.
func (s *MongoStore) GetGuildByID(ctx context.Context, id string) (*entities.GuildConfig, error) {
	done := monitoring.Observe(mongoBackend, guildDalName, "get_guild_by_id", collectionGuilds)
	defer done()

	guild := new(entities.GuildConfig)
	err := s.collection(collectionGuilds).FindOne(ctx, bson.M{"guild_id": id}).Decode(guild)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("guild %s: %w", id, apperrors.ErrNotFound)
	} else if err != nil {
		monitoring.Failed(mongoBackend, guildDalName, "get_guild_by_id", collectionGuilds)
		return nil, fmt.Errorf("error getting guild: %w", err)
	}
	return guild, nil
}

func (s *MongoStore) SaveSession(ctx context.Context, session *entities.ConfigSession) error {
	done := monitoring.Observe(mongoBackend, guildDalName, "save_session", collectionSessions)
	defer done()

	opts := options.Replace().SetUpsert(true)
	_, err := s.collection(collectionSessions).ReplaceOne(ctx, bson.M{"guild_id": session.GuildID}, session, opts)
	if err != nil {
		monitoring.Failed(mongoBackend, guildDalName, "save_session", collectionSessions)
		return apperrors.Storage(fmt.Errorf("error saving session: %w", err))
	}
	return nil
}

func (s *MongoStore) GetSession(ctx context.Context, guildID string) (*entities.ConfigSession, error) {
	done := monitoring.Observe(mongoBackend, guildDalName, "get_session", collectionSessions)
	defer done()

	session := new(entities.ConfigSession)
	err := s.collection(collectionSessions).FindOne(ctx, bson.M{"guild_id": guildID}).Decode(session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("session %s: %w", guildID, apperrors.ErrNotFound)
	} else if err != nil {
		monitoring.Failed(mongoBackend, guildDalName, "get_session", collectionSessions)
		return nil, fmt.Errorf("error getting session: %w", err)
	}
	return session, nil
}

func (s *MongoStore) DeleteSession(ctx context.Context, guildID string) error {
	done := monitoring.Observe(mongoBackend, guildDalName, "delete_session", collectionSessions)
	defer done()

	if _, err := s.collection(collectionSessions).DeleteOne(ctx, bson.M{"guild_id": guildID}); err != nil {
		monitoring.Failed(mongoBackend, guildDalName, "delete_session", collectionSessions)
		return apperrors.Storage(fmt.Errorf("error deleting session: %w", err))
	}
	return nil
}
