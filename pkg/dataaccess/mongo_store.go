package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	mongoBackend = "mongo"

	// DefaultMongoDatabase is the database used when none is configured.
	DefaultMongoDatabase = "ticketeer"
)

// MongoStore is a Store backed by MongoDB. Every write is a single document operation, so a failed write
// never leaves a partially written record behind.
type MongoStore struct {
	// l is the logger.
	l *slog.Logger

	// client is the database. This is a connection pool.
	client *mongo.Client

	// database is the name of the database.
	database string
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore creates a new Mongo backed store and ensures its indexes exist.
func NewMongoStore(ctx context.Context, l *slog.Logger, client *mongo.Client, database string) (*MongoStore, error) {
	if client == nil {
		return nil, fmt.Errorf("mongo client is nil")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}

	s := &MongoStore{
		l:        l.With(slog.String(logging.KeyComponent, "mongo_store")),
		client:   client,
		database: database,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("error ensuring indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) collection(name string) *mongo.Collection {
	return s.client.Database(s.database).Collection(name)
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}

	indexes := map[string][]mongo.IndexModel{
		collectionGuilds:   {unique(bson.D{{Key: "guild_id", Value: 1}})},
		collectionSessions: {unique(bson.D{{Key: "guild_id", Value: 1}})},
		collectionTickets: {
			unique(bson.D{{Key: "guild_id", Value: 1}, {Key: "channel_id", Value: 1}}),
			{Keys: bson.D{{Key: "guild_id", Value: 1}, {Key: "author_id", Value: 1}, {Key: "state", Value: 1}}},
		},
		collectionCreationLogs: {unique(bson.D{{Key: "name", Value: 1}})},
		collectionTranscripts:  {unique(bson.D{{Key: "name", Value: 1}})},
	}

	for coll, models := range indexes {
		if _, err := s.collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("error creating indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	done := monitoring.Observe(mongoBackend, "health_check", "ping", "-")
	defer done()

	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		monitoring.Failed(mongoBackend, "health_check", "ping", "-")
		return fmt.Errorf("error pinging mongo: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("error disconnecting from mongo: %w", err)
	}
	return nil
}
