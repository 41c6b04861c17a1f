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

func (s *MongoStore) SaveTicket(ctx context.Context, ticket *entities.Ticket) error {
	done := monitoring.Observe(mongoBackend, ticketDalName, "save_ticket", collectionTickets)
	defer done()

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"guild_id": ticket.GuildID, "channel_id": ticket.ChannelID}
	if _, err := s.collection(collectionTickets).ReplaceOne(ctx, filter, ticket, opts); err != nil {
		monitoring.Failed(mongoBackend, ticketDalName, "save_ticket", collectionTickets)
		return apperrors.Storage(fmt.Errorf("error saving ticket: %w", err))
	}
	return nil
}

func (s *MongoStore) GetTicket(ctx context.Context, guildID string, channelID string) (*entities.Ticket, error) {
	done := monitoring.Observe(mongoBackend, ticketDalName, "get_ticket", collectionTickets)
	defer done()

	ticket := new(entities.Ticket)
	err := s.collection(collectionTickets).FindOne(ctx, bson.M{
		"guild_id":   guildID,
		"channel_id": channelID,
	}).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("ticket %s: %w", channelID, apperrors.ErrNotFound)
	} else if err != nil {
		monitoring.Failed(mongoBackend, ticketDalName, "get_ticket", collectionTickets)
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return ticket, nil
}

func (s *MongoStore) GetOpenTicket(ctx context.Context, guildID string, authorID string) (*entities.Ticket, error) {
	done := monitoring.Observe(mongoBackend, ticketDalName, "get_open_ticket", collectionTickets)
	defer done()

	// Newest first, in case an interrupted close left more than one open entry behind.
	opts := options.FindOne().SetSort(bson.M{"created_at": -1})

	ticket := new(entities.Ticket)
	err := s.collection(collectionTickets).FindOne(ctx, bson.M{
		"guild_id":  guildID,
		"author_id": authorID,
		"state":     entities.TicketStateOpen,
	}, opts).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("open ticket for %s: %w", authorID, apperrors.ErrNotFound)
	} else if err != nil {
		monitoring.Failed(mongoBackend, ticketDalName, "get_open_ticket", collectionTickets)
		return nil, fmt.Errorf("error getting open ticket: %w", err)
	}
	return ticket, nil
}
