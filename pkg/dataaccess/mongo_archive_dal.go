package dataaccess

import (
	"context"
	"fmt"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *MongoStore) SaveCreationLog(ctx context.Context, rec *entities.CreationLogRecord) error {
	return s.insertRecord(ctx, collectionCreationLogs, "save_creation_log", rec.Name, rec)
}

func (s *MongoStore) SaveTranscript(ctx context.Context, rec *entities.TranscriptRecord) error {
	return s.insertRecord(ctx, collectionTranscripts, "save_transcript", rec.Name, rec)
}

func (s *MongoStore) insertRecord(ctx context.Context, coll, query, name string, doc any) error {
	done := monitoring.Observe(mongoBackend, archiveDalName, query, coll)
	defer done()

	if name == "" {
		return apperrors.Storage(fmt.Errorf("record name is empty"))
	}

	if _, err := s.collection(coll).InsertOne(ctx, doc); err != nil {
		monitoring.Failed(mongoBackend, archiveDalName, query, coll)
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Storage(fmt.Errorf("record %s already exists: %w", name, err))
		}
		return apperrors.Storage(fmt.Errorf("error inserting record %s: %w", name, err))
	}
	return nil
}
