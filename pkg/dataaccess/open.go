package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess/connection"
)

// OpenOptions selects the backend to open.
type OpenOptions struct {
	// MongoURI selects the Mongo backend when set.
	MongoURI string

	// MongoDatabase is the Mongo database name.
	MongoDatabase string

	// Path is the root directory of the file backend.
	Path string
}

// Open opens the configured backend. Mongo wins over the file backend when both are configured.
func Open(ctx context.Context, l *slog.Logger, opts OpenOptions) (Store, error) {
	if opts.MongoURI != "" {
		conn := &connection.MongoDB{ConnectionString: opts.MongoURI}
		client, err := conn.Connect(ctx)
		if err != nil {
			return nil, err
		}

		s, err := NewMongoStore(ctx, l, client, opts.MongoDatabase)
		if err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, err
		}
		l.Debug("Connected to MongoDB", slog.String("database", s.database))
		return s, nil
	}

	if opts.Path == "" {
		return nil, fmt.Errorf("no store configured")
	}

	s, err := NewFileStore(ctx, l, opts.Path)
	if err != nil {
		return nil, err
	}
	l.Debug("Opened file store", slog.String("path", opts.Path))
	return s, nil
}
