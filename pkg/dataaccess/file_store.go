package dataaccess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

const fileBackend = "file"

// FileStore is a Store that keeps one JSON document per record under a root directory. Documents are
// written to a temporary file and renamed over the old one, so a failed write leaves the previous
// version intact.
type FileStore struct {
	// l is the logger.
	l *slog.Logger

	// root is the directory holding the collections.
	root string
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens the store rooted at dir, creating it if needed. Every guild document is decoded
// once so that a corrupt store is reported before the bot starts handling events.
func NewFileStore(ctx context.Context, l *slog.Logger, dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating store directory: %w", err)
	}

	s := &FileStore{
		l:    l.With(slog.String(logging.KeyComponent, "file_store")),
		root: dir,
	}

	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) path(elem ...string) (string, error) {
	for _, e := range elem {
		if e == "" || e == "." || e == ".." || strings.ContainsAny(e, `/\`) {
			return "", fmt.Errorf("invalid path element %q", e)
		}
	}
	return filepath.Join(append([]string{s.root}, elem...)...), nil
}

// Ping checks every guild and session document can be read and decoded.
func (s *FileStore) Ping(ctx context.Context) error {
	done := monitoring.Observe(fileBackend, "health_check", "ping", "-")
	defer done()

	for _, coll := range []string{collectionGuilds, collectionSessions} {
		entries, err := os.ReadDir(filepath.Join(s.root, coll))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			monitoring.Failed(fileBackend, "health_check", "ping", coll)
			return fmt.Errorf("error reading %s: %w", coll, err)
		}

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}

			var doc map[string]any
			if err := readJSON(filepath.Join(s.root, coll, e.Name()), &doc); err != nil {
				monitoring.Failed(fileBackend, "health_check", "ping", coll)
				return fmt.Errorf("corrupt document %s/%s: %w", coll, e.Name(), err)
			}
		}
	}
	return nil
}

// Close is a no-op; every write is flushed before it returns.
func (s *FileStore) Close(_ context.Context) error {
	return nil
}

func (s *FileStore) SaveGuild(_ context.Context, guild *entities.GuildConfig) error {
	return s.replace(guildDalName, "save_guild", guild, collectionGuilds, guild.ID+".json")
}

func (s *FileStore) GetGuildByID(_ context.Context, id string) (*entities.GuildConfig, error) {
	guild := new(entities.GuildConfig)
	if err := s.get(guildDalName, "get_guild_by_id", guild, collectionGuilds, id+".json"); err != nil {
		return nil, fmt.Errorf("guild %s: %w", id, err)
	}
	return guild, nil
}

func (s *FileStore) SaveSession(_ context.Context, session *entities.ConfigSession) error {
	return s.replace(guildDalName, "save_session", session, collectionSessions, session.GuildID+".json")
}

func (s *FileStore) GetSession(_ context.Context, guildID string) (*entities.ConfigSession, error) {
	session := new(entities.ConfigSession)
	if err := s.get(guildDalName, "get_session", session, collectionSessions, guildID+".json"); err != nil {
		return nil, fmt.Errorf("session %s: %w", guildID, err)
	}
	return session, nil
}

func (s *FileStore) DeleteSession(_ context.Context, guildID string) error {
	done := monitoring.Observe(fileBackend, guildDalName, "delete_session", collectionSessions)
	defer done()

	p, err := s.path(collectionSessions, guildID+".json")
	if err != nil {
		return apperrors.Storage(err)
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		monitoring.Failed(fileBackend, guildDalName, "delete_session", collectionSessions)
		return apperrors.Storage(fmt.Errorf("error deleting session: %w", err))
	}
	return nil
}

func (s *FileStore) SaveTicket(_ context.Context, ticket *entities.Ticket) error {
	return s.replace(ticketDalName, "save_ticket", ticket, collectionTickets, ticket.GuildID, ticket.ChannelID+".json")
}

func (s *FileStore) GetTicket(_ context.Context, guildID string, channelID string) (*entities.Ticket, error) {
	ticket := new(entities.Ticket)
	if err := s.get(ticketDalName, "get_ticket", ticket, collectionTickets, guildID, channelID+".json"); err != nil {
		return nil, fmt.Errorf("ticket %s: %w", channelID, err)
	}
	return ticket, nil
}

func (s *FileStore) GetOpenTicket(ctx context.Context, guildID string, authorID string) (*entities.Ticket, error) {
	done := monitoring.Observe(fileBackend, ticketDalName, "get_open_ticket", collectionTickets)
	defer done()

	dir, err := s.path(collectionTickets, guildID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open ticket for %s: %w", authorID, apperrors.ErrNotFound)
	} else if err != nil {
		monitoring.Failed(fileBackend, ticketDalName, "get_open_ticket", collectionTickets)
		return nil, fmt.Errorf("error listing tickets: %w", err)
	}

	var newest *entities.Ticket
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		t := new(entities.Ticket)
		if err := readJSON(filepath.Join(dir, e.Name()), t); err != nil {
			monitoring.Failed(fileBackend, ticketDalName, "get_open_ticket", collectionTickets)
			return nil, fmt.Errorf("error reading ticket %s: %w", e.Name(), err)
		}
		if t.AuthorID != authorID || !t.Open() {
			continue
		}
		if newest == nil || t.CreatedAt.Time().After(newest.CreatedAt.Time()) {
			newest = t
		}
	}

	if newest == nil {
		return nil, fmt.Errorf("open ticket for %s: %w", authorID, apperrors.ErrNotFound)
	}
	return newest, nil
}

func (s *FileStore) SaveCreationLog(_ context.Context, rec *entities.CreationLogRecord) error {
	return s.create(archiveDalName, "save_creation_log", rec, collectionCreationLogs, rec.Name)
}

func (s *FileStore) SaveTranscript(_ context.Context, rec *entities.TranscriptRecord) error {
	return s.create(archiveDalName, "save_transcript", rec, collectionTranscripts, rec.Name)
}

func (s *FileStore) get(dal, query string, v any, elem ...string) error {
	done := monitoring.Observe(fileBackend, dal, query, elem[0])
	defer done()

	p, err := s.path(elem...)
	if err != nil {
		return err
	}

	err = readJSON(p, v)
	if errors.Is(err, fs.ErrNotExist) {
		return apperrors.ErrNotFound
	} else if err != nil {
		monitoring.Failed(fileBackend, dal, query, elem[0])
		return fmt.Errorf("error reading %s: %w", p, err)
	}
	return nil
}

func (s *FileStore) replace(dal, query string, v any, elem ...string) error {
	done := monitoring.Observe(fileBackend, dal, query, elem[0])
	defer done()

	p, err := s.path(elem...)
	if err != nil {
		return apperrors.Storage(err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.Storage(fmt.Errorf("error encoding %s: %w", p, err))
	}

	if err := writeFileAtomic(p, data); err != nil {
		monitoring.Failed(fileBackend, dal, query, elem[0])
		s.l.Error("Error writing document", slog.String("path", p), slog.String(logging.KeyError, err.Error()))
		return apperrors.Storage(err)
	}
	return nil
}

func (s *FileStore) create(dal, query string, v any, coll, name string) error {
	done := monitoring.Observe(fileBackend, dal, query, coll)
	defer done()

	if name == "" {
		return apperrors.Storage(fmt.Errorf("record name is empty"))
	}

	p, err := s.path(coll, name)
	if err != nil {
		return apperrors.Storage(err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.Storage(fmt.Errorf("error encoding %s: %w", p, err))
	}

	if err := writeFileExclusive(p, data); err != nil {
		monitoring.Failed(fileBackend, dal, query, coll)
		return apperrors.Storage(err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeTemp writes data to a synced temporary file next to path and returns its name.
func writeTemp(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error closing temp file: %w", err)
	}
	return tmp.Name(), nil
}

// writeFileAtomic replaces path with data.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := writeTemp(path, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error renaming temp file: %w", err)
	}
	return nil
}

// writeFileExclusive publishes data at path, failing if path already exists.
func writeFileExclusive(path string, data []byte) error {
	tmp, err := writeTemp(path, data)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("record %s already exists", filepath.Base(path))
		}
		return fmt.Errorf("error publishing record: %w", err)
	}
	return nil
}
