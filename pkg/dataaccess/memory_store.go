package dataaccess

import (
	"context"
	"fmt"
	"sync"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
)

// MemoryStore is an in-memory Store. It satisfies the same contract as the durable backends and is used by
// tests.
type MemoryStore struct {
	mu sync.RWMutex

	guilds       map[string]*entities.GuildConfig
	sessions     map[string]*entities.ConfigSession
	tickets      map[string]*entities.Ticket
	creationLogs map[string]*entities.CreationLogRecord
	transcripts  map[string]*entities.TranscriptRecord

	// FailWrite, when set, is called with the query name before every write. A returned error aborts the write.
	FailWrite func(query string) error
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		guilds:       make(map[string]*entities.GuildConfig),
		sessions:     make(map[string]*entities.ConfigSession),
		tickets:      make(map[string]*entities.Ticket),
		creationLogs: make(map[string]*entities.CreationLogRecord),
		transcripts:  make(map[string]*entities.TranscriptRecord),
	}
}

func ticketKey(guildID, channelID string) string {
	return guildID + "/" + channelID
}

func (s *MemoryStore) failWrite(query string) error {
	if s.FailWrite == nil {
		return nil
	}
	if err := s.FailWrite(query); err != nil {
		return apperrors.Storage(fmt.Errorf("error in %s: %w", query, err))
	}
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}

func (s *MemoryStore) SaveGuild(_ context.Context, guild *entities.GuildConfig) error {
	if err := s.failWrite("save_guild"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guilds[guild.ID] = guild.Clone()
	return nil
}

func (s *MemoryStore) GetGuildByID(_ context.Context, id string) (*entities.GuildConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.guilds[id]
	if !ok {
		return nil, fmt.Errorf("guild %s: %w", id, apperrors.ErrNotFound)
	}
	return g.Clone(), nil
}

func (s *MemoryStore) SaveSession(_ context.Context, session *entities.ConfigSession) error {
	if err := s.failWrite("save_session"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.GuildID] = &cp
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, guildID string) (*entities.ConfigSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[guildID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", guildID, apperrors.ErrNotFound)
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, guildID string) error {
	if err := s.failWrite("delete_session"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, guildID)
	return nil
}

func cloneTicket(t *entities.Ticket) *entities.Ticket {
	cp := *t
	cp.PingedRoleIDs = append([]string(nil), t.PingedRoleIDs...)
	return &cp
}

func (s *MemoryStore) SaveTicket(_ context.Context, ticket *entities.Ticket) error {
	if err := s.failWrite("save_ticket"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[ticketKey(ticket.GuildID, ticket.ChannelID)] = cloneTicket(ticket)
	return nil
}

func (s *MemoryStore) GetTicket(_ context.Context, guildID string, channelID string) (*entities.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[ticketKey(guildID, channelID)]
	if !ok {
		return nil, fmt.Errorf("ticket %s: %w", channelID, apperrors.ErrNotFound)
	}
	return cloneTicket(t), nil
}

func (s *MemoryStore) GetOpenTicket(_ context.Context, guildID string, authorID string) (*entities.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *entities.Ticket
	for _, t := range s.tickets {
		if t.GuildID != guildID || t.AuthorID != authorID || !t.Open() {
			continue
		}
		if newest == nil || t.CreatedAt.Time().After(newest.CreatedAt.Time()) {
			newest = t
		}
	}
	if newest == nil {
		return nil, fmt.Errorf("open ticket for %s: %w", authorID, apperrors.ErrNotFound)
	}
	return cloneTicket(newest), nil
}

func (s *MemoryStore) SaveCreationLog(_ context.Context, rec *entities.CreationLogRecord) error {
	if err := s.failWrite("save_creation_log"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creationLogs[rec.Name]; ok || rec.Name == "" {
		return apperrors.Storage(fmt.Errorf("record %q already exists", rec.Name))
	}
	cp := *rec
	s.creationLogs[rec.Name] = &cp
	return nil
}

func (s *MemoryStore) SaveTranscript(_ context.Context, rec *entities.TranscriptRecord) error {
	if err := s.failWrite("save_transcript"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transcripts[rec.Name]; ok || rec.Name == "" {
		return apperrors.Storage(fmt.Errorf("record %q already exists", rec.Name))
	}
	cp := *rec
	cp.Messages = append([]entities.MessageRecord(nil), rec.Messages...)
	s.transcripts[rec.Name] = &cp
	return nil
}

// CreationLogs returns every creation log written.
func (s *MemoryStore) CreationLogs() []*entities.CreationLogRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entities.CreationLogRecord, 0, len(s.creationLogs))
	for _, r := range s.creationLogs {
		cp := *r
		out = append(out, &cp)
	}
	return out
}

// Transcripts returns every transcript written.
func (s *MemoryStore) Transcripts() []*entities.TranscriptRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entities.TranscriptRecord, 0, len(s.transcripts))
	for _, r := range s.transcripts {
		cp := *r
		out = append(out, &cp)
	}
	return out
}
