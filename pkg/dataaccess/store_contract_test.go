package dataaccess

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	l, err := logging.CommonLogger(logging.NewConfig(`tests`).WithOutput(io.Discard))
	require.NoError(t, err, "Failed to create logger")
	return l
}

// testStoreContract checks the behaviour every backend must share.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("guild round trip", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetGuildByID(ctx, "G")
		require.ErrorIs(t, err, apperrors.ErrNotFound)

		g := &entities.GuildConfig{
			ID:                  "G",
			Language:            entities.LanguageEnglish,
			SupportRoleIDs:      []string{"R1", "R2"},
			TicketCategoryID:    "C",
			OpenTicketChannelID: "O",
			TranscriptChannelID: "T",
		}
		require.NoError(t, s.SaveGuild(ctx, g))

		got, err := s.GetGuildByID(ctx, "G")
		require.NoError(t, err)
		require.Equal(t, g.SupportRoleIDs, got.SupportRoleIDs)
		require.True(t, got.Configured())

		g.SupportRoleIDs = []string{"R3"}
		require.NoError(t, s.SaveGuild(ctx, g))
		got, err = s.GetGuildByID(ctx, "G")
		require.NoError(t, err)
		require.Equal(t, []string{"R3"}, got.SupportRoleIDs)
	})

	t.Run("session lifecycle", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.SaveSession(ctx, &entities.ConfigSession{GuildID: "G", Language: entities.LanguageFrench}))
		require.NoError(t, s.SaveSession(ctx, &entities.ConfigSession{GuildID: "G", Language: entities.LanguageEnglish}))

		got, err := s.GetSession(ctx, "G")
		require.NoError(t, err)
		require.Equal(t, entities.LanguageEnglish, got.Language)

		require.NoError(t, s.DeleteSession(ctx, "G"))
		require.NoError(t, s.DeleteSession(ctx, "G"))

		_, err = s.GetSession(ctx, "G")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("ticket index", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetOpenTicket(ctx, "G", "M")
		require.ErrorIs(t, err, apperrors.ErrNotFound)

		old := &entities.Ticket{
			ChannelID: "c1",
			GuildID:   "G",
			AuthorID:  "M",
			State:     entities.TicketStateClosed,
			CreatedAt: custom.Datetime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		}
		open := &entities.Ticket{
			ChannelID:     "c2",
			GuildID:       "G",
			AuthorID:      "M",
			PingedRoleIDs: []string{"R1"},
			State:         entities.TicketStateOpen,
			CreatedAt:     custom.Datetime(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		}
		other := &entities.Ticket{ChannelID: "c3", GuildID: "G", AuthorID: "N", State: entities.TicketStateOpen}
		for _, tk := range []*entities.Ticket{old, open, other} {
			require.NoError(t, s.SaveTicket(ctx, tk))
		}

		got, err := s.GetOpenTicket(ctx, "G", "M")
		require.NoError(t, err)
		require.Equal(t, "c2", got.ChannelID)
		require.Equal(t, []string{"R1"}, got.PingedRoleIDs)

		got, err = s.GetTicket(ctx, "G", "c1")
		require.NoError(t, err)
		require.Equal(t, entities.TicketStateClosed, got.State)

		open.State = entities.TicketStateClosed
		require.NoError(t, s.SaveTicket(ctx, open))
		_, err = s.GetOpenTicket(ctx, "G", "M")
		require.ErrorIs(t, err, apperrors.ErrNotFound)

		_, err = s.GetTicket(ctx, "G", "missing")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("records are write once", func(t *testing.T) {
		s := newStore(t)

		rec := &entities.TranscriptRecord{
			Name:       "transcript-ticket-m-1.json",
			TicketInfo: entities.TicketInfo{ChannelID: "c1", GuildID: "G"},
			Messages:   []entities.MessageRecord{{ID: "m1", Content: "hi"}},
		}
		require.NoError(t, s.SaveTranscript(ctx, rec))

		err := s.SaveTranscript(ctx, rec)
		require.ErrorIs(t, err, apperrors.ErrStorageWriteFailed)

		log := &entities.CreationLogRecord{Name: "log-ticket-created-ticket-m-1.json", Action: entities.ActionTicketCreated}
		require.NoError(t, s.SaveCreationLog(ctx, log))
		require.ErrorIs(t, s.SaveCreationLog(ctx, log), apperrors.ErrStorageWriteFailed)
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_FailWrite(t *testing.T) {
	s := NewMemoryStore()
	s.FailWrite = func(query string) error {
		if query == "save_guild" {
			return io.ErrShortWrite
		}
		return nil
	}

	err := s.SaveGuild(context.Background(), &entities.GuildConfig{ID: "G"})
	require.ErrorIs(t, err, apperrors.ErrStorageWriteFailed)
	require.ErrorIs(t, err, io.ErrShortWrite)

	_, err = s.GetGuildByID(context.Background(), "G")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFileStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		s, err := NewFileStore(context.Background(), testLogger(t), t.TempDir())
		require.NoError(t, err)
		return s
	})
}
