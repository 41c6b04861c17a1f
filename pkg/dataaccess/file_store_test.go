package dataaccess

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(ctx, testLogger(t), dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveGuild(ctx, &entities.GuildConfig{ID: "G", SupportRoleIDs: []string{"R1"}}))
	require.NoError(t, s.SaveSession(ctx, &entities.ConfigSession{GuildID: "G", Language: entities.LanguageEnglish}))

	reopened, err := NewFileStore(ctx, testLogger(t), dir)
	require.NoError(t, err)

	g, err := reopened.GetGuildByID(ctx, "G")
	require.NoError(t, err)
	require.Equal(t, []string{"R1"}, g.SupportRoleIDs)

	sess, err := reopened.GetSession(ctx, "G")
	require.NoError(t, err)
	require.Equal(t, entities.LanguageEnglish, sess.Language)
}

func TestFileStore_CorruptIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, collectionGuilds), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, collectionGuilds, "G.json"), []byte(`{"guild_id":`), 0o644))

	_, err := NewFileStore(context.Background(), testLogger(t), dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "corrupt document")
}

func TestFileStore_FailedWriteKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(ctx, testLogger(t), dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveGuild(ctx, &entities.GuildConfig{ID: "G", SupportRoleIDs: []string{"R1"}}))

	// A read-only collection directory makes the next write fail before the rename.
	guilds := filepath.Join(dir, collectionGuilds)
	require.NoError(t, os.Chmod(guilds, 0o555))
	t.Cleanup(func() { _ = os.Chmod(guilds, 0o755) })

	if f, err := os.CreateTemp(guilds, "writable-*"); err == nil {
		// Running as a user that ignores directory permissions.
		f.Close()
		os.Remove(f.Name())
		t.Skip("directory permissions are not enforced")
	}

	err = s.SaveGuild(ctx, &entities.GuildConfig{ID: "G", SupportRoleIDs: []string{"R2"}})
	require.ErrorIs(t, err, apperrors.ErrStorageWriteFailed)

	g, err := s.GetGuildByID(ctx, "G")
	require.NoError(t, err)
	require.Equal(t, []string{"R1"}, g.SupportRoleIDs)
}

func TestFileStore_RejectsPathElements(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(ctx, testLogger(t), t.TempDir())
	require.NoError(t, err)

	err = s.SaveGuild(ctx, &entities.GuildConfig{ID: "../escape"})
	require.ErrorIs(t, err, apperrors.ErrStorageWriteFailed)

	_, err = s.GetTicket(ctx, "G", "a/b")
	require.Error(t, err)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(ctx, testLogger(t), dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveTranscript(ctx, &entities.TranscriptRecord{Name: "transcript-a.json"}))
	require.NoError(t, s.SaveGuild(ctx, &entities.GuildConfig{ID: "G"}))

	for _, coll := range []string{collectionTranscripts, collectionGuilds} {
		entries, err := os.ReadDir(filepath.Join(dir, coll))
		require.NoError(t, err)
		require.Len(t, entries, 1, coll)
	}
}
