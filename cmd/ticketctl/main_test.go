package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *slog.Logger {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`).WithOutput(io.Discard))
	require.NoError(t, err)
	return l
}

// seedStore writes a configured guild, a pending session and a ticket to a new file store.
func seedStore(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	s, err := dataaccess.NewFileStore(ctx, testLogger(t), dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveGuild(ctx, &entities.GuildConfig{ID: "G", Language: entities.LanguageEnglish, SupportRoleIDs: []string{"R1"}}))
	require.NoError(t, s.SaveSession(ctx, &entities.ConfigSession{GuildID: "G", Language: entities.LanguageEnglish}))
	require.NoError(t, s.SaveTicket(ctx, &entities.Ticket{ChannelID: "C", GuildID: "G", AuthorID: "U", State: entities.TicketStateOpen}))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	storeOpts = dataaccess.OpenOptions{}

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigGet(t *testing.T) {
	dir := seedStore(t)

	out, err := run(t, "config", "get", "G", "--store-path", dir)
	require.NoError(t, err)

	got := new(entities.GuildConfig)
	require.NoError(t, json.Unmarshal([]byte(out), got))
	require.Equal(t, "G", got.ID)
	require.Equal(t, []string{"R1"}, got.SupportRoleIDs)

	_, err = run(t, "config", "get", "missing", "--store-path", dir)
	require.ErrorContains(t, err, "has no configuration")
}

func TestSessionClear(t *testing.T) {
	dir := seedStore(t)

	out, err := run(t, "session", "clear", "G", "--store-path", dir)
	require.NoError(t, err)
	require.Contains(t, out, "cleared")

	s, err := dataaccess.NewFileStore(context.Background(), testLogger(t), dir)
	require.NoError(t, err)
	_, err = s.GetSession(context.Background(), "G")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTicketGet(t *testing.T) {
	dir := seedStore(t)

	out, err := run(t, "ticket", "get", "G", "C", "--store-path", dir)
	require.NoError(t, err)

	got := new(entities.Ticket)
	require.NoError(t, json.Unmarshal([]byte(out), got))
	require.Equal(t, "U", got.AuthorID)
	require.Equal(t, entities.TicketStateOpen, got.State)

	_, err = run(t, "ticket", "get", "G", "other", "--store-path", dir)
	require.ErrorContains(t, err, "is not a ticket")

	_, err = run(t, "ticket", "get", "G", "--store-path", dir)
	require.Error(t, err)
}
