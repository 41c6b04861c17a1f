package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform/platformtest"
	"github.com/stretchr/testify/require"
)

var admin = platform.User{ID: "A", Username: "admin"}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	l, err := logging.CommonLogger(logging.NewConfig(`tests`).WithOutput(io.Discard))
	require.NoError(t, err)
	return l
}

func newTestFlow(t *testing.T) (*Flow, *dataaccess.ConfigStore, *platformtest.Fake) {
	fake := platformtest.New()
	fake.AddGuild("G", "Guild")
	fake.AddRole("G", &platform.Role{ID: "G", Name: "@everyone", Position: 0})
	fake.AddRole("G", &platform.Role{ID: "R1", Name: "Staff", Position: 5})
	fake.AddRole("G", &platform.Role{ID: "R2", Name: "Mods", Position: 3})
	fake.AddRole("G", &platform.Role{ID: "B", Name: "Bot", Position: 9, Managed: true})

	l := testLogger(t)
	configs := dataaccess.NewConfigStore(l, dataaccess.NewMemoryStore())
	return NewFlow(l, configs, fake), configs, fake
}

func TestCandidateRoles(t *testing.T) {
	roles := []*platform.Role{
		{ID: "G", Position: 0},
		{ID: "low", Position: 1},
		{ID: "managed", Position: 8, Managed: true},
		{ID: "high", Position: 7},
	}
	got := CandidateRoles("G", roles)
	require.Len(t, got, 2)
	require.Equal(t, "high", got[0].ID)
	require.Equal(t, "low", got[1].ID)

	many := make([]*platform.Role, 0, 40)
	for i := 0; i < 40; i++ {
		many = append(many, &platform.Role{ID: fmt.Sprintf("R%d", i), Position: i})
	}
	got = CandidateRoles("G", many)
	require.Len(t, got, MaxCandidateRoles)
	require.Equal(t, "R39", got[0].ID)
}

func TestFlow_Configure(t *testing.T) {
	ctx := context.Background()
	flow, configs, fake := newTestFlow(t)

	candidates, err := flow.Start(ctx, "G", admin, entities.LanguageEnglish)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, "R1", candidates[0].ID)

	session, err := configs.GetSession(ctx, "G")
	require.NoError(t, err)
	require.Equal(t, entities.LanguageEnglish, session.Language)

	_, err = configs.Get(ctx, "G")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	cfg, err := flow.CompleteSelection(ctx, "G", []string{"R1", "R2"})
	require.NoError(t, err)
	require.True(t, cfg.Configured())
	require.Equal(t, entities.LanguageEnglish, cfg.Language)
	require.Equal(t, []string{"R1", "R2"}, cfg.SupportRoleIDs)

	stored, err := configs.Get(ctx, "G")
	require.NoError(t, err)
	require.Equal(t, cfg.TicketCategoryID, stored.TicketCategoryID)
	require.Equal(t, cfg.OpenTicketChannelID, stored.OpenTicketChannelID)
	require.Equal(t, cfg.TranscriptChannelID, stored.TranscriptChannelID)
	require.NotEmpty(t, stored.PanelMessageID)

	_, err = configs.GetSession(ctx, "G")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	created := fake.Created()
	require.Len(t, created, 3)
	require.Equal(t, platform.ChannelTypeCategory, created[0].Type)
	require.Equal(t, cfg.TicketCategoryID, created[1].ParentID)
	require.Equal(t, cfg.TicketCategoryID, created[2].ParentID)

	open, err := fake.Channel(ctx, cfg.OpenTicketChannelID)
	require.NoError(t, err)
	everyone := overwriteFor(t, open.Overwrites, "G")
	require.True(t, everyone.Allow.Has(platform.PermissionViewChannel))
	require.True(t, everyone.Deny.Has(platform.PermissionSendMessages))
	require.True(t, overwriteFor(t, open.Overwrites, "R1").Allow.Has(platform.PermissionSendMessages))

	transcript, err := fake.Channel(ctx, cfg.TranscriptChannelID)
	require.NoError(t, err)
	require.True(t, overwriteFor(t, transcript.Overwrites, "G").Deny.Has(platform.PermissionViewChannel))
	require.True(t, overwriteFor(t, transcript.Overwrites, "R2").Allow.Has(platform.PermissionViewChannel))

	panel := fake.Sent(cfg.OpenTicketChannelID)
	require.Len(t, panel, 1)
	require.Equal(t, entities.ComponentCreateTicket, panel[0].Buttons[0].CustomID)
}

func TestFlow_Idempotent(t *testing.T) {
	ctx := context.Background()
	flow, _, fake := newTestFlow(t)

	var first *entities.GuildConfig
	for i := 0; i < 2; i++ {
		_, err := flow.Start(ctx, "G", admin, entities.LanguageFrench)
		require.NoError(t, err)
		cfg, err := flow.CompleteSelection(ctx, "G", []string{"R1", "R2"})
		require.NoError(t, err)
		if first == nil {
			first = cfg
			continue
		}
		require.Equal(t, first.TicketCategoryID, cfg.TicketCategoryID)
		require.Equal(t, first.OpenTicketChannelID, cfg.OpenTicketChannelID)
		require.Equal(t, first.TranscriptChannelID, cfg.TranscriptChannelID)
		require.Equal(t, first.PanelMessageID, cfg.PanelMessageID)
	}

	require.Len(t, fake.Created(), 3)
	require.Len(t, fake.Sent(first.OpenTicketChannelID), 1)
}

func TestFlow_ReconfigureUpdatesPermissions(t *testing.T) {
	ctx := context.Background()
	flow, _, fake := newTestFlow(t)

	_, err := flow.Start(ctx, "G", admin, entities.LanguageFrench)
	require.NoError(t, err)
	_, err = flow.CompleteSelection(ctx, "G", []string{"R1"})
	require.NoError(t, err)

	_, err = flow.Start(ctx, "G", admin, entities.LanguageFrench)
	require.NoError(t, err)
	cfg, err := flow.CompleteSelection(ctx, "G", []string{"R1", "R2"})
	require.NoError(t, err)
	require.Equal(t, []string{"R1", "R2"}, cfg.SupportRoleIDs)

	transcript, err := fake.Channel(ctx, cfg.TranscriptChannelID)
	require.NoError(t, err)
	require.True(t, overwriteFor(t, transcript.Overwrites, "R2").Allow.Has(platform.PermissionViewChannel))
	require.Len(t, fake.Created(), 3)

	// A member added by hand keeps access when the roles change.
	require.NoError(t, fake.ApplyOverwrites(ctx, cfg.TranscriptChannelID, []platform.Overwrite{{
		ID:    "M",
		Type:  platform.OverwriteTypeMember,
		Allow: platform.PermissionViewChannel,
	}}))

	_, err = flow.Start(ctx, "G", admin, entities.LanguageFrench)
	require.NoError(t, err)
	cfg, err = flow.CompleteSelection(ctx, "G", []string{"R2"})
	require.NoError(t, err)
	require.Equal(t, []string{"R2"}, cfg.SupportRoleIDs)

	for _, id := range []string{cfg.TicketCategoryID, cfg.OpenTicketChannelID, cfg.TranscriptChannelID} {
		ch, err := fake.Channel(ctx, id)
		require.NoError(t, err)
		for _, ow := range ch.Overwrites {
			require.NotEqual(t, "R1", ow.ID, "channel %s still grants the removed role", ch.Name)
		}
		overwriteFor(t, ch.Overwrites, "G")
		overwriteFor(t, ch.Overwrites, "R2")
	}

	transcript, err = fake.Channel(ctx, cfg.TranscriptChannelID)
	require.NoError(t, err)
	require.True(t, overwriteFor(t, transcript.Overwrites, "G").Deny.Has(platform.PermissionViewChannel))
	require.True(t, overwriteFor(t, transcript.Overwrites, "M").Allow.Has(platform.PermissionViewChannel))
	require.Len(t, fake.Created(), 3)
}

func TestFlow_ConcurrentSelection(t *testing.T) {
	ctx := context.Background()
	flow, configs, fake := newTestFlow(t)
	fake.ListDelay = 20 * time.Millisecond

	_, err := flow.Start(ctx, "G", admin, entities.LanguageEnglish)
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = flow.CompleteSelection(ctx, "G", []string{"R1"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	}
	require.Equal(t, 1, succeeded)
	require.Len(t, fake.Created(), 3)

	cfg, err := configs.Get(ctx, "G")
	require.NoError(t, err)
	require.True(t, cfg.Configured())
	require.Len(t, fake.Sent(cfg.OpenTicketChannelID), 1)
}

func TestStaleRoles(t *testing.T) {
	current := []platform.Overwrite{
		{ID: "G", Type: platform.OverwriteTypeRole},
		{ID: "R1", Type: platform.OverwriteTypeRole},
		{ID: "R2", Type: platform.OverwriteTypeRole},
		{ID: "M", Type: platform.OverwriteTypeMember},
	}
	wanted := []platform.Overwrite{
		{ID: "G", Type: platform.OverwriteTypeRole},
		{ID: "R2", Type: platform.OverwriteTypeRole},
	}
	require.Equal(t, []string{"R1"}, staleRoles(current, wanted))
	require.Empty(t, staleRoles(wanted, wanted))
}

func TestFlow_ReusesChannelsByName(t *testing.T) {
	ctx := context.Background()
	flow, _, fake := newTestFlow(t)

	category := fake.AddChannel(&platform.Channel{GuildID: "G", Name: "tickets", Type: platform.ChannelTypeCategory})
	transcript := fake.AddChannel(&platform.Channel{GuildID: "G", Name: TranscriptChannelName, ParentID: category.ID})

	_, err := flow.Start(ctx, "G", admin, entities.LanguageEnglish)
	require.NoError(t, err)
	cfg, err := flow.CompleteSelection(ctx, "G", []string{"R1"})
	require.NoError(t, err)

	require.Equal(t, category.ID, cfg.TicketCategoryID)
	require.Equal(t, transcript.ID, cfg.TranscriptChannelID)
	require.Len(t, fake.Created(), 1)
}

func TestFlow_NoSession(t *testing.T) {
	ctx := context.Background()
	flow, configs, fake := newTestFlow(t)

	_, err := flow.CompleteSelection(ctx, "G", []string{"R1"})
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	_, err = configs.Get(ctx, "G")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Empty(t, fake.Created())

	// A consumed session cannot be completed twice.
	_, err = flow.Start(ctx, "G", admin, entities.LanguageEnglish)
	require.NoError(t, err)
	_, err = flow.CompleteSelection(ctx, "G", []string{"R1"})
	require.NoError(t, err)
	_, err = flow.CompleteSelection(ctx, "G", []string{"R2"})
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	cfg, err := configs.Get(ctx, "G")
	require.NoError(t, err)
	require.Equal(t, []string{"R1"}, cfg.SupportRoleIDs)
}

func TestFlow_InvalidSelection(t *testing.T) {
	ctx := context.Background()
	flow, configs, _ := newTestFlow(t)

	_, err := flow.Start(ctx, "G", admin, entities.LanguageEnglish)
	require.NoError(t, err)

	tooMany := make([]string, 0, entities.MaxSupportRoles+1)
	for i := 0; i <= entities.MaxSupportRoles; i++ {
		tooMany = append(tooMany, fmt.Sprintf("R%d", i))
	}

	tests := []struct {
		name  string
		roles []string
	}{
		{name: "empty", roles: nil},
		{name: "blank", roles: []string{" "}},
		{name: "too many", roles: tooMany},
		{name: "everyone", roles: []string{"G"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flow.CompleteSelection(ctx, "G", tt.roles)
			require.ErrorIs(t, err, apperrors.ErrInvalidSelection)
		})
	}

	_, err = configs.Get(ctx, "G")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = configs.GetSession(ctx, "G")
	require.NoError(t, err)
}

func TestFlow_PartialFailureRecovers(t *testing.T) {
	ctx := context.Background()
	flow, configs, fake := newTestFlow(t)

	fake.CreateErr = func(data *platform.ChannelCreate) error {
		if data.Name == TranscriptChannelName {
			return errors.New("missing permissions")
		}
		return nil
	}

	_, err := flow.Start(ctx, "G", admin, entities.LanguageEnglish)
	require.NoError(t, err)
	_, err = flow.CompleteSelection(ctx, "G", []string{"R1", "R2"})
	require.ErrorIs(t, err, apperrors.ErrPlatformActionFailed)

	partial, err := configs.Get(ctx, "G")
	require.NoError(t, err)
	require.NotEmpty(t, partial.TicketCategoryID)
	require.NotEmpty(t, partial.OpenTicketChannelID)
	require.Empty(t, partial.TranscriptChannelID)
	require.False(t, partial.Configured())

	// The session survives so the same selection can be retried.
	_, err = configs.GetSession(ctx, "G")
	require.NoError(t, err)

	fake.CreateErr = nil
	cfg, err := flow.CompleteSelection(ctx, "G", []string{"R1", "R2"})
	require.NoError(t, err)
	require.True(t, cfg.Configured())
	require.Equal(t, partial.TicketCategoryID, cfg.TicketCategoryID)
	require.Equal(t, partial.OpenTicketChannelID, cfg.OpenTicketChannelID)
	require.Len(t, fake.Created(), 3)
}

func TestFlow_RecreatesDeletedChannel(t *testing.T) {
	ctx := context.Background()
	flow, _, fake := newTestFlow(t)

	_, err := flow.Start(ctx, "G", admin, entities.LanguageEnglish)
	require.NoError(t, err)
	first, err := flow.CompleteSelection(ctx, "G", []string{"R1"})
	require.NoError(t, err)

	require.NoError(t, fake.DeleteChannel(ctx, first.OpenTicketChannelID))

	_, err = flow.Start(ctx, "G", admin, entities.LanguageEnglish)
	require.NoError(t, err)
	cfg, err := flow.CompleteSelection(ctx, "G", []string{"R1"})
	require.NoError(t, err)

	require.NotEqual(t, first.OpenTicketChannelID, cfg.OpenTicketChannelID)
	require.NotEqual(t, first.PanelMessageID, cfg.PanelMessageID)
	require.Len(t, fake.Sent(cfg.OpenTicketChannelID), 1)
	require.Len(t, fake.Created(), 4)
}

func overwriteFor(t *testing.T, ows []platform.Overwrite, id string) platform.Overwrite {
	t.Helper()
	for _, ow := range ows {
		if ow.ID == id {
			return ow
		}
	}
	require.Failf(t, "overwrite not found", "no overwrite for %s", id)
	return platform.Overwrite{}
}
