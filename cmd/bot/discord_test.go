package main

import (
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
	"github.com/stretchr/testify/require"
)

func restError(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Code: code},
	}
}

func TestNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "status 404", err: restError(http.StatusNotFound, 0), want: true},
		{name: "unknown channel", err: restError(http.StatusBadRequest, discordgo.ErrCodeUnknownChannel), want: true},
		{name: "unknown message", err: restError(http.StatusBadRequest, discordgo.ErrCodeUnknownMessage), want: true},
		{name: "forbidden", err: restError(http.StatusForbidden, 0), want: false},
		{name: "not a rest error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := notFound(tt.err)
			require.Equal(t, tt.want, errors.Is(got, apperrors.ErrNotFound))
			require.ErrorIs(t, got, tt.err)
		})
	}

	require.NoError(t, notFound(nil))
}

func TestToChannel(t *testing.T) {
	c := toChannel(&discordgo.Channel{
		ID:       "C",
		GuildID:  "G",
		Name:     "🎫・Tickets",
		ParentID: "",
		Type:     discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: "G", Type: discordgo.PermissionOverwriteTypeRole, Deny: int64(platform.PermissionViewChannel)},
			{ID: "U", Type: discordgo.PermissionOverwriteTypeMember, Allow: int64(platform.PermissionSendMessages)},
		},
	})

	require.Equal(t, platform.ChannelTypeCategory, c.Type)
	require.Equal(t, []platform.Overwrite{
		{ID: "G", Type: platform.OverwriteTypeRole, Deny: platform.PermissionViewChannel},
		{ID: "U", Type: platform.OverwriteTypeMember, Allow: platform.PermissionSendMessages},
	}, c.Overwrites)

	require.Equal(t, platform.ChannelTypeText, toChannel(&discordgo.Channel{Type: discordgo.ChannelTypeGuildText}).Type)
}

func TestFromOverwrites(t *testing.T) {
	got := fromOverwrites([]platform.Overwrite{
		{ID: "R", Type: platform.OverwriteTypeRole, Allow: platform.PermissionViewChannel},
		{ID: "U", Type: platform.OverwriteTypeMember, Deny: platform.PermissionMentionEveryone},
	})
	require.Len(t, got, 2)
	require.Equal(t, discordgo.PermissionOverwriteTypeRole, got[0].Type)
	require.Equal(t, int64(platform.PermissionViewChannel), got[0].Allow)
	require.Equal(t, discordgo.PermissionOverwriteTypeMember, got[1].Type)
	require.Equal(t, int64(platform.PermissionMentionEveryone), got[1].Deny)
}

func TestFromMessageSend(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := fromMessageSend(&platform.MessageSend{
		Content: "<@&R1>",
		Embeds: []platform.Embed{{
			Title:     "title",
			Fields:    []platform.EmbedField{{Name: "n", Value: "v", Inline: true}},
			Footer:    "footer",
			Timestamp: at,
		}},
		Buttons:        []platform.Button{{CustomID: "close_ticket", Label: "Close", Style: platform.ButtonDanger}},
		Files:          []platform.File{{Name: "a.json", ContentType: "application/json", Data: []byte(`{}`)}},
		MentionRoleIDs: []string{"R1"},
	})

	require.Equal(t, "<@&R1>", msg.Content)
	require.Len(t, msg.Embeds, 1)
	require.Equal(t, "footer", msg.Embeds[0].Footer.Text)
	require.Equal(t, "2024-03-01T10:00:00Z", msg.Embeds[0].Timestamp)
	require.Equal(t, []string{"R1"}, msg.AllowedMentions.Roles)

	require.Len(t, msg.Components, 1)
	row, ok := msg.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	button, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	require.Equal(t, discordgo.DangerButton, button.Style)
	require.Equal(t, "close_ticket", button.CustomID)

	require.Len(t, msg.Files, 1)
	data, err := io.ReadAll(msg.Files[0].Reader)
	require.NoError(t, err)
	require.Equal(t, `{}`, string(data))
}

func TestFromMessageSend_NoButtons(t *testing.T) {
	msg := fromMessageSend(&platform.MessageSend{Content: "hello"})
	require.Nil(t, msg.Components)
	require.Empty(t, msg.Files)
}

func TestToMessage(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := toMessage(&discordgo.Message{
		ID:        "M",
		ChannelID: "C",
		Author:    &discordgo.User{ID: "U", Username: "alice", Discriminator: "0"},
		Content:   "hello",
		Timestamp: at,
		Attachments: []*discordgo.MessageAttachment{
			{ID: "A", Filename: "f.png", URL: "https://cdn/f.png", ContentType: "image/png", Size: 42},
		},
		Embeds: []*discordgo.MessageEmbed{
			{Title: "t", Footer: &discordgo.MessageEmbedFooter{Text: "f"}, Timestamp: "2024-03-01T10:00:00Z"},
		},
	})

	require.Equal(t, "U", m.Author.ID)
	require.Equal(t, "alice", m.Author.Username)
	require.Equal(t, at, m.Timestamp)
	require.Equal(t, []platform.Attachment{{ID: "A", Name: "f.png", URL: "https://cdn/f.png", ContentType: "image/png", Size: 42}}, m.Attachments)
	require.Equal(t, "f", m.Embeds[0].Footer)
	require.Equal(t, at, m.Embeds[0].Timestamp)
	require.NotNil(t, m.Components)
}

func TestToUser_Nil(t *testing.T) {
	require.Equal(t, platform.User{}, toUser(nil))
}
