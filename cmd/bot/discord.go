package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
)

// discordPlatform drives the guilds through a discord session.
type discordPlatform struct {
	s *discordgo.Session
}

func newDiscordPlatform(s *discordgo.Session) *discordPlatform {
	return &discordPlatform{s: s}
}

// notFound tags the errors discord returns for missing channels and messages with apperrors.ErrNotFound.
func notFound(err error) error {
	if err == nil {
		return nil
	}

	er := new(discordgo.RESTError)
	if !errors.As(err, &er) {
		return err
	}

	if er.Response != nil && er.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	}
	if er.Message != nil && (er.Message.Code == discordgo.ErrCodeUnknownChannel || er.Message.Code == discordgo.ErrCodeUnknownMessage) {
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	}
	return err
}

func (d *discordPlatform) Guild(ctx context.Context, guildID string) (*platform.Guild, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.s.State != nil {
		if g, err := d.s.State.Guild(guildID); err == nil {
			return &platform.Guild{ID: g.ID, Name: g.Name}, nil
		}
	}

	g, err := d.s.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild: %w", notFound(err))
	}
	return &platform.Guild{ID: g.ID, Name: g.Name}, nil
}

func (d *discordPlatform) GuildRoles(ctx context.Context, guildID string) ([]*platform.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roles, err := d.s.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild roles: %w", notFound(err))
	}

	out := make([]*platform.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, &platform.Role{
			ID:       r.ID,
			Name:     r.Name,
			Position: r.Position,
			Managed:  r.Managed,
		})
	}
	return out, nil
}

func (d *discordPlatform) GuildChannels(ctx context.Context, guildID string) ([]*platform.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	channels, err := d.s.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild channels: %w", notFound(err))
	}

	out := make([]*platform.Channel, 0, len(channels))
	for _, c := range channels {
		out = append(out, toChannel(c))
	}
	return out, nil
}

func (d *discordPlatform) Channel(ctx context.Context, channelID string) (*platform.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := d.s.Channel(channelID)
	if err != nil {
		return nil, fmt.Errorf("error getting channel: %w", notFound(err))
	}
	return toChannel(c), nil
}

func (d *discordPlatform) CreateChannel(ctx context.Context, guildID string, data *platform.ChannelCreate) (*platform.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := d.s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 data.Name,
		Type:                 fromChannelType(data.Type),
		Topic:                data.Topic,
		ParentID:             data.ParentID,
		PermissionOverwrites: fromOverwrites(data.Overwrites),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating channel: %w", err)
	}
	return toChannel(c), nil
}

func (d *discordPlatform) DeleteChannel(ctx context.Context, channelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := d.s.ChannelDelete(channelID); err != nil {
		return fmt.Errorf("error deleting channel: %w", notFound(err))
	}
	return nil
}

func (d *discordPlatform) ApplyOverwrites(ctx context.Context, channelID string, overwrites []platform.Overwrite) error {
	for _, o := range overwrites {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := d.s.ChannelPermissionSet(channelID, o.ID, fromOverwriteType(o.Type), int64(o.Allow), int64(o.Deny)); err != nil {
			return fmt.Errorf("error setting permissions of %s: %w", o.ID, notFound(err))
		}
	}
	return nil
}

func (d *discordPlatform) DeleteOverwrite(ctx context.Context, channelID string, targetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := d.s.ChannelPermissionDelete(channelID, targetID); err != nil {
		return fmt.Errorf("error deleting permissions of %s: %w", targetID, notFound(err))
	}
	return nil
}

func (d *discordPlatform) SendMessage(ctx context.Context, channelID string, msg *platform.MessageSend) (*platform.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := d.s.ChannelMessageSendComplex(channelID, fromMessageSend(msg))
	if err != nil {
		return nil, fmt.Errorf("error sending message: %w", notFound(err))
	}
	return toMessage(m), nil
}

func (d *discordPlatform) Message(ctx context.Context, channelID string, messageID string) (*platform.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := d.s.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, fmt.Errorf("error getting message: %w", notFound(err))
	}
	return toMessage(m), nil
}

func (d *discordPlatform) ChannelMessages(ctx context.Context, channelID string, limit int) ([]*platform.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msgs, err := d.s.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting channel messages: %w", notFound(err))
	}

	out := make([]*platform.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessage(m))
	}
	return out, nil
}

func toChannel(c *discordgo.Channel) *platform.Channel {
	ch := &platform.Channel{
		ID:         c.ID,
		GuildID:    c.GuildID,
		Name:       c.Name,
		Topic:      c.Topic,
		ParentID:   c.ParentID,
		Type:       platform.ChannelTypeText,
		Overwrites: make([]platform.Overwrite, 0, len(c.PermissionOverwrites)),
	}
	if c.Type == discordgo.ChannelTypeGuildCategory {
		ch.Type = platform.ChannelTypeCategory
	}

	for _, o := range c.PermissionOverwrites {
		typ := platform.OverwriteTypeRole
		if o.Type == discordgo.PermissionOverwriteTypeMember {
			typ = platform.OverwriteTypeMember
		}
		ch.Overwrites = append(ch.Overwrites, platform.Overwrite{
			ID:    o.ID,
			Type:  typ,
			Allow: platform.Permission(o.Allow),
			Deny:  platform.Permission(o.Deny),
		})
	}
	return ch
}

func fromChannelType(t platform.ChannelType) discordgo.ChannelType {
	if t == platform.ChannelTypeCategory {
		return discordgo.ChannelTypeGuildCategory
	}
	return discordgo.ChannelTypeGuildText
}

func fromOverwriteType(t platform.OverwriteType) discordgo.PermissionOverwriteType {
	if t == platform.OverwriteTypeMember {
		return discordgo.PermissionOverwriteTypeMember
	}
	return discordgo.PermissionOverwriteTypeRole
}

func fromOverwrites(overwrites []platform.Overwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(overwrites))
	for _, o := range overwrites {
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    o.ID,
			Type:  fromOverwriteType(o.Type),
			Allow: int64(o.Allow),
			Deny:  int64(o.Deny),
		})
	}
	return out
}

func fromEmbed(e platform.Embed) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
		Fields:      make([]*discordgo.MessageEmbedField, 0, len(e.Fields)),
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if e.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	if !e.Timestamp.IsZero() {
		embed.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return embed
}

func fromEmbeds(embeds []platform.Embed) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		out = append(out, fromEmbed(e))
	}
	return out
}

func fromButtonStyle(s platform.ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case platform.ButtonSecondary:
		return discordgo.SecondaryButton
	case platform.ButtonSuccess:
		return discordgo.SuccessButton
	case platform.ButtonDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}

func fromButtons(buttons []platform.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}

	row := discordgo.ActionsRow{Components: make([]discordgo.MessageComponent, 0, len(buttons))}
	for _, b := range buttons {
		row.Components = append(row.Components, discordgo.Button{
			Label:    b.Label,
			Style:    fromButtonStyle(b.Style),
			CustomID: b.CustomID,
		})
	}
	return []discordgo.MessageComponent{row}
}

func fromMessageSend(m *platform.MessageSend) *discordgo.MessageSend {
	out := &discordgo.MessageSend{
		Content:    m.Content,
		Embeds:     fromEmbeds(m.Embeds),
		Components: fromButtons(m.Buttons),
		// Only the listed roles and users may be pinged, never everyone.
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
			Roles: m.MentionRoleIDs,
		},
	}
	for _, f := range m.Files {
		out.Files = append(out.Files, &discordgo.File{
			Name:        f.Name,
			ContentType: f.ContentType,
			Reader:      bytes.NewReader(f.Data),
		})
	}
	return out
}

func toUser(u *discordgo.User) platform.User {
	if u == nil {
		return platform.User{}
	}
	return platform.User{
		ID:       u.ID,
		Username: u.Username,
		Tag:      u.String(),
		Bot:      u.Bot,
	}
}

func toMessage(m *discordgo.Message) *platform.Message {
	msg := &platform.Message{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		Author:      toUser(m.Author),
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		Attachments: make([]platform.Attachment, 0, len(m.Attachments)),
		Embeds:      make([]platform.Embed, 0, len(m.Embeds)),
		Components:  make([]json.RawMessage, 0, len(m.Components)),
	}

	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, platform.Attachment{
			ID:          a.ID,
			Name:        a.Filename,
			URL:         a.URL,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}

	for _, e := range m.Embeds {
		embed := platform.Embed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, platform.EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		if e.Footer != nil {
			embed.Footer = e.Footer.Text
		}
		if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			embed.Timestamp = ts
		}
		msg.Embeds = append(msg.Embeds, embed)
	}

	for _, c := range m.Components {
		raw, err := json.Marshal(c)
		if err != nil {
			continue
		}
		msg.Components = append(msg.Components, raw)
	}
	return msg
}
