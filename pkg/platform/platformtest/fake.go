// Package platformtest provides an in-memory chat platform for tests.
package platformtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/platform"
)

// Fake is an in-memory platform.Platform. It is safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	seq      int
	clock    time.Time
	guilds   map[string]*platform.Guild
	roles    map[string][]*platform.Role
	channels map[string]*platform.Channel
	messages map[string][]*platform.Message
	sent     map[string][]*platform.MessageSend
	created  []*platform.Channel
	deleted  []string

	// CreateDelay is slept inside CreateChannel, outside the lock, to widen race windows.
	CreateDelay time.Duration

	// ListDelay is slept inside GuildChannels after the snapshot is taken, outside the lock.
	ListDelay time.Duration

	// CreateErr, when set, is consulted before a channel is created.
	CreateErr func(data *platform.ChannelCreate) error

	// DeleteErr, when set, is consulted before a channel is deleted.
	DeleteErr func(channelID string) error

	// SendErr, when set, is consulted before a message is sent.
	SendErr func(channelID string) error
}

var _ platform.Platform = (*Fake)(nil)

// New creates an empty fake platform.
func New() *Fake {
	return &Fake{
		clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		guilds:   make(map[string]*platform.Guild),
		roles:    make(map[string][]*platform.Role),
		channels: make(map[string]*platform.Channel),
		messages: make(map[string][]*platform.Message),
		sent:     make(map[string][]*platform.MessageSend),
	}
}

func (f *Fake) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *Fake) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

// AddGuild registers a guild.
func (f *Fake) AddGuild(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guilds[id] = &platform.Guild{ID: id, Name: name}
}

// AddRole registers a role in a guild.
func (f *Fake) AddRole(guildID string, r *platform.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[guildID] = append(f.roles[guildID], r)
}

// AddChannel registers an existing channel. An empty ID is generated.
func (f *Fake) AddChannel(c *platform.Channel) *platform.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == "" {
		c.ID = f.nextID("c")
	}
	f.channels[c.ID] = c
	return c
}

// AddMessage appends a message to a channel's history. Timestamps are kept as given.
func (f *Fake) AddMessage(m *platform.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == "" {
		m.ID = f.nextID("m")
	}
	f.messages[m.ChannelID] = append(f.messages[m.ChannelID], m)
}

// Created returns every channel created through CreateChannel.
func (f *Fake) Created() []*platform.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*platform.Channel(nil), f.created...)
}

// Deleted returns the IDs of every channel deleted.
func (f *Fake) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// Sent returns the messages sent to a channel.
func (f *Fake) Sent(channelID string) []*platform.MessageSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*platform.MessageSend(nil), f.sent[channelID]...)
}

// HasChannel reports whether a channel currently exists.
func (f *Fake) HasChannel(channelID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.channels[channelID]
	return ok
}

func cloneChannel(c *platform.Channel) platform.Channel {
	cp := *c
	cp.Overwrites = append([]platform.Overwrite(nil), c.Overwrites...)
	return cp
}

func (f *Fake) Guild(_ context.Context, guildID string) (*platform.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guilds[guildID]
	if !ok {
		return nil, fmt.Errorf("guild %s: %w", guildID, apperrors.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

func (f *Fake) GuildRoles(_ context.Context, guildID string) ([]*platform.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roles := make([]*platform.Role, 0, len(f.roles[guildID]))
	for _, r := range f.roles[guildID] {
		cp := *r
		roles = append(roles, &cp)
	}
	return roles, nil
}

func (f *Fake) GuildChannels(_ context.Context, guildID string) ([]*platform.Channel, error) {
	f.mu.Lock()
	chs := make([]*platform.Channel, 0)
	for _, c := range f.channels {
		if c.GuildID == guildID {
			cp := cloneChannel(c)
			chs = append(chs, &cp)
		}
	}
	f.mu.Unlock()

	sort.Slice(chs, func(i, j int) bool { return chs[i].ID < chs[j].ID })
	if f.ListDelay > 0 {
		time.Sleep(f.ListDelay)
	}
	return chs, nil
}

func (f *Fake) Channel(_ context.Context, channelID string) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, apperrors.ErrNotFound)
	}
	cp := cloneChannel(c)
	return &cp, nil
}

func (f *Fake) CreateChannel(_ context.Context, guildID string, data *platform.ChannelCreate) (*platform.Channel, error) {
	if f.CreateErr != nil {
		if err := f.CreateErr(data); err != nil {
			return nil, err
		}
	}
	if f.CreateDelay > 0 {
		time.Sleep(f.CreateDelay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c := &platform.Channel{
		ID:         f.nextID("c"),
		GuildID:    guildID,
		Name:       data.Name,
		Topic:      data.Topic,
		ParentID:   data.ParentID,
		Type:       data.Type,
		Overwrites: append([]platform.Overwrite(nil), data.Overwrites...),
	}
	f.channels[c.ID] = c
	f.created = append(f.created, c)
	cp := cloneChannel(c)
	return &cp, nil
}

func (f *Fake) DeleteChannel(_ context.Context, channelID string) error {
	if f.DeleteErr != nil {
		if err := f.DeleteErr(channelID); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return fmt.Errorf("channel %s: %w", channelID, apperrors.ErrNotFound)
	}
	delete(f.channels, channelID)
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *Fake) ApplyOverwrites(_ context.Context, channelID string, overwrites []platform.Overwrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.channels[channelID]
	if !ok {
		return fmt.Errorf("channel %s: %w", channelID, apperrors.ErrNotFound)
	}

	for _, ow := range overwrites {
		replaced := false
		for i := range c.Overwrites {
			if c.Overwrites[i].ID == ow.ID {
				c.Overwrites[i] = ow
				replaced = true
				break
			}
		}
		if !replaced {
			c.Overwrites = append(c.Overwrites, ow)
		}
	}
	return nil
}

func (f *Fake) DeleteOverwrite(_ context.Context, channelID string, targetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.channels[channelID]
	if !ok {
		return fmt.Errorf("channel %s: %w", channelID, apperrors.ErrNotFound)
	}

	kept := make([]platform.Overwrite, 0, len(c.Overwrites))
	for _, ow := range c.Overwrites {
		if ow.ID != targetID {
			kept = append(kept, ow)
		}
	}
	c.Overwrites = kept
	return nil
}

func (f *Fake) SendMessage(_ context.Context, channelID string, msg *platform.MessageSend) (*platform.Message, error) {
	if f.SendErr != nil {
		if err := f.SendErr(channelID); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, apperrors.ErrNotFound)
	}

	m := &platform.Message{
		ID:        f.nextID("m"),
		ChannelID: channelID,
		Author:    platform.User{ID: "bot", Username: "ticketeer", Bot: true},
		Content:   msg.Content,
		Timestamp: f.tick(),
		Embeds:    append([]platform.Embed(nil), msg.Embeds...),
	}
	f.messages[channelID] = append(f.messages[channelID], m)
	f.sent[channelID] = append(f.sent[channelID], msg)
	cp := *m
	return &cp, nil
}

func (f *Fake) Message(_ context.Context, channelID string, messageID string) (*platform.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, apperrors.ErrNotFound)
	}
	for _, m := range f.messages[channelID] {
		if m.ID == messageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("message %s: %w", messageID, apperrors.ErrNotFound)
}

// ChannelMessages returns the most recent messages newest first, as the platform does.
func (f *Fake) ChannelMessages(_ context.Context, channelID string, limit int) ([]*platform.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, apperrors.ErrNotFound)
	}

	all := append([]*platform.Message(nil), f.messages[channelID]...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	out := make([]*platform.Message, 0, len(all))
	for _, m := range all {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}
