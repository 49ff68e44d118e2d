// Package discord adapts a discordgo session to the lifecycle core: REST
// calls behind core.Gateway, voice-state events, and the management panel.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dkeye/TempVoice/internal/core"
	"github.com/dkeye/TempVoice/internal/domain"
)

const DefaultTimeout = 10 * time.Second

// ErrMemberNotFound is returned by FetchMember for users not in the guild.
var ErrMemberNotFound = errors.New("member not found")

// Gateway implements core.Gateway for one guild. Occupancy and member voice
// state come from the session state cache, which discordgo keeps current
// from GUILD_CREATE and VOICE_STATE_UPDATE.
type Gateway struct {
	s       *discordgo.Session
	guildID string
	timeout time.Duration
}

var _ core.Gateway = (*Gateway)(nil)

func NewGateway(s *discordgo.Session, guildID string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{s: s, guildID: guildID, timeout: timeout}
}

func (g *Gateway) call(ctx context.Context, fn func(opt discordgo.RequestOption) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return mapErr(fn(discordgo.WithContext(ctx)))
}

func (g *Gateway) CreateRoom(ctx context.Context, spec domain.RoomSpec) (domain.RoomID, error) {
	data := discordgo.GuildChannelCreateData{
		Name:     spec.Name,
		Type:     channelType(spec.Kind),
		ParentID: string(spec.ParentID),
	}
	for _, ow := range spec.Overwrites {
		data.PermissionOverwrites = append(data.PermissionOverwrites, g.toOverwrite(ow))
	}
	var ch *discordgo.Channel
	err := g.call(ctx, func(opt discordgo.RequestOption) (err error) {
		ch, err = g.s.GuildChannelCreateComplex(g.guildID, data, opt)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create channel %q: %w", spec.Name, err)
	}
	return domain.RoomID(ch.ID), nil
}

func (g *Gateway) DeleteRoom(ctx context.Context, id domain.RoomID) error {
	err := g.call(ctx, func(opt discordgo.RequestOption) error {
		_, err := g.s.ChannelDelete(string(id), opt)
		return err
	})
	if errors.Is(err, core.ErrRoomNotFound) {
		return nil
	}
	return err
}

func (g *Gateway) MoveMember(ctx context.Context, user domain.UserID, room *domain.RoomID) error {
	var target *string
	if room != nil {
		id := string(*room)
		target = &id
	}
	return g.call(ctx, func(opt discordgo.RequestOption) error {
		return g.s.GuildMemberMove(g.guildID, string(user), target, opt)
	})
}

func (g *Gateway) FetchRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var ch *discordgo.Channel
	err := g.call(ctx, func(opt discordgo.RequestOption) (err error) {
		ch, err = g.s.Channel(string(id), opt)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ch.GuildID != "" && ch.GuildID != g.guildID {
		return nil, core.ErrRoomNotFound
	}
	r := g.toRoom(ch)
	return &r, nil
}

func (g *Gateway) ListRooms(ctx context.Context, parent domain.RoomID) ([]domain.Room, error) {
	var chans []*discordgo.Channel
	err := g.call(ctx, func(opt discordgo.RequestOption) (err error) {
		chans, err = g.s.GuildChannels(g.guildID, opt)
		return err
	})
	if err != nil {
		return nil, err
	}
	var out []domain.Room
	for _, ch := range chans {
		if ch.ParentID == string(parent) {
			out = append(out, g.toRoom(ch))
		}
	}
	return out, nil
}

// EditRoomPermissions sets the bits the domain models and keeps any other
// bits already present on the target's overwrite.
func (g *Gateway) EditRoomPermissions(ctx context.Context, id domain.RoomID, ow domain.Overwrite) error {
	po := g.toOverwrite(ow)
	cur, err := g.currentOverwrite(ctx, id, po.ID)
	if err != nil {
		return err
	}
	mergeOverwrite(po, cur)
	return g.call(ctx, func(opt discordgo.RequestOption) error {
		return g.s.ChannelPermissionSet(string(id), po.ID, po.Type, po.Allow, po.Deny, opt)
	})
}

// currentOverwrite returns a copy of the overwrite for target on room id, or
// nil when there is none.
func (g *Gateway) currentOverwrite(ctx context.Context, id domain.RoomID, target string) (*discordgo.PermissionOverwrite, error) {
	find := func(ch *discordgo.Channel) *discordgo.PermissionOverwrite {
		for _, po := range ch.PermissionOverwrites {
			if po.ID == target {
				c := *po
				return &c
			}
		}
		return nil
	}
	if ch, err := g.s.State.Channel(string(id)); err == nil {
		g.s.State.RLock()
		defer g.s.State.RUnlock()
		return find(ch), nil
	}
	var ch *discordgo.Channel
	err := g.call(ctx, func(opt discordgo.RequestOption) (err error) {
		ch, err = g.s.Channel(string(id), opt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return find(ch), nil
}

// mergeOverwrite carries over bits of cur that no domain permission maps to.
func mergeOverwrite(po, cur *discordgo.PermissionOverwrite) {
	if cur == nil {
		return
	}
	po.Allow |= cur.Allow &^ knownBits
	po.Deny |= cur.Deny &^ knownBits
}

func (g *Gateway) EditRoomName(ctx context.Context, id domain.RoomID, name string) error {
	return g.call(ctx, func(opt discordgo.RequestOption) error {
		_, err := g.s.ChannelEdit(string(id), &discordgo.ChannelEdit{Name: name}, opt)
		return err
	})
}

// EditRoomLimit patches user_limit directly: ChannelEdit omits a zero
// limit, and zero is how the limit is removed.
func (g *Gateway) EditRoomLimit(ctx context.Context, id domain.RoomID, limit int) error {
	endpoint := discordgo.EndpointChannel(string(id))
	body := map[string]int{"user_limit": limit}
	return g.call(ctx, func(opt discordgo.RequestOption) error {
		_, err := g.s.RequestWithBucketID(http.MethodPatch, endpoint, body, endpoint, opt)
		return err
	})
}

// RoomOccupants reads voice states from the state cache. A room missing
// from the cache is confirmed over REST before occupancy is reported.
func (g *Gateway) RoomOccupants(ctx context.Context, id domain.RoomID) ([]domain.UserID, error) {
	if _, err := g.s.State.Channel(string(id)); err != nil {
		if _, err := g.FetchRoom(ctx, id); err != nil {
			return nil, err
		}
	}
	guild, err := g.s.State.Guild(g.guildID)
	if err != nil {
		return nil, fmt.Errorf("guild %s not in state: %w", g.guildID, err)
	}
	g.s.State.RLock()
	defer g.s.State.RUnlock()
	var out []domain.UserID
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == string(id) {
			out = append(out, domain.UserID(vs.UserID))
		}
	}
	slices.Sort(out)
	return out, nil
}

func (g *Gateway) FetchMember(ctx context.Context, id domain.UserID) (*domain.Member, error) {
	m, err := g.s.State.Member(g.guildID, string(id))
	if err != nil {
		err = g.call(ctx, func(opt discordgo.RequestOption) (err error) {
			m, err = g.s.GuildMember(g.guildID, string(id), opt)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	out := toMember(m)
	if vs, err := g.s.State.VoiceState(g.guildID, string(id)); err == nil && vs.ChannelID != "" {
		room := domain.RoomID(vs.ChannelID)
		out.RoomID = &room
	}
	return &out, nil
}

func (g *Gateway) toRoom(ch *discordgo.Channel) domain.Room {
	r := domain.Room{
		ID:        domain.RoomID(ch.ID),
		Name:      ch.Name,
		Kind:      roomKind(ch.Type),
		ParentID:  domain.RoomID(ch.ParentID),
		UserLimit: ch.UserLimit,
	}
	for _, po := range ch.PermissionOverwrites {
		r.Overwrites = append(r.Overwrites, g.fromOverwrite(po))
	}
	return r
}

func (g *Gateway) toOverwrite(ow domain.Overwrite) *discordgo.PermissionOverwrite {
	po := &discordgo.PermissionOverwrite{
		ID:    ow.Target.ID,
		Type:  discordgo.PermissionOverwriteTypeRole,
		Allow: toPerms(ow.Allow),
		Deny:  toPerms(ow.Deny),
	}
	switch ow.Target.Kind {
	case domain.TargetEveryone:
		// The everyone role shares the guild's id.
		po.ID = g.guildID
	case domain.TargetMember:
		po.Type = discordgo.PermissionOverwriteTypeMember
	}
	return po
}

func (g *Gateway) fromOverwrite(po *discordgo.PermissionOverwrite) domain.Overwrite {
	t := domain.Target{Kind: domain.TargetRole, ID: po.ID}
	switch {
	case po.Type == discordgo.PermissionOverwriteTypeMember:
		t.Kind = domain.TargetMember
	case po.ID == g.guildID:
		t = domain.Everyone
	}
	return domain.Overwrite{Target: t, Allow: fromPerms(po.Allow), Deny: fromPerms(po.Deny)}
}

var permTable = []struct {
	domain  domain.Permission
	discord int64
}{
	{domain.PermViewRoom, discordgo.PermissionViewChannel},
	{domain.PermConnect, discordgo.PermissionVoiceConnect},
	{domain.PermSpeak, discordgo.PermissionVoiceSpeak},
	{domain.PermSendMessages, discordgo.PermissionSendMessages},
	{domain.PermManageRoom, discordgo.PermissionManageChannels},
	{domain.PermMoveMembers, discordgo.PermissionVoiceMoveMembers},
	{domain.PermMuteMembers, discordgo.PermissionVoiceMuteMembers},
	{domain.PermDeafenMembers, discordgo.PermissionVoiceDeafenMembers},
}

var knownBits = func() int64 {
	var out int64
	for _, e := range permTable {
		out |= e.discord
	}
	return out
}()

func toPerms(p domain.Permission) int64 {
	var out int64
	for _, e := range permTable {
		if p.Has(e.domain) {
			out |= e.discord
		}
	}
	return out
}

// fromPerms drops Discord bits with no domain counterpart.
func fromPerms(bits int64) domain.Permission {
	var out domain.Permission
	for _, e := range permTable {
		if bits&e.discord != 0 {
			out |= e.domain
		}
	}
	return out
}

func channelType(k domain.RoomKind) discordgo.ChannelType {
	switch k {
	case domain.KindCategory:
		return discordgo.ChannelTypeGuildCategory
	case domain.KindText:
		return discordgo.ChannelTypeGuildText
	default:
		return discordgo.ChannelTypeGuildVoice
	}
}

func roomKind(t discordgo.ChannelType) domain.RoomKind {
	switch t {
	case discordgo.ChannelTypeGuildCategory:
		return domain.KindCategory
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return domain.KindVoice
	default:
		return domain.KindText
	}
}

func toMember(m *discordgo.Member) domain.Member {
	out := domain.Member{DisplayName: displayName(m)}
	if m.User != nil {
		out.ID = domain.UserID(m.User.ID)
		out.Bot = m.User.Bot
	}
	return out
}

// displayName prefers the guild nickname, then the global display name.
func displayName(m *discordgo.Member) string {
	if m == nil {
		return ""
	}
	if m.Nick != "" {
		return m.Nick
	}
	if m.User == nil {
		return ""
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}

// mapErr turns "unknown channel" answers into core.ErrRoomNotFound and
// unknown members into ErrMemberNotFound.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeUnknownChannel:
			return fmt.Errorf("%w: %w", core.ErrRoomNotFound, err)
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return fmt.Errorf("%w: %w", ErrMemberNotFound, err)
		}
	}
	if rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", core.ErrRoomNotFound, err)
	}
	return err
}
