package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/dkeye/TempVoice/internal/domain"
)

func (b *Bot) handleVoiceState(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if vs.VoiceState == nil || vs.GuildID != b.opts.GuildID {
		return
	}
	ch := membershipChange(vs)
	if ch.DisplayName == "" {
		if m, err := s.State.Member(vs.GuildID, vs.UserID); err == nil {
			ch.DisplayName = displayName(m)
			if m.User != nil {
				ch.Bot = m.User.Bot
			}
		}
	}
	if sameRoom(ch.OldRoomID, ch.NewRoomID) {
		// mute, deafen, stream toggles
		return
	}
	b.logger.Debug().Str("user", string(ch.UserID)).
		Str("from", roomOrEmpty(ch.OldRoomID)).Str("to", roomOrEmpty(ch.NewRoomID)).
		Msg("voice state changed")
	b.life.OnMembershipChange(b.ctx, ch)
}

// membershipChange maps a voice state update to a domain change. The
// previous room comes from BeforeUpdate, which the state cache fills in.
func membershipChange(vs *discordgo.VoiceStateUpdate) domain.MembershipChange {
	ch := domain.MembershipChange{
		UserID:    domain.UserID(vs.UserID),
		NewRoomID: roomRef(vs.ChannelID),
	}
	if vs.BeforeUpdate != nil {
		ch.OldRoomID = roomRef(vs.BeforeUpdate.ChannelID)
	}
	if vs.Member != nil {
		ch.DisplayName = displayName(vs.Member)
		if vs.Member.User != nil {
			ch.Bot = vs.Member.User.Bot
		}
	}
	return ch
}

func roomRef(id string) *domain.RoomID {
	if id == "" {
		return nil
	}
	r := domain.RoomID(id)
	return &r
}

func roomOrEmpty(id *domain.RoomID) string {
	if id == nil {
		return ""
	}
	return string(*id)
}

func sameRoom(a, b *domain.RoomID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
