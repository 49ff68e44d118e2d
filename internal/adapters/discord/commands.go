package discord

import (
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != b.opts.GuildID {
		return
	}
	name, ok := strings.CutPrefix(strings.TrimSpace(m.Content), b.opts.Prefix)
	if !ok {
		return
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return
	}

	switch strings.ToLower(fields[0]) {
	case "setupvoice":
		b.setupVoice(s, m)
	}
}

func (b *Bot) setupVoice(s *discordgo.Session, m *discordgo.MessageCreate) {
	logger := b.logger.With().Str("user", m.Author.ID).Str("command", "setupvoice").Logger()
	if !b.isAdmin(s, m) {
		_, _ = s.ChannelMessageSendReply(m.ChannelID, "❌ You are not allowed to use this command.", m.Reference())
		return
	}
	target := b.opts.InterfaceChannelID
	if target == "" {
		target = m.ChannelID
	}
	if _, err := s.ChannelMessageSendComplex(target, PanelMessage()); err != nil {
		logger.Error().Err(err).Str("channel", target).Msg("send panel")
		_, _ = s.ChannelMessageSendReply(m.ChannelID, "❌ Interface channel not found. Check the config!", m.Reference())
		return
	}
	logger.Info().Str("channel", target).Msg("panel posted")
	_, _ = s.ChannelMessageSendReply(m.ChannelID, "✅ TempVoice interface sent to <#"+target+">", m.Reference())
}

// isAdmin accepts holders of the configured admin role, or guild
// administrators when no role is configured.
func (b *Bot) isAdmin(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if b.opts.AdminRoleID != "" {
		return m.Member != nil && slices.Contains(m.Member.Roles, b.opts.AdminRoleID)
	}
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		b.logger.Warn().Err(err).Str("user", m.Author.ID).Msg("resolve permissions")
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}
