package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/dkeye/TempVoice/internal/app"
	"github.com/dkeye/TempVoice/internal/domain"
)

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID != b.opts.GuildID || i.Member == nil || i.Member.User == nil {
		return
	}
	actor := domain.UserID(i.Member.User.ID)

	var resp *discordgo.InteractionResponse
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		resp = b.component(b.ctx, actor, data.CustomID, data.Values)
	case discordgo.InteractionModalSubmit:
		resp = b.modal(b.ctx, actor, i.ModalSubmitData())
	}
	if resp == nil {
		return
	}
	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		b.logger.Error().Err(err).Str("user", string(actor)).Msg("interaction respond")
	}
}

// component answers a panel button or the kick menu. Unknown ids get no
// response so other handlers can own them.
func (b *Bot) component(ctx context.Context, actor domain.UserID, customID string, values []string) *discordgo.InteractionResponse {
	if customID == KickSelect {
		if len(values) == 0 {
			return replaceMessage("❌ No user selected.")
		}
		msg, err := b.cmds.Kick(ctx, actor, domain.UserID(values[0]))
		if err != nil {
			return replaceMessage(b.reject(actor, app.ActionKick, err))
		}
		return replaceMessage(msg)
	}

	action, ok := buttonActions[customID]
	if !ok {
		return nil
	}
	if action.Reserved() {
		_, err := b.cmds.Reserved(ctx, actor, action)
		if errors.Is(err, domain.ErrNotAvailable) {
			return ephemeral("🛠️ This feature is still in development.")
		}
		return ephemeral(b.reject(actor, action, err))
	}

	var (
		msg string
		err error
	)
	switch action {
	case app.ActionRename:
		if err = b.cmds.Check(ctx, actor, action); err == nil {
			return renameModal()
		}
	case app.ActionSetLimit:
		if err = b.cmds.Check(ctx, actor, action); err == nil {
			return limitModal()
		}
	case app.ActionToggleLock:
		msg, err = b.cmds.ToggleLock(ctx, actor)
	case app.ActionToggleChat:
		msg, err = b.cmds.ToggleChat(ctx, actor)
	case app.ActionClaim:
		msg, err = b.cmds.Claim(ctx, actor)
	case app.ActionDelete:
		msg, err = b.cmds.Delete(ctx, actor)
	case app.ActionKick:
		var candidates []domain.Member
		candidates, err = b.cmds.KickCandidates(ctx, actor)
		if err == nil {
			if len(candidates) == 0 {
				return ephemeral("❌ There is nobody else in your room.")
			}
			return kickMenu(candidates)
		}
	}
	if err != nil {
		return ephemeral(b.reject(actor, action, err))
	}
	return ephemeral(msg)
}

func (b *Bot) modal(ctx context.Context, actor domain.UserID, data discordgo.ModalSubmitInteractionData) *discordgo.InteractionResponse {
	var (
		msg    string
		err    error
		action app.Action
	)
	switch data.CustomID {
	case ModalName:
		action = app.ActionRename
		msg, err = b.cmds.Rename(ctx, actor, modalValue(data, InputName))
	case ModalLimit:
		action = app.ActionSetLimit
		var in domain.LimitInput
		if in, err = domain.ParseLimit(modalValue(data, InputLimit)); err == nil {
			msg, err = b.cmds.SetLimit(ctx, actor, in.Limit)
		}
	default:
		return nil
	}
	if err != nil {
		return ephemeral(b.reject(actor, action, err))
	}
	return ephemeral("✅ " + msg)
}

// reject logs a refused command and returns the reason shown to the user.
func (b *Bot) reject(actor domain.UserID, action app.Action, err error) string {
	b.logger.Debug().Err(err).Str("user", string(actor)).Str("action", string(action)).Msg("command rejected")
	return "❌ " + domain.UserMessage(err)
}
