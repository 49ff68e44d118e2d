package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/dkeye/TempVoice/internal/app"
	"github.com/dkeye/TempVoice/internal/domain"
)

// Component and modal ids of the management panel.
const (
	ButtonName     = "tv_name"
	ButtonLimit    = "tv_limit"
	ButtonLock     = "tv_lock"
	ButtonWaiting  = "tv_waiting"
	ButtonChat     = "tv_chat"
	ButtonTrust    = "tv_trust"
	ButtonUntrust  = "tv_untrust"
	ButtonInvite   = "tv_invite"
	ButtonKick     = "tv_kick"
	ButtonRegion   = "tv_region"
	ButtonBlock    = "tv_block"
	ButtonUnblock  = "tv_unblock"
	ButtonClaim    = "tv_claim"
	ButtonTransfer = "tv_transfer"
	ButtonDelete   = "tv_delete"

	KickSelect = "tv_kick_select"
	ModalName  = "modal_tv_name"
	ModalLimit = "modal_tv_limit"
	InputName  = "name_input"
	InputLimit = "limit_input"
)

const panelColor = 0x2F3136

// maxSelectOptions is the platform cap on options in one select menu.
const maxSelectOptions = 25

var buttonActions = map[string]app.Action{
	ButtonName:     app.ActionRename,
	ButtonLimit:    app.ActionSetLimit,
	ButtonLock:     app.ActionToggleLock,
	ButtonWaiting:  app.ActionWaiting,
	ButtonChat:     app.ActionToggleChat,
	ButtonTrust:    app.ActionTrust,
	ButtonUntrust:  app.ActionUntrust,
	ButtonInvite:   app.ActionInvite,
	ButtonKick:     app.ActionKick,
	ButtonRegion:   app.ActionRegion,
	ButtonBlock:    app.ActionBlock,
	ButtonUnblock:  app.ActionUnblock,
	ButtonClaim:    app.ActionClaim,
	ButtonTransfer: app.ActionTransfer,
	ButtonDelete:   app.ActionDelete,
}

type panelButton struct {
	id, label, emoji string
	style            discordgo.ButtonStyle
}

var panelRows = [][]panelButton{
	{
		{ButtonName, "NAME", "📝", discordgo.SecondaryButton},
		{ButtonLimit, "LIMIT", "👥", discordgo.SecondaryButton},
		{ButtonLock, "PRIVACY", "🔒", discordgo.SecondaryButton},
		{ButtonWaiting, "WAITING R.", "⏳", discordgo.SecondaryButton},
		{ButtonChat, "CHAT", "💬", discordgo.SecondaryButton},
	},
	{
		{ButtonTrust, "TRUST", "👤", discordgo.SecondaryButton},
		{ButtonUntrust, "UNTRUST", "👥", discordgo.SecondaryButton},
		{ButtonInvite, "INVITE", "📞", discordgo.SecondaryButton},
		{ButtonKick, "KICK", "🚫", discordgo.SecondaryButton},
		{ButtonRegion, "REGION", "🌐", discordgo.SecondaryButton},
	},
	{
		{ButtonBlock, "BLOCK", "🛑", discordgo.SecondaryButton},
		{ButtonUnblock, "UNBLOCK", "🔓", discordgo.SecondaryButton},
		{ButtonClaim, "CLAIM", "👑", discordgo.SecondaryButton},
		{ButtonTransfer, "TRANSFER", "🚩", discordgo.SecondaryButton},
		{ButtonDelete, "DELETE", "🗑️", discordgo.DangerButton},
	},
}

// PanelMessage is the management interface posted by the setup command.
func PanelMessage() *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title:       "TempVoice Interface",
		Description: "This **interface** can be used to manage temporary voice rooms.\nJoin the trigger room to get your own.",
		Color:       panelColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "⚙️ Press the buttons below to use the interface", Value: "\u200b"},
		},
	}
	rows := make([]discordgo.MessageComponent, 0, len(panelRows))
	for _, row := range panelRows {
		buttons := make([]discordgo.MessageComponent, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, discordgo.Button{
				CustomID: b.id,
				Label:    b.label,
				Style:    b.style,
				Emoji:    &discordgo.ComponentEmoji{Name: b.emoji},
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}, Components: rows}
}

func textModal(customID, title, inputID, label string, minLen, maxLen int) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customID,
			Title:    title,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  inputID,
						Label:     label,
						Style:     discordgo.TextInputShort,
						Required:  true,
						MinLength: minLen,
						MaxLength: maxLen,
					},
				}},
			},
		},
	}
}

func renameModal() *discordgo.InteractionResponse {
	return textModal(ModalName, "Rename Voice Room", InputName, "Enter new name", 1, domain.MaxRoomNameLen)
}

func limitModal() *discordgo.InteractionResponse {
	return textModal(ModalLimit, "Set User Limit", InputLimit, "User limit (0 for unlimited)", 1, 2)
}

// kickMenu lists candidates in a select menu; the platform caps it at 25.
func kickMenu(candidates []domain.Member) *discordgo.InteractionResponse {
	opts := make([]discordgo.SelectMenuOption, 0, min(len(candidates), maxSelectOptions))
	for _, m := range candidates {
		if len(opts) == maxSelectOptions {
			break
		}
		opts = append(opts, discordgo.SelectMenuOption{Label: m.DisplayName, Value: string(m.ID)})
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "🔍 Pick the user to kick:",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    KickSelect,
						Placeholder: "Pick the user to kick",
						Options:     opts,
					},
				}},
			},
		},
	}
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral},
	}
}

// replaceMessage swaps the content of the ephemeral message that carried a
// component and drops its components.
func replaceMessage(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	}
}

// modalValue finds the text input with id in submitted modal rows.
func modalValue(data discordgo.ModalSubmitInteractionData, id string) string {
	for _, c := range data.Components {
		var row discordgo.ActionsRow
		switch r := c.(type) {
		case *discordgo.ActionsRow:
			row = *r
		case discordgo.ActionsRow:
			row = r
		default:
			continue
		}
		for _, inner := range row.Components {
			switch in := inner.(type) {
			case *discordgo.TextInput:
				if in.CustomID == id {
					return in.Value
				}
			case discordgo.TextInput:
				if in.CustomID == id {
					return in.Value
				}
			}
		}
	}
	return ""
}
