package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/dkeye/TempVoice/internal/app"
	"github.com/dkeye/TempVoice/internal/core"
	"github.com/dkeye/TempVoice/internal/domain"
)

const guild = "g1"

func TestPermissionMapping(t *testing.T) {
	g := &Gateway{guildID: guild}

	ow := domain.Overwrite{Target: domain.Everyone, Allow: domain.PermViewRoom, Deny: domain.PermConnect}
	po := g.toOverwrite(ow)
	if po.ID != guild || po.Type != discordgo.PermissionOverwriteTypeRole {
		t.Fatalf("everyone overwrite = %+v", po)
	}
	if po.Allow != discordgo.PermissionViewChannel || po.Deny != discordgo.PermissionVoiceConnect {
		t.Fatalf("bits = allow %d deny %d", po.Allow, po.Deny)
	}
	if back := g.fromOverwrite(po); back != ow {
		t.Fatalf("round trip = %+v, want %+v", back, ow)
	}

	owner := domain.Overwrite{Target: domain.MemberTarget("u1"), Allow: domain.OwnerPermissions}
	po = g.toOverwrite(owner)
	if po.ID != "u1" || po.Type != discordgo.PermissionOverwriteTypeMember {
		t.Fatalf("member overwrite = %+v", po)
	}
	if back := g.fromOverwrite(po); back != owner {
		t.Fatalf("round trip = %+v, want %+v", back, owner)
	}

	role := g.fromOverwrite(&discordgo.PermissionOverwrite{ID: "mods", Type: discordgo.PermissionOverwriteTypeRole})
	if role.Target != (domain.Target{Kind: domain.TargetRole, ID: "mods"}) {
		t.Fatalf("role target = %+v", role.Target)
	}
}

func TestFromPermsDropsUnknownBits(t *testing.T) {
	got := fromPerms(discordgo.PermissionVoiceSpeak | discordgo.PermissionAdministrator)
	if got != domain.PermSpeak {
		t.Fatalf("fromPerms = %b", got)
	}
}

func TestToRoom(t *testing.T) {
	g := &Gateway{guildID: guild}
	r := g.toRoom(&discordgo.Channel{
		ID: "c1", Name: "Alice-ABCD", Type: discordgo.ChannelTypeGuildVoice, ParentID: "cat", UserLimit: 4,
	})
	if r.ID != "c1" || r.Kind != domain.KindVoice || r.ParentID != "cat" || r.UserLimit != 4 {
		t.Fatalf("room = %+v", r)
	}
	if roomKind(discordgo.ChannelTypeGuildCategory) != domain.KindCategory || roomKind(discordgo.ChannelTypeGuildText) != domain.KindText {
		t.Fatal("kind mapping")
	}
	if channelType(domain.KindVoice) != discordgo.ChannelTypeGuildVoice {
		t.Fatal("channel type mapping")
	}
}

func TestMapErr(t *testing.T) {
	unknownChannel := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownChannel}}
	if err := mapErr(unknownChannel); !errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("unknown channel = %v", err)
	}
	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	if err := mapErr(notFound); !errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("404 = %v", err)
	}
	unknownMember := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMember}}
	if err := mapErr(unknownMember); !errors.Is(err, ErrMemberNotFound) || errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("unknown member = %v", err)
	}
	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
	if err := mapErr(forbidden); errors.Is(err, core.ErrRoomNotFound) {
		t.Fatal("403 mapped to not found")
	}
	if mapErr(nil) != nil {
		t.Fatal("nil error mapped")
	}
	wrapped := fmt.Errorf("call: %w", context.DeadlineExceeded)
	if err := mapErr(wrapped); err != wrapped {
		t.Fatalf("non-REST error changed: %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		m    *discordgo.Member
		want string
	}{
		{&discordgo.Member{Nick: "Nick", User: &discordgo.User{GlobalName: "Global", Username: "user"}}, "Nick"},
		{&discordgo.Member{User: &discordgo.User{GlobalName: "Global", Username: "user"}}, "Global"},
		{&discordgo.Member{User: &discordgo.User{Username: "user"}}, "user"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := displayName(tt.m); got != tt.want {
			t.Errorf("displayName = %q, want %q", got, tt.want)
		}
	}
}

func TestMembershipChange(t *testing.T) {
	vs := &discordgo.VoiceStateUpdate{
		VoiceState: &discordgo.VoiceState{
			GuildID:   guild,
			UserID:    "u1",
			ChannelID: "trigger",
			Member:    &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "alice", Bot: true}},
		},
		BeforeUpdate: &discordgo.VoiceState{ChannelID: "old"},
	}
	ch := membershipChange(vs)
	if ch.UserID != "u1" || ch.DisplayName != "alice" || !ch.Bot {
		t.Fatalf("change = %+v", ch)
	}
	if !ch.Joined("trigger") || !ch.Left("old") {
		t.Fatalf("rooms = %v -> %v", ch.OldRoomID, ch.NewRoomID)
	}

	vs.ChannelID = ""
	vs.BeforeUpdate = nil
	ch = membershipChange(vs)
	if ch.OldRoomID != nil || ch.NewRoomID != nil {
		t.Fatal("empty channel ids should map to nil")
	}
	if !sameRoom(nil, nil) || sameRoom(roomRef("a"), nil) || !sameRoom(roomRef("a"), roomRef("a")) {
		t.Fatal("sameRoom")
	}
}

func TestGatewayStateReads(t *testing.T) {
	st := discordgo.NewState()
	err := st.GuildAdd(&discordgo.Guild{
		ID: guild,
		Channels: []*discordgo.Channel{
			{ID: "r1", GuildID: guild, Type: discordgo.ChannelTypeGuildVoice},
		},
		Members: []*discordgo.Member{
			{GuildID: guild, Nick: "Ally", User: &discordgo.User{ID: "a"}},
			{GuildID: guild, User: &discordgo.User{ID: "b", Username: "bob"}},
		},
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: guild, UserID: "b", ChannelID: "r1"},
			{GuildID: guild, UserID: "a", ChannelID: "r1"},
			{GuildID: guild, UserID: "c", ChannelID: "elsewhere"},
		},
	})
	if err != nil {
		t.Fatalf("GuildAdd: %v", err)
	}
	g := NewGateway(&discordgo.Session{State: st}, guild, 0)
	ctx := context.Background()

	occ, err := g.RoomOccupants(ctx, "r1")
	if err != nil || len(occ) != 2 || occ[0] != "a" || occ[1] != "b" {
		t.Fatalf("RoomOccupants = %v, %v", occ, err)
	}

	m, err := g.FetchMember(ctx, "a")
	if err != nil {
		t.Fatalf("FetchMember: %v", err)
	}
	if m.DisplayName != "Ally" || !m.In("r1") {
		t.Fatalf("member = %+v", m)
	}
}

func TestEditPermissionsKeepsForeignBits(t *testing.T) {
	st := discordgo.NewState()
	err := st.GuildAdd(&discordgo.Guild{
		ID: guild,
		Channels: []*discordgo.Channel{{
			ID: "r1", GuildID: guild, Type: discordgo.ChannelTypeGuildVoice,
			PermissionOverwrites: []*discordgo.PermissionOverwrite{{
				ID:    guild,
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionAddReactions,
				Deny:  discordgo.PermissionAttachFiles,
			}},
		}},
	})
	if err != nil {
		t.Fatalf("GuildAdd: %v", err)
	}
	g := NewGateway(&discordgo.Session{State: st}, guild, 0)
	ctx := context.Background()

	cur, err := g.currentOverwrite(ctx, "r1", guild)
	if err != nil || cur == nil {
		t.Fatalf("currentOverwrite = %+v, %v", cur, err)
	}
	po := g.toOverwrite(domain.Overwrite{Target: domain.Everyone, Allow: domain.PermViewRoom, Deny: domain.PermConnect})
	mergeOverwrite(po, cur)
	if po.Allow != discordgo.PermissionViewChannel|discordgo.PermissionAddReactions {
		t.Fatalf("allow = %b", po.Allow)
	}
	if po.Deny != discordgo.PermissionVoiceConnect|discordgo.PermissionAttachFiles {
		t.Fatalf("deny = %b", po.Deny)
	}

	// domain bits on the old overwrite are replaced, not merged
	cur.Deny |= discordgo.PermissionVoiceSpeak
	po = g.toOverwrite(domain.Overwrite{Target: domain.Everyone})
	mergeOverwrite(po, cur)
	if po.Deny != discordgo.PermissionAttachFiles || po.Allow != discordgo.PermissionAddReactions {
		t.Fatalf("overwrite = %+v", po)
	}

	if cur, err := g.currentOverwrite(ctx, "r1", "someone"); err != nil || cur != nil {
		t.Fatalf("missing target = %+v, %v", cur, err)
	}
}

type fakeCommands struct {
	candidates []domain.Member
	err        error
	calls      []string
}

func (f *fakeCommands) record(name string) (string, error) {
	f.calls = append(f.calls, name)
	return name + " done", f.err
}

func (f *fakeCommands) Check(context.Context, domain.UserID, app.Action) error {
	_, err := f.record("check")
	return err
}
func (f *fakeCommands) Rename(_ context.Context, _ domain.UserID, name string) (string, error) {
	return f.record("rename:" + name)
}
func (f *fakeCommands) SetLimit(_ context.Context, _ domain.UserID, n int) (string, error) {
	return f.record(fmt.Sprintf("limit:%d", n))
}
func (f *fakeCommands) ToggleLock(context.Context, domain.UserID) (string, error) {
	return f.record("lock")
}
func (f *fakeCommands) ToggleChat(context.Context, domain.UserID) (string, error) {
	return f.record("chat")
}
func (f *fakeCommands) Claim(context.Context, domain.UserID) (string, error) { return f.record("claim") }
func (f *fakeCommands) KickCandidates(context.Context, domain.UserID) ([]domain.Member, error) {
	_, err := f.record("candidates")
	return f.candidates, err
}
func (f *fakeCommands) Kick(_ context.Context, _, target domain.UserID) (string, error) {
	return f.record("kick:" + string(target))
}
func (f *fakeCommands) Delete(context.Context, domain.UserID) (string, error) { return f.record("delete") }
func (f *fakeCommands) Reserved(_ context.Context, _ domain.UserID, a app.Action) (string, error) {
	f.calls = append(f.calls, "reserved:"+string(a))
	if f.err != nil {
		return "", f.err
	}
	return "", domain.ErrNotAvailable
}

func newTestBot(cmds Commands) *Bot {
	return NewBot(nil, Options{GuildID: guild}, nil, cmds)
}

func TestComponentRouting(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		id       string
		wantType discordgo.InteractionResponseType
		wantCall string
	}{
		{ButtonName, discordgo.InteractionResponseModal, "check"},
		{ButtonLimit, discordgo.InteractionResponseModal, "check"},
		{ButtonLock, discordgo.InteractionResponseChannelMessageWithSource, "lock"},
		{ButtonChat, discordgo.InteractionResponseChannelMessageWithSource, "chat"},
		{ButtonClaim, discordgo.InteractionResponseChannelMessageWithSource, "claim"},
		{ButtonDelete, discordgo.InteractionResponseChannelMessageWithSource, "delete"},
		{ButtonTrust, discordgo.InteractionResponseChannelMessageWithSource, "reserved:trust"},
		{ButtonWaiting, discordgo.InteractionResponseChannelMessageWithSource, "reserved:waiting"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			cmds := &fakeCommands{}
			resp := newTestBot(cmds).component(ctx, "a", tt.id, nil)
			if resp == nil || resp.Type != tt.wantType {
				t.Fatalf("response = %+v", resp)
			}
			if len(cmds.calls) != 1 || cmds.calls[0] != tt.wantCall {
				t.Fatalf("calls = %v, want %s", cmds.calls, tt.wantCall)
			}
			if resp.Type == discordgo.InteractionResponseChannelMessageWithSource && resp.Data.Flags != discordgo.MessageFlagsEphemeral {
				t.Fatal("reply is not ephemeral")
			}
		})
	}

	if resp := newTestBot(&fakeCommands{}).component(ctx, "a", "someone_else", nil); resp != nil {
		t.Fatal("unknown component answered")
	}
}

func TestComponentRejection(t *testing.T) {
	cmds := &fakeCommands{err: domain.ErrNotOwner}
	resp := newTestBot(cmds).component(context.Background(), "a", ButtonName, nil)
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Fatal("modal opened for a rejected user")
	}
	if !strings.Contains(resp.Data.Content, domain.UserMessage(domain.ErrNotOwner)) {
		t.Fatalf("content = %q", resp.Data.Content)
	}

	cmds = &fakeCommands{err: domain.ErrNotManaged}
	resp = newTestBot(cmds).component(context.Background(), "a", ButtonRegion, nil)
	if !strings.Contains(resp.Data.Content, domain.UserMessage(domain.ErrNotManaged)) {
		t.Fatalf("reserved rejection = %q", resp.Data.Content)
	}
}

func TestKickFlow(t *testing.T) {
	ctx := context.Background()
	cmds := &fakeCommands{}
	bot := newTestBot(cmds)

	resp := bot.component(ctx, "a", ButtonKick, nil)
	if !strings.Contains(resp.Data.Content, "nobody") {
		t.Fatalf("empty room content = %q", resp.Data.Content)
	}

	cmds.candidates = []domain.Member{{ID: "b", DisplayName: "Bob"}}
	resp = bot.component(ctx, "a", ButtonKick, nil)
	row := resp.Data.Components[0].(discordgo.ActionsRow)
	menu := row.Components[0].(discordgo.SelectMenu)
	if menu.CustomID != KickSelect || len(menu.Options) != 1 || menu.Options[0].Value != "b" {
		t.Fatalf("menu = %+v", menu)
	}

	resp = bot.component(ctx, "a", KickSelect, []string{"b"})
	if resp.Type != discordgo.InteractionResponseUpdateMessage || resp.Data.Content != "kick:b done" {
		t.Fatalf("kick response = %+v", resp)
	}
}

func TestKickMenuCapped(t *testing.T) {
	var many []domain.Member
	for i := 0; i < 40; i++ {
		many = append(many, domain.Member{ID: domain.UserID(fmt.Sprint(i)), DisplayName: fmt.Sprint(i)})
	}
	menu := kickMenu(many).Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	if len(menu.Options) != maxSelectOptions {
		t.Fatalf("options = %d", len(menu.Options))
	}
}

func modalData(customID, inputID, value string) discordgo.ModalSubmitInteractionData {
	return discordgo.ModalSubmitInteractionData{
		CustomID: customID,
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: inputID, Value: value},
			}},
		},
	}
}

func TestModalSubmit(t *testing.T) {
	ctx := context.Background()
	cmds := &fakeCommands{}
	bot := newTestBot(cmds)

	resp := bot.modal(ctx, "a", modalData(ModalName, InputName, "Study"))
	if !strings.Contains(resp.Data.Content, "rename:Study") {
		t.Fatalf("rename reply = %q", resp.Data.Content)
	}
	resp = bot.modal(ctx, "a", modalData(ModalLimit, InputLimit, " 7 "))
	if !strings.Contains(resp.Data.Content, "limit:7") {
		t.Fatalf("limit reply = %q", resp.Data.Content)
	}

	cmds.calls = nil
	resp = bot.modal(ctx, "a", modalData(ModalLimit, InputLimit, "abc"))
	if !strings.HasPrefix(resp.Data.Content, "❌") || len(cmds.calls) != 0 {
		t.Fatalf("bad limit = %q, calls %v", resp.Data.Content, cmds.calls)
	}
	if bot.modal(ctx, "a", modalData("other", "x", "y")) != nil {
		t.Fatal("unknown modal answered")
	}
}

func TestPanelMessage(t *testing.T) {
	msg := PanelMessage()
	if len(msg.Embeds) != 1 || len(msg.Components) != 3 {
		t.Fatalf("panel = %d embeds, %d rows", len(msg.Embeds), len(msg.Components))
	}
	seen := map[string]bool{}
	for _, c := range msg.Components {
		row := c.(discordgo.ActionsRow)
		if len(row.Components) != 5 {
			t.Fatalf("row has %d buttons", len(row.Components))
		}
		for _, bc := range row.Components {
			b := bc.(discordgo.Button)
			if _, ok := buttonActions[b.CustomID]; !ok {
				t.Fatalf("button %s has no action", b.CustomID)
			}
			seen[b.CustomID] = true
		}
	}
	if len(seen) != len(buttonActions) {
		t.Fatalf("panel shows %d of %d actions", len(seen), len(buttonActions))
	}
}
