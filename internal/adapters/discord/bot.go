package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/dkeye/TempVoice/internal/app"
	"github.com/dkeye/TempVoice/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Intents the bot needs: voice states and members feed the state cache,
// message content carries the setup command.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

// Lifecycle receives voice membership changes.
type Lifecycle interface {
	OnMembershipChange(ctx context.Context, ch domain.MembershipChange)
}

// Commands are the room management operations behind the panel.
type Commands interface {
	Check(ctx context.Context, actor domain.UserID, action app.Action) error
	Rename(ctx context.Context, actor domain.UserID, name string) (string, error)
	SetLimit(ctx context.Context, actor domain.UserID, limit int) (string, error)
	ToggleLock(ctx context.Context, actor domain.UserID) (string, error)
	ToggleChat(ctx context.Context, actor domain.UserID) (string, error)
	Claim(ctx context.Context, actor domain.UserID) (string, error)
	KickCandidates(ctx context.Context, actor domain.UserID) ([]domain.Member, error)
	Kick(ctx context.Context, actor, target domain.UserID) (string, error)
	Delete(ctx context.Context, actor domain.UserID) (string, error)
	Reserved(ctx context.Context, actor domain.UserID, action app.Action) (string, error)
}

type Options struct {
	GuildID            string
	AdminRoleID        string
	Prefix             string
	InterfaceChannelID string
}

// Bot routes session events to the lifecycle controller.
type Bot struct {
	s    *discordgo.Session
	opts Options
	life Lifecycle
	cmds Commands

	ctx    context.Context
	logger zerolog.Logger
	// onReady runs after every READY, including reconnects.
	onReady func(ctx context.Context)
}

func NewBot(s *discordgo.Session, opts Options, life Lifecycle, cmds Commands) *Bot {
	if opts.Prefix == "" {
		opts.Prefix = "."
	}
	return &Bot{
		s:      s,
		opts:   opts,
		life:   life,
		cmds:   cmds,
		ctx:    context.Background(),
		logger: log.With().Str("module", "adapters.discord").Logger(),
	}
}

// OnReady registers fn to run whenever the session becomes ready.
func (b *Bot) OnReady(fn func(ctx context.Context)) { b.onReady = fn }

// Open registers the handlers and connects. Handlers use ctx for their
// platform calls.
func (b *Bot) Open(ctx context.Context) error {
	b.ctx = ctx
	b.s.Identify.Intents = Intents
	b.s.StateEnabled = true
	b.s.State.TrackVoice = true
	b.s.State.TrackMembers = true
	b.s.State.TrackChannels = true

	b.s.AddHandler(b.handleReady)
	b.s.AddHandler(b.handleVoiceState)
	b.s.AddHandler(b.handleInteraction)
	b.s.AddHandler(b.handleMessage)

	if err := b.s.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Run keeps the session open until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Open(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	b.logger.Info().Msg("closing discord session")
	return b.s.Close()
}

func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord session ready")
	if b.onReady != nil {
		b.onReady(b.ctx)
	}
}
