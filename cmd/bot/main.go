package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/dkeye/TempVoice/internal/adapters/discord"
	router "github.com/dkeye/TempVoice/internal/adapters/http"
	"github.com/dkeye/TempVoice/internal/app"
	"github.com/dkeye/TempVoice/internal/app/orch"
	"github.com/dkeye/TempVoice/internal/app/reclaim"
	"github.com/dkeye/TempVoice/internal/clock"
	"github.com/dkeye/TempVoice/internal/config"
	"github.com/dkeye/TempVoice/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create discord session")
	}

	clk := clock.Real()
	gw := discord.NewGateway(session, cfg.Discord.GuildID, cfg.Voice.GatewayTimeout)
	reg := app.NewRegistry()
	trigger := app.NewTriggerResolver(gw, reg,
		domain.RoomID(cfg.Voice.CategoryID),
		domain.RoomID(cfg.Voice.TriggerRoomID),
		cfg.Voice.TriggerName)
	hub := app.NewHub(clk)
	limiter := app.NewJoinLimiter(cfg.Voice.JoinBurst, cfg.Voice.JoinWindow, clk)

	orchestrator := &orch.Orchestrator{
		Registry: reg,
		Trigger:  trigger,
		Gateway:  gw,
		Policy:   app.OwnerPolicy{},
		Hub:      hub,
		Limiter:  limiter,
		Clock:    clk,
	}

	sweeper := &reclaim.Sweeper{
		Registry: reg,
		Gateway:  gw,
		Clock:    clk,
		Hub:      hub,
		Limiter:  limiter,
		Trigger:  trigger,
		Interval: cfg.Voice.SweepInterval,
		Grace:    cfg.Voice.GracePeriod,
	}

	bot := discord.NewBot(session, discord.Options{
		GuildID:            cfg.Discord.GuildID,
		AdminRoleID:        cfg.Discord.AdminRoleID,
		Prefix:             cfg.Discord.CommandPrefix,
		InterfaceChannelID: cfg.Voice.InterfaceChannelID,
	}, orchestrator, orchestrator)
	bot.OnReady(func(ctx context.Context) {
		id, err := trigger.Resolve(ctx)
		if err != nil {
			log.Error().Err(err).Msg("temporary voice rooms disabled until the trigger room resolves")
			return
		}
		log.Info().Str("trigger", string(id)).Msg("trigger room resolved")
		if !cfg.Voice.AdoptOrphans {
			return
		}
		n, err := orchestrator.Adopt(ctx)
		if err != nil {
			log.Error().Err(err).Msg("adopt orphan rooms")
			return
		}
		log.Info().Int("adopted", n).Msg("orphan rooms adopted")
	})

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Registry: reg,
		Trigger:  trigger,
		Admin:    orchestrator,
		Sweeper:  sweeper,
		Hub:      hub,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(bot.Run)
	p.Go(sweeper.Run)
	p.Go(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Server forced to shutdown")
			}
		}()
		log.Info().Str("addr", addr).Msg("TempVoice admin API started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin api: %w", err)
		}
		return nil
	})

	if err := p.Wait(); err != nil {
		log.Error().Err(err).Msg("shutting down after failure")
		os.Exit(1)
	}
	log.Info().Msg("TempVoice exited gracefully")
}

func setupLogging(cfg *config.Config) {
	if cfg.Mode != "debug" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
