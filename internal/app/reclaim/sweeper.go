// Package reclaim deletes managed rooms that stayed empty past the grace
// period and drops entries whose rooms no longer exist.
package reclaim

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dkeye/TempVoice/internal/app"
	"github.com/dkeye/TempVoice/internal/clock"
	"github.com/dkeye/TempVoice/internal/core"
	"github.com/dkeye/TempVoice/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultGrace    = 60 * time.Second
)

// Report summarises one sweep.
type Report struct {
	Checked   int  `json:"checked"`
	Reclaimed int  `json:"reclaimed"`
	Purged    int  `json:"purged"`
	Failed    int  `json:"failed"`
	Skipped   bool `json:"skipped,omitempty"`
}

type TriggerResolver interface {
	Resolve(ctx context.Context) (domain.RoomID, error)
}

type Sweeper struct {
	Registry *app.Registry
	Gateway  core.Gateway
	Clock    core.Clock
	Hub      *app.Hub
	// Limiter, when set, has its stale join history pruned every tick.
	Limiter *app.JoinLimiter
	// Trigger, when set, is re-validated every tick so a deleted trigger
	// room is recreated.
	Trigger  TriggerResolver
	Interval time.Duration
	Grace    time.Duration

	running atomic.Bool
}

func (s *Sweeper) interval() time.Duration {
	if s.Interval <= 0 {
		return DefaultInterval
	}
	return s.Interval
}

func (s *Sweeper) grace() time.Duration {
	if s.Grace <= 0 {
		return DefaultGrace
	}
	return s.Grace
}

func (s *Sweeper) now() time.Time {
	if s.Clock == nil {
		return clock.Real().Now()
	}
	return s.Clock.Now()
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	logger := log.With().Str("module", "reclaim").Logger()
	logger.Info().Dur("interval", s.interval()).Dur("grace", s.grace()).Msg("sweeper started")
	t := time.NewTicker(s.interval())
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("sweeper stopped")
			return nil
		case <-t.C:
			if s.Trigger != nil {
				if _, err := s.Trigger.Resolve(ctx); err != nil {
					logger.Warn().Err(err).Msg("trigger room unavailable")
				}
			}
			s.SweepOnce(ctx)
			s.Limiter.Forget()
		}
	}
}

// SweepOnce checks every entry present at the start of the run. A run that
// starts while another is in progress returns immediately.
func (s *Sweeper) SweepOnce(ctx context.Context) Report {
	if !s.running.CompareAndSwap(false, true) {
		return Report{Skipped: true}
	}
	defer s.running.Store(false)

	logger := log.With().Str("module", "reclaim").Logger()
	var rep Report
	for _, snap := range s.Registry.All() {
		if ctx.Err() != nil {
			break
		}
		rep.Checked++
		var pc panics.Catcher
		s.Registry.Exclusive(func() {
			pc.Try(func() { s.check(ctx, snap.ID, &rep, &logger) })
		})
		if r := pc.Recovered(); r != nil {
			rep.Failed++
			logger.Error().Err(r.AsError()).Str("room", string(snap.ID)).Msg("sweep step panicked")
		}
	}
	if rep.Reclaimed > 0 || rep.Purged > 0 || rep.Failed > 0 {
		logger.Info().Int("checked", rep.Checked).Int("reclaimed", rep.Reclaimed).
			Int("purged", rep.Purged).Int("failed", rep.Failed).Msg("sweep finished")
	}
	return rep
}

// check runs under Registry.Exclusive. The entry may have been removed
// since the snapshot, in which case there is nothing to do.
func (s *Sweeper) check(ctx context.Context, id domain.RoomID, rep *Report, logger *zerolog.Logger) {
	entry, ok := s.Registry.Get(id)
	if !ok {
		return
	}
	if _, err := s.Gateway.FetchRoom(ctx, id); err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			if s.Registry.Remove(id) {
				rep.Purged++
				logger.Warn().Str("room", string(id)).Msg("room gone on platform, purged entry")
				s.Hub.Publish(domain.Event{Kind: domain.EventRoomPurged, RoomID: id})
			}
			return
		}
		rep.Failed++
		logger.Error().Err(err).Str("room", string(id)).Msg("fetch room")
		return
	}

	occupants, err := s.Gateway.RoomOccupants(ctx, id)
	if err != nil {
		rep.Failed++
		logger.Error().Err(err).Str("room", string(id)).Msg("room occupants")
		return
	}
	if len(occupants) > 0 {
		if s.Registry.MarkOccupied(id) {
			s.Hub.Publish(domain.Event{Kind: domain.EventRoomOccupied, RoomID: id})
		}
		return
	}

	now := s.now()
	if !entry.Empty() {
		if s.Registry.MarkEmpty(id, now) {
			s.Hub.Publish(domain.Event{Kind: domain.EventRoomEmpty, RoomID: id})
		}
		return
	}
	if !entry.Expired(now, s.grace()) {
		return
	}

	if err := s.Gateway.DeleteRoom(ctx, id); err != nil {
		logger.Error().Err(err).Str("room", string(id)).Msg("delete expired room, entry dropped anyway")
	}
	s.Registry.Remove(id)
	rep.Reclaimed++
	logger.Info().Str("room", string(id)).Str("owner", string(entry.OwnerID)).
		Dur("empty_for", now.Sub(*entry.EmptySince)).Msg("room reclaimed")
	s.Hub.Publish(domain.Event{Kind: domain.EventRoomReclaimed, RoomID: id, UserID: entry.OwnerID})
}
