// Package orch holds the lifecycle controller for temporary voice rooms:
// provisioning on trigger joins, occupancy bookkeeping, interactive
// management and admin deletion. Every multi-step operation runs inside
// Registry.Exclusive so it cannot interleave with the sweeper.
package orch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dkeye/TempVoice/internal/app"
	"github.com/dkeye/TempVoice/internal/clock"
	"github.com/dkeye/TempVoice/internal/core"
	"github.com/dkeye/TempVoice/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxDisplayNameLen = 24

// Trigger exposes the resolved join-to-create room.
type Trigger interface {
	ID() domain.RoomID
	Category() domain.RoomID
}

type Orchestrator struct {
	Registry *app.Registry
	Trigger  Trigger
	Gateway  core.Gateway
	Policy   app.Policy
	Hub      *app.Hub
	Limiter  *app.JoinLimiter
	Clock    core.Clock
	// Suffix yields the disambiguator appended to new room names.
	Suffix func() string
}

func (o *Orchestrator) policy() app.Policy {
	if o.Policy == nil {
		return app.OwnerPolicy{}
	}
	return o.Policy
}

func (o *Orchestrator) clock() core.Clock {
	if o.Clock == nil {
		return clock.Real()
	}
	return o.Clock
}

func (o *Orchestrator) suffix() string {
	if o.Suffix != nil {
		return o.Suffix()
	}
	return RandomSuffix()
}

func (o *Orchestrator) publish(kind domain.EventKind, room domain.RoomID, user domain.UserID, detail string) {
	o.Hub.Publish(domain.Event{Kind: kind, RoomID: room, UserID: user, Detail: detail})
}

// RandomSuffix returns four uppercase hex characters.
func RandomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
}

// RoomName builds the name of a freshly provisioned room.
func RoomName(display, suffix string) string {
	display = strings.TrimSpace(display)
	if display == "" {
		display = "voice"
	}
	if utf8.RuneCountInString(display) > maxDisplayNameLen {
		display = string([]rune(display)[:maxDisplayNameLen])
	}
	return display + "-" + suffix
}

// OnMembershipChange handles one voice-state transition. It never fails:
// platform errors are logged and the registry is reconciled.
func (o *Orchestrator) OnMembershipChange(ctx context.Context, ch domain.MembershipChange) {
	logger := log.With().Str("module", "orch").Str("user", string(ch.UserID)).Logger()

	o.Registry.Exclusive(func() {
		if ch.OldRoomID != nil && ch.Left(*ch.OldRoomID) {
			o.noteLeft(ctx, *ch.OldRoomID, &logger)
		}
		if ch.NewRoomID == nil || !ch.Joined(*ch.NewRoomID) {
			return
		}
		to := *ch.NewRoomID
		if trigger := o.Trigger.ID(); trigger != "" && to == trigger {
			if ch.Bot {
				return
			}
			o.provision(ctx, ch, &logger)
			return
		}
		o.noteJoined(to)
	})
}

func (o *Orchestrator) noteLeft(ctx context.Context, room domain.RoomID, logger *zerolog.Logger) {
	if _, ok := o.Registry.Get(room); !ok {
		return
	}
	occupants, err := o.Gateway.RoomOccupants(ctx, room)
	if err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			o.purge(room, logger)
			return
		}
		logger.Error().Err(err).Str("room", string(room)).Msg("occupancy after leave")
		return
	}
	if len(occupants) == 0 && o.Registry.MarkEmpty(room, o.clock().Now()) {
		logger.Info().Str("room", string(room)).Msg("room empty, grace window started")
		o.publish(domain.EventRoomEmpty, room, "", "")
	}
}

func (o *Orchestrator) noteJoined(room domain.RoomID) {
	if o.Registry.MarkOccupied(room) {
		o.publish(domain.EventRoomOccupied, room, "", "")
	}
}

func (o *Orchestrator) purge(room domain.RoomID, logger *zerolog.Logger) {
	if o.Registry.Remove(room) {
		logger.Warn().Str("room", string(room)).Msg("room gone on platform, purged entry")
		o.publish(domain.EventRoomPurged, room, "", "")
	}
}

func (o *Orchestrator) provision(ctx context.Context, ch domain.MembershipChange, logger *zerolog.Logger) {
	if !o.Limiter.Allow(ch.UserID) {
		logger.Warn().Msg("trigger join throttled")
		return
	}

	if existing, ok := o.Registry.FindByOwner(ch.UserID); ok {
		if done := o.relocate(ctx, ch.UserID, existing, logger); done {
			return
		}
	}

	display := ch.DisplayName
	if display == "" {
		if m, err := o.Gateway.FetchMember(ctx, ch.UserID); err == nil {
			display = m.DisplayName
		}
	}
	name := RoomName(display, o.suffix())
	id, err := o.Gateway.CreateRoom(ctx, domain.RoomSpec{
		Name:     name,
		ParentID: o.Trigger.Category(),
		Kind:     domain.KindVoice,
		Overwrites: []domain.Overwrite{
			{Target: domain.MemberTarget(ch.UserID), Allow: domain.OwnerPermissions},
		},
	})
	if err != nil {
		logger.Error().Err(err).Str("name", name).Msg("create room")
		return
	}

	o.Registry.Put(domain.ManagedRoom{ID: id, OwnerID: ch.UserID, CreatedAt: o.clock().Now()})
	o.publish(domain.EventRoomCreated, id, ch.UserID, name)
	logger.Info().Str("room", string(id)).Str("name", name).Msg("created room")

	if err := o.Gateway.MoveMember(ctx, ch.UserID, &id); err != nil {
		logger.Warn().Err(err).Str("room", string(id)).Msg("move into new room failed, sweeper will reclaim it if it stays empty")
	}
}

// relocate moves user back into the room they already own. It reports
// whether provisioning is finished; false means a fresh room is needed.
func (o *Orchestrator) relocate(ctx context.Context, user domain.UserID, room domain.RoomID, logger *zerolog.Logger) bool {
	_, err := o.Gateway.FetchRoom(ctx, room)
	switch {
	case errors.Is(err, core.ErrRoomNotFound):
		o.purge(room, logger)
		return false
	case err != nil:
		// Unknown state: creating now could leave the user with two rooms.
		logger.Error().Err(err).Str("room", string(room)).Msg("fetch owned room")
		return true
	}

	if err := o.Gateway.MoveMember(ctx, user, &room); err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			o.purge(room, logger)
			return false
		}
		logger.Error().Err(err).Str("room", string(room)).Msg("move into owned room")
		return true
	}
	o.Registry.MarkOccupied(room)
	o.publish(domain.EventRoomReused, room, user, "")
	logger.Info().Str("room", string(room)).Msg("moved owner back into existing room")
	return true
}

// Adopt tracks untracked voice rooms left in the category, e.g. by a
// previous process. Adopted rooms have no owner, so any occupant can claim
// them, and the sweeper reclaims them once empty.
func (o *Orchestrator) Adopt(ctx context.Context) (int, error) {
	logger := log.With().Str("module", "orch").Logger()
	var (
		adopted int
		err     error
	)
	o.Registry.Exclusive(func() {
		trigger := o.Trigger.ID()
		if trigger == "" {
			err = domain.ErrFeatureDisabled
			return
		}
		var rooms []domain.Room
		rooms, err = o.Gateway.ListRooms(ctx, o.Trigger.Category())
		if err != nil {
			err = platformErr("list category", err)
			return
		}
		for _, r := range rooms {
			if r.Kind != domain.KindVoice || r.ID == trigger {
				continue
			}
			if _, ok := o.Registry.Get(r.ID); ok {
				continue
			}
			o.Registry.Put(domain.ManagedRoom{ID: r.ID, CreatedAt: o.clock().Now()})
			o.publish(domain.EventRoomAdopted, r.ID, "", r.Name)
			adopted++
		}
	})
	if err == nil {
		logger.Info().Int("adopted", adopted).Msg("adopted orphan rooms")
	}
	return adopted, err
}

func platformErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPlatformUnavailable, err)
}
