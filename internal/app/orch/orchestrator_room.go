package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/TempVoice/internal/app"
	"github.com/dkeye/TempVoice/internal/core"
	"github.com/dkeye/TempVoice/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) exclusive(fn func() (string, error)) (msg string, err error) {
	o.Registry.Exclusive(func() { msg, err = fn() })
	return msg, err
}

// authorize resolves the managed room actor currently sits in and checks
// the policy for action. Callers hold Registry.Exclusive.
func (o *Orchestrator) authorize(ctx context.Context, actor domain.UserID, action app.Action) (domain.ManagedRoom, error) {
	m, err := o.Gateway.FetchMember(ctx, actor)
	if err != nil {
		return domain.ManagedRoom{}, platformErr("fetch member", err)
	}
	if m.RoomID == nil {
		return domain.ManagedRoom{}, domain.ErrNotManaged
	}
	room, ok := o.Registry.Get(*m.RoomID)
	if !ok {
		return domain.ManagedRoom{}, domain.ErrNotManaged
	}
	if err := o.policy().Authorize(action, actor, room); err != nil {
		return domain.ManagedRoom{}, err
	}
	return room, nil
}

// fail logs a platform failure on room, purging the entry when the room is
// gone, and returns the error reported to the caller.
func (o *Orchestrator) fail(room domain.RoomID, op string, err error, logger *zerolog.Logger) error {
	if errors.Is(err, core.ErrRoomNotFound) {
		o.purge(room, logger)
	} else {
		logger.Error().Err(err).Str("room", string(room)).Msg(op)
	}
	return platformErr(op, err)
}

func cmdLogger(actor domain.UserID, action app.Action) zerolog.Logger {
	return log.With().Str("module", "orch").Str("user", string(actor)).Str("action", string(action)).Logger()
}

// Check verifies that actor may run action without running it, so the
// caller can reject before prompting for input.
func (o *Orchestrator) Check(ctx context.Context, actor domain.UserID, action app.Action) error {
	_, err := o.exclusive(func() (string, error) {
		_, err := o.authorize(ctx, actor, action)
		return "", err
	})
	return err
}

func (o *Orchestrator) Rename(ctx context.Context, actor domain.UserID, name string) (string, error) {
	in, err := domain.ParseName(name)
	if err != nil {
		return "", err
	}
	logger := cmdLogger(actor, app.ActionRename)
	return o.exclusive(func() (string, error) {
		room, err := o.authorize(ctx, actor, app.ActionRename)
		if err != nil {
			return "", err
		}
		if err := o.Gateway.EditRoomName(ctx, room.ID, in.Name); err != nil {
			return "", o.fail(room.ID, "rename room", err, &logger)
		}
		o.publish(domain.EventRoomUpdated, room.ID, actor, "name="+in.Name)
		return fmt.Sprintf("Room renamed to **%s**.", in.Name), nil
	})
}

func (o *Orchestrator) SetLimit(ctx context.Context, actor domain.UserID, limit int) (string, error) {
	in := domain.LimitInput{Limit: limit}
	if err := in.Validate(); err != nil {
		return "", err
	}
	logger := cmdLogger(actor, app.ActionSetLimit)
	return o.exclusive(func() (string, error) {
		room, err := o.authorize(ctx, actor, app.ActionSetLimit)
		if err != nil {
			return "", err
		}
		if err := o.Gateway.EditRoomLimit(ctx, room.ID, in.Limit); err != nil {
			return "", o.fail(room.ID, "set room limit", err, &logger)
		}
		o.publish(domain.EventRoomUpdated, room.ID, actor, fmt.Sprintf("limit=%d", in.Limit))
		if in.Limit == 0 {
			return "User limit removed.", nil
		}
		return fmt.Sprintf("User limit set to **%d**.", in.Limit), nil
	})
}

// toggleEveryone flips perm for the everyone target and returns whether it
// is allowed afterwards.
func (o *Orchestrator) toggleEveryone(ctx context.Context, room domain.RoomID, perm domain.Permission, logger *zerolog.Logger) (bool, error) {
	r, err := o.Gateway.FetchRoom(ctx, room)
	if err != nil {
		return false, o.fail(room, "fetch room", err, logger)
	}
	ow, ok := r.Overwrite(domain.Everyone)
	if !ok {
		ow = domain.Overwrite{Target: domain.Everyone}
	}
	allow := !ow.Allows(perm)
	if err := o.Gateway.EditRoomPermissions(ctx, room, ow.With(perm, allow)); err != nil {
		return false, o.fail(room, "edit room permissions", err, logger)
	}
	return allow, nil
}

func (o *Orchestrator) ToggleLock(ctx context.Context, actor domain.UserID) (string, error) {
	logger := cmdLogger(actor, app.ActionToggleLock)
	return o.exclusive(func() (string, error) {
		room, err := o.authorize(ctx, actor, app.ActionToggleLock)
		if err != nil {
			return "", err
		}
		open, err := o.toggleEveryone(ctx, room.ID, domain.PermConnect, &logger)
		if err != nil {
			return "", err
		}
		if open {
			o.publish(domain.EventRoomUpdated, room.ID, actor, "unlocked")
			return "🔓 Room is now **unlocked** for everyone.", nil
		}
		o.publish(domain.EventRoomUpdated, room.ID, actor, "locked")
		return "🔒 Room is now **locked** for everyone.", nil
	})
}

func (o *Orchestrator) ToggleChat(ctx context.Context, actor domain.UserID) (string, error) {
	logger := cmdLogger(actor, app.ActionToggleChat)
	return o.exclusive(func() (string, error) {
		room, err := o.authorize(ctx, actor, app.ActionToggleChat)
		if err != nil {
			return "", err
		}
		open, err := o.toggleEveryone(ctx, room.ID, domain.PermSendMessages, &logger)
		if err != nil {
			return "", err
		}
		if open {
			o.publish(domain.EventRoomUpdated, room.ID, actor, "chat opened")
			return "💬 Room chat is now **open** for everyone.", nil
		}
		o.publish(domain.EventRoomUpdated, room.ID, actor, "chat closed")
		return "💬 Room chat is now **closed** for everyone.", nil
	})
}

// Claim hands the room to actor when its owner is not in it. An owner who
// is not connected to voice at all, or cannot be fetched, counts as absent.
func (o *Orchestrator) Claim(ctx context.Context, actor domain.UserID) (string, error) {
	logger := cmdLogger(actor, app.ActionClaim)
	return o.exclusive(func() (string, error) {
		room, err := o.authorize(ctx, actor, app.ActionClaim)
		if err != nil {
			return "", err
		}
		if room.OwnerID == actor {
			return "", domain.ErrAlreadyOwner
		}
		if room.OwnerID != "" {
			owner, err := o.Gateway.FetchMember(ctx, room.OwnerID)
			if err == nil && owner.In(room.ID) {
				return "", domain.ErrOwnerPresent
			}
		}
		o.Registry.SetOwner(room.ID, actor)
		o.publish(domain.EventOwnerClaimed, room.ID, actor, string(room.OwnerID))
		logger.Info().Str("room", string(room.ID)).Str("previous", string(room.OwnerID)).Msg("room claimed")
		return "👑 You are now the owner of this room.", nil
	})
}

// KickCandidates lists the other occupants of actor's room.
func (o *Orchestrator) KickCandidates(ctx context.Context, actor domain.UserID) ([]domain.Member, error) {
	logger := cmdLogger(actor, app.ActionKick)
	var out []domain.Member
	_, err := o.exclusive(func() (string, error) {
		room, err := o.authorize(ctx, actor, app.ActionKick)
		if err != nil {
			return "", err
		}
		occupants, err := o.Gateway.RoomOccupants(ctx, room.ID)
		if err != nil {
			return "", o.fail(room.ID, "room occupants", err, &logger)
		}
		for _, uid := range occupants {
			if uid == actor {
				continue
			}
			m, err := o.Gateway.FetchMember(ctx, uid)
			if err != nil {
				out = append(out, domain.Member{ID: uid, DisplayName: string(uid)})
				continue
			}
			out = append(out, *m)
		}
		return "", nil
	})
	return out, err
}

func (o *Orchestrator) Kick(ctx context.Context, actor, target domain.UserID) (string, error) {
	if target == "" || target == actor {
		return "", fmt.Errorf("%w: pick someone other than yourself", domain.ErrValidation)
	}
	logger := cmdLogger(actor, app.ActionKick)
	return o.exclusive(func() (string, error) {
		room, err := o.authorize(ctx, actor, app.ActionKick)
		if err != nil {
			return "", err
		}
		tm, err := o.Gateway.FetchMember(ctx, target)
		if err != nil || !tm.In(room.ID) {
			return "", domain.ErrTargetAbsent
		}
		if err := o.Gateway.MoveMember(ctx, target, nil); err != nil {
			return "", o.fail(room.ID, "disconnect member", err, &logger)
		}
		o.publish(domain.EventRoomUpdated, room.ID, actor, "kicked "+string(target))
		logger.Info().Str("room", string(room.ID)).Str("target", string(target)).Msg("member kicked")
		return fmt.Sprintf("✅ **%s** was kicked from the room.", tm.DisplayName), nil
	})
}

func (o *Orchestrator) Delete(ctx context.Context, actor domain.UserID) (string, error) {
	logger := cmdLogger(actor, app.ActionDelete)
	return o.exclusive(func() (string, error) {
		room, err := o.authorize(ctx, actor, app.ActionDelete)
		if err != nil {
			return "", err
		}
		if err := o.destroy(ctx, room.ID, actor, &logger); err != nil {
			return "", err
		}
		return "🗑️ Room deleted.", nil
	})
}

// ForceDelete removes a tracked room without ownership checks.
func (o *Orchestrator) ForceDelete(ctx context.Context, id domain.RoomID) error {
	logger := log.With().Str("module", "orch").Str("action", "force_delete").Logger()
	_, err := o.exclusive(func() (string, error) {
		if _, ok := o.Registry.Get(id); !ok {
			return "", domain.ErrNotManaged
		}
		return "", o.destroy(ctx, id, "", &logger)
	})
	return err
}

// destroy deletes the room and always drops its entry: from the bot's
// point of view a room whose deletion failed is abandoned.
func (o *Orchestrator) destroy(ctx context.Context, room domain.RoomID, actor domain.UserID, logger *zerolog.Logger) error {
	err := o.Gateway.DeleteRoom(ctx, room)
	o.Registry.Remove(room)
	o.publish(domain.EventRoomDeleted, room, actor, "")
	if err != nil {
		logger.Error().Err(err).Str("room", string(room)).Msg("delete room failed, entry dropped anyway")
		return platformErr("delete room", err)
	}
	logger.Info().Str("room", string(room)).Msg("room deleted")
	return nil
}

// Reserved handles recognised actions that are not implemented yet. The
// usual room and owner checks still apply.
func (o *Orchestrator) Reserved(ctx context.Context, actor domain.UserID, action app.Action) (string, error) {
	return o.exclusive(func() (string, error) {
		if _, err := o.authorize(ctx, actor, action); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%s: %w", action, domain.ErrNotAvailable)
	})
}
