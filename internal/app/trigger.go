package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dkeye/TempVoice/internal/core"
	"github.com/dkeye/TempVoice/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultTriggerName = "➕ Join to Create"

// TriggerResolver finds or creates the join-to-create room. Once found, the
// id is kept and only re-validated; name discovery runs on cold start or
// after the remembered room vanished.
type TriggerResolver struct {
	gw       core.Gateway
	reg      *Registry
	category domain.RoomID
	pinned   domain.RoomID
	name     string

	resolveMu sync.Mutex
	mu        sync.RWMutex
	id        domain.RoomID
}

// NewTriggerResolver returns a resolver that never picks a room tracked in
// reg, so a managed room renamed to the trigger name is not mistaken for it.
// reg may be nil.
func NewTriggerResolver(gw core.Gateway, reg *Registry, category, pinned domain.RoomID, name string) *TriggerResolver {
	if name == "" {
		name = DefaultTriggerName
	}
	return &TriggerResolver{gw: gw, reg: reg, category: category, pinned: pinned, name: name}
}

func (t *TriggerResolver) tracked(id domain.RoomID) bool {
	if t.reg == nil {
		return false
	}
	_, ok := t.reg.Get(id)
	return ok
}

// ID returns the resolved trigger, or "" while unresolved.
func (t *TriggerResolver) ID() domain.RoomID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.id
}

func (t *TriggerResolver) Category() domain.RoomID { return t.category }

func (t *TriggerResolver) set(id domain.RoomID) {
	t.mu.Lock()
	t.id = id
	t.mu.Unlock()
}

// Resolve returns the trigger id, creating the room at most once.
// On error the trigger stays unresolved and the feature is disabled.
func (t *TriggerResolver) Resolve(ctx context.Context) (domain.RoomID, error) {
	t.resolveMu.Lock()
	defer t.resolveMu.Unlock()
	logger := log.With().Str("module", "app.trigger").Str("category", string(t.category)).Logger()

	if id := t.ID(); id != "" {
		_, err := t.gw.FetchRoom(ctx, id)
		switch {
		case err == nil:
			return id, nil
		case errors.Is(err, core.ErrRoomNotFound):
			logger.Warn().Str("room", string(id)).Msg("trigger room vanished, rediscovering")
			t.set("")
		default:
			return id, fmt.Errorf("revalidate trigger: %w: %w", domain.ErrPlatformUnavailable, err)
		}
	}

	cat, err := t.gw.FetchRoom(ctx, t.category)
	if err != nil || cat.Kind != domain.KindCategory {
		logger.Error().Err(err).Msg("invalid category id in config")
		return "", fmt.Errorf("%w: category %q unusable", domain.ErrFeatureDisabled, t.category)
	}

	if t.pinned != "" {
		room, err := t.gw.FetchRoom(ctx, t.pinned)
		if err == nil && room.Kind == domain.KindVoice && !t.tracked(room.ID) {
			t.set(room.ID)
			logger.Info().Str("room", string(room.ID)).Msg("using pinned trigger room")
			return room.ID, nil
		}
		logger.Warn().Err(err).Str("room", string(t.pinned)).Msg("pinned trigger room unusable, falling back to discovery")
	}

	rooms, err := t.gw.ListRooms(ctx, t.category)
	if err != nil {
		logger.Error().Err(err).Msg("list category rooms")
		return "", fmt.Errorf("list category: %w: %w", domain.ErrPlatformUnavailable, err)
	}
	for _, r := range rooms {
		if r.Kind == domain.KindVoice && strings.Contains(r.Name, t.name) && !t.tracked(r.ID) {
			t.set(r.ID)
			logger.Info().Str("room", string(r.ID)).Str("name", r.Name).Msg("trigger room ready")
			return r.ID, nil
		}
	}

	logger.Info().Str("name", t.name).Msg("creating trigger room")
	id, err := t.gw.CreateRoom(ctx, domain.RoomSpec{
		Name:     t.name,
		ParentID: t.category,
		Kind:     domain.KindVoice,
		Overwrites: []domain.Overwrite{
			{Target: domain.Everyone, Allow: domain.PermViewRoom | domain.PermConnect},
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("create trigger room")
		return "", fmt.Errorf("create trigger: %w: %w", domain.ErrPlatformUnavailable, err)
	}
	t.set(id)
	logger.Info().Str("room", string(id)).Msg("trigger room ready")
	return id, nil
}
