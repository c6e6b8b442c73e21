// Package service serializes game operations per player and persists the
// result of every mutation.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cppla/socialquest/engine"
	"github.com/cppla/socialquest/store"
)

// ErrPersist wraps a save failure. The operation itself succeeded and the
// in-memory state reflects it.
var ErrPersist = errors.New("state not persisted")

// Result is an operation outcome plus a snapshot of the state after it.
type Result struct {
	engine.Outcome
	State *engine.State `json:"-"`
}

type player struct {
	mu    sync.Mutex
	state *engine.State
}

// GameService owns the live state of each player. Operations on one player
// run one at a time, including any remote scoring they wait on.
type GameService struct {
	engine *engine.Engine
	store  store.Store
	logger *zap.Logger

	mu      sync.Mutex
	players map[string]*player
	refresh singleflight.Group
}

func New(e *engine.Engine, st store.Store, logger *zap.Logger) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameService{engine: e, store: st, logger: logger, players: make(map[string]*player)}
}

// Engine exposes the rules engine for read-only derivations.
func (g *GameService) Engine() *engine.Engine { return g.engine }

func (g *GameService) player(key string) *player {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[key]
	if !ok {
		p = &player{}
		g.players[key] = p
	}
	return p
}

// load fills p.state from the store on first use. A player without a saved
// state starts fresh. Caller holds p.mu.
func (g *GameService) load(ctx context.Context, key string, p *player) error {
	if p.state != nil {
		return nil
	}
	s, err := g.store.Load(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s = engine.NewState()
	case err != nil:
		return fmt.Errorf("load state: %w", err)
	}
	p.state = s
	return nil
}

// Mutate runs fn against the player's state and saves the result. On a save
// failure the snapshot is still returned, along with an ErrPersist error.
func (g *GameService) Mutate(ctx context.Context, key string, fn func(*engine.State) error) (*engine.State, error) {
	p := g.player(key)
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := g.load(ctx, key, p); err != nil {
		return nil, err
	}
	if err := fn(p.state); err != nil {
		return nil, err
	}
	snap := p.state.Clone()
	if err := g.store.Save(ctx, key, snap); err != nil {
		g.logger.Error("save state failed", zap.String("player", key), zap.Error(err))
		return snap, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return snap, nil
}

// Snapshot returns a copy of the player's current state.
func (g *GameService) Snapshot(ctx context.Context, key string) (*engine.State, error) {
	p := g.player(key)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := g.load(ctx, key, p); err != nil {
		return nil, err
	}
	return p.state.Clone(), nil
}

func (g *GameService) apply(ctx context.Context, key string, op func(*engine.State) (engine.Outcome, error)) (Result, error) {
	var out engine.Outcome
	snap, err := g.Mutate(ctx, key, func(s *engine.State) error {
		var err error
		out, err = op(s)
		return err
	})
	if snap == nil {
		return Result{}, err
	}
	return Result{Outcome: out, State: snap}, err
}

// Refresh creates due daily, weekly and AI quests. Concurrent refreshes of
// one player share a single run.
func (g *GameService) Refresh(ctx context.Context, key string) (Result, error) {
	type shared struct {
		res Result
		err error
	}
	// The run is shared, so one caller going away must not fail the others.
	shareCtx := context.WithoutCancel(ctx)
	v, _, _ := g.refresh.Do(key, func() (interface{}, error) {
		res, err := g.apply(shareCtx, key, func(s *engine.State) (engine.Outcome, error) {
			return g.engine.RefreshQuests(shareCtx, s), nil
		})
		return shared{res: res, err: err}, nil
	})
	r := v.(shared)
	return r.res, r.err
}

func (g *GameService) AddAlly(ctx context.Context, key string, in engine.AllyInput) (Result, error) {
	return g.apply(ctx, key, func(s *engine.State) (engine.Outcome, error) {
		return g.engine.AddAlly(s, in), nil
	})
}

func (g *GameService) UpdateAlly(ctx context.Context, key, id string, in engine.AllyInput) (Result, error) {
	return g.apply(ctx, key, func(s *engine.State) (engine.Outcome, error) {
		return g.engine.UpdateAlly(s, id, in)
	})
}

func (g *GameService) DeleteAlly(ctx context.Context, key, id string) (Result, error) {
	return g.apply(ctx, key, func(s *engine.State) (engine.Outcome, error) {
		return g.engine.DeleteAlly(s, id)
	})
}

func (g *GameService) RecordInteraction(ctx context.Context, key string, in engine.InteractionInput) (Result, error) {
	return g.apply(ctx, key, func(s *engine.State) (engine.Outcome, error) {
		return g.engine.RecordInteraction(ctx, s, in)
	})
}

func (g *GameService) QuickLog(ctx context.Context, key, allyID string, t engine.InteractionType, notes string) (Result, error) {
	return g.apply(ctx, key, func(s *engine.State) (engine.Outcome, error) {
		return g.engine.QuickLog(ctx, s, allyID, t, notes)
	})
}

func (g *GameService) CompleteQuest(ctx context.Context, key, id string) (Result, error) {
	return g.apply(ctx, key, func(s *engine.State) (engine.Outcome, error) {
		return g.engine.CompleteQuest(s, id)
	})
}

func (g *GameService) GenerateQuest(ctx context.Context, key string) (Result, error) {
	return g.apply(ctx, key, func(s *engine.State) (engine.Outcome, error) {
		return g.engine.GenerateQuest(ctx, s)
	})
}

// AddReminder stores r and returns it with its assigned id.
func (g *GameService) AddReminder(ctx context.Context, key string, r engine.Reminder) (engine.Reminder, *engine.State, error) {
	var added engine.Reminder
	snap, err := g.Mutate(ctx, key, func(s *engine.State) error {
		rem, err := g.engine.AddReminder(s, r)
		if err != nil {
			return err
		}
		added = *rem
		return nil
	})
	return added, snap, err
}

func (g *GameService) RemoveReminder(ctx context.Context, key, id string) (*engine.State, error) {
	return g.Mutate(ctx, key, func(s *engine.State) error {
		return engine.RemoveReminder(s, id)
	})
}

func (g *GameService) UpdateSettings(ctx context.Context, key string, settings engine.Settings) (*engine.State, error) {
	return g.Mutate(ctx, key, func(s *engine.State) error {
		if settings.Theme == "" {
			settings.Theme = s.Settings.Theme
		}
		s.Settings = settings
		return nil
	})
}

// Import replaces the player's state with an uploaded snapshot and
// re-evaluates achievements against it.
func (g *GameService) Import(ctx context.Context, key string, imported *engine.State) (Result, error) {
	return g.apply(ctx, key, func(s *engine.State) (engine.Outcome, error) {
		*s = *imported.Clone()
		engine.RaiseSocialLevel(s)
		return engine.Outcome{Events: g.engine.CheckAchievements(s)}, nil
	})
}
