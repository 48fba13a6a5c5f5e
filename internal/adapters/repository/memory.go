package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/stats"
)

// MemoryStore keeps everything in process maps. It has no aggregation
// push-down, so rankers read it through batched event reads.
type MemoryStore struct {
	mu      sync.RWMutex
	teams   map[int64]model.Team
	games   map[int64]model.Game
	players map[int64]model.Player
	events  map[int64][]model.Event
	nextID  int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(_ ...Option) *MemoryStore {
	return &MemoryStore{
		teams:   make(map[int64]model.Team),
		games:   make(map[int64]model.Game),
		players: make(map[int64]model.Player),
		events:  make(map[int64][]model.Event),
		nextID:  1,
	}
}

// Driver implements Store.
func (s *MemoryStore) Driver() string { return DriverMemory }

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// UpsertTeams implements ingest.Writer.
func (s *MemoryStore) UpsertTeams(_ context.Context, teams []model.Team) error {
	defer observe(DriverMemory, "upsert_teams", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range teams {
		s.teams[t.ID] = t
	}
	return nil
}

// UpsertGames implements ingest.Writer.
func (s *MemoryStore) UpsertGames(_ context.Context, games []model.Game) error {
	defer observe(DriverMemory, "upsert_games", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range games {
		s.games[g.ID] = g
	}
	return nil
}

// ReplacePlayer implements ingest.Writer.
func (s *MemoryStore) ReplacePlayer(_ context.Context, p model.Player, events []model.Event) error {
	defer observe(DriverMemory, "replace_player", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		if e.Meta().PlayerID != p.ID {
			return fmt.Errorf("event for player %d in player %d's list", e.Meta().PlayerID, p.ID)
		}
	}

	p.TeamName = ""
	s.players[p.ID] = p
	stored := make([]model.Event, 0, len(events))
	for _, e := range events {
		stored = append(stored, s.withID(e))
	}
	s.events[p.ID] = stored
	return nil
}

// withID assigns the next free id to events that have none.
func (s *MemoryStore) withID(e model.Event) model.Event {
	id := e.Meta().ID
	if id >= s.nextID {
		s.nextID = id + 1
	}
	if id != 0 {
		return e
	}
	id = s.nextID
	s.nextID++
	switch v := e.(type) {
	case model.Shot:
		v.ID = id
		return v
	case model.Pass:
		v.ID = id
		return v
	case model.Turnover:
		v.ID = id
		return v
	}
	return e
}

// Player implements stats.Reader.
func (s *MemoryStore) Player(_ context.Context, id int64) (model.Player, error) {
	defer observe(DriverMemory, "player", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return model.Player{}, fmt.Errorf("player %d: %w", id, stats.ErrNotFound)
	}
	return s.resolve(p), nil
}

func (s *MemoryStore) resolve(p model.Player) model.Player {
	p.TeamName = s.teams[p.TeamID].Name
	return p
}

// EventsForPlayer implements stats.Reader.
func (s *MemoryStore) EventsForPlayer(_ context.Context, id int64) ([]model.Event, error) {
	defer observe(DriverMemory, "events_for_player", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[id]), nil
}

// Players implements stats.Reader, ordered by id.
func (s *MemoryStore) Players(_ context.Context) ([]model.Player, error) {
	defer observe(DriverMemory, "players", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, s.resolve(p))
	}
	slices.SortFunc(out, func(a, b model.Player) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// EventsForPlayers implements stats.Reader.
func (s *MemoryStore) EventsForPlayers(_ context.Context, ids []int64) (map[int64][]model.Event, error) {
	defer observe(DriverMemory, "events_for_players", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64][]model.Event, len(ids))
	for _, id := range ids {
		if evs := s.events[id]; len(evs) > 0 {
			out[id] = slices.Clone(evs)
		}
	}
	return out, nil
}

// Counts implements Store.
func (s *MemoryStore) Counts(_ context.Context) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Counts{
		Teams:   int64(len(s.teams)),
		Games:   int64(len(s.games)),
		Players: int64(len(s.players)),
	}
	for _, evs := range s.events {
		c.Events += int64(len(evs))
	}
	return c, nil
}
