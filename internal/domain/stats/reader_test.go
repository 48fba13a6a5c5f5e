package stats_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/stats"
)

// fakeReader is an in-memory stats.Reader that counts calls.
type fakeReader struct {
	mu      sync.Mutex
	players []model.Player
	events  map[int64][]model.Event

	// extra is merged into EventsForPlayers results to simulate orphans.
	extra map[int64][]model.Event

	playersErr error
	batchCalls int
	batchSizes []int
}

func newFakeReader() *fakeReader {
	return &fakeReader{events: make(map[int64][]model.Event)}
}

func (f *fakeReader) addPlayer(id int64, name, team string, events ...model.Event) {
	f.players = append(f.players, model.Player{ID: id, Name: name, TeamName: team})
	f.events[id] = append(f.events[id], events...)
}

func (f *fakeReader) Player(_ context.Context, id int64) (model.Player, error) {
	for _, p := range f.players {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Player{}, fmt.Errorf("player %d: %w", id, stats.ErrNotFound)
}

func (f *fakeReader) EventsForPlayer(_ context.Context, id int64) ([]model.Event, error) {
	return f.events[id], nil
}

func (f *fakeReader) Players(_ context.Context) ([]model.Player, error) {
	if f.playersErr != nil {
		return nil, f.playersErr
	}
	return f.players, nil
}

func (f *fakeReader) EventsForPlayers(_ context.Context, ids []int64) (map[int64][]model.Event, error) {
	f.mu.Lock()
	f.batchCalls++
	f.batchSizes = append(f.batchSizes, len(ids))
	f.mu.Unlock()

	out := make(map[int64][]model.Event, len(ids))
	for _, id := range ids {
		if evs, ok := f.events[id]; ok && len(evs) > 0 {
			out[id] = evs
		}
	}
	for id, evs := range f.extra {
		out[id] = append(out[id], evs...)
	}
	return out, nil
}

// totalsReader adds storage-side aggregation on top of fakeReader.
type totalsReader struct {
	*fakeReader
	totals      map[int64]stats.Aggregates
	totalsCalls int
}

func (t *totalsReader) PlayerTotals(_ context.Context) (map[int64]stats.Aggregates, error) {
	t.totalsCalls++
	out := make(map[int64]stats.Aggregates, len(t.totals))
	for id, a := range t.totals {
		out[id] = a
	}
	return out, nil
}

func shot(player int64, action model.ActionType, points int, foul bool) model.Event {
	return model.Shot{
		EventMeta:    model.EventMeta{PlayerID: player, GameID: 1, Action: action},
		Points:       points,
		ShootingFoul: foul,
		Loc:          model.Point{X: float64(points), Y: 1},
	}
}

func pass(player int64, action model.ActionType, potentialAssist bool) model.Event {
	return model.Pass{
		EventMeta:       model.EventMeta{PlayerID: player, GameID: 1, Action: action},
		Completed:       true,
		PotentialAssist: potentialAssist,
		Start:           model.Point{X: 1, Y: 2},
		End:             model.Point{X: 3, Y: 4},
	}
}

func turnover(player int64, action model.ActionType) model.Event {
	return model.Turnover{
		EventMeta: model.EventMeta{PlayerID: player, GameID: 1, Action: action},
		Loc:       model.Point{X: -5, Y: 6},
	}
}
