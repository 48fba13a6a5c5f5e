package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/courtstats/internal/domain/model"
)

// AggregatorOption applies a configuration option to the Aggregator.
type AggregatorOption func(*Aggregator)

// WithAggregatorIntegrityHandler sets the receiver for skipped events.
func WithAggregatorIntegrityHandler(h IntegrityHandler) AggregatorOption {
	return func(a *Aggregator) {
		if h != nil {
			a.onIntegrity = h
		}
	}
}

// Aggregator builds a player's season summary. It holds no state besides
// the reader and is safe for concurrent use.
type Aggregator struct {
	reader      Reader
	onIntegrity IntegrityHandler
}

// NewAggregator creates an Aggregator over reader.
func NewAggregator(reader Reader, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		reader:      reader,
		onIntegrity: discardIntegrity,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summary computes totals, the per-action breakdown and event locations for
// one player. Returns *NotFoundError if the player does not exist.
func (a *Aggregator) Summary(ctx context.Context, playerID int64) (*Summary, error) {
	player, err := a.reader.Player(ctx, playerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{PlayerID: playerID}
		}
		return nil, fmt.Errorf("load player %d: %w", playerID, err)
	}

	events, err := a.reader.EventsForPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load events for player %d: %w", playerID, err)
	}

	s := &Summary{
		PlayerID:      player.ID,
		PlayerName:    player.Name,
		TeamName:      player.TeamName,
		Shots:         make([]ShotLocation, 0),
		Passes:        make([]PassLocation, 0),
		Turnovers:     make([]TurnoverLocation, 0),
		StatsByAction: make(map[model.ActionType]Aggregates, len(model.KnownActionTypes)),
	}

	// Single grouped pass: six reducers per action type, locations in order.
	groups := make(map[model.ActionType]*Aggregates)
	for _, e := range events {
		meta := e.Meta()
		if meta.PlayerID != playerID {
			a.onIntegrity(&DataIntegrityError{
				EventID:  meta.ID,
				PlayerID: meta.PlayerID,
				Reason:   fmt.Sprintf("returned for player %d", playerID),
			})
			continue
		}

		g, ok := groups[meta.Action]
		if !ok {
			g = &Aggregates{}
			groups[meta.Action] = g
		}
		g.Add(e)

		switch v := e.(type) {
		case model.Shot:
			s.Shots = append(s.Shots, ShotLocation{X: v.Loc.X, Y: v.Loc.Y, ActionType: meta.Action})
		case model.Pass:
			s.Passes = append(s.Passes, PassLocation{
				StartX:     v.Start.X,
				StartY:     v.Start.Y,
				EndX:       v.End.X,
				EndY:       v.End.Y,
				ActionType: meta.Action,
			})
		case model.Turnover:
			s.Turnovers = append(s.Turnovers, TurnoverLocation{X: v.Loc.X, Y: v.Loc.Y, ActionType: meta.Action})
		}
	}

	// Totals cover every group; the breakdown keeps only tracked action
	// types and always lists all of them.
	var total Aggregates
	for action, g := range groups {
		total.Merge(*g)
		if action.Known() {
			s.StatsByAction[action] = *g
		}
	}
	for _, action := range model.KnownActionTypes {
		if _, ok := s.StatsByAction[action]; !ok {
			s.StatsByAction[action] = Aggregates{}
		}
	}
	s.Totals = Totals(total)

	return s, nil
}
