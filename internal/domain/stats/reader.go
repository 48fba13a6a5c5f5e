package stats

import (
	"context"

	"github.com/okian/courtstats/internal/domain/model"
)

// Reader is the read-only view of the event store the engine works on.
type Reader interface {
	// Player returns the player with the team name resolved.
	// Returns an error wrapping ErrNotFound if the id is unknown.
	Player(ctx context.Context, id int64) (model.Player, error)

	// EventsForPlayer returns the player's events in source order.
	EventsForPlayer(ctx context.Context, id int64) ([]model.Event, error)

	// Players returns the whole population.
	Players(ctx context.Context) ([]model.Player, error)

	// EventsForPlayers is the bulk form of EventsForPlayer. Ids without
	// events may be absent from the result.
	EventsForPlayers(ctx context.Context, ids []int64) (map[int64][]model.Event, error)
}

// TotalsReader is implemented by stores that can compute season totals for
// every player in one grouped query. Every player must be present in the
// result, including players without events.
type TotalsReader interface {
	PlayerTotals(ctx context.Context) (map[int64]Aggregates, error)
}
