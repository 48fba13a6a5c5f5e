package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/courtstats/internal/domain/ranking"
)

// Default ranker configuration constants.
const (
	defaultBatchSize = 500
)

// Observer is notified about rank table builds and cache hits.
type Observer interface {
	RankTableBuilt(players int, took time.Duration)
	RankTableCacheHit()
}

type noopObserver struct{}

func (noopObserver) RankTableBuilt(int, time.Duration) {}
func (noopObserver) RankTableCacheHit()                {}

// RankerOption applies a configuration option to the Ranker.
type RankerOption func(*Ranker)

// WithBatchSize bounds the number of ids per EventsForPlayers call.
func WithBatchSize(n int) RankerOption {
	return func(r *Ranker) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithCacheTTL keeps a built rank table for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) RankerOption {
	return func(r *Ranker) {
		if ttl > 0 {
			r.cacheTTL = ttl
		}
	}
}

// WithRankerIntegrityHandler sets the receiver for skipped events.
func WithRankerIntegrityHandler(h IntegrityHandler) RankerOption {
	return func(r *Ranker) {
		if h != nil {
			r.onIntegrity = h
		}
	}
}

// WithObserver sets the build/cache observer.
func WithObserver(o Observer) RankerOption {
	return func(r *Ranker) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithClock overrides time.Now, for cache expiry in tests.
func WithClock(now func() time.Time) RankerOption {
	return func(r *Ranker) {
		if now != nil {
			r.now = now
		}
	}
}

// RankTable is an immutable snapshot of population totals and ranks.
type RankTable struct {
	Totals  map[int64]Aggregates
	Ranks   map[int64]Ranks
	BuiltAt time.Time
}

// Lookup returns the ranks of one player.
func (t *RankTable) Lookup(playerID int64) (Ranks, bool) {
	r, ok := t.Ranks[playerID]
	return r, ok
}

// Ranker ranks every player for each statistic and merges one player's
// ranks into a summary.
type Ranker struct {
	reader      Reader
	batchSize   int
	cacheTTL    time.Duration
	onIntegrity IntegrityHandler
	observer    Observer
	now         func() time.Time

	// snapshot is the last published table; nil when empty or invalidated.
	snapshot atomic.Pointer[RankTable]
	// generation is bumped by Invalidate; a build only publishes when it
	// is unchanged since the build started.
	generation atomic.Uint64
	// buildMu collapses concurrent rebuilds into one.
	buildMu sync.Mutex
}

// NewRanker creates a Ranker over reader.
func NewRanker(reader Reader, opts ...RankerOption) *Ranker {
	r := &Ranker{
		reader:      reader,
		batchSize:   defaultBatchSize,
		onIntegrity: discardIntegrity,
		observer:    noopObserver{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ranks sets summary.Ranks from a freshly computed (or cached) population
// table and returns the same summary.
func (r *Ranker) Ranks(ctx context.Context, summary *Summary) (*Summary, error) {
	if summary == nil {
		return nil, errors.New("rank: nil summary")
	}
	table, err := r.Table(ctx)
	if err != nil {
		return nil, err
	}
	ranks, ok := table.Lookup(summary.PlayerID)
	if !ok {
		return nil, &NotFoundError{PlayerID: summary.PlayerID}
	}
	summary.Ranks = &ranks
	return summary, nil
}

// Table returns the population rank table, rebuilding it when the cache is
// disabled, empty or expired.
func (r *Ranker) Table(ctx context.Context) (*RankTable, error) {
	if t := r.cached(); t != nil {
		r.observer.RankTableCacheHit()
		return t, nil
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	// Another caller may have rebuilt while we waited.
	if t := r.cached(); t != nil {
		r.observer.RankTableCacheHit()
		return t, nil
	}

	gen := r.generation.Load()
	start := r.now()
	totals, err := r.populationTotals(ctx)
	if err != nil {
		return nil, err
	}
	t := buildTable(totals)
	t.BuiltAt = r.now()
	r.observer.RankTableBuilt(len(totals), t.BuiltAt.Sub(start))

	if r.cacheTTL > 0 && r.generation.Load() == gen {
		r.snapshot.Store(t)
		// Invalidate may have run between the check and the store.
		if r.generation.Load() != gen {
			r.snapshot.CompareAndSwap(t, nil)
		}
	}
	return t, nil
}

// Invalidate drops the cached table and keeps any build already in flight
// from publishing. Call it after every data load.
func (r *Ranker) Invalidate() {
	r.generation.Add(1)
	r.snapshot.Store(nil)
}

func (r *Ranker) cached() *RankTable {
	if r.cacheTTL <= 0 {
		return nil
	}
	t := r.snapshot.Load()
	if t == nil || r.now().Sub(t.BuiltAt) >= r.cacheTTL {
		return nil
	}
	return t
}

// populationTotals prefers storage-side grouped aggregation and falls back
// to batched event reads.
func (r *Ranker) populationTotals(ctx context.Context) (map[int64]Aggregates, error) {
	if tr, ok := r.reader.(TotalsReader); ok {
		totals, err := tr.PlayerTotals(ctx)
		if err != nil {
			return nil, fmt.Errorf("load player totals: %w", err)
		}
		return totals, nil
	}

	players, err := r.reader.Players(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}

	totals := make(map[int64]Aggregates, len(players))
	for _, p := range players {
		totals[p.ID] = Aggregates{}
	}

	for start := 0; start < len(players); start += r.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+r.batchSize, len(players))

		requested := make(map[int64]struct{}, end-start)
		ids := make([]int64, 0, end-start)
		for _, p := range players[start:end] {
			requested[p.ID] = struct{}{}
			ids = append(ids, p.ID)
		}

		batch, err := r.reader.EventsForPlayers(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load events for %d players: %w", len(ids), err)
		}

		for pid, events := range batch {
			if _, ok := requested[pid]; !ok {
				for _, e := range events {
					r.onIntegrity(&DataIntegrityError{
						EventID:  e.Meta().ID,
						PlayerID: e.Meta().PlayerID,
						Reason:   fmt.Sprintf("returned under unrequested player %d", pid),
					})
				}
				continue
			}
			agg := totals[pid]
			for _, e := range events {
				if e.Meta().PlayerID != pid {
					r.onIntegrity(&DataIntegrityError{
						EventID:  e.Meta().ID,
						PlayerID: e.Meta().PlayerID,
						Reason:   fmt.Sprintf("returned for player %d", pid),
					})
					continue
				}
				agg.Add(e)
			}
			totals[pid] = agg
		}
	}
	return totals, nil
}

// buildTable ranks every statistic independently.
func buildTable(totals map[int64]Aggregates) *RankTable {
	t := &RankTable{
		Totals: totals,
		Ranks:  make(map[int64]Ranks, len(totals)),
	}

	values := make(map[int64]int64, len(totals))
	for _, stat := range AllStats {
		for id, agg := range totals {
			values[id] = agg.Value(stat)
		}
		for id, rank := range ranking.Compute(values) {
			rk := t.Ranks[id]
			rk.set(stat, rank)
			t.Ranks[id] = rk
		}
	}
	return t
}
