// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/courtstats/internal/adapters/repository"
	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/stats"
	"github.com/okian/courtstats/internal/ingest"
	"github.com/okian/courtstats/pkg/logger"
	"github.com/okian/courtstats/pkg/metrics"
)

// ErrNotStarted is returned by read and load operations before Start.
var ErrNotStarted = errors.New("service not started")

// Service answers player summary queries over a store and reloads data.
type Service struct {
	mu     sync.RWMutex
	loadMu sync.Mutex

	// Core components
	store      repository.Store
	ownsStore  bool
	aggregator *stats.Aggregator
	ranker     *stats.Ranker
	loader     *ingest.Loader

	// Configuration
	driver        string
	dsn           string
	dataDir       string
	loadOnStart   bool
	rankCacheTTL  time.Duration
	rankBatchSize int

	// State
	started   bool
	startedAt time.Time
	lastLoad  *ingest.Report

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects an already open store. The service does not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStorage selects the store Start opens: memory, sqlite or postgres.
func WithStorage(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.driver = driver
			s.dsn = dsn
		}
	}
}

// WithDataDir sets the directory Reload reads by default; when loadOnStart
// is true Start imports it before returning.
func WithDataDir(dir string, loadOnStart bool) Option {
	return func(s *Service) {
		s.dataDir = dir
		s.loadOnStart = loadOnStart
	}
}

// WithRankCacheTTL keeps a built rank table for ttl. Zero disables caching.
func WithRankCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.rankCacheTTL = ttl
		}
	}
}

// WithRankBatchSize bounds the players per bulk event read while ranking.
func WithRankBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rankBatchSize = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		driver:        repository.DriverMemory,
		rankCacheTTL:  30 * time.Second,
		rankBatchSize: 500,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, wires the stats components and optionally loads
// the data directory.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting courtstats service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.driver, s.dsn, repository.WithLogger(s.logger.Named("repository")))
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}

	s.aggregator = stats.NewAggregator(s.store,
		stats.WithAggregatorIntegrityHandler(s.integrityHandler("aggregator")),
	)
	s.ranker = stats.NewRanker(s.store,
		stats.WithBatchSize(s.rankBatchSize),
		stats.WithCacheTTL(s.rankCacheTTL),
		stats.WithRankerIntegrityHandler(s.integrityHandler("ranker")),
		stats.WithObserver(&rankObserver{log: s.logger}),
	)
	s.loader = ingest.NewLoader(s.store)
	s.started = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info(ctx, "courtstats service started",
		logger.String("driver", s.store.Driver()),
		logger.Duration("rankCacheTTL", s.rankCacheTTL),
		logger.Int("rankBatchSize", s.rankBatchSize),
	)

	if s.loadOnStart && s.dataDir != "" {
		if _, err := s.Reload(ctx, s.dataDir); err != nil {
			return fmt.Errorf("initial load: %w", err)
		}
	}
	s.refreshStoreMetrics(ctx)
	return nil
}

// Stop closes the store if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping courtstats service...")

	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to close store", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "courtstats service stopped")
}

func (s *Service) components() (*stats.Aggregator, *stats.Ranker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.aggregator, s.ranker, nil
}

// PlayerSummary returns the summary of one player with league ranks.
// Unknown players yield an error matching stats.ErrNotFound.
func (s *Service) PlayerSummary(ctx context.Context, playerID int64) (*stats.Summary, error) {
	agg, ranker, err := s.components()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	summary, err := agg.Summary(ctx, playerID)
	if err == nil {
		summary, err = ranker.Ranks(ctx, summary)
	}
	metrics.RecordSummaryLatency(float64(time.Since(start).Microseconds()) / 1000)

	switch {
	case err == nil:
		metrics.RecordSummaryResult("ok")
		return summary, nil
	case errors.Is(err, stats.ErrNotFound):
		metrics.RecordSummaryResult("not_found")
		return nil, err
	default:
		metrics.RecordSummaryResult("error")
		metrics.RecordErrorByComponent("service", "summary")
		s.logger.Error(ctx, "player summary failed", logger.Int64("playerID", playerID), logger.Error(err))
		return nil, err
	}
}

// Players lists up to limit players ordered by id. A limit of zero or less
// returns all of them.
func (s *Service) Players(ctx context.Context, limit int) ([]model.Player, error) {
	s.mu.RLock()
	store, started := s.store, s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	players, err := store.Players(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "players")
		return nil, err
	}
	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}

// Reload imports dir (the configured data directory when empty) and drops
// the cached rank table. Reloads never overlap.
func (s *Service) Reload(ctx context.Context, dir string) (ingest.Report, error) {
	s.mu.RLock()
	loader, ranker, started := s.loader, s.ranker, s.started
	if dir == "" {
		dir = s.dataDir
	}
	s.mu.RUnlock()
	if !started {
		return ingest.Report{}, ErrNotStarted
	}
	if dir == "" {
		return ingest.Report{}, errors.New("no data directory configured")
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.logger.Info(ctx, "loading data", logger.String("dir", dir))
	start := time.Now()
	rep, err := loader.Load(ctx, dir)
	// Partial writes are possible, so the cache goes either way.
	ranker.Invalidate()
	tookMs := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		metrics.RecordIngestRun("error", tookMs)
		metrics.RecordErrorByComponent("ingest", "load")
		s.logger.Error(ctx, "data load failed",
			logger.String("runID", rep.RunID), logger.String("dir", dir), logger.Error(err))
		return rep, err
	}

	metrics.RecordIngestRun("ok", tookMs)
	metrics.RecordIngestRecords("teams", rep.Teams)
	metrics.RecordIngestRecords("games", rep.Games)
	metrics.RecordIngestRecords("players", rep.Players)
	metrics.RecordIngestRecords("events", rep.Events)
	metrics.RecordIngestSkipped(rep.SkippedEvents)
	for _, reason := range rep.Skipped {
		s.logger.Warn(ctx, "skipped event", logger.String("runID", rep.RunID), logger.String("reason", reason))
	}
	s.logger.Info(ctx, "data loaded",
		logger.String("runID", rep.RunID),
		logger.Int("teams", rep.Teams),
		logger.Int("games", rep.Games),
		logger.Int("players", rep.Players),
		logger.Int("events", rep.Events),
		logger.Int("skippedEvents", rep.SkippedEvents),
		logger.Duration("took", rep.Took),
	)

	s.mu.Lock()
	s.lastLoad = &rep
	s.mu.Unlock()
	s.refreshStoreMetrics(ctx)
	return rep, nil
}

func (s *Service) refreshStoreMetrics(ctx context.Context) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return
	}
	c, err := store.Counts(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to count store rows", logger.Error(err))
		return
	}
	metrics.UpdateStoreRecords("teams", c.Teams)
	metrics.UpdateStoreRecords("games", c.Games)
	metrics.UpdateStoreRecords("players", c.Players)
	metrics.UpdateStoreRecords("events", c.Events)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"started":         s.started,
		"driver":          s.driver,
		"dataDir":         s.dataDir,
		"rankCacheTTLms":  s.rankCacheTTL.Milliseconds(),
		"rankBatchSize":   s.rankBatchSize,
		"lastLoadRunID":   nil,
		"lastLoadSkipped": 0,
	}
	if s.lastLoad != nil {
		out["lastLoadRunID"] = s.lastLoad.RunID
		out["lastLoadSkipped"] = s.lastLoad.SkippedEvents
	}
	if !s.started {
		return out
	}

	out["driver"] = s.store.Driver()
	out["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	c, err := s.store.Counts(context.Background())
	if err != nil {
		out["countsError"] = err.Error()
		return out
	}
	out["teams"] = c.Teams
	out["games"] = c.Games
	out["players"] = c.Players
	out["events"] = c.Events
	return out
}

// integrityHandler logs and counts events the stats components skipped.
func (s *Service) integrityHandler(component string) stats.IntegrityHandler {
	log := s.logger.Named(component)
	return func(err *stats.DataIntegrityError) {
		metrics.RecordIntegrityViolation(component)
		log.Warn(context.Background(), "skipping inconsistent event",
			logger.Int64("eventID", err.EventID),
			logger.Int64("playerID", err.PlayerID),
			logger.String("reason", err.Reason),
		)
	}
}

// rankObserver feeds rank table events into metrics.
type rankObserver struct {
	log logger.Logger
}

func (o *rankObserver) RankTableBuilt(players int, took time.Duration) {
	metrics.RecordRankCacheMiss()
	metrics.RecordRankTableBuild(players, float64(took.Microseconds())/1000)
	o.log.Debug(context.Background(), "rank table built",
		logger.Int("players", players), logger.Duration("took", took))
}

func (o *rankObserver) RankTableCacheHit() {
	metrics.RecordRankCacheHit()
}
