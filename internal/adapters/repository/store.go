// Package repository implements the player and event stores behind the
// stats reader and the ingest writer: in-memory, SQLite via gorm and
// PostgreSQL via pgx.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/courtstats/internal/domain/stats"
	"github.com/okian/courtstats/internal/ingest"
	"github.com/okian/courtstats/pkg/logger"
	"github.com/okian/courtstats/pkg/metrics"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Counts holds row counts per table.
type Counts struct {
	Teams   int64 `json:"teams"`
	Games   int64 `json:"games"`
	Players int64 `json:"players"`
	Events  int64 `json:"events"`
}

// Store is a readable and writable player/event store.
type Store interface {
	stats.Reader
	ingest.Writer

	// Counts returns row counts for monitoring.
	Counts(ctx context.Context) (Counts, error)
	// Driver names the backing implementation.
	Driver() string
	Close() error
}

var (
	_ Store              = (*MemoryStore)(nil)
	_ Store              = (*SQLStore)(nil)
	_ Store              = (*PostgresStore)(nil)
	_ stats.TotalsReader = (*SQLStore)(nil)
	_ stats.TotalsReader = (*PostgresStore)(nil)
)

// Open creates the store selected by driver. dsn is ignored for memory.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverSQLite:
		return OpenSQLite(ctx, dsn, opts...)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// observe records the latency of one repository operation.
func observe(driver, op string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(driver, op, float64(time.Since(start).Microseconds())/1000)
}

func logIntegrity(l logger.Logger, err *stats.DataIntegrityError) {
	metrics.RecordIntegrityViolation("repository")
	l.Warn(context.Background(), "skipping undecodable event",
		logger.Int64("eventID", err.EventID),
		logger.Int64("playerID", err.PlayerID),
		logger.String("reason", err.Reason),
	)
}
