package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/stats"
)

// SQLStore keeps data in SQLite through gorm. It aggregates totals in SQL.
type SQLStore struct {
	db   *gorm.DB
	opts options
}

// OpenSQLite opens (or creates) the SQLite database at dsn and migrates it.
func OpenSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	if err := ensureSQLiteDirectory(dsn); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{Logger: newGormLog(o.log)})
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite: %v", ErrOpen, err)
	}
	return NewSQLStore(ctx, db, opts...)
}

// NewSQLStore wraps an open gorm connection and migrates the schema.
func NewSQLStore(ctx context.Context, db *gorm.DB, opts ...Option) (*SQLStore, error) {
	s := &SQLStore{db: db, opts: buildOptions(opts)}
	if err := db.WithContext(ctx).AutoMigrate(&teamRow{}, &gameRow{}, &playerRow{}, &eventRow{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", ErrOpen, err)
	}
	return s, nil
}

func ensureSQLiteDirectory(dsn string) error {
	candidate := strings.TrimSpace(dsn)
	if candidate == "" || candidate == ":memory:" {
		return nil
	}
	candidate = strings.TrimPrefix(candidate, "file:")
	if idx := strings.Index(candidate, "?"); idx >= 0 {
		candidate = candidate[:idx]
	}
	dir := filepath.Dir(candidate)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Driver implements Store.
func (s *SQLStore) Driver() string { return DriverSQLite }

// Close implements Store.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertTeams implements ingest.Writer.
func (s *SQLStore) UpsertTeams(ctx context.Context, teams []model.Team) error {
	defer observe(DriverSQLite, "upsert_teams", time.Now())
	if len(teams) == 0 {
		return nil
	}
	rows := make([]teamRow, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, teamRow{ID: t.ID, Name: t.Name})
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).CreateInBatches(rows, s.opts.writeBatch).Error
}

// UpsertGames implements ingest.Writer.
func (s *SQLStore) UpsertGames(ctx context.Context, games []model.Game) error {
	defer observe(DriverSQLite, "upsert_games", time.Now())
	if len(games) == 0 {
		return nil
	}
	rows := make([]gameRow, 0, len(games))
	for _, g := range games {
		rows = append(rows, gameRow{ID: g.ID, Date: g.Date})
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"date"}),
	}).CreateInBatches(rows, s.opts.writeBatch).Error
}

// ReplacePlayer implements ingest.Writer in one transaction.
func (s *SQLStore) ReplacePlayer(ctx context.Context, p model.Player, events []model.Event) error {
	defer observe(DriverSQLite, "replace_player", time.Now())

	// Rows with and without an id go into separate INSERTs: gorm omits a
	// zero primary key only when every row in the batch has it zero.
	var withID, withoutID []eventRow
	for i, e := range events {
		if e.Meta().PlayerID != p.ID {
			return fmt.Errorf("event for player %d in player %d's list", e.Meta().PlayerID, p.ID)
		}
		r := rowFromEvent(e, i)
		if r.ID != 0 {
			withID = append(withID, r)
		} else {
			withoutID = append(withoutID, r)
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := playerRow{ID: p.ID, Name: p.Name, TeamID: p.TeamID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "team_id"}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert player: %w", err)
		}
		if err := tx.Where("player_id = ?", p.ID).Delete(&eventRow{}).Error; err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		if len(withID) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).CreateInBatches(withID, s.opts.writeBatch).Error; err != nil {
				return fmt.Errorf("insert events: %w", err)
			}
		}
		if len(withoutID) > 0 {
			if err := tx.CreateInBatches(withoutID, s.opts.writeBatch).Error; err != nil {
				return fmt.Errorf("insert events: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLStore) playerQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("players AS p").
		Select("p.id, p.name, p.team_id, COALESCE(t.name, '') AS team_name").
		Joins("LEFT JOIN teams t ON t.id = p.team_id")
}

// Player implements stats.Reader.
func (s *SQLStore) Player(ctx context.Context, id int64) (model.Player, error) {
	defer observe(DriverSQLite, "player", time.Now())
	var views []playerView
	if err := s.playerQuery(ctx).Where("p.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return model.Player{}, fmt.Errorf("player %d: %w", id, err)
	}
	if len(views) == 0 {
		return model.Player{}, fmt.Errorf("player %d: %w", id, stats.ErrNotFound)
	}
	return views[0].model(), nil
}

// Players implements stats.Reader, ordered by id.
func (s *SQLStore) Players(ctx context.Context) ([]model.Player, error) {
	defer observe(DriverSQLite, "players", time.Now())
	var views []playerView
	if err := s.playerQuery(ctx).Order("p.id").Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	out := make([]model.Player, 0, len(views))
	for _, v := range views {
		out = append(out, v.model())
	}
	return out, nil
}

// EventsForPlayer implements stats.Reader.
func (s *SQLStore) EventsForPlayer(ctx context.Context, id int64) ([]model.Event, error) {
	defer observe(DriverSQLite, "events_for_player", time.Now())
	var rows []eventRow
	if err := s.db.WithContext(ctx).Where("player_id = ?", id).Order("seq, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("events for player %d: %w", id, err)
	}
	return decodeRows(rows, s.opts.integrity), nil
}

// EventsForPlayers implements stats.Reader.
func (s *SQLStore) EventsForPlayers(ctx context.Context, ids []int64) (map[int64][]model.Event, error) {
	defer observe(DriverSQLite, "events_for_players", time.Now())
	out := make(map[int64][]model.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []eventRow
	if err := s.db.WithContext(ctx).Where("player_id IN ?", ids).Order("player_id, seq, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("events for %d players: %w", len(ids), err)
	}
	for _, e := range decodeRows(rows, s.opts.integrity) {
		pid := e.Meta().PlayerID
		out[pid] = append(out[pid], e)
	}
	return out, nil
}

// PlayerTotals implements stats.TotalsReader with one grouped query.
func (s *SQLStore) PlayerTotals(ctx context.Context) (map[int64]stats.Aggregates, error) {
	defer observe(DriverSQLite, "player_totals", time.Now())
	var rows []totalsRow
	if err := s.db.WithContext(ctx).Raw(playerTotalsSQL).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("player totals: %w", err)
	}
	out := make(map[int64]stats.Aggregates, len(rows))
	for _, r := range rows {
		out[r.PlayerID] = r.aggregates()
	}
	return out, nil
}

// Counts implements Store.
func (s *SQLStore) Counts(ctx context.Context) (Counts, error) {
	defer observe(DriverSQLite, "counts", time.Now())
	var c Counts
	db := s.db.WithContext(ctx)
	for _, q := range []struct {
		model any
		dst   *int64
	}{
		{&teamRow{}, &c.Teams},
		{&gameRow{}, &c.Games},
		{&playerRow{}, &c.Players},
		{&eventRow{}, &c.Events},
	} {
		if err := db.Model(q.model).Count(q.dst).Error; err != nil {
			return Counts{}, fmt.Errorf("counts: %w", err)
		}
	}
	return c, nil
}
