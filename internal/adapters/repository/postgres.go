package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/stats"
)

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id   BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id   BIGINT PRIMARY KEY,
		date TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id      BIGINT PRIMARY KEY,
		name    TEXT NOT NULL,
		team_id BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_players_team_id ON players (team_id)`,
	`CREATE TABLE IF NOT EXISTS events (
		id                  BIGSERIAL PRIMARY KEY,
		player_id           BIGINT NOT NULL,
		seq                 INTEGER NOT NULL,
		game_id             BIGINT NOT NULL,
		event_type          VARCHAR(16) NOT NULL,
		action_type         VARCHAR(32) NOT NULL,
		points              INTEGER,
		is_shooting_foul    BOOLEAN,
		shot_loc_x          DOUBLE PRECISION,
		shot_loc_y          DOUBLE PRECISION,
		is_pass_completed   BOOLEAN,
		is_potential_assist BOOLEAN,
		pass_start_loc_x    DOUBLE PRECISION,
		pass_start_loc_y    DOUBLE PRECISION,
		pass_end_loc_x      DOUBLE PRECISION,
		pass_end_loc_y      DOUBLE PRECISION,
		turnover_loc_x      DOUBLE PRECISION,
		turnover_loc_y      DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_player_seq ON events (player_id, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_events_game_id ON events (game_id)`,
}

// eventColumns lists every column but id, in eventRow.args order.
const eventColumns = `player_id, seq, game_id, event_type, action_type,
	points, is_shooting_foul, shot_loc_x, shot_loc_y,
	is_pass_completed, is_potential_assist, pass_start_loc_x, pass_start_loc_y, pass_end_loc_x, pass_end_loc_y,
	turnover_loc_x, turnover_loc_y`

const (
	pgPlayerSelect = `SELECT p.id, p.name, p.team_id, COALESCE(t.name, '')
		FROM players p LEFT JOIN teams t ON t.id = p.team_id`

	pgEventSelect = `SELECT id, ` + eventColumns + ` FROM events`

	pgInsertEvent = `INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	pgUpsertEventWithID = `INSERT INTO events (id, ` + eventColumns + `)
		VALUES ($18, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			player_id = EXCLUDED.player_id, seq = EXCLUDED.seq, game_id = EXCLUDED.game_id,
			event_type = EXCLUDED.event_type, action_type = EXCLUDED.action_type,
			points = EXCLUDED.points, is_shooting_foul = EXCLUDED.is_shooting_foul,
			shot_loc_x = EXCLUDED.shot_loc_x, shot_loc_y = EXCLUDED.shot_loc_y,
			is_pass_completed = EXCLUDED.is_pass_completed, is_potential_assist = EXCLUDED.is_potential_assist,
			pass_start_loc_x = EXCLUDED.pass_start_loc_x, pass_start_loc_y = EXCLUDED.pass_start_loc_y,
			pass_end_loc_x = EXCLUDED.pass_end_loc_x, pass_end_loc_y = EXCLUDED.pass_end_loc_y,
			turnover_loc_x = EXCLUDED.turnover_loc_x, turnover_loc_y = EXCLUDED.turnover_loc_y`

	// Explicit ids do not advance the serial; move it past them.
	pgResyncEventIDs = `SELECT setval(pg_get_serial_sequence('events', 'id'),
		(SELECT COALESCE(MAX(id), 0) + 1 FROM events), false)`
)

func (r eventRow) args() []any {
	return []any{
		r.PlayerID, r.Seq, r.GameID, r.EventType, r.ActionType,
		r.Points, r.IsShootingFoul, r.ShotLocX, r.ShotLocY,
		r.IsPassCompleted, r.IsPotentialAssist, r.PassStartLocX, r.PassStartLocY, r.PassEndLocX, r.PassEndLocY,
		r.TurnoverLocX, r.TurnoverLocY,
	}
}

func scanEventRow(row pgx.CollectableRow) (eventRow, error) {
	var r eventRow
	err := row.Scan(
		&r.ID, &r.PlayerID, &r.Seq, &r.GameID, &r.EventType, &r.ActionType,
		&r.Points, &r.IsShootingFoul, &r.ShotLocX, &r.ShotLocY,
		&r.IsPassCompleted, &r.IsPotentialAssist, &r.PassStartLocX, &r.PassStartLocY, &r.PassEndLocX, &r.PassEndLocY,
		&r.TurnoverLocX, &r.TurnoverLocY,
	)
	return r, err
}

func scanPlayerView(row pgx.CollectableRow) (playerView, error) {
	var v playerView
	err := row.Scan(&v.ID, &v.Name, &v.TeamID, &v.TeamName)
	return v, err
}

// PostgresStore keeps data in PostgreSQL through a pgx pool. It aggregates
// totals in SQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	opts options
}

// OpenPostgres connects to dsn, pings the server and creates missing tables.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres pool: %v", ErrOpen, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres ping: %v", ErrOpen, err)
	}
	s := &PostgresStore{pool: pool, opts: buildOptions(opts)}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, stmt := range pgSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate: %v", ErrOpen, err)
		}
	}
	return nil
}

// Driver implements Store.
func (s *PostgresStore) Driver() string { return DriverPostgres }

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// UpsertTeams implements ingest.Writer.
func (s *PostgresStore) UpsertTeams(ctx context.Context, teams []model.Team) error {
	defer observe(DriverPostgres, "upsert_teams", time.Now())
	b := &pgx.Batch{}
	for _, t := range teams {
		b.Queue(`INSERT INTO teams (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, t.ID, t.Name)
	}
	return s.sendBatch(ctx, s.pool, b)
}

// UpsertGames implements ingest.Writer.
func (s *PostgresStore) UpsertGames(ctx context.Context, games []model.Game) error {
	defer observe(DriverPostgres, "upsert_games", time.Now())
	b := &pgx.Batch{}
	for _, g := range games {
		b.Queue(`INSERT INTO games (id, date) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET date = EXCLUDED.date`, g.ID, g.Date)
	}
	return s.sendBatch(ctx, s.pool, b)
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (s *PostgresStore) sendBatch(ctx context.Context, db batchSender, b *pgx.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	br := db.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return br.Close()
}

// ReplacePlayer implements ingest.Writer in one transaction.
func (s *PostgresStore) ReplacePlayer(ctx context.Context, p model.Player, events []model.Event) error {
	defer observe(DriverPostgres, "replace_player", time.Now())

	withID := &pgx.Batch{}
	withoutID := &pgx.Batch{}
	for i, e := range events {
		if e.Meta().PlayerID != p.ID {
			return fmt.Errorf("event for player %d in player %d's list", e.Meta().PlayerID, p.ID)
		}
		r := rowFromEvent(e, i)
		if r.ID != 0 {
			withID.Queue(pgUpsertEventWithID, append(r.args(), r.ID)...)
		} else {
			withoutID.Queue(pgInsertEvent, r.args()...)
		}
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO players (id, name, team_id) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, team_id = EXCLUDED.team_id`,
			p.ID, p.Name, p.TeamID); err != nil {
			return fmt.Errorf("upsert player: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM events WHERE player_id = $1`, p.ID); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		if err := s.sendBatch(ctx, tx, withID); err != nil {
			return fmt.Errorf("insert events: %w", err)
		}
		if withID.Len() > 0 {
			if _, err := tx.Exec(ctx, pgResyncEventIDs); err != nil {
				return fmt.Errorf("resync event ids: %w", err)
			}
		}
		if err := s.sendBatch(ctx, tx, withoutID); err != nil {
			return fmt.Errorf("insert events: %w", err)
		}
		return nil
	})
}

// Player implements stats.Reader.
func (s *PostgresStore) Player(ctx context.Context, id int64) (model.Player, error) {
	defer observe(DriverPostgres, "player", time.Now())
	rows, err := s.pool.Query(ctx, pgPlayerSelect+` WHERE p.id = $1`, id)
	if err != nil {
		return model.Player{}, fmt.Errorf("player %d: %w", id, err)
	}
	views, err := pgx.CollectRows(rows, scanPlayerView)
	if err != nil {
		return model.Player{}, fmt.Errorf("player %d: %w", id, err)
	}
	if len(views) == 0 {
		return model.Player{}, fmt.Errorf("player %d: %w", id, stats.ErrNotFound)
	}
	return views[0].model(), nil
}

// Players implements stats.Reader, ordered by id.
func (s *PostgresStore) Players(ctx context.Context) ([]model.Player, error) {
	defer observe(DriverPostgres, "players", time.Now())
	rows, err := s.pool.Query(ctx, pgPlayerSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	views, err := pgx.CollectRows(rows, scanPlayerView)
	if err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	out := make([]model.Player, 0, len(views))
	for _, v := range views {
		out = append(out, v.model())
	}
	return out, nil
}

// EventsForPlayer implements stats.Reader.
func (s *PostgresStore) EventsForPlayer(ctx context.Context, id int64) ([]model.Event, error) {
	defer observe(DriverPostgres, "events_for_player", time.Now())
	rows, err := s.pool.Query(ctx, pgEventSelect+` WHERE player_id = $1 ORDER BY seq, id`, id)
	if err != nil {
		return nil, fmt.Errorf("events for player %d: %w", id, err)
	}
	recs, err := pgx.CollectRows(rows, scanEventRow)
	if err != nil {
		return nil, fmt.Errorf("events for player %d: %w", id, err)
	}
	return decodeRows(recs, s.opts.integrity), nil
}

// EventsForPlayers implements stats.Reader.
func (s *PostgresStore) EventsForPlayers(ctx context.Context, ids []int64) (map[int64][]model.Event, error) {
	defer observe(DriverPostgres, "events_for_players", time.Now())
	out := make(map[int64][]model.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, pgEventSelect+` WHERE player_id = ANY($1) ORDER BY player_id, seq, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("events for %d players: %w", len(ids), err)
	}
	recs, err := pgx.CollectRows(rows, scanEventRow)
	if err != nil {
		return nil, fmt.Errorf("events for %d players: %w", len(ids), err)
	}
	for _, e := range decodeRows(recs, s.opts.integrity) {
		pid := e.Meta().PlayerID
		out[pid] = append(out[pid], e)
	}
	return out, nil
}

// PlayerTotals implements stats.TotalsReader with one grouped query.
func (s *PostgresStore) PlayerTotals(ctx context.Context) (map[int64]stats.Aggregates, error) {
	defer observe(DriverPostgres, "player_totals", time.Now())
	rows, err := s.pool.Query(ctx, playerTotalsSQL)
	if err != nil {
		return nil, fmt.Errorf("player totals: %w", err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (totalsRow, error) {
		var t totalsRow
		err := row.Scan(&t.PlayerID, &t.Points, &t.Shots, &t.Passes, &t.Turnovers, &t.PotentialAssists, &t.ShootingFouls)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("player totals: %w", err)
	}
	out := make(map[int64]stats.Aggregates, len(recs))
	for _, r := range recs {
		out[r.PlayerID] = r.aggregates()
	}
	return out, nil
}

// Counts implements Store.
func (s *PostgresStore) Counts(ctx context.Context) (Counts, error) {
	defer observe(DriverPostgres, "counts", time.Now())
	var c Counts
	err := s.pool.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM teams),
		(SELECT COUNT(*) FROM games),
		(SELECT COUNT(*) FROM players),
		(SELECT COUNT(*) FROM events)`).Scan(&c.Teams, &c.Games, &c.Players, &c.Events)
	if err != nil {
		return Counts{}, fmt.Errorf("counts: %w", err)
	}
	return c, nil
}
