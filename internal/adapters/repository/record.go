package repository

import (
	"fmt"
	"time"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/stats"
)

type teamRow struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null"`
}

func (teamRow) TableName() string { return "teams" }

type gameRow struct {
	ID   int64     `gorm:"primaryKey;autoIncrement:false"`
	Date time.Time `gorm:"not null"`
}

func (gameRow) TableName() string { return "games" }

type playerRow struct {
	ID     int64  `gorm:"primaryKey;autoIncrement:false"`
	Name   string `gorm:"not null"`
	TeamID int64  `gorm:"not null;index"`
}

func (playerRow) TableName() string { return "players" }

// playerView is a player joined with its team name.
type playerView struct {
	ID       int64
	Name     string
	TeamID   int64
	TeamName string
}

func (v playerView) model() model.Player {
	return model.Player{ID: v.ID, Name: v.Name, TeamID: v.TeamID, TeamName: v.TeamName}
}

// eventRow is the flat storage layout of every event variant. Columns that
// do not apply to a row's event type are NULL.
type eventRow struct {
	ID         int64  `gorm:"primaryKey"`
	PlayerID   int64  `gorm:"not null;index:idx_events_player_seq,priority:1"`
	Seq        int    `gorm:"not null;index:idx_events_player_seq,priority:2"`
	GameID     int64  `gorm:"not null;index"`
	EventType  string `gorm:"size:16;not null"`
	ActionType string `gorm:"size:32;not null"`

	Points         *int
	IsShootingFoul *bool
	ShotLocX       *float64
	ShotLocY       *float64

	IsPassCompleted   *bool
	IsPotentialAssist *bool
	PassStartLocX     *float64
	PassStartLocY     *float64
	PassEndLocX       *float64
	PassEndLocY       *float64

	TurnoverLocX *float64
	TurnoverLocY *float64
}

func (eventRow) TableName() string { return "events" }

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// rowFromEvent flattens e. seq is its position in the player's event list.
func rowFromEvent(e model.Event, seq int) eventRow {
	m := e.Meta()
	r := eventRow{
		ID:         m.ID,
		PlayerID:   m.PlayerID,
		Seq:        seq,
		GameID:     m.GameID,
		EventType:  string(e.Type()),
		ActionType: string(m.Action),
	}
	switch v := e.(type) {
	case model.Shot:
		r.Points = ptr(v.Points)
		r.IsShootingFoul = ptr(v.ShootingFoul)
		r.ShotLocX, r.ShotLocY = ptr(v.Loc.X), ptr(v.Loc.Y)
	case model.Pass:
		r.IsPassCompleted = ptr(v.Completed)
		r.IsPotentialAssist = ptr(v.PotentialAssist)
		r.PassStartLocX, r.PassStartLocY = ptr(v.Start.X), ptr(v.Start.Y)
		r.PassEndLocX, r.PassEndLocY = ptr(v.End.X), ptr(v.End.Y)
	case model.Turnover:
		r.TurnoverLocX, r.TurnoverLocY = ptr(v.Loc.X), ptr(v.Loc.Y)
	}
	return r
}

// event rebuilds the variant. Rows with an unknown event type come back as
// a *stats.DataIntegrityError.
func (r eventRow) event() (model.Event, error) {
	meta := model.EventMeta{
		ID:       r.ID,
		PlayerID: r.PlayerID,
		GameID:   r.GameID,
		Action:   model.ActionType(r.ActionType),
	}
	switch model.EventType(r.EventType) {
	case model.EventShot:
		return model.Shot{
			EventMeta:    meta,
			Points:       deref(r.Points),
			ShootingFoul: deref(r.IsShootingFoul),
			Loc:          model.Point{X: deref(r.ShotLocX), Y: deref(r.ShotLocY)},
		}, nil
	case model.EventPass:
		return model.Pass{
			EventMeta:       meta,
			Completed:       deref(r.IsPassCompleted),
			PotentialAssist: deref(r.IsPotentialAssist),
			Start:           model.Point{X: deref(r.PassStartLocX), Y: deref(r.PassStartLocY)},
			End:             model.Point{X: deref(r.PassEndLocX), Y: deref(r.PassEndLocY)},
		}, nil
	case model.EventTurnover:
		return model.Turnover{
			EventMeta: meta,
			Loc:       model.Point{X: deref(r.TurnoverLocX), Y: deref(r.TurnoverLocY)},
		}, nil
	default:
		return nil, &stats.DataIntegrityError{
			EventID:  r.ID,
			PlayerID: r.PlayerID,
			Reason:   fmt.Sprintf("unknown event type %q", r.EventType),
		}
	}
}

// decodeRows converts rows in order, reporting and dropping undecodable ones.
func decodeRows(rows []eventRow, report stats.IntegrityHandler) []model.Event {
	out := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		e, err := r.event()
		if err != nil {
			if die, ok := err.(*stats.DataIntegrityError); ok {
				report(die)
			}
			continue
		}
		out = append(out, e)
	}
	return out
}

// totalsRow is one line of playerTotalsSQL.
type totalsRow struct {
	PlayerID         int64
	Points           int64
	Shots            int64
	Passes           int64
	Turnovers        int64
	PotentialAssists int64
	ShootingFouls    int64
}

func (t totalsRow) aggregates() stats.Aggregates {
	return stats.Aggregates{
		Points:           t.Points,
		Shots:            t.Shots,
		Passes:           t.Passes,
		Turnovers:        t.Turnovers,
		PotentialAssists: t.PotentialAssists,
		ShootingFouls:    t.ShootingFouls,
	}
}

// playerTotalsSQL aggregates every player in one pass. Players without
// events get a zero row through the LEFT JOIN. Rows with an unknown event
// type match no CASE branch and are ignored, like in the decode path.
const playerTotalsSQL = `
SELECT p.id AS player_id,
  COALESCE(SUM(CASE WHEN e.event_type = 'shot' THEN COALESCE(e.points, 0) ELSE 0 END), 0) AS points,
  COALESCE(SUM(CASE WHEN e.event_type = 'shot' THEN 1 ELSE 0 END), 0) AS shots,
  COALESCE(SUM(CASE WHEN e.event_type = 'pass' THEN 1 ELSE 0 END), 0) AS passes,
  COALESCE(SUM(CASE WHEN e.event_type = 'turnover' THEN 1 ELSE 0 END), 0) AS turnovers,
  COALESCE(SUM(CASE WHEN e.event_type = 'pass' AND e.is_potential_assist THEN 1 ELSE 0 END), 0) AS potential_assists,
  COALESCE(SUM(CASE WHEN e.event_type = 'shot' AND e.is_shooting_foul THEN 1 ELSE 0 END), 0) AS shooting_fouls
FROM players p
LEFT JOIN events e ON e.player_id = p.id
GROUP BY p.id`
