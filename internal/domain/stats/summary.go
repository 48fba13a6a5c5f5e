// Package stats computes per-player season summaries and population ranks
// from the event log.
package stats

import "github.com/okian/courtstats/internal/domain/model"

// Stat names one of the six ranked statistics.
type Stat string

// Ranked statistics.
const (
	StatPoints           Stat = "points"
	StatShots            Stat = "shots"
	StatPasses           Stat = "passes"
	StatTurnovers        Stat = "turnovers"
	StatPotentialAssists Stat = "potential_assists"
	StatShootingFouls    Stat = "shooting_fouls"
)

// AllStats lists the statistics in reporting order.
var AllStats = []Stat{StatPoints, StatShots, StatPasses, StatTurnovers, StatPotentialAssists, StatShootingFouls}

// Aggregates holds the six reducers over a set of events. It is also the
// per-action breakdown shape.
type Aggregates struct {
	Points           int64 `json:"points"`
	Shots            int64 `json:"shots"`
	Passes           int64 `json:"passes"`
	Turnovers        int64 `json:"turnovers"`
	PotentialAssists int64 `json:"potential_assists"`
	ShootingFouls    int64 `json:"shooting_fouls"`
}

// Add folds one event into the aggregates.
func (a *Aggregates) Add(e model.Event) {
	switch v := e.(type) {
	case model.Shot:
		a.Shots++
		a.Points += int64(v.Points)
		if v.ShootingFoul {
			a.ShootingFouls++
		}
	case model.Pass:
		a.Passes++
		if v.PotentialAssist {
			a.PotentialAssists++
		}
	case model.Turnover:
		a.Turnovers++
	}
}

// Merge adds b into a.
func (a *Aggregates) Merge(b Aggregates) {
	a.Points += b.Points
	a.Shots += b.Shots
	a.Passes += b.Passes
	a.Turnovers += b.Turnovers
	a.PotentialAssists += b.PotentialAssists
	a.ShootingFouls += b.ShootingFouls
}

// Value returns the aggregate for s.
func (a Aggregates) Value(s Stat) int64 {
	switch s {
	case StatPoints:
		return a.Points
	case StatShots:
		return a.Shots
	case StatPasses:
		return a.Passes
	case StatTurnovers:
		return a.Turnovers
	case StatPotentialAssists:
		return a.PotentialAssists
	case StatShootingFouls:
		return a.ShootingFouls
	}
	return 0
}

// Totals are season aggregates; same fields as Aggregates, different keys.
type Totals struct {
	Points           int64 `json:"total_points"`
	Shots            int64 `json:"total_shots"`
	Passes           int64 `json:"total_passes"`
	Turnovers        int64 `json:"total_turnovers"`
	PotentialAssists int64 `json:"total_potential_assists"`
	ShootingFouls    int64 `json:"total_shooting_fouls"`
}

// Ranks are 1-based competition ranks among all players.
type Ranks struct {
	Points           int `json:"points"`
	Shots            int `json:"shots"`
	Passes           int `json:"passes"`
	Turnovers        int `json:"turnovers"`
	PotentialAssists int `json:"potential_assists"`
	ShootingFouls    int `json:"shooting_fouls"`
}

func (r *Ranks) set(s Stat, rank int) {
	switch s {
	case StatPoints:
		r.Points = rank
	case StatShots:
		r.Shots = rank
	case StatPasses:
		r.Passes = rank
	case StatTurnovers:
		r.Turnovers = rank
	case StatPotentialAssists:
		r.PotentialAssists = rank
	case StatShootingFouls:
		r.ShootingFouls = rank
	}
}

// ShotLocation is a shot plotted on the court.
type ShotLocation struct {
	X          float64          `json:"shot_loc_x"`
	Y          float64          `json:"shot_loc_y"`
	ActionType model.ActionType `json:"action_type"`
}

// PassLocation is a pass drawn from start to end.
type PassLocation struct {
	StartX     float64          `json:"pass_start_loc_x"`
	StartY     float64          `json:"pass_start_loc_y"`
	EndX       float64          `json:"pass_end_loc_x"`
	EndY       float64          `json:"pass_end_loc_y"`
	ActionType model.ActionType `json:"action_type"`
}

// TurnoverLocation is a turnover plotted on the court.
type TurnoverLocation struct {
	X          float64          `json:"turnover_loc_x"`
	Y          float64          `json:"turnover_loc_y"`
	ActionType model.ActionType `json:"action_type"`
}

// Summary is the per-player dashboard payload. Ranks is nil until the
// summary has gone through Ranker.Ranks.
type Summary struct {
	PlayerID      int64                           `json:"player_id"`
	PlayerName    string                          `json:"player_name"`
	TeamName      string                          `json:"team_name"`
	Shots         []ShotLocation                  `json:"shots"`
	Passes        []PassLocation                  `json:"passes"`
	Turnovers     []TurnoverLocation              `json:"turnovers"`
	StatsByAction map[model.ActionType]Aggregates `json:"stats_by_action"`
	Totals        Totals                          `json:"totals"`
	Ranks         *Ranks                          `json:"ranks,omitempty"`
}
