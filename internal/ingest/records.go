package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/courtstats/internal/domain/model"
)

// File names expected in a data directory.
const (
	TeamsFile   = "teams.json"
	GamesFile   = "games.json"
	PlayersFile = "players.json"
)

type teamRecord struct {
	TeamID int64  `json:"team_id"`
	Name   string `json:"name"`
}

type gameRecord struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
}

type playerRecord struct {
	PlayerID  int64            `json:"player_id"`
	Name      string           `json:"name"`
	TeamID    int64            `json:"team_id"`
	Shots     []shotRecord     `json:"shots"`
	Passes    []passRecord     `json:"passes"`
	Turnovers []turnoverRecord `json:"turnovers"`
}

type eventHeader struct {
	ID         int64  `json:"id"`
	GameID     int64  `json:"game_id"`
	ActionType string `json:"action_type"`
}

type shotRecord struct {
	eventHeader
	Points            int     `json:"points"`
	ShootingFoulDrawn bool    `json:"shooting_foul_drawn"`
	ShotLocX          float64 `json:"shot_loc_x"`
	ShotLocY          float64 `json:"shot_loc_y"`
}

type passRecord struct {
	eventHeader
	CompletedPass   bool    `json:"completed_pass"`
	PotentialAssist bool    `json:"potential_assist"`
	BallStartLocX   float64 `json:"ball_start_loc_x"`
	BallStartLocY   float64 `json:"ball_start_loc_y"`
	BallEndLocX     float64 `json:"ball_end_loc_x"`
	BallEndLocY     float64 `json:"ball_end_loc_y"`
}

type turnoverRecord struct {
	eventHeader
	TovLocX float64 `json:"tov_loc_x"`
	TovLocY float64 `json:"tov_loc_y"`
}

func (h eventHeader) meta(playerID int64) model.EventMeta {
	return model.EventMeta{ID: h.ID, PlayerID: playerID, GameID: h.GameID, Action: model.ActionType(h.ActionType)}
}

func (r shotRecord) event(playerID int64) model.Event {
	return model.Shot{
		EventMeta:    r.meta(playerID),
		Points:       r.Points,
		ShootingFoul: r.ShootingFoulDrawn,
		Loc:          model.Point{X: r.ShotLocX, Y: r.ShotLocY},
	}
}

func (r passRecord) event(playerID int64) model.Event {
	return model.Pass{
		EventMeta:       r.meta(playerID),
		Completed:       r.CompletedPass,
		PotentialAssist: r.PotentialAssist,
		Start:           model.Point{X: r.BallStartLocX, Y: r.BallStartLocY},
		End:             model.Point{X: r.BallEndLocX, Y: r.BallEndLocY},
	}
}

func (r turnoverRecord) event(playerID int64) model.Event {
	return model.Turnover{
		EventMeta: r.meta(playerID),
		Loc:       model.Point{X: r.TovLocX, Y: r.TovLocY},
	}
}

// gameDateLayouts are tried in order.
var gameDateLayouts = []string{time.DateOnly, time.RFC3339}

func parseGameDate(s string) (time.Time, error) {
	for _, layout := range gameDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: game date %q", ErrInvalidData, s)
}

func readJSON(dir, name string, out any) error {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrReadFile, path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidData, path, err)
	}
	return nil
}
