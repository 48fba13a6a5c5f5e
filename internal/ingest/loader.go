// Package ingest imports teams, games and players with their events from a
// directory of JSON files into a store.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/stats"
)

// maxSkipped bounds the skip reasons kept on a Report.
const maxSkipped = 100

// Writer persists imported data. Every method must be idempotent.
type Writer interface {
	UpsertTeams(ctx context.Context, teams []model.Team) error
	UpsertGames(ctx context.Context, games []model.Game) error
	// ReplacePlayer upserts p and replaces its whole event set with events,
	// in order. Events with a zero ID get a store-assigned one.
	ReplacePlayer(ctx context.Context, p model.Player, events []model.Event) error
}

// Report summarizes one load run.
type Report struct {
	RunID         string        `json:"run_id"`
	Dir           string        `json:"dir"`
	Teams         int           `json:"teams"`
	Games         int           `json:"games"`
	Players       int           `json:"players"`
	Events        int           `json:"events"`
	SkippedEvents int           `json:"skipped_events"`
	Skipped       []string      `json:"skipped,omitempty"`
	Took          time.Duration `json:"took_ns"`
}

func (r *Report) skip(reason string) {
	r.SkippedEvents++
	if len(r.Skipped) < maxSkipped {
		r.Skipped = append(r.Skipped, reason)
	}
}

// Loader reads a data directory and writes it through a Writer.
type Loader struct {
	w   Writer
	now func() time.Time
}

// NewLoader creates a Loader writing to w.
func NewLoader(w Writer) *Loader {
	return &Loader{w: w, now: time.Now}
}

// Load imports teams.json, games.json and players.json from dir.
//
// Every player's team must be listed in teams.json; otherwise nothing is
// written and the error wraps stats.ErrDataIntegrity. Events pointing at a
// game missing from games.json are skipped and counted.
func (l *Loader) Load(ctx context.Context, dir string) (Report, error) {
	start := l.now()
	rep := Report{RunID: uuid.NewString(), Dir: dir}

	var (
		teamRecs   []teamRecord
		gameRecs   []gameRecord
		playerRecs []playerRecord
	)
	if err := readJSON(dir, TeamsFile, &teamRecs); err != nil {
		return rep, err
	}
	if err := readJSON(dir, GamesFile, &gameRecs); err != nil {
		return rep, err
	}
	if err := readJSON(dir, PlayersFile, &playerRecs); err != nil {
		return rep, err
	}

	teams := make([]model.Team, 0, len(teamRecs))
	teamNames := make(map[int64]string, len(teamRecs))
	for _, t := range teamRecs {
		teams = append(teams, model.Team{ID: t.TeamID, Name: t.Name})
		teamNames[t.TeamID] = t.Name
	}

	games := make([]model.Game, 0, len(gameRecs))
	knownGames := make(map[int64]struct{}, len(gameRecs))
	for _, g := range gameRecs {
		date, err := parseGameDate(g.Date)
		if err != nil {
			return rep, fmt.Errorf("game %d: %w", g.ID, err)
		}
		games = append(games, model.Game{ID: g.ID, Date: date})
		knownGames[g.ID] = struct{}{}
	}

	// Validate before the first write so a bad file leaves the store untouched.
	for _, p := range playerRecs {
		if _, ok := teamNames[p.TeamID]; !ok {
			return rep, &stats.DataIntegrityError{
				PlayerID: p.PlayerID,
				Reason:   fmt.Sprintf("unknown team %d", p.TeamID),
			}
		}
	}

	if err := l.w.UpsertTeams(ctx, teams); err != nil {
		return rep, fmt.Errorf("upsert teams: %w", err)
	}
	rep.Teams = len(teams)

	if err := l.w.UpsertGames(ctx, games); err != nil {
		return rep, fmt.Errorf("upsert games: %w", err)
	}
	rep.Games = len(games)

	for _, p := range playerRecs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		player := model.Player{ID: p.PlayerID, Name: p.Name, TeamID: p.TeamID, TeamName: teamNames[p.TeamID]}
		events := playerEvents(p, knownGames, &rep)
		if err := l.w.ReplacePlayer(ctx, player, events); err != nil {
			return rep, fmt.Errorf("replace player %d: %w", p.PlayerID, err)
		}
		rep.Players++
		rep.Events += len(events)
	}

	rep.Took = l.now().Sub(start)
	return rep, nil
}

// playerEvents flattens shots, passes and turnovers in file order, dropping
// events whose game is unknown and shots with negative points.
func playerEvents(p playerRecord, knownGames map[int64]struct{}, rep *Report) []model.Event {
	events := make([]model.Event, 0, len(p.Shots)+len(p.Passes)+len(p.Turnovers))
	keep := func(kind model.EventType, h eventHeader) bool {
		if _, ok := knownGames[h.GameID]; ok {
			return true
		}
		rep.skip(fmt.Sprintf("player %d: %s in unknown game %d", p.PlayerID, kind, h.GameID))
		return false
	}
	for _, s := range p.Shots {
		if s.Points < 0 {
			rep.skip(fmt.Sprintf("player %d: shot in game %d with negative points %d", p.PlayerID, s.GameID, s.Points))
			continue
		}
		if keep(model.EventShot, s.eventHeader) {
			events = append(events, s.event(p.PlayerID))
		}
	}
	for _, ps := range p.Passes {
		if keep(model.EventPass, ps.eventHeader) {
			events = append(events, ps.event(p.PlayerID))
		}
	}
	for _, t := range p.Turnovers {
		if keep(model.EventTurnover, t.eventHeader) {
			events = append(events, t.event(p.PlayerID))
		}
	}
	return events
}
