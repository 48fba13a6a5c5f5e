package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/courtstats/internal/domain/model"
)

// SampleConfig sizes a generated data directory.
type SampleConfig struct {
	Teams           int
	PlayersPerTeam  int
	Games           int
	EventsPerPlayer int
	Seed            uint64
	// Start is the date of the first game; games are two days apart.
	Start time.Time
}

// DefaultSampleConfig returns a small league.
func DefaultSampleConfig() SampleConfig {
	return SampleConfig{
		Teams:           4,
		PlayersPerTeam:  5,
		Games:           10,
		EventsPerPlayer: 30,
		Seed:            1,
		Start:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (c SampleConfig) validate() error {
	if c.Teams < 1 || c.PlayersPerTeam < 1 || c.Games < 1 || c.EventsPerPlayer < 0 {
		return fmt.Errorf("%w: sample sizes must be positive", ErrInvalidData)
	}
	return nil
}

// WriteSample writes teams.json, games.json and players.json to dir in the
// format Load reads. The same config always yields the same files.
func WriteSample(dir string, cfg SampleConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFile, dir, err)
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	teams := make([]teamRecord, 0, cfg.Teams)
	for i := 1; i <= cfg.Teams; i++ {
		teams = append(teams, teamRecord{TeamID: int64(i), Name: fmt.Sprintf("Team %d", i)})
	}

	games := make([]gameRecord, 0, cfg.Games)
	for i := 1; i <= cfg.Games; i++ {
		date := cfg.Start.AddDate(0, 0, 2*(i-1))
		games = append(games, gameRecord{ID: int64(i), Date: date.Format(time.DateOnly)})
	}

	var (
		players []playerRecord
		eventID int64
	)
	for t := 1; t <= cfg.Teams; t++ {
		for n := 0; n < cfg.PlayersPerTeam; n++ {
			id := int64((t-1)*cfg.PlayersPerTeam + n + 1)
			p := playerRecord{PlayerID: id, Name: fmt.Sprintf("Player %d", id), TeamID: int64(t)}
			for e := 0; e < cfg.EventsPerPlayer; e++ {
				eventID++
				h := eventHeader{
					ID:         eventID,
					GameID:     int64(rng.IntN(cfg.Games) + 1),
					ActionType: string(model.KnownActionTypes[rng.IntN(len(model.KnownActionTypes))]),
				}
				switch r := rng.Float64(); {
				case r < 0.45:
					p.Shots = append(p.Shots, sampleShot(rng, h))
				case r < 0.9:
					p.Passes = append(p.Passes, samplePass(rng, h))
				default:
					p.Turnovers = append(p.Turnovers, sampleTurnover(rng, h))
				}
			}
			players = append(players, p)
		}
	}

	for name, v := range map[string]any{TeamsFile: teams, GamesFile: games, PlayersFile: players} {
		if err := writeJSON(dir, name, v); err != nil {
			return err
		}
	}
	return nil
}

// courtPoint returns a location on a half court in feet, hoop at the origin.
func courtPoint(rng *rand.Rand) (float64, float64) {
	return round1(rng.Float64()*50 - 25), round1(rng.Float64()*47 - 5)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func sampleShot(rng *rand.Rand, h eventHeader) shotRecord {
	x, y := courtPoint(rng)
	points := 2
	if math.Hypot(x, y) > 23.75 {
		points = 3
	}
	if rng.Float64() < 0.55 {
		points = 0
	}
	return shotRecord{
		eventHeader:       h,
		Points:            points,
		ShootingFoulDrawn: rng.Float64() < 0.1,
		ShotLocX:          x,
		ShotLocY:          y,
	}
}

func samplePass(rng *rand.Rand, h eventHeader) passRecord {
	sx, sy := courtPoint(rng)
	ex, ey := courtPoint(rng)
	completed := rng.Float64() < 0.85
	return passRecord{
		eventHeader:     h,
		CompletedPass:   completed,
		PotentialAssist: completed && rng.Float64() < 0.25,
		BallStartLocX:   sx,
		BallStartLocY:   sy,
		BallEndLocX:     ex,
		BallEndLocY:     ey,
	}
}

func sampleTurnover(rng *rand.Rand, h eventHeader) turnoverRecord {
	x, y := courtPoint(rng)
	return turnoverRecord{eventHeader: h, TovLocX: x, TovLocY: y}
}

func writeJSON(dir, name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidData, name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFile, path, err)
	}
	return nil
}
