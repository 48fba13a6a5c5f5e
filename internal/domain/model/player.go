package model

import "time"

// Team is a basketball team.
type Team struct {
	ID   int64
	Name string
}

// Game scopes events; the core never reads its date.
type Game struct {
	ID   int64
	Date time.Time
}

// Player is identified by an externally assigned id that is stable across
// seasons. TeamName is resolved by the storage layer.
type Player struct {
	ID       int64  `json:"player_id"`
	Name     string `json:"name"`
	TeamID   int64  `json:"team_id"`
	TeamName string `json:"team_name"`
}
