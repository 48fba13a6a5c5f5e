// Package model contains domain models passed between layers.
package model

// EventType discriminates the event variants.
type EventType string

// Known event types.
const (
	EventShot     EventType = "shot"
	EventPass     EventType = "pass"
	EventTurnover EventType = "turnover"
)

// Valid reports whether t is one of the three known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventShot, EventPass, EventTurnover:
		return true
	}
	return false
}

// ActionType is the tactical category of a possession. The value is
// free-form; KnownActionTypes lists the categories the breakdown tracks.
type ActionType string

// Tracked action types.
const (
	PickAndRoll   ActionType = "pickAndRoll"
	Isolation     ActionType = "isolation"
	PostUp        ActionType = "postUp"
	OffBallScreen ActionType = "offBallScreen"
)

// KnownActionTypes is the fixed set of action types reported per player.
var KnownActionTypes = []ActionType{PickAndRoll, Isolation, PostUp, OffBallScreen}

// Known reports whether a is one of KnownActionTypes.
func (a ActionType) Known() bool {
	for _, k := range KnownActionTypes {
		if a == k {
			return true
		}
	}
	return false
}

// Point is a court coordinate.
type Point struct {
	X float64
	Y float64
}

// EventMeta holds the fields shared by every event variant.
type EventMeta struct {
	ID       int64 // 0 when the source did not assign one
	PlayerID int64
	GameID   int64
	Action   ActionType
}

// Event is implemented by Shot, Pass and Turnover only.
type Event interface {
	Meta() EventMeta
	Type() EventType
	isEvent()
}

// Shot is a field goal attempt.
type Shot struct {
	EventMeta
	Points       int
	ShootingFoul bool
	Loc          Point
}

// Pass is a pass attempt.
type Pass struct {
	EventMeta
	Completed       bool
	PotentialAssist bool
	Start           Point
	End             Point
}

// Turnover is a lost possession.
type Turnover struct {
	EventMeta
	Loc Point
}

func (s Shot) Meta() EventMeta     { return s.EventMeta }
func (p Pass) Meta() EventMeta     { return p.EventMeta }
func (t Turnover) Meta() EventMeta { return t.EventMeta }

func (Shot) Type() EventType     { return EventShot }
func (Pass) Type() EventType     { return EventPass }
func (Turnover) Type() EventType { return EventTurnover }

func (Shot) isEvent()     {}
func (Pass) isEvent()     {}
func (Turnover) isEvent() {}
