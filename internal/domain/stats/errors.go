package stats

import (
	"errors"
	"fmt"
)

// Sentinel kinds for stats errors. These allow errors.Is from callers.
var (
	ErrNotFound      = errors.New("player not found")
	ErrDataIntegrity = errors.New("data integrity violation")
)

// NotFoundError reports an unknown player id, either when building a
// summary or when extracting ranks from the population table.
type NotFoundError struct {
	PlayerID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("player %d not found", e.PlayerID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DataIntegrityError describes an event that cannot be attributed to the
// player it was returned for. Such events are skipped, never counted.
type DataIntegrityError struct {
	EventID  int64
	PlayerID int64 // the player the event claims to belong to
	Reason   string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("event %d (player %d): %s", e.EventID, e.PlayerID, e.Reason)
}

// Is makes errors.Is(err, ErrDataIntegrity) hold.
func (e *DataIntegrityError) Is(target error) bool { return target == ErrDataIntegrity }

// IntegrityHandler receives skipped events. It must be safe for concurrent use.
type IntegrityHandler func(err *DataIntegrityError)

func discardIntegrity(*DataIntegrityError) {}
