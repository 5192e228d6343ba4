// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/cardwar/models"
)

// ErrRecordNotFound is returned when a lookup matches nothing.
var ErrRecordNotFound = errors.New("record not found")

// Database stores finished matches and per-player tallies. Live game
// state never touches the database; only concluded matches are written.
// SaveMatchRecord is transactional: the record insert and both tally
// updates land together or not at all.
type Database interface {
	SaveMatchRecord(record *models.MatchRecord) error
	GetPlayerStats(username string) (*models.PlayerStats, error)
	Close() error
}
