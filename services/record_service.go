// services/record_service.go
package services

import (
	"github.com/wfunc/cardwar/logger"
	"github.com/wfunc/cardwar/models"
	"github.com/wfunc/cardwar/persistence"
)

// RecordService writes finished matches and answers stats queries.
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// SaveMatch persists one concluded match. A storage failure is logged
// but never propagated to the game flow; losing a record must not take
// a room down.
func (s *RecordService) SaveMatch(record *models.MatchRecord) {
	if err := s.db.SaveMatchRecord(record); err != nil {
		logger.Log.Errorf("Failed to save match record for room %s: %v", record.RoomID, err)
		return
	}
	logger.Log.Debugf("Saved match record for room %s", record.RoomID)
}

// PlayerStats returns the win/loss aggregate for a username. A player
// with no recorded matches gets a zeroed aggregate, not an error.
func (s *RecordService) PlayerStats(username string) (*models.PlayerStats, error) {
	stats, err := s.db.GetPlayerStats(username)
	if err == persistence.ErrRecordNotFound {
		return &models.PlayerStats{Username: username}, nil
	}
	return stats, err
}
