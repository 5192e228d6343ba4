// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormMatchRecord is one finished match.
type GormMatchRecord struct {
	gorm.Model
	RoomID   string `gorm:"index;not null"`
	Winner   string `gorm:"index"`
	Loser    string
	Draw     bool `gorm:"default:false"`
	Duration int  `gorm:"default:0"` // seconds
}

// GormPlayerTally is the per-username win/loss aggregate, updated in the
// same transaction that inserts the match record.
type GormPlayerTally struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null"`
	Wins     int    `gorm:"default:0"`
	Losses   int    `gorm:"default:0"`
	Draws    int    `gorm:"default:0"`
}
