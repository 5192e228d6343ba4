// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wfunc/cardwar/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormPostgreSQL is the GORM-backed implementation of Database.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormMatchRecord{},
		&models.GormPlayerTally{},
	)
}

// SaveMatchRecord inserts the match and bumps both players' tallies in
// one transaction.
func (p *GormPostgreSQL) SaveMatchRecord(record *models.MatchRecord) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		row := models.GormMatchRecord{
			RoomID:   record.RoomID,
			Draw:     record.Draw,
			Duration: record.DurationSeconds,
		}
		if record.Winner != nil {
			row.Winner = record.Winner.Username
		}
		if record.Loser != nil {
			row.Loser = record.Loser.Username
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		if record.Draw {
			for _, player := range record.Players {
				if err := bumpTally(tx, player.Username, 0, 0, 1); err != nil {
					return err
				}
			}
			return nil
		}
		if record.Winner != nil {
			if err := bumpTally(tx, record.Winner.Username, 1, 0, 0); err != nil {
				return err
			}
		}
		if record.Loser != nil {
			if err := bumpTally(tx, record.Loser.Username, 0, 1, 0); err != nil {
				return err
			}
		}
		return nil
	})
}

func bumpTally(tx *gorm.DB, username string, wins, losses, draws int) error {
	var tally models.GormPlayerTally
	result := tx.Where("username = ?", username).First(&tally)

	if result.Error == gorm.ErrRecordNotFound {
		tally = models.GormPlayerTally{
			Username: username,
			Wins:     wins,
			Losses:   losses,
			Draws:    draws,
		}
		return tx.Create(&tally).Error
	} else if result.Error != nil {
		return result.Error
	}

	tally.Wins += wins
	tally.Losses += losses
	tally.Draws += draws
	return tx.Save(&tally).Error
}

// GetPlayerStats returns the aggregate for one username.
func (p *GormPostgreSQL) GetPlayerStats(username string) (*models.PlayerStats, error) {
	var tally models.GormPlayerTally
	if err := p.db.Where("username = ?", username).First(&tally).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &models.PlayerStats{
		Username:   tally.Username,
		TotalGames: tally.Wins + tally.Losses + tally.Draws,
		Wins:       tally.Wins,
		Losses:     tally.Losses,
		Draws:      tally.Draws,
	}, nil
}

// Close closes the underlying connection pool.
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
