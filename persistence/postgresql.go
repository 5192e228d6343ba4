// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/wfunc/cardwar/models"
)

// PostgreSQL is the plain database/sql implementation, kept for
// deployments that prefer hand-written SQL over GORM migrations.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS match_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(16) NOT NULL,
            winner VARCHAR(255),
            loser VARCHAR(255),
            draw BOOLEAN NOT NULL DEFAULT FALSE,
            duration INT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS player_tallies (
            id SERIAL PRIMARY KEY,
            username VARCHAR(255) UNIQUE NOT NULL,
            wins INT NOT NULL DEFAULT 0,
            losses INT NOT NULL DEFAULT 0,
            draws INT NOT NULL DEFAULT 0,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_match_records_room_id ON match_records(room_id);
        CREATE INDEX IF NOT EXISTS idx_match_records_winner ON match_records(winner);
    `)

	return err
}

// SaveMatchRecord inserts the match and bumps both players' tallies
// inside one SQL transaction.
func (p *PostgreSQL) SaveMatchRecord(record *models.MatchRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var winner, loser string
	if record.Winner != nil {
		winner = record.Winner.Username
	}
	if record.Loser != nil {
		loser = record.Loser.Username
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO match_records (room_id, winner, loser, draw, duration)
        VALUES ($1, $2, $3, $4, $5)
    `, record.RoomID, winner, loser, record.Draw, record.DurationSeconds)
	if err != nil {
		return err
	}

	bump := func(username string, wins, losses, draws int) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO player_tallies (username, wins, losses, draws)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (username)
            DO UPDATE SET wins = player_tallies.wins + $2,
                          losses = player_tallies.losses + $3,
                          draws = player_tallies.draws + $4,
                          updated_at = CURRENT_TIMESTAMP
        `, username, wins, losses, draws)
		return err
	}

	if record.Draw {
		for _, player := range record.Players {
			if err := bump(player.Username, 0, 0, 1); err != nil {
				return err
			}
		}
	} else {
		if winner != "" {
			if err := bump(winner, 1, 0, 0); err != nil {
				return err
			}
		}
		if loser != "" {
			if err := bump(loser, 0, 1, 0); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetPlayerStats returns the aggregate for one username.
func (p *PostgreSQL) GetPlayerStats(username string) (*models.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats := &models.PlayerStats{Username: username}
	query := `SELECT wins, losses, draws FROM player_tallies WHERE username = $1`
	err := p.db.QueryRowContext(ctx, query, username).Scan(&stats.Wins, &stats.Losses, &stats.Draws)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	stats.TotalGames = stats.Wins + stats.Losses + stats.Draws
	return stats, nil
}

// Close closes the database connection.
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
