// Package history keeps a Postgres record of finished games. Live game state
// is never stored here; only the final result of a won game is.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/truthbid/go/internal/outbox"
	"github.com/rs/zerolog/log"
)

// DB is the subset of pgxpool.Pool the archive uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS finished_games (
	session_id   UUID PRIMARY KEY,
	room_code    TEXT NOT NULL,
	host_name    TEXT NOT NULL,
	guest_name   TEXT NOT NULL,
	winner       TEXT NOT NULL,
	winner_name  TEXT NOT NULL,
	rounds       INTEGER NOT NULL,
	host_tokens  INTEGER NOT NULL,
	guest_tokens INTEGER NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL
)`

const insertGame = `
INSERT INTO finished_games (
	session_id, room_code, host_name, guest_name, winner, winner_name,
	rounds, host_tokens, guest_tokens, finished_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (session_id) DO NOTHING`

const selectRecent = `
SELECT session_id::text, room_code, host_name, guest_name, winner, winner_name,
	rounds, host_tokens, guest_tokens, finished_at
FROM finished_games
ORDER BY finished_at DESC
LIMIT $1`

// Game is one archived result.
type Game struct {
	SessionID   string    `json:"session_id"`
	RoomCode    string    `json:"room_code"`
	HostName    string    `json:"host_name"`
	GuestName   string    `json:"guest_name"`
	Winner      string    `json:"winner"`
	WinnerName  string    `json:"winner_name"`
	Rounds      int       `json:"rounds"`
	HostTokens  int       `json:"host_tokens"`
	GuestTokens int       `json:"guest_tokens"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Archive stores finished games. It is an outbox.Publisher that ignores
// every event except GameFinished.
type Archive struct {
	db DB
}

// NewArchive wraps db.
func NewArchive(db DB) *Archive {
	return &Archive{db: db}
}

// Connect opens a pool for dsn, verifies it, and creates the schema.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, *Archive, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := NewArchive(pool)
	if err := a.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, a, nil
}

// EnsureSchema creates the archive table if needed.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (a *Archive) Publish(ctx context.Context, event outbox.Event) error {
	if event.EventType != outbox.EventGameFinished {
		return nil
	}

	var p outbox.GameFinishedPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		return fmt.Errorf("unmarshal GameFinished payload: %w", err)
	}

	_, err := a.db.Exec(ctx, insertGame,
		p.SessionID, event.RoomCode, p.HostName, p.GuestName, p.Winner, p.WinnerName,
		p.Rounds, p.HostTokens, p.GuestTokens, p.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert finished game: %w", err)
	}

	log.Debug().
		Str("room_code", event.RoomCode).
		Str("session_id", p.SessionID).
		Msg("archived finished game")
	return nil
}

// Recent returns up to limit finished games, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Game, error) {
	rows, err := a.db.Query(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(
			&g.SessionID, &g.RoomCode, &g.HostName, &g.GuestName, &g.Winner, &g.WinnerName,
			&g.Rounds, &g.HostTokens, &g.GuestTokens, &g.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan finished game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate finished games: %w", err)
	}
	return games, nil
}
