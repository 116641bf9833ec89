package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tengfone/deadtext/internal/game/domain/session"
	"github.com/tengfone/deadtext/internal/game/storage"
)

const sessionColumns = `player_id, display_name, health, food, water,
weapons_json, inventory_json, current_day, difficulty, location, scenario, active, updated_at`

// PutSession upserts a session keyed by player ID. The write is
// idempotent so replays after a crash are harmless.
func (s *Store) PutSession(ctx context.Context, sess session.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(sess.PlayerID) == "" {
		return fmt.Errorf("player id is required")
	}

	row, err := sessionToRow(sess, toMillis(s.now()))
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO sessions (`+sessionColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id) DO UPDATE SET
    display_name = excluded.display_name,
    health = excluded.health,
    food = excluded.food,
    water = excluded.water,
    weapons_json = excluded.weapons_json,
    inventory_json = excluded.inventory_json,
    current_day = excluded.current_day,
    difficulty = excluded.difficulty,
    location = excluded.location,
    scenario = excluded.scenario,
    active = excluded.active,
    updated_at = excluded.updated_at`,
		row.playerID, row.displayName, row.health, row.food, row.water,
		row.weaponsJSON, row.inventoryJSON, row.currentDay, row.difficulty,
		row.location, row.scenario, row.active, row.updatedAt)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetActiveSession returns the player's active session or storage.ErrNotFound.
func (s *Store) GetActiveSession(ctx context.Context, playerID string) (session.Session, error) {
	return s.getSession(ctx, playerID, true)
}

// GetSession returns the player's session regardless of activity.
func (s *Store) GetSession(ctx context.Context, playerID string) (session.Session, error) {
	return s.getSession(ctx, playerID, false)
}

func (s *Store) getSession(ctx context.Context, playerID string, activeOnly bool) (session.Session, error) {
	if err := ctx.Err(); err != nil {
		return session.Session{}, err
	}
	if s == nil || s.sqlDB == nil {
		return session.Session{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(playerID) == "" {
		return session.Session{}, fmt.Errorf("player id is required")
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE player_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}

	var row sessionRow
	err := s.sqlDB.QueryRowContext(ctx, query, playerID).Scan(
		&row.playerID, &row.displayName, &row.health, &row.food, &row.water,
		&row.weaponsJSON, &row.inventoryJSON, &row.currentDay, &row.difficulty,
		&row.location, &row.scenario, &row.active, &row.updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Session{}, storage.ErrNotFound
		}
		return session.Session{}, fmt.Errorf("get session: %w", err)
	}

	return rowToSession(row)
}

// ListActiveSessions returns every active session ordered by player ID.
func (s *Store) ListActiveSessions(ctx context.Context) ([]session.Session, error) {
	return s.listActive(ctx, `SELECT `+sessionColumns+`
FROM sessions WHERE active = 1 ORDER BY player_id`)
}

// ListIdleActiveSessions returns active sessions last updated strictly
// before the cutoff, ordered by player ID.
func (s *Store) ListIdleActiveSessions(ctx context.Context, before time.Time) ([]session.Session, error) {
	return s.listActive(ctx, `SELECT `+sessionColumns+`
FROM sessions WHERE active = 1 AND updated_at < ? ORDER BY player_id`, toMillis(before))
}

func (s *Store) listActive(ctx context.Context, query string, args ...any) ([]session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		var row sessionRow
		if err := rows.Scan(
			&row.playerID, &row.displayName, &row.health, &row.food, &row.water,
			&row.weaponsJSON, &row.inventoryJSON, &row.currentDay, &row.difficulty,
			&row.location, &row.scenario, &row.active, &row.updatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess, err := rowToSession(row)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// MarkInactive flips a session to inactive. Missing or already inactive
// sessions are not an error so the call is safe to repeat.
func (s *Store) MarkInactive(ctx context.Context, playerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(playerID) == "" {
		return fmt.Errorf("player id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`UPDATE sessions SET active = 0, updated_at = ? WHERE player_id = ?`,
		toMillis(s.now()), playerID)
	if err != nil {
		return fmt.Errorf("mark session inactive: %w", err)
	}
	return nil
}
