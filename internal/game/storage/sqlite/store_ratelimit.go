package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tengfone/deadtext/internal/game/storage"
)

// GetCounter returns a player's quota counter or storage.ErrNotFound.
func (s *Store) GetCounter(ctx context.Context, playerID string) (storage.Counter, error) {
	if err := ctx.Err(); err != nil {
		return storage.Counter{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Counter{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(playerID) == "" {
		return storage.Counter{}, fmt.Errorf("player id is required")
	}

	var (
		count       int
		windowStart int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT message_count, window_start FROM rate_limits WHERE player_id = ?`,
		playerID).Scan(&count, &windowStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Counter{}, storage.ErrNotFound
		}
		return storage.Counter{}, fmt.Errorf("get counter: %w", err)
	}

	return storage.Counter{
		PlayerID:     playerID,
		MessageCount: count,
		WindowStart:  fromMillis(windowStart),
	}, nil
}

// PutCounter upserts a counter, replacing count and window start.
func (s *Store) PutCounter(ctx context.Context, c storage.Counter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(c.PlayerID) == "" {
		return fmt.Errorf("player id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO rate_limits (player_id, message_count, window_start)
VALUES (?, ?, ?)
ON CONFLICT (player_id) DO UPDATE SET
    message_count = excluded.message_count,
    window_start = excluded.window_start`,
		c.PlayerID, c.MessageCount, toMillis(c.WindowStart))
	if err != nil {
		return fmt.Errorf("put counter: %w", err)
	}
	return nil
}

// IncrementCounter adds one message to an existing counter.
func (s *Store) IncrementCounter(ctx context.Context, playerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(playerID) == "" {
		return fmt.Errorf("player id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE rate_limits SET message_count = message_count + 1 WHERE player_id = ?`,
		playerID)
	if err != nil {
		return fmt.Errorf("increment counter: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment counter rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ClearCounters deletes every counter, used by the daily reset sweep.
func (s *Store) ClearCounters(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM rate_limits`); err != nil {
		return fmt.Errorf("clear counters: %w", err)
	}
	return nil
}
