package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tengfone/deadtext/internal/game/domain/session"
	"github.com/tengfone/deadtext/internal/game/storage"
)

// AppendHistory records a finished game. The player's next sequence
// number is assigned inside the transaction so concurrent appends for
// different games never collide.
func (s *Store) AppendHistory(ctx context.Context, rec storage.HistoryRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(rec.PlayerID) == "" {
		return 0, fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(rec.Outcome) == "" {
		return 0, fmt.Errorf("outcome is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(game_seq), 0) + 1 FROM game_history WHERE player_id = ?`,
		rec.PlayerID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next game seq: %w", err)
	}

	finalState := rec.FinalStateJSON
	if len(finalState) == 0 {
		finalState = []byte("{}")
	}
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO game_history (player_id, game_seq, display_name, outcome,
    survived_days, difficulty, final_location, final_state_json, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.PlayerID, seq, rec.DisplayName, rec.Outcome, rec.SurvivedDays,
		string(rec.Difficulty), rec.FinalLocation, string(finalState),
		toMillis(recordedAt))
	if err != nil {
		return 0, fmt.Errorf("append history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit history: %w", err)
	}
	return seq, nil
}

// Summary aggregates a player's finished games. Players with no history
// get a zero summary, not an error.
func (s *Store) Summary(ctx context.Context, playerID string) (storage.HistorySummary, error) {
	if err := ctx.Err(); err != nil {
		return storage.HistorySummary{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.HistorySummary{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(playerID) == "" {
		return storage.HistorySummary{}, fmt.Errorf("player id is required")
	}

	var (
		games   int
		best    sql.NullInt64
		average sql.NullFloat64
		wins    int
	)
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(*), MAX(survived_days), AVG(survived_days),
    COALESCE(SUM(CASE WHEN outcome = 'won' THEN 1 ELSE 0 END), 0)
FROM game_history WHERE player_id = ?`, playerID).
		Scan(&games, &best, &average, &wins)
	if err != nil {
		return storage.HistorySummary{}, fmt.Errorf("history summary: %w", err)
	}

	summary := storage.HistorySummary{GamesPlayed: games, Wins: wins}
	if best.Valid {
		summary.BestRun = int(best.Int64)
	}
	if average.Valid {
		summary.AverageDays = average.Float64
	}
	return summary, nil
}

// ListHistory returns a player's finished games, most recent first.
func (s *Store) ListHistory(ctx context.Context, playerID string, limit int) ([]storage.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(playerID) == "" {
		return nil, fmt.Errorf("player id is required")
	}

	query := `
SELECT player_id, game_seq, display_name, outcome, survived_days,
    difficulty, final_location, final_state_json, recorded_at
FROM game_history WHERE player_id = ? ORDER BY game_seq DESC`
	args := []any{playerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var records []storage.HistoryRecord
	for rows.Next() {
		var (
			rec        storage.HistoryRecord
			difficulty string
			finalState string
			recordedAt int64
		)
		if err := rows.Scan(&rec.PlayerID, &rec.GameSeq, &rec.DisplayName,
			&rec.Outcome, &rec.SurvivedDays, &difficulty, &rec.FinalLocation,
			&finalState, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.Difficulty = session.Difficulty(difficulty)
		rec.FinalStateJSON = []byte(finalState)
		rec.RecordedAt = fromMillis(recordedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}
