// Package storage defines the persistence interfaces for sessions, rate
// counters and game history. Implementations live in subpackages.
package storage

import (
	"context"
	"time"

	"github.com/tengfone/deadtext/internal/game/domain/session"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// Counter is one player's message count for the current quota window.
type Counter struct {
	PlayerID     string
	MessageCount int
	WindowStart  time.Time
}

// HistoryRecord is one finished game, appended when a session ends.
// GameSeq numbers a player's games from one in completion order.
type HistoryRecord struct {
	PlayerID       string
	DisplayName    string
	GameSeq        int64
	Outcome        string
	SurvivedDays   int
	Difficulty     session.Difficulty
	FinalLocation  string
	FinalStateJSON []byte
	RecordedAt     time.Time
}

// HistorySummary aggregates a player's finished games for /stats.
type HistorySummary struct {
	GamesPlayed int
	BestRun     int
	AverageDays float64
	Wins        int
}

// SessionStore persists session aggregates.
type SessionStore interface {
	// PutSession upserts the session keyed by player ID. The write is
	// idempotent; UpdatedAt is set by the store.
	PutSession(ctx context.Context, sess session.Session) error

	// GetActiveSession returns the player's active session or ErrNotFound.
	GetActiveSession(ctx context.Context, playerID string) (session.Session, error)

	// GetSession returns the player's session regardless of activity.
	GetSession(ctx context.Context, playerID string) (session.Session, error)

	// ListActiveSessions returns every active session.
	ListActiveSessions(ctx context.Context) ([]session.Session, error)

	// ListIdleActiveSessions returns active sessions last updated
	// strictly before the cutoff.
	ListIdleActiveSessions(ctx context.Context, before time.Time) ([]session.Session, error)

	// MarkInactive flips a session to inactive. Missing or already
	// inactive sessions are not an error.
	MarkInactive(ctx context.Context, playerID string) error
}

// RateLimitStore persists daily message counters.
type RateLimitStore interface {
	// GetCounter returns a player's counter or ErrNotFound.
	GetCounter(ctx context.Context, playerID string) (Counter, error)

	// PutCounter upserts a counter, replacing count and window start.
	PutCounter(ctx context.Context, c Counter) error

	// IncrementCounter adds one to an existing counter's count.
	IncrementCounter(ctx context.Context, playerID string) error

	// ClearCounters deletes every counter, used by the daily sweep.
	ClearCounters(ctx context.Context) error
}

// HistoryStore persists finished games.
type HistoryStore interface {
	// AppendHistory records a finished game. The store assigns GameSeq
	// as the player's next sequence number and returns it.
	AppendHistory(ctx context.Context, rec HistoryRecord) (int64, error)

	// Summary aggregates a player's history. A player with no finished
	// games gets a zero summary, not an error.
	Summary(ctx context.Context, playerID string) (HistorySummary, error)

	// ListHistory returns a player's finished games, most recent first,
	// up to limit. A non-positive limit means no cap.
	ListHistory(ctx context.Context, playerID string, limit int) ([]HistoryRecord, error)
}

// Store is the full persistence surface the service wires together.
type Store interface {
	SessionStore
	RateLimitStore
	HistoryStore

	Close() error
}
