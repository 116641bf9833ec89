// Package cache keeps active sessions in memory in front of the store.
//
// The memory copy is write-through: Commit persists to the store first
// and only then updates memory, so a failed write never leaves memory
// ahead of disk. Reads hydrate lazily from the store on a miss.
package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tengfone/deadtext/internal/game/domain/profile"
	"github.com/tengfone/deadtext/internal/game/domain/session"
	"github.com/tengfone/deadtext/internal/game/domain/turn"
	"github.com/tengfone/deadtext/internal/game/storage"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

// Cache is a write-through session cache over the session store.
type Cache struct {
	store storage.Store
	table profile.Table

	mu       sync.RWMutex
	sessions map[string]session.Session
}

// New builds a cache over the given store and profile table.
func New(store storage.Store, table profile.Table) *Cache {
	return &Cache{
		store:    store,
		table:    table,
		sessions: make(map[string]session.Session),
	}
}

// Get returns the player's active session, hydrating from the store on
// a memory miss. Absence maps to storage.ErrNotFound.
func (c *Cache) Get(ctx context.Context, playerID string) (session.Session, error) {
	c.mu.RLock()
	sess, ok := c.sessions[playerID]
	c.mu.RUnlock()
	if ok {
		return sess.Clone(), nil
	}

	sess, err := c.store.GetActiveSession(ctx, playerID)
	if err != nil {
		return session.Session{}, err
	}

	c.mu.Lock()
	c.sessions[playerID] = sess.Clone()
	c.mu.Unlock()
	return sess, nil
}

// Create starts a fresh game for the player. An existing active session
// is retired first: marked inactive and recorded in history as
// abandoned. Already-finished sessions get no extra history row.
func (c *Cache) Create(ctx context.Context, playerID, displayName string, d session.Difficulty) (session.Session, error) {
	prior, err := c.Get(ctx, playerID)
	switch {
	case err == nil && prior.Active:
		if err := c.retire(ctx, prior); err != nil {
			return session.Session{}, err
		}
	case err != nil && !apperrors.IsCode(err, apperrors.CodeNotFound):
		return session.Session{}, err
	}

	sess, err := c.table.NewSession(playerID, displayName, d)
	if err != nil {
		return session.Session{}, apperrors.Wrap(apperrors.CodeInvalidDifficulty, "create session", err)
	}

	if err := c.Commit(ctx, sess); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

// Commit persists the session and then refreshes the memory copy.
func (c *Cache) Commit(ctx context.Context, sess session.Session) error {
	if err := c.store.PutSession(ctx, sess); err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "persist session", err)
	}

	c.mu.Lock()
	c.sessions[sess.PlayerID] = sess.Clone()
	c.mu.Unlock()
	return nil
}

// Hydrate pre-loads every active session into memory, used at startup.
func (c *Cache) Hydrate(ctx context.Context) (int, error) {
	sessions, err := c.store.ListActiveSessions(ctx)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	for _, sess := range sessions {
		c.sessions[sess.PlayerID] = sess.Clone()
	}
	c.mu.Unlock()
	return len(sessions), nil
}

// Evict drops a player's memory copy; the store copy is untouched.
func (c *Cache) Evict(playerID string) {
	c.mu.Lock()
	delete(c.sessions, playerID)
	c.mu.Unlock()
}

// Len reports how many sessions are resident in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// retire ends an active session as abandoned: history row, store flip,
// memory eviction. History goes first so a failed write leaves the
// session active and the retire retryable. Used when a player restarts
// mid-game.
func (c *Cache) retire(ctx context.Context, sess session.Session) error {
	sess.Active = false
	finalState, err := json.Marshal(sess)
	if err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "encode final state", err)
	}
	if _, err := c.store.AppendHistory(ctx, storage.HistoryRecord{
		PlayerID:       sess.PlayerID,
		DisplayName:    sess.DisplayName,
		Outcome:        string(turn.OutcomeAbandoned),
		SurvivedDays:   sess.CurrentDay,
		Difficulty:     sess.Difficulty,
		FinalLocation:  sess.Location,
		FinalStateJSON: finalState,
	}); err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "record abandoned game", err)
	}

	if err := c.store.PutSession(ctx, sess); err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "retire session", err)
	}

	c.Evict(sess.PlayerID)
	return nil
}
