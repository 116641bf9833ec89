// Package reaper retires idle sessions and resets daily quotas on a
// schedule.
package reaper

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/tengfone/deadtext/internal/game/cache"
	"github.com/tengfone/deadtext/internal/game/domain/turn"
	"github.com/tengfone/deadtext/internal/game/playerlock"
	"github.com/tengfone/deadtext/internal/game/ratelimit"
	"github.com/tengfone/deadtext/internal/game/storage"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

// Reaper sweeps idle active sessions into abandoned history rows.
type Reaper struct {
	store   storage.Store
	cache   *cache.Cache
	limiter *ratelimit.Limiter
	locks   *playerlock.Ring

	interval  time.Duration
	threshold time.Duration

	// clock is swappable in tests.
	clock func() time.Time
}

// New builds a reaper sweeping every interval, abandoning sessions idle
// longer than threshold.
func New(store storage.Store, c *cache.Cache, limiter *ratelimit.Limiter,
	locks *playerlock.Ring, interval, threshold time.Duration) *Reaper {
	return &Reaper{
		store:     store,
		cache:     c,
		limiter:   limiter,
		locks:     locks,
		interval:  interval,
		threshold: threshold,
		clock:     time.Now,
	}
}

// Run sweeps on the configured interval until the context ends. Quota
// counters are cleared at each daily reset boundary.
func (r *Reaper) Run(ctx context.Context) {
	sweep := time.NewTicker(r.interval)
	defer sweep.Stop()
	quota := time.NewTimer(r.quotaSweepDelay(r.clock()))
	defer quota.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			if n, err := r.Sweep(ctx); err != nil {
				log.Printf("event=reaper_sweep_failed error=%q", err)
			} else if n > 0 {
				log.Printf("event=reaper_sweep abandoned=%d", n)
			}
		case <-quota.C:
			if err := r.limiter.Sweep(ctx); err != nil {
				log.Printf("event=quota_sweep_failed error=%q", err)
			}
			quota.Reset(r.quotaSweepDelay(r.clock()))
		}
	}
}

// quotaSweepDelay is the time left until the next quota reset boundary.
func (r *Reaper) quotaSweepDelay(now time.Time) time.Duration {
	return r.limiter.NextReset(now).Sub(now)
}

// Sweep abandons active sessions idle past the threshold. Each player
// is swept under their turn lock and rechecked, so a turn racing the
// sweep wins.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	cutoff := r.clock().Add(-r.threshold)
	idle, err := r.store.ListIdleActiveSessions(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for _, candidate := range idle {
		if err := ctx.Err(); err != nil {
			return abandoned, err
		}
		ok, err := r.abandon(ctx, candidate.PlayerID, cutoff)
		if err != nil {
			log.Printf("event=reaper_abandon_failed player=%s error=%q", candidate.PlayerID, err)
			continue
		}
		if ok {
			abandoned++
		}
	}
	return abandoned, nil
}

func (r *Reaper) abandon(ctx context.Context, playerID string, cutoff time.Time) (bool, error) {
	unlock := r.locks.Lock(playerID)
	defer unlock()

	// Recheck under the lock: the player may have just played a turn.
	sess, err := r.store.GetActiveSession(ctx, playerID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	if !sess.Active || !sess.UpdatedAt.Before(cutoff) {
		return false, nil
	}

	// History before the inactive flip: a failed append leaves the
	// session active for the next sweep instead of losing the record.
	sess.Active = false
	finalState, err := json.Marshal(sess)
	if err != nil {
		return false, err
	}
	if _, err := r.store.AppendHistory(ctx, storage.HistoryRecord{
		PlayerID:       sess.PlayerID,
		DisplayName:    sess.DisplayName,
		Outcome:        string(turn.OutcomeAbandoned),
		SurvivedDays:   sess.CurrentDay,
		Difficulty:     sess.Difficulty,
		FinalLocation:  sess.Location,
		FinalStateJSON: finalState,
	}); err != nil {
		return false, err
	}

	if err := r.store.PutSession(ctx, sess); err != nil {
		return false, err
	}

	r.cache.Evict(playerID)
	return true, nil
}
