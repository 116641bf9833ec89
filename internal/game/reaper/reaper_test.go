package reaper

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tengfone/deadtext/internal/game/cache"
	"github.com/tengfone/deadtext/internal/game/domain/profile"
	"github.com/tengfone/deadtext/internal/game/domain/session"
	"github.com/tengfone/deadtext/internal/game/playerlock"
	"github.com/tengfone/deadtext/internal/game/ratelimit"
	"github.com/tengfone/deadtext/internal/game/storage"
	"github.com/tengfone/deadtext/internal/game/storage/sqlite"
)

func newTestReaper(t *testing.T) (*Reaper, storage.Store, *cache.Cache) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "game.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	table, err := profile.Load()
	if err != nil {
		t.Fatalf("load profiles: %v", err)
	}

	sessions := cache.New(store, table)
	limiter := ratelimit.New(store, 50, 0)
	locks := playerlock.New(8)
	return New(store, sessions, limiter, locks, time.Hour, 24*time.Hour), store, sessions
}

func TestSweepAbandonsIdleSessions(t *testing.T) {
	r, store, sessions := newTestReaper(t)
	ctx := context.Background()

	if _, err := sessions.Create(ctx, "idle", "A", session.DifficultyEasy); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Pretend two days pass without a turn.
	r.clock = func() time.Time { return time.Now().Add(48 * time.Hour) }

	n, err := r.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("abandoned = %d, want 1", n)
	}

	got, err := store.GetSession(ctx, "idle")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Active {
		t.Fatal("idle session should be inactive after sweep")
	}

	records, err := store.ListHistory(ctx, "idle", 0)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(records) != 1 || records[0].Outcome != "abandoned" {
		t.Fatalf("history = %+v, want one abandoned record", records)
	}
}

func TestSweepSkipsFreshSessions(t *testing.T) {
	r, store, sessions := newTestReaper(t)
	ctx := context.Background()

	if _, err := sessions.Create(ctx, "fresh", "A", session.DifficultyEasy); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := r.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("abandoned = %d, want 0", n)
	}

	got, err := store.GetActiveSession(ctx, "fresh")
	if err != nil {
		t.Fatalf("GetActiveSession: %v", err)
	}
	if !got.Active {
		t.Fatal("fresh session should stay active")
	}
}

func TestQuotaSweepAlignsToResetBoundary(t *testing.T) {
	r, _, _ := newTestReaper(t)

	now := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC).Sub(now)
	if got := r.quotaSweepDelay(now); got != want {
		t.Fatalf("delay = %s, want %s", got, want)
	}
}

func TestSweepIsRepeatable(t *testing.T) {
	r, store, sessions := newTestReaper(t)
	ctx := context.Background()

	if _, err := sessions.Create(ctx, "idle", "A", session.DifficultyEasy); err != nil {
		t.Fatalf("Create: %v", err)
	}
	r.clock = func() time.Time { return time.Now().Add(48 * time.Hour) }

	if _, err := r.Sweep(ctx); err != nil {
		t.Fatalf("first Sweep: %v", err)
	}
	n, err := r.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("second sweep abandoned = %d, want 0", n)
	}

	records, err := store.ListHistory(ctx, "idle", 0)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("history = %d records, want 1", len(records))
	}
}
