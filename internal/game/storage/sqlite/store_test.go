package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tengfone/deadtext/internal/game/domain/session"
	"github.com/tengfone/deadtext/internal/game/storage"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "game.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSession(playerID string) session.Session {
	return session.Session{
		PlayerID:    playerID,
		DisplayName: "Alex",
		Health:      80,
		Food:        7,
		Water:       6.5,
		Weapons:     []string{"Knife"},
		Inventory:   map[string]int{"Bandages": 2},
		CurrentDay:  3,
		Difficulty:  session.DifficultyNormal,
		Location:    "Safe House",
		Scenario:    "*[SITUATION]* quiet streets",
		Active:      true,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := sampleSession("p1")
	if err := store.PutSession(ctx, want); err != nil {
		t.Fatalf("PutSession: %v", err)
	}

	got, err := store.GetActiveSession(ctx, "p1")
	if err != nil {
		t.Fatalf("GetActiveSession: %v", err)
	}

	if got.Health != want.Health || got.Food != want.Food || got.Water != want.Water {
		t.Fatalf("vitals = %d/%v/%v, want %d/%v/%v",
			got.Health, got.Food, got.Water, want.Health, want.Food, want.Water)
	}
	if len(got.Weapons) != 1 || got.Weapons[0] != "Knife" {
		t.Fatalf("weapons = %v", got.Weapons)
	}
	if got.Inventory["Bandages"] != 2 {
		t.Fatalf("inventory = %v", got.Inventory)
	}
	if got.Scenario != want.Scenario {
		t.Fatalf("scenario = %q, want %q", got.Scenario, want.Scenario)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt should be set by the store")
	}
}

func TestPutSessionUpsertIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sess := sampleSession("p1")
	if err := store.PutSession(ctx, sess); err != nil {
		t.Fatalf("first put: %v", err)
	}
	sess.Health = 42
	if err := store.PutSession(ctx, sess); err != nil {
		t.Fatalf("second put: %v", err)
	}
	if err := store.PutSession(ctx, sess); err != nil {
		t.Fatalf("replayed put: %v", err)
	}

	got, err := store.GetActiveSession(ctx, "p1")
	if err != nil {
		t.Fatalf("GetActiveSession: %v", err)
	}
	if got.Health != 42 {
		t.Fatalf("health = %d, want 42", got.Health)
	}
}

func TestGetActiveSessionNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.GetActiveSession(ctx, "ghost"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	// An inactive session is invisible to the active lookup.
	sess := sampleSession("p1")
	sess.Active = false
	if err := store.PutSession(ctx, sess); err != nil {
		t.Fatalf("PutSession: %v", err)
	}
	if _, err := store.GetActiveSession(ctx, "p1"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if _, err := store.GetSession(ctx, "p1"); err != nil {
		t.Fatalf("GetSession should see inactive sessions: %v", err)
	}
}

func TestListIdleActiveSessions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base.Add(-48 * time.Hour) }
	if err := store.PutSession(ctx, sampleSession("stale")); err != nil {
		t.Fatalf("put stale: %v", err)
	}

	store.now = func() time.Time { return base }
	if err := store.PutSession(ctx, sampleSession("fresh")); err != nil {
		t.Fatalf("put fresh: %v", err)
	}

	idle, err := store.ListIdleActiveSessions(ctx, base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ListIdleActiveSessions: %v", err)
	}
	if len(idle) != 1 || idle[0].PlayerID != "stale" {
		t.Fatalf("idle = %+v, want only stale", idle)
	}

	all, err := store.ListActiveSessions(ctx)
	if err != nil {
		t.Fatalf("ListActiveSessions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("active = %d, want 2", len(all))
	}
}

func TestMarkInactiveIsRepeatable(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutSession(ctx, sampleSession("p1")); err != nil {
		t.Fatalf("PutSession: %v", err)
	}
	if err := store.MarkInactive(ctx, "p1"); err != nil {
		t.Fatalf("MarkInactive: %v", err)
	}
	if err := store.MarkInactive(ctx, "p1"); err != nil {
		t.Fatalf("repeated MarkInactive: %v", err)
	}
	if err := store.MarkInactive(ctx, "missing"); err != nil {
		t.Fatalf("MarkInactive on missing player: %v", err)
	}

	got, err := store.GetSession(ctx, "p1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Active {
		t.Fatal("session should be inactive")
	}
}

func TestCounterLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.GetCounter(ctx, "p1"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if err := store.IncrementCounter(ctx, "p1"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("increment on missing counter = %v, want not found", err)
	}

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := store.PutCounter(ctx, storage.Counter{PlayerID: "p1", MessageCount: 1, WindowStart: start}); err != nil {
		t.Fatalf("PutCounter: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.IncrementCounter(ctx, "p1"); err != nil {
			t.Fatalf("IncrementCounter: %v", err)
		}
	}

	counter, err := store.GetCounter(ctx, "p1")
	if err != nil {
		t.Fatalf("GetCounter: %v", err)
	}
	if counter.MessageCount != 4 {
		t.Fatalf("count = %d, want 4", counter.MessageCount)
	}
	if !counter.WindowStart.Equal(start) {
		t.Fatalf("window start = %v, want %v", counter.WindowStart, start)
	}

	if err := store.ClearCounters(ctx); err != nil {
		t.Fatalf("ClearCounters: %v", err)
	}
	if _, err := store.GetCounter(ctx, "p1"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err after clear = %v, want not found", err)
	}
}

func TestAppendHistoryAssignsSequence(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := storage.HistoryRecord{
		PlayerID:     "p1",
		DisplayName:  "Alex",
		Outcome:      "died",
		SurvivedDays: 12,
		Difficulty:   session.DifficultyHard,
	}

	seq1, err := store.AppendHistory(ctx, rec)
	if err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	rec.Outcome = "won"
	rec.SurvivedDays = 30
	seq2, err := store.AppendHistory(ctx, rec)
	if err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	if seq1 != 1 || seq2 != 2 {
		t.Fatalf("seqs = %d, %d, want 1, 2", seq1, seq2)
	}

	// Another player starts a fresh sequence.
	rec.PlayerID = "p2"
	seq, err := store.AppendHistory(ctx, rec)
	if err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if seq != 1 {
		t.Fatalf("seq = %d, want 1", seq)
	}

	records, err := store.ListHistory(ctx, "p1", 0)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(records) != 2 || records[0].GameSeq != 2 {
		t.Fatalf("records = %+v, want most recent first", records)
	}
}

func TestHistorySummary(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	empty, err := store.Summary(ctx, "nobody")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if empty.GamesPlayed != 0 || empty.BestRun != 0 {
		t.Fatalf("empty summary = %+v", empty)
	}

	for _, days := range []int{10, 30, 20} {
		outcome := "died"
		if days == 30 {
			outcome = "won"
		}
		if _, err := store.AppendHistory(ctx, storage.HistoryRecord{
			PlayerID:     "p1",
			Outcome:      outcome,
			SurvivedDays: days,
			Difficulty:   session.DifficultyNormal,
		}); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	summary, err := store.Summary(ctx, "p1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.GamesPlayed != 3 || summary.BestRun != 30 || summary.Wins != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.AverageDays != 20 {
		t.Fatalf("average = %v, want 20", summary.AverageDays)
	}
}
