package profile

import (
	"testing"

	"github.com/tengfone/deadtext/internal/game/domain/session"
)

func mustLoad(t *testing.T) Table {
	t.Helper()
	table, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return table
}

func TestLoadTableValues(t *testing.T) {
	table := mustLoad(t)

	if table.MaxHealth != 100 || table.DaysToWin != 30 || table.RestHealCap != 20 {
		t.Fatalf("globals = %+v", table)
	}
	if table.RateLimit.MaxMessagesPerDay != 50 || table.RateLimit.ResetHourUTC != 0 {
		t.Fatalf("rate limit = %+v", table.RateLimit)
	}

	cases := []struct {
		difficulty session.Difficulty
		health     int
		food       float64
		weapon     string
		depletion  float64
	}{
		{session.DifficultyEasy, 100, 10, "Baseball Bat", 0.5},
		{session.DifficultyNormal, 80, 7, "Knife", 1.0},
		{session.DifficultyHard, 60, 5, "Fists", 1.5},
	}

	for _, tc := range cases {
		tier, ok := table.Tier(tc.difficulty)
		if !ok {
			t.Fatalf("missing tier %q", tc.difficulty)
		}
		if tier.InitialHealth != tc.health {
			t.Fatalf("%s health = %d, want %d", tc.difficulty, tier.InitialHealth, tc.health)
		}
		if tier.InitialFood != tc.food || tier.InitialWater != tc.food {
			t.Fatalf("%s resources = %v/%v, want %v", tc.difficulty, tier.InitialFood, tier.InitialWater, tc.food)
		}
		if len(tier.InitialWeapons) != 1 || tier.InitialWeapons[0] != tc.weapon {
			t.Fatalf("%s weapons = %v, want [%s]", tc.difficulty, tier.InitialWeapons, tc.weapon)
		}
		if tier.DepletionRate != tc.depletion {
			t.Fatalf("%s depletion = %v, want %v", tc.difficulty, tier.DepletionRate, tc.depletion)
		}
	}
}

func TestNewSessionStartsAtDayOne(t *testing.T) {
	table := mustLoad(t)

	sess, err := table.NewSession("p1", "Alex", session.DifficultyNormal)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if sess.CurrentDay != 1 {
		t.Fatalf("day = %d, want 1", sess.CurrentDay)
	}
	if !sess.Active {
		t.Fatal("new session should be active")
	}
	if sess.Location != session.DefaultLocation {
		t.Fatalf("location = %q, want %q", sess.Location, session.DefaultLocation)
	}
	if sess.Health != 80 || sess.Food != 7 || sess.Water != 7 {
		t.Fatalf("vitals = %d/%v/%v", sess.Health, sess.Food, sess.Water)
	}
}

func TestNewSessionCopiesWeapons(t *testing.T) {
	table := mustLoad(t)

	a, _ := table.NewSession("p1", "A", session.DifficultyEasy)
	b, _ := table.NewSession("p2", "B", session.DifficultyEasy)
	a.Weapons[0] = "Pistol"

	if b.Weapons[0] != "Baseball Bat" {
		t.Fatal("sessions share the tier weapon slice")
	}
}

func TestNewSessionUnknownTier(t *testing.T) {
	table := mustLoad(t)

	if _, err := table.NewSession("p1", "A", session.Difficulty("nightmare")); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestWeaponRarityWeightsSumToOne(t *testing.T) {
	total := 0.0
	for _, entry := range WeaponRarityTable {
		total += entry.Weight
	}
	if total < 0.999 || total > 1.001 {
		t.Fatalf("weights sum = %v, want 1.0", total)
	}
}
