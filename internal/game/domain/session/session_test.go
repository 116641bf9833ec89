package session

import (
	"testing"

	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

func TestParseDifficulty(t *testing.T) {
	cases := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{"easy", DifficultyEasy, false},
		{" Normal ", DifficultyNormal, false},
		{"HARD", DifficultyHard, false},
		{"nightmare", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseDifficulty(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseDifficulty(%q) expected error", tc.in)
			}
			if !apperrors.IsCode(err, apperrors.CodeInvalidDifficulty) {
				t.Fatalf("ParseDifficulty(%q) code = %v", tc.in, apperrors.GetCode(err))
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDifficulty(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDifficulty(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Session{
		PlayerID:  "p1",
		Weapons:   []string{"Knife"},
		Inventory: map[string]int{"Bandages": 2},
	}

	clone := orig.Clone()
	clone.Weapons[0] = "Pistol"
	clone.Inventory["Bandages"] = 99

	if orig.Weapons[0] != "Knife" {
		t.Fatal("clone shares weapons slice with original")
	}
	if orig.Inventory["Bandages"] != 2 {
		t.Fatal("clone shares inventory map with original")
	}
}

func TestClampVitals(t *testing.T) {
	s := Session{Health: 150, Food: -3, Water: -0.5}
	s.ClampVitals(100)

	if s.Health != 100 {
		t.Fatalf("health = %d, want 100", s.Health)
	}
	if s.Food != 0 || s.Water != 0 {
		t.Fatalf("resources = %v/%v, want 0/0", s.Food, s.Water)
	}

	s.Health = -10
	s.ClampVitals(100)
	if s.Health != 0 {
		t.Fatalf("health = %d, want 0", s.Health)
	}
}

func TestAddWeaponSkipsDuplicates(t *testing.T) {
	s := Session{Weapons: []string{"Baseball Bat"}}

	if s.AddWeapon("baseball bat") {
		t.Fatal("duplicate weapon should not be added")
	}
	if !s.AddWeapon("Knife") {
		t.Fatal("new weapon should be added")
	}
	if len(s.Weapons) != 2 {
		t.Fatalf("weapons = %v", s.Weapons)
	}
}

func TestConsumeItemAtZeroIsInert(t *testing.T) {
	s := Session{Inventory: map[string]int{"Medicine": 1}}

	if !s.ConsumeItem("Medicine") {
		t.Fatal("first consume should succeed")
	}
	if s.ConsumeItem("Medicine") {
		t.Fatal("consume at zero quantity should be inert")
	}
	if s.ItemCount("Medicine") != 0 {
		t.Fatalf("count = %d, want 0", s.ItemCount("Medicine"))
	}
}

func TestConsumeItemFreesExhaustedSlot(t *testing.T) {
	s := Session{Inventory: map[string]int{"Bandages": 1}}

	if !s.ConsumeItem("Bandages") {
		t.Fatal("consume should succeed")
	}
	if _, held := s.Inventory["Bandages"]; held {
		t.Fatal("exhausted item should not occupy an inventory slot")
	}
}

func TestAddItemIgnoresNonPositive(t *testing.T) {
	var s Session
	s.AddItem("Tools", 0)
	s.AddItem("Tools", -2)
	if s.ItemCount("Tools") != 0 {
		t.Fatalf("count = %d, want 0", s.ItemCount("Tools"))
	}

	s.AddItem("Tools", 2)
	if s.ItemCount("Tools") != 2 {
		t.Fatalf("count = %d, want 2", s.ItemCount("Tools"))
	}
}
