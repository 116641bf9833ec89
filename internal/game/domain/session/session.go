// Package session defines the per-player game session aggregate.
//
// A session tracks vital resources, inventory, weapons and the day count
// for exactly one player. Its invariants are enforced here: health stays
// within [0, max], food and water never go negative, and an inactive
// session is terminal.
package session

import (
	"strings"
	"time"

	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

// Difficulty identifies a game difficulty tier.
// It is immutable for the life of a session.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// DefaultLocation is where every new game begins.
const DefaultLocation = "Safe House"

// ParseDifficulty normalizes and validates a difficulty tier name.
func ParseDifficulty(value string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(value))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyNormal:
		return DifficultyNormal, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", apperrors.WithMetadata(apperrors.CodeInvalidDifficulty,
		"unknown difficulty tier", map[string]string{"difficulty": value})
}

// Valid reports whether the difficulty is a known tier.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return true
	}
	return false
}

// Session is the authoritative state of one player's game.
//
// Food and water are fractional because depletion scales with action
// intensity; health is an integer clamped to [0, max health].
type Session struct {
	PlayerID    string
	DisplayName string
	Health      int
	Food        float64
	Water       float64
	Weapons     []string
	Inventory   map[string]int
	CurrentDay  int
	Difficulty  Difficulty
	Location    string
	// Scenario is the narration currently presented to the player.
	// Action validity is judged against it, so it persists with the
	// session.
	Scenario  string
	Active    bool
	UpdatedAt time.Time
}

// Clone returns a deep copy so cached state cannot be mutated by callers.
func (s Session) Clone() Session {
	out := s
	out.Weapons = append([]string(nil), s.Weapons...)
	if s.Inventory != nil {
		out.Inventory = make(map[string]int, len(s.Inventory))
		for item, qty := range s.Inventory {
			out.Inventory[item] = qty
		}
	}
	return out
}

// ClampVitals enforces the resource invariants after a mutation.
func (s *Session) ClampVitals(maxHealth int) {
	if s.Health < 0 {
		s.Health = 0
	}
	if s.Health > maxHealth {
		s.Health = maxHealth
	}
	if s.Food < 0 {
		s.Food = 0
	}
	if s.Water < 0 {
		s.Water = 0
	}
}

// HasWeapon reports whether the named weapon is already carried.
func (s *Session) HasWeapon(name string) bool {
	for _, w := range s.Weapons {
		if strings.EqualFold(w, name) {
			return true
		}
	}
	return false
}

// AddWeapon appends a weapon unless it is already carried.
// Insertion order is preserved for display.
func (s *Session) AddWeapon(name string) bool {
	if s.HasWeapon(name) {
		return false
	}
	s.Weapons = append(s.Weapons, name)
	return true
}

// AddItem increases an inventory quantity; absence means zero.
func (s *Session) AddItem(name string, qty int) {
	if qty <= 0 {
		return
	}
	if s.Inventory == nil {
		s.Inventory = make(map[string]int)
	}
	s.Inventory[name] += qty
}

// ItemCount returns the quantity of an item; zero when absent.
func (s *Session) ItemCount(name string) int {
	return s.Inventory[name]
}

// ConsumeItem decrements an item by one if a positive quantity is held.
// An item at quantity zero is inert. Exhausted kinds are removed so
// they stop occupying inventory slots.
func (s *Session) ConsumeItem(name string) bool {
	if s.Inventory[name] <= 0 {
		return false
	}
	s.Inventory[name]--
	if s.Inventory[name] == 0 {
		delete(s.Inventory, name)
	}
	return true
}
