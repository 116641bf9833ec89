// Package profile provides the static difficulty tuning table.
//
// The table is embedded at build time and never mutated at runtime. The
// numeric balance (depletion rates, damage bounds, find probabilities,
// weapon rarity weights) is preserved exactly from the shipped game; do
// not rebalance here without a deliberate gameplay decision.
package profile

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tengfone/deadtext/internal/game/domain/session"
)

//go:embed profiles.yaml
var profilesYAML []byte

// Tier holds the starting state and scaling constants for one difficulty.
type Tier struct {
	InitialHealth  int      `yaml:"initial_health"`
	InitialFood    float64  `yaml:"initial_food"`
	InitialWater   float64  `yaml:"initial_water"`
	InitialWeapons []string `yaml:"initial_weapons"`
	ZombieDamage   int      `yaml:"zombie_damage"`
	DepletionRate  float64  `yaml:"depletion_rate"`
}

// RateLimit holds the daily message quota settings.
type RateLimit struct {
	MaxMessagesPerDay int `yaml:"max_messages_per_day"`
	ResetHourUTC      int `yaml:"reset_hour_utc"`
}

// Table is the full static configuration consumed by the turn engine.
type Table struct {
	MaxHealth         int             `yaml:"max_health"`
	DaysToWin         int             `yaml:"days_to_win"`
	MaxInventorySlots int             `yaml:"max_inventory_slots"`
	RestHealCap       int             `yaml:"rest_heal_cap"`
	RateLimit         RateLimit       `yaml:"rate_limit"`
	Tiers             map[string]Tier `yaml:"tiers"`
}

// Load parses and validates the embedded profile table.
func Load() (Table, error) {
	var t Table
	if err := yaml.Unmarshal(profilesYAML, &t); err != nil {
		return Table{}, fmt.Errorf("profiles.yaml: %w", err)
	}
	if err := t.validate(); err != nil {
		return Table{}, fmt.Errorf("profiles.yaml: %w", err)
	}
	return t, nil
}

func (t Table) validate() error {
	if t.MaxHealth <= 0 {
		return fmt.Errorf("max_health must be positive")
	}
	if t.DaysToWin <= 1 {
		return fmt.Errorf("days_to_win must be greater than one")
	}
	if t.RestHealCap <= 0 {
		return fmt.Errorf("rest_heal_cap must be positive")
	}
	if t.RateLimit.MaxMessagesPerDay <= 0 {
		return fmt.Errorf("max_messages_per_day must be positive")
	}
	if t.RateLimit.ResetHourUTC < 0 || t.RateLimit.ResetHourUTC > 23 {
		return fmt.Errorf("reset_hour_utc must be within 0-23")
	}
	for _, d := range []session.Difficulty{session.DifficultyEasy, session.DifficultyNormal, session.DifficultyHard} {
		tier, ok := t.Tiers[string(d)]
		if !ok {
			return fmt.Errorf("missing tier %q", d)
		}
		if tier.InitialHealth <= 0 || tier.InitialHealth > t.MaxHealth {
			return fmt.Errorf("tier %q: initial_health out of range", d)
		}
		if tier.InitialFood < 0 || tier.InitialWater < 0 {
			return fmt.Errorf("tier %q: initial resources must be non-negative", d)
		}
		if tier.DepletionRate <= 0 {
			return fmt.Errorf("tier %q: depletion_rate must be positive", d)
		}
	}
	return nil
}

// Tier returns the tuning for a difficulty. The bool is false for tiers
// absent from the table.
func (t Table) Tier(d session.Difficulty) (Tier, bool) {
	tier, ok := t.Tiers[string(d)]
	return tier, ok
}

// NewSession constructs a fresh day-one session from the tier settings.
func (t Table) NewSession(playerID, displayName string, d session.Difficulty) (session.Session, error) {
	tier, ok := t.Tier(d)
	if !ok {
		return session.Session{}, fmt.Errorf("unknown difficulty tier %q", d)
	}
	return session.Session{
		PlayerID:    playerID,
		DisplayName: displayName,
		Health:      tier.InitialHealth,
		Food:        tier.InitialFood,
		Water:       tier.InitialWater,
		Weapons:     append([]string(nil), tier.InitialWeapons...),
		Inventory:   map[string]int{},
		CurrentDay:  1,
		Difficulty:  d,
		Location:    session.DefaultLocation,
		Active:      true,
	}, nil
}
