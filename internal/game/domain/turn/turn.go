// Package turn implements the turn-resolution state machine.
//
// A turn takes a classified action effect (supplied by the narrative
// oracle) and a session, applies depletion, resource deltas and
// action-kind effects, then evaluates termination. Resolution is split in
// two phases so callers can persist between mutation and the
// termination/day-advance decision: Apply performs every mutation and
// Finalize settles the outcome.
//
// All randomness flows through an injected *rand.Rand so outcomes are
// reproducible under a seeded source.
package turn

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/tengfone/deadtext/internal/game/domain/profile"
	"github.com/tengfone/deadtext/internal/game/domain/session"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

// Kind classifies a player action.
type Kind string

const (
	KindCombat  Kind = "COMBAT"
	KindMove    Kind = "MOVE"
	KindExplore Kind = "EXPLORE"
	KindStealth Kind = "STEALTH"
	KindRest    Kind = "REST"
	KindCustom  Kind = "CUSTOM"
)

// ParseKind normalizes a classification string to a known kind.
// Unknown values map to KindCustom, matching the classifier contract.
func ParseKind(value string) Kind {
	switch Kind(strings.ToUpper(strings.TrimSpace(value))) {
	case KindCombat:
		return KindCombat
	case KindMove:
		return KindMove
	case KindExplore:
		return KindExplore
	case KindStealth:
		return KindStealth
	case KindRest:
		return KindRest
	}
	return KindCustom
}

// Intensity returns the fixed depletion weight for the kind.
func (k Kind) Intensity() float64 {
	switch k {
	case KindCombat:
		return profile.IntensityCombat
	case KindMove:
		return profile.IntensityMove
	case KindExplore:
		return profile.IntensityExplore
	case KindStealth:
		return profile.IntensityStealth
	case KindRest:
		return profile.IntensityRest
	}
	return profile.IntensityCustom
}

// Valid reports whether the kind is a member of the classification set.
func (k Kind) Valid() bool {
	switch k {
	case KindCombat, KindMove, KindExplore, KindStealth, KindRest, KindCustom:
		return true
	}
	return false
}

// ResourceDeltas are the oracle's numeric resource-impact hints.
type ResourceDeltas struct {
	Health int
	Food   float64
	Water  float64
}

// Delta bounds enforced on oracle classifications.
const (
	MaxHealthDelta   = 100
	MaxResourceDelta = 10
)

// ActionEffect is the structured classification of one player action.
type ActionEffect struct {
	Kind        Kind
	Description string
	Deltas      ResourceDeltas
	// Intensity overrides the kind's fixed weight when positive.
	Intensity float64
	// RiskLevel is the oracle's 1-10 danger estimate; informational.
	RiskLevel int
}

// Validate checks the effect before any mutation is attempted.
func (e ActionEffect) Validate() error {
	if !e.Kind.Valid() || e.Kind == "" {
		return apperrors.WithMetadata(apperrors.CodeInvalidAction,
			"unknown action kind", map[string]string{"kind": string(e.Kind)})
	}
	if e.Deltas.Health < -MaxHealthDelta || e.Deltas.Health > MaxHealthDelta {
		return apperrors.New(apperrors.CodeInvalidAction, "health delta out of range")
	}
	if e.Deltas.Food < -MaxResourceDelta || e.Deltas.Food > MaxResourceDelta {
		return apperrors.New(apperrors.CodeInvalidAction, "food delta out of range")
	}
	if e.Deltas.Water < -MaxResourceDelta || e.Deltas.Water > MaxResourceDelta {
		return apperrors.New(apperrors.CodeInvalidAction, "water delta out of range")
	}
	if e.Intensity < 0 {
		return apperrors.New(apperrors.CodeInvalidAction, "intensity must be non-negative")
	}
	return nil
}

func (e ActionEffect) intensity() float64 {
	if e.Intensity > 0 {
		return e.Intensity
	}
	return e.Kind.Intensity()
}

// Outcome is the terminal classification of a resolved turn.
type Outcome string

const (
	OutcomeContinue  Outcome = "continue"
	OutcomeDied      Outcome = "died"
	OutcomeWon       Outcome = "won"
	OutcomeAbandoned Outcome = "abandoned"
)

// Result reports what a turn changed, for narration and tests.
type Result struct {
	Outcome Outcome

	// Ineffective means Apply performed zero mutation (a rest without
	// food and water); the day must not advance.
	Ineffective bool

	DamageTaken  int
	Healed       int
	FoundFood    float64
	FoundWater   float64
	FoundItem    string
	FoundItemQty int
	FoundWeapon  string
	UsedItem     string
}

// Engine resolves turns against a static difficulty table.
type Engine struct {
	table profile.Table
}

// NewEngine builds a turn engine from the loaded profile table.
func NewEngine(table profile.Table) *Engine {
	return &Engine{table: table}
}

// Apply runs the mutation phase of a turn against the session.
//
// Order: active check, effect validation, intensity-scaled depletion,
// oracle resource deltas, kind-specific effects, inventory item use.
// Validation failures leave the session untouched.
func (e *Engine) Apply(sess *session.Session, effect ActionEffect, rng *rand.Rand) (Result, error) {
	if sess == nil {
		return Result{}, apperrors.New(apperrors.CodeInvalidAction, "session is required")
	}
	if !sess.Active {
		return Result{}, apperrors.New(apperrors.CodeNoActiveSession, "session is not active")
	}
	if rng == nil {
		return Result{}, apperrors.New(apperrors.CodeInvalidAction, "random source is required")
	}
	if err := effect.Validate(); err != nil {
		return Result{}, err
	}

	tier, ok := e.table.Tier(sess.Difficulty)
	if !ok {
		return Result{}, apperrors.WithMetadata(apperrors.CodeInvalidDifficulty,
			"session difficulty missing from profile table",
			map[string]string{"difficulty": string(sess.Difficulty)})
	}

	var res Result

	// A rest without both food and water is ineffective: no depletion,
	// no deltas, no day advance.
	if effect.Kind == KindRest && (sess.Food <= 0 || sess.Water <= 0) {
		res.Ineffective = true
		res.Outcome = OutcomeContinue
		return res, nil
	}

	use := tier.DepletionRate * effect.intensity()
	sess.Food -= use
	sess.Water -= use
	sess.ClampVitals(e.table.MaxHealth)

	sess.Health += effect.Deltas.Health
	sess.Food += effect.Deltas.Food
	sess.Water += effect.Deltas.Water
	sess.ClampVitals(e.table.MaxHealth)

	switch effect.Kind {
	case KindCombat:
		e.applyCombat(sess, effect, rng, &res)
	case KindExplore:
		e.applyExplore(sess, rng, &res)
	case KindRest:
		e.applyRest(sess, &res)
	}

	e.applyItemUse(sess, effect.Description, &res)

	res.Outcome = OutcomeContinue
	return res, nil
}

// Finalize settles termination after the mutation phase has been
// persisted: death beats victory, and the day advances only on continue.
func (e *Engine) Finalize(sess *session.Session) Outcome {
	switch {
	case sess.Health <= 0:
		sess.Active = false
		return OutcomeDied
	case sess.CurrentDay >= e.table.DaysToWin:
		sess.Active = false
		return OutcomeWon
	default:
		sess.CurrentDay++
		return OutcomeContinue
	}
}

// Resolve runs Apply and Finalize in one step, for callers that do not
// need the mid-turn persistence point.
func (e *Engine) Resolve(sess *session.Session, effect ActionEffect, rng *rand.Rand) (Result, error) {
	res, err := e.Apply(sess, effect, rng)
	if err != nil {
		return Result{}, err
	}
	if res.Ineffective {
		return res, nil
	}
	res.Outcome = e.Finalize(sess)
	return res, nil
}

func (e *Engine) applyCombat(sess *session.Session, effect ActionEffect, rng *rand.Rand, res *Result) {
	draw := rng.Intn(profile.CombatDamageMax-profile.CombatDamageMin+1) + profile.CombatDamageMin
	damage := int(float64(draw) * effect.intensity())
	sess.Health -= damage
	sess.ClampVitals(e.table.MaxHealth)
	res.DamageTaken = damage
}

func (e *Engine) applyExplore(sess *session.Session, rng *rand.Rand, res *Result) {
	if rng.Float64() >= profile.ExploreFindSupplyChance {
		return
	}

	span := profile.ExploreSupplyMax - profile.ExploreSupplyMin + 1
	res.FoundFood = float64(rng.Intn(span) + profile.ExploreSupplyMin)
	res.FoundWater = float64(rng.Intn(span) + profile.ExploreSupplyMin)
	sess.Food += res.FoundFood
	sess.Water += res.FoundWater

	if rng.Float64() < profile.ExploreFindItemChance {
		entry := profile.LootTable[rng.Intn(len(profile.LootTable))]
		qty := rng.Intn(entry.MaxQty-entry.MinQty+1) + entry.MinQty
		if sess.ItemCount(entry.Item) > 0 || len(sess.Inventory) < e.table.MaxInventorySlots {
			sess.AddItem(entry.Item, qty)
			res.FoundItem = entry.Item
			res.FoundItemQty = qty
		}
	}

	if rng.Float64() < profile.ExploreFindWeaponChance {
		weapon := pickWeightedWeapon(rng)
		if sess.AddWeapon(weapon) {
			res.FoundWeapon = weapon
		}
	}
}

func (e *Engine) applyRest(sess *session.Session, res *Result) {
	heal := e.table.RestHealCap
	if room := e.table.MaxHealth - sess.Health; room < heal {
		heal = room
	}
	sess.Health += heal
	sess.Food -= profile.RestFoodCost
	sess.Water -= profile.RestWaterCost
	sess.ClampVitals(e.table.MaxHealth)
	res.Healed = heal
}

// applyItemUse consumes one mentioned inventory item when the action
// description reads like an item use. Items are checked in sorted order
// so resolution is deterministic when several are mentioned.
func (e *Engine) applyItemUse(sess *session.Session, description string, res *Result) {
	lower := strings.ToLower(description)
	if !strings.Contains(lower, "use") {
		return
	}

	items := make([]string, 0, len(sess.Inventory))
	for item := range sess.Inventory {
		items = append(items, item)
	}
	sort.Strings(items)

	for _, item := range items {
		if sess.ItemCount(item) <= 0 || !strings.Contains(lower, strings.ToLower(item)) {
			continue
		}
		if heal, ok := profile.ItemHeal[item]; ok {
			sess.Health += heal
			sess.ClampVitals(e.table.MaxHealth)
			res.Healed += heal
		}
		sess.ConsumeItem(item)
		res.UsedItem = item
		return
	}
}

func pickWeightedWeapon(rng *rand.Rand) string {
	roll := rng.Float64()
	cumulative := 0.0
	for _, entry := range profile.WeaponRarityTable {
		cumulative += entry.Weight
		if roll < cumulative {
			return entry.Weapon
		}
	}
	return profile.WeaponRarityTable[len(profile.WeaponRarityTable)-1].Weapon
}
