package oracle

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"unicode"

	"github.com/tengfone/deadtext/internal/game/domain/turn"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

// Fallback is a deterministic oracle built from keyword rules and canned
// narration. It keeps the game playable when the LLM is unreachable.
type Fallback struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback builds a fallback oracle over a seeded random source.
func NewFallback(rng *rand.Rand) *Fallback {
	return &Fallback{rng: rng}
}

func (f *Fallback) pick(options []string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return options[f.rng.Intn(len(options))]
}

func (f *Fallback) chance(p float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Float64() < p
}

// ClassifyAction interprets the action with keyword rules. Actions that
// contradict the scenario return CodeInvalidAction with player-facing
// feedback in the error message.
func (f *Fallback) ClassifyAction(_ context.Context, view SessionView, action, scenario string) (turn.ActionEffect, error) {
	lowerAction := strings.ToLower(action)
	lowerScenario := strings.ToLower(scenario)

	if feedback := rejectAction(view, lowerAction, lowerScenario); feedback != "" {
		return turn.ActionEffect{}, apperrors.New(apperrors.CodeInvalidAction, feedback)
	}

	kind := turn.KindCustom
	switch {
	case containsAny(lowerAction, "fight", "attack", "shoot", "kill", "defend"):
		kind = turn.KindCombat
	case containsAny(lowerAction, "sneak", "hide", "quiet", "stealth"):
		kind = turn.KindStealth
	case containsAny(lowerAction, "search", "look", "explore", "find"):
		kind = turn.KindExplore
	case containsAny(lowerAction, "rest", "sleep", "wait", "heal"):
		kind = turn.KindRest
	case containsAny(lowerAction, "run", "move", "go", "climb", "jump"):
		kind = turn.KindMove
	}

	return turn.ActionEffect{
		Kind:        kind,
		Description: action,
		RiskLevel:   riskFor(kind),
	}, nil
}

// rejectAction returns player-facing feedback when the action cannot be
// played against the scenario, or empty when it can. Action keywords
// are matched on word boundaries so "building" never trips "build";
// scenario text is matched loosely since narration inflects freely.
func rejectAction(view SessionView, lowerAction, lowerScenario string) string {
	if hasAnyWord(lowerAction, "craft", "make", "build", "create") &&
		!strings.Contains(lowerScenario, "workshop") && !strings.Contains(lowerScenario, "tools") {
		return "You don't have the tools or workspace to craft items here."
	}

	if hasAnyWord(lowerAction, "gun", "shoot") && !carriesFirearm(view.Weapons) {
		return "You don't have any firearms in your possession."
	}

	if hasAnyWord(lowerAction, "door", "doors") && !strings.Contains(lowerScenario, "door") {
		return "There is no door in your current location."
	}
	if hasAnyWord(lowerAction, "window", "windows") && !strings.Contains(lowerScenario, "window") {
		return "There are no windows in your current location."
	}

	if hasAnyWord(lowerAction, "search") && strings.Contains(lowerScenario, "empty") {
		return "This area appears to be completely empty."
	}

	if hasAnyWord(lowerAction, "fight", "attack", "shoot", "kill", "defend") &&
		!strings.Contains(lowerScenario, "zombie") && !strings.Contains(lowerScenario, "threat") {
		return "There are no immediate threats to fight here. Try exploring or looking around first."
	}

	if hasAnyWord(lowerAction, "rest", "sleep", "wait", "heal") &&
		!strings.Contains(lowerScenario, "safe") && !strings.Contains(lowerScenario, "quiet") {
		return "It's not safe to rest here. Find a more secure location first."
	}

	return ""
}

func riskFor(kind turn.Kind) int {
	switch kind {
	case turn.KindCombat:
		return 8
	case turn.KindMove:
		return 5
	case turn.KindExplore:
		return 5
	case turn.KindStealth:
		return 4
	case turn.KindRest:
		return 2
	}
	return 5
}

func containsAny(value string, words ...string) bool {
	for _, word := range words {
		if strings.Contains(value, word) {
			return true
		}
	}
	return false
}

// hasAnyWord reports whether any of the words appears as a whole word.
func hasAnyWord(value string, words ...string) bool {
	for _, field := range strings.FieldsFunc(value, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		for _, word := range words {
			if field == word {
				return true
			}
		}
	}
	return false
}

func carriesFirearm(weapons []string) bool {
	for _, w := range weapons {
		lower := strings.ToLower(w)
		if strings.Contains(lower, "gun") || strings.Contains(lower, "pistol") || strings.Contains(lower, "rifle") {
			return true
		}
	}
	return false
}

// DescribeScenario builds a scene from the player's condition: critical
// health steers toward medical sites, scarcity toward food, and so on.
func (f *Fallback) DescribeScenario(_ context.Context, view SessionView) (string, error) {
	healthStatus := healthStatusOf(view.Health)
	scarce := view.Food < 5 || view.Water < 5
	armed := len(view.Weapons) > 0

	var atmosphereParts []string
	if view.Day > 20 {
		atmosphereParts = append(atmosphereParts, "The extended isolation has taken its toll on the city.")
	}
	if healthStatus == "critical" {
		atmosphereParts = append(atmosphereParts, "Your wounds make every movement painful.")
	}
	if scarce {
		atmosphereParts = append(atmosphereParts, "Your stomach growls, reminding you of your dwindling supplies.")
	}
	atmosphere := strings.Join(atmosphereParts, " ")
	if atmosphere == "" {
		atmosphere = fmt.Sprintf("The %s streets of %s remain dangerous as ever.",
			strings.ToLower(string(view.Difficulty)), view.Location)
	}

	var situation string
	switch {
	case healthStatus == "critical":
		situation = f.pick([]string{
			"A medical clinic is visible in the distance, but zombies patrol the area.",
			"You spot a pharmacy across the street, its windows broken but contents potentially intact.",
		})
	case scarce:
		situation = f.pick([]string{
			"A supermarket's back entrance appears unguarded, but strange noises echo from within.",
			"An abandoned food truck sits in the alley, possibly still containing supplies.",
		})
	case armed && f.chance(0.3):
		situation = f.pick([]string{
			"The sound of gunfire in the distance suggests other survivors nearby.",
			"A military checkpoint lies ahead, potentially holding valuable equipment.",
		})
	case !armed:
		situation = f.pick([]string{
			"A sporting goods store might have something to defend yourself with.",
			"A police station looms nearby, possibly containing weapons.",
		})
	default:
		situation = f.pick([]string{
			"A residential area stretches before you, houses waiting to be explored.",
			"The city's commercial district offers various buildings to search.",
		})
	}

	lowerSituation := strings.ToLower(situation)
	risky := "Explore the area for supplies"
	switch {
	case strings.Contains(lowerSituation, "clinic") || strings.Contains(lowerSituation, "pharmacy"):
		risky = "Try to find medical supplies"
	case strings.Contains(lowerSituation, "supermarket") || strings.Contains(lowerSituation, "food"):
		risky = "Search for food and water"
	case strings.Contains(lowerSituation, "military") || strings.Contains(lowerSituation, "police"):
		risky = "Look for weapons or ammunition"
	}

	desperate := "Take a dangerous gamble that might pay off"
	switch {
	case healthStatus == "critical":
		desperate = "Make a dash for medical supplies despite the danger"
	case scarce:
		desperate = "Take dangerous risks to find food"
	case !armed:
		desperate = "Search for weapons at any cost"
	}

	scenario := fmt.Sprintf(`*[ATMOSPHERE]*
%s

*[SITUATION]*
%s

*[CHOICES]*
🟢 _Safe_ - Observe the area carefully and plan your next move
🟡 _Risky_ - %s
🔴 _Desperate_ - %s`, atmosphere, situation, risky, desperate)

	return scenario, nil
}

// DescribeOutcome narrates a resolved turn from canned outcome pools.
// Success odds follow the player's condition, not the engine's draws.
func (f *Fallback) DescribeOutcome(_ context.Context, view SessionView, effect turn.ActionEffect, result turn.Result) (string, error) {
	healthStatus := healthStatusOf(view.Health)
	armed := len(view.Weapons) > 0
	hasGun := carriesFirearm(view.Weapons)

	successChance := 0.7
	switch healthStatus {
	case "critical":
		successChance -= 0.3
	case "injured":
		successChance -= 0.1
	}
	if armed {
		successChance += 0.1
	}
	success := f.chance(successChance)

	pool := outcomePools[effect.Kind]
	if pool.success == nil {
		pool = outcomePools[turn.KindMove]
	}

	var outcomeText string
	switch {
	case healthStatus == "critical" && len(pool.critical) > 0:
		outcomeText = f.pick(pool.critical)
	case hasGun && effect.Kind == turn.KindCombat:
		outcomeText = f.pick(pool.gun)
	case success:
		outcomeText = f.pick(pool.success)
	default:
		outcomeText = f.pick(pool.failure)
	}

	var statusEffects []string
	switch effect.Kind {
	case turn.KindCombat:
		if hasGun {
			statusEffects = append(statusEffects, "Used ammunition")
		}
		if result.DamageTaken > 0 {
			statusEffects = append(statusEffects, "Sustained injuries")
		}
	case turn.KindExplore:
		if result.FoundFood > 0 || result.FoundItem != "" || result.FoundWeapon != "" {
			statusEffects = append(statusEffects, "Found supplies")
		}
	case turn.KindRest:
		if result.Healed > 0 {
			statusEffects = append(statusEffects, "Recovered some health")
			statusEffects = append(statusEffects, "Used supplies")
		}
	}
	status := "No significant changes"
	if len(statusEffects) > 0 {
		status = strings.Join(statusEffects, " | ")
	}

	nextPool := nextSituations[effect.Kind]
	if nextPool.success == nil {
		nextPool = nextSituations[turn.KindMove]
	}
	var next string
	if success {
		next = f.pick(nextPool.success)
	} else {
		next = f.pick(nextPool.failure)
	}

	return fmt.Sprintf(`*[OUTCOME]*
%s

*[STATUS]*
%s

*[NEXT]*
%s`, outcomeText, status, next), nil
}

func healthStatusOf(health int) string {
	switch {
	case health < 30:
		return "critical"
	case health < 70:
		return "injured"
	}
	return "healthy"
}

type outcomePool struct {
	success  []string
	failure  []string
	critical []string
	gun      []string
}

var outcomePools = map[turn.Kind]outcomePool{
	turn.KindCombat: {
		success: []string{
			"Your quick thinking and combat experience pay off as you handle the threat.",
			"The fight is intense but brief, ending in your favor.",
			"Your training kicks in, and you dispatch the threats efficiently.",
		},
		failure: []string{
			"The situation proves more dangerous than anticipated.",
			"You're forced to retreat after taking some hits.",
			"The fight doesn't go as planned, leaving you wounded.",
		},
		critical: []string{
			"Despite your injuries, you manage to survive the encounter.",
			"Your weakened state makes the fight extremely dangerous.",
		},
		gun: []string{
			"The gunshot echoes through the streets, effective but loud.",
			"Your aim is true, but the noise will attract attention.",
		},
	},
	turn.KindStealth: {
		success: []string{
			"You move like a shadow, avoiding detection.",
			"Your careful movements keep you hidden from danger.",
			"Patience and timing allow you to slip by unnoticed.",
		},
		failure: []string{
			"A small noise gives away your position.",
			"The path isn't as clear as you thought.",
			"Staying hidden proves more challenging than expected.",
		},
	},
	turn.KindExplore: {
		success: []string{
			"Your thorough search reveals valuable supplies.",
			"Patience pays off as you discover hidden resources.",
			"The risk was worth it - you find useful items.",
		},
		failure: []string{
			"The area has been picked clean already.",
			"Your search yields nothing of value.",
			"Others have clearly been here before you.",
		},
	},
	turn.KindRest: {
		success: []string{
			"You find a moment of peace to recover your strength.",
			"The brief respite helps you regain your energy.",
			"A safe spot allows you to tend to your needs.",
		},
		failure: []string{
			"Your rest is interrupted by distant noises.",
			"The area isn't as safe as you thought.",
			"Constant vigilance makes true rest difficult.",
		},
	},
	turn.KindMove: {
		success: []string{
			"You navigate the dangerous streets successfully.",
			"The path ahead clears as you move carefully.",
			"Your route proves safer than expected.",
		},
		failure: []string{
			"The way forward is more treacherous than it appeared.",
			"New dangers emerge as you move through the area.",
			"The route forces you to take unexpected detours.",
		},
	},
}

type nextPool struct {
	success []string
	failure []string
}

var nextSituations = map[turn.Kind]nextPool{
	turn.KindCombat: {
		success: []string{
			"The immediate threat is gone, but stay alert.",
			"Victory is yours, but others may have heard the fight.",
		},
		failure: []string{
			"You need to find a safe place to recover.",
			"That was too close - time to be more careful.",
		},
	},
	turn.KindStealth: {
		success: []string{"You've avoided detection, but for how long?"},
		failure: []string{"You need to find another way around."},
	},
	turn.KindExplore: {
		success: []string{"There might be more to find in the area."},
		failure: []string{"Time to move on to somewhere else."},
	},
	turn.KindRest: {
		success: []string{"You feel better, but danger never rests."},
		failure: []string{"You need to find a safer spot."},
	},
	turn.KindMove: {
		success: []string{"What dangers await in this new area?"},
		failure: []string{"The path ahead looks treacherous."},
	},
}
