// Package oracle produces action classifications and narrative text.
//
// Two implementations exist: an LLM-backed client speaking the
// OpenRouter chat-completions API, and a deterministic fallback built
// from keyword rules and canned narration. WithFallback composes them
// so the game keeps moving when the LLM is unreachable.
package oracle

import (
	"context"

	"github.com/tengfone/deadtext/internal/game/domain/session"
	"github.com/tengfone/deadtext/internal/game/domain/turn"
)

// SessionView is the read-only snapshot handed to prompt builders.
type SessionView struct {
	DisplayName string
	Day         int
	Location    string
	Difficulty  session.Difficulty
	Health      int
	Food        float64
	Water       float64
	Weapons     []string
	Inventory   map[string]int
}

// ViewOf snapshots a session for prompting.
func ViewOf(sess session.Session) SessionView {
	return SessionView{
		DisplayName: sess.DisplayName,
		Day:         sess.CurrentDay,
		Location:    sess.Location,
		Difficulty:  sess.Difficulty,
		Health:      sess.Health,
		Food:        sess.Food,
		Water:       sess.Water,
		Weapons:     append([]string(nil), sess.Weapons...),
		Inventory:   cloneInventory(sess.Inventory),
	}
}

func cloneInventory(inventory map[string]int) map[string]int {
	out := make(map[string]int, len(inventory))
	for item, qty := range inventory {
		out[item] = qty
	}
	return out
}

// Oracle classifies free-text actions and narrates the game.
type Oracle interface {
	// ClassifyAction interprets a player's free-text action against the
	// current scenario. Unplayable actions return a CodeInvalidAction
	// error whose message is player-facing feedback.
	ClassifyAction(ctx context.Context, view SessionView, action, scenario string) (turn.ActionEffect, error)

	// DescribeScenario narrates the situation opening a turn.
	DescribeScenario(ctx context.Context, view SessionView) (string, error)

	// DescribeOutcome narrates the consequences of a resolved turn.
	DescribeOutcome(ctx context.Context, view SessionView, effect turn.ActionEffect, result turn.Result) (string, error)
}
