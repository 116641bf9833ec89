package oracle

import (
	"context"
	"log"

	"github.com/tengfone/deadtext/internal/game/domain/turn"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

// composite tries the primary oracle and falls back when it is
// unavailable. Invalid-action errors pass through untouched; only
// CodeOracleUnavailable triggers the fallback.
type composite struct {
	primary  Oracle
	fallback Oracle
}

// WithFallback wraps a primary oracle with a fallback. A nil primary
// returns the fallback directly.
func WithFallback(primary, fallback Oracle) Oracle {
	if primary == nil {
		return fallback
	}
	return &composite{primary: primary, fallback: fallback}
}

func (c *composite) ClassifyAction(ctx context.Context, view SessionView, action, scenario string) (turn.ActionEffect, error) {
	effect, err := c.primary.ClassifyAction(ctx, view, action, scenario)
	if err == nil || !apperrors.IsCode(err, apperrors.CodeOracleUnavailable) {
		return effect, err
	}
	log.Printf("event=oracle_fallback op=classify error=%q", err)
	return c.fallback.ClassifyAction(ctx, view, action, scenario)
}

func (c *composite) DescribeScenario(ctx context.Context, view SessionView) (string, error) {
	text, err := c.primary.DescribeScenario(ctx, view)
	if err == nil || !apperrors.IsCode(err, apperrors.CodeOracleUnavailable) {
		return text, err
	}
	log.Printf("event=oracle_fallback op=scenario error=%q", err)
	return c.fallback.DescribeScenario(ctx, view)
}

func (c *composite) DescribeOutcome(ctx context.Context, view SessionView, effect turn.ActionEffect, result turn.Result) (string, error) {
	text, err := c.primary.DescribeOutcome(ctx, view, effect, result)
	if err == nil || !apperrors.IsCode(err, apperrors.CodeOracleUnavailable) {
		return text, err
	}
	log.Printf("event=oracle_fallback op=outcome error=%q", err)
	return c.fallback.DescribeOutcome(ctx, view, effect, result)
}
