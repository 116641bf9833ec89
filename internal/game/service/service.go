// Package service orchestrates the game: quota checks, action
// classification, turn resolution, persistence and narration.
package service

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tengfone/deadtext/internal/game/cache"
	"github.com/tengfone/deadtext/internal/game/domain/profile"
	"github.com/tengfone/deadtext/internal/game/domain/session"
	"github.com/tengfone/deadtext/internal/game/domain/turn"
	"github.com/tengfone/deadtext/internal/game/oracle"
	"github.com/tengfone/deadtext/internal/game/playerlock"
	"github.com/tengfone/deadtext/internal/game/ratelimit"
	"github.com/tengfone/deadtext/internal/game/storage"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

// TurnReport is everything the gateway needs to render one turn.
type TurnReport struct {
	Session     session.Session
	Result      turn.Result
	Outcome     turn.Outcome
	OutcomeText string
	// NextScenario is set when the game continues.
	NextScenario string
	// QuotaRemaining is the player's message budget after this turn.
	QuotaRemaining int
}

// StartReport is the state and opening scene of a fresh game.
type StartReport struct {
	Session  session.Session
	Scenario string
}

// Service is the turn engine's public surface.
type Service struct {
	cache   *cache.Cache
	store   storage.Store
	engine  *turn.Engine
	oracle  oracle.Oracle
	limiter *ratelimit.Limiter
	locks   *playerlock.Ring
	table   profile.Table

	// rngMu guards the shared random source; math/rand sources are not
	// safe for concurrent draws.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// New wires the service from its collaborators.
func New(c *cache.Cache, store storage.Store, engine *turn.Engine, o oracle.Oracle,
	limiter *ratelimit.Limiter, locks *playerlock.Ring, table profile.Table, rng *rand.Rand) *Service {
	return &Service{
		cache:   c,
		store:   store,
		engine:  engine,
		oracle:  o,
		limiter: limiter,
		locks:   locks,
		table:   table,
		rng:     rng,
	}
}

// Hydrate pre-loads active sessions into the cache at startup.
func (s *Service) Hydrate(ctx context.Context) error {
	n, err := s.cache.Hydrate(ctx)
	if err != nil {
		return err
	}
	log.Printf("event=cache_hydrated sessions=%d", n)
	return nil
}

// StartSession begins a fresh game at the requested difficulty. Any
// active prior game is retired as abandoned.
func (s *Service) StartSession(ctx context.Context, playerID, displayName, difficulty string) (StartReport, error) {
	if err := ctx.Err(); err != nil {
		return StartReport{}, err
	}
	if strings.TrimSpace(playerID) == "" {
		return StartReport{}, apperrors.New(apperrors.CodeEmptyPlayerID, "player id is required")
	}
	d, err := session.ParseDifficulty(difficulty)
	if err != nil {
		return StartReport{}, err
	}

	unlock := s.locks.Lock(playerID)
	defer unlock()

	sess, err := s.cache.Create(ctx, playerID, displayName, d)
	if err != nil {
		return StartReport{}, err
	}

	scenario, err := s.oracle.DescribeScenario(ctx, oracle.ViewOf(sess))
	if err != nil {
		return StartReport{}, err
	}
	sess.Scenario = scenario
	if err := s.cache.Commit(ctx, sess); err != nil {
		return StartReport{}, err
	}

	log.Printf("event=session_started player=%s difficulty=%s", playerID, d)
	return StartReport{Session: sess, Scenario: scenario}, nil
}

// SubmitAction resolves one free-text action as a full turn.
//
// A drained quota is rejected up front without any writes; the unit is
// consumed only once the action proves playable, so a rejected action
// costs no quota. Mutated state is committed before termination is
// evaluated and again after, so a crash between the two never loses
// the turn.
func (s *Service) SubmitAction(ctx context.Context, playerID, action string) (TurnReport, error) {
	if err := ctx.Err(); err != nil {
		return TurnReport{}, err
	}
	if strings.TrimSpace(playerID) == "" {
		return TurnReport{}, apperrors.New(apperrors.CodeEmptyPlayerID, "player id is required")
	}
	if strings.TrimSpace(action) == "" {
		return TurnReport{}, apperrors.New(apperrors.CodeInvalidAction, "action text is required")
	}

	invocation := uuid.NewString()

	decision, err := s.limiter.Peek(ctx, playerID)
	if err != nil {
		return TurnReport{}, err
	}
	if !decision.Allowed {
		return TurnReport{}, quotaExceeded(decision)
	}

	unlock := s.locks.Lock(playerID)
	defer unlock()

	sess, err := s.cache.Get(ctx, playerID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return TurnReport{}, apperrors.New(apperrors.CodeNoActiveSession, "no active game")
		}
		return TurnReport{}, err
	}

	// Classification is a pure read; no state changes until it succeeds.
	effect, err := s.oracle.ClassifyAction(ctx, oracle.ViewOf(sess), action, sess.Scenario)
	if err != nil {
		return TurnReport{}, err
	}

	s.rngMu.Lock()
	result, err := s.engine.Apply(&sess, effect, s.rng)
	s.rngMu.Unlock()
	if err != nil {
		return TurnReport{}, err
	}

	// The action is playable; nothing has been committed yet, so a
	// quota lost to a racing message discards the local state cleanly.
	decision, err = s.limiter.Check(ctx, playerID)
	if err != nil {
		return TurnReport{}, err
	}
	if !decision.Allowed {
		return TurnReport{}, quotaExceeded(decision)
	}

	if result.Ineffective {
		log.Printf("event=turn_ineffective invocation=%s player=%s kind=%s", invocation, playerID, effect.Kind)
		return TurnReport{
			Session:        sess,
			Result:         result,
			Outcome:        turn.OutcomeContinue,
			QuotaRemaining: decision.Remaining,
		}, nil
	}

	if err := s.cache.Commit(ctx, sess); err != nil {
		return TurnReport{}, err
	}

	outcome := s.engine.Finalize(&sess)

	outcomeText, err := s.oracle.DescribeOutcome(ctx, oracle.ViewOf(sess), effect, result)
	if err != nil {
		log.Printf("event=outcome_narration_failed invocation=%s player=%s error=%q", invocation, playerID, err)
		outcomeText = ""
	}

	var nextScenario string
	if outcome == turn.OutcomeContinue {
		nextScenario, err = s.oracle.DescribeScenario(ctx, oracle.ViewOf(sess))
		if err != nil {
			log.Printf("event=scenario_narration_failed invocation=%s player=%s error=%q", invocation, playerID, err)
			nextScenario = ""
		}
		sess.Scenario = nextScenario
	}

	// History is appended before the inactive commit: a failed append
	// leaves the session active and the turn retryable, instead of
	// losing the finished game's record.
	terminal := outcome == turn.OutcomeDied || outcome == turn.OutcomeWon
	if terminal {
		if err := s.recordFinished(ctx, sess, outcome); err != nil {
			return TurnReport{}, err
		}
	}

	if err := s.cache.Commit(ctx, sess); err != nil {
		return TurnReport{}, err
	}
	if terminal {
		s.cache.Evict(playerID)
	}

	log.Printf("event=turn_resolved invocation=%s player=%s kind=%s outcome=%s day=%d health=%d",
		invocation, playerID, effect.Kind, outcome, sess.CurrentDay, sess.Health)

	return TurnReport{
		Session:        sess,
		Result:         result,
		Outcome:        outcome,
		OutcomeText:    outcomeText,
		NextScenario:   nextScenario,
		QuotaRemaining: decision.Remaining,
	}, nil
}

// GetSession returns the player's active session for status rendering.
func (s *Service) GetSession(ctx context.Context, playerID string) (session.Session, error) {
	if strings.TrimSpace(playerID) == "" {
		return session.Session{}, apperrors.New(apperrors.CodeEmptyPlayerID, "player id is required")
	}
	sess, err := s.cache.Get(ctx, playerID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return session.Session{}, apperrors.New(apperrors.CodeNoActiveSession, "no active game")
		}
		return session.Session{}, err
	}
	return sess, nil
}

// CheckQuota reports the player's remaining daily messages without
// consuming any.
func (s *Service) CheckQuota(ctx context.Context, playerID string) (ratelimit.Decision, error) {
	return s.limiter.Peek(ctx, playerID)
}

// HistorySummary aggregates the player's finished games.
func (s *Service) HistorySummary(ctx context.Context, playerID string) (storage.HistorySummary, error) {
	return s.store.Summary(ctx, playerID)
}

// Table exposes the static profile table for rendering.
func (s *Service) Table() profile.Table {
	return s.table
}

func quotaExceeded(decision ratelimit.Decision) error {
	return apperrors.WithMetadata(apperrors.CodeQuotaExceeded,
		"daily message limit reached",
		map[string]string{"next_reset": decision.NextReset.Format(time.RFC3339)})
}

func (s *Service) recordFinished(ctx context.Context, sess session.Session, outcome turn.Outcome) error {
	finalState, err := json.Marshal(sess)
	if err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "encode final state", err)
	}
	seq, err := s.store.AppendHistory(ctx, storage.HistoryRecord{
		PlayerID:       sess.PlayerID,
		DisplayName:    sess.DisplayName,
		Outcome:        string(outcome),
		SurvivedDays:   sess.CurrentDay,
		Difficulty:     sess.Difficulty,
		FinalLocation:  sess.Location,
		FinalStateJSON: finalState,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "record finished game", err)
	}
	log.Printf("event=game_finished player=%s outcome=%s days=%d game_seq=%d",
		sess.PlayerID, outcome, sess.CurrentDay, seq)
	return nil
}
