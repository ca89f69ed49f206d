package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/store"
)

// GoalService manages savings goals and their append-only deposit
// ledger. The ledger engine never touches goals.
type GoalService struct {
	gw store.Gateway
}

func NewGoalService(gw store.Gateway) *GoalService {
	return &GoalService{gw: gw}
}

// List returns the owner's goals; empty on gateway failure.
func (s *GoalService) List(ctx context.Context, ownerID string) []core.Goal {
	if err := requireOwner(ownerID); err != nil {
		return nil
	}
	recs, err := s.gw.QueryByOwner(ctx, store.CollGoals, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list goals, returning empty",
			"owner_id", ownerID, "error", err)
		return nil
	}
	goals := make([]core.Goal, 0, len(recs))
	for _, rec := range recs {
		goals = append(goals, store.DecodeGoal(rec))
	}
	sort.Slice(goals, func(i, j int) bool {
		if goals[i].Name == goals[j].Name {
			return goals[i].ID < goals[j].ID
		}
		return goals[i].Name < goals[j].Name
	})
	return goals
}

// Add persists a new goal with an empty history.
func (s *GoalService) Add(ctx context.Context, ownerID string, goal core.Goal) (core.Goal, error) {
	if err := requireOwner(ownerID); err != nil {
		return core.Goal{}, err
	}
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	goal.OwnerID = ownerID
	if err := goal.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.gw.Put(ctx, store.CollGoals, goal.ID, store.EncodeGoal(goal)); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal created",
		"goal_id", goal.ID,
		"owner_id", ownerID,
		"target_cents", goal.TargetAmount.Cents)
	return goal, nil
}

// Deposit appends a history entry and bumps the current amount in one
// document write, keeping the invariant currentAmount == sum(history).
func (s *GoalService) Deposit(ctx context.Context, ownerID, goalID string, amount core.Money, now time.Time) (core.Goal, error) {
	if err := requireOwner(ownerID); err != nil {
		return core.Goal{}, err
	}
	if err := amount.Validate(); err != nil {
		return core.Goal{}, err
	}

	rec, err := loadOwned(ctx, s.gw, store.CollGoals, goalID, ownerID)
	if err != nil {
		return core.Goal{}, err
	}
	goal := store.DecodeGoal(rec)

	goal.History = append(goal.History, core.GoalDeposit{
		ID:     uuid.NewString(),
		Date:   now,
		Amount: amount,
	})
	goal.CurrentAmount = goal.CurrentAmount.Add(amount)

	if err := s.gw.Put(ctx, store.CollGoals, goal.ID, store.EncodeGoal(goal)); err != nil {
		return core.Goal{}, fmt.Errorf("commit goal deposit: %w", err)
	}
	slog.InfoContext(ctx, "Goal deposit recorded",
		"goal_id", goal.ID,
		"owner_id", ownerID,
		"amount_cents", amount.Cents,
		"current_cents", goal.CurrentAmount.Cents)
	return goal, nil
}
