package workorder

import (
	"fmt"
	"strings"

	"marineworks/internal/domain"
)

// Guard preconditions live here, outside the engine, so every entry
// point (board, detail view, API) applies the same rules and new guarded
// states are one table row, not new branching.

type GuardReason string

const (
	GuardReportRequired GuardReason = "report-required"
	GuardNoteRequired   GuardReason = "note-required"
)

type GuardError struct {
	Target domain.WorkOrderStatus
	Reason GuardReason
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("transition to %s blocked: %s", e.Target, e.Reason)
}

func (e *GuardError) Unwrap() error { return domain.ErrGuardFailed }

type guardRule struct {
	reason GuardReason
	check  func(wo *domain.WorkOrder, note string) bool
}

var guardRules = map[domain.WorkOrderStatus]guardRule{
	domain.StatusDone: {
		reason: GuardReportRequired,
		check: func(wo *domain.WorkOrder, _ string) bool {
			return strings.TrimSpace(wo.ServiceReport) != ""
		},
	},
	domain.StatusAwaitingPart: {
		reason: GuardNoteRequired,
		check: func(_ *domain.WorkOrder, note string) bool {
			return strings.TrimSpace(note) != ""
		},
	},
	domain.StatusAwaitingBudgetApprov: {
		reason: GuardNoteRequired,
		check: func(_ *domain.WorkOrder, note string) bool {
			return strings.TrimSpace(note) != ""
		},
	},
}

// CheckGuards validates the business preconditions for moving wo to
// target. The engine itself never calls this: guards belong to callers.
func CheckGuards(wo *domain.WorkOrder, target domain.WorkOrderStatus, note string) error {
	rule, ok := guardRules[target]
	if !ok {
		return nil
	}
	if !rule.check(wo, note) {
		return &GuardError{Target: target, Reason: rule.reason}
	}
	return nil
}

// NoteRequired reports whether target demands a non-empty note, so the
// UI can capture one before committing the move.
func NoteRequired(target domain.WorkOrderStatus) bool {
	rule, ok := guardRules[target]
	return ok && rule.reason == GuardNoteRequired
}
