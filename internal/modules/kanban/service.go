package kanban

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marineworks/internal/domain"
	"marineworks/internal/modules/workorder"
)

// DefaultMoveNote is attached to unguarded board moves.
const DefaultMoveNote = "moved via board"

// pendingMoveTTL bounds how long a note prompt can stay open before the
// suspended move is discarded.
const pendingMoveTTL = 15 * time.Minute

type TransitionEngine interface {
	Get(ctx context.Context, id string) (*domain.WorkOrder, error)
	List(ctx context.Context) ([]domain.WorkOrder, error)
	Transition(ctx context.Context, id string, target domain.WorkOrderStatus, note, actor string) (*domain.StatusEvent, error)
}

type ClientLister interface {
	List(ctx context.Context) ([]domain.Client, error)
}

type VesselLister interface {
	List(ctx context.Context) ([]domain.Vessel, error)
}

type EquipmentLister interface {
	List(ctx context.Context) ([]domain.Equipment, error)
}

type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeNoOp      Outcome = "noop"
	OutcomeNeedsNote Outcome = "needs_note"
)

// PendingMove is a drag suspended on note capture. It holds no partial
// state in the store: until confirmed, nothing is written.
type PendingMove struct {
	Token       string                 `json:"token"`
	WorkOrderID string                 `json:"workOrderId"`
	From        domain.WorkOrderStatus `json:"from"`
	To          domain.WorkOrderStatus `json:"to"`
	CreatedAt   time.Time              `json:"createdAt"`
}

type MoveResult struct {
	Outcome Outcome             `json:"outcome"`
	Pending *PendingMove        `json:"pending,omitempty"`
	Event   *domain.StatusEvent `json:"event,omitempty"`
}

// Service turns board gestures into validated transitions. Guards run
// here, before the engine is ever invoked.
type Service struct {
	engine    TransitionEngine
	clients   ClientLister
	vessels   VesselLister
	equipment EquipmentLister
	log       *logrus.Logger

	mu      sync.Mutex
	pending map[string]*PendingMove
}

func NewService(engine TransitionEngine, clients ClientLister, vessels VesselLister, equipment EquipmentLister, log *logrus.Logger) *Service {
	return &Service{
		engine:    engine,
		clients:   clients,
		vessels:   vessels,
		equipment: equipment,
		log:       log,
		pending:   make(map[string]*PendingMove),
	}
}

// Move interprets a drop of a work order onto a target column.
// Same-status drops are no-ops. A move to DONE without a service report
// is rejected before reaching the engine. Note-required targets suspend
// the move behind a token until ConfirmMove supplies the note. Anything
// else commits immediately with the default note.
func (s *Service) Move(ctx context.Context, workOrderID string, target domain.WorkOrderStatus, actor string) (*MoveResult, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", target, domain.ErrValidation)
	}
	wo, err := s.engine.Get(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo.Status == target {
		return &MoveResult{Outcome: OutcomeNoOp}, nil
	}

	if workorder.NoteRequired(target) {
		move := &PendingMove{
			Token:       uuid.NewString(),
			WorkOrderID: workOrderID,
			From:        wo.Status,
			To:          target,
			CreatedAt:   time.Now(),
		}
		s.mu.Lock()
		s.expireLocked()
		s.pending[move.Token] = move
		s.mu.Unlock()
		return &MoveResult{Outcome: OutcomeNeedsNote, Pending: move}, nil
	}

	if err := workorder.CheckGuards(wo, target, ""); err != nil {
		return nil, err
	}

	ev, err := s.engine.Transition(ctx, workOrderID, target, DefaultMoveNote, actor)
	if err != nil {
		return nil, err
	}
	return &MoveResult{Outcome: OutcomeCommitted, Event: ev}, nil
}

// ConfirmMove commits a suspended move with the captured note. An empty
// note keeps the move suspended and performs no write. The token is
// consumed under the lock, so two racing confirms produce exactly one
// transition; it is put back if the engine fails, keeping the move
// retryable.
func (s *Service) ConfirmMove(ctx context.Context, token, note, actor string) (*MoveResult, error) {
	s.mu.Lock()
	s.expireLocked()
	move, ok := s.pending[token]
	if ok && strings.TrimSpace(note) != "" {
		delete(s.pending, token)
	}
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("pending move %s: %w", token, domain.ErrNotFound)
	}
	if strings.TrimSpace(note) == "" {
		return nil, &workorder.GuardError{Target: move.To, Reason: workorder.GuardNoteRequired}
	}

	ev, err := s.engine.Transition(ctx, move.WorkOrderID, move.To, note, actor)
	if err != nil {
		s.mu.Lock()
		s.pending[token] = move
		s.mu.Unlock()
		return nil, err
	}
	return &MoveResult{Outcome: OutcomeCommitted, Event: ev}, nil
}

// CancelMove discards a suspended move. No write ever happened for it.
// Canceling an unknown or already-expired token is fine.
func (s *Service) CancelMove(token string) {
	s.mu.Lock()
	delete(s.pending, token)
	s.mu.Unlock()
}

func (s *Service) expireLocked() {
	cutoff := time.Now().Add(-pendingMoveTTL)
	for token, move := range s.pending {
		if move.CreatedAt.Before(cutoff) {
			delete(s.pending, token)
		}
	}
}
