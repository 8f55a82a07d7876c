package workorder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"marineworks/internal/domain"
	"marineworks/internal/store"
)

// Service is the work order lifecycle engine: creation with its implicit
// initial audit event, guarded-by-callers status transitions, and the
// pass-through lifecycle operations of the aggregate.
type Service struct {
	workOrders WorkOrderRepository
	history    HistoryRepository
	log        *logrus.Logger
}

func NewService(workOrders WorkOrderRepository, history HistoryRepository, log *logrus.Logger) *Service {
	return &Service{workOrders: workOrders, history: history, log: log}
}

// Create persists a new work order and appends the implicit initial
// status event (empty From). A failed event append does not undo the
// creation; it is logged as a partial failure.
func (s *Service) Create(ctx context.Context, wo *domain.WorkOrder) (string, error) {
	if wo.Priority == "" {
		wo.Priority = domain.PriorityMedium
	}
	if wo.Status != "" && !wo.Status.Valid() {
		return "", fmt.Errorf("unknown status %q: %w", wo.Status, domain.ErrValidation)
	}
	id, err := s.workOrders.Create(ctx, wo)
	if err != nil {
		return "", err
	}
	_, err = s.history.Append(ctx, id, domain.StatusEvent{
		To:        wo.Status,
		ChangedAt: wo.CreatedAt,
		ChangedBy: wo.CreatedBy,
	})
	if err != nil {
		s.log.WithError(err).WithField("work_order", id).
			Error("initial status event append failed")
	}
	return id, nil
}

func (s *Service) Update(ctx context.Context, id string, partial map[string]any) error {
	return s.workOrders.Update(ctx, id, partial)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.workOrders.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.WorkOrder, error) {
	return s.workOrders.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.WorkOrder, error) {
	return s.workOrders.List(ctx)
}

// Transition validates and applies a status change as a pair of writes:
// the audit event first, then the status fields. The store has no
// cross-path transaction, so a failed second phase is retried with the
// same timestamp (the event already carries its own id, a replay never
// double-appends) and surfaces as a partial failure if it still fails.
//
// Guards are deliberately NOT enforced here — callers check them before
// invoking Transition so the engine stays reusable across entry points.
// Any state may move to any other state.
func (s *Service) Transition(ctx context.Context, id string, target domain.WorkOrderStatus, note, actor string) (*domain.StatusEvent, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", target, domain.ErrValidation)
	}
	wo, err := s.workOrders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status == target {
		return nil, fmt.Errorf("work order %s already %s: %w", id, target, domain.ErrNoOp)
	}

	now := time.Now().UnixMilli()
	ev := domain.StatusEvent{
		From:      wo.Status,
		To:        target,
		Note:      note,
		ChangedAt: now,
		ChangedBy: actor,
	}
	evID, err := s.history.Append(ctx, id, ev)
	if err != nil {
		return nil, fmt.Errorf("append status event: %w", err)
	}
	ev.ID = evID

	if err := s.workOrders.ApplyStatusChange(ctx, id, target, now); err != nil {
		// one idempotent replay before giving up
		if err = s.workOrders.ApplyStatusChange(ctx, id, target, now); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"work_order": id,
				"event":      evID,
				"to":         target,
			}).Error("status write failed after event append")
			return nil, fmt.Errorf("status write for %s (event %s): %w: %w",
				id, evID, domain.ErrPartialFailure, err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"work_order": id,
		"from":       ev.From,
		"to":         ev.To,
		"actor":      actor,
	}).Info("work order status changed")
	return &ev, nil
}

func (s *Service) History(ctx context.Context, id string, descending bool) ([]domain.StatusEvent, error) {
	return s.history.List(ctx, id, descending)
}

func (s *Service) SubscribeAll(fn func([]domain.WorkOrder)) store.UnsubscribeFunc {
	return s.workOrders.SubscribeAll(fn)
}

func (s *Service) SubscribeByID(id string, fn func(*domain.WorkOrder)) store.UnsubscribeFunc {
	return s.workOrders.SubscribeByID(id, fn)
}

func (s *Service) SubscribeHistory(id string, fn func([]domain.StatusEvent)) store.UnsubscribeFunc {
	return s.history.Subscribe(id, fn)
}
