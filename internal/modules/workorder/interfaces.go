package workorder

import (
	"context"

	"marineworks/internal/domain"
	"marineworks/internal/store"
)

type WorkOrderRepository interface {
	Create(ctx context.Context, wo *domain.WorkOrder) (string, error)
	Update(ctx context.Context, id string, partial map[string]any) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.WorkOrder, error)
	List(ctx context.Context) ([]domain.WorkOrder, error)
	ApplyStatusChange(ctx context.Context, id string, to domain.WorkOrderStatus, at int64) error
	SubscribeAll(fn func([]domain.WorkOrder)) store.UnsubscribeFunc
	SubscribeByID(id string, fn func(*domain.WorkOrder)) store.UnsubscribeFunc
}

type HistoryRepository interface {
	Append(ctx context.Context, workOrderID string, ev domain.StatusEvent) (string, error)
	List(ctx context.Context, workOrderID string, descending bool) ([]domain.StatusEvent, error)
	Subscribe(workOrderID string, fn func([]domain.StatusEvent)) store.UnsubscribeFunc
}
