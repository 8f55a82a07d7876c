package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"marineworks/internal/domain"
	"marineworks/internal/store"
)

// WorkOrderRepository owns the work order aggregate. It is the sole
// writer of status, statusUpdatedAt, updatedAt and the photo
// sub-collection; status itself only changes through the transition
// engine, which calls ApplyStatusChange after appending the audit event.
type WorkOrderRepository struct {
	store store.Adapter
	log   *logrus.Logger
}

func NewWorkOrderRepository(st store.Adapter, log *logrus.Logger) *WorkOrderRepository {
	return &WorkOrderRepository{store: st, log: log}
}

func woPath(id string) string { return workOrdersPath + "/" + id }

// Create persists a new work order. The human-readable code is assigned
// "PENDING"; a durable sequential code generator does not exist yet.
func (r *WorkOrderRepository) Create(ctx context.Context, wo *domain.WorkOrder) (string, error) {
	now := nowMillis()
	wo.Code = "PENDING"
	wo.CreatedAt = now
	wo.UpdatedAt = now
	wo.StatusUpdatedAt = now
	if wo.Status == "" {
		wo.Status = domain.StatusUnderReview
	}

	fields, err := encodeFields(wo)
	if err != nil {
		return "", fmt.Errorf("encode work order: %w", err)
	}
	id, err := r.store.AppendUnique(ctx, workOrdersPath, fields)
	if err != nil {
		return "", err
	}
	wo.ID = id
	return id, nil
}

// Update merges partial fields into the aggregate and stamps updatedAt.
// Setting status through this path is rejected: every status change must
// leave an audit event, so it only happens via the transition engine.
func (r *WorkOrderRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	if partial == nil {
		// A JSON null body decodes to a nil map; treat it as "touch".
		partial = map[string]any{}
	}
	if _, ok := partial["status"]; ok {
		return fmt.Errorf("update %s: status is engine-owned: %w", id, domain.ErrInvalidTransition)
	}
	if _, _, err := r.requireExists(ctx, id); err != nil {
		return err
	}
	delete(partial, "id")
	delete(partial, "code")
	delete(partial, "createdAt")
	delete(partial, "statusUpdatedAt")
	delete(partial, "photos")
	partial["updatedAt"] = nowMillis()
	return r.store.Merge(ctx, woPath(id), partial)
}

// Delete removes the aggregate and its entire history stream. The two
// removes are separate store writes; a failed second phase leaves
// orphaned history and is reported as a partial failure so the caller
// can retry (both removes are idempotent).
func (r *WorkOrderRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Remove(ctx, woPath(id)); err != nil {
		return err
	}
	if err := r.store.Remove(ctx, historyPath+"/"+id); err != nil {
		r.log.WithError(err).WithField("work_order", id).
			Error("work order deleted but history removal failed, retry needed")
		return fmt.Errorf("history removal for %s: %w: %w", id, domain.ErrPartialFailure, err)
	}
	return nil
}

func (r *WorkOrderRepository) Get(ctx context.Context, id string) (*domain.WorkOrder, error) {
	snap, _, err := r.requireExists(ctx, id)
	if err != nil {
		return nil, err
	}
	var wo domain.WorkOrder
	if err := decodeEntity(snap, id, &wo); err != nil {
		return nil, fmt.Errorf("decode work order %s: %w", id, err)
	}
	return &wo, nil
}

// List returns all work orders, most recently touched first.
func (r *WorkOrderRepository) List(ctx context.Context) ([]domain.WorkOrder, error) {
	snap, ok, err := r.store.Get(ctx, workOrdersPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return decodeWorkOrderList(snap), nil
}

// ApplyStatusChange writes the status fields of a committed transition.
// Callers must have appended the matching audit event first.
func (r *WorkOrderRepository) ApplyStatusChange(ctx context.Context, id string, to domain.WorkOrderStatus, at int64) error {
	return r.store.Merge(ctx, woPath(id), map[string]any{
		"status":          to,
		"statusUpdatedAt": at,
		"updatedAt":       at,
	})
}

// PutPhoto writes photo metadata under the aggregate's photo
// sub-collection. The photo id is storage-derived, so a retried put
// overwrites the same node instead of duplicating it.
func (r *WorkOrderRepository) PutPhoto(ctx context.Context, id string, p domain.Photo) error {
	if _, _, err := r.requireExists(ctx, id); err != nil {
		return err
	}
	fields, err := encodeFields(p)
	if err != nil {
		return fmt.Errorf("encode photo: %w", err)
	}
	fields["id"] = p.ID
	if err := r.store.Write(ctx, woPath(id)+"/photos/"+p.ID, fields); err != nil {
		return err
	}
	return r.store.Merge(ctx, woPath(id), map[string]any{"updatedAt": nowMillis()})
}

// RemovePhoto deletes photo metadata. Idempotent.
func (r *WorkOrderRepository) RemovePhoto(ctx context.Context, id, photoID string) error {
	if err := r.store.Remove(ctx, woPath(id)+"/photos/"+photoID); err != nil {
		return err
	}
	return r.store.Merge(ctx, woPath(id), map[string]any{"updatedAt": nowMillis()})
}

// SubscribeAll streams the full work order list, sorted by updatedAt
// descending, on every change.
func (r *WorkOrderRepository) SubscribeAll(fn func([]domain.WorkOrder)) store.UnsubscribeFunc {
	return r.store.Subscribe(workOrdersPath, func(snap map[string]any) {
		fn(decodeWorkOrderList(snap))
	})
}

// SubscribeByID streams one aggregate; fn receives nil once it is gone.
func (r *WorkOrderRepository) SubscribeByID(id string, fn func(*domain.WorkOrder)) store.UnsubscribeFunc {
	return r.store.Subscribe(woPath(id), func(snap map[string]any) {
		if snap == nil {
			fn(nil)
			return
		}
		var wo domain.WorkOrder
		if err := decodeEntity(snap, id, &wo); err != nil {
			r.log.WithError(err).WithField("work_order", id).Warn("bad work order snapshot")
			return
		}
		fn(&wo)
	})
}

func (r *WorkOrderRepository) requireExists(ctx context.Context, id string) (map[string]any, bool, error) {
	snap, ok, err := r.store.Get(ctx, woPath(id))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, fmt.Errorf("work order %s: %w", id, domain.ErrNotFound)
	}
	return snap, true, nil
}

func decodeWorkOrderList(snap map[string]any) []domain.WorkOrder {
	out := make([]domain.WorkOrder, 0, len(snap))
	for id, v := range snap {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		var wo domain.WorkOrder
		if err := decodeEntity(fields, id, &wo); err != nil {
			continue
		}
		out = append(out, wo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out
}
