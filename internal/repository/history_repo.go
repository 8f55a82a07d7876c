package repository

import (
	"context"
	"fmt"
	"sort"

	"marineworks/internal/domain"
	"marineworks/internal/store"
)

// HistoryRepository is the append-only audit stream of status changes.
// Nothing here mutates or removes a single event; the whole stream only
// disappears together with its work order.
type HistoryRepository struct {
	store store.Adapter
}

func NewHistoryRepository(st store.Adapter) *HistoryRepository {
	return &HistoryRepository{store: st}
}

func historyStreamPath(workOrderID string) string {
	return historyPath + "/" + workOrderID
}

// Append stores one immutable event and returns its generated id. The id
// is the replay key of the two-phase transition write: a retried status
// merge never re-appends.
func (r *HistoryRepository) Append(ctx context.Context, workOrderID string, ev domain.StatusEvent) (string, error) {
	fields, err := encodeFields(ev)
	if err != nil {
		return "", fmt.Errorf("encode status event: %w", err)
	}
	return r.store.AppendUnique(ctx, historyStreamPath(workOrderID), fields)
}

// List returns every event for the work order. Ascending changedAt for
// timeline rendering; descending for raw audit listing.
func (r *HistoryRepository) List(ctx context.Context, workOrderID string, descending bool) ([]domain.StatusEvent, error) {
	snap, ok, err := r.store.Get(ctx, historyStreamPath(workOrderID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	events := decodeEventList(snap)
	if descending {
		sort.Slice(events, func(i, j int) bool {
			if events[i].ChangedAt != events[j].ChangedAt {
				return events[i].ChangedAt > events[j].ChangedAt
			}
			return events[i].ID > events[j].ID
		})
	}
	return events, nil
}

// Subscribe streams the complete current event set on every change,
// oldest first.
func (r *HistoryRepository) Subscribe(workOrderID string, fn func([]domain.StatusEvent)) store.UnsubscribeFunc {
	return r.store.Subscribe(historyStreamPath(workOrderID), func(snap map[string]any) {
		fn(decodeEventList(snap))
	})
}

func decodeEventList(snap map[string]any) []domain.StatusEvent {
	out := make([]domain.StatusEvent, 0, len(snap))
	for id, v := range snap {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		var ev domain.StatusEvent
		if err := decodeEntity(fields, id, &ev); err != nil {
			continue
		}
		out = append(out, ev)
	}
	// Append ids are time-ordered, so the id breaks changedAt ties in
	// true append order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChangedAt != out[j].ChangedAt {
			return out[i].ChangedAt < out[j].ChangedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
