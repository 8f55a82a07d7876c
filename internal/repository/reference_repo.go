package repository

import (
	"context"
	"fmt"
	"sort"

	"marineworks/internal/domain"
	"marineworks/internal/store"
)

// Reference repositories are thin keyed collections over the adapter:
// no lifecycle logic, no cascading deletes.

type ClientRepository struct {
	store store.Adapter
}

func NewClientRepository(st store.Adapter) *ClientRepository {
	return &ClientRepository{store: st}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (string, error) {
	now := nowMillis()
	c.CreatedAt = now
	c.UpdatedAt = now
	fields, err := encodeFields(c)
	if err != nil {
		return "", fmt.Errorf("encode client: %w", err)
	}
	id, err := r.store.AppendUnique(ctx, clientsPath, fields)
	if err != nil {
		return "", err
	}
	c.ID = id
	return id, nil
}

func (r *ClientRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	return mergeReference(ctx, r.store, clientsPath, id, partial)
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	return r.store.Remove(ctx, clientsPath+"/"+id)
}

func (r *ClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	snap, ok, err := r.store.Get(ctx, clientsPath)
	if err != nil || !ok {
		return nil, err
	}
	return decodeClientList(snap), nil
}

func (r *ClientRepository) Subscribe(fn func([]domain.Client)) store.UnsubscribeFunc {
	return r.store.Subscribe(clientsPath, func(snap map[string]any) {
		fn(decodeClientList(snap))
	})
}

type VesselRepository struct {
	store store.Adapter
}

func NewVesselRepository(st store.Adapter) *VesselRepository {
	return &VesselRepository{store: st}
}

func (r *VesselRepository) Create(ctx context.Context, v *domain.Vessel) (string, error) {
	now := nowMillis()
	v.CreatedAt = now
	v.UpdatedAt = now
	fields, err := encodeFields(v)
	if err != nil {
		return "", fmt.Errorf("encode vessel: %w", err)
	}
	id, err := r.store.AppendUnique(ctx, vesselsPath, fields)
	if err != nil {
		return "", err
	}
	v.ID = id
	return id, nil
}

func (r *VesselRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	return mergeReference(ctx, r.store, vesselsPath, id, partial)
}

func (r *VesselRepository) Delete(ctx context.Context, id string) error {
	return r.store.Remove(ctx, vesselsPath+"/"+id)
}

func (r *VesselRepository) List(ctx context.Context) ([]domain.Vessel, error) {
	snap, ok, err := r.store.Get(ctx, vesselsPath)
	if err != nil || !ok {
		return nil, err
	}
	return decodeVesselList(snap), nil
}

func (r *VesselRepository) Subscribe(fn func([]domain.Vessel)) store.UnsubscribeFunc {
	return r.store.Subscribe(vesselsPath, func(snap map[string]any) {
		fn(decodeVesselList(snap))
	})
}

type EquipmentRepository struct {
	store store.Adapter
}

func NewEquipmentRepository(st store.Adapter) *EquipmentRepository {
	return &EquipmentRepository{store: st}
}

func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) (string, error) {
	now := nowMillis()
	e.CreatedAt = now
	e.UpdatedAt = now
	fields, err := encodeFields(e)
	if err != nil {
		return "", fmt.Errorf("encode equipment: %w", err)
	}
	id, err := r.store.AppendUnique(ctx, equipmentPath, fields)
	if err != nil {
		return "", err
	}
	e.ID = id
	return id, nil
}

func (r *EquipmentRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	return mergeReference(ctx, r.store, equipmentPath, id, partial)
}

func (r *EquipmentRepository) Delete(ctx context.Context, id string) error {
	return r.store.Remove(ctx, equipmentPath+"/"+id)
}

func (r *EquipmentRepository) List(ctx context.Context) ([]domain.Equipment, error) {
	snap, ok, err := r.store.Get(ctx, equipmentPath)
	if err != nil || !ok {
		return nil, err
	}
	return decodeEquipmentList(snap), nil
}

func (r *EquipmentRepository) Subscribe(fn func([]domain.Equipment)) store.UnsubscribeFunc {
	return r.store.Subscribe(equipmentPath, func(snap map[string]any) {
		fn(decodeEquipmentList(snap))
	})
}

func mergeReference(ctx context.Context, st store.Adapter, base, id string, partial map[string]any) error {
	if partial == nil {
		partial = map[string]any{}
	}
	delete(partial, "id")
	delete(partial, "createdAt")
	partial["updatedAt"] = nowMillis()
	return st.Merge(ctx, base+"/"+id, partial)
}

func decodeClientList(snap map[string]any) []domain.Client {
	out := make([]domain.Client, 0, len(snap))
	for id, v := range snap {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		var c domain.Client
		if err := decodeEntity(fields, id, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out
}

func decodeVesselList(snap map[string]any) []domain.Vessel {
	out := make([]domain.Vessel, 0, len(snap))
	for id, v := range snap {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		var vs domain.Vessel
		if err := decodeEntity(fields, id, &vs); err != nil {
			continue
		}
		out = append(out, vs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out
}

func decodeEquipmentList(snap map[string]any) []domain.Equipment {
	out := make([]domain.Equipment, 0, len(snap))
	for id, v := range snap {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		var e domain.Equipment
		if err := decodeEntity(fields, id, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out
}
