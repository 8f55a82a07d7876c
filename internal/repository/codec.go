package repository

import (
	"encoding/json"
	"time"
)

// Store paths, relative to the tenant namespace.
const (
	clientsPath    = "clients"
	vesselsPath    = "vessels"
	equipmentPath  = "equipment"
	workOrdersPath = "workOrders"
	historyPath    = "workOrdersStatusHistory"
)

func nowMillis() int64 { return time.Now().UnixMilli() }

// encodeFields flattens an entity into the store's field map. The id is
// dropped: it is the node key, not a stored field.
func encodeFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	delete(fields, "id")
	return fields, nil
}

// decodeEntity rebuilds an entity from a node snapshot, re-attaching the
// node key as the id.
func decodeEntity(snap map[string]any, id string, out any) error {
	snap["id"] = id
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
