package store

import "context"

// Callback receives the full decoded current snapshot of the subscribed
// path on every change. For a branch path the snapshot is a map keyed by
// child id; for a missing path it is nil. Snapshots between two rapid
// writes may be coalesced — subscribers only ever see the latest value.
type Callback func(snapshot map[string]any)

// UnsubscribeFunc stops further callbacks. Safe to call more than once.
type UnsubscribeFunc func()

// Adapter abstracts the hierarchical realtime key-value store. Paths are
// slash-separated strings; the adapter scopes every path under its tenant
// namespace. All writes are single-path: there is no transaction spanning
// two paths, and no ordering guarantee across paths.
type Adapter interface {
	// Get reads the current snapshot at path. ok is false when nothing
	// exists at or under the path.
	Get(ctx context.Context, path string) (snapshot map[string]any, ok bool, err error)

	// Write replaces the entire subtree at path with value.
	Write(ctx context.Context, path string, value any) error

	// Merge applies a partial update to the node at path, last write
	// wins per field. Creates the node when absent.
	Merge(ctx context.Context, path string, partial map[string]any) error

	// Remove deletes the node at path and everything under it.
	// Removing an absent path is not an error.
	Remove(ctx context.Context, path string) error

	// AppendUnique stores value under a freshly generated child id of
	// path and returns that id. The id is collision-resistant and never
	// reused, so a retried append is a new event, not an overwrite.
	AppendUnique(ctx context.Context, path string, value any) (string, error)

	// Subscribe registers fn for path. fn fires once with the current
	// snapshot, then again after every write that touches the path or
	// any of its descendants or ancestors.
	Subscribe(path string, fn Callback) UnsubscribeFunc
}
