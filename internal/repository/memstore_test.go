package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"marineworks/internal/store"
)

// memStore is a test double for the node store: same path semantics and
// change notification, held in a plain map.
type memStore struct {
	mu      sync.Mutex
	nodes   map[string]map[string]any
	subs    map[int]memSub
	nextSub int
	nextID  int

	removeErr func(path string) error
	mergeErr  func(path string) error
}

type memSub struct {
	path string
	fn   store.Callback
}

func newMemStore() *memStore {
	return &memStore{
		nodes: map[string]map[string]any{},
		subs:  map[int]memSub{},
	}
}

func (m *memStore) Get(_ context.Context, path string) (map[string]any, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshotLocked(path)
	return snap, snap != nil, nil
}

func (m *memStore) Write(_ context.Context, path string, value any) error {
	fields, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("memStore only writes field maps, got %T", value)
	}
	m.mu.Lock()
	for p := range m.nodes {
		if covered(path, p) {
			delete(m.nodes, p)
		}
	}
	m.nodes[path] = cloneFields(fields)
	m.mu.Unlock()
	m.notify(path)
	return nil
}

func (m *memStore) Merge(_ context.Context, path string, partial map[string]any) error {
	if m.mergeErr != nil {
		if err := m.mergeErr(path); err != nil {
			return err
		}
	}
	m.mu.Lock()
	node := m.nodes[path]
	if node == nil {
		node = map[string]any{}
		m.nodes[path] = node
	}
	for k, v := range partial {
		node[k] = v
	}
	m.mu.Unlock()
	m.notify(path)
	return nil
}

func (m *memStore) Remove(_ context.Context, path string) error {
	if m.removeErr != nil {
		if err := m.removeErr(path); err != nil {
			return err
		}
	}
	m.mu.Lock()
	for p := range m.nodes {
		if covered(path, p) {
			delete(m.nodes, p)
		}
	}
	m.mu.Unlock()
	m.notify(path)
	return nil
}

func (m *memStore) AppendUnique(_ context.Context, path string, value any) (string, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return "", fmt.Errorf("memStore only writes field maps, got %T", value)
	}
	m.mu.Lock()
	m.nextID++
	id := fmt.Sprintf("id%03d", m.nextID)
	m.nodes[path+"/"+id] = cloneFields(fields)
	m.mu.Unlock()
	m.notify(path + "/" + id)
	return id, nil
}

func (m *memStore) Subscribe(path string, fn store.Callback) store.UnsubscribeFunc {
	m.mu.Lock()
	m.nextSub++
	id := m.nextSub
	m.subs[id] = memSub{path: path, fn: fn}
	snap := m.snapshotLocked(path)
	m.mu.Unlock()

	fn(snap)
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *memStore) notify(path string) {
	m.mu.Lock()
	type delivery struct {
		fn   store.Callback
		snap map[string]any
	}
	var pending []delivery
	for _, sub := range m.subs {
		if covered(sub.path, path) || covered(path, sub.path) {
			pending = append(pending, delivery{fn: sub.fn, snap: m.snapshotLocked(sub.path)})
		}
	}
	m.mu.Unlock()
	for _, d := range pending {
		d.fn(d.snap)
	}
}

func (m *memStore) snapshotLocked(path string) map[string]any {
	var root map[string]any
	for p, fields := range m.nodes {
		if !covered(path, p) {
			continue
		}
		if root == nil {
			root = map[string]any{}
		}
		if p == path {
			for k, v := range fields {
				root[k] = v
			}
			continue
		}
		segs := strings.Split(strings.TrimPrefix(p, path+"/"), "/")
		node := root
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[seg] = child
			}
			node = child
		}
		node[segs[len(segs)-1]] = cloneFields(fields)
	}
	return root
}

func covered(base, p string) bool {
	return p == base || strings.HasPrefix(p, base+"/")
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
