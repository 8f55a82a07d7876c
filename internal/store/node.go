package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marineworks/internal/domain"
)

type storeNode struct {
	Path      string `gorm:"column:path;primaryKey"`
	Data      string `gorm:"column:data;type:text"`
	UpdatedAt int64  `gorm:"column:updated_at"`
}

func (storeNode) TableName() string { return "store_nodes" }

type subscription struct {
	path string
	fn   Callback
	mu   sync.Mutex // serializes callbacks for this subscription
}

// NodeStore implements Adapter on a relational node table: one row per
// leaf node, keyed by full path. Change notification is in-process:
// every successful write re-reads the affected subscriptions' snapshots
// and pushes them to the registered callbacks.
type NodeStore struct {
	db     *gorm.DB
	tenant string
	log    *logrus.Logger

	mu   sync.Mutex
	subs map[int64]*subscription
	next int64
}

func NewNodeStore(db *gorm.DB, tenant string, log *logrus.Logger) (*NodeStore, error) {
	if tenant == "" {
		tenant = "default"
	}
	if err := db.AutoMigrate(&storeNode{}); err != nil {
		return nil, fmt.Errorf("migrate store nodes: %w", err)
	}
	return &NodeStore{
		db:     db,
		tenant: tenant,
		log:    log,
		subs:   make(map[int64]*subscription),
	}, nil
}

func (s *NodeStore) scope(path string) string {
	return "tenants/" + s.tenant + "/" + strings.Trim(path, "/")
}

func (s *NodeStore) Get(ctx context.Context, path string) (map[string]any, bool, error) {
	full := s.scope(path)
	var rows []storeNode
	err := s.db.WithContext(ctx).
		Where("path = ? OR path LIKE ?", full, full+"/%").
		Find(&rows).Error
	if err != nil {
		return nil, false, s.unavailable("get", path, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return assemble(full, rows), true, nil
}

func (s *NodeStore) Write(ctx context.Context, path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	full := s.scope(path)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("path = ? OR path LIKE ?", full, full+"/%").
			Delete(&storeNode{}).Error; err != nil {
			return err
		}
		return tx.Create(&storeNode{Path: full, Data: string(data), UpdatedAt: nowMillis()}).Error
	})
	if err != nil {
		return s.unavailable("write", path, err)
	}
	s.notify(full)
	return nil
}

func (s *NodeStore) Merge(ctx context.Context, path string, partial map[string]any) error {
	full := s.scope(path)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row storeNode
		fields := map[string]any{}
		err := tx.Where("path = ?", full).First(&row).Error
		switch {
		case err == nil:
			if err := json.Unmarshal([]byte(row.Data), &fields); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// merge into an absent node creates it
		default:
			return err
		}
		for k, v := range partial {
			fields[k] = v
		}
		data, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		node := storeNode{Path: full, Data: string(data), UpdatedAt: nowMillis()}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			UpdateAll: true,
		}).Create(&node).Error
	})
	if err != nil {
		return s.unavailable("merge", path, err)
	}
	s.notify(full)
	return nil
}

func (s *NodeStore) Remove(ctx context.Context, path string) error {
	full := s.scope(path)
	err := s.db.WithContext(ctx).
		Where("path = ? OR path LIKE ?", full, full+"/%").
		Delete(&storeNode{}).Error
	if err != nil {
		return s.unavailable("remove", path, err)
	}
	s.notify(full)
	return nil
}

// pushID generates append ids that sort lexicographically in creation
// order: a fixed-width millisecond prefix, a counter breaking ties
// within one millisecond, and random entropy against collisions across
// processes.
var (
	pushMu  sync.Mutex
	pushMs  int64
	pushSeq uint32
)

func pushID() string {
	pushMu.Lock()
	now := nowMillis()
	if now <= pushMs {
		pushSeq++
		now = pushMs
	} else {
		pushMs = now
		pushSeq = 0
	}
	seq := pushSeq
	pushMu.Unlock()
	return fmt.Sprintf("%012x%06x-%s", now, seq, uuid.NewString()[:8])
}

func (s *NodeStore) AppendUnique(ctx context.Context, path string, value any) (string, error) {
	id := pushID()
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	full := s.scope(path) + "/" + id
	err = s.db.WithContext(ctx).
		Create(&storeNode{Path: full, Data: string(data), UpdatedAt: nowMillis()}).Error
	if err != nil {
		return "", s.unavailable("append", path, err)
	}
	s.notify(full)
	return id, nil
}

func (s *NodeStore) Subscribe(path string, fn Callback) UnsubscribeFunc {
	sub := &subscription{path: s.scope(path), fn: fn}

	s.mu.Lock()
	s.next++
	id := s.next
	s.subs[id] = sub
	s.mu.Unlock()

	s.deliver(sub)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// notify pushes fresh snapshots to every subscription whose path is an
// ancestor or descendant of the written path.
func (s *NodeStore) notify(fullPath string) {
	s.mu.Lock()
	var affected []*subscription
	for _, sub := range s.subs {
		if covers(sub.path, fullPath) || covers(fullPath, sub.path) {
			affected = append(affected, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range affected {
		s.deliver(sub)
	}
}

func (s *NodeStore) deliver(sub *subscription) {
	var rows []storeNode
	err := s.db.Where("path = ? OR path LIKE ?", sub.path, sub.path+"/%").Find(&rows).Error
	if err != nil {
		s.log.WithError(err).WithField("path", sub.path).Warn("store: snapshot delivery failed")
		return
	}
	var snap map[string]any
	if len(rows) > 0 {
		snap = assemble(sub.path, rows)
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.fn(snap)
}

func (s *NodeStore) unavailable(op, path string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		s.log.WithFields(logrus.Fields{
			"op":   op,
			"path": path,
			"code": pgErr.Code,
		}).Error("store: postgres error")
	}
	return fmt.Errorf("store %s %s: %w: %w", op, path, domain.ErrStoreUnavailable, err)
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// covers reports whether node path b lies at or under path a.
func covers(a, b string) bool {
	return a == b || strings.HasPrefix(b, a+"/")
}

// assemble merges leaf rows into a nested snapshot rooted at base.
func assemble(base string, rows []storeNode) map[string]any {
	root := map[string]any{}
	for _, row := range rows {
		fields := map[string]any{}
		if err := json.Unmarshal([]byte(row.Data), &fields); err != nil {
			continue
		}
		if row.Path == base {
			for k, v := range fields {
				root[k] = v
			}
			continue
		}
		rel := strings.TrimPrefix(row.Path, base+"/")
		node := root
		segs := strings.Split(rel, "/")
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[seg] = child
			}
			node = child
		}
		leaf := segs[len(segs)-1]
		if existing, ok := node[leaf].(map[string]any); ok {
			for k, v := range fields {
				existing[k] = v
			}
		} else {
			node[leaf] = fields
		}
	}
	return root
}
