// Package memory provides an in-process store.Client. It backs local
// development and the repository tests, which substitute it for the real
// store through the same Get/Put/Query contract.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/openlms/lms-service/internal/store"
)

// Store is an in-memory implementation of store.Client.
type Store struct {
	mu       sync.RWMutex
	entities map[string]*store.Entity // keyed by encoded key path
	nextID   int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		entities: make(map[string]*store.Entity),
		nextID:   1,
	}
}

// Get fetches the entity for a complete key.
func (s *Store) Get(ctx context.Context, key *store.Key) (*store.Entity, error) {
	if key == nil || key.Incomplete() {
		return nil, fmt.Errorf("memory: get requires a complete key")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[key.Encode()]
	if !ok {
		return nil, store.ErrNoSuchEntity
	}
	return copyEntity(entity), nil
}

// Put creates or fully replaces the entity at its key, assigning an ID to an
// incomplete key. The stored entity is a deep copy, so later mutations of the
// caller's maps do not leak into the store.
func (s *Store) Put(ctx context.Context, entity *store.Entity) (*store.Key, error) {
	if entity == nil || entity.Key == nil {
		return nil, fmt.Errorf("memory: put requires an entity with a key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := entity.Key
	if key.Incomplete() {
		key = store.IDKey(key.Kind, s.nextID, key.Parent)
		s.nextID++
	}

	stored := copyEntity(entity)
	stored.Key = key
	s.entities[key.Encode()] = stored
	return key, nil
}

// Query returns all entities matching the query. Without an Order the
// results come back in map iteration order, which is deliberately unstable.
func (s *Store) Query(ctx context.Context, q store.Query) ([]*store.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*store.Entity
	for _, entity := range s.entities {
		if entity.Key.Kind != q.Kind {
			continue
		}
		if q.Ancestor != nil && !hasAncestor(entity.Key, q.Ancestor) {
			continue
		}
		if !matchesFilters(entity, q.Filters) {
			continue
		}
		results = append(results, copyEntity(entity))
	}

	if q.Order != "" {
		sortEntities(results, q.Order)
	}
	return results, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// hasAncestor walks the parent chain looking for the ancestor key.
func hasAncestor(key, ancestor *store.Key) bool {
	for cur := key.Parent; cur != nil; cur = cur.Parent {
		if cur.Equal(ancestor) {
			return true
		}
	}
	return false
}

func matchesFilters(entity *store.Entity, filters []store.Filter) bool {
	for _, f := range filters {
		value, ok := entity.Properties[f.Property]
		if !ok || value != f.Value {
			return false
		}
	}
	return true
}

// sortEntities orders results by a single property, '-' prefix descending.
// String properties compare lexicographically and case-sensitively.
func sortEntities(entities []*store.Entity, order string) {
	property := order
	descending := false
	if rest, ok := strings.CutPrefix(order, "-"); ok {
		property = rest
		descending = true
	}

	sort.SliceStable(entities, func(i, j int) bool {
		less := compareValues(entities[i].Properties[property], entities[j].Properties[property])
		if descending {
			return !less && !equalValues(entities[i].Properties[property], entities[j].Properties[property])
		}
		return less
	})
}

func compareValues(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func equalValues(a, b any) bool {
	return !compareValues(a, b) && !compareValues(b, a)
}

// copyEntity deep-copies the key's property map and list values.
func copyEntity(e *store.Entity) *store.Entity {
	props := make(map[string]any, len(e.Properties))
	for name, value := range e.Properties {
		if list, ok := value.([]any); ok {
			value = append([]any(nil), list...)
		}
		props[name] = value
	}
	return &store.Entity{Key: e.Key, Properties: props}
}
