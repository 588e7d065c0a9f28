// Package store defines the hierarchical key-value document store boundary
// used by the repositories. Entities are loosely-typed property maps
// addressed by keys that may embed a parent key, and a Client exposes the
// three primitives the data layer needs: Get, Put and Query.
//
// Property values must be JSON-safe (string, int64, float64, bool, or []any
// of those). References to other entities are stored as encoded key strings.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoSuchEntity is returned by Get when no entity exists for the key.
var ErrNoSuchEntity = errors.New("store: no such entity")

// Key identifies an entity of a given kind. Exactly one of Name or ID is set
// on a complete key: Name for caller-assigned string identifiers, ID for
// store-assigned numeric ones. A key with neither is incomplete and is
// completed by Put. Parent scopes the key under another entity; a child key
// is only meaningful relative to its parent.
type Key struct {
	Kind   string
	Name   string
	ID     int64
	Parent *Key
}

// NameKey builds a complete key with a caller-assigned string identifier.
func NameKey(kind, name string, parent *Key) *Key {
	return &Key{Kind: kind, Name: name, Parent: parent}
}

// IDKey builds a complete key with a numeric identifier.
func IDKey(kind string, id int64, parent *Key) *Key {
	return &Key{Kind: kind, ID: id, Parent: parent}
}

// IncompleteKey builds a key whose numeric identifier is assigned by Put.
func IncompleteKey(kind string, parent *Key) *Key {
	return &Key{Kind: kind, Parent: parent}
}

// Incomplete reports whether the key still needs a store-assigned identifier.
func (k *Key) Incomplete() bool {
	return k.Name == "" && k.ID == 0
}

// Equal reports whether two keys address the same entity, parents included.
func (k *Key) Equal(o *Key) bool {
	for k != nil && o != nil {
		if k.Kind != o.Kind || k.Name != o.Name || k.ID != o.ID {
			return false
		}
		k, o = k.Parent, o.Parent
	}
	return k == nil && o == nil
}

// Encode renders the full key path as a flat string, root first. Each path
// element is "Kind,name" or "Kind,#id"; elements are joined with "/".
// The encoding is stable and is what gets persisted for key references.
func (k *Key) Encode() string {
	var elems []string
	for cur := k; cur != nil; cur = cur.Parent {
		var e string
		if cur.Name != "" {
			e = cur.Kind + "," + cur.Name
		} else {
			e = cur.Kind + ",#" + strconv.FormatInt(cur.ID, 10)
		}
		elems = append(elems, e)
	}
	// Reverse so the root element comes first.
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
	return strings.Join(elems, "/")
}

// DecodeKey parses a string produced by Encode back into a key.
func DecodeKey(s string) (*Key, error) {
	if s == "" {
		return nil, fmt.Errorf("store: empty key encoding")
	}
	var key *Key
	for _, elem := range strings.Split(s, "/") {
		kind, ident, ok := strings.Cut(elem, ",")
		if !ok || kind == "" || ident == "" {
			return nil, fmt.Errorf("store: malformed key element %q", elem)
		}
		if rest, numeric := strings.CutPrefix(ident, "#"); numeric {
			id, err := strconv.ParseInt(rest, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("store: malformed key id in %q: %w", elem, err)
			}
			key = IDKey(kind, id, key)
		} else {
			key = NameKey(kind, ident, key)
		}
	}
	return key, nil
}

// Entity is a store record: a key plus an open property map.
type Entity struct {
	Key        *Key
	Properties map[string]any
}

// NewEntity creates an entity with an empty property map.
func NewEntity(key *Key) *Entity {
	return &Entity{Key: key, Properties: map[string]any{}}
}

// Filter is an equality constraint on a single property.
type Filter struct {
	Property string
	Value    any
}

// Query describes a fixed-shape query: one kind, optional ancestor scoping,
// optional equality filters and an optional single-property ordering.
// Order is a property name; a leading '-' selects descending order. Results
// without an Order are returned in backend-dependent order.
type Query struct {
	Kind     string
	Ancestor *Key
	Filters  []Filter
	Order    string
}

// Client is the store handle injected into the repositories. Implementations
// must be safe for concurrent use; the primitives themselves are individually
// atomic but nothing coordinates read-modify-write sequences across calls.
type Client interface {
	// Get fetches the entity for a complete key. Returns ErrNoSuchEntity
	// when the key is absent.
	Get(ctx context.Context, key *Key) (*Entity, error)
	// Put creates or fully replaces the entity at its key. An incomplete
	// key is completed with a store-assigned ID; the completed key is
	// returned.
	Put(ctx context.Context, entity *Entity) (*Key, error)
	// Query runs a fixed query and returns all matching entities.
	Query(ctx context.Context, q Query) ([]*Entity, error)
	// Close releases the underlying resources.
	Close() error
}
