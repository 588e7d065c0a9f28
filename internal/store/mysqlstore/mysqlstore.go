// Package mysqlstore implements store.Client on MySQL. Entities live in a
// single table keyed by the encoded key path, with the open property map
// persisted as a JSON column; numeric identifiers for incomplete keys come
// from an AUTO_INCREMENT sequence table. The schema is managed by the
// golang-migrate files under migrations/.
package mysqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openlms/lms-service/internal/store"
	"go.uber.org/zap"
)

// Store is a MySQL-backed implementation of store.Client.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New creates a MySQL store over an open database handle.
func New(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// Get fetches the entity for a complete key.
func (s *Store) Get(ctx context.Context, key *store.Key) (*store.Entity, error) {
	if key == nil || key.Incomplete() {
		return nil, fmt.Errorf("mysqlstore: get requires a complete key")
	}

	query := `SELECT properties FROM entities WHERE key_path = ? LIMIT 1`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, key.Encode()).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, store.ErrNoSuchEntity
	}
	if err != nil {
		s.logger.Error("failed to get entity", zap.Error(err), zap.String("key", key.Encode()))
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	props, err := decodeProperties(raw)
	if err != nil {
		return nil, err
	}
	return &store.Entity{Key: key, Properties: props}, nil
}

// Put creates or fully replaces the entity at its key. Incomplete keys are
// completed from the entity_ids sequence before the write.
func (s *Store) Put(ctx context.Context, entity *store.Entity) (*store.Key, error) {
	if entity == nil || entity.Key == nil {
		return nil, fmt.Errorf("mysqlstore: put requires an entity with a key")
	}

	key := entity.Key
	if key.Incomplete() {
		id, err := s.allocateID(ctx)
		if err != nil {
			return nil, err
		}
		key = store.IDKey(key.Kind, id, key.Parent)
	}

	raw, err := json.Marshal(entity.Properties)
	if err != nil {
		return nil, fmt.Errorf("failed to encode properties: %w", err)
	}

	parentPath := ""
	if key.Parent != nil {
		parentPath = key.Parent.Encode()
	}

	query := `
		INSERT INTO entities (key_path, kind, parent_path, properties)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE properties = VALUES(properties)
	`

	if _, err := s.db.ExecContext(ctx, query, key.Encode(), key.Kind, parentPath, raw); err != nil {
		s.logger.Error("failed to put entity", zap.Error(err), zap.String("key", key.Encode()))
		return nil, fmt.Errorf("failed to put entity: %w", err)
	}
	return key, nil
}

// Query returns all entities matching the query. Equality filters and the
// optional ordering are evaluated against the JSON property column.
func (s *Store) Query(ctx context.Context, q store.Query) ([]*store.Entity, error) {
	sqlQuery := `SELECT key_path, properties FROM entities WHERE kind = ?`
	args := []any{q.Kind}

	if q.Ancestor != nil {
		sqlQuery += ` AND key_path LIKE ?`
		args = append(args, escapeLike(q.Ancestor.Encode())+"/%")
	}

	for _, f := range q.Filters {
		path, err := propertyPath(f.Property)
		if err != nil {
			return nil, err
		}
		sqlQuery += fmt.Sprintf(` AND JSON_UNQUOTE(JSON_EXTRACT(properties, '%s')) = ?`, path)
		args = append(args, f.Value)
	}

	if q.Order != "" {
		property := q.Order
		direction := "ASC"
		if rest, ok := strings.CutPrefix(q.Order, "-"); ok {
			property = rest
			direction = "DESC"
		}
		path, err := propertyPath(property)
		if err != nil {
			return nil, err
		}
		// BINARY keeps string ordering case-sensitive, matching the
		// contract of the course listing.
		sqlQuery += fmt.Sprintf(` ORDER BY BINARY JSON_UNQUOTE(JSON_EXTRACT(properties, '%s')) %s`, path, direction)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		s.logger.Error("failed to query entities", zap.Error(err), zap.String("kind", q.Kind))
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var results []*store.Entity
	for rows.Next() {
		var keyPath string
		var raw []byte
		if err := rows.Scan(&keyPath, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}

		key, err := store.DecodeKey(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to decode stored key: %w", err)
		}
		props, err := decodeProperties(raw)
		if err != nil {
			return nil, err
		}
		results = append(results, &store.Entity{Key: key, Properties: props})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// allocateID draws the next numeric identifier from the sequence table.
func (s *Store) allocateID(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO entity_ids () VALUES ()`)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate entity id: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

func decodeProperties(raw []byte) (map[string]any, error) {
	props := map[string]any{}
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return props, nil
}

// escapeLike escapes the characters LIKE treats specially, so an ancestor
// path only matches as a literal prefix even when a key name contains
// '%' or '_'.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// propertyPath builds a JSON path for a property name coming from repository
// code. Names are restricted to identifier characters since they end up
// inside the SQL text.
func propertyPath(property string) (string, error) {
	if property == "" {
		return "", fmt.Errorf("mysqlstore: empty property name")
	}
	for _, r := range property {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return "", fmt.Errorf("mysqlstore: invalid property name %q", property)
		}
	}
	return "$." + property, nil
}
