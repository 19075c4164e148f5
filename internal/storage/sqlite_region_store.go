package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// maxRegionDepth bounds the parent walk in FullName so a cyclic parent
// reference cannot loop forever.
const maxRegionDepth = 8

// SQLiteRegionStore implements RegionStore backed by SQLite.
type SQLiteRegionStore struct {
	db *sql.DB
}

// NewSQLiteRegionStore returns a new SQLiteRegionStore.
func NewSQLiteRegionStore(db *sql.DB) *SQLiteRegionStore {
	return &SQLiteRegionStore{db: db}
}

// GetRegion returns the region with the given code, or nil if not found.
func (s *SQLiteRegionStore) GetRegion(ctx context.Context, code string) (*Region, error) {
	r := &Region{}
	err := s.db.QueryRowContext(ctx, `
		SELECT code, name, parent_code, level, created_at
		FROM regions WHERE code = ?`, code,
	).Scan(&r.Code, &r.Name, &r.ParentCode, &r.Level, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting region %q: %w", code, err)
	}
	return r, nil
}

// FullName walks the parent chain and joins the names root-first.
func (s *SQLiteRegionStore) FullName(ctx context.Context, code string) (string, error) {
	var names []string
	next := code
	for depth := 0; next != "" && depth < maxRegionDepth; depth++ {
		r, err := s.GetRegion(ctx, next)
		if err != nil {
			return "", err
		}
		if r == nil {
			break
		}
		names = append(names, r.Name)
		next = r.ParentCode
	}
	if len(names) == 0 {
		return "", nil
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, " "), nil
}

// SaveRegion inserts or replaces a region.
func (s *SQLiteRegionStore) SaveRegion(ctx context.Context, r *Region) error {
	if r.Code == "" {
		return fmt.Errorf("region code is required")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO regions (code, name, parent_code, level, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			parent_code = excluded.parent_code,
			level = excluded.level`,
		r.Code, r.Name, r.ParentCode, r.Level, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving region %q: %w", r.Code, err)
	}
	return nil
}
