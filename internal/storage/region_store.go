package storage

import (
	"context"
	"time"
)

// Region is a node in the administrative region hierarchy
// (country, province, city, district), identified by its adcode.
type Region struct {
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	ParentCode string    `json:"parent_code,omitempty"`
	Level      int       `json:"level"`
	CreatedAt  time.Time `json:"created_at"`
}

// RegionStore provides read access to the region hierarchy. Regions are
// imported by external tooling; SaveRegion exists for fixtures.
type RegionStore interface {
	// GetRegion returns the region with the given code, or nil if not found.
	GetRegion(ctx context.Context, code string) (*Region, error)
	// FullName returns the region name prefixed by its ancestors' names,
	// e.g. "北京市 东城区". Returns "" if the region does not exist.
	FullName(ctx context.Context, code string) (string, error)
	// SaveRegion inserts or replaces a region.
	SaveRegion(ctx context.Context, r *Region) error
}
