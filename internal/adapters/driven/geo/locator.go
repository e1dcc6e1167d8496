// Package geo provides driven.Locator implementations.
//
// Devices used for collection rarely have a usable positioning API from a
// terminal, so the location is configured per device and can be snapped to
// an S2 cell to limit its precision.
package geo

import (
	"context"
	"fmt"

	"github.com/golang/geo/s2"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
)

// Ensure Static implements the interface.
var _ driven.Locator = (*Static)(nil)

// MaxPrecisionLevel is the finest S2 level accepted by WithPrecision.
const MaxPrecisionLevel = s2.MaxLevel

// Static returns a fixed, pre-validated location.
type Static struct {
	loc  domain.Location
	cell s2.CellID
}

// StaticOption configures a Static locator.
type StaticOption func(*staticConfig)

type staticConfig struct {
	level int
}

// WithPrecision snaps the location to the centre of its S2 cell at level.
// Level 0 is a cube face; MaxPrecisionLevel keeps centimetre precision.
func WithPrecision(level int) StaticOption {
	return func(c *staticConfig) {
		c.level = level
	}
}

// NewStatic validates lat/lon and returns a locator that always reports it.
func NewStatic(lat, lon float64, opts ...StaticOption) (*Static, error) {
	cfg := staticConfig{level: MaxPrecisionLevel}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.level < 0 || cfg.level > MaxPrecisionLevel {
		return nil, fmt.Errorf("%w: precision level %d out of range", domain.ErrInvalidLocation, cfg.level)
	}

	ll := s2.LatLngFromDegrees(lat, lon)
	if !ll.IsValid() {
		return nil, fmt.Errorf("%w: %v,%v", domain.ErrInvalidLocation, lat, lon)
	}

	cell := s2.CellIDFromLatLng(ll).Parent(cfg.level)
	loc := domain.Location{Latitude: lat, Longitude: lon}
	if cfg.level < MaxPrecisionLevel {
		center := cell.LatLng()
		loc = domain.Location{Latitude: center.Lat.Degrees(), Longitude: center.Lng.Degrees()}
	}

	return &Static{loc: loc, cell: cell}, nil
}

// Locate returns the configured location.
func (s *Static) Locate(ctx context.Context) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, err
	}
	return s.loc, nil
}

// Cell returns the token of the S2 cell the location was snapped to.
func (s *Static) Cell() string {
	return s.cell.ToToken()
}
