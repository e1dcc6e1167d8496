package domain

import (
	"math"
	"strconv"
	"time"
)

// ObservationSnapshotVersion is the current persisted snapshot format.
const ObservationSnapshotVersion = 1

// Location is a geographic coordinate in degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinates are finite and within range.
func (l Location) Valid() bool {
	if math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// String renders the location as "lat,lon" using the shortest exact decimal form.
func (l Location) String() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// Observation is one recorded price entry. It is immutable once created.
// ProductName and Brand are copied from the catalog at confirmation time
// and are never re-resolved.
type Observation struct {
	// Competitor is the store where the price was collected.
	Competitor string `json:"competitor"`

	// ProductKey is the EAN (or fallback identifier) of the resolved product.
	ProductKey string `json:"product_key"`

	// PriceMinor is the price in minor currency units.
	PriceMinor int64 `json:"price_minor"`

	// ProductName is the catalog description at confirmation time.
	ProductName string `json:"product_name"`

	// Brand is the catalog brand at confirmation time.
	Brand string `json:"brand"`

	// Location is the session location snapshot, if one was available.
	Location *Location `json:"location,omitempty"`

	// RecordedAt is when the observation was confirmed.
	RecordedAt time.Time `json:"recorded_at"`
}

// ConfirmRequest carries user input for recording an observation.
type ConfirmRequest struct {
	// Field is the search field the query targets.
	Field SearchField

	// Query identifies the product.
	Query string

	// Competitor is the store name.
	Competitor string

	// RawPrice is the digit stream as typed; non-digits are ignored.
	RawPrice string

	// Location overrides the session location when set.
	Location *Location
}

// Session is one data-collection session.
type Session struct {
	// ID uniquely identifies the session.
	ID string `json:"id"`

	// StartedAt is when the session began.
	StartedAt time.Time `json:"started_at"`

	// Location is the snapshot taken at session start, if any.
	Location *Location `json:"location,omitempty"`
}

// ObservationSnapshot is the persisted form of the observation list.
type ObservationSnapshot struct {
	Version      int           `json:"version"`
	Session      Session       `json:"session"`
	Observations []Observation `json:"observations"`
}
