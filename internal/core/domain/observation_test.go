package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocation_Valid(t *testing.T) {
	tests := []struct {
		name     string
		loc      Location
		expected bool
	}{
		{"sao paulo", Location{Latitude: -23.5505, Longitude: -46.6333}, true},
		{"origin", Location{}, true},
		{"poles and antimeridian", Location{Latitude: 90, Longitude: -180}, true},
		{"latitude out of range", Location{Latitude: 91, Longitude: 0}, false},
		{"longitude out of range", Location{Latitude: 0, Longitude: 180.5}, false},
		{"nan", Location{Latitude: math.NaN(), Longitude: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.loc.Valid())
		})
	}
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "-23.5505,-46.6333", Location{Latitude: -23.5505, Longitude: -46.6333}.String())
	assert.Equal(t, "0,0", Location{}.String())
	assert.Equal(t, "1.5,2", Location{Latitude: 1.5, Longitude: 2}.String())
}
