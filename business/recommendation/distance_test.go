package recommendation

import (
	"testing"

	"myFoodFinder/domain"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.Location
		want float64
		tol  float64
	}{
		{"same point", domain.Location{Lat: 1, Lng: 2}, domain.Location{Lat: 1, Lng: 2}, 0, 1e-9},
		{"one degree latitude", domain.Location{Lat: 0, Lng: 0}, domain.Location{Lat: 1, Lng: 0}, 111195, 5},
		{"short hop", domain.Location{Lat: -6.2, Lng: 106.8166}, domain.Location{Lat: -6.203, Lng: 106.8166}, 333.6, 1},
		{"jakarta to bandung", domain.Location{Lat: -6.2088, Lng: 106.8456}, domain.Location{Lat: -6.9175, Lng: 107.6191}, 116000, 2000},
		{"antipodal", domain.Location{Lat: 0, Lng: 0}, domain.Location{Lat: 0, Lng: 180}, 20015087, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := distanceMeters(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, tt.tol)
			assert.InDelta(t, got, distanceMeters(tt.b, tt.a), 1e-6)
		})
	}
}
