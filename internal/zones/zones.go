// Package zones splits stations into equal-area latitude bands.
package zones

import (
	"fmt"
	"math"

	"github.com/ClimateCodeFoundation/zontem/internal/models"
)

// ConfigurationError reports an invalid zone count.
type ConfigurationError struct {
	ZoneCount int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("zone count must be positive, got %d", e.ZoneCount)
}

// Boundaries returns the n+1 zone boundary latitudes in degrees, south
// pole first. Boundary k satisfies sin(lat) = -1 + 2k/n, so every band
// between consecutive boundaries covers the same surface area on a
// sphere.
func Boundaries(n int) ([]float64, error) {
	if n <= 0 {
		return nil, &ConfigurationError{ZoneCount: n}
	}
	bounds := make([]float64, n+1)
	for k := 0; k <= n; k++ {
		z := -1 + 2*float64(k)/float64(n)
		bounds[k] = math.Asin(z) * 180 / math.Pi
	}
	// Asin rounding must not shave the poles.
	bounds[0] = -90
	bounds[n] = 90
	return bounds, nil
}

// Partition assigns every station to exactly one of n equal-area zones,
// indexed from the south pole northwards. A station belongs to the band
// [lower, upper) containing its latitude; only the north-pole band is
// closed at its upper boundary. Zones with no stations are returned too.
func Partition(n int, stations []models.StationRecord) ([]models.Zone, error) {
	bounds, err := Boundaries(n)
	if err != nil {
		return nil, err
	}

	result := make([]models.Zone, n)
	for i := range result {
		result[i] = models.Zone{
			Index:    i,
			LowerLat: bounds[i],
			UpperLat: bounds[i+1],
		}
	}

	for _, st := range stations {
		i := Index(n, st.Latitude)
		result[i].StationIDs = append(result[i].StationIDs, st.ID)
	}

	return result, nil
}

// Index returns the zone index for a latitude, given n zones. The
// computation works on sin(lat), the normalized distance from the
// equatorial plane, so the floor lands directly on the equal-area band.
func Index(n int, latitude float64) int {
	z := math.Sin(latitude * math.Pi / 180)
	i := int(math.Floor((z + 1) / 2 * float64(n)))
	// A station exactly at the north pole computes as band n.
	if i > n-1 {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
