package geo

import (
	"math"
	"testing"
)

func TestHaversine_Symmetry(t *testing.T) {
	d1 := Haversine(48.8566, 2.3522, 51.5074, -0.1278)
	d2 := Haversine(51.5074, -0.1278, 48.8566, 2.3522)

	if d1 != d2 {
		t.Errorf("expected symmetric distances, got %f and %f", d1, d2)
	}
}

func TestHaversine_ZeroDistance(t *testing.T) {
	if d := Haversine(48.8566, 2.3522, 48.8566, 2.3522); d != 0 {
		t.Errorf("expected 0 for identical points, got %f", d)
	}
}

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64 // meters
		tolerance              float64 // fraction
	}{
		{
			// 0.01 degrees of latitude in Paris.
			name: "paris one hundredth degree north",
			lat1: 48.8566, lon1: 2.3522, lat2: 48.8666, lon2: 2.3522,
			want: 1113, tolerance: 0.05,
		},
		{
			name: "paris to london",
			lat1: 48.8566, lon1: 2.3522, lat2: 51.5074, lon2: -0.1278,
			want: 343500, tolerance: 0.01,
		},
		{
			name: "across the antimeridian",
			lat1: 0, lon1: 179.5, lat2: 0, lon2: -179.5,
			want: 111195, tolerance: 0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.want*tt.tolerance {
				t.Errorf("expected ~%f m, got %f m", tt.want, got)
			}
		})
	}
}

func TestDistanceToPath(t *testing.T) {
	// Straight north-south path through central Paris.
	path := []Point{
		{Lat: 48.84, Lon: 2.3522},
		{Lat: 48.86, Lon: 2.3522},
		{Lat: 48.88, Lon: 2.3522},
	}

	t.Run("point on path", func(t *testing.T) {
		d := DistanceToPath(path, Point{Lat: 48.85, Lon: 2.3522})
		if d > 1 {
			t.Errorf("expected ~0 m for point on path, got %f", d)
		}
	})

	t.Run("point beside path", func(t *testing.T) {
		// ~0.01 degrees of longitude east of the path at 48.85N is ~732 m.
		d := DistanceToPath(path, Point{Lat: 48.85, Lon: 2.3622})
		if math.Abs(d-732) > 40 {
			t.Errorf("expected ~732 m, got %f", d)
		}
	})

	t.Run("point beyond endpoint", func(t *testing.T) {
		// South of the first path point, distance is to the endpoint itself.
		p := Point{Lat: 48.83, Lon: 2.3522}
		d := DistanceToPath(path, p)
		want := Distance(path[0], p)
		if math.Abs(d-want) > 5 {
			t.Errorf("expected ~%f m, got %f", want, d)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if d := DistanceToPath(nil, Point{Lat: 48.85, Lon: 2.3522}); !math.IsInf(d, 1) {
			t.Errorf("expected +Inf for empty path, got %f", d)
		}
	})
}
