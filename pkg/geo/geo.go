// Package geo provides great-circle distance calculations for proximity
// checks on road incidents.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371e3

// Point represents a geographic point.
type Point struct {
	Lat float64
	Lon float64
}

// Haversine returns the great-circle distance in meters between two
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Distance returns the great-circle distance in meters between two points.
func Distance(a, b Point) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// DistanceToPath returns the minimum distance in meters from p to the
// polyline described by points. Segments are evaluated on a local planar
// projection centered on p, which is accurate at the few-kilometer scale
// relevance checks operate on. Returns +Inf for an empty path.
func DistanceToPath(path []Point, p Point) float64 {
	if len(path) == 0 {
		return math.Inf(1)
	}
	if len(path) == 1 {
		return Distance(path[0], p)
	}

	min := math.Inf(1)
	for i := 0; i < len(path)-1; i++ {
		d := distanceToSegment(path[i], path[i+1], p)
		if d < min {
			min = d
		}
	}
	return min
}

// distanceToSegment projects a and b into a plane tangent at p and returns
// the planar point-to-segment distance.
func distanceToSegment(a, b, p Point) float64 {
	ax, ay := project(a, p)
	bx, by := project(b, p)

	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(ax, ay)
	}

	// Parameter of the projection of p (the origin) onto the segment.
	t := -(ax*dx + ay*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	cx := ax + t*dx
	cy := ay + t*dy
	return math.Hypot(cx, cy)
}

// project converts q into meters east/north of origin using an
// equirectangular approximation.
func project(q, origin Point) (x, y float64) {
	latRad := origin.Lat * math.Pi / 180
	x = (q.Lon - origin.Lon) * math.Pi / 180 * EarthRadiusMeters * math.Cos(latRad)
	y = (q.Lat - origin.Lat) * math.Pi / 180 * EarthRadiusMeters
	return x, y
}
