package geometry

import "math"

// PointInPolygon tests if a point is inside a polygon using even-odd
// ray casting. A point lying exactly on an edge may be reported as
// either inside or outside; callers must not rely on on-edge behavior.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PolygonArea returns the area enclosed by the polygon using the
// shoelace formula. The polygon is implicitly closed (last vertex
// connects to first). The result is in squared input units and is
// always non-negative regardless of winding.
func PolygonArea(polygon []Point2D) float64 {
	if len(polygon) < 3 {
		return 0
	}

	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return math.Abs(sum) / 2
}

// PolygonPerimeter returns the total edge length of the implicitly
// closed polygon.
func PolygonPerimeter(polygon []Point2D) float64 {
	if len(polygon) < 2 {
		return 0
	}

	var total float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		total += polygon[i].Distance(polygon[(i+1)%n])
	}
	return total
}

// SnapAngle rounds a free angle to the nearest multiple of step.
// Both values are in radians; step must be positive.
func SnapAngle(angle, step float64) float64 {
	return math.Round(angle/step) * step
}
