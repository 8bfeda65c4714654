package geom

import "math"

// ArcCenterToMid converts ODB++'s center-based arc representation
// (start, end, center, direction) into the midpoint of a
// start/mid/end representation. The returned point always lies on the
// arc's actual sweep, never on the opposite lobe.
func ArcCenterToMid(start, end, center Point, clockwise bool) Point {
	startAngle := math.Atan2(start.Y-center.Y, start.X-center.X)
	endAngle := math.Atan2(end.Y-center.Y, end.X-center.X)

	if clockwise && endAngle >= startAngle {
		endAngle -= 2 * math.Pi
	}
	if !clockwise && endAngle <= startAngle {
		endAngle += 2 * math.Pi
	}

	midAngle := (startAngle + endAngle) / 2
	radius := start.Dist(center)

	return Point{
		X: center.X + radius*math.Cos(midAngle),
		Y: center.Y + radius*math.Sin(midAngle),
	}
}
