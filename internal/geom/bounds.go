package geom

import "math"

// Bounds is a millimeter-space axis-aligned bounding box, the board-space
// analogue of a geographic bounding box.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// BoundsOf returns the smallest Bounds containing every point in pts.
// The zero value is returned for an empty slice.
func BoundsOf(pts ...Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: pts[0].X, MaxX: pts[0].X, MinY: pts[0].Y, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		b = b.include(p)
	}
	return b
}

func (b Bounds) include(p Point) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, p.X),
		MaxX: math.Max(b.MaxX, p.X),
		MinY: math.Min(b.MinY, p.Y),
		MaxY: math.Max(b.MaxY, p.Y),
	}
}

// Union returns the smallest Bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, other.MinX),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Contains returns true if the point (x, y) is within b.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Intersects returns true if b and other overlap.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxX < b.MinX ||
		other.MinX > b.MaxX ||
		other.MaxY < b.MinY ||
		other.MinY > b.MaxY)
}

// Expand returns a new Bounds grown by margin in all directions.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MaxX: b.MaxX + margin,
		MinY: b.MinY - margin,
		MaxY: b.MaxY + margin,
	}
}

// Size returns the width and height of b.
func (b Bounds) Size() (w, h float64) {
	return b.MaxX - b.MinX, b.MaxY - b.MinY
}
