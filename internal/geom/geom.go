// Package geom provides fundamental geometric types and utilities for the
// path generation engine. It contains no external dependencies (especially
// no Bubble Tea) to keep the engine math pure and testable.
package geom

import "math"

// Waypoint is a single point on an enemy route.
type Waypoint struct {
	X, Y float64
}

// Dist returns the Euclidean distance to another waypoint.
func (w Waypoint) Dist(other Waypoint) float64 {
	dx := other.X - w.X
	dy := other.Y - w.Y
	return math.Hypot(dx, dy)
}

// BearingTo returns the angle in radians of the direction from w to other.
func (w Waypoint) BearingTo(other Waypoint) float64 {
	return math.Atan2(other.Y-w.Y, other.X-w.X)
}

// Lerp returns the point a fraction t of the way from w to other.
func (w Waypoint) Lerp(other Waypoint, t float64) Waypoint {
	return Waypoint{
		X: w.X + (other.X-w.X)*t,
		Y: w.Y + (other.Y-w.Y)*t,
	}
}

// Path is an ordered sequence of waypoints from entry to exit.
// A usable path always has at least two points.
type Path []Waypoint

// Length returns the sum of Euclidean segment lengths.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += p[i-1].Dist(p[i])
	}
	return total
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// BoundingBox returns the axis-aligned bounds enclosing every waypoint.
// A nil path returns the zero bounds.
func (p Path) BoundingBox() Bounds {
	if len(p) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: p[0].X, MinY: p[0].Y, MaxX: p[0].X, MaxY: p[0].Y}
	for _, w := range p[1:] {
		b.MinX = math.Min(b.MinX, w.X)
		b.MinY = math.Min(b.MinY, w.Y)
		b.MaxX = math.Max(b.MaxX, w.X)
		b.MaxY = math.Max(b.MaxY, w.Y)
	}
	return b
}

// Bounds is an axis-aligned bounding box in canvas coordinates.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the bounds.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the bounds.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Contains returns true if the waypoint lies inside the bounds (inclusive).
func (b Bounds) Contains(w Waypoint) bool {
	return w.X >= b.MinX && w.X <= b.MaxX && w.Y >= b.MinY && w.Y <= b.MaxY
}

// Inset returns the bounds shrunk by d on every side.
func (b Bounds) Inset(d float64) Bounds {
	return Bounds{
		MinX: b.MinX + d,
		MinY: b.MinY + d,
		MaxX: b.MaxX - d,
		MaxY: b.MaxY - d,
	}
}

// Clamp returns the waypoint restricted to lie within the bounds.
func (b Bounds) Clamp(w Waypoint) Waypoint {
	return Waypoint{
		X: ClampF(w.X, b.MinX, b.MaxX),
		Y: ClampF(w.Y, b.MinY, b.MaxY),
	}
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// WrapAngle normalizes an angle to (-π, π].
func WrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// StdDev returns the population standard deviation of the values.
// An empty or single-element slice yields zero.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
