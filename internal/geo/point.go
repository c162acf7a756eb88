// Package geo provides flat map coordinates for the theater.
// X grows north and Y grows east; headings are degrees clockwise from north.
package geo

import (
	"fmt"
	"math"
	"math/rand"
)

// Point is a position on the theater map, in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// DistanceTo returns the straight-line distance between two points.
func (p Point) DistanceTo(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// HeadingTo returns the heading in degrees [0, 360) from p towards o.
func (p Point) HeadingTo(o Point) float64 {
	h := math.Atan2(o.Y-p.Y, o.X-p.X) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

// PointFromHeading projects a point distance meters away along heading.
func (p Point) PointFromHeading(heading, distance float64) Point {
	rad := heading * math.Pi / 180
	return Point{
		X: p.X + math.Cos(rad)*distance,
		Y: p.Y + math.Sin(rad)*distance,
	}
}

// Lerp returns the point a fraction t of the way from p to o.
func (p Point) Lerp(o Point, t float64) Point {
	return Point{X: p.X + (o.X-p.X)*t, Y: p.Y + (o.Y-p.Y)*t}
}

// Midpoint returns the point halfway between p and o.
func (p Point) Midpoint(o Point) Point {
	return p.Lerp(o, 0.5)
}

// RandomPointWithin draws a point uniformly by area from the annulus
// [minRange, maxRange] around p.
func (p Point) RandomPointWithin(rng *rand.Rand, minRange, maxRange float64) Point {
	heading := rng.Float64() * 360
	inner := minRange * minRange
	outer := maxRange * maxRange
	radius := math.Sqrt(inner + rng.Float64()*(outer-inner))
	return p.PointFromHeading(heading, radius)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.0f, %.0f)", p.X, p.Y)
}
