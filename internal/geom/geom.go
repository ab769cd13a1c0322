// Package geom owns the geometry kernel for annotated detections.
//
// Responsibilities: bounding-box representation (axis-aligned and
// oriented), area, centroid, and minimum rectangle-to-rectangle
// distance. All coordinates are image-plane pixels.
package geom

import "math"

// Point is a 2D point in image-plane pixels.
type Point struct {
	X, Y float64
}

// Box is a rectangle described by its center, dimensions, and rotation.
// Axis-aligned boxes carry Theta == 0 and Oriented == false; an AABB is
// treated as an OBB with zero rotation everywhere in this package.
type Box struct {
	CX, CY   float64
	W, H     float64
	Theta    float64 // radians, counter-clockwise
	Oriented bool
}

// NewAABB returns an axis-aligned box centered at (cx, cy).
func NewAABB(cx, cy, w, h float64) Box {
	return Box{CX: cx, CY: cy, W: w, H: h}
}

// NewOBB returns an oriented box centered at (cx, cy) rotated by theta
// radians.
func NewOBB(cx, cy, w, h, theta float64) Box {
	return Box{CX: cx, CY: cy, W: w, H: h, Theta: theta, Oriented: true}
}

// Area returns the box area (w*h).
func (b Box) Area() float64 {
	return b.W * b.H
}

// Center returns the box centroid.
func (b Box) Center() Point {
	return Point{X: b.CX, Y: b.CY}
}

// Corners returns the four corners of the box in counter-clockwise
// order starting from the corner at (-w/2, -h/2) in box-local
// coordinates.
func (b Box) Corners() [4]Point {
	x := b.W / 2
	y := b.H / 2
	sin, cos := math.Sincos(b.Theta)

	rot := func(lx, ly float64) Point {
		return Point{
			X: b.CX + lx*cos - ly*sin,
			Y: b.CY + lx*sin + ly*cos,
		}
	}

	return [4]Point{
		rot(-x, -y),
		rot(x, -y),
		rot(x, y),
		rot(-x, y),
	}
}
