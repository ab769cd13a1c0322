package geom

import "math"

// Intersects reports whether the closed rectangles a and b overlap,
// using the separating-axis test over the edge normals of both boxes.
// Touching edges count as an intersection.
func Intersects(a, b Box) bool {
	ca := a.Corners()
	cb := b.Corners()

	axes := [4]Point{
		{X: ca[1].X - ca[0].X, Y: ca[1].Y - ca[0].Y},
		{X: ca[3].X - ca[0].X, Y: ca[3].Y - ca[0].Y},
		{X: cb[1].X - cb[0].X, Y: cb[1].Y - cb[0].Y},
		{X: cb[3].X - cb[0].X, Y: cb[3].Y - cb[0].Y},
	}

	for _, axis := range axes {
		aMin, aMax := project(ca, axis)
		bMin, bMax := project(cb, axis)

		// A separating axis exists when the projections are strictly
		// disjoint. NaN coordinates fail every comparison and therefore
		// report no overlap.
		if !(aMax >= bMin && bMax >= aMin) {
			return false
		}
	}

	return true
}

// Dist returns the minimum Euclidean distance between the closed
// rectangles a and b, or 0 if they intersect.
func Dist(a, b Box) float64 {
	if Intersects(a, b) {
		return 0
	}

	ca := a.Corners()
	cb := b.Corners()

	min := math.Inf(1)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			d := segDist(ca[i], ca[(i+1)%4], cb[j], cb[(j+1)%4])
			if d < min {
				min = d
			}
		}
	}

	if math.IsInf(min, 1) {
		// Degenerate inputs (NaN corners) never update min.
		return math.NaN()
	}

	return min
}

// project returns the min and max of the corner projections onto axis.
func project(corners [4]Point, axis Point) (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)

	for _, c := range corners {
		p := c.X*axis.X + c.Y*axis.Y
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	return min, max
}

// segDist returns the minimum distance between segments (p1,p2) and
// (q1,q2); 0 if they cross.
func segDist(p1, p2, q1, q2 Point) float64 {
	if segCross(p1, p2, q1, q2) {
		return 0
	}

	d := pointSegDist(p1, q1, q2)
	if v := pointSegDist(p2, q1, q2); v < d {
		d = v
	}
	if v := pointSegDist(q1, p1, p2); v < d {
		d = v
	}
	if v := pointSegDist(q2, p1, p2); v < d {
		d = v
	}

	return d
}

// segCross reports whether the closed segments properly or improperly
// intersect.
func segCross(p1, p2, q1, q2 Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSeg(q1, q2, p1)) ||
		(d2 == 0 && onSeg(q1, q2, p2)) ||
		(d3 == 0 && onSeg(p1, p2, q1)) ||
		(d4 == 0 && onSeg(p1, p2, q2))
}

func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSeg(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// pointSegDist returns the distance from point p to the closed segment
// (a, b).
func pointSegDist(p, a, b Point) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	apx := p.X - a.X
	apy := p.Y - a.Y

	den := abx*abx + aby*aby
	if den == 0 {
		return math.Hypot(apx, apy)
	}

	t := (apx*abx + apy*aby) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return math.Hypot(p.X-(a.X+t*abx), p.Y-(a.Y+t*aby))
}
