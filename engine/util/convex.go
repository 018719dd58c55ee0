package util

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// IntersectSegmentTriangle is the Moeller-Trumbore test, bounded to the
// segment. Returns the fraction along [rayStart,rayEnd] and the hit point.
func IntersectSegmentTriangle(rayStart, rayEnd mgl32.Vec3, v0, v1, v2 mgl32.Vec3) (bool, float32, mgl32.Vec3) {
	const EPSILON = 0.000001

	direction := rayEnd.Sub(rayStart)
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	h := direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -EPSILON && a < EPSILON {
		return false, 0, mgl32.Vec3{} // parallel to this triangle
	}

	f := 1.0 / a
	s := rayStart.Sub(v0)
	u := f * s.Dot(h)

	if u < 0.0 || u > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	q := s.Cross(edge1)
	v := f * direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	t := f * edge2.Dot(q)

	if t > EPSILON && t <= 1.0 {
		return true, t, rayStart.Add(direction.Mul(t))
	}

	return false, 0, mgl32.Vec3{}
}

// ConvexHull is a closed triangle soup in local space, immutable once built.
type ConvexHull struct {
	Points   []mgl32.Vec3
	Indices  []uint32 // triples
	centroid mgl32.Vec3
}

func NewConvexHull(points []mgl32.Vec3, indices []uint32) *ConvexHull {
	var centroid mgl32.Vec3
	for _, p := range points {
		centroid = centroid.Add(p)
	}
	if len(points) > 0 {
		centroid = centroid.Mul(1.0 / float32(len(points)))
	}
	return &ConvexHull{Points: points, Indices: indices, centroid: centroid}
}

func (c *ConvexHull) Centroid() mgl32.Vec3 {
	return c.centroid
}

// LocalBounds returns the AABB of the untransformed point cloud.
func (c *ConvexHull) LocalBounds() AABB {
	if len(c.Points) == 0 {
		return AABB{}
	}
	min := c.Points[0]
	max := c.Points[0]
	for _, p := range c.Points[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math32.Min(min[i], p[i])
			max[i] = math32.Max(max[i], p[i])
		}
	}
	return NewAABBFromMinMax(min, max)
}

// IterateTrianglesTransformed feeds every triangle of the hull through the
// given point mapping, same walking order as the raw index buffer.
func (c *ConvexHull) IterateTrianglesTransformed(mapPoint func(mgl32.Vec3) mgl32.Vec3, callback func(triangle [3]mgl32.Vec3)) {
	for i := 0; i+2 < len(c.Indices); i += 3 {
		a := mapPoint(c.Points[c.Indices[i]])
		b := mapPoint(c.Points[c.Indices[i+1]])
		cc := mapPoint(c.Points[c.Indices[i+2]])
		callback([3]mgl32.Vec3{a, b, cc})
	}
}

// IntersectSegment finds the nearest triangle hit. A positive sweepRadius
// pushes every vertex outward from the centroid, an approximation that is
// close enough for the small radii fast projectiles use.
func (c *ConvexHull) IntersectSegment(rayStart, rayEnd mgl32.Vec3, mapPoint func(mgl32.Vec3) mgl32.Vec3, sweepRadius float32) (SegmentHit, bool) {
	worldCentroid := mapPoint(c.centroid)
	inflate := func(p mgl32.Vec3) mgl32.Vec3 {
		world := mapPoint(p)
		if sweepRadius <= 0 {
			return world
		}
		away := world.Sub(worldCentroid)
		if away.Len() < 1e-6 {
			return world
		}
		return world.Add(away.Normalize().Mul(sweepRadius))
	}

	minFraction := float32(math32.MaxFloat32)
	var best SegmentHit
	doesIntersect := false
	c.IterateTrianglesTransformed(inflate, func(triangle [3]mgl32.Vec3) {
		hit, fraction, atPoint := IntersectSegmentTriangle(rayStart, rayEnd, triangle[0], triangle[1], triangle[2])
		if hit && fraction < minFraction {
			minFraction = fraction
			normal := triangle[1].Sub(triangle[0]).Cross(triangle[2].Sub(triangle[0]))
			if normal.Len() > 1e-9 {
				normal = normal.Normalize()
			}
			// winding is not guaranteed, orient against the ray
			if normal.Dot(rayEnd.Sub(rayStart)) > 0 {
				normal = normal.Mul(-1)
			}
			best = SegmentHit{Fraction: fraction, Point: atPoint, Normal: normal}
			doesIntersect = true
		}
	})
	return best, doesIntersect
}
