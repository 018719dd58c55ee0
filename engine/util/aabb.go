package util

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type CollisionInfo struct {
	Result                            float32
	Normal                            mgl32.Vec3
	MinkowskiDifferenceContainsOrigin bool
}

type AABB struct {
	center  mgl32.Vec3
	extents mgl32.Vec3 // size in respective axis, they extend from the center to the max and min
}

func NewAABB(center, extents mgl32.Vec3) AABB {
	return AABB{
		center:  center,
		extents: extents,
	}
}

func NewAABBFromMin(min, extents mgl32.Vec3) AABB {
	return AABB{
		center:  min.Add(extents.Mul(0.5)),
		extents: extents,
	}
}

func NewAABBFromMinMax(min, max mgl32.Vec3) AABB {
	return NewAABBFromMin(min, max.Sub(min))
}

func (a AABB) Min() mgl32.Vec3 {
	return a.center.Sub(a.extents.Mul(0.5))
}

func (a AABB) Max() mgl32.Vec3 {
	return a.center.Add(a.extents.Mul(0.5))
}

func (a AABB) Center() mgl32.Vec3 {
	return a.center
}

func (a AABB) Extents() mgl32.Vec3 {
	return a.extents
}

func (a AABB) Contains(vec3 mgl32.Vec3) bool {
	minVal := a.Min()
	maxVal := a.Max()
	return vec3.X() >= minVal.X() && vec3.X() <= maxVal.X() &&
		vec3.Y() >= minVal.Y() && vec3.Y() <= maxVal.Y() &&
		vec3.Z() >= minVal.Z() && vec3.Z() <= maxVal.Z()
}

func (a AABB) Union(other AABB) AABB {
	minA, maxA := a.Min(), a.Max()
	minB, maxB := other.Min(), other.Max()
	newMin := mgl32.Vec3{math32.Min(minA.X(), minB.X()), math32.Min(minA.Y(), minB.Y()), math32.Min(minA.Z(), minB.Z())}
	newMax := mgl32.Vec3{math32.Max(maxA.X(), maxB.X()), math32.Max(maxA.Y(), maxB.Y()), math32.Max(maxA.Z(), maxB.Z())}
	return NewAABBFromMinMax(newMin, newMax)
}

func (a AABB) ExpandedBy(padding float32) AABB {
	return AABB{
		center:  a.center,
		extents: a.extents.Add(mgl32.Vec3{2 * padding, 2 * padding, 2 * padding}),
	}
}

// DistanceToPoint is zero for points inside the box.
func (a AABB) DistanceToPoint(point mgl32.Vec3) float32 {
	minVal := a.Min()
	maxVal := a.Max()
	var distSq float32
	for i := 0; i < 3; i++ {
		v := point[i]
		if v < minVal[i] {
			distSq += (minVal[i] - v) * (minVal[i] - v)
		} else if v > maxVal[i] {
			distSq += (v - maxVal[i]) * (v - maxVal[i])
		}
	}
	return math32.Sqrt(distSq)
}

// SegmentOverlap is the slab test against the box inflated by radius.
// Returns the entry fraction along [start,end] and whether there is an overlap.
func (a AABB) SegmentOverlap(start, end mgl32.Vec3, radius float32) (float32, bool) {
	inflated := a.ExpandedBy(radius)
	minVal := inflated.Min()
	maxVal := inflated.Max()
	dir := end.Sub(start)

	tMin := float32(0)
	tMax := float32(1)
	for i := 0; i < 3; i++ {
		if math32.Abs(dir[i]) < 1e-8 {
			if start[i] < minVal[i] || start[i] > maxVal[i] {
				return 0, false
			}
			continue
		}
		invD := 1.0 / dir[i]
		t1 := (minVal[i] - start[i]) * invD
		t2 := (maxVal[i] - start[i]) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

func (a AABB) MinkowskiDifference(other AABB) AABB {
	minM := other.Min().Sub(a.Max())
	extM := a.extents.Add(other.extents)
	return NewAABBFromMin(minM, extM)
}

// SweepAABB will return a value between 0 and 1, where 0.5 means "a collision occurred halfway of the AABB's path" and 1 means "there was no collision".
// Notably, if one of the AABB's is completely inside the other, it will return 1, meaning our AABBs will be "hollow".
// It also returns the Normal to the surface that was hit.
func SweepAABB(a, b AABB, vel mgl32.Vec3) CollisionInfo {
	// adapted from: https://luisreis.net/blog/aabb_collision_handling/
	m := a.MinkowskiDifference(b)
	return SweepAABBFromMinkowski(m, vel)
}

func SweepAABBFromMinkowski(m AABB, vel mgl32.Vec3) CollisionInfo {
	// adapted from: https://luisreis.net/blog/aabb_collision_handling/
	containsOrigin := m.Contains(mgl32.Vec3{})
	h := float32(1.0)
	nx := 0
	ny := 0
	nz := 0
	var s float32
	nullVec := mgl32.Vec3{}

	// X Min
	s = LineToPlaneIntersection(nullVec, vel, m.Min(), mgl32.Vec3{-1, 0, 0})
	if s >= 0 && vel.X() > 0 && s < h && InRange(s*vel.Y(), m.Min().Y(), m.Max().Y()) && InRange(s*vel.Z(), m.Min().Z(), m.Max().Z()) {
		nx = -1
		h = s
		ny = 0
		nz = 0
	}

	// X Max
	s = LineToPlaneIntersection(nullVec, vel, mgl32.Vec3{m.Max().X(), m.Min().Y(), m.Min().Z()}, mgl32.Vec3{1, 0, 0})
	if s >= 0 && vel.X() < 0 && s < h && InRange(s*vel.Y(), m.Min().Y(), m.Max().Y()) && InRange(s*vel.Z(), m.Min().Z(), m.Max().Z()) {
		nx = 1
		h = s
		ny = 0
		nz = 0
	}

	// Y Min
	s = LineToPlaneIntersection(nullVec, vel, m.Min(), mgl32.Vec3{0, -1, 0})
	if s >= 0 && vel.Y() > 0 && s < h && InRange(s*vel.X(), m.Min().X(), m.Max().X()) && InRange(s*vel.Z(), m.Min().Z(), m.Max().Z()) {
		nx = 0
		h = s
		ny = -1
		nz = 0
	}

	// Y Max
	s = LineToPlaneIntersection(nullVec, vel, mgl32.Vec3{m.Min().X(), m.Max().Y(), m.Min().Z()}, mgl32.Vec3{0, 1, 0})
	if s >= 0 && vel.Y() < 0 && s < h && InRange(s*vel.X(), m.Min().X(), m.Max().X()) && InRange(s*vel.Z(), m.Min().Z(), m.Max().Z()) {
		nx = 0
		h = s
		ny = 1
		nz = 0
	}

	// Z Min
	s = LineToPlaneIntersection(nullVec, vel, m.Min(), mgl32.Vec3{0, 0, -1})
	if s >= 0 && vel.Z() > 0 && s < h && InRange(s*vel.X(), m.Min().X(), m.Max().X()) && InRange(s*vel.Y(), m.Min().Y(), m.Max().Y()) {
		nx = 0
		h = s
		ny = 0
		nz = -1
	}

	// Z Max
	s = LineToPlaneIntersection(nullVec, vel, mgl32.Vec3{m.Min().X(), m.Min().Y(), m.Max().Z()}, mgl32.Vec3{0, 0, 1})
	if s >= 0 && vel.Z() < 0 && s < h && InRange(s*vel.X(), m.Min().X(), m.Max().X()) && InRange(s*vel.Y(), m.Min().Y(), m.Max().Y()) {
		nx = 0
		h = s
		ny = 0
		nz = 1
	}

	return CollisionInfo{
		Result:                            h,
		Normal:                            mgl32.Vec3{float32(nx), float32(ny), float32(nz)},
		MinkowskiDifferenceContainsOrigin: containsOrigin,
	}
}
