package util

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentSphere(t *testing.T) {
	center := mgl32.Vec3{0, 0, 0}

	hit, ok := SegmentSphere(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{5, 0, 0}, center, 1, 0)
	require.True(t, ok)
	assert.InDelta(t, -1, hit.Point.X(), 0.001)
	assert.InDelta(t, -1, hit.Normal.X(), 0.001)
	assert.InDelta(t, 0.4, hit.Fraction, 0.001)

	// segment ends before reaching the sphere
	_, ok = SegmentSphere(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{-3, 0, 0}, center, 1, 0)
	assert.False(t, ok)

	// pointing away
	_, ok = SegmentSphere(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{8, 0, 0}, center, 1, 0)
	assert.False(t, ok)

	// starting inside reports an immediate hit
	hit, ok = SegmentSphere(mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{5, 0, 0}, center, 1, 0)
	require.True(t, ok)
	assert.Equal(t, float32(0), hit.Fraction)
}

func TestSegmentSphereSweepRadius(t *testing.T) {
	center := mgl32.Vec3{0, 2, 0}
	// the bare segment passes 2 units away from a radius 1 sphere
	_, ok := SegmentSphere(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{5, 0, 0}, center, 1, 0)
	assert.False(t, ok)
	// a sweep radius of 1.5 closes the gap
	_, ok = SegmentSphere(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{5, 0, 0}, center, 1, 1.5)
	assert.True(t, ok)
}

func TestSegmentBoxAxisAligned(t *testing.T) {
	center := mgl32.Vec3{5, 0, 0}
	halfExtents := mgl32.Vec3{1, 1, 1}

	hit, ok := SegmentBox(mgl32.Vec3{5, -5, 0}, mgl32.Vec3{5, 5, 0}, center, mgl32.QuatIdent(), halfExtents, 0)
	require.True(t, ok)
	assert.InDelta(t, -1, hit.Point.Y(), 0.001)
	assert.InDelta(t, 5, hit.Point.X(), 0.001)
	assert.InDelta(t, -1, hit.Normal.Y(), 0.001)

	_, ok = SegmentBox(mgl32.Vec3{5, -5, 3}, mgl32.Vec3{5, 5, 3}, center, mgl32.QuatIdent(), halfExtents, 0)
	assert.False(t, ok)
}

func TestSegmentBoxRotated(t *testing.T) {
	// a thin slab yawed 45 degrees catches a ray a box-aligned test would miss
	center := mgl32.Vec3{0, 0, 0}
	halfExtents := mgl32.Vec3{3, 0.1, 3}
	roll90 := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})

	// slab now stands upright in the XZ sense: local Y points along world -X
	hit, ok := SegmentBox(mgl32.Vec3{-5, 2, 0}, mgl32.Vec3{5, 2, 0}, center, roll90, halfExtents, 0)
	require.True(t, ok)
	assert.InDelta(t, -0.1, hit.Point.X(), 0.01)

	// above the rotated extent of the slab
	_, ok = SegmentBox(mgl32.Vec3{-5, 4, 0}, mgl32.Vec3{5, 4, 0}, center, roll90, halfExtents, 0)
	assert.False(t, ok)
}

func TestSegmentBoxStartInside(t *testing.T) {
	hit, ok := SegmentBox(mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{5, 0, 0}, mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}, 0)
	require.True(t, ok)
	assert.Equal(t, float32(0), hit.Fraction)
	// nearest face of the unit box from (0.5,0,0) is +X
	assert.InDelta(t, 1, hit.Normal.X(), 0.001)
}

func TestSegmentCapsule(t *testing.T) {
	capA := mgl32.Vec3{0, -1, 0}
	capB := mgl32.Vec3{0, 1, 0}

	// through the cylinder section
	hit, ok := SegmentCapsule(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{5, 0, 0}, capA, capB, 0.5, 0)
	require.True(t, ok)
	assert.InDelta(t, -0.5, hit.Point.X(), 0.001)
	assert.InDelta(t, -1, hit.Normal.X(), 0.001)

	// through the top cap sphere
	hit, ok = SegmentCapsule(mgl32.Vec3{-5, 1.2, 0}, mgl32.Vec3{5, 1.2, 0}, capA, capB, 0.5, 0)
	require.True(t, ok)
	assert.True(t, hit.Point.Y() > 1, "cap hit must land above the cylinder section")

	// past the cap
	_, ok = SegmentCapsule(mgl32.Vec3{-5, 1.8, 0}, mgl32.Vec3{5, 1.8, 0}, capA, capB, 0.5, 0)
	assert.False(t, ok)

	// starting inside
	hit, ok = SegmentCapsule(mgl32.Vec3{0.1, 0, 0}, mgl32.Vec3{5, 0, 0}, capA, capB, 0.5, 0)
	require.True(t, ok)
	assert.Equal(t, float32(0), hit.Fraction)
}

func TestSegmentCapsuleParallelMiss(t *testing.T) {
	capA := mgl32.Vec3{0, -1, 0}
	capB := mgl32.Vec3{0, 1, 0}

	// running parallel to the axis outside the radius never connects
	_, ok := SegmentCapsule(mgl32.Vec3{1, -10, 0}, mgl32.Vec3{1, 10, 0}, capA, capB, 0.5, 0)
	assert.False(t, ok)

	// the same path within the radius does, grazing the lower cap first
	hit, ok := SegmentCapsule(mgl32.Vec3{0.4, -10, 0}, mgl32.Vec3{0.4, 10, 0}, capA, capB, 0.5, 0)
	require.True(t, ok)
	assert.True(t, hit.Point.Y() < -1)
}

func TestAABBSegmentOverlap(t *testing.T) {
	box := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 2, 2})

	frac, ok := box.SegmentOverlap(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{5, 0, 0}, 0)
	assert.True(t, ok)
	assert.InDelta(t, 0.4, frac, 0.001)

	_, ok = box.SegmentOverlap(mgl32.Vec3{-5, 3, 0}, mgl32.Vec3{5, 3, 0}, 0)
	assert.False(t, ok)

	// inflation by radius closes the miss
	_, ok = box.SegmentOverlap(mgl32.Vec3{-5, 3, 0}, mgl32.Vec3{5, 3, 0}, 2.5)
	assert.True(t, ok)
}

func TestAABBExpandAndDistance(t *testing.T) {
	box := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 2, 2})
	expanded := box.ExpandedBy(1)
	assert.Equal(t, mgl32.Vec3{4, 4, 4}, expanded.Extents())

	assert.Equal(t, float32(0), box.DistanceToPoint(mgl32.Vec3{0.5, 0.5, 0.5}))
	assert.InDelta(t, 2, box.DistanceToPoint(mgl32.Vec3{3, 0, 0}), 0.001)
}

func TestConvexHullSegment(t *testing.T) {
	// unit tetrahedron
	points := []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	}
	indices := []uint32{
		0, 1, 2,
		0, 1, 3,
		0, 2, 3,
		1, 2, 3,
	}
	hull := NewConvexHull(points, indices)
	identity := NewDefaultTransform()

	hit, ok := hull.IntersectSegment(mgl32.Vec3{0.2, 0.2, 5}, mgl32.Vec3{0.2, 0.2, -5}, identity.MapPoint, 0)
	require.True(t, ok)
	assert.True(t, hit.Fraction > 0 && hit.Fraction < 1)
	// normal faces back against the ray
	assert.True(t, hit.Normal.Dot(mgl32.Vec3{0, 0, -1}) < 0)

	_, ok = hull.IntersectSegment(mgl32.Vec3{3, 3, 5}, mgl32.Vec3{3, 3, -5}, identity.MapPoint, 0)
	assert.False(t, ok)
}
