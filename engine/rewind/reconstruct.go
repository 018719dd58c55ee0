package rewind

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/rewind/engine/util"
)

// worldShape is a collision primitive expanded into world space on demand at
// rewind time. Nothing pre-expanded is ever stored in history; the descriptor
// table plus the interpolated pose is all it takes to rebuild one.
type worldShape struct {
	desc *ShapeDescriptor

	// box and capsule orientation
	center   mgl32.Vec3
	rotation mgl32.Quat

	halfExtents mgl32.Vec3 // box
	radius      float32    // sphere, capsule
	capA        mgl32.Vec3 // capsule axis endpoints
	capB        mgl32.Vec3

	hullTransform util.Transform // convex
}

var localAxisX = mgl32.Vec3{1, 0, 0}
var localAxisY = mgl32.Vec3{0, 1, 0}
var localAxisZ = mgl32.Vec3{0, 0, 1}

// reconstructShape resolves the descriptor's owning bone transform from the
// pose, applies the local offset and produces a world-space primitive.
//
// Non-uniform scale is handled per shape kind: box axes scale independently by
// projecting the rotated axis onto world scale, a sphere must stay spherical
// so the largest scale component applies uniformly, and a capsule scales its
// long axis by the rotated-axis projection and its radius by the larger of the
// two perpendicular projections.
func reconstructShape(desc *ShapeDescriptor, pose *Pose) worldShape {
	owner := pose.Component
	if desc.Bone != WholeComponent && int(desc.Bone) < len(pose.Bones) {
		owner = pose.Bones[desc.Bone]
	}
	world := owner.Mul(desc.Local)

	shape := worldShape{
		desc:     desc,
		center:   world.Position,
		rotation: world.Rotation,
	}
	switch desc.Kind {
	case ShapeBox:
		shape.halfExtents = mgl32.Vec3{
			desc.HalfExtents.X() * util.ProjectedAxisScale(world.Rotation, localAxisX, world.Scale),
			desc.HalfExtents.Y() * util.ProjectedAxisScale(world.Rotation, localAxisY, world.Scale),
			desc.HalfExtents.Z() * util.ProjectedAxisScale(world.Rotation, localAxisZ, world.Scale),
		}
	case ShapeSphere:
		shape.radius = desc.Radius * util.Max3(world.Scale.X(), world.Scale.Y(), world.Scale.Z())
	case ShapeCapsule:
		axisScale := util.ProjectedAxisScale(world.Rotation, localAxisY, world.Scale)
		radialScale := util.ProjectedAxisScale(world.Rotation, localAxisX, world.Scale)
		if alt := util.ProjectedAxisScale(world.Rotation, localAxisZ, world.Scale); alt > radialScale {
			radialScale = alt
		}
		halfHeight := desc.HalfHeight * axisScale
		axis := world.MapDirection(localAxisY).Mul(halfHeight)
		shape.radius = desc.Radius * radialScale
		shape.capA = world.Position.Sub(axis)
		shape.capB = world.Position.Add(axis)
	case ShapeConvex:
		shape.hullTransform = world
	}
	return shape
}

// Bounds is the world-space AABB of the reconstructed primitive, loose for
// rotated boxes and capsules (sphere of the circumscribing radius).
func (s worldShape) Bounds() util.AABB {
	switch s.desc.Kind {
	case ShapeBox:
		r := s.halfExtents.Len()
		return util.NewAABB(s.center, mgl32.Vec3{2 * r, 2 * r, 2 * r})
	case ShapeSphere:
		return util.NewAABB(s.center, mgl32.Vec3{2 * s.radius, 2 * s.radius, 2 * s.radius})
	case ShapeCapsule:
		segment := util.NewAABBFromMinMax(
			mgl32.Vec3{
				min32(s.capA.X(), s.capB.X()), min32(s.capA.Y(), s.capB.Y()), min32(s.capA.Z(), s.capB.Z()),
			},
			mgl32.Vec3{
				max32(s.capA.X(), s.capB.X()), max32(s.capA.Y(), s.capB.Y()), max32(s.capA.Z(), s.capB.Z()),
			},
		)
		return segment.ExpandedBy(s.radius)
	case ShapeConvex:
		local := s.desc.Hull.LocalBounds()
		// transform the eight corners, cheap and conservative
		lMin, lMax := local.Min(), local.Max()
		first := true
		var bounds util.AABB
		for i := 0; i < 8; i++ {
			corner := mgl32.Vec3{pick(i&1 != 0, lMax.X(), lMin.X()), pick(i&2 != 0, lMax.Y(), lMin.Y()), pick(i&4 != 0, lMax.Z(), lMin.Z())}
			world := s.hullTransform.MapPoint(corner)
			point := util.NewAABB(world, mgl32.Vec3{})
			if first {
				bounds = point
				first = false
			} else {
				bounds = bounds.Union(point)
			}
		}
		return bounds
	}
	return util.AABB{}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func pick(cond bool, a, b float32) float32 {
	if cond {
		return a
	}
	return b
}
