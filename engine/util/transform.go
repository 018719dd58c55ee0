package util

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a value type on purpose: it gets copied across the thread
// boundary inside snapshots and must never alias live simulation state.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewDefaultTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func NewTransform(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) Transform {
	return Transform{
		Position: position,
		Rotation: rotation,
		Scale:    scale,
	}
}

func NewTranslation(position mgl32.Vec3) Transform {
	t := NewDefaultTransform()
	t.Position = position
	return t
}

// Mat4 composes translation * rotation * scale, so the matrix applies S, then R, then T.
func (t Transform) Mat4() mgl32.Mat4 {
	translation := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotation := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translation.Mul4(rotation).Mul4(scale)
}

// MapPoint transforms a local-space point into the space of this transform.
func (t Transform) MapPoint(local mgl32.Vec3) mgl32.Vec3 {
	scaled := mgl32.Vec3{local.X() * t.Scale.X(), local.Y() * t.Scale.Y(), local.Z() * t.Scale.Z()}
	return t.Rotation.Rotate(scaled).Add(t.Position)
}

// MapDirection rotates a local direction into this transform's space, ignoring
// translation and scale.
func (t Transform) MapDirection(local mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Rotate(local)
}

// Mul composes two transforms, self first in matrix order (child = parent.Mul(local)).
func (t Transform) Mul(local Transform) Transform {
	return Transform{
		Position: t.MapPoint(local.Position),
		Rotation: t.Rotation.Mul(local.Rotation).Normalize(),
		Scale:    mgl32.Vec3{t.Scale.X() * local.Scale.X(), t.Scale.Y() * local.Scale.Y(), t.Scale.Z() * local.Scale.Z()},
	}
}

func (t Transform) Lerp(other Transform, factor float64) Transform {
	if factor <= 0 {
		return t
	}
	if factor >= 1 {
		return other
	}
	return Transform{
		Position: Lerp3(t.Position, other.Position, factor),
		Rotation: LerpQuat(t.Rotation, other.Rotation, factor),
		Scale:    Lerp3(t.Scale, other.Scale, factor),
	}
}
