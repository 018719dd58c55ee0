package util

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 0.001

func Mix(a, b, factor float32) float32 {
	return a*(1-factor) + factor*b
}

func Mix64(a, b float32, factor float64) float32 {
	return float32(float64(a)*(1.0-factor) + factor*float64(b))
}

func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func Max3(a, b, c float32) float32 {
	return math32.Max(a, math32.Max(b, c))
}

func InRange(x, min, max float32) bool {
	return x >= min && x <= max
}

func Lerp3(one, two mgl32.Vec3, factor float64) mgl32.Vec3 {
	return mgl32.Vec3{Mix64(one.X(), two.X(), factor), Mix64(one.Y(), two.Y(), factor), Mix64(one.Z(), two.Z(), factor)}
}

// LerpQuat interpolates on the shortest arc. Nearly identical inputs fall back
// to nlerp, the acos in the slerp formula degenerates there.
func LerpQuat(one, two mgl32.Quat, factor float64) mgl32.Quat {
	dotProduct := float64(one.Dot(two))
	if dotProduct < 0 {
		two = two.Scale(-1)
		dotProduct = -dotProduct
	}
	if dotProduct > 0.9995 {
		return one.Scale(float32(1 - factor)).Add(two.Scale(float32(factor))).Normalize()
	}
	a := math32.Acos(float32(dotProduct))
	sinA := math32.Sin(a)
	return one.Scale(math32.Sin(a*float32(1-factor)) / sinA).Add(two.Scale(math32.Sin(a*float32(factor)) / sinA))
}

func LineToPlaneIntersection(p, u, v, n mgl32.Vec3) float32 {
	NdotU := n.Dot(u)
	if NdotU == 0 {
		return math32.MaxFloat32
	}
	return n.Dot(v.Sub(p)) / NdotU
}

// ProjectedAxisScale returns the length a unit local axis ends up with after
// rotation and a non-uniform world scale have been applied to it.
func ProjectedAxisScale(rotation mgl32.Quat, localAxis, worldScale mgl32.Vec3) float32 {
	rotated := rotation.Rotate(localAxis)
	scaled := mgl32.Vec3{rotated.X() * worldScale.X(), rotated.Y() * worldScale.Y(), rotated.Z() * worldScale.Z()}
	return scaled.Len()
}

// ClosestPointOnSegment clamps the projection of point onto the segment [a,b].
func ClosestPointOnSegment(a, b, point mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return a
	}
	t := point.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Mul(t))
}

// ClosestPointsOnSegments returns the pair of closest points between the
// segments [p1,q1] and [p2,q2]. Standard Ericson formulation.
func ClosestPointsOnSegments(p1, q1, p2, q2 mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float32
	if a <= epsilon && e <= epsilon {
		return p1, p2
	}
	if a <= epsilon {
		s = 0
		t = clamp01f(f / e)
	} else {
		c := d1.Dot(r)
		if e <= epsilon {
			t = 0
			s = clamp01f(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = clamp01f((b*f - c*e) / denom)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01f(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01f((b - c) / a)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

func clamp01f(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
