package util

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SegmentHit is the result of a segment or sphere-sweep test against a single
// primitive. Fraction is measured along the tested segment, 0 at its start.
type SegmentHit struct {
	Fraction float32
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
}

// SegmentSphere sweeps the segment [start,end] against a sphere. A positive
// sweepRadius turns the test into a sphere-vs-sphere sweep by inflation.
func SegmentSphere(start, end, center mgl32.Vec3, radius, sweepRadius float32) (SegmentHit, bool) {
	r := radius + sweepRadius
	d := end.Sub(start)
	m := start.Sub(center)
	c := m.Dot(m) - r*r
	if c <= 0 {
		// starting inside counts as an immediate hit
		normal := m
		if normal.Len() < 1e-6 {
			normal = mgl32.Vec3{0, 1, 0}
		} else {
			normal = normal.Normalize()
		}
		return SegmentHit{Fraction: 0, Point: start, Normal: normal}, true
	}
	a := d.Dot(d)
	if a < 1e-12 {
		return SegmentHit{}, false
	}
	b := m.Dot(d)
	if b > 0 {
		return SegmentHit{}, false // pointing away
	}
	disc := b*b - a*c
	if disc < 0 {
		return SegmentHit{}, false
	}
	t := (-b - math32.Sqrt(disc)) / a
	if t < 0 || t > 1 {
		return SegmentHit{}, false
	}
	point := start.Add(d.Mul(t))
	return SegmentHit{Fraction: t, Point: point, Normal: point.Sub(center).Normalize()}, true
}

// SegmentBox sweeps the segment against an oriented box given by center,
// rotation and half extents. The sweep radius inflates the slabs, which rounds
// the test off at edges slightly in favor of the shooter.
func SegmentBox(start, end, center mgl32.Vec3, rotation mgl32.Quat, halfExtents mgl32.Vec3, sweepRadius float32) (SegmentHit, bool) {
	inv := rotation.Inverse()
	localStart := inv.Rotate(start.Sub(center))
	localEnd := inv.Rotate(end.Sub(center))
	dir := localEnd.Sub(localStart)

	bounds := halfExtents.Add(mgl32.Vec3{sweepRadius, sweepRadius, sweepRadius})
	tMin := float32(0)
	tMax := float32(1)
	hitAxis := -1
	hitSign := float32(0)
	for i := 0; i < 3; i++ {
		if math32.Abs(dir[i]) < 1e-8 {
			if localStart[i] < -bounds[i] || localStart[i] > bounds[i] {
				return SegmentHit{}, false
			}
			continue
		}
		invD := 1.0 / dir[i]
		t1 := (-bounds[i] - localStart[i]) * invD
		t2 := (bounds[i] - localStart[i]) * invD
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tMin {
			tMin = t1
			hitAxis = i
			hitSign = sign
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return SegmentHit{}, false
		}
	}
	localPoint := localStart.Add(dir.Mul(tMin))
	var localNormal mgl32.Vec3
	if hitAxis < 0 {
		// started inside, pick the nearest face for the normal
		hitAxis = 0
		best := bounds[0] - math32.Abs(localStart[0])
		for i := 1; i < 3; i++ {
			d := bounds[i] - math32.Abs(localStart[i])
			if d < best {
				best = d
				hitAxis = i
			}
		}
		hitSign = 1
		if localStart[hitAxis] < 0 {
			hitSign = -1
		}
	}
	localNormal[hitAxis] = hitSign
	return SegmentHit{
		Fraction: tMin,
		Point:    rotation.Rotate(localPoint).Add(center),
		Normal:   rotation.Rotate(localNormal),
	}, true
}

// SegmentCapsule sweeps the segment against a capsule with axis [capA,capB].
// Cylinder test per Ericson, sphere caps handle the ends.
func SegmentCapsule(start, end, capA, capB mgl32.Vec3, radius, sweepRadius float32) (SegmentHit, bool) {
	r := radius + sweepRadius
	closest := ClosestPointOnSegment(capA, capB, start)
	if start.Sub(closest).Len() <= r {
		normal := start.Sub(closest)
		if normal.Len() < 1e-6 {
			normal = mgl32.Vec3{0, 1, 0}
		} else {
			normal = normal.Normalize()
		}
		return SegmentHit{Fraction: 0, Point: start, Normal: normal}, true
	}

	// the segments' closest approach bounds every possible hit
	nearTrace, nearAxis := ClosestPointsOnSegments(start, end, capA, capB)
	if nearTrace.Sub(nearAxis).Len() > r {
		return SegmentHit{}, false
	}

	d := capB.Sub(capA)
	m := start.Sub(capA)
	n := end.Sub(start)
	md := m.Dot(d)
	nd := n.Dot(d)
	dd := d.Dot(d)

	bestT := float32(math32.MaxFloat32)
	found := false

	if dd > 1e-12 {
		nn := n.Dot(n)
		a := dd*nn - nd*nd
		k := m.Dot(m) - r*r
		c := dd*k - md*md
		if math32.Abs(a) > 1e-12 {
			b := dd*m.Dot(n) - nd*md
			disc := b*b - a*c
			if disc >= 0 {
				t := (-b - math32.Sqrt(disc)) / a
				if t >= 0 && t <= 1 {
					// hit must land between the cap planes, caps handle the rest
					axisPos := md + t*nd
					if axisPos >= 0 && axisPos <= dd {
						bestT = t
						found = true
					}
				}
			}
		}
	}
	if capHit, ok := SegmentSphere(start, end, capA, radius, sweepRadius); ok && capHit.Fraction < bestT {
		bestT = capHit.Fraction
		found = true
	}
	if capHit, ok := SegmentSphere(start, end, capB, radius, sweepRadius); ok && capHit.Fraction < bestT {
		bestT = capHit.Fraction
		found = true
	}
	if !found {
		return SegmentHit{}, false
	}
	point := start.Add(n.Mul(bestT))
	onAxis := ClosestPointOnSegment(capA, capB, point)
	normal := point.Sub(onAxis)
	if normal.Len() < 1e-6 {
		normal = mgl32.Vec3{0, 1, 0}
	} else {
		normal = normal.Normalize()
	}
	return SegmentHit{Fraction: bestT, Point: point, Normal: normal}, true
}
