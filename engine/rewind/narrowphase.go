package rewind

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/rewind/engine/util"
)

// intersect runs the entry test for the trace against this primitive. Tagged
// dispatch instead of an interface: the shape set is closed and this is the
// hottest call in query processing.
func (s worldShape) intersect(start, end mgl32.Vec3, radius float32) (util.SegmentHit, bool) {
	switch s.desc.Kind {
	case ShapeBox:
		return util.SegmentBox(start, end, s.center, s.rotation, s.halfExtents, radius)
	case ShapeSphere:
		return util.SegmentSphere(start, end, s.center, s.radius, radius)
	case ShapeCapsule:
		return util.SegmentCapsule(start, end, s.capA, s.capB, s.radius, radius)
	case ShapeConvex:
		return s.desc.Hull.IntersectSegment(start, end, s.hullTransform.MapPoint, radius)
	}
	return util.SegmentHit{}, false
}

// traceShape finds entry and, via a reverse sweep from the far end, exit of a
// straight-line path through the reconstructed shape. Depth is the in-shape
// distance along that path; no ricochet, no curved exit.
func traceShape(shape worldShape, start, end mgl32.Vec3, radius float32, source *SourceRecord) (Hit, bool) {
	entry, ok := shape.intersect(start, end, radius)
	if !ok {
		return Hit{}, false
	}
	hit := Hit{
		Source:      source.ID,
		ActorName:   source.Name,
		PartName:    shape.desc.Name,
		Entry:       entry.Point,
		EntryNormal: entry.Normal,
		Surface:     shape.desc.Surface,
		Distance:    entry.Point.Sub(start).Len(),
		Rewound:     true,
	}

	exit, exitOk := shape.intersect(end, start, radius)
	segmentLen := end.Sub(start).Len()
	if exitOk && exit.Fraction > 0 {
		hit.Exit = exit.Point
		hit.ExitNormal = exit.Normal
		hit.Depth = segmentLen * (1 - entry.Fraction - exit.Fraction)
		if hit.Depth < 0 {
			hit.Depth = 0
		}
	} else {
		// reverse sweep starting inside the shape, the trace ends within it
		hit.Exit = end
		hit.ExitNormal = entry.Normal.Mul(-1)
		hit.Depth = segmentLen * (1 - entry.Fraction)
	}
	return hit, true
}
