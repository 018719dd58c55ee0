package rewind

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/rewind/engine/util"
)

type broadphaseVerdict int

const (
	broadphaseReject broadphaseVerdict = iota
	broadphasePass
	broadphaseBypass
)

// broadphaseCull runs against every tracked source on every query, so the
// cheap tests come first. The union of the bracketing bounds, padded by trace
// radius plus a small epsilon, covers everything interpolation could produce
// between them.
// atWindowEdge is true when the target timestamp sits within one frame of the
// history window's head or tail, where interpolation uncertainty is highest.
func broadphaseCull(older, newer *HistoryRecord, query *Query, cfg *Config, atWindowEdge bool) broadphaseVerdict {
	padding := query.Radius + cfg.BroadphasePadding
	padded := older.Bounds.Union(newer.Bounds).ExpandedBy(padding)

	// quick segment-vs-volume slab test, the common fast path
	if _, overlap := padded.SegmentOverlap(query.Start, query.End, 0); overlap {
		return broadphasePass
	}

	// full swept-shape-vs-volume test
	traceExtent := 2 * query.Radius
	traceBox := util.NewAABB(query.Start, mgl32.Vec3{traceExtent, traceExtent, traceExtent})
	sweep := util.SweepAABB(traceBox, padded, query.End.Sub(query.Start))
	if sweep.Result < 1.0 || sweep.MinkowskiDifferenceContainsOrigin {
		return broadphasePass
	}

	// bypass conditions, each one a narrow exception that avoids a false
	// reject at the boundaries of what broadphase can know

	// the trace passes within the padding threshold of the volume
	closest := util.ClosestPointOnSegment(query.Start, query.End, padded.Center())
	if padded.DistanceToPoint(closest) <= cfg.BroadphasePadding {
		return broadphaseBypass
	}

	// the trace points toward the volume, glancing near-misses stay in
	traceDir := query.End.Sub(query.Start)
	if traceDir.Dot(padded.Center().Sub(query.Start)) > 0 {
		return broadphaseBypass
	}

	if atWindowEdge {
		return broadphaseBypass
	}

	// negligible motion between the brackets, interpolation error immaterial
	if newer.Location.Sub(older.Location).Len() < cfg.NegligibleMotion {
		return broadphaseBypass
	}

	return broadphaseReject
}
