package rewind

import (
	"github.com/memmaker/rewind/engine/util"
)

// Pose is a source's reconstructed state at the query's target timestamp.
type Pose struct {
	Component util.Transform
	Bones     []util.Transform
	Mask      ResponseMask
}

// interpolateRecords blends the two bracketing records at the fractional
// position of the target timestamp between them. Interpolating exactly at a
// record's timestamp returns that record's pose unchanged.
//
// The response mask is taken from the older record: the query targets a past
// instant, and the state at-or-before that instant is what the shooter could
// have observed.
func interpolateRecords(older, newer *HistoryRecord, ts float64) Pose {
	alpha := 0.0
	if newer != older && newer.Timestamp > older.Timestamp {
		alpha = util.Clamp01((ts - older.Timestamp) / (newer.Timestamp - older.Timestamp))
	}
	pose := Pose{
		Component: older.Component.Lerp(newer.Component, alpha),
		Mask:      older.Mask,
	}
	if len(older.Bones) == 0 && len(newer.Bones) == 0 {
		return pose
	}
	boneCount := len(older.Bones)
	if len(newer.Bones) < boneCount {
		boneCount = len(newer.Bones)
	}
	bones := make([]util.Transform, 0, boneCount)
	for i := 0; i < boneCount; i++ {
		bones = append(bones, older.Bones[i].Lerp(newer.Bones[i], alpha))
	}
	// a bone count mismatch means the skeleton changed between the records,
	// extra bones come unblended from the older side
	for i := boneCount; i < len(older.Bones); i++ {
		bones = append(bones, older.Bones[i])
	}
	pose.Bones = bones
	return pose
}
