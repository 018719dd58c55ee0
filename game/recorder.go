package game

import (
	"fmt"

	"github.com/memmaker/rewind/engine/rewind"
	"github.com/memmaker/rewind/engine/util"
)

type MeshKind int

const (
	MeshSkeletal MeshKind = iota
	MeshStatic
)

// SourceRecorder captures one actor's collidable geometry once per simulation
// step and hands the value-copied snapshot to the coordinator. For skeletal
// actors OnAnimationEvaluated must be wired to fire after animation evaluation
// completes, so the captured pose is frame-accurate and never a stale partial
// one. Static actors call Capture from a fixed-order per-frame update instead.
type SourceRecorder struct {
	actor       Actor
	meshKind    MeshKind
	coordinator *rewind.Coordinator
	record      *rewind.SourceRecord
}

// RegisterActor extracts nothing itself; the shape table is authored data the
// caller already built (BuildShapeTable, ShapeTableFromGLTF). It is published
// once here and never mutated afterwards.
func RegisterActor(coordinator *rewind.Coordinator, actor Actor, meshKind MeshKind, table *rewind.ShapeTable) (*SourceRecorder, error) {
	record, err := coordinator.RegisterSource(actor.GetName(), table)
	if err != nil {
		return nil, err
	}
	util.LogCaptureDebug(fmt.Sprintf("[Recorder] began capture for %s(%d)", actor.GetName(), record.ID))
	return &SourceRecorder{
		actor:       actor,
		meshKind:    meshKind,
		coordinator: coordinator,
		record:      record,
	}, nil
}

func (r *SourceRecorder) SourceID() rewind.SourceID {
	return r.record.ID
}

// OnAnimationEvaluated is the post-evaluation callback hook for skeletal actors.
func (r *SourceRecorder) OnAnimationEvaluated() {
	if r.meshKind == MeshSkeletal {
		r.Capture()
	}
}

// Capture produces one snapshot of the actor's current collidable state. Runs
// on the live simulation thread; everything handed off is copied by value.
func (r *SourceRecorder) Capture() {
	if r.record == nil || r.record.IsUnregistered() {
		return
	}
	if !r.actor.IsAlive() {
		// actor destruction can race the per-frame schedule, the worker
		// prunes the history on its own once we stop feeding it
		return
	}
	snap := rewind.Snapshot{
		Timestamp: r.coordinator.Now(),
		Component: r.actor.GetTransform(),
		Bounds:    r.actor.GetBounds(),
		Mask:      r.actor.GetResponseMask(),
	}
	snap.Location = snap.Component.Position
	if r.meshKind == MeshSkeletal {
		bones := r.actor.GetBoneTransforms()
		if len(bones) > 0 {
			copied := make([]util.Transform, len(bones))
			copy(copied, bones)
			snap.Bones = copied
		}
	}
	r.coordinator.SubmitSnapshot(r.record, snap)
}

// Unregister stops capture. Best-effort: the history sequence is reclaimed by
// the worker on its next pass, not synchronously.
func (r *SourceRecorder) Unregister() {
	if r.record == nil {
		return
	}
	r.coordinator.UnregisterSource(r.record)
	util.LogCaptureDebug(fmt.Sprintf("[Recorder] stopped capture for %s(%d)", r.actor.GetName(), r.record.ID))
}
