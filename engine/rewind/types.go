package rewind

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/memmaker/rewind/engine/util"
)

type SourceID uint64

// BoneIndex addresses one bone of a skeletal pose. WholeComponent marks shapes
// that follow the actor's component transform instead of a bone.
type BoneIndex int

const WholeComponent BoneIndex = -1

type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCapsule
	ShapeConvex
)

func (k ShapeKind) ToString() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	case ShapeConvex:
		return "convex"
	}
	return "unknown"
}

// ShapeDescriptor is one entry of a source's authored collision geometry, in
// the local space of its owning bone. Which dimension fields matter depends on
// Kind: HalfExtents for boxes, Radius for spheres, Radius+HalfHeight for
// capsules (axis along local Y), Hull for convex shapes.
type ShapeDescriptor struct {
	Kind        ShapeKind
	Local       util.Transform
	HalfExtents mgl32.Vec3
	Radius      float32
	HalfHeight  float32
	Hull        *util.ConvexHull
	Bone        BoneIndex
	Name        string
	Surface     string
}

// ShapeTable is extracted once at registration and never mutated afterwards,
// which is what makes it safe to read from the worker without locking.
type ShapeTable struct {
	Shapes []ShapeDescriptor
}

type ResponseMask uint32

const (
	ChannelNone       ResponseMask = 0
	ChannelHitscan    ResponseMask = 1 << 0
	ChannelProjectile ResponseMask = 1 << 1
	ChannelMelee      ResponseMask = 1 << 2
	ChannelAll        ResponseMask = ^ResponseMask(0)
)

// Snapshot is the value-copied capture of one actor's collidable state at one
// instant. It carries no live object references, only copied transform data,
// so handing it to the worker can never race with actor destruction.
type Snapshot struct {
	Timestamp float64
	Location  mgl32.Vec3
	Bounds    util.AABB
	Mask      ResponseMask
	Component util.Transform
	Bones     []util.Transform // world-space, one per bone; nil for rigid sources
}

// SourceRecord is the registration record shared between the live thread and
// the worker. The table is published through the snapshot queue and read-only
// afterwards; the unregistered flag is the only mutable cross-thread field.
type SourceRecord struct {
	ID           SourceID
	Name         string
	Table        *ShapeTable
	unregistered atomic.Bool
}

func (s *SourceRecord) MarkUnregistered() {
	s.unregistered.Store(true)
}

func (s *SourceRecord) IsUnregistered() bool {
	return s.unregistered.Load()
}

// Query is a request to test a trace against reconstructed historical poses.
// Fulfilled exactly once, never cancelled mid-flight.
type Query struct {
	ID        uuid.UUID
	Timestamp float64
	Start     mgl32.Vec3
	End       mgl32.Vec3
	Radius    float32
	Channel   ResponseMask
	Ignore    map[SourceID]bool
	Result    *util.Future[Result]
}

// Hit is one geometric intersection, entry and exit along the straight path
// through the shape. Physical consequences are the caller's concern.
type Hit struct {
	Source      SourceID
	ActorName   string
	PartName    string
	Entry       mgl32.Vec3
	EntryNormal mgl32.Vec3
	Exit        mgl32.Vec3
	ExitNormal  mgl32.Vec3
	Depth       float32
	Surface     string
	Distance    float32
	Rewound     bool // false for hits from the non-compensated world trace
}

// Result is the ordered (nearest entry first) outcome of one rewind query.
// Zero hits is a successful result, not an error.
type Result struct {
	Timestamp float64
	Hits      []Hit
}

// WorldTracer is the non-compensated trace against untracked world geometry,
// evaluated at current state. Implementations are called from the worker
// goroutine and must be safe for concurrent use with live-thread mutation.
type WorldTracer interface {
	Trace(start, end mgl32.Vec3, radius float32, channel ResponseMask) []Hit
}
