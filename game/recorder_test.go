package game

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/rewind/engine/rewind"
	"github.com/memmaker/rewind/engine/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubActor struct {
	name      string
	alive     bool
	transform util.Transform
	bones     []util.Transform
	mask      rewind.ResponseMask
}

func (a *stubActor) GetName() string                      { return a.name }
func (a *stubActor) IsAlive() bool                        { return a.alive }
func (a *stubActor) GetTransform() util.Transform         { return a.transform }
func (a *stubActor) GetBoneTransforms() []util.Transform  { return a.bones }
func (a *stubActor) GetResponseMask() rewind.ResponseMask { return a.mask }

func (a *stubActor) GetBounds() util.AABB {
	return util.NewAABB(a.transform.Position, mgl32.Vec3{2, 2, 2})
}

type settableClock struct {
	bits atomic.Uint64
}

func (c *settableClock) Set(t float64) { c.bits.Store(math.Float64bits(t)) }
func (c *settableClock) Now() float64  { return math.Float64frombits(c.bits.Load()) }

func simpleTable() *rewind.ShapeTable {
	return &rewind.ShapeTable{Shapes: []rewind.ShapeDescriptor{{
		Kind:        rewind.ShapeBox,
		Local:       util.NewDefaultTransform(),
		HalfExtents: mgl32.Vec3{1, 1, 1},
		Bone:        rewind.WholeComponent,
		Name:        "body",
	}}}
}

func TestRecorderCaptureFeedsQueries(t *testing.T) {
	clock := &settableClock{}
	coordinator := rewind.NewCoordinator(rewind.DefaultConfig(), nil)
	coordinator.SetClock(clock.Now)
	coordinator.Start()
	t.Cleanup(coordinator.Stop)

	actor := &stubActor{
		name:      "grunt",
		alive:     true,
		transform: util.NewTranslation(mgl32.Vec3{0, 0, 0}),
		mask:      rewind.ChannelAll,
	}
	recorder, err := RegisterActor(coordinator, actor, MeshStatic, simpleTable())
	require.NoError(t, err)

	recorder.Capture()
	clock.Set(0.1)
	actor.transform = util.NewTranslation(mgl32.Vec3{10, 0, 0})
	recorder.Capture()

	result := coordinator.RequestRewindTrace(50, mgl32.Vec3{5, -5, 0}, mgl32.Vec3{5, 5, 0}, 0, rewind.ChannelHitscan, nil).Wait()
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "grunt", result.Hits[0].ActorName)
	assert.Equal(t, recorder.SourceID(), result.Hits[0].Source)
}

func TestRecorderSkeletalCapturesBones(t *testing.T) {
	clock := &settableClock{}
	coordinator := rewind.NewCoordinator(rewind.DefaultConfig(), nil)
	coordinator.SetClock(clock.Now)
	coordinator.Start()
	t.Cleanup(coordinator.Stop)

	table := &rewind.ShapeTable{Shapes: []rewind.ShapeDescriptor{{
		Kind:   rewind.ShapeSphere,
		Local:  util.NewDefaultTransform(),
		Radius: 0.5,
		Bone:   0,
		Name:   "head",
	}}}
	actor := &stubActor{
		name:      "soldier",
		alive:     true,
		transform: util.NewTranslation(mgl32.Vec3{0, 0, 0}),
		bones:     []util.Transform{util.NewTranslation(mgl32.Vec3{0, 2, 0})},
		mask:      rewind.ChannelAll,
	}
	recorder, err := RegisterActor(coordinator, actor, MeshSkeletal, table)
	require.NoError(t, err)

	recorder.OnAnimationEvaluated()

	result := coordinator.RequestRewindTrace(0, mgl32.Vec3{0, 2, -5}, mgl32.Vec3{0, 2, 5}, 0, rewind.ChannelHitscan, nil).Wait()
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "head", result.Hits[0].PartName)
}

func TestRecorderSkipsDeadActors(t *testing.T) {
	clock := &settableClock{}
	coordinator := rewind.NewCoordinator(rewind.DefaultConfig(), nil)
	coordinator.SetClock(clock.Now)
	coordinator.Start()
	t.Cleanup(coordinator.Stop)

	actor := &stubActor{
		name:      "corpse",
		alive:     false,
		transform: util.NewTranslation(mgl32.Vec3{0, 0, 0}),
		mask:      rewind.ChannelAll,
	}
	recorder, err := RegisterActor(coordinator, actor, MeshStatic, simpleTable())
	require.NoError(t, err)

	recorder.Capture()
	result := coordinator.RequestRewindTrace(0, mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{5, 0, 0}, 0, rewind.ChannelHitscan, nil).Wait()
	assert.Empty(t, result.Hits)
}

func TestRecorderUnregisterStopsTracking(t *testing.T) {
	clock := &settableClock{}
	coordinator := rewind.NewCoordinator(rewind.DefaultConfig(), nil)
	coordinator.SetClock(clock.Now)
	coordinator.Start()
	t.Cleanup(coordinator.Stop)

	actor := &stubActor{
		name:      "leaver",
		alive:     true,
		transform: util.NewTranslation(mgl32.Vec3{0, 0, 0}),
		mask:      rewind.ChannelAll,
	}
	recorder, err := RegisterActor(coordinator, actor, MeshStatic, simpleTable())
	require.NoError(t, err)

	recorder.Capture()
	recorder.Unregister()
	// captures after unregistration are silently dropped
	recorder.Capture()

	result := coordinator.RequestRewindTrace(0, mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{5, 0, 0}, 0, rewind.ChannelHitscan, nil).Wait()
	assert.Empty(t, result.Hits)
}
