package server

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/rewind/engine/rewind"
	"github.com/memmaker/rewind/engine/util"
)

// SurfaceBlock is one piece of untracked static geometry. These never rewind,
// a trace against them always runs at current state.
type SurfaceBlock struct {
	Bounds  util.AABB
	Surface string
	Channel rewind.ResponseMask
}

// StaticWorld is the non-compensated side of a rewind query. The worker calls
// Trace from its own goroutine while the live thread may add blocks, hence the
// read lock; block geometry itself never mutates after insertion.
type StaticWorld struct {
	mu     sync.RWMutex
	blocks []SurfaceBlock
}

func NewStaticWorld() *StaticWorld {
	return &StaticWorld{}
}

func (w *StaticWorld) AddBlock(bounds util.AABB, surface string, channel rewind.ResponseMask) {
	w.mu.Lock()
	w.blocks = append(w.blocks, SurfaceBlock{Bounds: bounds, Surface: surface, Channel: channel})
	w.mu.Unlock()
}

func (w *StaticWorld) Trace(start, end mgl32.Vec3, radius float32, channel rewind.ResponseMask) []rewind.Hit {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var hits []rewind.Hit
	identity := mgl32.QuatIdent()
	for i := range w.blocks {
		block := &w.blocks[i]
		if block.Channel&channel == 0 {
			continue
		}
		entry, ok := util.SegmentBox(start, end, block.Bounds.Center(), identity, block.Bounds.Extents().Mul(0.5), radius)
		if !ok {
			continue
		}
		hit := rewind.Hit{
			Entry:       entry.Point,
			EntryNormal: entry.Normal,
			Surface:     block.Surface,
			Distance:    entry.Point.Sub(start).Len(),
		}
		exit, exitOk := util.SegmentBox(end, start, block.Bounds.Center(), identity, block.Bounds.Extents().Mul(0.5), radius)
		segmentLen := end.Sub(start).Len()
		if exitOk && exit.Fraction > 0 {
			hit.Exit = exit.Point
			hit.ExitNormal = exit.Normal
			hit.Depth = segmentLen * (1 - entry.Fraction - exit.Fraction)
			if hit.Depth < 0 {
				hit.Depth = 0
			}
		} else {
			hit.Exit = end
			hit.ExitNormal = entry.Normal.Mul(-1)
			hit.Depth = segmentLen * (1 - entry.Fraction)
		}
		hits = append(hits, hit)
	}
	return hits
}
