package rewind

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/memmaker/rewind/engine/util"
	"github.com/pkg/errors"
)

// Coordinator is the only public surface of the engine. It lives on the live
// simulation thread, owns the worker's lifecycle and funnels every snapshot
// and every query of one world through to it. Exactly one per world.
type Coordinator struct {
	cfg    Config
	worker *worker
	clock  func() float64

	mu      sync.Mutex
	sources map[SourceID]*SourceRecord
	nextID  SourceID

	running      atomic.Bool
	debugEnabled atomic.Bool
	debugSink    func(DrawCommand)
}

func NewCoordinator(cfg Config, world WorldTracer) *Coordinator {
	c := &Coordinator{
		cfg:     cfg,
		sources: make(map[SourceID]*SourceRecord),
	}
	start := time.Now()
	c.clock = func() float64 {
		return time.Since(start).Seconds()
	}
	c.worker = newWorker(cfg, world, func() float64 { return c.clock() }, &c.debugEnabled)
	return c
}

// SetClock replaces the monotonic clock, for tests. Must be called before Start.
func (c *Coordinator) SetClock(clock func() float64) {
	c.clock = clock
}

func (c *Coordinator) Now() float64 {
	return c.clock()
}

// Start spins up the one background worker for this world.
func (c *Coordinator) Start() {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	go c.worker.run()
	util.LogSystemInfo("[Coordinator] rewind worker started")
}

// Stop tears the worker down gracefully: in-flight snapshots and queries are
// drained and every pending query fulfills before the goroutine exits.
func (c *Coordinator) Stop() {
	if !c.running.CompareAndSwap(true, false) {
		return
	}
	close(c.worker.stop)
	<-c.worker.done
	util.LogSystemInfo("[Coordinator] rewind worker stopped")
}

// RegisterSource publishes an immutable shape table and begins tracking. The
// returned record is the handle for snapshot submission and unregistration.
func (c *Coordinator) RegisterSource(name string, table *ShapeTable) (*SourceRecord, error) {
	if table == nil || len(table.Shapes) == 0 {
		return nil, errors.Errorf("source %s has no collision shapes to track", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	rec := &SourceRecord{
		ID:    c.nextID,
		Name:  name,
		Table: table,
	}
	c.sources[rec.ID] = rec
	util.LogSystemInfo(fmt.Sprintf("[Coordinator] registered source %s(%d) with %d shape(s)", name, rec.ID, len(table.Shapes)))
	return rec, nil
}

// UnregisterSource is best-effort and eventually consistent: the worker
// reclaims the history on its next pass, never synchronously.
func (c *Coordinator) UnregisterSource(rec *SourceRecord) {
	if rec == nil {
		return
	}
	rec.MarkUnregistered()
	c.mu.Lock()
	delete(c.sources, rec.ID)
	c.mu.Unlock()
	c.worker.signal()
}

// SubmitSnapshot hands one value-copied snapshot to the worker. Never blocks;
// if the queue is full the snapshot is dropped, which costs one frame of
// history precision and nothing else.
func (c *Coordinator) SubmitSnapshot(rec *SourceRecord, snap Snapshot) {
	if rec == nil || rec.IsUnregistered() || !c.running.Load() {
		return
	}
	select {
	case c.worker.snapshots <- snapshotMsg{record: rec, snap: snap}:
		c.worker.signal()
	default:
		util.LogCaptureWarning(fmt.Sprintf("[Coordinator] snapshot queue full, dropped capture of %s(%d)", rec.Name, rec.ID))
	}
}

// RequestRewindTrace computes the target timestamp from the issuer's observed
// latency, enqueues the query and returns immediately. The future fulfills
// exactly once; callers may poll it, block on it or attach a continuation.
func (c *Coordinator) RequestRewindTrace(latencyMs float64, start, end mgl32.Vec3, radius float32, channel ResponseMask, ignore []SourceID) *util.Future[Result] {
	future := util.NewFuture[Result]()
	target := c.clock() - latencyMs/1000.0

	if !c.running.Load() {
		util.LogQueryError("[Coordinator] rewind trace requested while engine is stopped")
		future.Fulfill(Result{Timestamp: target})
		return future
	}

	query := &Query{
		ID:        uuid.New(),
		Timestamp: target,
		Start:     start,
		End:       end,
		Radius:    radius,
		Channel:   channel,
		Result:    future,
	}
	if len(ignore) > 0 {
		query.Ignore = make(map[SourceID]bool, len(ignore))
		for _, id := range ignore {
			query.Ignore[id] = true
		}
	}

	select {
	case c.worker.queries <- query:
		c.worker.signal()
		util.LogQueryInfo(fmt.Sprintf("[Coordinator] query %s targets %0.4f (%0.1fms of latency)", query.ID, target, latencyMs))
	default:
		// the contract is fulfill-always, a saturated queue degrades to an
		// empty compensated result instead of a stall
		util.LogQueryError(fmt.Sprintf("[Coordinator] query queue full, %s resolves without compensation", query.ID))
		future.Fulfill(Result{Timestamp: target})
	}
	return future
}

// Tick runs once per simulation step on the live thread: it wakes the worker
// so it never falls more than one step behind, and it drains the deferred
// debug-draw commands, which only the live thread may render.
func (c *Coordinator) Tick() {
	if !c.running.Load() {
		return
	}
	c.worker.signal()
	sink := c.debugSink
	for {
		select {
		case cmd := <-c.worker.debugOut:
			if sink != nil {
				sink(cmd)
			}
		default:
			return
		}
	}
}

// EnableDebugDraw toggles worker-side emission of draw commands.
func (c *Coordinator) EnableDebugDraw(enabled bool) {
	c.debugEnabled.Store(enabled)
}

// SetDebugSink installs the live-thread renderer callback for drained
// commands. Call before Start.
func (c *Coordinator) SetDebugSink(sink func(DrawCommand)) {
	c.debugSink = sink
}

// TrackedSources returns the ids of currently registered sources.
func (c *Coordinator) TrackedSources() []SourceID {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]SourceID, 0, len(c.sources))
	for id := range c.sources {
		ids = append(ids, id)
	}
	return ids
}
