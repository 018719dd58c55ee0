package rewind

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/memmaker/rewind/engine/util"
)

type workerState int32

const (
	stateIdle workerState = iota
	stateDrainingSnapshots
	statePruningHistory
	stateProcessingQueries
	stateFlushingDebug
	stateStopped
)

type snapshotMsg struct {
	record *SourceRecord
	snap   Snapshot
}

// worker owns every piece of historical data exclusively. It runs on one
// dedicated goroutine, wakes when signalled, does one full drain-and-process
// cycle and goes back to sleep. It never spins and never blocks on the live
// thread.
type worker struct {
	cfg   Config
	world WorldTracer
	now   func() float64

	snapshots chan snapshotMsg
	queries   chan *Query
	debugOut  chan DrawCommand
	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}

	debugEnabled *atomic.Bool

	// worker-goroutine private from here on
	histories    map[*SourceRecord]*sourceHistory
	pendingDebug []DrawCommand
	state        atomic.Int32
}

func newWorker(cfg Config, world WorldTracer, now func() float64, debugEnabled *atomic.Bool) *worker {
	return &worker{
		cfg:          cfg,
		world:        world,
		now:          now,
		snapshots:    make(chan snapshotMsg, cfg.SnapshotQueueSize),
		queries:      make(chan *Query, cfg.QueryQueueSize),
		debugOut:     make(chan DrawCommand, cfg.DebugQueueSize),
		wake:         make(chan struct{}, 1),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		debugEnabled: debugEnabled,
		histories:    make(map[*SourceRecord]*sourceHistory),
	}
}

func (w *worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *worker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.cycle()
		case <-w.stop:
			// drain in-flight work before terminating
			w.cycle()
			w.setState(stateStopped)
			return
		}
	}
}

func (w *worker) cycle() {
	w.setState(stateDrainingSnapshots)
	w.drainSnapshots()
	w.setState(statePruningHistory)
	w.pruneHistories()
	w.setState(stateProcessingQueries)
	w.processQueries()
	w.setState(stateFlushingDebug)
	w.flushDebug()
	w.setState(stateIdle)
	util.LogWorkerDebug(fmt.Sprintf("[Worker] cycle complete, %d tracked source(s)", len(w.histories)))
}

func (w *worker) setState(s workerState) {
	w.state.Store(int32(s))
}

func (w *worker) currentState() workerState {
	return workerState(w.state.Load())
}

func (w *worker) drainSnapshots() {
	cutoff := w.now() - w.cfg.MaxWindow
	for {
		select {
		case msg := <-w.snapshots:
			if msg.record.IsUnregistered() {
				if _, tracked := w.histories[msg.record]; tracked {
					delete(w.histories, msg.record)
					util.LogHistoryDebug(fmt.Sprintf("[Worker] dropped history of unregistered source %s(%d)", msg.record.Name, msg.record.ID))
				}
				continue
			}
			hist, exists := w.histories[msg.record]
			if !exists {
				hist = newSourceHistory(msg.record)
				w.histories[msg.record] = hist
			}
			hist.Prepend(recordFromSnapshot(msg.snap))
			hist.PruneOlderThan(cutoff)
		default:
			return
		}
	}
}

func (w *worker) pruneHistories() {
	cutoff := w.now() - w.cfg.MaxWindow
	for rec, hist := range w.histories {
		// unregistration is best-effort on the live side, stale detection
		// here is the actual reclamation path
		if rec.IsUnregistered() {
			delete(w.histories, rec)
			util.LogHistoryInfo(fmt.Sprintf("[Worker] reclaimed history of stale source %s(%d)", rec.Name, rec.ID))
			continue
		}
		hist.PruneOlderThan(cutoff)
	}
}

func (w *worker) processQueries() {
	for {
		select {
		case query := <-w.queries:
			w.processQuery(query)
		default:
			return
		}
	}
}

// processQuery evaluates every tracked source independently; one invalid
// source never aborts processing for the others. A query always fulfills,
// with zero hits at worst, never with a fault.
func (w *worker) processQuery(query *Query) {
	// map iteration order is randomized per run, query output must not be
	ordered := make([]*sourceHistory, 0, len(w.histories))
	for rec, hist := range w.histories {
		if rec.IsUnregistered() {
			delete(w.histories, rec)
			continue
		}
		if query.Ignore[rec.ID] {
			continue
		}
		ordered = append(ordered, hist)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].record.ID < ordered[j].record.ID
	})

	hits := make([]Hit, 0, 4)
	for _, hist := range ordered {
		if hit, ok := w.testSource(hist.record, hist, query); ok {
			hits = append(hits, hit)
		}
	}

	if w.world != nil {
		hits = append(hits, w.world.Trace(query.Start, query.End, query.Radius, query.Channel)...)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Source < hits[j].Source
	})
	util.LogQueryDebug(fmt.Sprintf("[Worker] query %s at %0.4f -> %d hit(s)", query.ID, query.Timestamp, len(hits)))
	query.Result.Fulfill(Result{Timestamp: query.Timestamp, Hits: hits})
}

// testSource runs the full pipeline for one source: bracket, broadphase,
// interpolation, reconstruction, narrowphase. The returned hit is the nearest
// one across the source's shapes.
func (w *worker) testSource(rec *SourceRecord, hist *sourceHistory, query *Query) (Hit, bool) {
	older, newer, ok := hist.Bracket(query.Timestamp, w.cfg.EdgeSlack)
	if !ok {
		// no bracketing history, the source is simply not tracked at this time
		return Hit{}, false
	}

	atEdge := query.Timestamp > hist.head.Timestamp-w.cfg.EdgeSlack ||
		query.Timestamp < hist.tail.Timestamp+w.cfg.EdgeSlack
	verdict := broadphaseCull(older, newer, query, &w.cfg, atEdge)
	if w.debugEnabled.Load() {
		w.emitBroadphaseDebug(older, newer, query, verdict)
	}
	if verdict == broadphaseReject {
		return Hit{}, false
	}

	pose := interpolateRecords(older, newer, query.Timestamp)
	// the older record's mask governs inclusion when it changed mid-bracket
	if pose.Mask&query.Channel == 0 {
		return Hit{}, false
	}
	if w.debugEnabled.Load() {
		w.emitPoseDebug(&pose)
	}

	var best Hit
	found := false
	for i := range rec.Table.Shapes {
		shape := reconstructShape(&rec.Table.Shapes[i], &pose)
		// cheap per-shape pre-filter before the exact sweep
		if _, overlap := shape.Bounds().SegmentOverlap(query.Start, query.End, query.Radius); !overlap {
			continue
		}
		hit, hitOk := traceShape(shape, query.Start, query.End, query.Radius, rec)
		if !hitOk {
			continue
		}
		if !found || hit.Distance < best.Distance {
			best = hit
			found = true
		}
	}
	if found && w.debugEnabled.Load() {
		w.pendingDebug = append(w.pendingDebug, drawPointCommand(best.Entry, ColorHit))
	}
	return best, found
}

func (w *worker) emitBroadphaseDebug(older, newer *HistoryRecord, query *Query, verdict broadphaseVerdict) {
	color := ColorBroadphaseReject
	switch verdict {
	case broadphasePass:
		color = ColorBroadphasePass
	case broadphaseBypass:
		color = ColorBroadphaseBypass
	}
	padded := older.Bounds.Union(newer.Bounds).ExpandedBy(query.Radius + w.cfg.BroadphasePadding)
	w.pendingDebug = append(w.pendingDebug, drawBoxCommand(padded, color))
}

func (w *worker) emitPoseDebug(pose *Pose) {
	w.pendingDebug = append(w.pendingDebug, drawPointCommand(pose.Component.Position, ColorPose))
	previous := pose.Component.Position
	for _, bone := range pose.Bones {
		w.pendingDebug = append(w.pendingDebug, drawLineCommand(previous, bone.Position, ColorPose))
		previous = bone.Position
	}
}

func (w *worker) flushDebug() {
	for _, cmd := range w.pendingDebug {
		select {
		case w.debugOut <- cmd:
		default:
			// dropping is fine, these are diagnostics
		}
	}
	w.pendingDebug = w.pendingDebug[:0]
}
