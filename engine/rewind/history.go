package rewind

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/rewind/engine/util"
)

// HistoryRecord is the worker-owned form of a Snapshot. Records form a
// time-ordered doubly-linked sequence per source, newest at the head, with
// timestamps strictly non-increasing towards the tail.
type HistoryRecord struct {
	Timestamp float64
	Location  mgl32.Vec3
	Bounds    util.AABB
	Mask      ResponseMask
	Component util.Transform
	Bones     []util.Transform

	newer *HistoryRecord
	older *HistoryRecord
}

func (r *HistoryRecord) Older() *HistoryRecord {
	return r.older
}

func (r *HistoryRecord) Newer() *HistoryRecord {
	return r.newer
}

func recordFromSnapshot(snap Snapshot) *HistoryRecord {
	return &HistoryRecord{
		Timestamp: snap.Timestamp,
		Location:  snap.Location,
		Bounds:    snap.Bounds,
		Mask:      snap.Mask,
		Component: snap.Component,
		Bones:     snap.Bones,
	}
}

// sourceHistory is owned exclusively by the worker goroutine. Nothing here is
// synchronized and nothing here may ever be touched by another goroutine.
type sourceHistory struct {
	record *SourceRecord
	head   *HistoryRecord // newest
	tail   *HistoryRecord // oldest
	count  int
}

func newSourceHistory(record *SourceRecord) *sourceHistory {
	return &sourceHistory{record: record}
}

func (h *sourceHistory) Count() int {
	return h.count
}

// Prepend inserts a record, keeping the head-to-tail timestamp order. Records
// arrive through a FIFO queue so the common case is a straight prepend; the
// walk only happens if a producer ever submits out of order.
func (h *sourceHistory) Prepend(rec *HistoryRecord) {
	if h.head == nil {
		h.head = rec
		h.tail = rec
		h.count++
		return
	}
	if rec.Timestamp >= h.head.Timestamp {
		rec.older = h.head
		h.head.newer = rec
		h.head = rec
		h.count++
		return
	}
	insertAfter := h.head
	for insertAfter.older != nil && insertAfter.older.Timestamp > rec.Timestamp {
		insertAfter = insertAfter.older
	}
	rec.older = insertAfter.older
	rec.newer = insertAfter
	if insertAfter.older != nil {
		insertAfter.older.newer = rec
	} else {
		h.tail = rec
	}
	insertAfter.older = rec
	h.count++
	util.LogHistoryDebug(fmt.Sprintf("[History] out-of-order snapshot for %s at %0.4f", h.record.Name, rec.Timestamp))
}

// PruneOlderThan drops every record with a timestamp before the cutoff,
// walking from the tail so the cost is proportional to what gets dropped.
func (h *sourceHistory) PruneOlderThan(cutoff float64) int {
	pruned := 0
	for h.tail != nil && h.tail.Timestamp < cutoff {
		dropped := h.tail
		h.tail = dropped.newer
		if h.tail != nil {
			h.tail.older = nil
		} else {
			h.head = nil
		}
		dropped.newer = nil
		h.count--
		pruned++
	}
	return pruned
}

// Bracket finds the two records enclosing the timestamp: older.Timestamp <= ts
// <= newer.Timestamp. A timestamp within edgeSlack outside the window clamps
// to the boundary record (both return values identical). A timestamp further
// outside yields ok=false, the source is simply not tracked at that time.
func (h *sourceHistory) Bracket(ts float64, edgeSlack float64) (older, newer *HistoryRecord, ok bool) {
	if h.head == nil {
		return nil, nil, false
	}
	if ts > h.head.Timestamp {
		if ts-h.head.Timestamp <= edgeSlack {
			return h.head, h.head, true
		}
		return nil, nil, false
	}
	if ts < h.tail.Timestamp {
		if h.tail.Timestamp-ts <= edgeSlack {
			return h.tail, h.tail, true
		}
		return nil, nil, false
	}
	current := h.head
	for current.older != nil && current.older.Timestamp > ts {
		current = current.older
	}
	if current.Timestamp == ts || current.older == nil {
		return current, current, true
	}
	if current.older.Timestamp == ts {
		// an exact match reproduces the stored record, no blending
		return current.older, current.older, true
	}
	return current.older, current, true
}

// Validate checks the head-to-tail ordering invariant. Test hook.
func (h *sourceHistory) Validate() bool {
	for rec := h.head; rec != nil && rec.older != nil; rec = rec.older {
		if rec.older.Timestamp > rec.Timestamp {
			return false
		}
	}
	return true
}
