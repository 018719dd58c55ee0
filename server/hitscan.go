package server

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/rewind/engine/rewind"
	"github.com/memmaker/rewind/engine/util"
)

// ShotOutcome is what a hitscan attack reports back to the combat layer.
type ShotOutcome struct {
	Origin      mgl32.Vec3
	Destination mgl32.Vec3
	Hits        []rewind.Hit
	RewoundTo   float64
}

func (o ShotOutcome) HitActor() bool {
	for _, hit := range o.Hits {
		if hit.Rewound {
			return true
		}
	}
	return false
}

type HitscanAction struct {
	coordinator      *rewind.Coordinator
	shooterName      string
	shooterSource    rewind.SourceID
	createRay        func() (mgl32.Vec3, mgl32.Vec3)
	lastAimDirection mgl32.Vec3
	latencyMs        float64
	maxRange         float32
	bulletRadius     float32
	shotsPerTrigger  int
}

func NewPerfectHitscan(coordinator *rewind.Coordinator, shooterName string, shooterSource rewind.SourceID, rayStart, rayEnd mgl32.Vec3, latencyMs float64) *HitscanAction {
	aimDirection := rayEnd.Sub(rayStart).Normalize()
	a := &HitscanAction{
		coordinator:     coordinator,
		shooterName:     shooterName,
		shooterSource:   shooterSource,
		latencyMs:       latencyMs,
		maxRange:        rayEnd.Sub(rayStart).Len(),
		bulletRadius:    0,
		shotsPerTrigger: 1,
	}
	a.createRay = func() (mgl32.Vec3, mgl32.Vec3) {
		a.lastAimDirection = aimDirection
		return rayStart, aimDirection
	}
	return a
}

func NewSpreadHitscan(coordinator *rewind.Coordinator, shooterName string, shooterSource rewind.SourceID, rays [][2]mgl32.Vec3, maxRange float32, latencyMs float64) *HitscanAction {
	rayCalls := 0
	a := &HitscanAction{
		coordinator:     coordinator,
		shooterName:     shooterName,
		shooterSource:   shooterSource,
		latencyMs:       latencyMs,
		maxRange:        maxRange,
		bulletRadius:    0,
		shotsPerTrigger: len(rays),
	}
	a.createRay = func() (mgl32.Vec3, mgl32.Vec3) {
		ray := rays[rayCalls%len(rays)]
		direction := ray[1].Sub(ray[0]).Normalize()
		a.lastAimDirection = direction
		rayCalls++
		return ray[0], direction
	}
	return a
}

func (a *HitscanAction) SetBulletRadius(radius float32) {
	a.bulletRadius = radius
}

func (a *HitscanAction) IsValid() (bool, string) {
	if a.latencyMs < 0 {
		return false, "negative latency"
	}
	if a.maxRange <= 0 {
		return false, "weapon has no range"
	}
	return true, ""
}

// Execute fires all pellets of this trigger pull. Each pellet runs a full
// rewind query against the recorded history; we block on the futures here
// because a server action resolves synchronously inside its turn.
func (a *HitscanAction) Execute() []ShotOutcome {
	outcomes := make([]ShotOutcome, 0, a.shotsPerTrigger)
	ignore := []rewind.SourceID{a.shooterSource}

	for i := 0; i < a.shotsPerTrigger; i++ {
		origin, direction := a.createRay()
		endOfRay := origin.Add(direction.Mul(a.maxRange))
		util.LogQueryDebug(fmt.Sprintf("[HitscanAction] %s fires from (%0.2f, %0.2f, %0.2f) towards (%0.2f, %0.2f, %0.2f) at %0.1fms latency", a.shooterName, origin.X(), origin.Y(), origin.Z(), endOfRay.X(), endOfRay.Y(), endOfRay.Z(), a.latencyMs))

		future := a.coordinator.RequestRewindTrace(a.latencyMs, origin, endOfRay, a.bulletRadius, rewind.ChannelHitscan, ignore)
		a.coordinator.Tick()
		result := future.Wait()

		outcome := ShotOutcome{
			Origin:      origin,
			Destination: endOfRay,
			Hits:        result.Hits,
			RewoundTo:   result.Timestamp,
		}
		if len(result.Hits) > 0 {
			first := result.Hits[0]
			outcome.Destination = first.Entry
			util.LogQueryDebug(fmt.Sprintf("[HitscanAction] HIT -> %s %s at (%0.2f, %0.2f, %0.2f)", first.ActorName, first.PartName, first.Entry.X(), first.Entry.Y(), first.Entry.Z()))
		} else {
			util.LogQueryDebug(fmt.Sprintf("[HitscanAction] MISS -> no collision within range"))
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
