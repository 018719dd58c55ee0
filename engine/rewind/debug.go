package rewind

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/rewind/engine/util"
)

// The worker never calls rendering APIs. It only ever enqueues one of these
// descriptions; the live thread drains them during Tick and draws.

type DrawKind int

const (
	DrawLine DrawKind = iota
	DrawBox
	DrawSphere
	DrawPoint
)

type DrawColor [3]float32

var (
	ColorBroadphasePass   = DrawColor{0, 1, 0}
	ColorBroadphaseBypass = DrawColor{1, 1, 0}
	ColorBroadphaseReject = DrawColor{1, 0, 0}
	ColorPose             = DrawColor{0, 0.5, 1}
	ColorHit              = DrawColor{1, 0.5, 0}
)

type DrawCommand struct {
	Kind   DrawKind
	From   mgl32.Vec3
	To     mgl32.Vec3
	Bounds util.AABB
	Radius float32
	Color  DrawColor
}

func drawLineCommand(from, to mgl32.Vec3, color DrawColor) DrawCommand {
	return DrawCommand{Kind: DrawLine, From: from, To: to, Color: color}
}

func drawBoxCommand(bounds util.AABB, color DrawColor) DrawCommand {
	return DrawCommand{Kind: DrawBox, Bounds: bounds, Color: color}
}

func drawPointCommand(at mgl32.Vec3, color DrawColor) DrawCommand {
	return DrawCommand{Kind: DrawPoint, From: at, Color: color}
}
