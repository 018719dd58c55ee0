package game

import (
	"github.com/memmaker/rewind/engine/rewind"
	"github.com/memmaker/rewind/engine/util"
)

// Actor is what the recorder needs from a live simulation object. Skeletal
// actors expose their post-evaluation bone transforms in world space; rigid
// actors return nil bones and are tracked by their component transform alone.
type Actor interface {
	GetName() string
	IsAlive() bool
	GetTransform() util.Transform
	GetBoneTransforms() []util.Transform
	GetBounds() util.AABB
	GetResponseMask() rewind.ResponseMask
}
