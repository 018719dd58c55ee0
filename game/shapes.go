package game

import (
	"fmt"
	"os"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	jsoniter "github.com/json-iterator/go"
	"github.com/memmaker/rewind/engine/rewind"
	"github.com/memmaker/rewind/engine/util"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ShapePartDefinition is the authored JSON form of one collision shape.
type ShapePartDefinition struct {
	Name        string       `json:"name"`
	Kind        string       `json:"kind"` // box, sphere, capsule, convex
	Bone        int          `json:"bone"` // -1 tracks the whole component
	Offset      [3]float32   `json:"offset"`
	Rotation    [4]float32   `json:"rotation"` // quaternion xyzw, identity when omitted
	HalfExtents [3]float32   `json:"halfExtents"`
	Radius      float32      `json:"radius"`
	HalfHeight  float32      `json:"halfHeight"`
	Surface     string       `json:"surface"`
	Points      [][3]float32 `json:"points"`
	Indices     []uint32     `json:"indices"`
}

// BuildShapeTable converts authored part definitions into the immutable
// descriptor table. An unsupported kind with convex points falls back to a
// convex approximation; without points it is skipped with a warning. Neither
// case is fatal.
func BuildShapeTable(parts []ShapePartDefinition) (*rewind.ShapeTable, error) {
	table := &rewind.ShapeTable{}
	for _, part := range parts {
		local := util.NewDefaultTransform()
		local.Position = mgl32.Vec3{part.Offset[0], part.Offset[1], part.Offset[2]}
		if part.Rotation != ([4]float32{}) {
			local.Rotation = mgl32.Quat{W: part.Rotation[3], V: mgl32.Vec3{part.Rotation[0], part.Rotation[1], part.Rotation[2]}}.Normalize()
		}
		desc := rewind.ShapeDescriptor{
			Local:   local,
			Bone:    rewind.BoneIndex(part.Bone),
			Name:    part.Name,
			Surface: part.Surface,
		}
		switch strings.ToLower(part.Kind) {
		case "box":
			desc.Kind = rewind.ShapeBox
			desc.HalfExtents = mgl32.Vec3{part.HalfExtents[0], part.HalfExtents[1], part.HalfExtents[2]}
		case "sphere":
			desc.Kind = rewind.ShapeSphere
			desc.Radius = part.Radius
		case "capsule":
			desc.Kind = rewind.ShapeCapsule
			desc.Radius = part.Radius
			desc.HalfHeight = part.HalfHeight
		case "convex":
			desc.Kind = rewind.ShapeConvex
			desc.Hull = hullFromArrays(part.Points, part.Indices)
		default:
			if len(part.Points) > 0 {
				util.LogCaptureWarning(fmt.Sprintf("[Shapes] unsupported kind '%s' for %s, approximating as convex", part.Kind, part.Name))
				desc.Kind = rewind.ShapeConvex
				desc.Hull = hullFromArrays(part.Points, part.Indices)
			} else {
				util.LogCaptureWarning(fmt.Sprintf("[Shapes] unsupported kind '%s' for %s, skipped", part.Kind, part.Name))
				continue
			}
		}
		if desc.Kind == rewind.ShapeConvex && (desc.Hull == nil || len(desc.Hull.Points) == 0) {
			util.LogCaptureWarning(fmt.Sprintf("[Shapes] convex part %s has no points, skipped", part.Name))
			continue
		}
		table.Shapes = append(table.Shapes, desc)
	}
	if len(table.Shapes) == 0 {
		return nil, errors.New("shape table ended up empty, nothing trackable")
	}
	return table, nil
}

func LoadShapeTable(path string) (*rewind.ShapeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read shape table %s", path)
	}
	var parts []ShapePartDefinition
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, errors.Wrapf(err, "could not parse shape table %s", path)
	}
	return BuildShapeTable(parts)
}

func hullFromArrays(points [][3]float32, indices []uint32) *util.ConvexHull {
	converted := make([]mgl32.Vec3, len(points))
	for i, p := range points {
		converted[i] = mgl32.Vec3{p[0], p[1], p[2]}
	}
	return util.NewConvexHull(converted, indices)
}

// ShapeTableFromGLTF extracts collision shapes from a glTF document. Nodes
// whose names carry the usual authoring prefixes become primitives:
// UBX_ box, USP_ sphere, UCP_ capsule (axis along local Y), UCX_ convex.
// Any other node with a mesh is approximated as convex. boneForNode maps a
// node name to the owning bone of the runtime skeleton, nil means every shape
// follows the whole component.
func ShapeTableFromGLTF(filename string, boneForNode func(nodeName string) rewind.BoneIndex) (*rewind.ShapeTable, error) {
	doc, err := gltf.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open collision gltf %s", filename)
	}
	table := &rewind.ShapeTable{}
	for _, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		positions, indices, err := meshGeometry(doc, *node.Mesh)
		if err != nil {
			util.LogCaptureWarning(fmt.Sprintf("[Shapes] skipping node %s: %s", node.Name, err.Error()))
			continue
		}
		if len(positions) == 0 {
			continue
		}
		desc := rewind.ShapeDescriptor{
			Local:   transformFromNode(node),
			Bone:    rewind.WholeComponent,
			Name:    node.Name,
			Surface: "flesh",
		}
		if boneForNode != nil {
			desc.Bone = boneForNode(node.Name)
		}

		boundsMin, boundsMax := pointBounds(positions)
		center := boundsMin.Add(boundsMax).Mul(0.5)
		halfExtents := boundsMax.Sub(boundsMin).Mul(0.5)
		// fold the geometry centroid into the local offset so primitive
		// shapes sit where the authored mesh sits
		desc.Local.Position = desc.Local.MapPoint(center)

		switch {
		case strings.HasPrefix(node.Name, "UBX_"):
			desc.Kind = rewind.ShapeBox
			desc.HalfExtents = halfExtents
		case strings.HasPrefix(node.Name, "USP_"):
			desc.Kind = rewind.ShapeSphere
			desc.Radius = util.Max3(halfExtents.X(), halfExtents.Y(), halfExtents.Z())
		case strings.HasPrefix(node.Name, "UCP_"):
			desc.Kind = rewind.ShapeCapsule
			desc.Radius = math32.Max(halfExtents.X(), halfExtents.Z())
			desc.HalfHeight = math32.Max(halfExtents.Y()-desc.Radius, 0)
		default:
			// unsupported or UCX_, both end up as a convex approximation
			desc.Kind = rewind.ShapeConvex
			desc.Local = transformFromNode(node)
			local := make([]mgl32.Vec3, len(positions))
			for i, p := range positions {
				local[i] = mgl32.Vec3{p[0], p[1], p[2]}
			}
			desc.Hull = util.NewConvexHull(local, indices)
		}
		table.Shapes = append(table.Shapes, desc)
	}
	if len(table.Shapes) == 0 {
		return nil, errors.Errorf("no collision nodes found in %s", filename)
	}
	return table, nil
}

func transformFromNode(node *gltf.Node) util.Transform {
	translation := node.TranslationOrDefault()
	rotation := node.RotationOrDefault()
	scale := node.ScaleOrDefault()
	return util.NewTransform(
		mgl32.Vec3{translation[0], translation[1], translation[2]},
		mgl32.Quat{W: rotation[3], V: mgl32.Vec3{rotation[0], rotation[1], rotation[2]}}.Normalize(),
		mgl32.Vec3{scale[0], scale[1], scale[2]},
	)
}

func meshGeometry(doc *gltf.Document, meshIndex uint32) ([][3]float32, []uint32, error) {
	mesh := doc.Meshes[meshIndex]
	var positions [][3]float32
	var indices []uint32
	for _, primitive := range mesh.Primitives {
		posIndex, hasPositions := primitive.Attributes["POSITION"]
		if !hasPositions {
			continue
		}
		var vertBuffer [][3]float32
		vertBuffer, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], vertBuffer)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not read positions")
		}
		base := uint32(len(positions))
		positions = append(positions, vertBuffer...)
		if primitive.Indices != nil {
			var indexBuffer []uint32
			indexBuffer, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], indexBuffer)
			if err != nil {
				return nil, nil, errors.Wrap(err, "could not read indices")
			}
			for _, idx := range indexBuffer {
				indices = append(indices, idx+base)
			}
		}
	}
	return positions, indices, nil
}

func pointBounds(points [][3]float32) (mgl32.Vec3, mgl32.Vec3) {
	min := mgl32.Vec3{points[0][0], points[0][1], points[0][2]}
	max := min
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math32.Min(min[i], p[i])
			max[i] = math32.Max(max[i], p[i])
		}
	}
	return min, max
}
