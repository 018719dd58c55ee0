package game

import (
	"path/filepath"
	"testing"

	"github.com/memmaker/rewind/engine/rewind"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addCollisionNode(doc *gltf.Document, name string, translation [3]float32, positions [][3]float32, indices []uint32) {
	primitive := &gltf.Primitive{
		Attributes: map[string]uint32{"POSITION": modeler.WritePosition(doc, positions)},
	}
	if len(indices) > 0 {
		primitive.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       name,
		Primitives: []*gltf.Primitive{primitive},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:        name,
		Mesh:        gltf.Index(uint32(len(doc.Meshes) - 1)),
		Translation: translation,
	})
}

func writeCollisionDocument(t *testing.T) string {
	t.Helper()
	doc := gltf.NewDocument()

	// two corner points are enough to author extents for the primitive kinds
	addCollisionNode(doc, "UBX_torso", [3]float32{0, 1, 0}, [][3]float32{
		{-0.4, -0.1, -0.2}, {0.4, 1.1, 0.2},
	}, nil)
	addCollisionNode(doc, "USP_head", [3]float32{0, 1.8, 0}, [][3]float32{
		{-0.25, -0.25, -0.25}, {0.25, 0.25, 0.25},
	}, nil)
	addCollisionNode(doc, "UCP_legs", [3]float32{0, -0.5, 0}, [][3]float32{
		{-0.3, -0.8, -0.3}, {0.3, 0.8, 0.3},
	}, nil)
	addCollisionNode(doc, "UCX_shield", [3]float32{0.6, 0.5, 0}, [][3]float32{
		{0, 0, 0}, {0.5, 0, 0}, {0, 0.5, 0}, {0, 0, 0.5},
	}, []uint32{0, 1, 2, 0, 1, 3, 0, 2, 3, 1, 2, 3})
	// no authoring prefix, approximated as convex
	addCollisionNode(doc, "blob", [3]float32{0, 0, 0}, [][3]float32{
		{0, 0, 0}, {0.2, 0, 0}, {0, 0.2, 0}, {0, 0, 0.2},
	}, []uint32{0, 1, 2, 0, 1, 3, 0, 2, 3, 1, 2, 3})

	path := filepath.Join(t.TempDir(), "collision.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestShapeTableFromGLTF(t *testing.T) {
	path := writeCollisionDocument(t)

	bones := map[string]rewind.BoneIndex{
		"USP_head": 3,
		"UCP_legs": 1,
	}
	table, err := ShapeTableFromGLTF(path, func(nodeName string) rewind.BoneIndex {
		if bone, known := bones[nodeName]; known {
			return bone
		}
		return rewind.WholeComponent
	})
	require.NoError(t, err)
	require.Len(t, table.Shapes, 5)

	byName := make(map[string]*rewind.ShapeDescriptor)
	for i := range table.Shapes {
		byName[table.Shapes[i].Name] = &table.Shapes[i]
	}

	torso := byName["UBX_torso"]
	require.NotNil(t, torso)
	assert.Equal(t, rewind.ShapeBox, torso.Kind)
	assert.Equal(t, rewind.WholeComponent, torso.Bone)
	assert.InDelta(t, 0.4, torso.HalfExtents.X(), 0.001)
	assert.InDelta(t, 0.6, torso.HalfExtents.Y(), 0.001)
	assert.InDelta(t, 0.2, torso.HalfExtents.Z(), 0.001)
	// the geometry centroid (0,0.5,0) folds into the node translation (0,1,0)
	assert.InDelta(t, 1.5, torso.Local.Position.Y(), 0.001)

	head := byName["USP_head"]
	require.NotNil(t, head)
	assert.Equal(t, rewind.ShapeSphere, head.Kind)
	assert.Equal(t, rewind.BoneIndex(3), head.Bone)
	assert.InDelta(t, 0.25, head.Radius, 0.001)

	legs := byName["UCP_legs"]
	require.NotNil(t, legs)
	assert.Equal(t, rewind.ShapeCapsule, legs.Kind)
	assert.Equal(t, rewind.BoneIndex(1), legs.Bone)
	// radius is the larger lateral half extent, the half height is what
	// remains of the vertical extent after the cap spheres
	assert.InDelta(t, 0.3, legs.Radius, 0.001)
	assert.InDelta(t, 0.5, legs.HalfHeight, 0.001)

	shield := byName["UCX_shield"]
	require.NotNil(t, shield)
	assert.Equal(t, rewind.ShapeConvex, shield.Kind)
	require.NotNil(t, shield.Hull)
	assert.Len(t, shield.Hull.Points, 4)
	assert.Len(t, shield.Hull.Indices, 12)
	// convex keeps the authored node transform untouched
	assert.InDelta(t, 0.6, shield.Local.Position.X(), 0.001)

	blob := byName["blob"]
	require.NotNil(t, blob)
	assert.Equal(t, rewind.ShapeConvex, blob.Kind)
}

func TestShapeTableFromGLTFErrors(t *testing.T) {
	_, err := ShapeTableFromGLTF(filepath.Join(t.TempDir(), "missing.glb"), nil)
	assert.Error(t, err)

	// a document without any mesh nodes has nothing trackable
	doc := gltf.NewDocument()
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "empty"})
	path := filepath.Join(t.TempDir(), "empty.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	_, err = ShapeTableFromGLTF(path, nil)
	assert.Error(t, err)
}
