// Package gltfmesh decodes glTF mesh primitives into consolidated,
// renderer-ready geometry buffers: a vertex list, an optional skin-weight
// list, a flattened triangle index list partitioned into submeshes, and a
// set of blend-shape delta channels.
package gltfmesh

import "fmt"

// glTF attribute accessor names.
const (
	AttrPosition  = "POSITION"
	AttrNormal    = "NORMAL"
	AttrTangent   = "TANGENT"
	AttrTexCoord0 = "TEXCOORD_0"
	AttrTexCoord1 = "TEXCOORD_1"
	AttrColor0    = "COLOR_0"
	AttrJoints0   = "JOINTS_0"
	AttrWeights0  = "WEIGHTS_0"
)

// NoAccessor marks an absent accessor reference (no index buffer, no
// material, no morph delta channel).
const NoAccessor = -1

// Vertex is one consolidated mesh vertex. Its index in the vertex array is
// its logical vertex id; all parallel arrays (skin, morph deltas) use the
// same indexing.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32 // zero when the source primitive had no normals
	UV0      [2]float32
	UV1      [2]float32
	Color    [4]float32 // opaque white when the source had no vertex colors
}

// SkinVertex holds up to four joint influences for one vertex. The weights
// either sum to 1 (normalized) or to 0 (no skin influence).
type SkinVertex struct {
	Joints  [4]uint16
	Weights [4]float32
}

// Submesh is a contiguous index-buffer range drawn with one material.
// Submeshes partition the index array: ranges never overlap and their union
// covers every index.
type Submesh struct {
	IndexOffset   int32
	IndexCount    int32
	MaterialIndex int // NoAccessor when the primitive declared no material
}

// BlendShapeChannel is one morph target: per-vertex deltas applied at a
// runtime-controlled weight. Each delta array has length 0 (channel absent)
// or exactly the vertex count.
type BlendShapeChannel struct {
	Name           string
	PositionDeltas [][3]float32
	NormalDeltas   [][3]float32
	TangentDeltas  [][3]float32
}

// MeshData is the decoded, trimmed result of one mesh. It is built once
// from an immutable source description and not mutated afterwards.
type MeshData struct {
	Name      string
	Mode      BufferMode
	Vertices  []Vertex
	Skin      []SkinVertex // nil when no primitive supplied joints/weights
	Indices   []uint32
	Submeshes []Submesh

	// MaterialIndices holds one entry per submesh.
	MaterialIndices []int

	BlendShapes []BlendShapeChannel

	// NormalsMissing is set when any primitive lacked a NORMAL attribute;
	// normals must then be recomputed from topology downstream.
	NormalsMissing bool
}

// VertexCount returns the number of consolidated vertices.
func (m *MeshData) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles in the index array.
func (m *MeshData) TriangleCount() int { return len(m.Indices) / 3 }

// BufferMode selects how per-primitive vertex buffers are consolidated.
type BufferMode int

const (
	// BufferModeShared builds one vertex array from the first primitive and
	// lets every primitive's index buffer reuse it. Chosen when all
	// primitives declare identical attribute accessors.
	BufferModeShared BufferMode = iota
	// BufferModeIndependent concatenates each primitive's own vertex range
	// with a running offset, duplicating shared geometry if any.
	BufferModeIndependent
)

// String returns a human-readable buffer mode name.
func (m BufferMode) String() string {
	switch m {
	case BufferModeShared:
		return "shared"
	case BufferModeIndependent:
		return "independent"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// UVMode selects the texture-coordinate transform applied during decode.
// It is resolved once per asset from generator metadata, not per primitive.
type UVMode int

const (
	// UVModeFull reverses both U and V. The default for current assets and
	// always used for the second UV channel.
	UVModeFull UVMode = iota
	// UVModeLegacy flips V only on the first UV channel, matching assets
	// written by older encoder generations.
	UVModeLegacy
)

// String returns a human-readable UV mode name.
func (m UVMode) String() string {
	switch m {
	case UVModeFull:
		return "full"
	case UVModeLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ConvertVec transforms a source-space vector into the destination
// coordinate convention. It is applied to positions, normals and morph
// deltas. The transform must be pure: same input, same output.
type ConvertVec func([3]float32) [3]float32

// ConvertNone keeps the source coordinate convention.
func ConvertNone(v [3]float32) [3]float32 { return v }

// ConvertFlipZ negates the Z axis, converting between right- and
// left-handed conventions. Triangle winding is reversed during index
// assembly to match.
func ConvertFlipZ(v [3]float32) [3]float32 { return [3]float32{v[0], v[1], -v[2]} }

// MorphTarget references the delta accessors of one morph target.
// Absent channels use NoAccessor.
type MorphTarget struct {
	Position int
	Normal   int
	Tangent  int
}

// Primitive describes one drawable sub-part of a mesh.
type Primitive struct {
	// Attributes maps attribute names (AttrPosition, ...) to accessor
	// indices. AttrPosition is required.
	Attributes map[string]int
	// Indices is the index accessor, or NoAccessor to generate a
	// sequential triangle list.
	Indices int
	// Material is the material index, or NoAccessor.
	Material int
	// Targets is the ordered morph target list. Targets at the same
	// position across primitives form one logical blend-shape channel.
	Targets []MorphTarget
}

// MeshDesc is the decoder's input contract: an ordered primitive list plus
// mesh-level metadata.
type MeshDesc struct {
	Name       string
	Primitives []Primitive
	// TargetNames is the optional blend-shape naming metadata from the
	// mesh extras.
	TargetNames []string
}
