package gltfmesh

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Reader errors.
var (
	ErrAccessorRange = errors.New("accessor index out of range")
	ErrMeshRange     = errors.New("mesh index out of range")
	ErrPrimitiveMode = errors.New("unsupported primitive mode (only triangles)")
)

// AttributeReader turns accessor indices into typed arrays. It is the
// decoder's only view of the underlying buffers; implementations must be
// deterministic.
type AttributeReader interface {
	// ReadVec3 reads a float vector-3 accessor (positions, normals, morph
	// deltas).
	ReadVec3(accessor int) ([][3]float32, error)
	// ReadVec2 reads a float vector-2 accessor (texture coordinates).
	ReadVec2(accessor int) ([][2]float32, error)
	// ReadColor reads a color accessor, normalized to float RGBA.
	ReadColor(accessor int) ([][4]float32, error)
	// ReadJoints reads a joint-index accessor.
	ReadJoints(accessor int) ([][4]uint16, error)
	// ReadWeights reads a skin-weight accessor.
	ReadWeights(accessor int) ([][4]float32, error)
	// ReadIndices reads an index accessor at its declared binary width:
	// []uint8, []uint16 or []uint32. The caller dispatches on the type.
	ReadIndices(accessor int) (any, error)
	// Count returns the accessor's element count, zero for an invalid
	// index. Used to pre-size the accumulation arrays.
	Count(accessor int) int
}

// DocumentReader is the gltf-document-backed AttributeReader.
type DocumentReader struct {
	doc *gltf.Document
}

var _ AttributeReader = (*DocumentReader)(nil)

// NewDocumentReader wraps a parsed glTF document.
func NewDocumentReader(doc *gltf.Document) *DocumentReader {
	return &DocumentReader{doc: doc}
}

func (r *DocumentReader) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(r.doc.Accessors) {
		return nil, fmt.Errorf("%w: %d", ErrAccessorRange, i)
	}
	return r.doc.Accessors[i], nil
}

// ReadVec3 reads a float vector-3 accessor.
func (r *DocumentReader) ReadVec3(accessor int) ([][3]float32, error) {
	acc, err := r.accessor(accessor)
	if err != nil {
		return nil, err
	}
	return modeler.ReadPosition(r.doc, acc, nil)
}

// ReadVec2 reads a float vector-2 accessor.
func (r *DocumentReader) ReadVec2(accessor int) ([][2]float32, error) {
	acc, err := r.accessor(accessor)
	if err != nil {
		return nil, err
	}
	return modeler.ReadTextureCoord(r.doc, acc, nil)
}

// ReadColor reads a color accessor. modeler normalizes the glTF color
// variants (VEC3/VEC4, float/ubyte/ushort) to RGBA bytes; those are scaled
// back to floats here.
func (r *DocumentReader) ReadColor(accessor int) ([][4]float32, error) {
	acc, err := r.accessor(accessor)
	if err != nil {
		return nil, err
	}
	rgba, err := modeler.ReadColor(r.doc, acc, nil)
	if err != nil {
		return nil, err
	}
	out := make([][4]float32, len(rgba))
	for i, c := range rgba {
		out[i] = [4]float32{
			float32(c[0]) / 255,
			float32(c[1]) / 255,
			float32(c[2]) / 255,
			float32(c[3]) / 255,
		}
	}
	return out, nil
}

// ReadJoints reads a joint-index accessor.
func (r *DocumentReader) ReadJoints(accessor int) ([][4]uint16, error) {
	acc, err := r.accessor(accessor)
	if err != nil {
		return nil, err
	}
	return modeler.ReadJoints(r.doc, acc, nil)
}

// ReadWeights reads a skin-weight accessor.
func (r *DocumentReader) ReadWeights(accessor int) ([][4]float32, error) {
	acc, err := r.accessor(accessor)
	if err != nil {
		return nil, err
	}
	return modeler.ReadWeights(r.doc, acc, nil)
}

// ReadIndices reads an index accessor without widening, so the decoder can
// dispatch on the declared component type itself.
func (r *DocumentReader) ReadIndices(accessor int) (any, error) {
	acc, err := r.accessor(accessor)
	if err != nil {
		return nil, err
	}
	// Unsupported widths pass through untouched; the decoder reports them.
	return modeler.ReadAccessor(r.doc, acc, nil)
}

// Count returns the accessor element count.
func (r *DocumentReader) Count(accessor int) int {
	acc, err := r.accessor(accessor)
	if err != nil {
		return 0
	}
	return int(acc.Count)
}

// MeshDescFromDocument converts one glTF mesh into the decoder's input
// contract. Only triangle-list primitives are supported.
func MeshDescFromDocument(doc *gltf.Document, meshIndex int) (MeshDesc, error) {
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return MeshDesc{}, fmt.Errorf("%w: %d", ErrMeshRange, meshIndex)
	}
	mesh := doc.Meshes[meshIndex]

	desc := MeshDesc{
		Name:        mesh.Name,
		Primitives:  make([]Primitive, 0, len(mesh.Primitives)),
		TargetNames: targetNamesFromExtras(mesh.Extras),
	}
	for i, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			return MeshDesc{}, fmt.Errorf("primitive %d: %w: %d", i, ErrPrimitiveMode, prim.Mode)
		}

		p := Primitive{
			Attributes: make(map[string]int, len(prim.Attributes)),
			Indices:    NoAccessor,
			Material:   NoAccessor,
		}
		for name, accessor := range prim.Attributes {
			p.Attributes[name] = int(accessor)
		}
		if prim.Indices != nil {
			p.Indices = int(*prim.Indices)
		}
		if prim.Material != nil {
			p.Material = int(*prim.Material)
		}
		for _, target := range prim.Targets {
			mt := MorphTarget{Position: NoAccessor, Normal: NoAccessor, Tangent: NoAccessor}
			if accessor, ok := target[AttrPosition]; ok {
				mt.Position = int(accessor)
			}
			if accessor, ok := target[AttrNormal]; ok {
				mt.Normal = int(accessor)
			}
			if accessor, ok := target[AttrTangent]; ok {
				mt.Tangent = int(accessor)
			}
			p.Targets = append(p.Targets, mt)
		}
		desc.Primitives = append(desc.Primitives, p)
	}
	return desc, nil
}

// targetNamesFromExtras pulls the conventional "targetNames" list out of
// mesh extras metadata. Tolerates both raw JSON and already-decoded maps.
func targetNamesFromExtras(extras any) []string {
	switch v := extras.(type) {
	case nil:
		return nil
	case json.RawMessage:
		var payload struct {
			TargetNames []string `json:"targetNames"`
		}
		if err := json.Unmarshal(v, &payload); err != nil {
			return nil
		}
		return payload.TargetNames
	case []byte:
		return targetNamesFromExtras(json.RawMessage(v))
	case map[string]any:
		raw, ok := v["targetNames"]
		if !ok {
			return nil
		}
		switch names := raw.(type) {
		case []string:
			return names
		case []any:
			out := make([]string, 0, len(names))
			for _, n := range names {
				s, _ := n.(string)
				out = append(out, s)
			}
			return out
		}
	}
	return nil
}

// DefaultLegacyGenerators are generator-string prefixes of encoder
// generations that wrote first-channel UVs with the flip-V-only convention.
var DefaultLegacyGenerators = []string{
	"VRoid Studio-0.",
	"UniGLTF-1.",
}

// ResolveUVMode maps an asset's generator metadata to the UV transform used
// for its first texture channel. Resolve once per asset, not per primitive.
// An empty prefix list falls back to DefaultLegacyGenerators.
func ResolveUVMode(generator string, legacyPrefixes []string) UVMode {
	if len(legacyPrefixes) == 0 {
		legacyPrefixes = DefaultLegacyGenerators
	}
	for _, prefix := range legacyPrefixes {
		if strings.HasPrefix(generator, prefix) {
			return UVModeLegacy
		}
	}
	return UVModeFull
}
