package gltfmesh

import "go.uber.org/zap"

// vertexAccumulator builds the consolidated per-vertex attribute arrays
// from one or more primitives.
type vertexAccumulator struct {
	opts           *Options
	vertices       []Vertex
	skin           []SkinVertex
	hasSkin        bool
	normalsMissing bool
}

func newVertexAccumulator(opts *Options, capacity int) *vertexAccumulator {
	return &vertexAccumulator{
		opts:     opts,
		vertices: make([]Vertex, 0, capacity),
		skin:     make([]SkinVertex, 0, capacity),
	}
}

// appendPrimitive decodes one primitive's attribute accessors and appends
// its vertex range. Returns the range start and length.
func (va *vertexAccumulator) appendPrimitive(r AttributeReader, prim *Primitive) (base, count int, err error) {
	base = len(va.vertices)

	posAccessor, ok := prim.Attributes[AttrPosition]
	if !ok {
		return 0, 0, ErrNoPosition
	}
	positions, err := r.ReadVec3(posAccessor)
	if err != nil {
		return 0, 0, err
	}
	count = len(positions)

	normals, err := va.readNormals(r, prim, count)
	if err != nil {
		return 0, 0, err
	}
	uv0, err := va.readUVs(r, prim, AttrTexCoord0, va.opts.UVMode)
	if err != nil {
		return 0, 0, err
	}
	// The second channel always takes the full U/V reversal, even for
	// legacy-generation assets.
	uv1, err := va.readUVs(r, prim, AttrTexCoord1, UVModeFull)
	if err != nil {
		return 0, 0, err
	}
	colors, err := va.readColors(r, prim)
	if err != nil {
		return 0, 0, err
	}

	for i, pos := range positions {
		v := Vertex{
			Position: va.opts.convert(pos),
			Color:    [4]float32{1, 1, 1, 1},
		}
		if i < len(normals) {
			v.Normal = va.opts.convert(normals[i])
		}
		if i < len(uv0) {
			v.UV0 = uv0[i]
		}
		if i < len(uv1) {
			v.UV1 = uv1[i]
		}
		if i < len(colors) {
			v.Color = colors[i]
		}
		va.vertices = append(va.vertices, v)
	}

	if err := va.appendSkin(r, prim, count); err != nil {
		return 0, 0, err
	}
	return base, count, nil
}

// readNormals reads the optional NORMAL attribute. A primitive without
// normals flags the whole mesh for downstream recomputation.
func (va *vertexAccumulator) readNormals(r AttributeReader, prim *Primitive, count int) ([][3]float32, error) {
	accessor, ok := prim.Attributes[AttrNormal]
	if !ok {
		va.normalsMissing = true
		va.opts.log().Warn("primitive has no normals, scheduling recomputation",
			zap.Int("vertices", count))
		return nil, nil
	}
	return r.ReadVec3(accessor)
}

// readUVs reads one optional texture-coordinate channel and applies the
// resolved UV transform: legacy mode flips V only, full mode reverses both
// U and V.
func (va *vertexAccumulator) readUVs(r AttributeReader, prim *Primitive, attr string, mode UVMode) ([][2]float32, error) {
	accessor, ok := prim.Attributes[attr]
	if !ok {
		return nil, nil
	}
	uvs, err := r.ReadVec2(accessor)
	if err != nil {
		return nil, err
	}
	out := make([][2]float32, len(uvs))
	for i, uv := range uvs {
		if mode == UVModeLegacy {
			out[i] = [2]float32{uv[0], 1 - uv[1]}
		} else {
			out[i] = [2]float32{1 - uv[0], 1 - uv[1]}
		}
	}
	return out, nil
}

// readColors reads the optional COLOR_0 attribute. Missing colors fall back
// to opaque white in appendPrimitive.
func (va *vertexAccumulator) readColors(r AttributeReader, prim *Primitive) ([][4]float32, error) {
	accessor, ok := prim.Attributes[AttrColor0]
	if !ok {
		return nil, nil
	}
	return r.ReadColor(accessor)
}

// appendSkin decodes the optional joint/weight attributes for one vertex
// range. The skin array stays parallel to the vertex array: primitives
// without skin attributes contribute zero records.
func (va *vertexAccumulator) appendSkin(r AttributeReader, prim *Primitive, count int) error {
	jointsAccessor, hasJoints := prim.Attributes[AttrJoints0]
	weightsAccessor, hasWeights := prim.Attributes[AttrWeights0]

	var joints [][4]uint16
	var weights [][4]float32
	var err error
	if hasJoints {
		if joints, err = r.ReadJoints(jointsAccessor); err != nil {
			return err
		}
	}
	if hasWeights {
		if weights, err = r.ReadWeights(weightsAccessor); err != nil {
			return err
		}
	}
	if hasJoints || hasWeights {
		va.hasSkin = true
	}

	for i := 0; i < count; i++ {
		var sv SkinVertex
		if i < len(joints) {
			sv.Joints = joints[i]
		}
		if i < len(weights) {
			sv.Weights = normalizeWeights(weights[i])
		}
		va.skin = append(va.skin, sv)
	}
	return nil
}

// skinOrNil returns the skin array, or nil when no primitive supplied
// joint/weight attributes.
func (va *vertexAccumulator) skinOrNil() []SkinVertex {
	if !va.hasSkin {
		return nil
	}
	return va.skin
}

// normalizeWeights scales a four-tuple so it sums to exactly 1. A zero sum
// is left untouched: it encodes "no skin influence", not an error.
func normalizeWeights(w [4]float32) [4]float32 {
	sum := w[0] + w[1] + w[2] + w[3]
	if sum == 0 {
		return w
	}
	inv := 1 / sum
	return [4]float32{w[0] * inv, w[1] * inv, w[2] * inv, w[3] * inv}
}
