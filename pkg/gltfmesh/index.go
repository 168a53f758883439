package gltfmesh

import "fmt"

// indexAssembler flattens per-primitive index buffers into one triangle
// list, reversing winding and offsetting indices for buffer merging. It
// records one submesh range per primitive.
type indexAssembler struct {
	indices   []uint32
	submeshes []Submesh
	materials []int
}

func newIndexAssembler(capacity int) *indexAssembler {
	return &indexAssembler{
		indices: make([]uint32, 0, capacity),
	}
}

// appendPrimitive decodes one primitive's index buffer and appends its
// re-wound, offset triangles. base is the primitive's vertex-buffer offset
// (zero in shared mode), count its vertex count.
func (ia *indexAssembler) appendPrimitive(r AttributeReader, prim *Primitive, base, count int) error {
	offset := len(ia.indices)

	src, err := ia.readIndices(r, prim, count)
	if err != nil {
		return err
	}

	// Reverse winding during the copy: (a,b,c) becomes (c,b,a). The
	// coordinate-inversion transform flips handedness; this flips it back.
	for i := 0; i+2 < len(src); i += 3 {
		a, b, c := src[i], src[i+1], src[i+2]
		if int(a) >= count || int(b) >= count || int(c) >= count {
			return fmt.Errorf("%w: %d/%d/%d >= %d", ErrIndexOutOfRange, a, b, c, count)
		}
		ia.indices = append(ia.indices,
			c+uint32(base),
			b+uint32(base),
			a+uint32(base),
		)
	}

	ia.submeshes = append(ia.submeshes, Submesh{
		IndexOffset:   int32(offset),
		IndexCount:    int32(len(ia.indices) - offset),
		MaterialIndex: prim.Material,
	})
	ia.materials = append(ia.materials, prim.Material)
	return nil
}

// readIndices returns the primitive's source index list as uint32,
// dispatching on the accessor's binary width. A primitive without an index
// accessor yields an implicit sequential triangle list.
func (ia *indexAssembler) readIndices(r AttributeReader, prim *Primitive, count int) ([]uint32, error) {
	if prim.Indices == NoAccessor {
		src := make([]uint32, count)
		for i := range src {
			src[i] = uint32(i)
		}
		return src, nil
	}

	raw, err := r.ReadIndices(prim.Indices)
	if err != nil {
		return nil, err
	}
	switch data := raw.(type) {
	case []uint8:
		src := make([]uint32, len(data))
		for i, v := range data {
			src[i] = uint32(v)
		}
		return src, nil
	case []uint16:
		src := make([]uint32, len(data))
		for i, v := range data {
			src[i] = uint32(v)
		}
		return src, nil
	case []uint32:
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrIndexComponentType, raw)
	}
}
