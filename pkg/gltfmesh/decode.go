package gltfmesh

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Decode errors.
var (
	ErrNoPosition         = errors.New("primitive has no POSITION attribute")
	ErrIndexComponentType = errors.New("unsupported index component type")
	ErrIndexOutOfRange    = errors.New("index exceeds primitive vertex count")
	ErrMorphTargetSize    = errors.New("morph target delta count does not match vertex count")
)

// Options controls a mesh decode. The zero value decodes with an identity
// coordinate transform, full U/V reversal and no logging.
type Options struct {
	// Convert is the coordinate-inversion transform applied to positions,
	// normals and morph deltas. nil keeps source coordinates.
	Convert ConvertVec
	// UVMode gates the first-channel UV transform. Resolve it once per
	// asset (see ResolveUVMode).
	UVMode UVMode
	// Logger receives degraded-but-successful warnings. nil discards them.
	Logger *zap.Logger
}

func (o *Options) convert(v [3]float32) [3]float32 {
	if o.Convert == nil {
		return v
	}
	return o.Convert(v)
}

func (o *Options) log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// SelectBufferMode inspects all primitives of a mesh and picks the decode
// strategy: shared mode when every primitive declares an identical set of
// attribute accessors, independent mode otherwise. Shared mode avoids
// duplicating a vertex buffer referenced by every primitive of a
// multi-material mesh.
func SelectBufferMode(primitives []Primitive) BufferMode {
	if len(primitives) < 2 {
		return BufferModeShared
	}
	first := primitives[0].Attributes
	for _, prim := range primitives[1:] {
		if len(prim.Attributes) != len(first) {
			return BufferModeIndependent
		}
		for name, accessor := range first {
			other, ok := prim.Attributes[name]
			if !ok || other != accessor {
				return BufferModeIndependent
			}
		}
	}
	return BufferModeShared
}

// Decode consolidates all primitives of one mesh into a single MeshData.
// Decoding is a deterministic, synchronous function of its input: the same
// mesh description always yields byte-identical output. Fatal errors abort
// the whole mesh; degraded conditions are logged and decoding continues.
func Decode(r AttributeReader, mesh MeshDesc, opts Options) (*MeshData, error) {
	mode := SelectBufferMode(mesh.Primitives)

	vertexCap, indexCap := reserveCounts(r, mesh.Primitives, mode)
	va := newVertexAccumulator(&opts, vertexCap)
	ia := newIndexAssembler(indexCap)
	bb := newBlendShapeBuilder(mode, &opts)

	for i := range mesh.Primitives {
		prim := &mesh.Primitives[i]

		var base, count int
		var err error
		if mode == BufferModeShared {
			// One shared vertex buffer, built from the first primitive.
			if i == 0 {
				if _, count, err = va.appendPrimitive(r, prim); err != nil {
					return nil, fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
				}
			} else {
				count = len(va.vertices)
			}
			base = 0
		} else {
			if base, count, err = va.appendPrimitive(r, prim); err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
			}
		}

		// Morph deltas follow the vertex buffer: a reused range must not
		// accumulate its deltas twice.
		appendDeltas := mode == BufferModeIndependent || i == 0
		if err := bb.appendPrimitive(r, prim, base, count, appendDeltas); err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}

		if err := ia.appendPrimitive(r, prim, base, count); err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}
	}

	data := &MeshData{
		Name:            mesh.Name,
		Mode:            mode,
		Vertices:        va.vertices,
		Skin:            va.skinOrNil(),
		Indices:         ia.indices,
		Submeshes:       ia.submeshes,
		MaterialIndices: ia.materials,
		BlendShapes:     bb.finish(len(va.vertices), mesh.TargetNames),
		NormalsMissing:  va.normalsMissing,
	}
	Trim(data)
	return data, nil
}

// reserveCounts sizes the accumulation arrays from an up-front pass over the
// accessor counts so decode never reallocates mid-copy.
func reserveCounts(r AttributeReader, primitives []Primitive, mode BufferMode) (vertexCap, indexCap int) {
	for i := range primitives {
		prim := &primitives[i]
		n := 0
		if accessor, ok := prim.Attributes[AttrPosition]; ok {
			n = r.Count(accessor)
		}
		if mode == BufferModeIndependent || i == 0 {
			vertexCap += n
		}
		if prim.Indices != NoAccessor {
			indexCap += r.Count(prim.Indices)
		} else {
			indexCap += n
		}
	}
	return vertexCap, indexCap
}
