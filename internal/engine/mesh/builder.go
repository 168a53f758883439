// Package mesh packages decoded geometry into renderer-ready build results:
// final vertex/index buffers, bounds, recomputed normals and tangents,
// resolved material handles and morph frames.
package mesh

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/bifrost/internal/logger"
	"github.com/Faultbox/bifrost/pkg/gltfmesh"
)

// MorphFrameWeight is the full-application weight a morph frame is stored
// at; runtime blending interpolates between 0 and this value.
const MorphFrameWeight = 100

// MaterialHandle identifies an externally managed material resource.
type MaterialHandle uint32

// MaterialResolver maps a source material index to an external material
// handle. Implementations receive -1 for primitives that declared no
// material and decide the fallback themselves.
type MaterialResolver interface {
	Resolve(materialIndex int) MaterialHandle
}

// ResolverFunc adapts a function to the MaterialResolver interface.
type ResolverFunc func(materialIndex int) MaterialHandle

// Resolve calls the wrapped function.
func (f ResolverFunc) Resolve(materialIndex int) MaterialHandle { return f(materialIndex) }

// Bounds is the axis-aligned box and bounding sphere of a built mesh.
type Bounds struct {
	Min    mgl32.Vec3
	Max    mgl32.Vec3
	Center mgl32.Vec3
	Radius float32
}

// MorphFrame is one renderer-consumable blend-shape frame. Delta arrays are
// either all-zero placeholders or exactly vertex-count long.
type MorphFrame struct {
	Name           string
	Weight         float32
	PositionDeltas [][3]float32
	NormalDeltas   [][3]float32
	TangentDeltas  [][3]float32
}

// BuildResult is the finished, immutable product of one mesh build, handed
// to the resource constructor for upload.
type BuildResult struct {
	Name      string
	Vertices  []gltfmesh.Vertex
	Tangents  [][4]float32 // xyz tangent, w bitangent sign
	Skin      []gltfmesh.SkinVertex
	Indices   []uint32
	Submeshes []gltfmesh.Submesh
	Materials []MaterialHandle // one handle per submesh
	Frames    []MorphFrame
	Bounds    Bounds
}

// BuildOptions controls one build.
type BuildOptions struct {
	// Resolver maps material indices to handles. nil resolves everything
	// to the zero handle.
	Resolver MaterialResolver
	// Yield is called at each cooperative checkpoint so the caller's
	// scheduler can interleave other work. A non-nil return aborts the
	// build. nil yields only check ctx.
	Yield func(context.Context) error
}

// Builder packages decoded mesh data through a strictly sequential stage
// pipeline. The in-progress result is owned exclusively by the builder; on
// cancellation or yield failure nothing is ever published.
type Builder struct{}

// NewBuilder returns a Builder.
func NewBuilder() *Builder { return &Builder{} }

// Build runs the packaging pipeline over one decoded mesh. It suspends only
// at checkpoints, never mid-stage, and returns either a complete result or
// an error with no result at all.
func (b *Builder) Build(ctx context.Context, data *gltfmesh.MeshData, opts BuildOptions) (*BuildResult, error) {
	res := &BuildResult{Name: data.Name}

	// (1) A mesh with no declared materials still needs one entry so a
	// renderer can bind something.
	materials := data.MaterialIndices
	if len(materials) == 0 {
		materials = []int{gltfmesh.NoAccessor}
	}

	// (2) Vertex buffers. Copied so the result never aliases decoder
	// arrays that a caller might reuse.
	res.Vertices = make([]gltfmesh.Vertex, len(data.Vertices))
	copy(res.Vertices, data.Vertices)
	if data.Skin != nil {
		res.Skin = make([]gltfmesh.SkinVertex, len(data.Skin))
		copy(res.Skin, data.Skin)
	}
	if err := b.checkpoint(ctx, opts.Yield); err != nil {
		return nil, err
	}

	// (3) Index buffer and submesh ranges.
	res.Indices = make([]uint32, len(data.Indices))
	copy(res.Indices, data.Indices)
	res.Submeshes = make([]gltfmesh.Submesh, len(data.Submeshes))
	copy(res.Submeshes, data.Submeshes)
	if err := b.checkpoint(ctx, opts.Yield); err != nil {
		return nil, err
	}

	// (4) Bounds from the final positions.
	res.Bounds = ComputeBounds(res.Vertices)

	// (5) Sources without normals get them rebuilt from final topology.
	if data.NormalsMissing {
		RecomputeNormals(res.Vertices, res.Indices)
	}

	// (6) Tangents are always recomputed; source tangents, if any, were
	// never consolidated.
	res.Tangents = ComputeTangents(res.Vertices, res.Indices)
	if err := b.checkpoint(ctx, opts.Yield); err != nil {
		return nil, err
	}

	// (7) Material handles, one per submesh entry.
	res.Materials = make([]MaterialHandle, len(materials))
	if opts.Resolver != nil {
		for i, m := range materials {
			res.Materials[i] = opts.Resolver.Resolve(m)
		}
	}

	// (8) Morph frames, one checkpoint per channel.
	for i := range data.BlendShapes {
		frame, ok := b.morphFrame(data, i, len(res.Vertices))
		if ok {
			res.Frames = append(res.Frames, frame)
		}
		if err := b.checkpoint(ctx, opts.Yield); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// morphFrame packages one blend-shape channel. Empty channels become
// all-zero frames so channel indices stay stable; a populated channel whose
// deltas do not match the vertex count is skipped with a warning.
func (b *Builder) morphFrame(data *gltfmesh.MeshData, channel, vertexCount int) (MorphFrame, bool) {
	ch := &data.BlendShapes[channel]
	frame := MorphFrame{Name: ch.Name, Weight: MorphFrameWeight}

	if len(ch.PositionDeltas) == 0 && len(ch.NormalDeltas) == 0 && len(ch.TangentDeltas) == 0 {
		frame.PositionDeltas = make([][3]float32, vertexCount)
		return frame, true
	}

	for _, deltas := range [][][3]float32{ch.PositionDeltas, ch.NormalDeltas, ch.TangentDeltas} {
		if len(deltas) != 0 && len(deltas) != vertexCount {
			logger.Warn("morph channel does not span the vertex buffer, skipping",
				zap.String("mesh", data.Name),
				zap.String("channel", ch.Name),
				zap.Int("deltas", len(deltas)),
				zap.Int("vertices", vertexCount))
			return MorphFrame{}, false
		}
	}

	frame.PositionDeltas = ch.PositionDeltas
	frame.NormalDeltas = ch.NormalDeltas
	frame.TangentDeltas = ch.TangentDeltas
	return frame, true
}

// checkpoint is one cooperative suspension point.
func (b *Builder) checkpoint(ctx context.Context, yield func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if yield == nil {
		return nil
	}
	return yield(ctx)
}
