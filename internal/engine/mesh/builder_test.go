package mesh

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/bifrost/pkg/gltfmesh"
)

// quadData is a two-triangle quad in the XY plane with UVs, one material
// and one blend-shape channel.
func quadData() *gltfmesh.MeshData {
	return &gltfmesh.MeshData{
		Name: "quad",
		Vertices: []gltfmesh.Vertex{
			{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 0, 1}, UV0: [2]float32{0, 0}},
			{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 0, 1}, UV0: [2]float32{1, 0}},
			{Position: [3]float32{1, 1, 0}, Normal: [3]float32{0, 0, 1}, UV0: [2]float32{1, 1}},
			{Position: [3]float32{0, 1, 0}, Normal: [3]float32{0, 0, 1}, UV0: [2]float32{0, 1}},
		},
		Indices:         []uint32{0, 1, 2, 0, 2, 3},
		Submeshes:       []gltfmesh.Submesh{{IndexOffset: 0, IndexCount: 6, MaterialIndex: 2}},
		MaterialIndices: []int{2},
		BlendShapes: []gltfmesh.BlendShapeChannel{{
			Name:           "raise",
			PositionDeltas: make([][3]float32, 4),
		}},
	}
}

func TestBuild(t *testing.T) {
	res, err := NewBuilder().Build(context.Background(), quadData(), BuildOptions{
		Resolver: ResolverFunc(func(m int) MaterialHandle { return MaterialHandle(m + 10) }),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.Name != "quad" {
		t.Errorf("name = %q, want %q", res.Name, "quad")
	}
	if len(res.Vertices) != 4 || len(res.Indices) != 6 {
		t.Fatalf("buffers = %d vertices / %d indices, want 4/6", len(res.Vertices), len(res.Indices))
	}
	if len(res.Tangents) != 4 {
		t.Errorf("tangent count = %d, want 4", len(res.Tangents))
	}
	if want := []MaterialHandle{12}; !reflect.DeepEqual(res.Materials, want) {
		t.Errorf("materials = %v, want %v", res.Materials, want)
	}
	if len(res.Frames) != 1 || res.Frames[0].Name != "raise" {
		t.Fatalf("frames = %+v, want one frame named raise", res.Frames)
	}
	if res.Frames[0].Weight != MorphFrameWeight {
		t.Errorf("frame weight = %v, want %v", res.Frames[0].Weight, float32(MorphFrameWeight))
	}

	b := res.Bounds
	if b.Min != (mgl32.Vec3{0, 0, 0}) || b.Max != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("bounds = %+v, want unit quad box", b)
	}
	if b.Center != (mgl32.Vec3{0.5, 0.5, 0}) {
		t.Errorf("center = %v, want {0.5 0.5 0}", b.Center)
	}
}

func TestBuildSynthesizesDefaultMaterial(t *testing.T) {
	data := &gltfmesh.MeshData{Name: "empty"}
	res, err := NewBuilder().Build(context.Background(), data, BuildOptions{
		Resolver: ResolverFunc(func(m int) MaterialHandle {
			if m != gltfmesh.NoAccessor {
				t.Errorf("resolver got %d, want NoAccessor", m)
			}
			return 7
		}),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if want := []MaterialHandle{7}; !reflect.DeepEqual(res.Materials, want) {
		t.Errorf("materials = %v, want %v", res.Materials, want)
	}
}

func TestBuildResultDoesNotAliasInput(t *testing.T) {
	data := quadData()
	res, err := NewBuilder().Build(context.Background(), data, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	data.Vertices[0].Position = [3]float32{99, 99, 99}
	data.Indices[0] = 99
	if res.Vertices[0].Position == ([3]float32{99, 99, 99}) {
		t.Error("result vertices alias decoder vertices")
	}
	if res.Indices[0] == 99 {
		t.Error("result indices alias decoder indices")
	}
}

func TestBuildYieldCheckpoints(t *testing.T) {
	calls := 0
	_, err := NewBuilder().Build(context.Background(), quadData(), BuildOptions{
		Yield: func(ctx context.Context) error {
			calls++
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	// Two buffer-stage checkpoints, one after tangents, one per channel.
	if calls != 4 {
		t.Errorf("yield calls = %d, want 4", calls)
	}
}

func TestBuildYieldErrorAborts(t *testing.T) {
	boom := errors.New("scheduler gone")
	res, err := NewBuilder().Build(context.Background(), quadData(), BuildOptions{
		Yield: func(ctx context.Context) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Errorf("Build() error = %v, want wrapped scheduler error", err)
	}
	if res != nil {
		t.Error("aborted build published a result")
	}
}

func TestBuildCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewBuilder().Build(ctx, quadData(), BuildOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Error("cancelled build published a result")
	}
}

func TestBuildRecomputesMissingNormals(t *testing.T) {
	data := quadData()
	data.NormalsMissing = true
	for i := range data.Vertices {
		data.Vertices[i].Normal = [3]float32{}
	}

	res, err := NewBuilder().Build(context.Background(), data, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for i, v := range res.Vertices {
		if want := ([3]float32{0, 0, 1}); v.Normal != want {
			t.Errorf("vertex %d normal = %v, want %v", i, v.Normal, want)
		}
	}
}

func TestBuildMorphFrames(t *testing.T) {
	data := quadData()
	data.BlendShapes = []gltfmesh.BlendShapeChannel{
		{Name: "full", PositionDeltas: make([][3]float32, 4)},
		{Name: "empty"},
		{Name: "ragged", PositionDeltas: make([][3]float32, 2)},
	}

	res, err := NewBuilder().Build(context.Background(), data, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	// The ragged channel is skipped; the empty one keeps its slot as an
	// all-zero frame.
	if len(res.Frames) != 2 {
		t.Fatalf("frame count = %d, want 2", len(res.Frames))
	}
	if res.Frames[0].Name != "full" || res.Frames[1].Name != "empty" {
		t.Errorf("frame names = %q, %q", res.Frames[0].Name, res.Frames[1].Name)
	}
	if got := len(res.Frames[1].PositionDeltas); got != 4 {
		t.Errorf("zero frame delta count = %d, want 4", got)
	}
	for i, d := range res.Frames[1].PositionDeltas {
		if d != ([3]float32{}) {
			t.Errorf("zero frame delta[%d] = %v, want zero", i, d)
		}
	}
}
