package gltfmesh

import (
	"math"
	"testing"
)

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-6
}

func TestNormalizeWeights(t *testing.T) {
	tests := []struct {
		name string
		in   [4]float32
		want [4]float32
	}{
		{
			name: "already normalized",
			in:   [4]float32{0.25, 0.25, 0.25, 0.25},
			want: [4]float32{0.25, 0.25, 0.25, 0.25},
		},
		{
			name: "under unity",
			in:   [4]float32{0.5, 0.3, 0.1, 0.1},
			want: [4]float32{0.5 / 0.9, 0.3 / 0.9, 0.1 / 0.9, 0.1 / 0.9},
		},
		{
			name: "over unity",
			in:   [4]float32{2, 2, 0, 0},
			want: [4]float32{0.5, 0.5, 0, 0},
		},
		{
			name: "zero sum stays zero",
			in:   [4]float32{0, 0, 0, 0},
			want: [4]float32{0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeWeights(tt.in)
			for i := range got {
				if !approxEqual(got[i], tt.want[i]) {
					t.Errorf("weight[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
			if sum := got[0] + got[1] + got[2] + got[3]; tt.in != ([4]float32{}) && !approxEqual(sum, 1) {
				t.Errorf("weights sum to %v, want 1", sum)
			}
		})
	}
}

func TestVertexDefaults(t *testing.T) {
	// Position only: normals zero and flagged, UVs zero, color white.
	r := &fakeReader{vec3: map[int][][3]float32{0: {{1, 2, 3}}}}
	va := newVertexAccumulator(&Options{}, 1)
	prim := &Primitive{Attributes: map[string]int{AttrPosition: 0}}

	if _, _, err := va.appendPrimitive(r, prim); err != nil {
		t.Fatalf("appendPrimitive() error: %v", err)
	}
	if !va.normalsMissing {
		t.Error("normalsMissing not set for primitive without normals")
	}
	v := va.vertices[0]
	if v.Normal != ([3]float32{}) {
		t.Errorf("normal = %v, want zero", v.Normal)
	}
	if v.Color != ([4]float32{1, 1, 1, 1}) {
		t.Errorf("color = %v, want opaque white", v.Color)
	}
	if va.skinOrNil() != nil {
		t.Error("skin array present for skinless primitive")
	}
}

func TestVertexUVModes(t *testing.T) {
	tests := []struct {
		name string
		mode UVMode
		in   [2]float32
		want [2]float32
	}{
		{"full reverses both", UVModeFull, [2]float32{0.25, 0.75}, [2]float32{0.75, 0.25}},
		{"legacy flips V only", UVModeLegacy, [2]float32{0.25, 0.75}, [2]float32{0.25, 0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeReader{
				vec3: map[int][][3]float32{0: {{0, 0, 0}}},
				vec2: map[int][][2]float32{1: {tt.in}, 2: {tt.in}},
			}
			va := newVertexAccumulator(&Options{UVMode: tt.mode}, 1)
			prim := &Primitive{Attributes: map[string]int{
				AttrPosition:  0,
				AttrNormal:    0,
				AttrTexCoord0: 1,
				AttrTexCoord1: 2,
			}}
			if _, _, err := va.appendPrimitive(r, prim); err != nil {
				t.Fatalf("appendPrimitive() error: %v", err)
			}
			v := va.vertices[0]
			if v.UV0 != tt.want {
				t.Errorf("UV0 = %v, want %v", v.UV0, tt.want)
			}
			// The second channel ignores the legacy mode.
			if want := ([2]float32{0.75, 0.25}); v.UV1 != want {
				t.Errorf("UV1 = %v, want %v", v.UV1, want)
			}
		})
	}
}

func TestVertexCoordinateConvert(t *testing.T) {
	r := &fakeReader{vec3: map[int][][3]float32{
		0: {{1, 2, 3}},
		1: {{0, 0, 1}},
	}}
	va := newVertexAccumulator(&Options{Convert: ConvertFlipZ}, 1)
	prim := &Primitive{Attributes: map[string]int{AttrPosition: 0, AttrNormal: 1}}
	if _, _, err := va.appendPrimitive(r, prim); err != nil {
		t.Fatalf("appendPrimitive() error: %v", err)
	}
	v := va.vertices[0]
	if want := ([3]float32{1, 2, -3}); v.Position != want {
		t.Errorf("position = %v, want %v", v.Position, want)
	}
	if want := ([3]float32{0, 0, -1}); v.Normal != want {
		t.Errorf("normal = %v, want %v", v.Normal, want)
	}
}

func TestVertexMissingPosition(t *testing.T) {
	r := &fakeReader{}
	va := newVertexAccumulator(&Options{}, 0)
	prim := &Primitive{Attributes: map[string]int{}}
	if _, _, err := va.appendPrimitive(r, prim); err != ErrNoPosition {
		t.Errorf("appendPrimitive() error = %v, want ErrNoPosition", err)
	}
}
