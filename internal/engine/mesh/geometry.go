package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/bifrost/pkg/gltfmesh"
)

// RecomputeNormals rebuilds per-vertex normals from triangle topology using
// area-weighted face normals. Vertices referenced by no triangle, and
// vertices whose accumulated normal degenerates to zero, get an up vector.
func RecomputeNormals(vertices []gltfmesh.Vertex, indices []uint32) {
	acc := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		ia, ib, ic := indices[i], indices[i+1], indices[i+2]
		pa := mgl32.Vec3(vertices[ia].Position)
		pb := mgl32.Vec3(vertices[ib].Position)
		pc := mgl32.Vec3(vertices[ic].Position)

		// Unnormalized cross product weights each face by its area.
		face := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[ia] = acc[ia].Add(face)
		acc[ib] = acc[ib].Add(face)
		acc[ic] = acc[ic].Add(face)
	}

	for i := range vertices {
		if acc[i].Len() > 1e-8 {
			vertices[i].Normal = [3]float32(acc[i].Normalize())
		} else {
			vertices[i].Normal = [3]float32{0, 1, 0}
		}
	}
}

// ComputeTangents derives per-vertex tangents from triangle positions and
// first-channel UVs: the UV-gradient tangent is accumulated per face, then
// orthogonalized against the vertex normal. The fourth component carries
// the bitangent handedness sign. Degenerate vertices get (1,0,0,1).
func ComputeTangents(vertices []gltfmesh.Vertex, indices []uint32) [][4]float32 {
	tanAcc := make([]mgl32.Vec3, len(vertices))
	bitanAcc := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		ia, ib, ic := indices[i], indices[i+1], indices[i+2]
		pa := mgl32.Vec3(vertices[ia].Position)
		pb := mgl32.Vec3(vertices[ib].Position)
		pc := mgl32.Vec3(vertices[ic].Position)
		ua := mgl32.Vec2(vertices[ia].UV0)
		ub := mgl32.Vec2(vertices[ib].UV0)
		uc := mgl32.Vec2(vertices[ic].UV0)

		e1 := pb.Sub(pa)
		e2 := pc.Sub(pa)
		duv1 := ub.Sub(ua)
		duv2 := uc.Sub(ua)

		det := duv1.X()*duv2.Y() - duv2.X()*duv1.Y()
		if det > -1e-8 && det < 1e-8 {
			continue
		}
		f := 1 / det

		tangent := e1.Mul(duv2.Y()).Sub(e2.Mul(duv1.Y())).Mul(f)
		bitangent := e2.Mul(duv1.X()).Sub(e1.Mul(duv2.X())).Mul(f)

		for _, idx := range []uint32{ia, ib, ic} {
			tanAcc[idx] = tanAcc[idx].Add(tangent)
			bitanAcc[idx] = bitanAcc[idx].Add(bitangent)
		}
	}

	out := make([][4]float32, len(vertices))
	for i := range vertices {
		n := mgl32.Vec3(vertices[i].Normal)
		t := tanAcc[i]

		// Gram-Schmidt: remove the normal component before normalizing.
		t = t.Sub(n.Mul(n.Dot(t)))
		if t.Len() <= 1e-8 {
			out[i] = [4]float32{1, 0, 0, 1}
			continue
		}
		t = t.Normalize()

		w := float32(1)
		if n.Cross(t).Dot(bitanAcc[i]) < 0 {
			w = -1
		}
		out[i] = [4]float32{t.X(), t.Y(), t.Z(), w}
	}
	return out
}

// ComputeBounds derives the axis-aligned box and bounding sphere of the
// final vertex positions. An empty mesh yields zero bounds.
func ComputeBounds(vertices []gltfmesh.Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}

	min := mgl32.Vec3(vertices[0].Position)
	max := min
	for _, v := range vertices[1:] {
		p := mgl32.Vec3(v.Position)
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}

	center := min.Add(max).Mul(0.5)
	return Bounds{
		Min:    min,
		Max:    max,
		Center: center,
		Radius: max.Sub(center).Len(),
	}
}
