package gltfmesh

// Trim removes trailing vertex records beyond the highest index referenced
// by any triangle, truncating the vertex array, the skin array and every
// populated blend-shape delta array to the same length. This bounds buffer
// size to what geometry actually uses, independent of how many vertices the
// source declared. Trim is idempotent: a trimmed mesh passes through
// unchanged. A mesh with no indices is left alone.
func Trim(m *MeshData) {
	if len(m.Indices) == 0 {
		return
	}

	max := m.Indices[0]
	for _, idx := range m.Indices[1:] {
		if idx > max {
			max = idx
		}
	}
	n := int(max) + 1

	if n < len(m.Vertices) {
		m.Vertices = m.Vertices[:n]
	}
	if m.Skin != nil && n < len(m.Skin) {
		m.Skin = m.Skin[:n]
	}
	for i := range m.BlendShapes {
		ch := &m.BlendShapes[i]
		ch.PositionDeltas = trimDeltas(ch.PositionDeltas, n)
		ch.NormalDeltas = trimDeltas(ch.NormalDeltas, n)
		ch.TangentDeltas = trimDeltas(ch.TangentDeltas, n)
	}
}

func trimDeltas(deltas [][3]float32, n int) [][3]float32 {
	if len(deltas) > n {
		return deltas[:n]
	}
	return deltas
}
