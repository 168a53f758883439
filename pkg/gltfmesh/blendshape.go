package gltfmesh

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// blendShapeBuilder accumulates morph-target delta arrays across
// primitives. Targets at the same position in each primitive's target list
// form one logical channel.
type blendShapeBuilder struct {
	mode     BufferMode
	opts     *Options
	channels []morphChannel
}

// morphChannel is one blend-shape channel under construction.
type morphChannel struct {
	name string
	pos  [][3]float32
	nrm  [][3]float32
	tan  [][3]float32
	// dropped records a shared-mode length mismatch: the channel keeps its
	// slot but its deltas stay zero-length.
	dropped bool
}

func newBlendShapeBuilder(mode BufferMode, opts *Options) *blendShapeBuilder {
	return &blendShapeBuilder{mode: mode, opts: opts}
}

// appendPrimitive registers the primitive's targets and, when the primitive
// contributed a fresh vertex range, accumulates their deltas. base and
// count describe that range in the consolidated vertex buffer.
func (bb *blendShapeBuilder) appendPrimitive(r AttributeReader, prim *Primitive, base, count int, appendDeltas bool) error {
	// Register channels even for reused vertex ranges so channel indices
	// stay stable across the whole mesh.
	for len(bb.channels) < len(prim.Targets) {
		bb.channels = append(bb.channels, morphChannel{
			name: strconv.Itoa(len(bb.channels)),
		})
	}
	if !appendDeltas {
		return nil
	}

	for ti := range prim.Targets {
		target := &prim.Targets[ti]
		ch := &bb.channels[ti]
		if ch.dropped {
			continue
		}
		if err := bb.appendDeltas(r, &ch.pos, target.Position, ti, base, count, ch); err != nil {
			return err
		}
		if err := bb.appendDeltas(r, &ch.nrm, target.Normal, ti, base, count, ch); err != nil {
			return err
		}
		if err := bb.appendDeltas(r, &ch.tan, target.Tangent, ti, base, count, ch); err != nil {
			return err
		}
	}
	return nil
}

// appendDeltas reads one delta accessor into dst, zero-padding up to base
// so the array stays aligned with the vertex buffer. A length mismatch is
// fatal in independent mode and degrades the channel in shared mode; the
// asymmetry is long-standing decoder behavior that downstream consumers
// depend on.
func (bb *blendShapeBuilder) appendDeltas(r AttributeReader, dst *[][3]float32, accessor, channel, base, count int, ch *morphChannel) error {
	if accessor == NoAccessor {
		return nil
	}
	deltas, err := r.ReadVec3(accessor)
	if err != nil {
		return err
	}
	if len(deltas) != count {
		if bb.mode == BufferModeIndependent {
			return fmt.Errorf("target %d: %w (%d != %d)", channel, ErrMorphTargetSize, len(deltas), count)
		}
		bb.opts.log().Warn("morph target delta count mismatch, dropping channel deltas",
			zap.Int("channel", channel),
			zap.Int("deltas", len(deltas)),
			zap.Int("vertices", count))
		ch.dropped = true
		ch.pos, ch.nrm, ch.tan = nil, nil, nil
		return nil
	}

	*dst = padDeltas(*dst, base)
	for _, d := range deltas {
		*dst = append(*dst, bb.opts.convert(d))
	}
	return nil
}

// finish pads every populated delta array to the full vertex count, applies
// naming metadata and returns the completed channel list.
func (bb *blendShapeBuilder) finish(vertexCount int, targetNames []string) []BlendShapeChannel {
	if len(targetNames) > 0 && len(targetNames) < len(bb.channels) {
		bb.opts.log().Warn("target name metadata shorter than channel count, keeping numeric names",
			zap.Int("names", len(targetNames)),
			zap.Int("channels", len(bb.channels)))
	}

	out := make([]BlendShapeChannel, len(bb.channels))
	for i := range bb.channels {
		ch := &bb.channels[i]
		if i < len(targetNames) && targetNames[i] != "" {
			ch.name = targetNames[i]
		}
		out[i] = BlendShapeChannel{
			Name:           ch.name,
			PositionDeltas: padPopulated(ch.pos, vertexCount),
			NormalDeltas:   padPopulated(ch.nrm, vertexCount),
			TangentDeltas:  padPopulated(ch.tan, vertexCount),
		}
	}
	return out
}

// padDeltas zero-fills a delta array up to n entries.
func padDeltas(deltas [][3]float32, n int) [][3]float32 {
	for len(deltas) < n {
		deltas = append(deltas, [3]float32{})
	}
	return deltas
}

// padPopulated pads a non-empty delta array to the vertex count; an empty
// array stays empty (channel absent).
func padPopulated(deltas [][3]float32, vertexCount int) [][3]float32 {
	if len(deltas) == 0 {
		return nil
	}
	return padDeltas(deltas, vertexCount)
}
