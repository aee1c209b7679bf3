// Package frame turns a skeleton snapshot into a packed matrix texture and
// writes it out.
package frame

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/incubatio/internal/bone"
	"github.com/Faultbox/incubatio/internal/skeleton"
	"github.com/Faultbox/incubatio/pkg/math"
	"github.com/Faultbox/incubatio/pkg/texpack"
	"github.com/Faultbox/incubatio/pkg/transform"
)

// Builder runs bone adjustment, transform composition and packing for one
// frame at a time. It holds no per-frame state.
type Builder struct {
	adjuster *bone.Adjuster
	fixRoot  bool
	log      *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithFixRoot pins joint 0 at the origin; every other joint keeps its offset
// from it.
func WithFixRoot(enabled bool) Option {
	return func(b *Builder) { b.fixRoot = enabled }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// NewBuilder creates a builder. A nil adjuster leaves rotations unchanged.
func NewBuilder(adjuster *bone.Adjuster, opts ...Option) *Builder {
	b := &Builder{
		adjuster: adjuster,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Matrices returns one matrix per joint in joint order.
func (b *Builder) Matrices(snap skeleton.Snapshot) ([]math.Mat4, error) {
	positions := snap.Positions
	if b.fixRoot && len(positions) > 0 {
		root := positions[0]
		positions = make([]math.Vec3, len(snap.Positions))
		for i, p := range snap.Positions {
			positions[i] = p.Sub(root)
		}
	}

	rotations := snap.Rotations
	if !b.adjuster.Empty() {
		quats := make([]math.Quat, len(rotations))
		for i, r := range rotations {
			quats[i] = math.QuatFromVec4(r)
		}
		quats = b.adjuster.ApplyAll(quats)

		rotations = make([]math.Vec4, len(quats))
		for i, q := range quats {
			rotations[i] = q.Vec4()
		}
	}

	ms, err := transform.FromArrays(positions, rotations)
	if err != nil {
		if errors.Is(err, transform.ErrLengthMismatch) {
			b.log.Warn("positions and rotations do not match in size",
				zap.Uint64("frame", snap.Frame),
				zap.Int("positions", len(snap.Positions)),
				zap.Int("rotations", len(snap.Rotations)))
		}
		return nil, err
	}
	return ms, nil
}

// Build packs the snapshot. An empty snapshot returns a nil buffer and no
// error; callers must check before uploading.
func (b *Builder) Build(snap skeleton.Snapshot) (*texpack.Buffer, error) {
	ms, err := b.Matrices(snap)
	if err != nil {
		return nil, err
	}

	buf := texpack.Pack(ms)
	if buf == nil {
		b.log.Debug("no joints to pack", zap.Uint64("frame", snap.Frame))
		return nil, nil
	}

	b.log.Debug("packed frame",
		zap.Uint64("frame", snap.Frame),
		zap.Int("joints", buf.Height),
		zap.Int("floats", buf.Len()))
	return buf, nil
}
