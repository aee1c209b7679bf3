// Package transform composes joint positions, rotations and scales into
// homogeneous matrices.
//
// Matrices follow the convention of pkg/math: row-major storage with column
// vectors, so the translation of a composed matrix is its column 3.
package transform

import (
	"errors"
	"fmt"

	"github.com/Faultbox/incubatio/pkg/math"
)

// ErrLengthMismatch is returned when position and rotation arrays have
// different lengths.
var ErrLengthMismatch = errors.New("positions and rotations differ in length")

// Transform places a joint: scale first, then rotation, then translation.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	// Scale is per-axis. The zero value means unit scale.
	Scale math.Vec3
}

// New returns a transform with unit scale.
func New(position math.Vec3, rotation math.Quat) Transform {
	return Transform{
		Position: position,
		Rotation: rotation,
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Compose builds T * R * S for t. The rotation is normalized first; a
// rotation that cannot be normalized returns math.ErrDegenerateQuat.
func Compose(t Transform) (math.Mat4, error) {
	rot, err := t.Rotation.Normalize()
	if err != nil {
		return math.Mat4{}, fmt.Errorf("composing transform: %w", err)
	}

	scale := t.Scale
	if scale == (math.Vec3{}) {
		scale = math.Vec3{X: 1, Y: 1, Z: 1}
	}

	m := math.Translate(t.Position.X, t.Position.Y, t.Position.Z)
	m = m.Mul(math.FromQuat(rot))
	m = m.Mul(math.Scale(scale.X, scale.Y, scale.Z))
	return m, nil
}

// ComposeAll composes every transform in order. It stops at the first
// failure and returns no partial result.
func ComposeAll(ts []Transform) ([]math.Mat4, error) {
	out := make([]math.Mat4, 0, len(ts))
	for i, t := range ts {
		m, err := Compose(t)
		if err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// FromArrays builds one matrix per joint from parallel position and
// rotation arrays. Rotations are (x, y, z, w) quaternions and scale is 1.
// Arrays of different lengths return ErrLengthMismatch; the shorter one is
// never used to truncate the result.
func FromArrays(positions []math.Vec3, rotations []math.Vec4) ([]math.Mat4, error) {
	if len(positions) != len(rotations) {
		return nil, fmt.Errorf("%w: %d positions, %d rotations",
			ErrLengthMismatch, len(positions), len(rotations))
	}

	ts := make([]Transform, len(positions))
	for i := range positions {
		ts[i] = New(positions[i], math.QuatFromVec4(rotations[i]))
	}
	return ComposeAll(ts)
}
