package math

import (
	"fmt"

	"github.com/chewxy/math32"
)

// quatEpsilon is the smallest length Normalize accepts.
const quatEpsilon = 1e-6

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromVec4 interprets v as (x, y, z, w). The result is not normalized.
func QuatFromVec4(v Vec4) Quat {
	return Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}
}

// Vec4 returns the components as (x, y, z, w).
func (q Quat) Vec4() Vec4 {
	return Vec4{q.X, q.Y, q.Z, q.W}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s, c := math32.Sincos(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

// Rotator is a rotation in degrees in the convention of left-handed, Z-up
// game engines: Pitch turns about Y, Yaw about Z and Roll about X. Bone
// offsets in config files are (pitch, yaw, roll) triples.
type Rotator struct {
	Pitch, Yaw, Roll float32
}

// IsZero reports whether r applies no rotation.
func (r Rotator) IsZero() bool {
	return r.Pitch == 0 && r.Yaw == 0 && r.Roll == 0
}

// QuatFromRotator converts r applying roll, then pitch, then yaw. Positive
// pitch lifts +X towards +Z and positive roll turns +Y towards -Z, so in
// right-handed terms the result is qZ(yaw) * qY(-pitch) * qX(-roll).
func QuatFromRotator(r Rotator) Quat {
	sp, cp := math32.Sincos(DegToRad(r.Pitch) / 2)
	sy, cy := math32.Sincos(DegToRad(r.Yaw) / 2)
	sr, cr := math32.Sincos(DegToRad(r.Roll) / 2)

	return Quat{
		X: cr*sp*sy - sr*cp*cy,
		Y: -cr*sp*cy - sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
		W: cr*cp*cy + sr*sp*sy,
	}
}

// Length returns the quaternion norm.
func (q Quat) Length() float32 {
	return math32.Sqrt(q.Dot(q))
}

// Normalize returns the unit quaternion pointing the same way as q.
// A zero-length or non-finite q cannot describe a rotation and yields
// ErrDegenerateQuat.
func (q Quat) Normalize() (Quat, error) {
	length := q.Length()
	if math32.IsNaN(length) || math32.IsInf(length, 0) || length < quatEpsilon {
		return Quat{}, fmt.Errorf("%w: (%g, %g, %g, %g)", ErrDegenerateQuat, q.X, q.Y, q.Z, q.W)
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}, nil
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Mul multiplies two quaternions (combines rotations).
// q.Mul(other) rotates by other first, then by q.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate applies the rotation of unit quaternion q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// ApproxEqual reports whether q and other describe the same rotation within
// eps. q and -q are the same rotation.
func (q Quat) ApproxEqual(other Quat, eps float32) bool {
	return q.Vec4().ApproxEqual(other.Vec4(), eps) ||
		q.Vec4().ApproxEqual(Quat{-other.X, -other.Y, -other.Z, -other.W}.Vec4(), eps)
}
