package math

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Mat4 is a 4x4 matrix in row-major order.
//
// m[4*r + c] is the element in the r'th row and c'th column. Points are
// column vectors (p' = M * p), so translation lives in column 3 and row 3 of
// an affine matrix is (0, 0, 0, 1). Rows are written to textures in order,
// which is the layout shaders read with a row-major float4x4.
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	return Mat4{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// FromQuat returns the rotation matrix of q. q must be unit length; a
// non-unit q produces a non-orthogonal block.
func FromQuat(q Quat) Mat4 {
	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy - zw), 2 * (xz + yw), 0,
		2 * (xy + zw), 1 - 2*(xx+zz), 2 * (yz - xw), 0,
		2 * (xz - yw), 2 * (yz + xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// At returns the element at row r, column c.
func (m Mat4) At(r, c int) float32 {
	return m[4*r+c]
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			result[4*r+c] =
				m[4*r+0]*other[0*4+c] +
					m[4*r+1]*other[1*4+c] +
					m[4*r+2]*other[2*4+c] +
					m[4*r+3]*other[3*4+c]
		}
	}
	return result
}

// Transpose swaps rows and columns.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t[4*c+r] = m[4*r+c]
		}
	}
	return t
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3]
	y := m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7]
	z := m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11]
	w := m[12]*p.X + m[13]*p.Y + m[14]*p.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// MulVec4 multiplies the matrix by a column vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	var out Vec4
	for r := 0; r < 4; r++ {
		out[r] = m[4*r]*v[0] + m[4*r+1]*v[1] + m[4*r+2]*v[2] + m[4*r+3]*v[3]
	}
	return out
}

// Translation returns the translation part (column 3).
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// Row returns row i as (M[i][0], M[i][1], M[i][2], M[i][3]).
func (m Mat4) Row(i int) (Vec4, error) {
	if i < 0 || i > 3 {
		return Vec4{}, fmt.Errorf("row %d: %w", i, ErrIndexOutOfRange)
	}
	return Vec4{m[4*i], m[4*i+1], m[4*i+2], m[4*i+3]}, nil
}

// Column returns column i as (M[0][i], M[1][i], M[2][i], M[3][i]).
// Column 3 of an affine matrix is its translation with w = 1.
// An index outside [0, 3] returns ErrIndexOutOfRange; the zero vector
// returned alongside it is not a value.
func (m Mat4) Column(i int) (Vec4, error) {
	if i < 0 || i > 3 {
		return Vec4{}, fmt.Errorf("column %d: %w", i, ErrIndexOutOfRange)
	}
	return Vec4{m[i], m[4+i], m[8+i], m[12+i]}, nil
}

// ApproxEqual reports whether every element differs by at most eps.
func (m Mat4) ApproxEqual(other Mat4, eps float32) bool {
	for i := range m {
		if math32.Abs(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}
