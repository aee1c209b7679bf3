// Package texpack lays out a sequence of 4x4 matrices as a 32-bit float RGBA
// texture: 4 texels wide, one image row per matrix, one matrix row per texel.
package texpack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"

	"github.com/Faultbox/incubatio/pkg/math"
)

const (
	// TexelWidth is the texture width. Each texel holds one matrix row.
	TexelWidth = 4
	// Channels is the number of floats per texel (R, G, B, A).
	Channels = 4
	// FloatsPerMatrix is the payload size of one matrix.
	FloatsPerMatrix = TexelWidth * Channels
)

// ErrOutOfBounds is returned when a texel or matrix index lies outside the buffer.
var ErrOutOfBounds = errors.New("texel out of bounds")

// Buffer is a packed float texture. Data holds Width*Height texels of
// Channels floats each, rows top to bottom.
type Buffer struct {
	Width  int
	Height int
	Data   []float32
}

// Pack writes matrices into a new Buffer in order. Matrix i, row r lands in
// texel (r, i), i.e. at float offset (i*4 + r) * 4, as
// [M[r][0], M[r][1], M[r][2], M[r][3]].
//
// An empty sequence has nothing to upload and returns nil.
func Pack(matrices []math.Mat4) *Buffer {
	if len(matrices) == 0 {
		return nil
	}

	buf := &Buffer{
		Width:  TexelWidth,
		Height: len(matrices),
		Data:   make([]float32, len(matrices)*FloatsPerMatrix),
	}

	for i, m := range matrices {
		for r := 0; r < 4; r++ {
			start := (i*4 + r) * Channels
			buf.Data[start+0] = m.At(r, 0) // R
			buf.Data[start+1] = m.At(r, 1) // G
			buf.Data[start+2] = m.At(r, 2) // B
			buf.Data[start+3] = m.At(r, 3) // A
		}
	}
	return buf
}

// Len returns the number of floats in the buffer.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Texel returns the RGBA value at column x, row y.
func (b *Buffer) Texel(x, y int) (math.Vec4, error) {
	if b == nil || x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return math.Vec4{}, fmt.Errorf("texel (%d, %d): %w", x, y, ErrOutOfBounds)
	}
	start := (y*b.Width + x) * Channels
	return math.Vec4{b.Data[start], b.Data[start+1], b.Data[start+2], b.Data[start+3]}, nil
}

// Matrix reads matrix i back out of the buffer.
func (b *Buffer) Matrix(i int) (math.Mat4, error) {
	if b == nil || i < 0 || i >= b.Height {
		return math.Mat4{}, fmt.Errorf("matrix %d: %w", i, ErrOutOfBounds)
	}
	var m math.Mat4
	copy(m[:], b.Data[i*FloatsPerMatrix:(i+1)*FloatsPerMatrix])
	return m, nil
}

// Bytes returns the payload as little-endian float32s, ready for upload to a
// 32-bit float RGBA texture.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b.Data)*4)
	for i, f := range b.Data {
		binary.LittleEndian.PutUint32(out[i*4:], gomath.Float32bits(f))
	}
	return out
}

// WriteTo writes the raw payload to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

// Decode parses a raw payload written by WriteTo back into a Buffer.
func Decode(data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data)%(FloatsPerMatrix*4) != 0 {
		return nil, fmt.Errorf("payload of %d bytes is not a whole number of matrices", len(data))
	}

	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = gomath.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return &Buffer{
		Width:  TexelWidth,
		Height: len(floats) / FloatsPerMatrix,
		Data:   floats,
	}, nil
}
