package texpack

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Faultbox/incubatio/pkg/math"
)

func seqMatrix(base float32) math.Mat4 {
	var m math.Mat4
	for i := range m {
		m[i] = base + float32(i)
	}
	return m
}

func TestPackEmpty(t *testing.T) {
	if buf := Pack(nil); buf != nil {
		t.Errorf("Pack(nil) = %+v, want nil", buf)
	}
	if buf := Pack([]math.Mat4{}); buf != nil {
		t.Errorf("Pack([]) = %+v, want nil", buf)
	}
}

func TestPackSingle(t *testing.T) {
	m := seqMatrix(0)
	buf := Pack([]math.Mat4{m})

	if buf.Width != 4 || buf.Height != 1 {
		t.Fatalf("size = %dx%d, want 4x1", buf.Width, buf.Height)
	}
	if buf.Len() != 16 {
		t.Fatalf("Len() = %d, want 16", buf.Len())
	}

	// Rows in declared order
	for r := 0; r < 4; r++ {
		row, _ := m.Row(r)
		for c := 0; c < 4; c++ {
			if got := buf.Data[r*4+c]; got != row[c] {
				t.Errorf("Data[%d] = %v, want M[%d][%d] = %v", r*4+c, got, r, c, row[c])
			}
		}
	}
}

func TestPackTwo(t *testing.T) {
	m1 := seqMatrix(0)
	m2 := seqMatrix(100)
	buf := Pack([]math.Mat4{m1, m2})

	if buf.Height != 2 {
		t.Errorf("Height = %d, want 2", buf.Height)
	}
	if buf.Len() != 32 {
		t.Fatalf("Len() = %d, want 32", buf.Len())
	}
	for i := 0; i < 16; i++ {
		if buf.Data[i] != m1[i] {
			t.Errorf("Data[%d] = %v, want %v (M1)", i, buf.Data[i], m1[i])
		}
		if buf.Data[16+i] != m2[i] {
			t.Errorf("Data[%d] = %v, want %v (M2)", 16+i, buf.Data[16+i], m2[i])
		}
	}
}

func TestTexel(t *testing.T) {
	m := math.Translate(7, 8, 9)
	buf := Pack([]math.Mat4{math.Identity(), m})

	// Texel (3, 1) is row 3 of the second matrix
	texel, err := buf.Texel(3, 1)
	if err != nil {
		t.Fatalf("Texel: %v", err)
	}
	if texel != (math.Vec4{0, 0, 0, 1}) {
		t.Errorf("Texel(3, 1) = %v, want (0, 0, 0, 1)", texel)
	}

	texel, err = buf.Texel(0, 1)
	if err != nil {
		t.Fatalf("Texel: %v", err)
	}
	if texel != (math.Vec4{1, 0, 0, 7}) {
		t.Errorf("Texel(0, 1) = %v, want (1, 0, 0, 7)", texel)
	}

	for _, pt := range [][2]int{{-1, 0}, {4, 0}, {0, 2}, {0, -1}} {
		if _, err := buf.Texel(pt[0], pt[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Texel(%d, %d): expected ErrOutOfBounds, got %v", pt[0], pt[1], err)
		}
	}
}

func TestMatrixReadBack(t *testing.T) {
	ms := []math.Mat4{seqMatrix(1), seqMatrix(50), seqMatrix(-20)}
	buf := Pack(ms)

	for i, want := range ms {
		got, err := buf.Matrix(i)
		if err != nil {
			t.Fatalf("Matrix(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("Matrix(%d) = %v, want %v", i, got, want)
		}
	}
	if _, err := buf.Matrix(3); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Matrix(3): expected ErrOutOfBounds, got %v", err)
	}
}

func TestBytesLayout(t *testing.T) {
	buf := Pack([]math.Mat4{math.Identity()})
	b := buf.Bytes()

	if len(b) != 64 {
		t.Fatalf("len(Bytes()) = %d, want 64", len(b))
	}
	// 1.0f little-endian is 00 00 80 3f
	if !bytes.Equal(b[0:4], []byte{0x00, 0x00, 0x80, 0x3f}) {
		t.Errorf("first float bytes = % x, want 00 00 80 3f", b[0:4])
	}
	if !bytes.Equal(b[4:8], []byte{0, 0, 0, 0}) {
		t.Errorf("second float bytes = % x, want zeros", b[4:8])
	}
}

func TestWriteToDecode(t *testing.T) {
	buf := Pack([]math.Mat4{seqMatrix(3), math.Translate(1, -2, 3)})

	var out bytes.Buffer
	n, err := buf.WriteTo(&out)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != 128 {
		t.Errorf("WriteTo wrote %d bytes, want 128", n)
	}

	decoded, err := Decode(out.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Width != buf.Width || decoded.Height != buf.Height {
		t.Errorf("decoded size %dx%d, want %dx%d", decoded.Width, decoded.Height, buf.Width, buf.Height)
	}
	for i := range buf.Data {
		if decoded.Data[i] != buf.Data[i] {
			t.Fatalf("decoded Data[%d] = %v, want %v", i, decoded.Data[i], buf.Data[i])
		}
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode(make([]byte, 63)); err == nil {
		t.Error("expected error for truncated payload")
	}
	buf, err := Decode(nil)
	if err != nil || buf != nil {
		t.Errorf("Decode(nil) = %v, %v; want nil, nil", buf, err)
	}
}
