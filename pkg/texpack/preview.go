package texpack

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Format names an image encoding for previews.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatTIFF Format = "tiff"
	FormatTGA  Format = "tga"
)

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "tga":
		return FormatTGA, nil
	default:
		return "", fmt.Errorf("unknown preview format %q", s)
	}
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

var (
	colorZero     = color.NRGBA{R: 24, G: 24, B: 24, A: 255}
	colorPositive = color.NRGBA{R: 235, G: 80, B: 60, A: 255}
	colorNegative = color.NRGBA{R: 60, G: 120, B: 235, A: 255}
)

// Preview renders the buffer as a heat map for eyeballing. Each float becomes
// one pixel, so the image is 16 pixels wide and one row per matrix before
// scaling. Values are clamped to [-valueRange, valueRange]; positive values
// shade red, negative values blue. scale upsamples with nearest neighbor.
func Preview(b *Buffer, valueRange float32, scale int) *image.NRGBA {
	if b == nil || b.Height == 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	if valueRange <= 0 {
		valueRange = 1
	}
	if scale < 1 {
		scale = 1
	}

	w := b.Width * Channels
	src := image.NewNRGBA(image.Rect(0, 0, w, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < w; x++ {
			src.SetNRGBA(x, y, heat(b.Data[y*w+x], valueRange))
		}
	}
	if scale == 1 {
		return src
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w*scale, b.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func heat(v, valueRange float32) color.NRGBA {
	t := v / valueRange
	if t > 1 {
		t = 1
	}
	if t < -1 {
		t = -1
	}
	target := colorPositive
	if t < 0 {
		target = colorNegative
		t = -t
	}
	return color.NRGBA{
		R: lerp8(colorZero.R, target.R, t),
		G: lerp8(colorZero.G, target.G, t),
		B: lerp8(colorZero.B, target.B, t),
		A: 255,
	}
}

func lerp8(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t + 0.5)
}

// EncodePreview writes img to w in the given format.
func EncodePreview(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatTGA:
		return tga.Encode(w, img)
	default:
		return fmt.Errorf("unknown preview format %q", f)
	}
}
