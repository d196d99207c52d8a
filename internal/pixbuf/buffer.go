// Package pixbuf holds the raw RGBA representation every pixel algorithm works on.
package pixbuf

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Channels is the fixed number of bytes per pixel (R, G, B, A).
const Channels = 4

// DefaultWhiteThreshold is how far below 255 a channel may sit and still count as white.
const DefaultWhiteThreshold = 10

var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// Buffer is a decoded image in non-premultiplied RGBA order.
// Pixel (x, y) occupies Data[(y*Width+x)*4 : (y*Width+x)*4+4].
type Buffer struct {
	Width  int
	Height int
	Data   []byte
}

// New allocates a fully transparent buffer.
func New(width, height int) Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Buffer{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height*Channels),
	}
}

// Filled allocates a buffer where every pixel is c.
func Filled(width, height int, c color.NRGBA) Buffer {
	b := New(width, height)
	for i := 0; i < len(b.Data); i += Channels {
		b.Data[i] = c.R
		b.Data[i+1] = c.G
		b.Data[i+2] = c.B
		b.Data[i+3] = c.A
	}
	return b
}

// FromImage copies any image into a buffer with origin at (0, 0).
func FromImage(img image.Image) Buffer {
	bounds := img.Bounds()
	b := New(bounds.Dx(), bounds.Dy())

	if src, ok := img.(*image.NRGBA); ok {
		rowSize := b.Width * Channels
		for y := 0; y < b.Height; y++ {
			si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(b.Data[y*rowSize:(y+1)*rowSize], src.Pix[si:si+rowSize])
		}
		return b
	}

	dst := &image.NRGBA{
		Pix:    b.Data,
		Stride: b.Width * Channels,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
	draw.Draw(dst, dst.Rect, img, bounds.Min, draw.Src)
	return b
}

// NRGBA returns an image view sharing the buffer's memory.
func (b Buffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Data,
		Stride: b.Width * Channels,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

func (b Buffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, b.Width, b.Height)
	}
	if len(b.Data) != b.Width*b.Height*Channels {
		return fmt.Errorf("%w: data length %d, want %d", ErrInvalidBuffer, len(b.Data), b.Width*b.Height*Channels)
	}
	return nil
}

func (b Buffer) Clone() Buffer {
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return Buffer{Width: b.Width, Height: b.Height, Data: data}
}

// Index is the linear pixel index y*Width+x.
func (b Buffer) Index(x, y int) int {
	return y*b.Width + x
}

// Offset is the byte offset of pixel (x, y).
func (b Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * Channels
}

func (b Buffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

func (b Buffer) Len() int {
	return b.Width * b.Height
}

// Alpha returns the alpha of the pixel with linear index i.
func (b Buffer) Alpha(i int) uint8 {
	return b.Data[i*Channels+3]
}

func (b Buffer) SetAlpha(i int, a uint8) {
	b.Data[i*Channels+3] = a
}

func (b Buffer) At(x, y int) color.NRGBA {
	o := b.Offset(x, y)
	return color.NRGBA{R: b.Data[o], G: b.Data[o+1], B: b.Data[o+2], A: b.Data[o+3]}
}

func (b Buffer) Set(x, y int, c color.NRGBA) {
	o := b.Offset(x, y)
	b.Data[o] = c.R
	b.Data[o+1] = c.G
	b.Data[o+2] = c.B
	b.Data[o+3] = c.A
}

// IsWhite reports whether pixel i is background: every color channel within
// threshold of 255, or fully transparent.
func (b Buffer) IsWhite(i int, threshold uint8) bool {
	o := i * Channels
	if b.Data[o+3] == 0 {
		return true
	}
	limit := 255 - threshold
	return b.Data[o] >= limit && b.Data[o+1] >= limit && b.Data[o+2] >= limit
}

// IsWhiteColor applies the color half of IsWhite and ignores alpha.
func IsWhiteColor(r, g, b, threshold uint8) bool {
	limit := 255 - threshold
	return r >= limit && g >= limit && b >= limit
}
