// Package codec converts between encoded image bytes and pixel buffers and
// provides the flatten, trim and resize operations the cutout engine builds on.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

var (
	ErrDecode            = errors.New("decode image")
	ErrEncode            = errors.New("encode image")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

type decoder struct {
	format string
	match  func(head []byte) bool
	decode func(io.Reader) (image.Image, error)
}

func prefix(magic string) func([]byte) bool {
	return func(head []byte) bool { return bytes.HasPrefix(head, []byte(magic)) }
}

// decoders are matched by magic number ahead of tga, whose registered
// empty magic would otherwise claim every input in image.Decode.
var decoders = []decoder{
	{format: "png", match: prefix("\x89PNG\r\n\x1a\n"), decode: png.Decode},
	{format: "jpeg", match: prefix("\xff\xd8"), decode: jpeg.Decode},
	{format: "gif", match: func(h []byte) bool {
		return bytes.HasPrefix(h, []byte("GIF87a")) || bytes.HasPrefix(h, []byte("GIF89a"))
	}, decode: gif.Decode},
	{format: "webp", match: func(h []byte) bool {
		return len(h) >= 12 && string(h[:4]) == "RIFF" && string(h[8:12]) == "WEBP"
	}, decode: webp.Decode},
	{format: "bmp", match: prefix("BM"), decode: bmp.Decode},
	{format: "tiff", match: func(h []byte) bool {
		return bytes.HasPrefix(h, []byte("II*\x00")) || bytes.HasPrefix(h, []byte("MM\x00*"))
	}, decode: tiff.Decode},
}

// Decode reads png, jpeg, gif, webp, bmp, tiff or tga bytes into a buffer.
// TGA has no magic number and is tried last.
func Decode(data []byte) (pixbuf.Buffer, string, error) {
	if len(data) == 0 {
		return pixbuf.Buffer{}, "", fmt.Errorf("%w: empty input", ErrDecode)
	}

	dec := decoder{format: "tga", decode: tga.Decode}
	for _, d := range decoders {
		if d.match(data) {
			dec = d
			break
		}
	}

	img, err := dec.decode(bytes.NewReader(data))
	if err != nil {
		return pixbuf.Buffer{}, "", fmt.Errorf("%w: %s: %v", ErrDecode, dec.format, err)
	}
	return pixbuf.FromImage(img), dec.format, nil
}

// Encode writes buf in the requested format. Quality applies to lossy
// encoders only and is ignored when outside 1..100.
func Encode(buf pixbuf.Buffer, format string, quality int) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return defaultEncoder.Encode(buf, NormalizeFormat(format), quality)
}

// Encoder is implemented by the stdlib/nativewebp backend and, with the
// govips build tag, by libvips.
type Encoder interface {
	Encode(buf pixbuf.Buffer, format string, quality int) ([]byte, error)
}

var defaultEncoder = newEncoder()

// NormalizeFormat folds aliases and defaults to png. Unknown formats are
// returned lowercased so Encode can reject them.
func NormalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", "png":
		return "png"
	case "jpg", "jpeg":
		return "jpeg"
	default:
		return f
	}
}

// SupportedFormat reports whether Encode can write format.
func SupportedFormat(format string) bool {
	switch NormalizeFormat(format) {
	case "png", "jpeg", "webp":
		return true
	default:
		return false
	}
}

// Extension is the file extension used for a normalized format.
func Extension(format string) string {
	switch NormalizeFormat(format) {
	case "jpeg":
		return "jpg"
	default:
		return NormalizeFormat(format)
	}
}

func ContentType(format string) string {
	switch NormalizeFormat(format) {
	case "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
