//go:build !govips || !cgo

package codec

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/HugoSmits86/nativewebp"

	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

type stdlibEncoder struct{}

func (stdlibEncoder) Encode(buf pixbuf.Buffer, format string, quality int) ([]byte, error) {
	return encodeStd(buf, format, quality)
}

func encodeStd(buf pixbuf.Buffer, format string, quality int) ([]byte, error) {
	var out bytes.Buffer
	img := buf.NRGBA()

	switch format {
	case "png":
		encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := encoder.Encode(&out, img); err != nil {
			return nil, fmt.Errorf("%w: png: %v", ErrEncode, err)
		}
	case "jpeg":
		if quality <= 0 || quality > 100 {
			quality = 80
		}
		if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("%w: jpeg: %v", ErrEncode, err)
		}
	case "webp":
		// nativewebp is lossless; quality does not apply.
		if err := nativewebp.Encode(&out, img, nil); err != nil {
			return nil, fmt.Errorf("%w: webp: %v", ErrEncode, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return out.Bytes(), nil
}
