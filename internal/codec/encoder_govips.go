//go:build govips && cgo

package codec

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

type govipsEncoder struct{}

func (govipsEncoder) Encode(buf pixbuf.Buffer, format string, quality int) ([]byte, error) {
	if err := Startup(); err != nil {
		return nil, err
	}

	// Hand the pixels to libvips losslessly, then export with its encoders.
	var staged bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.NoCompression}
	if err := encoder.Encode(&staged, buf.NRGBA()); err != nil {
		return nil, fmt.Errorf("%w: stage png: %v", ErrEncode, err)
	}

	img, err := vips.NewImageFromBuffer(staged.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: load into vips: %v", ErrEncode, err)
	}
	defer img.Close()

	switch format {
	case "png":
		params := vips.NewPngExportParams()
		data, _, err := img.ExportPng(params)
		if err != nil {
			return nil, fmt.Errorf("%w: png: %v", ErrEncode, err)
		}
		return data, nil
	case "jpeg":
		params := vips.NewJpegExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		data, _, err := img.ExportJpeg(params)
		if err != nil {
			return nil, fmt.Errorf("%w: jpeg: %v", ErrEncode, err)
		}
		return data, nil
	case "webp":
		params := vips.NewWebpExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		data, _, err := img.ExportWebp(params)
		if err != nil {
			return nil, fmt.Errorf("%w: webp: %v", ErrEncode, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
