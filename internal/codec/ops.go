package codec

import (
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

type Fit int

const (
	// FitContain scales to fit inside the target and pads with the fill color.
	FitContain Fit = iota
	// FitFill stretches to the exact target size.
	FitFill
)

type ResizeOptions struct {
	Fit  Fit
	Fill color.NRGBA
}

// Flatten composites buf over an opaque background and returns an opaque buffer.
func Flatten(buf pixbuf.Buffer, bg color.NRGBA) pixbuf.Buffer {
	out := pixbuf.New(buf.Width, buf.Height)
	for i := 0; i < len(buf.Data); i += pixbuf.Channels {
		a := uint32(buf.Data[i+3])
		inv := 255 - a
		out.Data[i] = uint8((uint32(buf.Data[i])*a + uint32(bg.R)*inv + 127) / 255)
		out.Data[i+1] = uint8((uint32(buf.Data[i+1])*a + uint32(bg.G)*inv + 127) / 255)
		out.Data[i+2] = uint8((uint32(buf.Data[i+2])*a + uint32(bg.B)*inv + 127) / 255)
		out.Data[i+3] = 255
	}
	return out
}

// AutoTrim crops rows and columns whose pixels all lie within threshold of bg
// on every color channel. It returns the cropped buffer and its dimensions.
// A buffer made only of background is returned unchanged.
func AutoTrim(buf pixbuf.Buffer, bg color.NRGBA, threshold uint8) (pixbuf.Buffer, int, int) {
	minX, minY := buf.Width, buf.Height
	maxX, maxY := -1, -1

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			o := buf.Offset(x, y)
			if isBackground(buf.Data[o:o+3], bg, threshold) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < 0 {
		return buf.Clone(), buf.Width, buf.Height
	}

	w, h := maxX-minX+1, maxY-minY+1
	out := pixbuf.New(w, h)
	rowSize := w * pixbuf.Channels
	for y := 0; y < h; y++ {
		so := buf.Offset(minX, minY+y)
		copy(out.Data[y*rowSize:(y+1)*rowSize], buf.Data[so:so+rowSize])
	}
	return out, w, h
}

func isBackground(rgb []byte, bg color.NRGBA, threshold uint8) bool {
	return absDiff(rgb[0], bg.R) <= threshold &&
		absDiff(rgb[1], bg.G) <= threshold &&
		absDiff(rgb[2], bg.B) <= threshold
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// Resize scales buf to width x height. Content that already has the fitted
// size is copied without resampling, so padding never blurs pixels.
func Resize(buf pixbuf.Buffer, width, height int, opts ResizeOptions) pixbuf.Buffer {
	if width <= 0 || height <= 0 || buf.Width <= 0 || buf.Height <= 0 {
		return pixbuf.New(max(width, 0), max(height, 0))
	}

	src := buf.NRGBA()
	if opts.Fit == FitFill {
		if width == buf.Width && height == buf.Height {
			return buf.Clone()
		}
		return pixbuf.FromImage(imaging.Resize(src, width, height, imaging.Lanczos))
	}

	scale := math.Min(float64(width)/float64(buf.Width), float64(height)/float64(buf.Height))
	fitW := max(1, int(math.Round(float64(buf.Width)*scale)))
	fitH := max(1, int(math.Round(float64(buf.Height)*scale)))

	content := src
	if fitW != buf.Width || fitH != buf.Height {
		content = imaging.Resize(src, fitW, fitH, imaging.Lanczos)
	}

	canvas := imaging.New(width, height, opts.Fill)
	return pixbuf.FromImage(imaging.PasteCenter(canvas, content))
}
