package cutout

import (
	"image/color"

	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func whiteCanvas(w, h int) pixbuf.Buffer {
	return pixbuf.Filled(w, h, white)
}

// fillRect paints the inclusive rectangle [x0,x1]x[y0,y1].
func fillRect(b pixbuf.Buffer, x0, y0, x1, y1 int, c color.NRGBA) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			b.Set(x, y, c)
		}
	}
}

// fillDisk paints every pixel whose center lies within radius of (cx, cy).
func fillDisk(b pixbuf.Buffer, cx, cy, radius float64, c color.NRGBA) {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= radius*radius {
				b.Set(x, y, c)
			}
		}
	}
}

func alphaAt(b pixbuf.Buffer, x, y int) uint8 {
	return b.Alpha(b.Index(x, y))
}

// white2 is off-white but inside the default threshold.
var white2 = color.NRGBA{R: 250, G: 248, B: 252, A: 255}
