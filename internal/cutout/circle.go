package cutout

import (
	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

// maskSubsamples is the per-axis supersampling used to rasterize the rim.
const maskSubsamples = 4

// ApplyCircularMask keeps the pixels inside the inscribed circle of the
// square canvas and makes everything outside transparent (dest-in). Pixels
// on the rim keep alpha proportional to their coverage.
func ApplyCircularMask(buf pixbuf.Buffer) {
	size := min(buf.Width, buf.Height)
	radius := float64(size) / 2
	cx := float64(buf.Width) / 2
	cy := float64(buf.Height) / 2
	r2 := radius * radius

	const total = maskSubsamples * maskSubsamples
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			covered := 0
			for sy := 0; sy < maskSubsamples; sy++ {
				py := float64(y) + (float64(sy)+0.5)/maskSubsamples - cy
				for sx := 0; sx < maskSubsamples; sx++ {
					px := float64(x) + (float64(sx)+0.5)/maskSubsamples - cx
					if px*px+py*py <= r2 {
						covered++
					}
				}
			}

			if covered == total {
				continue
			}
			i := buf.Index(x, y)
			a := int(buf.Alpha(i))
			buf.SetAlpha(i, uint8((a*covered+total/2)/total))
		}
	}
}
