package cutout

import (
	"math"

	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

const (
	edgeFalloff  = 0.5
	edgeMinAlpha = 0.3
)

var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

type edgeSample struct {
	x, y int
}

// SmoothEdges softens opaque pixels bordering transparent ones. Each edge
// pixel loses up to half its alpha in proportion to its transparent
// neighbors and never drops below 30% of its original alpha. All new values
// are computed from the buffer as it was on entry. It returns the number of
// edge pixels.
func SmoothEdges(buf pixbuf.Buffer) int {
	var edges []edgeSample
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			if buf.Alpha(buf.Index(x, y)) == 0 {
				continue
			}
			if transparent, _ := countNeighbors(buf, x, y); transparent > 0 {
				edges = append(edges, edgeSample{x: x, y: y})
			}
		}
	}

	alphas := make([]uint8, len(edges))
	for i, e := range edges {
		transparent, total := countNeighbors(buf, e.x, e.y)
		original := float64(buf.Alpha(buf.Index(e.x, e.y)))
		ratio := float64(transparent) / float64(total)

		v := original * (1 - ratio*edgeFalloff)
		if floor := original * edgeMinAlpha; v < floor {
			v = floor
		}
		alphas[i] = uint8(math.Min(math.Round(v), original))
	}

	for i, e := range edges {
		buf.SetAlpha(buf.Index(e.x, e.y), alphas[i])
	}
	return len(edges)
}

func countNeighbors(buf pixbuf.Buffer, x, y int) (transparent, total int) {
	for _, d := range neighborOffsets {
		nx, ny := x+d[0], y+d[1]
		if !buf.InBounds(nx, ny) {
			continue
		}
		total++
		if buf.Alpha(buf.Index(nx, ny)) == 0 {
			transparent++
		}
	}
	return transparent, total
}
