package cutout

import (
	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

// narrowRun is the longest white run still protected as a thin stroke.
const narrowRun = 2

// FloodFill clears the alpha of every white pixel 4-connected to the canvas
// border, skipping white runs of at most two pixels along either axis so thin
// anti-aliased strokes survive. Colors are untouched. It returns the number
// of pixels cleared.
func FloodFill(buf pixbuf.Buffer, threshold uint8) int {
	w, h := buf.Width, buf.Height
	if w <= 0 || h <= 0 {
		return 0
	}

	white := make([]bool, w*h)
	for i := range white {
		white[i] = buf.IsWhite(i, threshold)
	}
	narrow := narrowRegions(white, w, h)
	visited := make([]bool, w*h)

	admit := func(i int) bool {
		return white[i] && !narrow[i] && !visited[i]
	}

	cleared := 0
	queue := make([]int, 0, 1024)
	fill := func(seed int) {
		if !admit(seed) {
			return
		}
		visited[seed] = true
		queue = append(queue[:0], seed)

		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			buf.SetAlpha(curr, 0)
			cleared++

			x, y := curr%w, curr/w
			if x > 0 && admit(curr-1) {
				visited[curr-1] = true
				queue = append(queue, curr-1)
			}
			if x < w-1 && admit(curr+1) {
				visited[curr+1] = true
				queue = append(queue, curr+1)
			}
			if y > 0 && admit(curr-w) {
				visited[curr-w] = true
				queue = append(queue, curr-w)
			}
			if y < h-1 && admit(curr+w) {
				visited[curr+w] = true
				queue = append(queue, curr+w)
			}
		}
	}

	for x := 0; x < w; x++ {
		fill(x)
	}
	for x := 0; x < w; x++ {
		fill((h-1)*w + x)
	}
	for y := 0; y < h; y++ {
		fill(y * w)
	}
	for y := 0; y < h; y++ {
		fill(y*w + w - 1)
	}

	return cleared
}

// narrowRegions marks white pixels whose maximal horizontal or vertical
// white run is at most narrowRun long.
func narrowRegions(white []bool, w, h int) []bool {
	narrow := make([]bool, w*h)

	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; {
			if !white[row+x] {
				x++
				continue
			}
			end := x
			for end < w && white[row+end] {
				end++
			}
			if end-x <= narrowRun {
				for i := x; i < end; i++ {
					narrow[row+i] = true
				}
			}
			x = end
		}
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; {
			if !white[y*w+x] {
				y++
				continue
			}
			end := y
			for end < h && white[end*w+x] {
				end++
			}
			if end-y <= narrowRun {
				for i := y; i < end; i++ {
					narrow[i*w+x] = true
				}
			}
			y = end
		}
	}

	return narrow
}
