package cutout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmoothEdgesValues(t *testing.T) {
	buf := whiteCanvas(3, 3)
	for i := 0; i < buf.Len(); i++ {
		buf.SetAlpha(i, 200)
	}
	buf.SetAlpha(buf.Index(0, 0), 0)

	edges := SmoothEdges(buf)
	assert.Equal(t, 3, edges)

	// (1,0): five in-bounds neighbors, one transparent.
	assert.Equal(t, uint8(180), alphaAt(buf, 1, 0))
	assert.Equal(t, uint8(180), alphaAt(buf, 0, 1))
	// (1,1): eight neighbors, one transparent: 200 * (1 - 1/16) = 187.5.
	assert.Equal(t, uint8(188), alphaAt(buf, 1, 1))
	assert.Equal(t, uint8(200), alphaAt(buf, 2, 2))
	assert.Equal(t, uint8(0), alphaAt(buf, 0, 0))
}

func TestSmoothEdgesReadsSnapshot(t *testing.T) {
	// A single opaque pixel surrounded by transparency loses half its alpha,
	// and an adjacent edge pixel's update must not influence it.
	buf := whiteCanvas(5, 5)
	for i := 0; i < buf.Len(); i++ {
		buf.SetAlpha(i, 0)
	}
	buf.SetAlpha(buf.Index(2, 2), 255)
	buf.SetAlpha(buf.Index(3, 2), 255)

	SmoothEdges(buf)
	// Each has 8 neighbors, 7 transparent: 255 * (1 - 7/16) = 143.4.
	assert.Equal(t, uint8(143), alphaAt(buf, 2, 2))
	assert.Equal(t, uint8(143), alphaAt(buf, 3, 2))
}

func TestSmoothEdgesBounds(t *testing.T) {
	buf := whiteCanvas(90, 90)
	fillDisk(buf, 45, 45, 30, black)
	fillRect(buf, 0, 40, 89, 41, black)
	for i := 0; i < buf.Len(); i++ {
		buf.SetAlpha(i, uint8(1+(i*37)%255))
	}
	FloodFill(buf, 10)
	before := buf.Clone()

	SmoothEdges(buf)
	for i := 0; i < buf.Len(); i++ {
		orig := float64(before.Alpha(i))
		got := float64(buf.Alpha(i))
		if !assert.LessOrEqual(t, got, orig, "pixel %d", i) {
			return
		}
		if !assert.GreaterOrEqual(t, got, 0.3*orig, "pixel %d", i) {
			return
		}
	}
}

func TestSmoothEdgesWithoutTransparencyIsNoop(t *testing.T) {
	buf := whiteCanvas(10, 10)
	before := buf.Clone()
	assert.Equal(t, 0, SmoothEdges(buf))
	assert.Equal(t, before.Data, buf.Data)
}
