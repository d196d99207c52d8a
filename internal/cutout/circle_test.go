package cutout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyCircularMask(t *testing.T) {
	buf := whiteCanvas(40, 40)
	ApplyCircularMask(buf)

	for _, p := range [][2]int{{0, 0}, {39, 0}, {0, 39}, {39, 39}} {
		assert.Equal(t, uint8(0), alphaAt(buf, p[0], p[1]), "corner %v", p)
	}
	assert.Equal(t, uint8(255), alphaAt(buf, 20, 20))
	assert.Equal(t, uint8(255), alphaAt(buf, 20, 1), "inside near the top edge")

	// Interior white keeps its color and stays opaque.
	assert.Equal(t, white, buf.At(10, 20))

	// (5,5) straddles the rim: one of its 16 subsamples is inside.
	assert.Equal(t, uint8(16), alphaAt(buf, 5, 5))
	assert.Equal(t, uint8(255), alphaAt(buf, 6, 6))
}

func TestApplyCircularMaskScalesExistingAlpha(t *testing.T) {
	buf := whiteCanvas(20, 20)
	for i := 0; i < buf.Len(); i++ {
		buf.SetAlpha(i, 100)
	}
	ApplyCircularMask(buf)
	assert.Equal(t, uint8(100), alphaAt(buf, 10, 10))
	assert.Equal(t, uint8(0), alphaAt(buf, 0, 0))
}
