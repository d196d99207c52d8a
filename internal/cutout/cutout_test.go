package cutout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunamismax/avatarforge/internal/domain"
	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

func TestRemoveCircularLogo(t *testing.T) {
	src := whiteCanvas(200, 200)
	fillDisk(src, 100, 100, 80, black)

	res, err := Remove(src, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, ShapeCircular, res.Shape)
	assert.Equal(t, domain.StageMasked, res.Stage)
	assert.Equal(t, 160, res.Buffer.Width)
	assert.Equal(t, 160, res.Buffer.Height)

	assert.Equal(t, uint8(0), alphaAt(res.Buffer, 0, 0))
	assert.Equal(t, black, res.Buffer.At(80, 80))
	assert.Equal(t, 0, res.Cleared)
}

func TestRemoveIrregularLogo(t *testing.T) {
	src := whiteCanvas(140, 80)
	fillRect(src, 20, 20, 119, 59, black)

	res, err := Remove(src, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, ShapeNonCircular, res.Shape)
	assert.Equal(t, domain.StageSmoothed, res.Stage)
	assert.Equal(t, 100, res.TrimmedWidth)
	assert.Equal(t, 40, res.TrimmedHeight)
	assert.Equal(t, 100, res.Buffer.Width)
	assert.Equal(t, 100, res.Buffer.Height)

	assert.Equal(t, uint8(0), alphaAt(res.Buffer, 0, 0))
	assert.Equal(t, uint8(0), alphaAt(res.Buffer, 50, 10))
	assert.Equal(t, uint8(255), alphaAt(res.Buffer, 50, 50))
	assert.Equal(t, 100*60, res.Cleared)
	assert.Greater(t, res.EdgePixels, 0)

	edge := alphaAt(res.Buffer, 50, 30)
	assert.Less(t, edge, uint8(255))
	assert.GreaterOrEqual(t, float64(edge), 0.3*255)
}

func TestRemoveTallCanvasSkipsSampling(t *testing.T) {
	// The subject trims to a square but the source is 150x300.
	src := whiteCanvas(150, 300)
	fillDisk(src, 75, 150, 60, black)

	res, err := Remove(src, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 120, res.TrimmedWidth)
	assert.Equal(t, 120, res.TrimmedHeight)
	assert.Equal(t, 0.5, res.Classification.AspectRatio)
	assert.False(t, res.Classification.Sampled)
	assert.Equal(t, 0, res.Classification.Samples)
	assert.Equal(t, ShapeNonCircular, res.Shape)
	assert.Equal(t, domain.StageSmoothed, res.Stage)
}

func TestRemoveZeroOptionsUseDefaultThreshold(t *testing.T) {
	src := whiteCanvas(50, 50)
	fillRect(src, 0, 0, 49, 2, white2)
	fillRect(src, 10, 20, 39, 49, black)

	want, err := Remove(src, DefaultOptions())
	require.NoError(t, err)
	got, err := Remove(src, Options{})
	require.NoError(t, err)

	assert.Equal(t, 30, want.TrimmedWidth)
	assert.Equal(t, 30, want.TrimmedHeight)
	assert.Equal(t, want, got)
}

func TestRemoveFlattensTransparency(t *testing.T) {
	src := pixbuf.New(50, 50)
	fillRect(src, 10, 20, 39, 29, black)

	res, err := Remove(src, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 30, res.TrimmedWidth)
	assert.Equal(t, 10, res.TrimmedHeight)
	assert.Equal(t, uint8(0), alphaAt(res.Buffer, 0, 0))
	assert.Equal(t, black, res.Buffer.At(15, 15))
}

func TestRemoveRejectsEmptyBuffer(t *testing.T) {
	res, err := Remove(pixbuf.Buffer{}, DefaultOptions())
	require.ErrorIs(t, err, ErrInvalidGeometry)
	assert.Equal(t, domain.StageDecoded, res.Stage)
}

func BenchmarkRemoveIrregular(b *testing.B) {
	src := whiteCanvas(512, 384)
	fillRect(src, 40, 40, 470, 340, black)
	fillRect(src, 100, 100, 400, 280, white)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Remove(src, DefaultOptions()); err != nil {
			b.Fatalf("remove: %v", err)
		}
	}
}
