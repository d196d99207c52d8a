package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode([]byte("definitely not an image"))
	require.ErrorIs(t, err, ErrDecode)

	_, _, err = Decode(nil)
	require.ErrorIs(t, err, ErrDecode)
}

func TestEncodeDecodePNGKeepsAlpha(t *testing.T) {
	buf := pixbuf.Filled(3, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	buf.Set(1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 0})

	data, err := Encode(buf, "png", 0)
	require.NoError(t, err)

	decoded, format, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, buf.At(0, 0), decoded.At(0, 0))
	assert.Equal(t, uint8(0), decoded.At(1, 1).A)
}

func TestEncodeWebP(t *testing.T) {
	buf := pixbuf.Filled(8, 8, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	data, err := Encode(buf, "webp", 90)
	require.NoError(t, err)

	decoded, format, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, 8, decoded.Width)
}

func TestEncodeRejectsInvalidBuffer(t *testing.T) {
	_, err := Encode(pixbuf.Buffer{}, "png", 0)
	require.ErrorIs(t, err, ErrEncode)
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	_, err := Encode(pixbuf.New(1, 1), "gif", 0)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNormalizeFormat(t *testing.T) {
	assert.Equal(t, "jpeg", NormalizeFormat("JPG"))
	assert.Equal(t, "webp", NormalizeFormat(" webp "))
	assert.Equal(t, "png", NormalizeFormat(""))
	assert.Equal(t, "gif", NormalizeFormat("GIF"))
	assert.True(t, SupportedFormat("jpg"))
	assert.False(t, SupportedFormat("gif"))
	assert.Equal(t, "jpg", Extension("jpeg"))
	assert.Equal(t, "image/webp", ContentType("webp"))
}

func TestFlattenCompositesOverWhite(t *testing.T) {
	buf := pixbuf.New(2, 1)
	buf.Set(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 0})
	buf.Set(1, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255})

	out := Flatten(buf, White)
	assert.Equal(t, White, out.At(0, 0))
	assert.Equal(t, color.NRGBA{A: 255}, out.At(1, 0))
}

func TestAutoTrimCropsWhiteBorders(t *testing.T) {
	buf := pixbuf.Filled(10, 8, White)
	buf.Set(3, 2, color.NRGBA{A: 255})
	buf.Set(6, 4, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	// Near-white within the threshold is still trimmed.
	buf.Set(9, 7, color.NRGBA{R: 250, G: 246, B: 255, A: 255})

	out, w, h := AutoTrim(buf, White, 10)
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
	assert.Equal(t, color.NRGBA{A: 255}, out.At(0, 0))
	assert.Equal(t, uint8(200), out.At(3, 2).R)
}

func TestAutoTrimAllWhiteKeepsImage(t *testing.T) {
	buf := pixbuf.Filled(5, 4, White)
	out, w, h := AutoTrim(buf, White, 10)
	assert.Equal(t, 5, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, buf.Data, out.Data)
}

func TestResizeContainPadsWithoutResampling(t *testing.T) {
	buf := pixbuf.Filled(4, 2, color.NRGBA{R: 7, G: 7, B: 7, A: 255})

	out := Resize(buf, 4, 4, ResizeOptions{Fit: FitContain, Fill: White})
	require.NoError(t, out.Validate())
	assert.Equal(t, White, out.At(0, 0))
	assert.Equal(t, color.NRGBA{R: 7, G: 7, B: 7, A: 255}, out.At(0, 1))
	assert.Equal(t, color.NRGBA{R: 7, G: 7, B: 7, A: 255}, out.At(3, 2))
	assert.Equal(t, White, out.At(3, 3))
}

func TestResizeFillScales(t *testing.T) {
	buf := pixbuf.Filled(10, 10, color.NRGBA{R: 50, A: 255})
	out := Resize(buf, 4, 6, ResizeOptions{Fit: FitFill})
	assert.Equal(t, 4, out.Width)
	assert.Equal(t, 6, out.Height)
}

func TestDecodeAcceptsStdlibPNG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.SetGray(1, 1, color.Gray{Y: 255})
	var raw bytes.Buffer
	require.NoError(t, png.Encode(&raw, img))

	buf, format, err := Decode(raw.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, buf.At(1, 1))
	assert.Equal(t, color.NRGBA{A: 255}, buf.At(0, 0))
}

func TestDecodeAcceptsStdlibJPEG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	var raw bytes.Buffer
	require.NoError(t, jpeg.Encode(&raw, img, &jpeg.Options{Quality: 95}))

	buf, format, err := Decode(raw.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 16, buf.Width)
	assert.True(t, buf.IsWhite(buf.Index(8, 8), pixbuf.DefaultWhiteThreshold))
}

func TestDecodeFallsBackToTGA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	var raw bytes.Buffer
	require.NoError(t, tga.Encode(&raw, img))

	buf, format, err := Decode(raw.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "tga", format)
	assert.Equal(t, 3, buf.Width)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 40}, buf.At(2, 1))
}
