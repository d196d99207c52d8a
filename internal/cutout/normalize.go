package cutout

import (
	"github.com/dunamismax/avatarforge/internal/codec"
	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

// Normalized is a subject centered on a white square canvas.
type Normalized struct {
	Buffer pixbuf.Buffer
	// SourceWidth and SourceHeight are the decoded dimensions before trimming.
	SourceWidth   int
	SourceHeight  int
	TrimmedWidth  int
	TrimmedHeight int
}

// Normalize flattens transparency against white, trims uniform white
// borders and centers the remainder on a white square canvas whose side is
// the larger trimmed dimension.
func Normalize(decoded pixbuf.Buffer, threshold uint8) (Normalized, error) {
	if err := checkGeometry(decoded.Width, decoded.Height); err != nil {
		return Normalized{}, err
	}
	if err := decoded.Validate(); err != nil {
		return Normalized{}, err
	}

	flat := codec.Flatten(decoded, codec.White)
	trimmed, w, h := codec.AutoTrim(flat, codec.White, threshold)
	if err := checkGeometry(w, h); err != nil {
		return Normalized{}, err
	}

	size := max(w, h)
	square := codec.Resize(trimmed, size, size, codec.ResizeOptions{
		Fit:  codec.FitContain,
		Fill: codec.White,
	})
	return Normalized{
		Buffer:        square,
		SourceWidth:   decoded.Width,
		SourceHeight:  decoded.Height,
		TrimmedWidth:  w,
		TrimmedHeight: h,
	}, nil
}
