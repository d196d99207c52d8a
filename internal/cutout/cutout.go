// Package cutout removes the white background of a logo and decides between
// a circular crop and a flood-fill cutout with softened edges.
package cutout

import (
	"errors"
	"fmt"

	"github.com/dunamismax/avatarforge/internal/domain"
	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

var ErrInvalidGeometry = errors.New("invalid geometry")

type Options struct {
	// WhiteThreshold is the per-channel distance from 255 still treated as
	// white. Zero means pixbuf.DefaultWhiteThreshold.
	WhiteThreshold uint8
}

func DefaultOptions() Options {
	return Options{WhiteThreshold: pixbuf.DefaultWhiteThreshold}
}

// WithDefaults fills zero fields with their defaults.
func (o Options) WithDefaults() Options {
	if o.WhiteThreshold == 0 {
		o.WhiteThreshold = pixbuf.DefaultWhiteThreshold
	}
	return o
}

type Result struct {
	Buffer         pixbuf.Buffer
	Shape          Shape
	Classification Classification
	Stage          domain.Stage
	TrimmedWidth   int
	TrimmedHeight  int
	Cleared        int
	EdgePixels     int
}

// Remove runs one decoded image through trim, classification and the
// matching transparency branch. On error Result.Stage is the last stage
// the image reached.
func Remove(decoded pixbuf.Buffer, opts Options) (Result, error) {
	opts = opts.WithDefaults()
	res := Result{Stage: domain.StageDecoded}

	n, err := Normalize(decoded, opts.WhiteThreshold)
	if err != nil {
		return res, err
	}
	square := n.Buffer
	res.Stage = domain.StageTrimmed
	res.TrimmedWidth, res.TrimmedHeight = n.TrimmedWidth, n.TrimmedHeight

	res.Classification = ClassifyWithThreshold(n, opts.WhiteThreshold)
	res.Shape = res.Classification.Shape
	res.Stage = domain.StageClassified

	if res.Shape == ShapeCircular {
		ApplyCircularMask(square)
		res.Buffer = square
		res.Stage = domain.StageMasked
		return res, nil
	}

	res.Cleared = FloodFill(square, opts.WhiteThreshold)
	res.Stage = domain.StageFloodFilled

	res.EdgePixels = SmoothEdges(square)
	res.Stage = domain.StageSmoothed
	res.Buffer = square
	return res, nil
}

func checkGeometry(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, width, height)
	}
	return nil
}
