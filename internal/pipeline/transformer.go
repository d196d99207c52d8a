package pipeline

import (
	"context"
	"fmt"

	"github.com/dunamismax/avatarforge/internal/codec"
	"github.com/dunamismax/avatarforge/internal/cutout"
	"github.com/dunamismax/avatarforge/internal/domain"
	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

// Transformed is the encoded output of a Transformer. Stage is set even when
// Transform fails and names the last stage the image reached.
type Transformed struct {
	Data   []byte
	Format string
	Width  int
	Height int
	Shape  string
	Stage  domain.Stage
}

type Transformer interface {
	Transform(ctx context.Context, input []byte) (Transformed, error)
	// Variant identifies the output settings; outputs of different variants
	// never share a cache entry.
	Variant() string
}

// CutoutTransformer removes the white background and produces a square
// transparent avatar.
type CutoutTransformer struct {
	Format  string
	Quality int
	// Size is the final square side in pixels; 0 keeps the trimmed size.
	Size    int
	Options cutout.Options
}

func (t CutoutTransformer) Variant() string {
	return fmt.Sprintf("cutout:%s:q%d:s%d:t%d", codec.NormalizeFormat(t.Format), t.Quality, t.Size, t.Options.WithDefaults().WhiteThreshold)
}

func (t CutoutTransformer) Transform(ctx context.Context, input []byte) (Transformed, error) {
	out := Transformed{Format: codec.NormalizeFormat(t.Format)}
	select {
	case <-ctx.Done():
		return out, ctx.Err()
	default:
	}

	decoded, _, err := codec.Decode(input)
	if err != nil {
		return out, err
	}
	out.Stage = domain.StageDecoded

	res, err := cutout.Remove(decoded, t.Options)
	out.Stage = res.Stage
	if err != nil {
		return out, err
	}
	out.Shape = res.Shape.String()

	buf := res.Buffer
	if t.Size > 0 && (buf.Width != t.Size || buf.Height != t.Size) {
		buf = codec.Resize(buf, t.Size, t.Size, codec.ResizeOptions{Fit: codec.FitFill})
	}

	return encodeInto(out, buf, t.Quality)
}

// ConvertTransformer re-encodes the source without touching its pixels.
type ConvertTransformer struct {
	Format  string
	Quality int
}

func (t ConvertTransformer) Variant() string {
	return fmt.Sprintf("convert:%s:q%d", codec.NormalizeFormat(t.Format), t.Quality)
}

func (t ConvertTransformer) Transform(ctx context.Context, input []byte) (Transformed, error) {
	out := Transformed{Format: codec.NormalizeFormat(t.Format)}
	select {
	case <-ctx.Done():
		return out, ctx.Err()
	default:
	}

	decoded, _, err := codec.Decode(input)
	if err != nil {
		return out, err
	}
	out.Stage = domain.StageDecoded

	return encodeInto(out, decoded, t.Quality)
}

func encodeInto(out Transformed, buf pixbuf.Buffer, quality int) (Transformed, error) {
	data, err := codec.Encode(buf, out.Format, quality)
	if err != nil {
		return out, err
	}
	out.Data = data
	out.Width = buf.Width
	out.Height = buf.Height
	out.Stage = domain.StageEncoded
	return out, nil
}
