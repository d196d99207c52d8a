package cutout

import (
	"math"

	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

type Shape int

const (
	ShapeNonCircular Shape = iota
	ShapeCircular
)

func (s Shape) String() string {
	if s == ShapeCircular {
		return "circular"
	}
	return "non_circular"
}

const (
	minAspectForSampling = 0.85
	minAspectForCircle   = 0.9
	minCircularRatio     = 0.6
	rayCount             = 32
	scanStart            = 0.85
	scanEnd              = 0.98
	scanStep             = 0.2
	radiusTolerance      = 0.15
)

// Classification is the full outcome of Classify, kept for logging and tests.
type Classification struct {
	Shape          Shape
	AspectRatio    float64
	CircularRatio  float64
	Samples        int
	CircularPoints int
	Sampled        bool
}

// Classify decides whether the normalized subject is round.
func Classify(n Normalized) Shape {
	return ClassifyWithThreshold(n, pixbuf.DefaultWhiteThreshold).Shape
}

// ClassifyWithThreshold gates on the aspect ratio of the source image, then
// casts rays from the canvas center across the band just inside the trimmed
// subject's inscribed radius.
func ClassifyWithThreshold(n Normalized, threshold uint8) Classification {
	if n.SourceWidth <= 0 || n.SourceHeight <= 0 || n.TrimmedWidth <= 0 || n.TrimmedHeight <= 0 {
		return Classification{Shape: ShapeNonCircular}
	}

	aspect := float64(min(n.SourceWidth, n.SourceHeight)) / float64(max(n.SourceWidth, n.SourceHeight))
	c := Classification{Shape: ShapeNonCircular, AspectRatio: aspect}
	if aspect < minAspectForSampling {
		return c
	}

	buf := n.Buffer
	c.Sampled = true
	cx := float64(buf.Width) / 2
	cy := float64(buf.Height) / 2
	maxRadius := float64(min(n.TrimmedWidth, n.TrimmedHeight)) / 2
	tolerance := radiusTolerance * maxRadius

	for ray := 0; ray < rayCount; ray++ {
		theta := 2 * math.Pi * float64(ray) / rayCount
		cos, sin := math.Cos(theta), math.Sin(theta)

		for r := scanStart * maxRadius; r <= scanEnd*maxRadius; r += scanStep {
			x := int(math.Floor(cx + cos*r))
			y := int(math.Floor(cy + sin*r))
			if !buf.InBounds(x, y) || buf.IsWhite(buf.Index(x, y), threshold) {
				continue
			}

			c.Samples++
			dist := math.Hypot(float64(x)-cx, float64(y)-cy)
			if math.Abs(dist-r) < tolerance {
				c.CircularPoints++
			}
			break
		}
	}

	if c.Samples > 0 {
		c.CircularRatio = float64(c.CircularPoints) / float64(c.Samples)
	}
	if c.CircularRatio > minCircularRatio && aspect > minAspectForCircle {
		c.Shape = ShapeCircular
	}
	return c
}
