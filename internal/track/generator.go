package track

import (
	"errors"
	"math/rand"
	"time"

	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/monitoring"
)

// Track is one generated centerline. Points trace the loop from start
// to finish inside the positive quadrant; Width and Height are the
// padded bounding box.
type Track struct {
	Points []curve.Point
	Width  int
	Height int
}

// ErrGenerationFailed reports that the attempt budget ran out before
// any candidate cleared the self-intersection check.
var ErrGenerationFailed = errors.New("track generation failed after too many attempts")

// maxGenerationAttempts bounds the retry loop in Generate. Every
// rejected candidate counts, whichever check rejected it.
const maxGenerationAttempts = 10000

// Generator produces tracks under one fixed configuration. Each
// Generator owns its random source, so distinct Generators are
// independent. A Generator must not be used from multiple goroutines
// at once.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New returns a Generator for cfg. A nil rng seeds a fresh source from
// the wall clock; pass a seeded source to reproduce a run.
func New(cfg Config, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{cfg: cfg, rng: rng}
}

// Config returns the configuration the Generator was built with.
func (g *Generator) Config() Config { return g.cfg }

// Generate composes candidates until one comes out free of
// self-intersection, then mirrors it across either axis half the time
// so the output does not share a handedness. Returns
// ErrGenerationFailed once the attempt budget is spent.
func (g *Generator) Generate() (Track, error) {
	c := &composer{cfg: g.cfg, rng: g.rng}
	for attempt := 0; attempt <= maxGenerationAttempts; attempt++ {
		pts, width, height, err := c.compose(curve.Pt(0, 0))
		if err != nil {
			monitoring.Logf("[Generator] attempt %d: %v, retrying", attempt, err)
			continue
		}
		if overlaps(pts) {
			monitoring.Logf("[Generator] attempt %d: track crosses itself, retrying", attempt)
			continue
		}

		flipX := g.rng.Float64() < 0.5
		flipY := g.rng.Float64() < 0.5
		if flipX {
			for i, p := range pts {
				pts[i] = curve.Pt(float64(width)-p.X, p.Y)
			}
		}
		if flipY {
			for i, p := range pts {
				pts[i] = curve.Pt(p.X, float64(height)-p.Y)
			}
		}
		return Track{Points: pts, Width: width, Height: height}, nil
	}
	return Track{}, ErrGenerationFailed
}
