package track

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/geom"
)

// The arc solver computes how far a constant-radius turn must sweep
// before the path points straight at a goal: the classic tangent line
// from an external point to a circle.
//
// With the turn circle centered at C and the goal at G, the exit point
// is where the line exit->G touches the circle. The angle between C->G
// and that tangent line is acos(r/|G-C|). The remaining work is finding
// the angle from the start point around to the tangent point, which
// depends on where G sits relative to the start frame. Re-expressing
// G-C in the tangent/normal basis classifies it into one of four
// quadrants; rotating the start offset by the quadrant angle folds all
// four cases onto one formula.
//
// Quadrant boundaries compare the basis coordinates against the radius
// rather than zero alone so that goals hugging the circle fall into the
// quadrant whose fold keeps the sweep positive.

// Sweeps within a 1/32 turn of a full revolution sit on a knife edge
// where the direction choice flips the answer; treat them as wrong-way
// picks.
const nearFullSweep = 2 * (31.0 / 32.0) * math.Pi

// TurnUntilFacing produces the constant-radius arc that leaves the path
// pointing at goal, so a straight from the arc's end reaches it.
// params.Percent is ignored; the sweep is solved for. If the solved
// sweep lands within a 1/32 turn of a full revolution, the turn
// direction was almost certainly the wrong way around, so the solve is
// retried once with the direction flipped and the second answer kept
// regardless.
func TurnUntilFacing(pose geom.Pose, goal curve.Point, params TurnParams) Segment {
	against := params.AgainstNormal
	for attempt := 0; ; attempt++ {
		theta := sweepToFace(pose, goal, params.Radius, against)
		if theta > nearFullSweep && attempt == 0 {
			against = !against
			continue
		}
		if theta < 0 {
			theta = 0
		}
		return ConstantTurn(pose, TurnParams{
			Radius:        params.Radius,
			Percent:       theta / (2 * math.Pi),
			AgainstNormal: against,
		})
	}
}

// sweepToFace solves for the turn angle in radians from pose around the
// circle on the chosen side until the path faces goal.
func sweepToFace(pose geom.Pose, goal curve.Point, radius float64, against bool) float64 {
	n := pose.Normal
	if against {
		n = n.Negate()
	}
	n = n.Normalize()
	t := pose.Tangent
	center := pose.Point.Translate(n.Mul(radius))
	gc := goal.Sub(center)
	sc := pose.Point.Sub(center)

	x := gc.Hypot()
	if math.Abs(radius/x) > 1 {
		// Goal inside or on the circle: treat it as sitting on the rim.
		x = radius
	}

	basis := mat.NewDense(2, 2, []float64{t.X, n.X, t.Y, n.Y})
	var inv mat.Dense
	if err := inv.Inverse(basis); err != nil {
		panic("track: degenerate tangent/normal frame")
	}
	var gBasis mat.VecDense
	gBasis.MulVec(&inv, mat.NewVecDense(2, []float64{gc.X, gc.Y}))
	gx, gy := gBasis.AtVec(0), gBasis.AtVec(1)

	r := radius
	var quadrant int
	switch {
	case (gx >= 0 && -r <= gy && gy <= 0) || (gx >= r && gy >= -r):
		quadrant = 1
	case (gy >= 0 && 0 <= gx && gx <= r) || (gy >= r && gx <= r):
		quadrant = 2
	case (gx <= 0 && 0 <= gy && gy <= r) || (gx <= -r && gy <= r):
		quadrant = 3
	default:
		quadrant = 4
	}

	// The fold rotates the raw start offset, not its basis image.
	quadrantAngle := float64(quadrant-1) * math.Pi / 2
	s := geom.Rotate(sc, quadrantAngle)

	inner := math.Acos(radius / x)
	dot := gc.Dot(s)
	if against && (quadrant == 2 || quadrant == 4) {
		// Empirical sign correction. No clean geometric account of it
		// is known, but without it the turn direction comes out wrong
		// in these quadrants.
		dot = -dot
	}
	outer := math.Atan2(math.Abs(gc.Cross(s)), dot)
	return outer - inner + quadrantAngle
}
