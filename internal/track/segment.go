// Package track generates closed-loop race track centerlines from
// straights, constant-radius arcs, hairpin switchbacks and Bezier
// curves, subject to length and self-intersection constraints.
package track

import (
	"math"

	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/geom"
)

// Segment is the output of one segment generator: the points drawn, the
// pose at the far end for the next generator to consume, and the arc
// length added to the track.
type Segment struct {
	Points []curve.Point
	End    geom.Pose
	Length float64
}

// TurnParams fixes the free choices of a constant-radius turn. Callers
// draw any randomized values themselves before invoking the generator,
// so the generators stay deterministic.
type TurnParams struct {
	Radius  float64
	Percent float64 // fraction of a full circle to sweep
	// AgainstNormal places the circle center along the negated normal,
	// turning away from the side the normal points to.
	AgainstNormal bool
}

// Straight emits points every tenth of a unit along the pose tangent,
// ending exactly at start + tangent*length. The frame carries through
// unchanged and the reported arc length is exact. Parameterizing by the
// direction vector keeps vertical tangents exact; a slope form would
// divide by zero there.
func Straight(pose geom.Pose, length float64) Segment {
	n := int(math.Ceil(length * 10))
	if n < 1 {
		n = 1
	}
	pts := make([]curve.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, pose.Point.Translate(pose.Tangent.Mul(length*float64(i)/float64(n))))
	}
	end := pose
	end.Point = pts[len(pts)-1]
	return Segment{Points: pts, End: end, Length: length}
}

// ConstantTurn sweeps an arc of params.Percent of a full circle at
// params.Radius. The circle center sits at radius along the pose normal,
// or along the negated normal when AgainstNormal; the rotation direction
// follows the sign of tangent cross normal so the sweep always runs
// forward along the direction of travel. Points are spaced roughly one
// unit of arc apart. The exit normal points outward from the center,
// which flips the side of the frame across a turn; the exit tangent is
// estimated from the last two samples.
func ConstantTurn(pose geom.Pose, params TurnParams) Segment {
	normalVec := pose.Normal
	if params.AgainstNormal {
		normalVec = normalVec.Negate()
	}
	center := pose.Point.Translate(normalVec.Mul(params.Radius))
	turnAngle := params.Percent * 2 * math.Pi
	flipper := 1.0
	if pose.Tangent.Cross(normalVec) < 0 {
		flipper = -1
	}
	length := turnAngle * params.Radius

	// A sweep shorter than one unit of arc still needs one step.
	fidelity := int(math.Ceil(length))
	if fidelity < 1 {
		fidelity = 1
	}
	delta := pose.Point.Sub(center)
	pts := make([]curve.Point, 0, fidelity+1)
	for i := 0; i <= fidelity; i++ {
		a := flipper * turnAngle * float64(i) / float64(fidelity)
		pts = append(pts, center.Translate(geom.Rotate(delta, a)))
	}

	last := pts[len(pts)-1]
	tangent := pose.Tangent
	if prev := pts[len(pts)-2]; prev != last {
		tangent = last.Sub(prev).Normalize()
	}
	return Segment{
		Points: pts,
		End: geom.Pose{
			Point:   last,
			Tangent: tangent,
			Normal:  last.Sub(center).Normalize(),
		},
		Length: length,
	}
}
