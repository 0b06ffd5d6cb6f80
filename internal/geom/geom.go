// Package geom provides the planar pose and angle helpers shared by the
// track generation pipeline.
package geom

import (
	"math"

	"honnef.co/go/curve"
)

// Pose is a location on a path together with its local frame: the unit
// tangent along the direction of travel and the unit normal at a quarter
// turn counterclockwise from it.
type Pose struct {
	Point   curve.Point
	Tangent curve.Vec2
	Normal  curve.Vec2
}

// NewPose returns the pose at pt heading along tangent. The tangent is
// normalized and the normal derived from it, so the frame is always a
// unit tangent/normal pair.
func NewPose(pt curve.Point, tangent curve.Vec2) Pose {
	t := tangent.Normalize()
	return Pose{Point: pt, Tangent: t, Normal: LeftNormal(t)}
}

// PoseAtAngle returns the pose at pt heading along the given angle in
// radians.
func PoseAtAngle(pt curve.Point, angle float64) Pose {
	return NewPose(pt, curve.VecFromAngle(angle))
}

// LeftNormal returns v rotated a quarter turn counterclockwise.
func LeftNormal(v curve.Vec2) curve.Vec2 {
	return curve.Vec(-v.Y, v.X)
}

// Rotate returns v rotated counterclockwise by angle radians.
func Rotate(v curve.Vec2, angle float64) curve.Vec2 {
	sin, cos := math.Sincos(angle)
	return curve.Vec(cos*v.X-sin*v.Y, sin*v.X+cos*v.Y)
}

// CapAngle wraps an angle in radians into [0, 2π).
func CapAngle(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// PathTangent estimates the direction of travel at the end of a point
// sequence from the most recent pair of distinct points. Segment
// boundaries duplicate their junction point, so the scan skips over
// repeats. A sequence with no two distinct points yields the +x axis.
func PathTangent(pts []curve.Point) curve.Vec2 {
	last := pts[len(pts)-1]
	for i := len(pts) - 2; i >= 0; i-- {
		if pts[i] != last {
			return last.Sub(pts[i]).Normalize()
		}
	}
	return curve.Vec(1, 0)
}

// PolylineLength sums the distances between consecutive points.
func PolylineLength(pts []curve.Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i].Distance(pts[i-1])
	}
	return total
}
