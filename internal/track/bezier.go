package track

import (
	"math"

	"honnef.co/go/curve"
)

// bezierSamples is the number of evaluation steps per cubic, giving
// bezierSamples+1 points with both endpoints included.
const bezierSamples = 100

// bezierLoop strings four cubic curves from start through the three
// checkpoints and back again. Each boundary's exit angle becomes the
// next curve's entry angle, and the closing curve arrives along the
// first curve's entry angle, so the loop is tangent continuous all the
// way around including the join back at start.
func (c *composer) bezierLoop(start curve.Point) []curve.Point {
	goals := checkpoints(start, c.cfg.MaxLength)

	var pts []curve.Point
	entry := c.uniform(0, 2*math.Pi)
	first := entry
	cur := start
	for _, goal := range goals {
		exit := c.uniform(0, 2*math.Pi)
		pts = append(pts, c.cubic(cur, goal, entry, exit)...)
		cur = goal
		entry = exit
	}
	pts = append(pts, c.cubic(cur, start, entry, first)...)
	return pts
}

// cubic samples one cubic Bezier between the endpoints. The control
// arms leave from and arrive along the given angles, with independently
// drawn arm lengths setting how far the curve bulges.
func (c *composer) cubic(from, to curve.Point, entryAngle, exitAngle float64) []curve.Point {
	p1 := from.Translate(curve.VecFromAngle(entryAngle).Mul(c.uniform(10, 100)))
	p2 := to.Translate(curve.VecFromAngle(exitAngle).Mul(-c.uniform(10, 100)))
	bez := curve.CubicBez{P0: from, P1: p1, P2: p2, P3: to}

	pts := make([]curve.Point, 0, bezierSamples+1)
	for i := 0; i <= bezierSamples; i++ {
		pts = append(pts, bez.Eval(float64(i)/bezierSamples))
	}
	return pts
}
