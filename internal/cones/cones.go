// Package cones derives cone layouts from a track centerline: paired
// lane markers along the path and the start gate, in the colour
// conventions simulators expect.
package cones

import (
	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/geom"
)

// Tag labels a cone row in layout files.
type Tag string

const (
	TagBlue      Tag = "blue"
	TagYellow    Tag = "yellow"
	TagBigOrange Tag = "big_orange"
	TagOrange    Tag = "orange"
	TagMidpoint  Tag = "midpoint"
)

// Layout is a full cone set for one track. Blue cones line the left of
// the direction of travel and yellow the right. BigOrange marks the
// start gate. Orange is carried for layouts loaded from files that use
// it; the placer does not emit any.
type Layout struct {
	Blue      []curve.Point
	Yellow    []curve.Point
	BigOrange []curve.Point
	Orange    []curve.Point
}

// Options controls cone placement.
type Options struct {
	// Spacing is the distance in meters between cone pairs along the
	// centerline.
	Spacing float64
	// TrackWidth is the lane width in meters, cone to cone.
	TrackWidth float64
}

// DefaultOptions returns the usual lane geometry: pairs every five
// meters on a 3.5 meter lane.
func DefaultOptions() Options {
	return Options{Spacing: 5, TrackWidth: 3.5}
}

// gateHalfSpan is how far the two start gate rows sit ahead of and
// behind the first centerline point, in meters.
const gateHalfSpan = 0.5

// Place walks the centerline and drops a blue/yellow pair every
// Spacing meters of arc length, offset half the track width to either
// side of the local direction of travel. The start gate gets two big
// orange rows bracketing the first point. Fewer than two distinct
// points place nothing.
func Place(pts []curve.Point, opts Options) Layout {
	if opts.Spacing <= 0 || opts.TrackWidth <= 0 {
		opts = DefaultOptions()
	}
	half := opts.TrackWidth / 2

	var layout Layout
	next := 0.0
	placed := false
	for i := 1; i < len(pts); i++ {
		step := pts[i].Sub(pts[i-1])
		stepLen := step.Hypot()
		if stepLen == 0 {
			continue
		}
		dir := step.Div(stepLen)
		normal := geom.LeftNormal(dir)

		if !placed {
			layout.BigOrange = gate(pts[i-1], dir, normal, half)
			placed = true
		}
		for next <= stepLen {
			at := pts[i-1].Translate(dir.Mul(next))
			layout.Blue = append(layout.Blue, at.Translate(normal.Mul(half)))
			layout.Yellow = append(layout.Yellow, at.Translate(normal.Mul(-half)))
			next += opts.Spacing
		}
		next -= stepLen
	}
	return layout
}

// gate builds the four start gate cones: a row across the lane just
// before the start point and another just after.
func gate(start curve.Point, dir, normal curve.Vec2, half float64) []curve.Point {
	ahead := start.Translate(dir.Mul(gateHalfSpan))
	behind := start.Translate(dir.Mul(-gateHalfSpan))
	return []curve.Point{
		behind.Translate(normal.Mul(half)),
		behind.Translate(normal.Mul(-half)),
		ahead.Translate(normal.Mul(half)),
		ahead.Translate(normal.Mul(-half)),
	}
}

// Midpoints pairs each blue cone with its nearest yellow cone and
// averages them, recovering a midline from the lane markers alone.
// Yellow cones exactly coincident with the blue cone are passed over,
// and a blue cone with no usable partner contributes nothing.
func Midpoints(blue, yellow []curve.Point) []curve.Point {
	mids := make([]curve.Point, 0, len(blue))
	for _, b := range blue {
		best := -1
		bestD := 0.0
		for j, y := range yellow {
			if y == b {
				continue
			}
			d := b.DistanceSquared(y)
			if best < 0 || d < bestD {
				best, bestD = j, d
			}
		}
		if best < 0 {
			continue
		}
		mids = append(mids, b.Midpoint(yellow[best]))
	}
	return mids
}
