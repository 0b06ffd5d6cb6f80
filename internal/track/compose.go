package track

import (
	"errors"
	"math"
	"math/rand"

	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/geom"
)

// Candidate rejection reasons surfaced to the retry loop in Generate.
var (
	errLegOverlap     = errors.New("checkpoint leg crosses the path so far")
	errClosingTooLong = errors.New("closing straight exceeds the straight budget")
	errOverLength     = errors.New("candidate exceeds the length budget")
)

// pathDepth bounds how many steering passes one leg may take.
const pathDepth = 20

// composer builds one candidate loop per compose call, drawing every
// randomized quantity from its own source in a fixed order so equal
// seeds give equal tracks.
type composer struct {
	cfg Config
	rng *rand.Rand
}

func (c *composer) uniform(lo, hi float64) float64 {
	return lo + c.rng.Float64()*(hi-lo)
}

// intn draws from [lo, hi). An empty interval collapses to lo.
func (c *composer) intn(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + c.rng.Intn(hi-lo)
}

func (c *composer) chance(p float64) bool {
	return c.rng.Float64() < p
}

// checkpoints places the three steering goals at fixed fractions of the
// length budget around the start.
func checkpoints(start curve.Point, maxLength float64) [3]curve.Point {
	return [3]curve.Point{
		curve.Pt(start.X+maxLength*0.08, start.Y),
		curve.Pt(start.X+maxLength*0.12, start.Y+maxLength*0.08),
		curve.Pt(start.X-maxLength*0.03, start.Y+maxLength*0.12),
	}
}

// compose builds one candidate in the configured mode, normalized into
// the positive quadrant.
func (c *composer) compose(start curve.Point) ([]curve.Point, int, int, error) {
	if c.cfg.Mode == ModeBezier {
		pts, w, h := allPositive(c.bezierLoop(start))
		return pts, w, h, nil
	}
	return c.circleAndLine(start)
}

// circleAndLine composes a candidate from straights and arcs: an
// opening straight, a leg to each checkpoint, then a fixed closing
// sequence. The closing sequence steers to an approach point offset
// from the start, turns until facing away from the opening direction,
// and comes back through a half circle whose radius is read off the
// remaining gap, leaving a straight run home.
func (c *composer) circleAndLine(start curve.Point) ([]curve.Point, int, int, error) {
	startAngle := c.uniform(0, math.Pi/8)

	opening := Straight(geom.PoseAtAngle(start, startAngle), c.cfg.MinStraight)
	pts := append([]curve.Point(nil), opening.Points...)
	length := opening.Length

	// Checkpoint legs keep steering from the opening angle rather than
	// the live tail tangent. A leg that crosses the path so far sinks
	// the whole candidate.
	for _, goal := range checkpoints(start, c.cfg.MaxLength) {
		legPts, legLen := c.pathToPoint(pts[len(pts)-1], goal, startAngle, 20)
		pts = append(pts, legPts...)
		length += legLen
		if overlaps(pts) {
			return nil, 0, 0, errLegOverlap
		}
	}

	approach := curve.Pt(start.X-c.cfg.MaxStraight*0.5, start.Y+c.cfg.MaxConstantTurn*2)
	legPts, legLen := c.pathToPoint(pts[len(pts)-1], approach, geom.PathTangent(pts).Angle(), 0)
	pts = append(pts, legPts...)
	length += legLen

	// Turn until the tail faces directly away from the opening angle.
	goalTangent := curve.VecFromAngle(startAngle).Negate()
	tangent := geom.PathTangent(pts)
	facing := math.Max(-1, math.Min(1, -tangent.Dot(goalTangent)))
	away := ConstantTurn(geom.NewPose(pts[len(pts)-1], tangent), TurnParams{
		Radius:        c.uniform(c.cfg.MinConstantTurn, c.cfg.MaxConstantTurn),
		Percent:       (math.Pi - math.Acos(facing)) / (2 * math.Pi),
		AgainstNormal: true,
	})
	pts = append(pts, away.Points...)
	length += away.Length

	// Half circle back. Projecting the remaining gap onto the outward
	// normal gives the diameter, and its sign picks the side.
	r2 := away.End.Point.Sub(start).Dot(away.End.Normal) / 2
	back := ConstantTurn(away.End, TurnParams{Radius: math.Abs(r2), Percent: 0.5, AgainstNormal: r2 > 0})
	pts = append(pts, back.Points...)
	length += back.Length

	closingLen := back.End.Point.Distance(start) * 1.1
	closing := Straight(back.End, closingLen)
	pts = append(pts, closing.Points...)
	length += closing.Length

	if !c.cfg.LaxGeneration {
		if closingLen+c.cfg.MinStraight > c.cfg.MaxStraight {
			return nil, 0, 0, errClosingTooLong
		}
		if length > c.cfg.MaxLength {
			return nil, 0, 0, errOverLength
		}
	}

	out, w, h := allPositive(pts)
	return out, w, h, nil
}

// pathToPoint walks a path from start toward goal. Each pass turns
// until facing the goal, then either finishes with a straight once the
// goal is within a straight's reach (fuzz widens what counts as within
// reach), or advances a straight plus filler and steers again from the
// new tail tangent. Fillers are two shallow outward turns most of the
// time and a hairpin otherwise, with at most one hairpin per leg.
func (c *composer) pathToPoint(start, goal curve.Point, tangentAngle, fuzz float64) ([]curve.Point, float64) {
	var pts []curve.Point
	length := 0.0
	hairpined := false

	for depth := pathDepth; ; depth-- {
		radius := c.uniform(c.cfg.MinConstantTurn, c.cfg.MaxConstantTurn)

		// Pick which side of the travel axis the turn center sits on,
		// snapping the normal into the positive x half plane.
		directAngle := goal.Sub(start).Angle()
		normalAngle := geom.CapAngle(math.Pi/2 + tangentAngle)
		if geom.CapAngle(directAngle-normalAngle) > 0 {
			normalAngle = geom.CapAngle(normalAngle + math.Pi)
		}
		normal := curve.Vec(1, math.Tan(normalAngle)).Normalize()

		pose := geom.Pose{Point: start, Tangent: curve.VecFromAngle(tangentAngle), Normal: normal}
		arc := TurnUntilFacing(pose, goal, TurnParams{Radius: radius, AgainstNormal: c.chance(0.5)})
		pts = append(pts, arc.Points...)
		length += arc.Length
		cur := arc.End

		d2 := cur.Point.DistanceSquared(goal)
		if d2 <= c.cfg.MaxStraight*c.cfg.MaxStraight+fuzz*fuzz {
			home := Straight(cur, math.Min(math.Sqrt(d2), c.cfg.MaxStraight))
			pts = append(pts, home.Points...)
			length += home.Length
			return pts, length
		}

		size := c.cfg.MaxStraight / 2
		if d2 <= (c.cfg.MaxStraight*1.2)*(c.cfg.MaxStraight*1.2) {
			size = c.cfg.MaxStraight
		}
		straight := Straight(cur, size)
		pts = append(pts, straight.Points...)
		length += straight.Length
		cur = straight.End

		makeTurns := c.chance(0.7)
		if makeTurns || hairpined {
			for i := 0; i < 2; i++ {
				percent := c.uniform(0, 0.25)
				turn := ConstantTurn(cur, TurnParams{
					Radius:        c.uniform(c.cfg.MinConstantTurn, c.cfg.MaxConstantTurn),
					Percent:       percent,
					AgainstNormal: true,
				})
				pts = append(pts, turn.Points...)
				length += turn.Length
				cur = turn.End
			}
		} else {
			hp := c.hairpin(cur)
			pts = append(pts, hp.Points...)
			length += hp.Length
			cur = hp.End
		}
		hairpined = hairpined || !makeTurns

		if depth == 0 {
			return pts, length
		}
		tangentAngle = geom.PathTangent(pts).Angle()
		start = cur.Point
	}
}

// allPositive shifts the path into the positive quadrant with a ten
// unit pad past the extremes and returns the padded integer bounding
// box. Zero participates in the bounds, so a path already positive
// keeps its frame.
func allPositive(pts []curve.Point) ([]curve.Point, int, int) {
	const pad = 10
	var minX, minY, maxX, maxY float64
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	out := make([]curve.Point, len(pts))
	for i, p := range pts {
		out[i] = curve.Pt(p.X-minX+pad, p.Y-minY+pad)
	}
	return out, int(maxX-minX) + 2*pad, int(maxY-minY) + 2*pad
}
