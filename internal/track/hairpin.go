package track

import (
	"math"

	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/geom"
)

// maxSwitchbackReach caps how far out two adjacent switchback arms may
// meet. Adjacent arms and their connecting straights form a diamond
// whose far corner sits radius*tan(L) from the arc for a half-gap angle
// L; past this reach the arms fold across each other.
const maxSwitchbackReach = 50

// hairpin emits an even run of switchback arms, each a wobbliness
// fraction of a circle followed by a straight. The arcs turn with the
// running normal, and since the outward normal flips across each arc
// the arms alternate direction on their own. Arm count, wobbliness,
// straight length and radius are drawn fresh per hairpin; most hairpins
// share one radius across arms, the rest redraw it per arm.
func (c *composer) hairpin(pose geom.Pose) Segment {
	switchbacks := 2 * c.intn(c.cfg.MinHairpinPairs(), c.cfg.MaxHairpinPairs)
	wobbliness := c.uniform(0.45, 0.55)
	straightLen := c.uniform(c.cfg.MinStraight, c.cfg.MaxStraight)
	radius := c.uniform(c.cfg.MinHairpin, c.cfg.MaxHairpin)
	uniformRadii := c.chance(0.8)

	wobbliness = cappedWobbliness(wobbliness, radius)

	var pts []curve.Point
	length := 0.0
	cur := pose
	for i := 0; i < switchbacks; i++ {
		armRadius := radius
		if !uniformRadii {
			armRadius = c.uniform(c.cfg.MinHairpin, c.cfg.MaxHairpin)
		}

		arc := ConstantTurn(cur, TurnParams{Radius: armRadius, Percent: wobbliness})
		pts = append(pts, arc.Points...)
		length += arc.Length
		cur = arc.End

		straight := Straight(cur, straightLen)
		pts = append(pts, straight.Points...)
		length += straight.Length
		cur = straight.End
	}
	return Segment{Points: pts, End: cur, Length: length}
}

// cappedWobbliness limits a drawn wobbliness so the switchback reach
// for the given radius stays within maxSwitchbackReach. Sweeping more
// of the circle narrows the gap between arms, so the cap raises the
// wobbliness to the value whose reach sits exactly on the limit.
func cappedWobbliness(wobbliness, radius float64) float64 {
	gapAngle := (2 * math.Pi * (1 - wobbliness)) / 2
	if radius*math.Tan(gapAngle) > maxSwitchbackReach {
		return 1 - math.Atan2(maxSwitchbackReach, radius)/math.Pi
	}
	return wobbliness
}
