package track

import (
	"image"

	"honnef.co/go/curve"
)

// Self-intersection is tested on the integer lattice: truncate every
// point to its grid cell and look for a revisited cell. This is a
// conservative approximation at one-unit resolution, not an exact
// geometric test, but the sample spacing of the segment generators is
// well under a unit so a real crossing always revisits a cell.

// latticeTailExempt is how many trailing lattice points are ignored by
// the overlap test. The loop closure legitimately re-enters the start
// region, so the tail would otherwise always read as a crossing.
const latticeTailExempt = 10

// toLattice truncates points toward zero onto the integer lattice and
// drops consecutive duplicates.
func toLattice(pts []curve.Point) []image.Point {
	out := make([]image.Point, 0, len(pts))
	for _, p := range pts {
		q := image.Pt(int(p.X), int(p.Y))
		if len(out) > 0 && out[len(out)-1] == q {
			continue
		}
		out = append(out, q)
	}
	return out
}

// hasOverlap reports whether the lattice path revisits a cell outside
// the exempted tail. A step with Manhattan distance over one moved
// diagonally, so an extra cell flanking the step is added before the
// uniqueness check; without it two paths crossing diagonally between
// cells would slip through undetected.
func hasOverlap(lattice []image.Point) bool {
	if len(lattice) <= latticeTailExempt {
		return false
	}
	pts := lattice[:len(lattice)-latticeTailExempt:len(lattice)-latticeTailExempt]
	n := len(pts)
	for i := 1; i < n; i++ {
		s, e := pts[i-1], pts[i]
		if intAbs(e.X-s.X)+intAbs(e.Y-s.Y) > 1 {
			q := image.Pt(s.X-1, s.Y)
			if e.X > s.X {
				q.X = s.X + 1
			}
			pts = append(pts, q)
		}
	}
	seen := make(map[image.Point]struct{}, len(pts))
	for _, p := range pts {
		if _, ok := seen[p]; ok {
			return true
		}
		seen[p] = struct{}{}
	}
	return false
}

// overlaps runs the full pipeline on raw float points.
func overlaps(pts []curve.Point) bool {
	return hasOverlap(toLattice(pts))
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
