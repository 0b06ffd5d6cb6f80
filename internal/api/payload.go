package api

import (
	"encoding/json"
	"fmt"

	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/cones"
)

// pointJSON is the {x,y} wire form of centerline and cone positions.
type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// conesJSON mirrors cones.Layout plus derived midpoints on the wire.
type conesJSON struct {
	Blue      []pointJSON `json:"blue"`
	Yellow    []pointJSON `json:"yellow"`
	BigOrange []pointJSON `json:"big_orange"`
	Orange    []pointJSON `json:"orange"`
	Midpoints []pointJSON `json:"midpoints,omitempty"`
}

func toPointJSON(pts []curve.Point) []pointJSON {
	out := make([]pointJSON, len(pts))
	for i, p := range pts {
		out[i] = pointJSON{X: p.X, Y: p.Y}
	}
	return out
}

func fromPointJSON(pts []pointJSON) []curve.Point {
	out := make([]curve.Point, len(pts))
	for i, p := range pts {
		out[i] = curve.Pt(p.X, p.Y)
	}
	return out
}

// marshalCenterline encodes a centerline for archival.
func marshalCenterline(pts []curve.Point) (json.RawMessage, error) {
	return json.Marshal(toPointJSON(pts))
}

// decodeCenterline restores a centerline from its archived form.
func decodeCenterline(raw json.RawMessage) ([]curve.Point, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("record has no centerline payload")
	}
	var pts []pointJSON
	if err := json.Unmarshal(raw, &pts); err != nil {
		return nil, fmt.Errorf("decode centerline: %w", err)
	}
	return fromPointJSON(pts), nil
}

// marshalCones encodes a cone layout and its midpoints for archival.
func marshalCones(layout cones.Layout, midpoints []curve.Point) (json.RawMessage, error) {
	return json.Marshal(conesJSON{
		Blue:      toPointJSON(layout.Blue),
		Yellow:    toPointJSON(layout.Yellow),
		BigOrange: toPointJSON(layout.BigOrange),
		Orange:    toPointJSON(layout.Orange),
		Midpoints: toPointJSON(midpoints),
	})
}

// decodeCones restores a cone layout and midpoints from the archived
// form.
func decodeCones(raw json.RawMessage) (cones.Layout, []curve.Point, error) {
	if len(raw) == 0 {
		return cones.Layout{}, nil, fmt.Errorf("record has no cone payload")
	}
	var cj conesJSON
	if err := json.Unmarshal(raw, &cj); err != nil {
		return cones.Layout{}, nil, fmt.Errorf("decode cones: %w", err)
	}
	layout := cones.Layout{
		Blue:      fromPointJSON(cj.Blue),
		Yellow:    fromPointJSON(cj.Yellow),
		BigOrange: fromPointJSON(cj.BigOrange),
		Orange:    fromPointJSON(cj.Orange),
	}
	return layout, fromPointJSON(cj.Midpoints), nil
}
