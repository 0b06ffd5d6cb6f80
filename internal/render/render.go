// Package render draws track centerlines and cone layouts to PNG.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/cones"
)

var (
	centerlineColor = color.RGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xff}
	blueConeColor   = color.RGBA{B: 0xd0, A: 0xff}
	yellowConeColor = color.RGBA{R: 0xd8, G: 0xb8, A: 0xff}
	bigOrangeColor  = color.RGBA{R: 0xe0, G: 0x50, A: 0xff}
	orangeConeColor = color.RGBA{R: 0xe0, G: 0x90, B: 0x30, A: 0xff}
)

// PNG draws the centerline and cones into w as a PNG image. Axes share
// one scale so the loop keeps its proportions.
func PNG(w io.Writer, centerline []curve.Point, layout cones.Layout, title string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	if len(centerline) > 0 {
		line, err := plotter.NewLine(xys(centerline))
		if err != nil {
			return fmt.Errorf("centerline: %w", err)
		}
		line.Color = centerlineColor
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("centerline", line)
	}

	scatters := []struct {
		name   string
		pts    []curve.Point
		color  color.Color
		radius vg.Length
	}{
		{"blue", layout.Blue, blueConeColor, vg.Points(2)},
		{"yellow", layout.Yellow, yellowConeColor, vg.Points(2)},
		{"big orange", layout.BigOrange, bigOrangeColor, vg.Points(3)},
		{"orange", layout.Orange, orangeConeColor, vg.Points(2)},
	}
	for _, s := range scatters {
		if len(s.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys(s.pts))
		if err != nil {
			return fmt.Errorf("%s cones: %w", s.name, err)
		}
		sc.GlyphStyle.Color = s.color
		sc.GlyphStyle.Radius = s.radius
		p.Add(sc)
		p.Legend.Add(s.name, sc)
	}

	p.Legend.Top = true
	squareRanges(p, centerline, layout)

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SavePNG renders into a file at path.
func SavePNG(path string, centerline []curve.Point, layout cones.Layout, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := PNG(f, centerline, layout, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func xys(pts []curve.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return out
}

// squareRanges pads the axis ranges to a shared span so a meter on X
// renders the same as a meter on Y.
func squareRanges(p *plot.Plot, centerline []curve.Point, layout cones.Layout) {
	first := true
	var minX, minY, maxX, maxY float64
	grow := func(pts []curve.Point) {
		for _, pt := range pts {
			if first {
				minX, maxX = pt.X, pt.X
				minY, maxY = pt.Y, pt.Y
				first = false
				continue
			}
			minX = math.Min(minX, pt.X)
			maxX = math.Max(maxX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	grow(centerline)
	grow(layout.Blue)
	grow(layout.Yellow)
	grow(layout.BigOrange)
	grow(layout.Orange)
	if first {
		return
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	const pad = 5.0
	half := span/2 + pad
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half
}
