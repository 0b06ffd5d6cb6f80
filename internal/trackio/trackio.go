// Package trackio reads and writes cone layout files: the tag,x,y CSV
// format and Gazebo model SDF.
package trackio

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/cones"
)

// Mesh URIs for each cone colour in the simulator's model tree.
const (
	meshBlue   = "model://models/blue_cone"
	meshYellow = "model://models/yellow_cone"
	meshBig    = "model://models/big_cone"
	meshOrange = "model://models/cone"

	sdfVersion  = "1.6"
	poseTrailer = " 0 0 0 0"
)

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes a layout as tag,x,y rows under a header, one block
// per colour in the order blue, yellow, big_orange, orange, midpoint.
func WriteCSV(w io.Writer, layout cones.Layout, midpoints []curve.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tag", "x", "y"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	blocks := []struct {
		tag cones.Tag
		pts []curve.Point
	}{
		{cones.TagBlue, layout.Blue},
		{cones.TagYellow, layout.Yellow},
		{cones.TagBigOrange, layout.BigOrange},
		{cones.TagOrange, layout.Orange},
		{cones.TagMidpoint, midpoints},
	}
	for _, b := range blocks {
		for _, p := range b.pts {
			if err := cw.Write([]string{string(b.tag), ftoa(p.X), ftoa(p.Y)}); err != nil {
				return fmt.Errorf("write %s row: %w", b.tag, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses tag,x,y rows back into a layout plus any midpoint
// rows. The first row is a header and rows with unknown tags are
// passed over.
func ReadCSV(r io.Reader) (cones.Layout, []curve.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	var layout cones.Layout
	var midpoints []curve.Point
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return cones.Layout{}, nil, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			continue
		}
		x, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return cones.Layout{}, nil, fmt.Errorf("parse x %q: %w", record[1], err)
		}
		y, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return cones.Layout{}, nil, fmt.Errorf("parse y %q: %w", record[2], err)
		}
		p := curve.Pt(x, y)
		switch cones.Tag(record[0]) {
		case cones.TagBlue:
			layout.Blue = append(layout.Blue, p)
		case cones.TagYellow:
			layout.Yellow = append(layout.Yellow, p)
		case cones.TagBigOrange:
			layout.BigOrange = append(layout.BigOrange, p)
		case cones.TagOrange:
			layout.Orange = append(layout.Orange, p)
		case cones.TagMidpoint:
			midpoints = append(midpoints, p)
		}
	}
	return layout, midpoints, nil
}

type sdfFile struct {
	XMLName xml.Name `xml:"sdf"`
	Version string   `xml:"version,attr"`
	Model   sdfModel `xml:"model"`
}

type sdfModel struct {
	Name     string       `xml:"name,attr"`
	Includes []sdfInclude `xml:"include"`
	Links    []sdfLink    `xml:"link"`
}

type sdfInclude struct {
	URI  string `xml:"uri"`
	Pose string `xml:"pose"`
	Name string `xml:"name,omitempty"`
}

type sdfLink struct {
	Pose   string `xml:"pose"`
	Visual struct {
		Geometry struct {
			Mesh struct {
				URI string `xml:"uri"`
			} `xml:"mesh"`
		} `xml:"geometry"`
	} `xml:"visual"`
}

// WriteSDF writes a Gazebo model of the layout, one include per cone.
// Only the blue, yellow and big orange rows appear in models.
func WriteSDF(w io.Writer, modelName string, layout cones.Layout) error {
	model := sdfModel{Name: modelName}
	appendCones := func(pts []curve.Point, mesh, prefix string) {
		for i, p := range pts {
			model.Includes = append(model.Includes, sdfInclude{
				URI:  mesh,
				Pose: ftoa(p.X) + " " + ftoa(p.Y) + poseTrailer,
				Name: fmt.Sprintf("%s_%d", prefix, i),
			})
		}
	}
	appendCones(layout.Blue, meshBlue, "blue_cone")
	appendCones(layout.Yellow, meshYellow, "yellow_cone")
	appendCones(layout.BigOrange, meshBig, "big_cone")

	out, err := xml.MarshalIndent(sdfFile{Version: sdfVersion, Model: model}, "", "   ")
	if err != nil {
		return fmt.Errorf("marshal sdf: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write sdf: %w", err)
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("write sdf: %w", err)
	}
	return nil
}

// ReadSDF parses a Gazebo model back into a layout, classifying cones
// by their mesh URI. Both include-style and link-style models parse.
func ReadSDF(r io.Reader) (cones.Layout, error) {
	var file sdfFile
	if err := xml.NewDecoder(r).Decode(&file); err != nil {
		return cones.Layout{}, fmt.Errorf("decode sdf: %w", err)
	}

	var layout cones.Layout
	add := func(uri, pose string) error {
		x, y, err := parsePose(pose)
		if err != nil {
			return err
		}
		p := curve.Pt(x, y)
		mesh := uri
		if i := strings.LastIndex(uri, "/"); i >= 0 {
			mesh = uri[i+1:]
		}
		switch {
		case strings.Contains(mesh, "blue"):
			layout.Blue = append(layout.Blue, p)
		case strings.Contains(mesh, "yellow"):
			layout.Yellow = append(layout.Yellow, p)
		case strings.Contains(mesh, "big"):
			layout.BigOrange = append(layout.BigOrange, p)
		case strings.Contains(mesh, "orange") || strings.Contains(mesh, "cone"):
			layout.Orange = append(layout.Orange, p)
		}
		return nil
	}
	for _, inc := range file.Model.Includes {
		if err := add(inc.URI, inc.Pose); err != nil {
			return cones.Layout{}, err
		}
	}
	for _, link := range file.Model.Links {
		if err := add(link.Visual.Geometry.Mesh.URI, link.Pose); err != nil {
			return cones.Layout{}, err
		}
	}
	return layout, nil
}

// parsePose reads the x and y out of a six field SDF pose string.
func parsePose(pose string) (float64, float64, error) {
	fields := strings.Fields(pose)
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("pose %q has fewer than two fields", pose)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse pose %q: %w", pose, err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse pose %q: %w", pose, err)
	}
	return x, y, nil
}
