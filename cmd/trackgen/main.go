// Command trackgen generates race track layouts from the command line
// and converts existing layouts between CSV, SDF, and PNG.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/cones"
	"github.com/banshee-data/trackgen/internal/geom"
	"github.com/banshee-data/trackgen/internal/render"
	"github.com/banshee-data/trackgen/internal/track"
	"github.com/banshee-data/trackgen/internal/trackio"
	"github.com/banshee-data/trackgen/internal/version"
)

// parseCSVFloatSlice parses a comma-separated list of floats
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	coneDefaults := cones.DefaultOptions()

	// Generation parameters
	preset := flag.String("preset", track.DefaultPreset, "Preset name (see -presets)")
	seed := flag.Int64("seed", 0, "Random seed (0 derives one from the clock)")
	configList := flag.String("config", "", "Comma-separated 10-value config vector overriding the preset")
	spacing := flag.Float64("spacing", coneDefaults.Spacing, "Cone spacing along the track edges in metres")
	trackWidth := flag.Float64("track-width", coneDefaults.TrackWidth, "Lane width in metres")
	midpoints := flag.Bool("midpoints", false, "Include lane midpoints in CSV output")

	// Conversion instead of generation
	in := flag.String("in", "", "Existing layout file (.csv or .sdf) to convert instead of generating")

	// Outputs (any combination; defaults to a CSV next to the seed)
	outCSV := flag.String("out-csv", "", "CSV output filename")
	outSDF := flag.String("out-sdf", "", "SDF output filename")
	outPNG := flag.String("out-png", "", "PNG output filename")
	modelName := flag.String("model", "track", "Model name for SDF output")

	listPresets := flag.Bool("presets", false, "List preset names and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("trackgen %s\n", version.String())
		return
	}
	if *listPresets {
		for _, name := range track.PresetNames() {
			fmt.Println(name)
		}
		return
	}

	var (
		centerline []curve.Point
		layout     cones.Layout
		mids       []curve.Point
		title      string
	)

	if *in != "" {
		layout, mids, title = loadLayout(*in)
		if *midpoints && len(mids) == 0 {
			mids = cones.Midpoints(layout.Blue, layout.Yellow)
		}
	} else {
		cfg := track.PresetConfig(*preset)
		if *configList != "" {
			vec, err := parseCSVFloatSlice(*configList)
			if err != nil {
				log.Fatalf("Invalid config vector: %v", err)
			}
			if cfg, err = track.ConfigFromVector(vec); err != nil {
				log.Fatalf("Invalid config vector: %v", err)
			}
		}

		if *seed == 0 {
			*seed = time.Now().UnixNano()
		}
		tr, err := track.New(cfg, rand.New(rand.NewSource(*seed))).Generate()
		if err != nil {
			log.Fatalf("Failed to generate track: %v", err)
		}
		log.Printf("Generated %d-point track with seed %d: %.0fm long, %dx%dm",
			len(tr.Points), *seed, geom.PolylineLength(tr.Points), tr.Width, tr.Height)

		centerline = tr.Points
		layout = cones.Place(tr.Points, cones.Options{Spacing: *spacing, TrackWidth: *trackWidth})
		if *midpoints {
			mids = cones.Midpoints(layout.Blue, layout.Yellow)
		}
		title = fmt.Sprintf("%s seed %d", *preset, *seed)
	}

	// With no outputs named, generation defaults to a CSV and
	// conversion defaults to the other format.
	if *outCSV == "" && *outSDF == "" && *outPNG == "" {
		switch {
		case *in == "":
			*outCSV = fmt.Sprintf("track-%d.csv", *seed)
		case strings.HasSuffix(strings.ToLower(*in), ".sdf"):
			*outCSV = title + ".csv"
		default:
			*outSDF = title + ".sdf"
		}
	}

	if *outCSV != "" {
		writeFile(*outCSV, func(f *os.File) error {
			return trackio.WriteCSV(f, layout, mids)
		})
	}
	if *outSDF != "" {
		writeFile(*outSDF, func(f *os.File) error {
			return trackio.WriteSDF(f, *modelName, layout)
		})
	}
	if *outPNG != "" {
		if err := render.SavePNG(*outPNG, centerline, layout, title); err != nil {
			log.Fatalf("Could not write %s: %v", *outPNG, err)
		}
		log.Printf("Wrote %s", *outPNG)
	}
}

// loadLayout reads a cone layout from a CSV or SDF file. The format is
// picked from the file extension.
func loadLayout(path string) (cones.Layout, []curve.Point, string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Could not open %s: %v", path, err)
	}
	defer f.Close()

	var (
		layout cones.Layout
		mids   []curve.Point
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		if layout, mids, err = trackio.ReadCSV(f); err != nil {
			log.Fatalf("Could not parse %s: %v", path, err)
		}
	case ".sdf":
		if layout, err = trackio.ReadSDF(f); err != nil {
			log.Fatalf("Could not parse %s: %v", path, err)
		}
	default:
		log.Fatalf("Unsupported input format %q (want .csv or .sdf)", ext)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return layout, mids, title
}

func writeFile(path string, write func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Could not create output file %s: %v", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		log.Fatalf("Could not write %s: %v", path, err)
	}
	log.Printf("Wrote %s", path)
}
