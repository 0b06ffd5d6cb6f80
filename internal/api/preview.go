package api

import (
	"bytes"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"honnef.co/go/curve"

	"github.com/banshee-data/trackgen/internal/cones"
	"github.com/banshee-data/trackgen/internal/track"
)

// echartsAssetsHost serves the echarts javascript bundle for preview
// pages.
const echartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// previewChart renders an interactive plot (HTML) of a track using
// go-echarts. Query params:
//   - track_id: archived track to plot
//   - preset, seed: generate a throwaway track instead (not archived)
func (s *Server) previewChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var (
		centerline []curve.Point
		layout     cones.Layout
		title      string
		subtitle   string
	)

	if trackID := r.URL.Query().Get("track_id"); trackID != "" {
		rec, err := s.tracks.Get(trackID)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				s.writeJSONError(w, http.StatusNotFound, "Track not found")
				return
			}
			s.writeJSONError(w, http.StatusInternalServerError, "Failed to fetch track")
			return
		}
		centerline, err = decodeCenterline(rec.Centerline)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		layout, _, err = decodeCones(rec.Cones)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		title = rec.Name
		subtitle = fmt.Sprintf("preset=%s seed=%d length=%.0fm", rec.Preset, rec.Seed, rec.Length)
	} else {
		preset := r.URL.Query().Get("preset")
		if preset == "" {
			preset = s.defaultPreset
		}
		seed := time.Now().UnixNano()
		if sd := r.URL.Query().Get("seed"); sd != "" {
			parsed, err := strconv.ParseInt(sd, 10, 64)
			if err != nil {
				s.writeJSONError(w, http.StatusBadRequest, "Invalid 'seed' parameter")
				return
			}
			seed = parsed
		}

		cfg := track.PresetConfig(preset)
		tr, err := track.New(cfg, rand.New(rand.NewSource(seed))).Generate()
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError,
				fmt.Sprintf("Failed to generate track: %v", err))
			return
		}
		centerline = tr.Points
		layout = cones.Place(tr.Points, s.coneOpts)
		title = preset
		subtitle = fmt.Sprintf("seed=%d points=%d", seed, len(tr.Points))
	}

	maxAbs := 0.0
	for _, pts := range [][]curve.Point{centerline, layout.Blue, layout.Yellow, layout.BigOrange, layout.Orange} {
		for _, p := range pts {
			if p.X > maxAbs {
				maxAbs = p.X
			}
			if p.Y > maxAbs {
				maxAbs = p.Y
			}
		}
	}

	// Add a small padding so points at the edges are visible
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	// Force a square plot by using equal width/height and axis ranges
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track Preview", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("centerline", scatterData(centerline),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9aa0a6"}))
	scatter.AddSeries("blue", scatterData(layout.Blue),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2979ff"}))
	scatter.AddSeries("yellow", scatterData(layout.Yellow),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#f4c20d"}))
	scatter.AddSeries("big orange", scatterData(layout.BigOrange),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 9}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#e8710a"}))
	if len(layout.Orange) > 0 {
		scatter.AddSeries("orange", scatterData(layout.Orange),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff9e45"}))
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func scatterData(pts []curve.Point) []opts.ScatterData {
	data := make([]opts.ScatterData, len(pts))
	for i, p := range pts {
		data[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y}}
	}
	return data
}
