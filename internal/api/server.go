package api

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/trackgen/internal/cones"
	"github.com/banshee-data/trackgen/internal/geom"
	"github.com/banshee-data/trackgen/internal/render"
	"github.com/banshee-data/trackgen/internal/track"
	"github.com/banshee-data/trackgen/internal/trackdb"
	"github.com/banshee-data/trackgen/internal/trackio"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server exposes the generator and the track archive over HTTP.
type Server struct {
	db            *trackdb.DB
	tracks        *trackdb.TrackStore
	defaultPreset string
	coneOpts      cones.Options
}

func NewServer(db *trackdb.DB, defaultPreset string, coneOpts cones.Options) *Server {
	return &Server{
		db:            db,
		tracks:        trackdb.NewTrackStore(db.DB),
		defaultPreset: defaultPreset,
		coneOpts:      coneOpts,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/presets", s.listPresets)
	mux.HandleFunc("/api/generate", s.generateTrack)
	mux.HandleFunc("/api/tracks", s.listTracks)
	mux.HandleFunc("/api/tracks/", s.trackByID)
	mux.HandleFunc("/preview", s.previewChart)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

type presetJSON struct {
	Name   string    `json:"name"`
	Config []float64 `json:"config"`
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	names := track.PresetNames()
	presets := make([]presetJSON, len(names))
	for i, name := range names {
		presets[i] = presetJSON{Name: name, Config: track.PresetConfig(name).Vector()}
	}

	if err := json.NewEncoder(w).Encode(presets); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write presets")
		return
	}
}

type generateRequest struct {
	Name        string    `json:"name,omitempty"`
	Preset      string    `json:"preset,omitempty"`
	Seed        *int64    `json:"seed,omitempty"`
	Config      []float64 `json:"config,omitempty"`
	ConeSpacing float64   `json:"cone_spacing,omitempty"`
	TrackWidth  float64   `json:"track_width,omitempty"`
}

func (s *Server) generateTrack(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	preset := req.Preset
	if preset == "" {
		preset = s.defaultPreset
	}
	cfg := track.PresetConfig(preset)
	if len(req.Config) > 0 {
		var err error
		cfg, err = track.ConfigFromVector(req.Config)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		preset = "custom"
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	tr, err := track.New(cfg, rand.New(rand.NewSource(seed))).Generate()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to generate track: %v", err))
		return
	}

	opts := s.coneOpts
	if req.ConeSpacing > 0 {
		opts.Spacing = req.ConeSpacing
	}
	if req.TrackWidth > 0 {
		opts.TrackWidth = req.TrackWidth
	}
	layout := cones.Place(tr.Points, opts)
	midpoints := cones.Midpoints(layout.Blue, layout.Yellow)

	centerline, err := marshalCenterline(tr.Points)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to encode centerline")
		return
	}
	conePayload, err := marshalCones(layout, midpoints)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to encode cones")
		return
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s seed %d", preset, seed)
	}

	rec := &trackdb.TrackRecord{
		Name:       name,
		Preset:     preset,
		Seed:       seed,
		Mode:       cfg.Mode.String(),
		Width:      tr.Width,
		Height:     tr.Height,
		Length:     geom.PolylineLength(tr.Points),
		Centerline: centerline,
		Cones:      conePayload,
	}
	if err := s.tracks.Insert(rec); err != nil {
		log.Printf("Error archiving track: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to archive track")
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		log.Printf("Error writing generate response: %v", err)
	}
}

func (s *Server) listTracks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	recs, err := s.tracks.List(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to retrieve tracks: %v", err))
		return
	}
	if recs == nil {
		recs = []*trackdb.TrackRecord{}
	}

	if err := json.NewEncoder(w).Encode(recs); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write tracks")
		return
	}
}

// trackByID handles GET/DELETE /api/tracks/:id and
// GET /api/tracks/:id/{csv,sdf,png}.
func (s *Server) trackByID(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/tracks/"), "/")
	if len(pathParts) == 0 || pathParts[0] == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing track ID")
		return
	}
	trackID := pathParts[0]

	if len(pathParts) > 1 && pathParts[1] != "" {
		if r.Method != http.MethodGet {
			s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		s.downloadTrack(w, r, trackID, pathParts[1])
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getTrack(w, r, trackID)
	case http.MethodDelete:
		s.deleteTrack(w, r, trackID)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) getTrack(w http.ResponseWriter, r *http.Request, trackID string) {
	w.Header().Set("Content-Type", "application/json")

	rec, err := s.tracks.Get(trackID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.writeJSONError(w, http.StatusNotFound, "Track not found")
			return
		}
		log.Printf("Error fetching track %s: %v", trackID, err)
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to fetch track")
		return
	}

	if err := json.NewEncoder(w).Encode(rec); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write track")
		return
	}
}

func (s *Server) deleteTrack(w http.ResponseWriter, r *http.Request, trackID string) {
	if err := s.tracks.Delete(trackID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.writeJSONError(w, http.StatusNotFound, "Track not found")
			return
		}
		log.Printf("Error deleting track %s: %v", trackID, err)
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to delete track")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// downloadFilename builds an attachment filename from the record name,
// reduced to lowercase alphanumerics and dashes.
func downloadFilename(rec *trackdb.TrackRecord, ext string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, rec.Name)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "track"
	}
	return fmt.Sprintf("trackgen_%s.%s", slug, ext)
}

func (s *Server) downloadTrack(w http.ResponseWriter, r *http.Request, trackID, format string) {
	rec, err := s.tracks.Get(trackID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.writeJSONError(w, http.StatusNotFound, "Track not found")
			return
		}
		log.Printf("Error fetching track %s: %v", trackID, err)
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to fetch track")
		return
	}

	switch format {
	case "csv":
		layout, midpoints, err := decodeCones(rec.Cones)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%s", downloadFilename(rec, "csv")))
		if err := trackio.WriteCSV(w, layout, midpoints); err != nil {
			log.Printf("Error streaming CSV for track %s: %v", trackID, err)
		}

	case "sdf":
		layout, _, err := decodeCones(rec.Cones)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%s", downloadFilename(rec, "sdf")))
		if err := trackio.WriteSDF(w, "track", layout); err != nil {
			log.Printf("Error streaming SDF for track %s: %v", trackID, err)
		}

	case "png":
		centerline, err := decodeCenterline(rec.Centerline)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		layout, _, err := decodeCones(rec.Cones)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := render.PNG(w, centerline, layout, rec.Name); err != nil {
			log.Printf("Error rendering PNG for track %s: %v", trackID, err)
		}

	default:
		s.writeJSONError(w, http.StatusNotFound,
			fmt.Sprintf("Unknown download format %q", format))
	}
}
