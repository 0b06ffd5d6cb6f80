package api

import (
	"math"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/trackgen/internal/cones"
	"github.com/banshee-data/trackgen/internal/monitoring"
	"github.com/banshee-data/trackgen/internal/testutil"
	"github.com/banshee-data/trackgen/internal/track"
	"github.com/banshee-data/trackgen/internal/trackdb"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := trackdb.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewServer(db, track.DefaultPreset, cones.DefaultOptions())
}

func muteLogs(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}

// generateTestTrack posts a generate request and returns the archived
// record.
func generateTestTrack(t *testing.T, server *Server, seed int64) *trackdb.TrackRecord {
	t.Helper()
	muteLogs(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/generate", generateRequest{
		Preset: "Small Straights",
		Seed:   &seed,
	})
	w := testutil.NewTestRecorder()

	server.generateTrack(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusCreated)

	var rec trackdb.TrackRecord
	testutil.DecodeJSON(t, w, &rec)
	return &rec
}

func TestListPresets(t *testing.T) {
	server := setupTestServer(t)

	req := testutil.NewTestRequest(http.MethodGet, "/api/presets")
	w := testutil.NewTestRecorder()

	server.listPresets(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)

	var presets []presetJSON
	testutil.DecodeJSON(t, w, &presets)

	names := track.PresetNames()
	if len(presets) != len(names) {
		t.Fatalf("Expected %d presets, got %d", len(names), len(presets))
	}
	for i, p := range presets {
		if p.Name != names[i] {
			t.Errorf("preset[%d].Name = %q, want %q", i, p.Name, names[i])
		}
		if len(p.Config) != 10 {
			t.Errorf("preset %q config has %d fields, want 10", p.Name, len(p.Config))
		}
	}
}

func TestListPresets_MethodNotAllowed(t *testing.T) {
	server := setupTestServer(t)

	req := testutil.NewTestRequest(http.MethodPost, "/api/presets")
	w := testutil.NewTestRecorder()

	server.listPresets(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusMethodNotAllowed)
}

func TestGenerateTrack(t *testing.T) {
	server := setupTestServer(t)

	rec := generateTestTrack(t, server, 1)

	if rec.TrackID == "" {
		t.Error("Expected a generated track ID")
	}
	if rec.Preset != "Small Straights" {
		t.Errorf("Preset = %q, want %q", rec.Preset, "Small Straights")
	}
	if rec.Mode != "Circle&Line" {
		t.Errorf("Mode = %q, want Circle&Line", rec.Mode)
	}
	if rec.Seed != 1 {
		t.Errorf("Seed = %d, want 1", rec.Seed)
	}
	if rec.Width <= 0 || rec.Height <= 0 {
		t.Errorf("Bounds = %dx%d, want positive", rec.Width, rec.Height)
	}
	if rec.Length <= 0 {
		t.Errorf("Length = %f, want positive", rec.Length)
	}
	if len(rec.Centerline) == 0 {
		t.Error("Expected a centerline payload")
	}
	if len(rec.Cones) == 0 {
		t.Error("Expected a cone payload")
	}
	if rec.Name == "" {
		t.Error("Expected a default name")
	}

	pts, err := decodeCenterline(rec.Centerline)
	if err != nil {
		t.Fatalf("Failed to decode centerline: %v", err)
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	if minX < 0 || minY < 0 {
		t.Errorf("Centerline min = (%f, %f), want non-negative", minX, minY)
	}
	if float64(rec.Width) < (maxX-minX)+10 {
		t.Errorf("Width %d leaves less than a 10 unit margin over span %f", rec.Width, maxX-minX)
	}
	if float64(rec.Height) < (maxY-minY)+10 {
		t.Errorf("Height %d leaves less than a 10 unit margin over span %f", rec.Height, maxY-minY)
	}
}

func TestGenerateTrack_UnknownPresetFallsBack(t *testing.T) {
	server := setupTestServer(t)
	muteLogs(t)

	seed := int64(5)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/generate", generateRequest{
		Preset: "Gran Turismo",
		Seed:   &seed,
	})
	w := testutil.NewTestRecorder()

	server.generateTrack(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusCreated)

	var rec trackdb.TrackRecord
	testutil.DecodeJSON(t, w, &rec)
	if rec.Preset != "Gran Turismo" {
		t.Errorf("Preset = %q, want the requested name preserved", rec.Preset)
	}
	if rec.Mode != "Circle&Line" {
		t.Errorf("Mode = %q, want the fallback preset's mode", rec.Mode)
	}
	if len(rec.Centerline) == 0 {
		t.Error("Expected a centerline payload")
	}
}

func TestGenerateTrack_InvalidBody(t *testing.T) {
	server := setupTestServer(t)

	req := testutil.NewTestRequest(http.MethodPost, "/api/generate")
	w := testutil.NewTestRecorder()

	server.generateTrack(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusBadRequest)
}

func TestGenerateTrack_BadConfigVector(t *testing.T) {
	server := setupTestServer(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/generate", generateRequest{
		Config: []float64{1, 2, 3},
	})
	w := testutil.NewTestRecorder()

	server.generateTrack(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusBadRequest)
}

func TestGetTrack(t *testing.T) {
	server := setupTestServer(t)
	rec := generateTestTrack(t, server, 2)

	req := testutil.NewTestRequest(http.MethodGet, "/api/tracks/"+rec.TrackID)
	w := testutil.NewTestRecorder()

	server.trackByID(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)

	var got trackdb.TrackRecord
	testutil.DecodeJSON(t, w, &got)

	if got.TrackID != rec.TrackID {
		t.Errorf("TrackID = %q, want %q", got.TrackID, rec.TrackID)
	}
	if got.Name != rec.Name {
		t.Errorf("Name = %q, want %q", got.Name, rec.Name)
	}
	if len(got.Centerline) == 0 {
		t.Error("Expected centerline payload on direct get")
	}
}

func TestGetTrack_NotFound(t *testing.T) {
	server := setupTestServer(t)

	req := testutil.NewTestRequest(http.MethodGet, "/api/tracks/no-such-track")
	w := testutil.NewTestRecorder()

	server.trackByID(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusNotFound)
}

func TestListTracks(t *testing.T) {
	server := setupTestServer(t)
	generateTestTrack(t, server, 3)
	generateTestTrack(t, server, 4)

	req := testutil.NewTestRequest(http.MethodGet, "/api/tracks")
	w := testutil.NewTestRecorder()

	server.listTracks(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)

	var recs []trackdb.TrackRecord
	testutil.DecodeJSON(t, w, &recs)

	if len(recs) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(recs))
	}
	// Listings carry summaries only.
	if len(recs[0].Centerline) != 0 {
		t.Error("Expected no centerline payload in listing")
	}
}

func TestListTracks_Empty(t *testing.T) {
	server := setupTestServer(t)

	req := testutil.NewTestRequest(http.MethodGet, "/api/tracks")
	w := testutil.NewTestRecorder()

	server.listTracks(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("Expected empty JSON array, got %q", body)
	}
}

func TestListTracks_InvalidLimit(t *testing.T) {
	server := setupTestServer(t)

	req := testutil.NewTestRequest(http.MethodGet, "/api/tracks?limit=bogus")
	w := testutil.NewTestRecorder()

	server.listTracks(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusBadRequest)
}

func TestDeleteTrack(t *testing.T) {
	server := setupTestServer(t)
	rec := generateTestTrack(t, server, 5)

	req := testutil.NewTestRequest(http.MethodDelete, "/api/tracks/"+rec.TrackID)
	w := testutil.NewTestRecorder()

	server.trackByID(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusNoContent)

	// A second delete finds nothing.
	w = testutil.NewTestRecorder()
	server.trackByID(w, testutil.NewTestRequest(http.MethodDelete, "/api/tracks/"+rec.TrackID))
	testutil.AssertStatusCode(t, w.Code, http.StatusNotFound)
}

func TestDownloadCSV(t *testing.T) {
	server := setupTestServer(t)
	rec := generateTestTrack(t, server, 6)

	req := testutil.NewTestRequest(http.MethodGet, "/api/tracks/"+rec.TrackID+"/csv")
	w := testutil.NewTestRecorder()

	server.trackByID(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "trackgen_") {
		t.Errorf("Content-Disposition = %q, want a trackgen_ filename", cd)
	}

	body := w.Body.String()
	if !strings.HasPrefix(body, "tag,x,y") {
		t.Errorf("CSV body starts with %q, want tag,x,y header", firstLine(body))
	}
	if !strings.Contains(body, "blue,") {
		t.Error("CSV body missing blue cone rows")
	}
}

func TestDownloadSDF(t *testing.T) {
	server := setupTestServer(t)
	rec := generateTestTrack(t, server, 7)

	req := testutil.NewTestRequest(http.MethodGet, "/api/tracks/"+rec.TrackID+"/sdf")
	w := testutil.NewTestRecorder()

	server.trackByID(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("Content-Type = %q, want application/xml", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, `<sdf version="1.6">`) {
		t.Error("SDF body missing sdf root element")
	}
	if !strings.Contains(body, "model://models/blue_cone") {
		t.Error("SDF body missing blue cone includes")
	}
}

func TestDownloadPNG(t *testing.T) {
	server := setupTestServer(t)
	rec := generateTestTrack(t, server, 8)

	req := testutil.NewTestRequest(http.MethodGet, "/api/tracks/"+rec.TrackID+"/png")
	w := testutil.NewTestRecorder()

	server.trackByID(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	magic := "\x89PNG"
	if body := w.Body.String(); !strings.HasPrefix(body, magic) {
		t.Error("response body is not a PNG")
	}
}

func TestDownloadUnknownFormat(t *testing.T) {
	server := setupTestServer(t)
	rec := generateTestTrack(t, server, 9)

	req := testutil.NewTestRequest(http.MethodGet, "/api/tracks/"+rec.TrackID+"/pdf")
	w := testutil.NewTestRecorder()

	server.trackByID(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusNotFound)
}

func TestTrackByID_MissingID(t *testing.T) {
	server := setupTestServer(t)

	req := testutil.NewTestRequest(http.MethodGet, "/api/tracks/")
	w := testutil.NewTestRecorder()

	server.trackByID(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusBadRequest)
}

func TestDownloadFilename(t *testing.T) {
	tests := []struct {
		name string
		rec  trackdb.TrackRecord
		ext  string
		want string
	}{
		{"plain name", trackdb.TrackRecord{Name: "Small Straights seed 9"}, "csv", "trackgen_small-straights-seed-9.csv"},
		{"empty name", trackdb.TrackRecord{Name: ""}, "sdf", "trackgen_track.sdf"},
		{"symbols only", trackdb.TrackRecord{Name: "!!!"}, "png", "trackgen_track.png"},
		{"mixed case", trackdb.TrackRecord{Name: "Bezier Demo"}, "csv", "trackgen_bezier-demo.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := downloadFilename(&tt.rec, tt.ext); got != tt.want {
				t.Errorf("downloadFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
