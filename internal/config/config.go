package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/trackgen/internal/cones"
	"github.com/banshee-data/trackgen/internal/track"
)

// ServerConfig carries the generation defaults the server falls back to
// when a request doesn't override them. All fields are optional, so a
// partial config file is safe.
type ServerConfig struct {
	// DefaultPreset is used when a generate request names no preset.
	DefaultPreset *string `json:"default_preset,omitempty"`

	// Cone placement defaults
	ConeSpacing *float64 `json:"cone_spacing,omitempty"`
	TrackWidth  *float64 `json:"track_width,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

// EmptyServerConfig returns a ServerConfig with all fields set to nil.
// The Get* methods fall back to the built-in defaults.
func EmptyServerConfig() *ServerConfig {
	return &ServerConfig{}
}

// LoadServerConfig loads a ServerConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under
// the max file size. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
func LoadServerConfig(path string) (*ServerConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyServerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *ServerConfig) Validate() error {
	if c.DefaultPreset != nil {
		found := false
		for _, name := range track.PresetNames() {
			if name == *c.DefaultPreset {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown default_preset %q", *c.DefaultPreset)
		}
	}

	if c.ConeSpacing != nil && *c.ConeSpacing <= 0 {
		return fmt.Errorf("cone_spacing must be positive, got %f", *c.ConeSpacing)
	}

	if c.TrackWidth != nil && *c.TrackWidth <= 0 {
		return fmt.Errorf("track_width must be positive, got %f", *c.TrackWidth)
	}

	return nil
}

// GetDefaultPreset returns the default_preset value or the built-in
// default.
func (c *ServerConfig) GetDefaultPreset() string {
	if c.DefaultPreset == nil {
		return track.DefaultPreset
	}
	return *c.DefaultPreset
}

// ConeOptions returns the cone placement options with any configured
// overrides applied.
func (c *ServerConfig) ConeOptions() cones.Options {
	opts := cones.DefaultOptions()
	if c.ConeSpacing != nil {
		opts.Spacing = *c.ConeSpacing
	}
	if c.TrackWidth != nil {
		opts.TrackWidth = *c.TrackWidth
	}
	return opts
}
