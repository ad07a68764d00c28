package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML defaults file. Fields are pointers so that
// keys absent from the file leave the corresponding setting untouched.
type FileConfig struct {
	WindowWidth       *int     `yaml:"window_width"`
	WindowHeight      *int     `yaml:"window_height"`
	RenderScale       *float64 `yaml:"render_scale"`
	Fullscreen        *bool    `yaml:"fullscreen"`
	VSync             *bool    `yaml:"vsync"`
	Animate           *bool    `yaml:"animate"`
	Multithreaded     *bool    `yaml:"multithreaded"`
	LockFrameRate     *bool    `yaml:"lock_frame_rate"`
	LockedFrameRate   *int     `yaml:"locked_frame_rate"`
	CloseAfterSeconds *float64 `yaml:"close_after_seconds"`
	AsteroidCount     *int     `yaml:"asteroid_count"`
	StatsCsv          *string  `yaml:"stats_csv"`
	StatsSummaryCsv   *string  `yaml:"stats_summary_csv"`
	LiveAddr          *string  `yaml:"live_addr"`
}

// LoadFile reads and parses a YAML defaults file.
//
// Parameters:
//   - path: filesystem path to the YAML file
//
// Returns:
//   - *FileConfig: the parsed configuration
//   - error: non-nil if the file cannot be read or parsed
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read config %s: %w", path, err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("settings: parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply copies every present field onto s. Window dimensions go through
// SetWindowSize so the render dimensions stay consistent.
//
// Parameters:
//   - s: the settings instance to update
func (c *FileConfig) Apply(s *Settings) {
	if c.RenderScale != nil {
		s.RenderScale = *c.RenderScale
	}
	width, height := s.WindowWidth, s.WindowHeight
	if c.WindowWidth != nil {
		width = *c.WindowWidth
	}
	if c.WindowHeight != nil {
		height = *c.WindowHeight
	}
	s.SetWindowSize(width, height)
	if c.Fullscreen != nil {
		s.Fullscreen = *c.Fullscreen
	}
	if c.VSync != nil {
		s.VSync = *c.VSync
	}
	if c.Animate != nil {
		s.Animate = *c.Animate
	}
	if c.Multithreaded != nil {
		s.MultithreadedRendering = *c.Multithreaded
	}
	if c.LockFrameRate != nil {
		s.LockFrameRate = *c.LockFrameRate
	}
	if c.LockedFrameRate != nil {
		s.LockedFrameRate = *c.LockedFrameRate
	}
	if c.CloseAfterSeconds != nil {
		s.CloseAfterSeconds = *c.CloseAfterSeconds
	}
	if c.AsteroidCount != nil {
		s.AsteroidCount = *c.AsteroidCount
	}
	if c.StatsCsv != nil {
		s.StatsCsvFileName = *c.StatsCsv
	}
	if c.StatsSummaryCsv != nil {
		s.StatsSummaryCsvFileName = *c.StatsSummaryCsv
	}
	if c.LiveAddr != nil {
		s.LiveAddr = *c.LiveAddr
	}
}
