package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-quake-scene/internal/filter"
	"github.com/mr1hm/go-quake-scene/internal/geo"
	"github.com/mr1hm/go-quake-scene/internal/magnitude"
	"github.com/mr1hm/go-quake-scene/internal/models"
)

type Config struct {
	Server     ServerConfig
	Sources    SourcesConfig
	Catalog    CatalogConfig
	Projection ProjectionConfig
	Magnitude  MagnitudeConfig
	Scene      SceneConfig
	Render     RenderConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int // requests per second, global
}

// SourcesConfig lists the event batches to load, typically one per year.
type SourcesConfig struct {
	URLs     []string
	Files    []string
	USGSURLs []string
	Timeout  time.Duration
}

type CatalogConfig struct {
	Path string // empty disables the sqlite catalogue
}

type ProjectionConfig struct {
	RefLongitude float64
	RefLatitude  float64
	ScaleLon     float64
	ScaleLat     float64
	Convention   string
}

type MagnitudeConfig struct {
	Min           float64
	Max           float64
	DefaultRadius float64
	DefaultColor  string // #rrggbb
}

type SceneConfig struct {
	Mode      string // "full" or "incremental"
	StartDate string // empty means the loaded epoch range
	EndDate   string
	QueueSize int
}

type RenderConfig struct {
	Interval time.Duration
	Title    string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	defaultGeo := geo.DefaultConfig()
	defaultMag := magnitude.DefaultConfig()

	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("RATE_LIMIT", 5),
		},
		Sources: SourcesConfig{
			URLs:     getEnvList("DATA_URLS"),
			Files:    getEnvList("DATA_FILES"),
			USGSURLs: getEnvList("USGS_URLS"),
			Timeout:  getEnvDuration("SOURCE_TIMEOUT", 15*time.Second),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", ""),
		},
		Projection: ProjectionConfig{
			RefLongitude: getEnvFloat("REF_LONGITUDE", defaultGeo.RefLongitude),
			RefLatitude:  getEnvFloat("REF_LATITUDE", defaultGeo.RefLatitude),
			ScaleLon:     getEnvFloat("SCALE_LONGITUDE", defaultGeo.ScaleLon),
			ScaleLat:     getEnvFloat("SCALE_LATITUDE", defaultGeo.ScaleLat),
			Convention:   getEnv("PROJECTION_CONVENTION", string(defaultGeo.Convention)),
		},
		Magnitude: MagnitudeConfig{
			Min:           getEnvFloat("MAGNITUDE_MIN", defaultMag.MinMagnitude),
			Max:           getEnvFloat("MAGNITUDE_MAX", defaultMag.MaxMagnitude),
			DefaultRadius: getEnvFloat("DEFAULT_RADIUS", defaultMag.DefaultRadius),
			DefaultColor:  getEnv("DEFAULT_COLOR", defaultMag.DefaultColor.Hex()),
		},
		Scene: SceneConfig{
			Mode:      getEnv("SCENE_MODE", "full"),
			StartDate: getEnv("START_DATE", ""),
			EndDate:   getEnv("END_DATE", ""),
			QueueSize: getEnvInt("REBUILD_QUEUE_SIZE", 1),
		},
		Render: RenderConfig{
			Interval: getEnvDuration("RENDER_INTERVAL", time.Second),
			Title:    getEnv("RENDER_TITLE", "Seismic events"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("rate limit must be at least 1, got %d", c.Server.RateLimit)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if _, err := geo.NewProjector(c.GeoConfig()); err != nil {
		return err
	}
	if c.Magnitude.Max <= c.Magnitude.Min {
		return fmt.Errorf("magnitude max (%v) must be greater than min (%v)", c.Magnitude.Max, c.Magnitude.Min)
	}
	if !(c.Magnitude.DefaultRadius >= 0) {
		return fmt.Errorf("default radius must be a non-negative number, got %v", c.Magnitude.DefaultRadius)
	}
	if _, err := parseHexColor(c.Magnitude.DefaultColor); err != nil {
		return err
	}

	if c.Scene.Mode != "full" && c.Scene.Mode != "incremental" {
		return fmt.Errorf("invalid scene mode: %s", c.Scene.Mode)
	}
	if (c.Scene.StartDate == "") != (c.Scene.EndDate == "") {
		return fmt.Errorf("START_DATE and END_DATE must be set together")
	}
	if c.Scene.StartDate != "" {
		if err := c.InitialRange().Validate(); err != nil {
			return fmt.Errorf("invalid initial range: %w", err)
		}
	}
	if c.Scene.QueueSize < 1 {
		return fmt.Errorf("rebuild queue size must be at least 1")
	}
	if c.Render.Interval < 10*time.Millisecond {
		return fmt.Errorf("render interval must be at least 10ms")
	}

	return nil
}

// HasSources reports whether any batch source is configured.
func (c *Config) HasSources() bool {
	return len(c.Sources.URLs)+len(c.Sources.Files)+len(c.Sources.USGSURLs) > 0 || c.Catalog.Path != ""
}

func (c *Config) GeoConfig() geo.Config {
	return geo.Config{
		RefLongitude: c.Projection.RefLongitude,
		RefLatitude:  c.Projection.RefLatitude,
		ScaleLon:     c.Projection.ScaleLon,
		ScaleLat:     c.Projection.ScaleLat,
		Convention:   geo.Convention(c.Projection.Convention),
	}
}

func (c *Config) MagnitudeConfig() magnitude.Config {
	color, _ := parseHexColor(c.Magnitude.DefaultColor)
	return magnitude.Config{
		MinMagnitude:  c.Magnitude.Min,
		MaxMagnitude:  c.Magnitude.Max,
		DefaultRadius: c.Magnitude.DefaultRadius,
		DefaultColor:  color,
	}
}

// InitialRange is the configured first filter range; zero when unset.
func (c *Config) InitialRange() filter.Range {
	return filter.Range{Start: c.Scene.StartDate, End: c.Scene.EndDate}
}

func parseHexColor(s string) (models.Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return models.Color{}, fmt.Errorf("invalid color: %q", s)
	}
	rgb, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return models.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return models.Color{
		R: float64(rgb>>16&0xff) / 255,
		G: float64(rgb>>8&0xff) / 255,
		B: float64(rgb&0xff) / 255,
	}, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
