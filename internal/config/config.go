package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"calshare/internal/model"
)

// CategoryConfig declares one event category. Free tags the distinguished
// free-day marker category.
type CategoryConfig struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Icon string `yaml:"icon" json:"icon"`
	Free bool   `yaml:"free,omitempty" json:"free,omitempty"`
}

// ConnectionConfig declares one connection of the viewer and whether that
// connection's events are hidden from the viewer.
type ConnectionConfig struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	HideEvents bool   `yaml:"hide_events" json:"hide_events"`
}

// OwnerConfig identifies the user a source's events belong to.
type OwnerConfig struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// SourceConfig describes a single calendar source. URL may be an http(s)
// endpoint or a local file path.
type SourceConfig struct {
	ID    string      `yaml:"id" json:"id"`
	Name  string      `yaml:"name" json:"name"`
	URL   string      `yaml:"url" json:"url"`
	Owner OwnerConfig `yaml:"owner" json:"owner"`
}

// ShareConfig controls the share-text formatting.
type ShareConfig struct {
	// HeadingFormat is the Go time layout for per-day headings.
	HeadingFormat string `yaml:"heading_format" json:"heading_format"`
	// TimeFormat is the Go time layout for per-event start times.
	TimeFormat string `yaml:"time_format" json:"time_format"`
}

// ViewerConfig identifies the user the calendar is rendered for.
type ViewerConfig struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA timezone used as canonical display zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// Refresh is a cron-style schedule for watch-mode refresh.
	Refresh string `yaml:"refresh" json:"refresh"`

	// HorizonDays is how many future days the pipeline expands and shows.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// BackfillDays is how many past days are included.
	BackfillDays int `yaml:"backfill_days" json:"backfill_days"`

	Viewer      ViewerConfig       `yaml:"viewer" json:"viewer"`
	Categories  []CategoryConfig   `yaml:"categories" json:"categories"`
	Connections []ConnectionConfig `yaml:"connections" json:"connections"`
	Sources     []SourceConfig     `yaml:"sources" json:"sources"`
	Share       ShareConfig        `yaml:"share" json:"share"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:     "UTC",
		WeekStart:    "monday",
		Refresh:      "*/30 * * * *",
		HorizonDays:  90,
		BackfillDays: 30,
		Categories: []CategoryConfig{
			{ID: "general", Name: "General", Icon: "calendar"},
			{ID: "free", Name: "Free", Icon: "sun", Free: true},
		},
		Connections: []ConnectionConfig{},
		Sources:     []SourceConfig{},
		Share: ShareConfig{
			HeadingFormat: "Mon, 02 Jan 2006",
			TimeFormat:    "15:04",
		},
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = "monday"
	}
	if c.Refresh == "" {
		c.Refresh = "*/30 * * * *"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 90
	}
	if c.BackfillDays < 0 {
		c.BackfillDays = 0
	}
	if len(c.Categories) == 0 {
		c.Categories = DefaultConfig().Categories
	}
	// The free-day marker category must exist for free-day detection and the
	// "free days only" filter to mean anything.
	hasFree := false
	for _, cat := range c.Categories {
		if cat.Free {
			hasFree = true
			break
		}
	}
	if !hasFree {
		c.Categories = append(c.Categories, CategoryConfig{ID: "free", Name: "Free", Icon: "sun", Free: true})
	}
	if c.Connections == nil {
		c.Connections = []ConnectionConfig{}
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
	if c.Share.HeadingFormat == "" {
		c.Share.HeadingFormat = "Mon, 02 Jan 2006"
	}
	if c.Share.TimeFormat == "" {
		c.Share.TimeFormat = "15:04"
	}
}

// Location resolves the configured timezone, falling back to time.Local on
// failure.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ModelCategories converts the category table into model values.
func (c *Config) ModelCategories() []model.Category {
	out := make([]model.Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		out = append(out, model.Category{
			ID:         cat.ID,
			Name:       cat.Name,
			Icon:       cat.Icon,
			FreeMarker: cat.Free,
		})
	}
	return out
}

// ModelConnections converts the connection table into model values.
func (c *Config) ModelConnections() []model.Connection {
	out := make([]model.Connection, 0, len(c.Connections))
	for _, cn := range c.Connections {
		out = append(out, model.Connection{
			ID:         cn.ID,
			Name:       cn.Name,
			HideEvents: cn.HideEvents,
		})
	}
	return out
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written (0600) and
//     returned.
//   - Otherwise the YAML is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically: temp file in the same directory,
// 0600 perms, then rename over the target.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calshare-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
