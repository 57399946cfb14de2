// Package config loads and validates menufetcher configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/JakeFAU/menufetcher/internal/sodexo"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Fetch      FetchConfig               `mapstructure:"fetch"`
	Run        RunConfig                 `mapstructure:"run"`
	Logging    LoggingConfig             `mapstructure:"logging"`
	Metrics    MetricsConfig             `mapstructure:"metrics"`
	Facilities map[string]FacilityConfig `mapstructure:"facilities"`
}

// FetchConfig controls upstream HTTP behavior.
type FetchConfig struct {
	UserAgent         string  `mapstructure:"user_agent"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	CacheSize         int     `mapstructure:"cache_size"`
}

// RunConfig governs how menus are resolved.
type RunConfig struct {
	Timezone    string `mapstructure:"timezone"`
	Concurrency int    `mapstructure:"concurrency"`
}

// LoggingConfig toggles zap development features and the minimum level.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// MetricsConfig sets where metrics are written when a run ends.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// FacilityConfig describes one dining facility on a Sodexo site.
type FacilityConfig struct {
	Name          string `mapstructure:"name"`
	Site          string `mapstructure:"site"`
	TemplateID    int    `mapstructure:"template_id"`
	FeedName      string `mapstructure:"feed_name"`
	MenuIDs       []int  `mapstructure:"menu_ids"`
	BaseURL       string `mapstructure:"base_url"`
	PortalSection string `mapstructure:"portal_section"`
}

// Load builds a Config from disk/environment. With an empty path the working
// directory and $HOME/.menufetcher are searched for menufetcher.yaml; a missing
// file there is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MENUFETCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("menufetcher")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.menufetcher")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fetch.user_agent", "menufetcher/0.1 (+https://github.com/JakeFAU/menufetcher)")
	v.SetDefault("fetch.timeout_seconds", 10)
	v.SetDefault("fetch.requests_per_second", 2)
	v.SetDefault("fetch.burst", 2)
	v.SetDefault("fetch.cache_size", 64)
	v.SetDefault("run.timezone", "America/Los_Angeles")
	v.SetDefault("run.concurrency", 4)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return fmt.Errorf("fetch.requests_per_second must be >= 0")
	}
	if c.Fetch.CacheSize <= 0 {
		return fmt.Errorf("fetch.cache_size must be > 0")
	}
	if c.Run.Concurrency <= 0 {
		return fmt.Errorf("run.concurrency must be > 0")
	}
	if c.Run.Timezone == "" {
		return fmt.Errorf("run.timezone must be set")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	for id, f := range c.Facilities {
		if f.Site == "" && f.BaseURL == "" {
			return fmt.Errorf("facilities.%s.site must be set", id)
		}
		if f.TemplateID <= 0 {
			return fmt.Errorf("facilities.%s.template_id must be > 0", id)
		}
		for _, menuID := range f.MenuIDs {
			if menuID <= 0 {
				return fmt.Errorf("facilities.%s.menu_ids must be > 0", id)
			}
		}
	}
	return nil
}

// FetchTimeout converts the timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// Site returns the configured facility id as a site description.
func (c Config) Site(id string) (sodexo.Site, bool) {
	f, ok := c.Facilities[id]
	if !ok {
		return sodexo.Site{}, false
	}
	name := f.Name
	if name == "" {
		name = id
	}
	return sodexo.Site{
		ID:            id,
		Name:          name,
		Sitename:      f.Site,
		TemplateID:    f.TemplateID,
		FeedName:      f.FeedName,
		MenuIDs:       f.MenuIDs,
		BaseURL:       f.BaseURL,
		PortalSection: f.PortalSection,
	}, true
}

// Sites returns every configured facility, ordered by id.
func (c Config) Sites() []sodexo.Site {
	ids := make([]string, 0, len(c.Facilities))
	for id := range c.Facilities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	sites := make([]sodexo.Site, 0, len(ids))
	for _, id := range ids {
		site, _ := c.Site(id)
		sites = append(sites, site)
	}
	return sites
}
