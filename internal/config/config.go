// Package config loads doxnav settings with Viper from an optional
// .doxnav.yaml, DOXNAV_* environment variables and bound command-line flags.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	FileName  = ".doxnav.yaml"
	EnvPrefix = "DOXNAV"
)

type Config struct {
	Site   SiteConfig   `mapstructure:"site" yaml:"site"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

type SiteConfig struct {
	// Dir is the Doxygen HTML output directory holding navtreedata.js.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// BaseURL, when set, fetches fragments over HTTP instead of from Dir.
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
}

type ServerConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Watch    bool          `mapstructure:"watch" yaml:"watch"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
	// WatchIgnore adds gitignore-style rules for scripts that never
	// trigger a reload.
	WatchIgnore []string `mapstructure:"watch_ignore" yaml:"watch_ignore"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Site: SiteConfig{
			Dir:          "html",
			FetchTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr:     ":8087",
			Debounce: 300 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// New returns a Viper instance with defaults, environment binding and, when
// path is non-empty, that config file. Without a path .doxnav.yaml is looked
// up in the working directory and its absence is not an error.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("site.dir", d.Site.Dir)
	v.SetDefault("site.base_url", d.Site.BaseURL)
	v.SetDefault("site.fetch_timeout", d.Site.FetchTimeout)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.watch", d.Server.Watch)
	v.SetDefault("server.debounce", d.Server.Debounce)
	v.SetDefault("server.watch_ignore", d.Server.WatchIgnore)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config, fills zero values with defaults and
// validates the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	d := Defaults()
	if strings.TrimSpace(cfg.Site.Dir) == "" {
		cfg.Site.Dir = d.Site.Dir
	}
	if cfg.Site.FetchTimeout <= 0 {
		cfg.Site.FetchTimeout = d.Site.FetchTimeout
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}
	if cfg.Server.Debounce <= 0 {
		cfg.Server.Debounce = d.Server.Debounce
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("site.base_url must be an absolute http(s) URL, got %q", c.Site.BaseURL)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
