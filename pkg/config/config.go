package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when the SMTP account or secret is absent.
var ErrMissingCredentials = errors.New("ZOHO_USER or ZOHO_PASS not set in environment variables")

// Config holds the application configuration.
type Config struct {
	Source   SourceConfig  `mapstructure:"source"`
	Filter   FilterConfig  `mapstructure:"filter"`
	SMTP     SMTPConfig    `mapstructure:"smtp"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	LogLevel string        `mapstructure:"log_level"`
	// Schedule is a cron spec; empty means run once and exit.
	Schedule string `mapstructure:"schedule"`
	DryRun   bool   `mapstructure:"dry_run"`
}

// SourceConfig describes where thread listings come from.
type SourceConfig struct {
	URL        string        `mapstructure:"url"`
	Origin     string        `mapstructure:"origin"`
	ThreadPath string        `mapstructure:"thread_path"`
	UserAgent  string        `mapstructure:"user_agent"`
	Mode       string        `mapstructure:"mode"` // "http" or "browser"
	Timeout    time.Duration `mapstructure:"timeout"`
}

// FilterConfig controls which threads become leads.
type FilterConfig struct {
	Keywords      []string `mapstructure:"keywords"`
	ChromeMarkers []string `mapstructure:"chrome_markers"`
	MaxLeads      int      `mapstructure:"max_leads"`
	SnippetLimit  int      `mapstructure:"snippet_limit"`
}

// SMTPConfig is the relay and account used to deliver the report.
type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MetricsConfig configures the optional Pushgateway export.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

const (
	SourceModeHTTP    = "http"
	SourceModeBrowser = "browser"
)

// DefaultKeywords are the usual suspension buzzwords.
var DefaultKeywords = []string{
	"suspended",
	"suspension",
	"reinstate",
	"taken down",
	"disabled",
	"appeal",
	"rejected",
	"denied",
	"escalation",
}

// DefaultChromeMarkers are substrings of UI lines that are never a snippet.
var DefaultChromeMarkers = []string{"Recommended", "Replies", "Upvotes"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.url", "https://support.google.com/business/threads?hl=en")
	v.SetDefault("source.origin", "https://support.google.com")
	v.SetDefault("source.thread_path", "/business/thread/")
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("source.mode", SourceModeHTTP)
	v.SetDefault("source.timeout", 30*time.Second)

	v.SetDefault("filter.keywords", DefaultKeywords)
	v.SetDefault("filter.chrome_markers", DefaultChromeMarkers)
	v.SetDefault("filter.max_leads", 3)
	v.SetDefault("filter.snippet_limit", 150)

	v.SetDefault("smtp.host", "smtp.zoho.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.timeout", 30*time.Second)

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "gbp_leads")

	v.SetDefault("log_level", "info")
	v.SetDefault("schedule", "")
	v.SetDefault("dry_run", false)
}

// Flags returns the command-line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("leadscraper", pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.Bool("dry-run", false, "print the report instead of sending it")
	fs.String("schedule", "", "cron spec; keep running and scrape on this schedule")
	fs.String("log-level", "", "debug, info, warn or error")
	return fs
}

// Load reads configuration from defaults, an optional config file,
// environment variables and the parsed flags, in increasing precedence.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("smtp.username", "ZOHO_USER"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("smtp.password", "ZOHO_PASS"); err != nil {
		return nil, err
	}

	path := ""
	if fs != nil {
		path, _ = fs.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("parse config.yaml: %w", err)
			}
		}
	}

	if fs != nil {
		for key, flag := range map[string]string{
			"dry_run":   "dry-run",
			"schedule":  "schedule",
			"log_level": "log-level",
		} {
			if f := fs.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	keywords := make([]string, 0, len(cfg.Filter.Keywords))
	for _, kw := range cfg.Filter.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	cfg.Filter.Keywords = keywords
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail deep inside a run.
// Mail credentials are checked separately by RequireCredentials.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return errors.New("source.url is required")
	}
	if c.Source.Mode != SourceModeHTTP && c.Source.Mode != SourceModeBrowser {
		return fmt.Errorf("source.mode must be %q or %q, got %q", SourceModeHTTP, SourceModeBrowser, c.Source.Mode)
	}
	if c.Filter.MaxLeads < 0 {
		return errors.New("filter.max_leads must not be negative")
	}
	if c.Filter.SnippetLimit < 0 {
		return errors.New("filter.snippet_limit must not be negative")
	}
	return nil
}

// RequireCredentials reports ErrMissingCredentials unless both the SMTP
// account and secret are set.
func (c SMTPConfig) RequireCredentials() error {
	if c.Username == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}
