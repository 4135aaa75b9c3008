// Package config loads and validates watcher configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultWatchURL is the job-postings page monitored when no URL is configured.
const DefaultWatchURL = "https://career.avito.com/vacancies/razrabotka/?q=&action=filter&direction=razrabotka&tags%5B%5D=s26502"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Watch    WatchConfig    `mapstructure:"watch"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Render   RenderConfig   `mapstructure:"render"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Bot      BotConfig      `mapstructure:"bot"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// WatchConfig identifies the page being watched.
type WatchConfig struct {
	URL string `mapstructure:"url"`
}

// HTTPConfig configures the outbound fetch.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	MaxBodyBytes   int    `mapstructure:"max_body_bytes"`
	CABundle       string `mapstructure:"ca_bundle"`
}

// RenderConfig controls the optional headless render escalation.
type RenderConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	NavTimeoutSeconds int      `mapstructure:"nav_timeout_seconds"`
	MinHTMLBytes      int      `mapstructure:"min_html_bytes"`
	ContentSelector   string   `mapstructure:"content_selector"`
	Keywords          []string `mapstructure:"keywords"`
}

// TelegramConfig holds the optional notification destination. Either field
// being empty disables notifications; that is a valid state, not an error.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// BotConfig governs the subscription bot daemon.
type BotConfig struct {
	StateFile            string `mapstructure:"state_file"`
	PollTimeoutSeconds   int    `mapstructure:"poll_timeout_seconds"`
	DefaultPeriodSeconds int    `mapstructure:"default_period_seconds"`
}

// ServerConfig controls the daemon's health/metrics endpoint.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. A non-empty path pins the
// config file; otherwise the usual search paths are tried and a missing file
// is not an error.
func Load(path string) (Config, error) {
	// The original deployment keeps TELEGRAM_* secrets in a .env next to the
	// binary; load it best-effort before Viper binds the environment.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("VACWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The bare names are what the original system documents; keep honoring them.
	if err := v.BindEnv("telegram.bot_token", "VACWATCH_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("telegram.chat_id", "VACWATCH_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/vacwatch/")
		v.AddConfigPath("$HOME/.vacwatch")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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
	v.SetDefault("watch.url", DefaultWatchURL)

	v.SetDefault("http.timeout_seconds", 25)
	v.SetDefault("http.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) "+
			"AppleWebKit/537.36 (KHTML, like Gecko) "+
			"Chrome/126.0.0.0 Safari/537.36")
	// Raspberry Pi class hosts; anything bigger than 5 MiB is not a listings page.
	v.SetDefault("http.max_body_bytes", 5*1024*1024)
	v.SetDefault("http.ca_bundle", "")

	v.SetDefault("render.enabled", false)
	v.SetDefault("render.nav_timeout_seconds", 15)
	v.SetDefault("render.min_html_bytes", 2000)
	v.SetDefault("render.content_selector", "main")
	v.SetDefault("render.keywords", []string{
		"__NEXT_DATA__",
		"data-reactroot",
		"window.__APOLLO_STATE__",
	})

	v.SetDefault("bot.state_file", "bot_subscriptions.json")
	v.SetDefault("bot.poll_timeout_seconds", 50)
	v.SetDefault("bot.default_period_seconds", 15*60)

	v.SetDefault("server.listen_addr", ":9090")

	v.SetDefault("logging.development", false)
}

// Validate enforces the invariants the pipeline relies on.
func (c Config) Validate() error {
	u, err := url.Parse(c.Watch.URL)
	if err != nil {
		return fmt.Errorf("watch.url: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("watch.url must be https, got %q", c.Watch.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("watch.url has no host: %q", c.Watch.URL)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be positive, got %d", c.HTTP.TimeoutSeconds)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body_bytes must be positive, got %d", c.HTTP.MaxBodyBytes)
	}
	if c.Bot.PollTimeoutSeconds < 1 || c.Bot.PollTimeoutSeconds > 90 {
		return fmt.Errorf("bot.poll_timeout_seconds must be within [1,90], got %d", c.Bot.PollTimeoutSeconds)
	}
	if c.Bot.DefaultPeriodSeconds < 60 {
		return fmt.Errorf("bot.default_period_seconds must be at least 60, got %d", c.Bot.DefaultPeriodSeconds)
	}
	return nil
}
