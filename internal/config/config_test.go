package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, DefaultWatchURL, cfg.Watch.URL)
	require.Equal(t, 25, cfg.HTTP.TimeoutSeconds)
	require.Equal(t, 5*1024*1024, cfg.HTTP.MaxBodyBytes)
	require.False(t, cfg.Render.Enabled)
	require.Equal(t, "bot_subscriptions.json", cfg.Bot.StateFile)
	require.Equal(t, 15*60, cfg.Bot.DefaultPeriodSeconds)
	require.Equal(t, ":9090", cfg.Server.ListenAddr)
	require.False(t, cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "")
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
watch:
  url: https://career.example.com/vacancies/?tag=qa
http:
  timeout_seconds: 10
logging:
  development: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://career.example.com/vacancies/?tag=qa", cfg.Watch.URL)
	require.Equal(t, 10, cfg.HTTP.TimeoutSeconds)
	require.True(t, cfg.Logging.Development)
	// Untouched keys keep defaults.
	require.Equal(t, 5*1024*1024, cfg.HTTP.MaxBodyBytes)
}

func TestLoad_TelegramEnvNames(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "tok-from-env", cfg.Telegram.BotToken)
	require.Equal(t, "42", cfg.Telegram.ChatID)
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "plain")
	t.Setenv("VACWATCH_TELEGRAM_BOT_TOKEN", "prefixed")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prefixed", cfg.Telegram.BotToken)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Watch: WatchConfig{URL: "https://example.com/vacancies"},
			HTTP:  HTTPConfig{TimeoutSeconds: 25, MaxBodyBytes: 1024},
			Bot:   BotConfig{PollTimeoutSeconds: 50, DefaultPeriodSeconds: 900},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "http url rejected", mutate: func(c *Config) { c.Watch.URL = "http://example.com" }, wantErr: "must be https"},
		{name: "hostless url rejected", mutate: func(c *Config) { c.Watch.URL = "https://" }, wantErr: "no host"},
		{name: "zero timeout rejected", mutate: func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, wantErr: "timeout_seconds"},
		{name: "zero body cap rejected", mutate: func(c *Config) { c.HTTP.MaxBodyBytes = 0 }, wantErr: "max_body_bytes"},
		{name: "poll timeout bounds", mutate: func(c *Config) { c.Bot.PollTimeoutSeconds = 120 }, wantErr: "poll_timeout_seconds"},
		{name: "sub-minute period rejected", mutate: func(c *Config) { c.Bot.DefaultPeriodSeconds = 5 }, wantErr: "default_period_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
