package cmd

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vacwatch/vacwatch/internal/config"
	"github.com/vacwatch/vacwatch/internal/fetch"
	"github.com/vacwatch/vacwatch/internal/notify"
	"github.com/vacwatch/vacwatch/internal/watch"
)

// newWatchCmd creates and configures the 'watch' subcommand: one pass of the
// fetch → extract → report → notify pipeline.
func newWatchCmd() *cobra.Command {
	var (
		noTelegram bool
		watchURL   string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Runs the postings watch once",
		Long: `Fetches the configured postings page once, prints the count and the
title list, and pushes a summary to Telegram when a destination is
configured. Intended to be scheduled externally, e.g. from cron.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.Cfg
			logger := appInstance.Logger.With(zap.String("run_id", uuid.NewString()))

			url := cfg.Watch.URL
			if watchURL != "" {
				url = watchURL
			}

			notifyCfg := notify.Config{BotToken: cfg.Telegram.BotToken, ChatID: cfg.Telegram.ChatID}
			if noTelegram {
				// Force-disable regardless of configured destination.
				notifyCfg = notify.Config{}
			}

			runner, closeFn, err := buildRunner(cfg, url, notifyCfg, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			outcome, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("run finished",
				zap.Int("count", outcome.Count),
				zap.String("strategy", string(outcome.Strategy)),
				zap.String("notification", string(outcome.Notification.Status)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noTelegram, "no-telegram", false, "do not send a Telegram notification")
	cmd.Flags().StringVar(&watchURL, "url", "", "override the postings page URL")

	return cmd
}

// buildRunner wires the pipeline from config. The returned closer releases
// the headless allocator when render escalation is enabled.
func buildRunner(cfg config.Config, url string, notifyCfg notify.Config, logger *zap.Logger) (*watch.Runner, func(), error) {
	fetcher, err := fetch.New(fetch.Config{
		UserAgent:    cfg.HTTP.UserAgent,
		Timeout:      time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		CABundle:     cfg.HTTP.CABundle,
	})
	if err != nil {
		return nil, nil, err
	}

	notifier := notify.NewTelegram(notifyCfg, logger.Named("notify"))
	runner := watch.NewRunner(url, fetcher, notifier, os.Stdout, logger.Named("watch"))

	closeFn := func() {}
	if cfg.Render.Enabled {
		detector := fetch.NewHeuristicDetector(cfg.Render.MinHTMLBytes, cfg.Render.ContentSelector, cfg.Render.Keywords)
		renderer := fetch.NewRenderer(fetch.RendererConfig{
			UserAgent:         cfg.HTTP.UserAgent,
			NavigationTimeout: time.Duration(cfg.Render.NavTimeoutSeconds) * time.Second,
		})
		runner.WithRenderEscalation(detector, renderer)
		closeFn = renderer.Close
	}
	return runner, closeFn, nil
}
