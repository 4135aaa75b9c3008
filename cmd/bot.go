package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vacwatch/vacwatch/internal/api"
	"github.com/vacwatch/vacwatch/internal/bot"
	"github.com/vacwatch/vacwatch/internal/notify"
	"github.com/vacwatch/vacwatch/internal/watch"
)

// newBotCmd creates and configures the 'bot' subcommand: the long-running
// Telegram subscription daemon.
func newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Runs the Telegram subscription bot daemon",
		Long: `Long-polls the Telegram Bot API for subscribe/unsubscribe commands and
pushes the postings summary to each subscribed chat on its chosen period.
Serves /healthz and /metrics while running.`,

		RunE: runBotCommand,
	}
	return cmd
}

func runBotCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.Cfg
	logger := appInstance.Logger

	if strings.TrimSpace(cfg.Telegram.BotToken) == "" {
		return errors.New("bot mode requires telegram.bot_token (TELEGRAM_BOT_TOKEN)")
	}

	// The bot pushes per subscribed chat, so the pipeline's own notifier
	// stays disabled; the summary text is built from the run outcome.
	runner, closeFn, err := buildRunner(cfg, cfg.Watch.URL, notify.Config{}, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	state := bot.LoadState(cfg.Bot.StateFile)
	b, err := bot.New(bot.Config{
		Token:            cfg.Telegram.BotToken,
		PollTimeout:      time.Duration(cfg.Bot.PollTimeoutSeconds) * time.Second,
		DefaultPeriodSec: cfg.Bot.DefaultPeriodSeconds,
	}, state, &runnerSummarizer{runner: runner, url: cfg.Watch.URL}, logger.Named("bot"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(cfg.Server.ListenAddr)
	go func() {
		logger.Info("http server started", zap.String("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	logger.Info("bot started")
	runErr := b.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return runErr
}

// runnerSummarizer adapts the watch runner to the bot's summary source. The
// console report still goes to the runner's writer; the bot only needs the
// Telegram-formatted text.
type runnerSummarizer struct {
	runner *watch.Runner
	url    string
}

func (s *runnerSummarizer) Summarize(ctx context.Context) (string, error) {
	outcome, err := s.runner.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("watch run: %w", err)
	}
	return watch.Summary(outcome, s.url), nil
}
