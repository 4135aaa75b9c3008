// Package watch sequences one run of the pipeline: fetch, extract, report,
// notify.
package watch

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/vacwatch/vacwatch/internal/extract"
	"github.com/vacwatch/vacwatch/internal/fetch"
	"github.com/vacwatch/vacwatch/internal/notify"
)

// Fetcher retrieves the watched page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Page, error)
}

// Notifier delivers the run summary.
type Notifier interface {
	Send(ctx context.Context, text string) notify.Outcome
}

// Renderer refetches through a browser when the plain fetch looks JS-starved.
type Renderer interface {
	Render(ctx context.Context, url string) (fetch.Page, error)
}

// RenderDetector judges whether a body warrants render escalation.
type RenderDetector interface {
	NeedsRender(body []byte) bool
}

// Outcome is the final state of one run.
type Outcome struct {
	Count        int
	Titles       []string
	Strategy     extract.Strategy
	Notification notify.Outcome
}

// Runner owns one run of the pipeline. It keeps no state between runs.
type Runner struct {
	url      string
	fetcher  Fetcher
	notifier Notifier
	detector RenderDetector
	renderer Renderer
	out      io.Writer
	logger   *zap.Logger
}

// NewRunner wires a runner. detector and renderer may both be nil, which
// disables render escalation.
func NewRunner(url string, fetcher Fetcher, notifier Notifier, out io.Writer, logger *zap.Logger) *Runner {
	return &Runner{
		url:      url,
		fetcher:  fetcher,
		notifier: notifier,
		out:      out,
		logger:   logger,
	}
}

// WithRenderEscalation enables the headless refetch path.
func (r *Runner) WithRenderEscalation(detector RenderDetector, renderer Renderer) *Runner {
	r.detector = detector
	r.renderer = renderer
	return r
}

// Run executes the pipeline once. Only a fetch failure is returned as an
// error; an unparseable page degrades to zero postings and a notification
// failure is carried in the Outcome. The console report is always produced
// before notification is attempted.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	runsTotal.Inc()

	page, err := r.fetcher.Fetch(ctx, r.url)
	if err != nil {
		fetchErrorsTotal.Inc()
		return Outcome{}, fmt.Errorf("fetch postings page: %w", err)
	}
	r.logger.Debug("page fetched",
		zap.Int("status", page.StatusCode),
		zap.Int("bytes", len(page.Body)),
		zap.Duration("duration", page.Duration))

	page = r.maybeRender(ctx, page)

	result := extract.Extract(page.Body)
	outcome := Outcome{
		Count:    len(result.Titles),
		Titles:   result.Titles,
		Strategy: result.Strategy,
	}
	// The page advertises its own counter; prefer it when readable.
	if official, ok := extract.OfficialCount(page.Body); ok {
		outcome.Count = official
	}
	postingsFound.Add(float64(len(result.Titles)))
	r.logger.Info("postings extracted",
		zap.Int("count", outcome.Count),
		zap.String("strategy", string(result.Strategy)))

	fmt.Fprintln(r.out, ConsoleReport(outcome))

	outcome.Notification = r.notifier.Send(ctx, Summary(outcome, r.url))
	notificationsTotal.WithLabelValues(string(outcome.Notification.Status)).Inc()
	if outcome.Notification.Status == notify.StatusFailed {
		r.logger.Warn("notification failed", zap.Error(outcome.Notification.Err))
	}

	return outcome, nil
}

func (r *Runner) maybeRender(ctx context.Context, page fetch.Page) fetch.Page {
	if r.renderer == nil || r.detector == nil || !r.detector.NeedsRender(page.Body) {
		return page
	}
	rendered, err := r.renderer.Render(ctx, r.url)
	if err != nil {
		// The plain body is still worth extracting from.
		r.logger.Warn("render escalation failed, using plain fetch", zap.Error(err))
		return page
	}
	r.logger.Info("page re-fetched via headless render", zap.Int("bytes", len(rendered.Body)))
	return rendered
}
