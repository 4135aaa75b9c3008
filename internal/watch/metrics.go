package watch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal tracks pipeline runs, successful or not.
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vacwatch_runs_total",
		Help: "The total number of watch pipeline runs.",
	})
	// fetchErrorsTotal tracks runs that died on the fetch.
	fetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vacwatch_fetch_errors_total",
		Help: "The total number of fatal fetch failures.",
	})
	// postingsFound accumulates extracted titles across runs.
	postingsFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vacwatch_postings_found_total",
		Help: "The total number of posting titles extracted.",
	})
	// notificationsTotal tracks notification outcomes by status.
	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vacwatch_notifications_total",
		Help: "The total number of notification attempts by outcome.",
	}, []string{"status"})
)
