package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ResolverLookups = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "planner", Name: "resolver_lookups_total", Help: "Timetable slot lookups",
	})
	ResolverHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner", Name: "resolver_hits_total", Help: "Resolved slots by precedence rule",
	}, []string{"rule"})
	ScoringRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "planner", Name: "scoring_runs_total", Help: "Assessment score computations",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "planner", Name: "handler_errors_total", Help: "HTTP handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "planner", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ResolverLookups, ResolverHits, ScoringRuns, HandlerErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
