package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the counters recorded during a scrape run.
type Metrics struct {
	Registry *prometheus.Registry

	FetchDuration   prometheus.Histogram
	CandidatesTotal prometheus.Counter
	LeadsTotal      prometheus.Counter
	MailsTotal      *prometheus.CounterVec
	RunsTotal       *prometheus.CounterVec
	LastRunSuccess  prometheus.Gauge
}

// New registers all run metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gbp_leads_fetch_duration_seconds",
			Help:    "Duration of the thread listing fetch.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		CandidatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gbp_leads_candidates_total",
			Help: "Thread anchors that survived dedup and text parsing.",
		}),
		LeadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gbp_leads_selected_total",
			Help: "Leads selected for the report.",
		}),
		MailsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gbp_leads_mails_total",
			Help: "Report delivery attempts.",
		}, []string{"status"}), // sent, failed
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gbp_leads_runs_total",
			Help: "Pipeline runs by outcome.",
		}, []string{"outcome"}), // sent, empty, dry_run, fetch_failed, config_failed, send_failed, failed
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gbp_leads_last_run_success",
			Help: "1 if the last run finished without error, 0 otherwise.",
		}),
	}
}

// Push sends the registry to a Prometheus Pushgateway.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	return push.New(gatewayURL, job).Gatherer(m.Registry).PushContext(ctx)
}
