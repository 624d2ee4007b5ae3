package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltacoin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deltacoin_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LedgerEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltacoin_ledger_entries_total",
			Help: "Total number of ledger entries written",
		},
		[]string{"reason", "type"},
	)

	LedgerReplaysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deltacoin_ledger_replays_total",
			Help: "Total number of idempotent replays served without a new entry",
		},
	)

	DomainErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltacoin_domain_errors_total",
			Help: "Total number of rejected ledger operations by error code",
		},
		[]string{"code"},
	)

	TxRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deltacoin_tx_retries_total",
			Help: "Total number of transaction attempts retried after transient conflicts",
		},
	)

	HoldTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltacoin_hold_transitions_total",
			Help: "Total number of reservation hold state transitions",
		},
		[]string{"to"},
	)

	ActiveHolds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deltacoin_active_holds",
			Help: "Number of currently authorized holds",
		},
	)

	ReconciliationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltacoin_reconciliation_runs_total",
			Help: "Total number of wallet reconciliation passes",
		},
		[]string{"outcome"},
	)

	ReconciliationDriftAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deltacoin_reconciliation_drift_units_total",
			Help: "Cumulative absolute drift corrected by reconciliation, in smallest units",
		},
	)

	AwardEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltacoin_award_events_total",
			Help: "Total number of award queue events consumed",
		},
		[]string{"outcome"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordEntry(reason, entryType string) {
	LedgerEntriesTotal.WithLabelValues(reason, entryType).Inc()
}

func RecordDomainError(code string) {
	DomainErrorsTotal.WithLabelValues(code).Inc()
}

func RecordHoldTransition(to string) {
	HoldTransitionsTotal.WithLabelValues(to).Inc()
}

func RecordAwardEvent(outcome string) {
	AwardEventsTotal.WithLabelValues(outcome).Inc()
}
