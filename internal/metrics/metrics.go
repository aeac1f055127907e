package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsCreated counts ledger entries by type and initial status
	TransactionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pinode_transactions_created_total",
			Help: "Total number of ledger entries created",
		},
		[]string{"type", "status"},
	)

	// Approvals counts admin decisions on pending entries
	Approvals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pinode_approvals_total",
			Help: "Total number of approval workflow outcomes",
		},
		[]string{"type", "outcome"},
	)

	// Claims counts referral and mission claims by outcome
	Claims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pinode_claims_total",
			Help: "Total number of reward claims",
		},
		[]string{"source", "outcome"},
	)

	// ClaimedAmount tracks PiNode credited through claims
	ClaimedAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pinode_claimed_amount_total",
			Help: "PiNode credited through claims",
		},
		[]string{"source"},
	)

	// Notifications counts outbound notification attempts
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pinode_notifications_total",
			Help: "Total number of outbound notifications by outcome",
		},
		[]string{"kind", "outcome"},
	)

	// NotificationQueueDepth tracks notifications waiting for delivery
	NotificationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pinode_notification_queue_depth",
			Help: "Notifications waiting for delivery",
		},
	)

	// BotUpdates counts inbound Telegram updates
	BotUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pinode_bot_updates_total",
			Help: "Total number of Telegram updates processed",
		},
		[]string{"type"},
	)

	// HTTPRequests counts API requests by route pattern and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pinode_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks API request latency
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pinode_http_request_duration_seconds",
			Help:    "HTTP API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
