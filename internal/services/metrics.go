package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Inbound chat messages by handling path and outcome",
	}, []string{"path", "outcome"})

	oracleCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_oracle_calls_total",
		Help: "Completion service calls by capability and result",
	}, []string{"capability", "result"})

	oracleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_oracle_call_duration_seconds",
		Help:    "Completion service latency",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"capability"})

	linkOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_link_outcomes_total",
		Help: "Link code verification outcomes",
	}, []string{"status"})
)
