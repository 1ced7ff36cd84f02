// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Package-level metric families so providers can record events without
// holding a Server reference. Registered into the server's registry by
// NewMetrics.
var (
	transactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tollgate_ledger_transactions_total",
			Help: "Total number of ledger operations by provider, operation, and outcome",
		},
		[]string{"provider", "op", "status"},
	)

	transactionSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tollgate_ledger_transaction_seconds",
			Help:    "Latency of ledger operations from submission to terminal result",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "op"},
	)

	permissionChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tollgate_permission_checks_total",
			Help: "Total number of permission checks by provider and result",
		},
		[]string{"provider", "result"},
	)
)

// RecordTransaction records one terminal ledger operation outcome.
func RecordTransaction(provider, op, status string, seconds float64) {
	transactionsTotal.WithLabelValues(provider, op, status).Inc()
	transactionSeconds.WithLabelValues(provider, op).Observe(seconds)
}

// RecordPermissionCheck records one permission check outcome.
func RecordPermissionCheck(provider string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	permissionChecks.WithLabelValues(provider, result).Inc()
}

// Metrics holds the custom metric families exposed by the server.
type Metrics struct {
	TransactionsTotal  *prometheus.CounterVec
	TransactionSeconds *prometheus.HistogramVec
	PermissionChecks   *prometheus.CounterVec
}

// NewMetrics registers the tollgate metric families with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TransactionsTotal:  transactionsTotal,
		TransactionSeconds: transactionSeconds,
		PermissionChecks:   permissionChecks,
	}

	reg.MustRegister(m.TransactionsTotal)
	reg.MustRegister(m.TransactionSeconds)
	reg.MustRegister(m.PermissionChecks)

	return m
}
