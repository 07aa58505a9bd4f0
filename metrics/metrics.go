// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metrics - prometheus collectors for the ledger
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once
	shared   *ledgerMetrics
)

type ledgerMetrics struct {
	blocksAppended    prometheus.Counter
	logLength         prometheus.Gauge
	liveSize          prometheus.Gauge
	ledgerErrors      *prometheus.CounterVec
	blocksArchived    prometheus.Counter
	migrationFailures prometheus.Counter
	shards            prometheus.Gauge
	rpcCalls          *prometheus.CounterVec
}

func get() *ledgerMetrics {
	initOnce.Do(func() {
		m := &ledgerMetrics{
			blocksAppended: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "nftledger_blocks_appended_total",
				Help: "Blocks appended to the log.",
			}),
			logLength: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "nftledger_log_length",
				Help: "Number of blocks in the logical log.",
			}),
			liveSize: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "nftledger_live_segment_blocks",
				Help: "Blocks held by the live segment.",
			}),
			ledgerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "nftledger_item_errors_total",
				Help: "Rejected request items by error kind.",
			}, []string{"kind"}),
			blocksArchived: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "nftledger_blocks_archived_total",
				Help: "Blocks moved to archive shards.",
			}),
			migrationFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "nftledger_archive_migration_failures_total",
				Help: "Archive migration steps that failed and will be retried.",
			}),
			shards: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "nftledger_archive_shards",
				Help: "Number of archive shards.",
			}),
			rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "nftledger_rpc_calls_total",
				Help: "RPC calls by method.",
			}, []string{"method"}),
		}
		prometheus.MustRegister(
			m.blocksAppended,
			m.logLength,
			m.liveSize,
			m.ledgerErrors,
			m.blocksArchived,
			m.migrationFailures,
			m.shards,
			m.rpcCalls,
		)
		shared = m
	})
	return shared
}

// BlocksAppended - count appended blocks and record the new sizes
func BlocksAppended(n int, length uint64, live uint64) {
	m := get()
	m.blocksAppended.Add(float64(n))
	m.logLength.Set(float64(length))
	m.liveSize.Set(float64(live))
}

// LiveSize - record the live segment size after a trim
func LiveSize(live uint64) {
	get().liveSize.Set(float64(live))
}

// ItemError - count a rejected item
func ItemError(kind string) {
	get().ledgerErrors.WithLabelValues(kind).Inc()
}

// BlocksArchived - count a completed migration step
func BlocksArchived(n uint64, shards int) {
	m := get()
	m.blocksArchived.Add(float64(n))
	m.shards.Set(float64(shards))
}

// MigrationFailed - count a failed migration step
func MigrationFailed() {
	get().migrationFailures.Inc()
}

// RPCCall - count one call
func RPCCall(method string) {
	get().rpcCalls.WithLabelValues(method).Inc()
}

// Handler - the /metrics endpoint
func Handler() http.Handler {
	get()
	return promhttp.Handler()
}
