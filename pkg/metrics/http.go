// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package metrics exposes a plain-text /metrics endpoint reporting mempool
// size, local-origin-tracker size and, when Gauges.PendingGossipFn is set,
// pending-gossip-queue depth. Adapted
// from the teacher's cmd/exporter/exporter.go (an http.HandleFunc("/metrics",
// ...) handler writing one "name value" line per gauge) with the
// GraphQL/gRPC block-polling machinery stripped, since this subsystem has
// nothing to do with block contents.
package metrics

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/monetary-system/msnode/pkg/core/mempool"
	"github.com/monetary-system/msnode/pkg/log"
)

var logMetrics = log.WithPrefix("metrics")

// Gauges is the narrow read surface the /metrics handler needs: the
// mempool store, the local-origin tracker, and an optional
// PendingGossipFn; the pending-gossip line is omitted when it is nil.
type Gauges struct {
	Store          *mempool.Store
	LocalOrigin    *mempool.LocalOriginTracker
	PendingGossipFn func() int
}

// Handler builds the /metrics http.HandlerFunc.
func (g Gauges) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var lines []string

		size, err := g.Store.Len()
		if err != nil {
			logMetrics.WithError(err).Error("read mempool size")
		} else {
			lines = append(lines, fmt.Sprintf("msnode_mempool_size %d", size))
		}

		lines = append(lines, fmt.Sprintf("msnode_local_origin_size %d", g.LocalOrigin.Len()))

		if g.PendingGossipFn != nil {
			lines = append(lines, fmt.Sprintf("msnode_pending_gossip_queue %d", g.PendingGossipFn()))
		}

		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		fmt.Fprintln(w, strings.Join(lines, "\n"))
	}
}

// ListenAndServe starts the metrics HTTP server on addr. It blocks until the
// server stops and returns the resulting error, matching the teacher's
// exporter main() shape of calling http.ListenAndServe directly.
func ListenAndServe(addr string, g Gauges) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", g.Handler())
	logMetrics.WithField("addr", addr).Info("starting metrics endpoint")
	return http.ListenAndServe(addr, mux)
}
