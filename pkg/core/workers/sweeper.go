// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package workers implements the three independent background goroutines:
// ExpirySweeper, Rebroadcaster, PeerPuller. Each is a time.Ticker-driven
// loop gated by a context.Context, grounded on the teacher's
// worker-goroutine shape (pkg/core/chain and pkg/core/consensus both drive
// tickers off a context; see also cmd/exporter/exporter.go's
// http.Server-under-context pattern for the stop idiom this package
// mirrors without the HTTP server).
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/monetary-system/msnode/pkg/clock"
	"github.com/monetary-system/msnode/pkg/core/mempool"
	"github.com/monetary-system/msnode/pkg/log"
	"github.com/monetary-system/msnode/pkg/util/nativeutils/eventbus"
)

var logSweeper = log.WithPrefix("worker.sweeper")

// Sweeper periodically deletes expired mempool rows and publishes
// RemovedUnconfirmed for the deleted batch.
type Sweeper struct {
	store  *mempool.Store
	bus    *eventbus.EventBus
	clock  clock.Clock
	period time.Duration
	// blockchainLock is acquired around each sweep's storage transaction,
	// shared with txprocessor.Processor.
	blockchainLock *sync.Mutex
}

// NewSweeper builds a Sweeper ticking every period.
func NewSweeper(store *mempool.Store, bus *eventbus.EventBus, clk clock.Clock, lock *sync.Mutex, period time.Duration) *Sweeper {
	return &Sweeper{store: store, bus: bus, clock: clk, blockchainLock: lock, period: period}
}

// Run ticks until ctx is cancelled. A tick in flight is never cancelled
// mid-sweep.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Sweeper) tick() {
	now := s.clock.Now()

	expirations, err := s.store.ExpirationsSorted()
	if err != nil {
		logSweeper.WithError(err).Error("load expirations")
		return
	}

	expired, err := mempool.BoundExpiredCount(expirations, now)
	if err != nil {
		logSweeper.WithError(err).Error("bound expired count")
		return
	}
	if expired == 0 {
		return
	}

	s.blockchainLock.Lock()
	defer s.blockchainLock.Unlock()

	dbTx, err := s.store.Begin()
	if err != nil {
		logSweeper.WithError(err).Error("begin sweep transaction")
		return
	}

	removed, err := mempool.SweepExpired(dbTx, now)
	if err != nil {
		dbTx.Rollback()
		logSweeper.WithError(err).Error("sweep expired transactions")
		return
	}

	if err := dbTx.Commit(); err != nil {
		logSweeper.WithError(err).Error("commit sweep transaction")
		return
	}

	if len(removed) == 0 {
		return
	}

	ids := make([]uint64, len(removed))
	for i, e := range removed {
		ids[i] = e.ID
	}
	s.bus.Publish(eventbus.RemovedUnconfirmed, ids)
	logSweeper.WithField("count", len(ids)).Debug("swept expired transactions")
}
