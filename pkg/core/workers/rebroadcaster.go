// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package workers

import (
	"context"
	"time"

	"github.com/monetary-system/msnode/pkg/clock"
	"github.com/monetary-system/msnode/pkg/core/mempool"
	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/log"
	"github.com/monetary-system/msnode/pkg/p2p/peer"
)

var logRebroadcaster = log.WithPrefix("worker.rebroadcaster")

// ConfirmedChecker answers whether an id has already been confirmed, the
// narrow surface Rebroadcaster needs from ledgerindex.Index.
type ConfirmedChecker interface {
	Contains(id uint64) (bool, error)
}

// Rebroadcaster periodically re-announces this node's own still-unconfirmed
// transactions to peers. For each locally-originated entry: if confirmed or
// expired, it is dropped from the tracker; otherwise, if it is older than
// the configured staleness, it is resent to peers. It never touches the
// blockchain lock and never reaches into mempool storage directly — only
// the in-memory LocalOriginTracker, the ledger's confirmed-id lookup, and
// the Peers collaborator.
type Rebroadcaster struct {
	localOrigin *mempool.LocalOriginTracker
	ledger      ConfirmedChecker
	peers       peer.Peers
	clock       clock.Clock
	staleness   int64
	period      time.Duration
}

// NewRebroadcaster builds a Rebroadcaster ticking every period, rebroadcasting
// entries whose timestamp is older than staleness seconds and evicting
// entries that the ledger already confirmed or whose deadline has passed.
func NewRebroadcaster(localOrigin *mempool.LocalOriginTracker, ledger ConfirmedChecker, peers peer.Peers, clk clock.Clock, staleness int64, period time.Duration) *Rebroadcaster {
	return &Rebroadcaster{localOrigin: localOrigin, ledger: ledger, peers: peers, clock: clk, staleness: staleness, period: period}
}

// Run ticks until ctx is cancelled.
func (r *Rebroadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Rebroadcaster) tick() {
	snapshot := r.localOrigin.Snapshot()
	if len(snapshot) == 0 {
		return
	}

	now := r.clock.Now()
	resend := make([]*transactions.Transaction, 0, len(snapshot))
	for _, tx := range snapshot {
		confirmed, err := r.ledger.Contains(tx.ID)
		if err != nil {
			logRebroadcaster.WithField("txid", tx.ID).WithError(err).Error("confirmed lookup failed")
			continue
		}
		if confirmed || tx.Expiration() < now {
			r.localOrigin.Remove(tx.ID)
			continue
		}
		if now-tx.Timestamp > r.staleness {
			resend = append(resend, tx)
		}
	}
	if len(resend) == 0 {
		return
	}

	r.peers.SendToSome(resend)
	logRebroadcaster.WithField("count", len(resend)).Debug("rebroadcast locally originated transactions")
}
