// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package workers

import (
	"context"
	"time"

	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/log"
	"github.com/monetary-system/msnode/pkg/p2p/peer"
)

var logPuller = log.WithPrefix("worker.peerpuller")

// BatchProcessor is the narrow surface PeerPuller needs from
// txprocessor.Processor — accepting it as an interface here (rather than
// importing the concrete type) keeps this package import-cycle-free and
// lets tests substitute a fake.
type BatchProcessor interface {
	ProcessPeerBatch(txs []*transactions.Transaction, sendToPeers bool) error
}

// PeerPuller periodically asks a random connected peer for its unconfirmed
// transactions and feeds the reply through the processor with
// sendToPeers=false: a pulled batch is not itself forwarded on, since the
// originating node's own Rebroadcaster is what re-announces it later if it's
// still unconfirmed.
type PeerPuller struct {
	peers     peer.Peers
	processor BatchProcessor
	period    time.Duration
	// requestTimeout bounds a single getUnconfirmedTransactions round trip
	// so one unresponsive peer cannot stall every future tick.
	requestTimeout time.Duration
}

// NewPeerPuller builds a PeerPuller ticking every period.
func NewPeerPuller(peers peer.Peers, processor BatchProcessor, period, requestTimeout time.Duration) *PeerPuller {
	return &PeerPuller{peers: peers, processor: processor, period: period, requestTimeout: requestTimeout}
}

// Run ticks until ctx is cancelled.
func (p *PeerPuller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *PeerPuller) tick(ctx context.Context) {
	id, err := p.peers.RandomPeer()
	if err != nil {
		if err != peer.ErrNoPeers {
			logPuller.WithError(err).Error("select random peer")
		}
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	resp, err := p.peers.RequestUnconfirmed(reqCtx, id)
	if err != nil {
		logPuller.WithField("peer", id).WithError(err).Debug("getUnconfirmedTransactions request failed")
		return
	}

	if len(resp.UnconfirmedTransactions) == 0 {
		return
	}

	if err := p.processor.ProcessPeerBatch(resp.UnconfirmedTransactions, false); err != nil {
		logPuller.WithField("peer", id).WithError(err).Error("process peer batch")
	}
}
