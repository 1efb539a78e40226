// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package testnet spins up N in-process TransactionProcessor + mempool.Store
// instances wired to an in-memory peer fabric, for scenario and soak testing
// of gossip suppression and fork reconciliation. Adapted from the teacher's
// launch/testnet/mock.go (which built mock blocks/stakes/bids against a live
// wire.EventBus) with the consensus/staking machinery replaced entirely,
// since this harness exercises the Monetary System mempool, not block
// production.
package testnet

import (
	"context"
	"sync"

	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/p2p/peer"
)

// Fabric is an in-memory implementation of peer.Peers connecting every
// registered Node to every other Node, for harness use only.
type Fabric struct {
	mu         sync.RWMutex
	nodes      map[peer.ID]*Node
	blacklisted map[peer.ID]string
}

// NewFabric returns an empty fabric.
func NewFabric() *Fabric {
	return &Fabric{
		nodes:       make(map[peer.ID]*Node),
		blacklisted: make(map[peer.ID]string),
	}
}

// Register adds n to the fabric under id, returning a *View bound to id that
// satisfies peer.Peers from n's perspective (excludes n itself from
// RandomPeer/SendToSome).
func (f *Fabric) Register(id peer.ID, n *Node) *View {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes[id] = n
	return &View{fabric: f, self: id}
}

// View is the peer.Peers seen by one node in the fabric.
type View struct {
	fabric *Fabric
	self   peer.ID
}

var _ peer.Peers = (*View)(nil)

// RandomPeer returns an arbitrary other registered node id.
func (v *View) RandomPeer() (peer.ID, error) {
	v.fabric.mu.RLock()
	defer v.fabric.mu.RUnlock()

	for id := range v.fabric.nodes {
		if id != v.self {
			if _, banned := v.fabric.blacklisted[id]; banned {
				continue
			}
			return id, nil
		}
	}
	return "", peer.ErrNoPeers
}

// SendToSome pushes batch to every other registered node's mempool ingress.
func (v *View) SendToSome(batch []*transactions.Transaction) {
	v.fabric.mu.RLock()
	targets := make([]*Node, 0, len(v.fabric.nodes))
	for id, n := range v.fabric.nodes {
		if id == v.self {
			continue
		}
		if _, banned := v.fabric.blacklisted[id]; banned {
			continue
		}
		targets = append(targets, n)
	}
	v.fabric.mu.RUnlock()

	for _, n := range targets {
		n.Deliver(batch)
	}
}

// RequestUnconfirmed asks peerID's Node for its current mempool contents.
func (v *View) RequestUnconfirmed(ctx context.Context, peerID peer.ID) (peer.GetUnconfirmedTransactionsResponse, error) {
	v.fabric.mu.RLock()
	n, ok := v.fabric.nodes[peerID]
	v.fabric.mu.RUnlock()
	if !ok {
		return peer.GetUnconfirmedTransactionsResponse{}, peer.ErrNoPeers
	}

	select {
	case <-ctx.Done():
		return peer.GetUnconfirmedTransactionsResponse{}, ctx.Err()
	default:
	}

	return peer.GetUnconfirmedTransactionsResponse{UnconfirmedTransactions: n.Snapshot()}, nil
}

// Blacklist marks peerID as sanctioned for the lifetime of the fabric.
func (v *View) Blacklist(peerID peer.ID, reason string) {
	v.fabric.mu.Lock()
	defer v.fabric.mu.Unlock()
	v.fabric.blacklisted[peerID] = reason
}
