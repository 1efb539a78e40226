// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package peer defines the narrow collaborator surface the mempool needs
// from the out-of-scope peer-connection subsystem: gossip fan-out,
// blacklisting, and the getUnconfirmedTransactions request/reply pair. The
// request-dispatch shape — a typed request handed to a chain/peer
// collaborator, returning a typed reply — follows the teacher's
// pkg/p2p/peer/syncmgr/syncservices.go getHeaders function.
package peer

import (
	"context"
	"errors"

	"github.com/monetary-system/msnode/pkg/core/transactions"
)

// ErrNoPeers is returned by Peers.RandomPeer when no peer is connected.
var ErrNoPeers = errors.New("peer: no connected peers")

// ID identifies a connected peer.
type ID string

// GetUnconfirmedTransactionsRequest is the wire request:
// { "requestType": "getUnconfirmedTransactions" }.
type GetUnconfirmedTransactionsRequest struct{}

// GetUnconfirmedTransactionsResponse is the wire reply:
// { "unconfirmedTransactions": [ <tx-json>, ... ] }.
type GetUnconfirmedTransactionsResponse struct {
	UnconfirmedTransactions []*transactions.Transaction
}

// TransactionsPush is the wire push:
// { "transactions": [ <tx-json>, ... ] }.
type TransactionsPush struct {
	Transactions []*transactions.Transaction
}

// Peers is the collaborator TransactionProcessor and the PeerPuller worker
// use to reach the network. Implementations must never block on I/O while
// the caller holds the blockchain lock.
type Peers interface {
	// RandomPeer returns an arbitrary connected peer id, or ErrNoPeers.
	RandomPeer() (ID, error)
	// SendToSome gossips batch to a subset of connected peers.
	SendToSome(batch []*transactions.Transaction)
	// RequestUnconfirmed issues getUnconfirmedTransactions to peer and
	// waits for its reply or ctx cancellation.
	RequestUnconfirmed(ctx context.Context, peer ID) (GetUnconfirmedTransactionsResponse, error)
	// Blacklist sanctions peer for supplying permanently invalid data.
	Blacklist(peer ID, reason string)
}
