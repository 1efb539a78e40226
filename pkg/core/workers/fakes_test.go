// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package workers

import (
	"context"
	"sync"

	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/p2p/peer"
)

// fakePeers records SendToSome calls and answers RandomPeer/RequestUnconfirmed
// from fixed, settable fields.
type fakePeers struct {
	mu          sync.Mutex
	sent        [][]*transactions.Transaction
	randomID    peer.ID
	randomErr   error
	reply       peer.GetUnconfirmedTransactionsResponse
	replyErr    error
	blacklisted []peer.ID
}

func newFakePeers() *fakePeers {
	return &fakePeers{randomID: "peer-a"}
}

func (f *fakePeers) RandomPeer() (peer.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.randomID, f.randomErr
}

func (f *fakePeers) SendToSome(batch []*transactions.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, batch)
}

func (f *fakePeers) RequestUnconfirmed(context.Context, peer.ID) (peer.GetUnconfirmedTransactionsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reply, f.replyErr
}

func (f *fakePeers) Blacklist(id peer.ID, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklisted = append(f.blacklisted, id)
}

func (f *fakePeers) sentBatches() [][]*transactions.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]*transactions.Transaction, len(f.sent))
	copy(out, f.sent)
	return out
}

// fakeLedger answers ConfirmedChecker.Contains from a fixed settable set.
type fakeLedger struct {
	mu        sync.Mutex
	confirmed map[uint64]bool
	err       error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{confirmed: make(map[uint64]bool)}
}

func (f *fakeLedger) confirm(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed[id] = true
}

func (f *fakeLedger) Contains(id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.confirmed[id], nil
}

// fakeBatchProcessor records every batch handed to it by PeerPuller.
type fakeBatchProcessor struct {
	mu    sync.Mutex
	calls []batchCall
	err   error
}

type batchCall struct {
	txs         []*transactions.Transaction
	sendToPeers bool
}

func (f *fakeBatchProcessor) ProcessPeerBatch(txs []*transactions.Transaction, sendToPeers bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, batchCall{txs: txs, sendToPeers: sendToPeers})
	return f.err
}

func (f *fakeBatchProcessor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
