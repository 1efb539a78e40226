// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"sync"

	"github.com/monetary-system/msnode/pkg/core/transactions"
)

// LocalOriginTracker is the concurrent map of transactions this node
// originated but has not yet seen confirmed. It never affects validation
// outcomes; it exists purely for gossip suppression and rebroadcast.
type LocalOriginTracker struct {
	mu  sync.RWMutex
	txs map[uint64]*transactions.Transaction
}

// NewLocalOriginTracker returns an empty tracker.
func NewLocalOriginTracker() *LocalOriginTracker {
	return &LocalOriginTracker{txs: make(map[uint64]*transactions.Transaction)}
}

// Put records tx as locally originated.
func (l *LocalOriginTracker) Put(tx *transactions.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs[tx.ID] = tx
}

// Remove drops id from the tracker, if present.
func (l *LocalOriginTracker) Remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.txs, id)
}

// Contains reports whether id is tracked as locally originated.
func (l *LocalOriginTracker) Contains(id uint64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.txs[id]
	return ok
}

// Snapshot returns a point-in-time copy of the tracked transactions, safe
// to range over without holding the tracker's lock (used by the
// Rebroadcaster worker).
func (l *LocalOriginTracker) Snapshot() []*transactions.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*transactions.Transaction, 0, len(l.txs))
	for _, tx := range l.txs {
		out = append(out, tx)
	}
	return out
}

// Len reports the number of tracked transactions.
func (l *LocalOriginTracker) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}
