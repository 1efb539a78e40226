// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package testnet

import (
	"bytes"
	"sync"

	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/core/txprocessor"
	"github.com/monetary-system/msnode/pkg/log"
)

var logNode = log.WithPrefix("testnet.node")

// Node is one harness-managed in-process instance: a TransactionProcessor
// plus the fabric-facing delivery surface peers use to gossip it
// transactions and pull its mempool contents.
type Node struct {
	mu        sync.Mutex
	processor *txprocessor.Processor
	mempool   map[uint64]*transactions.Transaction
}

// NewNode wraps an already-constructed Processor for harness use.
func NewNode(processor *txprocessor.Processor) *Node {
	return &Node{processor: processor, mempool: make(map[uint64]*transactions.Transaction)}
}

// Deliver is called by the fabric when a peer gossips batch to this node.
func (n *Node) Deliver(batch []*transactions.Transaction) {
	if err := n.processor.ProcessPeerBatch(batch, true); err != nil {
		logNode.WithError(err).Error("harness node failed to process gossiped batch")
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, tx := range batch {
		n.mempool[tx.ID] = tx
	}
}

// Broadcast originates tx locally on this node, matching the production
// Broadcast entry point.
func (n *Node) Broadcast(tx *transactions.Transaction) error {
	var buf bytes.Buffer
	if tx.Bytes == nil {
		if err := transactions.Marshal(&buf, tx); err == nil {
			tx.Bytes = buf.Bytes()
		}
	}

	if err := n.processor.Broadcast(tx); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.mempool[tx.ID] = tx
	return nil
}

// Snapshot returns this node's tracked mempool contents, used to answer
// getUnconfirmedTransactions requests.
func (n *Node) Snapshot() []*transactions.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]*transactions.Transaction, 0, len(n.mempool))
	for _, tx := range n.mempool {
		out = append(out, tx)
	}
	return out
}
