// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package block defines the minimal confirmed-block view the mempool's
// block-applied/block-undone paths consume, adapted from the teacher's
// pkg/p2p/wire/payload/block.go (Header + Txs shape, Height/PrevBlock chain
// linkage) with the BLS/merkle/coinbase consensus machinery stripped out —
// consensus and block validation belong to a different subsystem.
package block

import "github.com/monetary-system/msnode/pkg/core/transactions"

// Header carries the chain-linkage fields this subsystem reads.
type Header struct {
	Height    uint64
	Timestamp int64
	PrevBlock []byte
	Hash      []byte
}

// Block is a confirmed block; its Txs slice is what
// TransactionProcessor.OnBlockApplied / OnBlockUndone take.
type Block struct {
	Header *Header
	Txs    []*transactions.Transaction
}

// New returns an empty Block with an empty Header, matching the teacher's
// NewBlock constructor shape.
func New() *Block {
	return &Block{Header: &Header{}}
}
