// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package txprocessor

import "github.com/monetary-system/msnode/pkg/core/transactions"

// LedgerApplier applies and undoes a transaction's speculative unconfirmed
// state (balances, reservations). It is satisfied in production by the
// consensus/state-application engine, out of scope here, and by
// deterministic fakes in tests — mirroring the teacher's injected
// verifyTx func(tx) error collaborator in mempool.NewMempool.
type LedgerApplier interface {
	// ApplyUnconfirmed applies tx's speculative state. A false return
	// (not an error) means insufficient funds or a double-spend.
	ApplyUnconfirmed(tx *transactions.Transaction) (bool, error)
	// UndoUnconfirmed reverses a previously applied tx's speculative
	// state.
	UndoUnconfirmed(tx *transactions.Transaction) error
}

// SignatureVerifier verifies a transaction's signature. Satisfied by the
// signature-primitive subsystem, out of scope here.
type SignatureVerifier interface {
	Verify(tx *transactions.Transaction) error
}

// AccountExistence answers whether a sender account is known, used only to
// decide whether a signature failure is worth a log line.
type AccountExistence interface {
	AccountExists(id uint64) (bool, error)
}

// SelfValidator runs a transaction's own self-validation, including the
// Monetary System capability/naming rules where applicable.
// Non-Monetary-System transactions self-validate as a no-op.
type SelfValidator interface {
	Validate(tx *transactions.Transaction) error
}

// ChainState answers the height/downloading questions the processor's
// premature-processing gate needs.
type ChainState interface {
	Height() uint64
	Downloading() bool
}
