// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package capability implements the Monetary System capability-flag
// validator: a function table keyed by the six closed currency-type flags,
// each with an on-present and on-missing rule, dispatched over a
// consistently-computed validators set. A single function table keyed by
// flag, two function pointers per entry, eliminates dynamic dispatch and
// keeps the rule matrix auditable in one place, in place of a per-constant
// method-override design.
package capability

import (
	"github.com/monetary-system/msnode/pkg/errors"
	"github.com/monetary-system/msnode/pkg/money/currency"
	"github.com/monetary-system/msnode/pkg/core/transactions"
)

// HashAlgorithmResolver resolves a MINTABLE issuance's algorithm id to a
// known hash-function identity. Concrete ids are registered by
// pkg/money/hashalgo, built on golang.org/x/crypto (sha3, blake2b); this
// package only needs to know whether an id resolves.
type HashAlgorithmResolver func(id uint32) (known bool)

// Context carries the inputs a capability rule needs beyond the currency
// and transaction themselves.
type Context struct {
	CurrentHeight      uint64
	MonetarySystemBlock uint64
	ResolveAlgorithm   HashAlgorithmResolver
}

type rule struct {
	onPresent func(ctx Context, cur *currency.Currency, tx *transactions.Transaction, validators map[currency.Flag]bool) error
	onMissing func(ctx Context, cur *currency.Currency, tx *transactions.Transaction, validators map[currency.Flag]bool) error
}

var table map[currency.Flag]rule

func init() {
	table = map[currency.Flag]rule{
		currency.Exchangeable: {onPresent: exchangeablePresent, onMissing: exchangeableMissing},
		currency.Controllable: {onPresent: controllablePresent, onMissing: noop},
		currency.Reservable:   {onPresent: reservablePresent, onMissing: reservableMissing},
		currency.Claimable:    {onPresent: claimablePresent, onMissing: claimableMissing},
		currency.Mintable:     {onPresent: mintablePresent, onMissing: mintableMissing},
		currency.Shuffleable:  {onPresent: shuffleablePresent, onMissing: noop},
	}
}

func noop(Context, *currency.Currency, *transactions.Transaction, map[currency.Flag]bool) error {
	return nil
}

// Validate runs the full capability dispatch against tx.
func Validate(ctx Context, typeBits uint32, cur *currency.Currency, tx *transactions.Transaction) error {
	if ctx.CurrentHeight < ctx.MonetarySystemBlock {
		return errors.NotYetEnabled("monetary system")
	}

	if tx.Amount != 0 {
		return errors.NotValid("currency tx amount must be 0")
	}

	validators := currency.Validators(typeBits)
	if len(validators) == 0 {
		return errors.NotValid("currency type not specified")
	}

	for _, f := range currency.OrderedFlags {
		r := table[f]
		var err error
		if validators[f] {
			err = r.onPresent(ctx, cur, tx, validators)
		} else {
			err = r.onMissing(ctx, cur, tx, validators)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// --- EXCHANGEABLE ---

func exchangeablePresent(_ Context, _ *currency.Currency, tx *transactions.Transaction, validators map[currency.Flag]bool) error {
	if tx.Subtype == transactions.Issuance && validators[currency.Claimable] {
		return errors.NotValid("exchangeable cannot be claimed")
	}
	return nil
}

func exchangeableMissing(_ Context, _ *currency.Currency, tx *transactions.Transaction, validators map[currency.Flag]bool) error {
	switch {
	case tx.Subtype == transactions.Issuance:
		if !validators[currency.Claimable] {
			return errors.NotValid("currency must be exchangeable, claimable, or both")
		}
	case tx.Subtype.IsExchange() || tx.Subtype == transactions.PublishOffer:
		return errors.NotValid("not exchangeable")
	}
	return nil
}

// --- CONTROLLABLE ---

func controllablePresent(_ Context, cur *currency.Currency, tx *transactions.Transaction, _ map[currency.Flag]bool) error {
	switch tx.Subtype {
	case transactions.Transfer:
		if cur == nil || (cur.AccountID != tx.SenderID && cur.AccountID != tx.RecipientID) {
			return errors.NotValid("controllable currency transfer restricted to issuer")
		}
	case transactions.PublishOffer:
		if cur == nil || cur.AccountID != tx.SenderID {
			return errors.NotValid("controllable currency offer restricted to issuer")
		}
	}
	return nil
}

// --- RESERVABLE ---

func reservablePresent(ctx Context, cur *currency.Currency, tx *transactions.Transaction, _ map[currency.Flag]bool) error {
	switch tx.Subtype {
	case transactions.Issuance:
		att, ok := tx.Attachment.(transactions.IssuanceAttachment)
		if !ok || att.IssuanceHeight <= ctx.CurrentHeight {
			return errors.NotCurrentlyValid("issuance height must be in the future")
		}
	case transactions.ReserveIncrease:
		if cur != nil && cur.IsActive(ctx.CurrentHeight) {
			return errors.NotCurrentlyValid("cannot increase reserve for active currency")
		}
	}
	return nil
}

func reservableMissing(_ Context, _ *currency.Currency, tx *transactions.Transaction, _ map[currency.Flag]bool) error {
	switch tx.Subtype {
	case transactions.ReserveIncrease:
		return errors.NotValid("not reservable")
	case transactions.Issuance:
		att, ok := tx.Attachment.(transactions.IssuanceAttachment)
		if !ok || att.IssuanceHeight != 0 {
			return errors.NotValid("non-reservable currency must issue at height 0")
		}
	}
	return nil
}

// --- CLAIMABLE ---

func claimablePresent(ctx Context, cur *currency.Currency, tx *transactions.Transaction, validators map[currency.Flag]bool) error {
	switch tx.Subtype {
	case transactions.Issuance:
		att, ok := tx.Attachment.(transactions.IssuanceAttachment)
		if !validators[currency.Reservable] || !ok || att.CurrentSupply != 0 {
			return errors.NotValid("claimable must be reservable")
		}
	case transactions.ReserveClaim:
		if cur == nil || !cur.IsActive(ctx.CurrentHeight) {
			return errors.NotValid("claim requires an active currency")
		}
	}
	return nil
}

func claimableMissing(_ Context, _ *currency.Currency, tx *transactions.Transaction, _ map[currency.Flag]bool) error {
	if tx.Subtype == transactions.ReserveClaim {
		return errors.NotValid("not claimable")
	}
	return nil
}

// --- MINTABLE ---

func mintablePresent(ctx Context, _ *currency.Currency, tx *transactions.Transaction, _ map[currency.Flag]bool) error {
	if tx.Subtype != transactions.Issuance {
		return nil
	}
	att, ok := tx.Attachment.(transactions.IssuanceAttachment)
	if !ok {
		return errors.NotValid("mintable issuance missing attachment")
	}
	if ctx.ResolveAlgorithm == nil || !ctx.ResolveAlgorithm(att.Algorithm) {
		return errors.NotValid("unknown mint algorithm")
	}
	if !(0 < att.MinDifficulty && att.MinDifficulty <= att.MaxDifficulty) {
		return errors.NotValid("invalid mint difficulty bounds")
	}
	return nil
}

func mintableMissing(_ Context, _ *currency.Currency, tx *transactions.Transaction, _ map[currency.Flag]bool) error {
	switch tx.Subtype {
	case transactions.Issuance:
		att, ok := tx.Attachment.(transactions.IssuanceAttachment)
		if !ok || !(att.MinDifficulty == 0 && att.MaxDifficulty == 0 && att.Algorithm == 0) {
			return errors.NotValid("non-mintable issuance must not set mint parameters")
		}
	case transactions.Minting:
		return errors.NotValid("not mintable")
	}
	return nil
}

// --- SHUFFLEABLE ---

func shuffleablePresent(Context, *currency.Currency, *transactions.Transaction, map[currency.Flag]bool) error {
	return errors.NotYetEnabled("shuffling")
}
